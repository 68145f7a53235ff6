package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"gramgrep/internal/ast"
)

// ErrorLevel represents the severity of a diagnostic
type ErrorLevel string

const (
	Error   ErrorLevel = "error"
	Warning ErrorLevel = "warning"
	Note    ErrorLevel = "note"
)

// CompilerError is a structured configuration diagnostic
type CompilerError struct {
	Level       ErrorLevel
	Code        string       // Error code like E0101
	Message     string       // Primary error message
	Position    ast.Position // Location in the configuration file
	Length      int          // Length of the offending region
	Suggestions []Suggestion
	Notes       []string
}

// Suggestion represents a suggested fix
type Suggestion struct {
	Message     string
	Replacement string
}

// ErrorReporter renders diagnostics against the source they refer to
type ErrorReporter struct {
	filename string
	lines    []string
}

func NewErrorReporter(filename, source string) *ErrorReporter {
	return &ErrorReporter{
		filename: filename,
		lines:    strings.Split(source, "\n"),
	}
}

// Header returns the one-line form `file(line:column): level[code]: message`.
func (er *ErrorReporter) Header(err CompilerError) string {
	level := string(err.Level)
	if err.Code != "" {
		level += "[" + err.Code + "]"
	}
	return fmt.Sprintf("%s(%d:%d): %s: %s",
		er.filename, err.Position.Line, err.Position.Column, level, err.Message)
}

// FormatError renders the header followed by the offending line, a caret
// marker and any suggestions or notes.
func (er *ErrorReporter) FormatError(err CompilerError) string {
	var result strings.Builder

	levelColor := er.getLevelColor(err.Level)
	dim := color.New(color.Faint).SprintFunc()

	result.WriteString(fmt.Sprintf("%s(%d:%d): %s",
		er.filename, err.Position.Line, err.Position.Column, levelColor(string(err.Level))))
	if err.Code != "" {
		result.WriteString("[" + err.Code + "]")
	}
	result.WriteString(": " + err.Message + "\n")

	width := er.getLineNumberWidth(err.Position.Line)
	indent := strings.Repeat(" ", width)

	if err.Position.Line > 0 && err.Position.Line <= len(er.lines) {
		line := strings.TrimRight(er.lines[err.Position.Line-1], "\r")
		result.WriteString(fmt.Sprintf("%s %s %s\n",
			dim(fmt.Sprintf("%*d", width, err.Position.Line)), dim("|"), line))
		result.WriteString(fmt.Sprintf("%s %s %s\n",
			indent, dim("|"), er.createMarker(line, err.Position.Column, err.Length, err.Level)))
	}

	for _, s := range err.Suggestions {
		help := color.New(color.FgCyan).SprintFunc()
		result.WriteString(fmt.Sprintf("%s %s %s\n", indent, help("help:"), s.Message))
		if s.Replacement != "" {
			result.WriteString(fmt.Sprintf("%s %s %s\n", indent, dim("|"), help(s.Replacement)))
		}
	}

	for _, note := range err.Notes {
		noteColor := color.New(color.FgBlue).SprintFunc()
		result.WriteString(fmt.Sprintf("%s %s %s\n", indent, noteColor("note:"), note))
	}

	return result.String()
}

func (er *ErrorReporter) getLevelColor(level ErrorLevel) func(...interface{}) string {
	switch level {
	case Warning:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	case Note:
		return color.New(color.FgBlue, color.Bold).SprintFunc()
	default:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	}
}

// createMarker underlines the region, keeping tabs so the carets line up.
func (er *ErrorReporter) createMarker(line string, column, length int, level ErrorLevel) string {
	if length <= 0 {
		length = 1
	}

	var pad strings.Builder
	for i := 0; i < column-1; i++ {
		if i < len(line) && line[i] == '\t' {
			pad.WriteByte('\t')
		} else {
			pad.WriteByte(' ')
		}
	}

	return pad.String() + er.getLevelColor(level)(strings.Repeat("^", length))
}

func (er *ErrorReporter) getLineNumberWidth(line int) int {
	width := len(fmt.Sprintf("%d", line))
	if width < 3 {
		width = 3
	}
	return width
}
