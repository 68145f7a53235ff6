package errors

import (
	"fmt"
	"strings"

	"gramgrep/internal/ast"
)

// DiagnosticBuilder provides a fluent interface for creating diagnostics
type DiagnosticBuilder struct {
	err CompilerError
}

func NewError(code, message string, pos ast.Position) *DiagnosticBuilder {
	return &DiagnosticBuilder{err: CompilerError{
		Level:    Error,
		Code:     code,
		Message:  message,
		Position: pos,
		Length:   1,
	}}
}

func NewWarning(code, message string, pos ast.Position) *DiagnosticBuilder {
	return &DiagnosticBuilder{err: CompilerError{
		Level:    Warning,
		Code:     code,
		Message:  message,
		Position: pos,
		Length:   1,
	}}
}

func (b *DiagnosticBuilder) WithLength(length int) *DiagnosticBuilder {
	b.err.Length = length
	return b
}

func (b *DiagnosticBuilder) WithSuggestion(message string) *DiagnosticBuilder {
	b.err.Suggestions = append(b.err.Suggestions, Suggestion{Message: message})
	return b
}

func (b *DiagnosticBuilder) WithReplacement(message, replacement string) *DiagnosticBuilder {
	b.err.Suggestions = append(b.err.Suggestions, Suggestion{Message: message, Replacement: replacement})
	return b
}

func (b *DiagnosticBuilder) WithNote(note string) *DiagnosticBuilder {
	b.err.Notes = append(b.err.Notes, note)
	return b
}

func (b *DiagnosticBuilder) Build() CompilerError {
	return b.err
}

// SymbolIndexOutOfRange reports a $n beyond the items of its alternative.
func SymbolIndexOutOfRange(index, count int, pos ast.Position) CompilerError {
	b := NewError(ErrorSymbolIndex, fmt.Sprintf("$%d is out of range", index), pos).
		WithLength(len(fmt.Sprint(index)) + 1)
	if count == 0 {
		b = b.WithNote("the alternative has no symbols")
	} else {
		b = b.WithNote(fmt.Sprintf("valid indices are $1 to $%d", count))
	}
	return b.Build()
}

// EndpointsOutOfOrder reports a range whose start comes after its end.
func EndpointsOutOfOrder(from, to string, pos ast.Position) CompilerError {
	return NewError(ErrorEndpointOrder,
		fmt.Sprintf("range start %s comes after range end %s", from, to), pos).
		WithSuggestion(fmt.Sprintf("swap the endpoints: %s, %s", to, from)).
		Build()
}

func CapturesWithActions(pos ast.Position) CompilerError {
	return NewError(ErrorCapturesWithActions, "%captures cannot be used with actions", pos).
		WithSuggestion("remove the action block or the %captures directive").
		Build()
}

// UndefinedName reports an unknown start symbol, precedence token, start
// condition or macro, suggesting close matches from candidates.
func UndefinedName(code, kind, name string, pos ast.Position, candidates []string) CompilerError {
	b := NewError(code, fmt.Sprintf("undefined %s '%s'", kind, name), pos).
		WithLength(len(name))

	similar := findSimilarNames(name, candidates)
	switch len(similar) {
	case 0:
	case 1:
		b = b.WithSuggestion(fmt.Sprintf("did you mean '%s'?", similar[0]))
	default:
		b = b.WithSuggestion(fmt.Sprintf("did you mean one of: '%s'?", strings.Join(similar, "', '")))
	}
	return b.Build()
}

func BadPattern(code, pattern string, err error, pos ast.Position) CompilerError {
	return NewError(code, fmt.Sprintf("invalid regular expression %q: %v", pattern, err), pos).
		WithLength(len(pattern)).
		Build()
}

func Syntax(message string, pos ast.Position, length int) CompilerError {
	return NewError(ErrorSyntax, message, pos).WithLength(length).Build()
}

func findSimilarNames(target string, candidates []string) []string {
	var similar []string
	for _, candidate := range candidates {
		if levenshteinDistance(target, candidate) <= 2 && len(candidate) > 2 {
			similar = append(similar, candidate)
		}
	}
	return similar
}

func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}

	return prev[len(b)]
}
