package lsp

import (
	stderrors "errors"

	protocol "github.com/tliron/glsp/protocol_3_16"
	"gramgrep/internal/compiler"
	"gramgrep/internal/errors"
	"gramgrep/internal/ir"
)

const diagnosticSource = "gram-grep"

// Diagnostics compiles content and reports the first error, or every
// warning when the configuration compiles.
func Diagnostics(path, content string) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}

	res, err := compiler.Compile(path, content, ir.Flags{})
	if err != nil {
		var ce *errors.CompileError
		if stderrors.As(err, &ce) {
			return append(diagnostics, ConvertDiagnostic(ce.Diag))
		}
		return append(diagnostics, protocol.Diagnostic{
			Severity: ptrSeverity(protocol.DiagnosticSeverityError),
			Source:   ptrString(diagnosticSource),
			Message:  err.Error(),
		})
	}

	for _, w := range res.Warnings {
		diagnostics = append(diagnostics, ConvertDiagnostic(w))
	}
	return diagnostics
}

// ConvertDiagnostic maps a compiler diagnostic to the 0-based LSP form.
func ConvertDiagnostic(d errors.CompilerError) protocol.Diagnostic {
	line := uint32(max(0, d.Position.Line-1))
	start := uint32(max(0, d.Position.Column-1))
	length := uint32(max(1, d.Length))

	severity := protocol.DiagnosticSeverityError
	switch d.Level {
	case errors.Warning:
		severity = protocol.DiagnosticSeverityWarning
	case errors.Note:
		severity = protocol.DiagnosticSeverityInformation
	}

	message := d.Message
	for _, s := range d.Suggestions {
		message += "\nhelp: " + s.Message
	}

	diagnostic := protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: line, Character: start},
			End:   protocol.Position{Line: line, Character: start + length},
		},
		Severity: ptrSeverity(severity),
		Source:   ptrString(diagnosticSource),
		Message:  message,
	}
	if d.Code != "" {
		diagnostic.Code = &protocol.IntegerOrString{Value: d.Code}
	}
	return diagnostic
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func ptrString(s string) *string {
	return &s
}
