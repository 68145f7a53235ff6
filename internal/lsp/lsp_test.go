package lsp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"gramgrep/internal/errors"
)

const sumConfig = "%token Num\n%%\nsum: Num '+' Num;\n%%\n%%\n[0-9]+ Num\n%%\n"

type decodedToken struct {
	Line, Char, Length uint32
	Type               string
	Declaration        bool
}

func decode(t *testing.T, raw []uint32) []decodedToken {
	t.Helper()
	require.Zero(t, len(raw)%5, "token data must come in groups of five")
	var out []decodedToken
	var line, char uint32
	for i := 0; i < len(raw); i += 5 {
		if raw[i] == 0 {
			char += raw[i+1]
		} else {
			line += raw[i]
			char = raw[i+1]
		}
		out = append(out, decodedToken{
			Line:        line + 1,
			Char:        char + 1,
			Length:      raw[i+2],
			Type:        SemanticTokenTypes[raw[i+3]],
			Declaration: raw[i+4]&1 != 0,
		})
	}
	return out
}

func TestDiagnosticsError(t *testing.T) {
	diags := Diagnostics("bad.g", "%%\ns: 'a' 'b' { erase($2, $1); };\n%%\n%%\n%%\n")
	require.Len(t, diags, 1)
	d := diags[0]
	assert.Equal(t, protocol.DiagnosticSeverityError, *d.Severity)
	assert.Equal(t, errors.ErrorEndpointOrder, d.Code.Value)
	assert.Equal(t, protocol.Position{Line: 1, Character: 19}, d.Range.Start)
	assert.Equal(t, diagnosticSource, *d.Source)
}

func TestDiagnosticsWarnings(t *testing.T) {
	diags := Diagnostics("warn.g", "%%\ne: e '+' e | 'n';\n%%\n%%\n%%\n")
	require.NotEmpty(t, diags)
	assert.Equal(t, protocol.DiagnosticSeverityWarning, *diags[0].Severity)
	assert.Equal(t, errors.WarningConflict, diags[0].Code.Value)
}

func TestDiagnosticsClean(t *testing.T) {
	diags := Diagnostics("sum.g", sumConfig)
	assert.NotNil(t, diags)
	assert.Empty(t, diags)
}

func TestConvertDiagnosticSuggestions(t *testing.T) {
	d := ConvertDiagnostic(errors.CompilerError{
		Level:       errors.Warning,
		Message:     "unused token",
		Length:      3,
		Suggestions: []errors.Suggestion{{Message: "remove it"}},
	})
	assert.Equal(t, "unused token\nhelp: remove it", d.Message)
	assert.Equal(t, protocol.Range{End: protocol.Position{Character: 3}}, d.Range)
	assert.Nil(t, d.Code)
}

func TestDidOpenPublishesDiagnostics(t *testing.T) {
	h := NewHandler()
	var published *protocol.PublishDiagnosticsParams
	ctx := &glsp.Context{Notify: func(method string, params any) {
		assert.Equal(t, protocol.ServerTextDocumentPublishDiagnostics, method)
		published = params.(*protocol.PublishDiagnosticsParams)
	}}

	uri := "file:///tmp/bad.g"
	err := h.TextDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, Text: "%%\ns: 'a' { match = $3; };\n%%\n%%\n%%\n"},
	})
	require.NoError(t, err)
	require.NotNil(t, published)
	assert.Equal(t, uri, published.URI)
	require.Len(t, published.Diagnostics, 1)

	err = h.TextDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: sumConfig}},
	})
	require.NoError(t, err)
	assert.Empty(t, published.Diagnostics)

	require.NoError(t, h.TextDocumentDidClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	}))
	assert.Empty(t, h.configs)
}

func TestSemanticTokensFull(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sum.g")
	require.NoError(t, os.WriteFile(path, []byte(sumConfig), 0o644))

	h := NewHandler()
	tokens, err := h.TextDocumentSemanticTokensFull(&glsp.Context{}, &protocol.SemanticTokensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file://" + filepath.ToSlash(path)},
	})
	require.NoError(t, err)

	decoded := decode(t, tokens.Data)
	var types []string
	for _, tok := range decoded {
		types = append(types, tok.Type)
	}
	assert.Equal(t, []string{"keyword", "type", "function", "type", "string", "type", "regexp", "type"}, types)

	assert.Equal(t, uint32(1), decoded[0].Line)
	assert.Equal(t, uint32(6), decoded[0].Length)
	assert.True(t, decoded[1].Declaration, "%token argument")
	assert.True(t, decoded[2].Declaration, "rule left-hand side")
	assert.False(t, decoded[3].Declaration)
	assert.Equal(t, uint32(6), decoded[6].Line)
	assert.Equal(t, uint32(6), decoded[6].Length)
}
