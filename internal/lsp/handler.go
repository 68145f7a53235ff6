// Package lsp serves gram-grep configuration files over the language
// server protocol: diagnostics from the compiler and semantic tokens.
package lsp

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"gramgrep/internal/ast"
	"gramgrep/internal/parser"
)

var log = commonlog.GetLogger("gramgrep.lsp")

var SemanticTokenTypes = []string{
	"keyword",
	"type",
	"function",
	"variable",
	"string",
	"regexp",
}

var SemanticTokenModifiers = []string{
	"declaration",
}

// Handler keeps the parse of each open configuration.
type Handler struct {
	mu      sync.RWMutex
	configs map[string]*ast.Config
}

func NewHandler() *Handler {
	return &Handler{configs: make(map[string]*ast.Config)}
}

func (h *Handler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Info("initialize")
	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
			SemanticTokensProvider: &protocol.SemanticTokensOptions{
				Legend: protocol.SemanticTokensLegend{
					TokenTypes:     SemanticTokenTypes,
					TokenModifiers: SemanticTokenModifiers,
				},
				Full: ptrBool(true),
			},
		},
	}, nil
}

func (h *Handler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (h *Handler) Shutdown(ctx *glsp.Context) error {
	log.Info("shutdown")
	return nil
}

func (h *Handler) SetTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (h *Handler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}
	h.update(ctx, params.TextDocument.URI, path, params.TextDocument.Text)
	return nil
}

// TextDocumentDidChange expects full-document sync; the last change wins.
func (h *Handler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			h.update(ctx, params.TextDocument.URI, path, c.Text)
		case protocol.TextDocumentContentChangeEvent:
			h.update(ctx, params.TextDocument.URI, path, c.Text)
		}
	}
	return nil
}

func (h *Handler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.configs, path)
	return nil
}

func (h *Handler) TextDocumentSemanticTokensFull(ctx *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	h.mu.RLock()
	cfg, ok := h.configs[path]
	h.mu.RUnlock()
	if !ok {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", path, err)
		}
		cfg = h.update(ctx, params.TextDocument.URI, path, string(content))
	}

	return &protocol.SemanticTokens{Data: encodeTokens(collectSemanticTokens(cfg))}, nil
}

// update reparses content, stores it and publishes diagnostics.
func (h *Handler) update(ctx *glsp.Context, uri protocol.DocumentUri, path, content string) *ast.Config {
	cfg, _, _ := parser.ParseSource(path, content)

	h.mu.Lock()
	if cfg != nil {
		h.configs[path] = cfg
	} else {
		delete(h.configs, path)
	}
	h.mu.Unlock()

	diagnostics := Diagnostics(path, content)
	log.Debugf("%s: %d diagnostics", path, len(diagnostics))
	if ctx != nil && ctx.Notify != nil {
		ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
			URI:         uri,
			Diagnostics: diagnostics,
		})
	}
	return cfg
}

func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}

	path := u.Path

	// /C:/dir on Windows.
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}

	return filepath.FromSlash(path), nil
}

func ptrBool(b bool) *bool {
	return &b
}

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
