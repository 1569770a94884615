// Package lsp serves parse diagnostics and completions over the
// Language Server Protocol. Every line of an open document is parsed
// with the configured grammar; lines that fail produce a diagnostic at
// the furthest token reached, and completion offers the phrases the
// grammar expects at the cursor.
package lsp

import (
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"

	"github.com/kitt-ai/parsetron/grammar"
	"github.com/kitt-ai/parsetron/parse"
)

const serverName = "parsetron"

// Server is a stdio LSP server bound to one grammar.
type Server struct {
	parser  *parse.RobustParser
	handler protocol.Handler
	server  *server.Server
	version string
	docs    map[protocol.DocumentUri]string
}

// NewServer creates an LSP server that parses documents with the given
// grammar.
func NewServer(g *grammar.Grammar, version string) *Server {
	s := &Server{
		parser:  parse.NewRobustParser(g),
		version: version,
		docs:    make(map[protocol.DocumentUri]string),
	}

	s.handler = protocol.Handler{
		Initialize:             s.initialize,
		Initialized:            s.initialized,
		Shutdown:               s.shutdown,
		SetTrace:               s.setTrace,
		TextDocumentDidOpen:    s.textDocumentDidOpen,
		TextDocumentDidChange:  s.textDocumentDidChange,
		TextDocumentDidClose:   s.textDocumentDidClose,
		TextDocumentDidSave:    s.textDocumentDidSave,
		TextDocumentCompletion: s.textDocumentCompletion,
	}

	s.server = server.NewServer(&s.handler, serverName, false)

	return s
}

// RunStdio serves LSP over stdin/stdout until the client disconnects.
func (s *Server) RunStdio() error {
	return s.server.RunStdio()
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := s.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.docs[params.TextDocument.URI] = params.TextDocument.Text
	s.publishDiagnostics(ctx, params.TextDocument.URI)
	return nil
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) > 0 {
		change := params.ContentChanges[len(params.ContentChanges)-1]
		if whole, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			s.docs[params.TextDocument.URI] = whole.Text
			s.publishDiagnostics(ctx, params.TextDocument.URI)
		}
	}
	return nil
}

func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	delete(s.docs, params.TextDocument.URI)
	return nil
}

func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if params.Text != nil {
		s.docs[params.TextDocument.URI] = *params.Text
		s.publishDiagnostics(ctx, params.TextDocument.URI)
	}
	return nil
}

// publishDiagnostics parses every line and reports the ones that fail,
// anchored at the furthest token the parse reached.
func (s *Server) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri) {
	content := s.docs[uri]
	diagnostics := make([]protocol.Diagnostic, 0)
	severity := protocol.DiagnosticSeverityError
	source := serverName

	for lineNo, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		_, _, err := s.parser.Parse(line)
		failure, ok := err.(*parse.ParseFailure)
		if !ok {
			continue
		}
		start, end := tokenRange(line, failure.Furthest)
		message := "cannot parse line"
		if len(failure.Expected) > 0 {
			message = "expected " + strings.Join(failure.Expected, ", ")
		}
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: uint32(lineNo), Character: uint32(start)},
				End:   protocol.Position{Line: uint32(lineNo), Character: uint32(end)},
			},
			Severity: &severity,
			Source:   &source,
			Message:  message,
		})
	}

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func (s *Server) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	content, ok := s.docs[params.TextDocument.URI]
	if !ok {
		return nil, nil
	}
	lines := strings.Split(content, "\n")
	lineNo := int(params.Position.Line)
	if lineNo >= len(lines) {
		return nil, nil
	}
	line := lines[lineNo]
	col := int(params.Position.Character)
	if col > len(line) {
		col = len(line)
	}

	suggestions := s.parser.Suggest(line[:col])
	if len(suggestions) == 0 {
		return nil, nil
	}

	kind := protocol.CompletionItemKindKeyword
	items := make([]protocol.CompletionItem, 0, len(suggestions))
	for _, word := range suggestions {
		insert := word
		items = append(items, protocol.CompletionItem{
			Label:      word,
			Kind:       &kind,
			InsertText: &insert,
		})
	}
	return items, nil
}

// tokenRange maps a token index to character offsets in the line.
func tokenRange(line string, token int) (int, int) {
	start := 0
	index := 0
	for start < len(line) {
		for start < len(line) && isSpace(line[start]) {
			start++
		}
		end := start
		for end < len(line) && !isSpace(line[end]) {
			end++
		}
		if start == end {
			break
		}
		if index == token {
			return start, end
		}
		index++
		start = end
	}
	return len(line), len(line)
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t'
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
