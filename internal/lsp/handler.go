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

	"contractc/internal/ast"
	"contractc/internal/compiler"
	"contractc/internal/target"
)

var log = commonlog.GetLogger("contractc.lsp")

// SemanticTokenTypes is the token type legend advertised to clients
var SemanticTokenTypes = []string{
	"namespace",
	"type",
	"class",
	"interface",
	"struct",
	"function",
	"variable",
	"parameter",
	"property",
	"keyword",
	"number",
	"string",
	"decorator",
}

// SemanticTokenModifiers is the modifier legend; bit i of a token's modifier
// mask selects entry i
var SemanticTokenModifiers = []string{
	"declaration",
	"definition",
	"readonly",
	"static",
	"deprecated",
	"abstract",
}

type document struct {
	text   string
	result *compiler.Result
}

// ContractHandler implements the LSP server handlers. Every open document is
// compiled on open and on change, for the configured target.
type ContractHandler struct {
	mu        sync.RWMutex
	config    target.Config
	documents map[protocol.DocumentUri]*document
}

// NewContractHandler creates a handler compiling for cfg
func NewContractHandler(cfg target.Config) *ContractHandler {
	return &ContractHandler{
		config:    cfg,
		documents: make(map[protocol.DocumentUri]*document),
	}
}

// Initialize responds to the client's initialize request and advertises the server's capabilities
func (h *ContractHandler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Info("initialize")

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
			CompletionProvider: &protocol.CompletionOptions{
				ResolveProvider: ptrBool(false),
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

func (h *ContractHandler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Info("initialized")
	return nil
}

func (h *ContractHandler) Shutdown(ctx *glsp.Context) error {
	log.Info("shutdown")
	return nil
}

func (h *ContractHandler) SetTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

// TextDocumentDidOpen compiles the opened document and publishes its diagnostics
func (h *ContractHandler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	log.Debugf("opened %s", params.TextDocument.URI)
	return h.update(ctx, params.TextDocument.URI, params.TextDocument.Text)
}

// TextDocumentDidChange applies the content changes in order, then recompiles
func (h *ContractHandler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	log.Debugf("changed %s", uri)

	h.mu.RLock()
	doc, ok := h.documents[uri]
	h.mu.RUnlock()
	text := ""
	if ok {
		text = doc.text
	}

	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			text = c.Text
		case protocol.TextDocumentContentChangeEvent:
			if c.Range == nil {
				text = c.Text
				continue
			}
			start, end := c.Range.IndexesIn(text)
			text = text[:start] + c.Text + text[end:]
		default:
			return fmt.Errorf("unsupported content change %T", change)
		}
	}
	return h.update(ctx, uri, text)
}

// TextDocumentDidClose forgets the document and clears its diagnostics
func (h *ContractHandler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	log.Debugf("closed %s", uri)

	h.mu.Lock()
	delete(h.documents, uri)
	h.mu.Unlock()

	publish(ctx, uri, []protocol.Diagnostic{})
	return nil
}

// TextDocumentCompletion offers the contracts and functions declared in the document
func (h *ContractHandler) TextDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	items := []protocol.CompletionItem{}

	h.mu.RLock()
	doc, ok := h.documents[params.TextDocument.URI]
	h.mu.RUnlock()
	if !ok {
		return &protocol.CompletionList{Items: items}, nil
	}

	seen := make(map[string]bool)
	add := func(label string, kind protocol.CompletionItemKind, detail string) {
		if label == "" || seen[label] {
			return
		}
		seen[label] = true
		items = append(items, protocol.CompletionItem{Label: label, Kind: &kind, Detail: ptrString(detail)})
	}
	for _, c := range doc.result.Unit.Contracts {
		add(c.Name.Value, protocol.CompletionItemKindClass, c.Kind.String())
		for _, f := range c.Functions {
			if f.Kind == ast.FuncFunction {
				add(f.Name.Value, protocol.CompletionItemKindFunction, "function of "+c.Name.Value)
			}
		}
		for _, v := range c.Variables {
			add(v.Name.Value, protocol.CompletionItemKindField, "state variable of "+c.Name.Value)
		}
	}

	return &protocol.CompletionList{Items: items}, nil
}

// TextDocumentSemanticTokensFull returns the semantic tokens of the whole document
func (h *ContractHandler) TextDocumentSemanticTokensFull(ctx *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	uri := params.TextDocument.URI

	h.mu.RLock()
	doc, ok := h.documents[uri]
	h.mu.RUnlock()

	if !ok {
		path, err := uriToPath(uri)
		if err != nil {
			return nil, err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", path, err)
		}
		if err := h.update(ctx, uri, string(content)); err != nil {
			return nil, err
		}
		h.mu.RLock()
		doc = h.documents[uri]
		h.mu.RUnlock()
	}

	tokens := collectSemanticTokens(doc.result.Unit)
	return &protocol.SemanticTokens{Data: encodeSemanticTokens(tokens)}, nil
}

func (h *ContractHandler) update(ctx *glsp.Context, uri protocol.DocumentUri, text string) error {
	path, err := uriToPath(uri)
	if err != nil {
		return err
	}

	res := compiler.CompileSource(path, text, h.config)

	h.mu.Lock()
	h.documents[uri] = &document{text: text, result: res}
	h.mu.Unlock()

	publish(ctx, uri, ConvertDiagnostics(uri, res.Diagnostics))
	return nil
}

// uriToPath converts a file URI to a platform-local path
func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}

	path := u.Path

	// /C:/... on windows
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}

	return filepath.FromSlash(path), nil
}

func publish(ctx *glsp.Context, uri protocol.DocumentUri, diagnostics []protocol.Diagnostic) {
	log.Debugf("publishing %d diagnostics for %s", len(diagnostics), uri)
	if ctx == nil || ctx.Notify == nil {
		return
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func ptrBool(b bool) *bool {
	return &b
}

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
