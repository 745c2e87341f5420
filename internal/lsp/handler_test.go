package lsp_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"contractc/internal/errors"
	"contractc/internal/lsp"
	"contractc/internal/target"
)

const counterURI = "file:///work/counter.sol"

const counterSource = `contract Counter {
    uint64 public count;
    function bump(uint64 by) public {
        count = count + by;
    }
}
`

type published struct {
	notifications []*protocol.PublishDiagnosticsParams
}

func (p *published) context() *glsp.Context {
	return &glsp.Context{
		Notify: func(method string, params any) {
			if method == protocol.ServerTextDocumentPublishDiagnostics {
				p.notifications = append(p.notifications, params.(*protocol.PublishDiagnosticsParams))
			}
		},
	}
}

func (p *published) last(t *testing.T) *protocol.PublishDiagnosticsParams {
	require.NotEmpty(t, p.notifications, "no diagnostics were published")
	return p.notifications[len(p.notifications)-1]
}

func open(t *testing.T, h *lsp.ContractHandler, ctx *glsp.Context, uri, text string) {
	err := h.TextDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: "solidity", Version: 1, Text: text},
	})
	require.NoError(t, err)
}

func TestTextDocumentSemanticTokensFull(t *testing.T) {
	handler := lsp.NewContractHandler(target.Default(target.EVM))
	sink := &published{}
	ctx := sink.context()
	open(t, handler, ctx, counterURI, counterSource)

	tokens, err := handler.TextDocumentSemanticTokensFull(ctx, &protocol.SemanticTokensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: counterURI},
	})
	require.NoError(t, err)
	require.NotNil(t, tokens)

	decoded, err := decodeSemanticTokens(tokens.Data)
	require.NoError(t, err)
	require.Len(t, decoded, 9)

	assertToken(t, &decoded[0], 1, 10, 7, "class", []string{"declaration"})
	assertToken(t, &decoded[1], 2, 5, 6, "type", nil)
	assertToken(t, &decoded[2], 2, 19, 5, "property", []string{"declaration"})
	assertToken(t, &decoded[3], 3, 14, 4, "function", []string{"declaration"})
	assertToken(t, &decoded[4], 3, 19, 6, "type", nil)
	assertToken(t, &decoded[5], 3, 26, 2, "parameter", []string{"declaration"})
	assertToken(t, &decoded[6], 4, 9, 5, "variable", nil)
	assertToken(t, &decoded[7], 4, 17, 5, "variable", nil)
	assertToken(t, &decoded[8], 4, 25, 2, "variable", nil)
}

func TestDiagnosticsArePublished(t *testing.T) {
	handler := lsp.NewContractHandler(target.Default(target.EVM))
	sink := &published{}
	ctx := sink.context()

	open(t, handler, ctx, "file:///work/dup.sol", `contract A {
    uint64 x;
    bool x;
}
`)

	params := sink.last(t)
	assert.Equal(t, "file:///work/dup.sol", params.URI)

	var dup *protocol.Diagnostic
	for i, d := range params.Diagnostics {
		if d.Code != nil && d.Code.Value == errors.ErrorDuplicateDeclaration {
			dup = &params.Diagnostics[i]
		}
	}
	require.NotNil(t, dup, "duplicate declaration not reported: %v", params.Diagnostics)

	assert.Equal(t, protocol.DiagnosticSeverityError, *dup.Severity)
	assert.Equal(t, "contractc", *dup.Source)
	assert.Contains(t, dup.Message, "already defined")
	assert.Equal(t, uint32(2), dup.Range.Start.Line)
	assert.Equal(t, uint32(9), dup.Range.Start.Character)

	require.Len(t, dup.RelatedInformation, 1)
	related := dup.RelatedInformation[0]
	assert.Equal(t, "location of previous definition", related.Message)
	assert.Equal(t, "file:///work/dup.sol", related.Location.URI)
	assert.Equal(t, uint32(1), related.Location.Range.Start.Line)
}

func TestDidChangeRecompiles(t *testing.T) {
	handler := lsp.NewContractHandler(target.Default(target.EVM))
	sink := &published{}
	ctx := sink.context()

	open(t, handler, ctx, counterURI, `contract Counter {
    function bump() public { missing = 1; }
}
`)
	assert.NotEmpty(t, errorDiagnostics(sink.last(t)))

	err := handler.TextDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument:   protocol.VersionedTextDocumentIdentifier{Version: 2, TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: counterURI}},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: counterSource}},
	})
	require.NoError(t, err)
	assert.Empty(t, errorDiagnostics(sink.last(t)))

	// rename the parameter in place
	err = handler.TextDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{Version: 3, TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: counterURI}},
		ContentChanges: []any{protocol.TextDocumentContentChangeEvent{
			Range: &protocol.Range{
				Start: protocol.Position{Line: 2, Character: 25},
				End:   protocol.Position{Line: 2, Character: 27},
			},
			Text: "amount",
		}},
	})
	require.NoError(t, err)

	errs := errorDiagnostics(sink.last(t))
	require.NotEmpty(t, errs)
	for _, e := range errs {
		assert.Equal(t, uint32(3), e.Range.Start.Line, e.Message)
	}
}

func TestDidCloseClearsDiagnostics(t *testing.T) {
	handler := lsp.NewContractHandler(target.Default(target.EVM))
	sink := &published{}
	ctx := sink.context()
	open(t, handler, ctx, counterURI, counterSource)

	err := handler.TextDocumentDidClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: counterURI},
	})
	require.NoError(t, err)
	assert.Empty(t, sink.last(t).Diagnostics)
}

func TestCompletionListsDeclarations(t *testing.T) {
	handler := lsp.NewContractHandler(target.Default(target.EVM))
	ctx := (&published{}).context()
	open(t, handler, ctx, counterURI, counterSource)

	res, err := handler.TextDocumentCompletion(ctx, &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: counterURI},
		},
	})
	require.NoError(t, err)

	var labels []string
	for _, item := range res.(*protocol.CompletionList).Items {
		labels = append(labels, item.Label)
	}
	assert.ElementsMatch(t, []string{"Counter", "bump", "count"}, labels)
}

func errorDiagnostics(params *protocol.PublishDiagnosticsParams) []protocol.Diagnostic {
	var out []protocol.Diagnostic
	for _, d := range params.Diagnostics {
		if d.Severity != nil && *d.Severity == protocol.DiagnosticSeverityError {
			out = append(out, d)
		}
	}
	return out
}

type DecodedToken struct {
	Index     int
	Line      uint32
	Char      uint32
	Length    uint32
	Type      string
	Modifiers []string
}

func decodeSemanticTokens(raw []uint32) ([]DecodedToken, error) {
	if len(raw)%5 != 0 {
		return nil, fmt.Errorf("raw token data length %d is not a multiple of 5", len(raw))
	}

	var (
		decoded []DecodedToken
		line    uint32
		char    uint32
	)

	for i := 0; i < len(raw); i += 5 {
		deltaLine := raw[i]
		deltaStart := raw[i+1]
		length := raw[i+2]
		tokenTypeIdx := raw[i+3]
		tokenModMask := raw[i+4]

		if deltaLine == 0 {
			char += deltaStart
		} else {
			line += deltaLine
			char = deltaStart
		}

		var modifiers []string
		for j, name := range lsp.SemanticTokenModifiers {
			if tokenModMask&(1<<j) != 0 {
				modifiers = append(modifiers, name)
			}
		}

		decoded = append(decoded, DecodedToken{
			Index:     i / 5,
			Line:      line + 1,
			Char:      char + 1,
			Length:    length,
			Type:      lsp.SemanticTokenTypes[tokenTypeIdx],
			Modifiers: modifiers,
		})
	}

	return decoded, nil
}

func assertToken(t *testing.T, token *DecodedToken, expectedLine, expectedChar, expectedLength uint32, expectedType string, expectedModifiers []string) {
	require.Equal(t, expectedLine, token.Line, "line mismatch (expected line %d)", expectedLine)
	require.Equal(t, expectedChar, token.Char, "char mismatch (expected char %d)", expectedChar)
	require.Equal(t, expectedLength, token.Length, "length mismatch")
	require.Equal(t, expectedType, token.Type, "type mismatch")
	require.ElementsMatch(t, expectedModifiers, token.Modifiers, "modifiers mismatch")
}
