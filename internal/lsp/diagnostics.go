package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"contractc/internal/ast"
	"contractc/internal/errors"
)

const diagnosticSource = "contractc"

// ConvertDiagnostics transforms compiler diagnostics into LSP diagnostics.
// Notes become related information pointing into the same document.
func ConvertDiagnostics(uri protocol.DocumentUri, diags []errors.CompilerError) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		diagnostic := protocol.Diagnostic{
			Range:    toRange(d.Position, d.EndPosition),
			Severity: ptrSeverity(toSeverity(d.Level)),
			Source:   ptrString(diagnosticSource),
			Message:  d.Message,
		}
		if d.Code != "" {
			diagnostic.Code = &protocol.IntegerOrString{Value: d.Code}
		}
		if d.HelpText != "" {
			diagnostic.Message += "\n" + d.HelpText
		}
		for _, n := range d.Notes {
			diagnostic.RelatedInformation = append(diagnostic.RelatedInformation, protocol.DiagnosticRelatedInformation{
				Location: protocol.Location{URI: uri, Range: toRange(n.Position, n.EndPosition)},
				Message:  n.Message,
			})
		}
		out = append(out, diagnostic)
	}
	return out
}

func toSeverity(level errors.ErrorLevel) protocol.DiagnosticSeverity {
	switch level {
	case errors.Warning:
		return protocol.DiagnosticSeverityWarning
	case errors.Info:
		return protocol.DiagnosticSeverityInformation
	default:
		return protocol.DiagnosticSeverityError
	}
}

// toRange converts a 1-based source span to a 0-based LSP range. A missing
// end marks a single character.
func toRange(start, end ast.Position) protocol.Range {
	r := protocol.Range{Start: toPosition(start)}
	if end.Line == 0 || end.Before(start) {
		r.End = protocol.Position{Line: r.Start.Line, Character: r.Start.Character + 1}
	} else {
		r.End = toPosition(end)
	}
	return r
}

func toPosition(p ast.Position) protocol.Position {
	return protocol.Position{
		Line:      uint32(max(p.Line-1, 0)),
		Character: uint32(max(p.Column-1, 0)),
	}
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func ptrString(s string) *string {
	return &s
}
