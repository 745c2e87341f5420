package errors

import (
	"fmt"
	"sort"
	"strings"

	"contractc/internal/ast"
	"github.com/agext/levenshtein"
)

// SemanticErrorBuilder provides a fluent interface for creating diagnostics with notes
type SemanticErrorBuilder struct {
	err CompilerError
}

// NewSemanticError creates a new semantic error builder
func NewSemanticError(code, message string, pos, end ast.Position) *SemanticErrorBuilder {
	return &SemanticErrorBuilder{
		err: CompilerError{
			Level:       Error,
			Code:        code,
			Message:     message,
			Position:    pos,
			EndPosition: end,
		},
	}
}

// NewSemanticWarning creates a new semantic warning builder
func NewSemanticWarning(code, message string, pos, end ast.Position) *SemanticErrorBuilder {
	return &SemanticErrorBuilder{
		err: CompilerError{
			Level:       Warning,
			Code:        code,
			Message:     message,
			Position:    pos,
			EndPosition: end,
		},
	}
}

// At builds an error spanning a node
func At(code, message string, node ast.Node) *SemanticErrorBuilder {
	return NewSemanticError(code, message, node.NodePos(), node.NodeEndPos())
}

// WarnAt builds a warning spanning a node
func WarnAt(code, message string, node ast.Node) *SemanticErrorBuilder {
	return NewSemanticWarning(code, message, node.NodePos(), node.NodeEndPos())
}

// WithSuggestion adds a suggestion to the error
func (b *SemanticErrorBuilder) WithSuggestion(message string) *SemanticErrorBuilder {
	b.err.Suggestions = append(b.err.Suggestions, Suggestion{Message: message})
	return b
}

// WithReplacement adds a suggestion with replacement text
func (b *SemanticErrorBuilder) WithReplacement(message, replacement string) *SemanticErrorBuilder {
	b.err.Suggestions = append(b.err.Suggestions, Suggestion{
		Message:     message,
		Replacement: replacement,
	})
	return b
}

// WithNote adds a located note to the error
func (b *SemanticErrorBuilder) WithNote(message string, pos, end ast.Position) *SemanticErrorBuilder {
	b.err.Notes = append(b.err.Notes, Note{Message: message, Position: pos, EndPosition: end})
	return b
}

// WithNoteAt adds a note spanning a node
func (b *SemanticErrorBuilder) WithNoteAt(message string, node ast.Node) *SemanticErrorBuilder {
	return b.WithNote(message, node.NodePos(), node.NodeEndPos())
}

// WithHelp adds help text to the error
func (b *SemanticErrorBuilder) WithHelp(help string) *SemanticErrorBuilder {
	b.err.HelpText = help
	return b
}

// Build returns the completed compiler error
func (b *SemanticErrorBuilder) Build() CompilerError {
	return b.err
}

// Common constructors

// UndefinedName creates an error for unresolved identifiers with suggestions
func UndefinedName(name string, node ast.Node, candidates []string) CompilerError {
	builder := At(ErrorUndefinedName, fmt.Sprintf("'%s' not found", name), node)

	similar := findSimilarNames(name, candidates)
	switch len(similar) {
	case 0:
	case 1:
		builder = builder.WithSuggestion(fmt.Sprintf("did you mean '%s'?", similar[0]))
	default:
		builder = builder.WithSuggestion(fmt.Sprintf("did you mean one of: '%s'?", strings.Join(similar, "', '")))
	}

	return builder.Build()
}

// DuplicateDeclaration creates an error pointing at both declarations
func DuplicateDeclaration(message string, node, previous ast.Node) CompilerError {
	return At(ErrorDuplicateDeclaration, message, node).
		WithNoteAt(fmt.Sprintf("previous definition of '%s'", declName(previous)), previous).
		Build()
}

// TypeMismatch creates an error for failed implicit conversions
func TypeMismatch(expected, actual string, node ast.Node) CompilerError {
	builder := At(ErrorTypeMismatch, fmt.Sprintf("conversion from %s to %s not possible", actual, expected), node)
	if isNumericType(expected) && isNumericType(actual) {
		builder = builder.WithSuggestion(fmt.Sprintf("use an explicit conversion '%s(...)'", expected))
	}
	return builder.Build()
}

// InvalidArguments creates an error for wrong argument counts
func InvalidArguments(kind string, expected, actual int, node ast.Node) CompilerError {
	return At(ErrorInvalidArguments,
		fmt.Sprintf("%s expects %d arguments, %d provided", kind, expected, actual), node).
		Build()
}

// SyntaxError creates a diagnostic for a parse failure
func SyntaxError(message string, pos ast.Position) CompilerError {
	return NewSemanticError(ErrorSyntax, message, pos, pos).Build()
}

func declName(node ast.Node) string {
	switch n := node.(type) {
	case *ast.Ident:
		return n.Value
	case *ast.Function:
		return n.Name.Value
	case *ast.Variable:
		return n.Name.Value
	case *ast.Contract:
		return n.Name.Value
	case *ast.Struct:
		return n.Name.Value
	case *ast.Param:
		if n.Name != nil {
			return n.Name.Value
		}
	}
	return node.String()
}

func isNumericType(typeName string) bool {
	return strings.HasPrefix(typeName, "uint") || strings.HasPrefix(typeName, "int")
}

// findSimilarNames finds names within a small edit distance of the target
func findSimilarNames(target string, candidates []string) []string {
	var similar []string
	threshold := max(2, len(target)/3)
	for _, candidate := range candidates {
		if candidate == target {
			continue
		}
		if levenshtein.Distance(target, candidate, nil) <= threshold {
			similar = append(similar, candidate)
		}
	}
	sort.Strings(similar)
	return similar
}
