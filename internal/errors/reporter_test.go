package errors

import (
	"fmt"
	"sync"
	"testing"

	"contractc/internal/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pos(line, col int) ast.Position {
	return ast.Position{Filename: "test.sol", Line: line, Column: col}
}

func TestErrorReporter(t *testing.T) {
	source := `contract Base {
    function foo() public {}
}
contract Derived is Base {
    function foo() public {}
}`

	reporter := NewErrorReporter("test.sol", source)

	err := NewSemanticError(ErrorNotVirtual, "function 'foo' overrides function which is not virtual", pos(5, 5), pos(5, 26)).
		WithNote("previous definition of function 'foo'", pos(2, 5), pos(2, 26)).
		Build()
	formatted := reporter.FormatError(err)

	assert.Contains(t, formatted, "error["+ErrorNotVirtual+"]")
	assert.Contains(t, formatted, "overrides function which is not virtual")
	assert.Contains(t, formatted, "test.sol:5:5")
	assert.Contains(t, formatted, "note:")
	assert.Contains(t, formatted, "previous definition of function 'foo'")
	assert.Contains(t, formatted, "test.sol:2:5")
}

func TestSpanFormat(t *testing.T) {
	err := NewSemanticError(ErrorCyclicBase, "cyclic", pos(3, 10), pos(4, 2)).
		WithNote("here", pos(1, 1), pos(1, 5)).
		Build()

	assert.Equal(t, "3:10-4:2", err.Span())
	assert.Equal(t, "1:1-1:5", err.Notes[0].Span())
	assert.Equal(t, "error (3:10-4:2): cyclic", err.Error())

	// a missing end collapses to the start
	single := NewSemanticError(ErrorSyntax, "bad", pos(2, 3), ast.Position{}).Build()
	assert.Equal(t, "2:3-2:3", single.Span())
}

func TestUndefinedNameSuggestions(t *testing.T) {
	ident := &ast.Ident{Pos: pos(1, 5), EndPos: pos(1, 11), Value: "balace"}

	err := UndefinedName("balace", ident, []string{"balance", "owner"})
	assert.Equal(t, ErrorUndefinedName, err.Code)
	assert.Contains(t, err.Message, "balace")
	require.Len(t, err.Suggestions, 1)
	assert.Contains(t, err.Suggestions[0].Message, "did you mean 'balance'")

	err = UndefinedName("xyzzy", ident, []string{"balance"})
	assert.Empty(t, err.Suggestions)
}

func TestDuplicateDeclarationNote(t *testing.T) {
	first := &ast.Ident{Pos: pos(2, 10), EndPos: pos(2, 13), Value: "foo"}
	second := &ast.Ident{Pos: pos(5, 10), EndPos: pos(5, 13), Value: "foo"}

	err := DuplicateDeclaration("'foo' is already defined as a function", second, first)
	assert.Equal(t, ErrorDuplicateDeclaration, err.Code)
	require.Len(t, err.Notes, 1)
	assert.Equal(t, "previous definition of 'foo'", err.Notes[0].Message)
	assert.Equal(t, 2, err.Notes[0].Position.Line)
}

func TestSinkSortsAndDeduplicates(t *testing.T) {
	sink := NewSink()
	sink.Add(NewSemanticError(ErrorCyclicBase, "b", pos(4, 1), pos(4, 2)).Build())
	sink.Add(NewSemanticWarning(WarningUnusedStorage, "a", pos(1, 1), pos(1, 2)).Build())
	sink.Add(NewSemanticError(ErrorCyclicBase, "b", pos(4, 1), pos(4, 2)).Build())

	diags := sink.Diagnostics()
	require.Len(t, diags, 2)
	assert.Equal(t, "a", diags[0].Message)
	assert.Equal(t, "b", diags[1].Message)
	assert.True(t, sink.HasErrors())
	assert.Len(t, sink.Errors(), 1)
	assert.Len(t, sink.Warnings(), 1)
}

func TestSinkConcurrentAppendKeepsNotesTogether(t *testing.T) {
	sink := NewSink()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sink.Add(NewSemanticError(ErrorDuplicateDeclaration, fmt.Sprintf("dup %d", i), pos(i+1, 1), pos(i+1, 4)).
				WithNote(fmt.Sprintf("previous %d", i), pos(i+1, 8), pos(i+1, 9)).
				Build())
		}(i)
	}
	wg.Wait()

	diags := sink.Diagnostics()
	require.Len(t, diags, 50)
	for _, d := range diags {
		require.Len(t, d.Notes, 1)
		assert.Equal(t, d.Position.Line, d.Notes[0].Position.Line)
		assert.Equal(t, "previous "+d.Message[len("dup "):], d.Notes[0].Message)
	}
}

func TestWarningClassification(t *testing.T) {
	assert.True(t, IsWarning(WarningMutability))
	assert.False(t, IsWarning(ErrorCyclicBase))
	assert.Equal(t, "Inheritance", GetErrorCategory(ErrorCyclicBase))
	assert.Equal(t, "Call Safety", GetErrorCategory(ErrorAmbiguousAccounts))
	assert.Equal(t, "Encoding", GetErrorCategory(ErrorSelectorCollision))
	assert.Equal(t, "Warning", GetErrorCategory(WarningUnusedStorage))
	assert.NotEqual(t, "Unknown error code", GetErrorDescription(ErrorMangledCollision))
}
