package errors

import (
	"fmt"
	"strings"

	"contractc/internal/ast"
	"github.com/fatih/color"
)

// ErrorLevel represents the severity of an error
type ErrorLevel string

const (
	Error   ErrorLevel = "error"
	Warning ErrorLevel = "warning"
	Info    ErrorLevel = "info"
)

// CompilerError represents a structured diagnostic with a primary span and located notes
type CompilerError struct {
	Level       ErrorLevel
	Code        string       // Error code like E0001
	Message     string       // Primary error message
	Position    ast.Position // Start of the primary span
	EndPosition ast.Position // End of the primary span
	Suggestions []Suggestion // Suggested fixes
	Notes       []Note       // Secondary spans, usually a conflicting declaration
	HelpText    string       // Help text for the error
}

// Note is a secondary (span, message) pair attached to a diagnostic
type Note struct {
	Message     string
	Position    ast.Position
	EndPosition ast.Position
}

// Suggestion represents a suggested fix
type Suggestion struct {
	Message     string
	Replacement string
}

// Span renders the primary span as line:col-line:col
func (e CompilerError) Span() string {
	return formatSpan(e.Position, e.EndPosition)
}

// Span renders the note span as line:col-line:col
func (n Note) Span() string {
	return formatSpan(n.Position, n.EndPosition)
}

func (e CompilerError) Error() string {
	return fmt.Sprintf("%s (%s): %s", e.Level, e.Span(), e.Message)
}

// IsError reports whether the diagnostic blocks code generation
func (e CompilerError) IsError() bool {
	return e.Level == Error
}

func formatSpan(start, end ast.Position) string {
	if end.Line == 0 {
		end = start
	}
	return fmt.Sprintf("%d:%d-%d:%d", start.Line, start.Column, end.Line, end.Column)
}

// ErrorReporter handles consistent error formatting and suggestions
type ErrorReporter struct {
	filename string
	source   string
	lines    []string
}

// NewErrorReporter creates a new error reporter for a file
func NewErrorReporter(filename, source string) *ErrorReporter {
	return &ErrorReporter{
		filename: filename,
		source:   source,
		lines:    strings.Split(source, "\n"),
	}
}

// FormatError formats a compiler error with Rust-like styling, notes and suggestions
func (er *ErrorReporter) FormatError(err CompilerError) string {
	var result strings.Builder

	levelColor := er.getLevelColor(err.Level)
	dim := color.New(color.Faint).SprintFunc()

	// Header: error[E0001]: message
	if err.Code != "" {
		result.WriteString(fmt.Sprintf("%s[%s]: %s\n",
			levelColor(string(err.Level)), err.Code, err.Message))
	} else {
		result.WriteString(fmt.Sprintf("%s: %s\n",
			levelColor(string(err.Level)), err.Message))
	}

	width := er.getLineNumberWidth(err.Position.Line)
	for _, note := range err.Notes {
		width = max(width, er.getLineNumberWidth(note.Position.Line))
	}
	indent := strings.Repeat(" ", width)

	result.WriteString(fmt.Sprintf("%s %s %s:%d:%d\n",
		indent, dim("-->"), er.filename, err.Position.Line, err.Position.Column))
	result.WriteString(fmt.Sprintf("%s %s\n", indent, dim("│")))
	er.writeSnippet(&result, width, err.Position, err.EndPosition, err.Level)

	for _, note := range err.Notes {
		noteColor := color.New(color.FgBlue).SprintFunc()
		result.WriteString(fmt.Sprintf("%s %s %s %s\n",
			indent, dim("│"), noteColor("note:"), note.Message))
		if note.Position.Line > 0 {
			result.WriteString(fmt.Sprintf("%s %s %s:%d:%d\n",
				indent, dim("-->"), er.filename, note.Position.Line, note.Position.Column))
			er.writeSnippet(&result, width, note.Position, note.EndPosition, Info)
		}
	}

	if len(err.Suggestions) > 0 {
		suggestionColor := color.New(color.FgCyan).SprintFunc()
		result.WriteString(fmt.Sprintf("%s %s\n", indent, dim("│")))
		for i, suggestion := range err.Suggestions {
			if i == 0 {
				result.WriteString(fmt.Sprintf("%s %s %s: %s\n",
					indent, suggestionColor("help"), suggestionColor("try"), suggestion.Message))
			} else {
				result.WriteString(fmt.Sprintf("%s %s %s\n",
					indent, suggestionColor("    "), suggestion.Message))
			}
			if suggestion.Replacement != "" {
				result.WriteString(fmt.Sprintf("%s %s %s\n",
					indent, suggestionColor("│"), suggestionColor(suggestion.Replacement)))
			}
		}
	}

	if err.HelpText != "" {
		helpColor := color.New(color.FgGreen).SprintFunc()
		result.WriteString(fmt.Sprintf("%s %s %s %s\n",
			indent, dim("│"), helpColor("help:"), err.HelpText))
	}

	result.WriteString("\n")
	return result.String()
}

// writeSnippet prints the source line of a span with an underline marker
func (er *ErrorReporter) writeSnippet(result *strings.Builder, width int, start, end ast.Position, level ErrorLevel) {
	if start.Line <= 0 || start.Line > len(er.lines) {
		return
	}
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	indent := strings.Repeat(" ", width)

	lineContent := er.lines[start.Line-1]
	result.WriteString(fmt.Sprintf("%s %s %s\n",
		bold(fmt.Sprintf("%*d", width, start.Line)), dim("│"), lineContent))

	length := 1
	if end.Line == start.Line && end.Column > start.Column {
		length = end.Column - start.Column
	} else if end.Line > start.Line {
		length = max(1, len(lineContent)-start.Column+1)
	}
	result.WriteString(fmt.Sprintf("%s %s %s\n",
		indent, dim("│"), er.createMarker(start.Column, length, level)))
}

// getLevelColor returns the appropriate color function for an error level
func (er *ErrorReporter) getLevelColor(level ErrorLevel) func(...interface{}) string {
	switch level {
	case Error:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case Warning:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	case Info:
		return color.New(color.FgBlue, color.Bold).SprintFunc()
	default:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	}
}

// createMarker creates the underline marker for errors
func (er *ErrorReporter) createMarker(column, length int, level ErrorLevel) string {
	if length <= 0 {
		length = 1
	}

	spaces := strings.Repeat(" ", max(0, column-1))
	markerChar := "^"
	if level == Info {
		markerChar = "-"
	}

	return spaces + er.getLevelColor(level)(strings.Repeat(markerChar, length))
}

// getLineNumberWidth calculates the width needed for line numbers
func (er *ErrorReporter) getLineNumberWidth(line int) int {
	width := len(fmt.Sprintf("%d", line))
	if width < 3 {
		width = 3 // minimum width for visual alignment
	}
	return width
}
