package errors

import (
	"sort"
	"sync"
)

// Sink accumulates diagnostics from every compilation phase. It is safe for
// concurrent use; each Add stores one complete diagnostic, notes included.
type Sink struct {
	mu    sync.Mutex
	diags []CompilerError
}

// NewSink creates an empty diagnostics sink
func NewSink() *Sink {
	return &Sink{}
}

// Add records a diagnostic
func (s *Sink) Add(err CompilerError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diags = append(s.diags, err)
}

// AddAll records several diagnostics as one batch
func (s *Sink) AddAll(errs []CompilerError) {
	if len(errs) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diags = append(s.diags, errs...)
}

// HasErrors reports whether any error-severity diagnostic was recorded
func (s *Sink) HasErrors() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.diags {
		if d.IsError() {
			return true
		}
	}
	return false
}

// Len returns the number of recorded diagnostics
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.diags)
}

// Diagnostics returns a sorted, de-duplicated copy of every recorded diagnostic
func (s *Sink) Diagnostics() []CompilerError {
	s.mu.Lock()
	out := make([]CompilerError, len(s.diags))
	copy(out, s.diags)
	s.mu.Unlock()

	Sort(out)
	return dedup(out)
}

// Errors returns only error-severity diagnostics, sorted
func (s *Sink) Errors() []CompilerError {
	var out []CompilerError
	for _, d := range s.Diagnostics() {
		if d.IsError() {
			out = append(out, d)
		}
	}
	return out
}

// Warnings returns only warning-severity diagnostics, sorted
func (s *Sink) Warnings() []CompilerError {
	var out []CompilerError
	for _, d := range s.Diagnostics() {
		if d.Level == Warning {
			out = append(out, d)
		}
	}
	return out
}

// Sort orders diagnostics by file, line, column and message
func Sort(diags []CompilerError) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i].Position, diags[j].Position
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return diags[i].Message < diags[j].Message
	})
}

// dedup drops diagnostics identical in level, span and message to their predecessor
func dedup(diags []CompilerError) []CompilerError {
	if len(diags) < 2 {
		return diags
	}
	out := diags[:1]
	for _, d := range diags[1:] {
		last := out[len(out)-1]
		if d.Level == last.Level && d.Message == last.Message &&
			d.Position == last.Position && d.EndPosition == last.EndPosition {
			continue
		}
		out = append(out, d)
	}
	return out
}
