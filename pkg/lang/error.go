package lang

import "fmt"

// Span is a half-open [Start,End) byte range into the text a SyntaxError was
// raised against.
type Span struct {
	start, end int
}

// NewSpan constructs a Span.
func NewSpan(start, end int) Span { return Span{start, end} }

// Start returns the span's inclusive start offset.
func (s Span) Start() int { return s.start }

// End returns the span's exclusive end offset.
func (s Span) End() int { return s.end }

// SyntaxError is a structured parse error, in the same spirit as the
// teacher's pkg/sexp.SyntaxError: a plain struct carrying a message and a
// location rather than a bare string.
type SyntaxError struct {
	span Span
	msg  string
}

// Span returns where in the input this error was raised.
func (e *SyntaxError) Span() Span { return e.span }

// Message returns the error's plain-text message.
func (e *SyntaxError) Message() string { return e.msg }

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.span.start, e.span.end, e.msg)
}
