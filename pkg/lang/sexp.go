// Package lang is the textual surface syntax the CLI reads constraint sets
// from: a small s-expression language over sequence terms, disequations,
// not-contains constraints, regex membership, and length bounds. It is
// adapted from the teacher's own pkg/sexp parser (the corset frontend's
// lisp reader), extended with a quoted-string token for sequence literals
// that the corset grammar never needed.
package lang

// SExp is either a List of zero or more SExp, a Symbol, or a quoted string
// literal.
type SExp interface {
	// IsList reports whether this node is a List.
	IsList() bool
	// IsSymbol reports whether this node is a Symbol.
	IsSymbol() bool
	// String renders this node back to surface syntax.
	String() string
}

// List is a parenthesised sequence of sub-expressions.
type List struct {
	Elements []SExp
}

var _ SExp = (*List)(nil)

// IsList implements SExp.
func (l *List) IsList() bool { return true }

// IsSymbol implements SExp.
func (l *List) IsSymbol() bool { return false }

// Len returns the number of elements in this list.
func (l *List) Len() int { return len(l.Elements) }

// String implements SExp.
func (l *List) String() string {
	s := "("

	for i, e := range l.Elements {
		if i != 0 {
			s += " "
		}

		s += e.String()
	}

	return s + ")"
}

// MatchSymbols reports whether this list has at least n elements whose
// first len(symbols) entries are symbols matching the given strings in
// order.
func (l *List) MatchSymbols(n int, symbols ...string) bool {
	if len(l.Elements) < n || len(symbols) > n {
		return false
	}

	for i, want := range symbols {
		sym, ok := l.Elements[i].(*Symbol)
		if !ok || sym.Value != want {
			return false
		}
	}

	return true
}

// Symbol is a bare, unquoted token: a variable name, keyword, or operator.
type Symbol struct {
	Value string
}

var _ SExp = (*Symbol)(nil)

// IsList implements SExp.
func (*Symbol) IsList() bool { return false }

// IsSymbol implements SExp.
func (*Symbol) IsSymbol() bool { return true }

// String implements SExp.
func (s *Symbol) String() string { return s.Value }

// StrLit is a double-quoted token, carrying a sequence literal verbatim
// (including characters - spaces, parentheses - that would otherwise be
// token delimiters).
type StrLit struct {
	Value string
}

var _ SExp = (*StrLit)(nil)

// IsList implements SExp.
func (*StrLit) IsList() bool { return false }

// IsSymbol implements SExp.
func (*StrLit) IsSymbol() bool { return false }

// String implements SExp.
func (s *StrLit) String() string { return `"` + s.Value + `"` }
