// Package regexast defines the abstract syntax of regular-language
// expressions over the sequence alphabet, as accepted by membership terms
// (s ∈ R). The automaton engine (pkg/theory/automaton) compiles a Regex to
// a finite automaton; the term package (pkg/theory/term) only needs to
// carry one around.
package regexast

import "fmt"

// Regex is a closed tagged variant over the supported regular-expression
// constructs: union, intersection, complement, concatenation, Kleene star,
// character classes, and anchors. New regex kinds require coordinated
// edits here and in the automaton compiler's compile and buildNFA switches.
type Regex interface {
	// Kind identifies which variant this is.
	Kind() Kind
	// String renders this regex for diagnostics.
	String() string
}

// Kind enumerates the closed set of regex operators.
type Kind uint8

// The supported regex operator kinds.
const (
	KindEmpty Kind = iota
	KindEpsilon
	KindClass
	KindUnion
	KindInter
	KindCompl
	KindConcat
	KindStar
	KindAnchorStart
	KindAnchorEnd
)

// Empty is the regex matching no string.
type Empty struct{}

// Kind implements Regex.
func (Empty) Kind() Kind { return KindEmpty }

// String implements Regex.
func (Empty) String() string { return "∅" }

// Eps is the regex matching only the empty sequence.
type Eps struct{}

// Kind implements Regex.
func (Eps) Kind() Kind { return KindEpsilon }

// String implements Regex.
func (Eps) String() string { return "ε" }

// Class is a character class: a predicate deciding, for an alphabet
// element, whether it is accepted. Ranges are the common case and are kept
// explicit (rather than just a predicate closure) so the automaton
// compiler can complement and intersect classes without re-deriving them.
type Class struct {
	// Ranges is a set of inclusive [Lo,Hi] code-point ranges. The class
	// accepts c iff c falls in some range (Negated == false) or in none of
	// them (Negated == true).
	Ranges  []Range
	Negated bool
}

// Range is an inclusive code-point range.
type Range struct{ Lo, Hi rune }

// Kind implements Regex.
func (*Class) Kind() Kind { return KindClass }

// String implements Regex.
func (c *Class) String() string {
	s := "["
	if c.Negated {
		s += "^"
	}
	for _, r := range c.Ranges {
		if r.Lo == r.Hi {
			s += fmt.Sprintf("%c", r.Lo)
		} else {
			s += fmt.Sprintf("%c-%c", r.Lo, r.Hi)
		}
	}
	return s + "]"
}

// Accepts reports whether c is accepted by this class.
func (c *Class) Accepts(r rune) bool {
	in := false
	for _, rg := range c.Ranges {
		if r >= rg.Lo && r <= rg.Hi {
			in = true
			break
		}
	}
	if c.Negated {
		return !in
	}
	return in
}

// Union is the regex matching anything matched by any argument.
type Union struct{ Args []Regex }

// Kind implements Regex.
func (*Union) Kind() Kind { return KindUnion }

// String implements Regex.
func (u *Union) String() string { return joinArgs("|", u.Args) }

// Inter is the regex matching anything matched by every argument.
type Inter struct{ Args []Regex }

// Kind implements Regex.
func (*Inter) Kind() Kind { return KindInter }

// String implements Regex.
func (i *Inter) String() string { return joinArgs("&", i.Args) }

// Compl is the regex matching anything not matched by Arg.
type Compl struct{ Arg Regex }

// Kind implements Regex.
func (*Compl) Kind() Kind { return KindCompl }

// String implements Regex.
func (c *Compl) String() string { return "~(" + c.Arg.String() + ")" }

// Concat is the regex matching the concatenation of its arguments in
// sequence.
type Concat struct{ Args []Regex }

// Kind implements Regex.
func (*Concat) Kind() Kind { return KindConcat }

// String implements Regex.
func (c *Concat) String() string { return joinArgs(".", c.Args) }

// Star is the Kleene closure of Arg.
type Star struct{ Arg Regex }

// Kind implements Regex.
func (*Star) Kind() Kind { return KindStar }

// String implements Regex.
func (s *Star) String() string { return "(" + s.Arg.String() + ")*" }

// AnchorStart matches only at position 0 of the underlying sequence. The
// automaton engine compiles it as a plain ε-move and tracks no position,
// so it has that meaning only at the start of the whole pattern.
type AnchorStart struct{}

// Kind implements Regex.
func (AnchorStart) Kind() Kind { return KindAnchorStart }

// String implements Regex.
func (AnchorStart) String() string { return "^" }

// AnchorEnd matches only at the final position.
type AnchorEnd struct{}

// Kind implements Regex.
func (AnchorEnd) Kind() Kind { return KindAnchorEnd }

// String implements Regex.
func (AnchorEnd) String() string { return "$" }

func joinArgs(sep string, args []Regex) string {
	s := ""
	for i, a := range args {
		if i > 0 {
			s += sep
		}
		s += a.String()
	}
	return s
}

// Lit builds a Concat of single-codepoint classes matching exactly the
// given word, a convenience used by tests and by string-literal terms
// appearing inside a regex.
func Lit(word []rune) Regex {
	if len(word) == 0 {
		return Eps{}
	}

	args := make([]Regex, len(word))
	for i, c := range word {
		args[i] = &Class{Ranges: []Range{{c, c}}}
	}

	return &Concat{Args: args}
}
