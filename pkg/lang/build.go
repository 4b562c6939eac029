package lang

import (
	"fmt"

	"github.com/dpllt/seqtheory/pkg/theory"
	"github.com/dpllt/seqtheory/pkg/theory/driverdemo"
	"github.com/dpllt/seqtheory/pkg/theory/eqstore"
	"github.com/dpllt/seqtheory/pkg/theory/external"
	"github.com/dpllt/seqtheory/pkg/theory/regexast"
	"github.com/dpllt/seqtheory/pkg/theory/term"
)

// Builder interprets a parsed constraint form against a live Core, wired
// against a driverdemo.Arith for the handful of forms (len/range) that need
// to plant an explicit arithmetic bound rather than go through equation
// solving. This is CLI-only glue: a real host would drive Core directly
// from its own AST, never through this textual surface syntax.
type Builder struct {
	M         *term.Manager
	Core      *theory.Core
	Arith     *driverdemo.Arith
	Atoms     driverdemo.Atoms
	nextEnode external.EnodeID
}

// NewBuilder returns a Builder over the given core and arithmetic theory.
func NewBuilder(m *term.Manager, c *theory.Core, a *driverdemo.Arith) *Builder {
	return &Builder{M: m, Core: c, Arith: a}
}

// Assert interprets one top-level form, asserting whatever it denotes
// against the builder's Core. The supported top-level forms are:
//
//	(eq LHS RHS)            sequence equation
//	(neq LHS RHS)           sequence disequation
//	(notcontains HAY NEEDLE) ¬contains(HAY, NEEDLE)
//	(inre VAR REGEX)         VAR ∈ REGEX
//	(len VAR N)              |VAR| = N
//	(len VAR LO HI)          LO ≤ |VAR| ≤ HI
func (b *Builder) Assert(form SExp) error {
	l, ok := form.(*List)
	if !ok || l.Len() == 0 {
		return &SyntaxError{msg: fmt.Sprintf("expected a top-level form, got %q", form.String())}
	}

	head, ok := l.Elements[0].(*Symbol)
	if !ok {
		return &SyntaxError{msg: fmt.Sprintf("expected a form name, got %q", l.Elements[0].String())}
	}

	switch head.Value {
	case "eq":
		return b.assertEq(l)
	case "neq":
		return b.assertNeq(l)
	case "notcontains":
		return b.assertNotContains(l)
	case "inre":
		return b.assertInRegex(l)
	case "len":
		return b.assertLen(l)
	default:
		return &SyntaxError{msg: fmt.Sprintf("unknown form %q", head.Value)}
	}
}

func (b *Builder) assertEq(l *List) error {
	if l.Len() != 3 {
		return &SyntaxError{msg: "(eq LHS RHS) takes exactly two arguments"}
	}

	lhs, err := b.word(l.Elements[1])
	if err != nil {
		return err
	}

	rhs, err := b.word(l.Elements[2])
	if err != nil {
		return err
	}

	b.Core.AssertEquation(lhs, rhs, nil)

	return nil
}

// assertNeq resolves both sides through the current solution (the most
// canonical terms available at assertion time) and registers the
// disequation unconditionally - solve_nqs (rule 3) itself is responsible
// for deriving Partitions for the general case and for recognizing the
// already-resolved-to-the-same-term case as an immediate conflict, so
// this builder no longer needs to pre-filter either case.
func (b *Builder) assertNeq(l *List) error {
	if l.Len() != 3 {
		return &SyntaxError{msg: "(neq LHS RHS) takes exactly two arguments"}
	}

	lhs, err := b.wordTerm(l.Elements[1])
	if err != nil {
		return err
	}

	rhs, err := b.wordTerm(l.Elements[2])
	if err != nil {
		return err
	}

	resolvedLhs, _ := b.Core.Sol.Find(lhs)
	resolvedRhs, _ := b.Core.Sol.Find(rhs)

	b.Core.AssertDisequation(&eqstore.Disequation{Lhs: resolvedLhs, Rhs: resolvedRhs, Dep: nil})

	return nil
}

func (b *Builder) assertNotContains(l *List) error {
	if l.Len() != 3 {
		return &SyntaxError{msg: "(notcontains HAY NEEDLE) takes exactly two arguments"}
	}

	hay, err := b.wordTerm(l.Elements[1])
	if err != nil {
		return err
	}

	needle, err := b.wordTerm(l.Elements[2])
	if err != nil {
		return err
	}

	contains := b.M.Contains(hay, needle)

	b.Core.AssertNotContains(&eqstore.NotContains{
		Contains: contains,
		LenGT:    b.Atoms.LiteralFor(uint64(needle.ID())),
		Dep:      nil,
	})

	return nil
}

func (b *Builder) assertInRegex(l *List) error {
	if l.Len() != 3 {
		return &SyntaxError{msg: "(inre VAR REGEX) takes exactly two arguments"}
	}

	s, err := b.wordTerm(l.Elements[1])
	if err != nil {
		return err
	}

	r, err := b.regex(l.Elements[2])
	if err != nil {
		return err
	}

	b.Core.AssertRegexMembership(s, r)

	return nil
}

func (b *Builder) assertLen(l *List) error {
	if l.Len() != 3 && l.Len() != 4 {
		return &SyntaxError{msg: "(len VAR N) or (len VAR LO HI)"}
	}

	s, err := b.wordTerm(l.Elements[1])
	if err != nil {
		return err
	}

	e := b.nextEnode
	b.nextEnode++
	b.Core.RegisterEnode(s, e)

	if l.Len() == 3 {
		n, err := intLit(l.Elements[2])
		if err != nil {
			return err
		}

		b.Arith.SetValue(e, n)

		return nil
	}

	lo, err := intLit(l.Elements[2])
	if err != nil {
		return err
	}

	hi, err := intLit(l.Elements[3])
	if err != nil {
		return err
	}

	b.Arith.SetBounds(e, lo, hi)

	return nil
}

// word interprets a word expression as the flat list of pieces the
// equation store expects (Core.AssertEquation never folds its arguments
// into a single Concat node itself).
func (b *Builder) word(form SExp) ([]*term.Term, error) {
	switch f := form.(type) {
	case *Symbol:
		return []*term.Term{b.M.Var(f.Value)}, nil
	case *StrLit:
		return []*term.Term{b.M.LiteralString(f.Value)}, nil
	case *List:
		if f.MatchSymbols(1, "word") {
			if f.Len() != 2 {
				return nil, &SyntaxError{msg: "(word STRING) takes exactly one argument"}
			}

			s, ok := f.Elements[1].(*StrLit)
			if !ok {
				return nil, &SyntaxError{msg: "(word STRING) expects a quoted string"}
			}

			out := make([]*term.Term, 0, len(s.Value))
			for _, r := range s.Value {
				out = append(out, b.M.UnitConst(r))
			}

			return out, nil
		}

		if f.MatchSymbols(1, "concat") {
			var out []*term.Term

			for _, sub := range f.Elements[1:] {
				pieces, err := b.word(sub)
				if err != nil {
					return nil, err
				}

				out = append(out, pieces...)
			}

			return out, nil
		}
	}

	return nil, &SyntaxError{msg: fmt.Sprintf("expected a word expression, got %q", form.String())}
}

// wordTerm is word folded down to the single *term.Term the disequation,
// not-contains, and regex-membership forms need.
func (b *Builder) wordTerm(form SExp) (*term.Term, error) {
	pieces, err := b.word(form)
	if err != nil {
		return nil, err
	}

	return b.M.Concat(pieces...), nil
}

// regex interprets a regex expression:
//
//	(class LO HI ...)        union of inclusive [lo,hi] ranges
//	(nclass LO HI ...)       negation of the above
//	(str STRING)             literal word, char by char
//	(union R ...) (inter R ...) (compl R) (star R) (concat R ...)
//	(eps) (empty) (start) (end)
func (b *Builder) regex(form SExp) (regexast.Regex, error) {
	return ParseRegex(form)
}

// ParseRegex interprets form as a regex expression, independent of any
// Builder - the grammar never needs a term manager or a live core, only
// the forms above.
func ParseRegex(form SExp) (regexast.Regex, error) {
	l, ok := form.(*List)
	if !ok || l.Len() == 0 {
		return nil, &SyntaxError{msg: fmt.Sprintf("expected a regex form, got %q", form.String())}
	}

	head, ok := l.Elements[0].(*Symbol)
	if !ok {
		return nil, &SyntaxError{msg: "expected a regex form name"}
	}

	switch head.Value {
	case "eps":
		return regexast.Eps{}, nil
	case "empty":
		return regexast.Empty{}, nil
	case "start":
		return regexast.AnchorStart{}, nil
	case "end":
		return regexast.AnchorEnd{}, nil
	case "str":
		if l.Len() != 2 {
			return nil, &SyntaxError{msg: "(str STRING) takes exactly one argument"}
		}

		s, ok := l.Elements[1].(*StrLit)
		if !ok {
			return nil, &SyntaxError{msg: "(str STRING) expects a quoted string"}
		}

		return regexast.Lit([]rune(s.Value)), nil
	case "class", "nclass":
		return regexClass(l, head.Value == "nclass")
	case "compl":
		if l.Len() != 2 {
			return nil, &SyntaxError{msg: "(compl R) takes exactly one argument"}
		}

		arg, err := ParseRegex(l.Elements[1])
		if err != nil {
			return nil, err
		}

		return &regexast.Compl{Arg: arg}, nil
	case "star":
		if l.Len() != 2 {
			return nil, &SyntaxError{msg: "(star R) takes exactly one argument"}
		}

		arg, err := ParseRegex(l.Elements[1])
		if err != nil {
			return nil, err
		}

		return &regexast.Star{Arg: arg}, nil
	case "union", "inter", "concat":
		args := make([]regexast.Regex, 0, l.Len()-1)

		for _, sub := range l.Elements[1:] {
			arg, err := ParseRegex(sub)
			if err != nil {
				return nil, err
			}

			args = append(args, arg)
		}

		switch head.Value {
		case "union":
			return &regexast.Union{Args: args}, nil
		case "inter":
			return &regexast.Inter{Args: args}, nil
		default:
			return &regexast.Concat{Args: args}, nil
		}
	default:
		return nil, &SyntaxError{msg: fmt.Sprintf("unknown regex form %q", head.Value)}
	}
}

func regexClass(l *List, negated bool) (regexast.Regex, error) {
	rest := l.Elements[1:]
	if len(rest)%2 != 0 || len(rest) == 0 {
		return nil, &SyntaxError{msg: "(class LO HI ...) expects one or more LO HI pairs of single-character strings"}
	}

	var ranges []regexast.Range

	for i := 0; i < len(rest); i += 2 {
		lo, err := charLit(rest[i])
		if err != nil {
			return nil, err
		}

		hi, err := charLit(rest[i+1])
		if err != nil {
			return nil, err
		}

		ranges = append(ranges, regexast.Range{Lo: lo, Hi: hi})
	}

	return &regexast.Class{Ranges: ranges, Negated: negated}, nil
}

func charLit(form SExp) (rune, error) {
	s, ok := form.(*StrLit)
	if !ok {
		return 0, &SyntaxError{msg: fmt.Sprintf("expected a single-character string, got %q", form.String())}
	}

	r := []rune(s.Value)
	if len(r) != 1 {
		return 0, &SyntaxError{msg: fmt.Sprintf("expected exactly one character, got %q", s.Value)}
	}

	return r[0], nil
}

func intLit(form SExp) (int64, error) {
	sym, ok := form.(*Symbol)
	if !ok {
		return 0, &SyntaxError{msg: fmt.Sprintf("expected an integer, got %q", form.String())}
	}

	var n int64

	neg := false
	s := sym.Value

	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}

	if s == "" {
		return 0, &SyntaxError{msg: fmt.Sprintf("expected an integer, got %q", sym.Value)}
	}

	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, &SyntaxError{msg: fmt.Sprintf("expected an integer, got %q", sym.Value)}
		}

		n = n*10 + int64(c-'0')
	}

	if neg {
		n = -n
	}

	return n, nil
}
