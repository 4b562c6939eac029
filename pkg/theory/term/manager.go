package term

import (
	"fmt"
	"strings"

	"github.com/dpllt/seqtheory/pkg/theory/external"
	"github.com/dpllt/seqtheory/pkg/theory/regexast"
)

// Manager owns every term created during a search: creation is monotone
// (terms are never freed mid-search) and structurally identical terms are
// hash-consed to the same *Term, mirroring the teacher's term manager
// being the sole authority for node identity.
type Manager struct {
	nextID ID
	byKey  map[string]*Term
	byID   []*Term
	eps    *Term
}

// NewManager returns an empty term manager.
func NewManager() *Manager {
	m := &Manager{byKey: make(map[string]*Term)}
	m.eps = m.intern(&Term{kind: KindEpsilon})

	return m
}

func (m *Manager) intern(t *Term) *Term {
	key := structuralKey(t)
	if existing, ok := m.byKey[key]; ok {
		return existing
	}

	t.id = m.nextID
	m.nextID++
	m.byKey[key] = t
	m.byID = append(m.byID, t)

	return t
}

// ByID returns the term with the given ID, if any - the inverse of Term.
// ID(), needed by callers (the theory core's atom tracking) that only have
// an opaque term ID in hand, such as a TheoryAtomSource.LiteralFor call
// site.
func (m *Manager) ByID(id ID) (*Term, bool) {
	if int(id) < 0 || int(id) >= len(m.byID) {
		return nil, false
	}

	return m.byID[id], true
}

func structuralKey(t *Term) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d|", t.kind)

	switch t.kind {
	case KindVar:
		b.WriteString(t.varName)
	case KindEpsilon:
	case KindElemConst:
		fmt.Fprintf(&b, "%d", t.unitVal)
	case KindLiteral:
		fmt.Fprintf(&b, "%q", string(t.litVal))
	case KindIte:
		fmt.Fprintf(&b, "%d|%d|%d", t.cond, t.then.id, t.els.id)
	case KindInRegex:
		fmt.Fprintf(&b, "%d|%s", t.args[0].id, t.regex.String())
	case KindSkolem:
		fmt.Fprintf(&b, "%d|", t.skKind)
		for _, a := range t.args {
			fmt.Fprintf(&b, "%d,", a.id)
		}
		for _, s := range t.skState {
			fmt.Fprintf(&b, "#%d,", s)
		}
		if t.skRegex != nil {
			b.WriteString(t.skRegex.String())
		}
	default:
		for _, a := range t.args {
			fmt.Fprintf(&b, "%d,", a.id)
		}
	}

	return b.String()
}

// Epsilon returns the (unique) empty-sequence term.
func (m *Manager) Epsilon() *Term { return m.eps }

// Var returns the variable named name, creating it if this is the first
// occurrence of that name.
func (m *Manager) Var(name string) *Term {
	return m.intern(&Term{kind: KindVar, varName: name})
}

// ElemConst builds a constant alphabet element term (e.g. a single code
// point drawn from a string literal).
func (m *Manager) ElemConst(c rune) *Term {
	return m.intern(&Term{kind: KindElemConst, unitVal: c})
}

// Unit lifts an element-sorted term (an ElemConst, or the result of an
// element-valued function such as nth(s,i) or digit2int(c)) to a
// singleton sequence.
func (m *Manager) Unit(elem *Term) *Term {
	return m.intern(&Term{kind: KindUnit, args: []*Term{elem}})
}

// UnitConst is a convenience combining ElemConst and Unit for a literal
// alphabet element.
func (m *Manager) UnitConst(c rune) *Term {
	return m.Unit(m.ElemConst(c))
}

// Literal builds a sequence literal from a word.
func (m *Manager) Literal(word []rune) *Term {
	w := make([]rune, len(word))
	copy(w, word)

	return m.intern(&Term{kind: KindLiteral, litVal: w})
}

// LiteralString is a convenience wrapper around Literal for Go strings.
func (m *Manager) LiteralString(s string) *Term {
	return m.Literal([]rune(s))
}

// Concat builds the concatenation of zero or more parts, flattening nested
// concatenations so that a fixed outer Concat node always holds a flat
// argument list (deeper algebraic simplification, e.g. dropping ε
// arguments, is the rewriter's job in §4.4.1, not the constructor's).
func (m *Manager) Concat(parts ...*Term) *Term {
	if len(parts) == 1 {
		return parts[0]
	}

	flat := make([]*Term, 0, len(parts))

	for _, p := range parts {
		if p.kind == KindConcat {
			flat = append(flat, p.args...)
		} else {
			flat = append(flat, p)
		}
	}

	if len(flat) == 1 {
		return flat[0]
	}

	return m.intern(&Term{kind: KindConcat, args: flat})
}

// Length builds |s|.
func (m *Manager) Length(s *Term) *Term {
	return m.intern(&Term{kind: KindLength, args: []*Term{s}})
}

// Substr builds substr(s, i, l).
func (m *Manager) Substr(s, i, l *Term) *Term {
	return m.intern(&Term{kind: KindSubstr, args: []*Term{s, i, l}})
}

// At builds at(s, i).
func (m *Manager) At(s, i *Term) *Term {
	return m.intern(&Term{kind: KindAt, args: []*Term{s, i}})
}

// Nth builds nth(s, i).
func (m *Manager) Nth(s, i *Term) *Term {
	return m.intern(&Term{kind: KindNth, args: []*Term{s, i}})
}

// Contains builds contains(hay, needle).
func (m *Manager) Contains(hay, needle *Term) *Term {
	return m.intern(&Term{kind: KindContains, args: []*Term{hay, needle}})
}

// PrefixOf builds the predicate "a is a prefix of b".
func (m *Manager) PrefixOf(a, b *Term) *Term {
	return m.intern(&Term{kind: KindPrefixOf, args: []*Term{a, b}})
}

// SuffixOf builds the predicate "a is a suffix of b".
func (m *Manager) SuffixOf(a, b *Term) *Term {
	return m.intern(&Term{kind: KindSuffixOf, args: []*Term{a, b}})
}

// IndexOf builds indexof(s, t) (first occurrence of t in s, searching from
// position 0).
func (m *Manager) IndexOf(s, t *Term) *Term {
	return m.intern(&Term{kind: KindIndexOf, args: []*Term{s, t}})
}

// IndexOfFrom builds indexof(s, t, from).
func (m *Manager) IndexOfFrom(s, t, from *Term) *Term {
	return m.intern(&Term{kind: KindIndexOfFrom, args: []*Term{s, t, from}})
}

// Replace builds replace(s, t, u): replace the first occurrence of t in s
// with u.
func (m *Manager) Replace(s, t, u *Term) *Term {
	return m.intern(&Term{kind: KindReplace, args: []*Term{s, t, u}})
}

// ItoS builds itos(i).
func (m *Manager) ItoS(i *Term) *Term {
	return m.intern(&Term{kind: KindItoS, args: []*Term{i}})
}

// StoI builds stoi(s).
func (m *Manager) StoI(s *Term) *Term {
	return m.intern(&Term{kind: KindStoI, args: []*Term{s}})
}

// InRegex builds the membership predicate s ∈ r.
func (m *Manager) InRegex(s *Term, r regexast.Regex) *Term {
	return m.intern(&Term{kind: KindInRegex, args: []*Term{s}, regex: r})
}

// Lt builds the strict lexicographic comparison a < b.
func (m *Manager) Lt(a, b *Term) *Term {
	return m.intern(&Term{kind: KindLt, args: []*Term{a, b}})
}

// Le builds the non-strict lexicographic comparison a ≤ b.
func (m *Manager) Le(a, b *Term) *Term {
	return m.intern(&Term{kind: KindLe, args: []*Term{a, b}})
}

// Ite builds an if-then-else term guarded by a SAT-engine literal.
func (m *Manager) Ite(cond external.Literal, then, els *Term) *Term {
	return m.intern(&Term{kind: KindIte, cond: cond, then: then, els: els})
}

// Eq builds the Boolean-sorted equality atom a = b, used only by the axiom
// module to phrase clause conclusions over a theory atom source; the core
// equation-solving pipeline itself works directly over Lhs/Rhs term lists
// rather than Eq atoms.
func (m *Manager) Eq(a, b *Term) *Term {
	return m.intern(&Term{kind: KindEq, args: []*Term{a, b}})
}

// Skolem builds a Skolem application of the named family over args, with
// any non-term state parameters and (for accept/step) a regex parameter.
func (m *Manager) Skolem(kind SkolemKind, args []*Term, state []int64, re regexast.Regex) *Term {
	return m.intern(&Term{kind: KindSkolem, skKind: kind, args: args, skState: state, skRegex: re})
}
