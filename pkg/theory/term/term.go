// Package term implements the ground term model of the sequence
// signature: variables, the empty sequence, unit-lifted alphabet elements,
// string literals, concatenation, length, extraction, the various string
// predicates and functions, membership, lexicographic comparison, ITE, and
// Skolem applications. Terms are hash-consed by a Manager so that
// structurally identical terms share one identity - the core's every
// other component (solution map, dependency manager, canonizer) keys off
// that identity rather than structural equality.
package term

import (
	"fmt"
	"strings"

	"github.com/dpllt/seqtheory/pkg/theory/external"
	"github.com/dpllt/seqtheory/pkg/theory/regexast"
)

// ID is a monotone, never-reused identifier assigned to each distinct term
// at creation time.
type ID uint64

// Kind enumerates the closed set of sequence-signature operators. This
// enumeration is closed at compile time: every switch over Kind in this
// module (canonize, add-axiom, relevant-eh, the model constructor) must be
// updated in lockstep when a new kind is added.
type Kind uint8

// The supported term kinds.
const (
	KindVar Kind = iota
	KindEpsilon
	KindElemConst
	KindUnit
	KindLiteral
	KindConcat
	KindLength
	KindSubstr
	KindAt
	KindNth
	KindContains
	KindPrefixOf
	KindSuffixOf
	KindIndexOf
	KindIndexOfFrom
	KindReplace
	KindItoS
	KindStoI
	KindInRegex
	KindLt
	KindLe
	KindIte
	KindSkolem
	KindEq
)

// String names a Kind for diagnostics.
func (k Kind) String() string {
	switch k {
	case KindVar:
		return "var"
	case KindEpsilon:
		return "eps"
	case KindElemConst:
		return "elem"
	case KindUnit:
		return "unit"
	case KindLiteral:
		return "lit"
	case KindConcat:
		return "concat"
	case KindLength:
		return "len"
	case KindSubstr:
		return "substr"
	case KindAt:
		return "at"
	case KindNth:
		return "nth"
	case KindContains:
		return "contains"
	case KindPrefixOf:
		return "prefixof"
	case KindSuffixOf:
		return "suffixof"
	case KindIndexOf:
		return "indexof"
	case KindIndexOfFrom:
		return "indexof-from"
	case KindReplace:
		return "replace"
	case KindItoS:
		return "itos"
	case KindStoI:
		return "stoi"
	case KindInRegex:
		return "in-re"
	case KindLt:
		return "lt"
	case KindLe:
		return "le"
	case KindIte:
		return "ite"
	case KindSkolem:
		return "skolem"
	case KindEq:
		return "="
	}

	panic(fmt.Sprintf("unknown term kind: %d", uint8(k)))
}

// SkolemKind enumerates the named Skolem-function families of §4.5.
type SkolemKind uint8

// The supported Skolem function families.
const (
	SkNone SkolemKind = iota
	SkTail
	SkPre
	SkPost
	SkIndexOfLeft
	SkIndexOfRight
	SkPrefixInv
	SkSuffixInv
	SkSeqFirst
	SkDigit2Int
	SkAccept
	SkStep
	SkMaxUnfolding
	SkLengthLimit
)

// String names a SkolemKind for diagnostics.
func (k SkolemKind) String() string {
	switch k {
	case SkNone:
		return "none"
	case SkTail:
		return "tail"
	case SkPre:
		return "pre"
	case SkPost:
		return "post"
	case SkIndexOfLeft:
		return "indexof_left"
	case SkIndexOfRight:
		return "indexof_right"
	case SkPrefixInv:
		return "prefix_inv"
	case SkSuffixInv:
		return "suffix_inv"
	case SkSeqFirst:
		return "seq_first"
	case SkDigit2Int:
		return "digit2int"
	case SkAccept:
		return "accept"
	case SkStep:
		return "step"
	case SkMaxUnfolding:
		return "max_unfolding"
	case SkLengthLimit:
		return "length_limit"
	}

	panic(fmt.Sprintf("unknown skolem kind: %d", uint8(k)))
}

// Term is a ground expression in the sequence signature. Terms are owned
// by a Manager and must never be constructed directly outside this
// package; equality of two *Term values is pointer equality.
type Term struct {
	id   ID
	kind Kind

	varName string
	unitVal rune
	litVal  []rune

	args []*Term

	regex regexast.Regex

	cond external.Literal
	then *Term
	els  *Term

	skKind  SkolemKind
	skState []int64 // e.g. [q] for accept, [q,q'] for step, [d] for max_unfolding, [k] for length_limit
	skRegex regexast.Regex
}

// ID returns this term's stable, monotone identity.
func (t *Term) ID() ID { return t.id }

// Kind returns this term's operator kind.
func (t *Term) Kind() Kind { return t.kind }

// VarName returns the variable name; only meaningful for KindVar.
func (t *Term) VarName() string { return t.varName }

// ElemConstVal returns the constant alphabet element; only meaningful for
// KindElemConst.
func (t *Term) ElemConstVal() rune { return t.unitVal }

// LitVal returns the literal word; only meaningful for KindLiteral.
func (t *Term) LitVal() []rune { return t.litVal }

// Args returns the operator arguments; meaningful for every kind except
// KindVar, KindEpsilon, KindElemConst, KindLiteral, KindIte and
// KindSkolem. For KindUnit, Args()[0] is the (element-sorted) lifted
// argument - e.g. an element constant, or nth(s,i).
func (t *Term) Args() []*Term { return t.args }

// Regex returns the regular-language argument; only meaningful for
// KindInRegex.
func (t *Term) Regex() regexast.Regex { return t.regex }

// IteCond returns the guarding literal; only meaningful for KindIte.
func (t *Term) IteCond() external.Literal { return t.cond }

// IteThen returns the then-branch; only meaningful for KindIte.
func (t *Term) IteThen() *Term { return t.then }

// IteElse returns the else-branch; only meaningful for KindIte.
func (t *Term) IteElse() *Term { return t.els }

// SkolemKind returns the Skolem-function family; only meaningful for
// KindSkolem.
func (t *Term) SkolemKind() SkolemKind { return t.skKind }

// SkolemArgs returns the Skolem function's term arguments.
func (t *Term) SkolemArgs() []*Term { return t.args }

// SkolemState returns the Skolem function's non-term integer parameters
// (automaton states, unfolding depths, length-limit bounds).
func (t *Term) SkolemState() []int64 { return t.skState }

// SkolemRegex returns the regex parameter of accept/step Skolems.
func (t *Term) SkolemRegex() regexast.Regex { return t.skRegex }

// Children returns every immediate sub-term, generically, for uniform
// traversal by the canonizer and model constructor.
func (t *Term) Children() []*Term {
	switch t.kind {
	case KindIte:
		return []*Term{t.then, t.els}
	case KindSkolem:
		return t.args
	default:
		return t.args
	}
}

// IsSequenceValued reports whether this term denotes a sequence (as
// opposed to a boolean, integer, or Skolem-internal value). Used by the
// length-coherence bridge to decide which enodes need a tracked length.
func (t *Term) IsSequenceValued() bool {
	switch t.kind {
	case KindVar, KindEpsilon, KindUnit, KindLiteral, KindConcat, KindSubstr, KindItoS:
		return true
	case KindSkolem:
		switch t.skKind {
		case SkTail, SkPre, SkPost, SkIndexOfLeft, SkIndexOfRight, SkPrefixInv, SkSuffixInv:
			return true
		}
		return false
	case KindIte:
		return t.then.IsSequenceValued()
	default:
		return false
	}
}

// String renders a term for diagnostics, in the teacher's Lisp-ish
// debug-dump style rather than surface syntax.
func (t *Term) String() string {
	switch t.kind {
	case KindVar:
		return t.varName
	case KindEpsilon:
		return "ε"
	case KindElemConst:
		return fmt.Sprintf("%q", t.unitVal)
	case KindUnit:
		return fmt.Sprintf("unit(%s)", t.args[0])
	case KindLiteral:
		return fmt.Sprintf("%q", string(t.litVal))
	case KindIte:
		return fmt.Sprintf("(ite %d %s %s)", t.cond, t.then, t.els)
	case KindInRegex:
		return fmt.Sprintf("(%s ∈ %s)", t.args[0], t.regex)
	case KindSkolem:
		return fmt.Sprintf("(%s %s)", t.skKind, argsString(t.args))
	default:
		return fmt.Sprintf("(%s %s)", t.kind, argsString(t.args))
	}
}

func argsString(args []*Term) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return strings.Join(parts, " ")
}
