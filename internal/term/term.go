// Package term defines the surface term model of the Weave compiler: the
// tagged term tree, the Book of top-level definitions, uniform child
// enumeration and capture-avoiding substitution.
package term

import "strconv"

// Name is an immutable identifier. Equality is structural and ordering is
// lexicographic. User-written and synthesized names share one namespace;
// synthesized names follow fixed patterns ("<def>$C<n>" for floated
// combinators, "<bind>.<field>" for match field binders, "%matched" and
// "%matched-<n>" for hoisted scrutinees). A leading '$' marks an unscoped
// channel at the use site in surface syntax only; in the tree the channel
// declaration is the Chn variant and the use is the Lnk variant, both
// carrying the bare name.
type Name string

// MatchedVar is the base name for hoisted match scrutinees.
const MatchedVar Name = "%matched"

// CombinatorName builds the name of the n-th combinator floated out of def.
func CombinatorName(def Name, n int) Name {
	return def + "$C" + Name(strconv.Itoa(n))
}

// MatchFieldName builds the canonical binder for a constructor field:
// "<bind>.<field>".
func MatchFieldName(bind, field Name) Name {
	return bind + "." + field
}

// TagKind discriminates the origin of a duplication/application label.
type TagKind int

const (
	TagStatic  TagKind = iota // compiler-inserted, shares one reserved label
	TagAuto                   // compiler-inserted, fresh label per definition
	TagNamed                  // user-written name label
	TagNumeric                // user-written numeric label
)

// Tag labels lambdas, applications, duplications and superpositions so that
// user-labeled clusters survive down to net labels.
type Tag struct {
	Kind TagKind
	Nam  Name   // for TagNamed
	Num  uint32 // for TagNumeric
}

func StaticTag() Tag        { return Tag{Kind: TagStatic} }
func AutoTag() Tag          { return Tag{Kind: TagAuto} }
func NamedTag(n Name) Tag   { return Tag{Kind: TagNamed, Nam: n} }
func NumericTag(k uint32) Tag { return Tag{Kind: TagNumeric, Num: k} }

// Opr is a binary numeric primitive.
type Opr int

const (
	OpAdd Opr = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNe
	OpLt
	OpGt
	OpLte
	OpGte
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
)

var oprNames = map[Opr]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%",
	OpEq: "==", OpNe: "!=", OpLt: "<", OpGt: ">", OpLte: "<=", OpGte: ">=",
	OpAnd: "&", OpOr: "|", OpXor: "^", OpShl: "<<", OpShr: ">>",
}

func (o Opr) String() string { return oprNames[o] }

// OprFromString resolves an operator lexeme; ok is false for unknown ones.
func OprFromString(s string) (Opr, bool) {
	for op, nam := range oprNames {
		if nam == s {
			return op, true
		}
	}
	return 0, false
}

// Term is the tagged sum of surface term forms. All variants are pointer
// structs so that rewrites through Children happen in place.
type Term interface{ isTerm() }

// Var is an ordinary lexical reference.
type Var struct{ Nam Name }

// Lam is a lambda. An empty Nam is an eraser binder (written "*").
type Lam struct {
	Tag Tag
	Nam Name
	Bod Term
}

// Chn declares an unscoped channel $Nam over Bod.
type Chn struct {
	Tag Tag
	Nam Name
	Bod Term
}

// Lnk is the use site of an unscoped channel $Nam.
type Lnk struct{ Nam Name }

// Ref is a reference to a top-level definition.
type Ref struct{ Nam Name }

// Let binds a single name. An empty Nam erases the value.
type Let struct {
	Nam      Name
	Val, Nxt Term
}

// Use inlines Val for Nam in Nxt without introducing a duplication.
type Use struct {
	Nam      Name
	Val, Nxt Term
}

// Ltp is an n-ary tuple-destructuring let.
type Ltp struct {
	Bnd      []Name
	Val, Nxt Term
}

// Dup is an n-ary duplication let.
type Dup struct {
	Tag      Tag
	Bnd      []Name
	Val, Nxt Term
}

// App is an application, tagged to preserve user-labeled clusters.
type App struct {
	Tag      Tag
	Fun, Arg Term
}

// MatchArm is one arm of a constructor match. An empty Ctr is the unnamed
// wildcard "*"; a name that is not a known constructor is a variable arm.
type MatchArm struct {
	Ctr Name
	Fld []Name
	Bod Term
}

// Mat is a constructor match. Bnd names the scrutinee inside the arms; With
// lists outer variables to be linearized through the match.
type Mat struct {
	Bnd  Name
	Arg  Term
	With []Name
	Arms []MatchArm
}

// Swt is a numeric switch with arms 0..k-2 and a final default arm that
// observes Pred bound to Arg minus the number of literal arms.
type Swt struct {
	Bnd  Name
	Arg  Term
	With []Name
	Pred Name
	Arms []Term
}

// Tup is a tuple literal.
type Tup struct{ Els []Term }

// Sup is a superposition literal.
type Sup struct {
	Tag Tag
	Els []Term
}

// Lst is a list literal.
type Lst struct{ Els []Term }

// Opx applies a binary numeric primitive.
type Opx struct {
	Opr      Opr
	Fst, Snd Term
}

// Num is an unsigned machine number literal.
type Num struct{ Val uint64 }

// Nat is a natural number literal (surface sugar, "#n").
type Nat struct{ Val uint64 }

// Str is a string literal.
type Str struct{ Val string }

// Era is the eraser.
type Era struct{}

// Err is the opaque placeholder installed where a phase could not continue a
// local rewrite. Downstream phases preserve it.
type Err struct{}

func (*Var) isTerm() {}
func (*Lam) isTerm() {}
func (*Chn) isTerm() {}
func (*Lnk) isTerm() {}
func (*Ref) isTerm() {}
func (*Let) isTerm() {}
func (*Use) isTerm() {}
func (*Ltp) isTerm() {}
func (*Dup) isTerm() {}
func (*App) isTerm() {}
func (*Mat) isTerm() {}
func (*Swt) isTerm() {}
func (*Tup) isTerm() {}
func (*Sup) isTerm() {}
func (*Lst) isTerm() {}
func (*Opx) isTerm() {}
func (*Num) isTerm() {}
func (*Nat) isTerm() {}
func (*Str) isTerm() {}
func (*Era) isTerm() {}
func (*Err) isTerm() {}

// Call builds the left-nested application spine (fun arg_1 ... arg_n) with
// static tags.
func Call(fun Term, args ...Term) Term {
	for _, arg := range args {
		fun = &App{Tag: StaticTag(), Fun: fun, Arg: arg}
	}
	return fun
}

// Lams wraps bod in one lambda per name, innermost last.
func Lams(names []Name, bod Term) Term {
	for i := len(names) - 1; i >= 0; i-- {
		bod = &Lam{Tag: StaticTag(), Nam: names[i], Bod: bod}
	}
	return bod
}
