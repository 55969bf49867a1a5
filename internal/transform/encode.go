package transform

import (
	"strconv"

	"github.com/funvibe/weave/internal/diagnostics"
	"github.com/funvibe/weave/internal/term"
)

// AddBuiltins installs the built-in List and String data types, unless the
// program already declares a type using any of their constructor names.
// List literals and string literals lower onto these constructors.
func AddBuiltins(book *term.Book) {
	listFree := !ctrTaken(book, "Cons") && !ctrTaken(book, "Nil") && book.Adt("List") == nil
	if listFree {
		book.AddAdt(&term.Adt{Name: "List", Builtin: true, Ctrs: []term.AdtCtr{
			{Name: "Cons", Fields: []term.Name{"head", "tail"}},
			{Name: "Nil"},
		}})
	}
	stringFree := !ctrTaken(book, "SCons") && !ctrTaken(book, "SNil") && book.Adt("String") == nil
	if stringFree {
		book.AddAdt(&term.Adt{Name: "String", Builtin: true, Ctrs: []term.AdtCtr{
			{Name: "SCons", Fields: []term.Name{"head", "tail"}},
			{Name: "SNil"},
		}})
	}
}

func ctrTaken(book *term.Book, ctr term.Name) bool {
	_, taken := book.Ctrs[ctr]
	return taken
}

// EncodeAdts generates one top-level definition per constructor, carrying
// its Scott encoding: the fields are abstracted first, then one binder per
// constructor of the type, and the binder matching this constructor is
// applied to the fields.
//
//	data List = (Cons h t) | Nil
//	Cons = λh λt λCons λNil (Cons h t)
//	Nil  = λCons λNil Nil
func EncodeAdts(book *term.Book) {
	for _, adtName := range book.AdtNames() {
		adt := book.Adt(adtName)
		armBinders := make([]term.Name, len(adt.Ctrs))
		for i, ctr := range adt.Ctrs {
			armBinders[i] = ctr.Name
		}
		for i, ctr := range adt.Ctrs {
			fieldVars := make([]term.Term, len(ctr.Fields))
			for j, f := range ctr.Fields {
				fieldVars[j] = &term.Var{Nam: f}
			}
			body := term.Call(&term.Var{Nam: adt.Ctrs[i].Name}, fieldVars...)
			body = term.Lams(armBinders, body)
			body = term.Lams(ctr.Fields, body)
			// Constructor definitions are compiler-generated: they are
			// exempt from user-facing passes and print as part of their
			// data declaration, not as definitions.
			book.AddDef(&term.Definition{
				Name:    ctr.Name,
				Rules:   []*term.Rule{{Body: body}},
				Builtin: true,
			})
		}
	}
}

// EncodeMatches lowers every canonical match into an application spine: the
// scrutinee is applied to one lambda per arm, each abstracting the arm's
// field binders. Variables listed in a with clause are re-abstracted around
// the arm bodies and re-applied after the spine, so each arm is closed over
// them. Multi-arm switches are nested into two-arm form; the switch itself
// stays in the term language for the net builder.
//
// Precondition: FixMatchTerms has normalized every match and switch.
func EncodeMatches(book *term.Book, diags *diagnostics.Collector) {
	enc := &matchEncoder{book: book, diags: diags}
	for _, defName := range book.DefNames() {
		def := book.Def(defName)
		enc.rule = def.Name
		for _, rule := range def.Rules {
			enc.encodeTerm(&rule.Body)
		}
	}
}

type matchEncoder struct {
	book  *term.Book
	diags *diagnostics.Collector
	rule  term.Name
}

func (e *matchEncoder) encodeTerm(t *term.Term) {
	term.MaybeGrow(func() struct{} {
		for _, child := range term.Children(t) {
			e.encodeTerm(child)
		}
		switch s := (*t).(type) {
		case *term.Mat:
			*t = encodeMatch(s)
		case *term.Swt:
			*t = nestSwitch(s)
		case *term.Lst:
			*t = e.encodeList(s)
		case *term.Str:
			*t = e.encodeString(s)
		case *term.Nat:
			*t = &term.Num{Val: s.Val}
		}
		return struct{}{}
	})
}

func encodeMatch(mat *term.Mat) term.Term {
	arms := make([]term.Term, len(mat.Arms))
	for i, arm := range mat.Arms {
		arms[i] = term.Lams(append(cloneNames(arm.Fld), mat.With...), arm.Bod)
	}
	out := term.Call(mat.Arg, arms...)
	for _, w := range mat.With {
		out = &term.App{Tag: term.StaticTag(), Fun: out, Arg: &term.Var{Nam: w}}
	}
	return out
}

// nestSwitch rewrites a k-literal-arm switch into nested two-arm switches.
// Level i matches literal arm i against zero and binds "<bnd>-<i+1>" as the
// next level's scrutinee; the innermost default keeps the canonical Pred.
// With-variables are linearized the same way as for matches.
func nestSwitch(swt *term.Swt) term.Term {
	if len(swt.With) > 0 {
		with := swt.With
		swt.With = nil
		for i := range swt.Arms {
			swt.Arms[i] = term.Lams(with, swt.Arms[i])
		}
		var out term.Term = nestSwitch(swt)
		for _, w := range with {
			out = &term.App{Tag: term.StaticTag(), Fun: out, Arg: &term.Var{Nam: w}}
		}
		return out
	}

	return unfoldSwitch(swt, swt.Bnd, 0)
}

// unfoldSwitch keeps the "<bnd>-<n>" chain rooted at the original binder
// while the nested levels unfold.
func unfoldSwitch(swt *term.Swt, bnd term.Name, level int) term.Term {
	if len(swt.Arms) <= 2 {
		return swt
	}
	next := bnd + "-" + term.Name(strconv.Itoa(level+1))
	rest := &term.Swt{
		Bnd:  next,
		Arg:  &term.Var{Nam: next},
		Pred: swt.Pred,
		Arms: swt.Arms[1:],
	}
	inner := unfoldSwitch(rest, bnd, level+1)
	return &term.Swt{
		Bnd:  swt.Bnd,
		Arg:  swt.Arg,
		Pred: next,
		Arms: []term.Term{swt.Arms[0], inner},
	}
}

func (e *matchEncoder) encodeList(lst *term.Lst) term.Term {
	return e.lowerChain(lst.Els, "Cons", "Nil", "list")
}

func (e *matchEncoder) encodeString(str *term.Str) term.Term {
	els := make([]term.Term, 0, len(str.Val))
	for _, r := range str.Val {
		els = append(els, &term.Num{Val: uint64(r)})
	}
	return e.lowerChain(els, "SCons", "SNil", "string")
}

// lowerChain folds elements into a right-nested constructor chain.
func (e *matchEncoder) lowerChain(els []term.Term, cons, nilName term.Name, what string) term.Term {
	if !e.book.HasDef(cons) || !e.book.HasDef(nilName) {
		e.diags.AddRuleError(diagnostics.MalformedDefinition, string(e.rule),
			"%s literal needs the '%s'/'%s' constructors, but the program shadows them", what, cons, nilName)
		return &term.Err{}
	}
	var out term.Term = &term.Ref{Nam: nilName}
	for i := len(els) - 1; i >= 0; i-- {
		out = term.Call(&term.Ref{Nam: cons}, els[i], out)
	}
	return out
}

func cloneNames(ns []term.Name) []term.Name {
	out := make([]term.Name, len(ns))
	copy(out, ns)
	return out
}
