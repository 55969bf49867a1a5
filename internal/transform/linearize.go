package transform

import (
	"strconv"

	"github.com/funvibe/weave/internal/term"
)

// LinearizeVars prepares rule bodies for net encoding, where every wire has
// exactly two ends. First all binders in a rule are made unique, then every
// binder is forced to exactly one use: unused binders become erasers, and a
// binder with n > 1 uses gets an auto-tagged duplication of n fresh names
// inserted at the top of its scope.
//
// Precondition: matches have been lowered, so the only remaining binding
// forms are the lambda/let family and the switch predecessor.
func LinearizeVars(book *term.Book) {
	for _, defName := range book.DefNames() {
		def := book.Def(defName)
		for _, rule := range def.Rules {
			u := &uniquer{used: make(map[term.Name]bool)}
			u.uniqueTerm(&rule.Body, make(map[term.Name][]term.Name))
			linearizeTerm(&rule.Body)
		}
	}
}

// uniquer renames colliding binders to "<name>-<n>" with a per-rule counter,
// so that later passes can count uses without tracking shadowing.
type uniquer struct {
	used map[term.Name]bool
	n    int
}

func (u *uniquer) fresh(b term.Name) term.Name {
	if b == "" {
		return ""
	}
	if !u.used[b] {
		u.used[b] = true
		return b
	}
	for {
		u.n++
		cand := b + "-" + term.Name(strconv.Itoa(u.n))
		if !u.used[cand] {
			u.used[cand] = true
			return cand
		}
	}
}

func (u *uniquer) uniqueTerm(t *term.Term, env map[term.Name][]term.Name) {
	term.MaybeGrow(func() struct{} {
		switch s := (*t).(type) {
		case *term.Var:
			if stack := env[s.Nam]; len(stack) > 0 {
				s.Nam = stack[len(stack)-1]
			}
		case *term.Lam:
			u.uniqueBinders(env, []term.Name{s.Nam}, &s.Bod, func(renamed []term.Name) {
				s.Nam = renamed[0]
			})
		case *term.Chn:
			u.uniqueTerm(&s.Bod, env)
		case *term.Let:
			u.uniqueTerm(&s.Val, env)
			u.uniqueBinders(env, []term.Name{s.Nam}, &s.Nxt, func(renamed []term.Name) {
				s.Nam = renamed[0]
			})
		case *term.Use:
			u.uniqueTerm(&s.Val, env)
			u.uniqueBinders(env, []term.Name{s.Nam}, &s.Nxt, func(renamed []term.Name) {
				s.Nam = renamed[0]
			})
		case *term.Ltp:
			u.uniqueTerm(&s.Val, env)
			u.uniqueBinders(env, s.Bnd, &s.Nxt, func(renamed []term.Name) {
				copy(s.Bnd, renamed)
			})
		case *term.Dup:
			u.uniqueTerm(&s.Val, env)
			u.uniqueBinders(env, s.Bnd, &s.Nxt, func(renamed []term.Name) {
				copy(s.Bnd, renamed)
			})
		case *term.Swt:
			u.uniqueTerm(&s.Arg, env)
			for i := range s.Arms {
				if i == len(s.Arms)-1 {
					u.uniqueBinders(env, []term.Name{s.Pred}, &s.Arms[i], func(renamed []term.Name) {
						s.Pred = renamed[0]
					})
				} else {
					u.uniqueTerm(&s.Arms[i], env)
				}
			}
		default:
			for _, child := range term.Children(t) {
				u.uniqueTerm(child, env)
			}
		}
		return struct{}{}
	})
}

func (u *uniquer) uniqueBinders(env map[term.Name][]term.Name, binders []term.Name,
	scope *term.Term, update func(renamed []term.Name)) {
	renamed := make([]term.Name, len(binders))
	for i, b := range binders {
		renamed[i] = u.fresh(b)
		if b != "" {
			env[b] = append(env[b], renamed[i])
		}
	}
	update(renamed)
	u.uniqueTerm(scope, env)
	for _, b := range binders {
		if b != "" {
			env[b] = env[b][:len(env[b])-1]
		}
	}
}

func linearizeTerm(t *term.Term) {
	term.MaybeGrow(func() struct{} {
		switch s := (*t).(type) {
		case *term.Lam:
			linearizeTerm(&s.Bod)
			s.Nam = linearizeBinder(s.Nam, &s.Bod)
		case *term.Let:
			linearizeTerm(&s.Val)
			linearizeTerm(&s.Nxt)
			s.Nam = linearizeBinder(s.Nam, &s.Nxt)
		case *term.Use:
			linearizeTerm(&s.Val)
			linearizeTerm(&s.Nxt)
			s.Nam = linearizeBinder(s.Nam, &s.Nxt)
		case *term.Ltp:
			linearizeTerm(&s.Val)
			linearizeTerm(&s.Nxt)
			for i, b := range s.Bnd {
				s.Bnd[i] = linearizeBinder(b, &s.Nxt)
			}
		case *term.Dup:
			linearizeTerm(&s.Val)
			linearizeTerm(&s.Nxt)
			for i, b := range s.Bnd {
				s.Bnd[i] = linearizeBinder(b, &s.Nxt)
			}
		case *term.Swt:
			linearizeTerm(&s.Arg)
			for i := range s.Arms {
				linearizeTerm(&s.Arms[i])
			}
			last := len(s.Arms) - 1
			s.Pred = linearizeBinder(s.Pred, &s.Arms[last])
		default:
			for _, child := range term.Children(t) {
				linearizeTerm(child)
			}
		}
		return struct{}{}
	})
}

// linearizeBinder forces the binder to exactly one use within its scope:
// zero uses erase the binder, multiple uses get split through an inserted
// auto-tagged duplication.
func linearizeBinder(b term.Name, scope *term.Term) term.Name {
	if b == "" {
		return ""
	}
	n := countUses(*scope, b)
	switch n {
	case 0:
		return ""
	case 1:
		return b
	}
	split := make([]term.Name, n)
	for i := range split {
		split[i] = b + "$" + term.Name(strconv.Itoa(i))
	}
	next := 0
	renameUses(scope, b, split, &next)
	*scope = &term.Dup{Tag: term.AutoTag(), Bnd: split, Val: &term.Var{Nam: b}, Nxt: *scope}
	return b
}

// countUses counts Var occurrences of a binder-unique name.
func countUses(t term.Term, b term.Name) int {
	return term.MaybeGrow(func() int {
		if v, isVar := t.(*term.Var); isVar {
			if v.Nam == b {
				return 1
			}
			return 0
		}
		n := 0
		tt := t
		for _, child := range term.Children(&tt) {
			n += countUses(*child, b)
		}
		return n
	})
}

// renameUses rewrites the i-th occurrence of Var(b) in traversal order to
// the i-th split name.
func renameUses(t *term.Term, b term.Name, split []term.Name, next *int) {
	term.MaybeGrow(func() struct{} {
		if v, isVar := (*t).(*term.Var); isVar {
			if v.Nam == b {
				v.Nam = split[*next]
				*next++
			}
			return struct{}{}
		}
		for _, child := range term.Children(t) {
			renameUses(child, b, split, next)
		}
		return struct{}{}
	})
}
