package term

// Clone returns a deep copy of t. Substitution inserts a fresh clone at
// every occurrence so that later in-place rewrites never alias.
func Clone(t Term) Term {
	return MaybeGrow(func() Term {
		switch s := t.(type) {
		case *Var:
			c := *s
			return &c
		case *Lam:
			return &Lam{Tag: s.Tag, Nam: s.Nam, Bod: Clone(s.Bod)}
		case *Chn:
			return &Chn{Tag: s.Tag, Nam: s.Nam, Bod: Clone(s.Bod)}
		case *Lnk:
			c := *s
			return &c
		case *Ref:
			c := *s
			return &c
		case *Let:
			return &Let{Nam: s.Nam, Val: Clone(s.Val), Nxt: Clone(s.Nxt)}
		case *Use:
			return &Use{Nam: s.Nam, Val: Clone(s.Val), Nxt: Clone(s.Nxt)}
		case *Ltp:
			return &Ltp{Bnd: cloneNames(s.Bnd), Val: Clone(s.Val), Nxt: Clone(s.Nxt)}
		case *Dup:
			return &Dup{Tag: s.Tag, Bnd: cloneNames(s.Bnd), Val: Clone(s.Val), Nxt: Clone(s.Nxt)}
		case *App:
			return &App{Tag: s.Tag, Fun: Clone(s.Fun), Arg: Clone(s.Arg)}
		case *Mat:
			arms := make([]MatchArm, len(s.Arms))
			for i, arm := range s.Arms {
				arms[i] = MatchArm{Ctr: arm.Ctr, Fld: cloneNames(arm.Fld), Bod: Clone(arm.Bod)}
			}
			return &Mat{Bnd: s.Bnd, Arg: Clone(s.Arg), With: cloneNames(s.With), Arms: arms}
		case *Swt:
			arms := make([]Term, len(s.Arms))
			for i, arm := range s.Arms {
				arms[i] = Clone(arm)
			}
			return &Swt{Bnd: s.Bnd, Arg: Clone(s.Arg), With: cloneNames(s.With), Pred: s.Pred, Arms: arms}
		case *Tup:
			return &Tup{Els: cloneEls(s.Els)}
		case *Sup:
			return &Sup{Tag: s.Tag, Els: cloneEls(s.Els)}
		case *Lst:
			return &Lst{Els: cloneEls(s.Els)}
		case *Opx:
			return &Opx{Opr: s.Opr, Fst: Clone(s.Fst), Snd: Clone(s.Snd)}
		case *Num:
			c := *s
			return &c
		case *Nat:
			c := *s
			return &c
		case *Str:
			c := *s
			return &c
		case *Era:
			return &Era{}
		default:
			return &Err{}
		}
	})
}

func cloneNames(ns []Name) []Name {
	if ns == nil {
		return nil
	}
	out := make([]Name, len(ns))
	copy(out, ns)
	return out
}

func cloneEls(els []Term) []Term {
	out := make([]Term, len(els))
	for i, el := range els {
		out[i] = Clone(el)
	}
	return out
}

// Subst replaces every free occurrence of Var(from) in *t with a clone of
// to. The walk is capture-avoiding: it does not descend into any scope that
// rebinds from. Unscoped channels are a separate namespace and are never
// substituted or captured.
func Subst(t *Term, from Name, to Term) {
	MaybeGrow(func() struct{} {
		switch s := (*t).(type) {
		case *Var:
			if s.Nam == from {
				*t = Clone(to)
			}
		case *Lam:
			if s.Nam != from {
				Subst(&s.Bod, from, to)
			}
		case *Chn:
			Subst(&s.Bod, from, to)
		case *Let:
			Subst(&s.Val, from, to)
			if s.Nam != from {
				Subst(&s.Nxt, from, to)
			}
		case *Use:
			Subst(&s.Val, from, to)
			if s.Nam != from {
				Subst(&s.Nxt, from, to)
			}
		case *Ltp:
			Subst(&s.Val, from, to)
			if !containsName(s.Bnd, from) {
				Subst(&s.Nxt, from, to)
			}
		case *Dup:
			Subst(&s.Val, from, to)
			if !containsName(s.Bnd, from) {
				Subst(&s.Nxt, from, to)
			}
		case *Mat:
			Subst(&s.Arg, from, to)
			for i := range s.Arms {
				arm := &s.Arms[i]
				if armBinds(arm, from) {
					continue
				}
				Subst(&arm.Bod, from, to)
			}
		case *Swt:
			Subst(&s.Arg, from, to)
			for i := range s.Arms {
				if i == len(s.Arms)-1 && s.Pred == from {
					continue
				}
				Subst(&s.Arms[i], from, to)
			}
		default:
			for _, child := range Children(t) {
				Subst(child, from, to)
			}
		}
		return struct{}{}
	})
}

func containsName(ns []Name, n Name) bool {
	for _, x := range ns {
		if x == n {
			return true
		}
	}
	return false
}

// armBinds reports whether the arm rebinds n: a variable arm binds its own
// name, a constructor arm binds its field names.
func armBinds(arm *MatchArm, n Name) bool {
	if len(arm.Fld) == 0 && arm.Ctr == n && n != "" {
		return true
	}
	return containsName(arm.Fld, n)
}

// FreeVars returns the multiset of free ordinary variables of t as an
// occurrence count per name. Channel declarations and uses do not count.
func FreeVars(t Term) map[Name]int {
	free := make(map[Name]int)
	countFreeVars(t, make(map[Name]int), free)
	return free
}

func countFreeVars(t Term, scope map[Name]int, free map[Name]int) {
	MaybeGrow(func() struct{} {
		switch s := t.(type) {
		case *Var:
			if scope[s.Nam] == 0 {
				free[s.Nam]++
			}
		case *Lam:
			withBinders(scope, []Name{s.Nam}, func() { countFreeVars(s.Bod, scope, free) })
		case *Chn:
			countFreeVars(s.Bod, scope, free)
		case *Let:
			countFreeVars(s.Val, scope, free)
			withBinders(scope, []Name{s.Nam}, func() { countFreeVars(s.Nxt, scope, free) })
		case *Use:
			countFreeVars(s.Val, scope, free)
			withBinders(scope, []Name{s.Nam}, func() { countFreeVars(s.Nxt, scope, free) })
		case *Ltp:
			countFreeVars(s.Val, scope, free)
			withBinders(scope, s.Bnd, func() { countFreeVars(s.Nxt, scope, free) })
		case *Dup:
			countFreeVars(s.Val, scope, free)
			withBinders(scope, s.Bnd, func() { countFreeVars(s.Nxt, scope, free) })
		case *Mat:
			countFreeVars(s.Arg, scope, free)
			for _, w := range s.With {
				if scope[w] == 0 {
					free[w]++
				}
			}
			for i := range s.Arms {
				arm := &s.Arms[i]
				binders := arm.Fld
				if len(arm.Fld) == 0 && arm.Ctr != "" {
					binders = []Name{arm.Ctr}
				}
				withBinders(scope, binders, func() { countFreeVars(arm.Bod, scope, free) })
			}
		case *Swt:
			countFreeVars(s.Arg, scope, free)
			for _, w := range s.With {
				if scope[w] == 0 {
					free[w]++
				}
			}
			for i, arm := range s.Arms {
				if i == len(s.Arms)-1 {
					withBinders(scope, []Name{s.Pred}, func() { countFreeVars(arm, scope, free) })
				} else {
					countFreeVars(arm, scope, free)
				}
			}
		case *Lnk, *Ref, *Num, *Nat, *Str, *Era, *Err:
		default:
			tt := t
			for _, child := range Children(&tt) {
				countFreeVars(*child, scope, free)
			}
		}
		return struct{}{}
	})
}

func withBinders(scope map[Name]int, binders []Name, f func()) {
	for _, b := range binders {
		if b != "" {
			scope[b]++
		}
	}
	f()
	for _, b := range binders {
		if b != "" {
			scope[b]--
		}
	}
}

// UnscopedVars returns the multisets of channel names declared (Chn) and
// used (Lnk) within t.
func UnscopedVars(t Term) (declared, used map[Name]int) {
	declared = make(map[Name]int)
	used = make(map[Name]int)
	var walk func(t Term)
	walk = func(t Term) {
		MaybeGrow(func() struct{} {
			switch s := t.(type) {
			case *Chn:
				declared[s.Nam]++
				walk(s.Bod)
			case *Lnk:
				used[s.Nam]++
			default:
				tt := t
				for _, child := range Children(&tt) {
					walk(*child)
				}
			}
			return struct{}{}
		})
	}
	walk(t)
	return declared, used
}
