package term

// Children enumerates pointers to every direct subterm slot of *t, in a
// fixed order: value before continuation for the let family, function before
// argument, scrutinee before arms, elements left to right. Rewrites through
// the returned pointers happen in place.
func Children(t *Term) []*Term {
	switch s := (*t).(type) {
	case *Lam:
		return []*Term{&s.Bod}
	case *Chn:
		return []*Term{&s.Bod}
	case *Let:
		return []*Term{&s.Val, &s.Nxt}
	case *Use:
		return []*Term{&s.Val, &s.Nxt}
	case *Ltp:
		return []*Term{&s.Val, &s.Nxt}
	case *Dup:
		return []*Term{&s.Val, &s.Nxt}
	case *App:
		return []*Term{&s.Fun, &s.Arg}
	case *Mat:
		out := make([]*Term, 0, 1+len(s.Arms))
		out = append(out, &s.Arg)
		for i := range s.Arms {
			out = append(out, &s.Arms[i].Bod)
		}
		return out
	case *Swt:
		out := make([]*Term, 0, 1+len(s.Arms))
		out = append(out, &s.Arg)
		for i := range s.Arms {
			out = append(out, &s.Arms[i])
		}
		return out
	case *Tup:
		return elsPtrs(s.Els)
	case *Sup:
		return elsPtrs(s.Els)
	case *Lst:
		return elsPtrs(s.Els)
	case *Opx:
		return []*Term{&s.Fst, &s.Snd}
	default:
		return nil
	}
}

func elsPtrs(els []Term) []*Term {
	out := make([]*Term, len(els))
	for i := range els {
		out[i] = &els[i]
	}
	return out
}

// FloatChildren is the traversal used by the combinator floater. It differs
// from Children in two ways: application spines are flattened into
// [arg_n, ..., arg_1, head] so each argument and the head are visited
// without recursing into rebuilt spines, and lambda/channel binders are
// transparent (their body's float children are returned directly).
func FloatChildren(t *Term) []*Term {
	switch s := (*t).(type) {
	case *App:
		var args []*Term
		args = append(args, &s.Arg)
		app := &s.Fun
		for {
			inner, ok := (*app).(*App)
			if !ok {
				break
			}
			args = append(args, &inner.Arg)
			app = &inner.Fun
		}
		args = append(args, app)
		return args
	case *Mat:
		out := []*Term{&s.Arg}
		for i := range s.Arms {
			out = append(out, &s.Arms[i].Bod)
		}
		return out
	case *Swt:
		out := []*Term{&s.Arg}
		for i := range s.Arms {
			out = append(out, &s.Arms[i])
		}
		return out
	case *Tup:
		return elsPtrs(s.Els)
	case *Sup:
		return elsPtrs(s.Els)
	case *Lst:
		return elsPtrs(s.Els)
	case *Ltp:
		return []*Term{&s.Val, &s.Nxt}
	case *Let:
		return []*Term{&s.Val, &s.Nxt}
	case *Use:
		return []*Term{&s.Val, &s.Nxt}
	case *Dup:
		return []*Term{&s.Val, &s.Nxt}
	case *Opx:
		return []*Term{&s.Fst, &s.Snd}
	case *Lam:
		return FloatChildren(&s.Bod)
	case *Chn:
		return FloatChildren(&s.Bod)
	default:
		return nil
	}
}
