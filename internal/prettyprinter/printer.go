// Package prettyprinter renders terms and books back to surface syntax.
//
// Two modes are provided: a dense single-line form used by equality and
// round-trip tests, and a multi-line indented form for user-facing output.
// Both are deterministic: books print in insertion order, match arms in ADT
// declaration order (the elaborator guarantees the arm order), nameless
// binders print as "*" and unscoped names print with a '$' prefix at both
// the declaration and the use site.
package prettyprinter

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/funvibe/weave/internal/term"
)

type Printer struct {
	buf    bytes.Buffer
	indent int
	dense  bool
}

// NewDense returns a printer producing the single-line form.
func NewDense() *Printer { return &Printer{dense: true} }

// NewIndented returns a printer producing the multi-line form.
func NewIndented() *Printer { return &Printer{} }

// Term renders a single term and returns the printer for chaining.
func (p *Printer) Term(t term.Term) *Printer {
	p.printTerm(t)
	return p
}

// Book renders data declarations and definitions in insertion order.
func (p *Printer) Book(book *term.Book) *Printer {
	for _, adtName := range book.AdtNames() {
		adt := book.Adt(adtName)
		if adt.Builtin {
			continue
		}
		p.printAdt(adt)
		p.newline()
	}
	for _, defName := range book.DefNames() {
		def := book.Def(defName)
		if def.Builtin {
			continue
		}
		p.printDef(def)
		p.newline()
	}
	return p
}

func (p *Printer) String() string { return p.buf.String() }

// PrintTerm is a convenience for the dense form of a single term.
func PrintTerm(t term.Term) string { return NewDense().Term(t).String() }

// PrintBook is a convenience for the dense form of a whole book.
func PrintBook(b *term.Book) string { return NewDense().Book(b).String() }

func (p *Printer) write(s string)        { p.buf.WriteString(s) }
func (p *Printer) writeName(n term.Name) { p.buf.WriteString(string(n)) }

func (p *Printer) newline() {
	if p.dense {
		p.write(" ")
		return
	}
	p.write("\n")
	p.write(strings.Repeat("  ", p.indent))
}

func (p *Printer) printAdt(adt *term.Adt) {
	p.write("data ")
	p.writeName(adt.Name)
	p.write(" = ")
	for i, ctr := range adt.Ctrs {
		if i > 0 {
			p.write(" | ")
		}
		if len(ctr.Fields) == 0 {
			p.writeName(ctr.Name)
			continue
		}
		p.write("(")
		p.writeName(ctr.Name)
		for _, f := range ctr.Fields {
			p.write(" ")
			p.writeName(f)
		}
		p.write(")")
	}
}

func (p *Printer) printDef(def *term.Definition) {
	for _, rule := range def.Rules {
		p.writeName(def.Name)
		for _, pat := range rule.Pats {
			p.write(" ")
			p.printPattern(pat)
		}
		p.write(" = ")
		p.printTerm(rule.Body)
		p.newline()
	}
}

func (p *Printer) printPattern(pat term.Pattern) {
	switch s := pat.(type) {
	case *term.VarPat:
		p.write(varAsStr(s.Nam))
	case *term.CtrPat:
		p.write("(")
		p.writeName(s.Nam)
		for _, f := range s.Fld {
			p.write(" ")
			p.printPattern(f)
		}
		p.write(")")
	}
}

func varAsStr(n term.Name) string {
	if n == "" {
		return "*"
	}
	return string(n)
}

// tagPrefix renders a tag before λ, '(' or '{'. Compiler-inserted tags are
// invisible.
func tagPrefix(tag term.Tag) string {
	switch tag.Kind {
	case term.TagNamed:
		return "#" + string(tag.Nam)
	case term.TagNumeric:
		return "#" + strconv.FormatUint(uint64(tag.Num), 10)
	default:
		return ""
	}
}

func (p *Printer) printTerm(t term.Term) {
	term.MaybeGrow(func() struct{} {
		p.printTermInner(t)
		return struct{}{}
	})
}

func (p *Printer) printTermInner(t term.Term) {
	switch s := t.(type) {
	case *term.Var:
		p.writeName(s.Nam)
	case *term.Lam:
		if s.Tag.Kind == term.TagNamed {
			p.write(tagPrefix(s.Tag))
			p.write(" ")
		}
		p.write("λ")
		p.write(varAsStr(s.Nam))
		p.write(" ")
		p.printTerm(s.Bod)
	case *term.Chn:
		if s.Tag.Kind == term.TagNamed {
			p.write(tagPrefix(s.Tag))
			p.write(" ")
		}
		p.write("λ$")
		p.writeName(s.Nam)
		p.write(" ")
		p.printTerm(s.Bod)
	case *term.Lnk:
		p.write("$")
		p.writeName(s.Nam)
	case *term.Ref:
		p.writeName(s.Nam)
	case *term.Let:
		p.write("let ")
		p.write(varAsStr(s.Nam))
		p.write(" = ")
		p.printTerm(s.Val)
		p.write(";")
		p.newline()
		p.printTerm(s.Nxt)
	case *term.Use:
		p.write("use ")
		p.writeName(s.Nam)
		p.write(" = ")
		p.printTerm(s.Val)
		p.write(";")
		p.newline()
		p.printTerm(s.Nxt)
	case *term.Ltp:
		p.write("let (")
		for i, b := range s.Bnd {
			if i > 0 {
				p.write(", ")
			}
			p.write(varAsStr(b))
		}
		p.write(") = ")
		p.printTerm(s.Val)
		p.write(";")
		p.newline()
		p.printTerm(s.Nxt)
	case *term.Dup:
		p.write("let ")
		p.write(tagPrefix(s.Tag))
		p.write("{")
		for i, b := range s.Bnd {
			if i > 0 {
				p.write(" ")
			}
			p.write(varAsStr(b))
		}
		p.write("} = ")
		p.printTerm(s.Val)
		p.write(";")
		p.newline()
		p.printTerm(s.Nxt)
	case *term.App:
		p.write(tagPrefix(s.Tag))
		p.write("(")
		p.printAppSpine(s)
		p.write(")")
	case *term.Mat:
		p.write("match ")
		if s.Bnd != "" {
			p.writeName(s.Bnd)
			p.write(" = ")
		}
		p.printTerm(s.Arg)
		p.printWith(s.With)
		p.printArms(len(s.Arms), func(i int) {
			arm := s.Arms[i]
			p.write(varAsStr(arm.Ctr))
			p.write(": ")
			p.printTerm(arm.Bod)
		})
	case *term.Swt:
		p.write("switch ")
		if s.Bnd != "" {
			p.writeName(s.Bnd)
			p.write(" = ")
		}
		p.printTerm(s.Arg)
		p.printWith(s.With)
		p.printArms(len(s.Arms), func(i int) {
			if i == len(s.Arms)-1 {
				p.write("_")
			} else {
				p.write(strconv.Itoa(i))
			}
			p.write(": ")
			p.printTerm(s.Arms[i])
		})
	case *term.Tup:
		p.write("(")
		for i, el := range s.Els {
			if i > 0 {
				p.write(", ")
			}
			p.printTerm(el)
		}
		p.write(")")
	case *term.Sup:
		p.write(tagPrefix(s.Tag))
		p.write("{")
		for i, el := range s.Els {
			if i > 0 {
				p.write(" ")
			}
			p.printTerm(el)
		}
		p.write("}")
	case *term.Lst:
		p.write("[")
		for i, el := range s.Els {
			if i > 0 {
				p.write(", ")
			}
			p.printTerm(el)
		}
		p.write("]")
	case *term.Opx:
		p.write("(")
		p.write(s.Opr.String())
		p.write(" ")
		p.printTerm(s.Fst)
		p.write(" ")
		p.printTerm(s.Snd)
		p.write(")")
	case *term.Num:
		p.write(strconv.FormatUint(s.Val, 10))
	case *term.Nat:
		p.write("#")
		p.write(strconv.FormatUint(s.Val, 10))
	case *term.Str:
		p.write(strconv.Quote(s.Val))
	case *term.Era:
		p.write("*")
	case *term.Err:
		p.write("<Invalid>")
	}
}

// printAppSpine flattens same-tagged application chains into (f a b ...).
func (p *Printer) printAppSpine(app *term.App) {
	if fun, ok := app.Fun.(*term.App); ok && fun.Tag == app.Tag {
		p.printAppSpine(fun)
	} else {
		p.printTerm(app.Fun)
	}
	p.write(" ")
	p.printTerm(app.Arg)
}

func (p *Printer) printWith(with []term.Name) {
	if len(with) == 0 {
		return
	}
	p.write(" with ")
	for i, w := range with {
		if i > 0 {
			p.write(", ")
		}
		p.writeName(w)
	}
}

func (p *Printer) printArms(n int, printArm func(i int)) {
	p.write(" {")
	p.indent++
	for i := 0; i < n; i++ {
		p.newline()
		printArm(i)
		if i != n-1 {
			p.write(";")
		}
	}
	p.indent--
	p.newline()
	p.write("}")
}
