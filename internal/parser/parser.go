// Package parser turns Weave source text into a term.Book. It is a
// hand-written recursive-descent parser over the lexer's token stream; all
// parse problems are reported through the diagnostics collector and the
// parser keeps going where it can resynchronize.
package parser

import (
	"strconv"
	"strings"

	"github.com/funvibe/weave/internal/diagnostics"
	"github.com/funvibe/weave/internal/lexer"
	"github.com/funvibe/weave/internal/term"
	"github.com/funvibe/weave/internal/token"
)

type Parser struct {
	l     *lexer.Lexer
	diags *diagnostics.Collector

	curToken  token.Token
	peekToken token.Token
}

func New(l *lexer.Lexer, diags *diagnostics.Collector) *Parser {
	p := &Parser{l: l, diags: diags}
	p.nextToken()
	p.nextToken()
	return p
}

// ParseBook parses a whole source file.
func ParseBook(source string, diags *diagnostics.Collector) *term.Book {
	p := New(lexer.New(source), diags)
	return p.parseBook()
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) errorf(format string, args ...any) {
	args = append(args, p.curToken.Line, p.curToken.Column)
	p.diags.AddError(diagnostics.ParseError, format+" (at line %d, column %d)", args...)
}

func (p *Parser) expect(typ token.TokenType) bool {
	if p.curToken.Type != typ {
		p.errorf("expected '%s', found '%s'", typ, p.curToken.Lexeme)
		return false
	}
	p.nextToken()
	return true
}

func (p *Parser) parseBook() *term.Book {
	book := term.NewBook()
	for p.curToken.Type != token.EOF {
		switch p.curToken.Type {
		case token.DATA:
			p.parseData(book)
		case token.IDENT:
			p.parseRule(book)
		default:
			p.errorf("expected a definition or data declaration, found '%s'", p.curToken.Lexeme)
			p.nextToken()
		}
	}
	return book
}

// parseData parses `data Name = Ctr | (Ctr field ...) | ...`.
func (p *Parser) parseData(book *term.Book) {
	p.nextToken() // data
	if p.curToken.Type != token.IDENT {
		p.errorf("expected data type name, found '%s'", p.curToken.Lexeme)
		return
	}
	adt := &term.Adt{Name: term.Name(p.curToken.Lexeme)}
	p.nextToken()
	if !p.expect(token.ASSIGN) {
		return
	}
	for {
		ctr, ok := p.parseDataCtr()
		if !ok {
			return
		}
		adt.Ctrs = append(adt.Ctrs, ctr)
		if p.curToken.Type != token.PIPE {
			break
		}
		p.nextToken()
	}
	book.AddAdt(adt)
}

func (p *Parser) parseDataCtr() (term.AdtCtr, bool) {
	switch p.curToken.Type {
	case token.IDENT:
		ctr := term.AdtCtr{Name: term.Name(p.curToken.Lexeme)}
		p.nextToken()
		return ctr, true
	case token.LPAREN:
		p.nextToken()
		if p.curToken.Type != token.IDENT {
			p.errorf("expected constructor name, found '%s'", p.curToken.Lexeme)
			return term.AdtCtr{}, false
		}
		ctr := term.AdtCtr{Name: term.Name(p.curToken.Lexeme)}
		p.nextToken()
		for p.curToken.Type == token.IDENT {
			ctr.Fields = append(ctr.Fields, term.Name(p.curToken.Lexeme))
			p.nextToken()
		}
		if !p.expect(token.RPAREN) {
			return term.AdtCtr{}, false
		}
		return ctr, true
	default:
		p.errorf("expected constructor, found '%s'", p.curToken.Lexeme)
		return term.AdtCtr{}, false
	}
}

// parseRule parses `name pat* = term` and appends the rule to the named
// definition, creating it on first sight.
func (p *Parser) parseRule(book *term.Book) {
	name := term.Name(p.curToken.Lexeme)
	p.nextToken()

	var pats []term.Pattern
	for p.curToken.Type != token.ASSIGN && p.curToken.Type != token.EOF {
		pat, ok := p.parsePattern()
		if !ok {
			return
		}
		pats = append(pats, pat)
	}
	if !p.expect(token.ASSIGN) {
		return
	}
	body := p.parseTerm()

	rule := &term.Rule{Pats: pats, Body: body}
	if def := book.Def(name); def != nil {
		def.Rules = append(def.Rules, rule)
	} else {
		book.AddDef(&term.Definition{Name: name, Rules: []*term.Rule{rule}})
	}
}

func (p *Parser) parsePattern() (term.Pattern, bool) {
	switch p.curToken.Type {
	case token.IDENT:
		pat := &term.VarPat{Nam: term.Name(p.curToken.Lexeme)}
		p.nextToken()
		return pat, true
	case token.STAR:
		p.nextToken()
		return &term.VarPat{}, true
	case token.LPAREN:
		p.nextToken()
		if p.curToken.Type != token.IDENT {
			p.errorf("expected constructor pattern, found '%s'", p.curToken.Lexeme)
			return nil, false
		}
		pat := &term.CtrPat{Nam: term.Name(p.curToken.Lexeme)}
		p.nextToken()
		for p.curToken.Type == token.IDENT || p.curToken.Type == token.STAR {
			if p.curToken.Type == token.STAR {
				pat.Fld = append(pat.Fld, &term.VarPat{})
			} else {
				pat.Fld = append(pat.Fld, &term.VarPat{Nam: term.Name(p.curToken.Lexeme)})
			}
			p.nextToken()
		}
		if !p.expect(token.RPAREN) {
			return nil, false
		}
		return pat, true
	default:
		p.errorf("expected pattern, found '%s'", p.curToken.Lexeme)
		return nil, false
	}
}

// parseTerm parses a single term starting at the current token.
func (p *Parser) parseTerm() term.Term {
	switch p.curToken.Type {
	case token.LAMBDA:
		return p.parseLambda(term.StaticTag())
	case token.HASH:
		return p.parseTagged()
	case token.NAT:
		if p.peekToken.Type == token.LBRACE {
			k := p.parseNumLit(p.curToken.Literal)
			p.nextToken()
			return p.parseSup(term.NumericTag(uint32(k)))
		}
		val := p.parseNumLit(p.curToken.Literal)
		p.nextToken()
		return &term.Nat{Val: val}
	case token.IDENT:
		nam := term.Name(p.curToken.Lexeme)
		p.nextToken()
		return &term.Var{Nam: nam}
	case token.UNSCOPED:
		nam := term.Name(p.curToken.Lexeme)
		p.nextToken()
		return &term.Lnk{Nam: nam}
	case token.NUMBER:
		val := p.parseNumLit(p.curToken.Literal)
		p.nextToken()
		return &term.Num{Val: val}
	case token.STRING:
		val := p.curToken.Literal
		p.nextToken()
		return &term.Str{Val: val}
	case token.STAR:
		p.nextToken()
		return &term.Era{}
	case token.LPAREN:
		return p.parseParens(term.StaticTag())
	case token.LBRACE:
		return p.parseSup(term.AutoTag())
	case token.LBRACKET:
		return p.parseList()
	case token.LET:
		return p.parseLet()
	case token.USE:
		return p.parseUse()
	case token.MATCH:
		return p.parseMatch()
	case token.SWITCH:
		return p.parseSwitch()
	default:
		p.errorf("expected a term, found '%s'", p.curToken.Lexeme)
		p.nextToken()
		return &term.Err{}
	}
}

func (p *Parser) parseNumLit(lit string) uint64 {
	base := 10
	digits := lit
	if strings.HasPrefix(lit, "0x") || strings.HasPrefix(lit, "0X") {
		base = 16
		digits = lit[2:]
	}
	val, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		p.errorf("invalid number literal '%s'", lit)
		return 0
	}
	return val
}

// parseLambda parses `λx bod`, `λ* bod` and `λ$x bod` (channel declaration).
func (p *Parser) parseLambda(tag term.Tag) term.Term {
	p.nextToken() // λ
	switch p.curToken.Type {
	case token.IDENT:
		nam := term.Name(p.curToken.Lexeme)
		p.nextToken()
		return &term.Lam{Tag: tag, Nam: nam, Bod: p.parseTerm()}
	case token.STAR:
		p.nextToken()
		return &term.Lam{Tag: tag, Bod: p.parseTerm()}
	case token.UNSCOPED:
		nam := term.Name(p.curToken.Lexeme)
		p.nextToken()
		return &term.Chn{Tag: tag, Nam: nam, Bod: p.parseTerm()}
	default:
		p.errorf("expected lambda binder, found '%s'", p.curToken.Lexeme)
		p.nextToken()
		return &term.Err{}
	}
}

// parseTagged parses `#name` followed by a lambda, application or
// superposition.
func (p *Parser) parseTagged() term.Term {
	p.nextToken() // #
	if p.curToken.Type != token.IDENT {
		p.errorf("expected tag name after '#', found '%s'", p.curToken.Lexeme)
		return &term.Err{}
	}
	tag := term.NamedTag(term.Name(p.curToken.Lexeme))
	p.nextToken()
	switch p.curToken.Type {
	case token.LAMBDA:
		return p.parseLambda(tag)
	case token.LPAREN:
		return p.parseParens(tag)
	case token.LBRACE:
		return p.parseSup(tag)
	default:
		p.errorf("expected λ, '(' or '{' after tag, found '%s'", p.curToken.Lexeme)
		return &term.Err{}
	}
}

// parseParens parses `(op a b)`, `(a, b, ...)` and application spines
// `(f a b ...)`.
func (p *Parser) parseParens(tag term.Tag) term.Term {
	p.nextToken() // (

	if op, ok := p.operatorHead(); ok {
		p.nextToken()
		fst := p.parseTerm()
		snd := p.parseTerm()
		p.expect(token.RPAREN)
		return &term.Opx{Opr: op, Fst: fst, Snd: snd}
	}

	first := p.parseTerm()

	if p.curToken.Type == token.COMMA {
		els := []term.Term{first}
		for p.curToken.Type == token.COMMA {
			p.nextToken()
			els = append(els, p.parseTerm())
		}
		p.expect(token.RPAREN)
		return &term.Tup{Els: els}
	}

	out := first
	for p.curToken.Type != token.RPAREN && p.curToken.Type != token.EOF {
		arg := p.parseTerm()
		out = &term.App{Tag: tag, Fun: out, Arg: arg}
	}
	p.expect(token.RPAREN)
	return out
}

// operatorHead recognizes an operator in head position of a parenthesized
// form. '*' only counts as multiplication when operands follow.
func (p *Parser) operatorHead() (term.Opr, bool) {
	if p.curToken.Type == token.STAR {
		if p.peekToken.Type == token.RPAREN {
			return 0, false
		}
		return term.OpMul, true
	}
	switch p.curToken.Type {
	case token.PLUS, token.MINUS, token.SLASH, token.PERCENT, token.EQ,
		token.NE, token.LT, token.GT, token.LTE, token.GTE, token.AMP,
		token.PIPE, token.CARET, token.SHL, token.SHR:
		op, ok := term.OprFromString(p.curToken.Lexeme)
		return op, ok
	}
	return 0, false
}

func (p *Parser) parseSup(tag term.Tag) term.Term {
	p.nextToken() // {
	var els []term.Term
	for p.curToken.Type != token.RBRACE && p.curToken.Type != token.EOF {
		els = append(els, p.parseTerm())
	}
	p.expect(token.RBRACE)
	if len(els) < 2 {
		p.errorf("superposition needs at least two elements")
		return &term.Err{}
	}
	return &term.Sup{Tag: tag, Els: els}
}

func (p *Parser) parseList() term.Term {
	p.nextToken() // [
	var els []term.Term
	for p.curToken.Type != token.RBRACKET && p.curToken.Type != token.EOF {
		els = append(els, p.parseTerm())
		if p.curToken.Type == token.COMMA {
			p.nextToken()
		}
	}
	p.expect(token.RBRACKET)
	return &term.Lst{Els: els}
}

// parseLet parses the let family:
//
//	let x = v; n          single binder (or let * = v; n)
//	let (a, b) = v; n     tuple destructuring
//	let {a b} = v; n      duplication, optionally tagged: let #l{a b} = v; n
func (p *Parser) parseLet() term.Term {
	p.nextToken() // let
	switch p.curToken.Type {
	case token.IDENT, token.STAR:
		var nam term.Name
		if p.curToken.Type == token.IDENT {
			nam = term.Name(p.curToken.Lexeme)
		}
		p.nextToken()
		val, nxt := p.parseBindingTail()
		return &term.Let{Nam: nam, Val: val, Nxt: nxt}
	case token.LPAREN:
		p.nextToken()
		var bnd []term.Name
		for p.curToken.Type == token.IDENT || p.curToken.Type == token.STAR {
			if p.curToken.Type == token.IDENT {
				bnd = append(bnd, term.Name(p.curToken.Lexeme))
			} else {
				bnd = append(bnd, "")
			}
			p.nextToken()
			if p.curToken.Type == token.COMMA {
				p.nextToken()
			}
		}
		p.expect(token.RPAREN)
		val, nxt := p.parseBindingTail()
		return &term.Ltp{Bnd: bnd, Val: val, Nxt: nxt}
	case token.LBRACE, token.HASH, token.NAT:
		tag := term.AutoTag()
		switch p.curToken.Type {
		case token.HASH:
			p.nextToken()
			if p.curToken.Type != token.IDENT {
				p.errorf("expected tag name after '#', found '%s'", p.curToken.Lexeme)
				return &term.Err{}
			}
			tag = term.NamedTag(term.Name(p.curToken.Lexeme))
			p.nextToken()
		case token.NAT:
			tag = term.NumericTag(uint32(p.parseNumLit(p.curToken.Literal)))
			p.nextToken()
		}
		if !p.expect(token.LBRACE) {
			return &term.Err{}
		}
		var bnd []term.Name
		for p.curToken.Type == token.IDENT || p.curToken.Type == token.STAR {
			if p.curToken.Type == token.IDENT {
				bnd = append(bnd, term.Name(p.curToken.Lexeme))
			} else {
				bnd = append(bnd, "")
			}
			p.nextToken()
		}
		p.expect(token.RBRACE)
		val, nxt := p.parseBindingTail()
		return &term.Dup{Tag: tag, Bnd: bnd, Val: val, Nxt: nxt}
	default:
		p.errorf("expected let binder, found '%s'", p.curToken.Lexeme)
		p.nextToken()
		return &term.Err{}
	}
}

func (p *Parser) parseBindingTail() (val, nxt term.Term) {
	p.expect(token.ASSIGN)
	val = p.parseTerm()
	p.expect(token.SEMICOLON)
	nxt = p.parseTerm()
	return val, nxt
}

func (p *Parser) parseUse() term.Term {
	p.nextToken() // use
	if p.curToken.Type != token.IDENT {
		p.errorf("expected use binder, found '%s'", p.curToken.Lexeme)
		return &term.Err{}
	}
	nam := term.Name(p.curToken.Lexeme)
	p.nextToken()
	val, nxt := p.parseBindingTail()
	return &term.Use{Nam: nam, Val: val, Nxt: nxt}
}

// parseMatch parses `match x { arms }`, `match x = arg with a, b { arms }`
// and `match (f x) { arms }`. Without an explicit scrutinee the bind
// variable itself is matched; without a binder the elaborator hoists the
// scrutinee to a fresh "%matched" name.
func (p *Parser) parseMatch() term.Term {
	p.nextToken() // match
	bnd, arg := p.parseScrutinee()
	with := p.parseWith()

	if !p.expect(token.LBRACE) {
		return &term.Err{}
	}
	mat := &term.Mat{Bnd: bnd, Arg: arg, With: with}
	for p.curToken.Type != token.RBRACE && p.curToken.Type != token.EOF {
		arm := term.MatchArm{}
		switch p.curToken.Type {
		case token.IDENT:
			arm.Ctr = term.Name(p.curToken.Lexeme)
			p.nextToken()
		case token.STAR:
			p.nextToken()
		default:
			p.errorf("expected match arm pattern, found '%s'", p.curToken.Lexeme)
			return &term.Err{}
		}
		if !p.expect(token.COLON) {
			return &term.Err{}
		}
		arm.Bod = p.parseTerm()
		mat.Arms = append(mat.Arms, arm)
		if p.curToken.Type == token.SEMICOLON {
			p.nextToken()
		}
	}
	p.expect(token.RBRACE)
	if len(mat.Arms) == 0 {
		p.errorf("match needs at least one arm")
		return &term.Err{}
	}
	return mat
}

// parseSwitch parses `switch x = arg { 0: a; 1: b; _: c }`. Arms must be the
// numbers 0..k-1 in order followed by the default '_'.
func (p *Parser) parseSwitch() term.Term {
	p.nextToken() // switch
	bnd, arg := p.parseScrutinee()
	with := p.parseWith()

	if !p.expect(token.LBRACE) {
		return &term.Err{}
	}
	swt := &term.Swt{Bnd: bnd, Arg: arg, With: with}
	sawDefault := false
	for p.curToken.Type != token.RBRACE && p.curToken.Type != token.EOF {
		switch {
		case p.curToken.Type == token.NUMBER:
			want := strconv.Itoa(len(swt.Arms))
			if p.curToken.Lexeme != want {
				p.errorf("switch arms must count up from 0: expected '%s', found '%s'", want, p.curToken.Lexeme)
			}
			p.nextToken()
		case p.curToken.Type == token.IDENT && p.curToken.Lexeme == "_":
			sawDefault = true
			p.nextToken()
		default:
			p.errorf("expected switch arm pattern, found '%s'", p.curToken.Lexeme)
			return &term.Err{}
		}
		if !p.expect(token.COLON) {
			return &term.Err{}
		}
		swt.Arms = append(swt.Arms, p.parseTerm())
		if p.curToken.Type == token.SEMICOLON {
			p.nextToken()
		}
		if sawDefault {
			break
		}
	}
	p.expect(token.RBRACE)
	if !sawDefault {
		p.errorf("switch needs a '_' default arm")
		return &term.Err{}
	}
	// The default arm observes the scrutinee minus the number of literal
	// arms through this binder.
	swt.Pred = bnd + "-" + term.Name(strconv.Itoa(len(swt.Arms)-1))
	return swt
}

// parseScrutinee handles the `x`, `x = arg` and bare-term scrutinee forms
// shared by match and switch.
func (p *Parser) parseScrutinee() (term.Name, term.Term) {
	if p.curToken.Type == token.IDENT {
		bnd := term.Name(p.curToken.Lexeme)
		p.nextToken()
		if p.curToken.Type == token.ASSIGN {
			p.nextToken()
			return bnd, p.parseTerm()
		}
		return bnd, &term.Var{Nam: bnd}
	}
	return "", p.parseTerm()
}

func (p *Parser) parseWith() []term.Name {
	if p.curToken.Type != token.WITH {
		return nil
	}
	p.nextToken()
	var with []term.Name
	for p.curToken.Type == token.IDENT {
		with = append(with, term.Name(p.curToken.Lexeme))
		p.nextToken()
		if p.curToken.Type == token.COMMA {
			p.nextToken()
		} else {
			break
		}
	}
	return with
}
