package inet

import (
	"sort"

	"github.com/funvibe/weave/internal/diagnostics"
	"github.com/funvibe/weave/internal/term"
)

// Compiled is the encoder's output: one net per definition in book order,
// plus the name table mapping REF labels to definition names. The runtime
// contract is load(nodes, names): hand it the entry net's words and the
// table, and it resolves REF labels through the table as it reduces.
type Compiled struct {
	Names []term.Name
	Nets  []DefNet
	Entry term.Name
}

// DefNet pairs a definition with its encoded net.
type DefNet struct {
	Name term.Name
	Net  *INet
}

// EntryNodes returns the word array of the entrypoint's net, or nil when
// the book had no entrypoint.
func (c *Compiled) EntryNodes() []NodeVal {
	for _, dn := range c.Nets {
		if dn.Name == c.Entry {
			return dn.Net.Nodes
		}
	}
	return nil
}

// Net returns the net of the named definition, or nil.
func (c *Compiled) Net(name term.Name) *INet {
	for _, dn := range c.Nets {
		if dn.Name == name {
			return dn.Net
		}
	}
	return nil
}

// EncodeBook lowers every definition body into its net. Precondition: match
// elaboration, match encoding, linearization and floating have run, so
// bodies contain only core forms and every binder has exactly one use.
func EncodeBook(book *term.Book, diags *diagnostics.Collector) *Compiled {
	names := append([]term.Name(nil), book.DefNames()...)
	enc := &encoder{
		book:     book,
		diags:    diags,
		refIndex: make(map[term.Name]NodeVal, len(names)),
		labels:   newLabelTable(),
	}
	for i, nam := range names {
		enc.refIndex[nam] = NodeVal(i)
	}

	out := &Compiled{Names: names, Entry: book.Entrypoint}
	for _, nam := range names {
		def := book.Def(nam)
		net := enc.encodeDef(nam, def.Rule0().Body)
		out.Nets = append(out.Nets, DefNet{Name: nam, Net: net})
	}
	return out
}

// labelTable interns duplication/application labels. Label 0 is reserved
// for static (compiler-inserted untagged) nodes; named tags are interned
// densely and auto tags draw fresh labels from the same allocator, so label
// assignment is a pure function of traversal order.
type labelTable struct {
	named map[term.Name]NodeVal
	next  NodeVal
}

func newLabelTable() *labelTable {
	return &labelTable{named: make(map[term.Name]NodeVal), next: 1}
}

func (l *labelTable) of(tag term.Tag) NodeVal {
	switch tag.Kind {
	case term.TagNamed:
		if lab, ok := l.named[tag.Nam]; ok {
			return lab
		}
		lab := l.next
		l.next++
		l.named[tag.Nam] = lab
		return lab
	case term.TagNumeric:
		return NodeVal(tag.Num)
	case term.TagAuto:
		lab := l.next
		l.next++
		return lab
	default:
		return 0
	}
}

type encoder struct {
	book     *term.Book
	diags    *diagnostics.Collector
	refIndex map[term.Name]NodeVal
	labels   *labelTable
}

// defEncoder carries the per-definition wiring state. Both maps follow a
// link-or-store protocol: the first side of a wire to be encoded stores its
// port, the second side links the two.
type defEncoder struct {
	*encoder
	net  *INet
	rule term.Name

	// vars holds scoped binder/use ports awaiting their partner.
	vars map[term.Name]Port

	// globals holds unscoped channel ports; each name must be declared
	// exactly once and used exactly once within the definition.
	globals map[term.Name]Port
	matched map[term.Name]bool
}

func (e *encoder) encodeDef(rule term.Name, body term.Term) *INet {
	d := &defEncoder{
		encoder: e,
		net:     New(),
		rule:    rule,
		vars:    make(map[term.Name]Port),
		globals: make(map[term.Name]Port),
		matched: make(map[term.Name]bool),
	}
	d.encodeTerm(body, ROOT)

	// Every channel must have met its partner by now.
	for _, nam := range sortedKeys(d.globals) {
		d.diags.AddRuleError(diagnostics.UnboundUnscopedVariable, string(rule),
			"unscoped variable '$%s' has no partner site in this definition", nam)
		d.erase(d.globals[nam])
	}
	// Leftover scoped ports can only be binder slots whose variable was
	// erased upstream; cap them.
	for _, nam := range sortedKeys(d.vars) {
		d.erase(d.vars[nam])
	}
	return d.net
}

func (d *defEncoder) encodeTerm(t term.Term, up Port) {
	term.MaybeGrow(func() struct{} {
		switch s := t.(type) {
		case *term.Var:
			d.meet(d.vars, s.Nam, up)
		case *term.Lam:
			n := d.net.NewNode(CON | d.labels.of(s.Tag))
			d.net.Link(up, PortOf(n, 0))
			d.bind(s.Nam, PortOf(n, 1))
			d.encodeTerm(s.Bod, PortOf(n, 2))
		case *term.Chn:
			n := d.net.NewNode(CON | d.labels.of(s.Tag))
			d.net.Link(up, PortOf(n, 0))
			d.meetGlobal(s.Nam, PortOf(n, 1))
			d.encodeTerm(s.Bod, PortOf(n, 2))
		case *term.Lnk:
			d.meetGlobal(s.Nam, up)
		case *term.Ref:
			idx, known := d.refIndex[s.Nam]
			if !known {
				d.internal(up, "reference to unknown definition '%s'", s.Nam)
				return struct{}{}
			}
			n := d.net.NewNode(REF | idx)
			d.net.Link(up, PortOf(n, 0))
		case *term.App:
			n := d.net.NewNode(CON | d.labels.of(s.Tag))
			d.encodeTerm(s.Fun, PortOf(n, 2))
			d.encodeTerm(s.Arg, PortOf(n, 0))
			d.net.Link(up, PortOf(n, 1))
		case *term.Let:
			d.encodeBinding(s.Nam, s.Val, s.Nxt, up)
		case *term.Use:
			d.encodeBinding(s.Nam, s.Val, s.Nxt, up)
		case *term.Ltp:
			n := d.net.NewNode(CON)
			d.encodeTerm(s.Val, PortOf(n, 0))
			for i, port := range d.auxChain(n, CON, len(s.Bnd)) {
				d.bind(s.Bnd[i], port)
			}
			d.encodeTerm(s.Nxt, up)
		case *term.Dup:
			kind := DUP | d.labels.of(s.Tag)
			n := d.net.NewNode(kind)
			d.encodeTerm(s.Val, PortOf(n, 0))
			for i, port := range d.auxChain(n, kind, len(s.Bnd)) {
				d.bind(s.Bnd[i], port)
			}
			d.encodeTerm(s.Nxt, up)
		case *term.Tup:
			n := d.net.NewNode(CON)
			d.net.Link(up, PortOf(n, 0))
			for i, port := range d.auxChain(n, CON, len(s.Els)) {
				d.encodeTerm(s.Els[i], port)
			}
		case *term.Sup:
			kind := DUP | d.labels.of(s.Tag)
			n := d.net.NewNode(kind)
			d.net.Link(up, PortOf(n, 0))
			for i, port := range d.auxChain(n, kind, len(s.Els)) {
				d.encodeTerm(s.Els[i], port)
			}
		case *term.Opx:
			n := d.net.NewNode(NUMOP | NodeVal(s.Opr))
			d.encodeTerm(s.Fst, PortOf(n, 0))
			d.encodeTerm(s.Snd, PortOf(n, 1))
			d.net.Link(up, PortOf(n, 2))
		case *term.Num:
			n := d.net.NewNode(NUM | (s.Val & LabelMask))
			d.net.Link(up, PortOf(n, 0))
		case *term.Nat:
			n := d.net.NewNode(NUM | (s.Val & LabelMask))
			d.net.Link(up, PortOf(n, 0))
		case *term.Swt:
			d.encodeSwitch(s, up)
		case *term.Era:
			d.erase(up)
		case *term.Err:
			d.erase(up)
		default:
			d.internal(up, "term form %T survived to net encoding", t)
		}
		return struct{}{}
	})
}

// encodeBinding wires a let or use directly: the single use site of the
// binder becomes the value's up port, with no node in between.
func (d *defEncoder) encodeBinding(nam term.Name, val, nxt term.Term, up Port) {
	d.encodeTerm(nxt, up)
	if nam == "" {
		e := d.net.NewNode(ERA)
		d.encodeTerm(val, PortOf(e, 0))
		return
	}
	usePort, met := d.vars[nam]
	if !met {
		// The binder was never used; erase the value.
		e := d.net.NewNode(ERA)
		usePort = PortOf(e, 0)
	}
	delete(d.vars, nam)
	d.encodeTerm(val, usePort)
}

// encodeSwitch lowers a two-arm numeric switch to a MAT node: slot 0 takes
// the scrutinee, slot 1 a CON pair of the zero branch and the successor
// lambda binding the predecessor, slot 2 is the result.
func (d *defEncoder) encodeSwitch(s *term.Swt, up Port) {
	if len(s.Arms) != 2 {
		d.internal(up, "switch with %d arms survived to net encoding", len(s.Arms))
		return
	}
	m := d.net.NewNode(MAT)
	d.encodeTerm(s.Arg, PortOf(m, 0))

	pair := d.net.NewNode(CON)
	d.net.Link(PortOf(m, 1), PortOf(pair, 0))
	d.encodeTerm(s.Arms[0], PortOf(pair, 1))

	succ := d.net.NewNode(CON)
	d.net.Link(PortOf(pair, 2), PortOf(succ, 0))
	d.bind(s.Pred, PortOf(succ, 1))
	d.encodeTerm(s.Arms[1], PortOf(succ, 2))

	d.net.Link(up, PortOf(m, 2))
}

// bind registers a binder slot, erasing it immediately for nameless
// binders.
func (d *defEncoder) bind(nam term.Name, port Port) {
	if nam == "" {
		d.erase(port)
		return
	}
	d.meet(d.vars, nam, port)
}

// meet implements link-or-store on scoped names: binders and uses arrive in
// either order and the second one closes the wire.
func (d *defEncoder) meet(vars map[term.Name]Port, nam term.Name, port Port) {
	if other, ok := vars[nam]; ok {
		delete(vars, nam)
		d.net.Link(other, port)
		return
	}
	vars[nam] = port
}

// meetGlobal is link-or-store for unscoped channels, asserting the 1:1
// pairing invariant from the scope analyzer.
func (d *defEncoder) meetGlobal(nam term.Name, port Port) {
	if other, ok := d.globals[nam]; ok {
		delete(d.globals, nam)
		d.matched[nam] = true
		d.net.Link(other, port)
		return
	}
	if d.matched[nam] {
		d.diags.AddRuleError(diagnostics.UnboundUnscopedVariable, string(d.rule),
			"unscoped variable '$%s' is paired more than once in this definition", nam)
		d.erase(port)
		return
	}
	d.globals[nam] = port
}

// auxChain yields k attachment ports on a node's aux slots, extending the
// node with same-kind binary nodes on slot 2 when k > 2.
func (d *defEncoder) auxChain(n NodeID, kind NodeKind, k int) []Port {
	if k == 1 {
		return []Port{PortOf(n, 1)}
	}
	ports := make([]Port, 0, k)
	cur := n
	for i := 0; i < k; i++ {
		if i == k-1 {
			ports = append(ports, PortOf(cur, 2))
			break
		}
		ports = append(ports, PortOf(cur, 1))
		if i < k-2 {
			next := d.net.NewNode(kind)
			d.net.Link(PortOf(cur, 2), PortOf(next, 0))
			cur = next
		}
	}
	return ports
}

func (d *defEncoder) erase(port Port) {
	e := d.net.NewNode(ERA)
	d.net.Link(port, PortOf(e, 0))
}

func (d *defEncoder) internal(up Port, format string, args ...any) {
	d.diags.AddRuleError(diagnostics.MalformedDefinition, string(d.rule), format, args...)
	d.erase(up)
}

func sortedKeys(m map[term.Name]Port) []term.Name {
	out := make([]term.Name, 0, len(m))
	for nam := range m {
		out = append(out, nam)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
