// Package inet holds the interaction-net intermediate form and the encoder
// that lowers a canonicalized book into it.
//
// A net is a flat array of 64-bit words. Each node occupies four
// consecutive words: three ports (slots 0, 1, 2) and one kind word. A port
// packs an address and a slot as (node<<2)|slot; the kind word carries the
// node tag in its top TagWidth bits and a label in the rest. Word index 1 is
// the reserved ROOT port of a deadlocked eraser node at address 0.
package inet

// NodeVal is one 64-bit word of the net.
type NodeVal = uint64

type (
	NodeKind = NodeVal
	Port     = NodeVal
	NodeID   = NodeVal
	SlotID   = NodeVal
)

// TagWidth is the number of bits reserved for the node tag at the top of
// the kind word.
const TagWidth = 3

const TagShift = 64 - TagWidth

const (
	ERA   NodeKind = 0 << TagShift
	CON   NodeKind = 1 << TagShift
	DUP   NodeKind = 2 << TagShift
	REF   NodeKind = 3 << TagShift
	NUM   NodeKind = 4 << TagShift
	NUMOP NodeKind = 5 << TagShift
	MAT   NodeKind = 6 << TagShift
)

const (
	LabelMask NodeKind = (1 << TagShift) - 1
	TagMask   NodeKind = ^LabelMask
)

// ROOT is the port at word index 1, on the deadlocked root node at
// address 0.
const ROOT Port = 1

// INet is a growable net.
type INet struct {
	Nodes []NodeVal
}

// New creates a net holding only the deadlocked root node: its slot 2
// points at slot 0, slot 1 is the free ROOT port, and the kind is an
// eraser.
func New() *INet {
	return &INet{Nodes: []NodeVal{2, 1, 0, ERA}}
}

// NewNode appends a node of the given kind with all three ports pointing at
// themselves (unconnected) and returns its address.
func (n *INet) NewNode(kind NodeKind) NodeID {
	node := Addr(NodeVal(len(n.Nodes)))
	n.Nodes = append(n.Nodes, PortOf(node, 0), PortOf(node, 1), PortOf(node, 2), kind)
	return node
}

// PortOf builds a port from an address / slot pair.
func PortOf(node NodeID, slot SlotID) Port {
	return node<<2 | slot
}

// Addr returns the address of a port.
func Addr(port Port) NodeID {
	return port >> 2
}

// Slot returns the slot of a port.
func Slot(port Port) SlotID {
	return port & 3
}

// Enter returns the port on the other side of a wire.
func (n *INet) Enter(port Port) Port {
	return n.Nodes[port]
}

// Kind returns the kind word of a node.
func (n *INet) Kind(node NodeID) NodeKind {
	return n.Nodes[PortOf(node, 3)]
}

// Tag returns the tag bits of a node's kind.
func (n *INet) Tag(node NodeID) NodeKind {
	return n.Kind(node) & TagMask
}

// Label returns the label bits of a node's kind.
func (n *INet) Label(node NodeID) NodeVal {
	return n.Kind(node) & LabelMask
}

// Link wires two ports to each other.
func (n *INet) Link(a, b Port) {
	n.Nodes[a] = b
	n.Nodes[b] = a
}
