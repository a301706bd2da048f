package fixpoint

import (
	"fmt"
	"sync"

	"github.com/cs-au-dk/immut/analysis/defs"
	"github.com/cs-au-dk/immut/analysis/detect"
	L "github.com/cs-au-dk/immut/analysis/lattice"
	"github.com/cs-au-dk/immut/analysis/model"
)

// State of a computation node.
type State uint8

const (
	Unanalyzed State = iota
	Provisional
	Final
)

func (s State) String() string {
	switch s {
	case Unanalyzed:
		return "Unanalyzed"
	case Provisional:
		return "Provisional"
	case Final:
		return "Final"
	}
	return fmt.Sprintf("state(%d)", s)
}

// Node is the computation of one classification. Its value only increases
// until the node is final.
type Node struct {
	key  defs.Key
	deps []defs.Edge
	// Nodes with a regular (non-strict) dependency on this node. Strict
	// dependents are notified through the result store.
	dependents []*Node
	partition  int
	// Set if the dependencies of the node could not be resolved.
	err error
	// Set if the node was finalized by a cycle resolution that did not
	// stabilize.
	forced bool

	// Facts consulted by the transfer function.
	class    *model.Class
	field    *model.Field
	dep      detect.Dependence
	subtypes []defs.ClassID

	mu    sync.RWMutex
	state State
	value L.Element
}

func newNode(key defs.Key) *Node {
	return &Node{
		key:   key,
		value: L.Lattices().ForDimension(key.Dim).Bot(),
	}
}

func (n *Node) Key() defs.Key {
	return n.key
}

func (n *Node) Deps() []defs.Edge {
	return n.deps
}

func (n *Node) Partition() int {
	return n.partition
}

func (n *Node) Err() error {
	return n.err
}

// Get returns the current value and state of the node.
func (n *Node) Get() (L.Element, State) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.value, n.state
}

func (n *Node) String() string {
	v, s := n.Get()
	return fmt.Sprintf("%s = %s (%s)", n.key, v, s)
}
