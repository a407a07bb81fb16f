// Package tree stores search trees as an arena of nodes addressed by integer
// handles. Each node keeps only a parent handle, so paths are rebuilt by walking
// parents back to the root.
package tree

// Handle addresses a node inside a Tree.
type Handle int

// NoParent is the parent handle of a root node.
const NoParent Handle = -1

type node[S comparable] struct {
	parent Handle
	state  S
	g      float64
}

// Tree is an append-only arena of search nodes. A Tree may hold several roots.
type Tree[S comparable] struct {
	nodes []node[S]
}

// New returns an empty tree with room for capacity nodes.
func New[S comparable](capacity int) *Tree[S] {
	return &Tree[S]{nodes: make([]node[S], 0, capacity)}
}

// Root adds a parentless node with zero cost.
func (t *Tree[S]) Root(state S) Handle {
	return t.Add(NoParent, state, 0)
}

// Add appends a node and returns its handle.
func (t *Tree[S]) Add(parent Handle, state S, g float64) Handle {
	t.nodes = append(t.nodes, node[S]{parent: parent, state: state, g: g})
	return Handle(len(t.nodes) - 1)
}

func (t *Tree[S]) State(h Handle) S       { return t.nodes[h].state }
func (t *Tree[S]) Cost(h Handle) float64  { return t.nodes[h].g }
func (t *Tree[S]) Parent(h Handle) Handle { return t.nodes[h].parent }
func (t *Tree[S]) Len() int               { return len(t.nodes) }

// Path returns the states from the root down to h.
func (t *Tree[S]) Path(h Handle) []S {
	var path []S
	for current := h; current != NoParent; current = t.nodes[current].parent {
		path = append(path, t.nodes[current].state)
	}
	// reverse path
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Join stitches two trees that meet at the same state: the forward path from
// its root to fh, followed by the backward path from bh to its root. The
// meeting state appears once.
func Join[S comparable](forward *Tree[S], fh Handle, backward *Tree[S], bh Handle) []S {
	path := forward.Path(fh)
	for current := backward.nodes[bh].parent; current != NoParent; current = backward.nodes[current].parent {
		path = append(path, backward.nodes[current].state)
	}
	return path
}
