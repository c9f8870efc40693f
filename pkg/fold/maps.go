package fold

// handleMap is a dense slice keyed by a fold handle that follows the growth
// of the arena it is attached to.
type handleMap[V any] struct {
	values []V
	size   func() int
}

// Notify resizes the map to the current arena size. Existing entries are
// preserved and new slots hold the zero value.
func (m *handleMap[V]) Notify() {
	n := m.size()
	if n <= len(m.values) {
		return
	}

	m.values = append(m.values, make([]V, n-len(m.values))...)
}

// Len returns the number of slots, which is the arena's handle bound.
func (m *handleMap[V]) Len() int {
	return len(m.values)
}

// NodeFoldMap associates a value with every node fold of a Tree. It must not
// outlive the tree.
type NodeFoldMap[V any] struct {
	handleMap[V]

	tree *Tree
}

// NewNodeFoldMap creates a map sized to tree's node fold arena and attaches
// it for growth notifications.
func NewNodeFoldMap[V any](tree *Tree) *NodeFoldMap[V] {
	m := &NodeFoldMap[V]{tree: tree}
	m.size = tree.MaxNodeFoldID
	m.values = make([]V, tree.MaxNodeFoldID())

	tree.AttachNodeFoldObserver(m)

	return m
}

// Get returns the value stored for nodeFold.
func (m *NodeFoldMap[V]) Get(nodeFold NodeFold) V {
	return m.values[nodeFold]
}

// Set stores value for nodeFold.
func (m *NodeFoldMap[V]) Set(nodeFold NodeFold, value V) {
	m.values[nodeFold] = value
}

// Ref returns a pointer to the slot of nodeFold. The pointer is invalidated by
// the next node fold arena growth.
func (m *NodeFoldMap[V]) Ref(nodeFold NodeFold) *V {
	return &m.values[nodeFold]
}

// Close detaches the map from its tree.
func (m *NodeFoldMap[V]) Close() {
	m.tree.DetachNodeFoldObserver(m)
}

// EdgeFoldMap associates a value with every edge fold of a Tree. It must not
// outlive the tree.
type EdgeFoldMap[V any] struct {
	handleMap[V]

	tree *Tree
}

// NewEdgeFoldMap creates a map sized to tree's edge fold arena and attaches
// it for growth notifications.
func NewEdgeFoldMap[V any](tree *Tree) *EdgeFoldMap[V] {
	m := &EdgeFoldMap[V]{tree: tree}
	m.size = tree.MaxEdgeFoldID
	m.values = make([]V, tree.MaxEdgeFoldID())

	tree.AttachEdgeFoldObserver(m)

	return m
}

// Get returns the value stored for edgeFold.
func (m *EdgeFoldMap[V]) Get(edgeFold EdgeFold) V {
	return m.values[edgeFold]
}

// Set stores value for edgeFold.
func (m *EdgeFoldMap[V]) Set(edgeFold EdgeFold, value V) {
	m.values[edgeFold] = value
}

// Ref returns a pointer to the slot of edgeFold. The pointer is invalidated by
// the next edge fold arena growth.
func (m *EdgeFoldMap[V]) Ref(edgeFold EdgeFold) *V {
	return &m.values[edgeFold]
}

// Close detaches the map from its tree.
func (m *EdgeFoldMap[V]) Close() {
	m.tree.DetachEdgeFoldObserver(m)
}
