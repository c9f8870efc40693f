package persist

import (
	"cmp"
	"slices"

	"github.com/Sumatoshi-tech/contourfold/pkg/folded"
)

// NodeState is a live node of a snapshot.
type NodeState struct {
	ID        int     `json:"id"`
	Value     float64 `json:"value"`
	Members   int     `json:"members"`
	Collapsed int     `json:"collapsed"`
}

// EdgeState is a live edge of a snapshot, with U < V by ID.
type EdgeState struct {
	U       int  `json:"u"`
	V       int  `json:"v"`
	Members int  `json:"members"`
	Reduced bool `json:"reduced"`
}

// Snapshot is the live part of a folded tree: enough to draw or diff it, not
// to restore its fold history.
type Snapshot struct {
	Threshold    float64     `json:"threshold,omitempty"`
	Nodes        []NodeState `json:"nodes"`
	Edges        []EdgeState `json:"edges"`
	TotalMembers int         `json:"total_members"`
}

// TakeSnapshot captures the live nodes and edges of tree ordered by ID.
func TakeSnapshot(tree *folded.Tree) *Snapshot {
	snapshot := &Snapshot{TotalMembers: tree.TotalMembers()}

	for node := range tree.Nodes() {
		snapshot.Nodes = append(snapshot.Nodes, NodeState{
			ID:        tree.ID(node),
			Value:     tree.Value(node),
			Members:   tree.NodeMembers(node).Size(),
			Collapsed: tree.CollapsedCount(tree.NodeFold(node)),
		})
	}

	for edge := range tree.Edges() {
		u, v := tree.ID(tree.U(edge)), tree.ID(tree.V(edge))
		if u > v {
			u, v = v, u
		}

		snapshot.Edges = append(snapshot.Edges, EdgeState{
			U:       u,
			V:       v,
			Members: tree.EdgeMembers(edge).Size(),
			Reduced: tree.HasReduced(edge),
		})
	}

	slices.SortFunc(snapshot.Nodes, func(a, b NodeState) int { return cmp.Compare(a.ID, b.ID) })
	slices.SortFunc(snapshot.Edges, func(a, b EdgeState) int {
		if c := cmp.Compare(a.U, b.U); c != 0 {
			return c
		}

		return cmp.Compare(a.V, b.V)
	})

	return snapshot
}
