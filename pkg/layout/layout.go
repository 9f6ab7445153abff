package layout

import "github.com/mindtrailco/mindtrail/pkg/chat"

// Fixed node footprint and spacing, in canvas units.
const (
	NodeWidth  = 320.0
	NodeHeight = 140.0
	RankSep    = 120.0 // Vertical spacing between ranks
	NodeSep    = 150.0 // Horizontal spacing within a rank
	Margin     = 50.0  // Canvas margin on both axes
)

// Layout maps an ordered turn sequence to a positioned graph. It is the
// composition of FromTurns and Arrange.
func Layout(turns []chat.Turn) Graph {
	return Arrange(FromTurns(turns))
}

// Arrange assigns positions to the nodes of a graph using a layered scheme:
// each node gets a rank (its longest-path depth from a root) and a column
// within that rank, ranks flow top to bottom. The algorithm handles any DAG,
// although conversation graphs are always simple chains where every node
// occupies its own rank.
//
// Positions are computed as node centers on a fixed grid, then translated to
// top-left anchors by subtracting half the node footprint.
func Arrange(g Graph) Graph {
	ranks := assignRanks(g)

	// Column assignment within each rank follows node input order.
	columns := make(map[string]int, len(g.Nodes))
	width := make(map[int]int)
	for _, node := range g.Nodes {
		r := ranks[node.ID]
		columns[node.ID] = width[r]
		width[r]++
	}

	out := Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: g.Edges,
	}

	for i, node := range g.Nodes {
		centerX := Margin + NodeWidth/2 + float64(columns[node.ID])*(NodeWidth+NodeSep)
		centerY := Margin + NodeHeight/2 + float64(ranks[node.ID])*(NodeHeight+RankSep)

		node.Position = Position{
			X: centerX - NodeWidth/2,
			Y: centerY - NodeHeight/2,
		}
		out.Nodes[i] = node
	}

	return out
}

// assignRanks computes the longest-path depth of every node from the graph's
// roots. Nodes with no incoming edge sit at rank zero.
func assignRanks(g Graph) map[string]int {
	ranks := make(map[string]int, len(g.Nodes))
	indegree := make(map[string]int, len(g.Nodes))
	successors := make(map[string][]string, len(g.Nodes))

	for _, node := range g.Nodes {
		ranks[node.ID] = 0
	}
	for _, edge := range g.Edges {
		indegree[edge.Target]++
		successors[edge.Source] = append(successors[edge.Source], edge.Target)
	}

	// Kahn's algorithm, seeded in node input order for determinism.
	var queue []string
	for _, node := range g.Nodes {
		if indegree[node.ID] == 0 {
			queue = append(queue, node.ID)
		}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		for _, next := range successors[id] {
			if ranks[id]+1 > ranks[next] {
				ranks[next] = ranks[id] + 1
			}
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	return ranks
}
