// Package layout turns an ordered sequence of conversation turns into a
// positioned node/edge graph for flowchart display. It is a pure function of
// its input: the same turn sequence always produces the same graph.
package layout

import (
	"fmt"

	"github.com/mindtrailco/mindtrail/pkg/chat"
)

// Position is a 2D coordinate. Node positions are top-left anchored.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a single conversation turn placed on the canvas.
type Node struct {
	ID       string    `json:"id"`
	Position Position  `json:"position"`
	Message  chat.Turn `json:"message"`
}

// Edge is a directed link between two consecutive turns.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph is the positioned output of the layout engine.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// FromTurns builds the unpositioned graph for a turn sequence: one node per
// turn and one edge per consecutive pair. The turn order defines the edges,
// so the output is always a simple chain.
func FromTurns(turns []chat.Turn) Graph {
	nodes := make([]Node, len(turns))
	for i, turn := range turns {
		nodes[i] = Node{
			ID:      turn.ID,
			Message: turn,
		}
	}

	edges := make([]Edge, 0, max(len(turns)-1, 0))
	for i := 1; i < len(turns); i++ {
		edges = append(edges, Edge{
			ID:     fmt.Sprintf("edge-%s-%s", turns[i-1].ID, turns[i].ID),
			Source: turns[i-1].ID,
			Target: turns[i].ID,
		})
	}

	return Graph{Nodes: nodes, Edges: edges}
}
