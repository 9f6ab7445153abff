package layout_test

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mindtrailco/mindtrail/pkg/chat"
	"github.com/mindtrailco/mindtrail/pkg/layout"
)

// turns builds a fixed turn sequence with predictable ids.
func turns(n int) []chat.Turn {
	out := make([]chat.Turn, n)
	for i := range out {
		out[i] = chat.Turn{
			ID:        fmt.Sprintf("msg_%d", i+1),
			Query:     fmt.Sprintf("question %d", i+1),
			Timestamp: int64(1700000000000 + i),
			Status:    chat.StatusComplete,
			Response:  "answer",
		}
	}
	return out
}

var _ = Describe("Layout", func() {
	Context("with no turns", func() {
		It("returns an empty graph without error", func() {
			g := layout.Layout(nil)

			Expect(g.Nodes).To(BeEmpty())
			Expect(g.Edges).To(BeEmpty())
		})

		It("treats an empty slice the same as nil", func() {
			g := layout.Layout([]chat.Turn{})

			Expect(g.Nodes).To(BeEmpty())
			Expect(g.Edges).To(BeEmpty())
		})
	})

	Context("with a single turn", func() {
		It("produces one node and zero edges", func() {
			g := layout.Layout(turns(1))

			Expect(g.Nodes).To(HaveLen(1))
			Expect(g.Edges).To(BeEmpty())
		})

		It("places the node at the canvas margin", func() {
			g := layout.Layout(turns(1))

			Expect(g.Nodes[0].Position.X).To(Equal(layout.Margin))
			Expect(g.Nodes[0].Position.Y).To(Equal(layout.Margin))
		})

		It("carries the turn as the node payload", func() {
			seq := turns(1)
			g := layout.Layout(seq)

			Expect(g.Nodes[0].ID).To(Equal(seq[0].ID))
			Expect(g.Nodes[0].Message).To(Equal(seq[0]))
		})
	})

	Context("with a chain of turns", func() {
		It("produces n nodes and n-1 edges", func() {
			g := layout.Layout(turns(5))

			Expect(g.Nodes).To(HaveLen(5))
			Expect(g.Edges).To(HaveLen(4))
		})

		It("links each consecutive pair in input order", func() {
			seq := turns(3)
			g := layout.Layout(seq)

			Expect(g.Edges[0].Source).To(Equal(seq[0].ID))
			Expect(g.Edges[0].Target).To(Equal(seq[1].ID))
			Expect(g.Edges[1].Source).To(Equal(seq[1].ID))
			Expect(g.Edges[1].Target).To(Equal(seq[2].ID))
		})

		It("names edges after their endpoints", func() {
			seq := turns(2)
			g := layout.Layout(seq)

			Expect(g.Edges[0].ID).To(Equal("edge-" + seq[0].ID + "-" + seq[1].ID))
		})

		It("places each turn on its own rank, flowing downward", func() {
			g := layout.Layout(turns(3))

			Expect(g.Nodes[1].Position.Y).To(BeNumerically(">", g.Nodes[0].Position.Y))
			Expect(g.Nodes[2].Position.Y).To(BeNumerically(">", g.Nodes[1].Position.Y))
		})

		It("separates ranks by the node height plus the rank spacing", func() {
			g := layout.Layout(turns(2))

			Expect(g.Nodes[1].Position.Y - g.Nodes[0].Position.Y).
				To(Equal(layout.NodeHeight + layout.RankSep))
		})

		It("keeps a chain in a single column", func() {
			g := layout.Layout(turns(4))

			for _, node := range g.Nodes {
				Expect(node.Position.X).To(Equal(layout.Margin))
			}
		})

		It("never overlaps node footprints", func() {
			g := layout.Layout(turns(6))

			for i, a := range g.Nodes {
				for _, b := range g.Nodes[i+1:] {
					overlapX := a.Position.X < b.Position.X+layout.NodeWidth &&
						b.Position.X < a.Position.X+layout.NodeWidth
					overlapY := a.Position.Y < b.Position.Y+layout.NodeHeight &&
						b.Position.Y < a.Position.Y+layout.NodeHeight
					Expect(overlapX && overlapY).To(BeFalse())
				}
			}
		})
	})

	Describe("determinism", func() {
		It("returns identical output for identical input", func() {
			seq := turns(4)

			first := layout.Layout(seq)
			second := layout.Layout(seq)

			Expect(second).To(Equal(first))
		})

		It("does not mutate its input", func() {
			seq := turns(3)
			want := turns(3)

			layout.Layout(seq)

			Expect(seq).To(Equal(want))
		})
	})

	Describe("Arrange", func() {
		It("ranks a branching DAG by longest path from the root", func() {
			// Diamond: a -> b, a -> c, b -> d, c -> d.
			g := layout.Graph{
				Nodes: []layout.Node{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}},
				Edges: []layout.Edge{
					{ID: "edge-a-b", Source: "a", Target: "b"},
					{ID: "edge-a-c", Source: "a", Target: "c"},
					{ID: "edge-b-d", Source: "b", Target: "d"},
					{ID: "edge-c-d", Source: "c", Target: "d"},
				},
			}

			out := layout.Arrange(g)

			byID := make(map[string]layout.Node)
			for _, node := range out.Nodes {
				byID[node.ID] = node
			}

			Expect(byID["b"].Position.Y).To(Equal(byID["c"].Position.Y))
			Expect(byID["b"].Position.Y).To(BeNumerically(">", byID["a"].Position.Y))
			Expect(byID["d"].Position.Y).To(BeNumerically(">", byID["b"].Position.Y))

			// Siblings share a rank and sit side by side.
			Expect(byID["c"].Position.X - byID["b"].Position.X).
				To(Equal(layout.NodeWidth + layout.NodeSep))
		})

		It("passes edges through untouched", func() {
			seq := turns(3)
			unpositioned := layout.FromTurns(seq)

			out := layout.Arrange(unpositioned)

			Expect(out.Edges).To(Equal(unpositioned.Edges))
		})
	})
})
