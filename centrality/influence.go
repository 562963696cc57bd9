package centrality

import (
	"sort"

	"github.com/zero-day-ai/threatgraph/graph"
)

// DefaultTopN is the default result count for Influential.
const DefaultTopN = 10

// Score carries every component centrality for a single node alongside the
// combined total used for ranking.
type Score struct {
	// NodeID identifies the scored node.
	NodeID string `json:"node_id"`

	// Degree is the node's out-degree.
	Degree float64 `json:"degree"`

	// Betweenness is the shortest-path intermediation score.
	Betweenness float64 `json:"betweenness"`

	// Closeness is the inverse-distance reach score.
	Closeness float64 `json:"closeness"`

	// PageRank is the power-iteration rank.
	PageRank float64 `json:"pagerank"`

	// Eigenvector is reserved for a future eigenvector centrality
	// component and is always 0.
	Eigenvector float64 `json:"eigenvector"`

	// Total is the unweighted sum of the component scores.
	Total float64 `json:"total"`
}

// Influential ranks nodes by the unweighted sum of degree, betweenness,
// closeness, and PageRank centralities and returns the topN highest with
// their component scores. A topN <= 0 uses DefaultTopN. Ties are broken by
// node id for deterministic output.
func Influential(g *graph.Graph, topN int) []Score {
	if topN <= 0 {
		topN = DefaultTopN
	}

	degree := Degree(g)
	betweenness := Betweenness(g)
	closeness := Closeness(g)
	pagerank := PageRank(g, DefaultDamping, DefaultMaxIterations)

	scores := make([]Score, 0, g.NodeCount())
	for _, id := range g.NodeIDs() {
		s := Score{
			NodeID:      id,
			Degree:      degree[id],
			Betweenness: betweenness[id],
			Closeness:   closeness[id],
			PageRank:    pagerank[id],
		}
		s.Total = s.Degree + s.Betweenness + s.Closeness + s.PageRank
		scores = append(scores, s)
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Total != scores[j].Total {
			return scores[i].Total > scores[j].Total
		}
		return scores[i].NodeID < scores[j].NodeID
	})

	if topN > len(scores) {
		topN = len(scores)
	}
	return scores[:topN]
}
