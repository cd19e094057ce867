package growthtree

import (
	"encoding/json"
	"sort"
)

// loadedPath pairs a path row with its parsed node sequence.
type loadedPath struct {
	path  LearningPath
	nodes []LearningNode
}

type rawNode struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Order       int    `json:"order"`
	Duration    int    `json:"duration"`
}

// parseNodes deserializes a stored node payload. Nodes missing an id or a
// type are skipped; an unparseable payload yields an empty node list and
// the error, so callers can log and keep rendering.
func parseNodes(data json.RawMessage) ([]LearningNode, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var raws []rawNode
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, err
	}

	nodes := make([]LearningNode, 0, len(raws))
	for _, r := range raws {
		if r.ID == "" || r.Type == "" {
			continue
		}
		node := LearningNode{
			ID:          r.ID,
			Kind:        NodeKind(r.Type),
			Title:       r.Title,
			Description: r.Description,
			Order:       r.Order,
			Duration:    r.Duration,
		}
		if node.Kind == NodeActivity {
			if taID, ok := TreeActivityID(node.ID); ok {
				node.TreeActivityID = taID
			}
		}
		nodes = append(nodes, node)
	}

	sortNodes(nodes)
	return nodes, nil
}

// sortNodes puts the start node first, the end node last and everything
// else in between by ascending order.
func sortNodes(nodes []LearningNode) {
	rank := func(n LearningNode) int {
		switch n.Kind {
		case NodeStart:
			return -1
		case NodeEnd:
			return 1
		}
		return 0
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		ri, rj := rank(nodes[i]), rank(nodes[j])
		if ri != rj {
			return ri < rj
		}
		return nodes[i].Order < nodes[j].Order
	})
}

// choosePath picks the path to present for a tree:
// a path with real activity content and a non-placeholder name wins;
// otherwise the active path; otherwise the first one.
// nil means the tree has no learning path, full stop.
func choosePath(paths []loadedPath) *loadedPath {
	if len(paths) == 0 {
		return nil
	}

	for i, lp := range paths {
		if lp.path.Name == defaultPathName {
			continue
		}
		for _, n := range lp.nodes {
			if n.IsActivity() {
				return &paths[i]
			}
		}
	}

	for i, lp := range paths {
		if lp.path.IsActive {
			return &paths[i]
		}
	}
	return &paths[0]
}
