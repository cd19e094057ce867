package growthtree

import (
	"encoding/json"
	"testing"
)

func TestParseNodes(t *testing.T) {
	payload := nodesJSON(t,
		endNode(),
		activityNode("a2", 2, "Second"),
		map[string]interface{}{"type": "activity", "order": 9}, // no id: dropped
		activityNode("a1", 1, "First"),
		map[string]interface{}{"id": "x"}, // no type: dropped
		startNode(),
	)

	nodes, err := parseNodes(payload)
	if err != nil {
		t.Fatalf("parseNodes() error = %v", err)
	}

	wantIDs := []string{"start", "tree_activity_a1", "tree_activity_a2", "end"}
	if len(nodes) != len(wantIDs) {
		t.Fatalf("parseNodes() len = %d, want %d", len(nodes), len(wantIDs))
	}
	for i, id := range wantIDs {
		if nodes[i].ID != id {
			t.Errorf("nodes[%d].ID = %q, want %q", i, nodes[i].ID, id)
		}
	}

	if nodes[1].TreeActivityID != "a1" {
		t.Errorf("TreeActivityID = %q, want %q", nodes[1].TreeActivityID, "a1")
	}
	if nodes[1].Duration != 30 {
		t.Errorf("Duration = %d, want 30", nodes[1].Duration)
	}
}

func TestParseNodes_badPayload(t *testing.T) {
	tests := []struct {
		name    string
		payload json.RawMessage
		wantErr bool
	}{
		{name: "empty", payload: nil},
		{name: "garbage", payload: json.RawMessage(`lol not json`), wantErr: true},
		{name: "wrong shape", payload: json.RawMessage(`{"nodes": 1}`), wantErr: true},
		{name: "empty list", payload: json.RawMessage(`[]`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, err := parseNodes(tt.payload)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseNodes() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(nodes) != 0 {
				t.Errorf("parseNodes() = %v, want empty", nodes)
			}
		})
	}
}

func TestChoosePath(t *testing.T) {
	withContent := loadedPath{
		path:  LearningPath{ID: "p1", Name: "Algebra Path"},
		nodes: []LearningNode{{ID: "start", Kind: NodeStart}, {ID: "tree_activity_a", Kind: NodeActivity}},
	}
	placeholder := loadedPath{
		path:  LearningPath{ID: "p2", Name: defaultPathName},
		nodes: []LearningNode{{ID: "tree_activity_b", Kind: NodeActivity}},
	}
	active := loadedPath{
		path:  LearningPath{ID: "p3", Name: "Empty", IsActive: true},
		nodes: []LearningNode{{ID: "start", Kind: NodeStart}},
	}
	empty := loadedPath{path: LearningPath{ID: "p4", Name: "Bare"}}

	tests := []struct {
		name   string
		paths  []loadedPath
		wantID string
	}{
		{name: "no paths", paths: nil, wantID: ""},
		{name: "content wins", paths: []loadedPath{active, withContent}, wantID: "p1"},
		{name: "placeholder name loses to active", paths: []loadedPath{placeholder, active}, wantID: "p3"},
		{name: "active beats first", paths: []loadedPath{empty, active}, wantID: "p3"},
		{name: "first as last resort", paths: []loadedPath{empty, placeholder}, wantID: "p4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := choosePath(tt.paths)
			if tt.wantID == "" {
				if got != nil {
					t.Errorf("choosePath() = %v, want nil", got.path.ID)
				}
				return
			}
			if got == nil || got.path.ID != tt.wantID {
				t.Errorf("choosePath() = %v, want %v", got, tt.wantID)
			}
		})
	}
}

func TestSortNodes(t *testing.T) {
	nodes := []LearningNode{
		{ID: "end", Kind: NodeEnd},
		{ID: "tree_activity_c", Kind: NodeActivity, Order: 3},
		{ID: "start", Kind: NodeStart, Order: 99}, // start wins regardless of order
		{ID: "tree_activity_a", Kind: NodeActivity, Order: 1},
		{ID: "tree_activity_b", Kind: NodeActivity, Order: 2},
	}
	sortNodes(nodes)

	want := []string{"start", "tree_activity_a", "tree_activity_b", "tree_activity_c", "end"}
	for i, id := range want {
		if nodes[i].ID != id {
			t.Errorf("nodes[%d].ID = %q, want %q", i, nodes[i].ID, id)
		}
	}
}
