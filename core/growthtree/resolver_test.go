package growthtree

import (
	"reflect"
	"testing"
)

func TestAggregate(t *testing.T) {
	rec := func(status CompletionStatus) StudentActivityRecord {
		return StudentActivityRecord{Status: status}
	}

	tests := []struct {
		name           string
		recs           []StudentActivityRecord
		wantCompleted  bool
		wantInProgress bool
	}{
		{name: "no records"},
		{name: "all completed", recs: []StudentActivityRecord{rec(StatusCompleted), rec(StatusCompleted)}, wantCompleted: true},
		{name: "single completed", recs: []StudentActivityRecord{rec(StatusCompleted)}, wantCompleted: true},
		{name: "single in progress", recs: []StudentActivityRecord{rec(StatusInProgress)}, wantInProgress: true},
		{name: "mixed completed and in progress", recs: []StudentActivityRecord{rec(StatusCompleted), rec(StatusInProgress)}, wantInProgress: true},
		{name: "not started only", recs: []StudentActivityRecord{rec(StatusNotStarted)}},
		{name: "not started and completed", recs: []StudentActivityRecord{rec(StatusNotStarted), rec(StatusCompleted)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completed, inProgress := aggregate(tt.recs)
			if completed != tt.wantCompleted {
				t.Errorf("aggregate() completed = %v, want %v", completed, tt.wantCompleted)
			}
			if inProgress != tt.wantInProgress {
				t.Errorf("aggregate() inProgress = %v, want %v", inProgress, tt.wantInProgress)
			}
		})
	}
}

func TestAnnotate(t *testing.T) {
	nodes := []LearningNode{
		{ID: "start", Kind: NodeStart},
		{ID: "tree_activity_a", Kind: NodeActivity, TreeActivityID: "a", RealActivityID: "act-a"},
		{ID: "tree_activity_b", Kind: NodeActivity, TreeActivityID: "b", RealActivityID: "act-b"},
		{ID: "tree_activity_c", Kind: NodeActivity, TreeActivityID: "c"}, // unresolvable
		{ID: "end", Kind: NodeEnd},
	}
	recs := []StudentActivityRecord{
		{ActivityID: "act-a", Status: StatusCompleted},
		{ActivityID: "act-b", Status: StatusInProgress},
	}

	annotate(nodes, recs)

	if !nodes[0].Completed || !nodes[4].Completed {
		t.Error("start/end nodes must read as passed")
	}
	if !nodes[1].Completed || nodes[1].InProgress {
		t.Errorf("node a = (%v, %v), want completed", nodes[1].Completed, nodes[1].InProgress)
	}
	if nodes[2].Completed || !nodes[2].InProgress {
		t.Errorf("node b = (%v, %v), want in progress", nodes[2].Completed, nodes[2].InProgress)
	}
	if nodes[3].Completed || nodes[3].InProgress {
		t.Error("unresolvable node must read as to-do")
	}
	for i, n := range nodes {
		if n.Locked {
			t.Errorf("nodes[%d].Locked = true; gating is not enforced", i)
		}
	}
}

// annotating twice with no intervening writes must not change anything.
func TestAnnotate_idempotent(t *testing.T) {
	nodes := []LearningNode{
		{ID: "start", Kind: NodeStart},
		{ID: "tree_activity_a", Kind: NodeActivity, TreeActivityID: "a", RealActivityID: "act-a"},
		{ID: "end", Kind: NodeEnd},
	}
	recs := []StudentActivityRecord{{ActivityID: "act-a", Status: StatusInProgress}}

	annotate(nodes, recs)
	first := make([]LearningNode, len(nodes))
	copy(first, nodes)

	annotate(nodes, recs)
	if !reflect.DeepEqual(first, nodes) {
		t.Errorf("annotate() not idempotent:\nfirst  = %+v\nsecond = %+v", first, nodes)
	}
}

func TestNewRefIndex(t *testing.T) {
	refs := []TreeActivityRef{
		{ID: "a", RealActivityID: "act-a"},
		{ID: "b"}, // no real activity: dropped
		{ID: "c", RealActivityID: "act-c"},
	}
	idx := newRefIndex(refs)

	want := refIndex{"a": "act-a", "c": "act-c"}
	if !reflect.DeepEqual(idx, want) {
		t.Errorf("newRefIndex() = %v, want %v", idx, want)
	}
}

func TestResolveNodes(t *testing.T) {
	nodes := []LearningNode{
		{ID: "start", Kind: NodeStart},
		{ID: "tree_activity_a", Kind: NodeActivity, TreeActivityID: "a"},
		{ID: "tree_activity_b", Kind: NodeActivity, TreeActivityID: "b"},
	}
	resolveNodes(nodes, refIndex{"a": "act-a"})

	if nodes[1].RealActivityID != "act-a" {
		t.Errorf("nodes[1].RealActivityID = %q, want %q", nodes[1].RealActivityID, "act-a")
	}
	if nodes[2].RealActivityID != "" {
		t.Errorf("nodes[2].RealActivityID = %q, want empty", nodes[2].RealActivityID)
	}
}
