package growthtree

import "testing"

func activity(treeActivityID, realID string, order int, completed bool) LearningNode {
	return LearningNode{
		ID:             TreeActivityIDPrefix + treeActivityID,
		Kind:           NodeActivity,
		Title:          treeActivityID,
		Order:          order,
		TreeActivityID: treeActivityID,
		RealActivityID: realID,
		Completed:      completed,
	}
}

func TestProgressOf(t *testing.T) {
	tests := []struct {
		name  string
		nodes []LearningNode
		want  Progress
	}{
		{name: "no nodes", want: Progress{}},
		{
			name:  "start and end do not count",
			nodes: []LearningNode{{Kind: NodeStart, Completed: true}, {Kind: NodeEnd, Completed: true}},
			want:  Progress{},
		},
		{
			name: "2 of 5",
			nodes: []LearningNode{
				{Kind: NodeStart, Completed: true},
				activity("a", "act-a", 1, true),
				activity("b", "act-b", 2, true),
				activity("c", "act-c", 3, false),
				activity("d", "act-d", 4, false),
				activity("e", "act-e", 5, false),
			},
			want: Progress{Completed: 2, Total: 5, Percentage: 40},
		},
		{
			name: "1 of 3 rounds to 33",
			nodes: []LearningNode{
				activity("a", "act-a", 1, true),
				activity("b", "act-b", 2, false),
				activity("c", "act-c", 3, false),
			},
			want: Progress{Completed: 1, Total: 3, Percentage: 33},
		},
		{
			name: "2 of 3 rounds to 67",
			nodes: []LearningNode{
				activity("a", "act-a", 1, true),
				activity("b", "act-b", 2, true),
				activity("c", "act-c", 3, false),
			},
			want: Progress{Completed: 2, Total: 3, Percentage: 67},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := progressOf(tt.nodes); got != tt.want {
				t.Errorf("progressOf() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSelectNext(t *testing.T) {
	nodes := []LearningNode{
		{ID: "start", Kind: NodeStart, Completed: true},
		activity("a", "act-a", 1, true),
		activity("b", "act-b", 2, false),
		activity("c", "act-c", 3, false),
		{ID: "end", Kind: NodeEnd, Completed: true},
	}

	tests := []struct {
		name string
		busy map[string]bool
		want string // ActualID; "" means nil
	}{
		{name: "first incomplete in document order", want: "b"},
		{name: "skips in-progress activity", busy: map[string]bool{"act-b": true}, want: "c"},
		{name: "everything incomplete busy", busy: map[string]bool{"act-b": true, "act-c": true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := selectNext(nodes, tt.busy)
			if tt.want == "" {
				if got != nil {
					t.Errorf("selectNext() = %+v, want nil", got)
				}
				return
			}
			if got == nil || got.ActualID != tt.want {
				t.Errorf("selectNext() = %+v, want ActualID %q", got, tt.want)
			}
		})
	}
}

func TestSelectNext_pathCompleted(t *testing.T) {
	nodes := []LearningNode{
		{ID: "start", Kind: NodeStart, Completed: true},
		activity("a", "act-a", 1, true),
		{ID: "end", Kind: NodeEnd, Completed: true},
	}
	if got := selectNext(nodes, nil); got != nil {
		t.Errorf("selectNext() = %+v, want nil on a fully completed path", got)
	}
}

func TestSelectNext_carriesProgress(t *testing.T) {
	nodes := []LearningNode{
		activity("a", "act-a", 1, true),
		activity("b", "act-b", 2, false),
	}
	got := selectNext(nodes, nil)
	if got == nil {
		t.Fatal("selectNext() = nil")
	}
	want := Progress{Completed: 1, Total: 2, Percentage: 50}
	if got.Progress != want {
		t.Errorf("Progress = %+v, want %+v", got.Progress, want)
	}
}

// an unresolvable activity is still offered; the write will surface the
// broken reference to the operator.
func TestSelectNext_unresolvedStillOffered(t *testing.T) {
	nodes := []LearningNode{
		activity("a", "", 1, false),
	}
	got := selectNext(nodes, map[string]bool{})
	if got == nil || got.ActualID != "a" || got.RealActivityID != "" {
		t.Errorf("selectNext() = %+v, want unresolved candidate a", got)
	}
}
