package growthtree

import (
	"encoding/json"
	"strings"
	"time"
)

// TreeActivityIDPrefix prefixes the id of every activity node in a stored
// learning path; stripping it yields the tree-activity id.
const TreeActivityIDPrefix = "tree_activity_"

// defaultPathName is the placeholder name the authoring tool gives a path
// created without content; such paths lose to paths with real activities.
const defaultPathName = "Default Path"

type NodeKind string

const (
	NodeStart    NodeKind = "start"
	NodeActivity NodeKind = "activity"
	NodeEnd      NodeKind = "end"
)

type CompletionStatus string

const (
	StatusNotStarted CompletionStatus = "not_started"
	StatusInProgress CompletionStatus = "in_progress"
	StatusCompleted  CompletionStatus = "completed"
)

// ActivityTypeOngoing marks records created by the scheduler; the grading
// flow sets its own types on records it creates.
const ActivityTypeOngoing = "ongoing"

// GrowthTree is a named curriculum container, scoped per course type.
type GrowthTree struct {
	ID         string    `json:"id"`
	StudentID  string    `json:"student_id"`
	Name       string    `json:"name"`
	CourseType string    `json:"course_type"`
	CreatedAt  time.Time `json:"created_at"` // UTC
}

// LearningPath is an ordered collection of nodes belonging to exactly one
// growth tree. Created and edited by external tooling; read-only here.
type LearningPath struct {
	ID        string          `json:"id"`
	TreeID    string          `json:"tree_id"`
	Name      string          `json:"name"`
	IsActive  bool            `json:"is_active"`
	Nodes     json.RawMessage `json:"-"` // raw node payload as stored
	CreatedAt time.Time       `json:"created_at"` // UTC
	UpdatedAt time.Time       `json:"updated_at"` // UTC
}

// LearningNode is one step in a path. Kind discriminates the variants:
// start/end nodes are structural and never carry activity fields;
// activity nodes carry the two-level id indirection and the per-student
// statuses computed on every load (never authoritative).
type LearningNode struct {
	ID          string   `json:"id"`
	Kind        NodeKind `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Order       int      `json:"order"`
	Duration    int      `json:"duration"` // minutes, informational

	// activity nodes only
	TreeActivityID string `json:"tree_activity_id,omitempty"`
	RealActivityID string `json:"real_activity_id,omitempty"` // empty when unresolvable

	Completed  bool `json:"is_completed"`
	InProgress bool `json:"is_in_progress"`
	Locked     bool `json:"is_locked"` // prerequisite gating is not enforced; always false
}

func (n LearningNode) IsActivity() bool { return n.Kind == NodeActivity }

// TreeActivityRef maps a tree-activity id to the canonical activity
// definition used for completion tracking. Owned by the tree-authoring
// subsystem; read-only here.
type TreeActivityRef struct {
	ID             string `json:"id"`
	RealActivityID string `json:"real_activity_id"`
}

// StudentActivityRecord tracks one student's assignment/attempt status for
// one canonical activity. Multiple records may exist per (student, activity).
type StudentActivityRecord struct {
	ID           string           `json:"id"`
	StudentID    string           `json:"student_id"`
	ActivityID   string           `json:"activity_id"`
	TreeID       string           `json:"tree_id"`
	ActivityType string           `json:"activity_type"`
	Status       CompletionStatus `json:"status"`
	AssignedAt   time.Time        `json:"assigned_at"`            // UTC
	CompletedAt  time.Time        `json:"completed_at,omitempty"` // UTC; zero until completed
}

// Student is the read-only projection of a user the scheduler needs for
// assignment notifications.
type Student struct {
	ID    string
	Name  string
	Email string
}

type Progress struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// NextActivity is the single activity recommended for assignment next.
type NextActivity struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Duration       int      `json:"duration"`
	Kind           NodeKind `json:"type"`
	ActualID       string   `json:"actual_id"` // the tree-activity id
	RealActivityID string   `json:"real_activity_id"`
	Progress       Progress `json:"progress"`
}

// PathView is what the path-overview panel renders: the chosen path, its
// annotated nodes and the overall progress. A nil PathView means the tree
// has no learning path at all.
type PathView struct {
	Path     LearningPath   `json:"path"`
	Nodes    []LearningNode `json:"nodes"`
	Progress Progress       `json:"progress"`
}

// TreeActivityID strips the activity-node id prefix; ok is false when the
// id does not reference a tree activity.
func TreeActivityID(nodeID string) (string, bool) {
	if !strings.HasPrefix(nodeID, TreeActivityIDPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(nodeID, TreeActivityIDPrefix)
	return id, id != ""
}
