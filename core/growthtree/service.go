package growthtree

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/trezcool/kijani/core"
)

type (
	// ActivityFilter narrows a student-activity query. Zero values mean
	// "no constraint".
	ActivityFilter struct {
		ActivityIDs []string
		Status      CompletionStatus
	}

	// ActivityPatch is the only mutation the scheduler applies to an
	// existing record: closing it out.
	ActivityPatch struct {
		Status      CompletionStatus
		CompletedAt time.Time
	}

	// Repository is the record-store contract the scheduler consumes.
	// Implementations map driver failures onto the package's sentinel
	// errors so write failures stay classifiable.
	Repository interface {
		// Ping probes the backing store before any write is attempted.
		Ping(ctx context.Context) error
		QueryStudentTrees(ctx context.Context, studentID string) ([]GrowthTree, error)
		QueryPaths(ctx context.Context, treeID string) ([]LearningPath, error)
		QueryTreeActivityRefs(ctx context.Context, treeActivityIDs []string) ([]TreeActivityRef, error)
		QueryStudentActivities(ctx context.Context, studentID string, filter ActivityFilter) ([]StudentActivityRecord, error)
		InsertStudentActivity(ctx context.Context, rec StudentActivityRecord) (StudentActivityRecord, error)
		UpdateStudentActivity(ctx context.Context, id string, patch ActivityPatch) error
		GetStudent(ctx context.Context, id string) (Student, error)
	}

	ServiceInterface interface {
		QueryStudentTrees(ctx context.Context, studentID string) ([]GrowthTree, error)
		LoadPathForTree(ctx context.Context, studentID, treeID string) (*PathView, error)
		GetNextActivity(ctx context.Context, studentID, treeID string) (*NextActivity, error)
		ArrangeNextActivity(ctx context.Context, studentID, treeID string, replace *bool) (Outcome, error)
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
		log     core.Logger
		conf    *core.Config
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, log core.Logger, conf *core.Config) *service {
	return &service{repo: repo, mailSvc: mailSvc, log: log, conf: conf}
}

func (svc *service) QueryStudentTrees(ctx context.Context, studentID string) ([]GrowthTree, error) {
	return svc.repo.QueryStudentTrees(ctx, studentID)
}

// loadState runs the loader/resolver pipeline for one tree and student.
// Read failures degrade rather than propagate: a broken path renders as an
// empty one and an unresolvable activity reads as "to do", so the panel
// always has something to show. nil means the tree has no learning path.
func (svc *service) loadState(ctx context.Context, studentID, treeID string) *PathView {
	paths, err := svc.repo.QueryPaths(ctx, treeID)
	if err != nil {
		svc.log.Error(fmt.Sprintf("querying paths for tree %s", treeID), err)
		return nil
	}
	if len(paths) == 0 {
		return nil
	}

	loaded := make([]loadedPath, 0, len(paths))
	for _, p := range paths {
		nodes, err := parseNodes(p.Nodes)
		if err != nil {
			svc.log.Error(fmt.Sprintf("parsing nodes of path %s", p.ID), err)
			nodes = nil
		}
		loaded = append(loaded, loadedPath{path: p, nodes: nodes})
	}

	chosen := choosePath(loaded)
	nodes := chosen.nodes

	refs, err := svc.repo.QueryTreeActivityRefs(ctx, treeActivityIDs(nodes))
	if err != nil {
		svc.log.Error(fmt.Sprintf("querying activity refs for path %s", chosen.path.ID), err)
		refs = nil
	}
	resolveNodes(nodes, newRefIndex(refs))

	var recs []StudentActivityRecord
	if ids := realActivityIDs(nodes); len(ids) > 0 {
		recs, err = svc.repo.QueryStudentActivities(ctx, studentID, ActivityFilter{ActivityIDs: ids})
		if err != nil {
			svc.log.Error(fmt.Sprintf("querying activity records of student %s", studentID), err)
			recs = nil
		}
	}
	annotate(nodes, recs)

	return &PathView{
		Path:     chosen.path,
		Nodes:    nodes,
		Progress: progressOf(nodes),
	}
}

func (svc *service) LoadPathForTree(ctx context.Context, studentID, treeID string) (*PathView, error) {
	return svc.loadState(ctx, studentID, treeID), nil
}

// GetNextActivity drives the "arrange next activity" call-to-action.
// nil means there is nothing new to offer.
func (svc *service) GetNextActivity(ctx context.Context, studentID, treeID string) (*NextActivity, error) {
	view := svc.loadState(ctx, studentID, treeID)
	if view == nil {
		return nil, nil
	}
	busy, err := svc.inProgressRecords(ctx, studentID)
	if err != nil {
		svc.log.Error(fmt.Sprintf("querying in-progress records of student %s", studentID), err)
		busy = nil
	}
	return selectNext(view.Nodes, inProgressSet(busy)), nil
}

// inProgressRecords returns the student's current in-progress records
// across all trees: a student carries at most one active assignment slot
// per activity regardless of which tree offered it.
func (svc *service) inProgressRecords(ctx context.Context, studentID string) ([]StudentActivityRecord, error) {
	return svc.repo.QueryStudentActivities(ctx, studentID, ActivityFilter{Status: StatusInProgress})
}

// notifyAssignment emails the student about their newly arranged activity.
// Best effort; a failed notification never fails the assignment.
func (svc *service) notifyAssignment(ctx context.Context, studentID string, next *NextActivity) {
	student, err := svc.repo.GetStudent(ctx, studentID)
	if err != nil {
		svc.log.Warn(fmt.Sprintf("looking up student %s for notification", studentID), err)
		return
	}
	if student.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: student.Name, Address: student.Email}},
		Subject: fmt.Sprintf("New activity: %s", next.Title),
		BodyStr: fmt.Sprintf(
			"Hi %s,\n\nA new activity has been arranged for you: %s (about %d min).\n\n%s\n",
			student.Name, next.Title, next.Duration, next.Description,
		),
	})
}
