package growthtree

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"sync"
	"testing"

	"github.com/trezcool/kijani/core"
)

// fakeRepo is an in-memory Repository for exercising the scheduler
// without a database.
type fakeRepo struct {
	mu       sync.Mutex
	pkCount  int
	trees    []GrowthTree
	paths    []LearningPath
	refs     []TreeActivityRef
	records  []StudentActivityRecord
	students map[string]Student

	pingErr   error
	insertErr error
	updateErr error
	queryErr  error
}

var _ Repository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{students: make(map[string]Student)}
}

func (r *fakeRepo) Ping(context.Context) error { return r.pingErr }

func (r *fakeRepo) QueryStudentTrees(_ context.Context, studentID string) ([]GrowthTree, error) {
	if r.queryErr != nil {
		return nil, r.queryErr
	}
	var trees []GrowthTree
	for _, t := range r.trees {
		if t.StudentID == studentID {
			trees = append(trees, t)
		}
	}
	return trees, nil
}

func (r *fakeRepo) QueryPaths(_ context.Context, treeID string) ([]LearningPath, error) {
	if r.queryErr != nil {
		return nil, r.queryErr
	}
	var paths []LearningPath
	for _, p := range r.paths {
		if p.TreeID == treeID {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

func (r *fakeRepo) QueryTreeActivityRefs(_ context.Context, ids []string) ([]TreeActivityRef, error) {
	if r.queryErr != nil {
		return nil, r.queryErr
	}
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var refs []TreeActivityRef
	for _, ref := range r.refs {
		if wanted[ref.ID] {
			refs = append(refs, ref)
		}
	}
	return refs, nil
}

func (r *fakeRepo) QueryStudentActivities(_ context.Context, studentID string, filter ActivityFilter) ([]StudentActivityRecord, error) {
	if r.queryErr != nil {
		return nil, r.queryErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var wanted map[string]bool
	if filter.ActivityIDs != nil {
		wanted = make(map[string]bool, len(filter.ActivityIDs))
		for _, id := range filter.ActivityIDs {
			wanted[id] = true
		}
	}

	var recs []StudentActivityRecord
	for _, rec := range r.records {
		if rec.StudentID != studentID {
			continue
		}
		if wanted != nil && !wanted[rec.ActivityID] {
			continue
		}
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (r *fakeRepo) InsertStudentActivity(_ context.Context, rec StudentActivityRecord) (StudentActivityRecord, error) {
	if r.insertErr != nil {
		return StudentActivityRecord{}, r.insertErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pkCount++
	rec.ID = fmt.Sprintf("rec-%d", r.pkCount)
	r.records = append(r.records, rec)
	return rec, nil
}

func (r *fakeRepo) UpdateStudentActivity(_ context.Context, id string, patch ActivityPatch) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.records {
		if r.records[i].ID == id {
			r.records[i].Status = patch.Status
			r.records[i].CompletedAt = patch.CompletedAt
			return nil
		}
	}
	return fmt.Errorf("record %s not found", id)
}

func (r *fakeRepo) GetStudent(_ context.Context, id string) (Student, error) {
	if s, ok := r.students[id]; ok {
		return s, nil
	}
	return Student{}, fmt.Errorf("student %s not found", id)
}

func (r *fakeRepo) recordByID(id string) (StudentActivityRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ID == id {
			return rec, true
		}
	}
	return StudentActivityRecord{}, false
}

// fakeMailSvc captures sent messages.
type fakeMailSvc struct {
	mu   sync.Mutex
	sent []*core.EmailMessage
}

var _ core.EmailService = (*fakeMailSvc)(nil)

func (svc *fakeMailSvc) SendMessages(messages ...*core.EmailMessage) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.sent = append(svc.sent, messages...)
}

func newTestService(repo Repository) (*service, *fakeMailSvc) {
	mailSvc := &fakeMailSvc{}
	logger := core.NewStdLogger(log.New(ioutil.Discard, "", 0))
	return NewService(repo, mailSvc, logger, &core.Config{}), mailSvc
}

// nodesJSON renders node payloads the way the authoring tool stores them.
func nodesJSON(t *testing.T, nodes ...map[string]interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(nodes)
	if err != nil {
		t.Fatalf("nodesJSON(): %v", err)
	}
	return data
}

func startNode() map[string]interface{} {
	return map[string]interface{}{"id": "start", "type": "start", "title": "Start"}
}

func endNode() map[string]interface{} {
	return map[string]interface{}{"id": "end", "type": "end", "title": "End"}
}

func activityNode(treeActivityID string, order int, title string) map[string]interface{} {
	return map[string]interface{}{
		"id":       TreeActivityIDPrefix + treeActivityID,
		"type":     "activity",
		"title":    title,
		"order":    order,
		"duration": 30,
	}
}
