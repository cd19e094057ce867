package inmemdb

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/kijani/core/growthtree"
)

type growthTreeRepository struct {
	db *DB
}

var _ growthtree.Repository = (*growthTreeRepository)(nil) // interface compliance check

func NewGrowthTreeRepository(db *DB) *growthTreeRepository {
	return &growthTreeRepository{db: db}
}

func (repo *growthTreeRepository) Ping(context.Context) error { return nil }

func (repo *growthTreeRepository) QueryStudentTrees(_ context.Context, studentID string) ([]growthtree.GrowthTree, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var trees []growthtree.GrowthTree
	for _, tree := range repo.db.trees {
		if tree.StudentID == studentID {
			trees = append(trees, tree)
		}
	}
	return trees, nil
}

func (repo *growthTreeRepository) QueryPaths(_ context.Context, treeID string) ([]growthtree.LearningPath, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var paths []growthtree.LearningPath
	for _, path := range repo.db.paths {
		if path.TreeID == treeID {
			paths = append(paths, path)
		}
	}
	return paths, nil
}

func (repo *growthTreeRepository) QueryTreeActivityRefs(_ context.Context, treeActivityIDs []string) ([]growthtree.TreeActivityRef, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	wanted := make(map[string]bool, len(treeActivityIDs))
	for _, id := range treeActivityIDs {
		wanted[id] = true
	}

	var refs []growthtree.TreeActivityRef
	for _, ref := range repo.db.refs {
		if wanted[ref.ID] {
			refs = append(refs, ref)
		}
	}
	return refs, nil
}

func (repo *growthTreeRepository) QueryStudentActivities(_ context.Context, studentID string, filter growthtree.ActivityFilter) ([]growthtree.StudentActivityRecord, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var wanted map[string]bool
	if filter.ActivityIDs != nil {
		wanted = make(map[string]bool, len(filter.ActivityIDs))
		for _, id := range filter.ActivityIDs {
			wanted[id] = true
		}
	}

	var recs []growthtree.StudentActivityRecord
	for _, rec := range repo.db.records {
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

func (repo *growthTreeRepository) InsertStudentActivity(_ context.Context, rec growthtree.StudentActivityRecord) (growthtree.StudentActivityRecord, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if rec.ActivityID == "" {
		return growthtree.StudentActivityRecord{}, errors.Wrap(growthtree.ErrInvalidReference, "inserting student activity")
	}
	rec.ID = repo.db.nextPK("rec")
	repo.db.records = append(repo.db.records, rec)
	return rec, nil
}

func (repo *growthTreeRepository) UpdateStudentActivity(_ context.Context, id string, patch growthtree.ActivityPatch) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for i := range repo.db.records {
		if repo.db.records[i].ID == id {
			repo.db.records[i].Status = patch.Status
			repo.db.records[i].CompletedAt = patch.CompletedAt
			return nil
		}
	}
	return errors.Wrapf(growthtree.ErrInvalidReference, "student activity %s not found", id)
}

func (repo *growthTreeRepository) GetStudent(_ context.Context, id string) (growthtree.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if usr, ok := repo.db.users[id]; ok {
		return growthtree.Student{ID: usr.ID, Name: usr.Name, Email: usr.Email}, nil
	}
	return growthtree.Student{}, errors.Wrapf(growthtree.ErrInvalidReference, "student %s not found", id)
}
