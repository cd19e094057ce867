package inmemdb

import (
	"fmt"
	"sync"

	"github.com/trezcool/kijani/core/growthtree"
	"github.com/trezcool/kijani/core/user"
)

// DB is an in-memory record store for tests and local demos.
type DB struct {
	sync.RWMutex
	pkCount int

	users   map[string]*user.User
	trees   []growthtree.GrowthTree
	paths   []growthtree.LearningPath
	refs    []growthtree.TreeActivityRef
	records []growthtree.StudentActivityRecord
}

func NewDB() *DB {
	return &DB{users: make(map[string]*user.User)}
}

func (db *DB) nextPK(prefix string) string {
	db.pkCount++
	return fmt.Sprintf("%s-%d", prefix, db.pkCount)
}

// Reset drops everything; used between tests.
func (db *DB) Reset() {
	db.Lock()
	defer db.Unlock()
	db.users = make(map[string]*user.User)
	db.trees = nil
	db.paths = nil
	db.refs = nil
	db.records = nil
}

// Seeding helpers; ids are assigned when empty.

func (db *DB) AddGrowthTree(tree growthtree.GrowthTree) growthtree.GrowthTree {
	db.Lock()
	defer db.Unlock()
	if tree.ID == "" {
		tree.ID = db.nextPK("tree")
	}
	db.trees = append(db.trees, tree)
	return tree
}

func (db *DB) AddLearningPath(path growthtree.LearningPath) growthtree.LearningPath {
	db.Lock()
	defer db.Unlock()
	if path.ID == "" {
		path.ID = db.nextPK("path")
	}
	db.paths = append(db.paths, path)
	return path
}

func (db *DB) AddTreeActivityRef(ref growthtree.TreeActivityRef) growthtree.TreeActivityRef {
	db.Lock()
	defer db.Unlock()
	db.refs = append(db.refs, ref)
	return ref
}

func (db *DB) AddStudentActivity(rec growthtree.StudentActivityRecord) growthtree.StudentActivityRecord {
	db.Lock()
	defer db.Unlock()
	if rec.ID == "" {
		rec.ID = db.nextPK("rec")
	}
	db.records = append(db.records, rec)
	return rec
}
