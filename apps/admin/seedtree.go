package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/kijani/core"
	"github.com/trezcool/kijani/core/user"
)

// mockable
var seedTreeFunc = func(db *sql.DB, studentID, name, course string) (string, error) {
	treeID := uuid.New().String()
	now := time.Now().UTC()

	_, err := db.Exec(
		`INSERT INTO growth_tree (id, student_id, name, course_type, created_at) VALUES ($1, $2, $3, $4, $5)`,
		treeID, studentID, name, course, now,
	)
	if err != nil {
		return "", err
	}

	// empty skeleton; activities get authored later
	nodes := []byte(`[{"id": "start", "type": "start", "title": "Start"}, {"id": "end", "type": "end", "title": "End"}]`)
	_, err = db.Exec(
		`INSERT INTO learning_path (id, tree_id, name, is_active, nodes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.New().String(), treeID, "Default Path", true, nodes, now, now,
	)
	if err != nil {
		return "", err
	}
	return treeID, nil
}

// seedTree creates a growth tree for a student with an empty default path.
func (cli *commandLine) seedTree(student, name, course string) error {
	ctx := context.Background()

	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: core.CleanString(student, true /* lower */)})
	if err != nil {
		return err
	}
	if !usr.IsStudent() {
		return fmt.Errorf("%s is not a student", usr.Username)
	}

	treeID, err := seedTreeFunc(cli.db, usr.ID, name, course)
	if err != nil {
		return err
	}
	logger.Printf("growth tree %s created for %s", treeID, usr.Username)
	return nil
}
