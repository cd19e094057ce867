package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kijani/core/growthtree"
)

type growthTreeRepository struct {
	db *sqlx.DB
}

var _ growthtree.Repository = (*growthTreeRepository)(nil) // interface compliance check

func NewGrowthTreeRepository(db *sqlx.DB) *growthTreeRepository {
	return &growthTreeRepository{db: db}
}

type (
	treeRow struct {
		ID         string      `db:"id"`
		StudentID  null.String `db:"student_id"`
		Name       string      `db:"name"`
		CourseType null.String `db:"course_type"`
		CreatedAt  null.Time   `db:"created_at"`
	}

	pathRow struct {
		ID        string    `db:"id"`
		TreeID    string    `db:"tree_id"`
		Name      string    `db:"name"`
		IsActive  bool      `db:"is_active"`
		Nodes     []byte    `db:"nodes"`
		CreatedAt null.Time `db:"created_at"`
		UpdatedAt null.Time `db:"updated_at"`
	}

	refRow struct {
		ID             string      `db:"id"`
		RealActivityID null.String `db:"real_activity_id"`
	}

	recordRow struct {
		ID           string      `db:"id"`
		StudentID    string      `db:"student_id"`
		ActivityID   string      `db:"activity_id"`
		TreeID       null.String `db:"tree_id"`
		ActivityType null.String `db:"activity_type"`
		Status       string      `db:"status"`
		AssignedAt   null.Time   `db:"assigned_at"`
		CompletedAt  null.Time   `db:"completed_at"`
	}
)

func (r recordRow) record() growthtree.StudentActivityRecord {
	return growthtree.StudentActivityRecord{
		ID:           r.ID,
		StudentID:    r.StudentID,
		ActivityID:   r.ActivityID,
		TreeID:       r.TreeID.String,
		ActivityType: r.ActivityType.String,
		Status:       growthtree.CompletionStatus(r.Status),
		AssignedAt:   r.AssignedAt.Time,
		CompletedAt:  r.CompletedAt.Time,
	}
}

func (repo growthTreeRepository) Ping(ctx context.Context) error {
	return repo.db.PingContext(ctx)
}

func (repo growthTreeRepository) QueryStudentTrees(ctx context.Context, studentID string) ([]growthtree.GrowthTree, error) {
	var rows []treeRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT id, student_id, name, course_type, created_at
		 FROM growth_tree WHERE student_id = $1 ORDER BY created_at`, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying growth trees")
	}

	trees := make([]growthtree.GrowthTree, 0, len(rows))
	for _, r := range rows {
		trees = append(trees, growthtree.GrowthTree{
			ID:         r.ID,
			StudentID:  r.StudentID.String,
			Name:       r.Name,
			CourseType: r.CourseType.String,
			CreatedAt:  r.CreatedAt.Time,
		})
	}
	return trees, nil
}

func (repo growthTreeRepository) QueryPaths(ctx context.Context, treeID string) ([]growthtree.LearningPath, error) {
	var rows []pathRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT id, tree_id, name, is_active, nodes, created_at, updated_at
		 FROM learning_path WHERE tree_id = $1 ORDER BY created_at`, treeID)
	if err != nil {
		return nil, errors.Wrap(err, "querying learning paths")
	}

	paths := make([]growthtree.LearningPath, 0, len(rows))
	for _, r := range rows {
		paths = append(paths, growthtree.LearningPath{
			ID:        r.ID,
			TreeID:    r.TreeID,
			Name:      r.Name,
			IsActive:  r.IsActive,
			Nodes:     json.RawMessage(r.Nodes),
			CreatedAt: r.CreatedAt.Time,
			UpdatedAt: r.UpdatedAt.Time,
		})
	}
	return paths, nil
}

func (repo growthTreeRepository) QueryTreeActivityRefs(ctx context.Context, treeActivityIDs []string) ([]growthtree.TreeActivityRef, error) {
	if len(treeActivityIDs) == 0 {
		return nil, nil
	}

	var rows []refRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT id, real_activity_id FROM tree_activity_ref WHERE id = ANY($1)`,
		pq.Array(treeActivityIDs))
	if err != nil {
		return nil, errors.Wrap(err, "querying tree activity refs")
	}

	refs := make([]growthtree.TreeActivityRef, 0, len(rows))
	for _, r := range rows {
		refs = append(refs, growthtree.TreeActivityRef{ID: r.ID, RealActivityID: r.RealActivityID.String})
	}
	return refs, nil
}

func (repo growthTreeRepository) QueryStudentActivities(ctx context.Context, studentID string, filter growthtree.ActivityFilter) ([]growthtree.StudentActivityRecord, error) {
	query := `SELECT id, student_id, activity_id, tree_id, activity_type, status, assigned_at, completed_at
	          FROM student_activity WHERE student_id = $1`
	args := []interface{}{studentID}

	if len(filter.ActivityIDs) > 0 {
		args = append(args, pq.Array(filter.ActivityIDs))
		query += " AND activity_id = ANY($" + strconv.Itoa(len(args)) + ")"
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += " AND status = $" + strconv.Itoa(len(args))
	}
	query += " ORDER BY assigned_at"

	var rows []recordRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying student activities")
	}

	recs := make([]growthtree.StudentActivityRecord, 0, len(rows))
	for _, r := range rows {
		recs = append(recs, r.record())
	}
	return recs, nil
}

func (repo growthTreeRepository) InsertStudentActivity(ctx context.Context, rec growthtree.StudentActivityRecord) (growthtree.StudentActivityRecord, error) {
	rec.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO student_activity (id, student_id, activity_id, tree_id, activity_type, status, assigned_at, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID,
		rec.StudentID,
		rec.ActivityID,
		null.NewString(rec.TreeID, rec.TreeID != ""),
		null.NewString(rec.ActivityType, rec.ActivityType != ""),
		string(rec.Status),
		null.NewTime(rec.AssignedAt.UTC(), !rec.AssignedAt.IsZero()),
		null.NewTime(rec.CompletedAt.UTC(), !rec.CompletedAt.IsZero()),
	)
	if err != nil {
		return growthtree.StudentActivityRecord{}, trapWriteErr(err, "inserting student activity")
	}
	return rec, nil
}

func (repo growthTreeRepository) UpdateStudentActivity(ctx context.Context, id string, patch growthtree.ActivityPatch) error {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE student_activity SET status = $1, completed_at = $2 WHERE id = $3`,
		string(patch.Status),
		null.NewTime(patch.CompletedAt.UTC(), !patch.CompletedAt.IsZero()),
		id,
	)
	if err != nil {
		return trapWriteErr(err, "updating student activity")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return errors.Wrapf(growthtree.ErrInvalidReference, "student activity %s not found", id)
	}
	return nil
}

func (repo growthTreeRepository) GetStudent(ctx context.Context, id string) (growthtree.Student, error) {
	var row struct {
		ID    string      `db:"id"`
		Name  null.String `db:"name"`
		Email null.String `db:"email"`
	}
	err := repo.db.GetContext(ctx, &row, `SELECT id, name, email FROM "user" WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return growthtree.Student{}, errors.Wrapf(growthtree.ErrInvalidReference, "student %s not found", id)
		}
		return growthtree.Student{}, errors.Wrap(err, "finding student")
	}
	return growthtree.Student{ID: row.ID, Name: row.Name.String, Email: row.Email.String}, nil
}
