package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kijani/core"
	"github.com/trezcool/kijani/core/user"
)

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

type userRow struct {
	ID           string         `db:"id"`
	Name         null.String    `db:"name"`
	Username     null.String    `db:"username"`
	Email        null.String    `db:"email"`
	IsActive     null.Bool      `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash null.Bytes     `db:"password_hash"`
	CreatedAt    null.Time      `db:"created_at"`
	UpdatedAt    null.Time      `db:"updated_at"`
	LastLogin    null.Time      `db:"last_login"`
}

const userColumns = `id, name, username, email, is_active, roles, password_hash, created_at, updated_at, last_login`

func (r userRow) user() user.User {
	return user.User{
		ID:           r.ID,
		Name:         r.Name.String,
		Username:     r.Username.String,
		Email:        r.Email.String,
		IsActive:     r.IsActive.Bool,
		Roles:        r.Roles,
		PasswordHash: r.PasswordHash.Bytes,
		CreatedAt:    r.CreatedAt.Time,
		UpdatedAt:    r.UpdatedAt.Time,
		LastLogin:    r.LastLogin.Time,
	}
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	query := `SELECT EXISTS (SELECT 1 FROM "user" WHERE (username = $1 OR email = $2)`
	args := []interface{}{username, email}
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		args = append(args, pq.Array(ids))
		query += ` AND id != ALL($3)`
	}
	query += `)`

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, query, args...); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	if exists {
		return user.ErrUserExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO "user" (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		usr.ID,
		null.NewString(usr.Name, usr.Name != ""),
		null.NewString(usr.Username, usr.Username != ""),
		null.NewString(usr.Email, usr.Email != ""),
		usr.IsActive,
		pq.StringArray(usr.Roles),
		null.BytesFrom(usr.PasswordHash),
		null.NewTime(usr.CreatedAt.UTC(), !usr.CreatedAt.IsZero()),
		null.NewTime(usr.UpdatedAt.UTC(), !usr.UpdatedAt.IsZero()),
		null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var row userRow
	var err error

	switch {
	case filter.ID != "":
		if _, err = uuid.Parse(filter.ID); err != nil {
			return user.User{}, user.ErrNotFound
		}
		err = repo.db.GetContext(ctx, &row,
			`SELECT `+userColumns+` FROM "user" WHERE id = $1`, filter.ID)
	case filter.Username != "":
		err = repo.db.GetContext(ctx, &row,
			`SELECT `+userColumns+` FROM "user" WHERE username = $1`, filter.Username)
	case filter.Email != "":
		err = repo.db.GetContext(ctx, &row,
			`SELECT `+userColumns+` FROM "user" WHERE email = $1`, filter.Email)
	case filter.UsernameOrEmail != "":
		err = repo.db.GetContext(ctx, &row,
			`SELECT `+userColumns+` FROM "user" WHERE username = $1 OR email = $1`, filter.UsernameOrEmail)
	default:
		return user.User{}, user.ErrNotFound
	}

	if err != nil {
		return user.User{}, trapNoRowsErr(err, "finding user")
	}
	return row.user(), nil
}

func (repo userRepository) QueryUsersByRole(ctx context.Context, rolePrefix string, ordering ...core.DBOrdering) ([]user.User, error) {
	query := `SELECT ` + userColumns + ` FROM "user"
	          WHERE EXISTS (SELECT 1 FROM UNNEST(roles) user_role WHERE user_role ILIKE $1)`
	if len(ordering) > 0 {
		query += " ORDER BY " + ordering[0].String()
	}

	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, query, rolePrefix+"%"); err != nil {
		return nil, errors.Wrap(err, "querying users by role")
	}

	users := make([]user.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.user())
	}
	return users, nil
}

func (repo userRepository) SetLastLogin(ctx context.Context, usr user.User) error {
	_, err := repo.db.ExecContext(ctx,
		`UPDATE "user" SET last_login = $1 WHERE id = $2`,
		null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()), usr.ID)
	return errors.Wrap(err, "updating last login")
}
