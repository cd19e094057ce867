package user

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kijani/core"
)

var (
	// errors
	ErrNotFound   = errors.New("user not found")
	ErrUserExists = errors.New("a user with this username or email already exists")
)

type (
	Repository interface {
		CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		QueryUsersByRole(ctx context.Context, rolePrefix string, ordering ...core.DBOrdering) ([]User, error)
		SetLastLogin(ctx context.Context, usr User) error
	}

	ServiceInterface interface {
		CheckUniqueness(uname, email string) error
		Create(ctx context.Context, nu NewUser) (User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByUsernameOrEmail(ctx context.Context, uname string) (User, error)
		Authenticate(ctx context.Context, uname, pwd string) (User, error)
		QueryStudents(ctx context.Context) ([]User, error)
	}

	service struct {
		repo Repository
		log  core.Logger
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository, log core.Logger) *service {
	return &service{repo: repo, log: log}
}

func (svc *service) CheckUniqueness(uname, email string) error {
	if err := svc.repo.CheckUsernameUniqueness(context.Background(), uname, email); err != nil {
		if errors.Cause(err) == ErrUserExists {
			return core.NewValidationError(err, core.FieldError{Field: "username", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Name:      nu.Name,
		Username:  nu.Username,
		Email:     nu.Email,
		IsActive:  true,
		Roles:     nu.Roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *service) GetByUsernameOrEmail(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{UsernameOrEmail: core.CleanString(uname, true /* lower */)})
}

// Authenticate checks the given credentials and records the login time.
func (svc *service) Authenticate(ctx context.Context, uname, pwd string) (User, error) {
	usr, err := svc.GetByUsernameOrEmail(ctx, uname)
	if err != nil {
		return User{}, err
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrNotFound
	}
	usr.LastLogin = time.Now().UTC()
	if err = svc.repo.SetLastLogin(ctx, usr); err != nil {
		svc.log.Warn("recording last login", err)
	}
	return usr, nil
}

func (svc *service) QueryStudents(ctx context.Context) ([]User, error) {
	return svc.repo.QueryUsersByRole(ctx, RoleStudent, core.DBOrdering{Field: "name", Ascending: true})
}
