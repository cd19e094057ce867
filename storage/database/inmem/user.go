package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/kijani/core"
	"github.com/trezcool/kijani/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUsernameUniqueness(_ context.Context, username, email string, excludedUsers ...user.User) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	excluded := make(map[string]bool, len(excludedUsers))
	for _, u := range excludedUsers {
		excluded[u.ID] = true
	}

	for _, usr := range repo.db.users {
		if excluded[usr.ID] {
			continue
		}
		if (username != "" && usr.Username == username) || (email != "" && usr.Email == email) {
			return user.ErrUserExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	usr.ID = repo.db.nextPK("user")
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) GetUser(_ context.Context, filter user.GetFilter) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != "" {
		if usr, ok := repo.db.users[filter.ID]; ok {
			return *usr, nil
		}
		return user.User{}, user.ErrNotFound
	}

	for _, usr := range repo.db.users {
		switch {
		case filter.Username != "" && usr.Username == filter.Username:
			return *usr, nil
		case filter.Email != "" && usr.Email == filter.Email:
			return *usr, nil
		case filter.UsernameOrEmail != "" && (usr.Username == filter.UsernameOrEmail || usr.Email == filter.UsernameOrEmail):
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) QueryUsersByRole(_ context.Context, rolePrefix string, ordering ...core.DBOrdering) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var users []user.User
	for _, usr := range repo.db.users {
		for _, role := range usr.Roles {
			if strings.HasPrefix(role, rolePrefix) {
				users = append(users, *usr)
				break
			}
		}
	}
	// name ordering is all the service asks for
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

func (repo *userRepository) SetLastLogin(_ context.Context, usr user.User) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if stored, ok := repo.db.users[usr.ID]; ok {
		stored.LastLogin = usr.LastLogin
	}
	return nil
}
