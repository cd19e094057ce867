package main

import (
	"context"
	"time"

	"github.com/trezcool/kijani/core"
	"github.com/trezcool/kijani/core/user"
)

// addUser creates a user.User; admins get all admin roles, everyone else
// starts as a student.
func (cli *commandLine) addUser(uname, email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	if err := cli.usrRepo.CheckUsernameUniqueness(ctx, uname, email); err != nil {
		return err
	}

	now := time.Now().UTC()
	usr := user.User{
		Name:      uname,
		Username:  uname,
		Email:     email,
		IsActive:  true,
		Roles:     []string{user.RoleStudent},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if isAdmin {
		usr.Roles = user.AdminRoles
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.usrRepo.CreateUser(ctx, usr); err != nil {
		return err
	}
	logger.Printf("user %s created", usr.Username)
	return nil
}
