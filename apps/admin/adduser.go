package main

import (
	"github.com/darasa/backend/core"
	"github.com/darasa/backend/core/user"
)

// addUser creates a user acting as the seeded super-admin.
func (cli *commandLine) addUser(name, email, role, grade, dept, pwd string) error {
	actor, err := cli.superAdmin()
	if err != nil {
		return err
	}

	usr, err := cli.usrSvc.Create(actor, user.NewUser{
		Name:       core.CleanString(name),
		Email:      core.CleanString(email, true /* lower */),
		Role:       core.CleanString(role, true /* lower */),
		Grade:      grade,
		Department: dept,
		Password:   pwd,
	})
	if err != nil {
		return err
	}

	logger.Printf("created %s <%s> (%s)", usr.Name, usr.Email, usr.Role)
	return nil
}

func (cli *commandLine) superAdmin() (user.User, error) {
	users, err := cli.usrSvc.GetByRole(user.RoleSuperAdmin)
	if err != nil {
		return user.User{}, err
	}
	if len(users) == 0 {
		return user.User{}, user.ErrNotFound
	}
	return users[0], nil
}
