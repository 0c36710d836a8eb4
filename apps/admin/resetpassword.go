package main

import (
	"github.com/darasa/backend/core"
	"github.com/darasa/backend/core/user"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	actor, err := cli.superAdmin()
	if err != nil {
		return err
	}

	usr, err := cli.usrSvc.GetByEmail(core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	if _, err := cli.usrSvc.Update(actor, usr.ID, user.UpdateUser{Password: pwd}); err != nil {
		return err
	}

	logger.Printf("password reset for %s", usr.Email)
	return nil
}
