package main

import (
	"context"

	"github.com/qisedu/udahili/core/admin"
)

// addAdmin creates an active administrative account with the given role.
func (cli *commandLine) addAdmin(name, email, role, pwd string) error {
	np := admin.NewPrincipal{
		Name:            name,
		Email:           email,
		Role:            role,
		Password:        pwd,
		PasswordConfirm: pwd,
	}
	if err := np.Validate(); err != nil {
		return err
	}
	if _, err := cli.admSvc.Create(context.Background(), np); err != nil {
		return err
	}
	return nil
}
