package main

import (
	"context"

	"github.com/shule-edu/shule/core"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()
	acct, err := cli.accountRepo.GetAccountByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	if err := acct.SetPassword(pwd); err != nil {
		return err
	}
	return cli.accountRepo.SetAccountPassword(ctx, acct.ID, acct.PasswordHash, false)
}
