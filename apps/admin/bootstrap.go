package main

import (
	"context"
	"fmt"
)

// bootstrap ensures the singleton director account and the default program
// exist. Safe to run repeatedly.
func (cli *commandLine) bootstrap() error {
	ctx := context.Background()

	dir, err := cli.accountSvc.EnsureDirector(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("director account: %s\n", dir.Email)

	prog, err := cli.academicSvc.EnsureDefaultProgram(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("default program: %s\n", prog.Name)
	return nil
}
