package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"net/mail"
	"strconv"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/shule-edu/shule/core"
	"github.com/shule-edu/shule/core/academic"
	"github.com/shule-edu/shule/core/account"
	"github.com/shule-edu/shule/storage/database"
	dummydb "github.com/shule-edu/shule/storage/database/dummy"
)

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Warn(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Fatal(msg string, args ...interface{}) {}

type nopNotifier struct{}

func (nopNotifier) SendCredentials(to mail.Address, givenName, email, password string, role account.Role) bool {
	return true
}

var accountRepo account.Repository

func setup(t *testing.T) *commandLine {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	accountRepo = dummydb.NewAccountRepository(db)

	conf := &core.Config{
		AppName:  "Shule",
		Director: core.DirectorConfig{Email: "director@shule.local", Password: "admin123"},
	}
	academicSvc := academic.NewService(dummydb.NewAcademicRepository(db))
	accountSvc := account.NewService(db, accountRepo, academicSvc, nopNotifier{}, nopLogger{}, conf)

	return &commandLine{
		db:          database.DB{DB: new(sqlx.DB)},
		accountRepo: accountRepo,
		accountSvc:  accountSvc,
		academicSvc: academicSvc,
	}
}

func createAccount(t *testing.T, email, pwd string) account.Account {
	t.Helper()
	acct := account.Account{
		ID:        core.RandomID("INSTRUCTOR"),
		Email:     email,
		Surname:   "Doe",
		GivenName: "Jane",
		Role:      account.RoleInstructor,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	if err := acct.SetPassword(pwd); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}
	acct, err := accountRepo.CreateAccount(context.Background(), acct)
	if err != nil {
		t.Fatalf("CreateAccount() failed: %v", err)
	}
	return acct
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand defaults to up", args: []string{"migrate"}},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "space", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_bootstrap(t *testing.T) {
	cli := setup(t)

	if err := cli.run([]string{"admin", "bootstrap"}); err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}

	dir, err := accountRepo.GetDirector(context.Background())
	if err != nil {
		t.Fatalf("GetDirector() failed: %v", err)
	}
	if dir.Email != "director@shule.local" {
		t.Errorf("director email = %s; want director@shule.local", dir.Email)
	}

	// safe to run twice
	if err := cli.run([]string{"admin", "bootstrap"}); err != nil {
		t.Errorf("cli.run() second bootstrap failed: %v", err)
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	acct := createAccount(t, "jane.doe@shule.local", "old-pass")

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "lol@test.cd"}, wantErr: errHelp},
		{name: "account not found", args: []string{"resetpassword", "-email", "lol@test.cd"}, extra: extra{pwd: "lol"}, wantErr: account.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", acct.Email}, extra: extra{pwd: "new-pass"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshed, err := accountRepo.GetAccountByEmail(context.Background(), acct.Email)
				if err != nil {
					t.Fatalf("GetAccountByEmail() failed: %v", err)
				}
				if bytes.Equal(refreshed.PasswordHash, acct.PasswordHash) {
					t.Error("failed to update new password")
				}
				if refreshed.CheckPassword("new-pass") != nil {
					t.Error("new password does not verify")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
