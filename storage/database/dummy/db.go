// Package dummydb is the in-memory database used by tests and local hacking.
// Each table group is guarded by its own RWMutex; transactions are no-ops
// since every repository call is already atomic under its lock.
package dummydb

import (
	"context"
	"database/sql"
	"sync"

	"github.com/shule-edu/shule/core"
	"github.com/shule-edu/shule/core/academic"
	"github.com/shule-edu/shule/core/account"
	"github.com/shule-edu/shule/core/space"
)

type (
	DB struct {
		noopExecutor

		account  *accountTables
		academic *academicTables
		space    *spaceTables
	}

	accountTables struct {
		sync.RWMutex
		accounts    map[string]*account.Account
		instructors map[string]*account.InstructorProfile
		students    map[string]*account.StudentProfile
		attempts    []account.LoginAttempt
	}

	academicTables struct {
		sync.RWMutex
		programs map[string]*academic.Program
		cohorts  map[string]*academic.Cohort
	}

	spaceTables struct {
		sync.RWMutex
		spaces      map[string]*space.Space
		works       map[string]*space.Work
		assignments map[string]*space.Assignment
	}
)

var _ core.DB = (*DB)(nil) // interface compliance check

func Open() (*DB, error) {
	db := &DB{
		account: &accountTables{
			accounts:    make(map[string]*account.Account),
			instructors: make(map[string]*account.InstructorProfile),
			students:    make(map[string]*account.StudentProfile),
		},
		academic: &academicTables{
			programs: make(map[string]*academic.Program),
			cohorts:  make(map[string]*academic.Cohort),
		},
		space: &spaceTables{
			spaces:      make(map[string]*space.Space),
			works:       make(map[string]*space.Work),
			assignments: make(map[string]*space.Assignment),
		},
	}
	return db, nil
}

func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (core.DBTransactor, error) {
	return noopTx{}, nil
}

type noopExecutor struct{}

func (noopExecutor) Exec(query string, args ...interface{}) (sql.Result, error) { return nil, nil }
func (noopExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}
func (noopExecutor) Query(query string, args ...interface{}) (*sql.Rows, error) { return nil, nil }
func (noopExecutor) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}
func (noopExecutor) QueryRow(query string, args ...interface{}) *sql.Row { return nil }
func (noopExecutor) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return nil
}

type noopTx struct {
	noopExecutor
}

func (noopTx) Commit() error   { return nil }
func (noopTx) Rollback() error { return nil }
