package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/shule-edu/shule/core"
	"github.com/shule-edu/shule/core/account"
)

type accountRepository struct {
	db *accountTables
}

var _ account.Repository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(db *DB) *accountRepository {
	return &accountRepository{db: db.account}
}

func (repo *accountRepository) CheckEmailUniqueness(ctx context.Context, email string, exec ...core.DBExecutor) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, acct := range repo.db.accounts {
		if acct.Email == email {
			return account.ErrEmailExists
		}
	}
	return nil
}

func (repo *accountRepository) CreateAccount(ctx context.Context, acct account.Account, exec ...core.DBExecutor) (account.Account, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.accounts {
		if existing.Email == acct.Email {
			return account.Account{}, account.ErrEmailExists
		}
		if acct.Role == account.RoleDirector && existing.Role == account.RoleDirector {
			return account.Account{}, account.ErrEmailExists
		}
	}
	repo.db.accounts[acct.ID] = &acct
	return acct, nil
}

func (repo *accountRepository) CreateInstructorProfile(ctx context.Context, prof account.InstructorProfile, exec ...core.DBExecutor) (account.InstructorProfile, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.instructors[prof.ID] = &prof
	return prof, nil
}

func (repo *accountRepository) CreateStudentProfile(ctx context.Context, prof account.StudentProfile, exec ...core.DBExecutor) (account.StudentProfile, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.students {
		if existing.Matriculation == prof.Matriculation {
			return account.StudentProfile{}, account.ErrMatriculationExists
		}
	}
	repo.db.students[prof.ID] = &prof
	return prof, nil
}

func (repo *accountRepository) GetAccountByID(ctx context.Context, id string, exec ...core.DBExecutor) (account.Account, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if acct, ok := repo.db.accounts[id]; ok {
		return *acct, nil
	}
	return account.Account{}, account.ErrNotFound
}

func (repo *accountRepository) GetAccountByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (account.Account, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, acct := range repo.db.accounts {
		if acct.Email == email {
			return *acct, nil
		}
	}
	return account.Account{}, account.ErrNotFound
}

func (repo *accountRepository) GetDirector(ctx context.Context, exec ...core.DBExecutor) (account.Account, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, acct := range repo.db.accounts {
		if acct.Role == account.RoleDirector {
			return *acct, nil
		}
	}
	return account.Account{}, account.ErrNotFound
}

func (repo *accountRepository) SetAccountPassword(ctx context.Context, id string, hash []byte, temporary bool, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	acct, ok := repo.db.accounts[id]
	if !ok {
		return account.ErrNotFound
	}
	acct.PasswordHash = hash
	acct.PasswordTemporary = temporary
	return nil
}

func (repo *accountRepository) QueryInstructors(ctx context.Context, exec ...core.DBExecutor) ([]account.Instructor, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	instructors := make([]account.Instructor, 0, len(repo.db.instructors))
	for _, prof := range repo.db.instructors {
		acct, ok := repo.db.accounts[prof.AccountID]
		if !ok {
			continue
		}
		instructors = append(instructors, account.Instructor{
			InstructorProfile: *prof,
			Surname:           acct.Surname,
			GivenName:         acct.GivenName,
			Email:             acct.Email,
		})
	}
	sort.Slice(instructors, func(i, j int) bool {
		if instructors[i].Surname != instructors[j].Surname {
			return instructors[i].Surname < instructors[j].Surname
		}
		return instructors[i].GivenName < instructors[j].GivenName
	})
	return instructors, nil
}

func (repo *accountRepository) GetInstructorProfileByAccountID(ctx context.Context, accountID string, exec ...core.DBExecutor) (account.InstructorProfile, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, prof := range repo.db.instructors {
		if prof.AccountID == accountID {
			return *prof, nil
		}
	}
	return account.InstructorProfile{}, account.ErrNotFound
}

func (repo *accountRepository) GetStudentProfileByAccountID(ctx context.Context, accountID string, exec ...core.DBExecutor) (account.StudentProfile, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, prof := range repo.db.students {
		if prof.AccountID == accountID {
			return *prof, nil
		}
	}
	return account.StudentProfile{}, account.ErrNotFound
}

func (repo *accountRepository) RecordLoginAttempt(ctx context.Context, att account.LoginAttempt, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.attempts = append(repo.db.attempts, att)
	return nil
}

func (repo *accountRepository) CountRecentLoginFailures(ctx context.Context, email string, since time.Time, exec ...core.DBExecutor) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var n int
	for _, att := range repo.db.attempts {
		if att.Email == email && !att.Succeeded && att.AttemptedAt.After(since) {
			n++
		}
	}
	return n, nil
}
