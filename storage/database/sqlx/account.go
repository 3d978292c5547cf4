package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/shule-edu/shule/core"
	"github.com/shule-edu/shule/core/account"
)

type accountRepository struct {
	db *sqlx.DB
}

var _ account.Repository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(db *sqlx.DB) *accountRepository {
	return &accountRepository{db: db}
}

func (repo accountRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.db
}

type accountRow struct {
	ID                string      `db:"id"`
	Email             string      `db:"email"`
	Surname           string      `db:"surname"`
	GivenName         string      `db:"given_name"`
	Role              string      `db:"role"`
	IsActive          bool        `db:"is_active"`
	PasswordTemporary bool        `db:"password_temporary"`
	PasswordHash      []byte      `db:"password_hash"`
	CreatedAt         time.Time   `db:"created_at"`
	ActivationToken   null.String `db:"activation_token"`
	TokenExpiresAt    null.Time   `db:"token_expires_at"`
}

func (r accountRow) unpack() account.Account {
	return account.Account{
		ID:                r.ID,
		Email:             r.Email,
		Surname:           r.Surname,
		GivenName:         r.GivenName,
		Role:              account.Role(r.Role),
		IsActive:          r.IsActive,
		PasswordTemporary: r.PasswordTemporary,
		PasswordHash:      r.PasswordHash,
		CreatedAt:         r.CreatedAt,
		ActivationToken:   r.ActivationToken,
		TokenExpiresAt:    r.TokenExpiresAt,
	}
}

type instructorProfileRow struct {
	ID         string      `db:"id"`
	AccountID  string      `db:"account_id"`
	EmployeeNo string      `db:"employee_no"`
	Specialty  null.String `db:"specialty"`
}

func (r instructorProfileRow) unpack() account.InstructorProfile {
	return account.InstructorProfile{
		ID:         r.ID,
		AccountID:  r.AccountID,
		EmployeeNo: r.EmployeeNo,
		Specialty:  r.Specialty.String,
	}
}

type studentProfileRow struct {
	ID            string    `db:"id"`
	AccountID     string    `db:"account_id"`
	Matriculation string    `db:"matriculation"`
	CohortID      string    `db:"cohort_id"`
	EnrolledAt    time.Time `db:"enrolled_at"`
	Status        string    `db:"status"`
}

func (r studentProfileRow) unpack() account.StudentProfile {
	return account.StudentProfile{
		ID:            r.ID,
		AccountID:     r.AccountID,
		Matriculation: r.Matriculation,
		CohortID:      r.CohortID,
		EnrolledAt:    r.EnrolledAt,
		Status:        account.StudentStatus(r.Status),
	}
}

type instructorRow struct {
	instructorProfileRow
	Surname   string `db:"surname"`
	GivenName string `db:"given_name"`
	Email     string `db:"email"`
}

func (r instructorRow) unpack() account.Instructor {
	return account.Instructor{
		InstructorProfile: r.instructorProfileRow.unpack(),
		Surname:           r.Surname,
		GivenName:         r.GivenName,
		Email:             r.Email,
	}
}

// trapNoRowsErr maps psql "no rows" err to account.ErrNotFound
func (repo accountRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return account.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

// trapConflictErr translates unique-index violations into domain conflicts.
// uq_account_director trips only when two bootstraps race; the caller treats
// that exactly like a duplicate email and re-reads the winner.
func (repo accountRepository) trapConflictErr(err error, msg string) error {
	switch constraint, ok := uniqueViolation(err); {
	case ok && constraint == "uq_account_email",
		ok && constraint == "uq_account_director":
		return account.ErrEmailExists
	case ok && constraint == "uq_student_matriculation":
		return account.ErrMatriculationExists
	}
	return errors.Wrap(err, msg)
}

func (repo accountRepository) CheckEmailUniqueness(ctx context.Context, email string, exec ...core.DBExecutor) error {
	var exists bool
	err := repo.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM account WHERE email = $1)`, email)
	if err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return account.ErrEmailExists
	}
	return nil
}

func (repo accountRepository) CreateAccount(ctx context.Context, acct account.Account, exec ...core.DBExecutor) (account.Account, error) {
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO account
			(id, email, surname, given_name, role, is_active, password_temporary, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		acct.ID, acct.Email, acct.Surname, acct.GivenName, acct.Role,
		acct.IsActive, acct.PasswordTemporary, acct.PasswordHash, acct.CreatedAt.UTC(),
	)
	if err != nil {
		return account.Account{}, repo.trapConflictErr(err, "inserting account")
	}
	return acct, nil
}

func (repo accountRepository) CreateInstructorProfile(ctx context.Context, prof account.InstructorProfile, exec ...core.DBExecutor) (account.InstructorProfile, error) {
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO instructor_profile (id, account_id, employee_no, specialty)
		 VALUES ($1, $2, $3, $4)`,
		prof.ID, prof.AccountID, prof.EmployeeNo, null.NewString(prof.Specialty, prof.Specialty != ""),
	)
	if err != nil {
		return account.InstructorProfile{}, errors.Wrap(err, "inserting instructor profile")
	}
	return prof, nil
}

func (repo accountRepository) CreateStudentProfile(ctx context.Context, prof account.StudentProfile, exec ...core.DBExecutor) (account.StudentProfile, error) {
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO student_profile (id, account_id, matriculation, cohort_id, enrolled_at, status)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		prof.ID, prof.AccountID, prof.Matriculation, prof.CohortID, prof.EnrolledAt.UTC(), prof.Status,
	)
	if err != nil {
		return account.StudentProfile{}, repo.trapConflictErr(err, "inserting student profile")
	}
	return prof, nil
}

func (repo accountRepository) GetAccountByID(ctx context.Context, id string, exec ...core.DBExecutor) (account.Account, error) {
	var row accountRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM account WHERE id = $1`, id)
	if err != nil {
		return account.Account{}, repo.trapNoRowsErr(err, "getting account by id")
	}
	return row.unpack(), nil
}

func (repo accountRepository) GetAccountByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (account.Account, error) {
	var row accountRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM account WHERE email = $1`, email)
	if err != nil {
		return account.Account{}, repo.trapNoRowsErr(err, "getting account by email")
	}
	return row.unpack(), nil
}

func (repo accountRepository) GetDirector(ctx context.Context, exec ...core.DBExecutor) (account.Account, error) {
	var row accountRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM account WHERE role = $1`, account.RoleDirector)
	if err != nil {
		return account.Account{}, repo.trapNoRowsErr(err, "getting director")
	}
	return row.unpack(), nil
}

func (repo accountRepository) SetAccountPassword(ctx context.Context, id string, hash []byte, temporary bool, exec ...core.DBExecutor) error {
	res, err := repo.getExec(exec).ExecContext(ctx,
		`UPDATE account SET password_hash = $1, password_temporary = $2 WHERE id = $3`,
		hash, temporary, id,
	)
	if err != nil {
		return errors.Wrap(err, "updating account password")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return account.ErrNotFound
	}
	return nil
}

func (repo accountRepository) QueryInstructors(ctx context.Context, exec ...core.DBExecutor) ([]account.Instructor, error) {
	ordering := core.OrderByClause(
		core.DBOrdering{Field: "a.surname", Ascending: true},
		core.DBOrdering{Field: "a.given_name", Ascending: true},
	)
	var rows []instructorRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT ip.id, ip.account_id, ip.employee_no, ip.specialty, a.surname, a.given_name, a.email
		 FROM instructor_profile ip
		 JOIN account a ON a.id = ip.account_id `+ordering)
	if err != nil {
		return nil, errors.Wrap(err, "querying instructors")
	}
	instructors := make([]account.Instructor, 0, len(rows))
	for _, r := range rows {
		instructors = append(instructors, r.unpack())
	}
	return instructors, nil
}

func (repo accountRepository) GetInstructorProfileByAccountID(ctx context.Context, accountID string, exec ...core.DBExecutor) (account.InstructorProfile, error) {
	var row instructorProfileRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM instructor_profile WHERE account_id = $1`, accountID)
	if err != nil {
		return account.InstructorProfile{}, repo.trapNoRowsErr(err, "getting instructor profile")
	}
	return row.unpack(), nil
}

func (repo accountRepository) GetStudentProfileByAccountID(ctx context.Context, accountID string, exec ...core.DBExecutor) (account.StudentProfile, error) {
	var row studentProfileRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM student_profile WHERE account_id = $1`, accountID)
	if err != nil {
		return account.StudentProfile{}, repo.trapNoRowsErr(err, "getting student profile")
	}
	return row.unpack(), nil
}

func (repo accountRepository) RecordLoginAttempt(ctx context.Context, att account.LoginAttempt, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO login_attempt (email, succeeded, attempted_at) VALUES ($1, $2, $3)`,
		att.Email, att.Succeeded, att.AttemptedAt.UTC(),
	)
	return errors.Wrap(err, "inserting login attempt")
}

func (repo accountRepository) CountRecentLoginFailures(ctx context.Context, email string, since time.Time, exec ...core.DBExecutor) (int, error) {
	var n int
	err := repo.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM login_attempt
		 WHERE email = $1 AND succeeded = FALSE AND attempted_at > $2`,
		email, since.UTC(),
	)
	if err != nil {
		return 0, errors.Wrap(err, "counting login failures")
	}
	return n, nil
}
