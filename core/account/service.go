package account

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/shule-edu/shule/core"
)

var (
	// errors
	ErrNotFound            = errors.New("account not found")
	ErrEmailExists         = errors.New("an account with this email already exists")
	ErrMatriculationExists = errors.New("a student with this matriculation already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountDeactivated  = errors.New("account deactivated")
	ErrThrottled           = errors.New("too many attempts, retry after the window")

	nowFunc = time.Now // mockable
)

// Login throttling: a sliding window, not a fixed bucket. Each failed attempt
// independently ages out loginFailureWindow after it was recorded.
const (
	loginFailureWindow = 15 * time.Minute
	loginMaxFailures   = 5
)

// directorID is the fixed, well-known identifier of the singleton Director
// account created by EnsureDirector.
const directorID = "DIRECTOR-PRINCIPAL"

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, exec ...core.DBExecutor) error
		CreateAccount(ctx context.Context, acct Account, exec ...core.DBExecutor) (Account, error)
		CreateInstructorProfile(ctx context.Context, prof InstructorProfile, exec ...core.DBExecutor) (InstructorProfile, error)
		CreateStudentProfile(ctx context.Context, prof StudentProfile, exec ...core.DBExecutor) (StudentProfile, error)
		GetAccountByID(ctx context.Context, id string, exec ...core.DBExecutor) (Account, error)
		GetAccountByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (Account, error)
		GetDirector(ctx context.Context, exec ...core.DBExecutor) (Account, error)
		SetAccountPassword(ctx context.Context, id string, hash []byte, temporary bool, exec ...core.DBExecutor) error
		QueryInstructors(ctx context.Context, exec ...core.DBExecutor) ([]Instructor, error)
		GetInstructorProfileByAccountID(ctx context.Context, accountID string, exec ...core.DBExecutor) (InstructorProfile, error)
		GetStudentProfileByAccountID(ctx context.Context, accountID string, exec ...core.DBExecutor) (StudentProfile, error)

		// Login-attempt ledger: append-only, queried by time window, never pruned.
		RecordLoginAttempt(ctx context.Context, att LoginAttempt, exec ...core.DBExecutor) error
		CountRecentLoginFailures(ctx context.Context, email string, since time.Time, exec ...core.DBExecutor) (int, error)
	}

	// CohortResolver resolves (or lazily creates) the cohort for an academic
	// year. Implemented by the academic service.
	CohortResolver interface {
		ResolveOrCreateCohort(ctx context.Context, academicYear string) (string, error)
	}

	// Notifier delivers credential emails out-of-band. It never fails the
	// caller; it reports delivery as a boolean.
	Notifier interface {
		SendCredentials(to mail.Address, givenName, email, password string, role Role) bool
	}

	ServiceInterface interface {
		CheckEmailUniqueness(ctx context.Context, email string) error
		EnsureDirector(ctx context.Context) (Account, error)
		CreateInstructor(ctx context.Context, ni NewInstructor) (CreateResult, error)
		CreateStudent(ctx context.Context, ns NewStudent) (CreateResult, error)
		ChangePassword(ctx context.Context, id string, cp ChangePassword) (Account, error)
		Authenticate(ctx context.Context, email, pwd string) (Account, error)
		IsLockedOut(ctx context.Context, email string) (bool, error)
		GetByID(ctx context.Context, id string) (Account, error)
		GetByEmail(ctx context.Context, email string) (Account, error)
		QueryInstructors(ctx context.Context) ([]Instructor, error)
		GetInstructorProfile(ctx context.Context, accountID string) (InstructorProfile, error)
		GetStudentProfile(ctx context.Context, accountID string) (StudentProfile, error)
	}

	Service struct {
		db       core.DB
		repo     Repository
		cohorts  CohortResolver
		notifier Notifier
		logger   core.Logger
		conf     *core.Config
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(db core.DB, repo Repository, cohorts CohortResolver, notifier Notifier, logger core.Logger, conf *core.Config) *Service {
	return &Service{
		db:       db,
		repo:     repo,
		cohorts:  cohorts,
		notifier: notifier,
		logger:   logger,
		conf:     conf,
	}
}

// CheckEmailUniqueness is the advisory pre-insert check; it reports the same
// ErrEmailExists conflict the unique index raises, so both paths surface
// identically to callers. The index remains the authoritative guard against
// concurrent creations.
func (svc *Service) CheckEmailUniqueness(ctx context.Context, email string) error {
	return svc.repo.CheckEmailUniqueness(ctx, email)
}

// EnsureDirector returns the singleton Director account, creating it with the
// configured bootstrap identity on first call. Idempotent: repeated calls
// return the existing account unchanged, issue no credentials and send no email.
func (svc *Service) EnsureDirector(ctx context.Context) (Account, error) {
	dir, err := svc.repo.GetDirector(ctx)
	if err == nil {
		return dir, nil
	}
	if err != ErrNotFound {
		return Account{}, pkgerrors.Wrap(err, "finding director")
	}

	dir = Account{
		ID:                directorID,
		Email:             core.CleanString(svc.conf.Director.Email, true /* lower */),
		Surname:           "Director",
		GivenName:         "Principal",
		Role:              RoleDirector,
		IsActive:          true,
		PasswordTemporary: true,
		CreatedAt:         nowFunc().UTC(),
	}
	if err = dir.SetPassword(svc.conf.Director.Password); err != nil {
		return Account{}, pkgerrors.Wrap(err, "hashing director password")
	}

	dir, err = svc.repo.CreateAccount(ctx, dir)
	if err != nil {
		// lost a bootstrap race; the partial unique index on the role holds
		if err == ErrEmailExists {
			return svc.repo.GetDirector(ctx)
		}
		return Account{}, pkgerrors.Wrap(err, "creating director")
	}
	return dir, nil
}

// CreateInstructor provisions an Instructor account and its profile as one
// atomic unit, then dispatches the credential email post-commit.
func (svc *Service) CreateInstructor(ctx context.Context, ni NewInstructor) (CreateResult, error) {
	pwd := core.RandomPassword()
	now := nowFunc().UTC()

	acct := Account{
		ID:                core.RandomID(string(RoleInstructor)),
		Email:             ni.Email,
		Surname:           ni.Surname,
		GivenName:         ni.GivenName,
		Role:              RoleInstructor,
		IsActive:          true,
		PasswordTemporary: true,
		CreatedAt:         now,
	}
	if err := acct.SetPassword(pwd); err != nil {
		return CreateResult{}, pkgerrors.Wrap(err, "hashing password")
	}

	prof := InstructorProfile{
		ID:        core.RandomID(string(RoleInstructor)),
		AccountID: acct.ID,
		Specialty: ni.Specialty,
	}
	prof.EmployeeNo = employeeNo(prof.ID)

	err := svc.atomically(ctx, func(tx core.DBTransactor) error {
		var err error
		if acct, err = svc.repo.CreateAccount(ctx, acct, tx); err != nil {
			return pkgerrors.Wrap(err, "inserting account")
		}
		if prof, err = svc.repo.CreateInstructorProfile(ctx, prof, tx); err != nil {
			return pkgerrors.Wrap(err, "inserting instructor profile")
		}
		return nil
	})
	if err != nil {
		return CreateResult{}, err
	}

	sent := svc.sendCredentials(acct, pwd)
	return CreateResult{
		Account:    acct,
		EmployeeNo: prof.EmployeeNo,
		EmailSent:  sent,
	}, nil
}

// CreateStudent provisions a Student account, resolving (or creating) the
// cohort for the requested academic year, then persists account + profile as
// one atomic unit and dispatches the credential email post-commit.
func (svc *Service) CreateStudent(ctx context.Context, ns NewStudent) (CreateResult, error) {
	cohortID, err := svc.cohorts.ResolveOrCreateCohort(ctx, ns.AcademicYear)
	if err != nil {
		return CreateResult{}, pkgerrors.Wrap(err, "resolving cohort")
	}

	pwd := core.RandomPassword()
	now := nowFunc().UTC()

	acct := Account{
		ID:                core.RandomID(string(RoleStudent)),
		Email:             ns.Email,
		Surname:           ns.Surname,
		GivenName:         ns.GivenName,
		Role:              RoleStudent,
		IsActive:          true,
		PasswordTemporary: true,
		CreatedAt:         now,
	}
	if err = acct.SetPassword(pwd); err != nil {
		return CreateResult{}, pkgerrors.Wrap(err, "hashing password")
	}

	prof := StudentProfile{
		ID:            core.RandomID(string(RoleStudent)),
		AccountID:     acct.ID,
		Matriculation: matriculation(ns.AcademicYear),
		CohortID:      cohortID,
		EnrolledAt:    now,
		Status:        StudentActive,
	}

	err = svc.atomically(ctx, func(tx core.DBTransactor) error {
		var err error
		if acct, err = svc.repo.CreateAccount(ctx, acct, tx); err != nil {
			return pkgerrors.Wrap(err, "inserting account")
		}
		if prof, err = svc.repo.CreateStudentProfile(ctx, prof, tx); err != nil {
			return pkgerrors.Wrap(err, "inserting student profile")
		}
		return nil
	})
	if err != nil {
		return CreateResult{}, err
	}

	sent := svc.sendCredentials(acct, pwd)
	return CreateResult{
		Account:       acct,
		Matriculation: prof.Matriculation,
		CohortID:      prof.CohortID,
		EmailSent:     sent,
	}, nil
}

// ChangePassword verifies the current password, stores the new hash and
// clears the temporary-password flag.
func (svc *Service) ChangePassword(ctx context.Context, id string, cp ChangePassword) (Account, error) {
	acct, err := svc.repo.GetAccountByID(ctx, id)
	if err != nil {
		return Account{}, err
	}
	if err = acct.CheckPassword(cp.CurrentPassword); err != nil {
		return Account{}, ErrInvalidCredentials
	}
	if err = acct.SetPassword(cp.Password); err != nil {
		return Account{}, pkgerrors.Wrap(err, "hashing password")
	}
	if err = svc.repo.SetAccountPassword(ctx, acct.ID, acct.PasswordHash, false); err != nil {
		return Account{}, pkgerrors.Wrap(err, "updating password")
	}
	acct.PasswordTemporary = false
	return acct, nil
}

// Authenticate runs one login attempt:
// throttle check -> credential check -> ledger record.
// An attempt rejected by the throttle is NOT recorded; only real credential
// checks land in the ledger. Ledger storage errors are fatal to the request.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (Account, error) {
	email = core.CleanString(email, true /* lower */)

	locked, err := svc.IsLockedOut(ctx, email)
	if err != nil {
		return Account{}, err
	}
	if locked {
		return Account{}, ErrThrottled
	}

	acct, err := svc.repo.GetAccountByEmail(ctx, email)
	if err != nil {
		if err != ErrNotFound {
			return Account{}, pkgerrors.Wrap(err, "finding account by email")
		}
		// constant response shape: do not reveal whether the email exists
		if err = svc.recordAttempt(ctx, email, false); err != nil {
			return Account{}, err
		}
		return Account{}, ErrInvalidCredentials
	}

	if err = acct.CheckPassword(pwd); err != nil {
		if err = svc.recordAttempt(ctx, email, false); err != nil {
			return Account{}, err
		}
		return Account{}, ErrInvalidCredentials
	}

	if !acct.IsActive {
		if err = svc.recordAttempt(ctx, email, false); err != nil {
			return Account{}, err
		}
		return Account{}, ErrAccountDeactivated
	}

	if err = svc.recordAttempt(ctx, email, true); err != nil {
		return Account{}, err
	}
	return acct, nil
}

// IsLockedOut reports whether the email accumulated loginMaxFailures failed
// attempts within the sliding loginFailureWindow.
func (svc *Service) IsLockedOut(ctx context.Context, email string) (bool, error) {
	since := nowFunc().UTC().Add(-loginFailureWindow)
	n, err := svc.repo.CountRecentLoginFailures(ctx, core.CleanString(email, true /* lower */), since)
	if err != nil {
		return false, pkgerrors.Wrap(err, "counting recent login failures")
	}
	return n >= loginMaxFailures, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Account, error) {
	return svc.repo.GetAccountByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Account, error) {
	return svc.repo.GetAccountByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) QueryInstructors(ctx context.Context) ([]Instructor, error) {
	return svc.repo.QueryInstructors(ctx)
}

func (svc *Service) GetInstructorProfile(ctx context.Context, accountID string) (InstructorProfile, error) {
	return svc.repo.GetInstructorProfileByAccountID(ctx, accountID)
}

func (svc *Service) GetStudentProfile(ctx context.Context, accountID string) (StudentProfile, error) {
	return svc.repo.GetStudentProfileByAccountID(ctx, accountID)
}

func (svc *Service) recordAttempt(ctx context.Context, email string, succeeded bool) error {
	att := LoginAttempt{
		Email:       email,
		Succeeded:   succeeded,
		AttemptedAt: nowFunc().UTC(),
	}
	return pkgerrors.Wrap(svc.repo.RecordLoginAttempt(ctx, att), "recording login attempt")
}

// atomically runs fn inside one transaction; a failure rolls the whole unit
// back so no partial state is ever visible.
func (svc *Service) atomically(ctx context.Context, fn func(tx core.DBTransactor) error) error {
	tx, err := svc.db.BeginTx(ctx, nil)
	if err != nil {
		return pkgerrors.Wrap(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return pkgerrors.Wrap(tx.Commit(), "committing transaction")
}

// sendCredentials dispatches the credential email after the transaction has
// committed; delivery failure never invalidates the account.
func (svc *Service) sendCredentials(acct Account, pwd string) bool {
	to := mail.Address{Name: acct.DisplayName(), Address: acct.Email}
	sent := svc.notifier.SendCredentials(to, acct.GivenName, acct.Email, pwd, acct.Role)
	if !sent {
		svc.logger.Warn(fmt.Sprintf("credential email to %s not delivered", acct.Email))
	}
	return sent
}

// employeeNo derives the employee number from the profile identifier sequence.
func employeeNo(profileID string) string {
	frag := profileID[strings.LastIndexByte(profileID, '-')+1:]
	if len(frag) > 8 {
		frag = frag[:8]
	}
	return "EMP-" + strings.ToUpper(frag)
}

// matriculation builds a globally-unique matriculation number; the unique
// index on the column is the authoritative guard.
func matriculation(academicYear string) string {
	intake := academicYear[:4]
	return fmt.Sprintf("MAT%s-%s", intake, core.RandomRef(6))
}
