package account

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/shule-edu/shule/core"
)

// Role is the closed set of principal roles. Every permission check switches
// exhaustively on it; there is no free-form role string anywhere.
type Role string

const (
	RoleDirector   Role = "DIRECTOR"
	RoleInstructor Role = "INSTRUCTOR"
	RoleStudent    Role = "STUDENT"
)

var Roles = []Role{RoleDirector, RoleInstructor, RoleStudent}

func (r Role) Valid() bool {
	switch r {
	case RoleDirector, RoleInstructor, RoleStudent:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// StudentStatus is the enrollment status of a student profile.
type StudentStatus string

const (
	StudentActive    StudentStatus = "ACTIVE"
	StudentSuspended StudentStatus = "SUSPENDED"
	StudentExcluded  StudentStatus = "EXCLUDED"
)

type Account struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	Surname           string    `json:"surname"`
	GivenName         string    `json:"given_name"`
	Role              Role      `json:"role"`
	IsActive          bool      `json:"is_active"`
	PasswordTemporary bool      `json:"password_temporary"`
	PasswordHash      []byte    `json:"-"`
	CreatedAt         time.Time `json:"created_at"` // UTC

	// Leftovers of a former activation-email flow; the schema keeps them,
	// provisioning never writes them.
	ActivationToken null.String `json:"-"`
	TokenExpiresAt  null.Time   `json:"-"`
}

func (a *Account) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

func (a *Account) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pwd))
}

func (a Account) DisplayName() string {
	return a.GivenName + " " + a.Surname
}

func (a Account) IsDirector() bool   { return a.Role == RoleDirector }
func (a Account) IsInstructor() bool { return a.Role == RoleInstructor }
func (a Account) IsStudent() bool    { return a.Role == RoleStudent }

// InstructorProfile is the role-profile row created atomically with an
// Instructor Account.
type InstructorProfile struct {
	ID         string `json:"id"`
	AccountID  string `json:"account_id"`
	EmployeeNo string `json:"employee_no"`
	Specialty  string `json:"specialty"`
}

// StudentProfile is the role-profile row created atomically with a Student
// Account.
type StudentProfile struct {
	ID            string        `json:"id"`
	AccountID     string        `json:"account_id"`
	Matriculation string        `json:"matriculation"`
	CohortID      string        `json:"cohort_id"`
	EnrolledAt    time.Time     `json:"enrolled_at"`
	Status        StudentStatus `json:"status"`
}

// Instructor is an InstructorProfile joined with its Account, for listings.
type Instructor struct {
	InstructorProfile
	Surname   string `json:"surname"`
	GivenName string `json:"given_name"`
	Email     string `json:"email"`
}

// LoginAttempt is one immutable ledger entry. Entries are only ever appended
// and queried by time window; nothing mutates or prunes them.
type LoginAttempt struct {
	Email       string    `json:"email"`
	Succeeded   bool      `json:"succeeded"`
	AttemptedAt time.Time `json:"attempted_at"` // UTC
}

// NewInstructor contains information needed to provision an Instructor.
type NewInstructor struct {
	Email     string `json:"email" validate:"required,email"`
	Surname   string `json:"surname" validate:"required"`
	GivenName string `json:"given_name" validate:"required"`
	Specialty string `json:"specialty"`
}

func (ni *NewInstructor) Validate(ctx context.Context, validate *validator.Validate, svc ServiceInterface) error {
	ni.Email = core.CleanString(ni.Email, true /* lower */)
	ni.Surname = core.CleanString(ni.Surname)
	ni.GivenName = core.CleanString(ni.GivenName)
	ni.Specialty = core.CleanString(ni.Specialty)

	if err := validate.Struct(ni); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(ctx, ni.Email)
}

// NewStudent contains information needed to provision a Student.
// AcademicYear selects (or creates) the target cohort.
type NewStudent struct {
	Email        string `json:"email" validate:"required,email"`
	Surname      string `json:"surname" validate:"required"`
	GivenName    string `json:"given_name" validate:"required"`
	AcademicYear string `json:"academic_year" validate:"required,academicyear"`
}

func (ns *NewStudent) Validate(ctx context.Context, validate *validator.Validate, svc ServiceInterface) error {
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Surname = core.CleanString(ns.Surname)
	ns.GivenName = core.CleanString(ns.GivenName)
	ns.AcademicYear = core.CleanString(ns.AcademicYear)

	if err := validate.Struct(ns); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(ctx, ns.Email)
}

// ChangePassword defines the first-login (and any later) password change.
// A successful change clears Account.PasswordTemporary.
type ChangePassword struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (cp *ChangePassword) Validate(validate *validator.Validate) error {
	return validate.Struct(cp)
}

// CreateResult is what provisioning reports back. EmailSent is false when the
// credential email could not be delivered; the account is valid regardless.
type CreateResult struct {
	Account       Account `json:"account"`
	EmployeeNo    string  `json:"employee_no,omitempty"`
	Matriculation string  `json:"matriculation,omitempty"`
	CohortID      string  `json:"cohort_id,omitempty"`
	EmailSent     bool    `json:"email_sent"`
}
