package space

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/pkg/errors"

	"github.com/shule-edu/shule/core"
	"github.com/shule-edu/shule/core/academic"
)

var (
	// errors
	ErrSpaceNotFound      = errors.New("pedagogical space not found")
	ErrInstructorNotFound = errors.New("instructor not found")

	nowFunc = time.Now // mockable
)

const defaultMaxGrade = 20.0

var (
	workKindTag  = "workkind"
	workKindText = "invalid work kind"
)

// InitValidators registers the space validators. Call once at app init.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(workKindTag, func(fl validator.FieldLevel) bool {
		return WorkKind(fl.Field().String()).Valid()
	})
	core.RegisterCustomTranslation(validate, translator, workKindTag, workKindText)
}

type (
	Repository interface {
		CreateSpace(ctx context.Context, sp Space, exec ...core.DBExecutor) (Space, error)
		GetSpaceByID(ctx context.Context, id string, exec ...core.DBExecutor) (Space, error)
		QuerySpacesByInstructor(ctx context.Context, instructorID string, exec ...core.DBExecutor) ([]Space, error)
		InstructorExists(ctx context.Context, instructorID string, exec ...core.DBExecutor) (bool, error)
		QueryEnrollees(ctx context.Context, cohortID string, studentIDs []string, exec ...core.DBExecutor) ([]Enrollee, error)
		CreateWork(ctx context.Context, w Work, exec ...core.DBExecutor) (Work, error)
		CreateAssignment(ctx context.Context, a Assignment, exec ...core.DBExecutor) (Assignment, error)
		QueryAssignmentsByStudent(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]StudentAssignment, error)
	}

	// CohortGetter is the slice of the academic service this package needs.
	CohortGetter interface {
		GetCohort(ctx context.Context, id string) (academic.Cohort, error)
	}

	// Notifier delivers work-assigned emails out-of-band; delivery is reported
	// as a boolean, never as an error.
	Notifier interface {
		SendWorkAssigned(to mail.Address, givenName, title, subject, instructor string, dueAt time.Time, description string) bool
	}

	ServiceInterface interface {
		CreateSpace(ctx context.Context, ns NewSpace) (Space, error)
		CreateWork(ctx context.Context, nw NewWork, instructorID, instructorName string) (WorkResult, error)
		QueryInstructorSpaces(ctx context.Context, instructorID string) ([]Space, error)
		QueryStudentAssignments(ctx context.Context, studentID string) ([]StudentAssignment, error)
	}

	Service struct {
		db       core.DB
		repo     Repository
		cohorts  CohortGetter
		notifier Notifier
		logger   core.Logger
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(db core.DB, repo Repository, cohorts CohortGetter, notifier Notifier, logger core.Logger) *Service {
	return &Service{
		db:       db,
		repo:     repo,
		cohorts:  cohorts,
		notifier: notifier,
		logger:   logger,
	}
}

// CreateSpace creates a pedagogical space with a fresh access code after
// checking the cohort and instructor actually exist.
func (svc *Service) CreateSpace(ctx context.Context, ns NewSpace) (Space, error) {
	if _, err := svc.cohorts.GetCohort(ctx, ns.CohortID); err != nil {
		return Space{}, err
	}
	exists, err := svc.repo.InstructorExists(ctx, ns.InstructorID)
	if err != nil {
		return Space{}, pkgerrors.Wrap(err, "checking instructor")
	}
	if !exists {
		return Space{}, ErrInstructorNotFound
	}

	sp := Space{
		ID:           core.RandomID("SPC"),
		CohortID:     ns.CohortID,
		InstructorID: ns.InstructorID,
		Subject:      ns.Subject,
		Description:  ns.Description,
		AccessCode:   core.RandomAccessCode(),
		CreatedAt:    nowFunc().UTC(),
	}
	return svc.repo.CreateSpace(ctx, sp)
}

// CreateWork creates a work item in one of the instructor's own spaces and
// fans out one Assignment per targeted student in the same transaction.
// Notification emails go out after commit; delivery failures are counted and
// logged, never fatal.
func (svc *Service) CreateWork(ctx context.Context, nw NewWork, instructorID, instructorName string) (WorkResult, error) {
	sp, err := svc.repo.GetSpaceByID(ctx, nw.SpaceID)
	if err != nil {
		return WorkResult{}, err
	}
	// ownership is not disclosed: a foreign space reads as absent
	if sp.InstructorID != instructorID {
		return WorkResult{}, ErrSpaceNotFound
	}

	// explicit selections are restricted to the space's own cohort
	enrollees, err := svc.repo.QueryEnrollees(ctx, sp.CohortID, nw.StudentIDs)
	if err != nil {
		return WorkResult{}, pkgerrors.Wrap(err, "querying enrollees")
	}

	now := nowFunc().UTC()
	w := Work{
		ID:          core.RandomID("WRK"),
		SpaceID:     sp.ID,
		Title:       nw.Title,
		Description: nw.Description,
		Kind:        nw.Kind,
		DueAt:       nw.DueAt,
		MaxGrade:    nw.MaxGrade,
		CreatedAt:   now,
	}

	tx, err := svc.db.BeginTx(ctx, nil)
	if err != nil {
		return WorkResult{}, pkgerrors.Wrap(err, "beginning transaction")
	}
	if w, err = svc.repo.CreateWork(ctx, w, tx); err != nil {
		_ = tx.Rollback()
		return WorkResult{}, pkgerrors.Wrap(err, "inserting work")
	}
	for _, e := range enrollees {
		a := Assignment{
			ID:         core.RandomID("ASG"),
			StudentID:  e.StudentID,
			WorkID:     w.ID,
			AssignedAt: now,
			Status:     AssignmentAssigned,
		}
		if _, err = svc.repo.CreateAssignment(ctx, a, tx); err != nil {
			_ = tx.Rollback()
			return WorkResult{}, pkgerrors.Wrap(err, "inserting assignment")
		}
	}
	if err = tx.Commit(); err != nil {
		return WorkResult{}, pkgerrors.Wrap(err, "committing transaction")
	}

	var sent int
	for _, e := range enrollees {
		to := mail.Address{Name: e.GivenName + " " + e.Surname, Address: e.Email}
		if svc.notifier.SendWorkAssigned(to, e.GivenName, w.Title, sp.Subject, instructorName, w.DueAt, w.Description) {
			sent++
		} else {
			svc.logger.Warn(fmt.Sprintf("work-assigned email to %s not delivered", e.Email))
		}
	}

	return WorkResult{
		Work:            w,
		AssignmentCount: len(enrollees),
		EmailsSent:      sent,
	}, nil
}

func (svc *Service) QueryInstructorSpaces(ctx context.Context, instructorID string) ([]Space, error) {
	return svc.repo.QuerySpacesByInstructor(ctx, instructorID)
}

func (svc *Service) QueryStudentAssignments(ctx context.Context, studentID string) ([]StudentAssignment, error) {
	return svc.repo.QueryAssignmentsByStudent(ctx, studentID)
}
