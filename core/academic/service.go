package academic

import (
	"context"
	"errors"
	"fmt"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/shule-edu/shule/core"
)

var (
	// errors
	ErrProgramNotFound = errors.New("program not found")
	ErrProgramExists   = errors.New("a program with this name already exists")
	ErrCohortNotFound  = errors.New("cohort not found")
	ErrCohortExists    = errors.New("a cohort for this academic year already exists")

	nowFunc = time.Now // mockable
)

// defaultProgramName is the program cohorts are attached to until program
// management grows a surface of its own.
const defaultProgramName = "Software Engineering"

type (
	Repository interface {
		GetProgramByName(ctx context.Context, name string, exec ...core.DBExecutor) (Program, error)
		CreateProgram(ctx context.Context, prog Program, exec ...core.DBExecutor) (Program, error)
		QueryPrograms(ctx context.Context, exec ...core.DBExecutor) ([]Program, error)
		GetCohortByID(ctx context.Context, id string, exec ...core.DBExecutor) (Cohort, error)
		GetCohortByYear(ctx context.Context, programID, year string, exec ...core.DBExecutor) (Cohort, error)
		CreateCohort(ctx context.Context, c Cohort, exec ...core.DBExecutor) (Cohort, error)
		QueryCohorts(ctx context.Context, exec ...core.DBExecutor) ([]Cohort, error)
	}

	ServiceInterface interface {
		EnsureDefaultProgram(ctx context.Context) (Program, error)
		ResolveOrCreateCohort(ctx context.Context, academicYear string) (string, error)
		GetCohort(ctx context.Context, id string) (Cohort, error)
		QueryCohorts(ctx context.Context) ([]Cohort, error)
		QueryPrograms(ctx context.Context) ([]Program, error)
		ValidYears() []string
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// EnsureDefaultProgram returns the default program, creating it on first
// call. Idempotent; the unique index on the program name settles races.
func (svc *Service) EnsureDefaultProgram(ctx context.Context) (Program, error) {
	prog, err := svc.repo.GetProgramByName(ctx, defaultProgramName)
	if err == nil {
		return prog, nil
	}
	if err != ErrProgramNotFound {
		return Program{}, pkgerrors.Wrap(err, "finding default program")
	}

	now := nowFunc().UTC()
	prog = Program{
		ID:        core.RandomID("PRG"),
		Name:      defaultProgramName,
		StartDate: time.Date(now.Year(), time.September, 1, 0, 0, 0, 0, time.UTC),
	}
	prog, err = svc.repo.CreateProgram(ctx, prog)
	if err != nil {
		// lost a bootstrap race; the unique index on the name holds
		if err == ErrProgramExists {
			return svc.repo.GetProgramByName(ctx, defaultProgramName)
		}
		return Program{}, pkgerrors.Wrap(err, "creating default program")
	}
	return prog, nil
}

// ResolveOrCreateCohort returns the cohort ID for an academic year, deriving
// and creating the cohort on first use. One cohort per year string; the
// unique (program, year) index is the authoritative guard, so a lost race
// falls back to the winner's row.
func (svc *Service) ResolveOrCreateCohort(ctx context.Context, academicYear string) (string, error) {
	prog, err := svc.EnsureDefaultProgram(ctx)
	if err != nil {
		return "", err
	}

	c, err := svc.repo.GetCohortByYear(ctx, prog.ID, academicYear)
	if err == nil {
		return c.ID, nil
	}
	if err != ErrCohortNotFound {
		return "", pkgerrors.Wrap(err, "finding cohort")
	}

	c, err = NewCohort(prog.ID, academicYear)
	if err != nil {
		return "", core.NewValidationError(err, core.FieldError{Field: "academic_year", Error: err.Error()})
	}
	c.ID = core.RandomID("COH")

	c, err = svc.repo.CreateCohort(ctx, c)
	if err != nil {
		if err == ErrCohortExists {
			if c, err = svc.repo.GetCohortByYear(ctx, prog.ID, academicYear); err == nil {
				return c.ID, nil
			}
		}
		return "", pkgerrors.Wrap(err, "creating cohort")
	}
	return c.ID, nil
}

func (svc *Service) GetCohort(ctx context.Context, id string) (Cohort, error) {
	return svc.repo.GetCohortByID(ctx, id)
}

func (svc *Service) QueryCohorts(ctx context.Context) ([]Cohort, error) {
	return svc.repo.QueryCohorts(ctx)
}

func (svc *Service) QueryPrograms(ctx context.Context) ([]Program, error) {
	return svc.repo.QueryPrograms(ctx)
}

// ValidYears lists the academic years currently selectable for student
// provisioning: the previous, current and next two intakes.
func (svc *Service) ValidYears() []string {
	now := nowFunc()
	start := now.Year()
	if now.Month() < time.August {
		start--
	}
	years := make([]string, 0, 4)
	for y := start - 1; y <= start+2; y++ {
		years = append(years, fmt.Sprintf("%d-%d", y, y+1))
	}
	return years
}
