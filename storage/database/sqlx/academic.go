package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/shule-edu/shule/core"
	"github.com/shule-edu/shule/core/academic"
)

type academicRepository struct {
	db *sqlx.DB
}

var _ academic.Repository = (*academicRepository)(nil) // interface compliance check

func NewAcademicRepository(db *sqlx.DB) *academicRepository {
	return &academicRepository{db: db}
}

func (repo academicRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.db
}

type programRow struct {
	ID          string      `db:"id"`
	Name        string      `db:"name"`
	Description null.String `db:"description"`
	StartDate   time.Time   `db:"start_date"`
	EndDate     null.Time   `db:"end_date"`
}

func (r programRow) unpack() academic.Program {
	return academic.Program{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description.String,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
	}
}

type cohortRow struct {
	ID           string    `db:"id"`
	ProgramID    string    `db:"program_id"`
	AcademicYear string    `db:"academic_year"`
	Label        string    `db:"label"`
	StartDate    time.Time `db:"start_date"`
	EndDate      time.Time `db:"end_date"`
}

func (r cohortRow) unpack() academic.Cohort {
	return academic.Cohort{
		ID:           r.ID,
		ProgramID:    r.ProgramID,
		AcademicYear: r.AcademicYear,
		Label:        r.Label,
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
	}
}

func (repo academicRepository) trapConflictErr(err error, msg string) error {
	switch constraint, ok := uniqueViolation(err); {
	case ok && constraint == "uq_program_name":
		return academic.ErrProgramExists
	case ok && constraint == "uq_cohort_program_year":
		return academic.ErrCohortExists
	}
	return errors.Wrap(err, msg)
}

func (repo academicRepository) GetProgramByName(ctx context.Context, name string, exec ...core.DBExecutor) (academic.Program, error) {
	var row programRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM program WHERE name = $1`, name)
	if err != nil {
		if err == sql.ErrNoRows {
			return academic.Program{}, academic.ErrProgramNotFound
		}
		return academic.Program{}, errors.Wrap(err, "getting program by name")
	}
	return row.unpack(), nil
}

func (repo academicRepository) CreateProgram(ctx context.Context, prog academic.Program, exec ...core.DBExecutor) (academic.Program, error) {
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO program (id, name, description, start_date, end_date)
		 VALUES ($1, $2, $3, $4, $5)`,
		prog.ID, prog.Name, null.NewString(prog.Description, prog.Description != ""),
		prog.StartDate.UTC(), prog.EndDate,
	)
	if err != nil {
		return academic.Program{}, repo.trapConflictErr(err, "inserting program")
	}
	return prog, nil
}

func (repo academicRepository) QueryPrograms(ctx context.Context, exec ...core.DBExecutor) ([]academic.Program, error) {
	var rows []programRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM program ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "querying programs")
	}
	programs := make([]academic.Program, 0, len(rows))
	for _, r := range rows {
		programs = append(programs, r.unpack())
	}
	return programs, nil
}

func (repo academicRepository) GetCohortByID(ctx context.Context, id string, exec ...core.DBExecutor) (academic.Cohort, error) {
	var row cohortRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM cohort WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return academic.Cohort{}, academic.ErrCohortNotFound
		}
		return academic.Cohort{}, errors.Wrap(err, "getting cohort by id")
	}
	return row.unpack(), nil
}

func (repo academicRepository) GetCohortByYear(ctx context.Context, programID, year string, exec ...core.DBExecutor) (academic.Cohort, error) {
	var row cohortRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT * FROM cohort WHERE program_id = $1 AND academic_year = $2`, programID, year)
	if err != nil {
		if err == sql.ErrNoRows {
			return academic.Cohort{}, academic.ErrCohortNotFound
		}
		return academic.Cohort{}, errors.Wrap(err, "getting cohort by year")
	}
	return row.unpack(), nil
}

func (repo academicRepository) CreateCohort(ctx context.Context, c academic.Cohort, exec ...core.DBExecutor) (academic.Cohort, error) {
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO cohort (id, program_id, academic_year, label, start_date, end_date)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.ProgramID, c.AcademicYear, c.Label, c.StartDate.UTC(), c.EndDate.UTC(),
	)
	if err != nil {
		return academic.Cohort{}, repo.trapConflictErr(err, "inserting cohort")
	}
	return c, nil
}

func (repo academicRepository) QueryCohorts(ctx context.Context, exec ...core.DBExecutor) ([]academic.Cohort, error) {
	var rows []cohortRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM cohort ORDER BY academic_year DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "querying cohorts")
	}
	cohorts := make([]academic.Cohort, 0, len(rows))
	for _, r := range rows {
		cohorts = append(cohorts, r.unpack())
	}
	return cohorts, nil
}
