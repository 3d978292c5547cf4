package dummydb

import (
	"context"
	"sort"

	"github.com/shule-edu/shule/core"
	"github.com/shule-edu/shule/core/academic"
)

type academicRepository struct {
	db *academicTables
}

var _ academic.Repository = (*academicRepository)(nil) // interface compliance check

func NewAcademicRepository(db *DB) *academicRepository {
	return &academicRepository{db: db.academic}
}

func (repo *academicRepository) GetProgramByName(ctx context.Context, name string, exec ...core.DBExecutor) (academic.Program, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, prog := range repo.db.programs {
		if prog.Name == name {
			return *prog, nil
		}
	}
	return academic.Program{}, academic.ErrProgramNotFound
}

func (repo *academicRepository) CreateProgram(ctx context.Context, prog academic.Program, exec ...core.DBExecutor) (academic.Program, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.programs {
		if existing.Name == prog.Name {
			return academic.Program{}, academic.ErrProgramExists
		}
	}
	repo.db.programs[prog.ID] = &prog
	return prog, nil
}

func (repo *academicRepository) QueryPrograms(ctx context.Context, exec ...core.DBExecutor) ([]academic.Program, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	programs := make([]academic.Program, 0, len(repo.db.programs))
	for _, prog := range repo.db.programs {
		programs = append(programs, *prog)
	}
	sort.Slice(programs, func(i, j int) bool { return programs[i].Name < programs[j].Name })
	return programs, nil
}

func (repo *academicRepository) GetCohortByID(ctx context.Context, id string, exec ...core.DBExecutor) (academic.Cohort, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.cohorts[id]; ok {
		return *c, nil
	}
	return academic.Cohort{}, academic.ErrCohortNotFound
}

func (repo *academicRepository) GetCohortByYear(ctx context.Context, programID, year string, exec ...core.DBExecutor) (academic.Cohort, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, c := range repo.db.cohorts {
		if c.ProgramID == programID && c.AcademicYear == year {
			return *c, nil
		}
	}
	return academic.Cohort{}, academic.ErrCohortNotFound
}

func (repo *academicRepository) CreateCohort(ctx context.Context, c academic.Cohort, exec ...core.DBExecutor) (academic.Cohort, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.cohorts {
		if existing.ProgramID == c.ProgramID && existing.AcademicYear == c.AcademicYear {
			return academic.Cohort{}, academic.ErrCohortExists
		}
	}
	repo.db.cohorts[c.ID] = &c
	return c, nil
}

func (repo *academicRepository) QueryCohorts(ctx context.Context, exec ...core.DBExecutor) ([]academic.Cohort, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	cohorts := make([]academic.Cohort, 0, len(repo.db.cohorts))
	for _, c := range repo.db.cohorts {
		cohorts = append(cohorts, *c)
	}
	sort.Slice(cohorts, func(i, j int) bool { return cohorts[i].AcademicYear > cohorts[j].AcademicYear })
	return cohorts, nil
}
