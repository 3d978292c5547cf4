package dummydb

import (
	"context"
	"sort"

	"github.com/shule-edu/shule/core"
	"github.com/shule-edu/shule/core/account"
	"github.com/shule-edu/shule/core/space"
)

// spaceRepository reads the account tables too: enrollee fan-out and
// instructor checks cross into them, like the SQL joins do.
type spaceRepository struct {
	db       *spaceTables
	accounts *accountTables
}

var _ space.Repository = (*spaceRepository)(nil) // interface compliance check

func NewSpaceRepository(db *DB) *spaceRepository {
	return &spaceRepository{db: db.space, accounts: db.account}
}

func (repo *spaceRepository) CreateSpace(ctx context.Context, sp space.Space, exec ...core.DBExecutor) (space.Space, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.spaces[sp.ID] = &sp
	return sp, nil
}

func (repo *spaceRepository) GetSpaceByID(ctx context.Context, id string, exec ...core.DBExecutor) (space.Space, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sp, ok := repo.db.spaces[id]; ok {
		return *sp, nil
	}
	return space.Space{}, space.ErrSpaceNotFound
}

func (repo *spaceRepository) QuerySpacesByInstructor(ctx context.Context, instructorID string, exec ...core.DBExecutor) ([]space.Space, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var spaces []space.Space
	for _, sp := range repo.db.spaces {
		if sp.InstructorID == instructorID {
			spaces = append(spaces, *sp)
		}
	}
	sort.Slice(spaces, func(i, j int) bool { return spaces[i].CreatedAt.After(spaces[j].CreatedAt) })
	return spaces, nil
}

func (repo *spaceRepository) InstructorExists(ctx context.Context, instructorID string, exec ...core.DBExecutor) (bool, error) {
	repo.accounts.RLock()
	defer repo.accounts.RUnlock()

	_, ok := repo.accounts.instructors[instructorID]
	return ok, nil
}

func (repo *spaceRepository) QueryEnrollees(ctx context.Context, cohortID string, studentIDs []string, exec ...core.DBExecutor) ([]space.Enrollee, error) {
	repo.accounts.RLock()
	defer repo.accounts.RUnlock()

	selected := make(map[string]bool, len(studentIDs))
	for _, id := range studentIDs {
		selected[id] = true
	}

	var enrollees []space.Enrollee
	for _, prof := range repo.accounts.students {
		if prof.CohortID != cohortID || prof.Status != account.StudentActive {
			continue
		}
		if len(selected) > 0 && !selected[prof.ID] {
			continue
		}
		acct, ok := repo.accounts.accounts[prof.AccountID]
		if !ok || !acct.IsActive {
			continue
		}
		enrollees = append(enrollees, space.Enrollee{
			StudentID: prof.ID,
			Email:     acct.Email,
			GivenName: acct.GivenName,
			Surname:   acct.Surname,
		})
	}
	sort.Slice(enrollees, func(i, j int) bool {
		if enrollees[i].Surname != enrollees[j].Surname {
			return enrollees[i].Surname < enrollees[j].Surname
		}
		return enrollees[i].GivenName < enrollees[j].GivenName
	})
	return enrollees, nil
}

func (repo *spaceRepository) CreateWork(ctx context.Context, w space.Work, exec ...core.DBExecutor) (space.Work, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.works[w.ID] = &w
	return w, nil
}

func (repo *spaceRepository) CreateAssignment(ctx context.Context, a space.Assignment, exec ...core.DBExecutor) (space.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.assignments[a.ID] = &a
	return a, nil
}

func (repo *spaceRepository) QueryAssignmentsByStudent(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]space.StudentAssignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	repo.accounts.RLock()
	defer repo.accounts.RUnlock()

	var assignments []space.StudentAssignment
	for _, a := range repo.db.assignments {
		if a.StudentID != studentID {
			continue
		}
		w, ok := repo.db.works[a.WorkID]
		if !ok {
			continue
		}
		sp, ok := repo.db.spaces[w.SpaceID]
		if !ok {
			continue
		}
		sa := space.StudentAssignment{
			Assignment: *a,
			Work:       *w,
			Subject:    sp.Subject,
		}
		if prof, ok := repo.accounts.instructors[sp.InstructorID]; ok {
			if acct, ok := repo.accounts.accounts[prof.AccountID]; ok {
				sa.Instructor = acct.DisplayName()
			}
		}
		assignments = append(assignments, sa)
	}
	sort.Slice(assignments, func(i, j int) bool {
		return assignments[i].Work.DueAt.Before(assignments[j].Work.DueAt)
	})
	return assignments, nil
}
