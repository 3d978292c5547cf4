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
	"github.com/shule-edu/shule/core/space"
)

type spaceRepository struct {
	db *sqlx.DB
}

var _ space.Repository = (*spaceRepository)(nil) // interface compliance check

func NewSpaceRepository(db *sqlx.DB) *spaceRepository {
	return &spaceRepository{db: db}
}

func (repo spaceRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.db
}

type spaceRow struct {
	ID           string      `db:"id"`
	CohortID     string      `db:"cohort_id"`
	InstructorID string      `db:"instructor_id"`
	Subject      string      `db:"subject"`
	Description  null.String `db:"description"`
	AccessCode   string      `db:"access_code"`
	CreatedAt    time.Time   `db:"created_at"`
}

func (r spaceRow) unpack() space.Space {
	return space.Space{
		ID:           r.ID,
		CohortID:     r.CohortID,
		InstructorID: r.InstructorID,
		Subject:      r.Subject,
		Description:  r.Description.String,
		AccessCode:   r.AccessCode,
		CreatedAt:    r.CreatedAt,
	}
}

type enrolleeRow struct {
	StudentID string `db:"student_id"`
	Email     string `db:"email"`
	GivenName string `db:"given_name"`
	Surname   string `db:"surname"`
}

type studentAssignmentRow struct {
	ID          string    `db:"id"`
	StudentID   string    `db:"student_id"`
	WorkID      string    `db:"work_id"`
	AssignedAt  time.Time `db:"assigned_at"`
	Status      string    `db:"status"`
	SpaceID     string    `db:"space_id"`
	Title       string    `db:"title"`
	Description string    `db:"work_description"`
	Kind        string    `db:"kind"`
	DueAt       time.Time `db:"due_at"`
	MaxGrade    float64   `db:"max_grade"`
	CreatedAt   time.Time `db:"work_created_at"`
	Subject     string    `db:"subject"`
	Instructor  string    `db:"instructor"`
}

func (r studentAssignmentRow) unpack() space.StudentAssignment {
	return space.StudentAssignment{
		Assignment: space.Assignment{
			ID:         r.ID,
			StudentID:  r.StudentID,
			WorkID:     r.WorkID,
			AssignedAt: r.AssignedAt,
			Status:     space.AssignmentStatus(r.Status),
		},
		Work: space.Work{
			ID:          r.WorkID,
			SpaceID:     r.SpaceID,
			Title:       r.Title,
			Description: r.Description,
			Kind:        space.WorkKind(r.Kind),
			DueAt:       r.DueAt,
			MaxGrade:    r.MaxGrade,
			CreatedAt:   r.CreatedAt,
		},
		Subject:    r.Subject,
		Instructor: r.Instructor,
	}
}

func (repo spaceRepository) CreateSpace(ctx context.Context, sp space.Space, exec ...core.DBExecutor) (space.Space, error) {
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO space (id, cohort_id, instructor_id, subject, description, access_code, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		sp.ID, sp.CohortID, sp.InstructorID, sp.Subject,
		null.NewString(sp.Description, sp.Description != ""), sp.AccessCode, sp.CreatedAt.UTC(),
	)
	if err != nil {
		return space.Space{}, errors.Wrap(err, "inserting space")
	}
	return sp, nil
}

func (repo spaceRepository) GetSpaceByID(ctx context.Context, id string, exec ...core.DBExecutor) (space.Space, error) {
	var row spaceRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM space WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return space.Space{}, space.ErrSpaceNotFound
		}
		return space.Space{}, errors.Wrap(err, "getting space by id")
	}
	return row.unpack(), nil
}

func (repo spaceRepository) QuerySpacesByInstructor(ctx context.Context, instructorID string, exec ...core.DBExecutor) ([]space.Space, error) {
	ordering := core.OrderByClause(core.DBOrdering{Field: "created_at"}) // newest first
	var rows []spaceRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM space WHERE instructor_id = $1 `+ordering, instructorID)
	if err != nil {
		return nil, errors.Wrap(err, "querying spaces by instructor")
	}
	spaces := make([]space.Space, 0, len(rows))
	for _, r := range rows {
		spaces = append(spaces, r.unpack())
	}
	return spaces, nil
}

func (repo spaceRepository) InstructorExists(ctx context.Context, instructorID string, exec ...core.DBExecutor) (bool, error) {
	var exists bool
	err := repo.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM instructor_profile WHERE id = $1)`, instructorID)
	if err != nil {
		return false, errors.Wrap(err, "checking instructor")
	}
	return exists, nil
}

// QueryEnrollees lists the active students of a cohort with a live account,
// optionally narrowed to a selection of profile IDs.
func (repo spaceRepository) QueryEnrollees(ctx context.Context, cohortID string, studentIDs []string, exec ...core.DBExecutor) ([]space.Enrollee, error) {
	query := `SELECT sp.id AS student_id, a.email, a.given_name, a.surname
		FROM student_profile sp
		JOIN account a ON a.id = sp.account_id
		WHERE sp.cohort_id = ? AND sp.status = ? AND a.is_active`
	args := []interface{}{cohortID, account.StudentActive}
	if len(studentIDs) > 0 {
		query += ` AND sp.id IN (?)`
		args = append(args, studentIDs)
	}
	query += ` ORDER BY a.surname, a.given_name`

	query, inArgs, err := sqlx.In(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "binding enrollee query")
	}

	var rows []enrolleeRow
	if err = repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), inArgs...); err != nil {
		return nil, errors.Wrap(err, "querying enrollees")
	}
	enrollees := make([]space.Enrollee, 0, len(rows))
	for _, r := range rows {
		enrollees = append(enrollees, space.Enrollee{
			StudentID: r.StudentID,
			Email:     r.Email,
			GivenName: r.GivenName,
			Surname:   r.Surname,
		})
	}
	return enrollees, nil
}

func (repo spaceRepository) CreateWork(ctx context.Context, w space.Work, exec ...core.DBExecutor) (space.Work, error) {
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO work (id, space_id, title, description, kind, due_at, max_grade, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		w.ID, w.SpaceID, w.Title, w.Description, w.Kind, w.DueAt.UTC(), w.MaxGrade, w.CreatedAt.UTC(),
	)
	if err != nil {
		return space.Work{}, errors.Wrap(err, "inserting work")
	}
	return w, nil
}

func (repo spaceRepository) CreateAssignment(ctx context.Context, a space.Assignment, exec ...core.DBExecutor) (space.Assignment, error) {
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO assignment (id, student_id, work_id, assigned_at, status)
		 VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.StudentID, a.WorkID, a.AssignedAt.UTC(), a.Status,
	)
	if err != nil {
		return space.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return a, nil
}

func (repo spaceRepository) QueryAssignmentsByStudent(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]space.StudentAssignment, error) {
	ordering := core.OrderByClause(core.DBOrdering{Field: "w.due_at", Ascending: true})
	var rows []studentAssignmentRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT ag.id, ag.student_id, ag.work_id, ag.assigned_at, ag.status,
			w.space_id, w.title, w.description AS work_description, w.kind, w.due_at, w.max_grade,
			w.created_at AS work_created_at,
			s.subject, a.given_name || ' ' || a.surname AS instructor
		 FROM assignment ag
		 JOIN work w ON w.id = ag.work_id
		 JOIN space s ON s.id = w.space_id
		 JOIN instructor_profile ip ON ip.id = s.instructor_id
		 JOIN account a ON a.id = ip.account_id
		 WHERE ag.student_id = $1 `+ordering, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying student assignments")
	}
	assignments := make([]space.StudentAssignment, 0, len(rows))
	for _, r := range rows {
		assignments = append(assignments, r.unpack())
	}
	return assignments, nil
}
