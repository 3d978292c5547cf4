package space

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/shule-edu/shule/core"
)

// WorkKind tells whether a work item is done alone or in groups.
type WorkKind string

const (
	WorkIndividual WorkKind = "INDIVIDUAL"
	WorkGroup      WorkKind = "GROUP"
)

func (k WorkKind) Valid() bool {
	return k == WorkIndividual || k == WorkGroup
}

// AssignmentStatus tracks one student's progress on one work item.
type AssignmentStatus string

const (
	AssignmentAssigned   AssignmentStatus = "ASSIGNED"
	AssignmentInProgress AssignmentStatus = "IN_PROGRESS"
	AssignmentSubmitted  AssignmentStatus = "SUBMITTED"
	AssignmentGraded     AssignmentStatus = "GRADED"
)

// Space is a pedagogical space: one subject taught by one instructor to one
// cohort. AccessCode is a short shareable code students use to find it.
type Space struct {
	ID           string    `json:"id"`
	CohortID     string    `json:"cohort_id"`
	InstructorID string    `json:"instructor_id"`
	Subject      string    `json:"subject"`
	Description  string    `json:"description,omitempty"`
	AccessCode   string    `json:"access_code"`
	CreatedAt    time.Time `json:"created_at"` // UTC
}

type Work struct {
	ID          string    `json:"id"`
	SpaceID     string    `json:"space_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Kind        WorkKind  `json:"kind"`
	DueAt       time.Time `json:"due_at"`
	MaxGrade    float64   `json:"max_grade"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

type Assignment struct {
	ID         string           `json:"id"`
	StudentID  string           `json:"student_id"`
	WorkID     string           `json:"work_id"`
	AssignedAt time.Time        `json:"assigned_at"` // UTC
	Status     AssignmentStatus `json:"status"`
}

// Enrollee is the slice of a student the fan-out needs: identity plus the
// notification address.
type Enrollee struct {
	StudentID string
	Email     string
	GivenName string
	Surname   string
}

// StudentAssignment is an Assignment joined with its work and space, for the
// student portal.
type StudentAssignment struct {
	Assignment
	Work       Work   `json:"work"`
	Subject    string `json:"subject"`
	Instructor string `json:"instructor"`
}

// NewSpace contains information needed to create a pedagogical space.
type NewSpace struct {
	CohortID     string `json:"cohort_id" validate:"required"`
	InstructorID string `json:"instructor_id" validate:"required"`
	Subject      string `json:"subject" validate:"required"`
	Description  string `json:"description"`
}

func (ns *NewSpace) Validate(validate *validator.Validate) error {
	ns.Subject = core.CleanString(ns.Subject)
	ns.Description = core.CleanString(ns.Description)
	return validate.Struct(ns)
}

// NewWork contains information needed to create a work item. StudentIDs
// restricts the fan-out to a selection of the space's cohort; empty targets
// the whole cohort.
type NewWork struct {
	SpaceID     string    `json:"space_id" validate:"required"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description" validate:"required"`
	Kind        WorkKind  `json:"kind" validate:"required,workkind"`
	DueAt       time.Time `json:"due_at" validate:"required"`
	MaxGrade    float64   `json:"max_grade"`
	StudentIDs  []string  `json:"student_ids"`
}

func (nw *NewWork) Validate(_ context.Context, validate *validator.Validate) error {
	nw.Title = core.CleanString(nw.Title)
	nw.Description = core.CleanString(nw.Description)
	if nw.MaxGrade == 0 {
		nw.MaxGrade = defaultMaxGrade
	}
	return validate.Struct(nw)
}

// WorkResult reports a work creation: how many assignments fanned out and how
// many notification emails were actually delivered.
type WorkResult struct {
	Work            Work `json:"work"`
	AssignmentCount int  `json:"assignment_count"`
	EmailsSent      int  `json:"emails_sent"`
}
