package academic

import (
	"errors"
	"regexp"
	"strconv"
	"time"

	"github.com/volatiletech/null/v8"
)

var (
	ErrBadAcademicYear = errors.New("invalid academic year; use the format YYYY-YYYY (eg. 2024-2025)")

	academicYearRegex = regexp.MustCompile(`^(\d{4})-(\d{4})$`)
)

// Program is a formation; cohorts hang off exactly one program.
type Program struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	StartDate   time.Time `json:"start_date"`
	EndDate     null.Time `json:"end_date,omitempty"`
}

// Cohort is a promotion: the group of students admitted to a program in one
// academic year. One cohort per (program, academic year).
type Cohort struct {
	ID           string    `json:"id"`
	ProgramID    string    `json:"program_id"`
	AcademicYear string    `json:"academic_year"`
	Label        string    `json:"label"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
}

// ParseAcademicYear validates a "YYYY-YYYY" academic-year string where the
// second year is exactly one greater than the first, and returns both years.
func ParseAcademicYear(year string) (first, second int, err error) {
	m := academicYearRegex.FindStringSubmatch(year)
	if m == nil {
		return 0, 0, ErrBadAcademicYear
	}
	first, _ = strconv.Atoi(m[1])
	second, _ = strconv.Atoi(m[2])
	if second != first+1 {
		return 0, 0, ErrBadAcademicYear
	}
	return first, second, nil
}

// NewCohort derives the cohort for an academic year deterministically:
// label "Promotion <year>", running 1 Sep of the first year through 30 Jun of
// the second. The identifier is filled in by the caller.
func NewCohort(programID, year string) (Cohort, error) {
	first, second, err := ParseAcademicYear(year)
	if err != nil {
		return Cohort{}, err
	}
	return Cohort{
		ProgramID:    programID,
		AcademicYear: year,
		Label:        "Promotion " + year,
		StartDate:    time.Date(first, time.September, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(second, time.June, 30, 0, 0, 0, 0, time.UTC),
	}, nil
}
