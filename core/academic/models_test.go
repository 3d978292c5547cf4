package academic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAcademicYear(t *testing.T) {
	tests := []struct {
		year          string
		first, second int
		wantErr       bool
	}{
		{year: "2024-2025", first: 2024, second: 2025},
		{year: "1999-2000", first: 1999, second: 2000},
		{year: "2025-2024", wantErr: true},
		{year: "2024-2026", wantErr: true},
		{year: "2024-2024", wantErr: true},
		{year: "2024/2025", wantErr: true},
		{year: "24-25", wantErr: true},
		{year: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.year, func(t *testing.T) {
			first, second, err := ParseAcademicYear(tt.year)
			if tt.wantErr {
				assert.Equal(t, ErrBadAcademicYear, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.first, first)
			assert.Equal(t, tt.second, second)
		})
	}
}

func TestNewCohort(t *testing.T) {
	c, err := NewCohort("PRG-1", "2024-2025")
	require.NoError(t, err)
	assert.Equal(t, "PRG-1", c.ProgramID)
	assert.Equal(t, "2024-2025", c.AcademicYear)
	assert.Equal(t, "Promotion 2024-2025", c.Label)
	assert.Equal(t, time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC), c.StartDate)
	assert.Equal(t, time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC), c.EndDate)
	assert.Empty(t, c.ID)

	_, err = NewCohort("PRG-1", "2025-2024")
	assert.Equal(t, ErrBadAcademicYear, err)
}

func TestService_ValidYears(t *testing.T) {
	defer func() { nowFunc = time.Now }()

	svc := NewService(nil)

	// mid-year: the intake started the previous calendar year
	nowFunc = func() time.Time { return time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC) }
	assert.Equal(t, []string{"2023-2024", "2024-2025", "2025-2026", "2026-2027"}, svc.ValidYears())

	// after August the intake year is the current one
	nowFunc = func() time.Time { return time.Date(2025, time.September, 10, 0, 0, 0, 0, time.UTC) }
	assert.Equal(t, []string{"2024-2025", "2025-2026", "2026-2027", "2027-2028"}, svc.ValidYears())
}
