package academic_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shule-edu/shule/core"
	"github.com/shule-edu/shule/core/academic"
	dummydb "github.com/shule-edu/shule/storage/database/dummy"
)

func setup(t *testing.T) *academic.Service {
	t.Helper()
	db, err := dummydb.Open()
	require.NoError(t, err)
	return academic.NewService(dummydb.NewAcademicRepository(db))
}

func TestService_EnsureDefaultProgram(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	prog, err := svc.EnsureDefaultProgram(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Software Engineering", prog.Name)
	assert.NotEmpty(t, prog.ID)

	again, err := svc.EnsureDefaultProgram(ctx)
	require.NoError(t, err)
	assert.Equal(t, prog.ID, again.ID)

	progs, err := svc.QueryPrograms(ctx)
	require.NoError(t, err)
	assert.Len(t, progs, 1)
}

func TestService_ResolveOrCreateCohort(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	id, err := svc.ResolveOrCreateCohort(ctx, "2024-2025")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	c, err := svc.GetCohort(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "2024-2025", c.AcademicYear)
	assert.Equal(t, "Promotion 2024-2025", c.Label)

	// same year resolves to the existing cohort
	again, err := svc.ResolveOrCreateCohort(ctx, "2024-2025")
	require.NoError(t, err)
	assert.Equal(t, id, again)

	other, err := svc.ResolveOrCreateCohort(ctx, "2025-2026")
	require.NoError(t, err)
	assert.NotEqual(t, id, other)

	cohorts, err := svc.QueryCohorts(ctx)
	require.NoError(t, err)
	assert.Len(t, cohorts, 2)
}

func TestService_ResolveOrCreateCohort_badYear(t *testing.T) {
	svc := setup(t)

	_, err := svc.ResolveOrCreateCohort(context.Background(), "2025-2024")
	require.Error(t, err)
	var vErr *core.ValidationError
	assert.True(t, errors.As(err, &vErr))
}

func TestService_GetCohort_notFound(t *testing.T) {
	svc := setup(t)

	_, err := svc.GetCohort(context.Background(), "COH-missing")
	assert.Equal(t, academic.ErrCohortNotFound, errors.Cause(err))
}
