package space

import (
	"context"
	"testing"
	"time"

	englocale "github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shule-edu/shule/core"
)

func newTestValidator(t *testing.T) *validator.Validate {
	t.Helper()
	en := englocale.New()
	translator, found := ut.New(en, en).GetTranslator("en")
	require.True(t, found)
	validate := validator.New()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate
}

func TestWorkKind_Valid(t *testing.T) {
	assert.True(t, WorkIndividual.Valid())
	assert.True(t, WorkGroup.Valid())
	assert.False(t, WorkKind("HOMEWORK").Valid())
}

func TestNewWork_Validate(t *testing.T) {
	validate := newTestValidator(t)
	dueAt := time.Now().Add(24 * time.Hour)

	t.Run("defaults max grade", func(t *testing.T) {
		nw := NewWork{
			SpaceID:     "SPC-1",
			Title:       "  ER modeling exercise  ",
			Description: "Model the library domain",
			Kind:        WorkIndividual,
			DueAt:       dueAt,
		}
		require.NoError(t, nw.Validate(context.Background(), validate))
		assert.Equal(t, 20.0, nw.MaxGrade)
		assert.Equal(t, "ER modeling exercise", nw.Title)
	})

	t.Run("explicit max grade kept", func(t *testing.T) {
		nw := NewWork{
			SpaceID:     "SPC-1",
			Title:       "Quiz",
			Description: "Normalization",
			Kind:        WorkGroup,
			DueAt:       dueAt,
			MaxGrade:    10,
		}
		require.NoError(t, nw.Validate(context.Background(), validate))
		assert.Equal(t, 10.0, nw.MaxGrade)
	})

	t.Run("bad kind rejected", func(t *testing.T) {
		nw := NewWork{
			SpaceID:     "SPC-1",
			Title:       "Quiz",
			Description: "Normalization",
			Kind:        WorkKind("HOMEWORK"),
			DueAt:       dueAt,
		}
		assert.Error(t, nw.Validate(context.Background(), validate))
	})

	t.Run("missing due date rejected", func(t *testing.T) {
		nw := NewWork{
			SpaceID:     "SPC-1",
			Title:       "Quiz",
			Description: "Normalization",
			Kind:        WorkIndividual,
		}
		assert.Error(t, nw.Validate(context.Background(), validate))
	})
}

func TestNewSpace_Validate(t *testing.T) {
	validate := newTestValidator(t)

	ns := NewSpace{CohortID: "COH-1", InstructorID: "INS-1", Subject: "  Databases  "}
	require.NoError(t, ns.Validate(validate))
	assert.Equal(t, "Databases", ns.Subject)

	bad := NewSpace{InstructorID: "INS-1", Subject: "Databases"}
	assert.Error(t, bad.Validate(validate))
}
