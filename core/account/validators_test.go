package account

import (
	"testing"

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

func TestAcademicYearValidation(t *testing.T) {
	validate := newTestValidator(t)

	tests := []struct {
		year    string
		wantErr bool
	}{
		{year: "2024-2025"},
		{year: "1999-2000"},
		{year: "2025-2024", wantErr: true},
		{year: "2024-2024", wantErr: true},
		{year: "2024/2025", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.year, func(t *testing.T) {
			ns := NewStudent{
				Email:        "john.smith@shule.local",
				Surname:      "Smith",
				GivenName:    "John",
				AcademicYear: tt.year,
			}
			err := validate.Struct(&ns)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestChangePasswordValidation(t *testing.T) {
	validate := newTestValidator(t)

	tests := []struct {
		name    string
		pwd     string
		wantTag string
	}{
		{name: "valid", pwd: "NewPass123"},
		{name: "too short", pwd: "Short1", wantTag: pwdMinLenTag},
		{name: "whitespace", pwd: "New Pass 123", wantTag: pwdNoSpaceTag},
		{name: "all numeric", pwd: "1234567890", wantTag: pwdNotAllNumTag},
		{name: "too similar to current", pwd: "current-pass1", wantTag: pwdPrevSimTag},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cp := ChangePassword{
				CurrentPassword: "current-pass",
				Password:        tt.pwd,
				PasswordConfirm: tt.pwd,
			}
			err := cp.Validate(validate)
			if tt.wantTag == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			vErrs, ok := err.(validator.ValidationErrors)
			require.True(t, ok)
			require.Len(t, vErrs, 1)
			assert.Equal(t, tt.wantTag, vErrs[0].Tag())
		})
	}

	t.Run("confirmation mismatch", func(t *testing.T) {
		cp := ChangePassword{
			CurrentPassword: "current-pass",
			Password:        "NewPass123",
			PasswordConfirm: "Different123",
		}
		assert.Error(t, cp.Validate(validate))
	})
}
