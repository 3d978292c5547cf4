package account

import (
	"fmt"
	"strings"
	"unicode"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/shule-edu/shule/core"
	"github.com/shule-edu/shule/core/academic"
)

var (
	academicYearTag  = "academicyear"
	academicYearText = "invalid academic year; use the format YYYY-YYYY (eg. 2024-2025)"

	// password policy
	pwdMinLen     = 8
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = "password must not contain whitespace"

	pwdNotAllNumTag  = "pwdnotallnum"
	pwdNotAllNumText = "password cannot be entirely numeric"

	pwdMaxSim      = .7
	pwdPrevSimTag  = "pwdtoosim"
	pwdPrevSimText = "new password cannot be similar to the current one"
)

// InitValidators registers the account validators. Call once at app init.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(academicYearTag, academicYearValidation)
	core.RegisterCustomTranslation(validate, translator, academicYearTag, academicYearText)

	validate.RegisterStructValidation(changePasswordStructValidation, ChangePassword{})
	core.RegisterCustomTranslation(validate, translator, pwdMinLenTag, pwdMinLenText)
	core.RegisterCustomTranslation(validate, translator, pwdNoSpaceTag, pwdNoSpaceText)
	core.RegisterCustomTranslation(validate, translator, pwdNotAllNumTag, pwdNotAllNumText)
	core.RegisterCustomTranslation(validate, translator, pwdPrevSimTag, pwdPrevSimText)
}

// academicYearValidation checks the "YYYY-YYYY" format with the second year
// exactly one greater than the first.
func academicYearValidation(fl validator.FieldLevel) bool {
	_, _, err := academic.ParseAcademicYear(fl.Field().String())
	return err == nil
}

// changePasswordStructValidation applies the password policy to the new password:
// - minLen: 8
// - no whitespace
// - not all numeric
// - not similar to the current password
func changePasswordStructValidation(sl validator.StructLevel) {
	cp, ok := sl.Current().Interface().(ChangePassword)
	if !ok {
		return
	}
	reportErr := func(tag string) {
		sl.ReportError(cp.Password, "password", "Password", tag, "")
	}

	pwdLen := len(cp.Password)
	if pwdLen == 0 {
		return // `required` already reports
	}
	if pwdLen < pwdMinLen {
		reportErr(pwdMinLenTag)
		return
	}

	var digitCount int
	for _, char := range cp.Password {
		if unicode.IsSpace(char) {
			reportErr(pwdNoSpaceTag)
			return
		}
		if unicode.IsDigit(char) {
			digitCount++
		}
	}
	if digitCount == pwdLen {
		reportErr(pwdNotAllNumTag)
		return
	}

	if similarity(cp.Password, cp.CurrentPassword) >= pwdMaxSim {
		reportErr(pwdPrevSimTag)
	}
}

func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	return difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).QuickRatio()
}
