package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/shule-edu/shule/core"
	"github.com/shule-edu/shule/core/academic"
	"github.com/shule-edu/shule/core/account"
	"github.com/shule-edu/shule/core/space"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errTooManyAttempts      = echo.NewHTTPError(http.StatusTooManyRequests, "too many failed login attempts; retry later")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch cause := errors.Cause(err); cause {
		case account.ErrThrottled:
			code = errTooManyAttempts.Code
			message = errTooManyAttempts.Message
		case account.ErrInvalidCredentials:
			code = errAuthenticationFailed.Code
			message = errAuthenticationFailed.Message
		case account.ErrAccountDeactivated:
			code = errAccountDeactivated.Code
			message = errAccountDeactivated.Message
		case account.ErrNotFound, academic.ErrProgramNotFound, academic.ErrCohortNotFound,
			space.ErrSpaceNotFound, space.ErrInstructorNotFound:
			code = http.StatusNotFound
			message = cause.Error()
		case account.ErrEmailExists, account.ErrMatriculationExists,
			academic.ErrProgramExists, academic.ErrCohortExists:
			code = http.StatusConflict
			message = cause.Error()
		default:
			code, message = handleGenericError(err, cause, ctx, logger, translator, signalShutdown)
		}

		if ctx.Echo().Debug && code >= http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

func handleGenericError(
	err, cause error,
	ctx echo.Context,
	logger core.Logger,
	translator ut.Translator,
	signalShutdown func(),
) (int, interface{}) {
	switch origErr := cause.(type) {
	case *echo.HTTPError:
		if origErr == middleware.ErrJWTMissing {
			return http.StatusUnauthorized, origErr.Message
		}
		if origErr.Internal != nil {
			if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
				origErr = herr
			}
		}
		return origErr.Code, origErr.Message
	case validator.ValidationErrors:
		fldErrs := make(map[string]string, len(origErr))
		for _, vErr := range origErr {
			fldErrs[vErr.Field()] = vErr.Translate(translator)
		}
		return http.StatusBadRequest, fldErrs
	case *core.ValidationError:
		if origErr.Fields != nil {
			fldErrs := make(map[string]string, len(origErr.Fields))
			for _, fErr := range origErr.Fields {
				fldErrs[fErr.Field] = fErr.Error
			}
			return http.StatusBadRequest, fldErrs
		}
		return http.StatusBadRequest, origErr.Error()
	default: // any other error is a server error
		msg := http.StatusText(http.StatusInternalServerError)

		var acct account.Account
		if claims, cErr := getContextClaims(ctx); cErr == nil {
			acct.ID = claims.Subject
			acct.Email = claims.Email
			acct.Surname = claims.Surname
			acct.GivenName = claims.GivenName
		}
		logger.Error(msg, errors.Wrap(err, msg), acct)

		// shutting down...
		if core.IsShutdown(err) {
			signalShutdown()
		}
		return http.StatusInternalServerError, msg
	}
}
