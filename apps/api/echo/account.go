package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shule-edu/shule/core/account"
)

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token             string `json:"token"`
		PasswordTemporary bool   `json:"password_temporary"`
	}
)

func (r *LoginRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

type accountApi struct {
	svc        account.ServiceInterface
	validate   *validator.Validate
	translator ut.Translator
}

func registerAccountAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := accountApi{
		svc:        deps.AccountSvc,
		validate:   deps.Validate,
		translator: deps.Translator,
	}

	ag := g.Group("/accounts")

	// un-authed endpoints
	ag.POST("/login", api.login)

	// authed endpoints
	authed := ag.Group("", jwt)
	authed.POST("/password-change", api.changePassword)
	authed.POST("/instructors", api.createInstructor, directorMiddleware())
	authed.POST("/students", api.createStudent, directorMiddleware())
	authed.GET("/instructors", api.queryInstructors, directorMiddleware())
}

// Handlers

func (api *accountApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	acct, err := api.svc.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		return err
	}

	token, err := GenerateToken(GetAccountClaims(acct))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{
		Token:             token,
		PasswordTemporary: acct.PasswordTemporary,
	})
}

func (api *accountApi) changePassword(ctx echo.Context) error {
	var data account.ChangePassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChangePassword")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	acct, err := api.svc.ChangePassword(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, acct)
}

func (api *accountApi) createInstructor(ctx echo.Context) error {
	var data account.NewInstructor
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewInstructor")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	res, err := api.svc.CreateInstructor(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *accountApi) createStudent(ctx echo.Context) error {
	var data account.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	res, err := api.svc.CreateStudent(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *accountApi) queryInstructors(ctx echo.Context) error {
	instructors, err := api.svc.QueryInstructors(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying instructors")
	}
	if instructors == nil {
		instructors = []account.Instructor{}
	}
	return ctx.JSON(http.StatusOK, instructors)
}
