package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shule-edu/shule/core/account"
	"github.com/shule-edu/shule/core/space"
)

type spaceApi struct {
	svc        space.ServiceInterface
	accountSvc account.ServiceInterface
	validate   *validator.Validate
	translator ut.Translator
}

func registerSpaceAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := spaceApi{
		svc:        deps.SpaceSvc,
		accountSvc: deps.AccountSvc,
		validate:   deps.Validate,
		translator: deps.Translator,
	}

	sg := g.Group("/spaces", jwt)
	sg.POST("", api.createSpace, directorMiddleware())
	sg.POST("/works", api.createWork, instructorMiddleware())
	sg.GET("/mine", api.mySpaces, instructorMiddleware())

	wg := g.Group("/works", jwt)
	wg.GET("/mine", api.myWorks, studentMiddleware())
}

// Handlers

func (api *spaceApi) createSpace(ctx echo.Context) error {
	var data space.NewSpace
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSpace")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sp, err := api.svc.CreateSpace(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, sp)
}

func (api *spaceApi) createWork(ctx echo.Context) error {
	var data space.NewWork
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewWork")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate); err != nil {
		return err
	}

	acct, err := getContextAccount(ctx, api.accountSvc)
	if err != nil {
		return errors.Wrap(err, "getting context account")
	}
	prof, err := api.accountSvc.GetInstructorProfile(ctx.Request().Context(), acct.ID)
	if err != nil {
		return errors.Wrap(err, "getting instructor profile")
	}

	res, err := api.svc.CreateWork(ctx.Request().Context(), data, prof.ID, acct.DisplayName())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *spaceApi) mySpaces(ctx echo.Context) error {
	acct, err := getContextAccount(ctx, api.accountSvc)
	if err != nil {
		return errors.Wrap(err, "getting context account")
	}
	prof, err := api.accountSvc.GetInstructorProfile(ctx.Request().Context(), acct.ID)
	if err != nil {
		return errors.Wrap(err, "getting instructor profile")
	}

	spaces, err := api.svc.QueryInstructorSpaces(ctx.Request().Context(), prof.ID)
	if err != nil {
		return errors.Wrap(err, "querying instructor spaces")
	}
	if spaces == nil {
		spaces = []space.Space{}
	}
	return ctx.JSON(http.StatusOK, spaces)
}

func (api *spaceApi) myWorks(ctx echo.Context) error {
	acct, err := getContextAccount(ctx, api.accountSvc)
	if err != nil {
		return errors.Wrap(err, "getting context account")
	}
	prof, err := api.accountSvc.GetStudentProfile(ctx.Request().Context(), acct.ID)
	if err != nil {
		return errors.Wrap(err, "getting student profile")
	}

	works, err := api.svc.QueryStudentAssignments(ctx.Request().Context(), prof.ID)
	if err != nil {
		return errors.Wrap(err, "querying student assignments")
	}
	if works == nil {
		works = []space.StudentAssignment{}
	}
	return ctx.JSON(http.StatusOK, works)
}
