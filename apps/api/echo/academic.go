package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shule-edu/shule/core/academic"
)

type academicApi struct {
	svc academic.ServiceInterface
}

func registerAcademicAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := academicApi{svc: deps.AcademicSvc}

	ag := g.Group("/academics", jwt, directorMiddleware())
	ag.GET("/cohorts", api.queryCohorts)
	ag.GET("/programs", api.queryPrograms)
	ag.GET("/years", api.queryYears)
}

// Handlers

func (api *academicApi) queryCohorts(ctx echo.Context) error {
	cohorts, err := api.svc.QueryCohorts(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying cohorts")
	}
	if cohorts == nil {
		cohorts = []academic.Cohort{}
	}
	return ctx.JSON(http.StatusOK, cohorts)
}

func (api *academicApi) queryPrograms(ctx echo.Context) error {
	programs, err := api.svc.QueryPrograms(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying programs")
	}
	if programs == nil {
		programs = []academic.Program{}
	}
	return ctx.JSON(http.StatusOK, programs)
}

func (api *academicApi) queryYears(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.ValidYears())
}
