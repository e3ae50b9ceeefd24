package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/qisedu/udahili/core/applicant"
	"github.com/qisedu/udahili/core/application"
)

type admissionsApi struct {
	aplSvc *applicant.Service
	appSvc *application.Service
}

func registerAdmissionsAPI(g *echo.Group, aplSvc *applicant.Service, appSvc *application.Service) {
	api := admissionsApi{
		aplSvc: aplSvc,
		appSvc: appSvc,
	}

	rg := g.Group("/references")
	rg.POST("", api.issueReference)
	rg.GET("/:code", api.validateReference)

	g.PUT("/applicants/:id", api.updateApplicantProfile)

	ag := g.Group("/applications")
	ag.POST("", api.startApplication)
	ag.GET("", api.queryApplications)
	ag.GET("/:id", api.retrieveApplication)
	ag.POST("/:id/submit", api.submitApplication)
}

// Handlers

func (api *admissionsApi) issueReference(ctx echo.Context) error {
	apl, err := api.aplSvc.Issue(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "issuing reference")
	}
	return ctx.JSON(http.StatusCreated, apl)
}

func (api *admissionsApi) validateReference(ctx echo.Context) error {
	res, err := api.aplSvc.Validate(ctx.Request().Context(), ctx.Param("code"))
	if err != nil {
		return errors.Wrap(err, "validating reference")
	}
	if !res.Valid {
		// no internal detail leaks to resume attempts
		return errRefNotFound
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *admissionsApi) updateApplicantProfile(ctx echo.Context) error {
	var data applicant.UpdateProfile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProfile")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	apl, err := api.aplSvc.UpdateProfile(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating applicant profile")
	}
	return ctx.JSON(http.StatusOK, apl)
}

func (api *admissionsApi) startApplication(ctx echo.Context) error {
	var data application.NewApplication
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewApplication")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	app, err := api.appSvc.Start(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "starting application")
	}
	return ctx.JSON(http.StatusCreated, app)
}

func (api *admissionsApi) queryApplications(ctx echo.Context) error {
	var filter application.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	apps, err := api.appSvc.Filter(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying applications")
	}
	return ctx.JSON(http.StatusOK, apps)
}

func (api *admissionsApi) retrieveApplication(ctx echo.Context) error {
	app, err := api.appSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "retrieving application")
	}
	return ctx.JSON(http.StatusOK, app)
}

func (api *admissionsApi) submitApplication(ctx echo.Context) error {
	app, res, err := api.appSvc.Submit(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "submitting application")
	}
	return ctx.JSON(http.StatusOK, newTransitionResponse(app, res))
}
