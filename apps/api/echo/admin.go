package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/qisedu/udahili/core/admin"
	"github.com/qisedu/udahili/core/application"
)

type adminApi struct {
	admSvc   *admin.Service
	appSvc   *application.Service
	resolver *admin.Resolver
}

func registerAdminAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	admSvc *admin.Service,
	appSvc *application.Service,
	resolver *admin.Resolver,
) {
	api := adminApi{
		admSvc:   admSvc,
		appSvc:   appSvc,
		resolver: resolver,
	}

	ag := g.Group("/admin")

	// un-authed endpoints
	ag.POST("/login", api.login)

	// authed endpoints
	tg := ag.Group("", jwt)
	tg.POST("/token-refresh", api.refreshToken)
	tg.POST("/logout", api.logout)

	// review endpoints; capability comes from the authoritative admin record
	rg := tg.Group("/applications", reviewerMiddleware(api.resolver))
	rg.GET("", api.queryApplications)
	rg.POST("/:id/review", api.startReview)
	rg.POST("/:id/approve", api.approve)
	rg.POST("/:id/reject", api.reject)
}

// Handlers

func (api *adminApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := authenticate(ctx, data.Email, data.Password, api.admSvc)
	if err != nil {
		return err
	}
	token, err := GenerateToken(claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *adminApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.resolver)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

// logout drops the cached role resolution immediately; it must not
// linger until the TTL expires.
func (api *adminApi) logout(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	api.resolver.Invalidate(claims.Subject)
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Signed out."})
}

func (api *adminApi) queryApplications(ctx echo.Context) error {
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

func (api *adminApi) startReview(ctx echo.Context) error {
	app, res, err := api.appSvc.StartReview(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "starting review")
	}
	return ctx.JSON(http.StatusOK, newTransitionResponse(app, res))
}

func (api *adminApi) approve(ctx echo.Context) error {
	app, res, err := api.appSvc.Approve(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "approving application")
	}
	return ctx.JSON(http.StatusOK, newTransitionResponse(app, res))
}

func (api *adminApi) reject(ctx echo.Context) error {
	var data RejectRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RejectRequest")
	}

	app, res, err := api.appSvc.Reject(ctx.Request().Context(), ctx.Param("id"), data.Reason)
	if err != nil {
		return errors.Wrap(err, "rejecting application")
	}
	return ctx.JSON(http.StatusOK, newTransitionResponse(app, res))
}
