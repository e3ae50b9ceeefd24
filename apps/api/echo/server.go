package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/qisedu/udahili/core"
	"github.com/qisedu/udahili/core/admin"
	"github.com/qisedu/udahili/core/applicant"
	"github.com/qisedu/udahili/core/application"
)

type (
	Options struct {
		Addr           string
		DisableReqLogs bool

		ApplicantSvc   *applicant.Service
		ApplicationSvc *application.Service
		AdminSvc       *admin.Service
		Resolver       *admin.Resolver
		Logger         core.Logger
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	debug := core.Conf.Debug

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, func() { _ = s.Stop(context.Background()) })
	s.app.Debug = debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerAdmissionsAPI(v1, s.opts.ApplicantSvc, s.opts.ApplicationSvc)
	registerAdminAPI(v1, jwt, s.opts.AdminSvc, s.opts.ApplicationSvc, s.opts.Resolver)
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Addr)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to the "+core.Conf.AppName+" Admissions API!")
}
