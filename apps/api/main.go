package main

import (
	"log"
	"os"

	echoapi "github.com/qisedu/udahili/apps/api/echo"
	"github.com/qisedu/udahili/core"
	"github.com/qisedu/udahili/core/admin"
	"github.com/qisedu/udahili/core/applicant"
	"github.com/qisedu/udahili/core/application"
	dummymail "github.com/qisedu/udahili/services/email/dummy"
	sendgridmail "github.com/qisedu/udahili/services/email/sendgrid"
	logsvc "github.com/qisedu/udahili/services/logger"
	"github.com/qisedu/udahili/storage/database"
	sqlxrepos "github.com/qisedu/udahili/storage/database/sqlx"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lshortfile)

	// set up logger
	var logger core.Logger
	if core.Conf.Debug || core.Conf.TestMode {
		logger = logsvc.NewStdLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, core.Conf)
	}

	// set up DB
	db, err := database.Open(core.Conf)
	if err != nil {
		std.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = dummymail.NewService(core.Conf)
	} else {
		mailSvc = sendgridmail.NewService(core.Conf)
	}

	aplRepo := sqlxrepos.NewApplicantRepository(db)
	appRepo := sqlxrepos.NewApplicationRepository(db)
	admRepo := sqlxrepos.NewAdminRepository(db)

	aplSvc := applicant.NewService(core.Conf, aplRepo, logger)
	notifier := application.NewNotifier(core.Conf, mailSvc, logger)
	appSvc := application.NewService(appRepo, aplRepo, notifier, logger)
	admSvc := admin.NewService(admRepo)
	resolver := admin.NewResolver(core.Conf, admRepo, logger)

	// start API server
	app := echoapi.NewServer(
		&echoapi.Options{
			Addr:           core.Conf.Server.Addr(),
			ApplicantSvc:   aplSvc,
			ApplicationSvc: appSvc,
			AdminSvc:       admSvc,
			Resolver:       resolver,
			Logger:         logger,
		},
	)
	std.Fatal(app.Start())
}
