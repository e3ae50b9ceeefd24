package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	pkgerrors "github.com/pkg/errors"

	"github.com/qisedu/udahili/core"
	"github.com/qisedu/udahili/core/applicant"
)

var (
	// errors
	ErrNotFound          = errors.New("application not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrStatusConflict    = errors.New("application was modified by another request")
)

type (
	Repository interface {
		CreateApplication(ctx context.Context, app Application) (Application, error)
		GetApplicationByID(ctx context.Context, id string) (Application, error)
		// FilterApplications applies AND operation on available QueryFilter fields.
		FilterApplications(ctx context.Context, filter QueryFilter) ([]Application, error)
		// UpdateApplicationStatus persists a transition guarded by the status
		// the writer read; a row that moved underneath it fails with
		// ErrStatusConflict rather than being overwritten.
		UpdateApplicationStatus(ctx context.Context, app Application, from Status) (Application, error)
		UpdateApplicationFee(ctx context.Context, id string, feePaid bool) (Application, error)
	}

	Service struct {
		repo       Repository
		applicants applicant.Repository
		notifier   *Notifier
		log        core.Logger
	}
)

func NewService(repo Repository, applicants applicant.Repository, notifier *Notifier, logger core.Logger) *Service {
	return &Service{
		repo:       repo,
		applicants: applicants,
		notifier:   notifier,
		log:        logger,
	}
}

// Start creates a Draft application for an applicant, grade and intake.
func (svc *Service) Start(ctx context.Context, na NewApplication) (Application, error) {
	if _, err := svc.applicants.GetApplicantByID(ctx, na.ApplicantID); err != nil {
		return Application{}, err
	}

	now := time.Now().UTC()
	app := Application{
		ID:          uuid.New().String(),
		ApplicantID: na.ApplicantID,
		Grade:       na.Grade,
		Stream:      na.Stream,
		Intake:      na.Intake,
		Status:      StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateApplication(ctx, app)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Application, error) {
	return svc.repo.GetApplicationByID(ctx, id)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Application, error) {
	return svc.repo.FilterApplications(ctx, filter)
}

func (svc *Service) MarkFeePaid(ctx context.Context, id string) (Application, error) {
	return svc.repo.UpdateApplicationFee(ctx, id, true)
}

// Submit moves a Draft application to Submitted and stamps submitted_at.
func (svc *Service) Submit(ctx context.Context, id string) (Application, DeliveryResult, error) {
	return svc.transition(ctx, id, StatusSubmitted, func(app *Application, now time.Time) {
		app.SubmittedAt = null.TimeFrom(now)
	})
}

// StartReview moves a Submitted application to Under Review and stamps reviewed_at.
func (svc *Service) StartReview(ctx context.Context, id string) (Application, DeliveryResult, error) {
	return svc.transition(ctx, id, StatusUnderReview, func(app *Application, now time.Time) {
		app.ReviewedAt = null.TimeFrom(now)
	})
}

// Approve moves an application to the terminal Approved status.
func (svc *Service) Approve(ctx context.Context, id string) (Application, DeliveryResult, error) {
	return svc.transition(ctx, id, StatusApproved, func(app *Application, now time.Time) {
		app.DecidedAt = null.TimeFrom(now)
	})
}

// Reject moves an application to the terminal Rejected status,
// carrying an optional reason into the notification.
func (svc *Service) Reject(ctx context.Context, id, reason string) (Application, DeliveryResult, error) {
	reason = core.CleanString(reason)
	return svc.transition(ctx, id, StatusRejected, func(app *Application, now time.Time) {
		app.DecidedAt = null.TimeFrom(now)
		if reason != "" {
			app.RejectionReason = null.StringFrom(reason)
		}
	})
}

// transition validates reachability, persists the new status, then notifies.
// The persistence write completes strictly before any notification dispatch
// is attempted; a failed write aborts with no mail sent, and a failed mail
// never rolls back the persisted status (it is reported in DeliveryResult).
func (svc *Service) transition(
	ctx context.Context,
	id string,
	to Status,
	mutate func(*Application, time.Time),
) (Application, DeliveryResult, error) {
	app, err := svc.repo.GetApplicationByID(ctx, id)
	if err != nil {
		return Application{}, DeliveryResult{}, err
	}

	from := app.Status
	if !from.CanTransitionTo(to) {
		return Application{}, DeliveryResult{}, pkgerrors.Wrapf(ErrInvalidTransition, "%s -> %s", from, to)
	}

	now := time.Now().UTC()
	app.Status = to
	app.UpdatedAt = now
	mutate(&app, now)

	app, err = svc.repo.UpdateApplicationStatus(ctx, app, from)
	if err != nil {
		return Application{}, DeliveryResult{}, err
	}

	var res DeliveryResult
	if svc.notifier != nil {
		apl, aerr := svc.applicants.GetApplicantByID(ctx, app.ApplicantID)
		if aerr != nil {
			res.ApplicantErr = pkgerrors.Wrap(aerr, "loading applicant for notification")
		} else {
			res = svc.notifier.Notify(app, apl)
		}
		if res.ApplicantErr != nil {
			svc.log.Error("applicant notification failed", res.ApplicantErr)
		}
		if res.AdminAckErr != nil {
			svc.log.Warn("admin acknowledgement failed", res.AdminAckErr)
		}
	}
	return app, res, nil
}
