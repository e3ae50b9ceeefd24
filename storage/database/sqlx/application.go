package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/qisedu/udahili/core/application"
)

type applicationRepository struct {
	db *sqlx.DB
}

var _ application.Repository = (*applicationRepository)(nil) // interface compliance check

func NewApplicationRepository(db *sqlx.DB) application.Repository {
	return &applicationRepository{db: db}
}

func (repo *applicationRepository) CreateApplication(ctx context.Context, app application.Application) (application.Application, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO application (id, applicant_id, grade, stream, intake, status, fee_paid,
		                         rejection_reason, submitted_at, reviewed_at, decided_at, created_at, updated_at)
		VALUES (:id, :applicant_id, :grade, :stream, :intake, :status, :fee_paid,
		        :rejection_reason, :submitted_at, :reviewed_at, :decided_at, :created_at, :updated_at)`,
		app,
	)
	if err != nil {
		return application.Application{}, errors.Wrap(err, "inserting application")
	}
	return app, nil
}

func (repo *applicationRepository) GetApplicationByID(ctx context.Context, id string) (application.Application, error) {
	var app application.Application
	err := repo.db.GetContext(ctx, &app, `SELECT * FROM application WHERE id = $1`, id)
	if err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return application.Application{}, application.ErrNotFound
		}
		return application.Application{}, errors.Wrap(err, "getting application by id")
	}
	return app, nil
}

func (repo *applicationRepository) FilterApplications(ctx context.Context, filter application.QueryFilter) ([]application.Application, error) {
	q := `SELECT * FROM application WHERE 1=1`
	args := make([]interface{}, 0, 3)
	if filter.ApplicantID != "" {
		args = append(args, filter.ApplicantID)
		q += ` AND applicant_id = ` + placeholder(len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		q += ` AND status = ` + placeholder(len(args))
	}
	if filter.Intake != "" {
		args = append(args, filter.Intake)
		q += ` AND intake = ` + placeholder(len(args))
	}
	q += ` ORDER BY created_at DESC`

	apps := make([]application.Application, 0)
	if err := repo.db.SelectContext(ctx, &apps, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering applications")
	}
	return apps, nil
}

// UpdateApplicationStatus commits the transition only when the row still
// carries the status the writer read; a concurrent transition makes the
// guarded update match zero rows and the stale writer gets ErrStatusConflict.
func (repo *applicationRepository) UpdateApplicationStatus(
	ctx context.Context,
	app application.Application,
	from application.Status,
) (application.Application, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE application
		SET status = $1, rejection_reason = $2, submitted_at = $3, reviewed_at = $4, decided_at = $5, updated_at = $6
		WHERE id = $7 AND status = $8`,
		app.Status, app.RejectionReason, app.SubmittedAt, app.ReviewedAt, app.DecidedAt, app.UpdatedAt,
		app.ID, from,
	)
	if err != nil {
		return application.Application{}, errors.Wrap(err, "updating application status")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, gerr := repo.GetApplicationByID(ctx, app.ID); gerr != nil {
			return application.Application{}, gerr
		}
		return application.Application{}, application.ErrStatusConflict
	}
	return app, nil
}

func (repo *applicationRepository) UpdateApplicationFee(ctx context.Context, id string, feePaid bool) (application.Application, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE application SET fee_paid = $1, updated_at = now() WHERE id = $2`, feePaid, id)
	if err != nil {
		return application.Application{}, errors.Wrap(err, "updating application fee")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return application.Application{}, application.ErrNotFound
	}
	return repo.GetApplicationByID(ctx, id)
}

func placeholder(n int) string {
	return [...]string{"$1", "$2", "$3", "$4", "$5"}[n-1]
}
