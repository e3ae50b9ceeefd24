package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/qisedu/udahili/core/applicant"
)

// pqUniqueViolation is the postgres error code for unique constraint violations.
const pqUniqueViolation = "23505"

type applicantRepository struct {
	db *sqlx.DB
}

var _ applicant.Repository = (*applicantRepository)(nil) // interface compliance check

func NewApplicantRepository(db *sqlx.DB) applicant.Repository {
	return &applicantRepository{db: db}
}

func (repo *applicantRepository) CreateApplicant(ctx context.Context, apl applicant.Applicant) (applicant.Applicant, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO applicant (id, reference, first_name, last_name, email, phone, citizenship, visa_status, created_at, updated_at)
		VALUES (:id, :reference, :first_name, :last_name, :email, :phone, :citizenship, :visa_status, :created_at, :updated_at)`,
		apl,
	)
	if err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == pqUniqueViolation {
			return applicant.Applicant{}, applicant.ErrRefExists
		}
		return applicant.Applicant{}, errors.Wrap(err, "inserting applicant")
	}
	return apl, nil
}

func (repo *applicantRepository) GetApplicantByID(ctx context.Context, id string) (applicant.Applicant, error) {
	var apl applicant.Applicant
	err := repo.db.GetContext(ctx, &apl, `SELECT * FROM applicant WHERE id = $1`, id)
	if err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return applicant.Applicant{}, applicant.ErrNotFound
		}
		return applicant.Applicant{}, errors.Wrap(err, "getting applicant by id")
	}
	return apl, nil
}

func (repo *applicantRepository) GetApplicantByRef(ctx context.Context, ref string) (applicant.Applicant, error) {
	var apl applicant.Applicant
	err := repo.db.GetContext(ctx, &apl, `SELECT * FROM applicant WHERE reference = $1`, ref)
	if err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return applicant.Applicant{}, applicant.ErrNotFound
		}
		return applicant.Applicant{}, errors.Wrap(err, "getting applicant by reference")
	}
	return apl, nil
}

func (repo *applicantRepository) UpdateApplicant(ctx context.Context, apl applicant.Applicant) (applicant.Applicant, error) {
	// the reference column is deliberately not in the SET list: immutable once issued
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE applicant
		SET first_name = :first_name, last_name = :last_name, email = :email, phone = :phone,
		    citizenship = :citizenship, visa_status = :visa_status, updated_at = :updated_at
		WHERE id = :id`,
		apl,
	)
	if err != nil {
		return applicant.Applicant{}, errors.Wrap(err, "updating applicant")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return applicant.Applicant{}, applicant.ErrNotFound
	}
	return repo.GetApplicantByID(ctx, apl.ID)
}
