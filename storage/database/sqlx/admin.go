package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/qisedu/udahili/core/admin"
)

type adminRepository struct {
	db *sqlx.DB
}

var _ admin.Repository = (*adminRepository)(nil) // interface compliance check

func NewAdminRepository(db *sqlx.DB) admin.Repository {
	return &adminRepository{db: db}
}

func (repo *adminRepository) CreatePrincipal(ctx context.Context, p admin.Principal) (admin.Principal, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO admin_principal (user_id, name, email, role, is_active, password_hash, created_at, updated_at, last_login)
		VALUES (:user_id, :name, :email, :role, :is_active, :password_hash, :created_at, :updated_at, :last_login)`,
		p,
	)
	if err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == pqUniqueViolation {
			return admin.Principal{}, admin.ErrEmailExists
		}
		return admin.Principal{}, errors.Wrap(err, "inserting admin principal")
	}
	return p, nil
}

func (repo *adminRepository) GetPrincipalByUserID(ctx context.Context, userID string) (admin.Principal, error) {
	var p admin.Principal
	err := repo.db.GetContext(ctx, &p, `SELECT * FROM admin_principal WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return admin.Principal{}, admin.ErrNotFound
		}
		return admin.Principal{}, errors.Wrap(err, "getting admin principal by user id")
	}
	return p, nil
}

func (repo *adminRepository) GetPrincipalByEmail(ctx context.Context, email string) (admin.Principal, error) {
	var p admin.Principal
	err := repo.db.GetContext(ctx, &p, `SELECT * FROM admin_principal WHERE email = $1`, email)
	if err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return admin.Principal{}, admin.ErrNotFound
		}
		return admin.Principal{}, errors.Wrap(err, "getting admin principal by email")
	}
	return p, nil
}

func (repo *adminRepository) SetPrincipalLastLogin(ctx context.Context, userID string, t time.Time) (admin.Principal, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE admin_principal SET last_login = $1, updated_at = $1 WHERE user_id = $2`, t, userID)
	if err != nil {
		return admin.Principal{}, errors.Wrap(err, "setting admin principal last login")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return admin.Principal{}, admin.ErrNotFound
	}
	return repo.GetPrincipalByUserID(ctx, userID)
}
