package admin

import (
	"context"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/qisedu/udahili/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, np NewPrincipal) (Principal, error) {
	now := time.Now().UTC()
	p := Principal{
		UserID:    uuid.New().String(),
		Name:      np.Name,
		Email:     np.Email,
		Role:      np.Role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.SetPassword(np.Password); err != nil {
		return Principal{}, err
	}

	p, err := svc.repo.CreatePrincipal(ctx, p)
	if err != nil {
		if pkgerrors.Cause(err) == ErrEmailExists {
			return Principal{}, core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return Principal{}, err
	}
	return p, nil
}

func (svc *Service) GetByUserID(ctx context.Context, userID string) (Principal, error) {
	return svc.repo.GetPrincipalByUserID(ctx, userID)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Principal, error) {
	return svc.repo.GetPrincipalByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) SetLastLogin(ctx context.Context, p Principal) (Principal, error) {
	return svc.repo.SetPrincipalLastLogin(ctx, p.UserID, time.Now().UTC())
}
