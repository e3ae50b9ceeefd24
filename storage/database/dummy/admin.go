package dummydb

import (
	"context"
	"time"

	"github.com/qisedu/udahili/core/admin"
)

type AdminRepository struct {
	db *adminTable

	// FailGet forces lookups to fail, simulating a store outage
	// (the role resolver must fail closed in that case).
	FailGet error
	// Gets counts GetPrincipalByUserID calls, for cache assertions.
	Gets int
}

var _ admin.Repository = (*AdminRepository)(nil) // interface compliance check

func NewAdminRepository(db *DB) *AdminRepository {
	return &AdminRepository{db: db.admin}
}

func (repo *AdminRepository) CreatePrincipal(ctx context.Context, p admin.Principal) (admin.Principal, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.table {
		if existing.Email == p.Email {
			return admin.Principal{}, admin.ErrEmailExists
		}
	}
	repo.db.table[p.UserID] = &p
	return p, nil
}

func (repo *AdminRepository) GetPrincipalByUserID(ctx context.Context, userID string) (admin.Principal, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	repo.Gets++
	if repo.FailGet != nil {
		return admin.Principal{}, repo.FailGet
	}
	if p, ok := repo.db.table[userID]; ok {
		return *p, nil
	}
	return admin.Principal{}, admin.ErrNotFound
}

func (repo *AdminRepository) GetPrincipalByEmail(ctx context.Context, email string) (admin.Principal, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if repo.FailGet != nil {
		return admin.Principal{}, repo.FailGet
	}
	for _, p := range repo.db.table {
		if p.Email == email {
			return *p, nil
		}
	}
	return admin.Principal{}, admin.ErrNotFound
}

func (repo *AdminRepository) SetPrincipalLastLogin(ctx context.Context, userID string, t time.Time) (admin.Principal, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	p, ok := repo.db.table[userID]
	if !ok {
		return admin.Principal{}, admin.ErrNotFound
	}
	p.LastLogin = t
	p.UpdatedAt = t
	return *p, nil
}
