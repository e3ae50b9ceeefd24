package dummydb

import (
	"context"

	"github.com/qisedu/udahili/core/applicant"
)

type ApplicantRepository struct {
	db *applicantTable

	// FailCreate forces the next CreateApplicant calls to fail with err,
	// simulating a store-side failure (or a lost uniqueness race).
	FailCreate error
}

var _ applicant.Repository = (*ApplicantRepository)(nil) // interface compliance check

func NewApplicantRepository(db *DB) *ApplicantRepository {
	return &ApplicantRepository{db: db.applicant}
}

func (repo *ApplicantRepository) CreateApplicant(ctx context.Context, apl applicant.Applicant) (applicant.Applicant, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.FailCreate != nil {
		return applicant.Applicant{}, repo.FailCreate
	}
	// the real store's unique index on reference is mirrored here
	if apl.Reference.Valid {
		for _, a := range repo.db.table {
			if a.Reference.Valid && a.Reference.String == apl.Reference.String {
				return applicant.Applicant{}, applicant.ErrRefExists
			}
		}
	}
	repo.db.table[apl.ID] = &apl
	return apl, nil
}

func (repo *ApplicantRepository) GetApplicantByID(ctx context.Context, id string) (applicant.Applicant, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if apl, ok := repo.db.table[id]; ok {
		return *apl, nil
	}
	return applicant.Applicant{}, applicant.ErrNotFound
}

func (repo *ApplicantRepository) GetApplicantByRef(ctx context.Context, ref string) (applicant.Applicant, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, apl := range repo.db.table {
		if apl.Reference.Valid && apl.Reference.String == ref {
			return *apl, nil
		}
	}
	return applicant.Applicant{}, applicant.ErrNotFound
}

func (repo *ApplicantRepository) UpdateApplicant(ctx context.Context, apl applicant.Applicant) (applicant.Applicant, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[apl.ID]
	if !ok {
		return applicant.Applicant{}, applicant.ErrNotFound
	}
	// reference is immutable; only profile fields are saved
	orig.FirstName = apl.FirstName
	orig.LastName = apl.LastName
	orig.Email = apl.Email
	orig.Phone = apl.Phone
	orig.Citizenship = apl.Citizenship
	orig.VisaStatus = apl.VisaStatus
	orig.UpdatedAt = apl.UpdatedAt
	return *orig, nil
}
