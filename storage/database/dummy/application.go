package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/qisedu/udahili/core/application"
)

type ApplicationRepository struct {
	db *applicationTable

	// FailUpdateStatus forces the next UpdateApplicationStatus calls to fail,
	// simulating a persistence failure mid-transition.
	FailUpdateStatus error
}

var _ application.Repository = (*ApplicationRepository)(nil) // interface compliance check

func NewApplicationRepository(db *DB) *ApplicationRepository {
	return &ApplicationRepository{db: db.application}
}

func (repo *ApplicationRepository) CreateApplication(ctx context.Context, app application.Application) (application.Application, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[app.ID] = &app
	return app, nil
}

func (repo *ApplicationRepository) GetApplicationByID(ctx context.Context, id string) (application.Application, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if app, ok := repo.db.table[id]; ok {
		return *app, nil
	}
	return application.Application{}, application.ErrNotFound
}

func (repo *ApplicationRepository) FilterApplications(ctx context.Context, filter application.QueryFilter) ([]application.Application, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	apps := make([]application.Application, 0, len(repo.db.table))
	for _, app := range repo.db.table {
		if filter.ApplicantID != "" && app.ApplicantID != filter.ApplicantID {
			continue
		}
		if filter.Status != "" && app.Status != filter.Status {
			continue
		}
		if filter.Intake != "" && app.Intake != filter.Intake {
			continue
		}
		apps = append(apps, *app)
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].CreatedAt.After(apps[j].CreatedAt) })
	return apps, nil
}

func (repo *ApplicationRepository) UpdateApplicationStatus(
	ctx context.Context,
	app application.Application,
	from application.Status,
) (application.Application, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.FailUpdateStatus != nil {
		return application.Application{}, repo.FailUpdateStatus
	}

	orig, ok := repo.db.table[app.ID]
	if !ok {
		return application.Application{}, application.ErrNotFound
	}
	if orig.Status != from {
		return application.Application{}, application.ErrStatusConflict
	}

	orig.Status = app.Status
	orig.RejectionReason = app.RejectionReason
	orig.SubmittedAt = app.SubmittedAt
	orig.ReviewedAt = app.ReviewedAt
	orig.DecidedAt = app.DecidedAt
	orig.UpdatedAt = app.UpdatedAt
	return *orig, nil
}

func (repo *ApplicationRepository) UpdateApplicationFee(ctx context.Context, id string, feePaid bool) (application.Application, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[id]
	if !ok {
		return application.Application{}, application.ErrNotFound
	}
	orig.FeePaid = feePaid
	orig.UpdatedAt = time.Now().UTC()
	return *orig, nil
}
