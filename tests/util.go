package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/qisedu/udahili/core/admin"
	"github.com/qisedu/udahili/core/applicant"
	"github.com/qisedu/udahili/core/application"
)

func CreateApplicant(
	t *testing.T,
	repo applicant.Repository,
	fname, lname, email, ref string,
) applicant.Applicant {
	t.Helper()

	now := time.Now().UTC()
	apl := applicant.Applicant{
		ID:        uuid.New().String(),
		FirstName: fname,
		LastName:  lname,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if ref != "" {
		apl.Reference = null.StringFrom(ref)
	}
	apl, err := repo.CreateApplicant(context.Background(), apl)
	if err != nil {
		t.Fatalf("CreateApplicant() failed: %v", err)
	}
	return apl
}

func CreateApplication(
	t *testing.T,
	repo application.Repository,
	applicantID, grade, stream, intake string,
	status application.Status,
) application.Application {
	t.Helper()

	now := time.Now().UTC()
	app := application.Application{
		ID:          uuid.New().String(),
		ApplicantID: applicantID,
		Grade:       grade,
		Stream:      stream,
		Intake:      intake,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if status != application.StatusDraft {
		app.SubmittedAt = null.TimeFrom(now)
	}
	app, err := repo.CreateApplication(context.Background(), app)
	if err != nil {
		t.Fatalf("CreateApplication() failed: %v", err)
	}
	return app
}

func CreateAdmin(
	t *testing.T,
	repo admin.Repository,
	name, email, role, pwd string,
	isActive bool,
) admin.Principal {
	t.Helper()

	now := time.Now().UTC()
	p := admin.Principal{
		UserID:    uuid.New().String(),
		Name:      name,
		Email:     email,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd != "" {
		if err := p.SetPassword(pwd); err != nil {
			t.Fatalf("CreateAdmin() failed: %v", err)
		}
	}
	p, err := repo.CreatePrincipal(context.Background(), p)
	if err != nil {
		t.Fatalf("CreateAdmin() failed: %v", err)
	}
	return p
}
