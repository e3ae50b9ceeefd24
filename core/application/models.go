package application

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/qisedu/udahili/core"
)

// Status values are persisted and transmitted verbatim.
type Status string

const (
	StatusDraft       Status = "Draft"
	StatusSubmitted   Status = "Submitted"
	StatusUnderReview Status = "Under Review"
	StatusApproved    Status = "Approved"
	StatusRejected    Status = "Rejected"
)

// statusTransitions is the full set of legal status transitions.
// Approved and Rejected are terminal: no transition is defined out of them.
var statusTransitions = map[Status][]Status{
	StatusDraft:       {StatusSubmitted},
	StatusSubmitted:   {StatusUnderReview, StatusApproved, StatusRejected},
	StatusUnderReview: {StatusApproved, StatusRejected},
	StatusApproved:    nil,
	StatusRejected:    nil,
}

func (s Status) IsValid() bool {
	_, ok := statusTransitions[s]
	return ok
}

func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanTransitionTo reports whether `to` is reachable from s in one step.
func (s Status) CanTransitionTo(to Status) bool {
	for _, t := range statusTransitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

// Application is one admission attempt for one Applicant,
// for one grade/stream in one intake period.
type Application struct {
	ID              string      `json:"id" db:"id"`
	ApplicantID     string      `json:"applicant_id" db:"applicant_id"`
	Grade           string      `json:"grade" db:"grade"`
	Stream          string      `json:"stream" db:"stream"`
	Intake          string      `json:"intake" db:"intake"` // academic year, e.g. "2025-2026"
	Status          Status      `json:"status" db:"status"`
	FeePaid         bool        `json:"fee_paid" db:"fee_paid"`
	RejectionReason null.String `json:"rejection_reason" db:"rejection_reason"`
	SubmittedAt     null.Time   `json:"submitted_at" db:"submitted_at"`
	ReviewedAt      null.Time   `json:"reviewed_at" db:"reviewed_at"`
	DecidedAt       null.Time   `json:"decided_at" db:"decided_at"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"` // UTC
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"` // UTC
}

// NewApplication contains information needed to start an admission attempt.
type NewApplication struct {
	ApplicantID string `json:"applicant_id" validate:"required"`
	Grade       string `json:"grade" validate:"required"`
	Stream      string `json:"stream"`
	Intake      string `json:"intake" validate:"required"`
}

func (na *NewApplication) Validate() error {
	na.ApplicantID = core.CleanString(na.ApplicantID)
	na.Grade = core.CleanString(na.Grade)
	na.Stream = core.CleanString(na.Stream)
	na.Intake = core.CleanString(na.Intake)
	return core.Validate.Struct(na)
}

type QueryFilter struct {
	ApplicantID string `query:"applicant_id"`
	Status      Status `query:"status"`
	Intake      string `query:"intake"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.ApplicantID == "" && qf.Status == "" && qf.Intake == ""
}
