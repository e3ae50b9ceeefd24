package applicant

import (
	"strings"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/qisedu/udahili/core"
)

// Applicant is the prospective student identified by a reference code.
// A row is created as a placeholder when a reference is issued and
// profile fields are filled in as the applicant supplies them.
// The reference, once issued and stored, is immutable.
type Applicant struct {
	ID          string      `json:"id" db:"id"`
	Reference   null.String `json:"reference" db:"reference"`
	FirstName   string      `json:"first_name" db:"first_name"`
	LastName    string      `json:"last_name" db:"last_name"`
	Email       string      `json:"email" db:"email"`
	Phone       string      `json:"phone" db:"phone"`
	Citizenship string      `json:"citizenship" db:"citizenship"`
	VisaStatus  string      `json:"visa_status" db:"visa_status"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"` // UTC
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"` // UTC
}

func (a *Applicant) DisplayName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

func (a *Applicant) Summary() Summary {
	return Summary{
		ID:        a.ID,
		Name:      a.DisplayName(),
		Reference: a.Reference.String,
	}
}

// Summary is the minimal applicant projection returned by reference validation.
type Summary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Reference string `json:"reference"`
}

// ValidationResult is the outcome of validating a reference code.
type ValidationResult struct {
	Valid     bool     `json:"valid"`
	Applicant *Summary `json:"applicant,omitempty"`
	Reason    string   `json:"reason,omitempty"`
}

// UpdateProfile defines what identity information may be supplied for an Applicant.
type UpdateProfile struct {
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone"`
	Citizenship string `json:"citizenship"`
	VisaStatus  string `json:"visa_status"`
}

func (up *UpdateProfile) Validate() error {
	up.FirstName = core.CleanString(up.FirstName)
	up.LastName = core.CleanString(up.LastName)
	up.Email = core.CleanString(up.Email, true /* lower */)
	up.Phone = core.CleanString(up.Phone)
	up.Citizenship = core.CleanString(up.Citizenship)
	up.VisaStatus = core.CleanString(up.VisaStatus)
	return core.Validate.Struct(up)
}
