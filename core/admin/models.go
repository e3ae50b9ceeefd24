package admin

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/qisedu/udahili/core"
)

// Roles
const (
	RoleAdmin    = "admin"
	RoleReviewer = "reviewer"
	RoleViewer   = "viewer"
)

var AllRoles = []string{RoleAdmin, RoleReviewer, RoleViewer}

// Principal is the authoritative administrative record for a portal user.
// It, not any session claim, is the source of truth for admin capability.
type Principal struct {
	UserID       string    `json:"user_id" db:"user_id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Role         string    `json:"role" db:"role"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login" db:"last_login"` // UTC
}

func (p *Principal) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.PasswordHash = hash
	return nil
}

func (p *Principal) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(p.PasswordHash, []byte(pwd))
}

func (p *Principal) IsAdmin() bool {
	return p.IsActive && p.Role == RoleAdmin
}

// CanReview reports whether the principal may act on admission applications.
func (p *Principal) CanReview() bool {
	return p.IsActive && (p.Role == RoleAdmin || p.Role == RoleReviewer)
}

// NewPrincipal contains information needed to create an administrative account.
type NewPrincipal struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Role            string `json:"role" validate:"required,adminrole"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (np *NewPrincipal) Validate() error {
	np.Name = core.CleanString(np.Name)
	np.Email = core.CleanString(np.Email, true /* lower */)
	np.Role = core.CleanString(np.Role, true /* lower */)
	return core.Validate.Struct(np)
}
