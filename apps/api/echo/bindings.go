package echoapi

import (
	"github.com/qisedu/udahili/core"
	"github.com/qisedu/udahili/core/application"
)

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	RejectRequest struct {
		Reason string `json:"reason"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}

	// TransitionResponse couples the persisted application with the outcome
	// of its notification, which is reported, never rolled back.
	TransitionResponse struct {
		Application      application.Application `json:"application"`
		EmailType        string                  `json:"email_type,omitempty"`
		NotificationSent bool                    `json:"notification_sent"`
	}
)

func (r *LoginRequest) Validate() error {
	r.Email = core.CleanString(r.Email, true /* lower */)
	return core.Validate.Struct(r)
}

func newTransitionResponse(app application.Application, res application.DeliveryResult) TransitionResponse {
	return TransitionResponse{
		Application:      app,
		EmailType:        res.EmailType,
		NotificationSent: res.Delivered,
	}
}
