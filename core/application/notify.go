package application

import (
	"fmt"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/qisedu/udahili/core"
	"github.com/qisedu/udahili/core/applicant"
)

// Email types map 1:1 to template names under assets/templates/email.
const (
	EmailTypeSubmitted   = "application_submitted"
	EmailTypeUnderReview = "application_under_review"
	EmailTypeAccepted    = "application_accepted"
	EmailTypeRejected    = "application_rejected"
)

var (
	statusEmailTypes = map[Status]string{
		StatusSubmitted:   EmailTypeSubmitted,
		StatusUnderReview: EmailTypeUnderReview,
		StatusApproved:    EmailTypeAccepted,
		StatusRejected:    EmailTypeRejected,
	}

	emailSubjects = map[string]string{
		EmailTypeSubmitted:   "We received your application",
		EmailTypeUnderReview: "Your application is under review",
		EmailTypeAccepted:    "Admission decision: accepted",
		EmailTypeRejected:    "Admission decision",
	}
)

type (
	// TemplateData carries the fields rendered into applicant-facing emails.
	TemplateData struct {
		Name      string
		Reference string
		Grade     string
		Stream    string
		Intake    string
		Reason    string
	}

	// DeliveryResult reports the outcome of notifying one status transition.
	// A failed applicant delivery and a failed internal acknowledgement are
	// distinct: the latter never undoes or blocks the former.
	DeliveryResult struct {
		EmailType    string `json:"email_type,omitempty"`
		Delivered    bool   `json:"delivered"`
		ApplicantErr error  `json:"-"`
		AdminAckErr  error  `json:"-"`
	}

	// Notifier maps a persisted status transition to at most one
	// applicant-facing email plus one internal admin acknowledgement.
	// It does not deduplicate: callers invoke it exactly once per
	// successful transition.
	Notifier struct {
		mailSvc   core.EmailService
		adminAddr mail.Address
		log       core.Logger
	}
)

func NewNotifier(conf *core.Config, mailSvc core.EmailService, logger core.Logger) *Notifier {
	return &Notifier{
		mailSvc:   mailSvc,
		adminAddr: conf.AdmissionsOfficeAddr(),
		log:       logger,
	}
}

// Notify dispatches the email matching the application's (just persisted)
// status, then a short acknowledgement to the admissions office.
func (n *Notifier) Notify(app Application, apl applicant.Applicant) DeliveryResult {
	var res DeliveryResult

	emailType, ok := statusEmailTypes[app.Status]
	if !ok {
		return res // no mail defined for this status
	}
	res.EmailType = emailType

	if apl.Email == "" {
		// placeholder applicant with no contact details yet
		n.log.Warn("skipping notification: applicant has no email", map[string]interface{}{
			"application": app.ID, "email_type": emailType,
		})
		return res
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: apl.DisplayName(), Address: apl.Email}},
		Subject:      fmt.Sprintf("%s (%s)", emailSubjects[emailType], apl.Reference.String),
		TemplateName: emailType,
		TemplateData: TemplateData{
			Name:      apl.DisplayName(),
			Reference: apl.Reference.String,
			Grade:     app.Grade,
			Stream:    app.Stream,
			Intake:    app.Intake,
			Reason:    app.RejectionReason.String,
		},
	}
	if _, err := n.mailSvc.SendMessage(msg); err != nil {
		res.ApplicantErr = errors.Wrapf(err, "sending %s email", emailType)
		return res
	}
	res.Delivered = true

	// internal acknowledgement; its failure never rolls back the delivery above
	ack := &core.EmailMessage{
		To:      []mail.Address{n.adminAddr},
		Subject: fmt.Sprintf("[%s] %s sent", emailType, apl.Reference.String),
		BodyStr: fmt.Sprintf(
			"Applicant %s (%s) was notified: %s. Application %s is now %q.",
			apl.DisplayName(), apl.Reference.String, emailSubjects[emailType], app.ID, app.Status,
		),
	}
	if _, err := n.mailSvc.SendMessage(ack); err != nil {
		res.AdminAckErr = errors.Wrap(err, "sending admin acknowledgement")
	}
	return res
}
