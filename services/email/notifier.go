package emailsvc

import (
	"net/mail"
	"time"

	"github.com/shule-edu/shule/core"
	"github.com/shule-edu/shule/core/account"
	"github.com/shule-edu/shule/core/space"
)

type (
	credentialsData struct {
		GivenName string
		Email     string
		Password  string
		Role      string
	}

	workAssignedData struct {
		GivenName   string
		Title       string
		Subject     string
		Instructor  string
		DueAt       string
		Description string
	}
)

// Notifier turns domain notifications into templated emails. Delivery runs
// synchronously so callers can report whether the email actually went out.
type Notifier struct {
	mail core.EmailService
}

var (
	_ account.Notifier = (*Notifier)(nil)
	_ space.Notifier   = (*Notifier)(nil)
)

func NewNotifier(mail core.EmailService) *Notifier {
	return &Notifier{mail: mail}
}

func (n *Notifier) SendCredentials(to mail.Address, givenName, email, password string, role account.Role) bool {
	msg := &core.EmailMessage{
		To:           []mail.Address{to},
		Subject:      "Your account is ready",
		TemplateName: "account-credentials",
		TemplateData: credentialsData{
			GivenName: givenName,
			Email:     email,
			Password:  password,
			Role:      role.String(),
		},
	}
	return n.mail.SendMessage(msg)
}

func (n *Notifier) SendWorkAssigned(to mail.Address, givenName, title, subject, instructor string, dueAt time.Time, description string) bool {
	msg := &core.EmailMessage{
		To:           []mail.Address{to},
		Subject:      "New work assigned: " + title,
		TemplateName: "work-assigned",
		TemplateData: workAssignedData{
			GivenName:   givenName,
			Title:       title,
			Subject:     subject,
			Instructor:  instructor,
			DueAt:       dueAt.Format("Mon, 02 Jan 2006 15:04 MST"),
			Description: description,
		},
	}
	return n.mail.SendMessage(msg)
}
