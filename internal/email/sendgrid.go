// Package email sends transactional mail through SendGrid.
package email

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

var (
	host     = "https://api.sendgrid.com"
	endpoint = "/v3/mail/send"
)

// Service sends check-in related emails via the SendGrid v3 API.
type Service struct {
	key        string
	from       *sgmail.Email
	subjPrefix string
}

// NewService creates a SendGrid-backed email service.
func NewService(key, appName, fromEmail string) *Service {
	return &Service{
		key:        key,
		from:       sgmail.NewEmail(appName, fromEmail),
		subjPrefix: "[" + appName + "] ",
	}
}

// SendCheckInConfirmation emails a client that their check-in was received.
func (s *Service) SendCheckInConfirmation(ctx context.Context, toName, toEmail string, score int) error {
	if toEmail == "" {
		return fmt.Errorf("no recipient address for check-in confirmation")
	}

	p := sgmail.NewPersonalization()
	p.Subject = s.subjPrefix + "Check-in received"
	p.AddTos(sgmail.NewEmail(toName, toEmail))

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)

	text := fmt.Sprintf("Hi %s,\n\nWe received your check-in. Your score this week: %d/100.\n\nYour coach will review it shortly.", toName, score)
	html := fmt.Sprintf("<p>Hi %s,</p><p>We received your check-in. Your score this week: <strong>%d/100</strong>.</p><p>Your coach will review it shortly.</p>", toName, score)
	m.AddContent(
		sgmail.NewContent("text/plain", text),
		sgmail.NewContent("text/html", html),
	)

	req := sendgrid.GetRequest(s.key, endpoint, host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return err
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid rejected check-in confirmation: status %d", res.StatusCode)
	}
	return nil
}
