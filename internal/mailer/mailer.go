package mailer

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"

	"github.com/jrmmllrs/test-app-backend/internal/config"
	"github.com/jrmmllrs/test-app-backend/internal/model"
)

// Mailer sends transactional email over SMTP. With no SMTP host configured
// it runs disabled: sends log and succeed, so local development never needs
// a mail server.
type Mailer struct {
	cfg    *config.Config
	dialer *gomail.Dialer
}

// New creates a Mailer from configuration.
func New(cfg *config.Config) *Mailer {
	m := &Mailer{cfg: cfg}
	if cfg.SMTPHost != "" {
		m.dialer = gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	}
	return m
}

// InvitationLink builds the frontend deep link a candidate follows to
// resolve an invitation token.
func (m *Mailer) InvitationLink(token string) string {
	return fmt.Sprintf("%s/#/invitation/%s", m.cfg.FrontendURL, token)
}

// SendInvitation emails a candidate their invitation deep link.
func (m *Mailer) SendInvitation(inv *model.Invitation, testTitle string) error {
	link := m.InvitationLink(inv.Token)
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>You have been invited to take the assessment <strong>%s</strong>.</p>
<p><a href="%s">Open your invitation</a></p>
<p>This link expires on %s.</p>`,
		inv.CandidateName, testTitle, link, inv.ExpiresAt.Format("Jan 2, 2006 15:04 MST"))

	return m.send(inv.CandidateEmail, fmt.Sprintf("Invitation: %s", testTitle), body)
}

// SendReminder re-sends the invitation deep link.
func (m *Mailer) SendReminder(inv *model.Invitation, testTitle string) error {
	link := m.InvitationLink(inv.Token)
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>This is a reminder that your assessment <strong>%s</strong> is still waiting.</p>
<p><a href="%s">Open your invitation</a></p>
<p>This link expires on %s.</p>`,
		inv.CandidateName, testTitle, link, inv.ExpiresAt.Format("Jan 2, 2006 15:04 MST"))

	return m.send(inv.CandidateEmail, fmt.Sprintf("Reminder: %s", testTitle), body)
}

// SendCompletion emails a candidate their graded outcome.
func (m *Mailer) SendCompletion(n model.CompletionNotice) error {
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>Thank you for completing <strong>%s</strong>.</p>
<p>Your score: <strong>%d%%</strong> (%s)</p>`,
		n.CandidateName, n.TestTitle, n.Score, n.Remarks)

	return m.send(n.CandidateEmail, fmt.Sprintf("Your results: %s", n.TestTitle), body)
}

func (m *Mailer) send(to, subject, htmlBody string) error {
	if m.dialer == nil {
		log.Debug().Str("to", to).Str("subject", subject).Msg("email delivery disabled, skipping send")
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.EmailFrom)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	return nil
}
