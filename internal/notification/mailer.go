package notification

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/stanstork/stratum-spaces/internal/config"
	"gopkg.in/gomail.v2"
)

// InviteMailer delivers the "you've been invited to a space" email.
type InviteMailer interface {
	SendInvite(msg InviteEmail) error
}

// InviteEmail is everything the email needs. It never carries the sealed payload.
type InviteEmail struct {
	To         string
	SpaceTitle string
	Title      string
	Role       string
	InviteURL  string
	Protected  bool
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPInviteMailer sends invite emails through an SMTP relay.
type SMTPInviteMailer struct {
	from   string
	dialer sender
}

func NewSMTPInviteMailer(cfg config.EmailConfig) (*SMTPInviteMailer, error) {
	if strings.TrimSpace(cfg.SMTPHost) == "" {
		return nil, errors.New("smtp_host is required")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, errors.New("email from address is required")
	}
	if cfg.SMTPPort == 0 {
		cfg.SMTPPort = 587
	}
	return &SMTPInviteMailer{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password),
	}, nil
}

func (m *SMTPInviteMailer) SendInvite(msg InviteEmail) error {
	if err := m.dialer.DialAndSend(buildInviteMessage(m.from, msg)); err != nil {
		return errors.Wrapf(err, "send invite to %s", msg.To)
	}
	return nil
}

func buildInviteMessage(from string, msg InviteEmail) *gomail.Message {
	space := msg.SpaceTitle
	if space == "" {
		space = "a space"
	}

	body := strings.Builder{}
	body.WriteString("Hello,\n\n")
	body.WriteString(fmt.Sprintf("You've been invited to join %s on Stratum as %s.\n", space, articled(msg.Role)))
	if msg.Title != "" {
		body.WriteString(fmt.Sprintf("\n  \"%s\"\n", msg.Title))
	}
	body.WriteString("\nOpen the link below to accept the invitation:\n\n")
	body.WriteString(msg.InviteURL + "\n\n")
	if msg.Protected {
		body.WriteString("This invite is protected by a passphrase.\n\n")
	}
	body.WriteString("If you did not expect this email, you can ignore it.\n\n")
	body.WriteString("Thanks,\nThe Stratum Team\n")

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", fmt.Sprintf("You have been invited to join %s", space))
	m.SetBody("text/plain", body.String())
	return m
}

func articled(role string) string {
	if role == "" {
		return "a member"
	}
	switch role[0] {
	case 'a', 'e', 'i', 'o', 'u':
		return "an " + role
	}
	return "a " + role
}
