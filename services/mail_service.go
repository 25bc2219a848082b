package services

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"net/mail"
	"net/url"
	"text/template"

	"github.com/dajohi/goemail"
)

// Mailer dispatches a notification email rendered from a named template.
type Mailer interface {
	Send(recipient, subject, templateName string, data any) error
}

var mailTemplates = map[string]*template.Template{
	"password-reset": template.Must(
		template.New("passwordReset").Parse(passwordResetText)),
}

const passwordResetText = `Hi {{.Name}},

You requested a password reset for your account. Visit the link below within
the next hour to choose a new password:

{{.ResetURL}}

If you did not request this, you can safely ignore this email.
`

// SMTPMailer sends mail through an SMTP server from a preset address. When
// the SMTP settings are absent the mailer is disabled and every send fails,
// which the reset flow surfaces as a notification failure rather than
// silently dropping the email.
type SMTPMailer struct {
	smtp        *goemail.SMTP
	mailName    string
	mailAddress string
	disabled    bool
}

func NewSMTPMailer(host, user, password, fromAddress string, skipVerify bool) (*SMTPMailer, error) {
	if host == "" || user == "" || password == "" {
		return &SMTPMailer{disabled: true}, nil
	}

	u, err := url.Parse(fmt.Sprintf("smtps://%s:%s@%s", user, password, host))
	if err != nil {
		return nil, err
	}
	a, err := mail.ParseAddress(fromAddress)
	if err != nil {
		return nil, err
	}

	tlsConfig := &tls.Config{}
	if skipVerify {
		tlsConfig.InsecureSkipVerify = true
	}
	client, err := goemail.NewSMTP(u.String(), tlsConfig)
	if err != nil {
		return nil, err
	}

	return &SMTPMailer{
		smtp:        client,
		mailName:    a.Name,
		mailAddress: a.Address,
	}, nil
}

func (m *SMTPMailer) Send(recipient, subject, templateName string, data any) error {
	if m.disabled {
		return fmt.Errorf("mail server is disabled")
	}
	tmpl, ok := mailTemplates[templateName]
	if !ok {
		return fmt.Errorf("unknown mail template %q", templateName)
	}
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return err
	}

	msg := goemail.NewMessage(m.mailAddress, subject, body.String())
	msg.SetName(m.mailName)
	msg.AddBCC(recipient)
	return m.smtp.Send(msg)
}
