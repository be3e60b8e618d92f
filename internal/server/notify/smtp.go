package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"gopkg.in/gomail.v2"
)

//go:embed templates/otp.html
var templatesFS embed.FS

var otpTemplate = template.Must(template.ParseFS(templatesFS, "templates/otp.html"))

const otpSubject = "Your password reset code"

type SMTPOptions struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	Validity time.Duration
}

type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPNotifier mails the code as an HTML message with a plain-text
// alternative.
type SMTPNotifier struct {
	sender   mailSender
	from     string
	validity time.Duration
}

func NewSMTPNotifier(opts SMTPOptions) (*SMTPNotifier, error) {
	if opts.Host == "" || opts.From == "" {
		return nil, fmt.Errorf("smtp notifier: host and sender are required")
	}
	return &SMTPNotifier{
		sender:   gomail.NewDialer(opts.Host, opts.Port, opts.User, opts.Password),
		from:     opts.From,
		validity: opts.Validity,
	}, nil
}

func (n *SMTPNotifier) Send(ctx context.Context, to, code string) error {
	m, err := n.message(to, code)
	if err != nil {
		return err
	}

	// gomail has no context support; stop waiting once ctx is done.
	done := make(chan error, 1)
	go func() { done <- n.sender.DialAndSend(m) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (n *SMTPNotifier) message(to, code string) (*gomail.Message, error) {
	minutes := int(n.validity.Minutes())
	var html bytes.Buffer
	if err := otpTemplate.Execute(&html, struct {
		Code    string
		Minutes int
	}{code, minutes}); err != nil {
		return nil, fmt.Errorf("render otp mail: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", otpSubject)
	m.SetBody("text/plain", fmt.Sprintf("Your password reset code is %s. It expires in %d minutes.", code, minutes))
	m.AddAlternative("text/html", html.String())
	return m, nil
}
