package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"

	"github.com/wneessen/go-mail"

	domain "github.com/donaldgifford/marketplace-monitor/pkg/types"
)

// DefaultSMTPPort is used when smtp_port is not set.
const DefaultSMTPPort = 587

// ErrNoRecipients is returned when an email is sent to a user without
// addresses.
var ErrNoRecipients = errors.New("user has no email address")

// EmailConfig holds SMTP settings for an Email channel.
type EmailConfig struct {
	Server   string
	Port     int
	Username string
	Password string
	// From defaults to Username.
	From string
}

type mailSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Email sends each notification as a multipart plain text and HTML email
// to the addresses of the user.
type Email struct {
	base
	cfg    EmailConfig
	dialer func(EmailConfig) (mailSender, error)
}

// NewEmail creates an Email channel.
func NewEmail(name string, cfg EmailConfig, opts ...Option) *Email {
	o := newOptions(opts)
	if cfg.Port == 0 {
		cfg.Port = DefaultSMTPPort
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &Email{
		base:   newBase(name, "email", o),
		cfg:    cfg,
		dialer: dialSMTP,
	}
}

func dialSMTP(cfg EmailConfig) (mailSender, error) {
	return mail.NewClient(cfg.Server,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
}

// HasRequiredFields reports whether the SMTP server and credentials are set.
func (e *Email) HasRequiredFields() bool {
	return e.cfg.Server != "" && e.cfg.Username != "" && e.cfg.Password != ""
}

// Send emails title and message to every address of to.
func (e *Email) Send(ctx context.Context, to *domain.User, title, message string) error {
	if !e.HasRequiredFields() {
		return Permanent(ErrMissingFields)
	}
	if to == nil || len(to.Email) == 0 {
		return Permanent(ErrNoRecipients)
	}

	msg, err := e.compose(to, title, message)
	if err != nil {
		return Permanent(err)
	}

	client, err := e.dialer(e.cfg)
	if err != nil {
		return fmt.Errorf("creating smtp client for %s: %w", e.cfg.Server, err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email via %s: %w", e.cfg.Server, err)
	}
	return nil
}

func (e *Email) compose(to *domain.User, title, message string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(e.cfg.From); err != nil {
		return nil, fmt.Errorf("setting sender %q: %w", e.cfg.From, err)
	}
	if err := msg.To(to.Email...); err != nil {
		return nil, fmt.Errorf("setting recipients of %s: %w", to.Name, err)
	}
	msg.Subject(title)
	msg.SetBodyString(mail.TypeTextPlain, message)

	html, err := renderHTML(title, message)
	if err != nil {
		return nil, err
	}
	msg.AddAlternativeString(mail.TypeTextHTML, html)
	return msg, nil
}

var emailTemplate = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif;">
<h2>{{ .Title }}</h2>
{{- range .Listings }}
<div style="margin-bottom: 1.5em;">
{{- range $i, $line := . }}
{{- if $line.URL }}
<a href="{{ $line.URL }}">{{ $line.URL }}</a><br>
{{- else if eq $i 0 }}
<strong>{{ $line.Text }}</strong><br>
{{- else }}
{{ $line.Text }}<br>
{{- end }}
{{- end }}
</div>
{{- end }}
</body>
</html>
`))

type emailLine struct {
	Text string
	URL  string
}

func renderHTML(title, message string) (string, error) {
	data := struct {
		Title    string
		Listings [][]emailLine
	}{Title: title}

	for _, block := range splitListings(message) {
		lines := make([]emailLine, 0, len(block))
		for _, l := range block {
			if isURL(l) {
				lines = append(lines, emailLine{URL: l})
			} else {
				lines = append(lines, emailLine{Text: l})
			}
		}
		data.Listings = append(data.Listings, lines)
	}

	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering email: %w", err)
	}
	return buf.String(), nil
}
