package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/models"
)

var (
	// ErrNoMatches is returned when there is nothing worth sending.
	ErrNoMatches = errors.New("no matching candidates")
	// ErrNotifierDisabled is returned when SMTP is not configured.
	ErrNotifierDisabled = errors.New("notifier disabled")
)

// Shortlist is the payload of one notification.
type Shortlist struct {
	Recipient   string
	CompanyName string
	JobRole     string
	Matches     []models.MatchResult
}

type Notifier interface {
	Notify(ctx context.Context, shortlist Shortlist) error
}

type mailSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type emailNotifier struct {
	sender mailSender
	from   string
	log    *zap.Logger
}

func NewEmailNotifier(settings SMTPSettings, log *zap.Logger) (Notifier, error) {
	opts := []mail.Option{
		mail.WithPort(settings.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if settings.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(settings.Username),
			mail.WithPassword(settings.Password),
		)
	}

	client, err := mail.NewClient(settings.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}

	return newEmailNotifier(client, settings.From, log), nil
}

func newEmailNotifier(sender mailSender, from string, log *zap.Logger) *emailNotifier {
	return &emailNotifier{
		sender: sender,
		from:   from,
		log:    log.Named("notifier"),
	}
}

// Notify implements Notifier. At most NotificationLimit entries are rendered.
func (n *emailNotifier) Notify(ctx context.Context, shortlist Shortlist) error {
	if len(shortlist.Matches) == 0 {
		return ErrNoMatches
	}

	msg, err := n.buildMessage(shortlist)
	if err != nil {
		return err
	}

	if err := n.sender.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send shortlist email: %w", err)
	}

	n.log.Info("shortlist email sent",
		zap.String("company", shortlist.CompanyName),
		zap.Int("candidates", min(len(shortlist.Matches), NotificationLimit)),
	)
	return nil
}

func (n *emailNotifier) buildMessage(shortlist Shortlist) (*mail.Msg, error) {
	html, text, err := renderShortlist(shortlist)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if err := msg.From(n.from); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(shortlist.Recipient); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(fmt.Sprintf("Top candidates for %s at %s", shortlist.JobRole, shortlist.CompanyName))
	msg.SetBodyString(mail.TypeTextHTML, html)
	msg.AddAlternativeString(mail.TypeTextPlain, text)

	return msg, nil
}

type disabledNotifier struct{}

// NewDisabledNotifier is used when SMTP is switched off.
func NewDisabledNotifier() Notifier {
	return disabledNotifier{}
}

func (disabledNotifier) Notify(context.Context, Shortlist) error {
	return ErrNotifierDisabled
}

// renderShortlist returns the HTML and plain-text bodies.
func renderShortlist(shortlist Shortlist) (string, string, error) {
	data := emailData{
		CompanyName: shortlist.CompanyName,
		JobRole:     shortlist.JobRole,
		Matches:     TopMatches(shortlist.Matches, NotificationLimit),
	}

	var html, text bytes.Buffer
	if err := shortlistHTML.Execute(&html, data); err != nil {
		return "", "", fmt.Errorf("failed to render email: %w", err)
	}
	if err := shortlistText.Execute(&text, data); err != nil {
		return "", "", fmt.Errorf("failed to render email: %w", err)
	}
	return html.String(), text.String(), nil
}

type emailData struct {
	CompanyName string
	JobRole     string
	Matches     []models.MatchResult
}

var shortlistHTML = htmltemplate.Must(htmltemplate.New("shortlist").Funcs(htmltemplate.FuncMap{
	"inc":  inc,
	"join": joinSkills,
}).Parse(`<html>
<body>
<h2>Top candidates for {{.JobRole}}</h2>
<p>Hello {{.CompanyName}}, these candidates best match your job description.</p>
<table border="1" cellpadding="6" cellspacing="0">
<tr><th>#</th><th>Candidate</th><th>Score</th><th>Matching skills</th><th>Why</th><th>Resume</th></tr>
{{range $i, $m := .Matches}}<tr>
<td>{{inc $i}}</td>
<td>{{if $m.CandidateName}}{{$m.CandidateName}}{{else}}{{$m.CandidateID}}{{end}}<br>{{$m.CandidateID}}</td>
<td>{{$m.Score}}</td>
<td>{{join $m.MatchedQualifiers}}</td>
<td>{{$m.Explanation}}</td>
<td>{{if $m.ResumeURL}}<a href="{{$m.ResumeURL}}">View</a>{{end}}</td>
</tr>
{{end}}</table>
</body>
</html>`))

var shortlistText = texttemplate.Must(texttemplate.New("shortlist").Funcs(texttemplate.FuncMap{
	"inc":  inc,
	"join": joinSkills,
}).Parse(`Top candidates for {{.JobRole}} at {{.CompanyName}}
{{range $i, $m := .Matches}}
{{inc $i}}. {{if $m.CandidateName}}{{$m.CandidateName}}{{else}}{{$m.CandidateID}}{{end}} <{{$m.CandidateID}}> score {{$m.Score}}
   Skills: {{join $m.MatchedQualifiers}}
   {{$m.Explanation}}
{{- if $m.ResumeURL}}
   Resume: {{$m.ResumeURL}}{{end}}
{{end}}`))

func inc(i int) int { return i + 1 }

func joinSkills(skills []string) string {
	if len(skills) == 0 {
		return "-"
	}
	return strings.Join(skills, ", ")
}
