package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"time"

	"syllabus-stack/internal/models"
	"syllabus-stack/shared/config"
)

type Sender struct {
	config *config.EmailConfig
}

func NewSender(cfg *config.EmailConfig) *Sender {
	return &Sender{
		config: cfg,
	}
}

// reportTemplate renders the study-guide digest. Kept inline so the sender
// works regardless of working directory.
const reportTemplate = `<html><body>
<h2>Syllabus Study Guide - {{len .Topics}} Topics</h2>
{{range .Topics}}
<h3>{{.Topic.Title}}</h3>
<p>{{.Topic.Description}}</p>
{{if .Videos}}<ul>
{{range .Videos}}<li><a href="{{.URL}}">{{.Title}}</a> ({{.Duration}}, {{.Views}} views)</li>
{{end}}</ul>{{end}}
{{end}}
</body></html>`

// SendReport emails a digest of the enriched topics.
func (s *Sender) SendReport(topics []models.EnrichedTopic) error {
	if len(topics) == 0 {
		return nil // Nothing to report
	}

	subject := fmt.Sprintf("Syllabus Study Guide - %d Topics (%s)",
		len(topics), time.Now().Format("Jan 2, 2006"))

	body, err := s.generateEmailBody(topics)
	if err != nil {
		return fmt.Errorf("failed to generate email body: %w", err)
	}

	return s.sendViaSMTP(subject, body)
}

func (s *Sender) sendViaSMTP(subject, body string) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.SMTPServer)

	to := []string{s.config.ToEmail}
	msg := []byte(fmt.Sprintf(`To: %s
From: %s
Subject: %s
MIME-Version: 1.0
Content-Type: text/html; charset=UTF-8

%s`, s.config.ToEmail, s.config.FromEmail, subject, body))

	addr := fmt.Sprintf("%s:%d", s.config.SMTPServer, s.config.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.FromEmail, to, msg)
}

func (s *Sender) generateEmailBody(topics []models.EnrichedTopic) (string, error) {
	tmpl, err := template.New("report").Parse(reportTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Topics []models.EnrichedTopic }{topics}); err != nil {
		return "", err
	}

	return buf.String(), nil
}
