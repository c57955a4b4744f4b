package services

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/hackfest-dev/hackfest-server/config"
)

type EmailService struct {
	cfg *config.Config
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{cfg: cfg}
}

var (
	welcomeTemplate = template.Must(template.New("welcome").Parse(`
<p>Hi {{.FirstName}},</p>
<p>Welcome to HackFest! Your account is ready. Browse the upcoming
hackathons and find a team at <a href="{{.PublicURL}}">{{.PublicURL}}</a>.</p>`))

	teamInviteTemplate = template.Must(template.New("team_invite").Parse(`
<p>You have been invited to join team <strong>{{.TeamName}}</strong>.</p>
<p>Open your invitations at <a href="{{.PublicURL}}/invitations">{{.PublicURL}}/invitations</a>
to accept or decline.</p>`))

	submissionStatusTemplate = template.Must(template.New("submission_status").Parse(`
<p>Project <strong>{{.ProjectName}}</strong> changed status: {{.Status}}.</p>
<p>See the details at <a href="{{.PublicURL}}">{{.PublicURL}}</a>.</p>`))
)

func (s *EmailService) SendWelcomeEmail(to, firstName string) error {
	body, err := renderTemplate(welcomeTemplate, struct {
		FirstName string
		PublicURL string
	}{firstName, s.cfg.PublicURL})
	if err != nil {
		return err
	}
	return s.send([]string{to}, "Welcome to HackFest", body)
}

func (s *EmailService) SendTeamInviteEmail(to, teamName string) error {
	body, err := renderTemplate(teamInviteTemplate, struct {
		TeamName  string
		PublicURL string
	}{teamName, s.cfg.PublicURL})
	if err != nil {
		return err
	}
	return s.send([]string{to}, fmt.Sprintf("Invitation to team %s", teamName), body)
}

func (s *EmailService) SendSubmissionStatusEmail(to, projectName, status string) error {
	body, err := renderTemplate(submissionStatusTemplate, struct {
		ProjectName string
		Status      string
		PublicURL   string
	}{projectName, status, s.cfg.PublicURL})
	if err != nil {
		return err
	}
	return s.send([]string{to}, fmt.Sprintf("Project %s: %s", projectName, status), body)
}

func renderTemplate(t *template.Template, data interface{}) (string, error) {
	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return "", fmt.Errorf("failed to render email template %s: %w", t.Name(), err)
	}
	return body.String(), nil
}

func (s *EmailService) send(to []string, subject, body string) error {
	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)

	msg := []byte("To: " + to[0] + "\r\n" +
		"From: " + s.cfg.SMTPFrom + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\r\n" +
		"\r\n" +
		body + "\r\n")

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	tlsconfig := &tls.Config{
		ServerName: s.cfg.SMTPHost,
	}

	var client *smtp.Client
	if s.cfg.SMTPPort == 465 {
		// Implicit TLS
		conn, err := tls.Dial("tcp", addr, tlsconfig)
		if err != nil {
			return fmt.Errorf("smtp tls dial failed: %w", err)
		}
		defer conn.Close()
		client, err = smtp.NewClient(conn, s.cfg.SMTPHost)
		if err != nil {
			return fmt.Errorf("smtp client creation failed: %w", err)
		}
	} else {
		// STARTTLS (usually port 587)
		c, err := smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("smtp dial failed: %w", err)
		}
		client = c
		if err = client.StartTLS(tlsconfig); err != nil {
			client.Close()
			return fmt.Errorf("smtp STARTTLS failed: %w", err)
		}
	}
	defer client.Quit()

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth failed: %w", err)
	}
	if err := client.Mail(s.cfg.SMTPFrom); err != nil {
		return fmt.Errorf("smtp MAIL FROM failed: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp RCPT TO failed: %w", err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA failed: %w", err)
	}
	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("smtp write failed: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("smtp close failed: %w", err)
	}

	return nil
}
