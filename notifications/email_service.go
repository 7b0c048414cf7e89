package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/anjiri1684/enrollment_service/directory"
	"github.com/anjiri1684/enrollment_service/logger"
)

const brevoEndpoint = "https://api.brevo.com/v3/smtp/email"

// EmailService sends transactional mail through Brevo. With any credential
// missing it is disabled and every send is skipped.
type EmailService struct {
	APIKey      string
	SenderEmail string
	SenderName  string

	endpoint string
	client   *http.Client
	log      *logger.Logger
}

type brevoPayload struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HTMLContent string              `json:"htmlContent"`
}

func NewEmailService(apiKey, senderEmail, senderName string, log *logger.Logger) *EmailService {
	s := &EmailService{
		APIKey:      apiKey,
		SenderEmail: senderEmail,
		SenderName:  senderName,
		endpoint:    brevoEndpoint,
		client:      &http.Client{Timeout: 10 * time.Second},
		log:         log,
	}
	if !s.Enabled() {
		log.Warn("email service not configured, notifications disabled")
	}
	return s
}

// WithEndpoint points the service at another Brevo-compatible URL.
func (s *EmailService) WithEndpoint(endpoint string) *EmailService {
	s.endpoint = endpoint
	return s
}

func (s *EmailService) Enabled() bool {
	return s.APIKey != "" && s.SenderEmail != "" && s.SenderName != ""
}

func (s *EmailService) EnrollmentConfirmed(ctx context.Context, student directory.Student, course directory.Course) {
	subject := fmt.Sprintf("You're enrolled in %s", course.Title)
	body := fmt.Sprintf(
		"<h1>Enrollment Confirmed</h1><p>Hi %s,</p><p>You are now enrolled in <b>%s</b> (%d credits).</p>",
		student.Name, course.Title, course.Credits,
	)
	s.SendEmail(ctx, student.Name, student.Email, subject, body)
}

func (s *EmailService) CourseCompleted(ctx context.Context, student directory.Student, course directory.Course) {
	subject := fmt.Sprintf("Congratulations on completing %s", course.Title)
	body := fmt.Sprintf(
		"<h1>Course Completed</h1><p>Hi %s,</p><p>You have completed <b>%s</b> and earned %d credits.</p>",
		student.Name, course.Title, course.Credits,
	)
	s.SendEmail(ctx, student.Name, student.Email, subject, body)
}

// SendEmail logs failures instead of returning them.
func (s *EmailService) SendEmail(ctx context.Context, toName, toEmail, subject, htmlContent string) {
	if !s.Enabled() {
		s.log.Debug("email client not configured, skipping send", "to", toEmail)
		return
	}
	if err := s.send(ctx, toEmail, toName, subject, htmlContent); err != nil {
		s.log.Error("failed to send email", "to", toEmail, "subject", subject, "error", err)
		return
	}
	s.log.Info("email sent", "to", toEmail, "subject", subject)
}

func (s *EmailService) send(ctx context.Context, toEmail, toName, subject, htmlContent string) error {
	at := strings.Index(toEmail, "@")
	if at <= 0 {
		return fmt.Errorf("invalid recipient email: %q", toEmail)
	}
	recipientName := toName
	if recipientName == "" {
		recipientName = toEmail[:at]
	}

	payload := brevoPayload{
		Sender:      map[string]string{"name": s.SenderName, "email": s.SenderEmail},
		To:          []map[string]string{{"email": toEmail, "name": recipientName}},
		Subject:     subject,
		HTMLContent: htmlContent,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", s.APIKey)
	req.Header.Set("content-type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("brevo status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return nil
}
