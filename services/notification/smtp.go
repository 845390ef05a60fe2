package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"voicedesk/config"
	"voicedesk/models"
	"voicedesk/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SMTPNotificationService delivers booking messages over plain SMTP.
type SMTPNotificationService struct {
	host       string
	port       int
	user       string
	password   string
	from       string
	adminEmail string
}

// NewSMTPNotificationService builds the service from AppConfig. It returns an
// error when the SMTP transport is not configured; callers should disable the
// notification integration and leave the rest of the system running.
func NewSMTPNotificationService() (*SMTPNotificationService, error) {
	cfg := config.AppConfig
	if cfg.SMTPHost == "" || cfg.FromEmail == "" {
		return nil, fmt.Errorf("notification integration not configured: SMTP_HOST and FROM_EMAIL are required")
	}
	return &SMTPNotificationService{
		host:       cfg.SMTPHost,
		port:       cfg.SMTPPort,
		user:       cfg.SMTPUser,
		password:   cfg.SMTPPassword,
		from:       cfg.FromEmail,
		adminEmail: cfg.AdminEmail,
	}, nil
}

func (s *SMTPNotificationService) SendBookingConfirmation(ctx context.Context, booking *models.Booking) models.NotificationResult {
	subject, body := confirmationMessage(booking)
	return s.deliver(ctx, booking.Email, subject, body)
}

func (s *SMTPNotificationService) SendBookingUpdate(ctx context.Context, booking *models.Booking) models.NotificationResult {
	subject, body := updateMessage(booking)
	return s.deliver(ctx, booking.Email, subject, body)
}

func (s *SMTPNotificationService) SendCancellationNotification(ctx context.Context, booking *models.Booking) models.NotificationResult {
	subject, body := cancellationMessage(booking)
	return s.deliver(ctx, booking.Email, subject, body)
}

// deliver sends the message to the recipient with a copy to the admin
// address. Transport failures come back in the result, never as an error.
func (s *SMTPNotificationService) deliver(ctx context.Context, to, subject, body string) models.NotificationResult {
	if err := ctx.Err(); err != nil {
		return models.NotificationResult{Success: false, Error: err.Error()}
	}

	recipients := []string{to}
	if s.adminEmail != "" && !strings.EqualFold(s.adminEmail, to) {
		recipients = append(recipients, s.adminEmail)
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.New().String(), s.host)
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Message-ID: %s\r\n", messageID)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	var auth smtp.Auth
	if s.user != "" {
		auth = smtp.PlainAuth("", s.user, s.password, s.host)
	}

	if err := smtp.SendMail(addr, auth, s.from, recipients, []byte(msg.String())); err != nil {
		utils.GetLogger().Warn("email delivery failed",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err),
		)
		return models.NotificationResult{Success: false, Error: err.Error()}
	}

	return models.NotificationResult{Success: true, MessageID: messageID}
}
