package services

import (
	"fmt"
	"net/smtp"
	"strings"

	"traveldesk/internal/config"
	"traveldesk/internal/logger"
	"traveldesk/internal/models"
)

// smtpNotifier sends notification email over SMTP. Every send runs in its
// own goroutine and failures are only logged: notification is best-effort
// and never blocks or fails the request that triggered it.
type smtpNotifier struct {
	host     string
	port     string
	username string
	password string
	from     string
	appURL   string
}

// NewSMTPNotifier creates a Notifier backed by the configured SMTP server.
func NewSMTPNotifier(cfg *config.Config) Notifier {
	return &smtpNotifier{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
		appURL:   cfg.AppURL,
	}
}

func (n *smtpNotifier) configured() bool {
	return n.host != "" && n.username != "" && n.password != ""
}

// NotifyStatusChanged emails the request owner about an approval or
// cancellation decision.
func (n *smtpNotifier) NotifyStatusChanged(user *models.User, request *models.TravelRequest, oldStatus models.TravelRequestStatus) {
	subject := "Travel request status updated"
	body := fmt.Sprintf(
		"Hello, %s!\n\n"+
			"The status of your travel request has been updated.\n\n"+
			"Destination: %s\n"+
			"Previous status: %s\n"+
			"New status: %s\n"+
			"Departure: %s\n"+
			"Return: %s\n\n"+
			"View it at %s\n",
		user.Name,
		request.Destination,
		oldStatus,
		request.Status,
		request.DepartureDate.Format("2006-01-02"),
		request.ReturnDate.Format("2006-01-02"),
		n.appURL,
	)

	go n.send(user.Email, subject, body)
}

// SendPasswordReset emails a password reset link.
func (n *smtpNotifier) SendPasswordReset(user *models.User, token string) {
	subject := "Reset your password"
	resetLink := fmt.Sprintf("%s/reset-password?token=%s", n.appURL, token)
	body := fmt.Sprintf(
		"Hello, %s!\n\n"+
			"A password reset was requested for your account. The link below is valid for one hour:\n\n"+
			"%s\n\n"+
			"If you did not request this, you can ignore this email.\n",
		user.Name,
		resetLink,
	)

	go n.send(user.Email, subject, body)
}

func (n *smtpNotifier) send(to, subject, body string) {
	if !n.configured() {
		logger.Get().Infow("SMTP not configured, skipping notification email",
			"to", to,
			"subject", subject,
		)
		return
	}

	msg := strings.Join([]string{
		"From: " + n.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n")

	addr := n.host + ":" + n.port
	auth := smtp.PlainAuth("", n.username, n.password, n.host)
	if err := smtp.SendMail(addr, auth, n.from, []string{to}, []byte(msg)); err != nil {
		logger.Get().Errorw("failed to send notification email",
			"error", err,
			"to", to,
			"subject", subject,
		)
	}
}

// noopNotifier drops all notifications. Used in tests.
type noopNotifier struct{}

// NewNoopNotifier creates a Notifier that does nothing.
func NewNoopNotifier() Notifier { return noopNotifier{} }

func (noopNotifier) NotifyStatusChanged(*models.User, *models.TravelRequest, models.TravelRequestStatus) {
}

func (noopNotifier) SendPasswordReset(*models.User, string) {}
