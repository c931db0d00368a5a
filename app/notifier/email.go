package notifier

import (
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/lysyi3m/idea-box/app/cfg"
	"github.com/lysyi3m/idea-box/app/database"
	"github.com/lysyi3m/idea-box/app/moderation"
)

var _ moderation.Notifier = (*EmailNotifier)(nil)

// EmailNotifier alerts the administrator about new submissions over SMTP.
// It is best-effort by contract: callers log failures and move on.
type EmailNotifier struct {
	host     string
	port     string
	username string
	password string
	from     string
	to       string
}

func NewEmailNotifier() *EmailNotifier {
	c := cfg.Get()
	return &EmailNotifier{
		host:     c.SMTPHost,
		port:     c.SMTPPort,
		username: c.SMTPUsername,
		password: c.SMTPPassword,
		from:     c.NotifyFrom,
		to:       c.NotifyEmail,
	}
}

func (n *EmailNotifier) Enabled() bool {
	return n.host != "" && n.to != ""
}

func (n *EmailNotifier) Notify(sub database.Submission) error {
	if !n.Enabled() {
		slog.Debug("Email notifications disabled, skipping", "id", sub.ID)
		return nil
	}

	var auth smtp.Auth
	if n.username != "" {
		auth = smtp.PlainAuth("", n.username, n.password, n.host)
	}

	addr := net.JoinHostPort(n.host, n.port)
	if err := smtp.SendMail(addr, auth, n.from, []string{n.to}, n.buildMessage(sub)); err != nil {
		return fmt.Errorf("failed to send notification email: %w", err)
	}

	slog.Debug("Notification email sent", "id", sub.ID, "to", n.to)
	return nil
}

func (n *EmailNotifier) buildMessage(sub database.Submission) []byte {
	subject := fmt.Sprintf("New Idea Submission #%d", sub.ID)
	if sub.Flagged {
		subject = fmt.Sprintf("⚠️ FLAGGED Submission #%d", sub.ID)
	}

	var body strings.Builder
	body.WriteString("A new idea has been submitted.\n\n")
	fmt.Fprintf(&body, "Submission ID: %d\n", sub.ID)
	fmt.Fprintf(&body, "Submitted at: %s\n", sub.CreatedAt.In(time.Local).Format(time.RFC1123))
	fmt.Fprintf(&body, "IP Address: %s\n", sub.OriginAddress)
	fmt.Fprintf(&body, "User Agent: %s\n", sub.ClientAgent)
	if sub.Flagged {
		fmt.Fprintf(&body, "⚠️ PROFANITY FLAGGED: %s\n", sub.FlaggedTerms)
	}
	fmt.Fprintf(&body, "\nIdea:\n%s\n\n---\n", sub.Text)
	if sub.Flagged {
		body.WriteString("⚠️ This submission contains potentially inappropriate language and requires review.\n")
	} else {
		body.WriteString("Please review this submission to ensure it's appropriate.\n")
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		n.from, n.to, subject, body.String())

	return []byte(msg)
}
