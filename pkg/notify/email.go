package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"
)

// EmailConfig configures the SMTP alert channel.
type EmailConfig struct {
	Host       string
	Port       int
	From       string
	Password   string
	Recipients []string
}

// EmailChannel delivers alerts by email over implicit TLS (SMTPS). The
// sender address doubles as the SMTP username.
type EmailChannel struct {
	config EmailConfig
}

// NewEmailChannel creates the email channel. The caller only constructs it
// when host, sender, and at least one recipient are configured.
func NewEmailChannel(config EmailConfig) *EmailChannel {
	return &EmailChannel{config: config}
}

// Name identifies the channel.
func (c *EmailChannel) Name() string { return "email" }

// Send delivers the alert to every configured recipient in one message.
func (c *EmailChannel) Send(ctx context.Context, alert Alert) error {
	addr := fmt.Sprintf("%s:%d", c.config.Host, c.config.Port)

	dialer := &tls.Dialer{Config: &tls.Config{ServerName: c.config.Host}}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server %s: %w", addr, err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, c.config.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Quit()

	auth := smtp.PlainAuth("", c.config.From, c.config.Password, c.config.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}

	if err := client.Mail(c.config.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, rcpt := range c.config.Recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("failed to add recipient %q: %w", rcpt, err)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open message body: %w", err)
	}
	if _, err := writer.Write([]byte(buildMessage(c.config.From, c.config.Recipients, alert))); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	return writer.Close()
}

// buildMessage renders the alert as an HTML email.
func buildMessage(from string, recipients []string, alert Alert) string {
	subject := fmt.Sprintf("[%s] Budget alert for %s", alert.Level, alert.ServiceKey)

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(recipients, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "<h2>%s budget alert</h2>", alert.Level)
	fmt.Fprintf(&b, "<p>Service <b>%s</b> (%s) has used <b>%.1f%%</b> of its monthly budget.</p>",
		alert.ServiceKey, alert.ResourceID, alert.UsagePct)
	b.WriteString("<ul>")
	fmt.Fprintf(&b, "<li>Monthly budget: %.2f</li>", alert.Budget)
	fmt.Fprintf(&b, "<li>Effective cost: %.2f</li>", alert.EffectiveCost)
	fmt.Fprintf(&b, "<li>Action taken: %s</li>", alert.Action)
	fmt.Fprintf(&b, "<li>Raised at: %s</li>", alert.Timestamp.UTC().Format("2006-01-02 15:04:05 UTC"))
	b.WriteString("</ul>")

	return b.String()
}
