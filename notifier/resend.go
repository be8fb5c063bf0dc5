package notifier

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
)

// emailSender is the part of the Resend client the notifier uses
type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendNotifier delivers plain-text email through Resend. Every send is
// bounded by timeout; errors are logged and reported as false.
type ResendNotifier struct {
	emails  emailSender
	from    string
	timeout time.Duration
}

func NewResendNotifier(apiKey, from string, timeout time.Duration) *ResendNotifier {
	client := resend.NewClient(apiKey)
	return newResendNotifier(client.Emails, from, timeout)
}

func newResendNotifier(emails emailSender, from string, timeout time.Duration) *ResendNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ResendNotifier{emails: emails, from: from, timeout: timeout}
}

func (n *ResendNotifier) Send(ctx context.Context, to, subject, body string) bool {
	if strings.TrimSpace(to) == "" {
		log.Printf("⚠️ Refusing to send %q without a recipient", subject)
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	sent, err := n.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	})
	if err != nil {
		log.Printf("❌ Failed to send %q to %s: %v", subject, to, err)
		return false
	}

	log.Printf("📧 Email sent successfully (ID: %s) to %s", sent.Id, to)
	return true
}
