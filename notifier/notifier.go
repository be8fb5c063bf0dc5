package notifier

import (
	"context"
	"log"
)

// LogNotifier writes messages to the server log instead of delivering them.
// Used when no mail provider is configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(ctx context.Context, to, subject, body string) bool {
	log.Printf("📨 [LogNotifier] To: %s | Subject: %s\n%s", to, subject, body)
	return true
}
