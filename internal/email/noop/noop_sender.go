package noop

import (
	"context"
	"log"

	"itemize/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op EscalationNotifier that logs digests instead
// of sending them.
func NewNoopSender() port.EscalationNotifier {
	return noopSender{}
}

func (noopSender) SendEscalationDigest(_ context.Context, toEmail string, summaries []port.EscalationSummary) error {
	escalated := 0
	for _, s := range summaries {
		escalated += s.EscalatedLines
	}
	log.Printf("[NOOP EMAIL] Escalation digest for %s: %d escalated lines across %d invoices", toEmail, escalated, len(summaries))
	return nil
}
