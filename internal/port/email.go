package port

import "context"

// EscalationSummary is one processed document's escalation counts, reported
// in the digest sent after a batch run.
type EscalationSummary struct {
	Source         string
	SupplierName   string
	EscalatedLines int
	TotalLines     int
}

// EscalationNotifier defines the contract for reporting escalated lines.
type EscalationNotifier interface {
	SendEscalationDigest(ctx context.Context, toEmail string, summaries []EscalationSummary) error
}
