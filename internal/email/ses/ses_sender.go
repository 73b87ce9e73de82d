package ses

import (
	"context"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"itemize/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
}

// NewSESSender creates a new SES-backed EscalationNotifier.
func NewSESSender(region, fromAddress, fromName string) (port.EscalationNotifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
	}, nil
}

func (s *sesSender) SendEscalationDigest(ctx context.Context, toEmail string, summaries []port.EscalationSummary) error {
	escalated := 0
	for _, sum := range summaries {
		escalated += sum.EscalatedLines
	}

	subject := fmt.Sprintf("Escalation digest: %d lines need review across %d invoices", escalated, len(summaries))
	htmlBody := buildDigestHTML(summaries, escalated)
	textBody := buildDigestText(summaries, escalated)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildDigestText(summaries []port.EscalationSummary, escalated int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d line items were flagged for manual review.\n\n", escalated)
	for _, s := range summaries {
		if s.EscalatedLines == 0 {
			continue
		}
		fmt.Fprintf(&b, "- %s (%s): %d of %d lines\n", s.Source, s.SupplierName, s.EscalatedLines, s.TotalLines)
	}
	return b.String()
}

func buildDigestHTML(summaries []port.EscalationSummary, escalated int) string {
	var rows strings.Builder
	for _, s := range summaries {
		if s.EscalatedLines == 0 {
			continue
		}
		fmt.Fprintf(&rows, `<tr><td style="padding: 6px 12px;">%s</td><td style="padding: 6px 12px;">%s</td><td style="padding: 6px 12px; text-align: right;">%d / %d</td></tr>`,
			s.Source, s.SupplierName, s.EscalatedLines, s.TotalLines)
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Escalated line items</h2>
  <p>%d line items were flagged for manual review in the latest processing run.</p>
  <table style="border-collapse: collapse; width: 100%%;">
    <tr style="border-bottom: 1px solid #eee; text-align: left;">
      <th style="padding: 6px 12px;">Invoice</th>
      <th style="padding: 6px 12px;">Supplier</th>
      <th style="padding: 6px 12px; text-align: right;">Escalated</th>
    </tr>
    %s
  </table>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">Itemize - Invoice Line Item Extraction</p>
</body>
</html>`, escalated, rows.String())
}
