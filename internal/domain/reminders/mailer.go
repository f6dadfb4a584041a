// Package reminders emails users before return windows close.
package reminders

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/resend/resend-go/v2"

	"github.com/mtavares/receiptwise/internal/domain/receipts"
)

// Mailer delivers reminder digests.
type Mailer interface {
	SendDigest(to string, upcoming []Upcoming) error
}

// Upcoming is one receipt whose return window is closing.
type Upcoming struct {
	Receipt  *receipts.StoredReceipt
	Deadline string
	DaysLeft int
}

// ResendMailer sends reminder emails through Resend.
type ResendMailer struct {
	client *resend.Client
	from   string
	logger *slog.Logger
}

// NewResendMailer creates a Resend-backed mailer. With an empty API key
// the mailer logs and skips sending, so local development works without
// credentials.
func NewResendMailer(apiKey, from string, logger *slog.Logger) *ResendMailer {
	var client *resend.Client
	if apiKey != "" {
		client = resend.NewClient(apiKey)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ResendMailer{client: client, from: from, logger: logger}
}

// SendDigest emails one digest listing every closing return window.
func (m *ResendMailer) SendDigest(to string, upcoming []Upcoming) error {
	if m.client == nil {
		m.logger.Warn("resend client not configured, skipping reminder email")
		return nil
	}

	var rows strings.Builder
	for _, u := range upcoming {
		rows.WriteString(fmt.Sprintf(
			`<tr><td class="merchant">%s</td><td>%s</td><td class="days">%d days left</td></tr>`,
			u.Receipt.Receipt.Merchant, u.Deadline, u.DaysLeft,
		))
	}

	plural := "s"
	if len(upcoming) == 1 {
		plural = ""
	}

	html := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
  <style>
    body { background-color: #fafafa; font-family: 'Outfit', sans-serif; margin: 0; padding: 40px 0; }
    .container { background-color: #ffffff; border: 1px solid rgba(0,0,0,0.1); border-radius: 12px; padding: 40px; max-width: 480px; margin: 0 auto; }
    h1 { color: #111111; font-size: 24px; font-weight: 900; text-align: center; margin: 20px 0; }
    .text { color: #6b7280; font-size: 15px; line-height: 22px; text-align: center; }
    table { width: 100%%; border-collapse: collapse; margin: 30px 0; }
    td { color: #374151; font-size: 14px; padding: 10px 6px; border-bottom: 1px solid rgba(0,0,0,0.05); }
    .merchant { font-weight: 700; }
    .days { color: #b45309; text-align: right; }
    .footer { color: #9ca3af; font-size: 12px; text-align: center; margin-top: 30px; }
  </style>
</head>
<body>
  <div class="container">
    <h1>Return window%s closing soon</h1>
    <p class="text">You have %d purchase%s that can still be returned.</p>
    <table>%s</table>
    <p class="footer">Sent by ReceiptWise.</p>
  </div>
</body>
</html>
`, plural, len(upcoming), plural, rows.String())

	_, err := m.client.Emails.Send(&resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: fmt.Sprintf("%d return window%s closing soon", len(upcoming), plural),
		Html:    html,
	})
	return err
}
