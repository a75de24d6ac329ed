package worker

// notify_worker.go
// Processes status-change jobs from QueueNotify and mails the shop inbox.
// Notification is informational: a lost email never blocks a transition.

import (
	"context"
	"encoding/json"
	"fmt"

	"calhaforte/internal/infra"

	"github.com/rs/zerolog/log"
)

// NotifyJobPayload is the job envelope sent to QueueNotify.
type NotifyJobPayload struct {
	QuoteID    string `json:"quote_id"`
	ClientName string `json:"client_name"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
}

// NotifyWorker delivers status-change notifications over SMTP.
type NotifyWorker struct {
	mailer  *infra.Mailer
	toEmail string
}

func NewNotifyWorker(mailer *infra.Mailer, toEmail string) *NotifyWorker {
	return &NotifyWorker{mailer: mailer, toEmail: toEmail}
}

func (w *NotifyWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload NotifyJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("notify_worker: invalid payload")
		return nil // malformed payloads never succeed — don't retry
	}
	if w.toEmail == "" {
		log.Warn().Msg("notify_worker: no alert email configured — skipping")
		return nil
	}

	subject, body := formatNotification(payload)
	if err := w.mailer.Send(w.toEmail, subject, body); err != nil {
		log.Error().Err(err).Str("quote_id", payload.QuoteID).Msg("notify_worker: failed to send email")
		return err
	}
	log.Info().Str("quote_id", payload.QuoteID).Msg("notify_worker: notification sent")
	return nil
}

// formatNotification builds the mail subject and body. The subject shortens
// the quote id for readability; queue entries are not trusted to carry a full
// uuid, so the cut is length-guarded.
func formatNotification(p NotifyJobPayload) (subject, body string) {
	short := p.QuoteID
	if len(short) > 8 {
		short = short[:8]
	}
	subject = fmt.Sprintf("Quote %s: %s → %s", short, p.FromStatus, p.ToStatus)
	body = fmt.Sprintf(
		"Quote %s for %s moved from %q to %q.",
		p.QuoteID, p.ClientName, p.FromStatus, p.ToStatus,
	)
	return subject, body
}
