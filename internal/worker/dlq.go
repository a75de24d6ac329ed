package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
)

// Jobs that exhaust their retries are parked on a per-queue dead-letter list
// ("dlq:" + queue) so an operator can inspect and re-enqueue them by hand.

const deadLetterPrefix = "dlq:"

type deadLetterEntry struct {
	Queue    string          `json:"queue"`
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Reason   string          `json:"reason"`
	Attempts int             `json:"attempts"`
	FailedAt time.Time       `json:"failed_at"`
}

// deadLetter parks a job that will not be retried any further.
func (p *Pool) deadLetter(ctx context.Context, queue string, job Job, reason string) {
	entry := deadLetterEntry{
		Queue:    queue,
		Type:     job.Type,
		Payload:  job.Payload,
		Reason:   reason,
		Attempts: job.Attempts,
		FailedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dead-letter entry not serialisable")
		return
	}
	if err := p.rdb.LPush(ctx, deadLetterPrefix+queue, data).Err(); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dead-letter push failed")
		return
	}
	log.Warn().
		Str("queue", queue).
		Str("type", job.Type).
		Str("reason", reason).
		Int("attempts", job.Attempts).
		Msg("job moved to dead-letter queue")
}

// DeadLetterDepth reports how many jobs are parked for the given queue.
func (p *Pool) DeadLetterDepth(ctx context.Context, queue string) (int64, error) {
	return p.rdb.LLen(ctx, deadLetterPrefix+queue).Result()
}
