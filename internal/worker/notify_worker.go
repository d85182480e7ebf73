package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jrmmllrs/test-app-backend/internal/config"
	"github.com/jrmmllrs/test-app-backend/internal/model"
)

const (
	NotifyPollTimeout = 1 * time.Second
	NotifyMaxAttempts = 3
)

// CompletionSender delivers one completion email.
type CompletionSender interface {
	SendCompletion(n model.CompletionNotice) error
}

// NotifyWorker drains the completion-notice queue and delivers emails.
// Delivery failures are requeued with an attempt counter so a flaky SMTP
// relay cannot spin the queue forever.
type NotifyWorker struct {
	rdb    *redis.Client
	sender CompletionSender
	log    zerolog.Logger
}

// NewNotifyWorker creates a new NotifyWorker.
func NewNotifyWorker(rdb *redis.Client, sender CompletionSender, log zerolog.Logger) *NotifyWorker {
	return &NotifyWorker{
		rdb:    rdb,
		sender: sender,
		log:    log.With().Str("component", "notify_worker").Logger(),
	}
}

type notifyEnvelope struct {
	model.CompletionNotice
	Attempts int `json:"attempts,omitempty"`
}

// Start runs the delivery loop until the context is cancelled, then drains
// whatever is still queued before returning.
func (w *NotifyWorker) Start(ctx context.Context) {
	w.log.Info().Msg("NotifyWorker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Draining notification queue...")
			w.drain(context.Background())
			return

		default:
			item, err := w.rdb.BLPop(ctx, NotifyPollTimeout, config.QueueKey.NotificationsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}
			if len(item) < 2 {
				continue
			}
			w.deliver(ctx, item[1])
		}
	}
}

func (w *NotifyWorker) deliver(ctx context.Context, raw string) {
	var env notifyEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		w.log.Error().Err(err).Msg("Invalid JSON payload, dropping")
		return
	}

	if err := w.sender.SendCompletion(env.CompletionNotice); err != nil {
		env.Attempts++
		if env.Attempts >= NotifyMaxAttempts {
			w.log.Error().Err(err).
				Str("email", env.CandidateEmail).
				Int("attempts", env.Attempts).
				Msg("completion email failed permanently, dropping")
			return
		}

		w.log.Warn().Err(err).
			Str("email", env.CandidateEmail).
			Int("attempts", env.Attempts).
			Msg("completion email failed, requeueing")
		payload, _ := json.Marshal(env)
		w.rdb.RPush(ctx, config.QueueKey.NotificationsQueue, payload)
		return
	}

	w.log.Debug().Str("email", env.CandidateEmail).Msg("completion email sent")
}

// drain delivers queued notices without blocking waits. Requeued failures
// are left for the next process start.
func (w *NotifyWorker) drain(ctx context.Context) {
	for {
		raw, err := w.rdb.LPop(ctx, config.QueueKey.NotificationsQueue).Result()
		if err != nil {
			if err != redis.Nil {
				w.log.Error().Err(err).Msg("drain LPop error")
			}
			return
		}
		w.deliver(ctx, raw)
	}
}
