package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Shadow6402/ASTT-Esport/internal/usecase"
)

// ReminderWorker mails renewal reminders for memberships lapsing soon.
type ReminderWorker struct {
	interval time.Duration
	window   time.Duration
	notifyUC usecase.NotificationUseCase
	log      *zerolog.Logger
}

func NewReminderWorker(interval, window time.Duration, notifyUC usecase.NotificationUseCase, logger *zerolog.Logger) *ReminderWorker {
	compLog := logger.With().Str("component", "ReminderWorker").Logger()
	return &ReminderWorker{
		interval: interval,
		window:   window,
		notifyUC: notifyUC,
		log:      &compLog,
	}
}

func (w *ReminderWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting reminder worker")
	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping reminder worker")
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ReminderWorker) sweep(ctx context.Context) {
	sent, err := w.notifyUC.NotifyExpiring(ctx, w.window)
	if err != nil {
		w.log.Error().Err(err).Msg("reminder sweep failed")
		return
	}
	if sent > 0 {
		w.log.Info().Int("count", sent).Msg("renewal reminders sent")
	}
}
