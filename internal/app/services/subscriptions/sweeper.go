package subscriptions

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/intizom/intizom/internal/app/metrics"
	"github.com/intizom/intizom/internal/app/system"
	"github.com/intizom/intizom/pkg/logger"
)

var _ system.Service = (*Sweeper)(nil)

// Notifier is told about accounts the sweep downgraded so a message can be
// delivered to the user.
type Notifier interface {
	NotifyTrialExpired(ctx context.Context, userID string) error
}

// Sweeper runs the trial downgrade on a cron schedule, nightly by default.
type Sweeper struct {
	service  *Service
	log      *logger.Logger
	schedule string
	notifier Notifier

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewSweeper creates a lifecycle-managed trial sweeper.
func NewSweeper(service *Service, log *logger.Logger) *Sweeper {
	if log == nil {
		log = logger.NewDefault("trial-sweeper")
	}
	return &Sweeper{
		service:  service,
		log:      log,
		schedule: "0 2 * * *",
	}
}

// WithSchedule overrides the cron expression.
func (w *Sweeper) WithSchedule(expr string) *Sweeper {
	w.schedule = expr
	return w
}

// WithNotifier assigns the notifier told about downgraded accounts.
func (w *Sweeper) WithNotifier(n Notifier) *Sweeper {
	w.notifier = n
	return w
}

func (w *Sweeper) Name() string { return "trial-sweeper" }

func (w *Sweeper) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(w.schedule, func() { w.Sweep(context.Background()) }); err != nil {
		return err
	}
	c.Start()
	w.cron = c
	w.running = true
	w.log.WithField("schedule", w.schedule).Info("trial sweeper started")
	return nil
}

func (w *Sweeper) Stop(ctx context.Context) error {
	w.mu.Lock()
	c := w.cron
	w.cron = nil
	w.running = false
	w.mu.Unlock()

	if c == nil {
		return nil
	}
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	w.log.Info("trial sweeper stopped")
	return nil
}

// Sweep runs one downgrade pass. Exposed so the admin API can trigger it on
// demand.
func (w *Sweeper) Sweep(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	expired, err := w.service.SweepExpiredTrials(ctx)
	if err != nil {
		w.log.WithError(err).Warn("trial sweep failed")
		return
	}
	for _, userID := range expired {
		metrics.RecordTrialExpiration()
		if w.notifier == nil {
			continue
		}
		if err := w.notifier.NotifyTrialExpired(ctx, userID); err != nil {
			w.log.WithError(err).WithField("user_id", userID).Warn("trial expiry notification failed")
		}
	}
	if len(expired) > 0 {
		w.log.WithField("count", len(expired)).Info("trials downgraded")
	}
}
