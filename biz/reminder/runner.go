package reminder

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	cardstructs "github.com/taskhive/taskhive/biz/card/structs"
	"github.com/taskhive/taskhive/biz/reminder/structs"
	"github.com/taskhive/taskhive/concurrency/worker"
	"github.com/taskhive/taskhive/config"
	userstructs "github.com/taskhive/taskhive/core/user/structs"
	"github.com/taskhive/taskhive/logging/logger"
	"github.com/taskhive/taskhive/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultInterval = 30 * time.Minute
	DefaultWindow   = time.Hour
)

var tracer = otel.Tracer("github.com/taskhive/taskhive/biz/reminder")

// CardStore is the card storage used by a scan.
type CardStore interface {
	// FindDueBetween returns unreminded cards due in [start, end).
	FindDueBetween(ctx context.Context, start, end time.Time) ([]*cardstructs.Card, error)
	// MarkReminderSent marks the card only while it is still due at dueDate.
	MarkReminderSent(ctx context.Context, id string, dueDate time.Time) (bool, error)
}

type UserFinder interface {
	FindByID(ctx context.Context, id string) (*userstructs.User, error)
}

type Notifier interface {
	SendReminder(ctx context.Context, to *userstructs.User, card *cardstructs.Card) error
}

type Option func(*Runner)

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) Option {
	return func(r *Runner) { r.clock = clock }
}

// WithMetrics records scan counts and durations in c.
func WithMetrics(c *metrics.Collector) Option {
	return func(r *Runner) { r.metrics = c }
}

// Runner scans for cards that fall due within the window and emails their
// assignees once per due date.
type Runner struct {
	store    CardStore
	users    UserFinder
	notifier Notifier
	logger   *logger.Logger

	interval time.Duration
	window   time.Duration
	workers  int
	queue    int
	clock    func() time.Time
	metrics  *metrics.Collector

	// scan serialises RunOnce
	scan sync.Mutex

	life   sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewRunner(store CardStore, users UserFinder, notifier Notifier, l *logger.Logger, cfg *config.Reminder, opts ...Option) *Runner {
	r := &Runner{
		store:    store,
		users:    users,
		notifier: notifier,
		logger:   l,
		interval: DefaultInterval,
		window:   DefaultWindow,
		workers:  4,
		queue:    256,
		clock:    time.Now,
	}
	if cfg != nil {
		if cfg.Interval > 0 {
			r.interval = cfg.Interval
		}
		if cfg.Window > 0 {
			r.window = cfg.Window
		}
		if cfg.Workers > 0 {
			r.workers = cfg.Workers
		}
		if cfg.QueueSize > 0 {
			r.queue = cfg.QueueSize
		}
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Window returns the current due-soon window [now, now+window).
func (r *Runner) Window() (time.Time, time.Time) {
	now := r.clock()
	return now, now.Add(r.window)
}

type outcome int

const (
	notRun outcome = iota
	sent
	skipped
	failed
)

// RunOnce performs one scan. Only a failing candidate query is returned as
// an error; per-card problems are logged and counted.
func (r *Runner) RunOnce(ctx context.Context) (*structs.Result, error) {
	r.scan.Lock()
	defer r.scan.Unlock()

	start, end := r.Window()
	ctx, span := tracer.Start(ctx, "reminder.RunOnce")
	defer span.End()
	began := time.Now()
	r.metrics.AddCounter("reminder_scans", 1)
	defer func() { r.metrics.RecordDuration("reminder_scan_seconds", time.Since(began)) }()

	res := &structs.Result{StartedAt: start, WindowEnd: end}
	cards, err := r.store.FindDueBetween(ctx, start, end)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query due cards")
		r.logger.Error(ctx, "Failed to query due cards", "error", err)
		return nil, err
	}
	res.Scanned = len(cards)
	if len(cards) == 0 {
		return res, nil
	}

	outcomes := make([]outcome, len(cards))
	tasks := make([]worker.Task, len(cards))
	for i, c := range cards {
		tasks[i] = func(ctx context.Context) error {
			outcomes[i] = r.remind(ctx, c)
			return nil
		}
	}

	pool, err := worker.NewPool(&worker.Config{MaxWorkers: r.workers, QueueSize: r.queue})
	if err != nil {
		return nil, err
	}
	pool.Start()
	errs := pool.RunAll(ctx, tasks)
	pool.Stop(context.WithoutCancel(ctx))
	r.recordPool(pool.GetMetrics())

	for i, o := range outcomes {
		switch o {
		case sent:
			res.Sent++
		case skipped:
			res.Skipped++
		default:
			if errs[i] != nil {
				r.logger.Warn(ctx, "Reminder task did not run", "error", errs[i], "card_id", cards[i].ID)
			}
			res.Failed++
		}
	}

	r.metrics.AddCounter("reminder_sent", int64(res.Sent))
	r.metrics.AddCounter("reminder_skipped", int64(res.Skipped))
	r.metrics.AddCounter("reminder_failed", int64(res.Failed))

	span.SetAttributes(
		attribute.Int("reminder.scanned", res.Scanned),
		attribute.Int("reminder.sent", res.Sent),
		attribute.Int("reminder.skipped", res.Skipped),
		attribute.Int("reminder.failed", res.Failed),
	)
	r.logger.Info(ctx, "Reminder scan finished",
		"scanned", res.Scanned, "sent", res.Sent, "skipped", res.Skipped, "failed", res.Failed)
	return res, nil
}

// recordPool adds the task totals of one scan's pool to the collector.
func (r *Runner) recordPool(m map[string]int64) {
	r.metrics.AddCounter("reminder_tasks_completed", m["completed_tasks"])
	r.metrics.AddCounter("reminder_tasks_failed", m["failed_tasks"])
	r.metrics.RecordDuration("reminder_task_seconds_total", time.Duration(m["processing_time"]))
}

func (r *Runner) remind(ctx context.Context, c *cardstructs.Card) outcome {
	if c.AssigneeID == "" || c.DueDate == nil {
		return skipped
	}
	u, err := r.users.FindByID(ctx, c.AssigneeID)
	if err != nil {
		r.logger.Warn(ctx, "Reminder assignee not loaded", "error", err, "card_id", c.ID)
		return skipped
	}
	if strings.TrimSpace(u.Email) == "" {
		return skipped
	}

	if err := r.notifier.SendReminder(ctx, u, c); err != nil {
		r.logger.Error(ctx, "Failed to send reminder", "error", err, "card_id", c.ID)
		return failed
	}
	// the email is out; the mark must land even if the caller went away
	ok, err := r.store.MarkReminderSent(context.WithoutCancel(ctx), c.ID, *c.DueDate)
	if err != nil {
		r.logger.Error(ctx, "Failed to mark reminder sent", "error", err, "card_id", c.ID)
		return failed
	}
	if !ok {
		// rescheduled or reassigned while the mail was out
		r.logger.Info(ctx, "Card changed during reminder", "card_id", c.ID)
	}
	return sent
}

// Start runs a scan every interval until ctx ends or Stop is called. The
// first scan happens one interval after Start.
func (r *Runner) Start(ctx context.Context) {
	r.life.Lock()
	defer r.life.Unlock()
	if r.cancel != nil {
		return
	}
	ctx, r.cancel = context.WithCancel(ctx)
	r.done = make(chan struct{})
	go r.loop(ctx, r.done)
	r.logger.Info(ctx, "Reminder scheduler started", "interval", r.interval.String(), "window", r.window.String())
}

func (r *Runner) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				r.logger.Error(ctx, "Reminder scan failed", "error", err)
			}
		}
	}
}

// Stop ends the loop started by Start and waits for a running scan.
func (r *Runner) Stop() {
	r.life.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.life.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}
