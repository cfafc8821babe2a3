package templates

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// checkTimeout bounds one scheduled preflight, S3 download included.
const checkTimeout = 30 * time.Second

// Watcher re-runs the template preflight on a fixed interval so a template
// replacement that breaks the field contract shows up in the logs and the
// status endpoint before enrollment traffic hits it.
type Watcher struct {
	checker *Checker
	logger  *zap.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

func NewWatcher(checker *Checker, logger *zap.Logger) *Watcher {
	return &Watcher{
		checker: checker,
		logger:  logger,
	}
}

// Start schedules periodic re-checks. A non-positive interval disables the
// watcher entirely.
func (w *Watcher) Start(interval time.Duration) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if interval <= 0 {
		w.logger.Info("template watcher disabled")
		return nil
	}
	if w.running {
		return fmt.Errorf("template watcher already running")
	}

	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", interval), w.runCheck); err != nil {
		return fmt.Errorf("schedule template watcher: %w", err)
	}
	c.Start()

	w.cron = c
	w.running = true
	w.logger.Info("template watcher started", zap.Duration("interval", interval))
	return nil
}

// Stop halts the schedule and waits for an in-flight check to finish.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}

	ctx := w.cron.Stop()
	<-ctx.Done()

	w.cron = nil
	w.running = false
	w.logger.Info("template watcher stopped")
}

func (w *Watcher) runCheck() {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	if err := w.checker.Run(ctx); err != nil {
		w.logger.Error("template preflight failed", zap.Error(err))
	}
}
