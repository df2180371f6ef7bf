package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	portssvc "github.com/sekrobank/sekro_bank_api/internal/core/ports/services"
)

// AutopayScheduler periodically runs due autopay schedules. It is a single
// background goroutine; the per-period CAS in the servicing layer keeps
// multiple instances from double-paying.
type AutopayScheduler struct {
	servicing portssvc.ServicingSvcFacade
	interval  time.Duration
	logger    *slog.Logger

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewAutopayScheduler creates a scheduler that ticks at the given interval.
func NewAutopayScheduler(servicing portssvc.ServicingSvcFacade, interval time.Duration, logger *slog.Logger) *AutopayScheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &AutopayScheduler{
		servicing: servicing,
		interval:  interval,
		logger:    logger,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start launches the scheduling loop. It returns immediately; the loop stops
// when ctx is cancelled or Stop is called.
func (s *AutopayScheduler) Start(ctx context.Context) {
	go s.loop(ctx)
}

// Stop terminates the loop and waits for the in-flight run to finish.
func (s *AutopayScheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	<-s.done
}

func (s *AutopayScheduler) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run once at startup to catch schedules that came due while down.
	s.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *AutopayScheduler) runOnce(ctx context.Context) {
	now := time.Now().UTC()
	attempted, err := s.servicing.RunDueAutopays(ctx, now)
	if err != nil {
		s.logger.Error("Autopay run failed", slog.String("error", err.Error()))
		return
	}
	if attempted > 0 {
		s.logger.Info("Autopay run finished", slog.Int("attempted", attempted))
	}
}
