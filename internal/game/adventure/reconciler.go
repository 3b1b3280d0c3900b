package adventure

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// retryIntervals is how many passes an adventure that failed to complete is
// left out of the batch before it is tried again.
const retryIntervals = 10

// Reconciler periodically completes due adventures in the background. It is
// an optimisation only: Manager.CheckUser remains authoritative.
//
// Adventures that fail are held back for a while so a run of failing rows
// cannot fill every batch and starve the rest.
type Reconciler struct {
	manager  *Manager
	interval time.Duration
	batch    int
	logger   *zap.Logger

	mu   sync.Mutex
	held map[uuid.UUID]time.Time

	done chan struct{}
	once sync.Once
}

// NewReconciler creates a stopped Reconciler.
//
// Precondition: interval > 0; batch > 0.
func NewReconciler(manager *Manager, interval time.Duration, batch int, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		manager:  manager,
		interval: interval,
		batch:    batch,
		logger:   logger,
		held:     make(map[uuid.UUID]time.Time),
		done:     make(chan struct{}),
	}
}

// RunOnce performs a single reconciliation pass.
func (r *Reconciler) RunOnce(ctx context.Context) Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	now := r.manager.now()
	skip := make([]uuid.UUID, 0, len(r.held))
	for id, until := range r.held {
		if now.Before(until) {
			skip = append(skip, id)
		} else {
			delete(r.held, id)
		}
	}

	rep, err := r.manager.ReconcileDue(ctx, r.batch, skip...)
	if err != nil {
		r.logger.Warn("reconciliation pass failed", zap.Error(err))
		return Report{}
	}
	for _, f := range rep.Failures {
		r.held[f.AdventureID] = now.Add(retryIntervals * r.interval)
	}
	if rep.Completed+rep.Failed > 0 {
		r.logger.Info("reconciliation pass",
			zap.Int("completed", rep.Completed),
			zap.Int("skipped", rep.Skipped),
			zap.Int("failed", rep.Failed),
			zap.Int("held", len(r.held)),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
	return rep
}

// Start runs passes every interval until Stop is called. It blocks.
func (r *Reconciler) Start() error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-r.done
		cancel()
	}()
	for {
		select {
		case <-ticker.C:
			r.RunOnce(ctx)
		case <-r.done:
			return nil
		}
	}
}

// Stop ends the loop started by Start. Calling Stop more than once is safe.
func (r *Reconciler) Stop() {
	r.once.Do(func() { close(r.done) })
}
