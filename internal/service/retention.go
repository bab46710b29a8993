package service

import (
	"context"
	"log"
	"sync"
	"time"

	"vendmatic-rest-api/internal/repository"
)

// RetentionConfig holds configuration for the purchase-log retention sweep.
type RetentionConfig struct {
	// Retention is how long purchase records are kept.
	// Default: 30 days
	Retention time.Duration

	// SweepInterval is how often the sweep runs.
	// Default: 1 hour
	SweepInterval time.Duration
}

// RetentionSweeper periodically purges old purchase audit records.
type RetentionSweeper struct {
	repo      repository.VendingRepository
	config    RetentionConfig
	ticker    *time.Ticker
	stopCh    chan struct{}
	stopOnce  sync.Once
	isRunning bool
	mu        sync.Mutex
}

// NewRetentionSweeper creates a new retention sweeper.
func NewRetentionSweeper(repo repository.VendingRepository, config RetentionConfig) *RetentionSweeper {
	if config.Retention == 0 {
		config.Retention = 30 * 24 * time.Hour
	}
	if config.SweepInterval == 0 {
		config.SweepInterval = time.Hour
	}

	return &RetentionSweeper{
		repo:   repo,
		config: config,
		stopCh: make(chan struct{}),
	}
}

// Start begins the retention sweeper.
func (s *RetentionSweeper) Start() {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.ticker = time.NewTicker(s.config.SweepInterval)
	s.mu.Unlock()

	log.Printf("[RetentionSweeper] Started - Interval: %v, Retention: %v",
		s.config.SweepInterval, s.config.Retention)

	go s.run()
}

// run is the main sweep loop.
func (s *RetentionSweeper) run() {
	for {
		select {
		case <-s.ticker.C:
			s.runSweep()
		case <-s.stopCh:
			log.Printf("[RetentionSweeper] Stopped")
			return
		}
	}
}

// runSweep performs the actual purge.
func (s *RetentionSweeper) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().UTC().Add(-s.config.Retention)

	deleted, err := s.repo.DeletePurchasesBefore(ctx, cutoff)
	if err != nil {
		log.Printf("[RetentionSweeper] Error during sweep: %v", err)
		return
	}

	if deleted > 0 {
		log.Printf("[RetentionSweeper] Purged %d purchase records older than %v", deleted, cutoff)
	}
}

// Stop stops the retention sweeper.
func (s *RetentionSweeper) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.ticker != nil {
			s.ticker.Stop()
		}
		close(s.stopCh)
		s.isRunning = false
	})
}

// RunNow triggers an immediate sweep.
func (s *RetentionSweeper) RunNow() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().UTC().Add(-s.config.Retention)
	return s.repo.DeletePurchasesBefore(ctx, cutoff)
}
