package cache

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"mercator-hq/atlas/pkg/telemetry/logging"
)

// Sweeper re-runs the version-based prune on a schedule. Activation
// already prunes once; the sweep bounds storage when the gateway runs for
// a long time without a version change.
type Sweeper struct {
	cron    *cron.Cron
	manager *Manager
	logger  *logging.Logger
}

// NewSweeper creates a sweeper running manager.Prune on the cron
// schedule, e.g. "0 3 * * *".
func NewSweeper(schedule string, manager *Manager, logger *logging.Logger) (*Sweeper, error) {
	c := cron.New()

	s := &Sweeper{
		cron:    c,
		manager: manager,
		logger:  logger,
	}

	if _, err := c.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Sweeper) run() {
	if err := s.manager.Prune(context.Background()); err != nil {
		s.logger.Error("scheduled cache sweep failed", "error", err)
		return
	}
	s.logger.Debug("scheduled cache sweep completed")
}

// Start begins scheduled sweeps.
func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
