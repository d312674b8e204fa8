package session

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/hackgods/peer-support-platform/pkg/logging"
)

// Expirer is a registry the sweeper can prune.
type Expirer interface {
	Kind() string
	ExpireIdle() int
}

// RunSweeper prunes idle sessions every interval until ctx is done.
func RunSweeper(ctx context.Context, clk clockwork.Clock, interval time.Duration, logger *logging.Logger, registries ...Expirer) {
	logger.Info("session sweeper started", "interval", interval.String())

	ticker := clk.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("session sweeper stopping")
			return
		case <-ticker.Chan():
			sweepOnce(logger, registries)
		}
	}
}

func sweepOnce(logger *logging.Logger, registries []Expirer) {
	for _, r := range registries {
		if n := r.ExpireIdle(); n > 0 {
			logger.Info("expired idle sessions", "kind", r.Kind(), "count", n)
		}
	}
}
