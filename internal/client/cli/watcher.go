package cli

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const probeTimeout = 3 * time.Second

// newProbeBackOff grows the delay between failed probes from one second (or
// the interval, if shorter) up to interval, and never gives up. There is no
// jitter, so MaxInterval is a hard cap.
func newProbeBackOff(interval time.Duration) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = min(time.Second, interval)
	b.MaxInterval = interval
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// StartOnlineStatusWatcher probes the server until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	b := newProbeBackOff(interval)
	for {
		wait := a.probe(ctx, b, interval)

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
}

// probe pings once, updates the mode and returns the delay before the next
// probe. Coming back online triggers a sync when enabled.
func (a *App) probe(ctx context.Context, b backoff.BackOff, interval time.Duration) time.Duration {
	pctx, cancel := context.WithTimeout(ctx, probeTimeout)
	err := a.auth.Ping(pctx)
	cancel()

	if err != nil {
		a.setMode(ModeOffline)
		return min(b.NextBackOff(), interval)
	}

	b.Reset()
	if prev := a.setMode(ModeOnline); prev != ModeOnline && a.config.AutoSync && a.isLoggedIn() {
		a.autoSync(ctx)
	}
	return interval
}

func (a *App) autoSync(ctx context.Context) {
	res, err := a.sync.Sync(ctx)
	if err != nil {
		a.log.Error(ctx, "auto sync failed", "err", err)
		return
	}
	if res.Skipped {
		return
	}
	a.log.Info(ctx, "auto sync finished", "processed", res.Processed, "failed", res.Failed)
}
