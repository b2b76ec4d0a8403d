// Package engine turns API responses into display-ready state: the poll
// fetch, row and summary calculation, push-event merging, and derived triage
// advisories.
package engine

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dkm/casewatch/internal/client"
	"github.com/dkm/casewatch/internal/model"
)

// FetchSnapshot fetches the prioritized soldier list and the unread alerts
// concurrently. The soldier list is the core of the snapshot: its failure
// fails the fetch. Alert failures are non-fatal: the field is left nil so a
// flaky alerts endpoint cannot block telemetry refresh.
func FetchSnapshot(ctx context.Context, c client.APIClient) (*model.Snapshot, error) {
	var (
		soldiers []client.Soldier
		alerts   []client.Alert
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		soldiers, err = c.GetPrioritizedSoldiers(gctx)
		return err
	})

	// Alerts run outside the errgroup so their error cannot cancel the
	// soldier fetch. Buffered channel keeps the goroutine from leaking when
	// the result is abandoned on context expiry.
	alertCh := make(chan []client.Alert, 1)
	go func() {
		a, err := c.GetUnreadAlerts(ctx)
		if err != nil {
			alertCh <- nil
			return
		}
		alertCh <- a
	}()

	if err := g.Wait(); err != nil {
		return nil, err
	}

	select {
	case alerts = <-alertCh:
	case <-ctx.Done():
	}

	return &model.Snapshot{
		Soldiers:  soldiers,
		Alerts:    alerts,
		FetchedAt: time.Now(),
	}, nil
}
