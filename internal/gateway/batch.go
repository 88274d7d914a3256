package gateway

import (
	"context"
	"time"

	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/engineer"
	"golang.org/x/sync/errgroup"
)

// Load is one engineer's capacity and next available date. A field that could
// not be fetched holds its default and is flagged.
type Load struct {
	Engineer           engineer.Engineer
	Capacity           engineer.Capacity
	AvailableDate      time.Time
	CapacityFailed     bool
	AvailabilityFailed bool
}

// FetchLoads fetches capacity and availability for every engineer
// concurrently. A failed call falls back (capacity to zero, availability to
// now) without failing the batch; only cancellation of ctx is returned.
func (c *Client) FetchLoads(ctx context.Context, engineers []engineer.Engineer, now time.Time) ([]Load, error) {
	loads := make([]Load, len(engineers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxConcurrency)

	for i, e := range engineers {
		loads[i].Engineer = e
		g.Go(func() error {
			capacity, err := c.GetCapacity(gctx, e.ID)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.metrics.fellBack("capacity")
				c.logger.WarnContext(ctx, "capacity fetch failed, using zero", "engineer_id", e.ID, "error", err)
				loads[i].Capacity = engineer.Capacity{EngineerID: e.ID, MaxCapacity: e.MaxCapacity}
				loads[i].CapacityFailed = true
				return nil
			}
			loads[i].Capacity = *capacity
			return nil
		})
		g.Go(func() error {
			date, err := c.GetAvailability(gctx, e.ID)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.metrics.fellBack("availability")
				c.logger.WarnContext(ctx, "availability fetch failed, using now", "engineer_id", e.ID, "error", err)
				loads[i].AvailableDate = now
				loads[i].AvailabilityFailed = true
				return nil
			}
			loads[i].AvailableDate = date
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return loads, nil
}
