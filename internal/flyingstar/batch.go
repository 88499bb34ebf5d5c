package flyingstar

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// CalculateBatch computes one chart per request concurrently, at most limit
// at a time (limit <= 0 means unbounded). Results keep the request order.
// Every request is validated; the first invalid one cancels the rest.
func CalculateBatch(ctx context.Context, reqs []Request, limit int) ([]*Chart, error) {
	charts := make([]*Chart, len(reqs))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, req := range reqs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c, err := CalculateChecked(req)
			if err != nil {
				return fmt.Errorf("request %d: %w", i, err)
			}
			charts[i] = c
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return charts, nil
}
