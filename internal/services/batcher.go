package services

import (
	"context"
	"fmt"
	"spacetime-service/internal/domain"
	"spacetime-service/internal/platform/obs"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds parallel tile and row queries.
const DefaultConcurrency = 4

// Batcher answers dense matrix queries of any size by splitting them into
// tiles the provider accepts.
type Batcher struct {
	client      *MatrixClient
	concurrency int
}

func NewBatcher(client *MatrixClient, concurrency int) *Batcher {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Batcher{client: client, concurrency: concurrency}
}

type tile struct {
	origin, destination int
}

// QueryDense returns elements for every origin × destination pair with
// indices in the caller's index space. Queries of at most twice the root
// tile size are sent as one call; larger ones are gated once for the full
// cardinality and tiled.
func (b *Batcher) QueryDense(
	ctx context.Context,
	origins []domain.Location,
	destinations []domain.Location,
	mode domain.TravelMode,
) (_ domain.SparseMatrix, err error) {
	defer obs.Time(ctx, "batcher.QueryDense")(&err)

	if err := validateQuery(origins, destinations, mode); err != nil {
		return nil, err
	}

	size := mode.RootTileSize()
	if len(origins)*len(destinations) <= 2*size {
		return b.client.query(ctx, origins, destinations, mode, true)
	}

	if err := b.client.guard.Check(ctx, len(origins)*len(destinations)); err != nil {
		return nil, err
	}

	var tiles []tile
	for i := 0; i < len(origins); i += size {
		for j := 0; j < len(destinations); j += size {
			tiles = append(tiles, tile{origin: i, destination: j})
		}
	}

	results := make([]domain.SparseMatrix, len(tiles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for idx, t := range tiles {
		idx, t := idx, t
		g.Go(func() error {
			o := origins[t.origin:min(t.origin+size, len(origins))]
			d := destinations[t.destination:min(t.destination+size, len(destinations))]

			res, err := b.client.query(gctx, o, d, mode, false)
			if err != nil {
				return fmt.Errorf("batcher: tile (%d,%d): %w", t.origin, t.destination, err)
			}
			for k := range res {
				res[k].OriginIndex += t.origin
				res[k].DestinationIndex += t.destination
			}
			results[idx] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(domain.SparseMatrix, 0, len(origins)*len(destinations))
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}
