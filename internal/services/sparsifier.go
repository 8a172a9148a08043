package services

import (
	"context"
	"fmt"
	"spacetime-service/internal/domain"
	"spacetime-service/internal/platform/obs"

	"golang.org/x/sync/errgroup"
)

// IncludeFunc reports whether the pair (a, b) is worth querying.
type IncludeFunc func(a, b domain.Location) bool

// IncludeAll selects every pair.
func IncludeAll(domain.Location, domain.Location) bool { return true }

// Sparsifier queries only the pairs selected by a locality predicate, one
// provider call per origin row (or per slice of a row too long for one call).
type Sparsifier struct {
	client      *MatrixClient
	concurrency int
}

func NewSparsifier(client *MatrixClient, concurrency int) *Sparsifier {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Sparsifier{client: client, concurrency: concurrency}
}

type maskRow struct {
	origin int
	// destinations maps the row's local destination index to the global one.
	destinations []int
}

// mask lists, per origin, the included destination indices. For a
// self-matrix only pairs above the diagonal are kept: durations are assumed
// symmetric and an origin is never paired with itself. Rows longer than
// maxRow are split so each fits in one provider request.
func mask(origins, destinations []domain.Location, include IncludeFunc, maxRow int) ([]maskRow, int) {
	self := domain.SameLocations(origins, destinations)

	var (
		rows  []maskRow
		total int
	)
	for i, o := range origins {
		var cols []int
		for j, d := range destinations {
			if self && j <= i {
				continue
			}
			if include(o, d) {
				cols = append(cols, j)
			}
		}
		total += len(cols)
		for len(cols) > 0 {
			n := min(len(cols), maxRow)
			rows = append(rows, maskRow{origin: i, destinations: cols[:n:n]})
			cols = cols[n:]
		}
	}
	return rows, total
}

// QuerySparse returns elements for the included pairs only, with indices in
// the caller's index space. A nil include selects every pair.
func (s *Sparsifier) QuerySparse(
	ctx context.Context,
	origins []domain.Location,
	destinations []domain.Location,
	mode domain.TravelMode,
	include IncludeFunc,
) (_ domain.SparseMatrix, err error) {
	defer obs.Time(ctx, "sparsifier.QuerySparse")(&err)

	if err := validateQuery(origins, destinations, mode); err != nil {
		return nil, err
	}
	if include == nil {
		include = IncludeAll
	}

	rows, total := mask(origins, destinations, include, mode.MaxElements())
	if total == 0 {
		return nil, fmt.Errorf("sparsifier: %w: no pairs selected", domain.ErrInvalidInput)
	}

	if err := s.client.guard.Check(ctx, total); err != nil {
		return nil, err
	}

	results := make([]domain.SparseMatrix, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for idx, row := range rows {
		idx, row := idx, row
		g.Go(func() error {
			dests := make([]domain.Location, 0, len(row.destinations))
			for _, j := range row.destinations {
				dests = append(dests, destinations[j])
			}

			res, err := s.client.query(gctx, origins[row.origin:row.origin+1], dests, mode, false)
			if err != nil {
				return fmt.Errorf("sparsifier: row %d: %w", row.origin, err)
			}
			for k := range res {
				local := res[k].DestinationIndex
				if local < 0 || local >= len(row.destinations) {
					return fmt.Errorf("sparsifier: row %d: %w: destination index %d out of range", row.origin, domain.ErrUpstream, local)
				}
				res[k].OriginIndex = row.origin
				res[k].DestinationIndex = row.destinations[local]
			}
			results[idx] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(domain.SparseMatrix, 0, total)
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}
