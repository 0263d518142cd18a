package extractor

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/KeremKalyoncu/vidgate/internal/errors"
	"github.com/KeremKalyoncu/vidgate/internal/types"
)

// Coalescing wraps an Extractor so that concurrent calls for the same URL share
// a single underlying extraction.
//
// The shared call runs detached from any single caller's cancellation and is
// bounded only by the wrapped extractor's deadline. Each caller stops waiting
// as soon as its own context is done.
type Coalescing struct {
	next  Extractor
	group singleflight.Group
}

// NewCoalescing wraps next
func NewCoalescing(next Extractor) *Coalescing {
	return &Coalescing{next: next}
}

// Extract implements Extractor
func (c *Coalescing) Extract(ctx context.Context, url string) (*types.RawMediaInfo, error) {
	ch := c.group.DoChan(url, func() (interface{}, error) {
		return c.next.Extract(context.WithoutCancel(ctx), url)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		// Shared result; the mapper only reads it.
		return res.Val.(*types.RawMediaInfo), nil
	case <-ctx.Done():
		return nil, errors.ErrExtraction.WithCause(ctx.Err()).WithMessage("Metadata fetch cancelled")
	}
}
