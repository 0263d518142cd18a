package extractor

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KeremKalyoncu/vidgate/internal/errors"
	"github.com/KeremKalyoncu/vidgate/internal/types"
)

type blockingExtractor struct {
	calls   atomic.Int32
	release chan struct{}
	err     error
}

func (b *blockingExtractor) Extract(ctx context.Context, url string) (*types.RawMediaInfo, error) {
	b.calls.Add(1)
	<-b.release
	if b.err != nil {
		return nil, b.err
	}
	title := url
	return &types.RawMediaInfo{Title: &title}, nil
}

func TestCoalescingSharesInFlightCall(t *testing.T) {
	inner := &blockingExtractor{release: make(chan struct{})}
	c := NewCoalescing(inner)

	const callers = 5
	var wg sync.WaitGroup
	results := make([]*types.RawMediaInfo, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			info, err := c.Extract(context.Background(), "https://example.com/a")
			assert.NoError(t, err)
			results[i] = info
		}(i)
	}

	// Let every caller join the in-flight call before releasing it.
	require.Eventually(t, func() bool { return inner.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(inner.release)
	wg.Wait()

	assert.Equal(t, int32(1), inner.calls.Load())
	for _, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, "https://example.com/a", *r.Title)
	}
}

func TestCoalescingPropagatesErrors(t *testing.T) {
	inner := &blockingExtractor{release: make(chan struct{}), err: errors.ErrExtractionTimeout}
	close(inner.release)

	_, err := NewCoalescing(inner).Extract(context.Background(), "https://example.com/a")
	assert.ErrorIs(t, err, errors.ErrExtractionTimeout)
}

func TestCoalescingCallerCancellation(t *testing.T) {
	inner := &blockingExtractor{release: make(chan struct{})}
	defer close(inner.release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCoalescing(inner).Extract(ctx, "https://example.com/a")
	assert.ErrorIs(t, err, context.Canceled)
}
