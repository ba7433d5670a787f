package chain

import (
	"context"
	"sync"
	"time"
)

var cacheDuration time.Duration = time.Minute * 5

type feeCache struct {
	time       time.Time
	estimation *FeeEstimation
}

// CachedFeeEstimator keeps estimates per strategy for a few minutes so
// refreshing a list does not hammer the fee api.
type CachedFeeEstimator struct {
	cache map[FeeStrategy]*feeCache
	inner FeeEstimator
	mtx   sync.Mutex
}

func NewCachedFeeEstimator(inner FeeEstimator) *CachedFeeEstimator {
	return &CachedFeeEstimator{
		inner: inner,
		cache: make(map[FeeStrategy]*feeCache),
	}
}

func (e *CachedFeeEstimator) EstimateFeeRate(
	ctx context.Context,
	strategy FeeStrategy,
) (*FeeEstimation, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	cached, ok := e.cache[strategy]
	if ok && cached.time.Add(cacheDuration).After(time.Now()) {
		return cached.estimation, nil
	}

	now := time.Now()
	estimation, err := e.inner.EstimateFeeRate(ctx, strategy)
	if err != nil {
		return nil, err
	}

	e.cache[strategy] = &feeCache{
		time:       now,
		estimation: estimation,
	}

	return estimation, nil
}
