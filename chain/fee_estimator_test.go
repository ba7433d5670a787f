package chain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_ParseFeeStrategy(t *testing.T) {
	tests := []struct {
		input    string
		expected FeeStrategy
	}{
		{input: "fastest", expected: FeeStrategyFastest},
		{input: "halfhour", expected: FeeStrategyHalfHour},
		{input: "hour", expected: FeeStrategyHour},
		{input: "economy", expected: FeeStrategyEconomy},
		{input: "minimum", expected: FeeStrategyMinimum},
	}

	for _, tst := range tests {
		t.Run(tst.input, func(t *testing.T) {
			strategy, err := ParseFeeStrategy(tst.input)
			assert.NoError(t, err)
			assert.Equal(t, tst.expected, strategy)
		})
	}

	_, err := ParseFeeStrategy("warp speed")
	assert.Error(t, err)
}

func Test_DefaultFeeEstimator(t *testing.T) {
	estimator := NewDefaultFeeEstimator(6)

	estimation, err := estimator.EstimateFeeRate(context.Background(), FeeStrategyEconomy)
	assert.NoError(t, err)
	assert.Nil(t, estimation.SatPerVByte)
	assert.Equal(t, uint32(6), *estimation.TargetConf)
}

type countingEstimator struct {
	calls int
	err   error
}

func (c *countingEstimator) EstimateFeeRate(ctx context.Context, strategy FeeStrategy) (*FeeEstimation, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	rate := float64(c.calls)
	return &FeeEstimation{SatPerVByte: &rate}, nil
}

func Test_CachedFeeEstimator_ServesFromCache(t *testing.T) {
	inner := &countingEstimator{}
	estimator := NewCachedFeeEstimator(inner)

	first, err := estimator.EstimateFeeRate(context.Background(), FeeStrategyEconomy)
	assert.NoError(t, err)
	second, err := estimator.EstimateFeeRate(context.Background(), FeeStrategyEconomy)
	assert.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, first, second)
}

func Test_CachedFeeEstimator_CachesPerStrategy(t *testing.T) {
	inner := &countingEstimator{}
	estimator := NewCachedFeeEstimator(inner)

	_, err := estimator.EstimateFeeRate(context.Background(), FeeStrategyEconomy)
	assert.NoError(t, err)
	_, err = estimator.EstimateFeeRate(context.Background(), FeeStrategyFastest)
	assert.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}

func Test_CachedFeeEstimator_RefreshesExpiredEntries(t *testing.T) {
	restore := cacheDuration
	cacheDuration = time.Millisecond
	defer func() { cacheDuration = restore }()

	inner := &countingEstimator{}
	estimator := NewCachedFeeEstimator(inner)

	_, err := estimator.EstimateFeeRate(context.Background(), FeeStrategyEconomy)
	assert.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, err = estimator.EstimateFeeRate(context.Background(), FeeStrategyEconomy)
	assert.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}

func Test_CachedFeeEstimator_DoesNotCacheFailures(t *testing.T) {
	inner := &countingEstimator{err: errors.New("api down")}
	estimator := NewCachedFeeEstimator(inner)

	_, err := estimator.EstimateFeeRate(context.Background(), FeeStrategyEconomy)
	assert.Error(t, err)

	inner.err = nil
	estimation, err := estimator.EstimateFeeRate(context.Background(), FeeStrategyEconomy)
	assert.NoError(t, err)
	assert.NotNil(t, estimation.SatPerVByte)
	assert.Equal(t, 2, inner.calls)
}
