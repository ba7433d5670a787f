package chain

import "context"

// DefaultFeeEstimator defers the estimate to the node itself by only
// setting a confirmation target. Used when no external fee api is
// configured.
type DefaultFeeEstimator struct {
	targetConf uint32
}

func NewDefaultFeeEstimator(targetConf uint32) *DefaultFeeEstimator {
	return &DefaultFeeEstimator{
		targetConf: targetConf,
	}
}

func (e *DefaultFeeEstimator) EstimateFeeRate(
	context.Context,
	FeeStrategy,
) (*FeeEstimation, error) {
	return &FeeEstimation{
		TargetConf: &e.targetConf,
	}, nil
}
