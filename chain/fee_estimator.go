package chain

import (
	"context"
	"fmt"
)

type FeeStrategy int

const (
	FeeStrategyFastest  FeeStrategy = 0
	FeeStrategyHalfHour FeeStrategy = 1
	FeeStrategyHour     FeeStrategy = 2
	FeeStrategyEconomy  FeeStrategy = 3
	FeeStrategyMinimum  FeeStrategy = 4
)

func ParseFeeStrategy(s string) (FeeStrategy, error) {
	switch s {
	case "fastest":
		return FeeStrategyFastest, nil
	case "halfhour":
		return FeeStrategyHalfHour, nil
	case "hour":
		return FeeStrategyHour, nil
	case "economy":
		return FeeStrategyEconomy, nil
	case "minimum":
		return FeeStrategyMinimum, nil
	}

	return 0, fmt.Errorf("unknown fee strategy: %v", s)
}

// FeeEstimation carries either a concrete fee rate or a confirmation
// target for the node to estimate from, never both.
type FeeEstimation struct {
	SatPerVByte *float64
	TargetConf  *uint32
}

type FeeEstimator interface {
	EstimateFeeRate(context.Context, FeeStrategy) (*FeeEstimation, error)
}
