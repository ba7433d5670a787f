package wallet

import (
	"context"

	"github.com/lnwallet/walletd/chain"
	"github.com/lnwallet/walletd/lightning"
)

// Service exposes the on-chain wallet operations. It is stateless; every
// call reads the current client fresh from the source and fails with
// ErrClientUnavailable when there is none. Retry policy belongs to the
// caller, not here.
type Service struct {
	source       lightning.ClientSource
	feeEstimator chain.FeeEstimator
	feeStrategy  chain.FeeStrategy
}

func NewService(
	source lightning.ClientSource,
	feeEstimator chain.FeeEstimator,
	feeStrategy chain.FeeStrategy,
) *Service {
	return &Service{
		source:       source,
		feeEstimator: feeEstimator,
		feeStrategy:  feeStrategy,
	}
}

// Balance is the spendable off-chain balance across all open channels.
func (s *Service) Balance(ctx context.Context) (int64, error) {
	client, err := s.source.Client()
	if err != nil {
		return 0, err
	}

	return client.ChannelBalance(ctx)
}

func (s *Service) WalletBalance(ctx context.Context) (*lightning.WalletBalance, error) {
	client, err := s.source.Client()
	if err != nil {
		return nil, err
	}

	return client.WalletBalance(ctx)
}

// Transactions returns the on-chain transaction history, most recent
// first.
func (s *Service) Transactions(ctx context.Context) ([]*lightning.Transaction, error) {
	client, err := s.source.Client()
	if err != nil {
		return nil, err
	}

	transactions, err := client.Transactions(ctx)
	if err != nil {
		return nil, err
	}

	lightning.SortTransactions(transactions)
	return transactions, nil
}

func (s *Service) NewAddress(ctx context.Context) (string, error) {
	client, err := s.source.Client()
	if err != nil {
		return "", err
	}

	return client.NewAddress(ctx)
}

func (s *Service) NewWitnessAddress(ctx context.Context) (string, error) {
	client, err := s.source.Client()
	if err != nil {
		return "", err
	}

	return client.NewWitnessAddress(ctx)
}

// SendCoins sends an on-chain payment. When the caller passes no fee rate,
// one is taken from the fee estimator.
func (s *Service) SendCoins(ctx context.Context, addr string, amountSat int64, satPerVbyte uint64) (string, error) {
	client, err := s.source.Client()
	if err != nil {
		return "", err
	}

	req := &lightning.SendCoinsRequest{
		Addr:        addr,
		AmountSat:   amountSat,
		SatPerVbyte: satPerVbyte,
	}

	if req.SatPerVbyte == 0 {
		estimation, err := s.feeEstimator.EstimateFeeRate(ctx, s.feeStrategy)
		if err != nil {
			return "", err
		}

		if estimation.SatPerVByte != nil {
			req.SatPerVbyte = uint64(*estimation.SatPerVByte)
		} else if estimation.TargetConf != nil {
			req.TargetConf = int32(*estimation.TargetConf)
		}
	}

	return client.SendCoins(ctx, req)
}
