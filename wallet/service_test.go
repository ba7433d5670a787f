package wallet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lnwallet/walletd/chain"
	"github.com/lnwallet/walletd/lightning"
	"github.com/stretchr/testify/assert"
)

type mockClient struct {
	lightning.Client

	transactions []*lightning.Transaction
	sendCoinsReq *lightning.SendCoinsRequest
}

func (m *mockClient) Transactions(ctx context.Context) ([]*lightning.Transaction, error) {
	return m.transactions, nil
}

func (m *mockClient) SendCoins(ctx context.Context, req *lightning.SendCoinsRequest) (string, error) {
	m.sendCoinsReq = req
	return "txid", nil
}

type staticSource struct {
	client lightning.Client
	err    error
}

func (s *staticSource) Client() (lightning.Client, error) {
	return s.client, s.err
}

type mockEstimator struct {
	estimation *chain.FeeEstimation
	calls      int
}

func (m *mockEstimator) EstimateFeeRate(ctx context.Context, strategy chain.FeeStrategy) (*chain.FeeEstimation, error) {
	m.calls++
	return m.estimation, nil
}

func feeRate(satPerVByte float64) *chain.FeeEstimation {
	return &chain.FeeEstimation{SatPerVByte: &satPerVByte}
}

func newTestService(client lightning.Client, estimator chain.FeeEstimator) *Service {
	return NewService(&staticSource{client: client}, estimator, chain.FeeStrategyEconomy)
}

func Test_Transactions_SortedMostRecentFirst(t *testing.T) {
	client := &mockClient{
		transactions: []*lightning.Transaction{
			{TxHash: "a", Timestamp: time.Unix(100, 0)},
			{TxHash: "b", Timestamp: time.Unix(300, 0)},
			{TxHash: "c", Timestamp: time.Unix(200, 0)},
		},
	}

	service := newTestService(client, &mockEstimator{})
	transactions, err := service.Transactions(context.Background())
	assert.NoError(t, err)

	hashes := []string{}
	for _, transaction := range transactions {
		hashes = append(hashes, transaction.TxHash)
	}
	assert.Equal(t, []string{"b", "c", "a"}, hashes)
}

func Test_SendCoins_EstimatorFillsFeeRate(t *testing.T) {
	client := &mockClient{}
	estimator := &mockEstimator{estimation: feeRate(12.4)}

	service := newTestService(client, estimator)
	txid, err := service.SendCoins(context.Background(), "bc1qaddr", 5000, 0)
	assert.NoError(t, err)
	assert.Equal(t, "txid", txid)

	assert.Equal(t, 1, estimator.calls)
	assert.Equal(t, uint64(12), client.sendCoinsReq.SatPerVbyte)
	assert.Equal(t, int32(0), client.sendCoinsReq.TargetConf)
}

func Test_SendCoins_EstimatorFillsTargetConf(t *testing.T) {
	target := uint32(6)
	client := &mockClient{}
	estimator := &mockEstimator{estimation: &chain.FeeEstimation{TargetConf: &target}}

	service := newTestService(client, estimator)
	_, err := service.SendCoins(context.Background(), "bc1qaddr", 5000, 0)
	assert.NoError(t, err)

	assert.Equal(t, uint64(0), client.sendCoinsReq.SatPerVbyte)
	assert.Equal(t, int32(6), client.sendCoinsReq.TargetConf)
}

func Test_SendCoins_ExplicitFeeRateSkipsEstimator(t *testing.T) {
	client := &mockClient{}
	estimator := &mockEstimator{estimation: feeRate(12.4)}

	service := newTestService(client, estimator)
	_, err := service.SendCoins(context.Background(), "bc1qaddr", 5000, 30)
	assert.NoError(t, err)

	assert.Equal(t, 0, estimator.calls)
	assert.Equal(t, uint64(30), client.sendCoinsReq.SatPerVbyte)
}

func Test_Wallet_ClientUnavailable(t *testing.T) {
	source := &staticSource{err: lightning.ErrClientUnavailable}
	service := NewService(source, &mockEstimator{}, chain.FeeStrategyEconomy)

	_, err := service.Balance(context.Background())
	assert.ErrorIs(t, err, lightning.ErrClientUnavailable)

	_, err = service.Transactions(context.Background())
	assert.ErrorIs(t, err, lightning.ErrClientUnavailable)

	_, err = service.NewAddress(context.Background())
	assert.ErrorIs(t, err, lightning.ErrClientUnavailable)

	_, err = service.SendCoins(context.Background(), "bc1qaddr", 1, 1)
	assert.ErrorIs(t, err, lightning.ErrClientUnavailable)
}

func Test_SendCoins_EstimatorError(t *testing.T) {
	service := NewService(
		&staticSource{client: &mockClient{}},
		failingEstimator{},
		chain.FeeStrategyEconomy,
	)

	_, err := service.SendCoins(context.Background(), "bc1qaddr", 5000, 0)
	assert.Error(t, err)
}

type failingEstimator struct{}

func (failingEstimator) EstimateFeeRate(ctx context.Context, strategy chain.FeeStrategy) (*chain.FeeEstimation, error) {
	return nil, errors.New("estimator down")
}
