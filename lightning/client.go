package lightning

import "context"

type SendCoinsRequest struct {
	Addr        string
	AmountSat   int64
	SatPerVbyte uint64
	TargetConf  int32
}

type OpenChannelRequest struct {
	// The hex encoded public key of the remote node.
	RemotePubkey string

	AmountSat   int64
	SatPerVbyte uint64
}

type CloseChannelRequest struct {
	FundingTxid string
	OutputIndex uint32
	Force       bool
	TargetConf  int32
	SatPerVbyte uint64
}

type CreatedInvoice struct {
	PaymentRequest string
	PaymentHash    []byte
}

// Client is one node's rpc surface in local types. Implementations map the
// remote response shapes field by field and translate call errors into the
// taxonomy in errors.go. A Client is bound to the credentials it was built
// with; it is never rebuilt in place.
type Client interface {
	WalletBalance(ctx context.Context) (*WalletBalance, error)
	ChannelBalance(ctx context.Context) (int64, error)
	Transactions(ctx context.Context) ([]*Transaction, error)
	NewAddress(ctx context.Context) (string, error)
	NewWitnessAddress(ctx context.Context) (string, error)
	SendCoins(ctx context.Context, req *SendCoinsRequest) (string, error)

	ListChannels(ctx context.Context) ([]*Channel, error)
	PendingChannels(ctx context.Context) ([]*Channel, error)
	OpenChannel(ctx context.Context, req *OpenChannelRequest) (*ChannelPoint, error)

	// CloseChannel consumes the close update stream until the terminal
	// update and returns the closing transaction id.
	CloseChannel(ctx context.Context, req *CloseChannelRequest) (string, error)

	// NodeInfo returns nil without error when the node is not found in the
	// graph.
	NodeInfo(ctx context.Context, pubkey string) (*NodeInfo, error)
	ListPeers(ctx context.Context) ([]*Peer, error)
	ConnectPeer(ctx context.Context, pubkey, host string) error

	AddInvoice(ctx context.Context, amountSat int64, memo string) (*CreatedInvoice, error)
	ListInvoices(ctx context.Context) ([]*Invoice, error)
	ListPayments(ctx context.Context) ([]*Payment, error)
	DecodePaymentRequest(ctx context.Context, paymentRequest string) (*DecodedPaymentRequest, error)
	SendPayment(ctx context.Context, paymentRequest string) (*PaymentResult, error)
}

// ClientSource hands out the current client, read fresh on every call. The
// connection manager is the only real implementation.
type ClientSource interface {
	Client() (Client, error)
}
