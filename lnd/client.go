package lnd

import (
	"context"
	"encoding/hex"
	"log"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/lightningnetwork/lnd/lnrpc"
	"github.com/lnwallet/walletd/lightning"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Client maps the node's lnrpc surface into local domain types. It is
// stateless apart from the underlying grpc connection.
type Client struct {
	client lnrpc.LightningClient
}

func NewClient(conn *grpc.ClientConn) *Client {
	return &Client{
		client: lnrpc.NewLightningClient(conn),
	}
}

func (c *Client) WalletBalance(ctx context.Context) (*lightning.WalletBalance, error) {
	r, err := c.client.WalletBalance(ctx, &lnrpc.WalletBalanceRequest{})
	if err != nil {
		log.Printf("LND: client.WalletBalance() error: %v", err)
		return nil, lightning.TranslateRPCError(err)
	}

	return &lightning.WalletBalance{
		TotalSat:       r.TotalBalance,
		ConfirmedSat:   r.ConfirmedBalance,
		UnconfirmedSat: r.UnconfirmedBalance,
	}, nil
}

func (c *Client) ChannelBalance(ctx context.Context) (int64, error) {
	r, err := c.client.ChannelBalance(ctx, &lnrpc.ChannelBalanceRequest{})
	if err != nil {
		log.Printf("LND: client.ChannelBalance() error: %v", err)
		return 0, lightning.TranslateRPCError(err)
	}

	return int64(r.LocalBalance.GetSat()), nil
}

func (c *Client) Transactions(ctx context.Context) ([]*lightning.Transaction, error) {
	r, err := c.client.GetTransactions(ctx, &lnrpc.GetTransactionsRequest{})
	if err != nil {
		log.Printf("LND: client.GetTransactions() error: %v", err)
		return nil, lightning.TranslateRPCError(err)
	}

	transactions := make([]*lightning.Transaction, 0, len(r.Transactions))
	for _, t := range r.Transactions {
		transactions = append(transactions, &lightning.Transaction{
			TxHash:           t.TxHash,
			Timestamp:        time.Unix(t.TimeStamp, 0),
			NumConfirmations: t.NumConfirmations,
			BlockHash:        t.BlockHash,
			BlockHeight:      t.BlockHeight,
			AmountSat:        t.Amount,
			TotalFeesSat:     t.TotalFees,
			DestAddresses:    t.DestAddresses,
		})
	}

	return transactions, nil
}

func (c *Client) NewAddress(ctx context.Context) (string, error) {
	return c.newAddress(ctx, lnrpc.AddressType_NESTED_PUBKEY_HASH)
}

func (c *Client) NewWitnessAddress(ctx context.Context) (string, error) {
	return c.newAddress(ctx, lnrpc.AddressType_WITNESS_PUBKEY_HASH)
}

func (c *Client) newAddress(ctx context.Context, addressType lnrpc.AddressType) (string, error) {
	r, err := c.client.NewAddress(ctx, &lnrpc.NewAddressRequest{Type: addressType})
	if err != nil {
		log.Printf("LND: client.NewAddress(%v) error: %v", addressType, err)
		return "", lightning.TranslateRPCError(err)
	}

	return r.Address, nil
}

func (c *Client) SendCoins(ctx context.Context, req *lightning.SendCoinsRequest) (string, error) {
	lnReq := &lnrpc.SendCoinsRequest{
		Addr:   req.Addr,
		Amount: req.AmountSat,
	}

	if req.SatPerVbyte != 0 {
		lnReq.SatPerVbyte = req.SatPerVbyte
	} else if req.TargetConf != 0 {
		lnReq.TargetConf = req.TargetConf
	}

	r, err := c.client.SendCoins(ctx, lnReq)
	if err != nil {
		log.Printf("LND: client.SendCoins(%v, %v) error: %v", req.Addr, req.AmountSat, err)
		return "", lightning.TranslateRPCError(err)
	}

	return r.Txid, nil
}

func (c *Client) ListChannels(ctx context.Context) ([]*lightning.Channel, error) {
	r, err := c.client.ListChannels(ctx, &lnrpc.ListChannelsRequest{})
	if err != nil {
		log.Printf("LND: client.ListChannels() error: %v", err)
		return nil, lightning.TranslateRPCError(err)
	}

	channels := make([]*lightning.Channel, 0, len(r.Channels))
	for _, ch := range r.Channels {
		channels = append(channels, &lightning.Channel{
			Active:        ch.Active,
			RemotePubkey:  ch.RemotePubkey,
			ChannelPoint:  ch.ChannelPoint,
			ChanId:        ch.ChanId,
			CapacitySat:   ch.Capacity,
			RemoteBalance: ch.RemoteBalance,
			CommitFee:     ch.CommitFee,
			CommitWeight:  ch.CommitWeight,
			FeePerKw:      ch.FeePerKw,
			NumUpdates:    ch.NumUpdates,
			CsvDelay:      ch.CsvDelay,
		})
	}

	return channels, nil
}

// PendingChannels maps the pending-open, pending-force-close and
// waiting-close sub-lists into the common channel shape. Fields the pending
// shape does not carry stay zero.
func (c *Client) PendingChannels(ctx context.Context) ([]*lightning.Channel, error) {
	r, err := c.client.PendingChannels(ctx, &lnrpc.PendingChannelsRequest{})
	if err != nil {
		log.Printf("LND: client.PendingChannels() error: %v", err)
		return nil, lightning.TranslateRPCError(err)
	}

	var channels []*lightning.Channel
	for _, p := range r.PendingOpenChannels {
		ch := pendingChannel(p.Channel)
		if ch == nil {
			continue
		}
		ch.CommitFee = p.CommitFee
		ch.CommitWeight = p.CommitWeight
		ch.FeePerKw = p.FeePerKw
		channels = append(channels, ch)
	}

	for _, p := range r.PendingForceClosingChannels {
		if ch := pendingChannel(p.Channel); ch != nil {
			channels = append(channels, ch)
		}
	}

	for _, p := range r.WaitingCloseChannels {
		if ch := pendingChannel(p.Channel); ch != nil {
			channels = append(channels, ch)
		}
	}

	return channels, nil
}

func pendingChannel(ch *lnrpc.PendingChannelsResponse_PendingChannel) *lightning.Channel {
	if ch == nil {
		return nil
	}

	return &lightning.Channel{
		Active:        false,
		RemotePubkey:  ch.RemoteNodePub,
		ChannelPoint:  ch.ChannelPoint,
		CapacitySat:   ch.Capacity,
		RemoteBalance: ch.RemoteBalance,
	}
}

func (c *Client) OpenChannel(ctx context.Context, req *lightning.OpenChannelRequest) (*lightning.ChannelPoint, error) {
	pubkey, err := parsePubkey(req.RemotePubkey)
	if err != nil {
		return nil, err
	}

	lnReq := &lnrpc.OpenChannelRequest{
		NodePubkey:         pubkey,
		LocalFundingAmount: req.AmountSat,
		SatPerVbyte:        req.SatPerVbyte,
	}

	channelPoint, err := c.client.OpenChannelSync(ctx, lnReq)
	if err != nil {
		log.Printf("LND: client.OpenChannelSync(%v, %v) error: %v", req.RemotePubkey, req.AmountSat, err)
		return nil, lightning.TranslateRPCError(err)
	}

	return &lightning.ChannelPoint{
		FundingTxid: fundingTxidString(channelPoint),
		OutputIndex: channelPoint.OutputIndex,
	}, nil
}

// CloseChannel consumes the close update stream. Intermediate updates are
// ignored; the first update carrying a transaction id, whether the close is
// merely pending or already done, completes the call.
func (c *Client) CloseChannel(ctx context.Context, req *lightning.CloseChannelRequest) (string, error) {
	lnReq := &lnrpc.CloseChannelRequest{
		ChannelPoint: &lnrpc.ChannelPoint{
			FundingTxid: &lnrpc.ChannelPoint_FundingTxidStr{
				FundingTxidStr: req.FundingTxid,
			},
			OutputIndex: req.OutputIndex,
		},
		Force:       req.Force,
		TargetConf:  req.TargetConf,
		SatPerVbyte: req.SatPerVbyte,
	}

	stream, err := c.client.CloseChannel(ctx, lnReq)
	if err != nil {
		log.Printf("LND: client.CloseChannel(%v:%d) error: %v", req.FundingTxid, req.OutputIndex, err)
		return "", lightning.TranslateRPCError(err)
	}

	for {
		update, err := stream.Recv()
		if err != nil {
			log.Printf("LND: CloseChannel stream error: %v", err)
			return "", lightning.TranslateRPCError(err)
		}

		switch u := update.Update.(type) {
		case *lnrpc.CloseStatusUpdate_ClosePending:
			return txidString(u.ClosePending.Txid), nil
		case *lnrpc.CloseStatusUpdate_ChanClose:
			return txidString(u.ChanClose.ClosingTxid), nil
		}
	}
}

func (c *Client) NodeInfo(ctx context.Context, pubkey string) (*lightning.NodeInfo, error) {
	if _, err := parsePubkey(pubkey); err != nil {
		return nil, err
	}

	r, err := c.client.GetNodeInfo(ctx, &lnrpc.NodeInfoRequest{PubKey: pubkey})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}

		log.Printf("LND: client.GetNodeInfo(%v) error: %v", pubkey, err)
		return nil, lightning.TranslateRPCError(err)
	}

	info := &lightning.NodeInfo{
		TotalCapacitySat: r.TotalCapacity,
		NumChannels:      r.NumChannels,
	}
	if r.Node != nil {
		info.Pubkey = r.Node.PubKey
		info.Alias = r.Node.Alias
		info.Color = r.Node.Color
		info.LastUpdate = time.Unix(int64(r.Node.LastUpdate), 0)
	}

	return info, nil
}

func (c *Client) ListPeers(ctx context.Context) ([]*lightning.Peer, error) {
	r, err := c.client.ListPeers(ctx, &lnrpc.ListPeersRequest{})
	if err != nil {
		log.Printf("LND: client.ListPeers() error: %v", err)
		return nil, lightning.TranslateRPCError(err)
	}

	peers := make([]*lightning.Peer, 0, len(r.Peers))
	for _, p := range r.Peers {
		peers = append(peers, &lightning.Peer{
			Pubkey:  p.PubKey,
			Address: p.Address,
		})
	}

	return peers, nil
}

func (c *Client) ConnectPeer(ctx context.Context, pubkey, host string) error {
	if _, err := parsePubkey(pubkey); err != nil {
		return err
	}

	_, err := c.client.ConnectPeer(ctx, &lnrpc.ConnectPeerRequest{
		Addr: &lnrpc.LightningAddress{
			Pubkey: pubkey,
			Host:   host,
		},
	})
	if err != nil {
		log.Printf("LND: client.ConnectPeer(%v@%v) error: %v", pubkey, host, err)
		return lightning.TranslateRPCError(err)
	}

	return nil
}

func (c *Client) AddInvoice(ctx context.Context, amountSat int64, memo string) (*lightning.CreatedInvoice, error) {
	r, err := c.client.AddInvoice(ctx, &lnrpc.Invoice{
		Value: amountSat,
		Memo:  memo,
	})
	if err != nil {
		log.Printf("LND: client.AddInvoice(%v) error: %v", amountSat, err)
		return nil, lightning.TranslateRPCError(err)
	}

	return &lightning.CreatedInvoice{
		PaymentRequest: r.PaymentRequest,
		PaymentHash:    r.RHash,
	}, nil
}

func (c *Client) ListInvoices(ctx context.Context) ([]*lightning.Invoice, error) {
	r, err := c.client.ListInvoices(ctx, &lnrpc.ListInvoiceRequest{})
	if err != nil {
		log.Printf("LND: client.ListInvoices() error: %v", err)
		return nil, lightning.TranslateRPCError(err)
	}

	invoices := make([]*lightning.Invoice, 0, len(r.Invoices))
	for _, inv := range r.Invoices {
		invoices = append(invoices, &lightning.Invoice{
			CreationDate:   time.Unix(inv.CreationDate, 0),
			AmountSat:      inv.Value,
			Memo:           inv.Memo,
			Expiry:         time.Duration(inv.Expiry) * time.Second,
			PaymentRequest: inv.PaymentRequest,
			Settled:        inv.State == lnrpc.Invoice_SETTLED,
			PaymentHash:    inv.RHash,
		})
	}

	return invoices, nil
}

func (c *Client) ListPayments(ctx context.Context) ([]*lightning.Payment, error) {
	r, err := c.client.ListPayments(ctx, &lnrpc.ListPaymentsRequest{})
	if err != nil {
		log.Printf("LND: client.ListPayments() error: %v", err)
		return nil, lightning.TranslateRPCError(err)
	}

	payments := make([]*lightning.Payment, 0, len(r.Payments))
	for _, p := range r.Payments {
		payments = append(payments, &lightning.Payment{
			AmountSat:       p.ValueSat,
			FeeSat:          p.FeeSat,
			Path:            paymentPath(p),
			PaymentHash:     p.PaymentHash,
			PaymentPreimage: p.PaymentPreimage,
			CreationDate:    time.Unix(p.CreationDate, 0),
		})
	}

	return payments, nil
}

func paymentPath(p *lnrpc.Payment) []string {
	var path []string
	for _, htlc := range p.Htlcs {
		if htlc.Status != lnrpc.HTLCAttempt_SUCCEEDED || htlc.Route == nil {
			continue
		}
		for _, hop := range htlc.Route.Hops {
			path = append(path, hop.PubKey)
		}
		break
	}

	return path
}

func (c *Client) DecodePaymentRequest(ctx context.Context, paymentRequest string) (*lightning.DecodedPaymentRequest, error) {
	r, err := c.client.DecodePayReq(ctx, &lnrpc.PayReqString{PayReq: paymentRequest})
	if err != nil {
		log.Printf("LND: client.DecodePayReq() error: %v", err)
		return nil, lightning.TranslateRPCError(err)
	}

	return &lightning.DecodedPaymentRequest{
		Timestamp:      time.Unix(r.Timestamp, 0),
		AmountSat:      r.NumSatoshis,
		Description:    r.Description,
		Expiry:         time.Duration(r.Expiry) * time.Second,
		PaymentRequest: paymentRequest,
	}, nil
}

// SendPayment issues a single synchronous send. A non-empty payment error
// in the response is the node rejecting the payment, not a transport
// failure; it must not be retried.
func (c *Client) SendPayment(ctx context.Context, paymentRequest string) (*lightning.PaymentResult, error) {
	r, err := c.client.SendPaymentSync(ctx, &lnrpc.SendRequest{
		PaymentRequest: paymentRequest,
	})
	if err != nil {
		log.Printf("LND: client.SendPaymentSync() error: %v", err)
		return nil, lightning.TranslateRPCError(err)
	}

	if r.PaymentError != "" {
		return nil, lightning.Errorf(lightning.KindRemoteRejection,
			"payment failed: %v", r.PaymentError)
	}

	result := &lightning.PaymentResult{
		PaymentHash:     hex.EncodeToString(r.PaymentHash),
		PaymentPreimage: hex.EncodeToString(r.PaymentPreimage),
	}
	if r.PaymentRoute != nil {
		result.FeeSat = r.PaymentRoute.TotalFeesMsat / 1000
	}

	return result, nil
}

func parsePubkey(pubkey string) ([]byte, error) {
	b, err := hex.DecodeString(pubkey)
	if err != nil {
		return nil, lightning.Errorf(lightning.KindLocalValidation,
			"invalid pubkey %q: %v", pubkey, err)
	}

	if _, err := btcec.ParsePubKey(b); err != nil {
		return nil, lightning.Errorf(lightning.KindLocalValidation,
			"invalid pubkey %q: %v", pubkey, err)
	}

	return b, nil
}

func fundingTxidString(cp *lnrpc.ChannelPoint) string {
	if str := cp.GetFundingTxidStr(); str != "" {
		return str
	}

	return txidString(cp.GetFundingTxidBytes())
}

func txidString(b []byte) string {
	h, err := chainhash.NewHash(b)
	if err != nil {
		return hex.EncodeToString(b)
	}

	return h.String()
}

func isNotFound(err error) bool {
	if st, ok := status.FromError(err); ok {
		if st.Code() == codes.NotFound {
			return true
		}
		if strings.Contains(st.Message(), "unable to find node") {
			return true
		}
	}

	return false
}

var _ lightning.Client = (*Client)(nil)
