package lightning

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Channel is a read-only snapshot of a payment channel, open or pending.
// Two snapshots refer to the same channel iff their ChanId matches.
type Channel struct {
	Active       bool
	RemotePubkey string

	// The funding outpoint as "txid:outputIndex".
	ChannelPoint string

	ChanId         uint64
	CapacitySat    int64
	RemoteBalance  int64
	CommitFee      int64
	CommitWeight   int64
	FeePerKw       int64
	NumUpdates     uint64
	CsvDelay       uint32
}

// LocalBalance is the spendable balance on our side of the channel. The
// commit fee is carried by the initiator, so the difference can go below
// zero for small channels; it is clamped at zero.
func (c *Channel) LocalBalance() int64 {
	balance := c.CapacitySat - c.RemoteBalance - c.CommitFee
	if balance < 0 {
		return 0
	}

	return balance
}

// ParseChannelPoint splits a "txid:outputIndex" channel point.
func ParseChannelPoint(channelPoint string) (string, uint32, error) {
	txid, indexStr, ok := strings.Cut(channelPoint, ":")
	if !ok || txid == "" {
		return "", 0, NewError(KindLocalValidation,
			fmt.Errorf("invalid channel point %q", channelPoint))
	}

	index, err := strconv.ParseUint(indexStr, 10, 32)
	if err != nil {
		return "", 0, NewError(KindLocalValidation,
			fmt.Errorf("invalid channel point %q: %w", channelPoint, err))
	}

	return txid, uint32(index), nil
}

type ChannelViewKind int

const (
	ChannelViewActive  ChannelViewKind = 0
	ChannelViewPending ChannelViewKind = 1
)

// ChannelView tags a channel snapshot with the collection it came from, so
// open and pending channels can live in one ordered list.
type ChannelView struct {
	Kind    ChannelViewKind
	Channel *Channel
}

// SortChannelViewsByBalance orders views by local balance. The sort is
// stable: views with equal balance keep their fetch order.
func SortChannelViewsByBalance(views []ChannelView, descending bool) {
	sort.SliceStable(views, func(i, j int) bool {
		a := views[i].Channel.LocalBalance()
		b := views[j].Channel.LocalBalance()
		if descending {
			return a > b
		}
		return a < b
	})
}

type WalletBalance struct {
	TotalSat       int64
	ConfirmedSat   int64
	UnconfirmedSat int64
}

type Transaction struct {
	TxHash           string
	Timestamp        time.Time
	NumConfirmations int32
	BlockHash        string
	BlockHeight      int32
	AmountSat        int64
	TotalFeesSat     int64
	DestAddresses    []string
}

// SortTransactions orders transactions most recent first, preserving the
// fetch order for equal timestamps.
func SortTransactions(transactions []*Transaction) {
	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].Timestamp.After(transactions[j].Timestamp)
	})
}

type Invoice struct {
	CreationDate   time.Time
	AmountSat      int64
	Memo           string
	Expiry         time.Duration
	PaymentRequest string
	Settled        bool
	PaymentHash    []byte
}

type Payment struct {
	AmountSat       int64
	FeeSat          int64
	Path            []string
	PaymentHash     string
	PaymentPreimage string
	CreationDate    time.Time
}

// DecodedPaymentRequest is the result of decoding a payment request string
// against the node, before anything was paid.
type DecodedPaymentRequest struct {
	Timestamp      time.Time
	AmountSat      int64
	Description    string
	Expiry         time.Duration
	PaymentRequest string
}

type PaymentResult struct {
	PaymentHash     string
	PaymentPreimage string
	FeeSat          int64
}

type PayableKind int

const (
	PayableInvoice PayableKind = 0
	PayablePayment PayableKind = 1
)

// Payable is either a received invoice or a sent payment, ordered by the
// underlying creation time.
type Payable struct {
	Kind    PayableKind
	Invoice *Invoice
	Payment *Payment
}

func (p *Payable) Timestamp() time.Time {
	switch p.Kind {
	case PayableInvoice:
		return p.Invoice.CreationDate
	case PayablePayment:
		return p.Payment.CreationDate
	}

	return time.Time{}
}

// SortPayables orders payables most recent first.
func SortPayables(payables []Payable) {
	sort.SliceStable(payables, func(i, j int) bool {
		return payables[i].Timestamp().After(payables[j].Timestamp())
	})
}

type NodeInfo struct {
	Pubkey           string
	Alias            string
	Color            string
	LastUpdate       time.Time
	TotalCapacitySat int64
	NumChannels      uint32
}

type Peer struct {
	Pubkey  string
	Address string
}

// ChannelPoint is a funding outpoint returned by a channel open.
type ChannelPoint struct {
	FundingTxid string
	OutputIndex uint32
}

func (c *ChannelPoint) String() string {
	return fmt.Sprintf("%s:%d", c.FundingTxid, c.OutputIndex)
}
