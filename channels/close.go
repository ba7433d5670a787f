package channels

import (
	"context"
	"fmt"
	"sync"

	"github.com/lnwallet/walletd/lightning"
)

// Confirmation targets for the closing transaction. A force close settles
// over the longer unilateral timeout path and gets a much higher target.
const (
	closeTargetConf      = 6
	closeTargetConfForce = 192
)

type CloseState int

const (
	CloseStateIdle           CloseState = 0
	CloseStateConfirmPending CloseState = 1
	CloseStateClosing        CloseState = 2
	CloseStateClosed         CloseState = 3
	CloseStateFailed         CloseState = 4
)

func (s CloseState) String() string {
	switch s {
	case CloseStateIdle:
		return "idle"
	case CloseStateConfirmPending:
		return "confirm pending"
	case CloseStateClosing:
		return "closing"
	case CloseStateClosed:
		return "closed"
	case CloseStateFailed:
		return "failed"
	}

	return "unknown"
}

// Closer drives the close-channel flow. Closing a channel is a
// side-effecting, non-idempotent action, so the network call is issued
// exactly once per explicit confirmation and is never retried; a failed
// close requires a fresh confirmation on a fresh Closer.
type Closer struct {
	source lightning.ClientSource

	mtx     sync.Mutex
	state   CloseState
	gen     uint64
	channel *lightning.Channel
	txid    string
	err     error
}

func NewCloser(source lightning.ClientSource) *Closer {
	return &Closer{
		source: source,
	}
}

// Request marks the intent to close the given channel. No network call is
// made until Confirm.
func (c *Closer) Request(channel *lightning.Channel) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if c.state != CloseStateIdle {
		return fmt.Errorf("cannot request close in state %v", c.state)
	}

	c.channel = channel
	c.state = CloseStateConfirmPending
	return nil
}

// Confirm issues the close. The channel point is parsed here; a malformed
// point fails the flow locally without touching the network. Inactive
// channels are force closed.
func (c *Closer) Confirm(ctx context.Context, satPerVbyte uint64) error {
	c.mtx.Lock()
	if c.state != CloseStateConfirmPending {
		state := c.state
		c.mtx.Unlock()
		return fmt.Errorf("cannot confirm close in state %v", state)
	}

	channel := c.channel
	fundingTxid, outputIndex, err := lightning.ParseChannelPoint(channel.ChannelPoint)
	if err != nil {
		c.state = CloseStateFailed
		c.err = err
		c.mtx.Unlock()
		return err
	}

	force := !channel.Active
	targetConf := int32(closeTargetConf)
	if force {
		targetConf = closeTargetConfForce
	}

	c.state = CloseStateClosing
	gen := c.gen
	c.mtx.Unlock()

	client, err := c.source.Client()
	if err != nil {
		return c.finish(gen, "", err)
	}

	txid, err := client.CloseChannel(ctx, &lightning.CloseChannelRequest{
		FundingTxid: fundingTxid,
		OutputIndex: outputIndex,
		Force:       force,
		TargetConf:  targetConf,
		SatPerVbyte: satPerVbyte,
	})

	return c.finish(gen, txid, err)
}

func (c *Closer) finish(gen uint64, txid string, err error) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	// The flow was canceled while the call was in flight; the result is
	// discarded rather than applied to a torn down machine.
	if gen != c.gen {
		return nil
	}

	if err != nil {
		c.state = CloseStateFailed
		c.err = err
		return err
	}

	c.state = CloseStateClosed
	c.txid = txid
	return nil
}

// Cancel dismisses the flow. An in-flight close call is allowed to finish
// in the background but its result is discarded.
func (c *Closer) Cancel() {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	switch c.state {
	case CloseStateConfirmPending:
		c.state = CloseStateIdle
		c.channel = nil
	case CloseStateClosing:
		c.gen++
		c.state = CloseStateIdle
		c.channel = nil
	}
}

func (c *Closer) State() CloseState {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.state
}

// Result returns the closing transaction id after a successful close, or
// the failure.
func (c *Closer) Result() (string, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.txid, c.err
}
