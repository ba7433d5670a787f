package channels

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/lnwallet/walletd/lightning"
)

type OpenState int

const (
	OpenStateFetchingPeers  OpenState = 0
	OpenStateNoNode         OpenState = 1
	OpenStateHasNode        OpenState = 2
	OpenStateConfirmPending OpenState = 3
	OpenStateOpening        OpenState = 4
	OpenStateOpened         OpenState = 5
	OpenStateFailed         OpenState = 6
)

func (s OpenState) String() string {
	switch s {
	case OpenStateFetchingPeers:
		return "fetching peers"
	case OpenStateNoNode:
		return "no node"
	case OpenStateHasNode:
		return "has node"
	case OpenStateConfirmPending:
		return "confirm pending"
	case OpenStateOpening:
		return "opening"
	case OpenStateOpened:
		return "opened"
	case OpenStateFailed:
		return "failed"
	}

	return "unknown"
}

// Opener drives the open-channel flow: fetch the connected peers, connect
// to the remote node unless already connected, then fund the channel after
// an explicit confirmation. The funding call is never retried; a failure
// there drops back to HasNode and requires a fresh confirmation.
type Opener struct {
	source lightning.ClientSource

	mtx          sync.Mutex
	state        OpenState
	gen          uint64
	peers        map[string]struct{}
	pubkey       string
	host         string
	amountSat    int64
	satPerVbyte  uint64
	channelPoint *lightning.ChannelPoint
	err          error
}

func NewOpener(source lightning.ClientSource) *Opener {
	return &Opener{
		source: source,
		state:  OpenStateFetchingPeers,
		peers:  make(map[string]struct{}),
	}
}

// Start fetches the connected peer list. This is a pure read and is safe to
// retry.
func (o *Opener) Start(ctx context.Context) error {
	o.mtx.Lock()
	if o.state != OpenStateFetchingPeers {
		state := o.state
		o.mtx.Unlock()
		return fmt.Errorf("cannot fetch peers in state %v", state)
	}
	gen := o.gen
	o.mtx.Unlock()

	var peers []*lightning.Peer
	err := lightning.Retry(ctx, lightning.DefaultAttempts, func() error {
		client, err := o.source.Client()
		if err != nil {
			return err
		}

		peers, err = client.ListPeers(ctx)
		return err
	})

	o.mtx.Lock()
	defer o.mtx.Unlock()
	if gen != o.gen {
		return nil
	}

	if err != nil {
		o.state = OpenStateFailed
		o.err = err
		return err
	}

	for _, p := range peers {
		o.peers[p.Pubkey] = struct{}{}
	}
	o.state = OpenStateNoNode
	return nil
}

// SetNode takes a scanned or entered "pubkey@host" descriptor. A pubkey
// that is already in the fetched peer set skips the connect call entirely;
// connecting is idempotent at the protocol level, so a fresh connect is
// retried on transient failure.
func (o *Opener) SetNode(ctx context.Context, descriptor string) error {
	pubkey, host, ok := strings.Cut(descriptor, "@")
	if !ok || pubkey == "" || host == "" {
		return lightning.Errorf(lightning.KindLocalValidation,
			"invalid node descriptor %q", descriptor)
	}

	o.mtx.Lock()
	if o.state != OpenStateNoNode {
		state := o.state
		o.mtx.Unlock()
		return fmt.Errorf("cannot set node in state %v", state)
	}

	if _, connected := o.peers[pubkey]; connected {
		o.pubkey = pubkey
		o.host = host
		o.state = OpenStateHasNode
		o.mtx.Unlock()
		return nil
	}
	gen := o.gen
	o.mtx.Unlock()

	err := lightning.Retry(ctx, lightning.DefaultAttempts, func() error {
		client, err := o.source.Client()
		if err != nil {
			return err
		}

		return client.ConnectPeer(ctx, pubkey, host)
	})

	o.mtx.Lock()
	defer o.mtx.Unlock()
	if gen != o.gen {
		return nil
	}

	if err != nil {
		o.state = OpenStateFailed
		o.err = err
		return err
	}

	o.peers[pubkey] = struct{}{}
	o.pubkey = pubkey
	o.host = host
	o.state = OpenStateHasNode
	return nil
}

// Propose records the funding parameters and waits for confirmation.
func (o *Opener) Propose(amountSat int64, satPerVbyte uint64) error {
	o.mtx.Lock()
	defer o.mtx.Unlock()

	if o.state != OpenStateHasNode {
		return fmt.Errorf("cannot propose open in state %v", o.state)
	}

	o.amountSat = amountSat
	o.satPerVbyte = satPerVbyte
	o.state = OpenStateConfirmPending
	return nil
}

// Confirm issues the funding call exactly once. Resubmitting a funding
// request can double-fund, so on failure the machine returns to HasNode
// and a new confirmation is required.
func (o *Opener) Confirm(ctx context.Context) error {
	o.mtx.Lock()
	if o.state != OpenStateConfirmPending {
		state := o.state
		o.mtx.Unlock()
		return fmt.Errorf("cannot confirm open in state %v", state)
	}

	o.state = OpenStateOpening
	gen := o.gen
	pubkey := o.pubkey
	amountSat := o.amountSat
	satPerVbyte := o.satPerVbyte
	o.mtx.Unlock()

	var channelPoint *lightning.ChannelPoint
	client, err := o.source.Client()
	if err == nil {
		channelPoint, err = client.OpenChannel(ctx, &lightning.OpenChannelRequest{
			RemotePubkey: pubkey,
			AmountSat:    amountSat,
			SatPerVbyte:  satPerVbyte,
		})
	}

	o.mtx.Lock()
	defer o.mtx.Unlock()
	if gen != o.gen {
		return nil
	}

	if err != nil {
		o.state = OpenStateHasNode
		o.err = err
		return err
	}

	o.state = OpenStateOpened
	o.channelPoint = channelPoint
	o.err = nil
	return nil
}

// Cancel dismisses the pending confirmation, or discards the result of an
// in-flight funding call, returning to HasNode in both cases.
func (o *Opener) Cancel() {
	o.mtx.Lock()
	defer o.mtx.Unlock()

	switch o.state {
	case OpenStateConfirmPending:
		o.state = OpenStateHasNode
	case OpenStateOpening:
		o.gen++
		o.state = OpenStateHasNode
	}
}

func (o *Opener) State() OpenState {
	o.mtx.Lock()
	defer o.mtx.Unlock()
	return o.state
}

// Result returns the funding outpoint after a successful open, or the last
// failure.
func (o *Opener) Result() (*lightning.ChannelPoint, error) {
	o.mtx.Lock()
	defer o.mtx.Unlock()
	return o.channelPoint, o.err
}
