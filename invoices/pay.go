package invoices

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/lnwallet/walletd/lightning"
)

type PayState int

const (
	PayStateEmpty          PayState = 0
	PayStateDecoding       PayState = 1
	PayStateDecoded        PayState = 2
	PayStateConfirmPending PayState = 3
	PayStatePaying         PayState = 4
)

func (s PayState) String() string {
	switch s {
	case PayStateEmpty:
		return "empty"
	case PayStateDecoding:
		return "decoding"
	case PayStateDecoded:
		return "decoded"
	case PayStateConfirmPending:
		return "confirm pending"
	case PayStatePaying:
		return "paying"
	}

	return "unknown"
}

// NormalizePaymentRequest strips a scheme prefix from scanned input. The
// payment request is everything after the first colon, or the whole string
// when there is none.
func NormalizePaymentRequest(raw string) string {
	if _, rest, ok := strings.Cut(raw, ":"); ok {
		return rest
	}

	return raw
}

// Payer drives the pay-invoice flow: decode, confirm, pay. Decoding is a
// pure read and retries on transient failure. The send itself is issued at
// most once per confirmation: the node does not guarantee that a blind
// resubmit is deduplicated, and a duplicate payment is worse than asking
// the user to confirm again. On failure the decoded invoice stays payable.
type Payer struct {
	source lightning.ClientSource

	mtx     sync.Mutex
	state   PayState
	gen     uint64
	decoded *lightning.DecodedPaymentRequest
	result  *lightning.PaymentResult
	err     error
}

func NewPayer(source lightning.ClientSource) *Payer {
	return &Payer{
		source: source,
	}
}

// Decode normalizes the raw input and decodes it against the node.
func (p *Payer) Decode(ctx context.Context, raw string) error {
	paymentRequest := NormalizePaymentRequest(raw)

	p.mtx.Lock()
	if p.state != PayStateEmpty {
		state := p.state
		p.mtx.Unlock()
		return fmt.Errorf("cannot decode in state %v", state)
	}
	p.state = PayStateDecoding
	gen := p.gen
	p.mtx.Unlock()

	var decoded *lightning.DecodedPaymentRequest
	err := lightning.Retry(ctx, lightning.DefaultAttempts, func() error {
		client, err := p.source.Client()
		if err != nil {
			return err
		}

		decoded, err = client.DecodePaymentRequest(ctx, paymentRequest)
		return err
	})

	p.mtx.Lock()
	defer p.mtx.Unlock()
	if gen != p.gen {
		return nil
	}

	if err != nil {
		p.state = PayStateEmpty
		p.err = err
		return err
	}

	p.state = PayStateDecoded
	p.decoded = decoded
	p.err = nil
	return nil
}

// RequestPay marks the intent to pay the decoded invoice.
func (p *Payer) RequestPay() error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if p.state != PayStateDecoded {
		return fmt.Errorf("cannot request pay in state %v", p.state)
	}

	p.state = PayStateConfirmPending
	return nil
}

// Confirm sends the payment once. On success the machine resets to Empty,
// ready for a new invoice; on failure it returns to Decoded and the same
// invoice can be confirmed again.
func (p *Payer) Confirm(ctx context.Context) error {
	p.mtx.Lock()
	if p.state != PayStateConfirmPending {
		state := p.state
		p.mtx.Unlock()
		return fmt.Errorf("cannot confirm pay in state %v", state)
	}

	p.state = PayStatePaying
	gen := p.gen
	paymentRequest := p.decoded.PaymentRequest
	p.mtx.Unlock()

	var result *lightning.PaymentResult
	client, err := p.source.Client()
	if err == nil {
		result, err = client.SendPayment(ctx, paymentRequest)
	}

	p.mtx.Lock()
	defer p.mtx.Unlock()
	if gen != p.gen {
		return nil
	}

	if err != nil {
		p.state = PayStateDecoded
		p.err = err
		return err
	}

	p.state = PayStateEmpty
	p.decoded = nil
	p.result = result
	p.err = nil
	return nil
}

// Cancel backs out of a pending confirmation; the decoded invoice remains
// payable. A result arriving for a canceled send is discarded.
func (p *Payer) Cancel() {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	switch p.state {
	case PayStateConfirmPending:
		p.state = PayStateDecoded
	case PayStatePaying:
		p.gen++
		p.state = PayStateDecoded
	}
}

// Reset dismisses the whole flow and returns the machine to Empty without
// issuing any further network calls.
func (p *Payer) Reset() {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	p.gen++
	p.state = PayStateEmpty
	p.decoded = nil
	p.result = nil
	p.err = nil
}

func (p *Payer) State() PayState {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return p.state
}

// Decoded returns the decoded invoice while one is loaded.
func (p *Payer) Decoded() *lightning.DecodedPaymentRequest {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return p.decoded
}

// Result returns the last successful payment result and the last error.
func (p *Payer) Result() (*lightning.PaymentResult, error) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return p.result, p.err
}
