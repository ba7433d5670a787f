package invoices

import (
	"context"

	"github.com/lnwallet/walletd/lightning"
	"golang.org/x/sync/errgroup"
)

// Service exposes invoice and payment operations. Stateless; the uniform
// domain service contract applies.
type Service struct {
	source lightning.ClientSource
}

func NewService(source lightning.ClientSource) *Service {
	return &Service{
		source: source,
	}
}

func (s *Service) Create(ctx context.Context, amountSat int64, memo string) (*lightning.CreatedInvoice, error) {
	client, err := s.source.Client()
	if err != nil {
		return nil, err
	}

	return client.AddInvoice(ctx, amountSat, memo)
}

func (s *Service) Decode(ctx context.Context, paymentRequest string) (*lightning.DecodedPaymentRequest, error) {
	client, err := s.source.Client()
	if err != nil {
		return nil, err
	}

	return client.DecodePaymentRequest(ctx, paymentRequest)
}

// Pay issues a single synchronous payment. Callers wanting confirm-then-pay
// semantics drive a Payer instead.
func (s *Service) Pay(ctx context.Context, paymentRequest string) (*lightning.PaymentResult, error) {
	client, err := s.source.Client()
	if err != nil {
		return nil, err
	}

	return client.SendPayment(ctx, paymentRequest)
}

func (s *Service) Invoices(ctx context.Context) ([]*lightning.Invoice, error) {
	client, err := s.source.Client()
	if err != nil {
		return nil, err
	}

	return client.ListInvoices(ctx)
}

func (s *Service) Payments(ctx context.Context) ([]*lightning.Payment, error) {
	client, err := s.source.Client()
	if err != nil {
		return nil, err
	}

	return client.ListPayments(ctx)
}

// All merges received invoices and sent payments into one history, most
// recent first. Both collections are fetched concurrently; if either fetch
// fails the whole call fails.
func (s *Service) All(ctx context.Context) ([]lightning.Payable, error) {
	client, err := s.source.Client()
	if err != nil {
		return nil, err
	}

	var invoices []*lightning.Invoice
	var payments []*lightning.Payment
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		invoices, err = client.ListInvoices(ctx)
		return err
	})
	group.Go(func() error {
		var err error
		payments, err = client.ListPayments(ctx)
		return err
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}

	payables := make([]lightning.Payable, 0, len(invoices)+len(payments))
	for _, inv := range invoices {
		payables = append(payables, lightning.Payable{
			Kind:    lightning.PayableInvoice,
			Invoice: inv,
		})
	}
	for _, p := range payments {
		payables = append(payables, lightning.Payable{
			Kind:    lightning.PayablePayment,
			Payment: p,
		})
	}

	lightning.SortPayables(payables)
	return payables, nil
}
