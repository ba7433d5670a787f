package channels

import (
	"context"

	"github.com/lnwallet/walletd/lightning"
	"golang.org/x/sync/errgroup"
)

// Service exposes channel operations. Stateless apart from the client
// source; the uniform contract of the domain services applies (no
// connection fails immediately, one remote call per operation, retries at
// the call site).
type Service struct {
	source lightning.ClientSource
}

func NewService(source lightning.ClientSource) *Service {
	return &Service{
		source: source,
	}
}

func (s *Service) Open(ctx context.Context) ([]*lightning.Channel, error) {
	client, err := s.source.Client()
	if err != nil {
		return nil, err
	}

	return client.ListChannels(ctx)
}

func (s *Service) Pending(ctx context.Context) ([]*lightning.Channel, error) {
	client, err := s.source.Client()
	if err != nil {
		return nil, err
	}

	return client.PendingChannels(ctx)
}

// All fetches the open and pending collections concurrently and merges them
// into one tagged list, pending after active. If either fetch fails the
// whole call fails; a half view would misrepresent total exposure. Callers
// re-sort the result by their own criterion, commonly
// SortChannelViewsByBalance.
func (s *Service) All(ctx context.Context) ([]lightning.ChannelView, error) {
	client, err := s.source.Client()
	if err != nil {
		return nil, err
	}

	var open, pending []*lightning.Channel
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		open, err = client.ListChannels(ctx)
		return err
	})
	group.Go(func() error {
		var err error
		pending, err = client.PendingChannels(ctx)
		return err
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}

	views := make([]lightning.ChannelView, 0, len(open)+len(pending))
	for _, ch := range open {
		views = append(views, lightning.ChannelView{
			Kind:    lightning.ChannelViewActive,
			Channel: ch,
		})
	}
	for _, ch := range pending {
		views = append(views, lightning.ChannelView{
			Kind:    lightning.ChannelViewPending,
			Channel: ch,
		})
	}

	return views, nil
}

func (s *Service) NodeInfo(ctx context.Context, pubkey string) (*lightning.NodeInfo, error) {
	client, err := s.source.Client()
	if err != nil {
		return nil, err
	}

	return client.NodeInfo(ctx, pubkey)
}

func (s *Service) Peers(ctx context.Context) ([]*lightning.Peer, error) {
	client, err := s.source.Client()
	if err != nil {
		return nil, err
	}

	return client.ListPeers(ctx)
}

func (s *Service) ConnectPeer(ctx context.Context, pubkey, host string) error {
	client, err := s.source.Client()
	if err != nil {
		return err
	}

	return client.ConnectPeer(ctx, pubkey, host)
}
