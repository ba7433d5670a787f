package secrets

import (
	"context"
	"errors"

	"github.com/lnwallet/walletd/config"
	"github.com/lnwallet/walletd/events"
)

const (
	keyHost     = "credentials/host"
	keyCert     = "credentials/cert"
	keyMacaroon = "credentials/macaroon"
)

// CredentialStore reads and writes the node credentials in the secret store
// and announces every successful write on the bus, which is what makes the
// connection manager rebuild.
type CredentialStore struct {
	store Store
	bus   *events.Bus
}

func NewCredentialStore(store Store, bus *events.Bus) *CredentialStore {
	return &CredentialStore{
		store: store,
		bus:   bus,
	}
}

// Credentials returns the stored credentials. Keys that were never written
// read as empty strings; completeness is the caller's concern.
func (c *CredentialStore) Credentials(ctx context.Context) (*config.Credentials, error) {
	host, err := c.get(ctx, keyHost)
	if err != nil {
		return nil, err
	}

	cert, err := c.get(ctx, keyCert)
	if err != nil {
		return nil, err
	}

	macaroon, err := c.get(ctx, keyMacaroon)
	if err != nil {
		return nil, err
	}

	return &config.Credentials{
		Host:     host,
		Cert:     cert,
		Macaroon: macaroon,
	}, nil
}

func (c *CredentialStore) SetCredentials(ctx context.Context, creds *config.Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}

	if err := c.store.Set(ctx, keyHost, creds.Host); err != nil {
		return err
	}
	if err := c.store.Set(ctx, keyCert, creds.Cert); err != nil {
		return err
	}
	if err := c.store.Set(ctx, keyMacaroon, creds.Macaroon); err != nil {
		return err
	}

	c.bus.Publish(events.ConfigChanged{})
	return nil
}

func (c *CredentialStore) get(ctx context.Context, key string) (string, error) {
	value, err := c.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}

	return value, err
}
