package secrets

import (
	"context"
	"testing"
	"time"

	"github.com/lnwallet/walletd/config"
	"github.com/lnwallet/walletd/events"
	"github.com/stretchr/testify/assert"
)

const testCert = `-----BEGIN CERTIFICATE-----
MIIBGDCBwAIJAKx/8aVXDaOUMA0GCSqGSIb3DQEBCwUAMBQxEjAQBgNVBAMMCWxv
-----END CERTIFICATE-----`

func testCredentials() *config.Credentials {
	return &config.Credentials{
		Host:     "localhost:10009",
		Cert:     testCert,
		Macaroon: "0201036c6e64",
	}
}

func Test_CredentialStore_RoundTrip(t *testing.T) {
	bus := events.NewBus()
	store := NewCredentialStore(NewMemoryStore(), bus)

	err := store.SetCredentials(context.Background(), testCredentials())
	assert.NoError(t, err)

	creds, err := store.Credentials(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, testCredentials(), creds)
}

func Test_CredentialStore_EmptyWhenUnset(t *testing.T) {
	bus := events.NewBus()
	store := NewCredentialStore(NewMemoryStore(), bus)

	creds, err := store.Credentials(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, &config.Credentials{}, creds)
	assert.False(t, creds.Complete())
}

func Test_CredentialStore_PublishesConfigChanged(t *testing.T) {
	bus := events.NewBus()
	store := NewCredentialStore(NewMemoryStore(), bus)
	sub := bus.Subscribe()
	defer sub.Unsubscribe()

	err := store.SetCredentials(context.Background(), testCredentials())
	assert.NoError(t, err)

	select {
	case <-sub.C:
	case <-time.After(time.Second):
		t.Fatal("expected a config changed event")
	}
}

func Test_CredentialStore_RejectsInvalid(t *testing.T) {
	bus := events.NewBus()
	store := NewCredentialStore(NewMemoryStore(), bus)
	sub := bus.Subscribe()
	defer sub.Unsubscribe()

	creds := testCredentials()
	creds.Macaroon = "not hex"
	err := store.SetCredentials(context.Background(), creds)
	assert.Error(t, err)

	// Nothing was stored and nothing was announced.
	stored, err := store.Credentials(context.Background())
	assert.NoError(t, err)
	assert.False(t, stored.Complete())

	select {
	case <-sub.C:
		t.Fatal("unexpected config changed event")
	case <-time.After(50 * time.Millisecond):
	}
}

func Test_CredentialStore_RejectsMissingCert(t *testing.T) {
	bus := events.NewBus()
	store := NewCredentialStore(NewMemoryStore(), bus)

	creds := testCredentials()
	creds.Cert = ""
	err := store.SetCredentials(context.Background(), creds)
	assert.Error(t, err)
}
