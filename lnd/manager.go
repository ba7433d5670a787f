package lnd

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/lnwallet/walletd/config"
	"github.com/lnwallet/walletd/events"
	"github.com/lnwallet/walletd/lightning"
	"golang.org/x/sync/singleflight"
)

var testCredentialsTimeout = 10 * time.Second

// CredentialSource reads the current node credentials. Missing credentials
// are reported as an empty Credentials value, not an error.
type CredentialSource interface {
	Credentials(ctx context.Context) (*config.Credentials, error)
}

// ConnectionManager owns the single live connection to the node. The
// connection is rebuilt from the credential source on every configuration
// change and swapped atomically; readers always observe either the previous
// or the new connection, never an in-between state.
type ConnectionManager struct {
	source CredentialSource

	mtx  sync.RWMutex
	conn *Conn

	rebuildGroup singleflight.Group
}

func NewConnectionManager(source CredentialSource) *ConnectionManager {
	return &ConnectionManager{
		source: source,
	}
}

// Client returns the current client, or ErrClientUnavailable when no
// connection could be built from the stored credentials.
func (m *ConnectionManager) Client() (lightning.Client, error) {
	m.mtx.RLock()
	conn := m.conn
	m.mtx.RUnlock()

	if conn == nil {
		return nil, lightning.ErrClientUnavailable
	}

	return conn.Client(), nil
}

// Rebuild reads the credentials and replaces the live connection.
// Concurrent rebuilds are coalesced; there is never more than one in
// flight. A failed build leaves the manager without a connection, which is
// a recoverable condition surfaced as ErrClientUnavailable on the next
// Client call.
func (m *ConnectionManager) Rebuild(ctx context.Context) error {
	_, err, _ := m.rebuildGroup.Do("rebuild", func() (interface{}, error) {
		creds, err := m.source.Credentials(ctx)
		if err != nil {
			log.Printf("connection manager: failed to read credentials: %v", err)
			m.swap(nil)
			return nil, err
		}

		if !creds.Complete() {
			m.swap(nil)
			return nil, nil
		}

		conn, err := Dial(creds)
		if err != nil {
			log.Printf("connection manager: failed to build connection: %v", err)
			m.swap(nil)
			return nil, err
		}

		m.swap(conn)
		return nil, nil
	})

	return err
}

func (m *ConnectionManager) swap(conn *Conn) {
	m.mtx.Lock()
	old := m.conn
	m.conn = conn
	m.mtx.Unlock()

	if old != nil {
		old.Close()
	}
}

// Start builds the initial connection and then rebuilds on every published
// configuration change until the context is canceled. This is the only
// rebuild trigger besides explicit Rebuild calls.
func (m *ConnectionManager) Start(ctx context.Context, bus *events.Bus) {
	sub := bus.Subscribe()
	defer sub.Unsubscribe()

	m.Rebuild(ctx)

	for {
		select {
		case <-ctx.Done():
			m.swap(nil)
			return
		case _, ok := <-sub.C:
			if !ok {
				return
			}
			m.Rebuild(ctx)
		}
	}
}

func (m *ConnectionManager) Close() {
	m.swap(nil)
}

// TestCredentials builds a throwaway connection from candidate credentials
// and performs one balance round trip against it. It never touches the live
// connection. The auth flow calls this before committing new credentials.
func TestCredentials(ctx context.Context, creds *config.Credentials) bool {
	conn, err := Dial(creds)
	if err != nil {
		log.Printf("test credentials: failed to build connection: %v", err)
		return false
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(ctx, testCredentialsTimeout)
	defer cancel()

	_, err = conn.Client().WalletBalance(ctx)
	if err != nil {
		log.Printf("test credentials: balance round trip failed: %v", err)
		return false
	}

	return true
}
