package lnd

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lnwallet/walletd/config"
	"github.com/lnwallet/walletd/events"
	"github.com/lnwallet/walletd/lightning"
	"github.com/stretchr/testify/assert"
)

type staticSource struct {
	mtx   sync.Mutex
	creds *config.Credentials
	err   error
	reads int32
}

func (s *staticSource) Credentials(ctx context.Context) (*config.Credentials, error) {
	atomic.AddInt32(&s.reads, 1)
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.creds, nil
}

func (s *staticSource) set(creds *config.Credentials) {
	s.mtx.Lock()
	s.creds = creds
	s.mtx.Unlock()
}

func Test_ConnectionManager_UnavailableBeforeRebuild(t *testing.T) {
	manager := NewConnectionManager(&staticSource{creds: &config.Credentials{}})

	client, err := manager.Client()
	assert.Nil(t, client)
	assert.ErrorIs(t, err, lightning.ErrClientUnavailable)
}

func Test_ConnectionManager_UnavailableWithEmptyCredentials(t *testing.T) {
	manager := NewConnectionManager(&staticSource{creds: &config.Credentials{}})
	defer manager.Close()

	err := manager.Rebuild(context.Background())
	assert.NoError(t, err)

	_, err = manager.Client()
	assert.ErrorIs(t, err, lightning.ErrClientUnavailable)
}

func Test_ConnectionManager_SourceError(t *testing.T) {
	manager := NewConnectionManager(&staticSource{err: errors.New("store down")})
	defer manager.Close()

	err := manager.Rebuild(context.Background())
	assert.Error(t, err)

	_, err = manager.Client()
	assert.ErrorIs(t, err, lightning.ErrClientUnavailable)
}

func Test_ConnectionManager_AvailableAfterRebuild(t *testing.T) {
	manager := NewConnectionManager(&staticSource{creds: testCredentials(t)})
	defer manager.Close()

	err := manager.Rebuild(context.Background())
	assert.NoError(t, err)

	client, err := manager.Client()
	assert.NoError(t, err)
	assert.NotNil(t, client)
}

func Test_ConnectionManager_BadCredentialsDropConnection(t *testing.T) {
	source := &staticSource{creds: testCredentials(t)}
	manager := NewConnectionManager(source)
	defer manager.Close()

	assert.NoError(t, manager.Rebuild(context.Background()))
	_, err := manager.Client()
	assert.NoError(t, err)

	bad := testCredentials(t)
	bad.Cert = "garbage"
	source.set(bad)

	assert.Error(t, manager.Rebuild(context.Background()))
	_, err = manager.Client()
	assert.ErrorIs(t, err, lightning.ErrClientUnavailable)
}

// Readers must always see a consistent connection state while rebuilds are
// flipping between working and missing credentials.
func Test_ConnectionManager_SwapIsAtomic(t *testing.T) {
	valid := testCredentials(t)
	source := &staticSource{creds: valid}
	manager := NewConnectionManager(source)
	defer manager.Close()

	done := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				client, err := manager.Client()
				if err != nil {
					assert.Nil(t, client)
					assert.ErrorIs(t, err, lightning.ErrClientUnavailable)
				} else {
					assert.NotNil(t, client)
				}
			}
		}()
	}

	for i := 0; i < 50; i++ {
		if i%2 == 0 {
			source.set(valid)
		} else {
			source.set(&config.Credentials{})
		}
		manager.Rebuild(context.Background())
	}

	close(done)
	wg.Wait()
}

func Test_ConnectionManager_RebuildsOnConfigChanged(t *testing.T) {
	source := &staticSource{creds: &config.Credentials{}}
	manager := NewConnectionManager(source)
	defer manager.Close()

	bus := events.NewBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go manager.Start(ctx, bus)

	// The startup rebuild reads the credentials once.
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&source.reads) >= 1
	}, time.Second, time.Millisecond)

	before := atomic.LoadInt32(&source.reads)
	bus.Publish(events.ConfigChanged{})

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&source.reads) > before
	}, time.Second, time.Millisecond)
}

func Test_TestCredentials_UnreachableNode(t *testing.T) {
	restore := testCredentialsTimeout
	testCredentialsTimeout = 50 * time.Millisecond
	defer func() { testCredentialsTimeout = restore }()

	creds := testCredentials(t)
	creds.Host = "localhost:1"
	assert.False(t, TestCredentials(context.Background(), creds))
}

func Test_TestCredentials_BadCredentials(t *testing.T) {
	creds := testCredentials(t)
	creds.Macaroon = "not hex"
	assert.False(t, TestCredentials(context.Background(), creds))
}
