package secrets

import (
	"context"
	"encoding/hex"
	"testing"

	ecies "github.com/ecies/go/v2"
	"github.com/stretchr/testify/assert"
)

func Test_EncryptedStore_RoundTrip(t *testing.T) {
	key, err := ecies.GenerateKey()
	assert.NoError(t, err)

	inner := NewMemoryStore()
	store, err := NewEncryptedStore(inner, key.Hex())
	assert.NoError(t, err)

	err = store.Set(context.Background(), "a", "secret value")
	assert.NoError(t, err)

	value, err := store.Get(context.Background(), "a")
	assert.NoError(t, err)
	assert.Equal(t, "secret value", value)
}

func Test_EncryptedStore_NothingStoredInTheClear(t *testing.T) {
	key, err := ecies.GenerateKey()
	assert.NoError(t, err)

	inner := NewMemoryStore()
	store, err := NewEncryptedStore(inner, key.Hex())
	assert.NoError(t, err)

	err = store.Set(context.Background(), "a", "secret value")
	assert.NoError(t, err)

	sealed, err := inner.Get(context.Background(), "a")
	assert.NoError(t, err)
	assert.NotEqual(t, "secret value", sealed)

	_, err = hex.DecodeString(sealed)
	assert.NoError(t, err)
}

func Test_EncryptedStore_MissingKey(t *testing.T) {
	key, err := ecies.GenerateKey()
	assert.NoError(t, err)

	store, err := NewEncryptedStore(NewMemoryStore(), key.Hex())
	assert.NoError(t, err)

	_, err = store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func Test_EncryptedStore_BadKey(t *testing.T) {
	_, err := NewEncryptedStore(NewMemoryStore(), "not hex")
	assert.Error(t, err)
}

func Test_MemoryStore(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), "a")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, store.Set(context.Background(), "a", "1"))
	assert.NoError(t, store.Set(context.Background(), "a", "2"))

	value, err := store.Get(context.Background(), "a")
	assert.NoError(t, err)
	assert.Equal(t, "2", value)
}
