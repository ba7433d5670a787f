package secrets

import (
	"context"
	"encoding/hex"
	"fmt"

	ecies "github.com/ecies/go/v2"
)

// EncryptedStore seals values with an ecies keypair before handing them to
// the inner store, so credentials are never persisted in the clear.
type EncryptedStore struct {
	inner Store
	key   *ecies.PrivateKey
}

func NewEncryptedStore(inner Store, keyHex string) (*EncryptedStore, error) {
	key, err := ecies.NewPrivateKeyFromHex(keyHex)
	if err != nil {
		return nil, fmt.Errorf("failed to parse secret key: %w", err)
	}

	return &EncryptedStore{
		inner: inner,
		key:   key,
	}, nil
}

func (s *EncryptedStore) Get(ctx context.Context, key string) (string, error) {
	sealed, err := s.inner.Get(ctx, key)
	if err != nil {
		return "", err
	}

	raw, err := hex.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("secret %v is not valid hex: %w", key, err)
	}

	value, err := ecies.Decrypt(s.key, raw)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt secret %v: %w", key, err)
	}

	return string(value), nil
}

func (s *EncryptedStore) Set(ctx context.Context, key string, value string) error {
	sealed, err := ecies.Encrypt(s.key.PublicKey, []byte(value))
	if err != nil {
		return fmt.Errorf("failed to encrypt secret %v: %w", key, err)
	}

	return s.inner.Set(ctx, key, hex.EncodeToString(sealed))
}
