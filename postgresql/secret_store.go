package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/lnwallet/walletd/secrets"
)

type SecretStore struct {
	pool *pgxpool.Pool
}

func NewSecretStore(pool *pgxpool.Pool) *SecretStore {
	return &SecretStore{pool: pool}
}

func (s *SecretStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM secrets WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", secrets.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("secrets.Get(%v) error: %w", key, err)
	}

	return value, nil
}

func (s *SecretStore) Set(ctx context.Context, key string, value string) error {
	_, err := s.pool.Exec(ctx, `
	INSERT INTO secrets (key, value, updated_at)
	VALUES ($1, $2, now())
	ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value)
	if err != nil {
		return fmt.Errorf("secrets.Set(%v) error: %w", key, err)
	}

	return nil
}
