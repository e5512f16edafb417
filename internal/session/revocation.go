// Package session tracks bearer tokens that were revoked before expiry.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "revoked:"

var ErrStoreNotAvailable = errors.New("revocation store not available")

// RevocationStore keeps one redis key per revoked token id. Each key
// expires with the token it blocks, so the set never needs sweeping.
type RevocationStore struct {
	client *redis.Client
	prefix string
}

// NewRevocationStore accepts a nil client; revocation then becomes a no-op
func NewRevocationStore(client *redis.Client) *RevocationStore {
	return &RevocationStore{
		client: client,
		prefix: defaultPrefix,
	}
}

func (s *RevocationStore) key(tokenID string) string {
	return fmt.Sprintf("%s%s", s.prefix, tokenID)
}

// Available reports whether a redis client backs the store
func (s *RevocationStore) Available() bool {
	return s.client != nil
}

// Revoke blocks tokenID until expiresAt. Already expired tokens are ignored.
func (s *RevocationStore) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if s.client == nil {
		return ErrStoreNotAvailable
	}
	if tokenID == "" {
		return errors.New("token id is required")
	}

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	if err := s.client.Set(ctx, s.key(tokenID), expiresAt.Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports false when no redis client is configured
func (s *RevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if s.client == nil || tokenID == "" {
		return false, nil
	}

	count, err := s.client.Exists(ctx, s.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return count > 0, nil
}

// RevocationChecker is the read side of a revocation store
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// SafeIsRevoked treats a store failure as not revoked and logs it
func SafeIsRevoked(ctx context.Context, store RevocationChecker, tokenID string) bool {
	revoked, err := store.IsRevoked(ctx, tokenID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to check token revocation",
			"error", err,
			"token_id", tokenID)
		return false
	}
	return revoked
}
