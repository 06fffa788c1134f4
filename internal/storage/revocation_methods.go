package storage

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const revocationKeyPrefix = "revoked:"

// IsUserRevoked checks the Redis revocation flag set by the admin CLI. A
// revoked user fails authentication even with a still-valid token.
func (s *Service) IsUserRevoked(userID string) (bool, error) {
	status, err := s.Redis.Get(s.Ctx, revocationKeyPrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return status != "", nil
}

// RevokeUser flags the user's tokens as revoked. A zero duration keeps the
// flag until RestoreUser clears it.
func (s *Service) RevokeUser(userID string, duration time.Duration) error {
	return s.Redis.Set(s.Ctx, revocationKeyPrefix+userID, "revoked", duration).Err()
}

func (s *Service) RestoreUser(userID string) error {
	return s.Redis.Del(s.Ctx, revocationKeyPrefix+userID).Err()
}
