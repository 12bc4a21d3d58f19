package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"socialid/internal/domain"
	"socialid/internal/port"
)

// PendingLoginStore keeps pending social logins in Redis as JSON with a TTL.
type PendingLoginStore struct {
	client goredis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewPendingLoginStore creates a Redis-backed store. Keys are namespaced
// under prefix.
func NewPendingLoginStore(client goredis.Cmdable, prefix string, ttl time.Duration) *PendingLoginStore {
	return &PendingLoginStore{
		client: client,
		prefix: prefix + "pending_login:",
		ttl:    ttl,
	}
}

func (s *PendingLoginStore) key(k string) string {
	return s.prefix + k
}

func (s *PendingLoginStore) Save(ctx context.Context, login *domain.SocialLogin) (string, error) {
	data, err := json.Marshal(login)
	if err != nil {
		return "", fmt.Errorf("pending login: marshal: %w", err)
	}
	k := uuid.NewString()
	if err := s.client.Set(ctx, s.key(k), data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("pending login: set: %w", err)
	}
	return k, nil
}

func (s *PendingLoginStore) Get(ctx context.Context, k string) (*domain.SocialLogin, error) {
	val, err := s.client.Get(ctx, s.key(k)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, domain.ErrPendingLoginNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pending login: get: %w", err)
	}

	var login domain.SocialLogin
	if err := json.Unmarshal(val, &login); err != nil {
		return nil, fmt.Errorf("pending login: unmarshal: %w", err)
	}
	return &login, nil
}

func (s *PendingLoginStore) Delete(ctx context.Context, k string) error {
	return s.client.Del(ctx, s.key(k)).Err()
}

var _ port.PendingLoginStore = (*PendingLoginStore)(nil)
