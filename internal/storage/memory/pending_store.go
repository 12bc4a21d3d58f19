package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"socialid/internal/domain"
	"socialid/internal/port"
)

// PendingLoginStore keeps pending social logins in process memory. Only
// suitable for single-instance deployments.
type PendingLoginStore struct {
	c *gocache.Cache
}

func NewPendingLoginStore(ttl time.Duration) *PendingLoginStore {
	return &PendingLoginStore{c: gocache.New(ttl, time.Minute)}
}

func (s *PendingLoginStore) Save(_ context.Context, login *domain.SocialLogin) (string, error) {
	k := uuid.NewString()
	s.c.SetDefault(k, login.Clone())
	return k, nil
}

func (s *PendingLoginStore) Get(_ context.Context, k string) (*domain.SocialLogin, error) {
	v, ok := s.c.Get(k)
	if !ok {
		return nil, domain.ErrPendingLoginNotFound
	}
	return v.(*domain.SocialLogin).Clone(), nil
}

func (s *PendingLoginStore) Delete(_ context.Context, k string) error {
	s.c.Delete(k)
	return nil
}

var _ port.PendingLoginStore = (*PendingLoginStore)(nil)
