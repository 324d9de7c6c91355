// README: Session catalog service with a TTL cache over override reads.
package session

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"tamarind/internal/config"
	"tamarind/internal/types"
)

// Service exposes the seeded session catalog and cached calendar overrides.
// Override writes invalidate the cache entry, so admission re-checks always
// see a closure within one TTL at worst, and immediately after a local write.
type Service struct {
	sessions map[string]Session
	ordered  []Session
	store    Store
	cache    *gocache.Cache
	ttl      time.Duration
}

func NewService(seeds []config.SessionSeed, store Store, ttl time.Duration) *Service {
	svc := &Service{
		sessions: make(map[string]Session, len(seeds)),
		store:    store,
		cache:    gocache.New(ttl, 2*ttl),
		ttl:      ttl,
	}
	for _, seed := range seeds {
		s := Session{
			ID:           seed.ID,
			Label:        seed.Label,
			BasePrice:    types.Money{Amount: seed.BasePrice, Currency: seed.Currency},
			BaseCapacity: seed.BaseCapacity,
		}
		if s.BasePrice.Currency == "" {
			s.BasePrice.Currency = "THB"
		}
		svc.sessions[s.ID] = s
		svc.ordered = append(svc.ordered, s)
	}
	return svc
}

// Seed writes the configured catalog through to storage. Called once at startup.
func (s *Service) Seed(ctx context.Context) error {
	return s.store.SeedSessions(ctx, s.ordered)
}

func (s *Service) Get(id string) (Session, bool) {
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *Service) List() []Session {
	out := make([]Session, len(s.ordered))
	copy(out, s.ordered)
	return out
}

// Override returns the calendar override for (date, session), or nil.
// Reads go through the TTL cache; a cached "no override" is stored as a nil
// pointer so absent rows do not hit the database every call.
func (s *Service) Override(ctx context.Context, date types.Date, sessionID string) (*CalendarOverride, error) {
	key := overrideKey(date, sessionID)
	if v, found := s.cache.Get(key); found {
		if v == nil {
			return nil, nil
		}
		ov := v.(CalendarOverride)
		return &ov, nil
	}
	ov, err := s.store.GetOverride(ctx, date, sessionID)
	if err != nil {
		return nil, err
	}
	if ov == nil {
		s.cache.Set(key, nil, s.ttl)
		return nil, nil
	}
	s.cache.Set(key, *ov, s.ttl)
	return ov, nil
}

func (s *Service) SetOverride(ctx context.Context, ov CalendarOverride) error {
	if err := s.store.UpsertOverride(ctx, ov); err != nil {
		return err
	}
	s.cache.Delete(overrideKey(ov.Date, ov.SessionID))
	return nil
}

func (s *Service) ClearOverride(ctx context.Context, date types.Date, sessionID string) error {
	if err := s.store.DeleteOverride(ctx, date, sessionID); err != nil {
		return err
	}
	s.cache.Delete(overrideKey(date, sessionID))
	return nil
}
