package memory

import (
	"time"

	"dealagent-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps hot per-session chat context (document binding,
// last query) in process memory with TTL eviction. The durable session record
// lives in postgres; this cache only spares a DB round trip per turn.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(session *store.Session) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*store.Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.Session), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
