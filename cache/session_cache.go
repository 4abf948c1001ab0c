package cache

import (
	"time"

	"github.com/mohitkumar/checkin/wizard"
	c "github.com/patrickmn/go-cache"
)

const DEFAULT_SESSION_TTL = 30 * time.Minute

// SessionCache keeps open wizard sessions by id. Every read extends the idle expiry.
type SessionCache struct {
	cache *c.Cache
	ttl   time.Duration
}

func NewSessionCache(ttl time.Duration) *SessionCache {
	if ttl <= 0 {
		ttl = DEFAULT_SESSION_TTL
	}
	return &SessionCache{
		cache: c.New(ttl, 10*time.Minute),
		ttl:   ttl,
	}
}

func (ch *SessionCache) SaveSession(w *wizard.Wizard) {
	ch.cache.Set(w.Id(), w, ch.ttl)
}

func (ch *SessionCache) GetSession(id string) (*wizard.Wizard, bool) {
	v, found := ch.cache.Get(id)
	if !found {
		return nil, false
	}
	w := v.(*wizard.Wizard)
	ch.cache.Set(id, w, ch.ttl)
	return w, true
}

func (ch *SessionCache) DeleteSession(id string) {
	ch.cache.Delete(id)
}

func (ch *SessionCache) Count() int {
	return ch.cache.ItemCount()
}
