package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"cassa/internal/cache"
	"cassa/internal/core"
)

// SessionCookie names the cookie that keys a browser's cart.
const SessionCookie = "cassa_session"

// sessions holds one cart per browser session. Carts expire after ttl without
// use and the least recently used cart is evicted beyond the size limit.
type sessions struct {
	carts  *cache.LRUCache[*core.Cart]
	ttl    time.Duration
	secure bool
}

func newSessions(maxSessions int, ttl time.Duration, secure bool) *sessions {
	return &sessions{
		carts:  cache.NewLRUCache[*core.Cart](maxSessions, ttl, cache.WithSlidingExpiration()),
		ttl:    ttl,
		secure: secure,
	}
}

// lookup returns the cart of the request's session, if any.
func (s *sessions) lookup(r *http.Request) (string, *core.Cart, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return "", nil, false
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return "", nil, false
	}
	cart, ok := s.carts.Get(c.Value)
	return c.Value, cart, ok
}

// cart returns the session's cart, starting a new session when the request has
// none or its session expired.
func (s *sessions) cart(w http.ResponseWriter, r *http.Request) (string, *core.Cart) {
	if id, cart, ok := s.lookup(r); ok {
		s.setCookie(w, id)
		return id, cart
	}
	id := uuid.NewString()
	cart := core.NewCart()
	s.carts.Set(id, cart)
	s.setCookie(w, id)
	return id, cart
}

func (s *sessions) setCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.ttl / time.Second),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
