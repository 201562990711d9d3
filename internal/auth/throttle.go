package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultLoginRate allows one attempt every five seconds once the burst is spent.
	DefaultLoginRate  = 0.2
	DefaultLoginBurst = 5

	maxTrackedClients = 4096
	idleClientTTL     = 30 * time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Throttle limits login attempts per client with a token bucket each.
type Throttle struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

// NewThrottle creates a throttle allowing burst attempts, refilled at rps.
func NewThrottle(rps float64, burst int) *Throttle {
	return &Throttle{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Limit(rps),
		burst:   burst,
		now:     time.Now,
	}
}

// Allow consumes one attempt for client and reports whether it was available.
func (t *Throttle) Allow(client string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	c, ok := t.clients[client]
	if !ok {
		t.prune(now)
		c = &clientLimiter{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.clients[client] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// Reset forgets the attempts of client, e.g. after a successful login.
func (t *Throttle) Reset(client string) {
	t.mu.Lock()
	delete(t.clients, client)
	t.mu.Unlock()
}

// Tracked returns the number of clients with recorded attempts.
func (t *Throttle) Tracked() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.clients)
}

// prune drops idle clients, and the least recently seen one when the table is
// still full. Caller holds t.mu.
func (t *Throttle) prune(now time.Time) {
	for key, c := range t.clients {
		if now.Sub(c.lastSeen) > idleClientTTL {
			delete(t.clients, key)
		}
	}
	if len(t.clients) < maxTrackedClients {
		return
	}

	var oldestKey string
	var oldest time.Time
	for key, c := range t.clients {
		if oldestKey == "" || c.lastSeen.Before(oldest) {
			oldestKey, oldest = key, c.lastSeen
		}
	}
	delete(t.clients, oldestKey)
}
