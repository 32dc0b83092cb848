package session

import (
	"sync"
	"time"

	"finboard-go/internal/platform/config"
	"finboard-go/internal/platform/logging"
)

// Clock schedules a single proactive logout slightly before the credential
// expires, so the client invalidates its session before the server starts
// rejecting it.
//
// States: unarmed -> Arm -> armed (pending fire) -> timer fire, explicit
// logout or re-arm -> unarmed. There is no expired-but-still-armed state.
type Clock struct {
	store  *Store
	grace  time.Duration
	logger *logging.Logger

	mu       sync.Mutex
	timer    *time.Timer
	active   bool
	onLogout []func()

	now func() time.Time
}

// NewClock builds a session clock over the given store.
func NewClock(store *Store, cfg config.SessionConfig, logger *logging.Logger) *Clock {
	grace := cfg.LogoutGrace
	if grace <= 0 {
		grace = 10 * time.Second
	}
	return &Clock{
		store:  store,
		grace:  grace,
		logger: logger,
		now:    time.Now,
	}
}

// OnLogout registers a listener invoked once per forced logout. Listeners are
// called outside the clock's lock.
func (c *Clock) OnLogout(fn func()) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	c.onLogout = append(c.onLogout, fn)
	c.mu.Unlock()
}

// Arm decodes the stored credential and schedules the logout timer. A missing,
// undecodable or already expired credential forces logout immediately.
// Re-arming cancels any previously scheduled timer, so at most one timer is
// ever pending.
func (c *Clock) Arm() {
	c.mu.Lock()
	c.stopTimerLocked()

	token, ok := c.store.Credential()
	if !ok {
		c.mu.Unlock()
		c.ForceLogout()
		return
	}

	// A present credential counts as a live session until proven otherwise,
	// so the failure paths below perform a real logout.
	c.active = true

	claims, err := DecodeClaims(token)
	if err != nil {
		c.mu.Unlock()
		if c.logger != nil {
			c.logger.Warn("session: credential decode failed: %v", err)
		}
		c.ForceLogout()
		return
	}

	untilExpiry := claims.ExpiresAt.Sub(c.now())
	if untilExpiry < 0 {
		c.mu.Unlock()
		c.ForceLogout()
		return
	}

	// A credential inside the grace window stays armed without a timer,
	// matching the behaviour the dashboard always had.
	if delay := untilExpiry - c.grace; delay > 0 {
		c.timer = time.AfterFunc(delay, c.ForceLogout)
	}
	c.mu.Unlock()
}

// Armed reports whether the session is currently considered authenticated.
func (c *Clock) Armed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// ForceLogout clears the credential and session state and notifies listeners.
// It is idempotent: a second call while already logged out does nothing.
func (c *Clock) ForceLogout() {
	c.mu.Lock()
	c.stopTimerLocked()
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.active = false
	listeners := make([]func(), len(c.onLogout))
	copy(listeners, c.onLogout)
	c.mu.Unlock()

	c.store.Clear()
	if c.logger != nil {
		c.logger.Info("session: logged out")
	}
	for _, fn := range listeners {
		fn()
	}
}

func (c *Clock) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
