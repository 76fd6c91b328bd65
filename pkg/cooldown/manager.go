package cooldown

import (
	"sync"
	"time"
)

// Manager tracks per-key activation instants and pending effect
// cleanups. One Manager serves every special action in the system;
// keys are the action trigger tokens.
type Manager struct {
	mu sync.RWMutex

	// Last activation instant per key. Entries are overwritten on each
	// activation and never deleted.
	lastActivation map[string]time.Time

	// Expiry instant per key with a running timed effect.
	activeEffects map[string]time.Time

	// Pending cleanup timers per key.
	cleanupTimers map[string]*cleanupEntry

	// Observer called after a timed effect expires naturally.
	onExpiry func(key string)
}

// cleanupEntry pairs a scheduled timer with its cleanup callback. The
// entry pointer doubles as the identity token the expiry callback uses
// to detect that it has been replaced.
type cleanupEntry struct {
	timer   *time.Timer
	cleanup func()
}

// NewManager creates an empty cooldown manager.
func NewManager() *Manager {
	return &Manager{
		lastActivation: make(map[string]time.Time),
		activeEffects:  make(map[string]time.Time),
		cleanupTimers:  make(map[string]*cleanupEntry),
	}
}

// CanActivate reports whether key is outside its cooldown window.
// A key that was never activated can always activate.
func (m *Manager) CanActivate(key string, cooldown time.Duration) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	last, ok := m.lastActivation[key]
	if !ok {
		return true
	}
	return time.Since(last) >= cooldown
}

// TimeUntilAvailable returns how long until key leaves its cooldown
// window, or 0 when it is already available.
func (m *Manager) TimeUntilAvailable(key string, cooldown time.Duration) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	last, ok := m.lastActivation[key]
	if !ok {
		return 0
	}
	remaining := cooldown - time.Since(last)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Activate records an activation of key and, for a timed effect,
// schedules its cleanup. Any cleanup already scheduled for key is
// cancelled and replaced; the effect window restarts from now.
//
// The activation is recorded unconditionally, restarting the cooldown
// window. Callers consult CanActivate first; the window is applied at
// query time by CanActivate and TimeUntilAvailable.
//
// cleanup runs once when the effect expires, outside the manager lock,
// so it may call back into the manager. Effects without a duration or
// without a cleanup are instant: nothing is scheduled.
func (m *Manager) Activate(key string, cooldown, effectDuration time.Duration, cleanup func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	m.lastActivation[key] = now

	if effectDuration <= 0 || cleanup == nil {
		return
	}

	// Cancel any pending cleanup before replacing it. Stop does not
	// halt a callback already in flight; expire re-checks entry
	// identity under the lock for that case.
	if existing, ok := m.cleanupTimers[key]; ok {
		existing.timer.Stop()
	}

	m.activeEffects[key] = now.Add(effectDuration)

	entry := &cleanupEntry{cleanup: cleanup}
	entry.timer = time.AfterFunc(effectDuration, func() {
		m.expire(key, entry)
	})
	m.cleanupTimers[key] = entry
}

// expire handles a cleanup timer firing.
func (m *Manager) expire(key string, entry *cleanupEntry) {
	m.mu.Lock()

	// A re-activation may have replaced this entry, or a manual
	// teardown removed it, while the callback was already in flight.
	// Only the entry that still owns the table slot may act.
	current, ok := m.cleanupTimers[key]
	if !ok || current != entry {
		m.mu.Unlock()
		return
	}

	delete(m.cleanupTimers, key)
	delete(m.activeEffects, key)
	observer := m.onExpiry

	m.mu.Unlock()

	// Call callbacks outside the lock.
	entry.cleanup()
	if observer != nil {
		observer(key)
	}
}

// IsActive reports whether key has a running timed effect.
func (m *Manager) IsActive(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.activeEffects[key]
	return ok
}

// EffectTimeRemaining returns how long key's timed effect has left to
// run, or 0 when no effect is running.
func (m *Manager) EffectTimeRemaining(key string) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	expires, ok := m.activeEffects[key]
	if !ok {
		return 0
	}
	remaining := time.Until(expires)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ActiveCount returns the number of running timed effects.
func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.activeEffects)
}

// ForceCleanup cancels key's scheduled cleanup and forgets its effect
// without invoking the cleanup callback. The activation record stays,
// so the cooldown window is unaffected.
func (m *Manager) ForceCleanup(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry, ok := m.cleanupTimers[key]; ok {
		entry.timer.Stop()
		delete(m.cleanupTimers, key)
	}
	delete(m.activeEffects, key)
}

// CleanupAll cancels every scheduled cleanup and forgets all running
// effects without invoking any callbacks. Activation records stay.
func (m *Manager) CleanupAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, entry := range m.cleanupTimers {
		entry.timer.Stop()
	}
	m.cleanupTimers = make(map[string]*cleanupEntry)
	m.activeEffects = make(map[string]time.Time)
}

// OnExpiry sets an observer called after a timed effect expires
// naturally and its cleanup has run. The observer runs outside the
// lock. ForceCleanup and CleanupAll do not notify.
func (m *Manager) OnExpiry(fn func(key string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpiry = fn
}
