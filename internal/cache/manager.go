package cache

import "time"

// Manager composes L1 (memory) and L2 (persistent file) under the single
// facade spec §4.2 describes. It satisfies internal/httpclient.Cacher.
type Manager struct {
	L1 *L1
	L2 *L2
}

// NewManager builds a Manager with an L1 of the given capacity/TTL and, if
// l2Dir is non-empty, an L2 rooted there with the given size cap spec
// (e.g. "100MB"). Pass an empty l2Dir to run memory-only.
func NewManager(l1Capacity int, l1TTL time.Duration, l2Dir, l2MaxSize string) *Manager {
	return &Manager{
		L1: NewL1(l1Capacity, l1TTL),
		L2: NewL2(l2Dir, l2MaxSize),
	}
}

// Get probes L1 first; on an L1 miss it probes L2 and, on an L2 hit,
// promotes the value into L1 before returning (spec §4.2's read-through +
// promotion contract).
func (m *Manager) Get(key string) ([]byte, bool) {
	if data, ok := m.L1.Get(key); ok {
		return data, true
	}
	if data, ok := m.L2.Get(key); ok {
		m.L1.Set(key, data, 0)
		return data, true
	}
	return nil, false
}

// Set writes to L1 and best-effort to L2; L2 failures never propagate.
func (m *Manager) Set(key string, data []byte, ttl time.Duration) {
	m.L1.Set(key, data, ttl)
	m.L2.Set(key, data, ttl)
}

// Has reports presence in either tier, expiry-respecting, without affecting
// L1 recency (it calls L1.Has, not L1.Get).
func (m *Manager) Has(key string) bool {
	if m.L1.Has(key) {
		return true
	}
	_, ok := m.L2.Get(key)
	return ok
}

// Delete removes key from both tiers, best-effort.
func (m *Manager) Delete(key string) {
	m.L1.Delete(key)
	m.L2.Delete(key)
}

// Clear empties both tiers.
func (m *Manager) Clear() {
	m.L1.Clear()
	m.L2.Clear()
}
