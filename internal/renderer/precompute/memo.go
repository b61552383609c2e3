package precompute

// Memo caches the result of a computation for the most recent key.
// It is pull-based: nothing is recomputed until Get is called with a key that
// differs from the one the cached value was built for.
type Memo[K comparable, V any] struct {
	compute func(K) V
	key     K
	value   V
	valid   bool
	builds  uint64
}

// NewMemo creates a memo around compute.
func NewMemo[K comparable, V any](compute func(K) V) *Memo[K, V] {
	return &Memo[K, V]{compute: compute}
}

// Get returns the value for key, computing it when the key changed.
func (m *Memo[K, V]) Get(key K) V {
	if !m.valid || m.key != key {
		m.value = m.compute(key)
		m.key = key
		m.valid = true
		m.builds++
	}
	return m.value
}

// Peek returns the cached value and whether it was built for key.
func (m *Memo[K, V]) Peek(key K) (V, bool) {
	if !m.valid || m.key != key {
		var zero V
		return zero, false
	}
	return m.value, true
}

// Reset drops the cached value.
func (m *Memo[K, V]) Reset() {
	var zero V
	m.value = zero
	m.valid = false
}

// Builds returns how many times the value has been computed.
func (m *Memo[K, V]) Builds() uint64 {
	return m.builds
}
