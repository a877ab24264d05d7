// Package determinism provides primitives for deterministic iteration and
// fixed-precision rendering.
package determinism

import (
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// StableMap is a map that guarantees iteration order (sorted by key).
// Floating-point products taken over its values are reproducible run to run.
type StableMap[K comparable, V any] struct {
	mu     sync.RWMutex
	keys   []K
	values map[K]V
}

// NewStableMap creates a new StableMap
func NewStableMap[K comparable, V any]() *StableMap[K, V] {
	return &StableMap[K, V]{
		values: make(map[K]V),
	}
}

// Set adds or updates a key-value pair
func (m *StableMap[K, V]) Set(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
		m.sortKeys()
	}
	m.values[key] = value
}

// Update applies fn to the current value (zero value when absent) and stores the result
func (m *StableMap[K, V]) Update(key K, fn func(V, bool) V) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, exists := m.values[key]
	if !exists {
		m.keys = append(m.keys, key)
		m.sortKeys()
	}
	m.values[key] = fn(current, exists)
}

// Get retrieves a value by key
func (m *StableMap[K, V]) Get(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.values[key]
	return val, ok
}

// Range iterates in stable sorted order
func (m *StableMap[K, V]) Range(fn func(K, V) bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			break
		}
	}
}

// Keys returns all keys in sorted order
func (m *StableMap[K, V]) Keys() []K {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]K, len(m.keys))
	copy(result, m.keys)
	return result
}

// Len returns the number of entries
func (m *StableMap[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}

func (m *StableMap[K, V]) sortKeys() {
	sort.Slice(m.keys, func(i, j int) bool {
		return fmt.Sprint(m.keys[i]) < fmt.Sprint(m.keys[j])
	})
}

// Amount is a decimal rendering of a float quantity. Conversion math stays
// in float64; Amount only controls how results are printed and parsed.
type Amount struct {
	value decimal.Decimal
}

// NewAmountFromFloat creates an Amount from a float64
func NewAmountFromFloat(v float64) Amount {
	return Amount{value: decimal.NewFromFloat(v)}
}

// ParseAmount parses a decimal string ("1.75", "-4.2e3")
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, err
	}
	return Amount{value: d}, nil
}

// Float64 returns the nearest float64
func (a Amount) Float64() float64 {
	f, _ := a.value.Float64()
	return f
}

// Decimal returns the underlying decimal
func (a Amount) Decimal() decimal.Decimal {
	return a.value
}

// Round returns the amount rounded to places decimal places
func (a Amount) Round(places int32) Amount {
	return Amount{value: a.value.Round(places)}
}

// StringFixed renders with exactly places decimal places
func (a Amount) StringFixed(places int32) string {
	return a.value.StringFixed(places)
}

// StringTrimmed rounds to places decimal places and drops trailing zeros
func (a Amount) StringTrimmed(places int32) string {
	return a.value.Round(places).String()
}

// String returns the shortest exact decimal form
func (a Amount) String() string {
	return a.value.String()
}

// SortedKeys returns a sorted copy of map keys
func SortedKeys[K comparable, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j])
	})
	return keys
}
