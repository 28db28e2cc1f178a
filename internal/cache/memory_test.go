package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustGet(t *testing.T, b Backend, key string) ([]byte, bool) {
	t.Helper()
	v, ok, err := b.Get(context.Background(), key)
	require.NoError(t, err)
	return v, ok
}

func mustSet(t *testing.T, b Backend, key, value string) {
	t.Helper()
	require.NoError(t, b.Set(context.Background(), key, []byte(value)))
}

func TestMemory_BasicGetSet(t *testing.T) {
	m := NewMemory(10)
	mustSet(t, m, "a", "A")

	v, ok := mustGet(t, m, "a")
	assert.True(t, ok)
	assert.Equal(t, "A", string(v))

	_, ok = mustGet(t, m, "missing")
	assert.False(t, ok)
}

func TestMemory_Eviction(t *testing.T) {
	m := NewMemory(2)
	mustSet(t, m, "a", "A")
	mustSet(t, m, "b", "B")
	mustSet(t, m, "c", "C")

	_, ok := mustGet(t, m, "a")
	assert.False(t, ok, "a should have been evicted")

	v, ok := mustGet(t, m, "b")
	assert.True(t, ok)
	assert.Equal(t, "B", string(v))

	v, ok = mustGet(t, m, "c")
	assert.True(t, ok)
	assert.Equal(t, "C", string(v))
	assert.Equal(t, 2, m.Len())
}

func TestMemory_AccessPromotesEntry(t *testing.T) {
	m := NewMemory(2)
	mustSet(t, m, "a", "A")
	mustSet(t, m, "b", "B")

	_, _ = mustGet(t, m, "a")
	mustSet(t, m, "c", "C")

	_, ok := mustGet(t, m, "a")
	assert.True(t, ok, "a was accessed recently, should not be evicted")

	_, ok = mustGet(t, m, "b")
	assert.False(t, ok, "b should have been evicted")
}

func TestMemory_UpdateExisting(t *testing.T) {
	m := NewMemory(2)
	mustSet(t, m, "a", "A1")
	mustSet(t, m, "a", "A2")

	v, ok := mustGet(t, m, "a")
	assert.True(t, ok)
	assert.Equal(t, "A2", string(v))
	assert.Equal(t, 1, m.Len())
}

func TestMemory_DoesNotAliasValues(t *testing.T) {
	m := NewMemory(2)
	in := []byte("original")
	require.NoError(t, m.Set(context.Background(), "k", in))
	in[0] = 'X'

	out, _ := mustGet(t, m, "k")
	assert.Equal(t, "original", string(out))

	out[0] = 'Y'
	again, _ := mustGet(t, m, "k")
	assert.Equal(t, "original", string(again))
}
