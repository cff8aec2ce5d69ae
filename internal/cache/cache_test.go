package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyDeterministic(t *testing.T) {
	a := Key("chrono", "v=abc", "p=2")
	b := Key("chrono", "v=abc", "p=2")
	assert.Equal(t, a, b)
	assert.Equal(t, "feed:chrono:v=abc:p=2", a)
}

func TestKeyDistinguishesParameters(t *testing.T) {
	base := Key("chrono", "v=abc", "p=0")

	assert.NotEqual(t, base, Key("chrono", "v=abc", "p=1"), "page must change the key")
	assert.NotEqual(t, base, Key("chrono", "v=xyz", "p=0"), "viewer must change the key")
	assert.NotEqual(t, base, Key("top", "v=abc", "p=0"), "shape must change the key")
}

func TestPostKey(t *testing.T) {
	assert.Equal(t, "post:64f1", PostKey("64f1"))
	assert.NotEqual(t, PostKey("64f1"), PostKey("64f2"))
}

func TestRedisTTLJitterBounds(t *testing.T) {
	r := NewRedis(nil, 5*time.Minute, 2*time.Minute)

	for i := 0; i < 1000; i++ {
		ttl := r.ttl()
		require.GreaterOrEqual(t, ttl, 5*time.Minute)
		require.Less(t, ttl, 7*time.Minute)
	}
}

func TestRedisTTLNoJitter(t *testing.T) {
	r := NewRedis(nil, time.Minute, 0)
	assert.Equal(t, time.Minute, r.ttl())
}

func TestRedisTTLSpread(t *testing.T) {
	// The point of the jitter is that entries written together do not
	// expire together.
	r := NewRedis(nil, time.Minute, time.Minute)
	seen := map[time.Duration]bool{}
	for i := 0; i < 50; i++ {
		seen[r.ttl()] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Minute, 0)

	_, ok := m.Get(ctx, "k")
	assert.False(t, ok)

	m.Set(ctx, "k", []byte("payload"))
	got, ok := m.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("payload"), got)
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(10*time.Millisecond, 0)

	m.Set(ctx, "k", []byte("x"))
	time.Sleep(20 * time.Millisecond)

	_, ok := m.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryInvalidate(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Minute, 0)

	m.Set(ctx, "a", []byte("1"))
	m.Set(ctx, "b", []byte("2"))
	m.Invalidate(ctx, "a", "b")

	assert.Equal(t, 0, m.Len())
}
