package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lokomotiv_server_go/logging"
	"lokomotiv_server_go/models"
)

func newTestCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	c, err := Open(ttl, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func org(id int64) models.Scope { return models.Scope{OrganizationID: &id} }

func TestCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, time.Minute)

	_, ok := c.Get(ctx, Locomotives, models.Scope{}, "page=2")
	assert.False(t, ok)

	c.Set(ctx, Locomotives, models.Scope{}, "page=2", c.Generation(Locomotives), []byte(`{"items":[]}`))
	val, ok := c.Get(ctx, Locomotives, models.Scope{}, "page=2")
	require.True(t, ok)
	assert.Equal(t, `{"items":[]}`, string(val))

	_, ok = c.Get(ctx, Locomotives, org(1), "page=2")
	assert.False(t, ok, "different scope is a different entry")
	_, ok = c.Get(ctx, Locomotives, models.Scope{}, "page=3")
	assert.False(t, ok)
}

func TestCache_InvalidateDependents(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, time.Minute)

	for _, r := range []string{Locomotives, Inspections, Components, Users, Bulletins} {
		c.Set(ctx, r, org(1), "", c.Generation(r), []byte(r))
	}

	c.Invalidate(ctx, Locomotives)

	for _, r := range []string{Locomotives, Inspections, Components} {
		_, ok := c.Get(ctx, r, org(1), "")
		assert.False(t, ok, r)
	}
	for _, r := range []string{Users, Bulletins} {
		_, ok := c.Get(ctx, r, org(1), "")
		assert.True(t, ok, r)
	}
}

func TestCache_PrefixDoesNotLeak(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, time.Minute)

	c.Set(ctx, Users, models.Scope{}, "", c.Generation(Users), []byte("u"))
	c.Invalidate(ctx, "user")

	_, ok := c.Get(ctx, Users, models.Scope{}, "")
	assert.True(t, ok)
}

func TestCache_TTL(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for badger expiry")
	}
	ctx := context.Background()
	c := newTestCache(t, time.Second)

	c.Set(ctx, Delays, models.Scope{}, "", c.Generation(Delays), []byte("x"))
	time.Sleep(2100 * time.Millisecond)

	_, ok := c.Get(ctx, Delays, models.Scope{}, "")
	assert.False(t, ok)
}

func TestCache_NilIsNoop(t *testing.T) {
	var c *Cache
	ctx := context.Background()
	assert.Zero(t, c.Generation(Users))
	c.Set(ctx, Users, models.Scope{}, "", 0, []byte("x"))
	_, ok := c.Get(ctx, Users, models.Scope{}, "")
	assert.False(t, ok)
	c.Invalidate(ctx, Users)
	assert.NoError(t, c.Close())
}

func TestCache_StaleSetAfterInvalidateIsDropped(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, time.Minute)

	// листинг прочитал БД до изменения, а записывает результат уже после инвалидации
	gen := c.Generation(Inspections)
	c.Invalidate(ctx, Locomotives)
	c.Set(ctx, Inspections, models.Scope{}, "page=1", gen, []byte("stale"))

	_, ok := c.Get(ctx, Inspections, models.Scope{}, "page=1")
	assert.False(t, ok)

	c.Set(ctx, Inspections, models.Scope{}, "page=1", c.Generation(Inspections), []byte("fresh"))
	val, ok := c.Get(ctx, Inspections, models.Scope{}, "page=1")
	require.True(t, ok)
	assert.Equal(t, "fresh", string(val))

	c.Set(ctx, Users, models.Scope{}, "", gen, []byte("u"))
	_, ok = c.Get(ctx, Users, models.Scope{}, "")
	assert.True(t, ok, "unrelated resources keep their generation")
}

func TestAffected(t *testing.T) {
	assert.Equal(t, []string{Users}, Affected(Users))
	assert.Equal(t, []string{Bulletins, BulletinRows}, Affected(Bulletins, BulletinRows))
	assert.Len(t, Affected(Organizations), 10)
}
