package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelmenu/catalog-svc/internal/domain"
)

func TestRedisCache_Key(t *testing.T) {
	cache := &RedisCache{}

	assert.Equal(t, "catalog:menu:h1:b1", cache.Key(domain.CacheKindMenu, "h1", "b1"))
	assert.Equal(t, "catalog:hotels::", cache.Key(domain.CacheKindHotels, "", ""))
}

func TestDecodeEntry_FreshAndExpired(t *testing.T) {
	now := time.Now()
	items := []domain.MenuItem{{ID: "m1", Name: "Masala Dosa", Price: 120}}

	raw, err := encodeEntry(items, now.Add(3*time.Minute))
	require.NoError(t, err)

	var fresh []domain.MenuItem
	ok, err := decodeEntry(raw, now, false, &fresh)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, items, fresh)

	// Past the logical expiry the entry is a miss for normal reads.
	var expired []domain.MenuItem
	ok, err = decodeEntry(raw, now.Add(4*time.Minute), false, &expired)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, expired)
}

func TestDecodeEntry_StaleReadIgnoresExpiry(t *testing.T) {
	now := time.Now()
	items := []domain.MenuItem{{ID: "m1", Name: "Masala Dosa", Price: 120}}

	raw, err := encodeEntry(items, now.Add(-time.Hour))
	require.NoError(t, err)

	var got []domain.MenuItem
	ok, err := decodeEntry(raw, now, true, &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, items, got)
}

func TestDecodeEntry_Corrupt(t *testing.T) {
	var out []domain.MenuItem

	ok, err := decodeEntry("not json", time.Now(), false, &out)
	assert.Error(t, err)
	assert.False(t, ok)

	// Valid envelope, payload of the wrong shape.
	raw, err := encodeEntry("just a string", time.Now().Add(time.Minute))
	require.NoError(t, err)
	ok, err = decodeEntry(raw, time.Now(), false, &out)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestEncodeEntry_RoundTrip(t *testing.T) {
	expiresAt := time.Now().Add(5 * time.Minute)
	cfg := domain.GstConfig{Enabled: true, ShowTaxOnBill: true}

	raw, err := encodeEntry(cfg, expiresAt)
	require.NoError(t, err)

	var got domain.GstConfig
	ok, err := decodeEntry(raw, expiresAt.Add(-time.Second), false, &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, cfg, got)
}
