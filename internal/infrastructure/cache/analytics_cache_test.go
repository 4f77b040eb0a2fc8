package cache

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/medlane/pharmacare-api/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(ttl time.Duration) (*AnalyticsCache, *time.Time) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	c := NewAnalyticsCache(ttl)
	c.now = func() time.Time { return now }
	return c, &now
}

func testKey(storeID uuid.UUID) repository.AnalyticsCacheKey {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC)
	return repository.NewAnalyticsCacheKey(storeID, start, end)
}

func TestAnalyticsCache_SetAndGet(t *testing.T) {
	c, _ := newTestCache(5 * time.Minute)
	defer c.Stop()

	key := testKey(uuid.New())
	value := &repository.SalesAnalytics{Period: "thisMonth"}

	_, ok := c.Get(key)
	require.False(t, ok)

	c.Set(key, value)

	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "thisMonth", got.Period)
}

func TestAnalyticsCache_ExpiredEntryIsDropped(t *testing.T) {
	c, now := newTestCache(5 * time.Minute)
	defer c.Stop()

	key := testKey(uuid.New())
	c.Set(key, &repository.SalesAnalytics{Period: "today"})

	*now = now.Add(5*time.Minute + time.Second)

	_, ok := c.Get(key)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entry should be evicted on read")
}

func TestAnalyticsCache_DistinctWindowsAreDistinctEntries(t *testing.T) {
	c, _ := newTestCache(5 * time.Minute)
	defer c.Stop()

	storeID := uuid.New()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	keyA := repository.NewAnalyticsCacheKey(storeID, start, start.AddDate(0, 0, 7))
	keyB := repository.NewAnalyticsCacheKey(storeID, start, start.AddDate(0, 0, 14))

	c.Set(keyA, &repository.SalesAnalytics{Period: "custom", GrowthPercent: 1})
	c.Set(keyB, &repository.SalesAnalytics{Period: "custom", GrowthPercent: 2})

	a, ok := c.Get(keyA)
	require.True(t, ok)
	b, ok := c.Get(keyB)
	require.True(t, ok)
	assert.NotEqual(t, a.GrowthPercent, b.GrowthPercent)
}

func testTopKey(storeID uuid.UUID, limit int) repository.TopSellingCacheKey {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC)
	return repository.NewTopSellingCacheKey(storeID, start, end, limit)
}

func TestAnalyticsCache_TopSellingSetAndGet(t *testing.T) {
	c, now := newTestCache(5 * time.Minute)
	defer c.Stop()

	key := testTopKey(uuid.New(), 10)
	ranking := []repository.TopMedicine{{MedicineName: "Paracetamol 500mg", Revenue: 100}}

	_, ok := c.GetTopSelling(key)
	require.False(t, ok)

	c.SetTopSelling(key, ranking)

	got, ok := c.GetTopSelling(key)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "Paracetamol 500mg", got[0].MedicineName)

	*now = now.Add(5*time.Minute + time.Second)

	_, ok = c.GetTopSelling(key)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired ranking should be evicted on read")
}

func TestAnalyticsCache_TopSellingLimitIsPartOfKey(t *testing.T) {
	c, _ := newTestCache(5 * time.Minute)
	defer c.Stop()

	storeID := uuid.New()
	c.SetTopSelling(testTopKey(storeID, 10), []repository.TopMedicine{{MedicineName: "Amoxicillin 250mg"}})

	_, ok := c.GetTopSelling(testTopKey(storeID, 5))
	assert.False(t, ok, "a different limit is a different ranking")
}

func TestAnalyticsCache_InvalidateDropsOnlyStore(t *testing.T) {
	c, _ := newTestCache(5 * time.Minute)
	defer c.Stop()

	storeA := uuid.New()
	storeB := uuid.New()

	c.Set(testKey(storeA), &repository.SalesAnalytics{})
	c.Set(testKey(storeB), &repository.SalesAnalytics{})
	c.SetTopSelling(testTopKey(storeA, 10), []repository.TopMedicine{})
	c.SetTopSelling(testTopKey(storeB, 10), []repository.TopMedicine{})

	c.Invalidate(storeA)

	_, ok := c.Get(testKey(storeA))
	assert.False(t, ok)
	_, ok = c.Get(testKey(storeB))
	assert.True(t, ok)
	_, ok = c.GetTopSelling(testTopKey(storeA, 10))
	assert.False(t, ok)
	_, ok = c.GetTopSelling(testTopKey(storeB, 10))
	assert.True(t, ok)
}

func TestAnalyticsCache_SetRefreshesExpiry(t *testing.T) {
	c, now := newTestCache(5 * time.Minute)
	defer c.Stop()

	key := testKey(uuid.New())
	c.Set(key, &repository.SalesAnalytics{Period: "today"})

	*now = now.Add(4 * time.Minute)
	c.Set(key, &repository.SalesAnalytics{Period: "today"})

	*now = now.Add(4 * time.Minute)

	_, ok := c.Get(key)
	assert.True(t, ok, "refreshed entry should outlive the original TTL")
}
