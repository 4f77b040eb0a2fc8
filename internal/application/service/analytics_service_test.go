package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/medlane/pharmacare-api/internal/domain/repository"
	"github.com/medlane/pharmacare-api/pkg/apperror"
	"github.com/medlane/pharmacare-api/pkg/period"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnalyticsRepo struct {
	// summaries are keyed by window start so current and comparison windows
	// can return different data
	summaries    map[string]*repository.SalesSummary
	buckets      []repository.SalesBucketRow
	top          []repository.TopMedicineRow
	summaryCalls int
	topCalls     int
	topLimit     int
}

func (r *fakeAnalyticsRepo) GetSalesSummary(ctx context.Context, storeID uuid.UUID, start, end time.Time) (*repository.SalesSummary, error) {
	r.summaryCalls++
	if s, ok := r.summaries[start.Format(time.RFC3339)]; ok {
		return s, nil
	}
	return &repository.SalesSummary{}, nil
}

func (r *fakeAnalyticsRepo) GetBucketedSales(ctx context.Context, storeID uuid.UUID, start, end time.Time, g period.Granularity) ([]repository.SalesBucketRow, error) {
	return r.buckets, nil
}

func (r *fakeAnalyticsRepo) GetTopSelling(ctx context.Context, storeID uuid.UUID, start, end time.Time, limit int) ([]repository.TopMedicineRow, error) {
	r.topCalls++
	r.topLimit = limit
	if limit < len(r.top) {
		return r.top[:limit], nil
	}
	return r.top, nil
}

type fakeAnalyticsCache struct {
	entries    map[repository.AnalyticsCacheKey]*repository.SalesAnalytics
	topEntries map[repository.TopSellingCacheKey][]repository.TopMedicine
	sets       int
	topSets    int
}

func newFakeAnalyticsCache() *fakeAnalyticsCache {
	return &fakeAnalyticsCache{
		entries:    make(map[repository.AnalyticsCacheKey]*repository.SalesAnalytics),
		topEntries: make(map[repository.TopSellingCacheKey][]repository.TopMedicine),
	}
}

func (c *fakeAnalyticsCache) Get(key repository.AnalyticsCacheKey) (*repository.SalesAnalytics, bool) {
	v, ok := c.entries[key]
	return v, ok
}

func (c *fakeAnalyticsCache) Set(key repository.AnalyticsCacheKey, value *repository.SalesAnalytics) {
	c.sets++
	c.entries[key] = value
}

func (c *fakeAnalyticsCache) GetTopSelling(key repository.TopSellingCacheKey) ([]repository.TopMedicine, bool) {
	v, ok := c.topEntries[key]
	return v, ok
}

func (c *fakeAnalyticsCache) SetTopSelling(key repository.TopSellingCacheKey, value []repository.TopMedicine) {
	c.topSets++
	c.topEntries[key] = value
}

type analyticsFixture struct {
	storeID uuid.UUID
	repo    *fakeAnalyticsRepo
	cache   *fakeAnalyticsCache
	service *AnalyticsService
	now     time.Time
}

func newAnalyticsFixture() *analyticsFixture {
	f := &analyticsFixture{
		storeID: uuid.New(),
		repo:    &fakeAnalyticsRepo{summaries: make(map[string]*repository.SalesSummary)},
		cache:   newFakeAnalyticsCache(),
		now:     time.Date(2024, 3, 15, 17, 30, 0, 0, time.UTC),
	}
	f.service = NewAnalyticsService(f.repo, f.cache, time.UTC)
	f.service.now = func() time.Time { return f.now }
	return f
}

func (f *analyticsFixture) setSummary(start time.Time, s *repository.SalesSummary) {
	f.repo.summaries[start.Format(time.RFC3339)] = s
}

func TestGetSalesAnalytics_TodayIsGaplessHourlySeries(t *testing.T) {
	f := newAnalyticsFixture()
	f.repo.buckets = []repository.SalesBucketRow{
		{BucketKey: "2024-03-15T09", TotalCents: 4200, Transactions: 3},
		{BucketKey: "2024-03-15T14", TotalCents: 1500, Transactions: 1},
	}

	result, err := f.service.GetSalesAnalytics(context.Background(), &SalesAnalyticsInput{
		StoreID: f.storeID,
		Period:  period.PeriodToday,
	})
	require.NoError(t, err)

	require.Len(t, result.Series, 24, "today covers 24 hourly buckets regardless of data")
	assert.Equal(t, "hourly", result.Granularity)
	assert.Equal(t, "00:00", result.Series[0].Label)
	assert.Equal(t, "23:00", result.Series[23].Label)

	assert.Equal(t, 42.0, result.Series[9].Sales)
	assert.Equal(t, int64(3), result.Series[9].Transactions)
	assert.Equal(t, 15.0, result.Series[14].Sales)

	// Hours with no billings are present with zeros
	assert.Equal(t, 0.0, result.Series[10].Sales)
	assert.Equal(t, int64(0), result.Series[10].Transactions)
}

func TestGetSalesAnalytics_AggregatesAndAverage(t *testing.T) {
	f := newAnalyticsFixture()
	start := period.StartOfDay(f.now)
	f.setSummary(start, &repository.SalesSummary{TotalCents: 23000, Transactions: 5, ItemsSold: 17})

	result, err := f.service.GetSalesAnalytics(context.Background(), &SalesAnalyticsInput{
		StoreID: f.storeID,
		Period:  period.PeriodToday,
	})
	require.NoError(t, err)

	assert.Equal(t, 230.0, result.Current.TotalSales)
	assert.Equal(t, int64(5), result.Current.TransactionCount)
	assert.Equal(t, int64(17), result.Current.ItemsSold)
	assert.Equal(t, 46.0, result.Current.AverageTransaction)
}

func TestGetSalesAnalytics_GrowthPercent(t *testing.T) {
	f := newAnalyticsFixture()
	current := period.StartOfDay(f.now)
	comparison := current.AddDate(0, 0, -1)

	f.setSummary(current, &repository.SalesSummary{TotalCents: 15000, Transactions: 4})
	f.setSummary(comparison, &repository.SalesSummary{TotalCents: 10000, Transactions: 3})

	result, err := f.service.GetSalesAnalytics(context.Background(), &SalesAnalyticsInput{
		StoreID: f.storeID,
		Period:  period.PeriodToday,
	})
	require.NoError(t, err)

	assert.Equal(t, 50.0, result.GrowthPercent)
	require.NotNil(t, result.Comparison)
	assert.Equal(t, 100.0, result.Comparison.TotalSales)
}

func TestGetSalesAnalytics_EmptyComparisonMeansZeroGrowth(t *testing.T) {
	f := newAnalyticsFixture()
	f.setSummary(period.StartOfDay(f.now), &repository.SalesSummary{TotalCents: 15000, Transactions: 4})

	result, err := f.service.GetSalesAnalytics(context.Background(), &SalesAnalyticsInput{
		StoreID: f.storeID,
		Period:  period.PeriodToday,
	})
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.GrowthPercent)
}

func TestGetSalesAnalytics_SecondCallServedFromCache(t *testing.T) {
	f := newAnalyticsFixture()
	input := &SalesAnalyticsInput{StoreID: f.storeID, Period: period.PeriodToday}

	_, err := f.service.GetSalesAnalytics(context.Background(), input)
	require.NoError(t, err)
	callsAfterFirst := f.repo.summaryCalls
	require.Greater(t, callsAfterFirst, 0)

	_, err = f.service.GetSalesAnalytics(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, callsAfterFirst, f.repo.summaryCalls, "cached window should not hit the repository")
	assert.Equal(t, 1, f.cache.sets)
}

func TestGetSalesAnalytics_CustomPeriodUsesStoreTimezone(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	f := newAnalyticsFixture()
	f.service = NewAnalyticsService(f.repo, f.cache, loc)
	f.service.now = func() time.Time { return f.now.In(loc) }

	// Dates arrive parsed at UTC midnight, the way the HTTP layer hands them
	// over. The window must still cover the store's local March 1st and 2nd.
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	result, err := f.service.GetSalesAnalytics(context.Background(), &SalesAnalyticsInput{
		StoreID:   f.storeID,
		Period:    period.PeriodCustom,
		StartDate: &start,
		EndDate:   &end,
	})
	require.NoError(t, err)

	wantStart := time.Date(2024, 3, 1, 0, 0, 0, 0, loc)
	assert.True(t, result.StartDate.Equal(wantStart),
		"window should start at the store's local midnight of March 1, got %v", result.StartDate)
	assert.Equal(t, 1, result.StartDate.In(loc).Day())
	assert.Equal(t, time.March, result.StartDate.In(loc).Month())
	assert.Equal(t, 2, result.EndDate.In(loc).Day())
	assert.Equal(t, 23, result.EndDate.In(loc).Hour())
}

func TestGetSalesAnalytics_OpenPeriodReusesCacheWithinMinute(t *testing.T) {
	f := newAnalyticsFixture()
	input := &SalesAnalyticsInput{StoreID: f.storeID, Period: period.PeriodThisMonth}

	_, err := f.service.GetSalesAnalytics(context.Background(), input)
	require.NoError(t, err)
	callsAfterFirst := f.repo.summaryCalls

	// thisMonth ends at the current instant; a request seconds later must
	// still map to the same cache key
	f.now = f.now.Add(10 * time.Second)

	_, err = f.service.GetSalesAnalytics(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, callsAfterFirst, f.repo.summaryCalls, "repeated open-ended window should not hit the repository")
	assert.Equal(t, 1, f.cache.sets)
}

func TestGetSalesAnalytics_CancelledContextIsNotCached(t *testing.T) {
	f := newAnalyticsFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The fakes ignore cancellation, so the computation itself succeeds
	_, err := f.service.GetSalesAnalytics(ctx, &SalesAnalyticsInput{
		StoreID: f.storeID,
		Period:  period.PeriodToday,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, f.cache.sets)
}

func TestGetSalesAnalytics_UnknownPeriodRejected(t *testing.T) {
	f := newAnalyticsFixture()

	_, err := f.service.GetSalesAnalytics(context.Background(), &SalesAnalyticsInput{
		StoreID: f.storeID,
		Period:  "fortnight",
	})
	require.Error(t, err)
	assert.Equal(t, apperror.ErrInvalidPeriod, err)
}

func TestGetSalesAnalytics_CustomPeriodRequiresDates(t *testing.T) {
	f := newAnalyticsFixture()

	_, err := f.service.GetSalesAnalytics(context.Background(), &SalesAnalyticsInput{
		StoreID: f.storeID,
		Period:  period.PeriodCustom,
	})
	require.Error(t, err)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)
	result, err := f.service.GetSalesAnalytics(context.Background(), &SalesAnalyticsInput{
		StoreID:   f.storeID,
		Period:    period.PeriodCustom,
		StartDate: &start,
		EndDate:   &end,
	})
	require.NoError(t, err)
	assert.Equal(t, "daily", result.Granularity)
	assert.Len(t, result.Series, 7)
}

func TestGetTopSelling_LimitDefaultsAndCaps(t *testing.T) {
	f := newAnalyticsFixture()
	f.repo.top = []repository.TopMedicineRow{
		{MedicineID: uuid.New(), MedicineName: "Paracetamol 500mg", QuantitySold: 40, RevenueCents: 10000},
		{MedicineID: uuid.New(), MedicineName: "Amoxicillin 250mg", QuantitySold: 5, RevenueCents: 6000},
	}

	input := &SalesAnalyticsInput{StoreID: f.storeID, Period: period.PeriodThisMonth}

	result, err := f.service.GetTopSelling(context.Background(), input, 0)
	require.NoError(t, err)
	assert.Equal(t, defaultTopSellingLimit, f.repo.topLimit)
	require.Len(t, result, 2)
	assert.Equal(t, "Paracetamol 500mg", result[0].MedicineName)
	assert.Equal(t, 100.0, result[0].Revenue)

	_, err = f.service.GetTopSelling(context.Background(), input, 500)
	require.NoError(t, err)
	assert.Equal(t, maxTopSellingLimit, f.repo.topLimit)
}

func TestGetTopSelling_SecondCallServedFromCache(t *testing.T) {
	f := newAnalyticsFixture()
	f.repo.top = []repository.TopMedicineRow{
		{MedicineID: uuid.New(), MedicineName: "Paracetamol 500mg", QuantitySold: 40, RevenueCents: 10000},
	}
	input := &SalesAnalyticsInput{StoreID: f.storeID, Period: period.PeriodToday}

	first, err := f.service.GetTopSelling(context.Background(), input, 10)
	require.NoError(t, err)
	require.Equal(t, 1, f.repo.topCalls)

	second, err := f.service.GetTopSelling(context.Background(), input, 10)
	require.NoError(t, err)

	assert.Equal(t, 1, f.repo.topCalls, "cached ranking should not hit the repository")
	assert.Equal(t, 1, f.cache.topSets)
	assert.Equal(t, first, second)

	// A different limit is a different ranking and must miss
	_, err = f.service.GetTopSelling(context.Background(), input, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, f.repo.topCalls)
}

func TestGetTopSelling_CancelledContextIsNotCached(t *testing.T) {
	f := newAnalyticsFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.service.GetTopSelling(ctx, &SalesAnalyticsInput{
		StoreID: f.storeID,
		Period:  period.PeriodToday,
	}, 10)
	require.NoError(t, err)

	assert.Equal(t, 0, f.cache.topSets)
}
