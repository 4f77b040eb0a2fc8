package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/medlane/pharmacare-api/pkg/period"
)

// SalesSummary aggregates a window of billing history. Amounts are in cents.
type SalesSummary struct {
	TotalCents   int64
	Transactions int64
	ItemsSold    int64
}

// SalesBucketRow is one time bucket as grouped by the database. BucketKey is
// the truncated bucket start rendered in the store's timezone, matching
// period.BucketKey, so rows can be aligned with app-side buckets without
// comparing time.Time values across zone representations.
type SalesBucketRow struct {
	BucketKey    string
	TotalCents   int64
	Transactions int64
}

// TopMedicineRow is a medicine's sales performance within a window
type TopMedicineRow struct {
	MedicineID   uuid.UUID
	MedicineName string
	QuantitySold int64
	RevenueCents int64
}

// AnalyticsRepository defines interface for sales aggregation queries.
// Unlike the CRUD repositories these take the store ID explicitly; analytics
// reads may run outside a request-scoped context.
type AnalyticsRepository interface {
	// GetSalesSummary aggregates billings created within [start, end]
	GetSalesSummary(ctx context.Context, storeID uuid.UUID, start, end time.Time) (*SalesSummary, error)

	// GetBucketedSales groups billings into time buckets of the given
	// granularity. Only buckets with at least one billing are returned.
	GetBucketedSales(ctx context.Context, storeID uuid.UUID, start, end time.Time, g period.Granularity) ([]SalesBucketRow, error)

	// GetTopSelling ranks medicines by revenue within [start, end]
	GetTopSelling(ctx context.Context, storeID uuid.UUID, start, end time.Time, limit int) ([]TopMedicineRow, error)
}

// PeriodAggregate is the rolled-up view of one window, in display units
type PeriodAggregate struct {
	TotalSales         float64 `json:"total_sales"`
	TransactionCount   int64   `json:"transaction_count"`
	ItemsSold          int64   `json:"items_sold"`
	AverageTransaction float64 `json:"average_transaction"`
}

// SalesBucket is one point of a time series. Buckets with no sales are
// present with zero values so the series is gapless.
type SalesBucket struct {
	Label        string  `json:"label"`
	Sales        float64 `json:"sales"`
	Transactions int64   `json:"transactions"`
}

// SalesAnalytics is the full analytics payload for one resolved period
type SalesAnalytics struct {
	Period        string           `json:"period"`
	StartDate     time.Time        `json:"start_date"`
	EndDate       time.Time        `json:"end_date"`
	Granularity   string           `json:"granularity"`
	Current       PeriodAggregate  `json:"current"`
	Comparison    *PeriodAggregate `json:"comparison,omitempty"`
	GrowthPercent float64          `json:"growth_percent"`
	Series        []SalesBucket    `json:"series"`
}

// TopMedicine is one entry of the top-sellers ranking, in display units
type TopMedicine struct {
	MedicineID   uuid.UUID `json:"medicine_id"`
	MedicineName string    `json:"medicine_name"`
	QuantitySold int64     `json:"quantity_sold"`
	Revenue      float64   `json:"revenue"`
}

// cacheKeyLayout renders window bounds at minute precision. Open-ended
// periods (thisWeek, thisMonth, thisYear) end at the current instant;
// requests within the same minute share a key, so a served result is at most
// TTL plus one minute stale.
const cacheKeyLayout = "2006-01-02T15:04Z07:00"

// AnalyticsCacheKey identifies one cached analytics result. Start and End are
// formatted strings so the key is comparable.
type AnalyticsCacheKey struct {
	StoreID uuid.UUID
	Start   string
	End     string
}

// NewAnalyticsCacheKey builds a cache key from a resolved window
func NewAnalyticsCacheKey(storeID uuid.UUID, start, end time.Time) AnalyticsCacheKey {
	return AnalyticsCacheKey{
		StoreID: storeID,
		Start:   start.Format(cacheKeyLayout),
		End:     end.Format(cacheKeyLayout),
	}
}

// TopSellingCacheKey identifies one cached top-sellers ranking. Limit is part
// of the key because it changes the result, not just its length cap.
type TopSellingCacheKey struct {
	StoreID uuid.UUID
	Start   string
	End     string
	Limit   int
}

// NewTopSellingCacheKey builds a cache key from a resolved window and limit
func NewTopSellingCacheKey(storeID uuid.UUID, start, end time.Time, limit int) TopSellingCacheKey {
	return TopSellingCacheKey{
		StoreID: storeID,
		Start:   start.Format(cacheKeyLayout),
		End:     end.Format(cacheKeyLayout),
		Limit:   limit,
	}
}

// AnalyticsCache caches computed analytics payloads per store and window
type AnalyticsCache interface {
	Get(key AnalyticsCacheKey) (*SalesAnalytics, bool)
	Set(key AnalyticsCacheKey, value *SalesAnalytics)
	GetTopSelling(key TopSellingCacheKey) ([]TopMedicine, bool)
	SetTopSelling(key TopSellingCacheKey, value []TopMedicine)
}
