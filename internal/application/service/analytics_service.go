package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/medlane/pharmacare-api/internal/domain/repository"
	"github.com/medlane/pharmacare-api/pkg/apperror"
	"github.com/medlane/pharmacare-api/pkg/period"
	"github.com/shopspring/decimal"
)

const (
	defaultTopSellingLimit = 10
	maxTopSellingLimit     = 50
)

var centsPerUnit = decimal.NewFromInt(100)

// AnalyticsService computes time-bucketed sales analytics over the billing
// history. Computed payloads are cached per store and window.
type AnalyticsService struct {
	analyticsRepo repository.AnalyticsRepository
	cache         repository.AnalyticsCache
	loc           *time.Location
	now           func() time.Time
}

// NewAnalyticsService creates a new analytics service. Windows are resolved in
// the given location so "today" means the store's today.
func NewAnalyticsService(analyticsRepo repository.AnalyticsRepository, cache repository.AnalyticsCache, loc *time.Location) *AnalyticsService {
	if loc == nil {
		loc = time.UTC
	}
	s := &AnalyticsService{
		analyticsRepo: analyticsRepo,
		cache:         cache,
		loc:           loc,
	}
	s.now = func() time.Time { return time.Now().In(s.loc) }
	return s
}

// SalesAnalyticsInput selects the reporting window. StartDate and EndDate are
// only consulted when Period is "custom".
type SalesAnalyticsInput struct {
	StoreID   uuid.UUID
	Period    string
	StartDate *time.Time
	EndDate   *time.Time
}

// GetSalesAnalytics resolves the requested period and returns the full
// analytics payload: current and comparison aggregates, growth and a gapless
// time series.
func (s *AnalyticsService) GetSalesAnalytics(ctx context.Context, input *SalesAnalyticsInput) (*repository.SalesAnalytics, error) {
	window, err := s.resolveWindow(input)
	if err != nil {
		return nil, err
	}

	key := repository.NewAnalyticsCacheKey(input.StoreID, window.Start, window.End)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	current, err := s.analyticsRepo.GetSalesSummary(ctx, input.StoreID, window.Start, window.End)
	if err != nil {
		return nil, err
	}

	comparison, err := s.analyticsRepo.GetSalesSummary(ctx, input.StoreID, window.ComparisonStart, window.ComparisonEnd)
	if err != nil {
		return nil, err
	}

	rows, err := s.analyticsRepo.GetBucketedSales(ctx, input.StoreID, window.Start, window.End, window.Granularity)
	if err != nil {
		return nil, err
	}

	result := &repository.SalesAnalytics{
		Period:        input.Period,
		StartDate:     window.Start,
		EndDate:       window.End,
		Granularity:   string(window.Granularity),
		Current:       toAggregate(current),
		GrowthPercent: growthPercent(current.TotalCents, comparison.TotalCents),
		Series:        buildSeries(window, rows),
	}
	comp := toAggregate(comparison)
	result.Comparison = &comp

	// A caller that gave up may have left partial reads behind; never cache
	// on a dead context.
	if ctx.Err() == nil {
		s.cache.Set(key, result)
	}

	return result, nil
}

// GetTopSelling ranks the store's medicines by revenue within the requested
// period. Limit defaults to 10 and is capped at 50.
func (s *AnalyticsService) GetTopSelling(ctx context.Context, input *SalesAnalyticsInput, limit int) ([]repository.TopMedicine, error) {
	window, err := s.resolveWindow(input)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultTopSellingLimit
	}
	if limit > maxTopSellingLimit {
		limit = maxTopSellingLimit
	}

	key := repository.NewTopSellingCacheKey(input.StoreID, window.Start, window.End, limit)
	if cached, ok := s.cache.GetTopSelling(key); ok {
		return cached, nil
	}

	rows, err := s.analyticsRepo.GetTopSelling(ctx, input.StoreID, window.Start, window.End, limit)
	if err != nil {
		return nil, err
	}

	result := make([]repository.TopMedicine, 0, len(rows))
	for _, row := range rows {
		result = append(result, repository.TopMedicine{
			MedicineID:   row.MedicineID,
			MedicineName: row.MedicineName,
			QuantitySold: row.QuantitySold,
			Revenue:      centsToFloat(row.RevenueCents),
		})
	}

	if ctx.Err() == nil {
		s.cache.SetTopSelling(key, result)
	}

	return result, nil
}

func (s *AnalyticsService) resolveWindow(input *SalesAnalyticsInput) (period.Window, error) {
	if input.Period == period.PeriodCustom {
		if input.StartDate == nil || input.EndDate == nil {
			return period.Window{}, apperror.NewBadRequestError("Custom period requires start_date and end_date")
		}
		// The dates arrive as bare calendar days (parsed at UTC midnight).
		// Rebuild them in the store's timezone so the window covers the
		// store's local days, not the UTC days shifted into the zone.
		sy, sm, sd := input.StartDate.Date()
		ey, em, ed := input.EndDate.Date()
		start := time.Date(sy, sm, sd, 0, 0, 0, 0, s.loc)
		end := time.Date(ey, em, ed, 0, 0, 0, 0, s.loc)
		window, err := period.ResolveCustom(start, end)
		if err != nil {
			return period.Window{}, apperror.NewBadRequestError(err.Error())
		}
		return window, nil
	}

	window, err := period.Resolve(input.Period, s.now())
	if err != nil {
		if errors.Is(err, period.ErrUnknownPeriod) {
			return period.Window{}, apperror.ErrInvalidPeriod
		}
		return period.Window{}, err
	}
	return window, nil
}

// buildSeries zero-fills every bucket of the window and overlays the rows the
// database returned. Matching is by bucket key, so a row truncated by the
// database lands in the right bucket regardless of zone representation.
func buildSeries(window period.Window, rows []repository.SalesBucketRow) []repository.SalesBucket {
	rowByKey := make(map[string]repository.SalesBucketRow, len(rows))
	for _, row := range rows {
		rowByKey[row.BucketKey] = row
	}

	starts := period.Buckets(window.Start, window.End, window.Granularity)
	series := make([]repository.SalesBucket, 0, len(starts))
	for _, start := range starts {
		bucket := repository.SalesBucket{
			Label: period.Label(start, window.Granularity),
		}
		if row, ok := rowByKey[period.BucketKey(start, window.Granularity)]; ok {
			bucket.Sales = centsToFloat(row.TotalCents)
			bucket.Transactions = row.Transactions
		}
		series = append(series, bucket)
	}
	return series
}

func toAggregate(summary *repository.SalesSummary) repository.PeriodAggregate {
	agg := repository.PeriodAggregate{
		TotalSales:       centsToFloat(summary.TotalCents),
		TransactionCount: summary.Transactions,
		ItemsSold:        summary.ItemsSold,
	}
	if summary.Transactions > 0 {
		agg.AverageTransaction = decimal.NewFromInt(summary.TotalCents).
			Div(decimal.NewFromInt(summary.Transactions)).
			Div(centsPerUnit).
			Round(2).
			InexactFloat64()
	}
	return agg
}

// growthPercent reports current against comparison as a percentage rounded to
// two decimals. An empty comparison window yields 0, not a division blow-up.
func growthPercent(currentCents, comparisonCents int64) float64 {
	if comparisonCents == 0 {
		return 0
	}
	return decimal.NewFromInt(currentCents - comparisonCents).
		Div(decimal.NewFromInt(comparisonCents)).
		Mul(decimal.NewFromInt(100)).
		Round(2).
		InexactFloat64()
}

func centsToFloat(cents int64) float64 {
	return decimal.NewFromInt(cents).Div(centsPerUnit).InexactFloat64()
}
