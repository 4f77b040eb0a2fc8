package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	domainRepo "github.com/medlane/pharmacare-api/internal/domain/repository"
	"github.com/medlane/pharmacare-api/pkg/period"
	"gorm.io/gorm"
)

type analyticsRepository struct {
	db *gorm.DB
	tz string
}

// NewAnalyticsRepository creates a new analytics repository. Buckets are
// formed in the given IANA timezone so day boundaries match what the store
// sees, regardless of how timestamps are stored.
func NewAnalyticsRepository(db *gorm.DB, timezone string) domainRepo.AnalyticsRepository {
	if timezone == "" {
		timezone = "UTC"
	}
	return &analyticsRepository{db: db, tz: timezone}
}

func (r *analyticsRepository) GetSalesSummary(ctx context.Context, storeID uuid.UUID, start, end time.Time) (*domainRepo.SalesSummary, error) {
	var summary domainRepo.SalesSummary

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			COALESCE(SUM(total_amount), 0) as total_cents,
			COUNT(id) as transactions,
			COALESCE(SUM(total_products), 0) as items_sold
		FROM billings
		WHERE store_id = ? AND created_at >= ? AND created_at <= ?
	`, storeID, start, end).Scan(&summary).Error

	if err != nil {
		return nil, err
	}

	return &summary, nil
}

func (r *analyticsRepository) GetBucketedSales(ctx context.Context, storeID uuid.UUID, start, end time.Time, g period.Granularity) ([]domainRepo.SalesBucketRow, error) {
	var results []domainRepo.SalesBucketRow

	truncUnit, keyFormat := bucketSQLParams(g)

	// Truncate in the store's timezone and render the bucket start as a
	// plain string so it matches period.BucketKey exactly.
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			to_char(date_trunc(?, created_at AT TIME ZONE ?), ?) as bucket_key,
			COALESCE(SUM(total_amount), 0) as total_cents,
			COUNT(id) as transactions
		FROM billings
		WHERE store_id = ? AND created_at >= ? AND created_at <= ?
		GROUP BY 1
		ORDER BY 1
	`, truncUnit, r.tz, keyFormat, storeID, start, end).Scan(&results).Error

	if err != nil {
		return nil, err
	}

	return results, nil
}

func (r *analyticsRepository) GetTopSelling(ctx context.Context, storeID uuid.UUID, start, end time.Time, limit int) ([]domainRepo.TopMedicineRow, error) {
	var results []domainRepo.TopMedicineRow

	// Ties on revenue break toward the medicine that sold earliest.
	// Items whose medicine was deleted from the catalog carry a NULL
	// medicine_id and are excluded from the ranking.
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			bi.medicine_id,
			bi.medicine_name,
			COALESCE(SUM(bi.quantity), 0) as quantity_sold,
			COALESCE(SUM(bi.line_total), 0) as revenue_cents
		FROM billing_items bi
		JOIN billings b ON b.id = bi.billing_id
		WHERE b.store_id = ? AND b.created_at >= ? AND b.created_at <= ?
			AND bi.medicine_id IS NOT NULL
		GROUP BY bi.medicine_id, bi.medicine_name
		ORDER BY revenue_cents DESC, MIN(b.created_at) ASC
		LIMIT ?
	`, storeID, start, end, limit).Scan(&results).Error

	if err != nil {
		return nil, err
	}

	return results, nil
}

func bucketSQLParams(g period.Granularity) (truncUnit, keyFormat string) {
	switch g {
	case period.GranularityHourly:
		return "hour", `YYYY-MM-DD"T"HH24`
	case period.GranularityMonthly:
		return "month", "YYYY-MM"
	default:
		return "day", "YYYY-MM-DD"
	}
}
