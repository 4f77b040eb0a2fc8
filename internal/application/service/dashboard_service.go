package service

import (
	"context"
	"time"

	"github.com/medlane/pharmacare-api/internal/domain/repository"
	infraRepo "github.com/medlane/pharmacare-api/internal/infrastructure/repository"
	"github.com/medlane/pharmacare-api/pkg/apperror"
	"github.com/medlane/pharmacare-api/pkg/period"
)

// expiringSoonDays is the lookahead for the dashboard's expiring-stock counter
const expiringSoonDays = 30

// DashboardService provides dashboard statistics
type DashboardService struct {
	medicineRepo  repository.MedicineRepository
	stockRepo     repository.StockRepository
	billingRepo   repository.BillingRepository
	analyticsRepo repository.AnalyticsRepository
	loc           *time.Location
	now           func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	medicineRepo repository.MedicineRepository,
	stockRepo repository.StockRepository,
	billingRepo repository.BillingRepository,
	analyticsRepo repository.AnalyticsRepository,
	loc *time.Location,
) *DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	s := &DashboardService{
		medicineRepo:  medicineRepo,
		stockRepo:     stockRepo,
		billingRepo:   billingRepo,
		analyticsRepo: analyticsRepo,
		loc:           loc,
	}
	s.now = func() time.Time { return time.Now().In(s.loc) }
	return s
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	TotalMedicines    int64   `json:"total_medicines"`
	TotalBillings     int64   `json:"total_billings"`
	LowStockCount     int64   `json:"low_stock_count"`
	ExpiringSoonCount int64   `json:"expiring_soon_count"`
	TodaySales        float64 `json:"today_sales"`
	TodayTransactions int64   `json:"today_transactions"`
	MonthSales        float64 `json:"month_sales"`
}

// GetDashboardStats returns the store's dashboard statistics
func (s *DashboardService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	storeID, ok := infraRepo.GetStoreID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Store context required")
	}

	stats := &DashboardStats{}

	medicineCount, err := s.medicineRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalMedicines = medicineCount

	billingCount, err := s.billingRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalBillings = billingCount

	lowStockCount, err := s.medicineRepo.CountLowStock(ctx)
	if err != nil {
		return nil, err
	}
	stats.LowStockCount = lowStockCount

	now := s.now()
	expiringCount, err := s.stockRepo.CountExpiringBefore(ctx, now.AddDate(0, 0, expiringSoonDays))
	if err != nil {
		return nil, err
	}
	stats.ExpiringSoonCount = expiringCount

	today, err := s.analyticsRepo.GetSalesSummary(ctx, storeID, period.StartOfDay(now), period.EndOfDay(now))
	if err != nil {
		return nil, err
	}
	stats.TodaySales = centsToFloat(today.TotalCents)
	stats.TodayTransactions = today.Transactions

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	month, err := s.analyticsRepo.GetSalesSummary(ctx, storeID, monthStart, now)
	if err != nil {
		return nil, err
	}
	stats.MonthSales = centsToFloat(month.TotalCents)

	return stats, nil
}
