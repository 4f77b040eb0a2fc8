package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/medlane/pharmacare-api/internal/domain/entity"
	"github.com/medlane/pharmacare-api/internal/domain/repository"
	infraRepo "github.com/medlane/pharmacare-api/internal/infrastructure/repository"
	"github.com/medlane/pharmacare-api/pkg/apperror"
	"github.com/medlane/pharmacare-api/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStockStore backs the stock and billing fakes with one shared ledger so
// the billing fake can apply deductions transactionally, like the database does.
type fakeStockStore struct {
	mu      sync.Mutex
	entries map[string]*entity.StockEntry
}

func newFakeStockStore() *fakeStockStore {
	return &fakeStockStore{entries: make(map[string]*entity.StockEntry)}
}

func stockKey(medicineID uuid.UUID, batch string) string {
	return medicineID.String() + "|" + batch
}

func (s *fakeStockStore) put(entry *entity.StockEntry) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Version == 0 {
		entry.Version = 1
	}
	s.mu.Lock()
	s.entries[stockKey(entry.MedicineID, entry.BatchNumber)] = entry
	s.mu.Unlock()
}

func (s *fakeStockStore) quantity(medicineID uuid.UUID, batch string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[stockKey(medicineID, batch)]
	if !ok {
		return 0
	}
	return entry.Quantity
}

func (s *fakeStockStore) exists(medicineID uuid.UUID, batch string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[stockKey(medicineID, batch)]
	return ok
}

type fakeMedicineRepo struct {
	medicines map[uuid.UUID]*entity.Medicine
}

func newFakeMedicineRepo(medicines ...*entity.Medicine) *fakeMedicineRepo {
	r := &fakeMedicineRepo{medicines: make(map[uuid.UUID]*entity.Medicine)}
	for _, m := range medicines {
		if m.ID == uuid.Nil {
			m.ID = uuid.New()
		}
		r.medicines[m.ID] = m
	}
	return r
}

func (r *fakeMedicineRepo) Create(ctx context.Context, m *entity.Medicine) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.medicines[m.ID] = m
	return nil
}

func (r *fakeMedicineRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Medicine, error) {
	return r.medicines[id], nil
}

func (r *fakeMedicineRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Medicine, error) {
	var out []entity.Medicine
	for _, id := range ids {
		if m, ok := r.medicines[id]; ok {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMedicineRepo) GetByCode(ctx context.Context, code string) (*entity.Medicine, error) {
	for _, m := range r.medicines {
		if m.Code == code {
			return m, nil
		}
	}
	return nil, nil
}

func (r *fakeMedicineRepo) Update(ctx context.Context, m *entity.Medicine) error {
	r.medicines[m.ID] = m
	return nil
}

func (r *fakeMedicineRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.medicines, id)
	return nil
}

func (r *fakeMedicineRepo) List(ctx context.Context, params *repository.MedicineFilterParams) ([]entity.Medicine, int64, error) {
	var out []entity.Medicine
	for _, m := range r.medicines {
		out = append(out, *m)
	}
	return out, int64(len(out)), nil
}

func (r *fakeMedicineRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.medicines)), nil
}

func (r *fakeMedicineRepo) CountLowStock(ctx context.Context) (int64, error) {
	return 0, nil
}

type fakeStockRepo struct {
	store *fakeStockStore
	// conflicts, when positive, makes UpdateVersioned fail that many times
	conflicts int
}

func (r *fakeStockRepo) Upsert(ctx context.Context, entry *entity.StockEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := stockKey(entry.MedicineID, entry.BatchNumber)
	if existing, ok := r.store.entries[key]; ok {
		existing.Quantity += entry.Quantity
		existing.Version++
		if entry.PurchasePrice > 0 {
			existing.PurchasePrice = entry.PurchasePrice
		}
		if entry.ExpiryDate != nil {
			existing.ExpiryDate = entry.ExpiryDate
		}
		*entry = *existing
		return nil
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.Version = 1
	copied := *entry
	r.store.entries[key] = &copied
	return nil
}

func (r *fakeStockRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.StockEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, entry := range r.store.entries {
		if entry.ID == id {
			copied := *entry
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeStockRepo) GetByKey(ctx context.Context, medicineID uuid.UUID, batch string) (*entity.StockEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if entry, ok := r.store.entries[stockKey(medicineID, batch)]; ok {
		copied := *entry
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeStockRepo) ListByMedicine(ctx context.Context, medicineID uuid.UUID) ([]entity.StockEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []entity.StockEntry
	for _, entry := range r.store.entries {
		if entry.MedicineID == medicineID {
			out = append(out, *entry)
		}
	}
	return out, nil
}

func (r *fakeStockRepo) ListExpiringBefore(ctx context.Context, before time.Time, params *pagination.PaginationParams) ([]entity.StockEntry, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []entity.StockEntry
	for _, entry := range r.store.entries {
		if entry.ExpiryDate != nil && !entry.ExpiryDate.After(before) {
			out = append(out, *entry)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeStockRepo) CountExpiringBefore(ctx context.Context, before time.Time) (int64, error) {
	entries, total, _ := r.ListExpiringBefore(ctx, before, nil)
	_ = entries
	return total, nil
}

func (r *fakeStockRepo) UpdateVersioned(ctx context.Context, entry *entity.StockEntry) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.conflicts > 0 {
		r.conflicts--
		return false, nil
	}
	for key, existing := range r.store.entries {
		if existing.ID == entry.ID {
			if existing.Version != entry.Version {
				return false, nil
			}
			copied := *entry
			copied.Version++
			r.store.entries[key] = &copied
			entry.Version++
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeStockRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for key, entry := range r.store.entries {
		if entry.ID == id {
			delete(r.store.entries, key)
			return nil
		}
	}
	return nil
}

type fakeBillingRepo struct {
	store    *fakeStockStore
	mu       sync.Mutex
	billings []*entity.Billing
}

// Create mirrors the real repository: all deductions and the insert happen
// under one lock, and any shortfall rolls the whole thing back.
func (r *fakeBillingRepo) Create(ctx context.Context, billing *entity.Billing, deductions []repository.StockDeduction) ([]uuid.UUID, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var failedIDs []uuid.UUID
	for _, d := range deductions {
		entry, ok := r.store.entries[stockKey(d.MedicineID, d.BatchNumber)]
		if !ok || entry.Quantity < d.Quantity {
			failedIDs = append(failedIDs, d.MedicineID)
		}
	}
	if len(failedIDs) > 0 {
		return failedIDs, nil
	}

	for _, d := range deductions {
		key := stockKey(d.MedicineID, d.BatchNumber)
		entry := r.store.entries[key]
		entry.Quantity -= d.Quantity
		entry.Version++
		if entry.Quantity == 0 {
			delete(r.store.entries, key)
		}
	}

	if billing.ID == uuid.Nil {
		billing.ID = uuid.New()
	}
	r.mu.Lock()
	r.billings = append(r.billings, billing)
	r.mu.Unlock()
	return nil, nil
}

func (r *fakeBillingRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Billing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.billings {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, nil
}

func (r *fakeBillingRepo) List(ctx context.Context, params *repository.BillingFilterParams) ([]entity.Billing, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Billing
	for _, b := range r.billings {
		out = append(out, *b)
	}
	return out, int64(len(out)), nil
}

func (r *fakeBillingRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.billings)), nil
}

func (r *fakeBillingRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.billings)
}

type billingFixture struct {
	storeID     uuid.UUID
	ctx         context.Context
	service     *BillingService
	stockStore  *fakeStockStore
	billingRepo *fakeBillingRepo
}

func newBillingFixture(medicines ...*entity.Medicine) *billingFixture {
	storeID := uuid.New()
	stockStore := newFakeStockStore()
	billingRepo := &fakeBillingRepo{store: stockStore}
	medicineRepo := newFakeMedicineRepo(medicines...)
	stockRepo := &fakeStockRepo{store: stockStore}

	return &billingFixture{
		storeID:     storeID,
		ctx:         infraRepo.WithStore(context.Background(), storeID),
		service:     NewBillingService(billingRepo, medicineRepo, stockRepo),
		stockStore:  stockStore,
		billingRepo: billingRepo,
	}
}

func (f *billingFixture) addStock(medicineID uuid.UUID, batch string, quantity int) {
	f.stockStore.put(&entity.StockEntry{
		StoreID:     f.storeID,
		MedicineID:  medicineID,
		BatchNumber: batch,
		Quantity:    quantity,
	})
}

func paracetamol() *entity.Medicine {
	return &entity.Medicine{
		ID:           uuid.New(),
		Name:         "Paracetamol 500mg",
		Code:         "MED-PARA500",
		SellingPrice: 250, // $2.50
	}
}

func amoxicillin() *entity.Medicine {
	return &entity.Medicine{
		ID:           uuid.New(),
		Name:         "Amoxicillin 250mg",
		Code:         "MED-AMOX250",
		SellingPrice: 1200, // $12.00
	}
}

func TestCreateBilling_DeductsStockAndRecordsSale(t *testing.T) {
	para := paracetamol()
	amox := amoxicillin()
	f := newBillingFixture(para, amox)
	f.addStock(para.ID, "B1", 10)
	f.addStock(amox.ID, "", 5)

	billing, err := f.service.CreateBilling(f.ctx, &CreateBillingInput{
		UserID:       uuid.New(),
		CustomerName: "Jane Doe",
		Items: []BillingItemInput{
			{MedicineID: para.ID, BatchNumber: "B1", Quantity: 4},
			{MedicineID: amox.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, f.storeID, billing.StoreID)
	assert.Equal(t, 6, billing.TotalProducts)
	assert.Equal(t, int64(4*250+2*1200), billing.TotalAmount)
	assert.NotEmpty(t, billing.InvoiceNo)
	require.Len(t, billing.Items, 2)
	assert.Equal(t, "Paracetamol 500mg", billing.Items[0].MedicineName)
	assert.Equal(t, int64(250), billing.Items[0].UnitPrice)
	assert.Equal(t, int64(1000), billing.Items[0].LineTotal)

	assert.Equal(t, 6, f.stockStore.quantity(para.ID, "B1"))
	assert.Equal(t, 3, f.stockStore.quantity(amox.ID, ""))
	assert.Equal(t, 1, f.billingRepo.count())
}

func TestCreateBilling_DrainedEntryIsRemovedFromLedger(t *testing.T) {
	para := paracetamol()
	f := newBillingFixture(para)
	f.addStock(para.ID, "B1", 10)

	_, err := f.service.CreateBilling(f.ctx, &CreateBillingInput{
		UserID:       uuid.New(),
		CustomerName: "Jane Doe",
		Items:        []BillingItemInput{{MedicineID: para.ID, BatchNumber: "B1", Quantity: 10}},
	})
	require.NoError(t, err)

	assert.False(t, f.stockStore.exists(para.ID, "B1"), "entry sold down to zero should be deleted")
}

func TestCreateBilling_InsufficientStockFailsAtomically(t *testing.T) {
	para := paracetamol()
	amox := amoxicillin()
	f := newBillingFixture(para, amox)
	f.addStock(para.ID, "B1", 10)
	f.addStock(amox.ID, "", 1)

	_, err := f.service.CreateBilling(f.ctx, &CreateBillingInput{
		UserID:       uuid.New(),
		CustomerName: "Jane Doe",
		Items: []BillingItemInput{
			{MedicineID: para.ID, BatchNumber: "B1", Quantity: 4},
			{MedicineID: amox.ID, Quantity: 2},
		},
	})
	require.Error(t, err)
	assert.Equal(t, amox.ID.String(), apperror.MedicineID(err))

	// Nothing moved
	assert.Equal(t, 10, f.stockStore.quantity(para.ID, "B1"))
	assert.Equal(t, 1, f.stockStore.quantity(amox.ID, ""))
	assert.Equal(t, 0, f.billingRepo.count())
}

func TestCreateBilling_RequestingOneMoreThanOnHandFails(t *testing.T) {
	para := paracetamol()
	f := newBillingFixture(para)
	f.addStock(para.ID, "B1", 10)

	_, err := f.service.CreateBilling(f.ctx, &CreateBillingInput{
		UserID:       uuid.New(),
		CustomerName: "Jane Doe",
		Items:        []BillingItemInput{{MedicineID: para.ID, BatchNumber: "B1", Quantity: 11}},
	})
	require.Error(t, err)
	assert.Equal(t, para.ID.String(), apperror.MedicineID(err))
	assert.Equal(t, 10, f.stockStore.quantity(para.ID, "B1"))
}

func TestCreateBilling_UnknownMedicineRejected(t *testing.T) {
	para := paracetamol()
	f := newBillingFixture(para)
	f.addStock(para.ID, "B1", 10)

	ghost := uuid.New()
	_, err := f.service.CreateBilling(f.ctx, &CreateBillingInput{
		UserID:       uuid.New(),
		CustomerName: "Jane Doe",
		Items: []BillingItemInput{
			{MedicineID: para.ID, BatchNumber: "B1", Quantity: 1},
			{MedicineID: ghost, Quantity: 1},
		},
	})
	require.Error(t, err)
	assert.Equal(t, ghost.String(), apperror.MedicineID(err))
	assert.Equal(t, 10, f.stockStore.quantity(para.ID, "B1"))
}

func TestCreateBilling_NonPositiveQuantityRejected(t *testing.T) {
	para := paracetamol()
	f := newBillingFixture(para)
	f.addStock(para.ID, "B1", 10)

	for _, qty := range []int{0, -3} {
		_, err := f.service.CreateBilling(f.ctx, &CreateBillingInput{
			UserID:       uuid.New(),
			CustomerName: "Jane Doe",
			Items:        []BillingItemInput{{MedicineID: para.ID, BatchNumber: "B1", Quantity: qty}},
		})
		require.Error(t, err)
		assert.Equal(t, para.ID.String(), apperror.MedicineID(err))
	}
	assert.Equal(t, 10, f.stockStore.quantity(para.ID, "B1"))
}

func TestCreateBilling_EmptyItemsRejected(t *testing.T) {
	f := newBillingFixture()

	_, err := f.service.CreateBilling(f.ctx, &CreateBillingInput{
		UserID:       uuid.New(),
		CustomerName: "Jane Doe",
	})
	require.Error(t, err)
}

func TestCreateBilling_ExpectedTotalVerified(t *testing.T) {
	para := paracetamol()
	f := newBillingFixture(para)
	f.addStock(para.ID, "B1", 10)

	// 4 * $2.50 = $10.00; a stale client price is rejected
	stale := 9.00
	_, err := f.service.CreateBilling(f.ctx, &CreateBillingInput{
		UserID:        uuid.New(),
		CustomerName:  "Jane Doe",
		ExpectedTotal: &stale,
		Items:         []BillingItemInput{{MedicineID: para.ID, BatchNumber: "B1", Quantity: 4}},
	})
	require.Error(t, err)
	assert.Equal(t, 10, f.stockStore.quantity(para.ID, "B1"))

	// Within a cent of the recomputed total passes
	near := 10.004
	billing, err := f.service.CreateBilling(f.ctx, &CreateBillingInput{
		UserID:        uuid.New(),
		CustomerName:  "Jane Doe",
		ExpectedTotal: &near,
		Items:         []BillingItemInput{{MedicineID: para.ID, BatchNumber: "B1", Quantity: 4}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), billing.TotalAmount)
}

func TestCreateBilling_DuplicateLinesShareOneLedgerEntry(t *testing.T) {
	para := paracetamol()
	f := newBillingFixture(para)
	f.addStock(para.ID, "B1", 10)

	// 6 + 5 exceeds the 10 on hand even though each line alone fits
	_, err := f.service.CreateBilling(f.ctx, &CreateBillingInput{
		UserID:       uuid.New(),
		CustomerName: "Jane Doe",
		Items: []BillingItemInput{
			{MedicineID: para.ID, BatchNumber: "B1", Quantity: 6},
			{MedicineID: para.ID, BatchNumber: "B1", Quantity: 5},
		},
	})
	require.Error(t, err)
	assert.Equal(t, para.ID.String(), apperror.MedicineID(err))
	assert.Equal(t, 10, f.stockStore.quantity(para.ID, "B1"))

	// 6 + 4 exactly drains it
	billing, err := f.service.CreateBilling(f.ctx, &CreateBillingInput{
		UserID:       uuid.New(),
		CustomerName: "Jane Doe",
		Items: []BillingItemInput{
			{MedicineID: para.ID, BatchNumber: "B1", Quantity: 6},
			{MedicineID: para.ID, BatchNumber: "B1", Quantity: 4},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 10, billing.TotalProducts)
	assert.False(t, f.stockStore.exists(para.ID, "B1"))
}

func TestCreateBilling_NoOversellUnderConcurrency(t *testing.T) {
	para := paracetamol()
	f := newBillingFixture(para)
	f.addStock(para.ID, "B1", 10)

	const (
		workers = 20
		qty     = 3
	)

	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.CreateBilling(f.ctx, &CreateBillingInput{
				UserID:       uuid.New(),
				CustomerName: "Walk-in",
				Items:        []BillingItemInput{{MedicineID: para.ID, BatchNumber: "B1", Quantity: qty}},
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		}
	}

	// 10 on hand, 3 per sale: exactly 3 sales fit
	assert.Equal(t, 3, succeeded)
	assert.Equal(t, 3, f.billingRepo.count())
	assert.Equal(t, 10-3*qty, f.stockStore.quantity(para.ID, "B1"))
}
