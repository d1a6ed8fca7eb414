package pembelian

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/garasi-erp/garasi-erp/internal/pembukuan"
	"github.com/garasi-erp/garasi-erp/internal/shared"
)

type fakeStore struct {
	pembelian map[int64]Pembelian
	nextID    int64
	companies map[int64]CompanyRef
	modal     map[int64]int64
	qty       map[int64]int
	ledger    []pembukuan.Entry
	histories []PriceHistory
	sales     map[int64]DependentSale
	salesBy   map[int64]int64 // pembelianID -> saleID

	failOn string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		pembelian: map[int64]Pembelian{},
		companies: map[int64]CompanyRef{
			1: {ID: 1, Name: "PT Maju", Divisi: "motor"},
			2: {ID: 2, Name: "PT Jaya", Divisi: "motor"},
		},
		modal:   map[int64]int64{1: 100_000_000, 2: 50_000_000},
		qty:     map[int64]int{10: 0},
		sales:   map[int64]DependentSale{},
		salesBy: map[int64]int64{},
	}
}

var errInjected = errors.New("injected failure")

func (f *fakeStore) snapshot() *fakeStore {
	cp := &fakeStore{
		pembelian: map[int64]Pembelian{},
		nextID:    f.nextID,
		companies: f.companies,
		modal:     map[int64]int64{},
		qty:       map[int64]int{},
		ledger:    append([]pembukuan.Entry(nil), f.ledger...),
		histories: append([]PriceHistory(nil), f.histories...),
		sales:     map[int64]DependentSale{},
		salesBy:   map[int64]int64{},
	}
	for k, v := range f.pembelian {
		cp.pembelian[k] = v
	}
	for k, v := range f.modal {
		cp.modal[k] = v
	}
	for k, v := range f.qty {
		cp.qty[k] = v
	}
	for k, v := range f.sales {
		cp.sales[k] = v
	}
	for k, v := range f.salesBy {
		cp.salesBy[k] = v
	}
	return cp
}

func (f *fakeStore) restore(s *fakeStore) {
	f.pembelian = s.pembelian
	f.nextID = s.nextID
	f.modal = s.modal
	f.qty = s.qty
	f.ledger = s.ledger
	f.histories = s.histories
	f.sales = s.sales
	f.salesBy = s.salesBy
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	before := f.snapshot()
	if err := fn(ctx, f); err != nil {
		f.restore(before)
		return err
	}
	return nil
}

func (f *fakeStore) List(ctx context.Context, filter ListFilter) ([]Pembelian, int, error) {
	var out []Pembelian
	for _, p := range f.pembelian {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (f *fakeStore) Get(ctx context.Context, id int64) (Pembelian, error) {
	p, ok := f.pembelian[id]
	if !ok {
		return Pembelian{}, ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) ListPriceHistories(ctx context.Context, pembelianID int64) ([]PriceHistory, error) {
	var out []PriceHistory
	for _, h := range f.histories {
		if h.PembelianID == pembelianID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertPembelian(ctx context.Context, p Pembelian) (Pembelian, error) {
	if f.failOn == "InsertPembelian" {
		return Pembelian{}, errInjected
	}
	f.nextID++
	p.ID = f.nextID
	f.pembelian[p.ID] = p
	return p, nil
}

func (f *fakeStore) GetPembelianForUpdate(ctx context.Context, id int64) (Pembelian, error) {
	return f.Get(ctx, id)
}

func (f *fakeStore) UpdatePembelian(ctx context.Context, p Pembelian) error {
	if _, ok := f.pembelian[p.ID]; !ok {
		return ErrNotFound
	}
	f.pembelian[p.ID] = p
	return nil
}

func (f *fakeStore) UpdateHargaFinal(ctx context.Context, id int64, hargaFinal int64) error {
	p, ok := f.pembelian[id]
	if !ok {
		return ErrNotFound
	}
	p.HargaFinal = hargaFinal
	f.pembelian[id] = p
	return nil
}

func (f *fakeStore) DeletePembelian(ctx context.Context, id int64) error {
	if _, ok := f.pembelian[id]; !ok {
		return ErrNotFound
	}
	delete(f.pembelian, id)
	return nil
}

func (f *fakeStore) GetCompany(ctx context.Context, id int64) (CompanyRef, error) {
	c, ok := f.companies[id]
	if !ok {
		return CompanyRef{}, shared.ErrCompanyNotFound
	}
	return c, nil
}

func (f *fakeStore) AdjustModal(ctx context.Context, companyID, amount int64) error {
	if f.failOn == "AdjustModal" {
		return errInjected
	}
	if _, ok := f.companies[companyID]; !ok {
		return shared.ErrCompanyNotFound
	}
	f.modal[companyID] += amount
	return nil
}

func (f *fakeStore) IncrementQty(ctx context.Context, jenisMotorID int64) error {
	if f.failOn == "IncrementQty" {
		return errInjected
	}
	f.qty[jenisMotorID]++
	return nil
}

func (f *fakeStore) DecrementQty(ctx context.Context, jenisMotorID int64) error {
	f.qty[jenisMotorID]--
	return nil
}

func (f *fakeStore) InsertLedgerEntry(ctx context.Context, entry pembukuan.Entry) error {
	if f.failOn == "InsertLedgerEntry" {
		return errInjected
	}
	f.ledger = append(f.ledger, entry)
	return nil
}

func (f *fakeStore) DeleteLedgerByPembelian(ctx context.Context, pembelianID int64) error {
	kept := f.ledger[:0]
	for _, e := range f.ledger {
		if e.PembelianID == nil || *e.PembelianID != pembelianID {
			kept = append(kept, e)
		}
	}
	f.ledger = kept
	return nil
}

func (f *fakeStore) InsertPriceHistory(ctx context.Context, h PriceHistory) error {
	f.histories = append(f.histories, h)
	return nil
}

func (f *fakeStore) GetDependentSale(ctx context.Context, pembelianID int64) (DependentSale, bool, error) {
	id, ok := f.salesBy[pembelianID]
	if !ok {
		return DependentSale{}, false, nil
	}
	s := f.sales[id]
	if s.Status == "cancelled_dp_hangus" {
		return DependentSale{}, false, nil
	}
	return s, true, nil
}

func (f *fakeStore) UpdateSaleCost(ctx context.Context, saleID, hargaBeli, keuntungan int64) error {
	s, ok := f.sales[saleID]
	if !ok {
		return errors.New("sale not found")
	}
	s.HargaBeli = hargaBeli
	s.Keuntungan = keuntungan
	f.sales[saleID] = s
	return nil
}

func (f *fakeStore) CountActiveSales(ctx context.Context, pembelianID int64) (int, error) {
	id, ok := f.salesBy[pembelianID]
	if !ok {
		return 0, nil
	}
	if f.sales[id].Status == "cancelled_dp_hangus" {
		return 0, nil
	}
	return 1, nil
}

func testDate() time.Time {
	return time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
}

func newTestService(store *fakeStore) *Service {
	s := NewService(store, nil)
	s.WithNow(testDate)
	return s
}

func validInput() CreateInput {
	return CreateInput{
		Tanggal:      testDate(),
		Cabang:       "pusat",
		JenisMotorID: 10,
		Tahun:        2020,
		Warna:        "hitam",
		Plat:         "B 1234 XYZ",
		HargaBeli:    12_000_000,
		Funding:      []FundingSplit{{CompanyID: 1, Amount: 12_000_000}},
	}
}

func TestCreateRejectsFundingMismatch(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	input := validInput()
	input.Funding = []FundingSplit{{CompanyID: 1, Amount: 7_000_000}, {CompanyID: 2, Amount: 4_000_000}}

	_, err := svc.Create(context.Background(), input)
	require.ErrorIs(t, err, ErrFundingMismatch)
	require.Empty(t, store.pembelian)
	require.Equal(t, int64(100_000_000), store.modal[1])
}

func TestCreatePostsCapitalStockAndLedger(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	p, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	require.Equal(t, StatusReady, p.Status)
	require.Equal(t, int64(12_000_000), p.HargaFinal)

	require.Equal(t, int64(88_000_000), store.modal[1])
	require.Equal(t, 1, store.qty[10])
	require.Len(t, store.ledger, 1)
	entry := store.ledger[0]
	require.Equal(t, int64(12_000_000), entry.Debit)
	require.Zero(t, entry.Kredit)
	require.NotNil(t, entry.PembelianID)
	require.Equal(t, p.ID, *entry.PembelianID)
	require.Equal(t, "motor", entry.Divisi)
}

func TestCreateSplitsFundingAcrossCompanies(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	input := validInput()
	input.Funding = []FundingSplit{{CompanyID: 1, Amount: 8_000_000}, {CompanyID: 2, Amount: 4_000_000}}

	p, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	require.NotNil(t, p.Company2ID)
	require.Equal(t, int64(2), *p.Company2ID)
	require.Equal(t, int64(92_000_000), store.modal[1])
	require.Equal(t, int64(46_000_000), store.modal[2])
	require.Len(t, store.ledger, 2)
}

func TestCreateRollsBackOnPartialFailure(t *testing.T) {
	store := newFakeStore()
	store.failOn = "InsertLedgerEntry"
	svc := newTestService(store)

	_, err := svc.Create(context.Background(), validInput())
	require.ErrorIs(t, err, errInjected)
	require.Empty(t, store.pembelian)
	require.Empty(t, store.ledger)
	require.Equal(t, int64(100_000_000), store.modal[1])
	require.Zero(t, store.qty[10])
}

func TestUpdateTransfersStockCounterOnTypeChange(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	p, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	require.Equal(t, 1, store.qty[10])

	updated, err := svc.Update(context.Background(), p.ID, UpdateInput{
		Tanggal:      testDate(),
		Cabang:       "pusat",
		JenisMotorID: 11,
		Tahun:        2020,
		Warna:        "hitam",
		Plat:         "B 1234 XYZ",
		HargaBeli:    12_000_000,
		Funding:      []FundingSplit{{CompanyID: 1, Amount: 12_000_000}},
	})
	require.NoError(t, err)
	require.Equal(t, int64(11), updated.JenisMotorID)
	require.Zero(t, store.qty[10])
	require.Equal(t, 1, store.qty[11])
}

func TestUpdateKeepsCountersForBookedUnit(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	p, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	p.Status = StatusBooked
	store.pembelian[p.ID] = p
	store.qty[10] = 0 // booked units are already out of the counter

	_, err = svc.Update(context.Background(), p.ID, UpdateInput{
		Tanggal:      testDate(),
		Cabang:       "pusat",
		JenisMotorID: 11,
		Tahun:        2020,
		Warna:        "hitam",
		Plat:         "B 1234 XYZ",
		HargaBeli:    12_000_000,
		Funding:      []FundingSplit{{CompanyID: 1, Amount: 12_000_000}},
	})
	require.NoError(t, err)
	require.Zero(t, store.qty[10])
	require.Zero(t, store.qty[11])
}

func TestDeleteRestoresCapitalAndStock(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	p, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), p.ID))
	require.Empty(t, store.pembelian)
	require.Empty(t, store.ledger)
	require.Equal(t, int64(100_000_000), store.modal[1])
	require.Zero(t, store.qty[10])
}

func TestDeleteBlockedByActiveSale(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	p, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	store.sales[1] = DependentSale{ID: 1, HargaBeli: p.HargaFinal, Keuntungan: 2_000_000, Status: "booked"}
	store.salesBy[p.ID] = 1

	err = svc.Delete(context.Background(), p.ID)
	require.ErrorIs(t, err, ErrReferenced)
	require.Contains(t, store.pembelian, p.ID)
	require.Len(t, store.ledger, 1)
}

func TestDeleteAllowedAfterForfeitedCancellation(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	p, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	store.sales[1] = DependentSale{ID: 1, Status: "cancelled_dp_hangus"}
	store.salesBy[p.ID] = 1

	require.NoError(t, svc.Delete(context.Background(), p.ID))
}

func TestReviseCostPositiveDelta(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	p, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	store.sales[7] = DependentSale{ID: 7, HargaBeli: 12_000_000, Keuntungan: 3_000_000, Status: "booked"}
	store.salesBy[p.ID] = 7

	revised, err := svc.ReviseCost(context.Background(), p.ID, ReviseInput{
		CompanyID:  1,
		BiayaPajak: 300_000,
		BiayaQC:    200_000,
		Reason:     "pajak dan servis",
	})
	require.NoError(t, err)
	require.Equal(t, int64(12_500_000), revised.HargaFinal)

	require.Len(t, store.histories, 1)
	h := store.histories[0]
	require.Equal(t, int64(12_000_000), h.HargaLama)
	require.Equal(t, int64(12_500_000), h.HargaBaru)

	// positive delta posts a ledger debit and consumes capital
	require.Len(t, store.ledger, 2)
	require.Equal(t, int64(500_000), store.ledger[1].Debit)
	require.Equal(t, int64(87_500_000), store.modal[1])

	// the dependent sale's cost basis rises and its profit shrinks
	sale := store.sales[7]
	require.Equal(t, int64(12_500_000), sale.HargaBeli)
	require.Equal(t, int64(2_500_000), sale.Keuntungan)
}

func TestReviseCostNegativeDeltaSkipsLedgerAndCapital(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	p, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	store.sales[7] = DependentSale{ID: 7, HargaBeli: 12_000_000, Keuntungan: 3_000_000, Status: "booked"}
	store.salesBy[p.ID] = 7

	revised, err := svc.ReviseCost(context.Background(), p.ID, ReviseInput{
		CompanyID: 1,
		BiayaLain: -400_000,
		Reason:    "koreksi estimasi",
	})
	require.NoError(t, err)
	require.Equal(t, int64(11_600_000), revised.HargaFinal)

	require.Len(t, store.ledger, 1)
	require.Equal(t, int64(88_000_000), store.modal[1])

	sale := store.sales[7]
	require.Equal(t, int64(11_600_000), sale.HargaBeli)
	require.Equal(t, int64(3_400_000), sale.Keuntungan)
}

func TestReviseCostValidation(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	p, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	_, err = svc.ReviseCost(context.Background(), p.ID, ReviseInput{CompanyID: 1, BiayaQC: 100})
	require.ErrorIs(t, err, ErrReasonRequired)

	_, err = svc.ReviseCost(context.Background(), p.ID, ReviseInput{CompanyID: 1, Reason: "noop"})
	require.ErrorIs(t, err, ErrZeroDelta)

	_, err = svc.ReviseCost(context.Background(), p.ID, ReviseInput{CompanyID: 1, BiayaLain: -13_000_000, Reason: "oversized"})
	require.ErrorIs(t, err, ErrNegativeFinal)
	require.Equal(t, int64(12_000_000), store.pembelian[p.ID].HargaFinal)
	require.Empty(t, store.histories)
}

func TestRevisionsAccumulateOnHargaFinal(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	p, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	_, err = svc.ReviseCost(context.Background(), p.ID, ReviseInput{CompanyID: 1, BiayaQC: 250_000, Reason: "servis awal"})
	require.NoError(t, err)
	revised, err := svc.ReviseCost(context.Background(), p.ID, ReviseInput{CompanyID: 1, BiayaPajak: 150_000, Reason: "balik nama"})
	require.NoError(t, err)

	require.Equal(t, int64(12_400_000), revised.HargaFinal)
	require.Len(t, store.histories, 2)
	require.Equal(t, int64(12_250_000), store.histories[1].HargaLama)
}

func TestStatusTransitions(t *testing.T) {
	require.True(t, StatusReady.CanTransitionTo(StatusBooked))
	require.True(t, StatusBooked.CanTransitionTo(StatusSold))
	require.True(t, StatusSold.CanTransitionTo(StatusReady))
	require.False(t, StatusSold.CanTransitionTo(StatusBooked))

	_, err := ParseStatus("archived")
	require.Error(t, err)
	s, err := ParseStatus("ready")
	require.NoError(t, err)
	require.Equal(t, StatusReady, s)
}
