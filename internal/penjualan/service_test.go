package penjualan

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/garasi-erp/garasi-erp/internal/pembukuan"
	"github.com/garasi-erp/garasi-erp/internal/shared"
)

type fakeStore struct {
	sales     map[int64]Sale
	nextID    int64
	purchases map[int64]PurchaseRef
	companies map[int64]CompanyRef
	modal     map[int64]int64
	qty       map[int64]int
	ledger    []pembukuan.Entry
	histories []PriceHistory
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sales: map[int64]Sale{},
		purchases: map[int64]PurchaseRef{
			100: {ID: 100, JenisMotorID: 10, Cabang: "pusat", Plat: "B 1234 XYZ", HargaBeli: 10_000_000, HargaFinal: 10_000_000, Status: "ready"},
			101: {ID: 101, JenisMotorID: 11, Cabang: "pusat", Plat: "B 5678 ABC", HargaBeli: 15_000_000, HargaFinal: 15_500_000, Status: "ready"},
		},
		companies: map[int64]CompanyRef{
			1: {ID: 1, Name: "PT Maju", Divisi: "motor"},
		},
		modal: map[int64]int64{1: 100_000_000},
		qty:   map[int64]int{10: 1, 11: 1},
	}
}

func (f *fakeStore) snapshot() *fakeStore {
	cp := &fakeStore{
		sales:     map[int64]Sale{},
		nextID:    f.nextID,
		purchases: map[int64]PurchaseRef{},
		companies: f.companies,
		modal:     map[int64]int64{},
		qty:       map[int64]int{},
		ledger:    append([]pembukuan.Entry(nil), f.ledger...),
		histories: append([]PriceHistory(nil), f.histories...),
	}
	for k, v := range f.sales {
		cp.sales[k] = v
	}
	for k, v := range f.purchases {
		cp.purchases[k] = v
	}
	for k, v := range f.modal {
		cp.modal[k] = v
	}
	for k, v := range f.qty {
		cp.qty[k] = v
	}
	return cp
}

func (f *fakeStore) restore(s *fakeStore) {
	f.sales = s.sales
	f.nextID = s.nextID
	f.purchases = s.purchases
	f.modal = s.modal
	f.qty = s.qty
	f.ledger = s.ledger
	f.histories = s.histories
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	before := f.snapshot()
	if err := fn(ctx, f); err != nil {
		f.restore(before)
		return err
	}
	return nil
}

func (f *fakeStore) List(ctx context.Context, filter ListFilter) ([]Sale, int, error) {
	var out []Sale
	for _, s := range f.sales {
		out = append(out, s)
	}
	return out, len(out), nil
}

func (f *fakeStore) Get(ctx context.Context, id int64) (Sale, error) {
	s, ok := f.sales[id]
	if !ok {
		return Sale{}, ErrNotFound
	}
	return s, nil
}

func (f *fakeStore) ListPriceHistories(ctx context.Context, penjualanID int64) ([]PriceHistory, error) {
	var out []PriceHistory
	for _, h := range f.histories {
		if h.PenjualanID == penjualanID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertSale(ctx context.Context, s Sale) (Sale, error) {
	f.nextID++
	s.ID = f.nextID
	s.StatusLabel = s.Status.Label()
	f.sales[s.ID] = s
	return s, nil
}

func (f *fakeStore) GetSaleForUpdate(ctx context.Context, id int64) (Sale, error) {
	return f.Get(ctx, id)
}

func (f *fakeStore) UpdateSale(ctx context.Context, s Sale) error {
	if _, ok := f.sales[s.ID]; !ok {
		return ErrNotFound
	}
	f.sales[s.ID] = s
	return nil
}

func (f *fakeStore) DeleteSale(ctx context.Context, id int64) error {
	if _, ok := f.sales[id]; !ok {
		return ErrNotFound
	}
	delete(f.sales, id)
	return nil
}

func (f *fakeStore) GetPurchaseForUpdate(ctx context.Context, id int64) (PurchaseRef, error) {
	p, ok := f.purchases[id]
	if !ok {
		return PurchaseRef{}, ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) UpdatePurchaseStatus(ctx context.Context, id int64, status string) error {
	p, ok := f.purchases[id]
	if !ok {
		return ErrNotFound
	}
	p.Status = status
	f.purchases[id] = p
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
	if _, ok := f.companies[companyID]; !ok {
		return shared.ErrCompanyNotFound
	}
	f.modal[companyID] += amount
	return nil
}

func (f *fakeStore) IncrementQty(ctx context.Context, jenisMotorID int64) error {
	f.qty[jenisMotorID]++
	return nil
}

func (f *fakeStore) DecrementQty(ctx context.Context, jenisMotorID int64) error {
	f.qty[jenisMotorID]--
	return nil
}

func (f *fakeStore) InsertLedgerEntry(ctx context.Context, entry pembukuan.Entry) error {
	f.ledger = append(f.ledger, entry)
	return nil
}

func (f *fakeStore) DeleteLedgerByPembelianAndCompany(ctx context.Context, pembelianID, companyID int64) error {
	kept := f.ledger[:0]
	for _, e := range f.ledger {
		if e.PembelianID == nil || *e.PembelianID != pembelianID || e.CompanyID != companyID {
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

func testDate() time.Time {
	return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
}

func newTestService(store *fakeStore) *Service {
	s := NewService(store, nil)
	s.WithNow(testDate)
	return s
}

func cashSaleInput() CreateInput {
	return CreateInput{
		Tanggal:          testDate(),
		PembelianID:      100,
		CompanyID:        1,
		HargaJual:        12_000_000,
		MetodePembayaran: PayCashFull,
	}
}

func bookedSaleInput(dp int64) CreateInput {
	return CreateInput{
		Tanggal:          testDate(),
		PembelianID:      100,
		CompanyID:        1,
		HargaJual:        12_000_000,
		MetodePembayaran: PayCashInstalled,
		DP:               dp,
	}
}

func TestCreateFullCashCompletesSale(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	sale, err := svc.Create(context.Background(), cashSaleInput())
	require.NoError(t, err)

	// unit cost 10jt sold at 12jt: profit 2jt, everything settled at once
	require.Equal(t, StatusSelesai, sale.Status)
	require.Equal(t, "Sold", sale.StatusLabel)
	require.Equal(t, int64(10_000_000), sale.HargaBeli)
	require.Equal(t, int64(2_000_000), sale.Keuntungan)
	require.Zero(t, sale.SisaBayar)

	require.Equal(t, "sold", store.purchases[100].Status)
	require.Zero(t, store.qty[10])
	require.Equal(t, int64(112_000_000), store.modal[1])
	require.Len(t, store.ledger, 1)
	require.Equal(t, int64(12_000_000), store.ledger[0].Kredit)
	require.Zero(t, store.ledger[0].Debit)
}

func TestCreateWithDownPaymentBooks(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	sale, err := svc.Create(context.Background(), bookedSaleInput(3_000_000))
	require.NoError(t, err)

	require.Equal(t, StatusBooked, sale.Status)
	require.Equal(t, int64(9_000_000), sale.SisaBayar)
	require.Equal(t, "booked", store.purchases[100].Status)
	require.Zero(t, store.qty[10])
	require.Equal(t, int64(103_000_000), store.modal[1])
	require.Len(t, store.ledger, 1)
	require.Equal(t, int64(3_000_000), store.ledger[0].Kredit)
}

func TestCreateRejectsUnavailableUnit(t *testing.T) {
	store := newFakeStore()
	p := store.purchases[100]
	p.Status = "sold"
	store.purchases[100] = p
	svc := newTestService(store)

	_, err := svc.Create(context.Background(), cashSaleInput())
	require.ErrorIs(t, err, ErrUnitUnavailable)
	require.Empty(t, store.sales)
	require.Equal(t, int64(100_000_000), store.modal[1])
}

func TestCreateRejectsBookedUnit(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	_, err := svc.Create(context.Background(), bookedSaleInput(3_000_000))
	require.NoError(t, err)

	// a second full-cash sale on the booked unit must not go through
	_, err = svc.Create(context.Background(), cashSaleInput())
	require.ErrorIs(t, err, ErrUnitUnavailable)
	require.Len(t, store.sales, 1)
	require.Zero(t, store.qty[10])
	require.Equal(t, "booked", store.purchases[100].Status)
	require.Equal(t, int64(103_000_000), store.modal[1])
}

func TestCreateUsesHargaFinalAsCostBasis(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	input := cashSaleInput()
	input.PembelianID = 101
	input.HargaJual = 17_000_000

	sale, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, int64(15_500_000), sale.HargaBeli)
	require.Equal(t, int64(1_500_000), sale.Keuntungan)
}

func TestDeleteReturnsUnitAndReversesCapital(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	sale, err := svc.Create(context.Background(), cashSaleInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), sale.ID))
	require.Empty(t, store.sales)
	require.Empty(t, store.ledger)
	require.Equal(t, "ready", store.purchases[100].Status)
	require.Equal(t, 1, store.qty[10])
	// capital moved +12jt on sale, then +cost(10jt) -profit(2jt) on delete
	require.Equal(t, int64(120_000_000), store.modal[1])
}

func TestCancelFullForfeitMovesNoMoney(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	sale, err := svc.Create(context.Background(), bookedSaleInput(3_000_000))
	require.NoError(t, err)
	modalAfterCreate := store.modal[1]
	ledgerAfterCreate := len(store.ledger)

	cancelled, err := svc.CancelDP(context.Background(), sale.ID, CancelInput{Policy: CancelFullForfeit})
	require.NoError(t, err)

	// the 3jt stays with the house: no new ledger rows, no capital change
	require.Equal(t, StatusCancelled, cancelled.Status)
	require.Equal(t, "Cancelled", cancelled.StatusLabel)
	require.Zero(t, cancelled.DP)
	require.Zero(t, cancelled.SisaBayar)
	require.Equal(t, modalAfterCreate, store.modal[1])
	require.Len(t, store.ledger, ledgerAfterCreate)
	require.Equal(t, "ready", store.purchases[100].Status)
	require.Equal(t, 1, store.qty[10])
}

func TestCancelPartialRefundPostsOneDebit(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	sale, err := svc.Create(context.Background(), bookedSaleInput(3_000_000))
	require.NoError(t, err)
	modalAfterCreate := store.modal[1]
	ledgerAfterCreate := len(store.ledger)

	cancelled, err := svc.CancelDP(context.Background(), sale.ID, CancelInput{
		Policy: CancelPartialRefund,
		Refund: 2_000_000,
	})
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, cancelled.Status)

	require.Len(t, store.ledger, ledgerAfterCreate+1)
	refundRow := store.ledger[len(store.ledger)-1]
	require.Equal(t, int64(2_000_000), refundRow.Debit)
	require.Zero(t, refundRow.Kredit)
	require.Equal(t, modalAfterCreate-2_000_000, store.modal[1])
	require.Equal(t, "ready", store.purchases[100].Status)
}

func TestCancelRejectsOversizedRefund(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	sale, err := svc.Create(context.Background(), bookedSaleInput(3_000_000))
	require.NoError(t, err)

	_, err = svc.CancelDP(context.Background(), sale.ID, CancelInput{
		Policy: CancelPartialRefund,
		Refund: 5_000_000,
	})
	require.ErrorIs(t, err, ErrRefundExceedsDP)
	require.Equal(t, StatusBooked, store.sales[sale.ID].Status)
}

func TestCancelRejectsCompletedSale(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	sale, err := svc.Create(context.Background(), cashSaleInput())
	require.NoError(t, err)

	_, err = svc.CancelDP(context.Background(), sale.ID, CancelInput{Policy: CancelFullForfeit})
	require.ErrorIs(t, err, ErrIllegalTransition)
}

func TestAdjustSoldPriceIncrease(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	sale, err := svc.Create(context.Background(), cashSaleInput())
	require.NoError(t, err)

	adjusted, err := svc.AdjustSoldPrice(context.Background(), sale.ID, AdjustInput{
		Jenis:  AdjustTambah,
		Amount: 500_000,
		Reason: "biaya perbaikan tambahan",
	})
	require.NoError(t, err)
	require.Equal(t, int64(10_500_000), adjusted.HargaBeli)
	require.Equal(t, int64(1_500_000), adjusted.Keuntungan)

	require.Len(t, store.ledger, 2)
	require.Equal(t, int64(500_000), store.ledger[1].Debit)
	require.Equal(t, int64(111_500_000), store.modal[1])
	require.Len(t, store.histories, 1)
	require.Equal(t, AdjustTambah, store.histories[0].Jenis)
}

func TestAdjustSoldPriceDecreaseWithinCap(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	sale, err := svc.Create(context.Background(), cashSaleInput())
	require.NoError(t, err)

	adjusted, err := svc.AdjustSoldPrice(context.Background(), sale.ID, AdjustInput{
		Jenis:  AdjustKurang,
		Amount: 1_000_000,
		Reason: "koreksi harga",
	})
	require.NoError(t, err)
	require.Equal(t, int64(9_000_000), adjusted.HargaBeli)
	require.Equal(t, int64(3_000_000), adjusted.Keuntungan)

	require.Equal(t, int64(1_000_000), store.ledger[1].Kredit)
	require.Equal(t, int64(113_000_000), store.modal[1])
}

func TestAdjustSoldPriceDecreaseCappedAt80Percent(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	sale, err := svc.Create(context.Background(), cashSaleInput())
	require.NoError(t, err)

	// cost basis 10jt: anything above 8jt must be rejected
	_, err = svc.AdjustSoldPrice(context.Background(), sale.ID, AdjustInput{
		Jenis:  AdjustKurang,
		Amount: 8_500_000,
		Reason: "koreksi besar",
	})
	require.ErrorIs(t, err, ErrDecreaseExceedsCap)
	require.Equal(t, int64(10_000_000), store.sales[sale.ID].HargaBeli)

	_, err = svc.AdjustSoldPrice(context.Background(), sale.ID, AdjustInput{
		Jenis:  AdjustKurang,
		Amount: 8_000_000,
		Reason: "koreksi besar",
	})
	require.NoError(t, err)
	require.Equal(t, int64(2_000_000), store.sales[sale.ID].HargaBeli)
}

func TestAdjustRequiresCompletedSale(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	sale, err := svc.Create(context.Background(), bookedSaleInput(3_000_000))
	require.NoError(t, err)

	_, err = svc.AdjustSoldPrice(context.Background(), sale.ID, AdjustInput{
		Jenis:  AdjustTambah,
		Amount: 100_000,
		Reason: "servis",
	})
	require.ErrorIs(t, err, ErrAdjustNotAllowed)
}

func TestEditRecomputesFinancials(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	sale, err := svc.Create(context.Background(), bookedSaleInput(3_000_000))
	require.NoError(t, err)

	input := bookedSaleInput(3_000_000)
	input.HargaJual = 13_000_000
	edited, err := svc.Edit(context.Background(), sale.ID, input)
	require.NoError(t, err)

	require.Equal(t, int64(3_000_000), edited.Keuntungan)
	require.Equal(t, int64(10_000_000), edited.SisaBayar)
	// the old DP posting is replaced, not duplicated
	require.Len(t, store.ledger, 1)
	require.Equal(t, int64(103_000_000), store.modal[1])
}

func TestEditRejectsCompletedSale(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	sale, err := svc.Create(context.Background(), cashSaleInput())
	require.NoError(t, err)

	_, err = svc.Edit(context.Background(), sale.ID, cashSaleInput())
	require.ErrorIs(t, err, ErrNotEditable)
}

func TestEditSwapsUnitWhenDownPaymentStands(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	sale, err := svc.Create(context.Background(), bookedSaleInput(3_000_000))
	require.NoError(t, err)

	input := bookedSaleInput(3_000_000)
	input.PembelianID = 101
	input.HargaJual = 17_000_000
	edited, err := svc.Edit(context.Background(), sale.ID, input)
	require.NoError(t, err)

	require.Equal(t, int64(101), edited.PembelianID)
	require.Equal(t, int64(15_500_000), edited.HargaBeli)
	require.Equal(t, "ready", store.purchases[100].Status)
	require.Equal(t, "booked", store.purchases[101].Status)
	require.Equal(t, 1, store.qty[10])
	require.Zero(t, store.qty[11])
}

func TestEditReleasesUnitWhenDownPaymentCleared(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	sale, err := svc.Create(context.Background(), bookedSaleInput(3_000_000))
	require.NoError(t, err)

	// the stored DP drives the swap even when the edit clears it
	input := bookedSaleInput(0)
	input.PembelianID = 101
	input.HargaJual = 17_000_000
	edited, err := svc.Edit(context.Background(), sale.ID, input)
	require.NoError(t, err)

	require.Equal(t, int64(101), edited.PembelianID)
	require.Equal(t, "ready", store.purchases[100].Status)
	require.Equal(t, 1, store.qty[10])
	require.Equal(t, "booked", store.purchases[101].Status)
	require.Zero(t, store.qty[11])
	// old DP posting reversed, nothing received yet on the new state
	require.Empty(t, store.ledger)
	require.Equal(t, int64(100_000_000), store.modal[1])
}

func TestStatusMachine(t *testing.T) {
	require.True(t, StatusBooked.CanTransitionTo(StatusSelesai))
	require.True(t, StatusPending.CanTransitionTo(StatusBooked))
	require.False(t, StatusSelesai.CanTransitionTo(StatusBooked))
	require.False(t, StatusCancelled.CanTransitionTo(StatusBooked))
	require.True(t, StatusSelesai.Terminal())

	s, err := ParseStatusLabel("Sold")
	require.NoError(t, err)
	require.Equal(t, StatusSelesai, s)
	require.Equal(t, "Booked", StatusBooked.Label())

	_, err = ParseStatus("done")
	require.Error(t, err)
}
