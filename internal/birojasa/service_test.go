package birojasa

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/garasi-erp/garasi-erp/internal/pembukuan"
	"github.com/garasi-erp/garasi-erp/internal/shared"
)

type fakeStore struct {
	cases     map[int64]Case
	nextID    int64
	cicilans  []Cicilan
	nextCID   int64
	companies map[int64]CompanyRef
	modal     map[int64]int64
	ledger    []pembukuan.Entry
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		cases: map[int64]Case{},
		companies: map[int64]CompanyRef{
			1: {ID: 1, Name: "PT Maju", Divisi: "biro_jasa"},
		},
		modal: map[int64]int64{1: 50_000_000},
	}
}

func (f *fakeStore) snapshot() *fakeStore {
	cp := &fakeStore{
		cases:     map[int64]Case{},
		nextID:    f.nextID,
		cicilans:  append([]Cicilan(nil), f.cicilans...),
		nextCID:   f.nextCID,
		companies: f.companies,
		modal:     map[int64]int64{},
		ledger:    append([]pembukuan.Entry(nil), f.ledger...),
	}
	for k, v := range f.cases {
		cp.cases[k] = v
	}
	for k, v := range f.modal {
		cp.modal[k] = v
	}
	return cp
}

func (f *fakeStore) restore(s *fakeStore) {
	f.cases = s.cases
	f.nextID = s.nextID
	f.cicilans = s.cicilans
	f.nextCID = s.nextCID
	f.modal = s.modal
	f.ledger = s.ledger
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	before := f.snapshot()
	if err := fn(ctx, f); err != nil {
		f.restore(before)
		return err
	}
	return nil
}

func (f *fakeStore) List(ctx context.Context, filter ListFilter) ([]Case, int, error) {
	var out []Case
	for _, c := range f.cases {
		out = append(out, c)
	}
	return out, len(out), nil
}

func (f *fakeStore) Get(ctx context.Context, id int64) (Case, error) {
	c, ok := f.cases[id]
	if !ok {
		return Case{}, ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) ListCicilan(ctx context.Context, biroJasaID int64) ([]Cicilan, error) {
	var out []Cicilan
	for _, c := range f.cicilans {
		if c.BiroJasaID == biroJasaID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertCase(ctx context.Context, c Case) (Case, error) {
	f.nextID++
	c.ID = f.nextID
	f.cases[c.ID] = c
	return c, nil
}

func (f *fakeStore) GetCaseForUpdate(ctx context.Context, id int64) (Case, error) {
	return f.Get(ctx, id)
}

func (f *fakeStore) UpdateCase(ctx context.Context, c Case) error {
	if _, ok := f.cases[c.ID]; !ok {
		return ErrNotFound
	}
	f.cases[c.ID] = c
	return nil
}

func (f *fakeStore) DeleteCase(ctx context.Context, id int64) error {
	if _, ok := f.cases[id]; !ok {
		return ErrNotFound
	}
	delete(f.cases, id)
	return nil
}

func (f *fakeStore) InsertCicilan(ctx context.Context, c Cicilan) (Cicilan, error) {
	f.nextCID++
	c.ID = f.nextCID
	f.cicilans = append(f.cicilans, c)
	return c, nil
}

func (f *fakeStore) DeleteCicilanByCase(ctx context.Context, biroJasaID int64) error {
	kept := f.cicilans[:0]
	for _, c := range f.cicilans {
		if c.BiroJasaID != biroJasaID {
			kept = append(kept, c)
		}
	}
	f.cicilans = kept
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

func (f *fakeStore) InsertLedgerEntry(ctx context.Context, entry pembukuan.Entry) error {
	f.ledger = append(f.ledger, entry)
	return nil
}

func testDate() time.Time {
	return time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
}

func newTestService(store *fakeStore) *Service {
	s := NewService(store, nil)
	s.WithNow(testDate)
	return s
}

func validInput() CreateInput {
	return CreateInput{
		Tanggal:         testDate(),
		JenisPengurusan: "perpanjang STNK",
		NamaCustomer:    "Budi",
		Plat:            "B 9999 ZZ",
		CompanyID:       1,
		EstimasiBiaya:   1_000_000,
		DP:              300_000,
	}
}

func TestCreateWithCustomerDP(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	c, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	require.Equal(t, StatusInProgress, c.Status)
	require.Equal(t, int64(700_000), c.Sisa)
	require.Equal(t, int64(300_000), c.TotalBayar)
	require.Equal(t, int64(1_000_000), c.Keuntungan)

	require.Len(t, store.ledger, 1)
	require.Equal(t, int64(300_000), store.ledger[0].Kredit)
	require.Equal(t, int64(50_300_000), store.modal[1])
}

func TestCreateWithoutDPPostsNothing(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	input := validInput()
	input.DP = 0
	c, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, int64(1_000_000), c.Sisa)
	require.Empty(t, store.ledger)
	require.Equal(t, int64(50_000_000), store.modal[1])
}

func TestCreateRejectsOversizedDP(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	input := validInput()
	input.DP = 2_000_000
	_, err := svc.Create(context.Background(), input)
	require.ErrorIs(t, err, ErrDPExceedsEstimate)
}

func TestVendorDPReducesProfitAndCapital(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	c, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	updated, err := svc.VendorDP(context.Background(), c.ID, PaymentInput{Jumlah: 400_000})
	require.NoError(t, err)
	require.Equal(t, int64(400_000), updated.DPModal)
	require.Equal(t, int64(400_000), updated.BiayaModal)
	require.Equal(t, int64(600_000), updated.Keuntungan)

	require.Len(t, store.ledger, 2)
	require.Equal(t, int64(400_000), store.ledger[1].Debit)
	require.Equal(t, int64(49_900_000), store.modal[1])
}

func TestCicilanAutoCompletesCase(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	c, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	mid, err := svc.AddCicilan(context.Background(), c.ID, PaymentInput{Jumlah: 300_000, Keterangan: "cicilan 1"})
	require.NoError(t, err)
	require.Equal(t, StatusInProgress, mid.Status)
	require.Equal(t, int64(400_000), mid.Sisa)

	done, err := svc.AddCicilan(context.Background(), c.ID, PaymentInput{Jumlah: 400_000, Keterangan: "pelunasan"})
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, done.Status)
	require.Zero(t, done.Sisa)
	require.Equal(t, int64(1_000_000), done.TotalBayar)

	require.Len(t, store.cicilans, 2)
	// DP 300k + cicilan 300k + cicilan 400k all entered capital
	require.Equal(t, int64(51_000_000), store.modal[1])
}

func TestPaymentsRejectedOnClosedCase(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	c, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	_, err = svc.Cancel(context.Background(), c.ID)
	require.NoError(t, err)

	_, err = svc.AddCicilan(context.Background(), c.ID, PaymentInput{Jumlah: 100_000})
	require.ErrorIs(t, err, ErrCaseClosed)
	_, err = svc.VendorDP(context.Background(), c.ID, PaymentInput{Jumlah: 100_000})
	require.ErrorIs(t, err, ErrCaseClosed)
}

func TestCancelOnlyFromInProgress(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	c, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	_, err = svc.AddCicilan(context.Background(), c.ID, PaymentInput{Jumlah: 700_000})
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, store.cases[c.ID].Status)

	_, err = svc.Cancel(context.Background(), c.ID)
	require.ErrorIs(t, err, ErrIllegalTransition)
}

func TestDeleteRemovesCicilanButKeepsBooks(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	c, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	_, err = svc.AddCicilan(context.Background(), c.ID, PaymentInput{Jumlah: 200_000})
	require.NoError(t, err)

	modalBefore := store.modal[1]
	ledgerBefore := len(store.ledger)

	require.NoError(t, svc.Delete(context.Background(), c.ID))
	require.Empty(t, store.cases)
	require.Empty(t, store.cicilans)
	require.Equal(t, modalBefore, store.modal[1])
	require.Len(t, store.ledger, ledgerBefore)
}
