package pembelian

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/garasi-erp/garasi-erp/internal/pembukuan"
	"github.com/garasi-erp/garasi-erp/internal/shared"
)

// AuditPort records audit trail entries, best effort.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service orchestrates purchase lifecycle routines. Every routine runs
// its full write sequence (purchase row, stock counter, capital, ledger,
// price history) inside one transaction so a partial failure rolls back
// instead of leaving drift between the denormalized tables.
type Service struct {
	repo  Repository
	audit AuditPort
	now   func() time.Time
}

func NewService(repo Repository, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

// WithNow overrides the clock, used by tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// CreateInput describes a new acquisition.
type CreateInput struct {
	Tanggal      time.Time
	Cabang       string
	JenisMotorID int64
	Tahun        int
	Warna        string
	Plat         string
	HargaBeli    int64
	Funding      []FundingSplit
}

// Validate enforces the funding-sum invariant before any store call.
func (in CreateInput) Validate() error {
	if in.Tanggal.IsZero() {
		return errors.New("pembelian: tanggal required")
	}
	if in.JenisMotorID <= 0 {
		return errors.New("pembelian: jenis motor required")
	}
	if in.HargaBeli <= 0 {
		return errors.New("pembelian: harga beli must be positive")
	}
	if len(in.Funding) < 1 || len(in.Funding) > 2 {
		return errors.New("pembelian: one or two funding companies required")
	}
	var sum int64
	for _, f := range in.Funding {
		if f.CompanyID <= 0 || f.Amount <= 0 {
			return errors.New("pembelian: funding company and amount required")
		}
		sum += f.Amount
	}
	if sum != in.HargaBeli {
		return ErrFundingMismatch
	}
	return nil
}

// Create inserts the purchase, bumps the type's stock counter, debits
// each funding company's capital and posts the matching ledger rows.
func (s *Service) Create(ctx context.Context, input CreateInput) (Pembelian, error) {
	if err := input.Validate(); err != nil {
		return Pembelian{}, err
	}
	var created Pembelian
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		refs := make([]CompanyRef, len(input.Funding))
		for i, f := range input.Funding {
			ref, err := tx.GetCompany(ctx, f.CompanyID)
			if err != nil {
				return err
			}
			refs[i] = ref
		}

		p := Pembelian{
			Tanggal:       input.Tanggal,
			Cabang:        input.Cabang,
			JenisMotorID:  input.JenisMotorID,
			Tahun:         input.Tahun,
			Warna:         input.Warna,
			Plat:          input.Plat,
			HargaBeli:     input.HargaBeli,
			HargaFinal:    input.HargaBeli,
			CompanyID:     input.Funding[0].CompanyID,
			HargaCompany1: input.Funding[0].Amount,
			Status:        StatusReady,
		}
		if len(input.Funding) == 2 {
			id := input.Funding[1].CompanyID
			p.Company2ID = &id
			p.HargaCompany2 = input.Funding[1].Amount
		}

		inserted, err := tx.InsertPembelian(ctx, p)
		if err != nil {
			return err
		}
		if err := tx.IncrementQty(ctx, inserted.JenisMotorID); err != nil {
			return err
		}
		for i, f := range input.Funding {
			if err := tx.AdjustModal(ctx, f.CompanyID, -f.Amount); err != nil {
				return err
			}
			entry := pembukuan.Entry{
				Tanggal:     input.Tanggal,
				Divisi:      refs[i].Divisi,
				Cabang:      input.Cabang,
				CompanyID:   f.CompanyID,
				PembelianID: &inserted.ID,
				Debit:       f.Amount,
				Keterangan:  fmt.Sprintf("Pembelian unit %s tahun %d - %s", inserted.Plat, inserted.Tahun, shared.FormatRupiah(f.Amount)),
			}
			if err := tx.InsertLedgerEntry(ctx, entry); err != nil {
				return err
			}
		}
		created = inserted
		return nil
	})
	if err != nil {
		return Pembelian{}, err
	}
	s.record(ctx, "pembelian.create", created.ID, map[string]any{"harga_beli": created.HargaBeli})
	return created, nil
}

// UpdateInput describes an edit of descriptive purchase fields.
type UpdateInput struct {
	Tanggal      time.Time
	Cabang       string
	JenisMotorID int64
	Tahun        int
	Warna        string
	Plat         string
	HargaBeli    int64
	Funding      []FundingSplit
}

// Update edits the purchase row. Funding totals are re-validated; money
// only moves through Create, Delete and ReviseCost, so capital and
// ledger rows stay untouched here. A harga beli change shifts harga
// final by the same delta to preserve accumulated revision costs.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) (Pembelian, error) {
	if err := (CreateInput{
		Tanggal:      input.Tanggal,
		Cabang:       input.Cabang,
		JenisMotorID: input.JenisMotorID,
		Tahun:        input.Tahun,
		Warna:        input.Warna,
		Plat:         input.Plat,
		HargaBeli:    input.HargaBeli,
		Funding:      input.Funding,
	}).Validate(); err != nil {
		return Pembelian{}, err
	}
	var updated Pembelian
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetPembelianForUpdate(ctx, id)
		if err != nil {
			return err
		}
		// a type change moves the unit between stock counters; booked and
		// sold units are not counted, so only ready units transfer
		if input.JenisMotorID != current.JenisMotorID && current.Status == StatusReady {
			if err := tx.DecrementQty(ctx, current.JenisMotorID); err != nil {
				return err
			}
			if err := tx.IncrementQty(ctx, input.JenisMotorID); err != nil {
				return err
			}
		}
		current.Tanggal = input.Tanggal
		current.Cabang = input.Cabang
		current.JenisMotorID = input.JenisMotorID
		current.Tahun = input.Tahun
		current.Warna = input.Warna
		current.Plat = input.Plat
		current.HargaFinal += input.HargaBeli - current.HargaBeli
		current.HargaBeli = input.HargaBeli
		current.CompanyID = input.Funding[0].CompanyID
		current.HargaCompany1 = input.Funding[0].Amount
		current.Company2ID = nil
		current.HargaCompany2 = 0
		if len(input.Funding) == 2 {
			id2 := input.Funding[1].CompanyID
			current.Company2ID = &id2
			current.HargaCompany2 = input.Funding[1].Amount
		}
		if err := tx.UpdatePembelian(ctx, current); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		return Pembelian{}, err
	}
	s.record(ctx, "pembelian.update", updated.ID, nil)
	return updated, nil
}

// Delete reverses the create sequence: ledger rows are removed, the stock
// counter drops and each funding company gets its capital back. Deletion
// is blocked while an active sale references the unit.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		p, err := tx.GetPembelianForUpdate(ctx, id)
		if err != nil {
			return err
		}
		active, err := tx.CountActiveSales(ctx, id)
		if err != nil {
			return err
		}
		if active > 0 {
			return ErrReferenced
		}
		if err := tx.DeleteLedgerByPembelian(ctx, id); err != nil {
			return err
		}
		if err := tx.DeletePembelian(ctx, id); err != nil {
			return err
		}
		if err := tx.DecrementQty(ctx, p.JenisMotorID); err != nil {
			return err
		}
		for _, f := range p.FundingSplits() {
			if err := tx.AdjustModal(ctx, f.CompanyID, f.Amount); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.record(ctx, "pembelian.delete", id, nil)
	return nil
}

// ReviseInput describes one cost revision (QC, tax or other costs).
// Component amounts are signed; their sum is the revision delta.
type ReviseInput struct {
	Tanggal    time.Time
	CompanyID  int64
	BiayaPajak int64
	BiayaQC    int64
	BiayaLain  int64
	Reason     string
}

// Delta returns the total cost change.
func (in ReviseInput) Delta() int64 {
	return in.BiayaPajak + in.BiayaQC + in.BiayaLain
}

// ReviseCost appends an immutable price history row, moves harga final by
// the delta and cascades the delta into a dependent sale's cost basis and
// profit. A positive delta debits the ledger and consumes capital on the
// responsible company. A negative delta only moves prices: capital
// restoration is intentionally not performed on this path, matching the
// historical behavior of the cost-revision flow.
func (s *Service) ReviseCost(ctx context.Context, pembelianID int64, input ReviseInput) (Pembelian, error) {
	if input.Reason == "" {
		return Pembelian{}, ErrReasonRequired
	}
	if input.CompanyID <= 0 {
		return Pembelian{}, errors.New("pembelian: responsible company required")
	}
	delta := input.Delta()
	if delta == 0 {
		return Pembelian{}, ErrZeroDelta
	}
	tanggal := input.Tanggal
	if tanggal.IsZero() {
		tanggal = s.now()
	}

	var revised Pembelian
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		p, err := tx.GetPembelianForUpdate(ctx, pembelianID)
		if err != nil {
			return err
		}
		company, err := tx.GetCompany(ctx, input.CompanyID)
		if err != nil {
			return err
		}
		newFinal := p.HargaFinal + delta
		if newFinal < 0 {
			return ErrNegativeFinal
		}
		history := PriceHistory{
			PembelianID: pembelianID,
			CompanyID:   input.CompanyID,
			HargaLama:   p.HargaFinal,
			HargaBaru:   newFinal,
			BiayaPajak:  input.BiayaPajak,
			BiayaQC:     input.BiayaQC,
			BiayaLain:   input.BiayaLain,
			Reason:      input.Reason,
			Tanggal:     tanggal,
		}
		if err := tx.InsertPriceHistory(ctx, history); err != nil {
			return err
		}
		if err := tx.UpdateHargaFinal(ctx, pembelianID, newFinal); err != nil {
			return err
		}
		if delta > 0 {
			entry := pembukuan.Entry{
				Tanggal:     tanggal,
				Divisi:      company.Divisi,
				Cabang:      p.Cabang,
				CompanyID:   input.CompanyID,
				PembelianID: &pembelianID,
				Debit:       delta,
				Keterangan:  fmt.Sprintf("Biaya %s unit %s - %s", input.Reason, p.Plat, shared.FormatRupiah(delta)),
			}
			if err := tx.InsertLedgerEntry(ctx, entry); err != nil {
				return err
			}
			if err := tx.AdjustModal(ctx, input.CompanyID, -delta); err != nil {
				return err
			}
		}
		sale, ok, err := tx.GetDependentSale(ctx, pembelianID)
		if err != nil {
			return err
		}
		if ok {
			if err := tx.UpdateSaleCost(ctx, sale.ID, sale.HargaBeli+delta, sale.Keuntungan-delta); err != nil {
				return err
			}
		}
		p.HargaFinal = newFinal
		revised = p
		return nil
	})
	if err != nil {
		return Pembelian{}, err
	}
	s.record(ctx, "pembelian.revise", pembelianID, map[string]any{"delta": delta, "reason": input.Reason})
	return revised, nil
}

// Get returns one purchase.
func (s *Service) Get(ctx context.Context, id int64) (Pembelian, error) {
	if id <= 0 {
		return Pembelian{}, errors.New("pembelian: invalid id")
	}
	return s.repo.Get(ctx, id)
}

// List returns purchases matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Pembelian, int, error) {
	return s.repo.List(ctx, filter)
}

// PriceHistories returns the revision trail of one purchase.
func (s *Service) PriceHistories(ctx context.Context, pembelianID int64) ([]PriceHistory, error) {
	return s.repo.ListPriceHistories(ctx, pembelianID)
}

func (s *Service) record(ctx context.Context, action string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Action:   action,
		Entity:   "pembelian",
		EntityID: fmt.Sprintf("%d", id),
		Meta:     meta,
		At:       s.now(),
	})
}
