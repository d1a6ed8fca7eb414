package penjualan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/garasi-erp/garasi-erp/internal/pembelian"
	"github.com/garasi-erp/garasi-erp/internal/pembukuan"
	"github.com/garasi-erp/garasi-erp/internal/shared"
)

// AuditPort records audit trail entries, best effort.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service orchestrates sale lifecycle routines. Each routine runs its
// full write sequence (sale row, purchase status, stock counter, capital,
// ledger, price history) inside one transaction.
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

// CreateInput describes a new sale.
type CreateInput struct {
	Tanggal          time.Time
	PembelianID      int64
	CompanyID        int64
	HargaJual        int64
	MetodePembayaran PaymentMethod
	DP               int64
	SubsidiOngkir    int64
	TitipOngkir      int64
}

func (in CreateInput) Validate() error {
	if in.Tanggal.IsZero() {
		return errors.New("penjualan: tanggal required")
	}
	if in.PembelianID <= 0 {
		return errors.New("penjualan: pembelian required")
	}
	if in.CompanyID <= 0 {
		return errors.New("penjualan: company required")
	}
	if in.HargaJual <= 0 {
		return errors.New("penjualan: harga jual must be positive")
	}
	if !in.MetodePembayaran.Valid() {
		return errors.New("penjualan: unknown payment method")
	}
	if in.DP < 0 || in.SubsidiOngkir < 0 || in.TitipOngkir < 0 {
		return errors.New("penjualan: amounts must be non-negative")
	}
	return nil
}

// financials derives the amounts a sale's current field values imply:
// what is paid now, what remains, what status that means and how much
// cash actually enters the books at this point.
type financials struct {
	status Status
	sisa   int64
	cashIn int64
}

func deriveFinancials(method PaymentMethod, hargaJual, dp, subsidi, titip int64) financials {
	if method == PayCashFull {
		return financials{status: StatusSelesai, sisa: 0, cashIn: hargaJual}
	}
	sisa := hargaJual - dp
	status := StatusBooked
	if sisa <= 0 {
		status = StatusSelesai
		sisa = 0
	}
	return financials{status: status, sisa: sisa, cashIn: dp + subsidi + titip}
}

// Create books or completes a sale of one ready unit. Cost basis is the
// purchase's harga_final; profit is harga_jual minus cost basis. Cash
// received now is posted as a kredit ledger row and added to the selling
// company's capital.
func (s *Service) Create(ctx context.Context, input CreateInput) (Sale, error) {
	if err := input.Validate(); err != nil {
		return Sale{}, err
	}
	var created Sale
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		purchase, err := tx.GetPurchaseForUpdate(ctx, input.PembelianID)
		if err != nil {
			return err
		}
		company, err := tx.GetCompany(ctx, input.CompanyID)
		if err != nil {
			return err
		}
		// only a ready unit can be sold; booked means another sale holds it
		if pembelian.Status(purchase.Status) != pembelian.StatusReady {
			return ErrUnitUnavailable
		}
		fin := deriveFinancials(input.MetodePembayaran, input.HargaJual, input.DP, input.SubsidiOngkir, input.TitipOngkir)
		target := pembelian.StatusBooked
		if fin.status == StatusSelesai {
			target = pembelian.StatusSold
		}

		cost := purchase.CostBasis()
		sale := Sale{
			Tanggal:          input.Tanggal,
			PembelianID:      input.PembelianID,
			CompanyID:        input.CompanyID,
			HargaJual:        input.HargaJual,
			HargaBeli:        cost,
			MetodePembayaran: input.MetodePembayaran,
			DP:               input.DP,
			SisaBayar:        fin.sisa,
			SubsidiOngkir:    input.SubsidiOngkir,
			TitipOngkir:      input.TitipOngkir,
			Keuntungan:       input.HargaJual - cost,
			Status:           fin.status,
		}
		inserted, err := tx.InsertSale(ctx, sale)
		if err != nil {
			return err
		}
		if err := tx.DecrementQty(ctx, purchase.JenisMotorID); err != nil {
			return err
		}
		if err := tx.UpdatePurchaseStatus(ctx, purchase.ID, string(target)); err != nil {
			return err
		}
		if fin.cashIn > 0 {
			if err := s.postSaleCash(ctx, tx, inserted, purchase, company, fin.cashIn); err != nil {
				return err
			}
		}
		created = inserted
		return nil
	})
	if err != nil {
		return Sale{}, err
	}
	s.record(ctx, "penjualan.create", created.ID, map[string]any{"harga_jual": created.HargaJual})
	return created, nil
}

// Edit reworks a non-terminal sale. Prior ledger rows and capital for the
// old state are reversed, then the new state is posted as if created
// fresh. A unit swap with a standing down payment releases the old unit
// and reserves the new one.
func (s *Service) Edit(ctx context.Context, id int64, input CreateInput) (Sale, error) {
	if err := input.Validate(); err != nil {
		return Sale{}, err
	}
	var updated Sale
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		sale, err := tx.GetSaleForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if sale.Status.Terminal() {
			return ErrNotEditable
		}

		oldFin := deriveFinancials(sale.MetodePembayaran, sale.HargaJual, sale.DP, sale.SubsidiOngkir, sale.TitipOngkir)
		if err := tx.DeleteLedgerByPembelianAndCompany(ctx, sale.PembelianID, sale.CompanyID); err != nil {
			return err
		}
		if oldFin.cashIn > 0 {
			if err := tx.AdjustModal(ctx, sale.CompanyID, -oldFin.cashIn); err != nil {
				return err
			}
		}

		fin := deriveFinancials(input.MetodePembayaran, input.HargaJual, input.DP, input.SubsidiOngkir, input.TitipOngkir)
		target := pembelian.StatusBooked
		if fin.status == StatusSelesai {
			target = pembelian.StatusSold
		}

		unitChanged := input.PembelianID != sale.PembelianID
		// the swap fires on the DP already held by the sale, not the new input
		swapUnits := unitChanged && sale.DP > 0
		if swapUnits {
			oldPurchase, err := tx.GetPurchaseForUpdate(ctx, sale.PembelianID)
			if err != nil {
				return err
			}
			if err := tx.IncrementQty(ctx, oldPurchase.JenisMotorID); err != nil {
				return err
			}
			if err := tx.UpdatePurchaseStatus(ctx, oldPurchase.ID, string(pembelian.StatusReady)); err != nil {
				return err
			}
		}
		purchase, err := tx.GetPurchaseForUpdate(ctx, input.PembelianID)
		if err != nil {
			return err
		}
		if swapUnits {
			if pembelian.Status(purchase.Status) != pembelian.StatusReady {
				return ErrUnitUnavailable
			}
			if err := tx.DecrementQty(ctx, purchase.JenisMotorID); err != nil {
				return err
			}
			if err := tx.UpdatePurchaseStatus(ctx, purchase.ID, string(target)); err != nil {
				return err
			}
		} else if !unitChanged && string(target) != purchase.Status {
			if !pembelian.Status(purchase.Status).CanTransitionTo(target) {
				return pembelian.ErrIllegalTransition
			}
			if err := tx.UpdatePurchaseStatus(ctx, purchase.ID, string(target)); err != nil {
				return err
			}
		}

		company, err := tx.GetCompany(ctx, input.CompanyID)
		if err != nil {
			return err
		}
		cost := purchase.CostBasis()
		sale.Tanggal = input.Tanggal
		sale.PembelianID = input.PembelianID
		sale.CompanyID = input.CompanyID
		sale.HargaJual = input.HargaJual
		sale.HargaBeli = cost
		sale.MetodePembayaran = input.MetodePembayaran
		sale.DP = input.DP
		sale.SisaBayar = fin.sisa
		sale.SubsidiOngkir = input.SubsidiOngkir
		sale.TitipOngkir = input.TitipOngkir
		sale.Keuntungan = input.HargaJual - cost
		sale.Status = fin.status
		sale.StatusLabel = fin.status.Label()

		if err := tx.UpdateSale(ctx, sale); err != nil {
			return err
		}
		if fin.cashIn > 0 {
			if err := s.postSaleCash(ctx, tx, sale, purchase, company, fin.cashIn); err != nil {
				return err
			}
		}
		updated = sale
		return nil
	})
	if err != nil {
		return Sale{}, err
	}
	s.record(ctx, "penjualan.edit", updated.ID, nil)
	return updated, nil
}

// Delete removes a sale, returning its cost basis to the selling
// company's capital and taking the booked profit back out. The unit goes
// back on the floor unless the sale was already cancelled.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		sale, err := tx.GetSaleForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.AdjustModal(ctx, sale.CompanyID, sale.HargaBeli); err != nil {
			return err
		}
		if err := tx.AdjustModal(ctx, sale.CompanyID, -sale.Keuntungan); err != nil {
			return err
		}
		if err := tx.DeleteLedgerByPembelianAndCompany(ctx, sale.PembelianID, sale.CompanyID); err != nil {
			return err
		}
		if sale.Status != StatusCancelled {
			purchase, err := tx.GetPurchaseForUpdate(ctx, sale.PembelianID)
			if err != nil {
				return err
			}
			if err := tx.IncrementQty(ctx, purchase.JenisMotorID); err != nil {
				return err
			}
			if err := tx.UpdatePurchaseStatus(ctx, purchase.ID, string(pembelian.StatusReady)); err != nil {
				return err
			}
		}
		return tx.DeleteSale(ctx, id)
	})
	if err != nil {
		return err
	}
	s.record(ctx, "penjualan.delete", id, nil)
	return nil
}

// CancelInput selects the down-payment policy for a cancellation.
type CancelInput struct {
	Policy  CancelPolicy
	Refund  int64
	Tanggal time.Time
}

// CancelDP cancels a sale holding a down payment. The unit is released
// either way. Under full_forfeit the house keeps the whole DP with no
// ledger or capital movement; under partial_refund exactly one debit row
// is posted and capital drops by the refund. The forfeited remainder is
// not tracked.
func (s *Service) CancelDP(ctx context.Context, id int64, input CancelInput) (Sale, error) {
	if input.Policy != CancelFullForfeit && input.Policy != CancelPartialRefund {
		return Sale{}, ErrInvalidPolicy
	}
	tanggal := input.Tanggal
	if tanggal.IsZero() {
		tanggal = s.now()
	}
	var cancelled Sale
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		sale, err := tx.GetSaleForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !sale.Status.CanTransitionTo(StatusCancelled) {
			return ErrIllegalTransition
		}
		if input.Policy == CancelPartialRefund {
			if input.Refund <= 0 || input.Refund > sale.DP {
				return ErrRefundExceedsDP
			}
			purchase, err := tx.GetPurchaseForUpdate(ctx, sale.PembelianID)
			if err != nil {
				return err
			}
			company, err := tx.GetCompany(ctx, sale.CompanyID)
			if err != nil {
				return err
			}
			entry := pembukuan.Entry{
				Tanggal:     tanggal,
				Divisi:      company.Divisi,
				Cabang:      purchase.Cabang,
				CompanyID:   sale.CompanyID,
				PembelianID: &sale.PembelianID,
				Debit:       input.Refund,
				Keterangan:  fmt.Sprintf("Refund DP pembatalan unit %s - %s", purchase.Plat, shared.FormatRupiah(input.Refund)),
			}
			if err := tx.InsertLedgerEntry(ctx, entry); err != nil {
				return err
			}
			if err := tx.AdjustModal(ctx, sale.CompanyID, -input.Refund); err != nil {
				return err
			}
		}

		purchase, err := tx.GetPurchaseForUpdate(ctx, sale.PembelianID)
		if err != nil {
			return err
		}
		if err := tx.IncrementQty(ctx, purchase.JenisMotorID); err != nil {
			return err
		}
		if err := tx.UpdatePurchaseStatus(ctx, purchase.ID, string(pembelian.StatusReady)); err != nil {
			return err
		}

		sale.Status = StatusCancelled
		sale.StatusLabel = StatusCancelled.Label()
		sale.DP = 0
		sale.SisaBayar = 0
		if err := tx.UpdateSale(ctx, sale); err != nil {
			return err
		}
		cancelled = sale
		return nil
	})
	if err != nil {
		return Sale{}, err
	}
	s.record(ctx, "penjualan.cancel_dp", id, map[string]any{"policy": string(input.Policy), "refund": input.Refund})
	return cancelled, nil
}

// AdjustInput describes a sold-unit price adjustment.
type AdjustInput struct {
	Jenis   AdjustmentKind
	Amount  int64
	Reason  string
	Tanggal time.Time
}

// AdjustSoldPrice moves a completed sale's cost basis after the fact.
// An increase debits the ledger and consumes capital; a decrease credits
// the ledger and restores capital, capped at 80% of the current cost
// basis so the basis can never go negative. Both directions append an
// immutable price history row and recompute profit.
func (s *Service) AdjustSoldPrice(ctx context.Context, id int64, input AdjustInput) (Sale, error) {
	if input.Jenis != AdjustTambah && input.Jenis != AdjustKurang {
		return Sale{}, errors.New("penjualan: unknown adjustment kind")
	}
	if input.Amount <= 0 {
		return Sale{}, errors.New("penjualan: adjustment amount must be positive")
	}
	if input.Reason == "" {
		return Sale{}, errors.New("penjualan: adjustment reason required")
	}
	tanggal := input.Tanggal
	if tanggal.IsZero() {
		tanggal = s.now()
	}
	var adjusted Sale
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		sale, err := tx.GetSaleForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if sale.Status != StatusSelesai {
			return ErrAdjustNotAllowed
		}
		purchase, err := tx.GetPurchaseForUpdate(ctx, sale.PembelianID)
		if err != nil {
			return err
		}
		company, err := tx.GetCompany(ctx, sale.CompanyID)
		if err != nil {
			return err
		}

		oldCost := sale.HargaBeli
		entry := pembukuan.Entry{
			Tanggal:     tanggal,
			Divisi:      company.Divisi,
			Cabang:      purchase.Cabang,
			CompanyID:   sale.CompanyID,
			PembelianID: &sale.PembelianID,
		}
		switch input.Jenis {
		case AdjustTambah:
			sale.HargaBeli = oldCost + input.Amount
			sale.Keuntungan -= input.Amount
			entry.Debit = input.Amount
			entry.Keterangan = fmt.Sprintf("Penyesuaian tambah unit %s - %s", purchase.Plat, shared.FormatRupiah(input.Amount))
			if err := tx.InsertLedgerEntry(ctx, entry); err != nil {
				return err
			}
			if err := tx.AdjustModal(ctx, sale.CompanyID, -input.Amount); err != nil {
				return err
			}
		case AdjustKurang:
			if input.Amount > oldCost*80/100 {
				return ErrDecreaseExceedsCap
			}
			sale.HargaBeli = oldCost - input.Amount
			sale.Keuntungan += input.Amount
			entry.Kredit = input.Amount
			entry.Keterangan = fmt.Sprintf("Penyesuaian kurang unit %s - %s", purchase.Plat, shared.FormatRupiah(input.Amount))
			if err := tx.InsertLedgerEntry(ctx, entry); err != nil {
				return err
			}
			if err := tx.AdjustModal(ctx, sale.CompanyID, input.Amount); err != nil {
				return err
			}
		}

		history := PriceHistory{
			PenjualanID: sale.ID,
			CompanyID:   sale.CompanyID,
			HargaLama:   oldCost,
			HargaBaru:   sale.HargaBeli,
			Jenis:       input.Jenis,
			Reason:      input.Reason,
			Tanggal:     tanggal,
		}
		if err := tx.InsertPriceHistory(ctx, history); err != nil {
			return err
		}
		if err := tx.UpdateSale(ctx, sale); err != nil {
			return err
		}
		adjusted = sale
		return nil
	})
	if err != nil {
		return Sale{}, err
	}
	s.record(ctx, "penjualan.adjust_price", id, map[string]any{"jenis": string(input.Jenis), "amount": input.Amount})
	return adjusted, nil
}

// Get returns one sale.
func (s *Service) Get(ctx context.Context, id int64) (Sale, error) {
	if id <= 0 {
		return Sale{}, errors.New("penjualan: invalid id")
	}
	return s.repo.Get(ctx, id)
}

// List returns sales matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Sale, int, error) {
	return s.repo.List(ctx, filter)
}

// PriceHistories returns the adjustment trail of one sale.
func (s *Service) PriceHistories(ctx context.Context, id int64) ([]PriceHistory, error) {
	return s.repo.ListPriceHistories(ctx, id)
}

func (s *Service) postSaleCash(ctx context.Context, tx TxRepository, sale Sale, purchase PurchaseRef, company CompanyRef, cashIn int64) error {
	entry := pembukuan.Entry{
		Tanggal:     sale.Tanggal,
		Divisi:      company.Divisi,
		Cabang:      purchase.Cabang,
		CompanyID:   sale.CompanyID,
		PembelianID: &sale.PembelianID,
		Kredit:      cashIn,
		Keterangan:  fmt.Sprintf("Penjualan unit %s - %s", purchase.Plat, shared.FormatRupiah(cashIn)),
	}
	if err := tx.InsertLedgerEntry(ctx, entry); err != nil {
		return err
	}
	return tx.AdjustModal(ctx, sale.CompanyID, cashIn)
}

func (s *Service) record(ctx context.Context, action string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Action:   action,
		Entity:   "penjualan",
		EntityID: fmt.Sprintf("%d", id),
		Meta:     meta,
		At:       s.now(),
	})
}
