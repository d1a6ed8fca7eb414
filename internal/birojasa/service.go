package birojasa

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

// Service orchestrates biro jasa case payments. Cases are deliberately
// independent of purchase and sale rows: no inventory or capital
// cross-checks happen against the vehicle, only the case's own money
// fields and the ledger move.
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

// CreateInput describes a new document-processing case.
type CreateInput struct {
	Tanggal         time.Time
	JenisPengurusan string
	NamaCustomer    string
	Plat            string
	Merk            string
	Tahun           int
	Warna           string
	CompanyID       int64
	EstimasiBiaya   int64
	DP              int64
}

func (in CreateInput) Validate() error {
	if in.Tanggal.IsZero() {
		return errors.New("birojasa: tanggal required")
	}
	if in.JenisPengurusan == "" {
		return errors.New("birojasa: jenis pengurusan required")
	}
	if in.NamaCustomer == "" {
		return errors.New("birojasa: nama customer required")
	}
	if in.CompanyID <= 0 {
		return errors.New("birojasa: company required")
	}
	if in.EstimasiBiaya <= 0 {
		return errors.New("birojasa: estimasi biaya must be positive")
	}
	if in.DP < 0 {
		return errors.New("birojasa: dp must be non-negative")
	}
	if in.DP > in.EstimasiBiaya {
		return ErrDPExceedsEstimate
	}
	return nil
}

// Create opens a case. A customer down payment counts toward total_bayar
// immediately and enters the books as a kredit row plus capital.
func (s *Service) Create(ctx context.Context, input CreateInput) (Case, error) {
	if err := input.Validate(); err != nil {
		return Case{}, err
	}
	var created Case
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		company, err := tx.GetCompany(ctx, input.CompanyID)
		if err != nil {
			return err
		}
		c := Case{
			Tanggal:         input.Tanggal,
			JenisPengurusan: input.JenisPengurusan,
			NamaCustomer:    input.NamaCustomer,
			Plat:            input.Plat,
			Merk:            input.Merk,
			Tahun:           input.Tahun,
			Warna:           input.Warna,
			CompanyID:       input.CompanyID,
			EstimasiBiaya:   input.EstimasiBiaya,
			DP:              input.DP,
			Sisa:            input.EstimasiBiaya - input.DP,
			TotalBayar:      input.DP,
			Keuntungan:      input.EstimasiBiaya,
			Status:          StatusInProgress,
		}
		if c.TotalBayar >= c.EstimasiBiaya {
			c.Status = StatusCompleted
		}
		inserted, err := tx.InsertCase(ctx, c)
		if err != nil {
			return err
		}
		if input.DP > 0 {
			entry := pembukuan.Entry{
				Tanggal:    input.Tanggal,
				Divisi:     company.Divisi,
				CompanyID:  input.CompanyID,
				Kredit:     input.DP,
				Keterangan: fmt.Sprintf("DP biro jasa %s a.n. %s - %s", inserted.JenisPengurusan, inserted.NamaCustomer, shared.FormatRupiah(input.DP)),
			}
			if err := tx.InsertLedgerEntry(ctx, entry); err != nil {
				return err
			}
			if err := tx.AdjustModal(ctx, input.CompanyID, input.DP); err != nil {
				return err
			}
		}
		created = inserted
		return nil
	})
	if err != nil {
		return Case{}, err
	}
	s.record(ctx, "birojasa.create", created.ID, map[string]any{"estimasi": created.EstimasiBiaya})
	return created, nil
}

// UpdateInput edits descriptive case fields. Money fields move only
// through the payment routines.
type UpdateInput struct {
	Tanggal         time.Time
	JenisPengurusan string
	NamaCustomer    string
	Plat            string
	Merk            string
	Tahun           int
	Warna           string
}

// Update edits descriptive fields on an open case.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) (Case, error) {
	if input.JenisPengurusan == "" || input.NamaCustomer == "" {
		return Case{}, errors.New("birojasa: jenis pengurusan and nama customer required")
	}
	var updated Case
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		c, err := tx.GetCaseForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if c.Status.Terminal() {
			return ErrCaseClosed
		}
		if !input.Tanggal.IsZero() {
			c.Tanggal = input.Tanggal
		}
		c.JenisPengurusan = input.JenisPengurusan
		c.NamaCustomer = input.NamaCustomer
		c.Plat = input.Plat
		c.Merk = input.Merk
		c.Tahun = input.Tahun
		c.Warna = input.Warna
		if err := tx.UpdateCase(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return Case{}, err
	}
	s.record(ctx, "birojasa.update", id, nil)
	return updated, nil
}

// PaymentInput describes one payment event on a case.
type PaymentInput struct {
	Tanggal    time.Time
	Jumlah     int64
	Keterangan string
}

// VendorDP records cash paid out to the processing vendor. The vendor
// advance raises the case's actual cost, so profit shrinks by the same
// amount; the outflow is a debit row and capital drops.
func (s *Service) VendorDP(ctx context.Context, id int64, input PaymentInput) (Case, error) {
	if input.Jumlah <= 0 {
		return Case{}, errors.New("birojasa: jumlah must be positive")
	}
	tanggal := input.Tanggal
	if tanggal.IsZero() {
		tanggal = s.now()
	}
	var updated Case
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		c, err := tx.GetCaseForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if c.Status != StatusInProgress {
			return ErrCaseClosed
		}
		company, err := tx.GetCompany(ctx, c.CompanyID)
		if err != nil {
			return err
		}
		c.DPModal += input.Jumlah
		c.BiayaModal += input.Jumlah
		c.Keuntungan = c.EstimasiBiaya - c.BiayaModal
		if err := tx.UpdateCase(ctx, c); err != nil {
			return err
		}
		entry := pembukuan.Entry{
			Tanggal:    tanggal,
			Divisi:     company.Divisi,
			CompanyID:  c.CompanyID,
			Debit:      input.Jumlah,
			Keterangan: fmt.Sprintf("DP modal biro jasa %s a.n. %s - %s", c.JenisPengurusan, c.NamaCustomer, shared.FormatRupiah(input.Jumlah)),
		}
		if err := tx.InsertLedgerEntry(ctx, entry); err != nil {
			return err
		}
		if err := tx.AdjustModal(ctx, c.CompanyID, -input.Jumlah); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return Case{}, err
	}
	s.record(ctx, "birojasa.vendor_dp", id, map[string]any{"jumlah": input.Jumlah})
	return updated, nil
}

// AddCicilan records an incremental customer payment. Cash in is a
// kredit row plus capital; when cumulative payments reach the estimated
// cost the case completes automatically.
func (s *Service) AddCicilan(ctx context.Context, id int64, input PaymentInput) (Case, error) {
	if input.Jumlah <= 0 {
		return Case{}, errors.New("birojasa: jumlah must be positive")
	}
	tanggal := input.Tanggal
	if tanggal.IsZero() {
		tanggal = s.now()
	}
	var updated Case
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		c, err := tx.GetCaseForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if c.Status != StatusInProgress {
			return ErrCaseClosed
		}
		company, err := tx.GetCompany(ctx, c.CompanyID)
		if err != nil {
			return err
		}
		if _, err := tx.InsertCicilan(ctx, Cicilan{
			BiroJasaID: c.ID,
			Tanggal:    tanggal,
			Jumlah:     input.Jumlah,
			Keterangan: input.Keterangan,
		}); err != nil {
			return err
		}
		c.TotalBayar += input.Jumlah
		c.Sisa -= input.Jumlah
		if c.Sisa < 0 {
			c.Sisa = 0
		}
		if c.TotalBayar >= c.EstimasiBiaya {
			c.Status = StatusCompleted
		}
		if err := tx.UpdateCase(ctx, c); err != nil {
			return err
		}
		entry := pembukuan.Entry{
			Tanggal:    tanggal,
			Divisi:     company.Divisi,
			CompanyID:  c.CompanyID,
			Kredit:     input.Jumlah,
			Keterangan: fmt.Sprintf("Cicilan biro jasa %s a.n. %s - %s", c.JenisPengurusan, c.NamaCustomer, shared.FormatRupiah(input.Jumlah)),
		}
		if err := tx.InsertLedgerEntry(ctx, entry); err != nil {
			return err
		}
		if err := tx.AdjustModal(ctx, c.CompanyID, input.Jumlah); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return Case{}, err
	}
	s.record(ctx, "birojasa.cicilan", id, map[string]any{"jumlah": input.Jumlah})
	return updated, nil
}

// Cancel moves an open case to Batal. Nothing is reversed.
func (s *Service) Cancel(ctx context.Context, id int64) (Case, error) {
	var cancelled Case
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		c, err := tx.GetCaseForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !c.Status.CanTransitionTo(StatusCancelled) {
			return ErrIllegalTransition
		}
		c.Status = StatusCancelled
		if err := tx.UpdateCase(ctx, c); err != nil {
			return err
		}
		cancelled = c
		return nil
	})
	if err != nil {
		return Case{}, err
	}
	s.record(ctx, "birojasa.cancel", id, nil)
	return cancelled, nil
}

// Delete removes a case and its installment rows. Ledger and capital are
// left as they are: cases carry no links the books could be unwound by.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.GetCaseForUpdate(ctx, id); err != nil {
			return err
		}
		if err := tx.DeleteCicilanByCase(ctx, id); err != nil {
			return err
		}
		return tx.DeleteCase(ctx, id)
	})
	if err != nil {
		return err
	}
	s.record(ctx, "birojasa.delete", id, nil)
	return nil
}

// Get returns one case.
func (s *Service) Get(ctx context.Context, id int64) (Case, error) {
	if id <= 0 {
		return Case{}, errors.New("birojasa: invalid id")
	}
	return s.repo.Get(ctx, id)
}

// List returns cases matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Case, int, error) {
	return s.repo.List(ctx, filter)
}

// Cicilans returns the installment trail of one case.
func (s *Service) Cicilans(ctx context.Context, id int64) ([]Cicilan, error) {
	return s.repo.ListCicilan(ctx, id)
}

func (s *Service) record(ctx context.Context, action string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Action:   action,
		Entity:   "biro_jasa",
		EntityID: fmt.Sprintf("%d", id),
		Meta:     meta,
		At:       s.now(),
	})
}
