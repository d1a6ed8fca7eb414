package pembukuan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/garasi-erp/garasi-erp/internal/shared"
)

// PostingInput describes one ledger row to append.
type PostingInput struct {
	Tanggal     time.Time
	Divisi      string
	Cabang      string
	CompanyID   int64
	PembelianID *int64
	Debit       int64
	Kredit      int64
	Keterangan  string
}

// Validate rejects rows that could not be interpreted by bookkeeping.
func (in PostingInput) Validate() error {
	if in.Tanggal.IsZero() {
		return errors.New("pembukuan: tanggal required")
	}
	if in.CompanyID <= 0 {
		return errors.New("pembukuan: company required")
	}
	if in.Debit < 0 || in.Kredit < 0 {
		return errors.New("pembukuan: amounts must not be negative")
	}
	if in.Debit == 0 && in.Kredit == 0 {
		return errors.New("pembukuan: debit or kredit required")
	}
	if in.Debit > 0 && in.Kredit > 0 {
		return errors.New("pembukuan: entry cannot be both debit and kredit")
	}
	return nil
}

// AuditPort records audit trail entries, best effort.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service owns standalone ledger operations. Lifecycle routines in the
// pembelian/penjualan/birojasa packages write their ledger rows inside
// their own transactions; this service covers manual postings and
// listings.
type Service struct {
	repo  Repository
	audit AuditPort
	now   func() time.Time
}

func NewService(repo Repository, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

// Post appends one ledger row. Never reads prior state.
func (s *Service) Post(ctx context.Context, input PostingInput) (Entry, error) {
	if err := input.Validate(); err != nil {
		return Entry{}, err
	}
	entry, err := s.repo.Insert(ctx, Entry{
		Tanggal:     input.Tanggal,
		Divisi:      input.Divisi,
		Cabang:      input.Cabang,
		CompanyID:   input.CompanyID,
		PembelianID: input.PembelianID,
		Debit:       input.Debit,
		Kredit:      input.Kredit,
		Keterangan:  input.Keterangan,
	})
	if err != nil {
		return Entry{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			Action:   "pembukuan.post",
			Entity:   "pembukuan",
			EntityID: fmt.Sprintf("%d", entry.ID),
			Meta: map[string]any{
				"company_id": entry.CompanyID,
				"debit":      entry.Debit,
				"kredit":     entry.Kredit,
			},
			At: s.now(),
		})
	}
	return entry, nil
}

// List returns ledger entries matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Entry, int, error) {
	return s.repo.List(ctx, filter)
}
