package pembelian

import (
	"errors"
	"time"
)

// Pembelian is a vehicle acquisition record. HargaFinal starts equal to
// HargaBeli and accumulates cost-revision deltas over the unit's life.
// A second funding company is optional; when present the two allocated
// amounts must sum to HargaBeli.
type Pembelian struct {
	ID            int64     `json:"id"`
	Tanggal       time.Time `json:"tanggal"`
	Cabang        string    `json:"cabang"`
	JenisMotorID  int64     `json:"jenis_motor_id"`
	Tahun         int       `json:"tahun"`
	Warna         string    `json:"warna"`
	Plat          string    `json:"plat"`
	HargaBeli     int64     `json:"harga_beli"`
	HargaFinal    int64     `json:"harga_final"`
	CompanyID     int64     `json:"company_id"`
	HargaCompany1 int64     `json:"harga_company1"`
	Company2ID    *int64    `json:"company2_id,omitempty"`
	HargaCompany2 int64     `json:"harga_company2"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// FundingSplits returns the (company, amount) pairs funding this unit.
func (p Pembelian) FundingSplits() []FundingSplit {
	splits := []FundingSplit{{CompanyID: p.CompanyID, Amount: p.HargaCompany1}}
	if p.Company2ID != nil {
		splits = append(splits, FundingSplit{CompanyID: *p.Company2ID, Amount: p.HargaCompany2})
	}
	return splits
}

// FundingSplit allocates part of the base price to one company.
type FundingSplit struct {
	CompanyID int64
	Amount    int64
}

// PriceHistory is an immutable record of one cost revision. Rows are never
// mutated or deleted in normal flow.
type PriceHistory struct {
	ID          int64     `json:"id"`
	PembelianID int64     `json:"pembelian_id"`
	CompanyID   int64     `json:"company_id"`
	HargaLama   int64     `json:"harga_lama"`
	HargaBaru   int64     `json:"harga_baru"`
	BiayaPajak  int64     `json:"biaya_pajak"`
	BiayaQC     int64     `json:"biaya_qc"`
	BiayaLain   int64     `json:"biaya_lain"`
	Reason      string    `json:"reason"`
	Tanggal     time.Time `json:"tanggal"`
	CreatedAt   time.Time `json:"created_at"`
}

// DependentSale is the slice of a penjualans row this package needs when
// cascading revisions or blocking deletes.
type DependentSale struct {
	ID         int64
	HargaBeli  int64
	Keuntungan int64
	Status     string
}

// CompanyRef is the slice of a companies row used for funding lookups.
type CompanyRef struct {
	ID     int64
	Name   string
	Divisi string
}

// ListFilter narrows purchase listings.
type ListFilter struct {
	Cabang       string
	Status       Status
	JenisMotorID int64
	Search       string
	Page         int
	Limit        int
}

var (
	// ErrNotFound indicates a missing pembelian row.
	ErrNotFound = errors.New("pembelian: not found")
	// ErrFundingMismatch indicates funding amounts do not sum to the base price.
	ErrFundingMismatch = errors.New("pembelian: funding amounts must equal harga beli")
	// ErrReferenced blocks deletion while an active sale references the unit.
	ErrReferenced = errors.New("pembelian: unit is referenced by an active sale")
	// ErrReasonRequired rejects revisions without a reason.
	ErrReasonRequired = errors.New("pembelian: revision reason required")
	// ErrZeroDelta rejects revisions that change nothing.
	ErrZeroDelta = errors.New("pembelian: revision delta is zero")
	// ErrNegativeFinal guards harga final from going below zero.
	ErrNegativeFinal = errors.New("pembelian: harga final would become negative")
	// ErrIllegalTransition rejects a status move outside the transition table.
	ErrIllegalTransition = errors.New("pembelian: illegal status transition")
)
