package penjualan

import (
	"errors"
	"time"
)

// PaymentMethod enumerates how a sale is paid.
type PaymentMethod string

const (
	PayCashFull      PaymentMethod = "cash_penuh"
	PayCashInstalled PaymentMethod = "cash_bertahap"
	PayCredit        PaymentMethod = "kredit"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PayCashFull, PayCashInstalled, PayCredit:
		return true
	}
	return false
}

// Sale is a vehicle disposal record. HargaBeli is the cost basis copied
// from the purchase's harga_final at creation; Keuntungan is always
// HargaJual minus HargaBeli.
type Sale struct {
	ID               int64         `json:"id"`
	Tanggal          time.Time     `json:"tanggal"`
	PembelianID      int64         `json:"pembelian_id"`
	CompanyID        int64         `json:"company_id"`
	HargaJual        int64         `json:"harga_jual"`
	HargaBeli        int64         `json:"harga_beli"`
	MetodePembayaran PaymentMethod `json:"metode_pembayaran"`
	DP               int64         `json:"dp"`
	SisaBayar        int64         `json:"sisa_bayar"`
	SubsidiOngkir    int64         `json:"subsidi_ongkir"`
	TitipOngkir      int64         `json:"titip_ongkir"`
	Keuntungan       int64         `json:"keuntungan"`
	Status           Status        `json:"status"`
	StatusLabel      string        `json:"status_label"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// AdjustmentKind tells which direction a sold-unit price adjustment moves.
type AdjustmentKind string

const (
	AdjustTambah AdjustmentKind = "tambah"
	AdjustKurang AdjustmentKind = "kurang"
)

// PriceHistory is an immutable record of one sold-unit price adjustment.
type PriceHistory struct {
	ID          int64          `json:"id"`
	PenjualanID int64          `json:"penjualan_id"`
	CompanyID   int64          `json:"company_id"`
	HargaLama   int64          `json:"harga_lama"`
	HargaBaru   int64          `json:"harga_baru"`
	Jenis       AdjustmentKind `json:"jenis"`
	Reason      string         `json:"reason"`
	Tanggal     time.Time      `json:"tanggal"`
	CreatedAt   time.Time      `json:"created_at"`
}

// PurchaseRef is the slice of a pembelian row the sale lifecycle needs.
type PurchaseRef struct {
	ID           int64
	JenisMotorID int64
	Cabang       string
	Plat         string
	HargaBeli    int64
	HargaFinal   int64
	Status       string
}

// CostBasis picks harga_final, falling back to harga_beli for rows
// predating the revision flow.
func (p PurchaseRef) CostBasis() int64 {
	if p.HargaFinal > 0 {
		return p.HargaFinal
	}
	return p.HargaBeli
}

// CompanyRef is the slice of a companies row used for ledger postings.
type CompanyRef struct {
	ID     int64
	Name   string
	Divisi string
}

// CancelPolicy selects how a down payment is handled on cancellation.
type CancelPolicy string

const (
	// CancelFullForfeit keeps the whole DP with no ledger or capital movement.
	CancelFullForfeit CancelPolicy = "full_forfeit"
	// CancelPartialRefund returns part of the DP to the customer.
	CancelPartialRefund CancelPolicy = "partial_refund"
)

// ListFilter narrows sale listings.
type ListFilter struct {
	Status      Status
	CompanyID   int64
	PembelianID int64
	From        time.Time
	To          time.Time
	Page        int
	Limit       int
}

var (
	// ErrNotFound indicates a missing penjualan row.
	ErrNotFound = errors.New("penjualan: not found")
	// ErrUnitUnavailable rejects selling a unit that is not ready.
	ErrUnitUnavailable = errors.New("penjualan: unit is not available for sale")
	// ErrNotEditable rejects edits on terminal sales.
	ErrNotEditable = errors.New("penjualan: sale is no longer editable")
	// ErrIllegalTransition rejects a status move outside the transition table.
	ErrIllegalTransition = errors.New("penjualan: illegal status transition")
	// ErrAdjustNotAllowed restricts price adjustment to completed sales.
	ErrAdjustNotAllowed = errors.New("penjualan: price adjustment requires a completed sale")
	// ErrDecreaseExceedsCap caps a decrease at 80% of the current cost basis.
	ErrDecreaseExceedsCap = errors.New("penjualan: decrease exceeds 80% of cost basis")
	// ErrRefundExceedsDP rejects refunding more than was paid down.
	ErrRefundExceedsDP = errors.New("penjualan: refund exceeds down payment")
	// ErrInvalidPolicy rejects an unknown cancellation policy.
	ErrInvalidPolicy = errors.New("penjualan: unknown cancellation policy")
)
