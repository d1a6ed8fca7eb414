package birojasa

import (
	"errors"
	"time"
)

// Case is a document-processing job (STNK renewal, ownership transfer
// and the like). Vehicle identity is free text, deliberately not keyed
// to purchase or sale rows. Keuntungan is always EstimasiBiaya minus
// BiayaModal.
type Case struct {
	ID              int64     `json:"id"`
	Tanggal         time.Time `json:"tanggal"`
	JenisPengurusan string    `json:"jenis_pengurusan"`
	NamaCustomer    string    `json:"nama_customer"`
	Plat            string    `json:"plat"`
	Merk            string    `json:"merk"`
	Tahun           int       `json:"tahun"`
	Warna           string    `json:"warna"`
	CompanyID       int64     `json:"company_id"`
	EstimasiBiaya   int64     `json:"estimasi_biaya"`
	DP              int64     `json:"dp"`
	Sisa            int64     `json:"sisa"`
	DPModal         int64     `json:"dp_modal"`
	TotalBayar      int64     `json:"total_bayar"`
	BiayaModal      int64     `json:"biaya_modal"`
	Keuntungan      int64     `json:"keuntungan"`
	Status          Status    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Cicilan is one incremental customer payment on a case.
type Cicilan struct {
	ID         int64     `json:"id"`
	BiroJasaID int64     `json:"biro_jasa_id"`
	Tanggal    time.Time `json:"tanggal"`
	Jumlah     int64     `json:"jumlah"`
	Keterangan string    `json:"keterangan"`
	CreatedAt  time.Time `json:"created_at"`
}

// CompanyRef is the slice of a companies row used for ledger postings.
type CompanyRef struct {
	ID     int64
	Name   string
	Divisi string
}

// ListFilter narrows case listings.
type ListFilter struct {
	Status Status
	Search string
	Page   int
	Limit  int
}

var (
	// ErrNotFound indicates a missing biro jasa row.
	ErrNotFound = errors.New("birojasa: not found")
	// ErrCaseClosed rejects payments on completed or cancelled cases.
	ErrCaseClosed = errors.New("birojasa: case is no longer open")
	// ErrIllegalTransition rejects a status move outside the transition table.
	ErrIllegalTransition = errors.New("birojasa: illegal status transition")
	// ErrDPExceedsEstimate rejects a customer DP above the estimated cost.
	ErrDPExceedsEstimate = errors.New("birojasa: down payment exceeds estimated cost")
)
