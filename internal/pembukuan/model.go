package pembukuan

import "time"

// Entry is one bookkeeping row. Kredit records cash received by the
// business, Debit records cash disbursed or a cost incurred. Entries are
// append-mostly: lifecycle routines delete and re-insert them when the
// originating transaction is edited or removed.
type Entry struct {
	ID          int64     `json:"id"`
	Tanggal     time.Time `json:"tanggal"`
	Divisi      string    `json:"divisi"`
	Cabang      string    `json:"cabang"`
	CompanyID   int64     `json:"company_id"`
	PembelianID *int64    `json:"pembelian_id,omitempty"`
	Debit       int64     `json:"debit"`
	Kredit      int64     `json:"kredit"`
	Keterangan  string    `json:"keterangan"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListFilter narrows ledger listings.
type ListFilter struct {
	Divisi    string
	Cabang    string
	CompanyID int64
	From      time.Time
	To        time.Time
	Page      int
	Limit     int
}
