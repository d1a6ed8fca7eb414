package dashboard

import "time"

// Summary feeds the back-office landing cards: stock position, capital
// position and the current month's money flow.
type Summary struct {
	Month        string    `json:"month"`
	TotalModal   int64     `json:"total_modal"`
	UnitsReady   int       `json:"units_ready"`
	UnitsBooked  int       `json:"units_booked"`
	UnitsSold    int       `json:"units_sold"`
	SalesCount   int       `json:"sales_count"`
	SalesRevenue int64     `json:"sales_revenue"`
	SalesProfit  int64     `json:"sales_profit"`
	BiroJasaOpen int       `json:"biro_jasa_open"`
	LedgerDebit  int64     `json:"ledger_debit"`
	LedgerKredit int64     `json:"ledger_kredit"`
	GeneratedAt  time.Time `json:"generated_at"`
}
