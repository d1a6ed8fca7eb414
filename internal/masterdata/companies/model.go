package companies

import "time"

// Company is a funding source / cash account. Its capital balance (modal)
// is mutated exclusively through Repository.AdjustModal; plain updates
// never touch the balance column.
type Company struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Divisi    string    `json:"divisi"`
	Modal     int64     `json:"modal"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
