package jenismotor

import "time"

// JenisMotor is a vehicle type with a denormalized stock counter. The qty
// column only moves through IncrementQty/DecrementQty so concurrent
// lifecycle routines cannot lose updates.
type JenisMotor struct {
	ID        int64     `json:"id"`
	Brand     string    `json:"brand"`
	Name      string    `json:"name"`
	Qty       int64     `json:"qty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
