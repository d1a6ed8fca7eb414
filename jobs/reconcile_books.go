package jobs

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

// Drift is one reconciliation finding: a derived figure that no longer
// matches the rows it is computed from.
type Drift struct {
	Check    string
	EntityID int64
	Expected int64
	Actual   int64
}

// Reconciler cross-checks the denormalized figures the lifecycle
// routines maintain. It only reports; repairs stay a human decision.
type Reconciler struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewReconciler(pool *pgxpool.Pool, logger *slog.Logger) *Reconciler {
	return &Reconciler{pool: pool, logger: logger}
}

// Run executes all checks concurrently and logs each drift found. Every
// run carries its own id so findings across runs can be correlated.
func (r *Reconciler) Run(ctx context.Context) error {
	runID := uuid.NewString()
	g, gctx := errgroup.WithContext(ctx)
	checks := []func(context.Context) ([]Drift, error){
		r.checkPurchaseFunding,
		r.checkSaleProfit,
		r.checkStockCounters,
		r.checkBiroJasaTotals,
	}
	results := make([][]Drift, len(checks))
	for i, check := range checks {
		g.Go(func() error {
			drifts, err := check(gctx)
			if err != nil {
				return err
			}
			results[i] = drifts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	total := 0
	for _, drifts := range results {
		for _, d := range drifts {
			total++
			r.logger.Warn("book drift detected",
				slog.String("run_id", runID),
				slog.String("check", d.Check),
				slog.Int64("entity_id", d.EntityID),
				slog.Int64("expected", d.Expected),
				slog.Int64("actual", d.Actual))
		}
	}
	r.logger.Info("reconciliation finished", slog.String("run_id", runID), slog.Int("drifts", total))
	return nil
}

// checkPurchaseFunding verifies harga_company1 + harga_company2 still
// sums to harga_beli on every purchase.
func (r *Reconciler) checkPurchaseFunding(ctx context.Context) ([]Drift, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, harga_beli, harga_company1 + harga_company2
FROM pembelian WHERE harga_company1 + harga_company2 <> harga_beli`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Drift
	for rows.Next() {
		d := Drift{Check: "purchase_funding"}
		if err := rows.Scan(&d.EntityID, &d.Expected, &d.Actual); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// checkSaleProfit verifies keuntungan == harga_jual - harga_beli on
// every non-cancelled sale.
func (r *Reconciler) checkSaleProfit(ctx context.Context) ([]Drift, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, harga_jual - harga_beli, keuntungan
FROM penjualans WHERE status <> 'cancelled_dp_hangus' AND keuntungan <> harga_jual - harga_beli`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Drift
	for rows.Next() {
		d := Drift{Check: "sale_profit"}
		if err := rows.Scan(&d.EntityID, &d.Expected, &d.Actual); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// checkStockCounters verifies each type's qty equals its count of ready
// units. Booked and sold units have already been decremented.
func (r *Reconciler) checkStockCounters(ctx context.Context) ([]Drift, error) {
	rows, err := r.pool.Query(ctx, `SELECT jm.id, COUNT(p.id) FILTER (WHERE p.status = 'ready'), jm.qty
FROM jenis_motor jm
LEFT JOIN pembelian p ON p.jenis_motor_id = jm.id
GROUP BY jm.id, jm.qty
HAVING jm.qty <> COUNT(p.id) FILTER (WHERE p.status = 'ready')`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Drift
	for rows.Next() {
		d := Drift{Check: "stock_counter"}
		var expected, actual int64
		if err := rows.Scan(&d.EntityID, &expected, &actual); err != nil {
			return nil, err
		}
		d.Expected, d.Actual = expected, actual
		out = append(out, d)
	}
	return out, rows.Err()
}

// checkBiroJasaTotals verifies keuntungan == estimasi_biaya - biaya_modal
// on open and completed cases.
func (r *Reconciler) checkBiroJasaTotals(ctx context.Context) ([]Drift, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, estimasi_biaya - biaya_modal, keuntungan
FROM biro_jasa WHERE status <> 'Batal' AND keuntungan <> estimasi_biaya - biaya_modal`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Drift
	for rows.Next() {
		d := Drift{Check: "biro_jasa_profit"}
		if err := rows.Scan(&d.EntityID, &d.Expected, &d.Actual); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
