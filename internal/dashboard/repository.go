package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository aggregates the summary figures.
type Repository interface {
	Summary(ctx context.Context, monthStart, monthEnd time.Time) (Summary, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Summary(ctx context.Context, monthStart, monthEnd time.Time) (Summary, error) {
	var s Summary

	if err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(modal), 0) FROM companies`).Scan(&s.TotalModal); err != nil {
		return Summary{}, err
	}
	if err := r.pool.QueryRow(ctx, `SELECT
COUNT(*) FILTER (WHERE status = 'ready'),
COUNT(*) FILTER (WHERE status = 'booked'),
COUNT(*) FILTER (WHERE status = 'sold')
FROM pembelian`).Scan(&s.UnitsReady, &s.UnitsBooked, &s.UnitsSold); err != nil {
		return Summary{}, err
	}
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*), COALESCE(SUM(harga_jual), 0), COALESCE(SUM(keuntungan), 0)
FROM penjualans WHERE status <> 'cancelled_dp_hangus' AND tanggal >= $1 AND tanggal < $2`,
		monthStart, monthEnd).Scan(&s.SalesCount, &s.SalesRevenue, &s.SalesProfit); err != nil {
		return Summary{}, err
	}
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM biro_jasa WHERE status = 'Dalam Proses'`).Scan(&s.BiroJasaOpen); err != nil {
		return Summary{}, err
	}
	if err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(debit), 0), COALESCE(SUM(kredit), 0)
FROM pembukuan WHERE tanggal >= $1 AND tanggal < $2`, monthStart, monthEnd).Scan(&s.LedgerDebit, &s.LedgerKredit); err != nil {
		return Summary{}, err
	}
	return s, nil
}
