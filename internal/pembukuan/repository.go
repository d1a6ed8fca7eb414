package pembukuan

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists ledger entries. Deletions tied to lifecycle
// events live on the lifecycle modules' transactional repositories.
type Repository interface {
	Insert(ctx context.Context, entry Entry) (Entry, error)
	List(ctx context.Context, filter ListFilter) ([]Entry, int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Insert(ctx context.Context, entry Entry) (Entry, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO pembukuan (tanggal, divisi, cabang, company_id, pembelian_id, debit, kredit, keterangan)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id, created_at`,
		entry.Tanggal, entry.Divisi, entry.Cabang, entry.CompanyID, entry.PembelianID, entry.Debit, entry.Kredit, entry.Keterangan)
	if err := row.Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Entry, int, error) {
	query := `SELECT id, tanggal, divisi, cabang, company_id, pembelian_id, debit, kredit, keterangan, created_at FROM pembukuan WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM pembukuan WHERE 1=1`
	args := []interface{}{}
	countArgs := []interface{}{}

	addFilter := func(clause string, value interface{}) {
		args = append(args, value)
		query += ` AND ` + clause + `$` + strconv.Itoa(len(args))
		countArgs = append(countArgs, value)
		countQuery += ` AND ` + clause + `$` + strconv.Itoa(len(countArgs))
	}

	if filter.Divisi != "" {
		addFilter("divisi = ", filter.Divisi)
	}
	if filter.Cabang != "" {
		addFilter("cabang = ", filter.Cabang)
	}
	if filter.CompanyID != 0 {
		addFilter("company_id = ", filter.CompanyID)
	}
	if !filter.From.IsZero() {
		addFilter("tanggal >= ", filter.From)
	}
	if !filter.To.IsZero() {
		addFilter("tanggal <= ", filter.To)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	query += ` ORDER BY tanggal DESC, id DESC`
	args = append(args, filter.Limit)
	query += ` LIMIT $` + strconv.Itoa(len(args))
	args = append(args, (filter.Page-1)*filter.Limit)
	query += ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Tanggal, &e.Divisi, &e.Cabang, &e.CompanyID, &e.PembelianID, &e.Debit, &e.Kredit, &e.Keterangan, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

