package pembelian

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/garasi-erp/garasi-erp/internal/pembukuan"
	"github.com/garasi-erp/garasi-erp/internal/platform/db"
	"github.com/garasi-erp/garasi-erp/internal/shared"
)

// Repository encapsulates DB operations for purchases.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Pembelian, int, error)
	Get(ctx context.Context, id int64) (Pembelian, error)
	ListPriceHistories(ctx context.Context, pembelianID int64) ([]PriceHistory, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the operations a lifecycle routine needs within a
// single transaction. Company, stock and ledger writes are duplicated
// here from their home modules so the whole sequence commits atomically.
type TxRepository interface {
	InsertPembelian(ctx context.Context, p Pembelian) (Pembelian, error)
	GetPembelianForUpdate(ctx context.Context, id int64) (Pembelian, error)
	UpdatePembelian(ctx context.Context, p Pembelian) error
	UpdateHargaFinal(ctx context.Context, id int64, hargaFinal int64) error
	DeletePembelian(ctx context.Context, id int64) error

	GetCompany(ctx context.Context, id int64) (CompanyRef, error)
	AdjustModal(ctx context.Context, companyID, amount int64) error

	IncrementQty(ctx context.Context, jenisMotorID int64) error
	DecrementQty(ctx context.Context, jenisMotorID int64) error

	InsertLedgerEntry(ctx context.Context, entry pembukuan.Entry) error
	DeleteLedgerByPembelian(ctx context.Context, pembelianID int64) error

	InsertPriceHistory(ctx context.Context, h PriceHistory) error

	GetDependentSale(ctx context.Context, pembelianID int64) (DependentSale, bool, error)
	UpdateSaleCost(ctx context.Context, saleID, hargaBeli, keuntungan int64) error
	CountActiveSales(ctx context.Context, pembelianID int64) (int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const pembelianColumns = `id, tanggal, cabang, jenis_motor_id, tahun, warna, plat, harga_beli, harga_final, company_id, harga_company1, company2_id, harga_company2, status, created_at, updated_at`

func scanPembelian(row pgx.Row) (Pembelian, error) {
	var p Pembelian
	var status string
	err := row.Scan(&p.ID, &p.Tanggal, &p.Cabang, &p.JenisMotorID, &p.Tahun, &p.Warna, &p.Plat,
		&p.HargaBeli, &p.HargaFinal, &p.CompanyID, &p.HargaCompany1, &p.Company2ID, &p.HargaCompany2,
		&status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Pembelian{}, err
	}
	p.Status = Status(status)
	return p, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Pembelian, int, error) {
	query := `SELECT ` + pembelianColumns + ` FROM pembelian WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM pembelian WHERE 1=1`
	args := []interface{}{}
	countArgs := []interface{}{}

	addFilter := func(clause string, value interface{}) {
		args = append(args, value)
		query += ` AND ` + clause + `$` + strconv.Itoa(len(args))
		countArgs = append(countArgs, value)
		countQuery += ` AND ` + clause + `$` + strconv.Itoa(len(countArgs))
	}

	if filter.Cabang != "" {
		addFilter("cabang = ", filter.Cabang)
	}
	if filter.Status != "" {
		addFilter("status = ", string(filter.Status))
	}
	if filter.JenisMotorID != 0 {
		addFilter("jenis_motor_id = ", filter.JenisMotorID)
	}
	if filter.Search != "" {
		addFilter("plat ILIKE ", "%"+filter.Search+"%")
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

	var out []Pembelian
	for rows.Next() {
		p, err := scanPembelian(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Pembelian, error) {
	p, err := scanPembelian(r.pool.QueryRow(ctx, `SELECT `+pembelianColumns+` FROM pembelian WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Pembelian{}, ErrNotFound
		}
		return Pembelian{}, err
	}
	return p, nil
}

func (r *repository) ListPriceHistories(ctx context.Context, pembelianID int64) ([]PriceHistory, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, pembelian_id, company_id, harga_lama, harga_baru, biaya_pajak, biaya_qc, biaya_lain, reason, tanggal, created_at
FROM price_histories_pembelian WHERE pembelian_id=$1 ORDER BY id ASC`, pembelianID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var histories []PriceHistory
	for rows.Next() {
		var h PriceHistory
		if err := rows.Scan(&h.ID, &h.PembelianID, &h.CompanyID, &h.HargaLama, &h.HargaBaru,
			&h.BiayaPajak, &h.BiayaQC, &h.BiayaLain, &h.Reason, &h.Tanggal, &h.CreatedAt); err != nil {
			return nil, err
		}
		histories = append(histories, h)
	}
	return histories, rows.Err()
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) InsertPembelian(ctx context.Context, p Pembelian) (Pembelian, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO pembelian (tanggal, cabang, jenis_motor_id, tahun, warna, plat, harga_beli, harga_final, company_id, harga_company1, company2_id, harga_company2, status)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13) RETURNING id, created_at, updated_at`,
		p.Tanggal, p.Cabang, p.JenisMotorID, p.Tahun, p.Warna, p.Plat, p.HargaBeli, p.HargaFinal,
		p.CompanyID, p.HargaCompany1, p.Company2ID, p.HargaCompany2, string(p.Status))
	if err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Pembelian{}, err
	}
	return p, nil
}

func (r *txRepository) GetPembelianForUpdate(ctx context.Context, id int64) (Pembelian, error) {
	p, err := scanPembelian(r.tx.QueryRow(ctx, `SELECT `+pembelianColumns+` FROM pembelian WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Pembelian{}, ErrNotFound
		}
		return Pembelian{}, err
	}
	return p, nil
}

func (r *txRepository) UpdatePembelian(ctx context.Context, p Pembelian) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE pembelian SET tanggal=$2, cabang=$3, jenis_motor_id=$4, tahun=$5, warna=$6, plat=$7, harga_beli=$8, harga_final=$9, company_id=$10, harga_company1=$11, company2_id=$12, harga_company2=$13, status=$14, updated_at=NOW() WHERE id=$1`,
		p.ID, p.Tanggal, p.Cabang, p.JenisMotorID, p.Tahun, p.Warna, p.Plat, p.HargaBeli, p.HargaFinal,
		p.CompanyID, p.HargaCompany1, p.Company2ID, p.HargaCompany2, string(p.Status))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *txRepository) UpdateHargaFinal(ctx context.Context, id int64, hargaFinal int64) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE pembelian SET harga_final=$2, updated_at=NOW() WHERE id=$1`, id, hargaFinal)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *txRepository) DeletePembelian(ctx context.Context, id int64) error {
	cmd, err := r.tx.Exec(ctx, `DELETE FROM pembelian WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *txRepository) GetCompany(ctx context.Context, id int64) (CompanyRef, error) {
	var c CompanyRef
	err := r.tx.QueryRow(ctx, `SELECT id, name, divisi FROM companies WHERE id=$1`, id).
		Scan(&c.ID, &c.Name, &c.Divisi)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CompanyRef{}, shared.ErrCompanyNotFound
		}
		return CompanyRef{}, err
	}
	return c, nil
}

func (r *txRepository) AdjustModal(ctx context.Context, companyID, amount int64) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE companies SET modal = modal + $2, updated_at=NOW() WHERE id=$1`, companyID, amount)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrCompanyNotFound
	}
	return nil
}

func (r *txRepository) IncrementQty(ctx context.Context, jenisMotorID int64) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE jenis_motor SET qty = qty + 1, updated_at=NOW() WHERE id=$1`, jenisMotorID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrJenisMotorNotFound
	}
	return nil
}

func (r *txRepository) DecrementQty(ctx context.Context, jenisMotorID int64) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE jenis_motor SET qty = qty - 1, updated_at=NOW() WHERE id=$1`, jenisMotorID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrJenisMotorNotFound
	}
	return nil
}

func (r *txRepository) InsertLedgerEntry(ctx context.Context, entry pembukuan.Entry) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO pembukuan (tanggal, divisi, cabang, company_id, pembelian_id, debit, kredit, keterangan)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		entry.Tanggal, entry.Divisi, entry.Cabang, entry.CompanyID, entry.PembelianID, entry.Debit, entry.Kredit, entry.Keterangan)
	return err
}

func (r *txRepository) DeleteLedgerByPembelian(ctx context.Context, pembelianID int64) error {
	_, err := r.tx.Exec(ctx, `DELETE FROM pembukuan WHERE pembelian_id=$1`, pembelianID)
	return err
}

func (r *txRepository) InsertPriceHistory(ctx context.Context, h PriceHistory) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO price_histories_pembelian (pembelian_id, company_id, harga_lama, harga_baru, biaya_pajak, biaya_qc, biaya_lain, reason, tanggal)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		h.PembelianID, h.CompanyID, h.HargaLama, h.HargaBaru, h.BiayaPajak, h.BiayaQC, h.BiayaLain, h.Reason, h.Tanggal)
	return err
}

func (r *txRepository) GetDependentSale(ctx context.Context, pembelianID int64) (DependentSale, bool, error) {
	var s DependentSale
	err := r.tx.QueryRow(ctx, `SELECT id, harga_beli, keuntungan, status FROM penjualans WHERE pembelian_id=$1 AND status <> 'cancelled_dp_hangus' ORDER BY id DESC LIMIT 1`, pembelianID).
		Scan(&s.ID, &s.HargaBeli, &s.Keuntungan, &s.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return DependentSale{}, false, nil
		}
		return DependentSale{}, false, err
	}
	return s, true, nil
}

func (r *txRepository) UpdateSaleCost(ctx context.Context, saleID, hargaBeli, keuntungan int64) error {
	_, err := r.tx.Exec(ctx, `UPDATE penjualans SET harga_beli=$2, keuntungan=$3, updated_at=NOW() WHERE id=$1`, saleID, hargaBeli, keuntungan)
	return err
}

func (r *txRepository) CountActiveSales(ctx context.Context, pembelianID int64) (int, error) {
	var n int
	err := r.tx.QueryRow(ctx, `SELECT COUNT(*) FROM penjualans WHERE pembelian_id=$1 AND status <> 'cancelled_dp_hangus'`, pembelianID).Scan(&n)
	return n, err
}
