package birojasa

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

// Repository encapsulates DB operations for biro jasa cases.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Case, int, error)
	Get(ctx context.Context, id int64) (Case, error)
	ListCicilan(ctx context.Context, biroJasaID int64) ([]Cicilan, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the operations a payment routine needs within a
// single transaction.
type TxRepository interface {
	InsertCase(ctx context.Context, c Case) (Case, error)
	GetCaseForUpdate(ctx context.Context, id int64) (Case, error)
	UpdateCase(ctx context.Context, c Case) error
	DeleteCase(ctx context.Context, id int64) error

	InsertCicilan(ctx context.Context, c Cicilan) (Cicilan, error)
	DeleteCicilanByCase(ctx context.Context, biroJasaID int64) error

	GetCompany(ctx context.Context, id int64) (CompanyRef, error)
	AdjustModal(ctx context.Context, companyID, amount int64) error

	InsertLedgerEntry(ctx context.Context, entry pembukuan.Entry) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const caseColumns = `id, tanggal, jenis_pengurusan, nama_customer, plat, merk, tahun, warna, company_id, estimasi_biaya, dp, sisa, dp_modal, total_bayar, biaya_modal, keuntungan, status, created_at, updated_at`

func scanCase(row pgx.Row) (Case, error) {
	var c Case
	var status string
	err := row.Scan(&c.ID, &c.Tanggal, &c.JenisPengurusan, &c.NamaCustomer, &c.Plat, &c.Merk,
		&c.Tahun, &c.Warna, &c.CompanyID, &c.EstimasiBiaya, &c.DP, &c.Sisa, &c.DPModal,
		&c.TotalBayar, &c.BiayaModal, &c.Keuntungan, &status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Case{}, err
	}
	c.Status = Status(status)
	return c, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Case, int, error) {
	query := `SELECT ` + caseColumns + ` FROM biro_jasa WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM biro_jasa WHERE 1=1`
	args := []interface{}{}
	countArgs := []interface{}{}

	addFilter := func(clause string, value interface{}) {
		args = append(args, value)
		query += ` AND ` + clause + `$` + strconv.Itoa(len(args))
		countArgs = append(countArgs, value)
		countQuery += ` AND ` + clause + `$` + strconv.Itoa(len(countArgs))
	}

	if filter.Status != "" {
		addFilter("status = ", string(filter.Status))
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern)
		n := strconv.Itoa(len(args))
		query += ` AND (nama_customer ILIKE $` + n + ` OR plat ILIKE $` + n + `)`
		countArgs = append(countArgs, pattern)
		n = strconv.Itoa(len(countArgs))
		countQuery += ` AND (nama_customer ILIKE $` + n + ` OR plat ILIKE $` + n + `)`
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

	var out []Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Case, error) {
	c, err := scanCase(r.pool.QueryRow(ctx, `SELECT `+caseColumns+` FROM biro_jasa WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Case{}, ErrNotFound
		}
		return Case{}, err
	}
	return c, nil
}

func (r *repository) ListCicilan(ctx context.Context, biroJasaID int64) ([]Cicilan, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, biro_jasa_id, tanggal, jumlah, keterangan, created_at
FROM biro_jasa_cicilan WHERE biro_jasa_id=$1 ORDER BY id ASC`, biroJasaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Cicilan
	for rows.Next() {
		var c Cicilan
		if err := rows.Scan(&c.ID, &c.BiroJasaID, &c.Tanggal, &c.Jumlah, &c.Keterangan, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) InsertCase(ctx context.Context, c Case) (Case, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO biro_jasa (tanggal, jenis_pengurusan, nama_customer, plat, merk, tahun, warna, company_id, estimasi_biaya, dp, sisa, dp_modal, total_bayar, biaya_modal, keuntungan, status)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16) RETURNING id, created_at, updated_at`,
		c.Tanggal, c.JenisPengurusan, c.NamaCustomer, c.Plat, c.Merk, c.Tahun, c.Warna, c.CompanyID,
		c.EstimasiBiaya, c.DP, c.Sisa, c.DPModal, c.TotalBayar, c.BiayaModal, c.Keuntungan, string(c.Status))
	if err := row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return Case{}, err
	}
	return c, nil
}

func (r *txRepository) GetCaseForUpdate(ctx context.Context, id int64) (Case, error) {
	c, err := scanCase(r.tx.QueryRow(ctx, `SELECT `+caseColumns+` FROM biro_jasa WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Case{}, ErrNotFound
		}
		return Case{}, err
	}
	return c, nil
}

func (r *txRepository) UpdateCase(ctx context.Context, c Case) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE biro_jasa SET tanggal=$2, jenis_pengurusan=$3, nama_customer=$4, plat=$5, merk=$6, tahun=$7, warna=$8, company_id=$9, estimasi_biaya=$10, dp=$11, sisa=$12, dp_modal=$13, total_bayar=$14, biaya_modal=$15, keuntungan=$16, status=$17, updated_at=NOW() WHERE id=$1`,
		c.ID, c.Tanggal, c.JenisPengurusan, c.NamaCustomer, c.Plat, c.Merk, c.Tahun, c.Warna, c.CompanyID,
		c.EstimasiBiaya, c.DP, c.Sisa, c.DPModal, c.TotalBayar, c.BiayaModal, c.Keuntungan, string(c.Status))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *txRepository) DeleteCase(ctx context.Context, id int64) error {
	cmd, err := r.tx.Exec(ctx, `DELETE FROM biro_jasa WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *txRepository) InsertCicilan(ctx context.Context, c Cicilan) (Cicilan, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO biro_jasa_cicilan (biro_jasa_id, tanggal, jumlah, keterangan)
VALUES ($1,$2,$3,$4) RETURNING id, created_at`, c.BiroJasaID, c.Tanggal, c.Jumlah, c.Keterangan)
	if err := row.Scan(&c.ID, &c.CreatedAt); err != nil {
		return Cicilan{}, err
	}
	return c, nil
}

func (r *txRepository) DeleteCicilanByCase(ctx context.Context, biroJasaID int64) error {
	_, err := r.tx.Exec(ctx, `DELETE FROM biro_jasa_cicilan WHERE biro_jasa_id=$1`, biroJasaID)
	return err
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

func (r *txRepository) InsertLedgerEntry(ctx context.Context, entry pembukuan.Entry) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO pembukuan (tanggal, divisi, cabang, company_id, pembelian_id, debit, kredit, keterangan)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		entry.Tanggal, entry.Divisi, entry.Cabang, entry.CompanyID, entry.PembelianID, entry.Debit, entry.Kredit, entry.Keterangan)
	return err
}
