package penjualan

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

// Repository encapsulates DB operations for sales.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Sale, int, error)
	Get(ctx context.Context, id int64) (Sale, error)
	ListPriceHistories(ctx context.Context, penjualanID int64) ([]PriceHistory, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the operations a sale lifecycle routine needs
// within a single transaction. Purchase, company, stock and ledger
// writes are duplicated here from their home modules so the whole
// sequence commits atomically.
type TxRepository interface {
	InsertSale(ctx context.Context, s Sale) (Sale, error)
	GetSaleForUpdate(ctx context.Context, id int64) (Sale, error)
	UpdateSale(ctx context.Context, s Sale) error
	DeleteSale(ctx context.Context, id int64) error

	GetPurchaseForUpdate(ctx context.Context, id int64) (PurchaseRef, error)
	UpdatePurchaseStatus(ctx context.Context, id int64, status string) error

	GetCompany(ctx context.Context, id int64) (CompanyRef, error)
	AdjustModal(ctx context.Context, companyID, amount int64) error

	IncrementQty(ctx context.Context, jenisMotorID int64) error
	DecrementQty(ctx context.Context, jenisMotorID int64) error

	InsertLedgerEntry(ctx context.Context, entry pembukuan.Entry) error
	DeleteLedgerByPembelianAndCompany(ctx context.Context, pembelianID, companyID int64) error

	InsertPriceHistory(ctx context.Context, h PriceHistory) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const saleColumns = `id, tanggal, pembelian_id, company_id, harga_jual, harga_beli, metode_pembayaran, dp, sisa_bayar, subsidi_ongkir, titip_ongkir, keuntungan, status, created_at, updated_at`

func scanSale(row pgx.Row) (Sale, error) {
	var s Sale
	var status, metode string
	err := row.Scan(&s.ID, &s.Tanggal, &s.PembelianID, &s.CompanyID, &s.HargaJual, &s.HargaBeli,
		&metode, &s.DP, &s.SisaBayar, &s.SubsidiOngkir, &s.TitipOngkir, &s.Keuntungan,
		&status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return Sale{}, err
	}
	s.MetodePembayaran = PaymentMethod(metode)
	s.Status = Status(status)
	s.StatusLabel = s.Status.Label()
	return s, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Sale, int, error) {
	query := `SELECT ` + saleColumns + ` FROM penjualans WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM penjualans WHERE 1=1`
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
	if filter.CompanyID != 0 {
		addFilter("company_id = ", filter.CompanyID)
	}
	if filter.PembelianID != 0 {
		addFilter("pembelian_id = ", filter.PembelianID)
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

	var out []Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Sale, error) {
	s, err := scanSale(r.pool.QueryRow(ctx, `SELECT `+saleColumns+` FROM penjualans WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Sale{}, ErrNotFound
		}
		return Sale{}, err
	}
	return s, nil
}

func (r *repository) ListPriceHistories(ctx context.Context, penjualanID int64) ([]PriceHistory, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, penjualan_id, company_id, harga_lama, harga_baru, jenis, reason, tanggal, created_at
FROM price_histories WHERE penjualan_id=$1 ORDER BY id ASC`, penjualanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var histories []PriceHistory
	for rows.Next() {
		var h PriceHistory
		var jenis string
		if err := rows.Scan(&h.ID, &h.PenjualanID, &h.CompanyID, &h.HargaLama, &h.HargaBaru,
			&jenis, &h.Reason, &h.Tanggal, &h.CreatedAt); err != nil {
			return nil, err
		}
		h.Jenis = AdjustmentKind(jenis)
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

func (r *txRepository) InsertSale(ctx context.Context, s Sale) (Sale, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO penjualans (tanggal, pembelian_id, company_id, harga_jual, harga_beli, metode_pembayaran, dp, sisa_bayar, subsidi_ongkir, titip_ongkir, keuntungan, status)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12) RETURNING id, created_at, updated_at`,
		s.Tanggal, s.PembelianID, s.CompanyID, s.HargaJual, s.HargaBeli, string(s.MetodePembayaran),
		s.DP, s.SisaBayar, s.SubsidiOngkir, s.TitipOngkir, s.Keuntungan, string(s.Status))
	if err := row.Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return Sale{}, err
	}
	s.StatusLabel = s.Status.Label()
	return s, nil
}

func (r *txRepository) GetSaleForUpdate(ctx context.Context, id int64) (Sale, error) {
	s, err := scanSale(r.tx.QueryRow(ctx, `SELECT `+saleColumns+` FROM penjualans WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Sale{}, ErrNotFound
		}
		return Sale{}, err
	}
	return s, nil
}

func (r *txRepository) UpdateSale(ctx context.Context, s Sale) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE penjualans SET tanggal=$2, pembelian_id=$3, company_id=$4, harga_jual=$5, harga_beli=$6, metode_pembayaran=$7, dp=$8, sisa_bayar=$9, subsidi_ongkir=$10, titip_ongkir=$11, keuntungan=$12, status=$13, updated_at=NOW() WHERE id=$1`,
		s.ID, s.Tanggal, s.PembelianID, s.CompanyID, s.HargaJual, s.HargaBeli, string(s.MetodePembayaran),
		s.DP, s.SisaBayar, s.SubsidiOngkir, s.TitipOngkir, s.Keuntungan, string(s.Status))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *txRepository) DeleteSale(ctx context.Context, id int64) error {
	cmd, err := r.tx.Exec(ctx, `DELETE FROM penjualans WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *txRepository) GetPurchaseForUpdate(ctx context.Context, id int64) (PurchaseRef, error) {
	var p PurchaseRef
	err := r.tx.QueryRow(ctx, `SELECT id, jenis_motor_id, cabang, plat, harga_beli, harga_final, status FROM pembelian WHERE id=$1 FOR UPDATE`, id).
		Scan(&p.ID, &p.JenisMotorID, &p.Cabang, &p.Plat, &p.HargaBeli, &p.HargaFinal, &p.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PurchaseRef{}, ErrNotFound
		}
		return PurchaseRef{}, err
	}
	return p, nil
}

func (r *txRepository) UpdatePurchaseStatus(ctx context.Context, id int64, status string) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE pembelian SET status=$2, updated_at=NOW() WHERE id=$1`, id, status)
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

func (r *txRepository) DeleteLedgerByPembelianAndCompany(ctx context.Context, pembelianID, companyID int64) error {
	_, err := r.tx.Exec(ctx, `DELETE FROM pembukuan WHERE pembelian_id=$1 AND company_id=$2`, pembelianID, companyID)
	return err
}

func (r *txRepository) InsertPriceHistory(ctx context.Context, h PriceHistory) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO price_histories (penjualan_id, company_id, harga_lama, harga_baru, jenis, reason, tanggal)
VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		h.PenjualanID, h.CompanyID, h.HargaLama, h.HargaBaru, string(h.Jenis), h.Reason, h.Tanggal)
	return err
}
