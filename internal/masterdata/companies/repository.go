package companies

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/garasi-erp/garasi-erp/internal/masterdata/shared"
	internalShared "github.com/garasi-erp/garasi-erp/internal/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Company, int, error)
	Get(ctx context.Context, id int64) (Company, error)
	Create(ctx context.Context, company Company) (Company, error)
	Update(ctx context.Context, id int64, company Company) error
	Delete(ctx context.Context, id int64) error
	AdjustModal(ctx context.Context, id int64, amount int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Company, int, error) {
	filters.Normalize()

	query := `SELECT id, name, divisi, modal, created_at, updated_at FROM companies WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	countQuery := `SELECT COUNT(*) FROM companies WHERE 1=1`
	countArgs := []interface{}{}

	if filters.Search != "" {
		argCount++
		query += ` AND name ILIKE $` + strconv.Itoa(argCount)
		args = append(args, "%"+filters.Search+"%")
		countQuery += ` AND name ILIKE $` + strconv.Itoa(len(countArgs)+1)
		countArgs = append(countArgs, "%"+filters.Search+"%")
	}
	if filters.Divisi != "" {
		argCount++
		query += ` AND divisi = $` + strconv.Itoa(argCount)
		args = append(args, filters.Divisi)
		countQuery += ` AND divisi = $` + strconv.Itoa(len(countArgs)+1)
		countArgs = append(countArgs, filters.Divisi)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += " ORDER BY " + sortOrder(filters.SortBy, filters.SortDir)

	argCount++
	query += ` LIMIT $` + strconv.Itoa(argCount)
	args = append(args, filters.Limit)
	argCount++
	query += ` OFFSET $` + strconv.Itoa(argCount)
	args = append(args, (filters.Page-1)*filters.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Company
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Divisi, &c.Modal, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Company, error) {
	var c Company
	err := r.pool.QueryRow(ctx, `SELECT id, name, divisi, modal, created_at, updated_at FROM companies WHERE id=$1`, id).
		Scan(&c.ID, &c.Name, &c.Divisi, &c.Modal, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Company{}, internalShared.ErrCompanyNotFound
		}
		return Company{}, err
	}
	return c, nil
}

func (r *repository) Create(ctx context.Context, company Company) (Company, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO companies (name, divisi, modal) VALUES ($1,$2,$3) RETURNING id, created_at, updated_at`,
		company.Name, company.Divisi, company.Modal)
	if err := row.Scan(&company.ID, &company.CreatedAt, &company.UpdatedAt); err != nil {
		return Company{}, err
	}
	return company, nil
}

// Update never writes the modal column; the balance only moves through
// AdjustModal.
func (r *repository) Update(ctx context.Context, id int64, company Company) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE companies SET name=$2, divisi=$3, updated_at=NOW() WHERE id=$1`,
		id, company.Name, company.Divisi)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return internalShared.ErrCompanyNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM companies WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return internalShared.ErrCompanyNotFound
	}
	return nil
}

// AdjustModal adds a signed amount to the balance at the store. The
// increment form prevents lost updates under concurrent adjustments.
func (r *repository) AdjustModal(ctx context.Context, id int64, amount int64) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE companies SET modal = modal + $2, updated_at=NOW() WHERE id=$1`, id, amount)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return internalShared.ErrCompanyNotFound
	}
	return nil
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == "desc" {
		dir = "DESC"
	}
	switch sortBy {
	case "name":
		return "name " + dir
	case "modal":
		return "modal " + dir
	case "created_at":
		return "created_at " + dir
	default:
		return "name " + dir
	}
}
