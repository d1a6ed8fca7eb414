package jenismotor

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
	List(ctx context.Context, filters shared.ListFilters) ([]JenisMotor, int, error)
	Get(ctx context.Context, id int64) (JenisMotor, error)
	Create(ctx context.Context, jm JenisMotor) (JenisMotor, error)
	Update(ctx context.Context, id int64, jm JenisMotor) error
	Delete(ctx context.Context, id int64) error
	IncrementQty(ctx context.Context, id int64) error
	DecrementQty(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]JenisMotor, int, error) {
	filters.Normalize()

	query := `SELECT id, brand, name, qty, created_at, updated_at FROM jenis_motor WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	countQuery := `SELECT COUNT(*) FROM jenis_motor WHERE 1=1`
	countArgs := []interface{}{}

	if filters.Search != "" {
		argCount++
		query += ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR brand ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filters.Search+"%")
		countQuery += ` AND (name ILIKE $1 OR brand ILIKE $1)`
		countArgs = append(countArgs, "%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY brand ASC, name ASC`
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

	var out []JenisMotor
	for rows.Next() {
		var jm JenisMotor
		if err := rows.Scan(&jm.ID, &jm.Brand, &jm.Name, &jm.Qty, &jm.CreatedAt, &jm.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, jm)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (JenisMotor, error) {
	var jm JenisMotor
	err := r.pool.QueryRow(ctx, `SELECT id, brand, name, qty, created_at, updated_at FROM jenis_motor WHERE id=$1`, id).
		Scan(&jm.ID, &jm.Brand, &jm.Name, &jm.Qty, &jm.CreatedAt, &jm.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return JenisMotor{}, internalShared.ErrJenisMotorNotFound
		}
		return JenisMotor{}, err
	}
	return jm, nil
}

func (r *repository) Create(ctx context.Context, jm JenisMotor) (JenisMotor, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO jenis_motor (brand, name, qty) VALUES ($1,$2,$3) RETURNING id, created_at, updated_at`,
		jm.Brand, jm.Name, jm.Qty)
	if err := row.Scan(&jm.ID, &jm.CreatedAt, &jm.UpdatedAt); err != nil {
		return JenisMotor{}, err
	}
	return jm, nil
}

// Update never writes the qty column; stock only moves through the
// increment/decrement operations.
func (r *repository) Update(ctx context.Context, id int64, jm JenisMotor) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE jenis_motor SET brand=$2, name=$3, updated_at=NOW() WHERE id=$1`,
		id, jm.Brand, jm.Name)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return internalShared.ErrJenisMotorNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM jenis_motor WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return internalShared.ErrJenisMotorNotFound
	}
	return nil
}

// IncrementQty bumps the stock counter at the store.
func (r *repository) IncrementQty(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE jenis_motor SET qty = qty + 1, updated_at=NOW() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return internalShared.ErrJenisMotorNotFound
	}
	return nil
}

// DecrementQty lowers the stock counter at the store.
func (r *repository) DecrementQty(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE jenis_motor SET qty = qty - 1, updated_at=NOW() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return internalShared.ErrJenisMotorNotFound
	}
	return nil
}
