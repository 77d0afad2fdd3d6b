package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/retailm/retailm-api/internal/domain"
	"github.com/retailm/retailm-api/internal/domain/entity"
	"github.com/retailm/retailm-api/internal/domain/repository"
)

var _ repository.BranchRepository = (*BranchRepo)(nil)

// BranchRepo implementación de BranchRepository sobre PostgreSQL (usable con pool o tx).
type BranchRepo struct {
	q Querier
}

// NewBranchRepository construye el adaptador de sucursales. Pasar pool o tx (Querier).
func NewBranchRepository(q Querier) *BranchRepo {
	return &BranchRepo{q: q}
}

const branchColumns = `id, name, location, phone, email, created_at, updated_at`

// Create persiste una sucursal.
func (r *BranchRepo) Create(branch *entity.Branch) error {
	if branch.ID == "" {
		branch.ID = uuid.New().String()
	}
	query := `
		INSERT INTO branches (` + branchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		branch.ID, branch.Name, branch.Location, branch.Phone, branch.Email,
		branch.CreatedAt, branch.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create branch: %w", err)
	}
	return nil
}

// GetByID obtiene una sucursal por ID. Devuelve nil si no existe.
func (r *BranchRepo) GetByID(id string) (*entity.Branch, error) {
	query := `SELECT ` + branchColumns + ` FROM branches WHERE id = $1`
	var b entity.Branch
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&b.ID, &b.Name, &b.Location, &b.Phone, &b.Email, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get branch: %w", err)
	}
	return &b, nil
}

// Update actualiza los datos de una sucursal.
func (r *BranchRepo) Update(branch *entity.Branch) error {
	query := `
		UPDATE branches SET name = $2, location = $3, phone = $4, email = $5, updated_at = $6
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		branch.ID, branch.Name, branch.Location, branch.Phone, branch.Email, branch.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update branch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina una sucursal. Falla con ErrConflict si tiene registros dependientes.
func (r *BranchRepo) Delete(id string) error {
	tag, err := r.q.Exec(context.Background(), `DELETE FROM branches WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete branch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista sucursales ordenadas por nombre.
func (r *BranchRepo) List(limit, offset int) ([]*entity.Branch, error) {
	query := `SELECT ` + branchColumns + ` FROM branches ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	defer rows.Close()
	var list []*entity.Branch
	for rows.Next() {
		var b entity.Branch
		if err := rows.Scan(&b.ID, &b.Name, &b.Location, &b.Phone, &b.Email, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan branch: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}

// HasDependents indica si la sucursal tiene productos, ventas, movimientos o asientos.
func (r *BranchRepo) HasDependents(id string) (bool, error) {
	query := `
		SELECT EXISTS(SELECT 1 FROM products WHERE branch_id = $1)
		    OR EXISTS(SELECT 1 FROM sales WHERE branch_id = $1)
		    OR EXISTS(SELECT 1 FROM stock_movements WHERE branch_id = $1)
		    OR EXISTS(SELECT 1 FROM ledger_entries WHERE branch_id = $1)`
	var has bool
	if err := r.q.QueryRow(context.Background(), query, id).Scan(&has); err != nil {
		return false, fmt.Errorf("branch has dependents: %w", err)
	}
	return has, nil
}
