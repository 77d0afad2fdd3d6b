package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/retailm/retailm-api/internal/domain/entity"
	"github.com/retailm/retailm-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación del log de movimientos sobre PostgreSQL
// (usable con pool o tx). Append-only: solo INSERT y SELECT.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `id, product_id, branch_id, direction, quantity, reason, sale_id, vendor_id, reference, note, created_by, created_at`

// Create persiste un movimiento de stock.
func (r *StockMovementRepo) Create(movement *entity.StockMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.ProductID, movement.BranchID, movement.Direction,
		movement.Quantity, movement.Reason, nullIfEmpty(movement.SaleID),
		nullIfEmpty(movement.VendorID), movement.Reference, movement.Note,
		nullIfEmpty(movement.CreatedBy), movement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID. Devuelve nil si no existe.
func (r *StockMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// ListByProduct lista movimientos de un producto en un rango de fechas.
func (r *StockMovementRepo) ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	return r.list("product_id", productID, from, to, limit, offset)
}

// ListByBranch lista movimientos de una sucursal en un rango de fechas.
func (r *StockMovementRepo) ListByBranch(branchID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	return r.list("branch_id", branchID, from, to, limit, offset)
}

func (r *StockMovementRepo) list(column, value string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE ` + column + ` = $1`
	args := []any{value}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// ListBySale devuelve los movimientos originados por una venta, en orden de creación.
func (r *StockMovementRepo) ListBySale(saleID string) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE sale_id = $1 ORDER BY created_at ASC`
	rows, err := r.q.Query(context.Background(), query, saleID)
	if err != nil {
		return nil, fmt.Errorf("list movements by sale: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// SumByProduct devuelve la suma con signo del historial completo del producto
// en la sucursal: el valor autoritativo de su cantidad actual.
func (r *StockMovementRepo) SumByProduct(productID, branchID string) (int64, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN direction = 'out' THEN -quantity ELSE quantity END), 0)
		FROM stock_movements WHERE product_id = $1 AND branch_id = $2`
	var sum int64
	err := r.q.QueryRow(context.Background(), query, productID, branchID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum movements: %w", err)
	}
	return sum, nil
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var saleID, vendorID, createdBy *string
	if err := row.Scan(&m.ID, &m.ProductID, &m.BranchID, &m.Direction, &m.Quantity,
		&m.Reason, &saleID, &vendorID, &m.Reference, &m.Note, &createdBy, &m.CreatedAt); err != nil {
		return nil, err
	}
	if saleID != nil {
		m.SaleID = *saleID
	}
	if vendorID != nil {
		m.VendorID = *vendorID
	}
	if createdBy != nil {
		m.CreatedBy = *createdBy
	}
	return &m, nil
}

// nullIfEmpty convierte "" a NULL para columnas con FK opcional.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
