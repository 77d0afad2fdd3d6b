package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/retailm/retailm-api/internal/domain/entity"
	"github.com/retailm/retailm-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene la proyección de stock de un producto en una sucursal.
// Si no hay fila aún, devuelve cantidad cero (historial vacío).
func (r *StockRepo) Get(productID, branchID string) (*entity.Stock, error) {
	query := `
		SELECT product_id, branch_id, quantity, updated_at
		FROM stock WHERE product_id = $1 AND branch_id = $2`
	var s entity.Stock
	err := r.q.QueryRow(context.Background(), query, productID, branchID).Scan(
		&s.ProductID, &s.BranchID, &s.Quantity, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.Stock{ProductID: productID, BranchID: branchID, Quantity: 0}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

// Upsert inserta o actualiza la cantidad proyectada (por producto y sucursal).
func (r *StockRepo) Upsert(stock *entity.Stock) error {
	query := `
		INSERT INTO stock (product_id, branch_id, quantity, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (product_id, branch_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`
	_, err := r.q.Exec(context.Background(), query, stock.ProductID, stock.BranchID, stock.Quantity)
	if err != nil {
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}

// GetForUpdate obtiene la proyección y bloquea la fila (SELECT FOR UPDATE).
// Si no hay fila aún, la crea en cero y la bloquea, para que la secuencia
// verificar-luego-escribir siempre tenga una fila que serializar.
func (r *StockRepo) GetForUpdate(productID, branchID string) (*entity.Stock, error) {
	insert := `
		INSERT INTO stock (product_id, branch_id, quantity, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (product_id, branch_id) DO NOTHING`
	if _, err := r.q.Exec(context.Background(), insert, productID, branchID); err != nil {
		return nil, fmt.Errorf("ensure stock row: %w", err)
	}
	query := `
		SELECT product_id, branch_id, quantity, updated_at
		FROM stock WHERE product_id = $1 AND branch_id = $2
		FOR UPDATE`
	var s entity.Stock
	err := r.q.QueryRow(context.Background(), query, productID, branchID).Scan(
		&s.ProductID, &s.BranchID, &s.Quantity, &s.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return &s, nil
}
