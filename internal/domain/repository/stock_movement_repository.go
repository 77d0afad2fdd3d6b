package repository

import (
	"time"

	"github.com/retailm/retailm-api/internal/domain/entity"
)

// StockMovementRepository define el puerto del log de movimientos de stock.
// Escritor append-only: no hay update ni delete.
type StockMovementRepository interface {
	Create(movement *entity.StockMovement) error
	GetByID(id string) (*entity.StockMovement, error)
	ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
	ListByBranch(branchID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
	// ListBySale devuelve los movimientos originados por una venta (para compensarla al anular).
	ListBySale(saleID string) ([]*entity.StockMovement, error)
	// SumByProduct devuelve la suma con signo del historial completo de un
	// producto en una sucursal: el valor autoritativo de su cantidad.
	SumByProduct(productID, branchID string) (int64, error)
}
