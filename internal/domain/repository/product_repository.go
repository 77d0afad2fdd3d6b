package repository

import (
	"github.com/shopspring/decimal"

	"github.com/retailm/retailm-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para productos.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	GetBySKU(branchID, sku string) (*entity.Product, error)
	Update(product *entity.Product) error
	// UpdateCost actualiza solo el costo (promedio ponderado tras un restock).
	UpdateCost(id string, cost decimal.Decimal) error
	ListByBranch(branchID string, limit, offset int) ([]*entity.Product, error)
}
