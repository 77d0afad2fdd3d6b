package repository

import (
	"time"

	"github.com/retailm/retailm-api/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia para ventas.
// La cabecera solo muta su estado (completed -> voided); las líneas son inmutables.
type SaleRepository interface {
	Create(sale *entity.Sale) error
	CreateItem(item *entity.SaleItem) error
	GetByID(id string) (*entity.Sale, error)
	// GetForUpdate bloquea la cabecera para que dos anulaciones concurrentes
	// de la misma venta se serialicen.
	GetForUpdate(id string) (*entity.Sale, error)
	GetItems(saleID string) ([]*entity.SaleItem, error)
	// SetVoided marca la venta como anulada (única mutación permitida).
	SetVoided(sale *entity.Sale) error
	ListByBranch(branchID string, from, to *time.Time, limit, offset int) ([]*entity.Sale, error)
}
