package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/retailm/retailm-api/internal/domain/entity"
)

// LedgerRepository define el puerto del libro contable por sucursal.
// Escritor append-only: no hay update ni delete.
type LedgerRepository interface {
	Create(entry *entity.LedgerEntry) error
	GetByID(id string) (*entity.LedgerEntry, error)
	ListByBranch(branchID string, from, to *time.Time, limit, offset int) ([]*entity.LedgerEntry, error)
	// BalanceByBranch devuelve la suma de montos con timestamp <= at.
	BalanceByBranch(branchID string, at time.Time) (decimal.Decimal, error)
	// GetBySale devuelve los asientos originados por una venta (venta + reverso).
	GetBySale(saleID string) ([]*entity.LedgerEntry, error)
}
