package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Categorías de asientos contables.
const (
	LedgerCategorySale       = "sale"       // ingreso por venta (monto positivo)
	LedgerCategoryRefund     = "refund"     // reverso por anulación (monto negativo)
	LedgerCategoryAdjustment = "adjustment" // ajuste manual o costo de reposición
)

// LedgerEntry representa un asiento contable inmutable de una sucursal.
// El balance de la sucursal en el instante T es la suma de los montos con
// timestamp <= T; no existe un saldo mutable.
type LedgerEntry struct {
	ID          string
	BranchID    string
	Amount      decimal.Decimal // con signo: positivo ingreso, negativo egreso
	Category    string          // sale | refund | adjustment
	Description string
	SaleID      string // referencia a la venta origen, si aplica
	CreatedBy   string
	CreatedAt   time.Time
}
