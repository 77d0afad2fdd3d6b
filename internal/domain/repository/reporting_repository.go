package repository

import (
	"time"

	"github.com/shopspring/decimal"
)

// LowStockRow es una fila de la alerta de stock bajo: un producto cuya
// cantidad proyectada está en o por debajo del umbral.
type LowStockRow struct {
	ProductID    string
	SKU          string
	Name         string
	Quantity     int64
	ReorderLevel int64
}

// SalesTotalsRow agrega ventas completadas en un rango.
type SalesTotalsRow struct {
	Count int64
	Total decimal.Decimal
}

// DailySalesRow agrega el total vendido por día.
type DailySalesRow struct {
	Day   time.Time
	Total decimal.Decimal
}

// ReportingRepository define el puerto de solo lectura para reportes.
// Consume únicamente proyecciones y filas confirmadas; nunca muta estado.
type ReportingRepository interface {
	// LowStock lista productos con cantidad <= threshold. Si threshold < 0 se
	// usa el reorder_level propio de cada producto.
	LowStock(branchID string, threshold int64) ([]*LowStockRow, error)
	SalesTotals(branchID string, from, to time.Time) (*SalesTotalsRow, error)
	DailySales(branchID string, days int) ([]*DailySalesRow, error)
}
