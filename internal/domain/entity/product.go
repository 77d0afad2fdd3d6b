package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU de una sucursal.
// La cantidad actual NO vive aquí: el valor autoritativo es la suma con signo
// de los movimientos de stock; la tabla stock es una proyección recomputable.
type Product struct {
	ID           string
	BranchID     string
	SKU          string // código único por sucursal
	Barcode      string
	Name         string
	Description  string
	Price        decimal.Decimal // precio de venta unitario
	Cost         decimal.Decimal // costo unitario
	ReorderLevel int64           // umbral por defecto de la alerta de stock bajo
	ExpiryDate   *time.Time      // opcional
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
