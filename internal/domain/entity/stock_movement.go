package entity

import "time"

// Direcciones de un movimiento de stock.
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// Motivos de un movimiento de stock.
const (
	ReasonSale       = "sale"       // salida por venta
	ReasonRestock    = "restock"    // entrada desde proveedor
	ReasonAdjustment = "adjustment" // ajuste manual (conteo físico)
	ReasonCorrection = "correction" // entrada compensatoria al anular una venta
	ReasonReturn     = "return"     // devolución de cliente
	ReasonDamage     = "damage"     // baja por daño o vencimiento
)

// StockMovement representa un movimiento de inventario. Es inmutable una vez
// escrito: la cantidad de un producto en cualquier instante es la suma con
// signo de sus movimientos hasta ese instante.
type StockMovement struct {
	ID        string
	ProductID string
	BranchID  string
	Direction string // in | out
	Quantity  int64  // siempre positiva; el signo lo aporta Direction
	Reason    string
	SaleID    string // referencia a la venta origen (motivos sale y correction)
	VendorID  string // procedencia en entradas por restock
	Reference string // identificador externo libre (nro. remisión, nota, etc.)
	Note      string
	CreatedBy string
	CreatedAt time.Time
}

// SignedQuantity devuelve la cantidad con signo según la dirección.
func (m *StockMovement) SignedQuantity() int64 {
	if m.Direction == DirectionOut {
		return -m.Quantity
	}
	return m.Quantity
}
