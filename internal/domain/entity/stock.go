package entity

import "time"

// Stock es la proyección de cantidad actual de un producto en una sucursal.
// Es un caché derivado del log de movimientos, no la fuente de verdad: se
// mantiene en la misma transacción de cada movimiento y puede recomputarse
// desde cero reproduciendo el historial.
type Stock struct {
	ProductID string
	BranchID  string
	Quantity  int64
	UpdatedAt time.Time
}
