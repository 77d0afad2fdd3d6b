package entity

import "time"

// Branch representa una sucursal o punto de venta. Es la raíz del agregado:
// productos, ventas, movimientos de stock y asientos contables le pertenecen.
type Branch struct {
	ID        string
	Name      string
	Location  string
	Phone     string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
