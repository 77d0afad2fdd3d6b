package entity

import "time"

// Vendor representa un proveedor. Entidad independiente: se referencia desde
// movimientos de entrada (procedencia) sin acoplar su ciclo de vida a las ventas.
type Vendor struct {
	ID            string
	Name          string
	ContactPerson string
	Email         string
	Phone         string
	Address       string
	TaxNumber     string
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
