package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una venta. Una venta nunca se borra ni se edita en sitio:
// anularla escribe movimientos compensatorios y cambia el estado a voided.
const (
	SaleStatusCompleted = "completed"
	SaleStatusVoided    = "voided"
)

// Métodos de pago aceptados.
const (
	PaymentCash     = "cash"
	PaymentCard     = "card"
	PaymentTransfer = "transfer"
	PaymentCredit   = "credit"
)

// Sale representa la cabecera de una venta.
type Sale struct {
	ID            string
	BranchID      string
	InvoiceNo     string
	CustomerName  string
	CustomerPhone string
	PaymentMethod string
	Total         decimal.Decimal // suma de los totales de línea
	Status        string          // completed | voided
	Notes         string
	CreatedBy     string
	CreatedAt     time.Time
	VoidedAt      *time.Time
	VoidedBy      string
}

// SaleItem representa una línea de venta.
type SaleItem struct {
	ID        string
	SaleID    string
	ProductID string
	Quantity  int64
	UnitPrice decimal.Decimal // precio aplicado (override o precio de lista)
	Total     decimal.Decimal // Quantity * UnitPrice
}

// ValidPaymentMethod indica si el método de pago es uno de los aceptados.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentCredit:
		return true
	}
	return false
}
