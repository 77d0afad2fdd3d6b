package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleLineRequest línea de una venta. UnitPrice opcional: si es nil se usa el
// precio de lista del producto.
type SaleLineRequest struct {
	ProductID string           `json:"product_id" validate:"required,uuid4"`
	Quantity  int64            `json:"quantity" validate:"required,min=1"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// CreateSaleRequest body para POST /api/sales.
// IdempotencyKey es obligatoria: permite reintentar tras un fallo ambiguo
// (timeout) sin riesgo de doble cobro.
type CreateSaleRequest struct {
	BranchID       string            `json:"branch_id" validate:"required,uuid4"`
	Lines          []SaleLineRequest `json:"lines" validate:"required,min=1,dive"`
	PaymentMethod  string            `json:"payment_method" validate:"required"`
	CustomerName   string            `json:"customer_name,omitempty"`
	CustomerPhone  string            `json:"customer_phone,omitempty"`
	Notes          string            `json:"notes,omitempty"`
	IdempotencyKey string            `json:"idempotency_key" validate:"required,min=8,max=128"`
}

// SaleLineResponse línea en la respuesta.
type SaleLineResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
}

// SaleResponse respuesta de creación/consulta de venta.
type SaleResponse struct {
	ID            string             `json:"id"`
	BranchID      string             `json:"branch_id"`
	InvoiceNo     string             `json:"invoice_no"`
	CustomerName  string             `json:"customer_name,omitempty"`
	PaymentMethod string             `json:"payment_method"`
	Total         decimal.Decimal    `json:"total"`
	Status        string             `json:"status"`
	CreatedAt     time.Time          `json:"created_at"`
	VoidedAt      *time.Time         `json:"voided_at,omitempty"`
	Lines         []SaleLineResponse `json:"lines"`
	// Replayed indica que la venta ya existía para la clave de idempotencia
	// recibida y se devolvió sin volver a aplicarla.
	Replayed bool `json:"replayed,omitempty"`
}
