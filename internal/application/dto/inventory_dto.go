package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
// Para restock: VendorID y UnitCost obligatorios. Para adjustment la cantidad
// puede ser negativa (se traduce a dirección out).
type RegisterMovementRequest struct {
	ProductID string           `json:"product_id" validate:"required,uuid4"`
	BranchID  string           `json:"branch_id" validate:"required,uuid4"`
	Reason    string           `json:"reason" validate:"required,oneof=restock adjustment return damage"`
	Quantity  int64            `json:"quantity" validate:"required"`
	VendorID  string           `json:"vendor_id,omitempty" validate:"omitempty,uuid4"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
	Reference string           `json:"reference,omitempty"`
	Note      string           `json:"note,omitempty"`
}

// MovementResponse movimiento en respuestas de listado.
type MovementResponse struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	BranchID  string    `json:"branch_id"`
	Direction string    `json:"direction"`
	Quantity  int64     `json:"quantity"`
	Reason    string    `json:"reason"`
	SaleID    string    `json:"sale_id,omitempty"`
	VendorID  string    `json:"vendor_id,omitempty"`
	Reference string    `json:"reference,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RebuildProjectionRequest body para POST /api/inventory/rebuild.
type RebuildProjectionRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	BranchID  string `json:"branch_id" validate:"required,uuid4"`
}

// RebuildProjectionResponse resultado del recálculo.
type RebuildProjectionResponse struct {
	ProductID string `json:"product_id"`
	BranchID  string `json:"branch_id"`
	Quantity  int64  `json:"quantity"`
}
