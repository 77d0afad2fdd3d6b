package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ── Sucursales ────────────────────────────────────────────────────────────────

// BranchRequest body para crear/actualizar una sucursal.
type BranchRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=150"`
	Location string `json:"location,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
}

// BranchResponse sucursal en respuestas.
type BranchResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ── Productos ─────────────────────────────────────────────────────────────────

// ProductRequest body para crear/actualizar un producto.
type ProductRequest struct {
	BranchID     string          `json:"branch_id" validate:"required,uuid4"`
	SKU          string          `json:"sku" validate:"required,min=1,max=100"`
	Barcode      string          `json:"barcode,omitempty"`
	Name         string          `json:"name" validate:"required,min=1,max=255"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price" validate:"decimal_nonneg"`
	Cost         decimal.Decimal `json:"cost" validate:"decimal_nonneg"`
	ReorderLevel int64           `json:"reorder_level" validate:"min=0"`
	ExpiryDate   *time.Time      `json:"expiry_date,omitempty"`
}

// ProductResponse producto en respuestas. Quantity viene de la proyección.
type ProductResponse struct {
	ID           string          `json:"id"`
	BranchID     string          `json:"branch_id"`
	SKU          string          `json:"sku"`
	Barcode      string          `json:"barcode,omitempty"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Cost         decimal.Decimal `json:"cost"`
	Quantity     int64           `json:"quantity"`
	ReorderLevel int64           `json:"reorder_level"`
	ExpiryDate   *time.Time      `json:"expiry_date,omitempty"`
	Active       bool            `json:"active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ── Proveedores ───────────────────────────────────────────────────────────────

// VendorRequest body para crear/actualizar un proveedor.
type VendorRequest struct {
	Name          string `json:"name" validate:"required,min=2,max=255"`
	ContactPerson string `json:"contact_person,omitempty"`
	Email         string `json:"email,omitempty" validate:"omitempty,email"`
	Phone         string `json:"phone,omitempty"`
	Address       string `json:"address,omitempty"`
	TaxNumber     string `json:"tax_number,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// VendorResponse proveedor en respuestas.
type VendorResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contact_person,omitempty"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Address       string    `json:"address,omitempty"`
	TaxNumber     string    `json:"tax_number,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
