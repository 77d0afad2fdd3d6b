package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// LowStockItemDTO producto por debajo del umbral de stock.
type LowStockItemDTO struct {
	ProductID    string `json:"product_id"`
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	Quantity     int64  `json:"quantity"`
	ReorderLevel int64  `json:"reorder_level"`
}

// SalesTotalsDTO agregado de ventas completadas en un rango.
type SalesTotalsDTO struct {
	BranchID string          `json:"branch_id"`
	From     time.Time       `json:"from"`
	To       time.Time       `json:"to"`
	Count    int64           `json:"count"`
	Total    decimal.Decimal `json:"total"`
}

// DailySalesDTO total vendido por día.
type DailySalesDTO struct {
	Day   string          `json:"day"` // YYYY-MM-DD
	Total decimal.Decimal `json:"total"`
}

// BranchBalanceDTO balance contable de una sucursal en un instante.
type BranchBalanceDTO struct {
	BranchID string          `json:"branch_id"`
	At       time.Time       `json:"at"`
	Balance  decimal.Decimal `json:"balance"`
}

// LedgerEntryDTO asiento en respuestas de listado.
type LedgerEntryDTO struct {
	ID          string          `json:"id"`
	BranchID    string          `json:"branch_id"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	SaleID      string          `json:"sale_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// AuditLogDTO registro de auditoría en respuestas.
type AuditLogDTO struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id,omitempty"`
	Action     string          `json:"action"`
	EntityName string          `json:"entity_name"`
	EntityID   string          `json:"entity_id,omitempty"`
	Changes    json.RawMessage `json:"changes,omitempty"`
	IPAddress  string          `json:"ip_address,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}
