package repository

import "github.com/retailm/retailm-api/internal/domain/entity"

// StockRepository define el puerto de la proyección de cantidad actual por
// producto y sucursal. Usado dentro de transacciones para garantizar
// consistencia lectura-tras-escritura.
type StockRepository interface {
	Get(productID, branchID string) (*entity.Stock, error)
	Upsert(stock *entity.Stock) error
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) para la secuencia
	// verificar-luego-escribir del coordinador de ventas.
	GetForUpdate(productID, branchID string) (*entity.Stock, error)
}
