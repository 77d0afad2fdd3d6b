package sales

import (
	"context"
	"time"

	"github.com/retailm/retailm-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza la atomicidad del coordinador:
// cabecera, líneas, movimientos, asiento y auditoría se confirman juntos o
// ninguno. La implementación debe acotar la espera por bloqueos de fila y
// traducirla a domain.ErrConcurrencyTimeout.
type TxRunner interface {
	RunSale(ctx context.Context, fn func(
		saleRepo repository.SaleRepository,
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		ledgerRepo repository.LedgerRepository,
		auditRepo repository.AuditLogRepository,
	) error) error
}

// IdempotencyStore guarda claves de idempotencia suministradas por el cliente.
// Una clave pasa por: reservada (operación en curso) -> completada (con el ID
// de la venta resultante). Reintentar con la misma clave tras un fallo
// ambiguo devuelve la venta ya aplicada en vez de aplicarla dos veces.
type IdempotencyStore interface {
	// Reserve marca la clave como en curso. Devuelve false si ya existía.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Lookup devuelve el saleID asociado, o pending=true si la clave está
	// reservada pero aún sin resultado.
	Lookup(ctx context.Context, key string) (saleID string, pending bool, err error)
	// Complete asocia el resultado a la clave reservada.
	Complete(ctx context.Context, key, saleID string) error
	// Release libera la clave tras un fallo, habilitando el reintento.
	Release(ctx context.Context, key string) error
}
