package inventory

import (
	"context"

	"github.com/retailm/retailm-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que movimiento, proyección, costo,
// asiento y auditoría se confirmen como una sola unidad.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		ledgerRepo repository.LedgerRepository,
		auditRepo repository.AuditLogRepository,
	) error) error
}
