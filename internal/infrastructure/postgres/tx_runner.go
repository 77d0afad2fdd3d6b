package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/retailm/retailm-api/internal/application/inventory"
	"github.com/retailm/retailm-api/internal/application/sales"
	"github.com/retailm/retailm-api/internal/domain"
	"github.com/retailm/retailm-api/internal/domain/repository"
)

// Ensure TxRunner implements sales.TxRunner and inventory.TxRunner.
var _ sales.TxRunner = (*TxRunner)(nil)
var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
// lockTimeoutMS acota cuánto espera un SELECT ... FOR UPDATE por filas
// bloqueadas; al expirar, la transacción falla con domain.ErrConcurrencyTimeout.
type TxRunner struct {
	pool          *pgxpool.Pool
	lockTimeoutMS int
}

// NewTxRunner construye el runner con el pool y el lock_timeout en milisegundos.
func NewTxRunner(pool *pgxpool.Pool, lockTimeoutMS int) *TxRunner {
	if lockTimeoutMS <= 0 {
		lockTimeoutMS = 3000
	}
	return &TxRunner{pool: pool, lockTimeoutMS: lockTimeoutMS}
}

// RunSale inicia una transacción con los repos de venta y hace Commit o Rollback.
func (r *TxRunner) RunSale(ctx context.Context, fn func(
	saleRepo repository.SaleRepository,
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
	ledgerRepo repository.LedgerRepository,
	auditRepo repository.AuditLogRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// SET LOCAL aplica solo a esta transacción.
	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeoutMS)); err != nil {
		return fmt.Errorf("set lock_timeout: %w", err)
	}

	saleRepo := NewSaleRepository(tx)
	movRepo := NewStockMovementRepository(tx)
	stockRepo := NewStockRepository(tx)
	ledgerRepo := NewLedgerRepository(tx)
	auditRepo := NewAuditLogRepository(tx)

	if err := fn(saleRepo, movRepo, stockRepo, ledgerRepo, auditRepo); err != nil {
		if isLockConflict(err) {
			return domain.ErrConcurrencyTimeout
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Run inicia una transacción con los repos de inventario y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	ledgerRepo repository.LedgerRepository,
	auditRepo repository.AuditLogRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeoutMS)); err != nil {
		return fmt.Errorf("set lock_timeout: %w", err)
	}

	movRepo := NewStockMovementRepository(tx)
	stockRepo := NewStockRepository(tx)
	productRepo := NewProductRepository(tx)
	ledgerRepo := NewLedgerRepository(tx)
	auditRepo := NewAuditLogRepository(tx)

	if err := fn(movRepo, stockRepo, productRepo, ledgerRepo, auditRepo); err != nil {
		if isLockConflict(err) {
			return domain.ErrConcurrencyTimeout
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
