package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/retailm/retailm-api/internal/domain/entity"
	"github.com/retailm/retailm-api/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo implementación del libro contable sobre PostgreSQL (usable con
// pool o tx). Append-only: solo INSERT y SELECT.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

const ledgerColumns = `id, branch_id, amount, category, description, sale_id, created_by, created_at`

// Create persiste un asiento contable.
func (r *LedgerRepo) Create(entry *entity.LedgerEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	query := `
		INSERT INTO ledger_entries (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, entry.BranchID, entry.Amount, entry.Category, entry.Description,
		nullIfEmpty(entry.SaleID), nullIfEmpty(entry.CreatedBy), entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create ledger entry: %w", err)
	}
	return nil
}

// GetByID obtiene un asiento por ID. Devuelve nil si no existe.
func (r *LedgerRepo) GetByID(id string) (*entity.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE id = $1`
	e, err := scanLedgerEntry(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ledger entry: %w", err)
	}
	return e, nil
}

// ListByBranch lista asientos de una sucursal en un rango de fechas.
func (r *LedgerRepo) ListByBranch(branchID string, from, to *time.Time, limit, offset int) ([]*entity.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE branch_id = $1`
	args := []any{branchID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.LedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// BalanceByBranch devuelve la suma de montos con timestamp <= at.
func (r *LedgerRepo) BalanceByBranch(branchID string, at time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM ledger_entries WHERE branch_id = $1 AND created_at <= $2`
	var balance decimal.Decimal
	err := r.q.QueryRow(context.Background(), query, branchID, at).Scan(&balance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("balance by branch: %w", err)
	}
	return balance, nil
}

// GetBySale devuelve los asientos originados por una venta (venta y su reverso).
func (r *LedgerRepo) GetBySale(saleID string) ([]*entity.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE sale_id = $1 ORDER BY created_at ASC`
	rows, err := r.q.Query(context.Background(), query, saleID)
	if err != nil {
		return nil, fmt.Errorf("ledger entries by sale: %w", err)
	}
	defer rows.Close()
	var list []*entity.LedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func scanLedgerEntry(row pgx.Row) (*entity.LedgerEntry, error) {
	var e entity.LedgerEntry
	var saleID, createdBy *string
	if err := row.Scan(&e.ID, &e.BranchID, &e.Amount, &e.Category, &e.Description,
		&saleID, &createdBy, &e.CreatedAt); err != nil {
		return nil, err
	}
	if saleID != nil {
		e.SaleID = *saleID
	}
	if createdBy != nil {
		e.CreatedBy = *createdBy
	}
	return &e, nil
}
