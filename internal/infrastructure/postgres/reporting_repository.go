package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/retailm/retailm-api/internal/domain/entity"
	"github.com/retailm/retailm-api/internal/domain/repository"
)

var _ repository.ReportingRepository = (*ReportingRepo)(nil)

// ReportingRepo implementación de solo lectura para reportes sobre PostgreSQL.
// Consulta proyecciones y filas confirmadas; nunca muta estado.
type ReportingRepo struct {
	q Querier
}

// NewReportingRepository construye el adaptador de reportes. Pasar pool o tx (Querier).
func NewReportingRepository(q Querier) *ReportingRepo {
	return &ReportingRepo{q: q}
}

// LowStock lista productos activos con cantidad proyectada <= threshold.
// Con threshold < 0 cada producto usa su propio reorder_level.
// Productos sin fila de stock cuentan como cantidad cero.
func (r *ReportingRepo) LowStock(branchID string, threshold int64) ([]*repository.LowStockRow, error) {
	query := `
		SELECT p.id, p.sku, p.name, COALESCE(s.quantity, 0), p.reorder_level
		FROM products p
		LEFT JOIN stock s ON s.product_id = p.id AND s.branch_id = p.branch_id
		WHERE p.branch_id = $1 AND p.active
		  AND COALESCE(s.quantity, 0) <= CASE WHEN $2 < 0 THEN p.reorder_level ELSE $2 END
		ORDER BY COALESCE(s.quantity, 0) ASC, p.name`
	rows, err := r.q.Query(context.Background(), query, branchID, threshold)
	if err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}
	defer rows.Close()
	var list []*repository.LowStockRow
	for rows.Next() {
		var row repository.LowStockRow
		if err := rows.Scan(&row.ProductID, &row.SKU, &row.Name, &row.Quantity, &row.ReorderLevel); err != nil {
			return nil, fmt.Errorf("scan low stock row: %w", err)
		}
		list = append(list, &row)
	}
	return list, rows.Err()
}

// SalesTotals agrega ventas completadas de la sucursal en el rango [from, to].
// Las ventas anuladas no cuentan.
func (r *ReportingRepo) SalesTotals(branchID string, from, to time.Time) (*repository.SalesTotalsRow, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(total), 0)
		FROM sales
		WHERE branch_id = $1 AND status = $2 AND created_at >= $3 AND created_at <= $4`
	var row repository.SalesTotalsRow
	err := r.q.QueryRow(context.Background(), query, branchID, entity.SaleStatusCompleted, from, to).Scan(
		&row.Count, &row.Total,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &repository.SalesTotalsRow{Total: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("sales totals: %w", err)
	}
	return &row, nil
}

// DailySales agrega el total vendido por día durante los últimos N días.
// Solo días con ventas aparecen en el resultado.
func (r *ReportingRepo) DailySales(branchID string, days int) ([]*repository.DailySalesRow, error) {
	query := `
		SELECT date_trunc('day', created_at) AS day, COALESCE(SUM(total), 0)
		FROM sales
		WHERE branch_id = $1 AND status = $2 AND created_at >= now() - ($3 || ' days')::interval
		GROUP BY day
		ORDER BY day DESC`
	rows, err := r.q.Query(context.Background(), query, branchID, entity.SaleStatusCompleted, days)
	if err != nil {
		return nil, fmt.Errorf("daily sales: %w", err)
	}
	defer rows.Close()
	var list []*repository.DailySalesRow
	for rows.Next() {
		var row repository.DailySalesRow
		if err := rows.Scan(&row.Day, &row.Total); err != nil {
			return nil, fmt.Errorf("scan daily sales row: %w", err)
		}
		list = append(list, &row)
	}
	return list, rows.Err()
}
