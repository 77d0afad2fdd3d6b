package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/retailm/retailm-api/internal/domain/entity"
	"github.com/retailm/retailm-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación de SaleRepository sobre PostgreSQL (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador de ventas. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleColumns = `id, branch_id, invoice_no, customer_name, customer_phone, payment_method, total, status, notes, created_by, created_at, voided_at, voided_by`

// Create persiste la cabecera de una venta.
func (r *SaleRepo) Create(sale *entity.Sale) error {
	if sale.ID == "" {
		sale.ID = uuid.New().String()
	}
	query := `
		INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(context.Background(), query,
		sale.ID, sale.BranchID, sale.InvoiceNo, sale.CustomerName, sale.CustomerPhone,
		sale.PaymentMethod, sale.Total, sale.Status, sale.Notes,
		nullIfEmpty(sale.CreatedBy), sale.CreatedAt, sale.VoidedAt, nullIfEmpty(sale.VoidedBy),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create sale: %w", errDuplicateInvoice)
		}
		return fmt.Errorf("create sale: %w", err)
	}
	return nil
}

var errDuplicateInvoice = errors.New("número de factura duplicado")

// CreateItem persiste una línea de venta.
func (r *SaleRepo) CreateItem(item *entity.SaleItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	query := `
		INSERT INTO sale_items (id, sale_id, product_id, quantity, unit_price, total)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.SaleID, item.ProductID, item.Quantity, item.UnitPrice, item.Total,
	)
	if err != nil {
		return fmt.Errorf("create sale item: %w", err)
	}
	return nil
}

// GetByID obtiene una venta por ID. Devuelve nil si no existe.
func (r *SaleRepo) GetByID(id string) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1`
	s, err := scanSale(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return s, nil
}

// GetForUpdate obtiene la cabecera y bloquea la fila (SELECT FOR UPDATE),
// serializando anulaciones concurrentes de la misma venta.
func (r *SaleRepo) GetForUpdate(id string) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1 FOR UPDATE`
	s, err := scanSale(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale for update: %w", err)
	}
	return s, nil
}

// GetItems devuelve las líneas de una venta.
func (r *SaleRepo) GetItems(saleID string) ([]*entity.SaleItem, error) {
	query := `
		SELECT id, sale_id, product_id, quantity, unit_price, total
		FROM sale_items WHERE sale_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, saleID)
	if err != nil {
		return nil, fmt.Errorf("get sale items: %w", err)
	}
	defer rows.Close()
	var items []*entity.SaleItem
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.Total); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

// SetVoided marca la venta como anulada. Única mutación permitida sobre la cabecera.
func (r *SaleRepo) SetVoided(sale *entity.Sale) error {
	query := `
		UPDATE sales SET status = $2, voided_at = $3, voided_by = $4
		WHERE id = $1 AND status = 'completed'`
	tag, err := r.q.Exec(context.Background(), query,
		sale.ID, entity.SaleStatusVoided, sale.VoidedAt, nullIfEmpty(sale.VoidedBy),
	)
	if err != nil {
		return fmt.Errorf("void sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("void sale %s: la venta no está en estado completed", sale.ID)
	}
	return nil
}

// ListByBranch lista ventas de una sucursal en un rango de fechas.
func (r *SaleRepo) ListByBranch(branchID string, from, to *time.Time, limit, offset int) ([]*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE branch_id = $1`
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
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	var list []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	var createdBy, voidedBy *string
	if err := row.Scan(&s.ID, &s.BranchID, &s.InvoiceNo, &s.CustomerName, &s.CustomerPhone,
		&s.PaymentMethod, &s.Total, &s.Status, &s.Notes, &createdBy, &s.CreatedAt,
		&s.VoidedAt, &voidedBy); err != nil {
		return nil, err
	}
	if createdBy != nil {
		s.CreatedBy = *createdBy
	}
	if voidedBy != nil {
		s.VoidedBy = *voidedBy
	}
	return &s, nil
}
