package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/retailm/retailm-api/internal/domain"
	"github.com/retailm/retailm-api/internal/domain/entity"
	"github.com/retailm/retailm-api/internal/domain/repository"
)

var _ repository.VendorRepository = (*VendorRepo)(nil)

// VendorRepo implementación de VendorRepository sobre PostgreSQL (usable con pool o tx).
type VendorRepo struct {
	q Querier
}

// NewVendorRepository construye el adaptador de proveedores. Pasar pool o tx (Querier).
func NewVendorRepository(q Querier) *VendorRepo {
	return &VendorRepo{q: q}
}

const vendorColumns = `id, name, contact_person, email, phone, address, tax_number, notes, created_at, updated_at`

// Create persiste un proveedor.
func (r *VendorRepo) Create(vendor *entity.Vendor) error {
	if vendor.ID == "" {
		vendor.ID = uuid.New().String()
	}
	query := `
		INSERT INTO vendors (` + vendorColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		vendor.ID, vendor.Name, vendor.ContactPerson, vendor.Email, vendor.Phone,
		vendor.Address, vendor.TaxNumber, vendor.Notes, vendor.CreatedAt, vendor.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create vendor: %w", err)
	}
	return nil
}

// GetByID obtiene un proveedor por ID. Devuelve nil si no existe.
func (r *VendorRepo) GetByID(id string) (*entity.Vendor, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors WHERE id = $1`
	var v entity.Vendor
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&v.ID, &v.Name, &v.ContactPerson, &v.Email, &v.Phone, &v.Address,
		&v.TaxNumber, &v.Notes, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get vendor: %w", err)
	}
	return &v, nil
}

// Update actualiza los datos de un proveedor.
func (r *VendorRepo) Update(vendor *entity.Vendor) error {
	query := `
		UPDATE vendors SET name = $2, contact_person = $3, email = $4, phone = $5,
			address = $6, tax_number = $7, notes = $8, updated_at = $9
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		vendor.ID, vendor.Name, vendor.ContactPerson, vendor.Email, vendor.Phone,
		vendor.Address, vendor.TaxNumber, vendor.Notes, vendor.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update vendor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un proveedor. Los movimientos históricos conservan su vendor_id.
func (r *VendorRepo) Delete(id string) error {
	tag, err := r.q.Exec(context.Background(), `DELETE FROM vendors WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete vendor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista proveedores ordenados por nombre.
func (r *VendorRepo) List(limit, offset int) ([]*entity.Vendor, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	defer rows.Close()
	var list []*entity.Vendor
	for rows.Next() {
		var v entity.Vendor
		if err := rows.Scan(&v.ID, &v.Name, &v.ContactPerson, &v.Email, &v.Phone,
			&v.Address, &v.TaxNumber, &v.Notes, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan vendor: %w", err)
		}
		list = append(list, &v)
	}
	return list, rows.Err()
}
