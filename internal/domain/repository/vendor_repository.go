package repository

import "github.com/retailm/retailm-api/internal/domain/entity"

// VendorRepository define el puerto de persistencia para proveedores.
type VendorRepository interface {
	Create(vendor *entity.Vendor) error
	GetByID(id string) (*entity.Vendor, error)
	Update(vendor *entity.Vendor) error
	Delete(id string) error
	List(limit, offset int) ([]*entity.Vendor, error)
}
