package repository

import "github.com/retailm/retailm-api/internal/domain/entity"

// BranchRepository define el puerto de persistencia para sucursales.
type BranchRepository interface {
	Create(branch *entity.Branch) error
	GetByID(id string) (*entity.Branch, error)
	Update(branch *entity.Branch) error
	// Delete elimina la sucursal solo si no tiene registros dependientes;
	// el adaptador debe verificar antes y el caso de uso traduce a ErrConflict.
	Delete(id string) error
	List(limit, offset int) ([]*entity.Branch, error)
	// HasDependents indica si existen productos, ventas, movimientos o asientos
	// que referencien la sucursal (invariante referencial: no se borra con hijos).
	HasDependents(id string) (bool, error)
}
