package usecase

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/retailm/retailm-api/internal/application/dto"
	"github.com/retailm/retailm-api/internal/domain"
	"github.com/retailm/retailm-api/internal/domain/auth"
	"github.com/retailm/retailm-api/internal/domain/entity"
	"github.com/retailm/retailm-api/internal/domain/repository"
	"github.com/retailm/retailm-api/pkg/validator"
)

// ProductUseCase CRUD de productos. La cantidad que exponen las respuestas
// proviene de la proyección, nunca de un campo propio del producto.
type ProductUseCase struct {
	repo       repository.ProductRepository
	branchRepo repository.BranchRepository
	stockRepo  repository.StockRepository
	auditRepo  repository.AuditLogRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	repo repository.ProductRepository,
	branchRepo repository.BranchRepository,
	stockRepo repository.StockRepository,
	auditRepo repository.AuditLogRepository,
) *ProductUseCase {
	return &ProductUseCase{repo: repo, branchRepo: branchRepo, stockRepo: stockRepo, auditRepo: auditRepo}
}

// Create crea un producto en una sucursal.
func (uc *ProductUseCase) Create(p auth.Principal, in dto.ProductRequest) (*dto.ProductResponse, error) {
	if !auth.CanOnBranch(p, auth.OpCatalogWrite, in.BranchID) {
		return nil, domain.ErrForbidden
	}
	if errs := validator.ValidateStruct(in); len(errs) > 0 {
		return nil, domain.ErrInvalidInput
	}
	branch, err := uc.branchRepo.GetByID(in.BranchID)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, domain.ErrNotFound
	}
	if existing, _ := uc.repo.GetBySKU(in.BranchID, in.SKU); existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	product := &entity.Product{
		ID:           uuid.New().String(),
		BranchID:     in.BranchID,
		SKU:          in.SKU,
		Barcode:      in.Barcode,
		Name:         in.Name,
		Description:  in.Description,
		Price:        in.Price,
		Cost:         in.Cost,
		ReorderLevel: in.ReorderLevel,
		ExpiryDate:   in.ExpiryDate,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(product); err != nil {
		return nil, err
	}
	if err := uc.audit(p.UserID, entity.AuditActionCreate, product); err != nil {
		return nil, err
	}
	return uc.toResponse(product)
}

// GetByID obtiene un producto con su cantidad proyectada.
func (uc *ProductUseCase) GetByID(p auth.Principal, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return uc.toResponse(product)
}

// ListByBranch lista productos de una sucursal.
func (uc *ProductUseCase) ListByBranch(p auth.Principal, branchID string, page dto.PageRequest) ([]*dto.ProductResponse, error) {
	page.DefaultPage()
	products, err := uc.repo.ListByBranch(branchID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ProductResponse, 0, len(products))
	for _, prod := range products {
		resp, err := uc.toResponse(prod)
		if err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, nil
}

// Update actualiza los atributos de un producto (nunca su cantidad: esa solo
// cambia por movimientos de stock).
func (uc *ProductUseCase) Update(p auth.Principal, id string, in dto.ProductRequest) (*dto.ProductResponse, error) {
	if errs := validator.ValidateStruct(in); len(errs) > 0 {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if !auth.CanOnBranch(p, auth.OpCatalogWrite, product.BranchID) {
		return nil, domain.ErrForbidden
	}
	product.SKU = in.SKU
	product.Barcode = in.Barcode
	product.Name = in.Name
	product.Description = in.Description
	product.Price = in.Price
	product.Cost = in.Cost
	product.ReorderLevel = in.ReorderLevel
	product.ExpiryDate = in.ExpiryDate
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(product); err != nil {
		return nil, err
	}
	if err := uc.audit(p.UserID, entity.AuditActionUpdate, product); err != nil {
		return nil, err
	}
	return uc.toResponse(product)
}

// Deactivate da de baja lógica un producto: deja de ser vendible y de emitir
// alertas de stock bajo, pero su historial de movimientos y ventas queda
// intacto. Los productos nunca se borran físicamente.
func (uc *ProductUseCase) Deactivate(p auth.Principal, id string) error {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	if !auth.CanOnBranch(p, auth.OpCatalogWrite, product.BranchID) {
		return domain.ErrForbidden
	}
	if !product.Active {
		return domain.ErrConflict
	}
	product.Active = false
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(product); err != nil {
		return err
	}
	return uc.audit(p.UserID, entity.AuditActionDelete, product)
}

func (uc *ProductUseCase) audit(userID, action string, prod *entity.Product) error {
	raw, _ := json.Marshal(map[string]string{
		"sku":   prod.SKU,
		"name":  prod.Name,
		"price": prod.Price.String(),
	})
	return uc.auditRepo.Create(&entity.AuditLogEntry{
		ID:         uuid.New().String(),
		UserID:     userID,
		Action:     action,
		EntityName: "Product",
		EntityID:   prod.ID,
		Changes:    raw,
		CreatedAt:  time.Now(),
	})
}

func (uc *ProductUseCase) toResponse(prod *entity.Product) (*dto.ProductResponse, error) {
	stock, err := uc.stockRepo.Get(prod.ID, prod.BranchID)
	if err != nil {
		return nil, err
	}
	return &dto.ProductResponse{
		ID:           prod.ID,
		BranchID:     prod.BranchID,
		SKU:          prod.SKU,
		Barcode:      prod.Barcode,
		Name:         prod.Name,
		Description:  prod.Description,
		Price:        prod.Price,
		Cost:         prod.Cost,
		Quantity:     stock.Quantity,
		ReorderLevel: prod.ReorderLevel,
		ExpiryDate:   prod.ExpiryDate,
		Active:       prod.Active,
		CreatedAt:    prod.CreatedAt,
		UpdatedAt:    prod.UpdatedAt,
	}, nil
}
