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

// VendorUseCase CRUD de proveedores.
type VendorUseCase struct {
	repo      repository.VendorRepository
	auditRepo repository.AuditLogRepository
}

// NewVendorUseCase construye el caso de uso.
func NewVendorUseCase(repo repository.VendorRepository, auditRepo repository.AuditLogRepository) *VendorUseCase {
	return &VendorUseCase{repo: repo, auditRepo: auditRepo}
}

// Create crea un proveedor.
func (uc *VendorUseCase) Create(p auth.Principal, in dto.VendorRequest) (*dto.VendorResponse, error) {
	if !auth.Can(p.Role, auth.OpCatalogWrite) {
		return nil, domain.ErrForbidden
	}
	if errs := validator.ValidateStruct(in); len(errs) > 0 {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	vendor := &entity.Vendor{
		ID:            uuid.New().String(),
		Name:          in.Name,
		ContactPerson: in.ContactPerson,
		Email:         in.Email,
		Phone:         in.Phone,
		Address:       in.Address,
		TaxNumber:     in.TaxNumber,
		Notes:         in.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.repo.Create(vendor); err != nil {
		return nil, err
	}
	if err := uc.audit(p.UserID, entity.AuditActionCreate, vendor); err != nil {
		return nil, err
	}
	return toVendorResponse(vendor), nil
}

// GetByID obtiene un proveedor.
func (uc *VendorUseCase) GetByID(p auth.Principal, id string) (*dto.VendorResponse, error) {
	vendor, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, domain.ErrNotFound
	}
	return toVendorResponse(vendor), nil
}

// List lista proveedores.
func (uc *VendorUseCase) List(p auth.Principal, page dto.PageRequest) ([]*dto.VendorResponse, error) {
	page.DefaultPage()
	vendors, err := uc.repo.List(page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.VendorResponse, 0, len(vendors))
	for _, v := range vendors {
		out = append(out, toVendorResponse(v))
	}
	return out, nil
}

// Update actualiza un proveedor.
func (uc *VendorUseCase) Update(p auth.Principal, id string, in dto.VendorRequest) (*dto.VendorResponse, error) {
	if !auth.Can(p.Role, auth.OpCatalogWrite) {
		return nil, domain.ErrForbidden
	}
	if errs := validator.ValidateStruct(in); len(errs) > 0 {
		return nil, domain.ErrInvalidInput
	}
	vendor, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, domain.ErrNotFound
	}
	vendor.Name = in.Name
	vendor.ContactPerson = in.ContactPerson
	vendor.Email = in.Email
	vendor.Phone = in.Phone
	vendor.Address = in.Address
	vendor.TaxNumber = in.TaxNumber
	vendor.Notes = in.Notes
	vendor.UpdatedAt = time.Now()
	if err := uc.repo.Update(vendor); err != nil {
		return nil, err
	}
	if err := uc.audit(p.UserID, entity.AuditActionUpdate, vendor); err != nil {
		return nil, err
	}
	return toVendorResponse(vendor), nil
}

// Delete elimina un proveedor. Los movimientos que lo referencian conservan
// el ID como procedencia histórica (sin acoplamiento de ciclo de vida).
func (uc *VendorUseCase) Delete(p auth.Principal, id string) error {
	if !auth.Can(p.Role, auth.OpCatalogWrite) {
		return domain.ErrForbidden
	}
	vendor, err := uc.repo.GetByID(id)
	if err != nil {
		return err
	}
	if vendor == nil {
		return domain.ErrNotFound
	}
	if err := uc.repo.Delete(id); err != nil {
		return err
	}
	return uc.audit(p.UserID, entity.AuditActionDelete, vendor)
}

func (uc *VendorUseCase) audit(userID, action string, v *entity.Vendor) error {
	raw, _ := json.Marshal(map[string]string{"name": v.Name})
	return uc.auditRepo.Create(&entity.AuditLogEntry{
		ID:         uuid.New().String(),
		UserID:     userID,
		Action:     action,
		EntityName: "Vendor",
		EntityID:   v.ID,
		Changes:    raw,
		CreatedAt:  time.Now(),
	})
}

func toVendorResponse(v *entity.Vendor) *dto.VendorResponse {
	return &dto.VendorResponse{
		ID:            v.ID,
		Name:          v.Name,
		ContactPerson: v.ContactPerson,
		Email:         v.Email,
		Phone:         v.Phone,
		Address:       v.Address,
		TaxNumber:     v.TaxNumber,
		Notes:         v.Notes,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}
