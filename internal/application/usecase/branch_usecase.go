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

// BranchUseCase CRUD de sucursales con verificación de capacidades y auditoría.
type BranchUseCase struct {
	repo      repository.BranchRepository
	auditRepo repository.AuditLogRepository
}

// NewBranchUseCase construye el caso de uso.
func NewBranchUseCase(repo repository.BranchRepository, auditRepo repository.AuditLogRepository) *BranchUseCase {
	return &BranchUseCase{repo: repo, auditRepo: auditRepo}
}

// Create crea una sucursal.
func (uc *BranchUseCase) Create(p auth.Principal, in dto.BranchRequest) (*dto.BranchResponse, error) {
	if !auth.Can(p.Role, auth.OpCatalogWrite) {
		return nil, domain.ErrForbidden
	}
	if errs := validator.ValidateStruct(in); len(errs) > 0 {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	branch := &entity.Branch{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Location:  in.Location,
		Phone:     in.Phone,
		Email:     in.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(branch); err != nil {
		return nil, err
	}
	if err := uc.audit(p.UserID, entity.AuditActionCreate, branch.ID, branch); err != nil {
		return nil, err
	}
	return toBranchResponse(branch), nil
}

// GetByID obtiene una sucursal.
func (uc *BranchUseCase) GetByID(p auth.Principal, id string) (*dto.BranchResponse, error) {
	branch, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, domain.ErrNotFound
	}
	return toBranchResponse(branch), nil
}

// List lista sucursales.
func (uc *BranchUseCase) List(p auth.Principal, page dto.PageRequest) ([]*dto.BranchResponse, error) {
	page.DefaultPage()
	branches, err := uc.repo.List(page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.BranchResponse, 0, len(branches))
	for _, b := range branches {
		out = append(out, toBranchResponse(b))
	}
	return out, nil
}

// Update actualiza una sucursal.
func (uc *BranchUseCase) Update(p auth.Principal, id string, in dto.BranchRequest) (*dto.BranchResponse, error) {
	if !auth.CanOnBranch(p, auth.OpCatalogWrite, id) {
		return nil, domain.ErrForbidden
	}
	if errs := validator.ValidateStruct(in); len(errs) > 0 {
		return nil, domain.ErrInvalidInput
	}
	branch, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, domain.ErrNotFound
	}
	branch.Name = in.Name
	branch.Location = in.Location
	branch.Phone = in.Phone
	branch.Email = in.Email
	branch.UpdatedAt = time.Now()
	if err := uc.repo.Update(branch); err != nil {
		return nil, err
	}
	if err := uc.audit(p.UserID, entity.AuditActionUpdate, branch.ID, branch); err != nil {
		return nil, err
	}
	return toBranchResponse(branch), nil
}

// Delete elimina una sucursal SOLO si no tiene registros dependientes.
// Con productos, ventas, movimientos o asientos vivos falla con ErrConflict:
// la sucursal es la raíz del agregado y no se borra con hijos.
func (uc *BranchUseCase) Delete(p auth.Principal, id string) error {
	if !auth.Can(p.Role, auth.OpCatalogWrite) {
		return domain.ErrForbidden
	}
	branch, err := uc.repo.GetByID(id)
	if err != nil {
		return err
	}
	if branch == nil {
		return domain.ErrNotFound
	}
	deps, err := uc.repo.HasDependents(id)
	if err != nil {
		return err
	}
	if deps {
		return domain.ErrConflict
	}
	if err := uc.repo.Delete(id); err != nil {
		return err
	}
	return uc.audit(p.UserID, entity.AuditActionDelete, id, branch)
}

func (uc *BranchUseCase) audit(userID, action, branchID string, b *entity.Branch) error {
	raw, _ := json.Marshal(map[string]string{"name": b.Name, "location": b.Location})
	return uc.auditRepo.Create(&entity.AuditLogEntry{
		ID:         uuid.New().String(),
		UserID:     userID,
		Action:     action,
		EntityName: "Branch",
		EntityID:   branchID,
		Changes:    raw,
		CreatedAt:  time.Now(),
	})
}

func toBranchResponse(b *entity.Branch) *dto.BranchResponse {
	return &dto.BranchResponse{
		ID:        b.ID,
		Name:      b.Name,
		Location:  b.Location,
		Phone:     b.Phone,
		Email:     b.Email,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}
