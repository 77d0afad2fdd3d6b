package usecase

import (
	"github.com/retailm/retailm-api/internal/application/dto"
	"github.com/retailm/retailm-api/internal/domain"
	"github.com/retailm/retailm-api/internal/domain/auth"
	"github.com/retailm/retailm-api/internal/domain/entity"
	"github.com/retailm/retailm-api/internal/domain/repository"
)

// AuditUseCase lectura de la bitácora de auditoría.
type AuditUseCase struct {
	repo repository.AuditLogRepository
}

// NewAuditUseCase construye el caso de uso.
func NewAuditUseCase(repo repository.AuditLogRepository) *AuditUseCase {
	return &AuditUseCase{repo: repo}
}

// List devuelve las entradas más recientes de la bitácora.
func (uc *AuditUseCase) List(p auth.Principal, page dto.PageRequest) ([]*dto.AuditLogDTO, error) {
	if !auth.Can(p.Role, auth.OpAuditRead) {
		return nil, domain.ErrForbidden
	}
	page.DefaultPage()
	entries, err := uc.repo.List(page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return toAuditDTOs(entries), nil
}

// ListByEntity devuelve la historia de una entidad concreta.
func (uc *AuditUseCase) ListByEntity(p auth.Principal, entityName, entityID string, page dto.PageRequest) ([]*dto.AuditLogDTO, error) {
	if !auth.Can(p.Role, auth.OpAuditRead) {
		return nil, domain.ErrForbidden
	}
	page.DefaultPage()
	entries, err := uc.repo.ListByEntity(entityName, entityID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return toAuditDTOs(entries), nil
}

func toAuditDTOs(entries []*entity.AuditLogEntry) []*dto.AuditLogDTO {
	out := make([]*dto.AuditLogDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, &dto.AuditLogDTO{
			ID:         e.ID,
			UserID:     e.UserID,
			Action:     e.Action,
			EntityName: e.EntityName,
			EntityID:   e.EntityID,
			Changes:    e.Changes,
			IPAddress:  e.IPAddress,
			CreatedAt:  e.CreatedAt,
		})
	}
	return out
}
