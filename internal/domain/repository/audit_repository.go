package repository

import "github.com/retailm/retailm-api/internal/domain/entity"

// AuditLogRepository define el puerto de la bitácora de auditoría (append-only).
type AuditLogRepository interface {
	Create(entry *entity.AuditLogEntry) error
	List(limit, offset int) ([]*entity.AuditLogEntry, error)
	ListByEntity(entityName, entityID string, limit, offset int) ([]*entity.AuditLogEntry, error)
}
