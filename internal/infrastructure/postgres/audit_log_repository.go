package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/retailm/retailm-api/internal/domain/entity"
	"github.com/retailm/retailm-api/internal/domain/repository"
)

var _ repository.AuditLogRepository = (*AuditLogRepo)(nil)

// AuditLogRepo implementación de la bitácora sobre PostgreSQL (usable con
// pool o tx). Append-only: solo INSERT y SELECT.
type AuditLogRepo struct {
	q Querier
}

// NewAuditLogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuditLogRepository(q Querier) *AuditLogRepo {
	return &AuditLogRepo{q: q}
}

const auditColumns = `id, user_id, action, entity_name, entity_id, changes, ip_address, created_at`

// Create persiste una entrada de auditoría.
func (r *AuditLogRepo) Create(entry *entity.AuditLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	query := `
		INSERT INTO audit_log (` + auditColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, nullIfEmpty(entry.UserID), entry.Action, entry.EntityName,
		nullIfEmpty(entry.EntityID), entry.Changes, entry.IPAddress, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create audit entry: %w", err)
	}
	return nil
}

// List devuelve las entradas más recientes.
func (r *AuditLogRepo) List(limit, offset int) ([]*entity.AuditLogEntry, error) {
	query := `SELECT ` + auditColumns + ` FROM audit_log ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	return r.queryEntries(query, limit, offset)
}

// ListByEntity devuelve la historia de una entidad concreta.
func (r *AuditLogRepo) ListByEntity(entityName, entityID string, limit, offset int) ([]*entity.AuditLogEntry, error) {
	query := `
		SELECT ` + auditColumns + ` FROM audit_log
		WHERE entity_name = $1 AND entity_id = $2
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`
	return r.queryEntries(query, entityName, entityID, limit, offset)
}

func (r *AuditLogRepo) queryEntries(query string, args ...any) ([]*entity.AuditLogEntry, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.AuditLogEntry
	for rows.Next() {
		var e entity.AuditLogEntry
		var userID, entityID *string
		if err := rows.Scan(&e.ID, &userID, &e.Action, &e.EntityName, &entityID,
			&e.Changes, &e.IPAddress, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		if userID != nil {
			e.UserID = *userID
		}
		if entityID != nil {
			e.EntityID = *entityID
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
