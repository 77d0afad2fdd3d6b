package entity

import (
	"encoding/json"
	"time"
)

// Acciones registradas en la bitácora.
const (
	AuditActionCreate = "create"
	AuditActionUpdate = "update"
	AuditActionDelete = "delete"
	AuditActionVoid   = "void"
)

// AuditLogEntry representa un registro inmutable de auditoría: quién hizo qué
// sobre qué entidad. Solo se agrega, nunca se modifica.
type AuditLogEntry struct {
	ID         string
	UserID     string
	Action     string
	EntityName string // Sale, Product, Branch, ...
	EntityID   string
	Changes    json.RawMessage // snapshot o diff en JSON
	IPAddress  string
	CreatedAt  time.Time
}
