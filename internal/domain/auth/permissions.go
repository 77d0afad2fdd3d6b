package auth

import "github.com/retailm/retailm-api/internal/domain/entity"

// Principal es el actor autenticado que ejecuta una operación.
// Lo construye el middleware HTTP a partir de los claims del JWT.
type Principal struct {
	UserID   string
	BranchID string // vacío = sin sucursal fija
	Role     string
}

// Operation identifica una capacidad del sistema.
type Operation string

// Capacidades verificadas explícitamente antes de cualquier mutación.
const (
	OpSaleCreate    Operation = "sale.create"
	OpSaleVoid      Operation = "sale.void"
	OpMovementWrite Operation = "movement.write" // restock, ajustes, bajas
	OpCatalogWrite  Operation = "catalog.write"  // sucursales, productos, proveedores
	OpUserManage    Operation = "user.manage"
	OpAuditRead     Operation = "audit.read"
	OpReportRead    Operation = "report.read"
)

// capabilities define qué puede hacer cada rol. La tabla es cerrada: toda
// operación no listada se niega. El cajero registra ventas pero no las anula;
// anular requiere manager o admin. Staff solo consulta.
var capabilities = map[string]map[Operation]bool{
	entity.RoleAdmin: {
		OpSaleCreate: true, OpSaleVoid: true, OpMovementWrite: true,
		OpCatalogWrite: true, OpUserManage: true, OpAuditRead: true, OpReportRead: true,
	},
	entity.RoleManager: {
		OpSaleCreate: true, OpSaleVoid: true, OpMovementWrite: true,
		OpCatalogWrite: true, OpAuditRead: true, OpReportRead: true,
	},
	entity.RoleCashier: {
		OpSaleCreate: true, OpReportRead: true,
	},
	entity.RoleStaff: {
		OpReportRead: true,
	},
}

// Can indica si el rol tiene la capacidad solicitada.
func Can(role string, op Operation) bool {
	caps, ok := capabilities[role]
	if !ok {
		return false
	}
	return caps[op]
}

// CanOnBranch combina la capacidad con el alcance por sucursal: un usuario
// con sucursal fija solo opera sobre ella; admin opera sobre cualquiera.
func CanOnBranch(p Principal, op Operation, branchID string) bool {
	if !Can(p.Role, op) {
		return false
	}
	if p.Role == entity.RoleAdmin {
		return true
	}
	return p.BranchID == "" || p.BranchID == branchID
}
