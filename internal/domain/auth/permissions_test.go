package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/retailm/retailm-api/internal/domain/auth"
	"github.com/retailm/retailm-api/internal/domain/entity"
)

func TestCan_TablaDeCapacidades(t *testing.T) {
	cases := []struct {
		name string
		role string
		op   auth.Operation
		want bool
	}{
		{"admin crea ventas", entity.RoleAdmin, auth.OpSaleCreate, true},
		{"admin anula ventas", entity.RoleAdmin, auth.OpSaleVoid, true},
		{"admin gestiona usuarios", entity.RoleAdmin, auth.OpUserManage, true},
		{"manager anula ventas", entity.RoleManager, auth.OpSaleVoid, true},
		{"manager escribe catálogo", entity.RoleManager, auth.OpCatalogWrite, true},
		{"manager no gestiona usuarios", entity.RoleManager, auth.OpUserManage, false},
		{"cashier crea ventas", entity.RoleCashier, auth.OpSaleCreate, true},
		{"cashier no anula ventas", entity.RoleCashier, auth.OpSaleVoid, false},
		{"cashier no escribe movimientos", entity.RoleCashier, auth.OpMovementWrite, false},
		{"cashier no escribe catálogo", entity.RoleCashier, auth.OpCatalogWrite, false},
		{"staff lee reportes", entity.RoleStaff, auth.OpReportRead, true},
		{"staff no crea ventas", entity.RoleStaff, auth.OpSaleCreate, false},
		{"staff no lee auditoría", entity.RoleStaff, auth.OpAuditRead, false},
		{"rol desconocido no hace nada", "superuser", auth.OpReportRead, false},
		{"rol vacío no hace nada", "", auth.OpSaleCreate, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, auth.Can(tc.role, tc.op))
		})
	}
}

func TestCanOnBranch_AlcancePorSucursal(t *testing.T) {
	const branchA = "branch-a"
	const branchB = "branch-b"

	// Cajero con sucursal fija: solo opera sobre la suya.
	cashier := auth.Principal{UserID: "u1", BranchID: branchA, Role: entity.RoleCashier}
	assert.True(t, auth.CanOnBranch(cashier, auth.OpSaleCreate, branchA))
	assert.False(t, auth.CanOnBranch(cashier, auth.OpSaleCreate, branchB),
		"cajero de una sucursal no debe vender en otra")

	// Manager sin sucursal fija: opera sobre cualquiera.
	floatingManager := auth.Principal{UserID: "u2", BranchID: "", Role: entity.RoleManager}
	assert.True(t, auth.CanOnBranch(floatingManager, auth.OpSaleVoid, branchA))
	assert.True(t, auth.CanOnBranch(floatingManager, auth.OpSaleVoid, branchB))

	// Admin con sucursal asignada: el rol admin ignora el alcance.
	admin := auth.Principal{UserID: "u3", BranchID: branchA, Role: entity.RoleAdmin}
	assert.True(t, auth.CanOnBranch(admin, auth.OpCatalogWrite, branchB))

	// La capacidad se evalúa antes que el alcance.
	staff := auth.Principal{UserID: "u4", BranchID: branchA, Role: entity.RoleStaff}
	assert.False(t, auth.CanOnBranch(staff, auth.OpSaleCreate, branchA))
}
