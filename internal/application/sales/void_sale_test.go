package sales_test

import (
	"context"
	"sort"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailm/retailm-api/internal/domain"
	"github.com/retailm/retailm-api/internal/domain/entity"
)

// Anular restaura la proyección por la vía compensatoria: una entrada con
// motivo correction por cada salida original, un asiento de reverso por el
// total y la cabecera marcada como voided. La venta original no se toca.
func TestVoidSale_RestauraProyeccion(t *testing.T) {
	env := newSaleTestEnv(t)
	producto := env.seedProduct("Jabón en barra", "4.50", 10)
	ctx := context.Background()

	out, err := env.coord.CreateSale(ctx, env.cashier, env.request("venta-anulable-01", line(producto, 4)))
	require.NoError(t, err)
	require.Equal(t, int64(6), env.stockQty(t, producto))

	voided, err := env.coord.VoidSale(ctx, env.manager, out.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusVoided, voided.Status)
	require.NotNil(t, voided.VoidedAt)

	// Proyección de vuelta a 10, y el log cuenta la historia completa:
	// +10 restock, -4 venta, +4 corrección.
	assert.Equal(t, int64(10), env.stockQty(t, producto))
	sum, err := env.db.movementRepo().SumByProduct(producto, env.branchID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), sum)

	movs, err := env.db.movementRepo().ListBySale(out.ID)
	require.NoError(t, err)
	require.Len(t, movs, 2, "salida original + entrada compensatoria")
	var comp *entity.StockMovement
	for _, m := range movs {
		if m.Reason == entity.ReasonCorrection {
			comp = m
		}
	}
	require.NotNil(t, comp, "debe existir el movimiento compensatorio")
	assert.Equal(t, entity.DirectionIn, comp.Direction)
	assert.Equal(t, int64(4), comp.Quantity)

	// Asientos: el original positivo y el reverso negativo; el balance neto de
	// la venta queda en cero.
	entries, err := env.db.ledgerRepo().GetBySale(out.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	net := decimal.Zero
	var refunds int
	for _, e := range entries {
		net = net.Add(e.Amount)
		if e.Category == entity.LedgerCategoryRefund {
			refunds++
			assert.True(t, e.Amount.Equal(out.Total.Neg()))
		}
	}
	assert.Equal(t, 1, refunds)
	assert.True(t, net.IsZero(), "venta + reverso deben sumar cero, suman %s", net)

	// La cabecera sigue ahí, solo cambió de estado.
	sale, err := env.db.saleRepo().GetByID(out.ID)
	require.NoError(t, err)
	require.NotNil(t, sale)
	assert.Equal(t, entity.SaleStatusVoided, sale.Status)
	assert.Equal(t, env.manager.UserID, sale.VoidedBy)
	assert.True(t, sale.Total.Equal(out.Total), "el total original no se altera")
}

// La segunda anulación de la misma venta se rechaza sin escribir nada más.
func TestVoidSale_DobleAnulacion(t *testing.T) {
	env := newSaleTestEnv(t)
	producto := env.seedProduct("Detergente 1L", "11.00", 10)
	ctx := context.Background()

	out, err := env.coord.CreateSale(ctx, env.cashier, env.request("venta-doble-anulacion", line(producto, 3)))
	require.NoError(t, err)

	_, err = env.coord.VoidSale(ctx, env.manager, out.ID)
	require.NoError(t, err)

	_, err = env.coord.VoidSale(ctx, env.manager, out.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyVoided)

	// Una sola compensación y un solo reverso: el stock no se infla.
	assert.Equal(t, int64(10), env.stockQty(t, producto))
	entries, err := env.db.ledgerRepo().GetBySale(out.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

// El cajero registra ventas pero no las anula; anular requiere manager o admin.
func TestVoidSale_CajeroNoPuedeAnular(t *testing.T) {
	env := newSaleTestEnv(t)
	producto := env.seedProduct("Galletas", "3.00", 10)
	ctx := context.Background()

	out, err := env.coord.CreateSale(ctx, env.cashier, env.request("venta-sin-permiso-1", line(producto, 2)))
	require.NoError(t, err)

	_, err = env.coord.VoidSale(ctx, env.cashier, out.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// La venta sigue completada y el stock descontado.
	assert.Equal(t, int64(8), env.stockQty(t, producto))
	sale, err := env.db.saleRepo().GetByID(out.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusCompleted, sale.Status)
}

// Crear y anular bloquean las filas de stock en el mismo orden (por ID de
// producto): dos transacciones que comparten productos nunca se esperan en
// cruz, sin importar el orden de las líneas ni el de los movimientos.
func TestVoidSale_OrdenDeBloqueoDeterminista(t *testing.T) {
	env := newSaleTestEnv(t)
	a := env.seedProduct("Producto A", "10.00", 10)
	b := env.seedProduct("Producto B", "10.00", 10)
	c := env.seedProduct("Producto C", "10.00", 10)
	ctx := context.Background()

	// Líneas a propósito en desorden.
	out, err := env.coord.CreateSale(ctx, env.cashier, env.request("venta-orden-locks-1",
		line(c, 1), line(a, 1), line(b, 1)))
	require.NoError(t, err)

	env.db.mu.Lock()
	createLocks := append([]string(nil), env.db.state.lockOrder...)
	env.db.mu.Unlock()
	require.Len(t, createLocks, 3)
	assert.True(t, sort.StringsAreSorted(createLocks),
		"la creación debe bloquear en orden de producto: %v", createLocks)

	_, err = env.coord.VoidSale(ctx, env.manager, out.ID)
	require.NoError(t, err)

	env.db.mu.Lock()
	voidLocks := append([]string(nil), env.db.state.lockOrder[len(createLocks):]...)
	env.db.mu.Unlock()
	require.Len(t, voidLocks, 3)
	assert.True(t, sort.StringsAreSorted(voidLocks),
		"la anulación debe bloquear en el mismo orden que la creación: %v", voidLocks)
	assert.Equal(t, createLocks, voidLocks)
}

// Anular una venta inexistente devuelve not found.
func TestVoidSale_VentaInexistente(t *testing.T) {
	env := newSaleTestEnv(t)
	ctx := context.Background()

	_, err := env.coord.VoidSale(ctx, env.manager, "00000000-0000-4000-8000-000000000099")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// GetSale devuelve la venta con sus líneas; staff puede consultarla.
func TestGetSale(t *testing.T) {
	env := newSaleTestEnv(t)
	producto := env.seedProduct("Pan integral", "6.00", 10)
	ctx := context.Background()

	out, err := env.coord.CreateSale(ctx, env.cashier, env.request("venta-consulta-001", line(producto, 2)))
	require.NoError(t, err)

	got, err := env.coord.GetSale(ctx, env.staff, out.ID)
	require.NoError(t, err)
	assert.Equal(t, out.ID, got.ID)
	assert.Len(t, got.Lines, 1)
	assert.True(t, out.Total.Equal(got.Total))

	_, err = env.coord.GetSale(ctx, env.staff, "00000000-0000-4000-8000-000000000001")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
