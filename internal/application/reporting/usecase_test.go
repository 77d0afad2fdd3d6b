package reporting_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailm/retailm-api/internal/application/dto"
	"github.com/retailm/retailm-api/internal/application/reporting"
	"github.com/retailm/retailm-api/internal/domain"
	"github.com/retailm/retailm-api/internal/domain/auth"
	"github.com/retailm/retailm-api/internal/domain/entity"
	"github.com/retailm/retailm-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes de lectura. Replican la semántica del adaptador SQL sobre slices: los
// agregados de ventas solo cuentan ventas completadas, y el balance es la suma
// de asientos con timestamp <= at.
// ──────────────────────────────────────────────────────────────────────────────

type reportStore struct {
	branches map[string]*entity.Branch
	products []*entity.Product
	stocks   map[string]int64
	sales    []*entity.Sale
	ledger   []*entity.LedgerEntry
}

type fakeReportingRepo struct {
	store *reportStore
	// lastDays captura el argumento recibido por DailySales.
	lastDays int
}

func (r *fakeReportingRepo) LowStock(branchID string, threshold int64) ([]*repository.LowStockRow, error) {
	var out []*repository.LowStockRow
	for _, p := range r.store.products {
		if p.BranchID != branchID || !p.Active {
			continue
		}
		limit := threshold
		if threshold < 0 {
			limit = p.ReorderLevel
		}
		qty := r.store.stocks[p.ID]
		if qty <= limit {
			out = append(out, &repository.LowStockRow{
				ProductID:    p.ID,
				SKU:          p.SKU,
				Name:         p.Name,
				Quantity:     qty,
				ReorderLevel: p.ReorderLevel,
			})
		}
	}
	return out, nil
}

func (r *fakeReportingRepo) SalesTotals(branchID string, from, to time.Time) (*repository.SalesTotalsRow, error) {
	row := &repository.SalesTotalsRow{Total: decimal.Zero}
	for _, s := range r.store.sales {
		if s.BranchID != branchID || s.Status != entity.SaleStatusCompleted {
			continue
		}
		if s.CreatedAt.Before(from) || s.CreatedAt.After(to) {
			continue
		}
		row.Count++
		row.Total = row.Total.Add(s.Total)
	}
	return row, nil
}

func (r *fakeReportingRepo) DailySales(branchID string, days int) ([]*repository.DailySalesRow, error) {
	r.lastDays = days
	totals := make(map[string]decimal.Decimal)
	for _, s := range r.store.sales {
		if s.BranchID != branchID || s.Status != entity.SaleStatusCompleted {
			continue
		}
		day := s.CreatedAt.Truncate(24 * time.Hour)
		k := day.Format("2006-01-02")
		totals[k] = totals[k].Add(s.Total)
	}
	var out []*repository.DailySalesRow
	for k, total := range totals {
		day, _ := time.Parse("2006-01-02", k)
		out = append(out, &repository.DailySalesRow{Day: day, Total: total})
	}
	return out, nil
}

type fakeLedgerRepo struct{ store *reportStore }

func (r *fakeLedgerRepo) Create(e *entity.LedgerEntry) error {
	r.store.ledger = append(r.store.ledger, e)
	return nil
}

func (r *fakeLedgerRepo) GetByID(id string) (*entity.LedgerEntry, error) {
	for _, e := range r.store.ledger {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, nil
}

func (r *fakeLedgerRepo) ListByBranch(branchID string, from, to *time.Time, limit, offset int) ([]*entity.LedgerEntry, error) {
	var out []*entity.LedgerEntry
	for _, e := range r.store.ledger {
		if e.BranchID != branchID {
			continue
		}
		if from != nil && e.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && e.CreatedAt.After(*to) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *fakeLedgerRepo) BalanceByBranch(branchID string, at time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, e := range r.store.ledger {
		if e.BranchID == branchID && !e.CreatedAt.After(at) {
			sum = sum.Add(e.Amount)
		}
	}
	return sum, nil
}

func (r *fakeLedgerRepo) GetBySale(saleID string) ([]*entity.LedgerEntry, error) {
	var out []*entity.LedgerEntry
	for _, e := range r.store.ledger {
		if e.SaleID == saleID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeBranchRepo struct{ store *reportStore }

func (r *fakeBranchRepo) Create(b *entity.Branch) error { r.store.branches[b.ID] = b; return nil }
func (r *fakeBranchRepo) GetByID(id string) (*entity.Branch, error) {
	return r.store.branches[id], nil
}
func (r *fakeBranchRepo) Update(*entity.Branch) error             { return nil }
func (r *fakeBranchRepo) Delete(string) error                     { return nil }
func (r *fakeBranchRepo) List(int, int) ([]*entity.Branch, error) { return nil, nil }
func (r *fakeBranchRepo) HasDependents(string) (bool, error)      { return false, nil }

// fakePDFGen captura los argumentos con los que se pidió el PDF.
type fakePDFGen struct {
	branch  *entity.Branch
	entries []*entity.LedgerEntry
	balance decimal.Decimal
}

func (g *fakePDFGen) Generate(branch *entity.Branch, entries []*entity.LedgerEntry, balance decimal.Decimal) ([]byte, error) {
	g.branch = branch
	g.entries = entries
	g.balance = balance
	return []byte("%PDF-1.4 stub"), nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Entorno de test
// ──────────────────────────────────────────────────────────────────────────────

type reportTestEnv struct {
	store    *reportStore
	repo     *fakeReportingRepo
	pdf      *fakePDFGen
	uc       *reporting.UseCase
	branchID string
	staff    auth.Principal
	base     time.Time
}

// newReportTestEnv arma una sucursal con el estado que deja el coordinador de
// ventas tras dos ventas, una de ellas anulada: la venta completada (100) con
// su asiento, y la anulada (40) con su par venta + reverso que suma cero.
func newReportTestEnv(t *testing.T) *reportTestEnv {
	t.Helper()

	store := &reportStore{
		branches: make(map[string]*entity.Branch),
		stocks:   make(map[string]int64),
	}
	branchID := uuid.NewString()
	store.branches[branchID] = &entity.Branch{ID: branchID, Name: "Sucursal Centro"}

	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	completed := &entity.Sale{
		ID:        uuid.NewString(),
		BranchID:  branchID,
		InvoiceNo: "INV-1001",
		Total:     decimal.RequireFromString("100"),
		Status:    entity.SaleStatusCompleted,
		CreatedAt: base,
	}
	voided := &entity.Sale{
		ID:        uuid.NewString(),
		BranchID:  branchID,
		InvoiceNo: "INV-1002",
		Total:     decimal.RequireFromString("40"),
		Status:    entity.SaleStatusVoided,
		CreatedAt: base.Add(time.Hour),
	}
	store.sales = []*entity.Sale{completed, voided}
	store.ledger = []*entity.LedgerEntry{
		{
			ID: uuid.NewString(), BranchID: branchID, SaleID: completed.ID,
			Amount: completed.Total, Category: entity.LedgerCategorySale, CreatedAt: base,
		},
		{
			ID: uuid.NewString(), BranchID: branchID, SaleID: voided.ID,
			Amount: voided.Total, Category: entity.LedgerCategorySale, CreatedAt: base.Add(time.Hour),
		},
		{
			ID: uuid.NewString(), BranchID: branchID, SaleID: voided.ID,
			Amount: voided.Total.Neg(), Category: entity.LedgerCategoryRefund, CreatedAt: base.Add(2 * time.Hour),
		},
	}

	repo := &fakeReportingRepo{store: store}
	pdf := &fakePDFGen{}
	uc := reporting.NewUseCase(repo, &fakeLedgerRepo{store: store}, &fakeBranchRepo{store: store}, pdf)

	return &reportTestEnv{
		store:    store,
		repo:     repo,
		pdf:      pdf,
		uc:       uc,
		branchID: branchID,
		staff:    auth.Principal{UserID: uuid.NewString(), BranchID: branchID, Role: entity.RoleStaff},
		base:     base,
	}
}

func (e *reportTestEnv) addProduct(name string, qty, reorder int64, active bool) string {
	id := uuid.NewString()
	e.store.products = append(e.store.products, &entity.Product{
		ID:           id,
		BranchID:     e.branchID,
		SKU:          "SKU-" + name,
		Name:         name,
		ReorderLevel: reorder,
		Active:       active,
	})
	e.store.stocks[id] = qty
	return id
}

// ──────────────────────────────────────────────────────────────────────────────
// Agregados de ventas y balance
// ──────────────────────────────────────────────────────────────────────────────

// Los totales de venta cuentan solo ventas completadas: la anulada queda fuera
// del conteo y del total aunque su cabecera siga persistida.
func TestSalesTotals_ExcluyeAnuladas(t *testing.T) {
	env := newReportTestEnv(t)
	ctx := context.Background()

	out, err := env.uc.SalesTotals(ctx, env.staff, env.branchID, env.base.Add(-time.Hour), env.base.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), out.Count, "solo la venta completada cuenta")
	assert.True(t, decimal.RequireFromString("100").Equal(out.Total),
		"total esperado 100, obtenido %s", out.Total)
}

func TestSalesTotals_RangoInvalido(t *testing.T) {
	env := newReportTestEnv(t)

	_, err := env.uc.SalesTotals(context.Background(), env.staff, env.branchID,
		env.base, env.base.Add(-time.Hour))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// El balance de sucursal es la suma de asientos con timestamp <= at: el par
// venta + reverso de la anulada se cancela y solo queda la venta completada.
func TestBranchBalance_ParVentaReversoSumaCero(t *testing.T) {
	env := newReportTestEnv(t)
	ctx := context.Background()

	out, err := env.uc.BranchBalance(ctx, env.staff, env.branchID, env.base.Add(3*time.Hour))
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("100").Equal(out.Balance),
		"balance esperado 100, obtenido %s", out.Balance)

	// En un corte anterior al reverso, el asiento de la venta anulada todavía
	// cuenta: el balance es histórico, no retroactivo.
	mid, err := env.uc.BranchBalance(ctx, env.staff, env.branchID, env.base.Add(90*time.Minute))
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("140").Equal(mid.Balance))
}

// Para toda venta completada, el monto de su asiento es exactamente su total.
func TestLedger_AsientoIgualAlTotal(t *testing.T) {
	env := newReportTestEnv(t)
	ledger := &fakeLedgerRepo{store: env.store}

	for _, s := range env.store.sales {
		entries, err := ledger.GetBySale(s.ID)
		require.NoError(t, err)
		for _, e := range entries {
			if e.Category == entity.LedgerCategorySale {
				assert.True(t, e.Amount.Equal(s.Total),
					"asiento %s debe igualar el total de la venta %s", e.Amount, s.Total)
			}
		}
	}
}

func TestListLedger(t *testing.T) {
	env := newReportTestEnv(t)

	out, err := env.uc.ListLedger(context.Background(), env.staff, env.branchID, nil, nil, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, out, 3)
	net := decimal.Zero
	for _, e := range out {
		net = net.Add(e.Amount)
	}
	assert.True(t, decimal.RequireFromString("100").Equal(net))
}

// ──────────────────────────────────────────────────────────────────────────────
// Alerta de stock bajo
// ──────────────────────────────────────────────────────────────────────────────

func TestLowStockAlert(t *testing.T) {
	env := newReportTestEnv(t)
	ctx := context.Background()

	escaso := env.addProduct("Escaso", 2, 5, true)
	env.addProduct("Pleno", 50, 5, true)
	env.addProduct("Inactivo", 0, 5, false)

	// threshold < 0: cae al reorder_level propio de cada producto.
	out, err := env.uc.LowStockAlert(ctx, env.staff, env.branchID, -1)
	require.NoError(t, err)
	require.Len(t, out, 1, "solo el producto escaso y activo debe alertar")
	assert.Equal(t, escaso, out[0].ProductID)
	assert.Equal(t, int64(2), out[0].Quantity)

	// Umbral explícito alto: ambos productos activos quedan debajo.
	out, err = env.uc.LowStockAlert(ctx, env.staff, env.branchID, 100)
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ventas por día, PDF y autorización
// ──────────────────────────────────────────────────────────────────────────────

func TestDailySales(t *testing.T) {
	env := newReportTestEnv(t)

	out, err := env.uc.DailySales(context.Background(), env.staff, env.branchID, 0)
	require.NoError(t, err)
	assert.Equal(t, 30, env.repo.lastDays, "days <= 0 usa el valor por defecto")
	require.Len(t, out, 1, "la venta anulada no aporta día")
	assert.Equal(t, "2026-08-20", out[0].Day)
	assert.True(t, decimal.RequireFromString("100").Equal(out[0].Total))
}

func TestLedgerPDF(t *testing.T) {
	env := newReportTestEnv(t)

	raw, err := env.uc.LedgerPDF(context.Background(), env.staff, env.branchID)
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
	require.NotNil(t, env.pdf.branch)
	assert.Equal(t, env.branchID, env.pdf.branch.ID)
	assert.Len(t, env.pdf.entries, 3)
	assert.True(t, decimal.RequireFromString("100").Equal(env.pdf.balance))
}

func TestReportes_Autorizacion(t *testing.T) {
	env := newReportTestEnv(t)
	ctx := context.Background()

	// Staff de otra sucursal no lee reportes ajenos.
	ajeno := auth.Principal{UserID: uuid.NewString(), BranchID: uuid.NewString(), Role: entity.RoleStaff}
	_, err := env.uc.SalesTotals(ctx, ajeno, env.branchID, env.base, env.base.Add(time.Hour))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// Sucursal inexistente: el admin pasa el alcance pero no encuentra nada.
	admin := auth.Principal{UserID: uuid.NewString(), Role: entity.RoleAdmin}
	_, err = env.uc.BranchBalance(ctx, admin, uuid.NewString(), env.base)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
