package sales_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/retailm/retailm-api/internal/domain"
	"github.com/retailm/retailm-api/internal/domain/entity"
	"github.com/retailm/retailm-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Base de datos en memoria para los tests del coordinador.
//
// Emula las dos propiedades del adaptador real que importan aquí:
//   - Atomicidad: RunSale trabaja sobre una copia del estado y solo la publica
//     si fn devuelve nil; un error descarta todo (rollback).
//   - Serialización: un mutex global hace las veces de los bloqueos de fila,
//     de modo que dos ventas concurrentes nunca intercalan su verificar-luego-
//     escribir.
// ──────────────────────────────────────────────────────────────────────────────

func stockKey(productID, branchID string) string { return productID + "|" + branchID }

type memState struct {
	branches  map[string]*entity.Branch
	vendors   map[string]*entity.Vendor
	products  map[string]*entity.Product
	sales     map[string]*entity.Sale
	items     map[string][]*entity.SaleItem
	movements []*entity.StockMovement
	ledger    []*entity.LedgerEntry
	stocks    map[string]*entity.Stock
	audit     []*entity.AuditLogEntry
	// lockOrder registra cada GetForUpdate de stock en secuencia; permite
	// verificar que todas las transacciones bloquean en el mismo orden.
	lockOrder []string
}

func newMemState() *memState {
	return &memState{
		branches: make(map[string]*entity.Branch),
		vendors:  make(map[string]*entity.Vendor),
		products: make(map[string]*entity.Product),
		sales:    make(map[string]*entity.Sale),
		items:    make(map[string][]*entity.SaleItem),
		stocks:   make(map[string]*entity.Stock),
	}
}

// clone copia el estado para la transacción. Las filas nunca se mutan en sitio
// (los repos guardan y devuelven copias), así que basta con copiar mapas y
// cabeceras de slice.
func (s *memState) clone() *memState {
	c := newMemState()
	for k, v := range s.branches {
		c.branches[k] = v
	}
	for k, v := range s.vendors {
		c.vendors[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.sales {
		c.sales[k] = v
	}
	for k, v := range s.items {
		c.items[k] = append([]*entity.SaleItem(nil), v...)
	}
	for k, v := range s.stocks {
		c.stocks[k] = v
	}
	c.movements = append([]*entity.StockMovement(nil), s.movements...)
	c.ledger = append([]*entity.LedgerEntry(nil), s.ledger...)
	c.audit = append([]*entity.AuditLogEntry(nil), s.audit...)
	c.lockOrder = append([]string(nil), s.lockOrder...)
	return c
}

type memDB struct {
	mu    sync.Mutex
	state *memState
}

func newMemDB() *memDB { return &memDB{state: newMemState()} }

// RunSale implementa sales.TxRunner sobre el estado en memoria.
func (db *memDB) RunSale(_ context.Context, fn func(
	saleRepo repository.SaleRepository,
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
	ledgerRepo repository.LedgerRepository,
	auditRepo repository.AuditLogRepository,
) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	draft := db.state.clone()
	err := fn(
		&memSaleRepo{memAccess{st: draft}},
		&memMovementRepo{memAccess{st: draft}},
		&memStockRepo{memAccess{st: draft}},
		&memLedgerRepo{memAccess{st: draft}},
		&memAuditRepo{memAccess{st: draft}},
	)
	if err != nil {
		return err
	}
	db.state = draft
	return nil
}

// memAccess resuelve sobre qué estado opera un repo: el borrador de una tx en
// curso (st != nil, lock ya tomado) o el estado confirmado bajo lock.
type memAccess struct {
	db *memDB
	st *memState
}

func (a memAccess) with(f func(st *memState) error) error {
	if a.st != nil {
		return f(a.st)
	}
	a.db.mu.Lock()
	defer a.db.mu.Unlock()
	return f(a.db.state)
}

// Repos atados al estado confirmado, para los puertos que el coordinador usa
// fuera de la transacción.
func (db *memDB) branchRepo() repository.BranchRepository {
	return &memBranchRepo{memAccess{db: db}}
}
func (db *memDB) productRepo() repository.ProductRepository {
	return &memProductRepo{memAccess{db: db}}
}
func (db *memDB) saleRepo() repository.SaleRepository {
	return &memSaleRepo{memAccess{db: db}}
}
func (db *memDB) movementRepo() repository.StockMovementRepository {
	return &memMovementRepo{memAccess{db: db}}
}
func (db *memDB) ledgerRepo() repository.LedgerRepository {
	return &memLedgerRepo{memAccess{db: db}}
}

// ───── sucursales ─────

type memBranchRepo struct{ memAccess }

func (r *memBranchRepo) Create(b *entity.Branch) error {
	return r.with(func(st *memState) error {
		cp := *b
		st.branches[b.ID] = &cp
		return nil
	})
}

func (r *memBranchRepo) GetByID(id string) (*entity.Branch, error) {
	var out *entity.Branch
	err := r.with(func(st *memState) error {
		if b, ok := st.branches[id]; ok {
			cp := *b
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *memBranchRepo) Update(b *entity.Branch) error {
	return r.with(func(st *memState) error {
		if _, ok := st.branches[b.ID]; !ok {
			return domain.ErrNotFound
		}
		cp := *b
		st.branches[b.ID] = &cp
		return nil
	})
}

func (r *memBranchRepo) Delete(id string) error {
	return r.with(func(st *memState) error {
		if _, ok := st.branches[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.branches, id)
		return nil
	})
}

func (r *memBranchRepo) List(limit, offset int) ([]*entity.Branch, error) {
	var out []*entity.Branch
	err := r.with(func(st *memState) error {
		for _, b := range st.branches {
			cp := *b
			out = append(out, &cp)
		}
		return nil
	})
	return out, err
}

func (r *memBranchRepo) HasDependents(id string) (bool, error) {
	var has bool
	err := r.with(func(st *memState) error {
		for _, p := range st.products {
			if p.BranchID == id {
				has = true
				return nil
			}
		}
		for _, s := range st.sales {
			if s.BranchID == id {
				has = true
				return nil
			}
		}
		return nil
	})
	return has, err
}

// ───── productos ─────

type memProductRepo struct{ memAccess }

func (r *memProductRepo) Create(p *entity.Product) error {
	return r.with(func(st *memState) error {
		cp := *p
		st.products[p.ID] = &cp
		return nil
	})
}

func (r *memProductRepo) GetByID(id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.with(func(st *memState) error {
		if p, ok := st.products[id]; ok {
			cp := *p
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *memProductRepo) GetBySKU(branchID, sku string) (*entity.Product, error) {
	var out *entity.Product
	err := r.with(func(st *memState) error {
		for _, p := range st.products {
			if p.BranchID == branchID && p.SKU == sku {
				cp := *p
				out = &cp
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *memProductRepo) Update(p *entity.Product) error {
	return r.with(func(st *memState) error {
		if _, ok := st.products[p.ID]; !ok {
			return domain.ErrNotFound
		}
		cp := *p
		st.products[p.ID] = &cp
		return nil
	})
}

func (r *memProductRepo) UpdateCost(id string, cost decimal.Decimal) error {
	return r.with(func(st *memState) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		cp := *p
		cp.Cost = cost
		st.products[id] = &cp
		return nil
	})
}

func (r *memProductRepo) ListByBranch(branchID string, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.with(func(st *memState) error {
		for _, p := range st.products {
			if p.BranchID == branchID {
				cp := *p
				out = append(out, &cp)
			}
		}
		return nil
	})
	return out, err
}

// ───── ventas ─────

type memSaleRepo struct{ memAccess }

func (r *memSaleRepo) Create(s *entity.Sale) error {
	return r.with(func(st *memState) error {
		cp := *s
		st.sales[s.ID] = &cp
		return nil
	})
}

func (r *memSaleRepo) CreateItem(it *entity.SaleItem) error {
	return r.with(func(st *memState) error {
		cp := *it
		st.items[it.SaleID] = append(st.items[it.SaleID], &cp)
		return nil
	})
}

func (r *memSaleRepo) GetByID(id string) (*entity.Sale, error) {
	var out *entity.Sale
	err := r.with(func(st *memState) error {
		if s, ok := st.sales[id]; ok {
			cp := *s
			out = &cp
		}
		return nil
	})
	return out, err
}

// GetForUpdate: la serialización la aporta el mutex global del memDB.
func (r *memSaleRepo) GetForUpdate(id string) (*entity.Sale, error) {
	return r.GetByID(id)
}

func (r *memSaleRepo) GetItems(saleID string) ([]*entity.SaleItem, error) {
	var out []*entity.SaleItem
	err := r.with(func(st *memState) error {
		for _, it := range st.items[saleID] {
			cp := *it
			out = append(out, &cp)
		}
		return nil
	})
	return out, err
}

func (r *memSaleRepo) SetVoided(s *entity.Sale) error {
	return r.with(func(st *memState) error {
		cur, ok := st.sales[s.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if cur.Status != entity.SaleStatusCompleted {
			return errors.New("la venta no está en estado completed")
		}
		cp := *s
		st.sales[s.ID] = &cp
		return nil
	})
}

func (r *memSaleRepo) ListByBranch(branchID string, from, to *time.Time, limit, offset int) ([]*entity.Sale, error) {
	var out []*entity.Sale
	err := r.with(func(st *memState) error {
		for _, s := range st.sales {
			if s.BranchID == branchID {
				cp := *s
				out = append(out, &cp)
			}
		}
		return nil
	})
	return out, err
}

// ───── movimientos de stock ─────

type memMovementRepo struct{ memAccess }

func (r *memMovementRepo) Create(m *entity.StockMovement) error {
	return r.with(func(st *memState) error {
		cp := *m
		st.movements = append(st.movements, &cp)
		return nil
	})
}

func (r *memMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	var out *entity.StockMovement
	err := r.with(func(st *memState) error {
		for _, m := range st.movements {
			if m.ID == id {
				cp := *m
				out = &cp
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *memMovementRepo) ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	return r.list(func(m *entity.StockMovement) bool { return m.ProductID == productID }, from, to)
}

func (r *memMovementRepo) ListByBranch(branchID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	return r.list(func(m *entity.StockMovement) bool { return m.BranchID == branchID }, from, to)
}

func (r *memMovementRepo) ListBySale(saleID string) ([]*entity.StockMovement, error) {
	return r.list(func(m *entity.StockMovement) bool { return m.SaleID == saleID }, nil, nil)
}

func (r *memMovementRepo) list(match func(*entity.StockMovement) bool, from, to *time.Time) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.with(func(st *memState) error {
		for _, m := range st.movements {
			if !match(m) {
				continue
			}
			if from != nil && m.CreatedAt.Before(*from) {
				continue
			}
			if to != nil && m.CreatedAt.After(*to) {
				continue
			}
			cp := *m
			out = append(out, &cp)
		}
		return nil
	})
	return out, err
}

func (r *memMovementRepo) SumByProduct(productID, branchID string) (int64, error) {
	var sum int64
	err := r.with(func(st *memState) error {
		for _, m := range st.movements {
			if m.ProductID == productID && m.BranchID == branchID {
				sum += m.SignedQuantity()
			}
		}
		return nil
	})
	return sum, err
}

// ───── proyección de stock ─────

type memStockRepo struct{ memAccess }

func (r *memStockRepo) Get(productID, branchID string) (*entity.Stock, error) {
	var out *entity.Stock
	err := r.with(func(st *memState) error {
		if s, ok := st.stocks[stockKey(productID, branchID)]; ok {
			cp := *s
			out = &cp
			return nil
		}
		out = &entity.Stock{ProductID: productID, BranchID: branchID}
		return nil
	})
	return out, err
}

func (r *memStockRepo) Upsert(s *entity.Stock) error {
	return r.with(func(st *memState) error {
		cp := *s
		st.stocks[stockKey(s.ProductID, s.BranchID)] = &cp
		return nil
	})
}

// GetForUpdate asegura la fila igual que el adaptador real (insert-si-falta) y
// la devuelve; el lock de fila lo representa el mutex del memDB.
func (r *memStockRepo) GetForUpdate(productID, branchID string) (*entity.Stock, error) {
	var out *entity.Stock
	err := r.with(func(st *memState) error {
		st.lockOrder = append(st.lockOrder, productID)
		k := stockKey(productID, branchID)
		s, ok := st.stocks[k]
		if !ok {
			s = &entity.Stock{ProductID: productID, BranchID: branchID}
			st.stocks[k] = s
		}
		cp := *s
		out = &cp
		return nil
	})
	return out, err
}

// ───── libro contable ─────

type memLedgerRepo struct{ memAccess }

func (r *memLedgerRepo) Create(e *entity.LedgerEntry) error {
	return r.with(func(st *memState) error {
		cp := *e
		st.ledger = append(st.ledger, &cp)
		return nil
	})
}

func (r *memLedgerRepo) GetByID(id string) (*entity.LedgerEntry, error) {
	var out *entity.LedgerEntry
	err := r.with(func(st *memState) error {
		for _, e := range st.ledger {
			if e.ID == id {
				cp := *e
				out = &cp
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *memLedgerRepo) ListByBranch(branchID string, from, to *time.Time, limit, offset int) ([]*entity.LedgerEntry, error) {
	var out []*entity.LedgerEntry
	err := r.with(func(st *memState) error {
		for _, e := range st.ledger {
			if e.BranchID != branchID {
				continue
			}
			if from != nil && e.CreatedAt.Before(*from) {
				continue
			}
			if to != nil && e.CreatedAt.After(*to) {
				continue
			}
			cp := *e
			out = append(out, &cp)
		}
		return nil
	})
	return out, err
}

func (r *memLedgerRepo) BalanceByBranch(branchID string, at time.Time) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.with(func(st *memState) error {
		for _, e := range st.ledger {
			if e.BranchID == branchID && !e.CreatedAt.After(at) {
				sum = sum.Add(e.Amount)
			}
		}
		return nil
	})
	return sum, err
}

func (r *memLedgerRepo) GetBySale(saleID string) ([]*entity.LedgerEntry, error) {
	var out []*entity.LedgerEntry
	err := r.with(func(st *memState) error {
		for _, e := range st.ledger {
			if e.SaleID == saleID {
				cp := *e
				out = append(out, &cp)
			}
		}
		return nil
	})
	return out, err
}

// ───── bitácora ─────

type memAuditRepo struct{ memAccess }

func (r *memAuditRepo) Create(e *entity.AuditLogEntry) error {
	return r.with(func(st *memState) error {
		cp := *e
		st.audit = append(st.audit, &cp)
		return nil
	})
}

func (r *memAuditRepo) List(limit, offset int) ([]*entity.AuditLogEntry, error) {
	var out []*entity.AuditLogEntry
	err := r.with(func(st *memState) error {
		for _, e := range st.audit {
			cp := *e
			out = append(out, &cp)
		}
		return nil
	})
	return out, err
}

func (r *memAuditRepo) ListByEntity(entityName, entityID string, limit, offset int) ([]*entity.AuditLogEntry, error) {
	var out []*entity.AuditLogEntry
	err := r.with(func(st *memState) error {
		for _, e := range st.audit {
			if e.EntityName == entityName && e.EntityID == entityID {
				cp := *e
				out = append(out, &cp)
			}
		}
		return nil
	})
	return out, err
}

// ───── almacén de idempotencia ─────

// memIdemStore implementa sales.IdempotencyStore en memoria.
// Valor vacío = clave reservada sin resultado todavía.
type memIdemStore struct {
	mu      sync.Mutex
	entries map[string]string
}

func newMemIdemStore() *memIdemStore {
	return &memIdemStore{entries: make(map[string]string)}
}

func (s *memIdemStore) Reserve(_ context.Context, key string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[key]; ok {
		return false, nil
	}
	s.entries[key] = ""
	return true, nil
}

func (s *memIdemStore) Lookup(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.entries[key]
	if !ok {
		return "", false, nil
	}
	if v == "" {
		return "", true, nil
	}
	return v, false, nil
}

func (s *memIdemStore) Complete(_ context.Context, key, saleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = saleID
	return nil
}

func (s *memIdemStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
