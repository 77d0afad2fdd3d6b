package sales

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailm/retailm-api/internal/application/dto"
	"github.com/retailm/retailm-api/internal/domain"
	"github.com/retailm/retailm-api/internal/domain/auth"
	"github.com/retailm/retailm-api/internal/domain/entity"
	"github.com/retailm/retailm-api/internal/domain/repository"
	"github.com/retailm/retailm-api/pkg/logger"
	"github.com/retailm/retailm-api/pkg/validator"
)

// Config parámetros del coordinador.
type Config struct {
	IdempotencyTTL time.Duration // vigencia de una clave de idempotencia
}

// Coordinator orquesta una venta como unidad atómica: valida disponibilidad
// contra la proyección de stock, escribe la cabecera, un movimiento de salida
// por línea y un asiento contable por el total, todo en una transacción con
// bloqueo de fila (SELECT FOR UPDATE) por producto.
type Coordinator struct {
	txRunner    TxRunner
	idemStore   IdempotencyStore
	branchRepo  repository.BranchRepository
	productRepo repository.ProductRepository
	saleRepo    repository.SaleRepository
	log         *logger.Logger
	cfg         Config
}

// NewCoordinator construye el coordinador de ventas.
func NewCoordinator(
	txRunner TxRunner,
	idemStore IdempotencyStore,
	branchRepo repository.BranchRepository,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	log *logger.Logger,
	cfg Config,
) *Coordinator {
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = 24 * time.Hour
	}
	return &Coordinator{
		txRunner:    txRunner,
		idemStore:   idemStore,
		branchRepo:  branchRepo,
		productRepo: productRepo,
		saleRepo:    saleRepo,
		log:         log,
		cfg:         cfg,
	}
}

// saleLine línea resuelta: producto validado y precio efectivo.
type saleLine struct {
	product   *entity.Product
	quantity  int64
	unitPrice decimal.Decimal
	total     decimal.Decimal
}

// CreateSale ejecuta el flujo completo de una venta.
// O se confirma un estado consistente (cabecera + movimientos + asiento +
// proyección) o no se confirma nada; ningún lector concurrente puede observar
// una venta a medio aplicar.
func (c *Coordinator) CreateSale(ctx context.Context, p auth.Principal, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if !auth.CanOnBranch(p, auth.OpSaleCreate, in.BranchID) {
		return nil, domain.ErrForbidden
	}
	if errs := validator.ValidateStruct(in); len(errs) > 0 {
		return nil, domain.ErrInvalidInput
	}
	if !entity.ValidPaymentMethod(in.PaymentMethod) {
		return nil, domain.ErrInvalidInput
	}

	branch, err := c.branchRepo.GetByID(in.BranchID)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, domain.ErrNotFound
	}

	// Resolver productos y precios (fuera de la tx, solo lectura).
	// Líneas duplicadas del mismo producto se rechazan: el cliente debe
	// consolidarlas en una sola.
	lines := make([]*saleLine, 0, len(in.Lines))
	seen := make(map[string]bool, len(in.Lines))
	for _, l := range in.Lines {
		if l.Quantity <= 0 || seen[l.ProductID] {
			return nil, domain.ErrInvalidInput
		}
		seen[l.ProductID] = true
		product, err := c.productRepo.GetByID(l.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil || !product.Active {
			return nil, domain.ErrNotFound
		}
		if product.BranchID != in.BranchID {
			return nil, domain.ErrInvalidInput
		}
		price := product.Price
		if l.UnitPrice != nil {
			if l.UnitPrice.LessThan(decimal.Zero) {
				return nil, domain.ErrInvalidInput
			}
			price = *l.UnitPrice
		}
		qty := decimal.NewFromInt(l.Quantity)
		lines = append(lines, &saleLine{
			product:   product,
			quantity:  l.Quantity,
			unitPrice: price,
			total:     qty.Mul(price),
		})
	}

	// Clave de idempotencia: si ya se aplicó una venta con esta clave se
	// devuelve tal cual (reintento tras fallo ambiguo); si está en curso se
	// rechaza el duplicado concurrente.
	if replay, err := c.replayIfCompleted(ctx, in.IdempotencyKey); replay != nil || err != nil {
		return replay, err
	}
	ok, err := c.idemStore.Reserve(ctx, in.IdempotencyKey, c.cfg.IdempotencyTTL)
	if err != nil {
		return nil, fmt.Errorf("reservar clave de idempotencia: %w", err)
	}
	if !ok {
		// Perdimos la carrera: otra petición reservó primero. Si ya terminó,
		// devolvemos su resultado; si no, el caller debe esperar y reintentar.
		if replay, err := c.replayIfCompleted(ctx, in.IdempotencyKey); replay != nil || err != nil {
			return replay, err
		}
		return nil, domain.ErrIdempotencyInFlight
	}

	now := time.Now()
	sale := &entity.Sale{
		ID:            uuid.New().String(),
		BranchID:      in.BranchID,
		InvoiceNo:     fmt.Sprintf("INV-%d", now.UnixNano()),
		CustomerName:  in.CustomerName,
		CustomerPhone: in.CustomerPhone,
		PaymentMethod: in.PaymentMethod,
		Status:        entity.SaleStatusCompleted,
		Notes:         in.Notes,
		CreatedBy:     p.UserID,
		CreatedAt:     now,
	}
	for _, l := range lines {
		sale.Total = sale.Total.Add(l.total)
	}

	var items []*entity.SaleItem
	err = c.txRunner.RunSale(ctx, func(
		saleRepo repository.SaleRepository,
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		ledgerRepo repository.LedgerRepository,
		auditRepo repository.AuditLogRepository,
	) error {
		// 1) Bloquear las filas de stock en orden determinista (evita
		// deadlocks entre ventas que comparten productos) y validar TODAS las
		// líneas antes de escribir nada: todo-o-nada, sin commit parcial.
		ordered := make([]*saleLine, len(lines))
		copy(ordered, lines)
		sort.Slice(ordered, func(i, j int) bool { return ordered[i].product.ID < ordered[j].product.ID })

		stocks := make(map[string]*entity.Stock, len(ordered))
		for _, l := range ordered {
			stock, err := stockRepo.GetForUpdate(l.product.ID, in.BranchID)
			if err != nil {
				return err
			}
			if stock.Quantity < l.quantity {
				return domain.ErrInsufficientStock
			}
			stocks[l.product.ID] = stock
		}

		// 2) Cabecera y líneas.
		if err := saleRepo.Create(sale); err != nil {
			return err
		}
		for _, l := range lines {
			item := &entity.SaleItem{
				ID:        uuid.New().String(),
				SaleID:    sale.ID,
				ProductID: l.product.ID,
				Quantity:  l.quantity,
				UnitPrice: l.unitPrice,
				Total:     l.total,
			}
			if err := saleRepo.CreateItem(item); err != nil {
				return err
			}
			items = append(items, item)
		}

		// 3) Un movimiento de salida por línea, referenciando la venta, y la
		// proyección actualizada en la misma tx (lectura-tras-escritura).
		for _, l := range lines {
			mov := &entity.StockMovement{
				ID:        uuid.New().String(),
				ProductID: l.product.ID,
				BranchID:  in.BranchID,
				Direction: entity.DirectionOut,
				Quantity:  l.quantity,
				Reason:    entity.ReasonSale,
				SaleID:    sale.ID,
				Reference: sale.InvoiceNo,
				CreatedBy: p.UserID,
				CreatedAt: now,
			}
			if err := movRepo.Create(mov); err != nil {
				return err
			}
			stock := stocks[l.product.ID]
			stock.Quantity -= l.quantity
			stock.UpdatedAt = now
			if err := stockRepo.Upsert(stock); err != nil {
				return err
			}
		}

		// 4) Asiento contable por el total.
		entry := &entity.LedgerEntry{
			ID:          uuid.New().String(),
			BranchID:    in.BranchID,
			Amount:      sale.Total,
			Category:    entity.LedgerCategorySale,
			Description: "venta " + sale.InvoiceNo,
			SaleID:      sale.ID,
			CreatedBy:   p.UserID,
			CreatedAt:   now,
		}
		if err := ledgerRepo.Create(entry); err != nil {
			return err
		}

		// 5) Bitácora.
		return appendAudit(auditRepo, p.UserID, entity.AuditActionCreate, "Sale", sale.ID, map[string]any{
			"invoice_no": sale.InvoiceNo,
			"total":      sale.Total.String(),
			"lines":      len(lines),
		}, now)
	})
	if err != nil {
		// Liberar la clave habilita el reintento con la misma clave; la tx ya
		// hizo rollback, no quedó nada aplicado.
		if relErr := c.idemStore.Release(ctx, in.IdempotencyKey); relErr != nil {
			c.log.Warn().Err(relErr).Str("key", in.IdempotencyKey).Msg("no se pudo liberar la clave de idempotencia")
		}
		return nil, err
	}

	if err := c.idemStore.Complete(ctx, in.IdempotencyKey, sale.ID); err != nil {
		// La venta quedó confirmada; solo se pierde el replay de la clave.
		c.log.Warn().Err(err).Str("sale_id", sale.ID).Msg("no se pudo completar la clave de idempotencia")
	}

	c.log.Info().
		Str("sale_id", sale.ID).
		Str("branch_id", sale.BranchID).
		Str("total", sale.Total.String()).
		Int("lines", len(lines)).
		Msg("venta registrada")

	return toSaleResponse(sale, items, false), nil
}

// GetSale devuelve una venta con sus líneas.
func (c *Coordinator) GetSale(ctx context.Context, p auth.Principal, id string) (*dto.SaleResponse, error) {
	sale, err := c.saleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	if !auth.CanOnBranch(p, auth.OpReportRead, sale.BranchID) {
		return nil, domain.ErrForbidden
	}
	items, err := c.saleRepo.GetItems(id)
	if err != nil {
		return nil, err
	}
	return toSaleResponse(sale, items, false), nil
}

// replayIfCompleted devuelve la venta ya aplicada para la clave, o nil si la
// clave no tiene resultado todavía.
func (c *Coordinator) replayIfCompleted(ctx context.Context, key string) (*dto.SaleResponse, error) {
	saleID, pending, err := c.idemStore.Lookup(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("consultar clave de idempotencia: %w", err)
	}
	if saleID == "" {
		if pending {
			return nil, domain.ErrIdempotencyInFlight
		}
		return nil, nil
	}
	sale, err := c.saleRepo.GetByID(saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		// Clave completada apuntando a una venta inexistente: estado corrupto
		// del almacén de claves, no de la BD.
		return nil, fmt.Errorf("clave de idempotencia apunta a venta inexistente %s", saleID)
	}
	items, err := c.saleRepo.GetItems(saleID)
	if err != nil {
		return nil, err
	}
	c.log.Info().Str("sale_id", saleID).Str("key", key).Msg("venta devuelta por idempotencia")
	return toSaleResponse(sale, items, true), nil
}

func appendAudit(auditRepo repository.AuditLogRepository, userID, action, entityName, entityID string, changes map[string]any, now time.Time) error {
	raw, err := json.Marshal(changes)
	if err != nil {
		return fmt.Errorf("serializar cambios de auditoría: %w", err)
	}
	return auditRepo.Create(&entity.AuditLogEntry{
		ID:         uuid.New().String(),
		UserID:     userID,
		Action:     action,
		EntityName: entityName,
		EntityID:   entityID,
		Changes:    raw,
		CreatedAt:  now,
	})
}

func toSaleResponse(sale *entity.Sale, items []*entity.SaleItem, replayed bool) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:            sale.ID,
		BranchID:      sale.BranchID,
		InvoiceNo:     sale.InvoiceNo,
		CustomerName:  sale.CustomerName,
		PaymentMethod: sale.PaymentMethod,
		Total:         sale.Total,
		Status:        sale.Status,
		CreatedAt:     sale.CreatedAt,
		VoidedAt:      sale.VoidedAt,
		Replayed:      replayed,
		Lines:         make([]dto.SaleLineResponse, 0, len(items)),
	}
	for _, it := range items {
		resp.Lines = append(resp.Lines, dto.SaleLineResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Total:     it.Total,
		})
	}
	return resp
}
