package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailm/retailm-api/internal/application/dto"
	"github.com/retailm/retailm-api/internal/domain"
	"github.com/retailm/retailm-api/internal/domain/auth"
	"github.com/retailm/retailm-api/internal/domain/entity"
	domaininv "github.com/retailm/retailm-api/internal/domain/inventory"
	"github.com/retailm/retailm-api/internal/domain/repository"
	"github.com/retailm/retailm-api/pkg/logger"
	"github.com/retailm/retailm-api/pkg/validator"
)

// UseCase registra movimientos de inventario fuera del flujo de venta
// (restock, ajustes, devoluciones, bajas) de forma transaccional, y ofrece el
// recálculo de la proyección desde el log de movimientos.
type UseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	branchRepo  repository.BranchRepository
	vendorRepo  repository.VendorRepository
	movRepo     repository.StockMovementRepository
	log         *logger.Logger
}

// NewUseCase construye el caso de uso de inventario.
func NewUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	branchRepo repository.BranchRepository,
	vendorRepo repository.VendorRepository,
	movRepo repository.StockMovementRepository,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		branchRepo:  branchRepo,
		vendorRepo:  vendorRepo,
		movRepo:     movRepo,
		log:         log,
	}
}

// RegisterMovement valida y aplica un movimiento manual.
// restock: entrada desde proveedor, UnitCost obligatorio; actualiza el costo
// promedio ponderado del producto y asienta el egreso en el libro contable.
// adjustment: delta con signo (positivo entrada, negativo salida).
// return: entrada por devolución de cliente. damage: baja por daño.
// Toda salida que dejaría la cantidad negativa se rechaza antes del commit.
func (uc *UseCase) RegisterMovement(ctx context.Context, p auth.Principal, in dto.RegisterMovementRequest) (*dto.MovementResponse, error) {
	if !auth.CanOnBranch(p, auth.OpMovementWrite, in.BranchID) {
		return nil, domain.ErrForbidden
	}
	if errs := validator.ValidateStruct(in); len(errs) > 0 {
		return nil, domain.ErrInvalidInput
	}

	direction, qty := entity.DirectionIn, in.Quantity
	switch in.Reason {
	case entity.ReasonRestock:
		if qty <= 0 || in.VendorID == "" || in.UnitCost == nil || in.UnitCost.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
	case entity.ReasonAdjustment:
		if qty == 0 {
			return nil, domain.ErrInvalidInput
		}
		if qty < 0 {
			direction, qty = entity.DirectionOut, -qty
		}
	case entity.ReasonReturn:
		if qty <= 0 {
			return nil, domain.ErrInvalidInput
		}
	case entity.ReasonDamage:
		if qty <= 0 {
			return nil, domain.ErrInvalidInput
		}
		direction = entity.DirectionOut
	default:
		return nil, domain.ErrInvalidInput
	}

	branch, err := uc.branchRepo.GetByID(in.BranchID)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, domain.ErrNotFound
	}
	product, err := uc.productRepo.GetByID(in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if product.BranchID != in.BranchID {
		return nil, domain.ErrInvalidInput
	}
	if in.Reason == entity.ReasonRestock {
		vendor, err := uc.vendorRepo.GetByID(in.VendorID)
		if err != nil {
			return nil, err
		}
		if vendor == nil {
			return nil, domain.ErrNotFound
		}
	}

	now := time.Now()
	mov := &entity.StockMovement{
		ID:        uuid.New().String(),
		ProductID: in.ProductID,
		BranchID:  in.BranchID,
		Direction: direction,
		Quantity:  qty,
		Reason:    in.Reason,
		VendorID:  in.VendorID,
		Reference: in.Reference,
		Note:      in.Note,
		CreatedBy: p.UserID,
		CreatedAt: now,
	}

	err = uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		ledgerRepo repository.LedgerRepository,
		auditRepo repository.AuditLogRepository,
	) error {
		// Bloquea la fila de la proyección (SELECT FOR UPDATE) para que la
		// secuencia verificar-luego-escribir sea atómica por producto.
		stock, err := stockRepo.GetForUpdate(in.ProductID, in.BranchID)
		if err != nil {
			return err
		}
		if direction == entity.DirectionOut && stock.Quantity < qty {
			return domain.ErrInsufficientStock
		}

		if in.Reason == entity.ReasonRestock {
			newCost := domaininv.WeightedAverageCost(stock.Quantity, product.Cost, qty, *in.UnitCost)
			if err := productRepo.UpdateCost(product.ID, newCost); err != nil {
				return err
			}
			// El costo de la reposición sale del libro contable de la sucursal.
			cost := decimal.NewFromInt(qty).Mul(*in.UnitCost)
			entry := &entity.LedgerEntry{
				ID:          uuid.New().String(),
				BranchID:    in.BranchID,
				Amount:      cost.Neg(),
				Category:    entity.LedgerCategoryAdjustment,
				Description: "reposición " + product.SKU,
				CreatedBy:   p.UserID,
				CreatedAt:   now,
			}
			if err := ledgerRepo.Create(entry); err != nil {
				return err
			}
		}

		if err := movRepo.Create(mov); err != nil {
			return err
		}
		if direction == entity.DirectionOut {
			stock.Quantity -= qty
		} else {
			stock.Quantity += qty
		}
		stock.UpdatedAt = now
		if err := stockRepo.Upsert(stock); err != nil {
			return err
		}

		return auditRepo.Create(&entity.AuditLogEntry{
			ID:         uuid.New().String(),
			UserID:     p.UserID,
			Action:     entity.AuditActionCreate,
			EntityName: "StockMovement",
			EntityID:   mov.ID,
			CreatedAt:  now,
		})
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("movement_id", mov.ID).
		Str("product_id", mov.ProductID).
		Str("reason", mov.Reason).
		Int64("signed_qty", mov.SignedQuantity()).
		Msg("movimiento registrado")

	return toMovementResponse(mov), nil
}

// RebuildProjection recomputa la proyección de un producto reproduciendo su
// historial completo de movimientos. Es el mecanismo de recuperación si el
// agregado se sospecha corrupto: el log es la fuente de verdad, la proyección
// solo un caché.
func (uc *UseCase) RebuildProjection(ctx context.Context, p auth.Principal, in dto.RebuildProjectionRequest) (*dto.RebuildProjectionResponse, error) {
	if !auth.CanOnBranch(p, auth.OpMovementWrite, in.BranchID) {
		return nil, domain.ErrForbidden
	}
	if errs := validator.ValidateStruct(in); len(errs) > 0 {
		return nil, domain.ErrInvalidInput
	}

	var rebuilt int64
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		_ repository.ProductRepository,
		_ repository.LedgerRepository,
		auditRepo repository.AuditLogRepository,
	) error {
		// Mantener la fila bloqueada mientras se suma el historial: ningún
		// movimiento concurrente puede colarse entre la suma y el upsert.
		stock, err := stockRepo.GetForUpdate(in.ProductID, in.BranchID)
		if err != nil {
			return err
		}
		sum, err := movRepo.SumByProduct(in.ProductID, in.BranchID)
		if err != nil {
			return err
		}
		rebuilt = sum
		stock.Quantity = sum
		stock.UpdatedAt = time.Now()
		if err := stockRepo.Upsert(stock); err != nil {
			return err
		}
		return auditRepo.Create(&entity.AuditLogEntry{
			ID:         uuid.New().String(),
			UserID:     p.UserID,
			Action:     entity.AuditActionUpdate,
			EntityName: "Stock",
			EntityID:   in.ProductID,
			CreatedAt:  time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("product_id", in.ProductID).
		Str("branch_id", in.BranchID).
		Int64("quantity", rebuilt).
		Msg("proyección recalculada")

	return &dto.RebuildProjectionResponse{
		ProductID: in.ProductID,
		BranchID:  in.BranchID,
		Quantity:  rebuilt,
	}, nil
}

// ListMovements lista movimientos de un producto (solo lectura, fuera de tx).
func (uc *UseCase) ListMovements(ctx context.Context, p auth.Principal, productID string, from, to *time.Time, page dto.PageRequest) ([]*dto.MovementResponse, error) {
	product, err := uc.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if !auth.CanOnBranch(p, auth.OpReportRead, product.BranchID) {
		return nil, domain.ErrForbidden
	}
	page.DefaultPage()
	movs, err := uc.movRepo.ListByProduct(productID, from, to, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, toMovementResponse(m))
	}
	return out, nil
}

func toMovementResponse(m *entity.StockMovement) *dto.MovementResponse {
	return &dto.MovementResponse{
		ID:        m.ID,
		ProductID: m.ProductID,
		BranchID:  m.BranchID,
		Direction: m.Direction,
		Quantity:  m.Quantity,
		Reason:    m.Reason,
		SaleID:    m.SaleID,
		VendorID:  m.VendorID,
		Reference: m.Reference,
		CreatedAt: m.CreatedAt,
	}
}
