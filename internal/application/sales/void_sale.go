package sales

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/retailm/retailm-api/internal/application/dto"
	"github.com/retailm/retailm-api/internal/domain"
	"github.com/retailm/retailm-api/internal/domain/auth"
	"github.com/retailm/retailm-api/internal/domain/entity"
	"github.com/retailm/retailm-api/internal/domain/repository"
)

// VoidSale anula una venta completada: escribe un movimiento de entrada
// compensatorio por cada salida original (motivo correction), un asiento de
// reverso por el total (categoría refund, monto negativo) y marca la cabecera
// como voided. La venta nunca se borra ni se edita en sitio, y solo puede
// anularse una vez.
func (c *Coordinator) VoidSale(ctx context.Context, p auth.Principal, saleID string) (*dto.SaleResponse, error) {
	if !auth.Can(p.Role, auth.OpSaleVoid) {
		return nil, domain.ErrForbidden
	}

	var sale *entity.Sale
	var items []*entity.SaleItem
	err := c.txRunner.RunSale(ctx, func(
		saleRepo repository.SaleRepository,
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		ledgerRepo repository.LedgerRepository,
		auditRepo repository.AuditLogRepository,
	) error {
		// Bloquear la cabecera: dos anulaciones concurrentes se serializan y
		// la segunda observa el estado voided.
		var err error
		sale, err = saleRepo.GetForUpdate(saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrNotFound
		}
		if !auth.CanOnBranch(p, auth.OpSaleVoid, sale.BranchID) {
			return domain.ErrForbidden
		}
		if sale.Status == entity.SaleStatusVoided {
			return domain.ErrAlreadyVoided
		}
		if sale.Status != entity.SaleStatusCompleted {
			return domain.ErrConflict
		}

		now := time.Now()

		// Compensar cada salida original con una entrada igual y opuesta.
		// Se bloquea en orden de producto, el mismo orden que usa la creación
		// de ventas: dos transacciones que comparten productos nunca se
		// esperan en cruz.
		movs, err := movRepo.ListBySale(saleID)
		if err != nil {
			return err
		}
		sort.Slice(movs, func(i, j int) bool { return movs[i].ProductID < movs[j].ProductID })
		for _, m := range movs {
			if m.Direction != entity.DirectionOut || m.Reason != entity.ReasonSale {
				continue
			}
			comp := &entity.StockMovement{
				ID:        uuid.New().String(),
				ProductID: m.ProductID,
				BranchID:  m.BranchID,
				Direction: entity.DirectionIn,
				Quantity:  m.Quantity,
				Reason:    entity.ReasonCorrection,
				SaleID:    sale.ID,
				Reference: sale.InvoiceNo,
				CreatedBy: p.UserID,
				CreatedAt: now,
			}
			if err := movRepo.Create(comp); err != nil {
				return err
			}
			stock, err := stockRepo.GetForUpdate(m.ProductID, m.BranchID)
			if err != nil {
				return err
			}
			stock.Quantity += m.Quantity
			stock.UpdatedAt = now
			if err := stockRepo.Upsert(stock); err != nil {
				return err
			}
		}

		// Reverso contable por el total original.
		entry := &entity.LedgerEntry{
			ID:          uuid.New().String(),
			BranchID:    sale.BranchID,
			Amount:      sale.Total.Neg(),
			Category:    entity.LedgerCategoryRefund,
			Description: "anulación " + sale.InvoiceNo,
			SaleID:      sale.ID,
			CreatedBy:   p.UserID,
			CreatedAt:   now,
		}
		if err := ledgerRepo.Create(entry); err != nil {
			return err
		}

		sale.Status = entity.SaleStatusVoided
		sale.VoidedAt = &now
		sale.VoidedBy = p.UserID
		if err := saleRepo.SetVoided(sale); err != nil {
			return err
		}

		items, err = saleRepo.GetItems(saleID)
		if err != nil {
			return err
		}

		return appendAudit(auditRepo, p.UserID, entity.AuditActionVoid, "Sale", sale.ID, map[string]any{
			"invoice_no": sale.InvoiceNo,
			"total":      sale.Total.String(),
		}, now)
	})
	if err != nil {
		return nil, err
	}

	c.log.Info().
		Str("sale_id", sale.ID).
		Str("branch_id", sale.BranchID).
		Msg("venta anulada")

	return toSaleResponse(sale, items, false), nil
}
