package reporting

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/retailm/retailm-api/internal/application/dto"
	"github.com/retailm/retailm-api/internal/domain"
	"github.com/retailm/retailm-api/internal/domain/auth"
	"github.com/retailm/retailm-api/internal/domain/entity"
	"github.com/retailm/retailm-api/internal/domain/repository"
)

// LedgerPDFGenerator genera la representación PDF del libro contable.
type LedgerPDFGenerator interface {
	Generate(branch *entity.Branch, entries []*entity.LedgerEntry, balance decimal.Decimal) ([]byte, error)
}

// UseCase lector de reportes: consultas de solo lectura sobre proyecciones y
// filas confirmadas. Nunca muta estado y nunca observa ventas a medio aplicar
// (las transacciones del coordinador confirman todo o nada).
type UseCase struct {
	reportRepo repository.ReportingRepository
	ledgerRepo repository.LedgerRepository
	branchRepo repository.BranchRepository
	pdfGen     LedgerPDFGenerator
}

// NewUseCase construye el lector de reportes.
func NewUseCase(
	reportRepo repository.ReportingRepository,
	ledgerRepo repository.LedgerRepository,
	branchRepo repository.BranchRepository,
	pdfGen LedgerPDFGenerator,
) *UseCase {
	return &UseCase{
		reportRepo: reportRepo,
		ledgerRepo: ledgerRepo,
		branchRepo: branchRepo,
		pdfGen:     pdfGen,
	}
}

func (uc *UseCase) checkBranch(p auth.Principal, branchID string) (*entity.Branch, error) {
	if !auth.CanOnBranch(p, auth.OpReportRead, branchID) {
		return nil, domain.ErrForbidden
	}
	branch, err := uc.branchRepo.GetByID(branchID)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, domain.ErrNotFound
	}
	return branch, nil
}

// LowStockAlert lista productos cuya cantidad proyectada está en o por debajo
// del umbral. threshold < 0 usa el reorder_level propio de cada producto.
func (uc *UseCase) LowStockAlert(ctx context.Context, p auth.Principal, branchID string, threshold int64) ([]*dto.LowStockItemDTO, error) {
	if _, err := uc.checkBranch(p, branchID); err != nil {
		return nil, err
	}
	rows, err := uc.reportRepo.LowStock(branchID, threshold)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.LowStockItemDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, &dto.LowStockItemDTO{
			ProductID:    r.ProductID,
			SKU:          r.SKU,
			Name:         r.Name,
			Quantity:     r.Quantity,
			ReorderLevel: r.ReorderLevel,
		})
	}
	return out, nil
}

// SalesTotals agrega ventas completadas (y sus asientos) en un rango.
func (uc *UseCase) SalesTotals(ctx context.Context, p auth.Principal, branchID string, from, to time.Time) (*dto.SalesTotalsDTO, error) {
	if _, err := uc.checkBranch(p, branchID); err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, domain.ErrInvalidInput
	}
	row, err := uc.reportRepo.SalesTotals(branchID, from, to)
	if err != nil {
		return nil, err
	}
	return &dto.SalesTotalsDTO{
		BranchID: branchID,
		From:     from,
		To:       to,
		Count:    row.Count,
		Total:    row.Total,
	}, nil
}

// DailySales devuelve el total vendido por día de los últimos N días.
func (uc *UseCase) DailySales(ctx context.Context, p auth.Principal, branchID string, days int) ([]*dto.DailySalesDTO, error) {
	if _, err := uc.checkBranch(p, branchID); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = 30
	}
	rows, err := uc.reportRepo.DailySales(branchID, days)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.DailySalesDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, &dto.DailySalesDTO{
			Day:   r.Day.Format("2006-01-02"),
			Total: r.Total,
		})
	}
	return out, nil
}

// BranchBalance devuelve el balance contable: suma de asientos con timestamp <= at.
func (uc *UseCase) BranchBalance(ctx context.Context, p auth.Principal, branchID string, at time.Time) (*dto.BranchBalanceDTO, error) {
	if _, err := uc.checkBranch(p, branchID); err != nil {
		return nil, err
	}
	balance, err := uc.ledgerRepo.BalanceByBranch(branchID, at)
	if err != nil {
		return nil, err
	}
	return &dto.BranchBalanceDTO{BranchID: branchID, At: at, Balance: balance}, nil
}

// ListLedger lista asientos de una sucursal en un rango.
func (uc *UseCase) ListLedger(ctx context.Context, p auth.Principal, branchID string, from, to *time.Time, page dto.PageRequest) ([]*dto.LedgerEntryDTO, error) {
	if _, err := uc.checkBranch(p, branchID); err != nil {
		return nil, err
	}
	page.DefaultPage()
	entries, err := uc.ledgerRepo.ListByBranch(branchID, from, to, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.LedgerEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, &dto.LedgerEntryDTO{
			ID:          e.ID,
			BranchID:    e.BranchID,
			Amount:      e.Amount,
			Category:    e.Category,
			Description: e.Description,
			SaleID:      e.SaleID,
			CreatedAt:   e.CreatedAt,
		})
	}
	return out, nil
}

// LedgerPDF genera el reporte PDF del libro contable de una sucursal.
func (uc *UseCase) LedgerPDF(ctx context.Context, p auth.Principal, branchID string) ([]byte, error) {
	branch, err := uc.checkBranch(p, branchID)
	if err != nil {
		return nil, err
	}
	// Sin rango: el reporte cubre el libro completo, página por página.
	entries, err := uc.ledgerRepo.ListByBranch(branchID, nil, nil, 1000, 0)
	if err != nil {
		return nil, err
	}
	balance, err := uc.ledgerRepo.BalanceByBranch(branchID, time.Now())
	if err != nil {
		return nil, err
	}
	return uc.pdfGen.Generate(branch, entries, balance)
}
