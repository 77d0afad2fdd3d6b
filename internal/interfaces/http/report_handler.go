package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/retailm/retailm-api/internal/application/dto"
	"github.com/retailm/retailm-api/internal/application/reporting"
)

// ReportHandler maneja los reportes de solo lectura (protegido).
type ReportHandler struct {
	uc *reporting.UseCase
}

// NewReportHandler construye el handler de reportes.
func NewReportHandler(uc *reporting.UseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// LowStock godoc
// @Summary      Alerta de stock bajo
// @Description  Productos con cantidad proyectada <= threshold. Sin threshold
//
//	cada producto usa su propio reorder_level.
//
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  true   "Branch ID"
// @Param        threshold  query  int     false  "umbral fijo; omitir para usar reorder_level"
// @Success      200  {array}  dto.LowStockItemDTO
// @Router       /api/reports/low-stock [get]
func (h *ReportHandler) LowStock(c *fiber.Ctx) error {
	branchID := c.Query("branch_id")
	if branchID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "branch_id es requerido"})
	}
	threshold := int64(-1)
	if raw := c.Query("threshold"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "threshold inválido"})
		}
		threshold = n
	}
	out, err := h.uc.LowStockAlert(c.Context(), GetPrincipal(c), branchID, threshold)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// SalesTotals godoc
// @Summary      Totales de ventas completadas en un rango
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  true  "Branch ID"
// @Param        from       query  string  true  "RFC3339"
// @Param        to         query  string  true  "RFC3339"
// @Success      200  {object}  dto.SalesTotalsDTO
// @Router       /api/reports/sales-totals [get]
func (h *ReportHandler) SalesTotals(c *fiber.Ctx) error {
	branchID := c.Query("branch_id")
	if branchID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "branch_id es requerido"})
	}
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido (RFC3339)"})
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido (RFC3339)"})
	}
	out, err := h.uc.SalesTotals(c.Context(), GetPrincipal(c), branchID, from, to)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// DailySales godoc
// @Summary      Total vendido por día (últimos N días)
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  true   "Branch ID"
// @Param        days       query  int     false  "ventana en días (default 30)"
// @Success      200  {array}  dto.DailySalesDTO
// @Router       /api/reports/daily-sales [get]
func (h *ReportHandler) DailySales(c *fiber.Ctx) error {
	branchID := c.Query("branch_id")
	if branchID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "branch_id es requerido"})
	}
	days := c.QueryInt("days", 0)
	out, err := h.uc.DailySales(c.Context(), GetPrincipal(c), branchID, days)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Balance godoc
// @Summary      Balance contable de la sucursal a un instante
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  true   "Branch ID"
// @Param        at         query  string  false  "RFC3339 (default ahora)"
// @Success      200  {object}  dto.BranchBalanceDTO
// @Router       /api/reports/balance [get]
func (h *ReportHandler) Balance(c *fiber.Ctx) error {
	branchID := c.Query("branch_id")
	if branchID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "branch_id es requerido"})
	}
	at := time.Now()
	if raw := c.Query("at"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "at inválido (RFC3339)"})
		}
		at = t
	}
	out, err := h.uc.BranchBalance(c.Context(), GetPrincipal(c), branchID, at)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// ListLedger godoc
// @Summary      Listar asientos contables de una sucursal
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  true   "Branch ID"
// @Param        from       query  string  false  "RFC3339"
// @Param        to         query  string  false  "RFC3339"
// @Param        limit      query  int     false  "máximo de filas (default 20)"
// @Param        offset     query  int     false  "desplazamiento"
// @Success      200  {array}  dto.LedgerEntryDTO
// @Router       /api/reports/ledger [get]
func (h *ReportHandler) ListLedger(c *fiber.Ctx) error {
	branchID := c.Query("branch_id")
	if branchID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "branch_id es requerido"})
	}
	from, err := parseTimeQuery(c, "from")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido (RFC3339)"})
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido (RFC3339)"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	out, err := h.uc.ListLedger(c.Context(), GetPrincipal(c), branchID, from, to, page)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// LedgerPDF godoc
// @Summary      Exportar el libro contable de una sucursal como PDF
// @Tags         reports
// @Security     Bearer
// @Produce      application/pdf
// @Param        branch_id  query  string  true  "Branch ID"
// @Success      200  {file}  binary
// @Router       /api/reports/ledger/pdf [get]
func (h *ReportHandler) LedgerPDF(c *fiber.Ctx) error {
	branchID := c.Query("branch_id")
	if branchID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "branch_id es requerido"})
	}
	pdfBytes, err := h.uc.LedgerPDF(c.Context(), GetPrincipal(c), branchID)
	if err != nil {
		return handleError(c, err)
	}
	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", `attachment; filename="libro-contable.pdf"`)
	return c.Send(pdfBytes)
}
