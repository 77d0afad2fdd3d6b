package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/retailm/retailm-api/internal/application/dto"
	"github.com/retailm/retailm-api/internal/application/sales"
	"github.com/retailm/retailm-api/pkg/validator"
)

// SaleHandler maneja creación, consulta y anulación de ventas (protegido).
type SaleHandler struct {
	coordinator *sales.Coordinator
}

// NewSaleHandler construye el handler de ventas.
func NewSaleHandler(coordinator *sales.Coordinator) *SaleHandler {
	return &SaleHandler{coordinator: coordinator}
}

// Create godoc
// @Summary      Crear venta (atómica, con clave de idempotencia)
// @Description  Valida todas las líneas antes de escribir. Si alguna falla,
//
//	ninguna se aplica. Reintentar con la misma idempotency_key devuelve la
//	venta ya aplicada en vez de aplicarla dos veces.
//
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "branch_id, lines, payment_method, idempotency_key"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if errs := validator.ValidateStruct(in); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"code": "VALIDATION", "errors": errs})
	}
	out, err := h.coordinator.CreateSale(c.Context(), GetPrincipal(c), in)
	if err != nil {
		return handleError(c, err)
	}
	if out.Replayed {
		return c.JSON(out)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener venta con sus líneas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Sale ID"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.coordinator.GetSale(c.Context(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Void godoc
// @Summary      Anular venta (movimientos compensatorios + reverso contable)
// @Description  La venta no se borra: se escriben movimientos de entrada por
//
//	cada línea, un asiento negativo por el total y la cabecera pasa a voided.
//
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Sale ID"
// @Success      200  {object}  dto.SaleResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/void [post]
func (h *SaleHandler) Void(c *fiber.Ctx) error {
	out, err := h.coordinator.VoidSale(c.Context(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}
