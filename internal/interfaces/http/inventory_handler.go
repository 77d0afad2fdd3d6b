package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/retailm/retailm-api/internal/application/dto"
	"github.com/retailm/retailm-api/internal/application/inventory"
	"github.com/retailm/retailm-api/pkg/validator"
)

// InventoryHandler maneja movimientos de stock y la proyección (protegido).
type InventoryHandler struct {
	uc *inventory.UseCase
}

// NewInventoryHandler construye el handler de inventario.
func NewInventoryHandler(uc *inventory.UseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de stock
// @Description  restock (requiere vendor_id y unit_cost), adjustment (cantidad
//
//	con signo), return (entrada) o damage (salida). Las salidas fallan con
//	409 si dejarían la cantidad proyectada por debajo de cero.
//
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "product_id, branch_id, reason, quantity"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if errs := validator.ValidateStruct(in); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"code": "VALIDATION", "errors": errs})
	}
	out, err := h.uc.RegisterMovement(c.Context(), GetPrincipal(c), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMovements godoc
// @Summary      Historial de movimientos de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  true   "Product ID"
// @Param        from        query  string  false  "RFC3339"
// @Param        to          query  string  false  "RFC3339"
// @Param        limit       query  int     false  "máximo de filas (default 20)"
// @Param        offset      query  int     false  "desplazamiento"
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	productID := c.Query("product_id")
	if productID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id es requerido"})
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
	out, err := h.uc.ListMovements(c.Context(), GetPrincipal(c), productID, from, to, page)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// RebuildProjection godoc
// @Summary      Recalcular la proyección de stock desde el historial
// @Description  Reproduce la suma con signo de todos los movimientos del
//
//	producto y sobreescribe la fila de stock con el resultado.
//
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RebuildProjectionRequest  true  "product_id, branch_id"
// @Success      200   {object}  dto.RebuildProjectionResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/inventory/rebuild [post]
func (h *InventoryHandler) RebuildProjection(c *fiber.Ctx) error {
	var in dto.RebuildProjectionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if errs := validator.ValidateStruct(in); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"code": "VALIDATION", "errors": errs})
	}
	out, err := h.uc.RebuildProjection(c.Context(), GetPrincipal(c), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// parseTimeQuery lee un query param RFC3339 opcional; nil si está vacío.
func parseTimeQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
