package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/retailm/retailm-api/internal/application/dto"
	"github.com/retailm/retailm-api/internal/application/usecase"
	"github.com/retailm/retailm-api/pkg/validator"
)

// VendorHandler maneja el CRUD de proveedores (protegido).
type VendorHandler struct {
	uc *usecase.VendorUseCase
}

// NewVendorHandler construye el handler de proveedores.
func NewVendorHandler(uc *usecase.VendorUseCase) *VendorHandler {
	return &VendorHandler{uc: uc}
}

// Create godoc
// @Summary      Crear proveedor
// @Tags         vendors
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.VendorRequest  true  "name, contact_person, email, phone"
// @Success      201   {object}  dto.VendorResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/vendors [post]
func (h *VendorHandler) Create(c *fiber.Ctx) error {
	var in dto.VendorRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if errs := validator.ValidateStruct(in); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"code": "VALIDATION", "errors": errs})
	}
	out, err := h.uc.Create(GetPrincipal(c), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener proveedor
// @Tags         vendors
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Vendor ID"
// @Success      200  {object}  dto.VendorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/vendors/{id} [get]
func (h *VendorHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(GetPrincipal(c), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar proveedores
// @Tags         vendors
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "máximo de filas (default 20)"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {array}  dto.VendorResponse
// @Router       /api/vendors [get]
func (h *VendorHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	out, err := h.uc.List(GetPrincipal(c), page)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar proveedor
// @Tags         vendors
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "Vendor ID"
// @Param        body  body  dto.VendorRequest  true  "campos a actualizar"
// @Success      200   {object}  dto.VendorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/vendors/{id} [put]
func (h *VendorHandler) Update(c *fiber.Ctx) error {
	var in dto.VendorRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if errs := validator.ValidateStruct(in); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"code": "VALIDATION", "errors": errs})
	}
	out, err := h.uc.Update(GetPrincipal(c), c.Params("id"), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar proveedor (los movimientos históricos se conservan)
// @Tags         vendors
// @Security     Bearer
// @Param        id  path  string  true  "Vendor ID"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/vendors/{id} [delete]
func (h *VendorHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(GetPrincipal(c), c.Params("id")); err != nil {
		return handleError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
