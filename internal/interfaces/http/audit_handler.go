package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/retailm/retailm-api/internal/application/dto"
	"github.com/retailm/retailm-api/internal/application/usecase"
)

// AuditHandler maneja la lectura de la bitácora de auditoría (protegido).
type AuditHandler struct {
	uc *usecase.AuditUseCase
}

// NewAuditHandler construye el handler de auditoría.
func NewAuditHandler(uc *usecase.AuditUseCase) *AuditHandler {
	return &AuditHandler{uc: uc}
}

// List godoc
// @Summary      Listar la bitácora de auditoría
// @Description  Con entity_name y entity_id devuelve la historia de esa
//
//	entidad; sin ellos, las entradas más recientes.
//
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        entity_name  query  string  false  "Sale, Product, Branch, ..."
// @Param        entity_id    query  string  false  "ID de la entidad"
// @Param        limit        query  int     false  "máximo de filas (default 20)"
// @Param        offset       query  int     false  "desplazamiento"
// @Success      200  {array}  dto.AuditLogDTO
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/audit [get]
func (h *AuditHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	entityName := c.Query("entity_name")
	entityID := c.Query("entity_id")
	if entityName != "" && entityID != "" {
		out, err := h.uc.ListByEntity(GetPrincipal(c), entityName, entityID, page)
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(out)
	}
	out, err := h.uc.List(GetPrincipal(c), page)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}
