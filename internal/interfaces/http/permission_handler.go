package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Consultorio-api/internal/application/dto"
	"github.com/jhoicas/Consultorio-api/internal/application/usecase"
)

// PermissionHandler expone el catálogo de permisos (solo lectura).
type PermissionHandler struct {
	uc *usecase.PermissionUseCase
}

// NewPermissionHandler construye el handler.
func NewPermissionHandler(uc *usecase.PermissionUseCase) *PermissionHandler {
	return &PermissionHandler{uc: uc}
}

// List godoc
// @Summary      Listar permisos del catálogo
// @Tags         permisos
// @Produce      json
// @Param        modulo  query  string  false  "filtrar por nombre de módulo"
// @Success      200  {array}   dto.PermissionResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/permisos [get]
func (h *PermissionHandler) List(c *fiber.Ctx) error {
	var (
		out []dto.PermissionResponse
		err error
	)
	if module := c.Query("modulo"); module != "" {
		out, err = h.uc.ListByModule(c.UserContext(), module)
	} else {
		out, err = h.uc.List(c.UserContext())
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Find godoc
// @Summary      Buscar un permiso por nombre visible o por código
// @Tags         permisos
// @Produce      json
// @Param        nombre  query  string  false  "nombre visible, p. ej. Editar Informe"
// @Param        codigo  query  string  false  "código estable, p. ej. informes.editar"
// @Success      200  {object}  dto.PermissionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/permisos/buscar [get]
func (h *PermissionHandler) Find(c *fiber.Ctx) error {
	var (
		out *dto.PermissionResponse
		err error
	)
	if code := c.Query("codigo"); code != "" {
		out, err = h.uc.FindByCode(c.UserContext(), code)
	} else {
		out, err = h.uc.FindByName(c.UserContext(), c.Query("nombre"))
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
