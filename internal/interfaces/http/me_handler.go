package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Consultorio-api/internal/application/dto"
)

// MeHandler expone los permisos y módulos del usuario autenticado.
type MeHandler struct{}

// NewMeHandler construye el handler.
func NewMeHandler() *MeHandler { return &MeHandler{} }

// Permissions godoc
// @Summary      Permisos efectivos del usuario autenticado
// @Tags         me
// @Produce      json
// @Param        X-Refresh-Permissions  header  string  false  "true para ignorar el snapshot del token"
// @Success      200  {object}  dto.MyPermissionsResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/me/permisos [get]
func (h *MeHandler) Permissions(c *fiber.Ctx) error {
	s, ok := GetSubject(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "sujeto no cargado"})
	}
	return c.JSON(dto.MyPermissionsResponse{
		UserID:      s.UserID,
		Codes:       s.Permissions.Strings(),
		Permissions: s.Permissions.Names(),
	})
}

// Modules godoc
// @Summary      Módulos visibles en la navegación
// @Tags         me
// @Produce      json
// @Success      200  {object}  dto.MyModulesResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/me/modulos [get]
func (h *MeHandler) Modules(c *fiber.Ctx) error {
	s, ok := GetSubject(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "sujeto no cargado"})
	}
	mods := s.Permissions.VisibleModules()
	if mods == nil {
		mods = []string{}
	}
	return c.JSON(dto.MyModulesResponse{Modules: mods})
}
