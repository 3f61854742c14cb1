package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Consultorio-api/internal/application/authz"
	"github.com/jhoicas/Consultorio-api/internal/application/dto"
)

// UserProfileHandler asigna perfiles a usuarios.
type UserProfileHandler struct {
	uc *authz.AssignmentUseCase
}

// NewUserProfileHandler construye el handler.
func NewUserProfileHandler(uc *authz.AssignmentUseCase) *UserProfileHandler {
	return &UserProfileHandler{uc: uc}
}

// List godoc
// @Summary      Perfiles asignados a un usuario
// @Tags         usuarios
// @Produce      json
// @Param        id   path  string  true  "ID del usuario"
// @Success      200  {object}  dto.UserProfilesResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/usuarios/{id}/perfiles [get]
func (h *UserProfileHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.ProfilesOf(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Assign godoc
// @Summary      Reemplazar los perfiles de un usuario
// @Description  Operación atómica: si algún perfil no existe no se aplica ningún cambio.
// @Tags         usuarios
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del usuario"
// @Param        body  body  dto.AssignProfilesRequest  true  "perfilesIds"
// @Success      200   {object}  dto.UserProfilesResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/usuarios/{id}/perfiles [put]
func (h *UserProfileHandler) Assign(c *fiber.Ctx) error {
	var in dto.AssignProfilesRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	id := c.Params("id")
	if err := h.uc.Assign(c.UserContext(), id, in.ProfileIDs); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.ProfilesOf(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Revoke godoc
// @Summary      Quitar un perfil a un usuario
// @Tags         usuarios
// @Param        id        path  string  true  "ID del usuario"
// @Param        perfilId  path  string  true  "ID del perfil"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/usuarios/{id}/perfiles/{perfilId} [delete]
func (h *UserProfileHandler) Revoke(c *fiber.Ctx) error {
	if err := h.uc.Revoke(c.UserContext(), c.Params("id"), c.Params("perfilId")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Permissions godoc
// @Summary      Permisos efectivos de un usuario
// @Tags         usuarios
// @Produce      json
// @Param        id   path  string  true  "ID del usuario"
// @Success      200  {object}  dto.MyPermissionsResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/usuarios/{id}/permisos [get]
func (h *UserProfileHandler) Permissions(c *fiber.Ctx) error {
	id := c.Params("id")
	// ProfilesOf distingue usuario inexistente de usuario sin perfiles.
	if _, err := h.uc.ProfilesOf(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	set, err := h.uc.EffectivePermissions(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MyPermissionsResponse{UserID: id, Codes: set.Strings(), Permissions: set.Names()})
}
