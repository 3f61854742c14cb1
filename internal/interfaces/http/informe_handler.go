package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Consultorio-api/internal/application/dto"
	"github.com/jhoicas/Consultorio-api/internal/application/informes"
)

// InformeHandler expone informes clínicos. Las reglas de propiedad y
// privacidad las aplica el caso de uso con el sujeto cargado por LoadSubject.
type InformeHandler struct {
	uc  *informes.UseCase
	pdf *informes.PDFUseCase
}

// NewInformeHandler construye el handler. pdf puede ser nil si no se expone la exportación.
func NewInformeHandler(uc *informes.UseCase, pdf *informes.PDFUseCase) *InformeHandler {
	return &InformeHandler{uc: uc, pdf: pdf}
}

// Create godoc
// @Summary      Registrar informe
// @Tags         informes
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateInformeRequest  true  "titulo, contenido, privado, pacientesIds"
// @Success      201   {object}  dto.InformeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/informes [post]
func (h *InformeHandler) Create(c *fiber.Ctx) error {
	s, ok := GetSubject(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "sujeto no cargado"})
	}
	var in dto.CreateInformeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), s, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar informes visibles para el usuario
// @Tags         informes
// @Produce      json
// @Success      200  {object}  dto.InformeListResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/informes [get]
func (h *InformeHandler) List(c *fiber.Ctx) error {
	s, ok := GetSubject(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "sujeto no cargado"})
	}
	out, err := h.uc.List(c.UserContext(), s)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener informe
// @Tags         informes
// @Produce      json
// @Param        id   path  string  true  "ID del informe"
// @Success      200  {object}  dto.InformeResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/informes/{id} [get]
func (h *InformeHandler) GetByID(c *fiber.Ctx) error {
	s, ok := GetSubject(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "sujeto no cargado"})
	}
	out, err := h.uc.Get(c.UserContext(), s, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Editar informe
// @Tags         informes
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del informe"
// @Param        body  body  dto.UpdateInformeRequest  true  "titulo, contenido, privado, pacientesIds, psicologoId"
// @Success      200   {object}  dto.InformeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/informes/{id} [put]
func (h *InformeHandler) Update(c *fiber.Ctx) error {
	s, ok := GetSubject(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "sujeto no cargado"})
	}
	var in dto.UpdateInformeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), s, c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar informe
// @Tags         informes
// @Param        id   path  string  true  "ID del informe"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/informes/{id} [delete]
func (h *InformeHandler) Delete(c *fiber.Ctx) error {
	s, ok := GetSubject(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "sujeto no cargado"})
	}
	if err := h.uc.Delete(c.UserContext(), s, c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PDF godoc
// @Summary      Exportar informe en PDF
// @Tags         informes
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del informe"
// @Success      200  {file}    binary
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/informes/{id}/pdf [get]
func (h *InformeHandler) PDF(c *fiber.Ctx) error {
	s, ok := GetSubject(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "sujeto no cargado"})
	}
	b, filename, err := h.pdf.ExportPDF(c.UserContext(), s, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(b)
}
