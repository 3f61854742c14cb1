package informes

import (
	"context"
	"fmt"

	"github.com/jhoicas/Consultorio-api/internal/application/ports"
	"github.com/jhoicas/Consultorio-api/internal/domain/access"
	"github.com/jhoicas/Consultorio-api/internal/domain/repository"
)

// PDFUseCase exporta un informe visible para el sujeto.
type PDFUseCase struct {
	informes      *UseCase
	patients      repository.PatientRepository
	psychologists repository.PsychologistRepository
	generator     ports.InformePDFGenerator
}

// NewPDFUseCase construye el caso de uso.
func NewPDFUseCase(
	informes *UseCase,
	patients repository.PatientRepository,
	psychologists repository.PsychologistRepository,
	generator ports.InformePDFGenerator,
) *PDFUseCase {
	return &PDFUseCase{informes: informes, patients: patients, psychologists: psychologists, generator: generator}
}

// ExportPDF aplica la misma regla de visibilidad que Get y genera el PDF.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si el informe no existe.
//   - *domain.ForbiddenError     si el sujeto no puede verlo.
func (uc *PDFUseCase) ExportPDF(ctx context.Context, s access.Subject, id string) (pdfBytes []byte, filename string, err error) {
	inf, err := uc.informes.load(ctx, s, id)
	if err != nil {
		return nil, "", err
	}
	psy, err := uc.psychologists.GetByID(ctx, inf.PsychologistID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener psicólogo: %w", err)
	}
	pats, err := uc.patients.ListByIDs(ctx, inf.PatientIDs)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener pacientes: %w", err)
	}
	pdfBytes, err = uc.generator.GenerateInformePDF(ctx, inf, psy, pats)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generar: %w", err)
	}
	return pdfBytes, fmt.Sprintf("informe-%s.pdf", inf.ID), nil
}
