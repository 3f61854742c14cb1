package ports

import (
	"context"

	"github.com/jhoicas/Consultorio-api/internal/domain/entity"
)

// InformePDFGenerator genera la representación imprimible de un informe.
type InformePDFGenerator interface {
	GenerateInformePDF(
		ctx context.Context,
		inf *entity.Informe,
		psychologist *entity.Psychologist,
		patients []*entity.Patient,
	) ([]byte, error)
}
