package informes

import (
	"context"

	"github.com/jhoicas/Consultorio-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción con repos de informes,
// pacientes y psicólogos. El informe y su conjunto de pacientes se confirman
// juntos o no se confirman.
type TxRunner interface {
	RunInformes(ctx context.Context, fn func(
		informes repository.InformeRepository,
		patients repository.PatientRepository,
		psychologists repository.PsychologistRepository,
	) error) error
}
