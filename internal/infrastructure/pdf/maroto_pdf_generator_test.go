package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Consultorio-api/internal/domain/entity"
)

func TestSplitParagraphs(t *testing.T) {
	got := splitParagraphs("Motivo de consulta.\r\n\r\n\n\nEvolución favorable.\n\n   ")
	assert.Equal(t, []string{"Motivo de consulta.", "Evolución favorable."}, got)
	assert.Empty(t, splitParagraphs("  \n\n "))
}

func TestGenerateInformePDF_ProduceDocumento(t *testing.T) {
	inf := &entity.Informe{
		ID:             "inf-1",
		Title:          "Evaluación inicial",
		Content:        "Motivo de consulta.\n\nPlan terapéutico.",
		Private:        true,
		PsychologistID: "psi-1",
		PatientIDs:     []string{"pac-1"},
		CreatedAt:      time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	out, err := NewMarotoPDFGenerator().GenerateInformePDF(
		context.Background(), inf,
		&entity.Psychologist{ID: "psi-1", Name: "Dra. Ruiz"},
		[]*entity.Patient{{ID: "pac-1", Name: "Ana Gómez"}},
	)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "debe ser un documento PDF")
}

func TestGenerateInformePDF_InformeNil(t *testing.T) {
	_, err := NewMarotoPDFGenerator().GenerateInformePDF(context.Background(), nil, nil, nil)
	assert.Error(t, err)
}
