// Package pdf implementa la exportación imprimible de informes clínicos.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título del informe     │  Fecha + marca PRIVADO     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PSICÓLOGO: nombre                                          │
//	│  PACIENTES: nombres                                         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CONTENIDO: un bloque por párrafo                           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR de referencia + leyenda de confidencialidad      │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/Consultorio-api/internal/application/ports"
	"github.com/jhoicas/Consultorio-api/internal/domain/entity"
)

var _ ports.InformePDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 38, Green: 84, Blue: 124}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa ports.InformePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateInformePDF genera el PDF y devuelve sus bytes. psychologist puede ser nil.
func (g *MarotoPDFGenerator) GenerateInformePDF(
	_ context.Context,
	inf *entity.Informe,
	psychologist *entity.Psychologist,
	patients []*entity.Patient,
) ([]byte, error) {
	if inf == nil {
		return nil, fmt.Errorf("pdf: informe nil")
	}
	author := "—"
	if psychologist != nil {
		author = nonEmpty(psychologist.Name, "—")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).WithRightMargin(15).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 10}).
		WithTitle(inf.Title, true).
		WithAuthor(author, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(inf))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(partiesRow(author, patients))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	for _, r := range contentRows(inf.Content) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(inf))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título (izq) y fecha + marca de privacidad (der).
func headerRow(inf *entity.Informe) core.Row {
	right := []core.Component{
		text.New("Fecha: "+inf.CreatedAt.Format("02/01/2006"), props.Text{
			Size: 8, Align: align.Right, Top: 2, Color: colorGray,
		}),
	}
	if inf.Private {
		right = append(right, text.New("PRIVADO", props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 8, Color: colorAlert,
		}))
	}
	return row.New(16).Add(
		col.New(8).Add(
			text.New("INFORME CLÍNICO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(inf.Title, props.Text{
				Style: fontstyle.Bold, Size: 13, Top: 6,
			}),
		),
		col.New(4).Add(right...),
	)
}

// partiesRow: psicólogo responsable y pacientes asociados.
func partiesRow(author string, patients []*entity.Patient) core.Row {
	names := make([]string, 0, len(patients))
	for _, p := range patients {
		names = append(names, nonEmpty(p.Name, p.ID))
	}
	return row.New(16).Add(
		col.New(12).Add(
			text.New("PSICÓLOGO RESPONSABLE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(author, props.Text{Size: 9, Top: 5}),
			text.New("PACIENTES: "+nonEmpty(strings.Join(names, ", "), "—"), props.Text{
				Size: 8, Top: 11, Color: colorGray,
			}),
		),
	)
}

// contentRows: un bloque por párrafo; maroto ajusta las líneas al ancho.
func contentRows(content string) []core.Row {
	var rows []core.Row
	for _, p := range splitParagraphs(content) {
		lines := 1 + len(p)/95
		rows = append(rows, row.New(float64(5*lines+2)).Add(col.New(12).Add(
			text.New(p, props.Text{Size: 10, Top: 1}),
		)))
	}
	return rows
}

// footerRow: QR con la referencia del informe y leyenda de confidencialidad.
func footerRow(inf *entity.Informe) core.Row {
	return row.New(30).Add(
		col.New(3).Add(code.NewQr("informe:"+inf.ID, props.Rect{
			Percent: 90,
			Center:  true,
		})),
		col.New(9).Add(
			text.New("Referencia: "+inf.ID, props.Text{
				Size: 7, Top: 4, Left: 3, Color: colorGray,
			}),
			text.New(
				"Documento confidencial. Su contenido está protegido por el secreto "+
					"profesional y solo puede ser consultado por las personas autorizadas.",
				props.Text{Size: 7, Top: 10, Left: 3, Color: colorGray},
			),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// splitParagraphs separa por líneas en blanco y descarta párrafos vacíos.
func splitParagraphs(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var out []string
	for _, p := range strings.Split(s, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
