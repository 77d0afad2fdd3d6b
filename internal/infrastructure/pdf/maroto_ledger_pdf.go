// Package pdf implementa la exportación del libro contable de una sucursal
// como documento PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Sucursal  │  Fecha de emisión                      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Categoría | Descripción | Monto             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  BALANCE al corte                                           │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
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
	"github.com/shopspring/decimal"

	"github.com/retailm/retailm-api/internal/application/reporting"
	"github.com/retailm/retailm-api/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 170, Green: 30, Blue: 30}
)

var _ reporting.LedgerPDFGenerator = (*MarotoLedgerPDF)(nil)

// MarotoLedgerPDF implementa reporting.LedgerPDFGenerator usando Maroto v2.
type MarotoLedgerPDF struct{}

// NewMarotoLedgerPDF construye el generador.
func NewMarotoLedgerPDF() *MarotoLedgerPDF { return &MarotoLedgerPDF{} }

// Generate genera el PDF del libro contable y devuelve sus bytes.
func (g *MarotoLedgerPDF) Generate(branch *entity.Branch, entries []*entity.LedgerEntry, balance decimal.Decimal) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Libro Contable - "+branch.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(branch))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	for _, e := range entries {
		m.AddRows(entryRow(e))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(balanceRow(balance))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// headerRow: nombre de la sucursal (izq) y fecha de emisión (der).
func headerRow(branch *entity.Branch) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New(branch.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(branch.Location, "—"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("LIBRO CONTABLE", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("Emitido: "+time.Now().Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de asientos.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 2, align.Left),
		h("Categoría", 2, align.Left),
		h("Descripción", 5, align.Left),
		h("Monto", 3, align.Right),
	)
}

// entryRow: una fila por asiento; los egresos van en rojo.
func entryRow(e *entity.LedgerEntry) core.Row {
	amountColor := colorGray
	if e.Amount.IsNegative() {
		amountColor = colorRed
	}
	return row.New(6).Add(
		col.New(2).Add(text.New(
			e.CreatedAt.Format("02/01/2006"),
			props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
		)),
		col.New(2).Add(text.New(
			e.Category,
			props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
		)),
		col.New(5).Add(text.New(
			e.Description,
			props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
		)),
		col.New(3).Add(text.New(
			"$"+e.Amount.StringFixed(2),
			props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1, Color: amountColor},
		)),
	)
}

// balanceRow: balance acumulado al corte, alineado a la derecha.
func balanceRow(balance decimal.Decimal) core.Row {
	return row.New(10).Add(
		col.New(6),
		col.New(3).Add(text.New("BALANCE:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Top: 2, Right: 2,
		})),
		col.New(3).Add(text.New("$"+balance.StringFixed(2), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Top: 2, Right: 1,
		})),
	)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
