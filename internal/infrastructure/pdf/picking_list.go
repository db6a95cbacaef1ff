// Package pdf genera documentos imprimibles con Maroto v2.
//
// Layout de la lista de alistamiento (A4):
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  LISTA DE ALISTAMIENTO       │  N° Pedido + Fecha + Estado  │
//	│  Código de barras del número de pedido                      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: SKU | Producto | Cant. | Alistado | Ubicaciones     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FIRMAS: Alistó / Revisó                                    │
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

	"github.com/jhoicas/erp-core/internal/application/ports"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var _ ports.PickingListRenderer = (*MarotoRenderer)(nil)

// MarotoRenderer implementa ports.PickingListRenderer usando Maroto v2.
type MarotoRenderer struct {
	company string
}

// NewMarotoRenderer construye el generador. company aparece como autor del documento.
func NewMarotoRenderer(company string) *MarotoRenderer {
	return &MarotoRenderer{company: company}
}

// RenderPickingList genera el PDF y devuelve sus bytes.
func (g *MarotoRenderer) RenderPickingList(ctx context.Context, list ports.PickingList) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Lista de alistamiento "+list.OrderNumber, true).
		WithAuthor(nonEmpty(g.company, "erp-core"), true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(headerRow(list))
	if list.OrderNumber != "" {
		m.AddRows(row.New(14).Add(
			col.New(6).Add(code.NewBar(list.OrderNumber, props.Barcode{Percent: 90})),
			col.New(6),
		))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableRows(list.Lines)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(line.NewRow(12))
	m.AddRows(signatureRow())

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar lista de alistamiento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(list ports.PickingList) core.Row {
	return row.New(20).Add(
		col.New(7).Add(
			text.New("LISTA DE ALISTAMIENTO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%d líneas", len(list.Lines)), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(nonEmpty(list.OrderNumber, "-"), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 1,
			}),
			text.New("Fecha: "+nonEmpty(list.CreatedAt, "-"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
			text.New("Estado: "+nonEmpty(list.Status, "-"), props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("SKU", 2, align.Left),
		h("Producto", 4, align.Left),
		h("Cant.", 1, align.Right),
		h("Alistado", 2, align.Right),
		h("Ubicaciones", 3, align.Left),
	)
}

// tableRows una fila por línea; las ubicaciones van en el orden recibido (mayor stock primero).
func tableRows(lines []ports.PickingListLine) []core.Row {
	rows := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, row.New(7).Add(
			col.New(2).Add(text.New(l.SKU, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(l.ProductName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(1).Add(text.New(l.Quantity.String(), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(l.Picked.String(), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(nonEmpty(strings.Join(l.Locations, ", "), "-"), props.Text{Size: 8, Top: 1, Left: 1})),
		))
	}
	return rows
}

func signatureRow() core.Row {
	sig := func(label string) core.Col {
		return col.New(6).Add(
			text.New("______________________________", props.Text{Size: 9, Align: align.Center}),
			text.New(label, props.Text{Size: 8, Align: align.Center, Top: 5, Color: colorGray}),
		)
	}
	return row.New(14).Add(sig("Alistó"), sig("Revisó"))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
