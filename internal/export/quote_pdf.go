package export

import (
	"fmt"
	"strconv"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/Simplici0/cotizador/internal/pricing"
)

var (
	accentColor = &props.Color{Red: 200, Green: 230, Blue: 240}
	mutedColor  = &props.Color{Red: 90, Green: 90, Blue: 90}
)

// QuotePDF renders the client quote. Unit prices already include the hidden extras.
func QuotePDF(doc QuoteDocument) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithTopMargin(10).
		WithRightMargin(15).
		WithPageNumber(props.PageNumber{
			Pattern: "Página {current} de {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addQuoteHeader(m, doc)
	addQuoteTableHeader(m)
	for i, line := range doc.Lines {
		addQuoteRow(m, i+1, line)
	}
	addQuoteTotals(m, doc)
	addQuoteFooter(m, doc)

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate quote pdf: %w", err)
	}
	return out.GetBytes(), nil
}

func addQuoteHeader(m core.Maroto, doc QuoteDocument) {
	m.AddRows(
		row.New(10).Add(
			col.New(6).Add(
				text.New("HMG!", props.Text{Size: 18, Style: fontstyle.Bold, Align: align.Left}),
			),
			col.New(6).Add(
				text.New("COTIZACIÓN: "+doc.Number, props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Right}),
			),
		),
	)

	info := props.Text{Size: 9, Align: align.Right, Color: mutedColor}
	m.AddRows(
		row.New(6).Add(
			col.New(6).Add(
				text.New(BusinessName, props.Text{Size: 8, Align: align.Left}),
			),
			col.New(6).Add(text.New("FECHA: "+FormatDate(doc.Date), info)),
		),
		row.New(6).Add(
			col.New(12).Add(text.New("CLIENTE: "+clientOr(doc.ClientName, "_______________"), info)),
		),
		row.New(6).Add(
			col.New(12).Add(text.New(fmt.Sprintf("VIGENCIA: %d días", ValidityDays), info)),
		),
	)
	m.AddRows(row.New(4))
}

func addQuoteTableHeader(m core.Maroto) {
	headerText := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Center}
	headerCell := &props.Cell{BackgroundColor: accentColor}

	cols := []struct {
		size  int
		label string
	}{
		{1, "No"}, {2, "Ubicación"}, {1, "Tipo Persiana"}, {1, "Tipo Tela"},
		{2, "Nombre Tela"}, {1, "Color"}, {1, "Mec."}, {1, "Cant."},
		{1, "P. Unit."}, {1, "Importe"},
	}

	r := row.New(8)
	for _, c := range cols {
		r.Add(col.New(c.size).Add(text.New(c.label, headerText)).WithStyle(headerCell))
	}
	m.AddRows(r)
}

func addQuoteRow(m core.Maroto, n int, line pricing.VisibleLine) {
	base := props.Text{Size: 7, Align: align.Center}
	right := base
	right.Align = align.Right

	it := line.Item
	m.AddRows(
		row.New(7).Add(
			col.New(1).Add(text.New(strconv.Itoa(n), base)),
			col.New(2).Add(text.New(orDash(it.Location), base)),
			col.New(1).Add(text.New(orDash(it.BlindType), base)),
			col.New(1).Add(text.New(orDash(it.FabricType), base)),
			col.New(2).Add(text.New(orDash(it.FabricName), base)),
			col.New(1).Add(text.New(orDash(it.Color), base)),
			col.New(1).Add(text.New(orDash(it.Mechanism), base)),
			col.New(1).Add(text.New(strconv.Itoa(it.Quantity), base)),
			col.New(1).Add(text.New(pricing.FormatMXN(line.UnitPrice), right)),
			col.New(1).Add(text.New(pricing.FormatMXN(line.LineTotal), right)),
		),
	)
}

func addQuoteTotals(m core.Maroto, doc QuoteDocument) {
	m.AddRows(row.New(5))

	label := props.Text{Size: 9, Align: align.Left}
	value := props.Text{Size: 9, Align: align.Right}
	b := doc.Quote.Breakdown

	totalsRow := func(name, amount string, style props.Text) core.Row {
		return row.New(7).Add(
			col.New(6),
			col.New(3).Add(text.New(name, style)),
			col.New(3).Add(text.New(amount, value)),
		)
	}

	m.AddRows(totalsRow("SUBTOTAL", pricing.FormatMXN(b.ClientSubtotal), label))
	if doc.showDiscount() {
		m.AddRows(
			totalsRow(fmt.Sprintf("DESCUENTO (%s%%)", b.DiscountPercent.String()), "-"+pricing.FormatMXN(b.DiscountAmount), label),
			totalsRow("SUB", pricing.FormatMXN(doc.SubtotalAfterDiscount()), label),
		)
	}
	m.AddRows(totalsRow("ANTICIPO", "___________", label))
	if b.TravelExpense.IsPositive() {
		m.AddRows(totalsRow("VIÁTICOS", pricing.FormatMXN(b.TravelExpense), label))
	}
	m.AddRows(totalsRow("IVA", "___________", label))

	bold := label
	bold.Style = fontstyle.Bold
	m.AddRows(
		row.New(8).Add(
			col.New(6),
			col.New(3).Add(text.New("TOTAL", bold)).WithStyle(&props.Cell{BackgroundColor: accentColor}),
			col.New(3).Add(text.New(pricing.FormatMXN(doc.Quote.Totals.ClientTotal), props.Text{
				Size:  9,
				Style: fontstyle.Bold,
				Align: align.Right,
			})).WithStyle(&props.Cell{BackgroundColor: accentColor}),
		),
	)
}

func addQuoteFooter(m core.Maroto, doc QuoteDocument) {
	m.AddRows(row.New(4))
	if doc.Notes != "" {
		m.AddRows(
			row.New(6).Add(col.New(12).Add(text.New("Notas:", props.Text{Size: 8, Style: fontstyle.Bold}))),
			row.New(12).Add(col.New(12).Add(text.New(doc.Notes, props.Text{Size: 8}))),
		)
	}

	m.AddRows(
		row.New(8).Add(
			col.New(12).Add(text.New("Si se requiere factura es más IVA", props.Text{
				Size:  9,
				Style: fontstyle.Bold,
				Align: align.Center,
			})).WithStyle(&props.Cell{BackgroundColor: accentColor}),
		),
		row.New(10),
		row.New(6).Add(col.New(12).Add(text.New("ACEPTADO POR", props.Text{Size: 10, Style: fontstyle.Bold}))),
		row.New(14).Add(col.New(5).Add(text.New("______________________________", props.Text{Size: 10}))),
		row.New(5).Add(col.New(12).Add(text.New("Recibo a mi entera satisfacción los productos y/o servicios", props.Text{Size: 8}))),
		row.New(5).Add(col.New(12).Add(text.New("en este formato mencionados,", props.Text{Size: 8}))),
	)
}
