package export

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/xuri/excelize/v2"
)

const preQuoteSheet = "PreCotizacion"

var preQuoteHeaders = []string{"No", "Ancho", "Alto", "MT2", "Tipo Persiana", "Tipo Tela", "Nombre Tela", "Color", "Mecanismo", "Ubicación"}

// PreQuotePDF renders the landscape measurement list sent to the factory.
func PreQuotePDF(p PreQuote) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Horizontal).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		Build()

	m := maroto.New(cfg)

	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(text.New("PRE-COTIZACIÓN PARA FÁBRICA", props.Text{
				Size:  16,
				Style: fontstyle.Bold,
				Align: align.Center,
			})),
		),
		row.New(6).Add(
			col.New(6).Add(text.New("Cliente: "+clientOr(p.ClientName, "General"), props.Text{Size: 9})),
			col.New(6).Add(text.New("Fecha: "+FormatDate(p.Date), props.Text{Size: 9, Align: align.Right})),
		),
		row.New(4),
	)

	sizes := []int{1, 1, 1, 1, 1, 1, 2, 1, 1, 2}
	headerText := props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
	headerCell := &props.Cell{BackgroundColor: &props.Color{Red: 51, Green: 65, Blue: 85}}
	header := row.New(8)
	for i, h := range preQuoteHeaders {
		header.Add(col.New(sizes[i]).Add(text.New(h, headerText)).WithStyle(headerCell))
	}
	m.AddRows(header)

	cellText := props.Text{Size: 8, Align: align.Center}
	for _, ms := range p.Measurements {
		values := []string{
			strconv.Itoa(ms.No),
			ms.Width.String(),
			ms.Height.String(),
			ms.Area.StringFixed(2),
			orDash(ms.BlindType),
			orDash(ms.FabricType),
			orDash(ms.FabricName),
			orDash(ms.Color),
			orDash(ms.Mechanism),
			orDash(ms.Location),
		}
		r := row.New(7)
		for i, v := range values {
			r.Add(col.New(sizes[i]).Add(text.New(v, cellText)))
		}
		m.AddRows(r)
	}

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate pre-quote pdf: %w", err)
	}
	return out.GetBytes(), nil
}

// PreQuoteExcel renders the measurement list as a workbook with one row per measurement.
func PreQuoteExcel(p PreQuote) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), preQuoteSheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"#CBD5E1"}, Pattern: 1},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, h := range preQuoteHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(preQuoteSheet, cell, h)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(preQuoteHeaders), 1)
	f.SetCellStyle(preQuoteSheet, "A1", lastHeader, headerStyle)
	if err := f.SetColWidth(preQuoteSheet, "E", "J", 18); err != nil {
		return nil, fmt.Errorf("set col width: %w", err)
	}

	for i, ms := range p.Measurements {
		values := []any{
			ms.No,
			ms.Width.InexactFloat64(),
			ms.Height.InexactFloat64(),
			ms.Area.InexactFloat64(),
			sanitizeExcelCell(ms.BlindType),
			sanitizeExcelCell(ms.FabricType),
			sanitizeExcelCell(ms.FabricName),
			sanitizeExcelCell(ms.Color),
			sanitizeExcelCell(ms.Mechanism),
			sanitizeExcelCell(ms.Location),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(preQuoteSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write measurement %d: %w", ms.No, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}
