package export

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/Simplici0/cotizador/internal/pricing"
)

const quoteSheet = "Cotizacion"

// QuoteExcel renders the client quote as a single-sheet workbook.
func QuoteExcel(doc QuoteDocument) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), quoteSheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	columns := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"}
	widths := []float64{6, 20, 16, 14, 26, 12, 10, 8, 16, 16}
	lastCol := columns[len(columns)-1]
	for i, c := range columns {
		if err := f.SetColWidth(quoteSheet, c, c, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", c, err)
		}
	}

	st, err := newSheetStyles(f)
	if err != nil {
		return nil, err
	}

	if err := f.MergeCell(quoteSheet, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(quoteSheet, "A1", "COTIZACIÓN "+doc.Number)
	f.SetCellStyle(quoteSheet, "A1", lastCol+"1", st.title)

	f.SetCellValue(quoteSheet, "A2", "Cliente: "+clientOr(doc.ClientName, "Sin nombre"))
	f.SetCellValue(quoteSheet, "A3", "Fecha: "+FormatDate(doc.Date))
	f.SetCellValue(quoteSheet, "A4", fmt.Sprintf("Vigencia: %d días", ValidityDays))

	headers := []string{"No", "Ubicación", "Tipo Persiana", "Tipo Tela", "Nombre Tela", "Color", "Mec.", "Cant.", "P. Unit.", "Importe"}
	for i, h := range headers {
		f.SetCellValue(quoteSheet, fmt.Sprintf("%s6", columns[i]), h)
	}
	f.SetCellStyle(quoteSheet, "A6", lastCol+"6", st.header)

	row := 7
	for i, line := range doc.Lines {
		r := fmt.Sprintf("%d", row)
		it := line.Item
		f.SetCellValue(quoteSheet, "A"+r, i+1)
		f.SetCellValue(quoteSheet, "B"+r, sanitizeExcelCell(it.Location))
		f.SetCellValue(quoteSheet, "C"+r, sanitizeExcelCell(it.BlindType))
		f.SetCellValue(quoteSheet, "D"+r, sanitizeExcelCell(it.FabricType))
		f.SetCellValue(quoteSheet, "E"+r, sanitizeExcelCell(it.FabricName))
		f.SetCellValue(quoteSheet, "F"+r, sanitizeExcelCell(it.Color))
		f.SetCellValue(quoteSheet, "G"+r, sanitizeExcelCell(it.Mechanism))
		f.SetCellValue(quoteSheet, "H"+r, it.Quantity)
		f.SetCellValue(quoteSheet, "I"+r, pricing.Round2(line.UnitPrice).InexactFloat64())
		f.SetCellValue(quoteSheet, "J"+r, pricing.Round2(line.LineTotal).InexactFloat64())
		f.SetCellStyle(quoteSheet, "A"+r, "H"+r, st.cell)
		f.SetCellStyle(quoteSheet, "I"+r, "J"+r, st.money)
		row++
	}

	row++
	b := doc.Quote.Breakdown
	summary := []summaryLine{{"SUBTOTAL", b.ClientSubtotal}}
	if doc.showDiscount() {
		summary = append(summary,
			summaryLine{fmt.Sprintf("DESCUENTO (%s%%)", b.DiscountPercent.String()), b.DiscountAmount.Neg()},
			summaryLine{"SUB", doc.SubtotalAfterDiscount()},
		)
	}
	if b.TravelExpense.IsPositive() {
		summary = append(summary, summaryLine{"VIÁTICOS", b.TravelExpense})
	}
	summary = append(summary, summaryLine{"TOTAL", doc.Quote.Totals.ClientTotal})

	for _, s := range summary {
		r := fmt.Sprintf("%d", row)
		f.SetCellValue(quoteSheet, "I"+r, s.label)
		f.SetCellStyle(quoteSheet, "I"+r, "I"+r, st.summaryLabel)
		f.SetCellValue(quoteSheet, "J"+r, pricing.Round2(s.amount).InexactFloat64())
		f.SetCellStyle(quoteSheet, "J"+r, "J"+r, st.summaryValue)
		row++
	}

	if doc.Notes != "" {
		row++
		f.SetCellValue(quoteSheet, fmt.Sprintf("A%d", row), "Notas: "+doc.Notes)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

type summaryLine struct {
	label  string
	amount decimal.Decimal
}

type sheetStyles struct {
	title, header, cell, money, summaryLabel, summaryValue int
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	var (
		st  sheetStyles
		err error
	)
	moneyFmt := `"$"#,##0.00`

	if st.title, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	}); err != nil {
		return st, fmt.Errorf("create title style: %w", err)
	}

	if st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 10},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#C8E6F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thinBorders(),
	}); err != nil {
		return st, fmt.Errorf("create header style: %w", err)
	}

	if st.cell, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
	}); err != nil {
		return st, fmt.Errorf("create cell style: %w", err)
	}

	if st.money, err = f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Size: 10},
		Border:       thinBorders(),
		CustomNumFmt: &moneyFmt,
	}); err != nil {
		return st, fmt.Errorf("create money style: %w", err)
	}

	if st.summaryLabel, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	}); err != nil {
		return st, fmt.Errorf("create summary label style: %w", err)
	}

	if st.summaryValue, err = f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true, Size: 11},
		CustomNumFmt: &moneyFmt,
	}); err != nil {
		return st, fmt.Errorf("create summary value style: %w", err)
	}

	return st, nil
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: "#000000", Style: 1}
	}
	return borders
}
