// Package importer turns a supplier price sheet (.xlsx or .csv) into factory items.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/Simplici0/cotizador/internal/pricing"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format: must be .csv or .xlsx")
	ErrNoPriceColumn     = errors.New("no price column found")
	ErrNoPricedRows      = errors.New("no row has a usable price")
)

type field int

const (
	fieldNone field = iota
	fieldPrice
	fieldLocation
	fieldBlindType
	fieldFabricType
	fieldModel
	fieldColor
	fieldWidth
	fieldHeight
	fieldArea
	fieldMechanism
)

// headerAliases maps normalized header text to a field. See normalizeHeader.
var headerAliases = map[string]field{
	"precio":       fieldPrice,
	"costo":        fieldPrice,
	"ubicación":    fieldLocation,
	"ubicacion":    fieldLocation,
	"tpersiana":    fieldBlindType,
	"tipopersiana": fieldBlindType,
	"tipotela":     fieldFabricType,
	"ttela":        fieldFabricType,
	"modelo":       fieldModel,
	"nombretela":   fieldModel,
	"color":        fieldColor,
	"ancho":        fieldWidth,
	"alto":         fieldHeight,
	"m2":           fieldArea,
	"mt2":          fieldArea,
	"mecanismo":    fieldMechanism,
	"mec":          fieldMechanism,
}

// Parse reads the first sheet of an .xlsx file, or a .csv file, chosen by filename
// extension. Rows without a positive price are skipped. The call either returns at
// least one item or an error.
func Parse(r io.Reader, filename string) ([]pricing.FactoryItem, error) {
	var (
		rows [][]string
		err  error
	)

	lowerName := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lowerName, ".xlsx"):
		rows, err = readExcel(r)
	case strings.HasSuffix(lowerName, ".csv"):
		rows, err = readCSV(r)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("file must contain a header row and at least one data row")
	}

	columns := mapHeaders(rows[0])
	priceCol := -1
	for i, f := range columns {
		if f == fieldPrice {
			priceCol = i
			break
		}
	}
	if priceCol < 0 {
		return nil, ErrNoPriceColumn
	}

	items := make([]pricing.FactoryItem, 0, len(rows)-1)
	for _, row := range rows[1:] {
		values := make(map[field]string, len(columns))
		for i, f := range columns {
			if f == fieldNone || i >= len(row) {
				continue
			}
			if _, seen := values[f]; seen {
				continue
			}
			values[f] = strings.TrimSpace(row[i])
		}

		cost, ok := parsePrice(values[fieldPrice])
		if !ok {
			continue
		}
		items = append(items, buildItem(values, cost, len(items)+1))
	}

	if len(items) == 0 {
		return nil, ErrNoPricedRows
	}
	return items, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return rows, nil
}

func readExcel(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	return rows, nil
}

func mapHeaders(headers []string) []field {
	mapped := make([]field, len(headers))
	for i, h := range headers {
		mapped[i] = headerAliases[normalizeHeader(h)]
	}
	return mapped
}

// normalizeHeader lowercases h and drops spaces and dots, so "T. PERSIANA",
// "T.PERSIANA" and "t persiana" all compare equal.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "", ".", "", "_", "").Replace(h)
}

// parsePrice accepts values like "$1,250.00". Empty, zero, negative or
// unparseable prices are rejected.
func parsePrice(raw string) (decimal.Decimal, bool) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(raw)
	if cleaned == "" {
		return decimal.Zero, false
	}
	v, err := decimal.NewFromString(cleaned)
	if err != nil || !v.IsPositive() {
		return decimal.Zero, false
	}
	return v, true
}

func buildItem(values map[field]string, cost decimal.Decimal, n int) pricing.FactoryItem {
	d := pricing.Details{
		Location:   values[fieldLocation],
		BlindType:  values[fieldBlindType],
		FabricType: values[fieldFabricType],
		FabricName: values[fieldModel],
		Color:      values[fieldColor],
		Mechanism:  values[fieldMechanism],
	}

	width, height, area := values[fieldWidth], values[fieldHeight], values[fieldArea]
	switch {
	case area != "":
		d.Measures = area + " m²"
	case width != "" || height != "":
		d.Measures = width + "x" + height
	}

	d.Description = describe(d, width, height)
	if d.Description == "" {
		d.Description = "Partida " + strconv.Itoa(n)
	}

	return pricing.FactoryItem{
		ID:           uuid.New().String(),
		SupplierCost: cost,
		Details:      d,
	}
}

// describe renders "{type} {model} - {color} ({w}x{h}) - {location}", leaving out
// the parts that are empty.
func describe(d pricing.Details, width, height string) string {
	var parts []string
	if head := strings.TrimSpace(d.BlindType + " " + d.FabricName); head != "" {
		parts = append(parts, head)
	}
	if d.Color != "" {
		parts = append(parts, d.Color)
	}
	if width != "" || height != "" {
		if len(parts) > 0 {
			parts[len(parts)-1] += " (" + width + "x" + height + ")"
		} else {
			parts = append(parts, "("+width+"x"+height+")")
		}
	}
	if d.Location != "" {
		parts = append(parts, d.Location)
	}
	return strings.Join(parts, " - ")
}
