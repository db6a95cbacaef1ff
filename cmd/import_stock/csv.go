package main

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/erp-core/internal/application/inventory"
)

// readRows lee el CSV completo. Si el contenido no es UTF-8 válido se decodifica como ISO-8859-1.
// Una primera fila que empiece con "sku" se toma como encabezado.
func readRows(r io.Reader) ([]inventory.OpeningStockRow, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	var src io.Reader = bytes.NewReader(raw)
	if !utf8.Valid(raw) {
		src = transform.NewReader(src, charmap.ISO8859_1.NewDecoder())
	}

	cr := csv.NewReader(src)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows []inventory.OpeningStockRow
	for first := true; ; first = false {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		if first && strings.EqualFold(strings.TrimSpace(rec[0]), "sku") {
			continue
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		row, err := parseRow(line, rec)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(line int, rec []string) (inventory.OpeningStockRow, error) {
	if len(rec) < 3 || len(rec) > 4 {
		return inventory.OpeningStockRow{}, fmt.Errorf("línea %d: se esperan 3 o 4 columnas, hay %d", line, len(rec))
	}
	row := inventory.OpeningStockRow{
		Line:     line,
		SKU:      strings.TrimSpace(rec[0]),
		Location: strings.TrimSpace(rec[1]),
	}
	if row.SKU == "" || row.Location == "" {
		return row, fmt.Errorf("línea %d: sku y location son obligatorios", line)
	}
	qty, err := parseDecimal(rec[2])
	if err != nil {
		return row, fmt.Errorf("línea %d: quantity: %w", line, err)
	}
	row.Quantity = qty
	if len(rec) == 4 && strings.TrimSpace(rec[3]) != "" {
		cost, err := parseDecimal(rec[3])
		if err != nil {
			return row, fmt.Errorf("línea %d: unit_cost: %w", line, err)
		}
		row.UnitCost = &cost
	}
	return row, nil
}

// parseDecimal acepta coma decimal (12,5) además de punto.
func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	return decimal.NewFromString(s)
}
