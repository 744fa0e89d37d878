package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/paintstock-bot/internal/domain/inventory"
)

const stockSheet = "Склад"

var stockHeader = []interface{}{"color_code", "effect", "quantity", "unit", "last_updated"}

// StockFileName имя файла выгрузки остатков.
func StockFileName(at time.Time) string {
	return fmt.Sprintf("stock_%s.xlsx", at.Format("20060102_150405"))
}

// StockWorkbook выгружает остатки в .xlsx: заголовок + по строке на позицию, в конце итог.
func StockWorkbook(paints []inventory.Paint) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), stockSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(stockSheet, "A1", &stockHeader); err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}

	var total float64
	row := 2
	for _, p := range paints {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, err
		}
		values := []interface{}{
			p.ColorCode,
			string(p.Effect),
			p.Quantity,
			p.Unit,
			p.LastUpdated.Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(stockSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		total += p.Quantity
		row++
	}

	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return nil, err
	}
	footer := []interface{}{"Итого", "", total, "kg"}
	if err := f.SetSheetRow(stockSheet, cell, &footer); err != nil {
		return nil, fmt.Errorf("footer: %w", err)
	}
	_ = f.SetColWidth(stockSheet, "A", "A", 24)
	_ = f.SetColWidth(stockSheet, "E", "E", 20)

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
