package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"hac-portal/internal/domain"
)

const inventorySheet = "Inventario de Activos"

// InventoryHeaders is the fixed Spanish header row of the export.
var InventoryHeaders = []string{"Activo", "Marca", "Color", "Cantidad", "Estado", "Ubicación"}

// InventoryFilename derives the download name for an export generated
// on the given date.
func InventoryFilename(day time.Time) string {
	return fmt.Sprintf("Inventario_HAC2025_%s.xlsx", day.Format("2006-01-02"))
}

// InventorySpreadsheet renders the given items (already ordered by
// name) as an .xlsx workbook and returns its bytes.
func InventorySpreadsheet(items []domain.InventoryItem) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", inventorySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(inventorySheet, "A1", &InventoryHeaders); err != nil {
		return nil, fmt.Errorf("write header row: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetCellStyle(inventorySheet, "A1", "F1", headerStyle); err != nil {
		return nil, fmt.Errorf("style header row: %w", err)
	}

	for i, item := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("row cell name: %w", err)
		}
		row := []any{item.Name, item.Brand, item.Color, item.Quantity, item.Status, item.Location}
		if err := f.SetSheetRow(inventorySheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
