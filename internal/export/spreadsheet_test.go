package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"hac-portal/internal/domain"
)

func TestInventorySpreadsheetContents(t *testing.T) {
	items := []domain.InventoryItem{
		{Name: "Botas de Hule", Brand: "Varios", Color: "Negro", Quantity: "7", Status: "Bueno", Location: "Estante Cochera Izquierda"},
		{Name: "GPS de Mano", Brand: "Garmin", Color: "Gris", Quantity: "2", Status: "Bueno", Location: "Oficina Principal"},
	}

	data, err := InventorySpreadsheet(items)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	const sheet = "Inventario de Activos"
	assert.Contains(t, f.GetSheetList(), sheet)

	for i, want := range InventoryHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		require.NoError(t, err)
		got, err := f.GetCellValue(sheet, cell)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	name, err := f.GetCellValue(sheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Botas de Hule", name)
	location, err := f.GetCellValue(sheet, "F3")
	require.NoError(t, err)
	assert.Equal(t, "Oficina Principal", location)
}

func TestInventorySpreadsheetEmpty(t *testing.T) {
	data, err := InventorySpreadsheet(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetCellValue("Inventario de Activos", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Activo", got)
}

func TestInventoryFilename(t *testing.T) {
	day := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "Inventario_HAC2025_2025-06-15.xlsx", InventoryFilename(day))
}
