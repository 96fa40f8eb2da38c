package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
)

func TestExcelExporter_Export(t *testing.T) {
	sheets := []port.BillSheet{
		{Name: "En attente", Bills: []entity.BillView{
			{Bill: entity.Bill{ID: "1", Email: "a@a", Name: "encore", Date: "4 Avr. 04", Amount: 400, Status: "En attente"}},
		}},
		{Name: "Accepté"},
		{Name: "Refusé"},
	}

	data, err := NewExcelExporter().Export(sheets)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"En attente", "Accepté", "Refusé"}, f.GetSheetList())

	header, err := f.GetCellValue("En attente", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Identifiant", header)

	name, err := f.GetCellValue("En attente", "D2")
	require.NoError(t, err)
	assert.Equal(t, "encore", name)

	amount, err := f.GetCellValue("En attente", "F2")
	require.NoError(t, err)
	assert.Equal(t, "400", amount)

	rows, err := f.GetRows("Refusé")
	require.NoError(t, err)
	assert.Len(t, rows, 1, "heading only")
}
