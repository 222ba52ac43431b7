package fileparse

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/youssef-benmansour/fuel-vivo/internal/shared"
)

func TestParseCSV(t *testing.T) {
	csv := strings.Join([]string{
		`Sales Order,Material,Order Qty`,
		`1001,00031280,1000`,
		`,,`,
		`1002,00081358,"2,500"`,
	}, "\n")

	rows, err := Parse("orders.csv", strings.NewReader(csv))

	require.NoError(t, err)
	require.Len(t, rows, 2, "blank line skipped")
	assert.Equal(t, "1001", rows[0]["Sales Order"])
	assert.Equal(t, "00031280", rows[0]["Material"])
	assert.Equal(t, "2,500", rows[1]["Order Qty"])
}

func TestParseCSVCleansWrappedHeaders(t *testing.T) {
	csv := "\"Requested\nDelivery Date\",\"  Trip   Num \"\n25.12.2025,42\n"

	rows, err := Parse("orders.csv", strings.NewReader(csv))

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "25.12.2025", rows[0]["Requested Delivery Date"])
	assert.Equal(t, "42", rows[0]["Trip Num"])
}

func TestParseCSVRaggedRows(t *testing.T) {
	csv := "A,B,C\n1,2\n3,4,5,6\n"

	rows, err := Parse("f.csv", strings.NewReader(csv))

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2", rows[0]["B"])
	assert.NotContains(t, rows[0], "C", "short row leaves trailing columns unset")
	assert.Equal(t, "5", rows[1]["C"])
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Plant", "Description"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"MA01", "Dépôt Casablanca"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"MA02", "Dépôt Mohammedia"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, err := Parse("plants.xlsx", bytes.NewReader(buf.Bytes()))

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "MA01", rows[0]["Plant"])
	assert.Equal(t, "Dépôt Mohammedia", rows[1]["Description"])
}

func TestParseRejectsUnsupportedExtension(t *testing.T) {
	_, err := Parse("orders.pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestParseEmptyCSV(t *testing.T) {
	_, err := Parse("empty.csv", strings.NewReader(""))
	assert.ErrorIs(t, err, shared.ErrValidation)
}
