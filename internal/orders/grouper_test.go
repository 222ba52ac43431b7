package orders

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupBySalesOrderStripsLeadingZeros(t *testing.T) {
	rows := []Row{
		{ColSalesOrder: "0001234", ColMaterial: "31280"},
		{ColSalesOrder: "1234", ColMaterial: "81358"},
		{ColSalesOrder: "5678", ColMaterial: "31280"},
	}

	groups, keys := GroupBySalesOrder(rows)

	require.Len(t, keys, 2)
	assert.Equal(t, []string{"1234", "5678"}, keys)
	assert.Len(t, groups["1234"], 2)
	assert.Len(t, groups["5678"], 1)
}

func TestGroupBySalesOrderKeepsUnnumberedRowsTogether(t *testing.T) {
	rows := []Row{
		{ColMaterial: "31280"},
		{ColSalesOrder: "", ColMaterial: "81358"},
	}

	groups, keys := GroupBySalesOrder(rows)

	require.Equal(t, []string{""}, keys)
	assert.Len(t, groups[""], 2)
}

func TestGroupByTripNumberDropsRowsWithoutTrip(t *testing.T) {
	rows := []Row{
		{ColTripNum: "0042"},
		{ColTripNum: ""},
		{ColTripNum: "42"},
		{ColMaterial: "31280"},
	}

	groups, keys := GroupByTripNumber(rows)

	require.Equal(t, []string{"42"}, keys)
	assert.Len(t, groups["42"], 2)
}

func TestNextSalesOrderNumber(t *testing.T) {
	assert.Equal(t, int64(43), NextSalesOrderNumber(42, nil))
	assert.Equal(t, int64(1), NextSalesOrderNumber(0, nil))
	assert.Equal(t, int64(1), NextSalesOrderNumber(99, errors.New("boom")))
}

func TestRowFloatAcceptsCommaDecimals(t *testing.T) {
	row := Row{ColOrderQty: "1 234,5", "Price": "0,75"}
	assert.Equal(t, 0.75, RowFloat(row, "Price"))
	assert.Equal(t, float64(0), RowFloat(row, ColOrderQty)) // embedded space is not a number
	assert.Equal(t, float64(0), RowFloat(row, "absent"))
}

func TestRowStringFormatsNumericCells(t *testing.T) {
	row := Row{ColSalesOrder: float64(1234), ColPlant: "  MA01  "}
	assert.Equal(t, "1234", RowString(row, ColSalesOrder))
	assert.Equal(t, "MA01", RowString(row, ColPlant))
}
