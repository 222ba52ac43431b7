package trips

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/youssef-benmansour/fuel-vivo/internal/orders"
)

func makeMembers() []orders.Order {
	return []orders.Order{
		{ID: 1, SalesOrder: 1001, Item: 1, OrderQty: 100, TotalPrice: 75},
		{ID: 2, SalesOrder: 1001, Item: 2, OrderQty: 200, TotalPrice: 150},
		{ID: 3, SalesOrder: 1002, Item: 1, OrderQty: 300, TotalPrice: 225},
	}
}

func TestComputeInvoice(t *testing.T) {
	trip := Trip{
		TripNumber: 7,
		TotalOrders: []OrderSnapshot{
			{TotalPrice: 500},
			{TotalPrice: 250},
		},
	}

	inv := ComputeInvoice(trip, 10)

	assert.Equal(t, int64(7), inv.TripNumber)
	assert.Equal(t, 750.0, inv.Subtotal)
	assert.Equal(t, 75.0, inv.VATAmount)
	assert.Equal(t, 825.0, inv.Total)
	assert.Equal(t, "huit cent vingt-cinq dirhams", inv.TotalInWords)
}

func TestComputeInvoiceZeroRate(t *testing.T) {
	trip := Trip{TotalOrders: []OrderSnapshot{{TotalPrice: 100}}}

	inv := ComputeInvoice(trip, 0)

	assert.Equal(t, 100.0, inv.Subtotal)
	assert.Equal(t, 0.0, inv.VATAmount)
	assert.Equal(t, 100.0, inv.Total)
}

func TestFormatAmountUsesCommaDecimals(t *testing.T) {
	formatted := FormatAmount(750)
	assert.True(t, strings.HasSuffix(formatted, ",00"), "got %q", formatted)
	assert.True(t, strings.HasPrefix(formatted, "750"), "got %q", formatted)
}

func TestSnapshotDeduplicatesBySalesOrder(t *testing.T) {
	members := makeMembers()
	total, unique, qty := Snapshot(members)

	assert.Len(t, total, 3)
	assert.Len(t, unique, 2)
	assert.Equal(t, 600.0, qty)
	assert.Equal(t, int64(1), unique[0].OrderID, "first line per sales order wins")
}
