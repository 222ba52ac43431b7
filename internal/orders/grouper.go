package orders

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Row is a parsed upload row keyed by cleaned column header.
type Row = map[string]any

// Column headers as they appear after fileparse header cleanup. Order files
// exported from the upstream system use these names; coercion happens in
// internal/importer before rows reach this package.
const (
	ColSalesOrder    = "Sales Order"
	ColItem          = "Item"
	ColOrderType     = "Order Type"
	ColCustomer      = "Customer"
	ColCustomerName  = "Customer Name"
	ColPlant         = "Plant"
	ColPlantName     = "Plant Name"
	ColShipTo        = "Ship to Party"
	ColShipToName    = "Ship to Name"
	ColValuationType = "Valuation Type"
	ColShipToCity    = "City"
	ColMaterial      = "Material"
	ColMaterialName  = "Material Name"
	ColOrderQty      = "Order Qty"
	ColSalesUOM      = "Sales UOM"
	ColDeliveryDate  = "Requested Delivery Date"
	ColPatDoc        = "PAT Doc"
	ColTripNum       = "Trip Num"
	ColTourStartDate = "Tour Start Date"
	ColOrgName       = "Org Name"
	ColDriverName    = "Driver Name"
	ColVehicleID     = "Vehicle ID"
)

// GroupBySalesOrder partitions rows by their sales-order value, leading
// zeros stripped. Rows without one share the "" group and get a freshly
// allocated number at booking time. Key order is first-seen.
func GroupBySalesOrder(rows []Row) (map[string][]Row, []string) {
	return groupBy(rows, ColSalesOrder)
}

// GroupByTripNumber partitions rows by trip number, leading zeros stripped.
// Rows without a trip number are dropped; an order row that names no trip
// cannot be reconciled into one.
func GroupByTripNumber(rows []Row) (map[string][]Row, []string) {
	groups, keys := groupBy(rows, ColTripNum)
	if _, ok := groups[""]; ok {
		delete(groups, "")
		kept := keys[:0]
		for _, k := range keys {
			if k != "" {
				kept = append(kept, k)
			}
		}
		keys = kept
	}
	return groups, keys
}

func groupBy(rows []Row, col string) (map[string][]Row, []string) {
	groups := make(map[string][]Row)
	var keys []string
	for _, row := range rows {
		key := stripLeadingZeros(RowString(row, col))
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], row)
	}
	return groups, keys
}

// NextSalesOrderNumber returns max+1, failing closed to 1 when the table is
// empty or the max could not be read.
func NextSalesOrderNumber(max int64, err error) int64 {
	if err != nil || max < 0 {
		return 1
	}
	return max + 1
}

func stripLeadingZeros(s string) string {
	trimmed := strings.TrimLeft(strings.TrimSpace(s), "0")
	if trimmed == "" && strings.TrimSpace(s) != "" {
		return "0"
	}
	return trimmed
}

// RowString reads a cell as its string form; nil and absent cells are "".
func RowString(row Row, col string) string {
	v, ok := row[col]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// RowFloat reads a cell as a float, tolerating comma decimal separators.
// Absent, nil and unparsable cells are 0.
func RowFloat(row Row, col string) float64 {
	v, ok := row[col]
	if !ok || v == nil {
		return 0
	}
	switch t := v.(type) {
	case float64:
		return t
	case int64:
		return float64(t)
	case int:
		return float64(t)
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(t), ",", "."), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// RowInt64 reads a cell as an integer, truncating floats.
func RowInt64(row Row, col string) int64 {
	v, ok := row[col]
	if !ok || v == nil {
		return 0
	}
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		n, err := strconv.ParseInt(strings.TrimLeft(strings.TrimSpace(t), "0"), 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// RowTime reads a cell as a time. Importer coercion stores dates as
// time.Time; string cells fall back to the common upload layouts.
func RowTime(row Row, col string) *time.Time {
	v, ok := row[col]
	if !ok || v == nil {
		return nil
	}
	switch t := v.(type) {
	case time.Time:
		return &t
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		for _, layout := range []string{"02.01.2006", "2006-01-02", "02/01/2006", time.RFC3339} {
			if parsed, err := time.Parse(layout, s); err == nil {
				return &parsed
			}
		}
		return nil
	default:
		return nil
	}
}

// RowStringPtr reads a cell as a nullable string.
func RowStringPtr(row Row, col string) *string {
	s := RowString(row, col)
	if s == "" {
		return nil
	}
	return &s
}
