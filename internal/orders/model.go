// Package orders implements order booking: creation, pricing, updates and
// the order status lifecycle. Trip membership is managed by internal/trips.
package orders

import (
	"strings"
	"time"
)

// Status is the order lifecycle. Transitions are linear and forward-only;
// the single back-path is trip deletion, which forces members to Created.
type Status string

const (
	StatusCreated          Status = "Created"
	StatusTruckLoading     Status = "Truck Loading Confirmation"
	StatusLoadingConfirmed Status = "Loading Confirmed"
	StatusBLInvoice        Status = "BL & Invoice"
	StatusCompleted        Status = "Completed"
)

var statusRank = map[Status]int{
	StatusCreated:          0,
	StatusTruckLoading:     1,
	StatusLoadingConfirmed: 2,
	StatusBLInvoice:        3,
	StatusCompleted:        4,
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	_, ok := statusRank[s]
	return ok
}

// CanAdvanceTo reports whether next is a forward transition from s.
func (s Status) CanAdvanceTo(next Status) bool {
	from, okFrom := statusRank[s]
	to, okTo := statusRank[next]
	return okFrom && okTo && to > from
}

// Class partitions orders into packaged goods and bulk fuel.
type Class string

const (
	ClassPack Class = "PACK"
	ClassVrac Class = "VRAC"
)

// OrderTypeInternalTransfer marks a plant-to-plant transfer order. These
// orders skip pricing entirely and carry a synthesized CP{plant} customer.
const OrderTypeInternalTransfer = "ZCON"

// DepotCity is forced onto internal-transfer orders as the ship-to city.
const DepotCity = "Casablanca"

// DeriveClass classifies an order from the product's client-level attribute.
// Done once at creation and never revisited.
func DeriveClass(clientLevelDF *string) Class {
	if clientLevelDF != nil && strings.Contains(strings.ToLower(*clientLevelDF), "pack") {
		return ClassPack
	}
	return ClassVrac
}

// Order is a single line of a sales order. (SalesOrder, Item) is the unique
// natural key; TripID is the normalized link to the trip the order belongs
// to, null until assigned.
type Order struct {
	ID                    int64      `json:"id" db:"id"`
	SalesOrder            int64      `json:"sales_order" db:"sales_order"`
	Item                  int        `json:"item" db:"item"`
	OrderType             string     `json:"order_type" db:"order_type"`
	Customer              string     `json:"customer" db:"customer"`
	CustomerName          string     `json:"customer_name" db:"customer_name"`
	Plant                 string     `json:"plant" db:"plant"`
	PlantName             string     `json:"plant_name" db:"plant_name"`
	ShipToParty           string     `json:"ship_to_party" db:"ship_to_party"`
	ShipToName            string     `json:"ship_to_name" db:"ship_to_name"`
	ValuationType         *string    `json:"valuation_type,omitempty" db:"valuation_type"`
	ShipToCity            *string    `json:"ship_to_city,omitempty" db:"ship_to_city"`
	MaterialCode          string     `json:"material_code" db:"material_code"`
	MaterialName          string     `json:"material_name" db:"material_name"`
	OrderQty              float64    `json:"order_qty" db:"order_qty"`
	SalesUOM              string     `json:"sales_uom" db:"sales_uom"`
	RequestedDeliveryDate *time.Time `json:"requested_delivery_date,omitempty" db:"requested_delivery_date"`
	PatDoc                *string    `json:"pat_doc,omitempty" db:"pat_doc"`
	TripID                *int64     `json:"trip_id,omitempty" db:"trip_id"`
	TourStartDate         *time.Time `json:"tour_start_date,omitempty" db:"tour_start_date"`
	OrgName               *string    `json:"org_name,omitempty" db:"org_name"`
	DriverName            *string    `json:"driver_name,omitempty" db:"driver_name"`
	VehicleID             *string    `json:"vehicle_id,omitempty" db:"vehicle_id"`
	Status                Status     `json:"status" db:"status"`
	Class                 Class      `json:"class" db:"class"`
	TotalPrice            float64    `json:"total_price" db:"total_price"`
	CreatedAt             time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at" db:"updated_at"`
}

// IsInternalTransfer reports whether the order is a ZCON plant transfer.
func (o *Order) IsInternalTransfer() bool {
	return o.OrderType == OrderTypeInternalTransfer
}
