// Package trips groups orders into delivery trips and drives the loading
// and invoicing lifecycle, including delivery-note and invoice numbering.
package trips

import (
	"strings"
	"time"

	"github.com/youssef-benmansour/fuel-vivo/internal/orders"
)

// Status is the trip lifecycle.
type Status string

const (
	StatusPlanned    Status = "Planned"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
	StatusCancelled  Status = "Cancelled"
)

// IsValid reports whether s is a known trip status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPlanned, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// OrderSnapshot is the condensed member-order copy embedded in the trip.
// The authoritative membership is the orders.trip_id FK; the snapshot is a
// denormalized read model kept equal to the FK set after every mutating tx.
type OrderSnapshot struct {
	OrderID      int64         `json:"order_id"`
	SalesOrder   int64         `json:"sales_order"`
	Item         int           `json:"item"`
	Customer     string        `json:"customer"`
	CustomerName string        `json:"customer_name"`
	ShipToParty  string        `json:"ship_to_party"`
	MaterialCode string        `json:"material_code"`
	MaterialName string        `json:"material_name"`
	OrderQty     float64       `json:"order_qty"`
	TotalPrice   float64       `json:"total_price"`
	Status       orders.Status `json:"status"`
}

// Trip is a planned delivery run. TripNumber is back-filled from the row id
// on creation and never changes afterwards.
type Trip struct {
	ID                    int64           `json:"id" db:"id"`
	TripNumber            int64           `json:"trip_number" db:"trip_number"`
	TourStartDate         *time.Time      `json:"tour_start_date,omitempty" db:"tour_start_date"`
	RequestedDeliveryDate *time.Time      `json:"requested_delivery_date,omitempty" db:"requested_delivery_date"`
	VehicleID             *string         `json:"vehicle_id,omitempty" db:"vehicle_id"`
	OrderQty              float64         `json:"order_qty" db:"order_qty"`
	Status                Status          `json:"status" db:"status"`
	SealNumbers           []string        `json:"seal_numbers" db:"seal_numbers"`
	TotalOrders           []OrderSnapshot `json:"total_orders" db:"total_orders"`
	UniqueSalesOrders     []OrderSnapshot `json:"unique_sales_orders" db:"unique_sales_orders"`
	DriverName            *string         `json:"driver_name,omitempty" db:"driver_name"`
	DriverCIN             *string         `json:"driver_cin,omitempty" db:"driver_cin"`
	DeliveryNoteNum       *int64          `json:"delivery_note_num,omitempty" db:"delivery_note_num"`
	InvoiceNum            *int64          `json:"invoice_num,omitempty" db:"invoice_num"`
	CreatedAt             time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at" db:"updated_at"`
}

// FilterSeals keeps only non-empty seal numbers, trimmed. Applied on every
// write so blank grid cells never persist.
func FilterSeals(seals []string) []string {
	filtered := make([]string, 0, len(seals))
	for _, s := range seals {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			filtered = append(filtered, trimmed)
		}
	}
	return filtered
}

// Snapshot builds the embedded order copies and summed quantity from the
// member orders. UniqueSalesOrders keeps the first line per sales order.
func Snapshot(members []orders.Order) (total []OrderSnapshot, unique []OrderSnapshot, qty float64) {
	total = make([]OrderSnapshot, 0, len(members))
	unique = make([]OrderSnapshot, 0, len(members))
	seen := make(map[int64]struct{}, len(members))

	for _, o := range members {
		snap := OrderSnapshot{
			OrderID:      o.ID,
			SalesOrder:   o.SalesOrder,
			Item:         o.Item,
			Customer:     o.Customer,
			CustomerName: o.CustomerName,
			ShipToParty:  o.ShipToParty,
			MaterialCode: o.MaterialCode,
			MaterialName: o.MaterialName,
			OrderQty:     o.OrderQty,
			TotalPrice:   o.TotalPrice,
			Status:       o.Status,
		}
		total = append(total, snap)
		qty += o.OrderQty
		if _, ok := seen[o.SalesOrder]; !ok {
			seen[o.SalesOrder] = struct{}{}
			unique = append(unique, snap)
		}
	}
	return total, unique, qty
}

// SnapshotStatus rewrites the status on every snapshot entry. Used when
// loading confirmation advances all member orders at once.
func SnapshotStatus(snaps []OrderSnapshot, status orders.Status) []OrderSnapshot {
	updated := make([]OrderSnapshot, len(snaps))
	for i, s := range snaps {
		s.Status = status
		updated[i] = s
	}
	return updated
}
