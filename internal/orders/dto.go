package orders

import (
	"time"

	"github.com/youssef-benmansour/fuel-vivo/internal/shared"
)

// CreateOrderRequest books a single order line. Total price is never taken
// from the client; it is always computed from the reference price list.
type CreateOrderRequest struct {
	SalesOrder            int64      `json:"sales_order" validate:"required,gt=0"`
	Item                  int        `json:"item" validate:"required,gt=0"`
	OrderType             string     `json:"order_type" validate:"required"`
	Customer              string     `json:"customer" validate:"required"`
	CustomerName          string     `json:"customer_name"`
	Plant                 string     `json:"plant" validate:"required"`
	PlantName             string     `json:"plant_name"`
	ShipToParty           string     `json:"ship_to_party" validate:"required"`
	ShipToName            string     `json:"ship_to_name"`
	ValuationType         *string    `json:"valuation_type"`
	ShipToCity            *string    `json:"ship_to_city"`
	MaterialCode          string     `json:"material_code" validate:"required"`
	MaterialName          string     `json:"material_name"`
	OrderQty              float64    `json:"order_qty" validate:"gte=0"`
	SalesUOM              string     `json:"sales_uom"`
	RequestedDeliveryDate *time.Time `json:"requested_delivery_date"`
	PatDoc                *string    `json:"pat_doc"`
	TripID                *int64     `json:"trip_id"`
	TourStartDate         *time.Time `json:"tour_start_date"`
	OrgName               *string    `json:"org_name"`
	DriverName            *string    `json:"driver_name"`
	VehicleID             *string    `json:"vehicle_id"`
}

// UpdateOrderRequest patches an order. Nil fields are left untouched. A
// change to ship-to, material or quantity re-prices the order.
type UpdateOrderRequest struct {
	OrderType             *string    `json:"order_type"`
	Customer              *string    `json:"customer"`
	CustomerName          *string    `json:"customer_name"`
	Plant                 *string    `json:"plant"`
	PlantName             *string    `json:"plant_name"`
	ShipToParty           *string    `json:"ship_to_party"`
	ShipToName            *string    `json:"ship_to_name"`
	ValuationType         *string    `json:"valuation_type"`
	ShipToCity            *string    `json:"ship_to_city"`
	MaterialCode          *string    `json:"material_code"`
	MaterialName          *string    `json:"material_name"`
	OrderQty              *float64   `json:"order_qty" validate:"omitempty,gte=0"`
	SalesUOM              *string    `json:"sales_uom"`
	RequestedDeliveryDate *time.Time `json:"requested_delivery_date"`
	PatDoc                *string    `json:"pat_doc"`
	TourStartDate         *time.Time `json:"tour_start_date"`
	OrgName               *string    `json:"org_name"`
	DriverName            *string    `json:"driver_name"`
	VehicleID             *string    `json:"vehicle_id"`
	Status                *Status    `json:"status"`
}

// BulkUpdateRequest applies the same patch to every id. The update is atomic:
// a single missing id fails the whole request with the missing set named.
type BulkUpdateRequest struct {
	IDs   []int64            `json:"ids" validate:"required,min=1,dive,gt=0"`
	Patch UpdateOrderRequest `json:"patch"`
}

// DeleteManyRequest removes a set of orders atomically.
type DeleteManyRequest struct {
	IDs []int64 `json:"ids" validate:"required,min=1,dive,gt=0"`
}

// AutoSaveRequest persists booking-grid drafts. Each row is upserted on its
// (sales order, item) natural key.
type AutoSaveRequest struct {
	Orders []CreateOrderRequest `json:"orders" validate:"required,min=1,dive"`
}

// BatchCreateRequest carries parsed order-file rows keyed by cleaned column
// headers. Rows are grouped by sales order before booking.
type BatchCreateRequest struct {
	Rows []Row `json:"rows" validate:"required,min=1"`
}

// BatchGroupResult reports the outcome for one sales-order group of a batch.
type BatchGroupResult struct {
	SalesOrder int64  `json:"sales_order"`
	Created    int    `json:"created"`
	Skipped    bool   `json:"skipped"`
	Error      string `json:"error,omitempty"`
}

// ListFilter narrows the order listing.
type ListFilter struct {
	Status     *Status
	Class      *Class
	TripID     *int64
	Unassigned bool
	From       *time.Time
	To         *time.Time
}

// ListResponse is a paginated order listing.
type ListResponse struct {
	Orders     []Order `json:"orders"`
	Total      int64   `json:"total"`
	Page       int     `json:"page"`
	TotalPages int     `json:"total_pages"`
}

// NewListResponse assembles the paginated envelope.
func NewListResponse(list []Order, total int64, page shared.Page) ListResponse {
	if list == nil {
		list = []Order{}
	}
	return ListResponse{
		Orders:     list,
		Total:      total,
		Page:       page.Number,
		TotalPages: page.TotalPages(int(total)),
	}
}
