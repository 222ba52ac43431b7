package trips

import (
	"time"

	"github.com/youssef-benmansour/fuel-vivo/internal/masterdata"
	"github.com/youssef-benmansour/fuel-vivo/internal/shared"
)

// CreateTripRequest plans a trip over an existing set of orders. Every id
// must resolve; a partial set fails the whole request.
type CreateTripRequest struct {
	OrderIDs              []int64    `json:"order_ids" validate:"required,min=1,dive,gt=0"`
	TourStartDate         *time.Time `json:"tour_start_date"`
	RequestedDeliveryDate *time.Time `json:"requested_delivery_date"`
	VehicleID             *string    `json:"vehicle_id"`
	DriverName            *string    `json:"driver_name"`
	DriverCIN             *string    `json:"driver_cin"`
	SealNumbers           []string   `json:"seal_numbers"`
}

// UpdateTripRequest patches a trip. A non-nil OrderIDs replaces the whole
// member set and recomputes the snapshot.
type UpdateTripRequest struct {
	OrderIDs              *[]int64   `json:"order_ids" validate:"omitempty,min=1,dive,gt=0"`
	TourStartDate         *time.Time `json:"tour_start_date"`
	RequestedDeliveryDate *time.Time `json:"requested_delivery_date"`
	VehicleID             *string    `json:"vehicle_id"`
	DriverName            *string    `json:"driver_name"`
	DriverCIN             *string    `json:"driver_cin"`
	SealNumbers           *[]string  `json:"seal_numbers"`
	Status                *Status    `json:"status"`
}

// ConfirmLoadingRequest carries the loading-confirmation inputs. Both fields
// are optional: absent seals keep the planned ones, an absent status moves
// the trip to In Progress.
type ConfirmLoadingRequest struct {
	Status      *Status   `json:"status"`
	SealNumbers *[]string `json:"seal_numbers"`
}

// TripDetail is a trip with its computed invoice figures and, when a vehicle
// is assigned, the truck's reference record.
type TripDetail struct {
	Trip
	Invoice Invoice           `json:"invoice"`
	Truck   *masterdata.Truck `json:"truck,omitempty"`
}

// DeleteResult reports a trip deletion and how many member orders were
// released back to Created.
type DeleteResult struct {
	Released int64 `json:"released_orders"`
}

// ListResponse is a paginated trip listing with status aggregates.
type ListResponse struct {
	Trips      []Trip           `json:"trips"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	TotalPages int              `json:"total_pages"`
	Counts     map[Status]int64 `json:"counts"`
}

// NewListResponse assembles the paginated envelope.
func NewListResponse(list []Trip, total int64, page shared.Page, counts map[Status]int64) ListResponse {
	if list == nil {
		list = []Trip{}
	}
	if counts == nil {
		counts = map[Status]int64{}
	}
	return ListResponse{
		Trips:      list,
		Total:      total,
		Page:       page.Number,
		TotalPages: page.TotalPages(int(total)),
		Counts:     counts,
	}
}
