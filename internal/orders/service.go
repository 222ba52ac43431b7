package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/youssef-benmansour/fuel-vivo/internal/masterdata"
	"github.com/youssef-benmansour/fuel-vivo/internal/shared"
)

// Service implements order booking. Every mutation runs inside one
// transaction; pricing reads execute against the same transaction so a
// concurrent price import cannot split an order's quantity and price.
type Service struct {
	logger *slog.Logger
	repo   Repository
}

// NewService builds a Service.
func NewService(logger *slog.Logger, repo Repository) *Service {
	return &Service{logger: logger, repo: repo}
}

// Create books a single order. The total price is computed from the
// reference list; a missing price fails the creation outright.
func (s *Service) Create(ctx context.Context, req CreateOrderRequest) (Order, error) {
	var created Order
	err := s.repo.WithTx(ctx, func(ctx context.Context, r Repository) error {
		o, err := Build(ctx, r, req)
		if err != nil {
			return err
		}
		if err := r.Create(ctx, &o); err != nil {
			return err
		}
		created = o
		return nil
	})
	return created, err
}

// Get returns one order by id.
func (s *Service) Get(ctx context.Context, id int64) (Order, error) {
	return s.repo.Get(ctx, id)
}

// List returns a filtered, paginated order listing.
func (s *Service) List(ctx context.Context, filter ListFilter, page shared.Page) (ListResponse, error) {
	list, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return ListResponse{}, err
	}
	return NewListResponse(list, total, page), nil
}

// Update patches an order. Changing ship-to, material or quantity re-runs
// price resolution with the patched values; a vanished price aborts the
// update and leaves the stored total untouched.
func (s *Service) Update(ctx context.Context, id int64, req UpdateOrderRequest) (Order, error) {
	var updated Order
	err := s.repo.WithTx(ctx, func(ctx context.Context, r Repository) error {
		o, err := r.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := s.applyPatch(ctx, r, &o, req); err != nil {
			return err
		}
		if err := r.Update(ctx, &o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	return updated, err
}

// BulkUpdate applies one patch to every id atomically. Any missing id fails
// the whole request with the missing set named; no member is modified.
func (s *Service) BulkUpdate(ctx context.Context, req BulkUpdateRequest) ([]Order, error) {
	var updated []Order
	err := s.repo.WithTx(ctx, func(ctx context.Context, r Repository) error {
		list, err := s.requireAll(ctx, r, req.IDs)
		if err != nil {
			return err
		}
		for i := range list {
			if err := s.applyPatch(ctx, r, &list[i], req.Patch); err != nil {
				return err
			}
			if err := r.Update(ctx, &list[i]); err != nil {
				return err
			}
		}
		updated = list
		return nil
	})
	return updated, err
}

// Delete removes one order.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// DeleteMany removes a set of orders atomically; any missing id aborts the
// whole deletion.
func (s *Service) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	var deleted int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, r Repository) error {
		if _, err := s.requireAll(ctx, r, ids); err != nil {
			return err
		}
		n, err := r.DeleteMany(ctx, ids)
		deleted = n
		return err
	})
	return deleted, err
}

// AutoSaveResult reports the outcome of a booking-grid auto-save.
type AutoSaveResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// AutoSave upserts draft rows by their (sales order, item) key in one
// transaction. Each row is fully re-priced.
func (s *Service) AutoSave(ctx context.Context, req AutoSaveRequest) (AutoSaveResult, error) {
	var result AutoSaveResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, r Repository) error {
		for _, row := range req.Orders {
			existing, err := r.GetBySalesOrderItem(ctx, row.SalesOrder, row.Item)
			switch {
			case errors.Is(err, shared.ErrNotFound):
				o, err := Build(ctx, r, row)
				if err != nil {
					return err
				}
				if err := r.Create(ctx, &o); err != nil {
					return err
				}
				result.Created++
			case err != nil:
				return err
			default:
				fresh, err := Build(ctx, r, row)
				if err != nil {
					return err
				}
				fresh.ID = existing.ID
				fresh.TripID = existing.TripID
				fresh.Status = existing.Status
				fresh.CreatedAt = existing.CreatedAt
				if err := r.Update(ctx, &fresh); err != nil {
					return err
				}
				result.Updated++
			}
		}
		return nil
	})
	return result, err
}

// CreateBatch books parsed order-file rows grouped by sales order. Each
// group commits or rolls back on its own: a missing price in one group never
// touches its siblings. Groups whose sales order already exists are skipped
// whole. Rows without a sales order share one freshly allocated number,
// claimed inside the group's transaction.
func (s *Service) CreateBatch(ctx context.Context, rows []Row) ([]BatchGroupResult, error) {
	groups, keys := GroupBySalesOrder(rows)

	results := make([]BatchGroupResult, 0, len(keys))
	for _, key := range keys {
		group := groups[key]
		res := BatchGroupResult{}

		err := s.repo.WithTx(ctx, func(ctx context.Context, r Repository) error {
			salesOrder, parseErr := strconv.ParseInt(key, 10, 64)
			if key == "" || parseErr != nil || salesOrder <= 0 {
				max, err := r.MaxSalesOrder(ctx)
				salesOrder = NextSalesOrderNumber(max, err)
			} else {
				exists, err := r.SalesOrderExists(ctx, salesOrder)
				if err != nil {
					return err
				}
				if exists {
					res.SalesOrder = salesOrder
					res.Skipped = true
					return nil
				}
			}
			res.SalesOrder = salesOrder

			for i, row := range group {
				req := RequestFromRow(row)
				req.SalesOrder = salesOrder
				req.Item = i + 1
				o, err := Build(ctx, r, req)
				if err != nil {
					return err
				}
				if err := r.Create(ctx, &o); err != nil {
					return err
				}
			}
			res.Created = len(group)
			return nil
		})
		if err != nil {
			s.logger.Warn("order batch group failed",
				slog.Int64("sales_order", res.SalesOrder), slog.Any("error", err))
			res.Created = 0
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results, nil
}

// LatestSalesOrder returns the highest booked sales-order number, 0 when no
// orders exist.
func (s *Service) LatestSalesOrder(ctx context.Context) (int64, error) {
	return s.repo.MaxSalesOrder(ctx)
}

// Build assembles a persistable order from a request: internal-transfer
// carve-out, price resolution and class derivation, all against r's
// transaction when called inside one. Exported so the import reconciler can
// book member orders inside a trip transaction.
func Build(ctx context.Context, r Repository, req CreateOrderRequest) (Order, error) {
	o := Order{
		SalesOrder:            req.SalesOrder,
		Item:                  req.Item,
		OrderType:             req.OrderType,
		Customer:              req.Customer,
		CustomerName:          req.CustomerName,
		Plant:                 req.Plant,
		PlantName:             req.PlantName,
		ShipToParty:           req.ShipToParty,
		ShipToName:            req.ShipToName,
		ValuationType:         req.ValuationType,
		ShipToCity:            req.ShipToCity,
		MaterialCode:          masterdata.NormalizeMaterial(req.MaterialCode),
		MaterialName:          req.MaterialName,
		OrderQty:              req.OrderQty,
		SalesUOM:              req.SalesUOM,
		RequestedDeliveryDate: req.RequestedDeliveryDate,
		PatDoc:                req.PatDoc,
		TripID:                req.TripID,
		TourStartDate:         req.TourStartDate,
		OrgName:               req.OrgName,
		DriverName:            req.DriverName,
		VehicleID:             req.VehicleID,
		Status:                StatusCreated,
	}
	if req.TripID != nil {
		o.Status = StatusTruckLoading
	}

	if o.IsInternalTransfer() {
		if err := applyInternalTransfer(ctx, r, &o); err != nil {
			return Order{}, err
		}
	} else {
		if _, err := r.GetClient(ctx, o.Customer); err != nil {
			return Order{}, err
		}
		price, err := r.ResolvePrice(ctx, o.ShipToParty, o.MaterialCode)
		if err != nil {
			return Order{}, err
		}
		o.TotalPrice = o.OrderQty * price
	}

	o.Class = deriveClass(ctx, r, o.MaterialCode)
	return o, nil
}

// applyInternalTransfer rewrites a ZCON order onto the receiving depot: the
// counterparty is the plant itself, the city is the depot city, and no price
// applies. The plant must exist; a transfer to an unknown depot is fatal.
func applyInternalTransfer(ctx context.Context, r Repository, o *Order) error {
	plant, err := r.GetPlant(ctx, o.Plant)
	if err != nil {
		return err
	}
	identity := "CP" + o.Plant
	city := DepotCity
	o.Customer = identity
	o.CustomerName = plant.Description
	o.ShipToParty = identity
	o.ShipToName = plant.Description
	o.ShipToCity = &city
	o.TotalPrice = 0
	return nil
}

func deriveClass(ctx context.Context, r Repository, material string) Class {
	product, err := r.GetProduct(ctx, material)
	if err != nil {
		return ClassVrac
	}
	return DeriveClass(product.ClientLevelDF)
}

// applyPatch merges a patch into o and re-prices when a pricing input
// changed. Status moves must be forward.
func (s *Service) applyPatch(ctx context.Context, r Repository, o *Order, req UpdateOrderRequest) error {
	reprice := false

	if req.OrderType != nil {
		o.OrderType = *req.OrderType
	}
	if req.Customer != nil {
		o.Customer = *req.Customer
	}
	if req.CustomerName != nil {
		o.CustomerName = *req.CustomerName
	}
	if req.Plant != nil {
		o.Plant = *req.Plant
	}
	if req.PlantName != nil {
		o.PlantName = *req.PlantName
	}
	if req.ShipToParty != nil && *req.ShipToParty != o.ShipToParty {
		o.ShipToParty = *req.ShipToParty
		reprice = true
	}
	if req.ShipToName != nil {
		o.ShipToName = *req.ShipToName
	}
	if req.ValuationType != nil {
		o.ValuationType = req.ValuationType
	}
	if req.ShipToCity != nil {
		o.ShipToCity = req.ShipToCity
	}
	if req.MaterialCode != nil {
		normalized := masterdata.NormalizeMaterial(*req.MaterialCode)
		if normalized != o.MaterialCode {
			o.MaterialCode = normalized
			o.Class = deriveClass(ctx, r, normalized)
			reprice = true
		}
	}
	if req.MaterialName != nil {
		o.MaterialName = *req.MaterialName
	}
	if req.OrderQty != nil && *req.OrderQty != o.OrderQty {
		o.OrderQty = *req.OrderQty
		reprice = true
	}
	if req.SalesUOM != nil {
		o.SalesUOM = *req.SalesUOM
	}
	if req.RequestedDeliveryDate != nil {
		o.RequestedDeliveryDate = req.RequestedDeliveryDate
	}
	if req.PatDoc != nil {
		o.PatDoc = req.PatDoc
	}
	if req.TourStartDate != nil {
		o.TourStartDate = req.TourStartDate
	}
	if req.OrgName != nil {
		o.OrgName = req.OrgName
	}
	if req.DriverName != nil {
		o.DriverName = req.DriverName
	}
	if req.VehicleID != nil {
		o.VehicleID = req.VehicleID
	}
	if req.Status != nil {
		if !req.Status.IsValid() {
			return fmt.Errorf("status %q: %w", *req.Status, shared.ErrValidation)
		}
		if *req.Status != o.Status && !o.Status.CanAdvanceTo(*req.Status) {
			return fmt.Errorf("status %q to %q: %w", o.Status, *req.Status, shared.ErrValidation)
		}
		o.Status = *req.Status
	}

	if reprice {
		if o.IsInternalTransfer() {
			o.TotalPrice = 0
			return nil
		}
		price, err := r.ResolvePrice(ctx, o.ShipToParty, o.MaterialCode)
		if err != nil {
			return err
		}
		o.TotalPrice = o.OrderQty * price
	}
	return nil
}

// requireAll loads every id or fails with the exact missing set.
func (s *Service) requireAll(ctx context.Context, r Repository, ids []int64) ([]Order, error) {
	list, err := r.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(list) != len(ids) {
		found := make(map[int64]struct{}, len(list))
		for _, o := range list {
			found[o.ID] = struct{}{}
		}
		var missing []int64
		for _, id := range ids {
			if _, ok := found[id]; !ok {
				missing = append(missing, id)
			}
		}
		return nil, &shared.PartialNotFoundError{Entity: "orders", Missing: missing}
	}
	return list, nil
}

// RequestFromRow maps a parsed upload row onto a create request.
func RequestFromRow(row Row) CreateOrderRequest {
	return CreateOrderRequest{
		SalesOrder:            RowInt64(row, ColSalesOrder),
		OrderType:             RowString(row, ColOrderType),
		Customer:              RowString(row, ColCustomer),
		CustomerName:          RowString(row, ColCustomerName),
		Plant:                 RowString(row, ColPlant),
		PlantName:             RowString(row, ColPlantName),
		ShipToParty:           RowString(row, ColShipTo),
		ShipToName:            RowString(row, ColShipToName),
		ValuationType:         RowStringPtr(row, ColValuationType),
		ShipToCity:            RowStringPtr(row, ColShipToCity),
		MaterialCode:          RowString(row, ColMaterial),
		MaterialName:          RowString(row, ColMaterialName),
		OrderQty:              RowFloat(row, ColOrderQty),
		SalesUOM:              RowString(row, ColSalesUOM),
		RequestedDeliveryDate: RowTime(row, ColDeliveryDate),
		PatDoc:                RowStringPtr(row, ColPatDoc),
		TourStartDate:         RowTime(row, ColTourStartDate),
		OrgName:               RowStringPtr(row, ColOrgName),
		DriverName:            RowStringPtr(row, ColDriverName),
		VehicleID:             RowStringPtr(row, ColVehicleID),
	}
}
