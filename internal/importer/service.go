package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/youssef-benmansour/fuel-vivo/internal/masterdata"
	"github.com/youssef-benmansour/fuel-vivo/internal/orders"
	"github.com/youssef-benmansour/fuel-vivo/internal/platform/cache"
	"github.com/youssef-benmansour/fuel-vivo/internal/shared"
	"github.com/youssef-benmansour/fuel-vivo/internal/trips"
)

// Service reconciles parsed upload rows into the database. Trip/order files
// commit one transaction per trip group; entity files upsert row by row. A
// failing group or row is recorded and never aborts its siblings.
type Service struct {
	logger  *slog.Logger
	trips   trips.Repository
	master  masterdata.Repository
	history HistoryRepository
	store   *cache.Store
}

// NewService builds a Service.
func NewService(logger *slog.Logger, tripRepo trips.Repository, master masterdata.Repository,
	history HistoryRepository, store *cache.Store) *Service {
	return &Service{logger: logger, trips: tripRepo, master: master, history: history, store: store}
}

// ReconcileTripOrders groups rows by trip number and reconciles each group
// in its own transaction: the trip is found or created by its number, member
// orders are booked or re-pointed, and the snapshot is rebuilt from the full
// FK membership. A failed group rolls back alone and is reported in the
// errors list.
func (s *Service) ReconcileTripOrders(ctx context.Context, fileName string, rows []Row) (ReconcileResult, error) {
	result := ReconcileResult{BatchID: uuid.New(), Errors: []string{}}
	groups, keys := orders.GroupByTripNumber(rows)

	failed := 0
	for _, key := range keys {
		tripNumber, err := strconv.ParseInt(key, 10, 64)
		if err != nil || tripNumber <= 0 {
			failed++
			result.Errors = appendError(result.Errors, fmt.Sprintf("trip %q: invalid trip number", key))
			continue
		}
		created, updated, err := s.reconcileGroup(ctx, tripNumber, groups[key])
		if err != nil {
			failed++
			s.logger.Warn("trip group reconciliation failed",
				slog.Int64("trip_number", tripNumber), slog.Any("error", err))
			result.Errors = appendError(result.Errors, fmt.Sprintf("trip %d: %v", tripNumber, err))
			continue
		}
		result.Created += created
		result.Updated += updated
	}

	s.record(ctx, &ImportRecord{
		BatchID:         result.BatchID,
		ImportType:      "trips",
		FileName:        fileName,
		RecordsImported: result.Created + result.Updated,
		Status:          outcome(result.Created+result.Updated, failed),
		Details: map[string]any{
			"created": result.Created,
			"updated": result.Updated,
			"errors":  result.Errors,
		},
	})
	return result, nil
}

func (s *Service) reconcileGroup(ctx context.Context, tripNumber int64, group []Row) (created, updated int, err error) {
	err = s.trips.WithTx(ctx, func(ctx context.Context, r trips.Repository) error {
		or := r.Orders()

		trip, err := r.GetByTripNumber(ctx, tripNumber)
		if errors.Is(err, shared.ErrNotFound) {
			first := group[0]
			trip = trips.Trip{
				TripNumber:            tripNumber,
				TourStartDate:         orders.RowTime(first, orders.ColTourStartDate),
				RequestedDeliveryDate: orders.RowTime(first, orders.ColDeliveryDate),
				VehicleID:             orders.RowStringPtr(first, orders.ColVehicleID),
				DriverName:            orders.RowStringPtr(first, orders.ColDriverName),
				Status:                trips.StatusPlanned,
				SealNumbers:           []string{},
			}
			if err := r.Create(ctx, &trip); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		for i, row := range group {
			req := orders.RequestFromRow(row)
			if req.SalesOrder <= 0 {
				return fmt.Errorf("row %d: missing sales order: %w", i+1, shared.ErrValidation)
			}
			req.Item = int(orders.RowInt64(row, orders.ColItem))
			if req.Item == 0 {
				req.Item = i + 1
			}
			req.TripID = &trip.ID

			existing, err := or.GetBySalesOrderItem(ctx, req.SalesOrder, req.Item)
			switch {
			case errors.Is(err, shared.ErrNotFound):
				o, err := orders.Build(ctx, or, req)
				if err != nil {
					return err
				}
				if err := or.Create(ctx, &o); err != nil {
					return err
				}
				created++
			case err != nil:
				return err
			default:
				existing.TripID = &trip.ID
				existing.Status = orders.StatusTruckLoading
				existing.TourStartDate = trip.TourStartDate
				existing.DriverName = trip.DriverName
				existing.VehicleID = trip.VehicleID
				if err := or.Update(ctx, &existing); err != nil {
					return err
				}
				updated++
			}
		}

		// Rebuild the snapshot from the FK membership, which also picks up
		// members assigned before this import.
		tripID := trip.ID
		members, _, err := or.List(ctx, orders.ListFilter{TripID: &tripID},
			shared.Page{Number: 1, Limit: 10000})
		if err != nil {
			return err
		}
		trip.TotalOrders, trip.UniqueSalesOrders, trip.OrderQty = trips.Snapshot(members)
		return r.Update(ctx, &trip)
	})
	if err != nil {
		return 0, 0, err
	}
	return created, updated, nil
}

// ImportEntities coerces and upserts reference rows of the given type.
// With replace set, the table is wiped first. Row failures are collected and
// reported; the rest of the file still lands.
func (s *Service) ImportEntities(ctx context.Context, typ, fileName string, rows []Row, replace bool) (EntityResult, error) {
	if !KnownEntityType(typ) {
		return EntityResult{}, fmt.Errorf("import type %q: %w", typ, shared.ErrValidation)
	}
	result := EntityResult{BatchID: uuid.New(), Type: typ, Errors: []string{}}
	rows = CoerceRows(entitySchemas[typ], rows)

	if replace {
		wiped, err := s.master.Wipe(ctx, typ)
		if err != nil {
			return EntityResult{}, err
		}
		result.Wiped = wiped
	}

	failed := 0
	for i, row := range rows {
		isNew, err := s.upsertEntity(ctx, typ, row)
		if err != nil {
			failed++
			result.Errors = appendError(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		if isNew {
			result.Created++
		} else {
			result.Updated++
		}
	}

	s.store.Invalidate(ctx, masterdata.CacheKeys...)

	s.record(ctx, &ImportRecord{
		BatchID:         result.BatchID,
		ImportType:      typ,
		FileName:        fileName,
		RecordsImported: result.Created + result.Updated,
		Status:          outcome(result.Created+result.Updated, failed),
		Details: map[string]any{
			"created": result.Created,
			"updated": result.Updated,
			"wiped":   result.Wiped,
			"errors":  result.Errors,
		},
	})
	return result, nil
}

// History returns the paginated import log.
func (s *Service) History(ctx context.Context, page shared.Page) ([]ImportRecord, int64, error) {
	return s.history.List(ctx, page)
}

func (s *Service) upsertEntity(ctx context.Context, typ string, row Row) (bool, error) {
	switch typ {
	case "prices":
		return s.master.UpsertPrice(ctx, masterdata.Price{
			ShipTo:    orders.RowString(row, ColPriceShipTo),
			Material:  orders.RowString(row, ColPriceMaterial),
			UnitPrice: orders.RowFloat(row, ColPriceUnit),
		})
	case "products":
		p := masterdata.Product{
			Material:      orders.RowString(row, ColProductMaterial),
			Description:   orders.RowString(row, ColProductDescription),
			BaseUOM:       orders.RowString(row, ColProductBaseUOM),
			Tax:           floatPtr(row, ColProductTax),
			ClientLevelDF: orders.RowStringPtr(row, ColProductClientDF),
		}
		masterdata.ApplyDefaults(&p)
		return s.master.UpsertProduct(ctx, p)
	case "plants":
		return s.master.UpsertPlant(ctx, masterdata.Plant{
			Code:        orders.RowString(row, ColPlantCode),
			Description: orders.RowString(row, ColPlantDescription),
		})
	case "clients":
		return s.master.UpsertClient(ctx, masterdata.Client{
			SoldTo:          orders.RowString(row, ColClientSoldTo),
			SoldToName:      orders.RowString(row, ColClientSoldToName),
			ShipTo:          orders.RowStringPtr(row, ColClientShipTo),
			ShipToName:      orders.RowStringPtr(row, ColClientShipToName),
			ShipToAddress:   orders.RowStringPtr(row, ColClientShipToAddress),
			ShipToCity:      orders.RowStringPtr(row, ColClientShipToCity),
			LegalStatus:     orders.RowStringPtr(row, ColClientLegalStatus),
			LegalStatusName: orders.RowStringPtr(row, ColClientLegalName),
			ICE:             orders.RowStringPtr(row, ColClientICE),
			FiscalID:        orders.RowStringPtr(row, ColClientFiscalID),
			PaymentTerms:    orders.RowStringPtr(row, ColClientPaymentTerms),
		})
	case "trucks":
		return s.master.UpsertTruck(ctx, masterdata.Truck{
			Vehicle:       orders.RowString(row, ColTruckVehicle),
			TrailerNumber: orders.RowStringPtr(row, ColTruckTrailer),
			HaulierNumber: orders.RowStringPtr(row, ColTruckHaulierNum),
			HaulierName:   orders.RowStringPtr(row, ColTruckHaulierName),
			DriverName:    orders.RowStringPtr(row, ColTruckDriverName),
			DriverCIN:     orders.RowStringPtr(row, ColTruckDriverCIN),
			Capacity:      floatPtr(row, ColTruckCapacity),
			Weight:        floatPtr(row, ColTruckWeight),
			MPGI:          orders.RowStringPtr(row, ColTruckMPGI),
			Seals:         int32Ptr(row, ColTruckSeals),
			VehicleType:   orders.RowStringPtr(row, ColTruckVehicleType),
			Compartments:  compartments(row),
		})
	case "tanks":
		return s.master.UpsertTank(ctx, masterdata.Tank{
			PlantCode:  orders.RowString(row, ColTankPlant),
			TankNumber: orders.RowString(row, ColTankNumber),
			Material:   orders.RowStringPtr(row, ColTankMaterial),
			Capacity:   floatPtr(row, ColTankCapacity),
		})
	default:
		return false, fmt.Errorf("import type %q: %w", typ, shared.ErrValidation)
	}
}

// record inserts a history row and trims the log, best effort: a history
// failure never fails the import itself.
func (s *Service) record(ctx context.Context, rec *ImportRecord) {
	if err := s.history.Insert(ctx, rec); err != nil {
		s.logger.Error("record import history", slog.Any("error", err))
		return
	}
	if _, err := s.history.Trim(ctx, historyRetention); err != nil {
		s.logger.Error("trim import history", slog.Any("error", err))
	}
}

func outcome(imported, failed int) string {
	switch {
	case failed == 0:
		return StatusCompleted
	case imported == 0:
		return StatusFailed
	default:
		return StatusPartial
	}
}

func appendError(errs []string, msg string) []string {
	if len(errs) >= maxErrorDetails {
		return errs
	}
	return append(errs, msg)
}

func floatPtr(row Row, col string) *float64 {
	if v, ok := row[col]; !ok || v == nil {
		return nil
	}
	f := orders.RowFloat(row, col)
	return &f
}

func int32Ptr(row Row, col string) *int32 {
	if v, ok := row[col]; !ok || v == nil {
		return nil
	}
	n := int32(orders.RowInt64(row, col))
	return &n
}

// compartments parses the "Compartments" column, a separator-delimited list
// of chamber capacities.
func compartments(row Row) []float64 {
	raw := orders.RowString(row, "Compartments")
	if raw == "" {
		return nil
	}
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ';' || r == ',' || r == '/' || r == ' '
	})
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			continue
		}
		out = append(out, f)
	}
	return out
}
