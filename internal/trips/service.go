package trips

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/youssef-benmansour/fuel-vivo/internal/orders"
	"github.com/youssef-benmansour/fuel-vivo/internal/platform/db"
	"github.com/youssef-benmansour/fuel-vivo/internal/shared"
)

// confirmRetries bounds how often a loading confirmation is replayed after
// losing the sequence counter row to a concurrent confirmation.
const confirmRetries = 3

// Service implements trip planning and the loading lifecycle. Every mutation
// runs in one transaction covering the trip row, the member order rows and
// any sequence allocation, so the snapshot and the trip_id FK set can never
// diverge.
type Service struct {
	logger *slog.Logger
	repo   Repository
}

// NewService builds a Service.
func NewService(logger *slog.Logger, repo Repository) *Service {
	return &Service{logger: logger, repo: repo}
}

// Create plans a trip over the given orders: inserts the trip with its
// snapshot, back-fills the trip number from the row id, re-points the
// members and advances them to Truck Loading Confirmation.
func (s *Service) Create(ctx context.Context, req CreateTripRequest) (Trip, error) {
	var created Trip
	err := s.repo.WithTx(ctx, func(ctx context.Context, r Repository) error {
		members, err := s.requireOrders(ctx, r, req.OrderIDs)
		if err != nil {
			return err
		}
		for i := range members {
			members[i].Status = orders.StatusTruckLoading
		}
		total, unique, qty := Snapshot(members)

		t := Trip{
			TourStartDate:         req.TourStartDate,
			RequestedDeliveryDate: req.RequestedDeliveryDate,
			VehicleID:             req.VehicleID,
			OrderQty:              qty,
			Status:                StatusPlanned,
			SealNumbers:           FilterSeals(req.SealNumbers),
			TotalOrders:           total,
			UniqueSalesOrders:     unique,
			DriverName:            req.DriverName,
			DriverCIN:             req.DriverCIN,
		}
		if err := r.Create(ctx, &t); err != nil {
			return err
		}
		t.TripNumber = t.ID
		if err := r.SetTripNumber(ctx, t.ID, t.TripNumber); err != nil {
			return err
		}
		if err := r.AssignOrders(ctx, &t, req.OrderIDs); err != nil {
			return err
		}
		created = t
		return nil
	})
	return created, err
}

// Get returns a trip with its invoice figures and the assigned truck's
// reference record. The VAT rate comes from the first member order's
// product; trips carry a single product family.
func (s *Service) Get(ctx context.Context, id int64) (TripDetail, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return TripDetail{}, err
	}

	var vatRate float64
	if len(t.TotalOrders) > 0 {
		tax, err := s.repo.ProductTax(ctx, t.TotalOrders[0].MaterialCode)
		if err == nil && tax != nil {
			vatRate = *tax
		}
	}
	detail := TripDetail{Trip: t, Invoice: ComputeInvoice(t, vatRate)}
	if t.VehicleID != nil {
		if truck, err := s.repo.Truck(ctx, *t.VehicleID); err == nil {
			detail.Truck = &truck
		}
	}
	return detail, nil
}

// List returns a paginated trip listing with per-status counts.
func (s *Service) List(ctx context.Context, page shared.Page) (ListResponse, error) {
	list, total, err := s.repo.List(ctx, page)
	if err != nil {
		return ListResponse{}, err
	}
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return ListResponse{}, err
	}
	return NewListResponse(list, total, page, counts), nil
}

// Update patches a trip. Replacing the order set releases every current
// member, assigns the new set and rebuilds the snapshot from scratch.
func (s *Service) Update(ctx context.Context, id int64, req UpdateTripRequest) (Trip, error) {
	var updated Trip
	err := s.repo.WithTx(ctx, func(ctx context.Context, r Repository) error {
		t, err := r.Get(ctx, id)
		if err != nil {
			return err
		}

		if req.TourStartDate != nil {
			t.TourStartDate = req.TourStartDate
		}
		if req.RequestedDeliveryDate != nil {
			t.RequestedDeliveryDate = req.RequestedDeliveryDate
		}
		if req.VehicleID != nil {
			t.VehicleID = req.VehicleID
		}
		if req.DriverName != nil {
			t.DriverName = req.DriverName
		}
		if req.DriverCIN != nil {
			t.DriverCIN = req.DriverCIN
		}
		if req.SealNumbers != nil {
			t.SealNumbers = FilterSeals(*req.SealNumbers)
		}
		if req.Status != nil {
			if !req.Status.IsValid() {
				return fmt.Errorf("trip status %q: %w", *req.Status, shared.ErrValidation)
			}
			t.Status = *req.Status
		}

		if req.OrderIDs != nil {
			members, err := s.requireOrders(ctx, r, *req.OrderIDs)
			if err != nil {
				return err
			}
			if _, err := r.ReleaseOrders(ctx, t.ID); err != nil {
				return err
			}
			if err := r.AssignOrders(ctx, &t, *req.OrderIDs); err != nil {
				return err
			}
			for i := range members {
				members[i].Status = orders.StatusTruckLoading
			}
			t.TotalOrders, t.UniqueSalesOrders, t.OrderQty = Snapshot(members)
		}

		if err := r.Update(ctx, &t); err != nil {
			return err
		}
		updated = t
		return nil
	})
	return updated, err
}

// ConfirmLoading allocates the delivery-note and invoice numbers, records
// the requested seal numbers and status, and moves the trip into progress.
// Numbers already present are kept, so a repeated confirmation changes
// nothing; member rows and snapshot entries advance to Loading Confirmed in
// the same transaction. A confirmation that loses the counter row to a
// concurrent one is replayed from scratch.
func (s *Service) ConfirmLoading(ctx context.Context, id int64, req ConfirmLoadingRequest) (Trip, error) {
	var confirmed Trip
	var err error
	for attempt := 1; ; attempt++ {
		err = s.repo.WithTx(ctx, func(ctx context.Context, r Repository) error {
			t, txErr := s.confirmLoading(ctx, r, id, req)
			if txErr != nil {
				return txErr
			}
			confirmed = t
			return nil
		})
		if err == nil || !db.IsSerializationFailure(err) {
			return confirmed, err
		}
		if attempt == confirmRetries {
			return Trip{}, fmt.Errorf("trip %d: %w", id, shared.ErrSequenceConflict)
		}
		s.logger.Warn("loading confirmation lost sequence counter, retrying",
			slog.Int64("id", id), slog.Int("attempt", attempt))
	}
}

func (s *Service) confirmLoading(ctx context.Context, r Repository, id int64, req ConfirmLoadingRequest) (Trip, error) {
	t, err := r.Get(ctx, id)
	if err != nil {
		return Trip{}, err
	}

	if t.DeliveryNoteNum == nil {
		n, err := r.AllocateSequence(ctx, SequenceDeliveryNote)
		if err != nil {
			return Trip{}, err
		}
		t.DeliveryNoteNum = &n
	}
	if t.InvoiceNum == nil {
		n, err := r.AllocateSequence(ctx, SequenceInvoice)
		if err != nil {
			return Trip{}, err
		}
		t.InvoiceNum = &n
	}

	if req.SealNumbers != nil {
		t.SealNumbers = FilterSeals(*req.SealNumbers)
	}
	t.Status = StatusInProgress
	if req.Status != nil {
		if !req.Status.IsValid() {
			return Trip{}, fmt.Errorf("trip status %q: %w", *req.Status, shared.ErrValidation)
		}
		t.Status = *req.Status
	}

	if err := r.SetMemberStatus(ctx, t.ID, orders.StatusLoadingConfirmed); err != nil {
		return Trip{}, err
	}
	t.TotalOrders = SnapshotStatus(t.TotalOrders, orders.StatusLoadingConfirmed)
	t.UniqueSalesOrders = SnapshotStatus(t.UniqueSalesOrders, orders.StatusLoadingConfirmed)

	if err := r.Update(ctx, &t); err != nil {
		return Trip{}, err
	}
	return t, nil
}

// Delete removes a trip after releasing its members. Membership is resolved
// through the trip_id FK so orders missing from a stale snapshot are still
// released, and snapshot-only strays are untouched.
func (s *Service) Delete(ctx context.Context, id int64) (DeleteResult, error) {
	var result DeleteResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, r Repository) error {
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
		released, err := r.ReleaseOrders(ctx, id)
		if err != nil {
			return err
		}
		if err := r.Delete(ctx, id); err != nil {
			return err
		}
		result.Released = released
		return nil
	})
	return result, err
}

func (s *Service) requireOrders(ctx context.Context, r Repository, ids []int64) ([]orders.Order, error) {
	list, err := r.Orders().GetMany(ctx, ids)
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
