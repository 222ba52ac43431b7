package trips

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youssef-benmansour/fuel-vivo/internal/masterdata"
	"github.com/youssef-benmansour/fuel-vivo/internal/orders"
	"github.com/youssef-benmansour/fuel-vivo/internal/shared"
)

// mockRepo is an in-memory Repository covering trips and their member
// orders. WithTx serializes transactions on a mutex the way row locks would
// and restores all state on error, mirroring a rollback. seqConflicts, when
// positive, makes that many allocations fail with a serialization error
// before the counter hands out numbers again.
type mockRepo struct {
	mu           sync.Mutex
	trips        map[int64]Trip
	orders       map[int64]orders.Order
	nextTripID   int64
	taxes        map[string]*float64
	trucks       map[string]masterdata.Truck
	allocCalls   map[SequenceKind]int
	seqNext      map[SequenceKind]int64
	seqConflicts int
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		trips:      make(map[int64]Trip),
		orders:     make(map[int64]orders.Order),
		taxes:      make(map[string]*float64),
		trucks:     make(map[string]masterdata.Truck),
		allocCalls: make(map[SequenceKind]int),
		seqNext: map[SequenceKind]int64{
			SequenceDeliveryNote: 14615,
			SequenceInvoice:      39124,
		},
	}
}

func (m *mockRepo) WithTx(ctx context.Context, fn func(ctx context.Context, r Repository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tripBackup := make(map[int64]Trip, len(m.trips))
	for k, v := range m.trips {
		tripBackup[k] = v
	}
	orderBackup := make(map[int64]orders.Order, len(m.orders))
	for k, v := range m.orders {
		orderBackup[k] = v
	}
	seqBackup := make(map[SequenceKind]int64, len(m.seqNext))
	for k, v := range m.seqNext {
		seqBackup[k] = v
	}
	if err := fn(ctx, m); err != nil {
		m.trips = tripBackup
		m.orders = orderBackup
		m.seqNext = seqBackup
		return err
	}
	return nil
}

func (m *mockRepo) Create(_ context.Context, t *Trip) error {
	m.nextTripID++
	t.ID = m.nextTripID
	m.trips[t.ID] = *t
	return nil
}

func (m *mockRepo) Get(_ context.Context, id int64) (Trip, error) {
	t, ok := m.trips[id]
	if !ok {
		return Trip{}, fmt.Errorf("trip %d: %w", id, shared.ErrNotFound)
	}
	return t, nil
}

func (m *mockRepo) GetByTripNumber(_ context.Context, tripNumber int64) (Trip, error) {
	for _, t := range m.trips {
		if t.TripNumber == tripNumber {
			return t, nil
		}
	}
	return Trip{}, fmt.Errorf("trip number %d: %w", tripNumber, shared.ErrNotFound)
}

func (m *mockRepo) List(_ context.Context, page shared.Page) ([]Trip, int64, error) {
	var list []Trip
	for _, t := range m.trips {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list, int64(len(list)), nil
}

func (m *mockRepo) CountByStatus(_ context.Context) (map[Status]int64, error) {
	counts := make(map[Status]int64)
	for _, t := range m.trips {
		counts[t.Status]++
	}
	return counts, nil
}

func (m *mockRepo) Update(_ context.Context, t *Trip) error {
	if _, ok := m.trips[t.ID]; !ok {
		return fmt.Errorf("trip %d: %w", t.ID, shared.ErrNotFound)
	}
	m.trips[t.ID] = *t
	return nil
}

func (m *mockRepo) SetTripNumber(_ context.Context, id, tripNumber int64) error {
	t, ok := m.trips[id]
	if !ok {
		return fmt.Errorf("trip %d: %w", id, shared.ErrNotFound)
	}
	t.TripNumber = tripNumber
	m.trips[id] = t
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.trips[id]; !ok {
		return fmt.Errorf("trip %d: %w", id, shared.ErrNotFound)
	}
	delete(m.trips, id)
	return nil
}

func (m *mockRepo) Orders() orders.Repository {
	return &memberOrders{m: m}
}

func (m *mockRepo) AssignOrders(_ context.Context, t *Trip, ids []int64) error {
	for _, id := range ids {
		o, ok := m.orders[id]
		if !ok {
			return fmt.Errorf("order %d: %w", id, shared.ErrNotFound)
		}
		o.TripID = &t.ID
		o.Status = orders.StatusTruckLoading
		o.TourStartDate = t.TourStartDate
		o.DriverName = t.DriverName
		o.VehicleID = t.VehicleID
		m.orders[id] = o
	}
	return nil
}

func (m *mockRepo) ReleaseOrders(_ context.Context, tripID int64) (int64, error) {
	var released int64
	for id, o := range m.orders {
		if o.TripID != nil && *o.TripID == tripID {
			o.TripID = nil
			o.Status = orders.StatusCreated
			o.TourStartDate = nil
			o.DriverName = nil
			o.VehicleID = nil
			o.OrgName = nil
			m.orders[id] = o
			released++
		}
	}
	return released, nil
}

func (m *mockRepo) SetMemberStatus(_ context.Context, tripID int64, status orders.Status) error {
	for id, o := range m.orders {
		if o.TripID != nil && *o.TripID == tripID {
			o.Status = status
			m.orders[id] = o
		}
	}
	return nil
}

func (m *mockRepo) ProductTax(_ context.Context, material string) (*float64, error) {
	tax, ok := m.taxes[material]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", material, shared.ErrNotFound)
	}
	return tax, nil
}

func (m *mockRepo) Truck(_ context.Context, vehicle string) (masterdata.Truck, error) {
	t, ok := m.trucks[vehicle]
	if !ok {
		return masterdata.Truck{}, fmt.Errorf("truck %s: %w", vehicle, shared.ErrNotFound)
	}
	return t, nil
}

func (m *mockRepo) AllocateSequence(_ context.Context, kind SequenceKind) (int64, error) {
	if m.seqConflicts > 0 {
		m.seqConflicts--
		return 0, &pgconn.PgError{Code: "40001", Message: "could not serialize access due to concurrent update"}
	}
	m.allocCalls[kind]++
	n := m.seqNext[kind]
	m.seqNext[kind] = n + 1
	return n, nil
}

// memberOrders implements the slice of orders.Repository the trip service
// touches; everything else is unreachable from these tests.
type memberOrders struct {
	m *mockRepo
}

func (s *memberOrders) GetMany(_ context.Context, ids []int64) ([]orders.Order, error) {
	var list []orders.Order
	for _, id := range ids {
		if o, ok := s.m.orders[id]; ok {
			list = append(list, o)
		}
	}
	return list, nil
}

func (s *memberOrders) List(_ context.Context, filter orders.ListFilter, _ shared.Page) ([]orders.Order, int64, error) {
	var list []orders.Order
	for _, o := range s.m.orders {
		if filter.TripID != nil && (o.TripID == nil || *o.TripID != *filter.TripID) {
			continue
		}
		list = append(list, o)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, int64(len(list)), nil
}

func (s *memberOrders) WithTx(ctx context.Context, fn func(ctx context.Context, r orders.Repository) error) error {
	return fn(ctx, s)
}

func (s *memberOrders) Create(_ context.Context, o *orders.Order) error {
	o.ID = int64(len(s.m.orders) + 1)
	s.m.orders[o.ID] = *o
	return nil
}

func (s *memberOrders) Get(_ context.Context, id int64) (orders.Order, error) {
	o, ok := s.m.orders[id]
	if !ok {
		return orders.Order{}, fmt.Errorf("order %d: %w", id, shared.ErrNotFound)
	}
	return o, nil
}

func (s *memberOrders) GetBySalesOrderItem(_ context.Context, salesOrder int64, item int) (orders.Order, error) {
	for _, o := range s.m.orders {
		if o.SalesOrder == salesOrder && o.Item == item {
			return o, nil
		}
	}
	return orders.Order{}, fmt.Errorf("order %d/%d: %w", salesOrder, item, shared.ErrNotFound)
}

func (s *memberOrders) Update(_ context.Context, o *orders.Order) error {
	s.m.orders[o.ID] = *o
	return nil
}

func (s *memberOrders) Delete(_ context.Context, id int64) error {
	delete(s.m.orders, id)
	return nil
}

func (s *memberOrders) DeleteMany(_ context.Context, ids []int64) (int64, error) {
	for _, id := range ids {
		delete(s.m.orders, id)
	}
	return int64(len(ids)), nil
}

func (s *memberOrders) MaxSalesOrder(_ context.Context) (int64, error) { return 0, nil }

func (s *memberOrders) SalesOrderExists(_ context.Context, _ int64) (bool, error) {
	return false, nil
}

func (s *memberOrders) ResolvePrice(_ context.Context, _, _ string) (float64, error) {
	return 0, nil
}

func (s *memberOrders) GetPlant(_ context.Context, code string) (masterdata.Plant, error) {
	return masterdata.Plant{}, fmt.Errorf("plant %s: %w", code, shared.ErrNotFound)
}

func (s *memberOrders) GetProduct(_ context.Context, material string) (masterdata.Product, error) {
	return masterdata.Product{}, fmt.Errorf("product %s: %w", material, shared.ErrNotFound)
}

func (s *memberOrders) GetClient(_ context.Context, soldTo string) (masterdata.Client, error) {
	return masterdata.Client{}, fmt.Errorf("client %s: %w", soldTo, shared.ErrNotFound)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedOrder(m *mockRepo, id, salesOrder int64, item int, qty, price float64) {
	org := "Vivo Energy Maroc"
	m.orders[id] = orders.Order{
		ID:           id,
		SalesOrder:   salesOrder,
		Item:         item,
		Customer:     "100001",
		ShipToParty:  "200001",
		MaterialCode: "31280",
		OrderQty:     qty,
		TotalPrice:   price,
		OrgName:      &org,
		Status:       orders.StatusCreated,
	}
}

func TestCreateBuildsSnapshotAndAssignsMembers(t *testing.T) {
	repo := newMockRepo()
	seedOrder(repo, 1, 1001, 1, 100, 75)
	seedOrder(repo, 2, 1001, 2, 200, 150)
	seedOrder(repo, 3, 1002, 1, 300, 225)
	svc := NewService(testLogger(), repo)

	trip, err := svc.Create(context.Background(), CreateTripRequest{
		OrderIDs:    []int64{1, 2, 3},
		SealNumbers: []string{"S-1", "  ", "", "S-2"},
	})

	require.NoError(t, err)
	assert.Equal(t, trip.ID, trip.TripNumber, "trip number back-filled from id")
	assert.Equal(t, StatusPlanned, trip.Status)
	assert.Equal(t, 600.0, trip.OrderQty)
	assert.Equal(t, []string{"S-1", "S-2"}, trip.SealNumbers)
	require.Len(t, trip.TotalOrders, 3)
	require.Len(t, trip.UniqueSalesOrders, 2, "unique set deduplicates by sales order")
	for _, snap := range trip.TotalOrders {
		assert.Equal(t, orders.StatusTruckLoading, snap.Status)
	}

	// Snapshot id set equals the FK membership.
	for _, id := range []int64{1, 2, 3} {
		o := repo.orders[id]
		require.NotNil(t, o.TripID)
		assert.Equal(t, trip.ID, *o.TripID)
		assert.Equal(t, orders.StatusTruckLoading, o.Status)
	}
}

func TestCreateFailsWithMissingOrders(t *testing.T) {
	repo := newMockRepo()
	seedOrder(repo, 1, 1001, 1, 100, 75)
	svc := NewService(testLogger(), repo)

	_, err := svc.Create(context.Background(), CreateTripRequest{OrderIDs: []int64{1, 2}})

	var partial *shared.PartialNotFoundError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, []int64{2}, partial.Missing)
	assert.Empty(t, repo.trips, "nothing persisted on failure")
	assert.Nil(t, repo.orders[1].TripID)
}

func TestConfirmLoadingIsIdempotent(t *testing.T) {
	repo := newMockRepo()
	seedOrder(repo, 1, 1001, 1, 100, 75)
	svc := NewService(testLogger(), repo)

	trip, err := svc.Create(context.Background(), CreateTripRequest{OrderIDs: []int64{1}})
	require.NoError(t, err)

	confirmed, err := svc.ConfirmLoading(context.Background(), trip.ID, ConfirmLoadingRequest{})
	require.NoError(t, err)
	require.NotNil(t, confirmed.DeliveryNoteNum)
	require.NotNil(t, confirmed.InvoiceNum)
	assert.Equal(t, int64(14615), *confirmed.DeliveryNoteNum)
	assert.Equal(t, int64(39124), *confirmed.InvoiceNum)
	assert.Equal(t, StatusInProgress, confirmed.Status)
	assert.Equal(t, orders.StatusLoadingConfirmed, repo.orders[1].Status)
	for _, snap := range confirmed.TotalOrders {
		assert.Equal(t, orders.StatusLoadingConfirmed, snap.Status)
	}

	again, err := svc.ConfirmLoading(context.Background(), trip.ID, ConfirmLoadingRequest{})
	require.NoError(t, err)
	assert.Equal(t, *confirmed.DeliveryNoteNum, *again.DeliveryNoteNum)
	assert.Equal(t, *confirmed.InvoiceNum, *again.InvoiceNum)
	assert.Equal(t, 1, repo.allocCalls[SequenceDeliveryNote], "second confirm must not allocate")
	assert.Equal(t, 1, repo.allocCalls[SequenceInvoice])
}

func TestConfirmLoadingRecordsStatusAndSeals(t *testing.T) {
	repo := newMockRepo()
	seedOrder(repo, 1, 1001, 1, 100, 75)
	svc := NewService(testLogger(), repo)

	trip, err := svc.Create(context.Background(), CreateTripRequest{OrderIDs: []int64{1}})
	require.NoError(t, err)

	status := StatusCompleted
	seals := []string{" S-9 ", "", "S-10"}
	confirmed, err := svc.ConfirmLoading(context.Background(), trip.ID, ConfirmLoadingRequest{
		Status:      &status,
		SealNumbers: &seals,
	})

	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, confirmed.Status)
	assert.Equal(t, []string{"S-9", "S-10"}, confirmed.SealNumbers)
	require.NotNil(t, confirmed.DeliveryNoteNum)
}

func TestConfirmLoadingRejectsUnknownStatus(t *testing.T) {
	repo := newMockRepo()
	seedOrder(repo, 1, 1001, 1, 100, 75)
	svc := NewService(testLogger(), repo)

	trip, err := svc.Create(context.Background(), CreateTripRequest{OrderIDs: []int64{1}})
	require.NoError(t, err)

	bad := Status("Parked")
	_, err = svc.ConfirmLoading(context.Background(), trip.ID, ConfirmLoadingRequest{Status: &bad})

	require.ErrorIs(t, err, shared.ErrValidation)
	assert.Nil(t, repo.trips[trip.ID].DeliveryNoteNum, "failed confirmation must not keep a number")
}

func TestConcurrentConfirmationsAllocateDistinctNumbers(t *testing.T) {
	const n = 8
	repo := newMockRepo()
	svc := NewService(testLogger(), repo)

	tripIDs := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		seedOrder(repo, int64(i+1), int64(1001+i), 1, 100, 75)
		trip, err := svc.Create(context.Background(), CreateTripRequest{OrderIDs: []int64{int64(i + 1)}})
		require.NoError(t, err)
		tripIDs = append(tripIDs, trip.ID)
	}

	// A few confirmations lose the counter row first and must replay. Kept
	// below the retry budget so no single caller can exhaust it.
	repo.seqConflicts = confirmRetries - 1

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i, id := range tripIDs {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			_, errs[i] = svc.ConfirmLoading(context.Background(), id, ConfirmLoadingRequest{})
		}(i, id)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "confirmation %d", i)
	}

	seen := make(map[int64]bool, n)
	for _, id := range tripIDs {
		trip := repo.trips[id]
		require.NotNil(t, trip.DeliveryNoteNum)
		assert.False(t, seen[*trip.DeliveryNoteNum], "delivery note %d issued twice", *trip.DeliveryNoteNum)
		seen[*trip.DeliveryNoteNum] = true
		assert.GreaterOrEqual(t, *trip.DeliveryNoteNum, int64(14615))
		assert.LessOrEqual(t, *trip.DeliveryNoteNum, int64(14614+n), "numbers must be consecutive, no gaps")
	}
	assert.Len(t, seen, n)
}

func TestConfirmLoadingGivesUpAfterRepeatedConflicts(t *testing.T) {
	repo := newMockRepo()
	seedOrder(repo, 1, 1001, 1, 100, 75)
	svc := NewService(testLogger(), repo)

	trip, err := svc.Create(context.Background(), CreateTripRequest{OrderIDs: []int64{1}})
	require.NoError(t, err)

	repo.seqConflicts = confirmRetries
	_, err = svc.ConfirmLoading(context.Background(), trip.ID, ConfirmLoadingRequest{})

	require.ErrorIs(t, err, shared.ErrSequenceConflict)
	assert.Nil(t, repo.trips[trip.ID].DeliveryNoteNum)
}

func TestUpdateReplacesOrderSet(t *testing.T) {
	repo := newMockRepo()
	seedOrder(repo, 1, 1001, 1, 100, 75)
	seedOrder(repo, 2, 1002, 1, 200, 150)
	svc := NewService(testLogger(), repo)

	trip, err := svc.Create(context.Background(), CreateTripRequest{OrderIDs: []int64{1}})
	require.NoError(t, err)

	newSet := []int64{2}
	updated, err := svc.Update(context.Background(), trip.ID, UpdateTripRequest{OrderIDs: &newSet})
	require.NoError(t, err)

	require.Len(t, updated.TotalOrders, 1)
	assert.Equal(t, int64(2), updated.TotalOrders[0].OrderID)
	assert.Equal(t, 200.0, updated.OrderQty)

	// Old member released, new member pointed at the trip.
	assert.Nil(t, repo.orders[1].TripID)
	assert.Equal(t, orders.StatusCreated, repo.orders[1].Status)
	require.NotNil(t, repo.orders[2].TripID)
	assert.Equal(t, trip.ID, *repo.orders[2].TripID)
}

func TestDeleteReleasesMembersThroughFK(t *testing.T) {
	repo := newMockRepo()
	seedOrder(repo, 1, 1001, 1, 100, 75)
	seedOrder(repo, 2, 1001, 2, 200, 150)
	svc := NewService(testLogger(), repo)

	trip, err := svc.Create(context.Background(), CreateTripRequest{OrderIDs: []int64{1, 2}})
	require.NoError(t, err)

	// Simulate a stale snapshot missing order 2: deletion must still release
	// it, because membership is resolved through the FK.
	stored := repo.trips[trip.ID]
	stored.TotalOrders = stored.TotalOrders[:1]
	repo.trips[trip.ID] = stored

	result, err := svc.Delete(context.Background(), trip.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Released)
	assert.Empty(t, repo.trips)

	for _, id := range []int64{1, 2} {
		o := repo.orders[id]
		assert.Nil(t, o.TripID)
		assert.Equal(t, orders.StatusCreated, o.Status)
		assert.Nil(t, o.TourStartDate)
		assert.Nil(t, o.OrgName)
	}
}

func TestGetAttachesTruckRecord(t *testing.T) {
	repo := newMockRepo()
	capacity := 32000.0
	repo.trucks["T-4501"] = masterdata.Truck{Vehicle: "T-4501", Capacity: &capacity}
	seedOrder(repo, 1, 1001, 1, 100, 75)
	svc := NewService(testLogger(), repo)

	vehicle := "T-4501"
	trip, err := svc.Create(context.Background(), CreateTripRequest{
		OrderIDs:  []int64{1},
		VehicleID: &vehicle,
	})
	require.NoError(t, err)

	detail, err := svc.Get(context.Background(), trip.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Truck)
	assert.Equal(t, "T-4501", detail.Truck.Vehicle)

	// An unknown vehicle leaves the record off rather than failing the read.
	other := "T-9999"
	_, err = svc.Update(context.Background(), trip.ID, UpdateTripRequest{VehicleID: &other})
	require.NoError(t, err)
	detail, err = svc.Get(context.Background(), trip.ID)
	require.NoError(t, err)
	assert.Nil(t, detail.Truck)
}

func TestGetComputesInvoiceWithProductTax(t *testing.T) {
	repo := newMockRepo()
	tax := 10.0
	repo.taxes["31280"] = &tax
	seedOrder(repo, 1, 1001, 1, 1000, 750)
	svc := NewService(testLogger(), repo)

	trip, err := svc.Create(context.Background(), CreateTripRequest{OrderIDs: []int64{1}})
	require.NoError(t, err)

	detail, err := svc.Get(context.Background(), trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 750.0, detail.Invoice.Subtotal)
	assert.Equal(t, 10.0, detail.Invoice.VATRate)
	assert.Equal(t, 75.0, detail.Invoice.VATAmount)
	assert.Equal(t, 825.0, detail.Invoice.Total)
}
