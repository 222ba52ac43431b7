package trips

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/youssef-benmansour/fuel-vivo/internal/masterdata"
	"github.com/youssef-benmansour/fuel-vivo/internal/orders"
	"github.com/youssef-benmansour/fuel-vivo/internal/platform/db"
	"github.com/youssef-benmansour/fuel-vivo/internal/shared"
)

// Repository persists trips and performs the member-order writes that must
// share the trip's transaction.
type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, r Repository) error) error

	Create(ctx context.Context, t *Trip) error
	Get(ctx context.Context, id int64) (Trip, error)
	GetByTripNumber(ctx context.Context, tripNumber int64) (Trip, error)
	List(ctx context.Context, page shared.Page) ([]Trip, int64, error)
	CountByStatus(ctx context.Context) (map[Status]int64, error)
	Update(ctx context.Context, t *Trip) error
	SetTripNumber(ctx context.Context, id, tripNumber int64) error
	Delete(ctx context.Context, id int64) error

	Orders() orders.Repository
	AssignOrders(ctx context.Context, t *Trip, ids []int64) error
	ReleaseOrders(ctx context.Context, tripID int64) (int64, error)
	SetMemberStatus(ctx context.Context, tripID int64, status orders.Status) error
	ProductTax(ctx context.Context, material string) (*float64, error)
	Truck(ctx context.Context, vehicle string) (masterdata.Truck, error)
	AllocateSequence(ctx context.Context, kind SequenceKind) (int64, error)
}

type repository struct {
	db   masterdata.DBTX
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository over a pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(ctx context.Context, r Repository) error) error {
	if r.pool == nil {
		return fn(ctx, r)
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx})
	})
}

const tripColumns = `id, COALESCE(trip_number, id), tour_start_date, requested_delivery_date, vehicle_id,
	order_qty, status, seal_numbers, total_orders, unique_sales_orders,
	driver_name, driver_cin, delivery_note_num, invoice_num, created_at, updated_at`

func scanTrip(row pgx.Row, t *Trip) error {
	return row.Scan(&t.ID, &t.TripNumber, &t.TourStartDate, &t.RequestedDeliveryDate, &t.VehicleID,
		&t.OrderQty, &t.Status, &t.SealNumbers, &t.TotalOrders, &t.UniqueSalesOrders,
		&t.DriverName, &t.DriverCIN, &t.DeliveryNoteNum, &t.InvoiceNum, &t.CreatedAt, &t.UpdatedAt)
}

func (r *repository) Create(ctx context.Context, t *Trip) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO trips (trip_number, tour_start_date, requested_delivery_date, vehicle_id,
			order_qty, status, seal_numbers, total_orders, unique_sales_orders,
			driver_name, driver_cin)
		VALUES (NULLIF($1, 0), $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`,
		t.TripNumber, t.TourStartDate, t.RequestedDeliveryDate, t.VehicleID,
		t.OrderQty, t.Status, t.SealNumbers, t.TotalOrders, t.UniqueSalesOrders,
		t.DriverName, t.DriverCIN,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *repository) Get(ctx context.Context, id int64) (Trip, error) {
	var t Trip
	err := scanTrip(r.db.QueryRow(ctx,
		`SELECT `+tripColumns+` FROM trips WHERE id = $1`, id), &t)
	if errors.Is(err, pgx.ErrNoRows) {
		return Trip{}, fmt.Errorf("trip %d: %w", id, shared.ErrNotFound)
	}
	return t, err
}

func (r *repository) GetByTripNumber(ctx context.Context, tripNumber int64) (Trip, error) {
	var t Trip
	err := scanTrip(r.db.QueryRow(ctx,
		`SELECT `+tripColumns+` FROM trips WHERE trip_number = $1`, tripNumber), &t)
	if errors.Is(err, pgx.ErrNoRows) {
		return Trip{}, fmt.Errorf("trip number %d: %w", tripNumber, shared.ErrNotFound)
	}
	return t, err
}

func (r *repository) List(ctx context.Context, page shared.Page) ([]Trip, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM trips`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+tripColumns+` FROM trips ORDER BY id DESC LIMIT $1 OFFSET $2`,
		page.Limit, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []Trip
	for rows.Next() {
		var t Trip
		if err := scanTrip(rows, &t); err != nil {
			return nil, 0, err
		}
		list = append(list, t)
	}
	return list, total, rows.Err()
}

func (r *repository) CountByStatus(ctx context.Context) (map[Status]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT status, count(*) FROM trips GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[Status]int64)
	for rows.Next() {
		var status Status
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (r *repository) Update(ctx context.Context, t *Trip) error {
	err := r.db.QueryRow(ctx, `
		UPDATE trips SET
			tour_start_date = $2, requested_delivery_date = $3, vehicle_id = $4,
			order_qty = $5, status = $6, seal_numbers = $7, total_orders = $8,
			unique_sales_orders = $9, driver_name = $10, driver_cin = $11,
			delivery_note_num = $12, invoice_num = $13, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`,
		t.ID, t.TourStartDate, t.RequestedDeliveryDate, t.VehicleID,
		t.OrderQty, t.Status, t.SealNumbers, t.TotalOrders,
		t.UniqueSalesOrders, t.DriverName, t.DriverCIN,
		t.DeliveryNoteNum, t.InvoiceNum,
	).Scan(&t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("trip %d: %w", t.ID, shared.ErrNotFound)
	}
	return err
}

func (r *repository) SetTripNumber(ctx context.Context, id, tripNumber int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE trips SET trip_number = $2 WHERE id = $1`, id, tripNumber)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("trip %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM trips WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("trip %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

// Orders returns an order repository bound to the same executor, so member
// reads and writes share the trip transaction.
func (r *repository) Orders() orders.Repository {
	return orders.NewTxRepository(r.db)
}

// AssignOrders points the member rows at the trip, advances them to Truck
// Loading Confirmation and copies the tour fields onto each row.
func (r *repository) AssignOrders(ctx context.Context, t *Trip, ids []int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE orders SET
			trip_id = $1, status = $2, tour_start_date = $3,
			driver_name = $4, vehicle_id = $5, updated_at = now()
		WHERE id = ANY($6)`,
		t.ID, orders.StatusTruckLoading, t.TourStartDate,
		t.DriverName, t.VehicleID, ids)
	return err
}

// ReleaseOrders is the exact inverse of AssignOrders: membership is resolved
// through the trip_id FK, never through the snapshot, and each released row
// returns to Created with its tour fields cleared.
func (r *repository) ReleaseOrders(ctx context.Context, tripID int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders SET
			trip_id = NULL, status = $2, tour_start_date = NULL,
			driver_name = NULL, vehicle_id = NULL, org_name = NULL,
			updated_at = now()
		WHERE trip_id = $1`,
		tripID, orders.StatusCreated)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *repository) SetMemberStatus(ctx context.Context, tripID int64, status orders.Status) error {
	_, err := r.db.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = now() WHERE trip_id = $1`,
		tripID, status)
	return err
}

func (r *repository) ProductTax(ctx context.Context, material string) (*float64, error) {
	product, err := masterdata.NewRepository(r.db).GetProduct(ctx, material)
	if err != nil {
		return nil, err
	}
	return product.Tax, nil
}

func (r *repository) Truck(ctx context.Context, vehicle string) (masterdata.Truck, error) {
	return masterdata.NewRepository(r.db).GetTruck(ctx, vehicle)
}

func (r *repository) AllocateSequence(ctx context.Context, kind SequenceKind) (int64, error) {
	return AllocateSequence(ctx, r.db, kind)
}
