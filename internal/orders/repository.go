package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/youssef-benmansour/fuel-vivo/internal/masterdata"
	"github.com/youssef-benmansour/fuel-vivo/internal/platform/db"
	"github.com/youssef-benmansour/fuel-vivo/internal/pricing"
	"github.com/youssef-benmansour/fuel-vivo/internal/shared"
)

// Repository persists orders and exposes the reference reads order mutations
// need. WithTx yields a Repository bound to one transaction so pricing and
// reference lookups share the mutation's snapshot.
type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, r Repository) error) error

	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id int64) (Order, error)
	GetBySalesOrderItem(ctx context.Context, salesOrder int64, item int) (Order, error)
	GetMany(ctx context.Context, ids []int64) ([]Order, error)
	List(ctx context.Context, filter ListFilter, page shared.Page) ([]Order, int64, error)
	Update(ctx context.Context, o *Order) error
	Delete(ctx context.Context, id int64) error
	DeleteMany(ctx context.Context, ids []int64) (int64, error)
	MaxSalesOrder(ctx context.Context) (int64, error)
	SalesOrderExists(ctx context.Context, salesOrder int64) (bool, error)

	ResolvePrice(ctx context.Context, shipTo, material string) (float64, error)
	GetPlant(ctx context.Context, code string) (masterdata.Plant, error)
	GetProduct(ctx context.Context, material string) (masterdata.Product, error)
	GetClient(ctx context.Context, soldTo string) (masterdata.Client, error)
}

type repository struct {
	db   masterdata.DBTX
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository over a pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

// NewTxRepository constructs a Repository over an executor the caller owns,
// typically a transaction started elsewhere. WithTx on the result runs its
// function directly instead of opening a nested transaction.
func NewTxRepository(db masterdata.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(ctx context.Context, fn func(ctx context.Context, r Repository) error) error {
	if r.pool == nil {
		return fn(ctx, r)
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx})
	})
}

const orderColumns = `id, sales_order, item, order_type, customer, customer_name,
	plant, plant_name, ship_to_party, ship_to_name, valuation_type, ship_to_city,
	material_code, material_name, order_qty, sales_uom, requested_delivery_date,
	pat_doc, trip_id, tour_start_date, org_name, driver_name, vehicle_id,
	status, class, total_price, created_at, updated_at`

func scanOrder(row pgx.Row, o *Order) error {
	return row.Scan(&o.ID, &o.SalesOrder, &o.Item, &o.OrderType, &o.Customer, &o.CustomerName,
		&o.Plant, &o.PlantName, &o.ShipToParty, &o.ShipToName, &o.ValuationType, &o.ShipToCity,
		&o.MaterialCode, &o.MaterialName, &o.OrderQty, &o.SalesUOM, &o.RequestedDeliveryDate,
		&o.PatDoc, &o.TripID, &o.TourStartDate, &o.OrgName, &o.DriverName, &o.VehicleID,
		&o.Status, &o.Class, &o.TotalPrice, &o.CreatedAt, &o.UpdatedAt)
}

func (r *repository) Create(ctx context.Context, o *Order) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO orders (sales_order, item, order_type, customer, customer_name,
			plant, plant_name, ship_to_party, ship_to_name, valuation_type, ship_to_city,
			material_code, material_name, order_qty, sales_uom, requested_delivery_date,
			pat_doc, trip_id, tour_start_date, org_name, driver_name, vehicle_id,
			status, class, total_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
		RETURNING id, created_at, updated_at`,
		o.SalesOrder, o.Item, o.OrderType, o.Customer, o.CustomerName,
		o.Plant, o.PlantName, o.ShipToParty, o.ShipToName, o.ValuationType, o.ShipToCity,
		o.MaterialCode, o.MaterialName, o.OrderQty, o.SalesUOM, o.RequestedDeliveryDate,
		o.PatDoc, o.TripID, o.TourStartDate, o.OrgName, o.DriverName, o.VehicleID,
		o.Status, o.Class, o.TotalPrice,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
}

func (r *repository) Get(ctx context.Context, id int64) (Order, error) {
	var o Order
	err := scanOrder(r.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id), &o)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, fmt.Errorf("order %d: %w", id, shared.ErrNotFound)
	}
	return o, err
}

func (r *repository) GetBySalesOrderItem(ctx context.Context, salesOrder int64, item int) (Order, error) {
	var o Order
	err := scanOrder(r.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE sales_order = $1 AND item = $2`,
		salesOrder, item), &o)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, fmt.Errorf("order %d/%d: %w", salesOrder, item, shared.ErrNotFound)
	}
	return o, err
}

func (r *repository) GetMany(ctx context.Context, ids []int64) ([]Order, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ANY($1) ORDER BY sales_order, item`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *repository) List(ctx context.Context, filter ListFilter, page shared.Page) ([]Order, int64, error) {
	where, args := buildListFilter(filter)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, page.Limit, page.Offset())
	rows, err := r.db.Query(ctx, fmt.Sprintf(
		`SELECT %s FROM orders%s ORDER BY sales_order DESC, item LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list, err := collectOrders(rows)
	return list, total, err
}

func buildListFilter(filter ListFilter) (string, []any) {
	var clauses []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != nil {
		clauses = append(clauses, "status = "+arg(*filter.Status))
	}
	if filter.Class != nil {
		clauses = append(clauses, "class = "+arg(*filter.Class))
	}
	if filter.TripID != nil {
		clauses = append(clauses, "trip_id = "+arg(*filter.TripID))
	}
	if filter.Unassigned {
		clauses = append(clauses, "trip_id IS NULL")
	}
	if filter.From != nil {
		clauses = append(clauses, "requested_delivery_date >= "+arg(*filter.From))
	}
	if filter.To != nil {
		clauses = append(clauses, "requested_delivery_date <= "+arg(*filter.To))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (r *repository) Update(ctx context.Context, o *Order) error {
	err := r.db.QueryRow(ctx, `
		UPDATE orders SET
			sales_order = $2, item = $3, order_type = $4, customer = $5, customer_name = $6,
			plant = $7, plant_name = $8, ship_to_party = $9, ship_to_name = $10,
			valuation_type = $11, ship_to_city = $12, material_code = $13, material_name = $14,
			order_qty = $15, sales_uom = $16, requested_delivery_date = $17, pat_doc = $18,
			trip_id = $19, tour_start_date = $20, org_name = $21, driver_name = $22,
			vehicle_id = $23, status = $24, class = $25, total_price = $26, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`,
		o.ID, o.SalesOrder, o.Item, o.OrderType, o.Customer, o.CustomerName,
		o.Plant, o.PlantName, o.ShipToParty, o.ShipToName,
		o.ValuationType, o.ShipToCity, o.MaterialCode, o.MaterialName,
		o.OrderQty, o.SalesUOM, o.RequestedDeliveryDate, o.PatDoc,
		o.TripID, o.TourStartDate, o.OrgName, o.DriverName,
		o.VehicleID, o.Status, o.Class, o.TotalPrice,
	).Scan(&o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("order %d: %w", o.ID, shared.ErrNotFound)
	}
	return err
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (r *repository) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *repository) MaxSalesOrder(ctx context.Context) (int64, error) {
	var max int64
	err := r.db.QueryRow(ctx, `SELECT COALESCE(MAX(sales_order), 0) FROM orders`).Scan(&max)
	return max, err
}

func (r *repository) SalesOrderExists(ctx context.Context, salesOrder int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM orders WHERE sales_order = $1)`, salesOrder).Scan(&exists)
	return exists, err
}

func (r *repository) ResolvePrice(ctx context.Context, shipTo, material string) (float64, error) {
	return pricing.NewResolver(r.db).Resolve(ctx, shipTo, material)
}

func (r *repository) GetPlant(ctx context.Context, code string) (masterdata.Plant, error) {
	return masterdata.NewRepository(r.db).GetPlant(ctx, code)
}

func (r *repository) GetProduct(ctx context.Context, material string) (masterdata.Product, error) {
	return masterdata.NewRepository(r.db).GetProduct(ctx, material)
}

func (r *repository) GetClient(ctx context.Context, soldTo string) (masterdata.Client, error) {
	return masterdata.NewRepository(r.db).GetClient(ctx, soldTo)
}

func collectOrders(rows pgx.Rows) ([]Order, error) {
	var list []Order
	for rows.Next() {
		var o Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	return list, rows.Err()
}
