package masterdata

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/youssef-benmansour/fuel-vivo/internal/shared"
)

// Repository reads and (through the import path only) writes reference data.
type Repository interface {
	GetPlant(ctx context.Context, code string) (Plant, error)
	GetClient(ctx context.Context, soldTo string) (Client, error)
	GetProduct(ctx context.Context, material string) (Product, error)
	GetTruck(ctx context.Context, vehicle string) (Truck, error)

	ListPrices(ctx context.Context) ([]Price, error)
	ListProducts(ctx context.Context) ([]Product, error)
	ListPlants(ctx context.Context) ([]Plant, error)
	ListClients(ctx context.Context) ([]Client, error)
	ListTrucks(ctx context.Context) ([]Truck, error)
	ListTanks(ctx context.Context) ([]Tank, error)

	UpsertPrice(ctx context.Context, p Price) (bool, error)
	UpsertProduct(ctx context.Context, p Product) (bool, error)
	UpsertPlant(ctx context.Context, p Plant) (bool, error)
	UpsertClient(ctx context.Context, c Client) (bool, error)
	UpsertTruck(ctx context.Context, t Truck) (bool, error)
	UpsertTank(ctx context.Context, t Tank) (bool, error)

	Wipe(ctx context.Context, entity string) (int64, error)
}

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, so repositories can be
// constructed over a pool or bound into a caller's transaction.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

type repository struct {
	db DBTX
}

// NewRepository constructs a Repository over db.
func NewRepository(db DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) GetPlant(ctx context.Context, code string) (Plant, error) {
	var p Plant
	err := r.db.QueryRow(ctx,
		`SELECT code, description FROM plants WHERE code = $1`, code,
	).Scan(&p.Code, &p.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return Plant{}, fmt.Errorf("plant %s: %w", code, shared.ErrNotFound)
	}
	return p, err
}

func (r *repository) GetClient(ctx context.Context, soldTo string) (Client, error) {
	var c Client
	err := r.db.QueryRow(ctx, `
		SELECT sold_to, sold_to_name, ship_to, ship_to_name, ship_to_address, ship_to_city,
		       legal_status, legal_status_name, ice, fiscal_id, payment_terms
		FROM clients WHERE sold_to = $1`, soldTo,
	).Scan(&c.SoldTo, &c.SoldToName, &c.ShipTo, &c.ShipToName, &c.ShipToAddress, &c.ShipToCity,
		&c.LegalStatus, &c.LegalStatusName, &c.ICE, &c.FiscalID, &c.PaymentTerms)
	if errors.Is(err, pgx.ErrNoRows) {
		return Client{}, fmt.Errorf("client %s: %w", soldTo, shared.ErrNotFound)
	}
	return c, err
}

func (r *repository) GetProduct(ctx context.Context, material string) (Product, error) {
	var p Product
	err := r.db.QueryRow(ctx, `
		SELECT material, description, base_uom, density, temp, product_type, tax, client_level_df
		FROM products WHERE material = $1`, NormalizeMaterial(material),
	).Scan(&p.Material, &p.Description, &p.BaseUOM, &p.Density, &p.Temp, &p.ProductType, &p.Tax, &p.ClientLevelDF)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, fmt.Errorf("product %s: %w", material, shared.ErrNotFound)
	}
	return p, err
}

func (r *repository) GetTruck(ctx context.Context, vehicle string) (Truck, error) {
	var t Truck
	err := r.db.QueryRow(ctx, `
		SELECT vehicle, trailer_number, haulier_number, haulier_name, driver_name, driver_cin,
		       capacity, weight, mpgi, seals, vehicle_type, compartments
		FROM trucks WHERE vehicle = $1`, vehicle,
	).Scan(&t.Vehicle, &t.TrailerNumber, &t.HaulierNumber, &t.HaulierName, &t.DriverName, &t.DriverCIN,
		&t.Capacity, &t.Weight, &t.MPGI, &t.Seals, &t.VehicleType, &t.Compartments)
	if errors.Is(err, pgx.ErrNoRows) {
		return Truck{}, fmt.Errorf("truck %s: %w", vehicle, shared.ErrNotFound)
	}
	return t, err
}

func (r *repository) ListPrices(ctx context.Context) ([]Price, error) {
	rows, err := r.db.Query(ctx, `SELECT ship_to, material, unit_price FROM prices ORDER BY ship_to, material`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prices []Price
	for rows.Next() {
		var p Price
		if err := rows.Scan(&p.ShipTo, &p.Material, &p.UnitPrice); err != nil {
			return nil, err
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

func (r *repository) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT material, description, base_uom, density, temp, product_type, tax, client_level_df
		FROM products ORDER BY material`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.Material, &p.Description, &p.BaseUOM, &p.Density, &p.Temp, &p.ProductType, &p.Tax, &p.ClientLevelDF); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *repository) ListPlants(ctx context.Context) ([]Plant, error) {
	rows, err := r.db.Query(ctx, `SELECT code, description FROM plants ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plants []Plant
	for rows.Next() {
		var p Plant
		if err := rows.Scan(&p.Code, &p.Description); err != nil {
			return nil, err
		}
		plants = append(plants, p)
	}
	return plants, rows.Err()
}

func (r *repository) ListClients(ctx context.Context) ([]Client, error) {
	rows, err := r.db.Query(ctx, `
		SELECT sold_to, sold_to_name, ship_to, ship_to_name, ship_to_address, ship_to_city,
		       legal_status, legal_status_name, ice, fiscal_id, payment_terms
		FROM clients ORDER BY sold_to`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.SoldTo, &c.SoldToName, &c.ShipTo, &c.ShipToName, &c.ShipToAddress, &c.ShipToCity,
			&c.LegalStatus, &c.LegalStatusName, &c.ICE, &c.FiscalID, &c.PaymentTerms); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (r *repository) ListTrucks(ctx context.Context) ([]Truck, error) {
	rows, err := r.db.Query(ctx, `
		SELECT vehicle, trailer_number, haulier_number, haulier_name, driver_name, driver_cin,
		       capacity, weight, mpgi, seals, vehicle_type, compartments
		FROM trucks ORDER BY vehicle`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trucks []Truck
	for rows.Next() {
		var t Truck
		if err := rows.Scan(&t.Vehicle, &t.TrailerNumber, &t.HaulierNumber, &t.HaulierName, &t.DriverName, &t.DriverCIN,
			&t.Capacity, &t.Weight, &t.MPGI, &t.Seals, &t.VehicleType, &t.Compartments); err != nil {
			return nil, err
		}
		trucks = append(trucks, t)
	}
	return trucks, rows.Err()
}

func (r *repository) ListTanks(ctx context.Context) ([]Tank, error) {
	rows, err := r.db.Query(ctx, `SELECT id, plant_code, tank_number, material, capacity FROM tanks ORDER BY plant_code, tank_number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tanks []Tank
	for rows.Next() {
		var t Tank
		if err := rows.Scan(&t.ID, &t.PlantCode, &t.TankNumber, &t.Material, &t.Capacity); err != nil {
			return nil, err
		}
		tanks = append(tanks, t)
	}
	return tanks, rows.Err()
}

func (r *repository) UpsertPrice(ctx context.Context, p Price) (bool, error) {
	return r.upsert(ctx, `
		INSERT INTO prices (ship_to, material, unit_price)
		VALUES ($1, $2, $3)
		ON CONFLICT (ship_to, material) DO UPDATE SET unit_price = EXCLUDED.unit_price
		RETURNING (xmax = 0)`,
		p.ShipTo, NormalizeMaterial(p.Material), p.UnitPrice)
}

func (r *repository) UpsertProduct(ctx context.Context, p Product) (bool, error) {
	return r.upsert(ctx, `
		INSERT INTO products (material, description, base_uom, density, temp, product_type, tax, client_level_df)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (material) DO UPDATE SET
			description = EXCLUDED.description,
			base_uom = EXCLUDED.base_uom,
			density = EXCLUDED.density,
			temp = EXCLUDED.temp,
			product_type = EXCLUDED.product_type,
			tax = EXCLUDED.tax,
			client_level_df = EXCLUDED.client_level_df
		RETURNING (xmax = 0)`,
		NormalizeMaterial(p.Material), p.Description, p.BaseUOM, p.Density, p.Temp, p.ProductType, p.Tax, p.ClientLevelDF)
}

func (r *repository) UpsertPlant(ctx context.Context, p Plant) (bool, error) {
	return r.upsert(ctx, `
		INSERT INTO plants (code, description)
		VALUES ($1, $2)
		ON CONFLICT (code) DO UPDATE SET description = EXCLUDED.description
		RETURNING (xmax = 0)`,
		p.Code, p.Description)
}

func (r *repository) UpsertClient(ctx context.Context, c Client) (bool, error) {
	return r.upsert(ctx, `
		INSERT INTO clients (sold_to, sold_to_name, ship_to, ship_to_name, ship_to_address, ship_to_city,
		                     legal_status, legal_status_name, ice, fiscal_id, payment_terms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (sold_to) DO UPDATE SET
			sold_to_name = EXCLUDED.sold_to_name,
			ship_to = EXCLUDED.ship_to,
			ship_to_name = EXCLUDED.ship_to_name,
			ship_to_address = EXCLUDED.ship_to_address,
			ship_to_city = EXCLUDED.ship_to_city,
			legal_status = EXCLUDED.legal_status,
			legal_status_name = EXCLUDED.legal_status_name,
			ice = EXCLUDED.ice,
			fiscal_id = EXCLUDED.fiscal_id,
			payment_terms = EXCLUDED.payment_terms
		RETURNING (xmax = 0)`,
		c.SoldTo, c.SoldToName, c.ShipTo, c.ShipToName, c.ShipToAddress, c.ShipToCity,
		c.LegalStatus, c.LegalStatusName, c.ICE, c.FiscalID, c.PaymentTerms)
}

func (r *repository) UpsertTruck(ctx context.Context, t Truck) (bool, error) {
	return r.upsert(ctx, `
		INSERT INTO trucks (vehicle, trailer_number, haulier_number, haulier_name, driver_name, driver_cin,
		                    capacity, weight, mpgi, seals, vehicle_type, compartments)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (vehicle) DO UPDATE SET
			trailer_number = EXCLUDED.trailer_number,
			haulier_number = EXCLUDED.haulier_number,
			haulier_name = EXCLUDED.haulier_name,
			driver_name = EXCLUDED.driver_name,
			driver_cin = EXCLUDED.driver_cin,
			capacity = EXCLUDED.capacity,
			weight = EXCLUDED.weight,
			mpgi = EXCLUDED.mpgi,
			seals = EXCLUDED.seals,
			vehicle_type = EXCLUDED.vehicle_type,
			compartments = EXCLUDED.compartments
		RETURNING (xmax = 0)`,
		t.Vehicle, t.TrailerNumber, t.HaulierNumber, t.HaulierName, t.DriverName, t.DriverCIN,
		t.Capacity, t.Weight, t.MPGI, t.Seals, t.VehicleType, t.Compartments)
}

func (r *repository) UpsertTank(ctx context.Context, t Tank) (bool, error) {
	return r.upsert(ctx, `
		INSERT INTO tanks (plant_code, tank_number, material, capacity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (plant_code, tank_number) DO UPDATE SET
			material = EXCLUDED.material,
			capacity = EXCLUDED.capacity
		RETURNING (xmax = 0)`,
		t.PlantCode, t.TankNumber, t.Material, t.Capacity)
}

var wipeTables = map[string]string{
	"prices":   "prices",
	"products": "products",
	"plants":   "plants",
	"clients":  "clients",
	"trucks":   "trucks",
	"tanks":    "tanks",
}

// Wipe removes every row of a reference table before a replacing import.
func (r *repository) Wipe(ctx context.Context, entity string) (int64, error) {
	table, ok := wipeTables[entity]
	if !ok {
		return 0, fmt.Errorf("wipe %s: %w", entity, shared.ErrValidation)
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM `+table)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// upsert runs an INSERT ... ON CONFLICT ... RETURNING (xmax = 0) statement
// and reports whether the row was newly created.
func (r *repository) upsert(ctx context.Context, query string, args ...any) (bool, error) {
	var created bool
	if err := r.db.QueryRow(ctx, query, args...).Scan(&created); err != nil {
		return false, err
	}
	return created, nil
}
