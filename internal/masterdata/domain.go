// Package masterdata holds the reference entities the logistics core reads:
// prices, products, plants, clients, trucks and tanks. The core never writes
// them outside of the entity-import path.
package masterdata

// Price is a reference unit price keyed by (ship-to, material). Material
// codes are stored without leading zeros.
type Price struct {
	ShipTo    string  `json:"ship_to" db:"ship_to"`
	Material  string  `json:"material" db:"material"`
	UnitPrice float64 `json:"unit_price" db:"unit_price"`
}

// Product is a sellable material. Density, temperature and type come from a
// static lookup by material code and are null for unknown materials.
type Product struct {
	Material      string   `json:"material" db:"material"`
	Description   string   `json:"description" db:"description"`
	BaseUOM       string   `json:"base_uom" db:"base_uom"`
	Density       *float64 `json:"density,omitempty" db:"density"`
	Temp          *float64 `json:"temp,omitempty" db:"temp"`
	ProductType   *string  `json:"product_type,omitempty" db:"product_type"`
	Tax           *float64 `json:"tax,omitempty" db:"tax"`
	ClientLevelDF *string  `json:"client_level_df,omitempty" db:"client_level_df"`
}

// Plant is a loading depot.
type Plant struct {
	Code        string `json:"code" db:"code"`
	Description string `json:"description" db:"description"`
}

// Client is a sold-to customer with its ship-to identity.
type Client struct {
	SoldTo          string  `json:"sold_to" db:"sold_to"`
	SoldToName      string  `json:"sold_to_name" db:"sold_to_name"`
	ShipTo          *string `json:"ship_to,omitempty" db:"ship_to"`
	ShipToName      *string `json:"ship_to_name,omitempty" db:"ship_to_name"`
	ShipToAddress   *string `json:"ship_to_address,omitempty" db:"ship_to_address"`
	ShipToCity      *string `json:"ship_to_city,omitempty" db:"ship_to_city"`
	LegalStatus     *string `json:"legal_status,omitempty" db:"legal_status"`
	LegalStatusName *string `json:"legal_status_name,omitempty" db:"legal_status_name"`
	ICE             *string `json:"ice,omitempty" db:"ice"`
	FiscalID        *string `json:"fiscal_id,omitempty" db:"fiscal_id"`
	PaymentTerms    *string `json:"payment_terms,omitempty" db:"payment_terms"`
}

// Truck is a delivery vehicle.
type Truck struct {
	Vehicle       string    `json:"vehicle" db:"vehicle"`
	TrailerNumber *string   `json:"trailer_number,omitempty" db:"trailer_number"`
	HaulierNumber *string   `json:"haulier_number,omitempty" db:"haulier_number"`
	HaulierName   *string   `json:"haulier_name,omitempty" db:"haulier_name"`
	DriverName    *string   `json:"driver_name,omitempty" db:"driver_name"`
	DriverCIN     *string   `json:"driver_cin,omitempty" db:"driver_cin"`
	Capacity      *float64  `json:"capacity,omitempty" db:"capacity"`
	Weight        *float64  `json:"weight,omitempty" db:"weight"`
	MPGI          *string   `json:"mpgi,omitempty" db:"mpgi"`
	Seals         *int32    `json:"seals,omitempty" db:"seals"`
	VehicleType   *string   `json:"vehicle_type,omitempty" db:"vehicle_type"`
	Compartments  []float64 `json:"compartments,omitempty" db:"compartments"`
}

// Tank is a storage tank at a plant.
type Tank struct {
	ID         int64    `json:"id" db:"id"`
	PlantCode  string   `json:"plant_code" db:"plant_code"`
	TankNumber string   `json:"tank_number" db:"tank_number"`
	Material   *string  `json:"material,omitempty" db:"material"`
	Capacity   *float64 `json:"capacity,omitempty" db:"capacity"`
}
