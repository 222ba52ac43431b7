// Package pricing resolves the reference unit price for a
// (ship-to, material) pair.
package pricing

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/youssef-benmansour/fuel-vivo/internal/masterdata"
	"github.com/youssef-benmansour/fuel-vivo/internal/shared"
)

// Resolver looks up unit prices. A missing row is reported as
// *shared.PriceNotFoundError; zero is a valid price and is returned as-is.
type Resolver interface {
	Resolve(ctx context.Context, shipTo, material string) (float64, error)
}

type resolver struct {
	db masterdata.DBTX
}

// NewResolver constructs a Resolver over db. Order mutations construct one
// over their own transaction so the price read shares its snapshot.
func NewResolver(db masterdata.DBTX) Resolver {
	return &resolver{db: db}
}

func (r *resolver) Resolve(ctx context.Context, shipTo, material string) (float64, error) {
	normalized := masterdata.NormalizeMaterial(material)

	var unitPrice float64
	err := r.db.QueryRow(ctx,
		`SELECT unit_price FROM prices WHERE ship_to = $1 AND material = $2`,
		shipTo, normalized,
	).Scan(&unitPrice)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, &shared.PriceNotFoundError{ShipTo: shipTo, Material: normalized}
	}
	if err != nil {
		return 0, err
	}
	return unitPrice, nil
}
