package importer

import (
	"strconv"
	"strings"
	"time"
)

// FieldKind is the coercion target for a column.
type FieldKind int

const (
	KindString FieldKind = iota
	KindNumber
	KindDate
	// KindMaterial is a string padded to thirteen digits, the upstream
	// system's fixed-width material format.
	KindMaterial
)

const materialWidth = 13

// Schema maps column headers to coercion kinds. Columns absent from the
// schema pass through as trimmed strings.
type Schema map[string]FieldKind

// Spreadsheet exports mark unresolved lookups with #N/A; both spellings
// occur in the wild.
func isNA(s string) bool {
	return s == "#N/A" || s == "#N/A!" || s == "N/A"
}

// CoerceRows applies the schema to every row in place and returns the rows.
// Empty cells and #N/A become nil; numbers tolerate comma decimal
// separators; dates try the common upload layouts.
func CoerceRows(schema Schema, rows []Row) []Row {
	for _, row := range rows {
		for col, kind := range schema {
			v, ok := row[col]
			if !ok {
				continue
			}
			row[col] = coerceValue(kind, v)
		}
	}
	return rows
}

func coerceValue(kind FieldKind, v any) any {
	s, isString := v.(string)
	if isString {
		s = strings.TrimSpace(s)
		if s == "" || isNA(s) {
			return nil
		}
	} else if v == nil {
		return nil
	}

	switch kind {
	case KindNumber:
		if !isString {
			return v
		}
		f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
		if err != nil {
			return nil
		}
		return f
	case KindDate:
		if !isString {
			if t, ok := v.(time.Time); ok {
				return t
			}
			return nil
		}
		for _, layout := range []string{"02.01.2006", "2006-01-02", "02/01/2006", time.RFC3339} {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
		return nil
	case KindMaterial:
		if !isString {
			s = strconv.FormatFloat(toFloat(v), 'f', -1, 64)
		}
		return PadMaterial(s)
	default:
		if !isString {
			return v
		}
		return s
	}
}

// PadMaterial left-pads a material code with zeros to the fixed upstream
// width. The core strips the padding again before any comparison; the padded
// form only exists at the import boundary.
func PadMaterial(code string) string {
	code = strings.TrimSpace(code)
	if code == "" || len(code) >= materialWidth {
		return code
	}
	return strings.Repeat("0", materialWidth-len(code)) + code
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int64:
		return float64(t)
	case int:
		return float64(t)
	default:
		return 0
	}
}

// Entity import column headers, as produced by fileparse header cleanup.
const (
	ColPriceShipTo   = "Ship To"
	ColPriceMaterial = "Material"
	ColPriceUnit     = "Unit Price"

	ColProductMaterial    = "Material"
	ColProductDescription = "Material Description"
	ColProductBaseUOM     = "Base UOM"
	ColProductTax         = "Tax"
	ColProductClientDF    = "Client Level DF"

	ColPlantCode        = "Plant"
	ColPlantDescription = "Description"

	ColClientSoldTo        = "Sold To"
	ColClientSoldToName    = "Sold To Name"
	ColClientShipTo        = "Ship To"
	ColClientShipToName    = "Ship To Name"
	ColClientShipToAddress = "Ship To Address"
	ColClientShipToCity    = "City"
	ColClientLegalStatus   = "Legal Status"
	ColClientLegalName     = "Legal Status Name"
	ColClientICE           = "ICE"
	ColClientFiscalID      = "Fiscal ID"
	ColClientPaymentTerms  = "Payment Terms"

	ColTruckVehicle     = "Vehicle"
	ColTruckTrailer     = "Trailer Number"
	ColTruckHaulierNum  = "Haulier Number"
	ColTruckHaulierName = "Haulier Name"
	ColTruckDriverName  = "Driver Name"
	ColTruckDriverCIN   = "Driver CIN"
	ColTruckCapacity    = "Capacity"
	ColTruckWeight      = "Weight"
	ColTruckMPGI        = "MPGI"
	ColTruckSeals       = "Seals"
	ColTruckVehicleType = "Vehicle Type"

	ColTankPlant    = "Plant"
	ColTankNumber   = "Tank Number"
	ColTankMaterial = "Material"
	ColTankCapacity = "Capacity"
)

// entitySchemas drives coercion per import type.
var entitySchemas = map[string]Schema{
	"prices": {
		ColPriceShipTo:   KindString,
		ColPriceMaterial: KindMaterial,
		ColPriceUnit:     KindNumber,
	},
	"products": {
		ColProductMaterial:    KindMaterial,
		ColProductDescription: KindString,
		ColProductBaseUOM:     KindString,
		ColProductTax:         KindNumber,
		ColProductClientDF:    KindString,
	},
	"plants": {
		ColPlantCode:        KindString,
		ColPlantDescription: KindString,
	},
	"clients": {
		ColClientSoldTo:        KindString,
		ColClientSoldToName:    KindString,
		ColClientShipTo:        KindString,
		ColClientShipToName:    KindString,
		ColClientShipToAddress: KindString,
		ColClientShipToCity:    KindString,
		ColClientLegalStatus:   KindString,
		ColClientLegalName:     KindString,
		ColClientICE:           KindString,
		ColClientFiscalID:      KindString,
		ColClientPaymentTerms:  KindString,
	},
	"trucks": {
		ColTruckVehicle:     KindString,
		ColTruckTrailer:     KindString,
		ColTruckHaulierNum:  KindString,
		ColTruckHaulierName: KindString,
		ColTruckDriverName:  KindString,
		ColTruckDriverCIN:   KindString,
		ColTruckCapacity:    KindNumber,
		ColTruckWeight:      KindNumber,
		ColTruckMPGI:        KindString,
		ColTruckSeals:       KindNumber,
		ColTruckVehicleType: KindString,
	},
	"tanks": {
		ColTankPlant:    KindString,
		ColTankNumber:   KindString,
		ColTankMaterial: KindMaterial,
		ColTankCapacity: KindNumber,
	},
}

// KnownEntityType reports whether typ is an importable entity.
func KnownEntityType(typ string) bool {
	_, ok := entitySchemas[typ]
	return ok
}
