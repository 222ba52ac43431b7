package masterdata

import "strings"

// ProductDefaults are the physical attributes defaulted onto a product when
// its material code is known. Unknown materials keep null attributes.
type ProductDefaults struct {
	Density float64
	Temp    float64
	Type    string
}

var productDefaults = map[string]ProductDefaults{
	"31280": {Density: 0.7550, Temp: 15, Type: "FUEL"},
	"61983": {Density: 0.8000, Temp: 15, Type: "FUEL"},
	"61988": {Density: 0.7550, Temp: 15, Type: "FUEL"},
	"81357": {Density: 1.0000, Temp: 15, Type: "FUEL"},
	"81358": {Density: 0.8450, Temp: 15, Type: "FUEL"},
	"81359": {Density: 0.8450, Temp: 15, Type: "FUEL"},
	"81360": {Density: 0.8450, Temp: 15, Type: "FUEL"},
	"81363": {Density: 0.7550, Temp: 15, Type: "FUEL"},
	"81364": {Density: 0.7134, Temp: 15, Type: "FUEL"},
	"30876": {Density: 0.5800, Temp: 20, Type: "LPG"},
	"81173": {Density: 0.5290, Temp: 20, Type: "LPG"},
	"12882": {Density: 0.8881, Temp: 15, Type: "LUBE"},
	"81538": {Density: 0.8881, Temp: 15, Type: "LUBE"},
	"81539": {Density: 0.8881, Temp: 15, Type: "LUBE"},
	"81540": {Density: 0.8881, Temp: 15, Type: "LUBE"},
	"81566": {Density: 0.8881, Temp: 15, Type: "LUBE"},
	"97901": {Density: 0.8881, Temp: 15, Type: "LUBE"},
}

// NormalizeMaterial strips leading zeros from a material code. Reference
// files pad codes to 13 digits; the core always compares the stripped form.
func NormalizeMaterial(code string) string {
	trimmed := strings.TrimLeft(strings.TrimSpace(code), "0")
	if trimmed == "" && code != "" {
		return "0"
	}
	return trimmed
}

// ApplyDefaults sets density/temp/type from the static material table, or
// nulls them when the material is unknown.
func ApplyDefaults(p *Product) {
	defaults, ok := productDefaults[NormalizeMaterial(p.Material)]
	if !ok {
		p.Density = nil
		p.Temp = nil
		p.ProductType = nil
		return
	}
	density := defaults.Density
	temp := defaults.Temp
	productType := defaults.Type
	p.Density = &density
	p.Temp = &temp
	p.ProductType = &productType
}
