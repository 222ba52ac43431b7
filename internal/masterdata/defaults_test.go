package masterdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMaterial(t *testing.T) {
	assert.Equal(t, "31280", NormalizeMaterial("0000000031280"))
	assert.Equal(t, "31280", NormalizeMaterial(" 31280 "))
	assert.Equal(t, "0", NormalizeMaterial("000"))
	assert.Equal(t, "", NormalizeMaterial(""))
	assert.Equal(t, "81358", NormalizeMaterial("81358"))
}

func TestApplyDefaultsKnownMaterial(t *testing.T) {
	p := Product{Material: "0000000031280"}
	ApplyDefaults(&p)

	require.NotNil(t, p.Density)
	assert.Equal(t, 0.7550, *p.Density)
	require.NotNil(t, p.Temp)
	assert.Equal(t, 15.0, *p.Temp)
	require.NotNil(t, p.ProductType)
	assert.Equal(t, "FUEL", *p.ProductType)
}

func TestApplyDefaultsLPGTemp(t *testing.T) {
	p := Product{Material: "30876"}
	ApplyDefaults(&p)

	require.NotNil(t, p.Temp)
	assert.Equal(t, 20.0, *p.Temp)
	assert.Equal(t, "LPG", *p.ProductType)
}

func TestApplyDefaultsUnknownMaterialNullsAttributes(t *testing.T) {
	density := 0.9
	p := Product{Material: "99999", Density: &density}
	ApplyDefaults(&p)

	assert.Nil(t, p.Density)
	assert.Nil(t, p.Temp)
	assert.Nil(t, p.ProductType)
}
