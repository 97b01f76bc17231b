package services

import (
	"context"
	"errors"
	"testing"

	"github.com/localnerve/carbonledger/data"
	"github.com/localnerve/carbonledger/internal/models"
	"github.com/localnerve/carbonledger/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedReferenceDataIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first, err := SeedReferenceData(ctx, db, data.ReferenceYAML)
	require.NoError(t, err)
	assert.Equal(t, 8, first.Units)
	assert.Equal(t, 4, first.Gases)
	assert.Equal(t, 4, first.Factors)

	second, err := SeedReferenceData(ctx, db, data.ReferenceYAML)
	require.NoError(t, err)
	assert.Equal(t, SeedStats{}, second)

	var coefficients, components int64
	require.NoError(t, db.Model(&models.GreenhouseGasEmission{}).Count(&coefficients).Error)
	require.NoError(t, db.Model(&models.EmissionFactorComponent{}).Count(&components).Error)
	assert.Equal(t, int64(8), coefficients)
	assert.Equal(t, int64(1), components)
}

func TestSeedReferenceDataRejectsBadCatalogue(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := SeedReferenceData(ctx, db, []byte("units: [unterminated"))
	assert.Error(t, err)

	_, err = SeedReferenceData(ctx, db, []byte(`
factors:
  - name: Broken
    coefficients:
      - gas: XYZ
        value: 1
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown gas")

	var count int64
	require.NoError(t, db.Model(&models.EmissionFactor{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestLoadEmissionFactor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	factor, err := LoadEmissionFactor(ctx, f.db, f.diesel.ID)
	require.NoError(t, err)

	require.NotNil(t, factor.Unit)
	assert.Equal(t, "l", factor.Unit.Slug)
	require.Len(t, factor.GasEmissions, 3)
	assert.Equal(t, "Carbon dioxide", factor.GasEmissions[0].GreenhouseGas.Name)
	assert.Equal(t, "Methane", factor.GasEmissions[1].GreenhouseGas.Name)
	assert.Equal(t, "Nitrous oxide", factor.GasEmissions[2].GreenhouseGas.Name)

	require.Len(t, factor.Components, 1)
	component := factor.Components[0].ComponentFactor
	require.NotNil(t, component)
	assert.Equal(t, "Combustion losses", component.Name)
	require.NotNil(t, component.Unit)
	require.Len(t, component.GasEmissions, 1)
	assert.NotNil(t, component.GasEmissions[0].GreenhouseGas)

	_, err = LoadEmissionFactor(ctx, f.db, 9999)
	var notFound *types.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestLoadEmissionSource(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	source, err := LoadEmissionSource(ctx, f.db, f.truck.ID)
	require.NoError(t, err)
	require.NotNil(t, source.Location)
	require.NotNil(t, source.Group)
	require.NotNil(t, source.Group.Category)
	require.NotNil(t, source.Group.Category.Scope)
	assert.Equal(t, "1 - 1.2", source.Group.Category.FullCode())
	require.NotNil(t, source.EmissionFactor)
	assert.Len(t, source.EmissionFactor.Components, 1)
}
