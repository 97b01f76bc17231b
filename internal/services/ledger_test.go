package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/localnerve/carbonledger/internal/emissions"
	"github.com/localnerve/carbonledger/internal/models"
	"github.com/localnerve/carbonledger/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantifyAndPersistDiesel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	activity := f.record(t, f.truck, "March fuel", "2024-03-10", 100)

	assert.NotEmpty(t, activity.PublicID)
	assert.Equal(t, 2024, activity.Year)
	assert.Equal(t, 3, activity.Month)
	assert.Equal(t, f.depot.ID, activity.LocationID)
	assert.Equal(t, "user-1", activity.UserID)
	assert.InDelta(t, 268.0+0.01*28+0.5, activity.TotalCO2e, 1e-9)

	loaded, err := GetActivity(ctx, f.db, activity.ID)
	require.NoError(t, err)

	require.Len(t, loaded.GasesByFactor, 3)
	main := loaded.GasesByFactor[0]
	assert.Equal(t, "Diesel combustion", main.Component)
	assert.Equal(t, f.co2.ID, main.GreenhouseGasID)
	assert.InDelta(t, 268.0, main.Value, 1e-9)
	assert.InDelta(t, 268.0, main.CO2e, 1e-9)

	methane := loaded.GasesByFactor[1]
	assert.Equal(t, f.ch4.ID, methane.GreenhouseGasID)
	assert.InDelta(t, 0.01, methane.Value, 1e-12)
	assert.InDelta(t, 0.28, methane.CO2e, 1e-12)

	losses := loaded.GasesByFactor[2]
	assert.Equal(t, "Combustion losses", losses.Component)
	assert.InDelta(t, 0.5, losses.Value, 1e-12)

	require.Len(t, loaded.Gases, 2)
	require.Len(t, loaded.CO2eByComponent, 2)
	assert.Equal(t, "Diesel combustion", loaded.CO2eByComponent[0].Component)
	assert.InDelta(t, 268.28, loaded.CO2eByComponent[0].CO2e, 1e-9)
	assert.InDelta(t, 0.5, loaded.CO2eByComponent[1].CO2e, 1e-12)

	var breakdown []emissions.ComponentResult
	require.NoError(t, loaded.Breakdown.Decode(&breakdown))
	assert.Len(t, breakdown, 2)
}

func TestQuantifyAndPersistAdditivity(t *testing.T) {
	f := newFixture(t)
	activity := f.record(t, f.truck, "fuel", "2024-03-10", 37.5)

	loaded, err := GetActivity(context.Background(), f.db, activity.ID)
	require.NoError(t, err)

	var byComponent, byGas, byFactor float64
	for _, c := range loaded.CO2eByComponent {
		byComponent += c.CO2e
	}
	for _, g := range loaded.Gases {
		byGas += g.CO2e
	}
	for _, d := range loaded.GasesByFactor {
		byFactor += d.CO2e
	}

	assert.InDelta(t, loaded.TotalCO2e, byComponent, 1e-9)
	assert.InDelta(t, loaded.TotalCO2e, byGas, 1e-9)
	assert.InDelta(t, loaded.TotalCO2e, byFactor, 1e-9)
}

func TestRequantifyIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	activity := f.record(t, f.truck, "fuel", "2024-03-10", 100)

	first, err := GetActivity(ctx, f.db, activity.ID)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := RequantifyActivity(ctx, f.db, activity.ID, "user-1")
		require.NoError(t, err)
	}

	again, err := GetActivity(ctx, f.db, activity.ID)
	require.NoError(t, err)

	assert.Equal(t, first.TotalCO2e, again.TotalCO2e)
	require.Len(t, again.GasesByFactor, len(first.GasesByFactor))
	require.Len(t, again.Gases, len(first.Gases))
	require.Len(t, again.CO2eByComponent, len(first.CO2eByComponent))
	for i := range first.GasesByFactor {
		assert.Equal(t, first.GasesByFactor[i].Value, again.GasesByFactor[i].Value)
		assert.Equal(t, first.GasesByFactor[i].CO2e, again.GasesByFactor[i].CO2e)
	}

	var count int64
	require.NoError(t, f.db.Model(&models.ActivityGasEmittedByFactor{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestRequantifyKeepsCreator(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	activity := f.record(t, f.truck, "fuel", "2024-03-10", 100)
	require.Equal(t, "user-1", activity.UserID)

	_, err := RequantifyActivity(ctx, f.db, activity.ID, "user-2")
	require.NoError(t, err)

	loaded, err := GetActivity(ctx, f.db, activity.ID)
	require.NoError(t, err)
	assert.Equal(t, "user-1", loaded.UserID)
}

func TestConcurrentRequantifySerializes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	activity := f.record(t, f.truck, "fuel", "2024-03-10", 100)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := RequantifyActivity(ctx, f.db, activity.ID, "user-1")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	loaded, err := GetActivity(ctx, f.db, activity.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.GasesByFactor, 3)
	assert.Len(t, loaded.Gases, 2)
	assert.Len(t, loaded.CO2eByComponent, 2)
}

func TestUpdateActivityConvertsUnits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	activity := f.record(t, f.truck, "fuel", "2024-03-10", 5)

	updated, err := UpdateActivity(ctx, f.db, activity.ID, "user-2", ActivityInput{
		EmissionSourceID: f.truck.ID,
		Name:             "fuel in m3",
		Consumption:      0.1,
		Date:             "2024-04-01",
		UnitID:           &f.cubicMeter.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, updated.Month)
	assert.Equal(t, "user-1", updated.UserID)
	assert.InDelta(t, 268.78, updated.TotalCO2e, 1e-9)
}

func TestQuantifyIncompatibleUnit(t *testing.T) {
	f := newFixture(t)

	_, err := CreateActivity(context.Background(), f.db, "user-1", ActivityInput{
		EmissionSourceID: f.truck.ID,
		Name:             "fuel by weight",
		Consumption:      10,
		Date:             "2024-03-10",
		UnitID:           &f.kilogram.ID,
	})

	var validationErr *types.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "unit_id", validationErr.Field)
	assert.ErrorIs(t, err, emissions.ErrIncompatibleUnits)
}

func TestQuantifyConfigurationErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	unbound := models.EmissionsSource{Name: "Unbound", LocationID: f.depot.ID}
	require.NoError(t, f.db.Create(&unbound).Error)

	unitless := models.EmissionFactor{Name: "Unitless", ApplicationPercentage: 1}
	require.NoError(t, f.db.Create(&unitless).Error)
	require.NoError(t, f.db.Create(&models.GreenhouseGasEmission{
		EmissionFactorID: unitless.ID,
		GreenhouseGasID:  f.co2.ID,
		Value:            1,
	}).Error)
	unitlessSource := models.EmissionsSource{Name: "Unitless", LocationID: f.depot.ID, EmissionFactorID: &unitless.ID}
	require.NoError(t, f.db.Create(&unitlessSource).Error)

	empty := models.EmissionFactor{Name: "Empty", ApplicationPercentage: 1, UnitID: &f.liter.ID}
	require.NoError(t, f.db.Create(&empty).Error)
	emptySource := models.EmissionsSource{Name: "Empty", LocationID: f.depot.ID, EmissionFactorID: &empty.ID}
	require.NoError(t, f.db.Create(&emptySource).Error)

	for _, source := range []models.EmissionsSource{unbound, unitlessSource, emptySource} {
		t.Run(source.Name, func(t *testing.T) {
			_, err := CreateActivity(ctx, f.db, "user-1", ActivityInput{
				EmissionSourceID: source.ID,
				Name:             "x",
				Consumption:      1,
				Date:             "2024-01-01",
			})
			var cfgErr *types.ConfigurationError
			assert.True(t, errors.As(err, &cfgErr), "got %v", err)
		})
	}

	var count int64
	require.NoError(t, f.db.Model(&models.Activity{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateActivityValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		input ActivityInput
		field string
	}{
		{"missing source", ActivityInput{Name: "x", Date: "2024-01-01"}, "emission_source_id"},
		{"missing name", ActivityInput{EmissionSourceID: f.truck.ID, Date: "2024-01-01"}, "name"},
		{"negative consumption", ActivityInput{EmissionSourceID: f.truck.ID, Name: "x", Consumption: -1, Date: "2024-01-01"}, "consumption"},
		{"bad date", ActivityInput{EmissionSourceID: f.truck.ID, Name: "x", Date: "03/10/2024"}, "date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateActivity(context.Background(), f.db, "user-1", tt.input)
			var validationErr *types.ValidationError
			require.True(t, errors.As(err, &validationErr), "got %v", err)
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}
}

func TestCreateActivityNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := CreateActivity(ctx, f.db, "user-1", ActivityInput{EmissionSourceID: 9999, Name: "x", Date: "2024-01-01"})
	var notFound *types.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "emission source", notFound.Entity)

	_, err = CreateActivity(ctx, f.db, "user-1", ActivityInput{EmissionSourceID: f.truck.ID, LocationID: 9999, Name: "x", Date: "2024-01-01"})
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "location", notFound.Entity)

	_, err = UpdateActivity(ctx, f.db, 9999, "user-1", ActivityInput{EmissionSourceID: f.truck.ID, Name: "x", Date: "2024-01-01"})
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "activity", notFound.Entity)
}

func TestCreateActivityLocationCompany(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := CreateActivity(ctx, f.db, "user-1", ActivityInput{
		EmissionSourceID: f.truck.ID,
		LocationID:       f.remote.ID,
		Name:             "fuel",
		Consumption:      100,
		Date:             "2024-03-10",
	})
	var validationErr *types.ValidationError
	require.True(t, errors.As(err, &validationErr), "got %v", err)
	assert.Equal(t, "location_id", validationErr.Field)

	var count int64
	require.NoError(t, f.db.Model(&models.Activity{}).Count(&count).Error)
	assert.Zero(t, count)

	activity, err := CreateActivity(ctx, f.db, "user-1", ActivityInput{
		EmissionSourceID: f.truck.ID,
		LocationID:       f.office.ID,
		Name:             "fuel",
		Consumption:      100,
		Date:             "2024-03-10",
	})
	require.NoError(t, err)
	assert.Equal(t, f.office.ID, activity.LocationID)
}

func TestCreateActivitiesRollsBackBatch(t *testing.T) {
	f := newFixture(t)

	_, err := CreateActivities(context.Background(), f.db, "user-1", []ActivityInput{
		{EmissionSourceID: f.truck.ID, Name: "ok", Consumption: 1, Date: "2024-01-01"},
		{EmissionSourceID: f.truck.ID, Name: "bad", Consumption: 1, Date: "nope"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "activity 1")

	var count int64
	require.NoError(t, f.db.Model(&models.Activity{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, f.db.Model(&models.ActivityGasEmitted{}).Count(&count).Error)
	assert.Zero(t, count)

	created, err := CreateActivities(context.Background(), f.db, "user-1", []ActivityInput{
		{EmissionSourceID: f.truck.ID, Name: "one", Consumption: 1, Date: "2024-01-01"},
		{EmissionSourceID: f.meter.ID, Name: "two", Consumption: 1, Date: "2024-01-02"},
	})
	require.NoError(t, err)
	assert.Len(t, created, 2)
}

func TestDeleteActivity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	activity := f.record(t, f.truck, "fuel", "2024-03-10", 100)
	other := f.record(t, f.meter, "power", "2024-03-10", 100)

	require.NoError(t, DeleteActivity(ctx, f.db, activity.ID))

	_, err := GetActivity(ctx, f.db, activity.ID)
	var notFound *types.NotFoundError
	assert.True(t, errors.As(err, &notFound))

	var count int64
	require.NoError(t, f.db.Model(&models.ActivityGasEmittedByFactor{}).Where("activity_id = ?", activity.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, f.db.Model(&models.ActivityGasEmittedByFactor{}).Where("activity_id = ?", other.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	err = DeleteActivity(ctx, f.db, activity.ID)
	assert.True(t, errors.As(err, &notFound))
}

func TestGasTotalValue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	activity := f.record(t, f.truck, "fuel", "2024-03-10", 100)

	co2, err := GasTotalValue(ctx, f.db, activity.ID, f.co2.ID)
	require.NoError(t, err)
	assert.True(t, co2.Equal(decimal.RequireFromString("268.5")), "got %s", co2)

	ch4, err := GasTotalValue(ctx, f.db, activity.ID, f.ch4.ID)
	require.NoError(t, err)
	assert.True(t, ch4.Equal(decimal.RequireFromString("0.01")), "got %s", ch4)

	none, err := GasTotalValue(ctx, f.db, activity.ID, 9999)
	require.NoError(t, err)
	assert.True(t, none.IsZero())
}
