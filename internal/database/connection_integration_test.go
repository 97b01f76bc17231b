package database_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/localnerve/carbonledger/data"
	"github.com/localnerve/carbonledger/internal/database"
	"github.com/localnerve/carbonledger/internal/models"
	"github.com/localnerve/carbonledger/internal/services"
	"github.com/localnerve/carbonledger/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestServerRoundTrip runs the ledger against a real database server.
// Set DB_IMAGE (e.g. mariadb:11) to enable it.
func TestServerRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	if os.Getenv("DB_IMAGE") == "" {
		t.Skip("DB_IMAGE not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	containers, err := testutil.Start(ctx, false)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := containers.Terminate(context.Background()); err != nil {
			t.Logf("terminate containers: %v", err)
		}
	})

	db, err := database.Connect(containers.Config)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, database.AutoMigrate(db))
	stats, err := services.SeedReferenceData(ctx, db, data.ReferenceYAML)
	require.NoError(t, err)
	assert.Positive(t, stats.Factors)

	var diesel models.EmissionFactor
	require.NoError(t, db.Where("name = ?", "Diesel").First(&diesel).Error)

	company := models.Company{Name: "Integration"}
	require.NoError(t, db.Create(&company).Error)
	location := models.Location{Name: "Yard", CompanyID: company.ID}
	require.NoError(t, db.Create(&location).Error)
	source := models.EmissionsSource{
		Name:             "Forklift",
		LocationID:       location.ID,
		FactorTypeID:     diesel.FactorTypeID,
		EmissionFactorID: &diesel.ID,
	}
	require.NoError(t, db.Create(&source).Error)

	activity, err := services.CreateActivity(ctx, db, "user-1", services.ActivityInput{
		EmissionSourceID: source.ID,
		Name:             "Fuel",
		Consumption:      100,
		Date:             "2024-03-10",
	})
	require.NoError(t, err)
	assert.InDelta(t, 268.78, activity.TotalCO2e, 1e-6)

	again, err := services.RequantifyActivity(ctx, db, activity.ID, "user-1")
	require.NoError(t, err)
	assert.InDelta(t, activity.TotalCO2e, again.TotalCO2e, 1e-9)

	year, month := 2024, 3
	summary, err := services.Compute(ctx, db, services.AnalysisFilter{
		CompanyID: company.ID,
		Year:      &year,
		Month:     &month,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.ActivityCount)
	assert.InDelta(t, activity.TotalCO2e, summary.TotalEmissions, 1e-6)

	require.NoError(t, services.DeleteActivity(ctx, db, activity.ID))
	var remaining int64
	require.NoError(t, db.Model(&models.ActivityGasEmittedByFactor{}).
		Where("activity_id = ?", activity.ID).Count(&remaining).Error)
	assert.Zero(t, remaining)
}
