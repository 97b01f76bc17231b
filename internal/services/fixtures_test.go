package services

import (
	"context"
	"testing"

	"github.com/localnerve/carbonledger/data"
	"github.com/localnerve/carbonledger/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a migrated in-memory database. A single connection keeps
// every goroutine on the same memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// fixture is the seeded catalogue plus two companies:
// A has a diesel truck (scope 1, Direct) and an electricity meter
// (scope 2, Indirect) at two locations, B has one diesel truck.
type fixture struct {
	db *gorm.DB

	liter, cubicMeter, kilogram models.UnitOfMeasure
	co2, ch4                    models.GreenhouseGas
	diesel, electricity         models.EmissionFactor

	companyA, companyB models.Company
	depot, office      models.Location
	remote             models.Location

	truck, meter, remoteTruck models.EmissionsSource
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db := setupTestDB(t)

	_, err := SeedReferenceData(ctx, db, data.ReferenceYAML)
	require.NoError(t, err)

	f := &fixture{db: db}
	require.NoError(t, db.Where("slug = ?", "l").First(&f.liter).Error)
	require.NoError(t, db.Where("slug = ?", "m3").First(&f.cubicMeter).Error)
	require.NoError(t, db.Where("slug = ?", "kg").First(&f.kilogram).Error)
	require.NoError(t, db.Where("acronym = ?", "CO2").First(&f.co2).Error)
	require.NoError(t, db.Where("acronym = ?", "CH4").First(&f.ch4).Error)
	require.NoError(t, db.Where("name = ?", "Diesel").First(&f.diesel).Error)
	require.NoError(t, db.Where("name = ?", "Grid electricity").First(&f.electricity).Error)

	var direct, indirect models.SourceType
	require.NoError(t, db.Where("name = ?", "Direct").First(&direct).Error)
	require.NoError(t, db.Where("name = ?", "Indirect").First(&indirect).Error)

	var fleet, grid models.EmissionSourceGroup
	require.NoError(t, db.Where("name = ?", "Company fleet").First(&fleet).Error)
	require.NoError(t, db.Where("name = ?", "Grid electricity").First(&grid).Error)

	f.companyA = models.Company{Name: "Company A"}
	f.companyB = models.Company{Name: "Company B"}
	require.NoError(t, db.Create(&f.companyA).Error)
	require.NoError(t, db.Create(&f.companyB).Error)

	f.depot = models.Location{Name: "Depot", CompanyID: f.companyA.ID}
	f.office = models.Location{Name: "Office", CompanyID: f.companyA.ID}
	f.remote = models.Location{Name: "Remote", CompanyID: f.companyB.ID}
	require.NoError(t, db.Create(&f.depot).Error)
	require.NoError(t, db.Create(&f.office).Error)
	require.NoError(t, db.Create(&f.remote).Error)

	f.truck = models.EmissionsSource{
		Name:             "Delivery truck",
		LocationID:       f.depot.ID,
		GroupID:          &fleet.ID,
		SourceTypeID:     &direct.ID,
		FactorTypeID:     f.diesel.FactorTypeID,
		EmissionFactorID: &f.diesel.ID,
	}
	f.meter = models.EmissionsSource{
		Name:             "Main meter",
		LocationID:       f.office.ID,
		GroupID:          &grid.ID,
		SourceTypeID:     &indirect.ID,
		FactorTypeID:     f.electricity.FactorTypeID,
		EmissionFactorID: &f.electricity.ID,
	}
	f.remoteTruck = models.EmissionsSource{
		Name:             "Remote truck",
		LocationID:       f.remote.ID,
		GroupID:          &fleet.ID,
		SourceTypeID:     &direct.ID,
		FactorTypeID:     f.diesel.FactorTypeID,
		EmissionFactorID: &f.diesel.ID,
	}
	require.NoError(t, db.Create(&f.truck).Error)
	require.NoError(t, db.Create(&f.meter).Error)
	require.NoError(t, db.Create(&f.remoteTruck).Error)

	return f
}

func (f *fixture) record(t *testing.T, source models.EmissionsSource, name, date string, consumption float64) *models.Activity {
	t.Helper()
	activity, err := CreateActivity(context.Background(), f.db, "user-1", ActivityInput{
		EmissionSourceID: source.ID,
		Name:             name,
		Consumption:      consumption,
		Date:             date,
	})
	require.NoError(t, err)
	return activity
}
