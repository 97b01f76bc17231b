package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/localnerve/carbonledger/internal/models"
	"github.com/localnerve/carbonledger/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

// preloadFactor loads everything the calculator reads from a factor found at
// path ("" for the root model): its unit, coefficients with gases, and its
// components with their own unit and coefficients.
func preloadFactor(query *gorm.DB, path string) *gorm.DB {
	p := func(rel string) string {
		if path == "" {
			return rel
		}
		return path + "." + rel
	}
	return query.
		Preload(p("Unit")).
		Preload(p("GasEmissions"), orderByID).
		Preload(p("GasEmissions.GreenhouseGas")).
		Preload(p("Components"), orderByID).
		Preload(p("Components.ComponentFactor")).
		Preload(p("Components.ComponentFactor.Unit")).
		Preload(p("Components.ComponentFactor.GasEmissions"), orderByID).
		Preload(p("Components.ComponentFactor.GasEmissions.GreenhouseGas"))
}

// sortCoefficients orders coefficients by gas name so calculator output is
// stable regardless of insertion order.
func sortCoefficients(factor *models.EmissionFactor) {
	if factor == nil {
		return
	}
	slices.SortStableFunc(factor.GasEmissions, func(a, b models.GreenhouseGasEmission) int {
		return strings.Compare(gasName(a), gasName(b))
	})
	for i := range factor.Components {
		if cf := factor.Components[i].ComponentFactor; cf != nil {
			slices.SortStableFunc(cf.GasEmissions, func(a, b models.GreenhouseGasEmission) int {
				return strings.Compare(gasName(a), gasName(b))
			})
		}
	}
}

func gasName(c models.GreenhouseGasEmission) string {
	if c.GreenhouseGas == nil {
		return ""
	}
	return c.GreenhouseGas.Name
}

// LoadEmissionFactor returns a factor with all nesting loaded.
func LoadEmissionFactor(ctx context.Context, db *gorm.DB, id uint64) (*models.EmissionFactor, error) {
	var factor models.EmissionFactor
	query := db.WithContext(ctx).Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)}).
		Preload("FactorType").
		Preload("SourceType")

	if err := preloadFactor(query, "").First(&factor, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &types.NotFoundError{Entity: "emission factor", ID: id}
		}
		return nil, fmt.Errorf("load emission factor %d: %w", id, err)
	}

	sortCoefficients(&factor)
	return &factor, nil
}

// LoadEmissionSource returns a source with its location, classification and
// fully loaded emission factor. A source without a factor is a
// ConfigurationError.
func LoadEmissionSource(ctx context.Context, db *gorm.DB, id uint64) (*models.EmissionsSource, error) {
	var source models.EmissionsSource
	query := db.WithContext(ctx).Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)}).
		Preload("Location").
		Preload("Group.Category.Scope").
		Preload("SourceType").
		Preload("FactorType").
		Preload("EmissionFactor")

	if err := preloadFactor(query, "EmissionFactor").First(&source, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &types.NotFoundError{Entity: "emission source", ID: id}
		}
		return nil, fmt.Errorf("load emission source %d: %w", id, err)
	}

	if source.Location == nil {
		return nil, &types.NotFoundError{Entity: "location", ID: source.LocationID}
	}
	if source.EmissionFactorID == nil || source.EmissionFactor == nil {
		return nil, &types.ConfigurationError{
			Entity: "emission source",
			ID:     source.ID,
			Reason: "no emission factor",
		}
	}

	sortCoefficients(source.EmissionFactor)
	return &source, nil
}

// LoadUnit returns one unit of measure.
func LoadUnit(ctx context.Context, db *gorm.DB, id uint64) (*models.UnitOfMeasure, error) {
	var unit models.UnitOfMeasure
	if err := db.WithContext(ctx).First(&unit, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &types.NotFoundError{Entity: "unit of measure", ID: id}
		}
		return nil, fmt.Errorf("load unit %d: %w", id, err)
	}
	return &unit, nil
}
