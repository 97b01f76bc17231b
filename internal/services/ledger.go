// ledger.go
//
// A greenhouse-gas quantification and aggregation service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of carbonledger.
// carbonledger is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// carbonledger is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with carbonledger.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/localnerve/carbonledger/internal/emissions"
	"github.com/localnerve/carbonledger/internal/models"
	"github.com/localnerve/carbonledger/internal/types"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// DateLayout is the accepted activity date format.
const DateLayout = "2006-01-02"

// ActivityInput is the caller-supplied part of an activity.
type ActivityInput struct {
	EmissionSourceID uint64  `json:"emission_source_id"`
	LocationID       uint64  `json:"location_id,omitempty"`
	Name             string  `json:"name"`
	Description      string  `json:"description,omitempty"`
	Consumption      float64 `json:"consumption"`
	Date             string  `json:"date"`
	UnitID           *uint64 `json:"unit_id,omitempty"`
}

func (in ActivityInput) apply(activity *models.Activity) error {
	if in.EmissionSourceID == 0 {
		return types.NewValidationError("emission_source_id", "is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return types.NewValidationError("name", "is required")
	}
	if in.Consumption < 0 {
		return types.NewValidationError("consumption", "must not be negative, got %g", in.Consumption)
	}
	date, err := time.Parse(DateLayout, in.Date)
	if err != nil {
		return &types.ValidationError{Field: "date", Message: fmt.Sprintf("expected YYYY-MM-DD, got %q", in.Date), Err: err}
	}

	activity.EmissionSourceID = in.EmissionSourceID
	activity.LocationID = in.LocationID
	activity.Name = strings.TrimSpace(in.Name)
	activity.Description = in.Description
	activity.Consumption = in.Consumption
	activity.UnitID = in.UnitID
	activity.SetDate(date)
	return nil
}

type gasTotal struct {
	gasID uint64
	value float64
	co2e  float64
}

type componentTotal struct {
	factorID uint64
	name     string
	position int
	co2e     float64
}

// QuantifyAndPersist runs the calculator for activity and replaces its
// breakdown rows in one transaction. A new activity (ID 0) is inserted in the
// same transaction. An existing one is row-locked first, so concurrent
// re-quantifications of the same activity serialize.
func QuantifyAndPersist(ctx context.Context, db *gorm.DB, activity *models.Activity, userID string) error {
	source, err := LoadEmissionSource(ctx, db, activity.EmissionSourceID)
	if err != nil {
		return err
	}
	factor := source.EmissionFactor
	if err := emissions.ValidateFactor(factor); err != nil {
		return err
	}

	if activity.LocationID == 0 {
		activity.LocationID = source.LocationID
	} else if activity.LocationID != source.LocationID {
		var location models.Location
		if err := db.WithContext(ctx).Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)}).
			Select("id", "company_id").
			First(&location, activity.LocationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &types.NotFoundError{Entity: "location", ID: activity.LocationID}
			}
			return fmt.Errorf("lookup location %d: %w", activity.LocationID, err)
		}
		if location.CompanyID != source.Location.CompanyID {
			return types.NewValidationError("location_id",
				"location %d belongs to another company than emission source %d", activity.LocationID, source.ID)
		}
	}

	if activity.Consumption < 0 {
		return types.NewValidationError("consumption", "must not be negative, got %g", activity.Consumption)
	}
	if activity.UnitID == nil {
		activity.UnitID = factor.UnitID
	}
	consumption, err := consumptionInFactorUnit(ctx, db, activity, factor)
	if err != nil {
		return err
	}

	results := emissions.ExpandFactor(factor, consumption)
	breakdown, err := models.NewJSON(results)
	if err != nil {
		return fmt.Errorf("encode breakdown: %w", err)
	}

	var (
		byFactor   []models.ActivityGasEmittedByFactor
		gases      []models.ActivityGasEmitted
		components []models.ActivityCO2eByComponent
	)

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if activity.ID == 0 {
			activity.UserID = userID
			if err := tx.Omit(clause.Associations).Create(activity).Error; err != nil {
				return fmt.Errorf("create activity: %w", err)
			}
		} else {
			var locked models.Activity
			if err := tx.Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)}).
				Clauses(clause.Locking{Strength: "UPDATE"}).
				Select("id").
				First(&locked, activity.ID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &types.NotFoundError{Entity: "activity", ID: activity.ID}
				}
				return err
			}
		}

		if err := deleteBreakdown(tx, activity.ID); err != nil {
			return err
		}

		gasIndex := map[uint64]int{}
		var gasTotals []gasTotal
		componentIndex := map[string]int{}
		var componentTotals []componentTotal

		position := 0
		for i, component := range results {
			factorID := component.FactorID
			for _, gas := range component.Results {
				byFactor = append(byFactor, models.ActivityGasEmittedByFactor{
					ActivityID:       activity.ID,
					EmissionFactorID: &factorID,
					GreenhouseGasID:  gas.GasID,
					Component:        component.Component,
					Position:         position,
					Value:            gas.CO2e,
					CO2e:             gas.GWP,
				})
				position++

				idx, ok := gasIndex[gas.GasID]
				if !ok {
					idx = len(gasTotals)
					gasIndex[gas.GasID] = idx
					gasTotals = append(gasTotals, gasTotal{gasID: gas.GasID})
				}
				gasTotals[idx].value += gas.CO2e
				gasTotals[idx].co2e += gas.GWP
			}

			key := fmt.Sprintf("%d/%s", component.FactorID, component.Component)
			idx, ok := componentIndex[key]
			if !ok {
				idx = len(componentTotals)
				componentIndex[key] = idx
				componentTotals = append(componentTotals, componentTotal{
					factorID: component.FactorID,
					name:     component.Component,
					position: i,
				})
			}
			componentTotals[idx].co2e += component.CO2e
		}

		if len(byFactor) > 0 {
			if err := tx.Create(&byFactor).Error; err != nil {
				return fmt.Errorf("insert gases by factor: %w", err)
			}
		}

		for _, total := range gasTotals {
			gases = append(gases, models.ActivityGasEmitted{
				ActivityID:      activity.ID,
				GreenhouseGasID: total.gasID,
				Value:           total.value,
				CO2e:            total.co2e,
			})
		}
		if len(gases) > 0 {
			if err := tx.Create(&gases).Error; err != nil {
				return fmt.Errorf("insert gas totals: %w", err)
			}
		}

		for _, total := range componentTotals {
			factorID := total.factorID
			components = append(components, models.ActivityCO2eByComponent{
				ActivityID:       activity.ID,
				EmissionFactorID: &factorID,
				Component:        total.name,
				Position:         total.position,
				CO2e:             total.co2e,
			})
		}
		if len(components) > 0 {
			if err := tx.Create(&components).Error; err != nil {
				return fmt.Errorf("insert component totals: %w", err)
			}
		}

		activity.TotalCO2e = emissions.TotalCO2e(results)
		activity.Breakdown = breakdown

		return tx.Omit(clause.Associations).Save(activity).Error
	})
	if err != nil {
		return err
	}

	activity.GasesByFactor = byFactor
	activity.Gases = gases
	activity.CO2eByComponent = components

	log.Debug().
		Uint64("activity_id", activity.ID).
		Uint64("factor_id", factor.ID).
		Float64("total_co2e", activity.TotalCO2e).
		Msg("activity quantified")
	return nil
}

// consumptionInFactorUnit expresses the activity consumption in the unit the
// factor expects.
func consumptionInFactorUnit(ctx context.Context, db *gorm.DB, activity *models.Activity, factor *models.EmissionFactor) (float64, error) {
	if activity.UnitID == nil || factor.UnitID == nil || *activity.UnitID == *factor.UnitID {
		return activity.Consumption, nil
	}

	from, err := LoadUnit(ctx, db, *activity.UnitID)
	if err != nil {
		return 0, err
	}
	to := factor.Unit
	if to == nil {
		if to, err = LoadUnit(ctx, db, *factor.UnitID); err != nil {
			return 0, err
		}
	}

	value, err := emissions.ConvertUnit(activity.Consumption, from, to)
	if err != nil {
		return 0, &types.ValidationError{
			Field:   "unit_id",
			Message: fmt.Sprintf("cannot convert %s to %s", from.Symbol, to.Symbol),
			Err:     err,
		}
	}
	return value, nil
}

func deleteBreakdown(tx *gorm.DB, activityID uint64) error {
	if err := tx.Where("activity_id = ?", activityID).Delete(&models.ActivityGasEmittedByFactor{}).Error; err != nil {
		return fmt.Errorf("delete gases by factor: %w", err)
	}
	if err := tx.Where("activity_id = ?", activityID).Delete(&models.ActivityGasEmitted{}).Error; err != nil {
		return fmt.Errorf("delete gas totals: %w", err)
	}
	if err := tx.Where("activity_id = ?", activityID).Delete(&models.ActivityCO2eByComponent{}).Error; err != nil {
		return fmt.Errorf("delete component totals: %w", err)
	}
	return nil
}

// CreateActivity validates in, records it for userID and quantifies it.
func CreateActivity(ctx context.Context, db *gorm.DB, userID string, in ActivityInput) (*models.Activity, error) {
	var activity models.Activity
	if err := in.apply(&activity); err != nil {
		return nil, err
	}
	if err := QuantifyAndPersist(ctx, db, &activity, userID); err != nil {
		return nil, err
	}
	return &activity, nil
}

// CreateActivities records a batch atomically; the first failure rolls back
// every activity of the batch.
func CreateActivities(ctx context.Context, db *gorm.DB, userID string, inputs []ActivityInput) ([]*models.Activity, error) {
	created := make([]*models.Activity, 0, len(inputs))

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, in := range inputs {
			activity, err := CreateActivity(ctx, tx, userID, in)
			if err != nil {
				return fmt.Errorf("activity %d: %w", i, err)
			}
			created = append(created, activity)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateActivity replaces the caller-supplied fields of an activity and
// re-quantifies it.
func UpdateActivity(ctx context.Context, db *gorm.DB, id uint64, userID string, in ActivityInput) (*models.Activity, error) {
	activity, err := findActivity(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(activity); err != nil {
		return nil, err
	}
	if err := QuantifyAndPersist(ctx, db, activity, userID); err != nil {
		return nil, err
	}
	return activity, nil
}

// RequantifyActivity recomputes the breakdown of an unchanged activity.
func RequantifyActivity(ctx context.Context, db *gorm.DB, id uint64, userID string) (*models.Activity, error) {
	activity, err := findActivity(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if err := QuantifyAndPersist(ctx, db, activity, userID); err != nil {
		return nil, err
	}
	return activity, nil
}

// DeleteActivity removes an activity and every breakdown row it owns.
func DeleteActivity(ctx context.Context, db *gorm.DB, id uint64) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var activity models.Activity
		if err := tx.Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&activity, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &types.NotFoundError{Entity: "activity", ID: id}
			}
			return err
		}

		if err := deleteBreakdown(tx, id); err != nil {
			return err
		}
		if err := tx.Delete(&activity).Error; err != nil {
			return fmt.Errorf("delete activity %d: %w", id, err)
		}

		log.Debug().Uint64("activity_id", id).Msg("activity deleted")
		return nil
	})
}

// GetActivity returns an activity with its unit, source, location and
// breakdown rows.
func GetActivity(ctx context.Context, db *gorm.DB, id uint64) (*models.Activity, error) {
	var activity models.Activity
	err := db.WithContext(ctx).Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)}).
		Preload("Unit").
		Preload("EmissionSource").
		Preload("Location").
		Preload("GasesByFactor", func(db *gorm.DB) *gorm.DB { return db.Order("position, id") }).
		Preload("GasesByFactor.GreenhouseGas").
		Preload("Gases", orderByID).
		Preload("Gases.GreenhouseGas").
		Preload("CO2eByComponent", func(db *gorm.DB) *gorm.DB { return db.Order("position, id") }).
		First(&activity, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &types.NotFoundError{Entity: "activity", ID: id}
		}
		return nil, fmt.Errorf("load activity %d: %w", id, err)
	}
	return &activity, nil
}

func findActivity(ctx context.Context, db *gorm.DB, id uint64) (*models.Activity, error) {
	var activity models.Activity
	err := db.WithContext(ctx).Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)}).
		First(&activity, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &types.NotFoundError{Entity: "activity", ID: id}
		}
		return nil, err
	}
	return &activity, nil
}

// GasTotalValue returns the emitted quantity of one gas for an activity,
// rounded to 7 decimals. A gas the activity did not emit totals zero.
func GasTotalValue(ctx context.Context, db *gorm.DB, activityID, gasID uint64) (decimal.Decimal, error) {
	var totals []float64
	if err := db.WithContext(ctx).Model(&models.ActivityGasEmitted{}).
		Where("activity_id = ? AND greenhouse_gas_id = ?", activityID, gasID).
		Pluck("value", &totals).Error; err != nil {
		return decimal.Zero, fmt.Errorf("gas total for activity %d: %w", activityID, err)
	}

	sum := decimal.Zero
	for _, v := range totals {
		sum = sum.Add(decimal.NewFromFloat(v))
	}
	return sum.Round(7), nil
}
