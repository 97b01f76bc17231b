// seed.go
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

	"github.com/localnerve/carbonledger/internal/models"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ReferenceCatalogue is the YAML shape of seedable reference data.
// Cross references (units, gases, types, component factors) are by slug,
// acronym or name.
type ReferenceCatalogue struct {
	Units []struct {
		Slug             string   `yaml:"slug"`
		Name             string   `yaml:"name"`
		Symbol           string   `yaml:"symbol"`
		MeasureType      string   `yaml:"measure_type"`
		NameStandardUnit string   `yaml:"name_standard_unit"`
		Scale            *float64 `yaml:"scale"`
		Offset           *float64 `yaml:"offset"`
	} `yaml:"units"`
	Gases []struct {
		Name             string  `yaml:"name"`
		Acronym          string  `yaml:"acronym"`
		KgCO2Equivalence float64 `yaml:"kg_co2_equivalence"`
		PcgMin           string  `yaml:"pcg_min"`
		PcgMax           string  `yaml:"pcg_max"`
		LifespanInYears  string  `yaml:"lifespan_in_years"`
	} `yaml:"gases"`
	SourceTypes []namedEntry `yaml:"source_types"`
	FactorTypes []namedEntry `yaml:"factor_types"`
	Scopes      []struct {
		Name string `yaml:"name"`
		Code string `yaml:"code"`
		Categories []struct {
			Name   string       `yaml:"name"`
			Code   string       `yaml:"code"`
			Groups []namedEntry `yaml:"groups"`
		} `yaml:"categories"`
	} `yaml:"scopes"`
	Factors []factorEntry `yaml:"factors"`
}

type namedEntry struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type factorEntry struct {
	Name                  string  `yaml:"name"`
	Description           string  `yaml:"description"`
	MainComponentName     string  `yaml:"main_component_name"`
	MeasureType           string  `yaml:"measure_type"`
	Unit                  string  `yaml:"unit"`
	ApplicationPercentage float64 `yaml:"application_percentage"`
	SourceType            string  `yaml:"source_type"`
	FactorType            string  `yaml:"factor_type"`
	Coefficients          []struct {
		Gas                   string  `yaml:"gas"`
		Value                 float64 `yaml:"value"`
		PercentageUncertainty float64 `yaml:"percentage_uncertainty"`
		BibliographicSource   string  `yaml:"bibliographic_source"`
	} `yaml:"coefficients"`
	Components []struct {
		Name                  string  `yaml:"name"`
		Factor                string  `yaml:"factor"`
		ApplicationPercentage float64 `yaml:"application_percentage"`
	} `yaml:"components"`
}

// SeedStats counts the rows SeedReferenceData created.
type SeedStats struct {
	Units   int `json:"units"`
	Gases   int `json:"gases"`
	Factors int `json:"factors"`
}

// ParseReferenceCatalogue decodes a YAML catalogue.
func ParseReferenceCatalogue(raw []byte) (*ReferenceCatalogue, error) {
	var catalogue ReferenceCatalogue
	if err := yaml.Unmarshal(raw, &catalogue); err != nil {
		return nil, fmt.Errorf("parse reference catalogue: %w", err)
	}
	return &catalogue, nil
}

// firstOrCreate loads the row matching where into row, or inserts row when
// none exists. It reports whether an insert happened.
func firstOrCreate[T any](tx *gorm.DB, row *T, where T) (bool, error) {
	var existing T
	err := tx.Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)}).
		Where(&where).First(&existing).Error
	if err == nil {
		*row = existing
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	return true, tx.Create(row).Error
}

// SeedReferenceData loads a YAML catalogue in one transaction. Existing rows,
// matched by slug, acronym or name, are left untouched so the seed can run
// repeatedly.
func SeedReferenceData(ctx context.Context, db *gorm.DB, raw []byte) (SeedStats, error) {
	var stats SeedStats

	catalogue, err := ParseReferenceCatalogue(raw)
	if err != nil {
		return stats, err
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		units := map[string]uint64{}
		for _, u := range catalogue.Units {
			unit := models.UnitOfMeasure{
				Slug:                 u.Slug,
				Name:                 u.Name,
				Symbol:               u.Symbol,
				MeasureType:          u.MeasureType,
				NameStandardUnit:     u.NameStandardUnit,
				ScaleToStandardUnit:  u.Scale,
				OffsetToStandardUnit: u.Offset,
			}
			created, err := firstOrCreate(tx, &unit, models.UnitOfMeasure{Slug: u.Slug})
			if err != nil {
				return fmt.Errorf("unit %s: %w", u.Slug, err)
			}
			if created {
				stats.Units++
			}
			units[u.Slug] = unit.ID
		}

		gases := map[string]uint64{}
		for _, g := range catalogue.Gases {
			gas := models.GreenhouseGas{
				Name:             g.Name,
				Acronym:          g.Acronym,
				KgCO2Equivalence: g.KgCO2Equivalence,
				PcgMin:           g.PcgMin,
				PcgMax:           g.PcgMax,
				LifespanInYears:  g.LifespanInYears,
			}
			created, err := firstOrCreate(tx, &gas, models.GreenhouseGas{Acronym: g.Acronym})
			if err != nil {
				return fmt.Errorf("gas %s: %w", g.Acronym, err)
			}
			if created {
				stats.Gases++
			}
			gases[g.Acronym] = gas.ID
		}

		sourceTypes := map[string]uint64{}
		for _, s := range catalogue.SourceTypes {
			st := models.SourceType{Name: s.Name, Description: s.Description}
			if _, err := firstOrCreate(tx, &st, models.SourceType{Name: s.Name}); err != nil {
				return fmt.Errorf("source type %s: %w", s.Name, err)
			}
			sourceTypes[s.Name] = st.ID
		}

		factorTypes := map[string]uint64{}
		for _, f := range catalogue.FactorTypes {
			ft := models.FactorType{Name: f.Name, Description: f.Description}
			if _, err := firstOrCreate(tx, &ft, models.FactorType{Name: f.Name}); err != nil {
				return fmt.Errorf("factor type %s: %w", f.Name, err)
			}
			factorTypes[f.Name] = ft.ID
		}

		for _, s := range catalogue.Scopes {
			scope := models.GHGScope{Name: s.Name, Code: s.Code}
			if _, err := firstOrCreate(tx, &scope, models.GHGScope{Code: s.Code}); err != nil {
				return fmt.Errorf("scope %s: %w", s.Code, err)
			}
			for _, c := range s.Categories {
				category := models.ISOCategory{Name: c.Name, Code: c.Code, ScopeID: scope.ID}
				if _, err := firstOrCreate(tx, &category, models.ISOCategory{Code: c.Code, ScopeID: scope.ID}); err != nil {
					return fmt.Errorf("category %s: %w", c.Code, err)
				}
				for _, g := range c.Groups {
					group := models.EmissionSourceGroup{Name: g.Name, Description: g.Description, CategoryID: category.ID}
					if _, err := firstOrCreate(tx, &group, models.EmissionSourceGroup{Name: g.Name, CategoryID: category.ID}); err != nil {
						return fmt.Errorf("group %s: %w", g.Name, err)
					}
				}
			}
		}

		// Factors first, components second: a component may name any factor.
		factors := map[string]uint64{}
		for _, f := range catalogue.Factors {
			factor := models.EmissionFactor{
				Name:                  f.Name,
				Description:           f.Description,
				MainComponentName:     f.MainComponentName,
				MeasureType:           f.MeasureType,
				ApplicationPercentage: f.ApplicationPercentage,
			}
			if id, ok := units[f.Unit]; ok {
				factor.UnitID = &id
			}
			if id, ok := sourceTypes[f.SourceType]; ok {
				factor.SourceTypeID = &id
			}
			if id, ok := factorTypes[f.FactorType]; ok {
				factor.FactorTypeID = &id
			}

			created, err := firstOrCreate(tx, &factor, models.EmissionFactor{Name: f.Name})
			if err != nil {
				return fmt.Errorf("factor %s: %w", f.Name, err)
			}
			factors[f.Name] = factor.ID
			if !created {
				continue
			}
			stats.Factors++

			for _, c := range f.Coefficients {
				gasID, ok := gases[c.Gas]
				if !ok {
					return fmt.Errorf("factor %s: unknown gas %q", f.Name, c.Gas)
				}
				coefficient := models.GreenhouseGasEmission{
					EmissionFactorID:      factor.ID,
					GreenhouseGasID:       gasID,
					UnitID:                factor.UnitID,
					Value:                 c.Value,
					PercentageUncertainty: c.PercentageUncertainty,
					BibliographicSource:   c.BibliographicSource,
				}
				if err := tx.Create(&coefficient).Error; err != nil {
					return fmt.Errorf("factor %s gas %s: %w", f.Name, c.Gas, err)
				}
			}
		}

		for _, f := range catalogue.Factors {
			if len(f.Components) == 0 {
				continue
			}
			parentID := factors[f.Name]
			var existing int64
			if err := tx.Model(&models.EmissionFactorComponent{}).
				Where("emission_factor_id = ?", parentID).
				Count(&existing).Error; err != nil {
				return err
			}
			if existing > 0 {
				continue
			}
			for _, c := range f.Components {
				componentID, ok := factors[c.Factor]
				if !ok {
					return fmt.Errorf("factor %s: unknown component factor %q", f.Name, c.Factor)
				}
				component := models.EmissionFactorComponent{
					EmissionFactorID:      parentID,
					ComponentFactorID:     componentID,
					ComponentName:         c.Name,
					ApplicationPercentage: c.ApplicationPercentage,
				}
				if err := tx.Create(&component).Error; err != nil {
					return fmt.Errorf("factor %s component %s: %w", f.Name, c.Name, err)
				}
			}
		}

		return nil
	})
	if err != nil {
		return stats, err
	}

	log.Debug().
		Int("units", stats.Units).
		Int("gases", stats.Gases).
		Int("factors", stats.Factors).
		Msg("reference data seeded")
	return stats, nil
}
