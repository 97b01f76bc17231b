// calculator.go
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

package emissions

import (
	"fmt"

	"github.com/localnerve/carbonledger/internal/models"
	"github.com/localnerve/carbonledger/internal/types"
)

// GasResult is the emission of one gas by one component.
// Value is the coefficient, CO2e the emitted gas quantity and GWP that
// quantity weighted by the gas's CO2 equivalence.
type GasResult struct {
	GasID       uint64  `json:"gas_id"`
	GasName     string  `json:"gas_name"`
	GasAcronym  string  `json:"gas_acronym"`
	Value       float64 `json:"value"`
	CO2e        float64 `json:"co2e"`
	Uncertainty float64 `json:"uncertainty"`
	GWP         float64 `json:"gwp"`
}

// ComponentResult is the output of one component evaluation. CO2e is the
// sum of GWP over Results.
type ComponentResult struct {
	Component string      `json:"component"`
	FactorID  uint64      `json:"factor_id"`
	Results   []GasResult `json:"results"`
	CO2e      float64     `json:"co2e"`
}

// CalculateComponent evaluates the gas coefficients of factor for consumption.
// Coefficients equal to zero are skipped. The function has no side effects.
func CalculateComponent(name string, factor *models.EmissionFactor, consumption, applicationPercentage float64) ComponentResult {
	result := ComponentResult{
		Component: name,
		FactorID:  factor.ID,
		Results:   make([]GasResult, 0, len(factor.GasEmissions)),
	}

	for _, coefficient := range factor.GasEmissions {
		if coefficient.Value == 0 || coefficient.GreenhouseGas == nil {
			continue
		}
		gas := coefficient.GreenhouseGas
		co2e := consumption * coefficient.Value * applicationPercentage
		gwp := gas.KgCO2Equivalence * co2e

		result.CO2e += gwp
		result.Results = append(result.Results, GasResult{
			GasID:       gas.ID,
			GasName:     gas.Name,
			GasAcronym:  gas.Acronym,
			Value:       coefficient.Value,
			CO2e:        co2e,
			Uncertainty: coefficient.PercentageUncertainty,
			GWP:         gwp,
		})
	}

	return result
}

// ExpandFactor evaluates the main factor followed by each of its components
// in order. Every component multiplies consumption by its own application
// percentage.
func ExpandFactor(factor *models.EmissionFactor, consumption float64) []ComponentResult {
	results := make([]ComponentResult, 0, len(factor.Components)+1)

	mainName := factor.MainComponentName
	if mainName == "" {
		mainName = factor.Name
	}
	results = append(results, CalculateComponent(mainName, factor, consumption, factor.ApplicationPercentage))

	for _, component := range factor.Components {
		if component.ComponentFactor == nil {
			continue
		}
		results = append(results, CalculateComponent(
			component.ComponentName,
			component.ComponentFactor,
			consumption,
			component.ApplicationPercentage,
		))
	}

	return results
}

// TotalCO2e sums the CO2e of every component.
func TotalCO2e(results []ComponentResult) float64 {
	var total float64
	for _, r := range results {
		total += r.CO2e
	}
	return total
}

// ValidateFactor checks that factor and each of its component factors can be
// evaluated: a unit, at least one loaded gas coefficient and application
// percentages within [0,1].
func ValidateFactor(factor *models.EmissionFactor) error {
	if factor == nil {
		return &types.ConfigurationError{Entity: "emission factor", Reason: "not set"}
	}
	if err := validateOwn(factor, factor.ApplicationPercentage); err != nil {
		return err
	}

	for _, component := range factor.Components {
		if component.ComponentFactor == nil {
			return &types.ConfigurationError{
				Entity: "emission factor",
				ID:     factor.ID,
				Reason: fmt.Sprintf("component %q has no factor", component.ComponentName),
			}
		}
		if err := validateOwn(component.ComponentFactor, component.ApplicationPercentage); err != nil {
			return err
		}
	}

	return nil
}

func validateOwn(factor *models.EmissionFactor, applicationPercentage float64) error {
	if factor.UnitID == nil && factor.Unit == nil {
		return &types.ConfigurationError{Entity: "emission factor", ID: factor.ID, Reason: "no unit"}
	}
	if len(factor.GasEmissions) == 0 {
		return &types.ConfigurationError{Entity: "emission factor", ID: factor.ID, Reason: "no gas coefficients"}
	}
	for _, coefficient := range factor.GasEmissions {
		if coefficient.GreenhouseGas == nil {
			return &types.ConfigurationError{
				Entity: "emission factor",
				ID:     factor.ID,
				Reason: fmt.Sprintf("gas %d not loaded", coefficient.GreenhouseGasID),
			}
		}
	}
	if applicationPercentage < 0 || applicationPercentage > 1 {
		return &types.ConfigurationError{
			Entity: "emission factor",
			ID:     factor.ID,
			Reason: fmt.Sprintf("application percentage %g outside [0,1]", applicationPercentage),
		}
	}
	return nil
}
