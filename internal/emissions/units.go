package emissions

import (
	"fmt"

	"github.com/localnerve/carbonledger/internal/models"
)

func scaleOf(u *models.UnitOfMeasure) (float64, bool) {
	if u.ScaleToStandardUnit == nil || *u.ScaleToStandardUnit == 0 {
		return 0, false
	}
	return *u.ScaleToStandardUnit, true
}

func offsetOf(u *models.UnitOfMeasure) float64 {
	if u.OffsetToStandardUnit == nil {
		return 0
	}
	return *u.OffsetToStandardUnit
}

// ToStandard converts value to the unit's standard unit.
func ToStandard(u *models.UnitOfMeasure, value float64) (float64, error) {
	if u == nil {
		return 0, ErrMissingUnit
	}
	scale, ok := scaleOf(u)
	if !ok {
		return 0, fmt.Errorf("%s: %w", u.Symbol, ErrNoLinearConversion)
	}
	return (value + offsetOf(u)) * scale, nil
}

// FromStandard converts a standard-unit value back into u.
func FromStandard(u *models.UnitOfMeasure, standard float64) (float64, error) {
	if u == nil {
		return 0, ErrMissingUnit
	}
	scale, ok := scaleOf(u)
	if !ok {
		return 0, fmt.Errorf("%s: %w", u.Symbol, ErrNoLinearConversion)
	}
	return standard/scale - offsetOf(u), nil
}

// Compatible reports whether values can be converted between from and to.
func Compatible(from, to *models.UnitOfMeasure) bool {
	if from == nil || to == nil {
		return false
	}
	if from.ID != 0 && from.ID == to.ID {
		return true
	}
	if _, ok := scaleOf(from); !ok {
		return false
	}
	if _, ok := scaleOf(to); !ok {
		return false
	}
	return from.MeasureType == to.MeasureType &&
		from.NameStandardUnit != "" &&
		from.NameStandardUnit == to.NameStandardUnit
}

// ConvertUnit converts value expressed in from into to. Both units must
// declare a scale to the same standard unit of the same measure type.
func ConvertUnit(value float64, from, to *models.UnitOfMeasure) (float64, error) {
	if from == nil || to == nil {
		return 0, ErrMissingUnit
	}
	if from.ID != 0 && from.ID == to.ID {
		return value, nil
	}
	if !Compatible(from, to) {
		return 0, fmt.Errorf("%s -> %s: %w", from.Symbol, to.Symbol, ErrIncompatibleUnits)
	}
	standard, err := ToStandard(from, value)
	if err != nil {
		return 0, err
	}
	return FromStandard(to, standard)
}
