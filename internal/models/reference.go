package models

import "time"

// Measure types shared by units and emission factors.
const (
	MeasureTypeUnknown  = ""
	MeasureTypeArea     = "AREA"
	MeasureTypeLength   = "LENGTH"
	MeasureTypeAngle    = "ANGLE"
	MeasureTypeTime     = "TIME"
	MeasureTypeVelocity = "VELOCITY"
	MeasureTypeVolume   = "VOLUME"
	MeasureTypeScale    = "SCALE"
	MeasureTypeWeight   = "WEIGHT"
	MeasureTypeEnergy   = "ENERGY"
)

// UnitOfMeasure converts to its standard unit by
// standard = (value + OffsetToStandardUnit) * ScaleToStandardUnit.
// A nil or zero scale means the unit has no linear conversion.
type UnitOfMeasure struct {
	ID                   uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name                 string    `gorm:"size:256" json:"name"`
	Slug                 string    `gorm:"size:32;index" json:"slug"`
	Symbol               string    `gorm:"size:16;not null" json:"symbol"`
	MeasureType          string    `gorm:"size:18" json:"measure_type"`
	NameStandardUnit     string    `gorm:"size:16" json:"name_standard_unit"`
	ScaleToStandardUnit  *float64  `json:"scale_to_standard_unit"`
	OffsetToStandardUnit *float64  `json:"offset_to_standard_unit"`
	Formula              string    `gorm:"size:32" json:"formula,omitempty"`
	CreatedAt            time.Time `json:"-"`
	UpdatedAt            time.Time `json:"-"`
}

// GreenhouseGas is immutable reference data; KgCO2Equivalence is its GWP.
type GreenhouseGas struct {
	ID               uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name             string    `gorm:"size:255;not null" json:"name"`
	Acronym          string    `gorm:"size:64;not null;uniqueIndex" json:"acronym"`
	KgCO2Equivalence float64   `gorm:"column:kg_co2_equivalence;not null;default:1" json:"kg_co2_equivalence"`
	PcgMin           string    `gorm:"size:255" json:"pcg_min,omitempty"`
	PcgMax           string    `gorm:"size:255" json:"pcg_max,omitempty"`
	LifespanInYears  string    `gorm:"size:255" json:"lifespan_in_years,omitempty"`
	CreatedAt        time.Time `json:"-"`
	UpdatedAt        time.Time `json:"-"`
}

type SourceType struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
}

type FactorType struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
}

func (UnitOfMeasure) TableName() string {
	return "units_of_measure"
}

func (GreenhouseGas) TableName() string {
	return "greenhouse_gases"
}

func (SourceType) TableName() string {
	return "source_types"
}

func (FactorType) TableName() string {
	return "factor_types"
}
