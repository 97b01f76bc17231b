package models

import "time"

// EmissionFactor maps one unit of consumption to per-gas emissions. Its
// total is its own coefficients plus the weighted contribution of each
// component; components are not expanded further.
type EmissionFactor struct {
	ID                    uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Name                  string         `gorm:"size:255;not null" json:"name"`
	Description           string         `gorm:"size:255" json:"description"`
	Observations          string         `gorm:"type:text" json:"observations,omitempty"`
	MainComponentName     string         `gorm:"size:255" json:"main_component_name"`
	MeasureType           string         `gorm:"size:18" json:"measure_type"`
	ApplicationPercentage float64        `gorm:"not null;default:1" json:"application_percentage"`
	FactorTypeID          *uint64        `gorm:"index" json:"factor_type_id"`
	FactorType            *FactorType    `json:"factor_type,omitempty"`
	SourceTypeID          *uint64        `gorm:"index" json:"source_type_id"`
	SourceType            *SourceType    `json:"source_type,omitempty"`
	UnitID                *uint64        `json:"unit_id"`
	Unit                  *UnitOfMeasure `json:"unit,omitempty"`
	ValidFrom             *time.Time     `gorm:"type:date" json:"valid_from,omitempty"`
	ValidUntil            *time.Time     `gorm:"type:date" json:"valid_until,omitempty"`
	CreatedAt             time.Time      `json:"-"`
	UpdatedAt             time.Time      `json:"-"`

	GasEmissions []GreenhouseGasEmission   `gorm:"foreignKey:EmissionFactorID;constraint:OnDelete:CASCADE" json:"gas_emissions,omitempty"`
	Components   []EmissionFactorComponent `gorm:"foreignKey:EmissionFactorID;constraint:OnDelete:CASCADE" json:"components,omitempty"`
}

// EmissionFactorComponent attaches a sibling factor to a parent factor with
// its own application percentage.
type EmissionFactorComponent struct {
	ID                    uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	EmissionFactorID      uint64          `gorm:"not null;index" json:"emission_factor_id"`
	ComponentFactorID     uint64          `gorm:"not null;index" json:"component_factor_id"`
	ComponentFactor       *EmissionFactor `gorm:"foreignKey:ComponentFactorID" json:"component_factor,omitempty"`
	ApplicationPercentage float64         `gorm:"not null;default:0" json:"application_percentage"`
	ComponentName         string          `gorm:"size:255;not null" json:"component_name"`
}

// GreenhouseGasEmission is the coefficient of one gas for one factor.
type GreenhouseGasEmission struct {
	ID                    uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	EmissionFactorID      uint64         `gorm:"not null;uniqueIndex:idx_factor_gas" json:"emission_factor_id"`
	GreenhouseGasID       uint64         `gorm:"not null;uniqueIndex:idx_factor_gas" json:"greenhouse_gas_id"`
	GreenhouseGas         *GreenhouseGas `json:"greenhouse_gas,omitempty"`
	UnitID                *uint64        `json:"unit_id"`
	Unit                  *UnitOfMeasure `json:"unit,omitempty"`
	Value                 float64        `gorm:"not null;default:0" json:"value"`
	BibliographicSource   string         `gorm:"type:text" json:"bibliographic_source,omitempty"`
	PercentageUncertainty float64        `gorm:"not null;default:0" json:"percentage_uncertainty"`
	MaximumAllowedAmount  float64        `gorm:"not null;default:0" json:"maximum_allowed_amount"`
}

func (EmissionFactor) TableName() string {
	return "emission_factors"
}

func (EmissionFactorComponent) TableName() string {
	return "emission_factor_components"
}

func (GreenhouseGasEmission) TableName() string {
	return "greenhouse_gas_emissions"
}
