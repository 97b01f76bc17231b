package models

import "time"

type Company struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Industry    string    `gorm:"size:255" json:"industry,omitempty"`
	Size        string    `gorm:"size:10;default:SMALL" json:"size"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

type Location struct {
	ID        uint64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string   `gorm:"size:255;not null" json:"name"`
	Address   string   `gorm:"type:text" json:"address,omitempty"`
	Country   string   `gorm:"size:255" json:"country,omitempty"`
	ZipCode   string   `gorm:"size:255" json:"zip_code,omitempty"`
	CompanyID uint64   `gorm:"not null;index" json:"company_id"`
	Company   *Company `json:"company,omitempty"`
}

// EmissionsSource is a concrete emitter at a location (a boiler, a fleet
// vehicle, a meter), classified into a group and bound to the factor used
// to quantify its activities.
type EmissionsSource struct {
	ID                   uint64               `gorm:"primaryKey;autoIncrement" json:"id"`
	Name                 string               `gorm:"size:255;not null" json:"name"`
	LocationID           uint64               `gorm:"not null;index" json:"location_id"`
	Location             *Location            `json:"location,omitempty"`
	GroupID              *uint64              `gorm:"index" json:"group_id"`
	Group                *EmissionSourceGroup `json:"group,omitempty"`
	SourceTypeID         *uint64              `gorm:"index" json:"source_type_id"`
	SourceType           *SourceType          `json:"source_type,omitempty"`
	FactorTypeID         *uint64              `gorm:"index" json:"factor_type_id"`
	FactorType           *FactorType          `json:"factor_type,omitempty"`
	EmissionFactorID     *uint64              `gorm:"index" json:"emission_factor_id"`
	EmissionFactor       *EmissionFactor      `json:"emission_factor,omitempty"`
	EmissionFactorUnitID *uint64              `json:"emission_factor_unit_id"`
	CreatedAt            time.Time            `json:"-"`
	UpdatedAt            time.Time            `json:"-"`
}

func (Company) TableName() string {
	return "companies"
}

func (Location) TableName() string {
	return "locations"
}

func (EmissionsSource) TableName() string {
	return "emission_sources"
}
