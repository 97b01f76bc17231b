// activity.go
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

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Activity is one recorded consumption event and the quantification
// derived from it. The child rows are fully owned and replaced on every
// re-quantification.
type Activity struct {
	ID               uint64           `gorm:"primaryKey;autoIncrement" json:"id"`
	PublicID         string           `gorm:"type:char(36);uniqueIndex" json:"public_id"`
	EmissionSourceID uint64           `gorm:"not null;index" json:"emission_source_id"`
	EmissionSource   *EmissionsSource `json:"emission_source,omitempty"`
	LocationID       uint64           `gorm:"not null;index" json:"location_id"`
	Location         *Location        `json:"location,omitempty"`
	UserID           string           `gorm:"size:64;index" json:"user_id"`
	Name             string           `gorm:"size:255;not null" json:"name"`
	Description      string           `gorm:"type:text" json:"description,omitempty"`
	Consumption      float64          `gorm:"not null;default:0" json:"consumption"`
	Date             time.Time        `gorm:"type:date;not null" json:"date"`
	Month            int              `gorm:"not null;index:idx_activity_period" json:"month"`
	Year             int              `gorm:"not null;index:idx_activity_period" json:"year"`
	UnitID           *uint64          `json:"unit_id"`
	Unit             *UnitOfMeasure   `json:"unit,omitempty"`
	TotalCO2e        float64          `gorm:"column:total_co2e;not null;default:0" json:"total_co2e"`
	Breakdown        JSON             `json:"breakdown"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`

	GasesByFactor   []ActivityGasEmittedByFactor `gorm:"foreignKey:ActivityID;constraint:OnDelete:CASCADE" json:"gases_by_factor,omitempty"`
	Gases           []ActivityGasEmitted         `gorm:"foreignKey:ActivityID;constraint:OnDelete:CASCADE" json:"gases,omitempty"`
	CO2eByComponent []ActivityCO2eByComponent    `gorm:"foreignKey:ActivityID;constraint:OnDelete:CASCADE" json:"co2e_by_component,omitempty"`
}

// BeforeCreate assigns the public id.
func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.PublicID == "" {
		a.PublicID = uuid.NewString()
	}
	return nil
}

// SetDate stamps the date and the logical period it is reported under.
func (a *Activity) SetDate(d time.Time) {
	a.Date = d
	a.Year = d.Year()
	a.Month = int(d.Month())
}

// ActivityGasEmittedByFactor is one (component factor, gas) line of the
// calculator output. Value is the emitted gas quantity, CO2e its GWP-weighted
// equivalent. Position preserves calculator order.
type ActivityGasEmittedByFactor struct {
	ID               uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	ActivityID       uint64         `gorm:"not null;index" json:"activity_id"`
	EmissionFactorID *uint64        `gorm:"index" json:"emission_factor_id"`
	GreenhouseGasID  uint64         `gorm:"not null;index" json:"greenhouse_gas_id"`
	GreenhouseGas    *GreenhouseGas `json:"greenhouse_gas,omitempty"`
	Component        string         `gorm:"size:255" json:"component"`
	Position         int            `gorm:"not null;default:0" json:"position"`
	Value            float64        `gorm:"not null;default:0" json:"value"`
	CO2e             float64        `gorm:"column:co2e;not null;default:0" json:"co2e"`
}

// ActivityGasEmitted totals one gas over every component of an activity.
type ActivityGasEmitted struct {
	ID              uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	ActivityID      uint64         `gorm:"not null;uniqueIndex:idx_activity_gas" json:"activity_id"`
	GreenhouseGasID uint64         `gorm:"not null;uniqueIndex:idx_activity_gas" json:"greenhouse_gas_id"`
	GreenhouseGas   *GreenhouseGas `json:"greenhouse_gas,omitempty"`
	Value           float64        `gorm:"not null;default:0" json:"value"`
	CO2e            float64        `gorm:"column:co2e;not null;default:0" json:"co2e"`
}

// ActivityCO2eByComponent totals CO2e over every gas of one component factor.
type ActivityCO2eByComponent struct {
	ID               uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ActivityID       uint64  `gorm:"not null;index" json:"activity_id"`
	EmissionFactorID *uint64 `gorm:"index" json:"emission_factor_id"`
	Component        string  `gorm:"size:255" json:"component"`
	Position         int     `gorm:"not null;default:0" json:"position"`
	CO2e             float64 `gorm:"column:co2e;not null;default:0" json:"co2e"`
}

func (Activity) TableName() string {
	return "activities"
}

func (ActivityGasEmittedByFactor) TableName() string {
	return "activity_gas_emitted_by_factor"
}

func (ActivityGasEmitted) TableName() string {
	return "activity_gas_emitted"
}

func (ActivityCO2eByComponent) TableName() string {
	return "activity_co2e_by_component"
}

// All lists every model in migration order.
func All() []any {
	return []any{
		&UnitOfMeasure{},
		&GreenhouseGas{},
		&SourceType{},
		&FactorType{},
		&EmissionFactor{},
		&EmissionFactorComponent{},
		&GreenhouseGasEmission{},
		&GHGScope{},
		&ISOCategory{},
		&EmissionSourceGroup{},
		&Company{},
		&Location{},
		&EmissionsSource{},
		&Activity{},
		&ActivityGasEmittedByFactor{},
		&ActivityGasEmitted{},
		&ActivityCO2eByComponent{},
	}
}
