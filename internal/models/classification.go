package models

// GHGScope -> ISOCategory -> EmissionSourceGroup is the reporting hierarchy
// emission sources are bucketed into.
type GHGScope struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Code        string `gorm:"size:5" json:"code"`
	Description string `gorm:"type:text" json:"description,omitempty"`
}

type ISOCategory struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Code        string    `gorm:"size:5" json:"code"`
	ScopeID     uint64    `gorm:"not null;index" json:"scope_id"`
	Scope       *GHGScope `json:"scope,omitempty"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
}

// FullCode combines the scope and category codes, e.g. "1 - 1.1".
func (c ISOCategory) FullCode() string {
	if c.Scope == nil {
		return c.Code
	}
	return c.Scope.Code + " - " + c.Code
}

type EmissionSourceGroup struct {
	ID          uint64       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string       `gorm:"size:255;not null" json:"name"`
	Description string       `gorm:"type:text" json:"description,omitempty"`
	CategoryID  uint64       `gorm:"not null;index" json:"category_id"`
	Category    *ISOCategory `json:"category,omitempty"`
}

func (GHGScope) TableName() string {
	return "ghg_scopes"
}

func (ISOCategory) TableName() string {
	return "iso_categories"
}

func (EmissionSourceGroup) TableName() string {
	return "emission_source_groups"
}
