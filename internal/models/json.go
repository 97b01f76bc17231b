package models

import (
	"database/sql/driver"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// JSON wraps datatypes.JSON so each dialect gets a column type it supports.
type JSON struct {
	datatypes.JSON
}

// NewJSON marshals v into a JSON column value.
func NewJSON(v any) (JSON, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return JSON{}, err
	}
	return JSON{JSON: datatypes.JSON(b)}, nil
}

// Decode unmarshals the stored document into v. An empty column leaves v untouched.
func (j JSON) Decode(v any) error {
	if len(j.JSON) == 0 {
		return nil
	}
	return json.Unmarshal(j.JSON, v)
}

func (j JSON) Value() (driver.Value, error) {
	if len(j.JSON) == 0 {
		return nil, nil
	}
	return j.JSON.Value()
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		j.JSON = nil
		return nil
	}
	return j.JSON.Scan(value)
}

// MarshalJSON emits null for an empty column instead of an empty string.
func (j JSON) MarshalJSON() ([]byte, error) {
	if len(j.JSON) == 0 {
		return []byte("null"), nil
	}
	return j.JSON.MarshalJSON()
}

func (j *JSON) UnmarshalJSON(b []byte) error {
	return j.JSON.UnmarshalJSON(b)
}

// GormDBDataType picks the column type per driver; sqlserver has no json type.
func (JSON) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "mysql", "sqlite":
		return "JSON"
	case "postgres":
		return "JSONB"
	case "sqlserver", "mssql":
		return "NVARCHAR(MAX)"
	}
	return "TEXT"
}
