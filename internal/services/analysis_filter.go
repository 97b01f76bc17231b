package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/localnerve/carbonledger/internal/types"
	"gorm.io/gorm"
)

// YearMonth is the logical reporting period of an activity.
type YearMonth struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// Key orders periods lexicographically on (year, month).
func (ym YearMonth) Key() int {
	return ym.Year*100 + ym.Month
}

// Previous returns the period before ym; January wraps to December of the
// prior year.
func (ym YearMonth) Previous() YearMonth {
	if ym.Month <= 1 {
		return YearMonth{Year: ym.Year - 1, Month: 12}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month - 1}
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month)
}

// YearMonthOf returns the period t falls in.
func YearMonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: int(t.Month())}
}

// AnalysisFilter selects the activities a dashboard is computed over.
// CompanyID is required; every other field constrains only when set.
type AnalysisFilter struct {
	CompanyID        uint64     `json:"company_id"`
	LocationID       *uint64    `json:"location_id,omitempty"`
	ScopeID          *uint64    `json:"scope_id,omitempty"`
	CategoryID       *uint64    `json:"category_id,omitempty"`
	GroupID          *uint64    `json:"group_id,omitempty"`
	SourceTypeID     *uint64    `json:"source_type_id,omitempty"`
	EmissionSourceID *uint64    `json:"emission_source_id,omitempty"`
	FactorTypeID     *uint64    `json:"factor_type_id,omitempty"`
	FactorID         *uint64    `json:"factor_id,omitempty"`
	InitialDate      *YearMonth `json:"initial_date,omitempty"`
	EndDate          *YearMonth `json:"end_date,omitempty"`
	Year             *int       `json:"year,omitempty"`
	Month            *int       `json:"month,omitempty"`
}

// Validate checks the filter shape without touching the database.
func (f AnalysisFilter) Validate() error {
	if f.CompanyID == 0 {
		return types.NewValidationError("company_id", "is required")
	}
	if f.Month != nil && (*f.Month < 1 || *f.Month > 12) {
		return types.NewValidationError("month", "must be between 1 and 12, got %d", *f.Month)
	}
	if f.InitialDate != nil && f.EndDate != nil && f.InitialDate.Key() > f.EndDate.Key() {
		return types.NewValidationError("initial_date", "%s is after end_date %s", f.InitialDate, f.EndDate)
	}
	return nil
}

// ParseAnalysisFilter builds a filter from named string values, typically
// query-string parameters. Empty values are absent.
func ParseAnalysisFilter(lookup func(key string) string) (AnalysisFilter, error) {
	var f AnalysisFilter

	company, err := parseID(lookup, "company_id")
	if err != nil {
		return f, err
	}
	if company == nil {
		return f, types.NewValidationError("company_id", "is required")
	}
	f.CompanyID = *company

	ids := []struct {
		key  string
		dest **uint64
	}{
		{"location_id", &f.LocationID},
		{"scope_id", &f.ScopeID},
		{"category_id", &f.CategoryID},
		{"group_id", &f.GroupID},
		{"source_type_id", &f.SourceTypeID},
		{"emission_source_id", &f.EmissionSourceID},
		{"factor_type_id", &f.FactorTypeID},
		{"factor_id", &f.FactorID},
	}
	for _, id := range ids {
		if *id.dest, err = parseID(lookup, id.key); err != nil {
			return f, err
		}
	}

	if f.InitialDate, err = parseYearMonth(lookup, "initial_date"); err != nil {
		return f, err
	}
	if f.EndDate, err = parseYearMonth(lookup, "end_date"); err != nil {
		return f, err
	}
	if f.Year, err = parseInt(lookup, "year"); err != nil {
		return f, err
	}
	if f.Month, err = parseInt(lookup, "month"); err != nil {
		return f, err
	}

	return f, f.Validate()
}

func parseID(lookup func(string) string, key string) (*uint64, error) {
	raw := strings.TrimSpace(lookup(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		return nil, &types.ValidationError{Field: key, Message: fmt.Sprintf("expected a positive integer, got %q", raw), Err: err}
	}
	return &v, nil
}

func parseInt(lookup func(string) string, key string) (*int, error) {
	raw := strings.TrimSpace(lookup(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &types.ValidationError{Field: key, Message: fmt.Sprintf("expected an integer, got %q", raw), Err: err}
	}
	return &v, nil
}

// parseYearMonth accepts YYYY-MM-DD or YYYY-MM; the day is ignored.
func parseYearMonth(lookup func(string) string, key string) (*YearMonth, error) {
	raw := strings.TrimSpace(lookup(key))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		var monthErr error
		if t, monthErr = time.Parse("2006-01", raw); monthErr != nil {
			return nil, &types.ValidationError{Field: key, Message: fmt.Sprintf("expected YYYY-MM-DD or YYYY-MM, got %q", raw), Err: err}
		}
	}
	ym := YearMonthOf(t)
	return &ym, nil
}

// filteredActivityIDs selects the ids of the activities matching f. Every
// summary is computed over this one subquery.
func filteredActivityIDs(db *gorm.DB, f AnalysisFilter) *gorm.DB {
	query := db.Table("activities a").
		Select("a.id").
		Joins("JOIN locations l ON l.id = a.location_id").
		Joins("JOIN emission_sources es ON es.id = a.emission_source_id").
		Joins("LEFT JOIN emission_source_groups g ON g.id = es.group_id").
		Joins("LEFT JOIN iso_categories c ON c.id = g.category_id")
	return applyAnalysisFilter(query, f)
}

// applyAnalysisFilter ANDs one predicate per present field onto query, which
// must alias activities a, locations l, emission_sources es,
// emission_source_groups g and iso_categories c.
func applyAnalysisFilter(query *gorm.DB, f AnalysisFilter) *gorm.DB {
	query = query.Where("l.company_id = ?", f.CompanyID)

	if f.LocationID != nil {
		query = query.Where("a.location_id = ?", *f.LocationID)
	}
	if f.ScopeID != nil {
		query = query.Where("c.scope_id = ?", *f.ScopeID)
	}
	if f.CategoryID != nil {
		query = query.Where("g.category_id = ?", *f.CategoryID)
	}
	if f.GroupID != nil {
		query = query.Where("es.group_id = ?", *f.GroupID)
	}
	if f.SourceTypeID != nil {
		query = query.Where("es.source_type_id = ?", *f.SourceTypeID)
	}
	if f.EmissionSourceID != nil {
		query = query.Where("a.emission_source_id = ?", *f.EmissionSourceID)
	}
	if f.FactorTypeID != nil {
		query = query.Where("es.factor_type_id = ?", *f.FactorTypeID)
	}
	if f.FactorID != nil {
		query = query.Where("es.emission_factor_id = ?", *f.FactorID)
	}
	if f.InitialDate != nil {
		query = query.Where("a.year * 100 + a.month >= ?", f.InitialDate.Key())
	}
	if f.EndDate != nil {
		query = query.Where("a.year * 100 + a.month <= ?", f.EndDate.Key())
	}
	if f.Year != nil {
		query = query.Where("a.year = ?", *f.Year)
	}
	if f.Month != nil {
		query = query.Where("a.month = ?", *f.Month)
	}

	return query
}
