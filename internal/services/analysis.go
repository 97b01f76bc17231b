// analysis.go
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
	"time"

	"github.com/localnerve/carbonledger/internal/models"
	"github.com/localnerve/carbonledger/internal/types"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/hints"
)

// GasEmission is the emitted quantity of one gas and its change against
// the previous month.
type GasEmission struct {
	GasName          string  `json:"gas_name"`
	TotalValue       float64 `json:"total_value"`
	PercentageChange float64 `json:"percentage_change"`
}

// SourceEmission is the CO2e of one emission source.
type SourceEmission struct {
	Source string  `json:"source"`
	Value  float64 `json:"value"`
}

// ScopeEmission is the CO2e of one GHG scope.
type ScopeEmission struct {
	Scope string  `json:"scope"`
	Value float64 `json:"value"`
}

// CategoryEmission is the CO2e of one ISO category.
type CategoryEmission struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

// EmissionTypeEmission groups by source type, i.e. direct or indirect.
type EmissionTypeEmission struct {
	EmissionType string  `json:"emission_type"`
	Value        float64 `json:"value"`
}

// SourceTypeScopeEmission is the CO2e of one source type within a scope.
type SourceTypeScopeEmission struct {
	SourceType string  `json:"source_type"`
	Scope      string  `json:"scope"`
	Value      float64 `json:"value"`
}

// ScopeGasEmission is the emitted quantity of one gas within a scope.
type ScopeGasEmission struct {
	Scope   string  `json:"scope"`
	GasName string  `json:"gas_name"`
	Value   float64 `json:"value"`
}

// ScopeSourceTypeGasEmission is the emitted quantity of one gas per scope and source type.
type ScopeSourceTypeGasEmission struct {
	Scope      string  `json:"scope"`
	SourceType string  `json:"source_type"`
	GasName    string  `json:"gas_name"`
	Value      float64 `json:"value"`
}

// GroupGasEmission is the emitted quantity of one gas within an emission source group.
type GroupGasEmission struct {
	Group   string  `gorm:"column:group_name" json:"group"`
	GasName string  `json:"gas_name"`
	Value   float64 `json:"value"`
}

// MonthEmission is the CO2e recorded in one calendar month.
type MonthEmission struct {
	Year  int     `json:"year"`
	Month int     `json:"month"`
	Value float64 `json:"value"`
}

// ActivityShare is one activity's part of the filtered CO2e total.
type ActivityShare struct {
	ActivityID uint64  `json:"activity_id"`
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

// DashboardSummary holds every summary computed over one filtered activity
// set. CO2e sums come from the by-factor co2e column, gas quantities from
// its value column.
type DashboardSummary struct {
	Filter                           AnalysisFilter               `json:"filter"`
	ReferencePeriod                  YearMonth                    `json:"reference_period"`
	ActivityCount                    int64                        `json:"activity_count"`
	GasEmissions                     []GasEmission                `json:"gas_emissions"`
	EmissionSources                  []SourceEmission             `json:"emission_sources"`
	EmissionsByScope                 []ScopeEmission              `json:"emissions_by_scope"`
	EmissionsByCategory              []CategoryEmission           `json:"emissions_by_category"`
	EmissionsDirectAndIndirect       []EmissionTypeEmission       `json:"emissions_direct_and_indirect"`
	EmissionsBySourceTypeAndScope    []SourceTypeScopeEmission    `json:"emissions_by_source_type_and_scope"`
	GasesEmittedByScope              []ScopeGasEmission           `json:"gases_emitted_by_scope"`
	GasesEmittedByScopeAndSourceType []ScopeSourceTypeGasEmission `json:"gases_emitted_by_scope_and_source_type"`
	GasesEmittedByGroup              []GroupGasEmission           `json:"gases_emitted_by_group"`
	EmissionsByMonth                 []MonthEmission              `json:"emissions_by_month"`
	GEIDistribution                  []ActivityShare              `json:"gei_distribution"`
	TotalEmissions                   float64                      `json:"total_emissions"`
}

// PercentageChange is (current - previous) / previous * 100, and 100 when
// previous is zero.
func PercentageChange(current, previous float64) float64 {
	if previous == 0 {
		return 100
	}
	return (current - previous) / previous * 100
}

// ReferencePeriod is the month percentage changes are reported for: the
// filter's year and month when both are set, else its end date, else the
// month of now.
func ReferencePeriod(f AnalysisFilter, now time.Time) YearMonth {
	if f.Year != nil && f.Month != nil {
		return YearMonth{Year: *f.Year, Month: *f.Month}
	}
	if f.EndDate != nil {
		return *f.EndDate
	}
	return YearMonthOf(now)
}

// Compute builds the dashboard for f as of the current time.
func Compute(ctx context.Context, db *gorm.DB, f AnalysisFilter) (*DashboardSummary, error) {
	return ComputeAt(ctx, db, f, time.Now())
}

// ComputeAt builds the dashboard for f using now as the clock. The filter is
// validated and the company resolved before any summary query runs.
func ComputeAt(ctx context.Context, db *gorm.DB, f AnalysisFilter, now time.Time) (*DashboardSummary, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	var company models.Company
	if err := db.WithContext(ctx).Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)}).
		Select("id").First(&company, f.CompanyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &types.NotFoundError{Entity: "company", ID: f.CompanyID}
		}
		return nil, fmt.Errorf("lookup company %d: %w", f.CompanyID, err)
	}

	summary := &DashboardSummary{
		Filter:          f,
		ReferencePeriod: ReferencePeriod(f, now),
	}
	run := analysisRun{db: db, filter: f}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return filteredActivityIDs(run.session(gctx, "activity_count"), f).Count(&summary.ActivityCount).Error
	})
	g.Go(func() (err error) {
		summary.GasEmissions, err = run.gasEmissions(gctx, summary.ReferencePeriod)
		return err
	})
	g.Go(func() error {
		summary.EmissionSources = []SourceEmission{}
		return run.details(gctx, "emission_sources", f).
			Select("es.name AS source, SUM(d.co2e) AS value").
			Group("es.name").Order("es.name").
			Scan(&summary.EmissionSources).Error
	})
	g.Go(func() error {
		summary.EmissionsByScope = []ScopeEmission{}
		return run.details(gctx, "emissions_by_scope", f).
			Select("COALESCE(s.name, '') AS scope, SUM(d.co2e) AS value").
			Group("s.name").Order("s.name").
			Scan(&summary.EmissionsByScope).Error
	})
	g.Go(func() error {
		summary.EmissionsByCategory = []CategoryEmission{}
		return run.details(gctx, "emissions_by_category", f).
			Select("COALESCE(c.name, '') AS category, SUM(d.co2e) AS value").
			Group("c.name").Order("c.name").
			Scan(&summary.EmissionsByCategory).Error
	})
	g.Go(func() error {
		summary.EmissionsDirectAndIndirect = []EmissionTypeEmission{}
		return run.details(gctx, "emissions_direct_and_indirect", f).
			Select("COALESCE(st.name, '') AS emission_type, SUM(d.co2e) AS value").
			Group("st.name").Order("st.name").
			Scan(&summary.EmissionsDirectAndIndirect).Error
	})
	g.Go(func() error {
		summary.EmissionsBySourceTypeAndScope = []SourceTypeScopeEmission{}
		return run.details(gctx, "emissions_by_source_type_and_scope", f).
			Select("COALESCE(st.name, '') AS source_type, COALESCE(s.name, '') AS scope, SUM(d.co2e) AS value").
			Group("st.name, s.name").Order("st.name, s.name").
			Scan(&summary.EmissionsBySourceTypeAndScope).Error
	})
	g.Go(func() error {
		summary.GasesEmittedByScope = []ScopeGasEmission{}
		return run.details(gctx, "gases_emitted_by_scope", f).
			Select("COALESCE(s.name, '') AS scope, gg.name AS gas_name, SUM(d.value) AS value").
			Group("s.name, gg.name").Order("s.name, gg.name").
			Scan(&summary.GasesEmittedByScope).Error
	})
	g.Go(func() error {
		summary.GasesEmittedByScopeAndSourceType = []ScopeSourceTypeGasEmission{}
		return run.details(gctx, "gases_emitted_by_scope_and_source_type", f).
			Select("COALESCE(s.name, '') AS scope, COALESCE(st.name, '') AS source_type, gg.name AS gas_name, SUM(d.value) AS value").
			Group("s.name, st.name, gg.name").Order("s.name, st.name, gg.name").
			Scan(&summary.GasesEmittedByScopeAndSourceType).Error
	})
	g.Go(func() error {
		summary.GasesEmittedByGroup = []GroupGasEmission{}
		return run.details(gctx, "gases_emitted_by_group", f).
			Select("COALESCE(g.name, '') AS group_name, gg.name AS gas_name, SUM(d.value) AS value").
			Group("g.name, gg.name").Order("g.name, gg.name").
			Scan(&summary.GasesEmittedByGroup).Error
	})
	g.Go(func() error {
		summary.EmissionsByMonth = []MonthEmission{}
		return run.details(gctx, "emissions_by_month", f).
			Select("a.year AS year, a.month AS month, SUM(d.co2e) AS value").
			Group("a.year, a.month").Order("a.year, a.month").
			Scan(&summary.EmissionsByMonth).Error
	})
	g.Go(func() (err error) {
		summary.GEIDistribution, err = run.geiDistribution(gctx)
		return err
	})
	g.Go(func() error {
		return run.details(gctx, "total_emissions", f).
			Select("COALESCE(SUM(d.co2e), 0)").
			Scan(&summary.TotalEmissions).Error
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compute dashboard for company %d: %w", f.CompanyID, err)
	}

	log.Debug().
		Uint64("company_id", f.CompanyID).
		Int64("activities", summary.ActivityCount).
		Float64("total_emissions", summary.TotalEmissions).
		Msg("dashboard computed")
	return summary, nil
}

type analysisRun struct {
	db     *gorm.DB
	filter AnalysisFilter
}

// session tags the statement with a comment naming the summary it serves.
func (r analysisRun) session(ctx context.Context, name string) *gorm.DB {
	return r.db.WithContext(ctx).Clauses(hints.Comment("select", "dashboard:"+name))
}

// details joins by-factor rows with everything a summary groups on,
// restricted to the activities f selects.
func (r analysisRun) details(ctx context.Context, name string, f AnalysisFilter) *gorm.DB {
	return r.session(ctx, name).
		Table("activity_gas_emitted_by_factor d").
		Joins("JOIN activities a ON a.id = d.activity_id").
		Joins("JOIN greenhouse_gases gg ON gg.id = d.greenhouse_gas_id").
		Joins("JOIN emission_sources es ON es.id = a.emission_source_id").
		Joins("LEFT JOIN source_types st ON st.id = es.source_type_id").
		Joins("LEFT JOIN emission_source_groups g ON g.id = es.group_id").
		Joins("LEFT JOIN iso_categories c ON c.id = g.category_id").
		Joins("LEFT JOIN ghg_scopes s ON s.id = c.scope_id").
		Where("d.activity_id IN (?)", filteredActivityIDs(r.db.WithContext(ctx), f))
}

// gasEmissions totals each gas over the filtered set. The month-over-month
// change compares the reference month to the month before it, both taken
// from the filtered set.
func (r analysisRun) gasEmissions(ctx context.Context, period YearMonth) ([]GasEmission, error) {
	gases := []GasEmission{}
	if err := r.details(ctx, "gas_emissions", r.filter).
		Select("gg.name AS gas_name, SUM(d.value) AS total_value").
		Group("gg.name").Order("gg.name").
		Scan(&gases).Error; err != nil {
		return nil, err
	}
	if len(gases) == 0 {
		return gases, nil
	}

	previous := period.Previous()
	var rows []struct {
		GasName string
		Year    int
		Month   int
		Total   float64
	}
	if err := r.details(ctx, "gas_emissions_periods", r.filter).
		Select("gg.name AS gas_name, a.year AS year, a.month AS month, SUM(d.value) AS total").
		Where("((a.year = ? AND a.month = ?) OR (a.year = ? AND a.month = ?))",
			period.Year, period.Month, previous.Year, previous.Month).
		Group("gg.name, a.year, a.month").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	current := map[string]float64{}
	before := map[string]float64{}
	for _, row := range rows {
		if row.Year == period.Year && row.Month == period.Month {
			current[row.GasName] += row.Total
		} else {
			before[row.GasName] += row.Total
		}
	}

	for i := range gases {
		gases[i].PercentageChange = PercentageChange(current[gases[i].GasName], before[gases[i].GasName])
	}
	return gases, nil
}

// geiDistribution expresses every activity's CO2e as a percentage of the
// filtered total.
func (r analysisRun) geiDistribution(ctx context.Context) ([]ActivityShare, error) {
	shares := []ActivityShare{}
	if err := r.details(ctx, "gei_distribution", r.filter).
		Select("a.id AS activity_id, a.name AS name, SUM(d.co2e) AS value").
		Group("a.id, a.name").Order("a.name, a.id").
		Scan(&shares).Error; err != nil {
		return nil, err
	}

	var total float64
	for _, share := range shares {
		total += share.Value
	}
	for i := range shares {
		if total != 0 {
			shares[i].Percentage = shares[i].Value / total * 100
		}
	}
	return shares, nil
}
