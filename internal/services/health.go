package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/localnerve/carbonledger/internal/config"
	"github.com/localnerve/carbonledger/internal/models"
	"github.com/localnerve/carbonledger/internal/utils"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status        string            `json:"status"`
	Database      string            `json:"database"`
	ReferenceData string            `json:"reference_data"`
	Authorizer    string            `json:"authorizer"`
	Details       map[string]string `json:"details,omitempty"`
	ErrorMessage  string            `json:"error,omitempty"`
}

func (r *HealthCheckResult) fail(component, detailKey string, err error) {
	r.Status = "unhealthy"
	r.Details[detailKey] = err.Error()
	msg := fmt.Sprintf("%s: %v", component, err)
	if r.ErrorMessage == "" {
		r.ErrorMessage = msg
	} else {
		r.ErrorMessage += "; " + msg
	}
	log.Warn().Err(err).Str("component", component).Msg("health check failed")
}

// HealthCheck pings the database and the Authorizer and reports whether the
// greenhouse gas catalogue has been seeded. An empty catalogue is reported
// but does not make the service unhealthy.
func HealthCheck(ctx context.Context, cfg *config.Config, db *gorm.DB) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}

	sqlDB, err := db.DB()
	if err != nil {
		result.Database = "error"
		result.fail("database connection", "database_error", err)
	} else if err := sqlDB.PingContext(ctx); err != nil {
		result.Database = "unreachable"
		result.fail("database ping", "database_ping_error", err)
	} else {
		result.Database = "ok"
		result.Details["database_type"] = cfg.DBType
		result.Details["database_name"] = cfg.DBDatabase
	}

	if result.Database == "ok" {
		var gases int64
		err := db.WithContext(ctx).
			Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)}).
			Model(&models.GreenhouseGas{}).
			Count(&gases).Error
		switch {
		case err != nil:
			result.ReferenceData = "error"
			result.fail("reference data", "reference_data_error", err)
		case gases == 0:
			result.ReferenceData = "empty"
		default:
			result.ReferenceData = "ok"
			result.Details["greenhouse_gases"] = strconv.FormatInt(gases, 10)
		}
	}

	if err := utils.PingAuthorizer(ctx, cfg.AuthzURL); err != nil {
		result.Authorizer = "unreachable"
		result.fail("authorizer ping", "authorizer_error", err)
	} else {
		result.Authorizer = "ok"
		result.Details["authorizer_url"] = cfg.AuthzURL
	}

	if result.Status == "healthy" {
		log.Debug().Msg("health check passed")
	}

	return result
}
