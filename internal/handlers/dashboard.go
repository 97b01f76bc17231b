package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/carbonledger/internal/services"
	"github.com/localnerve/carbonledger/internal/utils"
	"gorm.io/gorm"
)

// DashboardHandler handles the aggregation routes
type DashboardHandler struct {
	DB *gorm.DB
}

// GetDashboard handles GET /api/dashboard
// @Summary Emissions dashboard
// @Description Every emissions summary for a company over the filtered activities
// @Tags Dashboard
// @Produce json
// @Param company_id query int true "Company ID"
// @Param location_id query int false "Location ID"
// @Param scope_id query int false "GHG scope ID"
// @Param category_id query int false "ISO category ID"
// @Param group_id query int false "Emission source group ID"
// @Param source_type_id query int false "Source type ID"
// @Param emission_source_id query int false "Emission source ID"
// @Param factor_type_id query int false "Factor type ID"
// @Param factor_id query int false "Emission factor ID"
// @Param initial_date query string false "First month, YYYY-MM or YYYY-MM-DD"
// @Param end_date query string false "Last month, YYYY-MM or YYYY-MM-DD"
// @Param year query int false "Year"
// @Param month query int false "Month 1-12"
// @Success 200 {object} services.DashboardSummary
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *fiber.Ctx) error {
	filter, err := services.ParseAnalysisFilter(func(key string) string {
		return c.Query(key)
	})
	if err != nil {
		return respondError(c, err, "getDashboard")
	}

	summary, err := services.Compute(c.UserContext(), h.DB, filter)
	if err != nil {
		return respondError(c, err, "getDashboard")
	}

	return utils.SuccessResponse(c, summary, fiber.StatusOK)
}
