package handlers

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/carbonledger/internal/emissions"
	"github.com/localnerve/carbonledger/internal/services"
	"github.com/localnerve/carbonledger/internal/types"
	"github.com/localnerve/carbonledger/internal/utils"
	"gorm.io/gorm"
)

// ReferenceHandler serves read-only reference data
type ReferenceHandler struct {
	DB *gorm.DB
}

// ConversionResponse is the result of a unit conversion
type ConversionResponse struct {
	Value     float64 `json:"value"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Converted float64 `json:"converted"`
}

// GetFactor handles GET /api/factors/:id
// @Summary Get an emission factor
// @Description Get a factor with its unit, gas coefficients and component factors
// @Tags Reference
// @Produce json
// @Param id path int true "Emission factor ID"
// @Success 200 {object} models.EmissionFactor
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /factors/{id} [get]
func (h *ReferenceHandler) GetFactor(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err, "getFactor")
	}

	factor, err := services.LoadEmissionFactor(c.UserContext(), h.DB, id)
	if err != nil {
		return respondError(c, err, "getFactor")
	}

	return utils.SuccessResponse(c, factor, fiber.StatusOK)
}

// ConvertUnit handles GET /api/units/convert
// @Summary Convert a quantity between units
// @Tags Reference
// @Produce json
// @Param value query number true "Quantity"
// @Param from query int true "Source unit ID"
// @Param to query int true "Target unit ID"
// @Success 200 {object} ConversionResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /units/convert [get]
func (h *ReferenceHandler) ConvertUnit(c *fiber.Ctx) error {
	raw := c.Query("value")
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return respondError(c, &types.ValidationError{
			Field:   "value",
			Message: fmt.Sprintf("expected a number, got %q", raw),
			Err:     err,
		}, "convertUnit")
	}

	fromID, err := queryID(c, "from")
	if err != nil {
		return respondError(c, err, "convertUnit")
	}
	toID, err := queryID(c, "to")
	if err != nil {
		return respondError(c, err, "convertUnit")
	}

	ctx := c.UserContext()
	from, err := services.LoadUnit(ctx, h.DB, fromID)
	if err != nil {
		return respondError(c, err, "convertUnit")
	}
	to, err := services.LoadUnit(ctx, h.DB, toID)
	if err != nil {
		return respondError(c, err, "convertUnit")
	}

	converted, err := emissions.ConvertUnit(value, from, to)
	if err != nil {
		return respondError(c, err, "convertUnit")
	}

	return utils.SuccessResponse(c, ConversionResponse{
		Value:     value,
		From:      from.Symbol,
		To:        to.Symbol,
		Converted: converted,
	}, fiber.StatusOK)
}

func queryID(c *fiber.Ctx, key string) (uint64, error) {
	raw := c.Query(key)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, &types.ValidationError{
			Field:   key,
			Message: fmt.Sprintf("expected a positive integer, got %q", raw),
			Err:     err,
		}
	}
	return id, nil
}
