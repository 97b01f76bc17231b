// activities.go
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

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/carbonledger/internal/middleware"
	"github.com/localnerve/carbonledger/internal/models"
	"github.com/localnerve/carbonledger/internal/services"
	"github.com/localnerve/carbonledger/internal/types"
	"github.com/localnerve/carbonledger/internal/utils"
	"gorm.io/gorm"
)

// ActivityHandler handles the activity ledger routes
type ActivityHandler struct {
	DB *gorm.DB
}

// GasTotalResponse is one gas total of an activity. Value is a decimal
// string rounded to 7 places.
type GasTotalResponse struct {
	ActivityID uint64 `json:"activity_id"`
	GasID      uint64 `json:"gas_id"`
	Value      string `json:"value"`
}

// CreateActivities handles POST /api/activities
// @Summary Record activities
// @Description Record one activity (object body) or a batch (array body) and quantify each. A batch is atomic.
// @Tags Activities
// @Accept json
// @Produce json
// @Param activities body services.ActivityInput true "Activity or array of activities"
// @Success 201 {object} models.Activity "The activity, or an array for a batch"
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 422 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /activities [post]
func (h *ActivityHandler) CreateActivities(c *fiber.Ctx) error {
	var body types.FlexList[services.ActivityInput]
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation")
	}
	if body.Len() == 0 {
		return utils.ValidationErrorResponse(c, "", "at least one activity is required")
	}

	activities, err := services.CreateActivities(c.UserContext(), h.DB, middleware.UserID(c), body.Items)
	if err != nil {
		return respondError(c, err, "createActivities")
	}

	return utils.SuccessResponse(c, types.FlexList[*models.Activity]{
		Items: activities,
		Batch: body.Batch,
	}, fiber.StatusCreated)
}

// GetActivity handles GET /api/activities/:id
// @Summary Get an activity
// @Description Get an activity with its per-factor, per-gas and per-component breakdown
// @Tags Activities
// @Produce json
// @Param id path int true "Activity ID"
// @Success 200 {object} models.Activity
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /activities/{id} [get]
func (h *ActivityHandler) GetActivity(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err, "getActivity")
	}

	activity, err := services.GetActivity(c.UserContext(), h.DB, id)
	if err != nil {
		return respondError(c, err, "getActivity")
	}

	return utils.SuccessResponse(c, activity, fiber.StatusOK)
}

// UpdateActivity handles PUT /api/activities/:id
// @Summary Update an activity
// @Description Replace an activity's input fields and re-quantify it
// @Tags Activities
// @Accept json
// @Produce json
// @Param id path int true "Activity ID"
// @Param activity body services.ActivityInput true "Activity"
// @Success 200 {object} models.Activity
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 422 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /activities/{id} [put]
func (h *ActivityHandler) UpdateActivity(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err, "updateActivity")
	}

	var in services.ActivityInput
	if err := c.BodyParser(&in); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation")
	}

	activity, err := services.UpdateActivity(c.UserContext(), h.DB, id, middleware.UserID(c), in)
	if err != nil {
		return respondError(c, err, "updateActivity")
	}

	return utils.SuccessResponse(c, activity, fiber.StatusOK)
}

// QuantifyActivity handles POST /api/activities/:id/quantify
// @Summary Re-quantify an activity
// @Description Recompute an activity's breakdown from the current emission factor
// @Tags Activities
// @Produce json
// @Param id path int true "Activity ID"
// @Success 200 {object} models.Activity
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 422 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /activities/{id}/quantify [post]
func (h *ActivityHandler) QuantifyActivity(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err, "quantifyActivity")
	}

	activity, err := services.RequantifyActivity(c.UserContext(), h.DB, id, middleware.UserID(c))
	if err != nil {
		return respondError(c, err, "quantifyActivity")
	}

	return utils.SuccessResponse(c, activity, fiber.StatusOK)
}

// DeleteActivity handles DELETE /api/activities/:id
// @Summary Delete an activity
// @Description Delete an activity and its breakdown
// @Tags Activities
// @Produce json
// @Param id path int true "Activity ID"
// @Success 200 {object} utils.DeleteResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /activities/{id} [delete]
func (h *ActivityHandler) DeleteActivity(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err, "deleteActivity")
	}

	if err := services.DeleteActivity(c.UserContext(), h.DB, id); err != nil {
		return respondError(c, err, "deleteActivity")
	}

	return utils.DeleteSuccessResponse(c, 1)
}

// GetGasTotal handles GET /api/activities/:id/gases/:gasId
// @Summary Get one gas total of an activity
// @Tags Activities
// @Produce json
// @Param id path int true "Activity ID"
// @Param gasId path int true "Greenhouse gas ID"
// @Success 200 {object} GasTotalResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /activities/{id}/gases/{gasId} [get]
func (h *ActivityHandler) GetGasTotal(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err, "getGasTotal")
	}
	gasID, err := idParam(c, "gasId")
	if err != nil {
		return respondError(c, err, "getGasTotal")
	}

	total, err := services.GasTotalValue(c.UserContext(), h.DB, id, gasID)
	if err != nil {
		return respondError(c, err, "getGasTotal")
	}

	return utils.SuccessResponse(c, GasTotalResponse{
		ActivityID: id,
		GasID:      gasID,
		Value:      total.StringFixed(7),
	}, fiber.StatusOK)
}
