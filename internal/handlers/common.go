// common.go
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
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/carbonledger/internal/emissions"
	"github.com/localnerve/carbonledger/internal/types"
	"github.com/localnerve/carbonledger/internal/utils"
	"github.com/rs/zerolog/log"
)

// ErrorHandler is the fiber error handler. It renders errors returned by
// middleware and routing in the same envelope the handlers use.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var custom *types.CustomError
	if errors.As(err, &custom) {
		return utils.ErrorResponse(c, custom.Message, custom.Code, custom.Type)
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return utils.ErrorResponse(c, fiberErr.Message, fiberErr.Code, "http")
	}
	return respondError(c, err, "unknown")
}

// respondError maps service errors onto status codes: validation 400,
// not found 404, unusable reference data 422, anything else 500.
func respondError(c *fiber.Ctx, err error, operation string) error {
	var validationErr *types.ValidationError
	var notFoundErr *types.NotFoundError
	var configErr *types.ConfigurationError

	switch {
	case errors.As(err, &validationErr):
		return utils.ValidationErrorResponse(c, validationErr.Field, validationErr.Error())
	case errors.As(err, &notFoundErr):
		return utils.NotFoundResponse(c, notFoundErr.Error())
	case errors.As(err, &configErr):
		return utils.ErrorResponse(c, configErr.Error(), fiber.StatusUnprocessableEntity, "configuration")
	case errors.Is(err, emissions.ErrIncompatibleUnits),
		errors.Is(err, emissions.ErrNoLinearConversion),
		errors.Is(err, emissions.ErrMissingUnit):
		return utils.ValidationErrorResponse(c, "unit", err.Error())
	}

	log.Error().Err(err).Str("operation", operation).Str("url", c.OriginalURL()).Msg("request failed")
	return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, operation)
}

// idParam reads a positive integer route parameter.
func idParam(c *fiber.Ctx, name string) (uint64, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, &types.ValidationError{
			Field:   name,
			Message: fmt.Sprintf("expected a positive integer, got %q", raw),
			Err:     err,
		}
	}
	return id, nil
}
