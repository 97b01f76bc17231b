// routes.go
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
	"github.com/localnerve/carbonledger/internal/utils"
	"gorm.io/gorm"
)

// Register mounts the API under /api. Reads are public; every ledger
// mutation requires a user session.
func Register(app *fiber.App, db *gorm.DB, validator func(c *fiber.Ctx) middleware.SessionValidator) {
	api := app.Group("/api")
	api.Use(middleware.VersionMiddleware())

	activities := &ActivityHandler{DB: db}
	dashboard := &DashboardHandler{DB: db}
	reference := &ReferenceHandler{DB: db}

	api.Get("/dashboard", dashboard.GetDashboard)

	api.Post("/activities", middleware.AuthUser(validator), activities.CreateActivities)
	api.Get("/activities/:id", activities.GetActivity)
	api.Put("/activities/:id", middleware.AuthUser(validator), activities.UpdateActivity)
	api.Post("/activities/:id/quantify", middleware.AuthUser(validator), activities.QuantifyActivity)
	api.Delete("/activities/:id", middleware.AuthUser(validator), activities.DeleteActivity)
	api.Get("/activities/:id/gases/:gasId", activities.GetGasTotal)

	api.Get("/factors/:id", reference.GetFactor)
	api.Get("/units/convert", reference.ConvertUnit)
}

// NotFound answers any route nothing else matched.
func NotFound(c *fiber.Ctx) error {
	return utils.NotFoundResponse(c, "[404] Resource Not Found")
}
