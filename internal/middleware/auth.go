// auth.go
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

package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/carbonledger/internal/config"
	"github.com/localnerve/carbonledger/internal/services"
	"github.com/localnerve/carbonledger/internal/types"
)

const sessionKey = "session"

// SessionValidator checks a session cookie for any of the given roles.
type SessionValidator func(cookie string, roles []string) (*services.Session, error)

// AuthorizerValidator initializes the Authorizer client on the first request
// it sees and validates sessions through it.
func AuthorizerValidator(cfg *config.Config) func(c *fiber.Ctx) SessionValidator {
	return func(c *fiber.Ctx) SessionValidator {
		return func(cookie string, roles []string) (*services.Session, error) {
			if err := services.InitAuthorizer(c.UserContext(), cfg, c.Protocol(), c.Hostname()); err != nil {
				return nil, err
			}
			return services.ValidateSession(cookie, roles)
		}
	}
}

// AuthAdmin validates that the request has admin role authorization
func AuthAdmin(validator func(c *fiber.Ctx) SessionValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return authorize(c, validator(c), []string{"admin"}, "authorization.admin")
	}
}

// AuthUser validates that the request has user role authorization
func AuthUser(validator func(c *fiber.Ctx) SessionValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return authorize(c, validator(c), []string{"user"}, "authorization.user")
	}
}

func authorize(c *fiber.Ctx, validate SessionValidator, roles []string, errorType string) error {
	cookie := c.Cookies("cookie_session")
	if cookie == "" {
		return &types.CustomError{
			Code:    fiber.StatusForbidden,
			Message: "Authorizer cookie \"cookie_session\" not found",
			Type:    errorType,
		}
	}

	session, err := validate(cookie, roles)
	if err != nil {
		return &types.CustomError{
			Code:    fiber.StatusForbidden,
			Message: fmt.Sprintf("Invalid session: %v", err),
			Type:    errorType,
		}
	}

	c.Locals(sessionKey, session)
	return c.Next()
}

// UserID is the authenticated caller's id, or "" on unauthenticated routes.
func UserID(c *fiber.Ctx) string {
	if session, ok := c.Locals(sessionKey).(*services.Session); ok {
		return session.UserID
	}
	return ""
}
