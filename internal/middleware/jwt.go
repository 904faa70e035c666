package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/IkhsanBuuddii/moveandcleanweb/internal/utils"
)

// JWT parses the bearer token and puts user_id and role into the
// request context.
func JWT(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, role, err := utils.ParseToken(secret, c.Request().Header.Get("Authorization"))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": err.Error()})
			}
			c.Set("user_id", userID)
			c.Set("role", role)
			return next(c)
		}
	}
}
