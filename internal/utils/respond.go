package utils

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/IkhsanBuuddii/moveandcleanweb/internal/domain"
)

// JSONError maps a domain error onto the API's `{message}` shape.
// Conflicts surface as 400, matching the observed surface of the
// endpoints (duplicate email, duplicate vendor profile).
func JSONError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrConflict):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("internal error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
	}
}
