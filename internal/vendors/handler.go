// Package vendors handles vendor onboarding and discovery. Creating a
// profile also upgrades the owning user's role; a user gets at most
// one profile, enforced by the store.
package vendors

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/IkhsanBuuddii/moveandcleanweb/internal/domain"
	"github.com/IkhsanBuuddii/moveandcleanweb/internal/store"
	"github.com/IkhsanBuuddii/moveandcleanweb/internal/utils"
)

type Handler struct {
	store store.Store
}

func NewHandler(st store.Store) *Handler {
	return &Handler{store: st}
}

// Create handles POST /api/vendors.
func (h *Handler) Create(c echo.Context) error {
	var req struct {
		UserID      string  `json:"user_id"`
		VendorName  string  `json:"vendor_name"`
		Description *string `json:"description"`
		Location    *string `json:"location"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	if req.UserID == "" || req.VendorName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "user_id and vendor_name required"})
	}

	v, u, err := h.store.CreateVendor(c.Request().Context(), store.CreateVendorInput{
		UserID:      req.UserID,
		VendorName:  req.VendorName,
		Description: req.Description,
		Location:    req.Location,
	})
	if err != nil {
		return utils.JSONError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"vendor": v, "user": u})
}

// List handles GET /api/vendors.
func (h *Handler) List(c echo.Context) error {
	out, err := h.store.ListVendors(c.Request().Context())
	if err != nil {
		return utils.JSONError(c, err)
	}
	if out == nil {
		out = []domain.Vendor{}
	}
	return c.JSON(http.StatusOK, out)
}

// GetByID handles GET /api/vendors/:id.
func (h *Handler) GetByID(c echo.Context) error {
	v, err := h.store.GetVendor(c.Request().Context(), c.Param("id"))
	if err != nil {
		return utils.JSONError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// ListServices handles GET /api/vendors/:id/services.
func (h *Handler) ListServices(c echo.Context) error {
	out, err := h.store.ListServicesByVendor(c.Request().Context(), c.Param("id"))
	if err != nil {
		return utils.JSONError(c, err)
	}
	if out == nil {
		out = []domain.Service{}
	}
	return c.JSON(http.StatusOK, out)
}
