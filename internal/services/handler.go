// Package services handles listing CRUD for vendor service offerings.
package services

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

type serviceRequest struct {
	VendorID string  `json:"vendor_id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Duration string  `json:"duration"`
	Category string  `json:"category"`
	ImageURL *string `json:"image_url"`
}

// Create handles POST /api/services.
func (h *Handler) Create(c echo.Context) error {
	var req serviceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	if req.VendorID == "" || req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "vendor_id and title required"})
	}

	s, err := h.store.CreateService(c.Request().Context(), store.CreateServiceInput{
		VendorID: req.VendorID,
		Title:    req.Title,
		Price:    req.Price,
		Duration: req.Duration,
		Category: req.Category,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		return utils.JSONError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

// List handles GET /api/services.
func (h *Handler) List(c echo.Context) error {
	out, err := h.store.ListServices(c.Request().Context())
	if err != nil {
		return utils.JSONError(c, err)
	}
	if out == nil {
		out = []domain.Service{}
	}
	return c.JSON(http.StatusOK, out)
}

// Update handles PUT /api/services/:id.
func (h *Handler) Update(c echo.Context) error {
	var req serviceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}

	s, err := h.store.UpdateService(c.Request().Context(), c.Param("id"), store.UpdateServiceInput{
		Title:    req.Title,
		Price:    req.Price,
		Duration: req.Duration,
		Category: req.Category,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		return utils.JSONError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

// Delete handles DELETE /api/services/:id.
func (h *Handler) Delete(c echo.Context) error {
	if err := h.store.DeleteService(c.Request().Context(), c.Param("id")); err != nil {
		return utils.JSONError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
