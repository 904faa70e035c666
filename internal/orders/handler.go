package orders

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/IkhsanBuuddii/moveandcleanweb/internal/domain"
	"github.com/IkhsanBuuddii/moveandcleanweb/internal/utils"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Create handles POST /api/orders.
func (h *Handler) Create(c echo.Context) error {
	var req struct {
		UserID      string     `json:"user_id"`
		VendorID    string     `json:"vendor_id"`
		ServiceID   string     `json:"service_id"`
		Total       float64    `json:"total"`
		ScheduledAt *time.Time `json:"scheduled_at"`
		Notes       *string    `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}

	o, err := h.svc.Create(c.Request().Context(), CreateInput{
		UserID:      req.UserID,
		VendorID:    req.VendorID,
		ServiceID:   req.ServiceID,
		Total:       req.Total,
		ScheduledAt: req.ScheduledAt,
		Notes:       req.Notes,
	})
	if err != nil {
		return utils.JSONError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "order": o})
}

// GetByID handles GET /api/orders/order/:id.
func (h *Handler) GetByID(c echo.Context) error {
	o, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return utils.JSONError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// UpdateStatus handles PUT /api/orders/:id.
func (h *Handler) UpdateStatus(c echo.Context) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}

	o, err := h.svc.SetStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return utils.JSONError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// ListByUser handles GET /api/orders/:id, where :id is the buyer's
// user id.
func (h *Handler) ListByUser(c echo.Context) error {
	out, err := h.svc.ListByUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return utils.JSONError(c, err)
	}
	if out == nil {
		out = []domain.Order{}
	}
	return c.JSON(http.StatusOK, out)
}

// ListByVendor handles GET /api/vendors/:id/orders.
func (h *Handler) ListByVendor(c echo.Context) error {
	out, err := h.svc.ListByVendor(c.Request().Context(), c.Param("id"))
	if err != nil {
		return utils.JSONError(c, err)
	}
	if out == nil {
		out = []domain.Order{}
	}
	return c.JSON(http.StatusOK, out)
}
