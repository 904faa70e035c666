package messaging

import (
	"net/http"

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

// Post handles POST /api/orders/:id/messages.
func (h *Handler) Post(c echo.Context) error {
	var req struct {
		SenderID  string `json:"sender_id"`
		Text      string `json:"text"`
		ClientRef string `json:"client_ref"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}

	msg, err := h.svc.Post(c.Request().Context(), PostInput{
		OrderID:   c.Param("id"),
		SenderID:  req.SenderID,
		Text:      req.Text,
		ClientRef: req.ClientRef,
	})
	if err != nil {
		return utils.JSONError(c, err)
	}
	return c.JSON(http.StatusOK, msg)
}

// List handles GET /api/orders/:id/messages.
func (h *Handler) List(c echo.Context) error {
	msgs, err := h.svc.List(c.Request().Context(), c.Param("id"))
	if err != nil {
		return utils.JSONError(c, err)
	}
	if msgs == nil {
		msgs = []domain.OrderMessage{}
	}
	return c.JSON(http.StatusOK, msgs)
}
