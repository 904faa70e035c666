package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/IkhsanBuuddii/moveandcleanweb/internal/domain"
	"github.com/IkhsanBuuddii/moveandcleanweb/internal/store"
	"github.com/IkhsanBuuddii/moveandcleanweb/internal/utils"
)

type Handler struct {
	store     store.Store
	jwtSecret string
	tokenTTL  time.Duration
}

func NewHandler(st store.Store, jwtSecret string, tokenTTL time.Duration) *Handler {
	return &Handler{store: st, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/register.
func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "email and password required"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.JSONError(c, err)
	}

	u, err := h.store.CreateUser(c.Request().Context(), store.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
	})
	if err != nil {
		return utils.JSONError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/login. The response carries the user plus a
// bearer token for the protected surface.
func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}

	u, err := h.store.GetUserByEmail(c.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return utils.JSONError(c, domain.Unauthorized("invalid email or password"))
		}
		return utils.JSONError(c, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)) != nil {
		return utils.JSONError(c, domain.Unauthorized("invalid email or password"))
	}

	token, err := utils.SignToken(h.jwtSecret, u.ID, u.Role, h.tokenTTL)
	if err != nil {
		return utils.JSONError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u, "token": token})
}

// Me handles GET /api/me for an authenticated caller.
func (h *Handler) Me(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return utils.JSONError(c, domain.Unauthorized("unauthorized"))
	}
	u, err := h.store.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		return utils.JSONError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}
