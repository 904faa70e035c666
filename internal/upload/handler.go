// Package upload stores listing images on local disk and returns a
// URL served from the /uploads static route.
package upload

import (
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/IkhsanBuuddii/moveandcleanweb/internal/utils"
)

type Handler struct {
	dir string
}

func NewHandler(dir string) *Handler {
	return &Handler{dir: dir}
}

// Image handles POST /api/upload with a multipart "image" field.
func (h *Handler) Image(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "image file required"})
	}

	src, err := file.Open()
	if err != nil {
		return utils.JSONError(c, err)
	}
	defer src.Close()

	if err := os.MkdirAll(h.dir, 0o755); err != nil {
		return utils.JSONError(c, err)
	}

	name := uuid.New().String() + filepath.Ext(file.Filename)
	dst, err := os.Create(filepath.Join(h.dir, name))
	if err != nil {
		return utils.JSONError(c, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return utils.JSONError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"url": "/uploads/" + name})
}
