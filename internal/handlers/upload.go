package handlers

import (
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

type UploadHandler struct {
	// PublicDir is the static root; files land in PublicDir/uploads and are
	// served back under /uploads.
	PublicDir string
}

func (h *UploadHandler) UploadImage(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "no image file provided")
	}

	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	defer src.Close()

	uploadDir := filepath.Join(h.PublicDir, "uploads")
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	filename := fmt.Sprintf("%d-%x%s", time.Now().UnixMilli(), rand.Int63(), safeExt(file.Filename))
	dst, err := os.Create(filepath.Join(uploadDir, filename))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{"url": "/uploads/" + filename})
}

// safeExt keeps only a plain extension from the client-supplied name, so
// the stored filename can never escape the upload directory.
func safeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	if ext == "" || strings.ContainsAny(ext, "/\\") {
		return ".png"
	}
	return ext
}
