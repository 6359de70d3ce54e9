package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/farmcom/farmcom/internal/cms"
)

type ContentHandler struct {
	CMS *cms.Client
}

// pages maps the URL slug to the CMS content type holding that page's copy
// and layout configuration.
var pages = map[string]string{
	"farmcom": cms.PageContentType,
	"home":    "home_page",
}

func (h *ContentHandler) GetPage(c echo.Context) error {
	contentType, ok := pages[c.Param("page")]
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown page")
	}

	entry, err := h.CMS.PageEntry(c.Request().Context(), contentType)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if entry == nil {
		return echo.NewHTTPError(http.StatusNotFound, "page entry not published")
	}

	return c.JSON(http.StatusOK, entry)
}
