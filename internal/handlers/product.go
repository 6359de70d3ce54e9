package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/farmcom/farmcom/internal/cms"
	"github.com/farmcom/farmcom/internal/es"
	"github.com/farmcom/farmcom/internal/models"
	"github.com/farmcom/farmcom/internal/mykafka"
	"github.com/farmcom/farmcom/internal/service"
	"github.com/farmcom/farmcom/internal/util"
)

type ProductHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	ES       *elasticsearch.Client
	CMS      *cms.Client
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func (h *ProductHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "product_events", fmt.Sprint(event["productID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, product)
}

// GetProducts lists the catalog, newest first, optionally scoped to one
// seller. With ?source=all the published CMS product entries are appended;
// a CMS outage degrades to store-only results rather than failing the page.
func (h *ProductHandler) GetProducts(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	q := h.DB.Model(&models.Product{})
	if seller := c.QueryParam("seller"); seller != "" {
		sellerID, err := strconv.Atoi(seller)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid seller id")
		}
		q = q.Where("seller_id = ?", sellerID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var items []models.Product
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	}

	if c.QueryParam("source") == "all" && h.CMS != nil {
		cmsProducts, err := h.CMS.Products(c.Request().Context())
		if err != nil {
			c.Logger().Errorf("CMS products error: %v", err)
		} else {
			resp["cms"] = cmsProducts
		}
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Category    string  `json:"category"`
		Price       float64 `json:"price"`
		ImageURL    string  `json:"imageUrl"`
	}

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Price < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}

	prod := models.Product{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		SellerID:    service.UserID(c),
	}

	if err := h.DB.Create(&prod).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if h.ES != nil {
		if err := es.IndexProduct(c.Request().Context(), h.ES, &prod); err != nil {
			c.Logger().Errorf("ES index error: %v", err)
		}
	}

	h.publish(c, map[string]any{
		"type":      "product_created",
		"productID": prod.ID,
		"sellerID":  prod.SellerID,
		"name":      prod.Name,
	})

	return c.JSON(http.StatusCreated, prod)
}

// DeleteProduct is idempotent: deleting an id that is already gone reports
// deleted=false with a 200, not an error.
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var prod models.Product
	if err := h.DB.First(&prod, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusOK, echo.Map{
				"message": "no product found with that id",
				"deleted": false,
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if service.Role(c) == models.RoleSeller && prod.SellerID != service.UserID(c) {
		return echo.NewHTTPError(http.StatusForbidden, "not your product")
	}

	if err := h.DB.Delete(&prod).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if h.ES != nil {
		if err := es.DeleteProduct(c.Request().Context(), h.ES, prod.ID); err != nil {
			c.Logger().Errorf("ES delete error: %v", err)
		}
	}

	h.publish(c, map[string]any{
		"type":      "product_deleted",
		"productID": prod.ID,
		"sellerID":  prod.SellerID,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message": "product deleted",
		"deleted": true,
	})
}
