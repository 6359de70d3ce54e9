package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/farmcom/farmcom/internal/automate"
	"github.com/farmcom/farmcom/internal/models"
	"github.com/farmcom/farmcom/internal/mykafka"
	"github.com/farmcom/farmcom/internal/service"
)

type OrderHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	Automate *automate.Client
}

func (h *OrderHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "order_events", fmt.Sprint(event["orderID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

// CreateOrder persists the checkout snapshot as a single order. Prices,
// names and the total come from the submitted cart as-is; the catalog is
// not consulted again at this point.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	var req struct {
		CustomerName    string                 `json:"customerName"`
		CustomerEmail   string                 `json:"customerEmail"`
		Products        []models.OrderItem     `json:"products"`
		TotalAmount     float64                `json:"totalAmount"`
		ShippingDetails models.ShippingDetails `json:"shippingDetails"`
		PaymentMethod   string                 `json:"paymentMethod"`
	}

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if len(req.Products) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no items in cart")
	}

	items := make([]models.OrderItem, 0, len(req.Products))
	for _, it := range req.Products {
		if it.ProductID == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "productId required")
		}
		if it.Quantity == 0 {
			it.Quantity = 1
		}
		items = append(items, models.OrderItem{
			ProductID: it.ProductID,
			SellerID:  it.SellerID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "COD"
	}

	order := models.Order{
		CustomerID:      service.UserID(c),
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		Items:           items,
		TotalAmount:     req.TotalAmount,
		ShippingDetails: req.ShippingDetails,
		PaymentMethod:   paymentMethod,
		Status:          "Pending",
		CreatedAt:       time.Now(),
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		return nil
	})
	if txErr != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, txErr.Error())
	}

	h.publish(c, map[string]any{
		"type":    "order_created",
		"orderID": order.ID,
		"userID":  order.CustomerID,
		"total":   order.TotalAmount,
	})

	h.Automate.NotifyOrderEvent(map[string]any{
		"type":            "order",
		"orderId":         fmt.Sprint(order.ID),
		"customerName":    order.CustomerName,
		"customerEmail":   order.CustomerEmail,
		"totalAmount":     order.TotalAmount,
		"paymentMethod":   order.PaymentMethod,
		"summary":         orderSummary(order.Items),
		"shippingAddress": shippingAddress(order.ShippingDetails),
	})

	return c.JSON(http.StatusCreated, order)
}

func orderSummary(items []models.OrderItem) string {
	lines := make([]string, 0, len(items)+2)
	var totalItems uint
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("%d x %s - %.2f each (%.2f)",
			it.Quantity, it.Name, it.Price, float64(it.Quantity)*it.Price))
		totalItems += it.Quantity
	}
	lines = append(lines, "", fmt.Sprintf("Total items: %d", totalItems))
	return strings.Join(lines, "\n")
}

func shippingAddress(s models.ShippingDetails) string {
	return fmt.Sprintf("%s, %s, %s - %s", s.Address, s.City, s.State, s.Pincode)
}

// GetOrders returns the caller's own orders, newest first.
func (h *OrderHandler) GetOrders(c echo.Context) error {
	userID := service.UserID(c)

	var orders []models.Order
	if err := h.DB.Preload("Items").
		Where("customer_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, orders)
}

// GetSellerOrders returns orders containing at least one line item owned by
// the calling seller.
func (h *OrderHandler) GetSellerOrders(c echo.Context) error {
	sellerID := service.UserID(c)

	var orderIDs []uint
	if err := h.DB.Model(&models.OrderItem{}).
		Where("seller_id = ?", sellerID).
		Distinct("order_id").
		Pluck("order_id", &orderIDs).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	orders := []models.Order{}
	if len(orderIDs) > 0 {
		if err := h.DB.Preload("Items").
			Where("id IN ?", orderIDs).
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) MarkDelivered(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.DB.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	now := time.Now()
	order.IsDelivered = true
	order.DeliveredAt = &now
	order.Status = "Delivered"
	if err := h.DB.Save(&order).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":    "order_delivered",
		"orderID": order.ID,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "order marked as delivered"})
}

func (h *OrderHandler) RateOrder(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Value   *int   `json:"value"`
		Comment string `json:"comment"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Value == nil || *req.Value < 1 || *req.Value > 5 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid rating")
	}

	var order models.Order
	if err := h.DB.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	order.Rating = &models.Rating{Value: *req.Value, Comment: req.Comment}
	if err := h.DB.Save(&order).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":    "order_rated",
		"orderID": order.ID,
		"value":   *req.Value,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "order rated"})
}
