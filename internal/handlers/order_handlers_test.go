package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/farmcom/farmcom/internal/models"
)

func checkoutPayload() map[string]any {
	return map[string]any{
		"customerName":  "Ravi",
		"customerEmail": "ravi@example.com",
		"products": []map[string]any{
			{"productId": 1, "sellerId": 2, "name": "Seeds", "price": 100.0, "quantity": 2},
			{"productId": 3, "sellerId": 4, "name": "Manure", "price": 50.0, "quantity": 1},
		},
		"totalAmount": 250.0,
		"shippingDetails": map[string]string{
			"address": "12 Farm Road",
			"city":    "Pune",
			"state":   "MH",
			"pincode": "411001",
		},
		"paymentMethod": "COD",
	}
}

func TestCreateOrder(t *testing.T) {
	db := InitTestDB(t)
	h := newOrderHandler(db)
	e := echo.New()

	buyer := createUser(t, db, "Ravi", "ravi@example.com", "password", models.RoleBuyer)

	rec, c := doJSONRequest(t, e, http.MethodPost, "/api/v1/orders", checkoutPayload())
	asUser(c, buyer.ID, models.RoleBuyer)
	require.NoError(t, h.CreateOrder(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, buyer.ID, resp.CustomerID)
	require.Equal(t, "Pending", resp.Status)
	require.Len(t, resp.Items, 2)
	require.Equal(t, "COD", resp.PaymentMethod)

	// the submitted total is persisted as-is, the server does not recompute
	// it from the line items
	require.Equal(t, 250.0, resp.TotalAmount)

	var stored models.Order
	require.NoError(t, db.Preload("Items").First(&stored, resp.ID).Error)
	require.Equal(t, 250.0, stored.TotalAmount)
	require.Equal(t, uint(2), stored.Items[0].Quantity)
	require.Equal(t, 100.0, stored.Items[0].Price)
}

func TestCreateOrderTotalNotVerified(t *testing.T) {
	db := InitTestDB(t)
	h := newOrderHandler(db)
	e := echo.New()

	buyer := createUser(t, db, "Ravi", "ravi@example.com", "password", models.RoleBuyer)

	// known gap: a caller-supplied total that disagrees with the line items
	// is accepted unchecked
	payload := checkoutPayload()
	payload["totalAmount"] = 1.0

	rec, c := doJSONRequest(t, e, http.MethodPost, "/api/v1/orders", payload)
	asUser(c, buyer.ID, models.RoleBuyer)
	require.NoError(t, h.CreateOrder(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1.0, resp.TotalAmount)
}

func TestCreateOrderEmptyCart(t *testing.T) {
	db := InitTestDB(t)
	h := newOrderHandler(db)
	e := echo.New()

	buyer := createUser(t, db, "Ravi", "ravi@example.com", "password", models.RoleBuyer)

	payload := checkoutPayload()
	payload["products"] = []map[string]any{}

	_, c := doJSONRequest(t, e, http.MethodPost, "/api/v1/orders", payload)
	asUser(c, buyer.ID, models.RoleBuyer)

	err := h.CreateOrder(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusBadRequest, he.Code)
}

func TestGetOrdersBuyerScoped(t *testing.T) {
	db := InitTestDB(t)
	h := newOrderHandler(db)
	e := echo.New()

	buyer := createUser(t, db, "Ravi", "ravi@example.com", "password", models.RoleBuyer)
	other := createUser(t, db, "Gita", "gita@example.com", "password", models.RoleBuyer)

	require.NoError(t, db.Create(&models.Order{CustomerID: buyer.ID, TotalAmount: 10, Status: "Pending"}).Error)
	require.NoError(t, db.Create(&models.Order{CustomerID: other.ID, TotalAmount: 20, Status: "Pending"}).Error)

	rec, c := doJSONRequest(t, e, http.MethodGet, "/api/v1/orders", nil)
	asUser(c, buyer.ID, models.RoleBuyer)
	require.NoError(t, h.GetOrders(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var orders []models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	require.Len(t, orders, 1)
	require.Equal(t, buyer.ID, orders[0].CustomerID)
}

func TestGetSellerOrders(t *testing.T) {
	db := InitTestDB(t)
	h := newOrderHandler(db)
	e := echo.New()

	seller := createUser(t, db, "Sita", "sita@example.com", "password", models.RoleSeller)

	withSeller := models.Order{
		CustomerID:  1,
		TotalAmount: 100,
		Status:      "Pending",
		Items: []models.OrderItem{
			{ProductID: 1, SellerID: seller.ID, Name: "Seeds", Price: 100, Quantity: 1},
		},
	}
	withoutSeller := models.Order{
		CustomerID:  1,
		TotalAmount: 50,
		Status:      "Pending",
		Items: []models.OrderItem{
			{ProductID: 2, SellerID: seller.ID + 10, Name: "Tools", Price: 50, Quantity: 1},
		},
	}
	require.NoError(t, db.Create(&withSeller).Error)
	require.NoError(t, db.Create(&withoutSeller).Error)

	rec, c := doJSONRequest(t, e, http.MethodGet, "/api/v1/orders/seller", nil)
	asUser(c, seller.ID, models.RoleSeller)
	require.NoError(t, h.GetSellerOrders(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var orders []models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	require.Len(t, orders, 1)
	require.Equal(t, withSeller.ID, orders[0].ID)
}

func TestMarkDelivered(t *testing.T) {
	db := InitTestDB(t)
	h := newOrderHandler(db)
	e := echo.New()

	order := models.Order{CustomerID: 1, TotalAmount: 100, Status: "Pending"}
	require.NoError(t, db.Create(&order).Error)

	rec, c := doJSONRequest(t, e, http.MethodPatch, "/api/v1/orders/1/deliver", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	asUser(c, 2, models.RoleSeller)
	require.NoError(t, h.MarkDelivered(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	require.True(t, stored.IsDelivered)
	require.NotNil(t, stored.DeliveredAt)
	require.Equal(t, "Delivered", stored.Status)
}

func TestMarkDeliveredNotFound(t *testing.T) {
	db := InitTestDB(t)
	h := newOrderHandler(db)
	e := echo.New()

	_, c := doJSONRequest(t, e, http.MethodPatch, "/api/v1/orders/99/deliver", nil)
	c.SetParamNames("id")
	c.SetParamValues("99")
	asUser(c, 2, models.RoleSeller)

	err := h.MarkDelivered(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusNotFound, he.Code)
}

func TestRateOrder(t *testing.T) {
	db := InitTestDB(t)
	h := newOrderHandler(db)
	e := echo.New()

	order := models.Order{CustomerID: 1, TotalAmount: 100, Status: "Pending"}
	require.NoError(t, db.Create(&order).Error)

	rec, c := doJSONRequest(t, e, http.MethodPatch, "/api/v1/orders/1/rate", map[string]any{
		"value":   5,
		"comment": "fresh produce, fast delivery",
	})
	c.SetParamNames("id")
	c.SetParamValues("1")
	asUser(c, 1, models.RoleBuyer)
	require.NoError(t, h.RateOrder(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	require.NotNil(t, stored.Rating)
	require.Equal(t, 5, stored.Rating.Value)
	require.Equal(t, "fresh produce, fast delivery", stored.Rating.Comment)
}

func TestRateOrderInvalidValue(t *testing.T) {
	db := InitTestDB(t)
	h := newOrderHandler(db)
	e := echo.New()

	order := models.Order{CustomerID: 1, TotalAmount: 100, Status: "Pending"}
	require.NoError(t, db.Create(&order).Error)

	for _, body := range []map[string]any{
		{"comment": "no value"},
		{"value": 0},
		{"value": 6},
	} {
		_, c := doJSONRequest(t, e, http.MethodPatch, "/api/v1/orders/1/rate", body)
		c.SetParamNames("id")
		c.SetParamValues("1")
		asUser(c, 1, models.RoleBuyer)

		err := h.RateOrder(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok, "expected HTTPError")
		require.Equal(t, http.StatusBadRequest, he.Code)
	}
}
