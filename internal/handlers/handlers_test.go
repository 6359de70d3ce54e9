package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/farmcom/farmcom/internal/hash"
	"github.com/farmcom/farmcom/internal/models"
	"github.com/farmcom/farmcom/internal/mykafka"
)

var testSecret = []byte("test_secret")

func InitTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Product{}, &models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

func doJSONRequest(t *testing.T, e *echo.Echo, method, path string, body interface{}) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, c
}

// asUser simulates what the auth middleware puts on the context after a
// verified token.
func asUser(c echo.Context, id uint, role string) {
	c.Set("userID", id)
	c.Set("role", role)
}

func createUser(t *testing.T, db *gorm.DB, name, email, password, role string) models.User {
	t.Helper()
	passwordHash, err := hash.HashPassword(password)
	require.NoError(t, err)
	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func newAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{
		DB:        db,
		JWTSecret: testSecret,
		Producer:  &mykafka.Producer{},
	}
}

func newProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{
		DB:       db,
		Producer: &mykafka.Producer{},
	}
}

func newOrderHandler(db *gorm.DB) *OrderHandler {
	return &OrderHandler{
		DB:       db,
		Producer: &mykafka.Producer{},
	}
}
