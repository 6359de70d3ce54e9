package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/farmcom/farmcom/internal/models"
)

func TestSignup(t *testing.T) {
	db := InitTestDB(t)
	h := newAuthHandler(db)
	e := echo.New()

	payload := map[string]string{
		"name":     "Ravi",
		"email":    "ravi@example.com",
		"password": "password",
	}

	rec, c := doJSONRequest(t, e, http.MethodPost, "/api/v1/auth/signup", payload)
	require.NoError(t, h.Signup(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Token string         `json:"token"`
		User  map[string]any `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	require.Equal(t, "Ravi", resp.User["name"])
	require.Equal(t, "ravi@example.com", resp.User["email"])
	require.Equal(t, "buyer", resp.User["role"])
	require.NotContains(t, resp.User, "password")

	var stored models.User
	require.NoError(t, db.Where("email = ?", "ravi@example.com").First(&stored).Error)
	require.NotEqual(t, "password", stored.PasswordHash)
}

func TestSignupDuplicateEmail(t *testing.T) {
	db := InitTestDB(t)
	h := newAuthHandler(db)
	e := echo.New()

	payload := map[string]string{
		"name":     "Ravi",
		"email":    "ravi@example.com",
		"password": "password",
	}

	rec, c := doJSONRequest(t, e, http.MethodPost, "/api/v1/auth/signup", payload)
	require.NoError(t, h.Signup(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	_, c2 := doJSONRequest(t, e, http.MethodPost, "/api/v1/auth/signup", payload)
	err := h.Signup(c2)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusConflict, he.Code)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("email = ?", "ravi@example.com").Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestSignupSellerRole(t *testing.T) {
	db := InitTestDB(t)
	h := newAuthHandler(db)
	e := echo.New()

	payload := map[string]string{
		"name":     "Sita",
		"email":    "sita@example.com",
		"password": "password",
		"role":     "seller",
	}

	rec, c := doJSONRequest(t, e, http.MethodPost, "/api/v1/auth/signup", payload)
	require.NoError(t, h.Signup(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		User map[string]any `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "seller", resp.User["role"])
}

func TestLogin(t *testing.T) {
	db := InitTestDB(t)
	h := newAuthHandler(db)
	e := echo.New()

	createUser(t, db, "Ravi", "ravi@example.com", "password", models.RoleBuyer)

	rec, c := doJSONRequest(t, e, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "ravi@example.com",
		"password": "password",
	})
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string         `json:"token"`
		User  map[string]any `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	require.Equal(t, "ravi@example.com", resp.User["email"])

	cookies := rec.Result().Cookies()
	var found bool
	for _, ck := range cookies {
		if ck.Name == "accessToken" {
			found = true
			require.True(t, ck.HttpOnly)
		}
	}
	require.True(t, found, "expected accessToken cookie")
}

func TestLoginUnknownEmail(t *testing.T) {
	db := InitTestDB(t)
	h := newAuthHandler(db)
	e := echo.New()

	_, c := doJSONRequest(t, e, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "password",
	})
	err := h.Login(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusNotFound, he.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	db := InitTestDB(t)
	h := newAuthHandler(db)
	e := echo.New()

	createUser(t, db, "Ravi", "ravi@example.com", "password", models.RoleBuyer)

	_, c := doJSONRequest(t, e, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "ravi@example.com",
		"password": "wrong_password",
	})
	err := h.Login(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusUnauthorized, he.Code)
}
