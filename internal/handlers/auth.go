package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/farmcom/farmcom/internal/automate"
	"github.com/farmcom/farmcom/internal/hash"
	"github.com/farmcom/farmcom/internal/models"
	"github.com/farmcom/farmcom/internal/mykafka"
	"github.com/farmcom/farmcom/internal/service"
)

type AuthHandler struct {
	DB        *gorm.DB
	JWTSecret []byte
	Producer  *mykafka.Producer
	Automate  *automate.Client
}

func CreateCookie(name string, value string, path string, exp_time time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  exp_time,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *AuthHandler) Signup(c echo.Context) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password required")
	}

	role := req.Role
	switch role {
	case models.RoleBuyer, models.RoleSeller, models.RoleAdmin:
	case "":
		role = models.RoleBuyer
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown role")
	}

	var existing models.User
	err := h.DB.Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return echo.NewHTTPError(http.StatusConflict, "user already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	passwordHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         role,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	token, err := service.SignAccessToken(user.ID, user.Role, h.JWTSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":   "user_signed_up",
		"userID": user.ID,
		"email":  user.Email,
		"role":   user.Role,
	}, user.ID)

	h.Automate.NotifyUserEvent(map[string]any{
		"type":  "signup",
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
	})

	c.SetCookie(CreateCookie("accessToken", token, "/", time.Now().Add(service.AccessTokenTTL)))

	return c.JSON(http.StatusCreated, echo.Map{
		"token": token,
		"user":  user.PublicView(),
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	token, err := service.SignAccessToken(user.ID, user.Role, h.JWTSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":   "user_logged_in",
		"userID": user.ID,
		"email":  user.Email,
	}, user.ID)

	h.Automate.NotifyUserEvent(map[string]any{
		"type":  "login",
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
	})

	c.SetCookie(CreateCookie("accessToken", token, "/", time.Now().Add(service.AccessTokenTTL)))

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user":  user.PublicView(),
	})
}

func (h *AuthHandler) publish(c echo.Context, event map[string]any, userID uint) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "user_events", fmt.Sprint(userID), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}
