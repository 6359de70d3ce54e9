package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/farmcom/farmcom/internal/automate"
	"github.com/farmcom/farmcom/internal/cms"
	"github.com/farmcom/farmcom/internal/config"
	"github.com/farmcom/farmcom/internal/es"
	"github.com/farmcom/farmcom/internal/handlers"
	"github.com/farmcom/farmcom/internal/logging"
	"github.com/farmcom/farmcom/internal/mykafka"
	"github.com/farmcom/farmcom/internal/service"
	httpserver "github.com/farmcom/farmcom/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	jwtSecret := []byte(configuration.JWT_SECRET)

	prod, err := mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
	if err != nil {
		log.Fatal(err)
	}

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatal(err)
	}

	cmsClient := cms.NewClient(
		configuration.CMS_BASE_URL,
		configuration.CMS_API_KEY,
		configuration.CMS_DELIVERY_TOKEN,
		configuration.CMS_ENVIRONMENT,
	)

	automateClient := automate.NewClient(
		configuration.AUTOMATE_USER_EVENT_URL,
		configuration.AUTOMATE_ORDER_EVENT_URL,
		logger,
	)

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Static("/uploads", configuration.UPLOAD_DIR+"/uploads")

	deps := httpserver.Deps{
		DB:             db,
		AuthHandler:    &handlers.AuthHandler{DB: db, JWTSecret: jwtSecret, Producer: prod, Automate: automateClient},
		ProductHandler: &handlers.ProductHandler{DB: db, Producer: prod, ES: esClient, CMS: cmsClient},
		OrderHandler:   &handlers.OrderHandler{DB: db, Producer: prod, Automate: automateClient},
		UploadHandler:  &handlers.UploadHandler{PublicDir: configuration.UPLOAD_DIR},
		SearchHandler:  &handlers.SearchHandler{ES: esClient, Index: es.ProductIndex},
		ContentHandler: &handlers.ContentHandler{CMS: cmsClient},
		TokenService:   &service.TokenService{JWTSecret: jwtSecret},
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
