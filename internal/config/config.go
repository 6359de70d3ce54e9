package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/farmcom/farmcom/internal/models"
)

type Config struct {
	DB_HOST                  string
	DB_PORT                  string
	DB_USER                  string
	DB_PASSWORD              string
	DB_NAME                  string
	ES_URL                   string
	ES_USER                  string
	ES_PASSWORD              string
	JWT_SECRET               string
	KAFKA_ADDRESS            string
	CMS_BASE_URL             string
	CMS_API_KEY              string
	CMS_DELIVERY_TOKEN       string
	CMS_ENVIRONMENT          string
	AUTOMATE_USER_EVENT_URL  string
	AUTOMATE_ORDER_EVENT_URL string
	UPLOAD_DIR               string
	LOG_LEVEL                string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		DB_HOST:                  os.Getenv("DB_HOST"),
		DB_PORT:                  os.Getenv("DB_PORT"),
		DB_USER:                  os.Getenv("DB_USER"),
		DB_PASSWORD:              os.Getenv("DB_PASSWORD"),
		DB_NAME:                  os.Getenv("DB_NAME"),
		ES_URL:                   os.Getenv("ES_URL"),
		ES_USER:                  os.Getenv("ES_USER"),
		ES_PASSWORD:              os.Getenv("ES_PASSWORD"),
		JWT_SECRET:               os.Getenv("JWT_SECRET"),
		KAFKA_ADDRESS:            os.Getenv("KAFKA_ADDRESS"),
		CMS_BASE_URL:             os.Getenv("CMS_BASE_URL"),
		CMS_API_KEY:              os.Getenv("CMS_API_KEY"),
		CMS_DELIVERY_TOKEN:       os.Getenv("CMS_DELIVERY_TOKEN"),
		CMS_ENVIRONMENT:          os.Getenv("CMS_ENVIRONMENT"),
		AUTOMATE_USER_EVENT_URL:  os.Getenv("AUTOMATE_USER_EVENT_URL"),
		AUTOMATE_ORDER_EVENT_URL: os.Getenv("AUTOMATE_ORDER_EVENT_URL"),
		UPLOAD_DIR:               os.Getenv("UPLOAD_DIR"),
		LOG_LEVEL:                os.Getenv("LOG_LEVEL"),
	}

	if config.UPLOAD_DIR == "" {
		config.UPLOAD_DIR = "./public"
	}

	return config, nil
}

// InitDB opens the single shared connection for the process and migrates
// the stores. Callers must Close the underlying sql.DB on shutdown.
func InitDB() (*gorm.DB, error) {
	configuration, _ := LoadConfig()

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		configuration.DB_USER,
		configuration.DB_PASSWORD,
		configuration.DB_HOST,
		configuration.DB_PORT,
		configuration.DB_NAME,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Product{}, &models.Order{}, &models.OrderItem{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}
