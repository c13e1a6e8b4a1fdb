package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/tiendaf1/shop/internal/models"
)

type Config struct {
	Port          string
	DatabaseURL   string
	DBPath        string
	JWTSecret     string
	ClientOrigins []string
	LogLevel      string

	MailerEnabled bool
	SMTPHost      string
	SMTPPort      string
	SMTPUser      string
	SMTPPassword  string
	FromEmail     string
	FromName      string
	AdminNotify   string

	AdminSeedPath string
	KafkaAddress  string

	ESURL      string
	ESUser     string
	ESPassword string
}

func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	cfg := &Config{
		Port:          getenvDefault("PORT", "10000"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		DBPath:        getenvDefault("DB_PATH", "data.sqlite"),
		JWTSecret:     getenvDefault("JWT_SECRET", "supersecreto123"),
		ClientOrigins: SplitList(os.Getenv("CLIENT_ORIGIN")),
		LogLevel:      getenvDefault("LOG_LEVEL", "info"),

		MailerEnabled: strings.EqualFold(os.Getenv("MAILER_ENABLED"), "true"),
		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      getenvDefault("SMTP_PORT", "587"),
		SMTPUser:      os.Getenv("SMTP_USER"),
		SMTPPassword:  os.Getenv("SMTP_PASS"),
		FromEmail:     os.Getenv("FROM_EMAIL"),
		FromName:      getenvDefault("FROM_NAME", "Tienda F1"),
		AdminNotify:   os.Getenv("ADMIN_NOTIFY"),

		AdminSeedPath: getenvDefault("ADMIN_SEED_PATH", "admins.seed.json"),
		KafkaAddress:  os.Getenv("KAFKA_ADDRESS"),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
	}

	if cfg.FromEmail == "" {
		cfg.FromEmail = cfg.SMTPUser
	}

	return cfg
}

// InitDB opens the store and runs migrations. Postgres is used when
// DATABASE_URL is set; otherwise the embedded single-writer sqlite file,
// matching the original deployment.
func InitDB(cfg *Config) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	if cfg.DatabaseURL != "" {
		db, err = gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	} else {
		db, err = gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// SplitList turns a comma-separated env value into trimmed, non-empty items.
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
