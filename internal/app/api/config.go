package api

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/go-gin-pos-server/internal/domains/directory/adapters/credentials"
	directoryapp "github.com/Apurer/go-gin-pos-server/internal/domains/directory/application"
	settingsdomain "github.com/Apurer/go-gin-pos-server/internal/domains/settings/domain"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const (
	defaultTaxRatePercent  = "8.25"
	defaultBusinessName    = "POS Terminal"
	defaultSessionTTL      = 12 * time.Hour
	defaultPurgeInterval   = 5 * time.Minute
	defaultConfirmationTTL = 2 * time.Minute
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port              string
	DocstoreDriver    string
	PostgresDSN       string
	SQLitePath        string
	BusinessName      string
	TaxRatePercent    decimal.Decimal
	AdminPIN          string
	JWTSecret         string
	SessionTTL        time.Duration
	PurgeInterval     time.Duration
	CredentialMode    string
	ConfirmationTTL   time.Duration
	AMQPURL           string
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
}

// LoadConfig reads an optional .env file and the process environment, applies
// defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read .env: %w", err)
	}
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		SQLitePath:        strings.TrimSpace(os.Getenv("SQLITE_PATH")),
		BusinessName:      envDefault("BUSINESS_NAME", defaultBusinessName),
		AdminPIN:          envDefault("ADMIN_PIN", directoryapp.DefaultAdminPIN),
		JWTSecret:         strings.TrimSpace(os.Getenv("JWT_SECRET")),
		CredentialMode:    envDefault("CREDENTIAL_MODE", credentials.ModePlaintext),
		AMQPURL:           strings.TrimSpace(os.Getenv("AMQP_URL")),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
	}

	driver, err := resolveDriver(os.Getenv("DOCSTORE_DRIVER"), cfg.PostgresDSN, cfg.SQLitePath)
	if err != nil {
		return Config{}, err
	}
	cfg.DocstoreDriver = driver

	rate, err := decimal.NewFromString(envDefault("TAX_RATE_PERCENT", defaultTaxRatePercent))
	if err != nil {
		return Config{}, fmt.Errorf("TAX_RATE_PERCENT must be a decimal number")
	}
	if err := settingsdomain.ValidateTaxRate(rate); err != nil {
		return Config{}, fmt.Errorf("TAX_RATE_PERCENT: %w", err)
	}
	cfg.TaxRatePercent = rate

	if _, err := credentials.ForMode(cfg.CredentialMode); err != nil {
		return Config{}, fmt.Errorf("CREDENTIAL_MODE: %w", err)
	}
	if cfg.SessionTTL, err = positiveDuration("SESSION_TTL_MINUTES", time.Minute, defaultSessionTTL); err != nil {
		return Config{}, err
	}
	if cfg.PurgeInterval, err = positiveDuration("SESSION_PURGE_INTERVAL_MINUTES", time.Minute, defaultPurgeInterval); err != nil {
		return Config{}, err
	}
	if cfg.ConfirmationTTL, err = positiveDuration("CONFIRMATION_TTL_SECONDS", time.Second, defaultConfirmationTTL); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func resolveDriver(raw, dsn, sqlitePath string) (string, error) {
	switch driver := strings.ToLower(strings.TrimSpace(raw)); driver {
	case "":
		switch {
		case dsn != "":
			return DriverPostgres, nil
		case sqlitePath != "":
			return DriverSQLite, nil
		default:
			return DriverMemory, nil
		}
	case DriverMemory:
		return driver, nil
	case DriverSQLite:
		if sqlitePath == "" {
			return "", fmt.Errorf("DOCSTORE_DRIVER=sqlite requires SQLITE_PATH")
		}
		return driver, nil
	case DriverPostgres:
		if dsn == "" {
			return "", fmt.Errorf("DOCSTORE_DRIVER=postgres requires POSTGRES_DSN")
		}
		return driver, nil
	default:
		return "", fmt.Errorf("unknown DOCSTORE_DRIVER %q", raw)
	}
}

func positiveDuration(key string, unit, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return time.Duration(n) * unit, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
