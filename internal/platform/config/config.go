package config

import (
	"log"
	"strings"
	"time"

	"github.com/SscSPs/fincontrol/internal/core/domain"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const (
	defaultPort             = "8080"
	defaultJWTSecret        = "a-very-secret-key-should-be-longer-and-random"
	defaultJWTIssuer        = "fincontrol"
	defaultMigrationsPath   = "file://migrations"
	defaultTolerance        = "0.0001"
	defaultAuditTimezone    = "UTC"
	defaultAuditDaysPerPage = 7
	defaultRateLimit        = "300-M"
	defaultPosthogEndpoint  = "https://eu.i.posthog.com"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL    string
	Port           string
	IsProduction   bool
	EnableDBCheck  bool
	JWTSecret      string
	JWTIssuer      string
	MigrationsPath string

	// MissingCodePolicy decides whether a permission code absent from the catalog requires approval.
	MissingCodePolicy domain.MissingCodePolicy
	// BalanceTolerance is the largest debit/credit difference still accepted as balanced.
	BalanceTolerance decimal.Decimal
	// AuditLocation is the time zone calendar days are taken in when grouping audit events.
	AuditLocation    *time.Location
	AuditDaysPerPage int

	RateLimit          string
	CORSAllowedOrigins []string
	RedisURL           string
	PosthogAPIKey      string
	PosthogEndpoint    string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", defaultPort)
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", defaultJWTSecret)
	viper.SetDefault("JWT_ISSUER", defaultJWTIssuer)
	viper.SetDefault("MIGRATIONS_PATH", defaultMigrationsPath)
	viper.SetDefault("PERMISSION_MISSING_CODE_POLICY", string(domain.FailOpen))
	viper.SetDefault("LEDGER_BALANCE_TOLERANCE", defaultTolerance)
	viper.SetDefault("AUDIT_TIMEZONE", defaultAuditTimezone)
	viper.SetDefault("AUDIT_DAYS_PER_PAGE", defaultAuditDaysPerPage)
	viper.SetDefault("RATE_LIMIT", defaultRateLimit)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("POSTHOG_ENDPOINT", defaultPosthogEndpoint)

	viper.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:     viper.GetString("PGSQL_URL"),
		Port:            viper.GetString("PORT"),
		IsProduction:    viper.GetBool("IS_PRODUCTION"),
		EnableDBCheck:   viper.GetBool("ENABLE_DB_CHECK"),
		JWTSecret:       viper.GetString("JWT_SECRET"),
		JWTIssuer:       viper.GetString("JWT_ISSUER"),
		MigrationsPath:  viper.GetString("MIGRATIONS_PATH"),
		RateLimit:       viper.GetString("RATE_LIMIT"),
		RedisURL:        viper.GetString("REDIS_URL"),
		PosthogAPIKey:   viper.GetString("POSTHOG_API_KEY"),
		PosthogEndpoint: viper.GetString("POSTHOG_ENDPOINT"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	if cfg.Port == "" {
		cfg.Port = defaultPort
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = defaultJWTSecret // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	switch policy := domain.MissingCodePolicy(strings.ToLower(viper.GetString("PERMISSION_MISSING_CODE_POLICY"))); policy {
	case domain.FailOpen, domain.FailClosed:
		cfg.MissingCodePolicy = policy
	default:
		cfg.MissingCodePolicy = domain.FailOpen
		log.Printf("Warning: Invalid value for PERMISSION_MISSING_CODE_POLICY ('%s'). Defaulting to %s.\n", policy, cfg.MissingCodePolicy)
	}
	if cfg.MissingCodePolicy == domain.FailOpen {
		log.Println("Warning: permission codes missing from the catalog will not require approval (fail-open).")
	}

	toleranceStr := viper.GetString("LEDGER_BALANCE_TOLERANCE")
	tolerance, err := decimal.NewFromString(toleranceStr)
	if err != nil || tolerance.IsNegative() {
		tolerance = decimal.RequireFromString(defaultTolerance)
		log.Printf("Warning: Invalid value for LEDGER_BALANCE_TOLERANCE ('%s'). Defaulting to %s.\n", toleranceStr, tolerance.String())
	}
	cfg.BalanceTolerance = tolerance

	tzName := viper.GetString("AUDIT_TIMEZONE")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		loc = time.UTC
		log.Printf("Warning: Invalid value for AUDIT_TIMEZONE ('%s'). Defaulting to UTC.\n", tzName)
	}
	cfg.AuditLocation = loc

	cfg.AuditDaysPerPage = viper.GetInt("AUDIT_DAYS_PER_PAGE")
	if cfg.AuditDaysPerPage <= 0 {
		cfg.AuditDaysPerPage = defaultAuditDaysPerPage
		log.Printf("Warning: Invalid value for AUDIT_DAYS_PER_PAGE. Defaulting to %d.\n", cfg.AuditDaysPerPage)
	}

	for _, origin := range strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	return cfg, nil
}
