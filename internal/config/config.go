package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string `env:"APP_PORT" envDefault:"3000"`
	AppEnv  string `env:"APP_ENV" envDefault:"development"`

	AWSRegion      string `env:"AWS_REGION" envDefault:"us-east-1"`
	AWSEndpointURL string `env:"AWS_ENDPOINT_URL"` // empty in prod, LocalStack URL in dev
	AWSAccessKeyID string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey   string `env:"AWS_SECRET_ACCESS_KEY"`

	DynamoTables DynamoTables

	// PortalBaseURL is the public origin used when building redirect links
	// (recovery, invite, magic link) that land back on the portal.
	PortalBaseURL string `env:"PORTAL_BASE_URL" envDefault:"http://localhost:5173"`

	// Identity platform (issues the actual session credentials).
	PlatformBaseURL    string `env:"PLATFORM_BASE_URL" envDefault:"http://localhost:9999"`
	PlatformServiceKey string `env:"PLATFORM_SERVICE_KEY"`
	PlatformAnonKey    string `env:"PLATFORM_ANON_KEY"`

	JWTPublicKeyPath  string        `env:"JWT_PUBLIC_KEY_PATH" envDefault:"./public_key.pem"`
	JWTPrivateKeyPath string        `env:"JWT_PRIVATE_KEY_PATH"` // optional; only dev/test setups sign locally
	JWTExpiry         time.Duration `env:"JWT_EXPIRY" envDefault:"168h"`

	SMTPHost     string `env:"SMTP_HOST" envDefault:"localhost"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"1025"`
	SMTPFrom     string `env:"SMTP_FROM" envDefault:"noreply@example.com"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`

	SNSRegion string `env:"SNS_REGION" envDefault:"us-east-1"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Clients           string `env:"DYNAMO_TABLE_CLIENTS" envDefault:"clients"`
	VerificationCodes string `env:"DYNAMO_TABLE_VERIFICATION_CODES" envDefault:"verification_codes"`
	Tickets           string `env:"DYNAMO_TABLE_TICKETS" envDefault:"tickets"`
}

// Load reads all configuration from environment variables.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}
