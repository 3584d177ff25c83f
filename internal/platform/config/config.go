package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures all environment-driven configuration. Components receive
// the slice of it they need; nothing reads the environment after startup.
type Config struct {
	Addr        string
	Environment string // "development" or "production"

	Features  Features
	CSRF      CSRF
	Email     Email
	Sheets    Sheets
	Storage   Storage
	Redis     Redis
	Templates Templates
	Download  Download

	AllowedOrigins []string
	Languages      []string
}

// Features toggles the optional pipeline steps.
type Features struct {
	PDFGeneration      bool
	EmailNotifications bool
	GoogleSheets       bool
}

// CSRF configures token issuance and validation.
type CSRF struct {
	TokenTTL     time.Duration
	HeaderName   string
	CookieName   string
	SecureCookie bool
}

// Email configures the notification transports. SendGrid is used when APIKey
// is set; otherwise SMTP when Host is set; otherwise dispatch degrades to a
// logging no-op.
type Email struct {
	APIKey   string
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	From     string
	FromName string
	To       []string
}

// Sheets configures the optional spreadsheet append.
type Sheets struct {
	SpreadsheetID   string
	CredentialsJSON string
	Range           string
}

// Storage configures S3-compatible object storage for uploaded documents.
type Storage struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Redis selects the distributed rate-limit store when a URL is present.
type Redis struct {
	URL string
}

// Templates locates the fillable PDF templates on disk.
type Templates struct {
	ApplicationPath string
	I9Path          string
}

// Download configures generated-document retention and signed access.
type Download struct {
	SigningKey  string
	DocumentTTL time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
// A .env file is loaded first when present (local development); injected
// environment always wins.
func FromEnv() Config {
	_ = godotenv.Load()

	return Config{
		Addr:        envOr("WAREWORKS_ADDR", ":8080"),
		Environment: envOr("WAREWORKS_ENV", "development"),
		Features: Features{
			PDFGeneration:      envBool("FEATURE_PDF_GENERATION", true),
			EmailNotifications: envBool("FEATURE_EMAIL_NOTIFICATIONS", true),
			GoogleSheets:       envBool("FEATURE_GOOGLE_SHEETS", false),
		},
		CSRF: CSRF{
			TokenTTL:     envDuration("CSRF_TOKEN_TTL", time.Hour),
			HeaderName:   envOr("CSRF_HEADER_NAME", "X-CSRF-Token"),
			CookieName:   envOr("CSRF_COOKIE_NAME", "csrf-secret"),
			SecureCookie: envBool("CSRF_SECURE_COOKIE", false),
		},
		Email: Email{
			APIKey:   os.Getenv("SENDGRID_API_KEY"),
			SMTPHost: os.Getenv("SMTP_HOST"),
			SMTPPort: envInt("SMTP_PORT", 587),
			SMTPUser: os.Getenv("SMTP_USER"),
			SMTPPass: os.Getenv("SMTP_PASS"),
			From:     envOr("NOTIFY_FROM", "applications@wareworks.example"),
			FromName: envOr("NOTIFY_FROM_NAME", "WareWorks Applications"),
			To:       envList("NOTIFY_TO"),
		},
		Sheets: Sheets{
			SpreadsheetID:   os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID"),
			CredentialsJSON: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_JSON"),
			Range:           envOr("GOOGLE_SHEETS_RANGE", "Applications!A:Z"),
		},
		Storage: Storage{
			Endpoint:  os.Getenv("STORAGE_ENDPOINT"),
			AccessKey: os.Getenv("STORAGE_ACCESS_KEY"),
			SecretKey: os.Getenv("STORAGE_SECRET_KEY"),
			Bucket:    envOr("STORAGE_BUCKET", "wareworks-uploads"),
			UseSSL:    envBool("STORAGE_USE_SSL", true),
		},
		Redis: Redis{
			URL: os.Getenv("REDIS_URL"),
		},
		Templates: Templates{
			ApplicationPath: envOr("PDF_TEMPLATE_APPLICATION", "templates/application.pdf"),
			I9Path:          envOr("PDF_TEMPLATE_I9", "templates/i9.pdf"),
		},
		Download: Download{
			SigningKey:  envOr("DOWNLOAD_SIGNING_KEY", "dev-signing-key-change-in-production"),
			DocumentTTL: envDuration("DOCUMENT_TTL", time.Hour),
		},
		AllowedOrigins: envList("ALLOWED_ORIGINS"),
		Languages:      envListOr("ALLOWED_LANGUAGES", []string{"en", "es"}),
	}
}

// IsDevelopment reports whether the service runs in development mode.
// Template/mapping drift fails fast only in development.
func (c Config) IsDevelopment() bool {
	return c.Environment != "production"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envListOr(key string, fallback []string) []string {
	if list := envList(key); list != nil {
		return list
	}
	return fallback
}
