package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	Port string

	MongoURI string
	DBName   string

	JWTSecret         string
	AccessTokenTTL    time.Duration
	SessionSecret     string
	AdminEmail        string
	AdminPasswordHash string

	SiteURL         string
	SiteName        string
	DefaultImageURL string
	TwitterSite     string

	SPADistDir string
	PublicDir  string
	UploadDir  string

	StorageDriver      string
	SupabaseURL        string
	SupabaseServiceKey string
	SupabaseBucket     string

	PageSize     int64
	BulkMaxBytes int64

	LogMode string
	LogFile string
}

// Load reads the environment (and a .env file when present) into AppEnv.
// Credentials have no defaults: a missing one is reported as an error.
func Load() error {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}

	siteURL := strings.TrimRight(getEnvOrDefault("SITE_URL", "http://localhost:8080"), "/")

	cfg := Config{
		Port:              getEnvOrDefault("PORT", "8080"),
		MongoURI:          getEnvOrDefault("MONGO_URI", ""),
		DBName:            getEnvOrDefault("DB_NAME", "qancha"),
		JWTSecret:         getEnvOrDefault("JWT_SECRET", ""),
		AccessTokenTTL:    getDurationEnv("ACCESS_TOKEN_TTL", 60, time.Minute),
		SessionSecret:     getEnvOrDefault("SESSION_SECRET", ""),
		AdminEmail:        strings.ToLower(getEnvOrDefault("ADMIN_EMAIL", "")),
		AdminPasswordHash: getEnvOrDefault("ADMIN_PASSWORD_HASH", ""),

		SiteURL:         siteURL,
		SiteName:        getEnvOrDefault("SITE_NAME", "Qancha.uz"),
		DefaultImageURL: getEnvOrDefault("DEFAULT_IMAGE_URL", siteURL+"/main.png"),
		TwitterSite:     getEnvOrDefault("TWITTER_SITE", "@qancha_uz"),

		SPADistDir: getEnvOrDefault("SPA_DIST_DIR", "dist"),
		PublicDir:  getEnvOrDefault("PUBLIC_DIR", "public"),
		UploadDir:  getEnvOrDefault("UPLOAD_DIR", "public/uploads"),

		StorageDriver:      strings.ToLower(getEnvOrDefault("STORAGE_DRIVER", "local")),
		SupabaseURL:        strings.TrimRight(getEnvOrDefault("SUPABASE_URL", ""), "/"),
		SupabaseServiceKey: getEnvOrDefault("SUPABASE_SERVICE_KEY", ""),
		SupabaseBucket:     getEnvOrDefault("SUPABASE_BUCKET", "qancha-products"),

		PageSize:     getInt64Env("PAGE_SIZE", 12),
		BulkMaxBytes: getInt64Env("BULK_MAX_BYTES", 10<<20),

		LogMode: getEnvOrDefault("LOG_MODE", "development"),
		LogFile: getEnvOrDefault("LOG_FILE", ""),
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	AppEnv = cfg
	return nil
}

// Validate reports every missing required setting at once.
func (c Config) Validate() error {
	required := map[string]string{
		"MONGO_URI":           c.MongoURI,
		"JWT_SECRET":          c.JWTSecret,
		"SESSION_SECRET":      c.SessionSecret,
		"ADMIN_EMAIL":         c.AdminEmail,
		"ADMIN_PASSWORD_HASH": c.AdminPasswordHash,
	}

	switch c.StorageDriver {
	case "local":
	case "supabase":
		required["SUPABASE_URL"] = c.SupabaseURL
		required["SUPABASE_SERVICE_KEY"] = c.SupabaseServiceKey
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	missing := missingKeys(required)
	if len(missing) > 0 {
		return fmt.Errorf("config: required env not set: %s", strings.Join(missing, ", "))
	}
	return nil
}
