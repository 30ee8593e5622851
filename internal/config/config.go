// Package config reads the service settings from the environment (optionally
// seeded from a .env file) and the shipping tiers from an optional YAML file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/01moynul/farinez-golang/internal/checkout"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every runtime setting.
type Config struct {
	Port       string
	DSN        string
	RedisAddr  string
	RedisPass  string
	JWTSecret  string
	CORSOrigin string
	LogLevel   string
	LogFormat  string
	UploadDir  string
	PublicURL  string // storefront base, used for payment back URLs
	APIBaseURL string // this API's public base, used for uploads and webhooks

	MPAccessToken string
	MPAPIURL      string

	GeocoderURL       string
	GeocoderUserAgent string
	CheckoutGeocoding bool

	RecipeEditEnabled bool
	HTTPTimeout       time.Duration

	Shipping checkout.Tiers
}

// LoadDotEnv loads .env into the process environment. A missing file is not
// an error; the returned bool says whether one was read.
func LoadDotEnv(files ...string) bool {
	return godotenv.Load(files...) == nil
}

// Load builds a Config from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Port:       getenv("PORT", "8080"),
		DSN:        os.Getenv("DB_DSN_PRIMARY"),
		RedisAddr:  os.Getenv("REDIS_ADDR"),
		RedisPass:  os.Getenv("REDIS_PASSWORD"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		CORSOrigin: getenv("CORS_ORIGIN", "http://localhost:3000"),
		LogLevel:   getenv("LOG_LEVEL", "info"),
		LogFormat:  getenv("LOG_FORMAT", "text"),
		UploadDir:  getenv("UPLOAD_DIR", "./uploads"),
		PublicURL:  getenv("PUBLIC_BASE_URL", "http://localhost:3000"),
		APIBaseURL: getenv("BASE_URL", "http://localhost:8080"),

		MPAccessToken: os.Getenv("MP_ACCESS_TOKEN"),
		MPAPIURL:      getenv("MP_API_URL", "https://api.mercadopago.com"),

		GeocoderURL:       getenv("GEOCODER_URL", "https://nominatim.openstreetmap.org"),
		GeocoderUserAgent: getenv("GEOCODER_USER_AGENT", "farinez-api/1.0"),

		Shipping: checkout.DefaultTiers,
	}

	var err error
	if cfg.CheckoutGeocoding, err = getbool("CHECKOUT_GEOCODING", false); err != nil {
		return nil, err
	}
	if cfg.RecipeEditEnabled, err = getbool("RECIPE_EDIT_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = time.ParseDuration(getenv("HTTP_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("HTTP_TIMEOUT: %w", err)
	}

	if path := os.Getenv("SHIPPING_CONFIG"); path != "" {
		tiers, err := LoadShipping(path)
		if err != nil {
			return nil, err
		}
		cfg.Shipping = tiers
	}

	return cfg, nil
}

// Validate checks the settings the API server cannot run without.
func (c *Config) Validate() error {
	if c.DSN == "" {
		return fmt.Errorf("DB_DSN_PRIMARY environment variable is not set")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is not set")
	}
	if c.MPAccessToken == "" {
		return fmt.Errorf("MP_ACCESS_TOKEN environment variable is not set")
	}
	return nil
}

// LoadShipping reads a YAML tier file. Keys missing from the file keep the
// default values.
func LoadShipping(path string) (checkout.Tiers, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return checkout.Tiers{}, fmt.Errorf("read shipping config: %w", err)
	}
	return ParseShipping(data)
}

// ParseShipping decodes tier YAML on top of the defaults.
func ParseShipping(data []byte) (checkout.Tiers, error) {
	tiers := checkout.DefaultTiers
	if err := yaml.Unmarshal(data, &tiers); err != nil {
		return checkout.Tiers{}, fmt.Errorf("parse shipping config: %w", err)
	}
	if tiers.Local < 0 || tiers.National < 0 || tiers.Default < 0 {
		return checkout.Tiers{}, fmt.Errorf("parse shipping config: negative price")
	}
	return tiers, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getbool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
