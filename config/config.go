package config

import (
	"log"
	"os"
	"strconv"
)

// AppConfig holds the settings resolved once at process start. AdminEmail is
// optional: when it is empty the admin notification email path is disabled
// (and logged), everything else keeps working.
type AppConfig struct {
	APIKey     string
	AdminEmail string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string

	PayTabsProfileID int64
	PayTabsServerKey string
	PayTabsBaseURL   string
	CallbackBaseURL  string

	TypesenseURL    string
	TypesenseAPIKey string
}

// Load reads the application configuration from the environment. The API key
// protecting the request endpoints is required.
func Load() *AppConfig {
	cfg := &AppConfig{
		APIKey:     os.Getenv("API_KEY"),
		AdminEmail: os.Getenv("ADMIN_EMAIL"),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		SMTPPort: 2525,

		PayTabsServerKey: os.Getenv("PAYTABS_SERVER_KEY"),
		PayTabsBaseURL:   os.Getenv("PAYTABS_BASE_URL"),
		CallbackBaseURL:  os.Getenv("CALLBACK_BASE_URL"),

		TypesenseURL:    os.Getenv("TYPESENSE_URL"),
		TypesenseAPIKey: os.Getenv("TYPESENSE_API_KEY"),
	}

	if cfg.APIKey == "" {
		log.Fatal("API_KEY environment variable is required")
	}

	if cfg.AdminEmail == "" {
		log.Println("Warning: ADMIN_EMAIL not set, admin notification emails are disabled")
	}

	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			cfg.SMTPPort = port
		}
	}

	if profileStr := os.Getenv("PAYTABS_PROFILE_ID"); profileStr != "" {
		if profile, err := strconv.ParseInt(profileStr, 10, 64); err == nil {
			cfg.PayTabsProfileID = profile
		}
	}
	if cfg.PayTabsBaseURL == "" {
		cfg.PayTabsBaseURL = "https://secure.paytabs.com"
	}

	if cfg.TypesenseURL == "" {
		cfg.TypesenseURL = "http://localhost:8108"
	}

	return cfg
}
