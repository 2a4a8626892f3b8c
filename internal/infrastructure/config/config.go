// Package config loads application configuration from an optional
// config.toml and environment variables, with environment taking
// precedence.
package config

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Log      LogConfig
	HTTP     HTTPConfig
	SMTP     SMTPConfig
	DocStore DocStoreConfig
	Storage  StorageConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxBodySize    int64
	RequestTimeout time.Duration // fixed per-request budget for pipeline I/O
}

// SMTPConfig holds mail transport settings, resolved once per process.
type SMTPConfig struct {
	Host     string
	Port     int
	Secure   bool // implicit TLS instead of STARTTLS
	User     string
	Password string
	From     string
}

// Configured reports whether the transport credentials are present.
func (c SMTPConfig) Configured() bool {
	return c.User != "" && c.Password != ""
}

// FromAddress returns the configured sender, falling back to the user.
func (c SMTPConfig) FromAddress() string {
	if c.From != "" {
		return c.From
	}
	return c.User
}

// DocStoreConfig holds document-store (Firestore) credentials. The
// private key is accepted as raw PEM with literal or escaped newlines,
// or as a base64-encoded blob.
type DocStoreConfig struct {
	ProjectID        string
	ClientEmail      string
	PrivateKey       string
	PrivateKeyBase64 string
	CompanyID        string
}

// Configured reports whether the store credentials are present.
func (c DocStoreConfig) Configured() bool {
	return c.ClientEmail != "" && (c.PrivateKey != "" || c.PrivateKeyBase64 != "")
}

// ResolvePrivateKey normalizes the configured private key: base64
// decoding when the base64 variant is set, unescaping literal "\n"
// sequences otherwise, and validating the PEM markers.
func (c DocStoreConfig) ResolvePrivateKey() (string, error) {
	key := c.PrivateKey
	if c.PrivateKeyBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(c.PrivateKeyBase64)
		if err != nil {
			return "", fmt.Errorf("decoding base64 private key: %w", err)
		}
		key = string(decoded)
	} else if strings.Contains(key, `\n`) {
		key = strings.ReplaceAll(key, `\n`, "\n")
	}

	if !strings.Contains(key, "BEGIN PRIVATE KEY") || !strings.Contains(key, "END PRIVATE KEY") {
		return "", errors.New("private key is missing BEGIN/END PRIVATE KEY markers")
	}
	return key, nil
}

// ServiceAccountJSON assembles the service-account credentials blob the
// store client is initialized with.
func (c DocStoreConfig) ServiceAccountJSON() ([]byte, error) {
	key, err := c.ResolvePrivateKey()
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]string{
		"type":         "service_account",
		"project_id":   c.ProjectID,
		"client_email": c.ClientEmail,
		"private_key":  key,
		"token_uri":    "https://oauth2.googleapis.com/token",
	})
}

// StorageConfig holds object storage connection settings for any
// S3-compatible backend.
type StorageConfig struct {
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	UseSSL       bool
	UsePathStyle bool
}

// Configured reports whether the storage credentials are present.
func (c StorageConfig) Configured() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

// Load loads configuration from an optional config.toml and environment
// variables. Environment variables win; the names match what operators
// already export for the hosted services (SMTP_*, STORE_*, STORAGE_*).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file is fine, env vars and defaults apply.
	}

	bindings := map[string]string{
		"app.port":                  "PORT",
		"log.level":                 "LOG_LEVEL",
		"smtp.host":                 "SMTP_HOST",
		"smtp.port":                 "SMTP_PORT",
		"smtp.secure":               "SMTP_SECURE",
		"smtp.user":                 "SMTP_USER",
		"smtp.password":             "SMTP_PASS",
		"smtp.from":                 "SMTP_FROM",
		"docstore.projectid":        "STORE_PROJECT_ID",
		"docstore.clientemail":      "STORE_CLIENT_EMAIL",
		"docstore.privatekey":       "STORE_PRIVATE_KEY",
		"docstore.privatekeybase64": "STORE_PRIVATE_KEY_BASE64",
		"docstore.companyid":        "STORE_COMPANY_ID",
		"storage.endpoint":          "STORAGE_ENDPOINT",
		"storage.region":            "STORAGE_REGION",
		"storage.bucket":            "STORAGE_BUCKET",
		"storage.accesskey":         "STORAGE_ACCESS_KEY",
		"storage.secretkey":         "STORAGE_SECRET_KEY",
		"storage.usessl":            "STORAGE_USE_SSL",
		"storage.usepathstyle":      "STORAGE_USE_PATH_STYLE",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxBodySize:    v.GetInt64("http.max_body_size"),
			RequestTimeout: v.GetDuration("http.request_timeout"),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("smtp.host"),
			Port:     v.GetInt("smtp.port"),
			Secure:   v.GetBool("smtp.secure"),
			User:     v.GetString("smtp.user"),
			Password: v.GetString("smtp.password"),
			From:     v.GetString("smtp.from"),
		},
		DocStore: DocStoreConfig{
			ProjectID:        v.GetString("docstore.projectid"),
			ClientEmail:      v.GetString("docstore.clientemail"),
			PrivateKey:       v.GetString("docstore.privatekey"),
			PrivateKeyBase64: v.GetString("docstore.privatekeybase64"),
			CompanyID:        v.GetString("docstore.companyid"),
		},
		Storage: StorageConfig{
			Endpoint:     v.GetString("storage.endpoint"),
			Region:       v.GetString("storage.region"),
			Bucket:       v.GetString("storage.bucket"),
			AccessKey:    v.GetString("storage.accesskey"),
			SecretKey:    v.GetString("storage.secretkey"),
			UseSSL:       v.GetBool("storage.usessl"),
			UsePathStyle: v.GetBool("storage.usepathstyle"),
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "backoffice")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 30*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.max_body_size", int64(10*1024*1024))
	v.SetDefault("http.request_timeout", 60*time.Second)

	v.SetDefault("smtp.host", "smtp.gmail.com")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.secure", false)

	v.SetDefault("storage.region", "us-east-1")
}
