package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	Server      ServerConfig    `json:"server"`
	Environment string          `json:"environment"`
	Templates   TemplatesConfig `json:"templates"`
	Storage     StorageConfig   `json:"storage"`
	Logging     LoggingConfig   `json:"logging"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// TemplatesConfig locates the document templates and controls the contract
// watcher. Source selects between local files ("fs") and object storage
// ("s3").
type TemplatesConfig struct {
	Source          string        `json:"source"`
	ActaPath        string        `json:"acta_path"`
	TratamientoPath string        `json:"tratamiento_path"`
	Bucket          string        `json:"bucket"`
	ActaKey         string        `json:"acta_key"`
	TratamientoKey  string        `json:"tratamiento_key"`
	WatchInterval   time.Duration `json:"watch_interval"`
}

// StorageConfig represents object-storage configuration, shared by the S3
// template source and the optional output mirror. UploadLinkTTL bounds the
// presigned download links for mirrored outputs; zero disables them.
type StorageConfig struct {
	Region          string        `json:"region"`
	Endpoint        string        `json:"endpoint"`
	AccessKeyID     string        `json:"access_key_id"`
	SecretAccessKey string        `json:"secret_access_key"`
	UsePathStyle    bool          `json:"use_path_style"`
	UploadEnabled   bool          `json:"upload_enabled"`
	UploadBucket    string        `json:"upload_bucket"`
	UploadPrefix    string        `json:"upload_prefix"`
	UploadLinkTTL   time.Duration `json:"upload_link_ttl"`
}

// LoggingConfig
type LoggingConfig struct {
	Level string `json:"level"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Default config
	config := &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Environment: "development",
		Templates: TemplatesConfig{
			Source:          "fs",
			ActaPath:        "templates/acta_compromiso.pdf",
			TratamientoPath: "templates/tratamiento_datos.pdf",
			WatchInterval:   5 * time.Minute,
		},
		Storage: StorageConfig{
			UploadPrefix:  "enrollment-documents",
			UploadLinkTTL: 15 * time.Minute,
		},
	}

	// Load from file if exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override with environment variables
	overrideWithEnv(config)

	return config, nil
}

func overrideWithEnv(config *Config) {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		config.Environment = env
	}
	if source := os.Getenv("TEMPLATES_SOURCE"); source != "" {
		config.Templates.Source = source
	}
	if path := os.Getenv("TEMPLATES_ACTA_PATH"); path != "" {
		config.Templates.ActaPath = path
	}
	if path := os.Getenv("TEMPLATES_TRATAMIENTO_PATH"); path != "" {
		config.Templates.TratamientoPath = path
	}
	if bucket := os.Getenv("TEMPLATES_BUCKET"); bucket != "" {
		config.Templates.Bucket = bucket
	}
	if key := os.Getenv("TEMPLATES_ACTA_KEY"); key != "" {
		config.Templates.ActaKey = key
	}
	if key := os.Getenv("TEMPLATES_TRATAMIENTO_KEY"); key != "" {
		config.Templates.TratamientoKey = key
	}
	if interval := os.Getenv("TEMPLATES_WATCH_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil {
			config.Templates.WatchInterval = d
		}
	}
	if region := os.Getenv("STORAGE_REGION"); region != "" {
		config.Storage.Region = region
	}
	if endpoint := os.Getenv("STORAGE_ENDPOINT"); endpoint != "" {
		config.Storage.Endpoint = endpoint
	}
	if accessKey := os.Getenv("STORAGE_ACCESS_KEY_ID"); accessKey != "" {
		config.Storage.AccessKeyID = accessKey
	}
	if secretKey := os.Getenv("STORAGE_SECRET_ACCESS_KEY"); secretKey != "" {
		config.Storage.SecretAccessKey = secretKey
	}
	if pathStyle := os.Getenv("STORAGE_USE_PATH_STYLE"); pathStyle != "" {
		if b, err := strconv.ParseBool(pathStyle); err == nil {
			config.Storage.UsePathStyle = b
		}
	}
	if enabled := os.Getenv("STORAGE_UPLOAD_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			config.Storage.UploadEnabled = b
		}
	}
	if bucket := os.Getenv("STORAGE_UPLOAD_BUCKET"); bucket != "" {
		config.Storage.UploadBucket = bucket
	}
	if prefix := os.Getenv("STORAGE_UPLOAD_PREFIX"); prefix != "" {
		config.Storage.UploadPrefix = prefix
	}
	if ttl := os.Getenv("STORAGE_UPLOAD_LINK_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			config.Storage.UploadLinkTTL = d
		}
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// NeedsStorage reports whether any configured feature requires the S3
// client.
func (c *Config) NeedsStorage() bool {
	return c.Templates.Source == "s3" || c.Storage.UploadEnabled
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
