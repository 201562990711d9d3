package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable, e.g. REQCHECK_SERVER_PORT.
const EnvPrefix = "REQCHECK"

// ConfigFileEnv names the variable that points at an explicit YAML file.
const ConfigFileEnv = "REQCHECK_CONFIG"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST"`
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" validate:"gt=0"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" validate:"min=1024"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" validate:"gt=0"`
}

// Address returns the listen address.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig contains the access gate and upload limits
type SecurityConfig struct {
	// PasswordHash is the bcrypt hash of the shared access password, as printed
	// by "reqcheck hash-password".
	PasswordHash   string          `yaml:"password_hash" envconfig:"PASSWORD_HASH"`
	SessionTTL     time.Duration   `yaml:"session_ttl" envconfig:"SESSION_TTL" validate:"gt=0"`
	SessionCookie  string          `yaml:"session_cookie" envconfig:"SESSION_COOKIE" validate:"required"`
	SecureCookie   bool            `yaml:"secure_cookie" envconfig:"SECURE_COOKIE"`
	LoginRate      float64         `yaml:"login_rate" envconfig:"LOGIN_RATE" validate:"gt=0"`
	LoginBurst     int             `yaml:"login_burst" envconfig:"LOGIN_BURST" validate:"min=1"`
	MaxUploadBytes int64           `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" validate:"min=1024"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains API rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gt=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"min=1"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format      string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output      string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// ReportConfig contains the reconciliation and export settings
type ReportConfig struct {
	ExportFormat    string `yaml:"export_format" envconfig:"EXPORT_FORMAT" validate:"oneof=xlsx csv"`
	ShowDebug       bool   `yaml:"show_debug" envconfig:"SHOW_DEBUG"`
	TopCourses      int    `yaml:"top_courses" envconfig:"TOP_COURSES" validate:"min=1,max=100"`
	MaxColumnWidth  int    `yaml:"max_column_width" envconfig:"MAX_COLUMN_WIDTH" validate:"min=10,max=255"`
	SheetName       string `yaml:"sheet_name" envconfig:"SHEET_NAME" validate:"required,max=31"`
	FilePrefix      string `yaml:"file_prefix" envconfig:"FILE_PREFIX" validate:"required"`
	PeriodOrder     string `yaml:"period_order" envconfig:"PERIOD_ORDER" validate:"oneof=chronological lexicographic"`
	ExportCacheSize int    `yaml:"export_cache_size" envconfig:"EXPORT_CACHE_SIZE" validate:"min=0"`
}

// TelemetryConfig contains tracing and metrics configuration
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	TracingEnabled bool   `yaml:"tracing_enabled" envconfig:"TRACING_ENABLED"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
}

// Load builds the configuration from defaults, then the YAML file named by
// REQCHECK_CONFIG or found in a common location, then environment variables.
// Later sources win.
func Load() (*Config, error) {
	return LoadFile(getConfigFilePath())
}

// LoadFile is Load with an explicit YAML file. An empty path skips the file.
func LoadFile(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Load from environment variables last so they override the file
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg; keys absent from the file keep
// their current value.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("invalid %s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return err
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if explicit := os.Getenv(ConfigFileEnv); explicit != "" {
		return explicit
	}

	locations := []string{
		"reqcheck.yaml",
		"configs/reqcheck.yaml",
		"../configs/reqcheck.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            DefaultPort,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  DefaultRequestTimeout,
		},
		Security: SecurityConfig{
			SessionTTL:     DefaultSessionTTL,
			SessionCookie:  DefaultSessionCookie,
			LoginRate:      DefaultLoginRate,
			LoginBurst:     DefaultLoginBurst,
			MaxUploadBytes: DefaultMaxUploadBytes,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     20,
				Burst:   40,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/reqcheck.log",
		},
		Report: ReportConfig{
			ExportFormat:    "xlsx",
			TopCourses:      DefaultTopCourses,
			MaxColumnWidth:  DefaultMaxColumnWidth,
			SheetName:       DefaultSheetName,
			FilePrefix:      DefaultFilePrefix,
			PeriodOrder:     "chronological",
			ExportCacheSize: DefaultExportCacheSize,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    AppName,
			MetricsEnabled: true,
		},
	}
}
