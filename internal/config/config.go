package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

type EmailConfig struct {
	Region                string `yaml:"region"`
	Sender                string `yaml:"sender"`
	AccessKeyID           string `yaml:"-"` // Loaded from environment
	SecretAccessKey       string `yaml:"-"` // Loaded from environment
	ReminderCooldownHours int    `yaml:"reminder_cooldown_hours"`
}

type LLMConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"-"` // Loaded from environment
}

type ExportConfig struct {
	// Sink is "file" or "s3".
	Sink      string `yaml:"sink"`
	Directory string `yaml:"directory"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	// Endpoint overrides the S3 endpoint for R2 and other compatible stores.
	Endpoint        string `yaml:"endpoint,omitempty"`
	AccessKeyID     string `yaml:"-"`
	SecretAccessKey string `yaml:"-"`
}

type ScheduleConfig struct {
	ComplianceDigest string `yaml:"compliance_digest"`
	StandingsRefresh string `yaml:"standings_refresh"`
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		BaseURL     string `yaml:"base_url"`
		// TrustProxy honours X-Forwarded-For and X-Real-IP. Enable only behind
		// a proxy that overwrites them.
		TrustProxy  bool   `yaml:"trust_proxy"`
		SecretKey   string `yaml:"-"` // Loaded from environment
	} `yaml:"app"`

	Database DatabaseConfig `yaml:"database"`
	Email    EmailConfig    `yaml:"email"`
	LLM      LLMConfig      `yaml:"llm"`
	Exports  ExportConfig   `yaml:"exports"`
	Schedule ScheduleConfig `yaml:"schedule"`

	LiveCache struct {
		RedisURL string `yaml:"-"` // Loaded from environment
	} `yaml:"-"`

	Features struct {
		EnableMetrics bool `yaml:"enable_metrics"`
		EnableDebug   bool `yaml:"enable_debug"`
	} `yaml:"features"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	// Load sensitive values from environment
	cfg.App.SecretKey = os.Getenv("APP_SECRET_KEY")
	cfg.Email.AccessKeyID = os.Getenv("AWS_SES_ACCESS_KEY_ID")
	cfg.Email.SecretAccessKey = os.Getenv("AWS_SES_SECRET_ACCESS_KEY")
	cfg.LLM.APIKey = os.Getenv("LLM_API_KEY")
	cfg.Exports.AccessKeyID = os.Getenv("EXPORT_S3_ACCESS_KEY_ID")
	cfg.Exports.SecretAccessKey = os.Getenv("EXPORT_S3_SECRET_ACCESS_KEY")
	cfg.LiveCache.RedisURL = os.Getenv("REDIS_URL")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML configuration and applies defaults without touching the environment.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Environment == "" {
		c.App.Environment = "development"
	}
	if c.Exports.Sink == "" {
		c.Exports.Sink = "file"
	}
	if c.Exports.Sink == "file" && c.Exports.Directory == "" {
		c.Exports.Directory = "data/exports"
	}
	if c.Email.ReminderCooldownHours == 0 {
		c.Email.ReminderCooldownHours = 72
	}
	if c.Schedule.ComplianceDigest == "" {
		c.Schedule.ComplianceDigest = "0 6 * * 1"
	}
	if c.Schedule.StandingsRefresh == "" {
		c.Schedule.StandingsRefresh = "*/30 * * * *"
	}
}

// EmailEnabled reports whether SES credentials are available.
func (c *Config) EmailEnabled() bool {
	return c.Email.AccessKeyID != "" && c.Email.SecretAccessKey != "" && c.Email.Region != "" && c.Email.Sender != ""
}

// LLMEnabled reports whether an LLM endpoint is configured.
func (c *Config) LLMEnabled() bool {
	return strings.TrimSpace(c.LLM.Endpoint) != ""
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	switch c.Exports.Sink {
	case "file":
		if c.Exports.Directory == "" {
			return fmt.Errorf("exports directory is required for file sink")
		}
	case "s3":
		if c.Exports.Bucket == "" {
			return fmt.Errorf("exports bucket is required for s3 sink")
		}
		if c.Exports.Region == "" {
			return fmt.Errorf("exports region is required for s3 sink")
		}
	default:
		return fmt.Errorf("unsupported exports sink: %s", c.Exports.Sink)
	}

	if c.Email.ReminderCooldownHours < 0 {
		return fmt.Errorf("email reminder_cooldown_hours must be 0 or greater")
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	for name, expr := range map[string]string{
		"schedule.compliance_digest": c.Schedule.ComplianceDigest,
		"schedule.standings_refresh": c.Schedule.StandingsRefresh,
	} {
		if _, err := parser.Parse(expr); err != nil {
			return fmt.Errorf("%s is not a valid cron expression: %w", name, err)
		}
	}

	return nil
}
