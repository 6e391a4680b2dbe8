package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Processor  ProcessorConfig  `yaml:"processor"`
	AI         AIConfig         `yaml:"ai"`
	Video      VideoConfig      `yaml:"video"`
	Email      EmailConfig      `yaml:"email"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Schedule   string           `yaml:"schedule"`
}

type ProcessorConfig struct {
	PDFPath    string `yaml:"pdf_path"`
	OutputPath string `yaml:"output_path"`
	CacheDir   string `yaml:"cache_dir"`
	Workers    int    `yaml:"workers"`
}

type AIConfig struct {
	GeminiAPIKey      string `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	Model             string `yaml:"model"`
	BaseURL           string `yaml:"base_url"`
	TimeoutSeconds    int    `yaml:"timeout_seconds"`
	MaxAttempts       int    `yaml:"max_attempts"`
	RetryDelaySeconds int    `yaml:"retry_delay_seconds"`
}

type VideoConfig struct {
	YouTubeAPIKey string `yaml:"youtube_api_key" env:"YOUTUBE_API_KEY"`
	MaxResults    int    `yaml:"max_results"`
}

type EmailConfig struct {
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port"`
	Username   string `yaml:"username" env:"EMAIL_USERNAME"`
	Password   string `yaml:"password" env:"EMAIL_PASSWORD"`
	FromEmail  string `yaml:"from_email"`
	ToEmail    string `yaml:"to_email"`
}

type MonitoringConfig struct {
	HealthPort int `yaml:"health_port"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}

	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
	}

	if cfg.AI.GeminiAPIKey == "" {
		cfg.AI.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.Video.YouTubeAPIKey == "" {
		cfg.Video.YouTubeAPIKey = os.Getenv("YOUTUBE_API_KEY")
	}
	if cfg.Email.Username == "" {
		cfg.Email.Username = os.Getenv("EMAIL_USERNAME")
	}
	if cfg.Email.Password == "" {
		cfg.Email.Password = os.Getenv("EMAIL_PASSWORD")
	}

	cfg.ApplyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// ApplyDefaults fills in the fixed operational defaults for anything the
// config file left unset.
func (c *Config) ApplyDefaults() {
	if c.AI.Model == "" {
		c.AI.Model = "gemini-1.5-flash"
	}
	if c.AI.BaseURL == "" {
		c.AI.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if c.AI.TimeoutSeconds == 0 {
		c.AI.TimeoutSeconds = 30
	}
	if c.AI.MaxAttempts == 0 {
		c.AI.MaxAttempts = 3
	}
	if c.AI.RetryDelaySeconds == 0 {
		c.AI.RetryDelaySeconds = 1
	}
	if c.Processor.CacheDir == "" {
		c.Processor.CacheDir = ".cache"
	}
	if c.Processor.Workers == 0 {
		c.Processor.Workers = 4
	}
	if c.Processor.OutputPath == "" {
		c.Processor.OutputPath = "syllabus_content"
	}
	if c.Video.MaxResults == 0 {
		c.Video.MaxResults = 3
	}
	if c.Monitoring.HealthPort == 0 {
		c.Monitoring.HealthPort = 8080
	}
	if c.Schedule == "" {
		c.Schedule = "0 0 9 * * 1" // Weekly refresh, Monday 9 AM
	}
}

func (c *Config) validate() error {
	if c.AI.GeminiAPIKey == "" {
		return fmt.Errorf("Gemini API key is required (set GEMINI_API_KEY or ai.gemini_api_key)")
	}
	if c.EmailConfigured() {
		if c.Email.SMTPServer == "" || c.Email.SMTPPort == 0 {
			return fmt.Errorf("email.smtp_server and email.smtp_port are required when email.to_email is set")
		}
		if c.Email.Username == "" || c.Email.Password == "" {
			return fmt.Errorf("email credentials are required when email.to_email is set (EMAIL_USERNAME / EMAIL_PASSWORD)")
		}
	}
	return nil
}

// EmailConfigured reports whether report delivery by email is enabled.
// YouTube and email are both optional: without them the pipeline still runs,
// it just skips video lookup or delivery.
func (c *Config) EmailConfigured() bool {
	return c.Email.ToEmail != ""
}
