package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port               int      `mapstructure:"port"`
		StaticDir          string   `mapstructure:"static_dir"`
		CorsAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
		CorsAllowedMethods []string `mapstructure:"cors_allowed_methods"`
		CorsAllowedHeaders []string `mapstructure:"cors_allowed_headers"`
	} `mapstructure:"server"`

	Database struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"database"`

	Mail struct {
		SMTPServer   string   `mapstructure:"smtp_server"`
		SMTPPort     int      `mapstructure:"smtp_port"`
		SMTPUser     string   `mapstructure:"smtp_user"`
		SMTPPassword string   `mapstructure:"smtp_password"`
		From         string   `mapstructure:"from"`
		To           []string `mapstructure:"to"`
	} `mapstructure:"mail"`

	Renderer struct {
		APIKey  string `mapstructure:"api_key"`
		APIURL  string `mapstructure:"api_url"`
		TempDir string `mapstructure:"temp_dir"`
	} `mapstructure:"renderer"`

	Report struct {
		Enabled    bool   `mapstructure:"enabled"`
		Schedule   string `mapstructure:"schedule"`
		CronSecret string `mapstructure:"cron_secret"`
	} `mapstructure:"report"`

	Cache struct {
		RedisURL string `mapstructure:"redis_url"`
	} `mapstructure:"cache"`

	Archive struct {
		Bucket    string `mapstructure:"bucket"`
		Endpoint  string `mapstructure:"endpoint"`
		Region    string `mapstructure:"region"`
		AccessKey string `mapstructure:"access_key"`
		SecretKey string `mapstructure:"secret_key"`
	} `mapstructure:"archive"`

	Logging struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"logging"`
}

func Load() *Config {
	// Load .env file if exists (ignore error in production)
	godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile("configs/config.yaml")

	v.AutomaticEnv()

	// Binary works without a config file
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.static_dir", "static")
	v.SetDefault("server.cors_allowed_origins", []string{"*"})
	v.SetDefault("server.cors_allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("server.cors_allowed_headers", []string{"*"})
	v.SetDefault("database.url", "sqlite://on_muhasebe.db")
	v.SetDefault("mail.smtp_server", "smtp.gmail.com")
	v.SetDefault("mail.smtp_port", 587)
	v.SetDefault("renderer.api_url", "https://api.html2pdf.app/v1/generate")
	v.SetDefault("report.schedule", "0 9 1 * *")
	v.SetDefault("archive.region", "auto")
	v.SetDefault("logging.level", "info")

	if err := v.ReadInConfig(); err != nil {
		log.Printf("[Config] No config file found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("config unmarshal error: %v", err)
	}

	applyEnvOverrides(&cfg)
	return &cfg
}

// applyEnvOverrides maps the plain deployment variables onto the nested config.
func applyEnvOverrides(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			cfg.Server.Port = n
		}
	}
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.Server.CorsAllowedOrigins = splitList(origins)
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}

	if server := os.Getenv("SMTP_SERVER"); server != "" {
		cfg.Mail.SMTPServer = server
	}
	if port := os.Getenv("SMTP_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			cfg.Mail.SMTPPort = n
		}
	}
	if user := os.Getenv("SMTP_USER"); user != "" {
		cfg.Mail.SMTPUser = user
	}
	if pass := os.Getenv("SMTP_PASSWORD"); pass != "" {
		cfg.Mail.SMTPPassword = pass
	}
	if from := os.Getenv("EMAIL_FROM"); from != "" {
		cfg.Mail.From = from
	}
	if cfg.Mail.From == "" {
		cfg.Mail.From = cfg.Mail.SMTPUser
	}
	if to := os.Getenv("EMAIL_TO"); to != "" {
		cfg.Mail.To = splitList(to)
	}

	if key := os.Getenv("PDF_API_KEY"); key != "" {
		cfg.Renderer.APIKey = key
	}
	if dir := os.Getenv("PDF_TEMP_DIR"); dir != "" {
		cfg.Renderer.TempDir = dir
	}
	if cfg.Renderer.TempDir == "" {
		cfg.Renderer.TempDir = os.TempDir()
	}

	if secret := os.Getenv("CRON_SECRET"); secret != "" {
		cfg.Report.CronSecret = secret
	}
	if enabled := os.Getenv("MONTHLY_REPORT_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			cfg.Report.Enabled = b
		}
	}

	if url := os.Getenv("REDIS_URL"); url != "" {
		cfg.Cache.RedisURL = url
	}

	if bucket := os.Getenv("ARCHIVE_BUCKET"); bucket != "" {
		cfg.Archive.Bucket = bucket
	}
	if endpoint := os.Getenv("ARCHIVE_ENDPOINT"); endpoint != "" {
		cfg.Archive.Endpoint = endpoint
	}
	if region := os.Getenv("ARCHIVE_REGION"); region != "" {
		cfg.Archive.Region = region
	}
	if key := os.Getenv("ARCHIVE_ACCESS_KEY"); key != "" {
		cfg.Archive.AccessKey = key
	}
	if secret := os.Getenv("ARCHIVE_SECRET_KEY"); secret != "" {
		cfg.Archive.SecretKey = secret
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}

// Validate reports configuration that makes the server unusable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.URL) == "" {
		return errors.New("database url is required")
	}
	if c.Server.Port <= 0 {
		return errors.New("server port must be positive")
	}
	return nil
}

// MailConfigured is true when outbound mail has credentials and a recipient.
func (c *Config) MailConfigured() bool {
	return c.Mail.SMTPUser != "" && c.Mail.SMTPPassword != "" && len(c.Mail.To) > 0
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
