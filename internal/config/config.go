package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	_ "github.com/joho/godotenv/autoload"
)

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"

	DriverSQLite = "sqlite"
	DriverJSON   = "json"
)

// Config keeps runtime settings for the planner.
type Config struct {
	Env      string         `yaml:"env" env:"ENV" env-default:"prod"`
	Storage  StorageConfig  `yaml:"storage"`
	HTTP     HTTPConfig     `yaml:"http"`
	Telegram TelegramConfig `yaml:"telegram"`
	// Members are seeded when the roster is empty.
	Members []string `yaml:"members" env:"MEMBERS" env-separator:"," env-default:"Veer,Vardaan,Avni,Drishti"`
}

type StorageConfig struct {
	Driver      string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"sqlite"`
	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL" env-default:"household_planner.db"`
	DataDir     string `yaml:"data_dir" env:"DATA_DIR" env-default:"data"`
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr" env:"HTTP_ADDR" env-default:":8080"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
	// AdminPassword guards mutating routes; empty disables them.
	AdminPassword string `yaml:"admin_password" env:"ADMIN_PASSWORD"`
}

type TelegramConfig struct {
	// Token is optional; the bot does not start without one.
	Token         string  `yaml:"token" env:"TELEGRAM_TOKEN"`
	ReportChatIDs []int64 `yaml:"report_chat_ids" env:"REPORT_CHAT_IDS" env-separator:","`
	ReportTime    string  `yaml:"report_time" env:"REPORT_TIME" env-default:"20:00"`
}

// Load reads configuration from CONFIG_FILE, when set, and then from the
// environment, which wins.
func Load() (Config, error) {
	var cfg Config

	var err error
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	cfg.Members = trimAll(cfg.Members)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects settings the planner cannot start with.
func (c Config) Validate() error {
	switch c.Env {
	case EnvDev, EnvProd, EnvLocal:
	default:
		return fmt.Errorf("unknown env %q", c.Env)
	}

	switch c.Storage.Driver {
	case DriverSQLite:
		if strings.TrimSpace(c.Storage.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required for the sqlite driver")
		}
	case DriverJSON:
		if strings.TrimSpace(c.Storage.DataDir) == "" {
			return fmt.Errorf("DATA_DIR is required for the json driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if _, err := time.Parse("15:04", strings.TrimSpace(c.Telegram.ReportTime)); err != nil {
		return fmt.Errorf("invalid REPORT_TIME %q, expected HH:MM", c.Telegram.ReportTime)
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		return fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// IsReportChat reports whether chatID receives the daily report and may run
// admin commands.
func (c Config) IsReportChat(chatID int64) bool {
	for _, id := range c.Telegram.ReportChatIDs {
		if id == chatID {
			return true
		}
	}
	return false
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
