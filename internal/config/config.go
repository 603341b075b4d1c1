package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	applog "beanbrew/internal/log"
)

type Config struct {
	Port          string `envconfig:"PORT" default:"8080"`
	DBDSN         string `envconfig:"DB_DSN" default:"beanbrew.db"` // sqlite file in project root
	LogFile       string `envconfig:"LOG_FILE" default:"./beanbrew.log"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone      string `envconfig:"TIMEZONE" default:"Local"`
	SeedDemo      bool   `envconfig:"SEED_DEMO" default:"true"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:"admin"`
	TemplateDir   string `envconfig:"TEMPLATE_DIR" default:"./web/templates"`
}

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if _, err := cfg.Location(); err != nil {
		return Config{}, err
	}
	applog.Info(nil, "config.loaded", map[string]any{
		"port": cfg.Port, "db_dsn": cfg.DBDSN, "log_file": cfg.LogFile,
		"timezone": cfg.TimeZone, "seed_demo": cfg.SeedDemo,
	})
	return cfg, nil
}

// Location is the time zone daily reports are cut in.
func (c Config) Location() (*time.Location, error) {
	if c.TimeZone == "" || c.TimeZone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("config: TIMEZONE: %w", err)
	}
	return loc, nil
}
