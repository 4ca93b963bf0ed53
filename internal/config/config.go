package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Facture"`
		Port int    `envconfig:"PORT" default:"5001"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"facture"`
	}

	Archive struct {
		// Dir is where generated PDFs land, kept under the historical name.
		Dir string `envconfig:"ARCHIVE_DIR" default:"generated_invoices"`
	}

	Schema struct {
		// Path to the CII XSD set. Empty keeps the structural check to
		// well-formedness only.
		Path string `envconfig:"CII_SCHEMA_PATH"`
	}

	Pipeline struct {
		Timeout time.Duration `envconfig:"PIPELINE_TIMEOUT" default:"30s"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
