package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	apperrors "github.com/edgard/consolidator/internal/errors"
	"github.com/edgard/consolidator/internal/sqlscript"
)

// EnvPrefix is the prefix of environment overrides, e.g. ETL_DATABASE_PATH.
const EnvPrefix = "ETL"

// Load loads and validates configuration from:
// 1. Default values
// 2. config.yaml in dir (optional)
// 3. ETL_* environment variables
func Load(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Allow missing config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, apperrors.NewConfigError("failed to read config file", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to parse config", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, apperrors.NewConfigError("invalid config", err)
	}

	return cfg, nil
}

// Validate checks the struct tags of the configuration, including the
// sqlident rule applied to every table name.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.RegisterValidation("sqlident", func(fl validator.FieldLevel) bool {
		return sqlscript.ValidIdentifier(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("failed to register sqlident validation: %w", err)
	}
	return validate.Struct(c)
}

// setDefaults sets default values for every configuration key. Every key
// needs a default so AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.path", DefaultLogPath)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)

	// Database defaults
	v.SetDefault("database.path", DefaultDBPath)

	// Script defaults, empty selects the embedded copy
	v.SetDefault("scripts.schema_path", "")
	v.SetDefault("scripts.load_path", "")

	// Output defaults
	v.SetDefault("output.dir", DefaultOutputDir)
	v.SetDefault("output.csv_file", DefaultCSVFile)
	v.SetDefault("output.report_file", DefaultReportFile)
	v.SetDefault("output.raw_dir", DefaultRawOutputDir)

	// Table defaults
	v.SetDefault("tables.consolidated", DefaultConsolidated)
	v.SetDefault("tables.managed", DefaultManagedTables)
	v.SetDefault("tables.raw", DefaultRawTables)

	// Schedule defaults, empty runs once
	v.SetDefault("schedule.cron", "")
	v.SetDefault("schedule.with_seconds", false)
}
