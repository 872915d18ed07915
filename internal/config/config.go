package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"

	"github.com/lytics/hll/v2"
	"github.com/lytics/hll/v2/internal/accesslog"
)

type Config struct {
	Log       LogConfig       `yaml:"log"`
	Estimator EstimatorConfig `yaml:"estimator"`
	Report    ReportConfig    `yaml:"report"`
}

type LogConfig struct {
	Path     string `yaml:"path" env:"HLL_LOG_FILE" default:"lms-stage-access.log"`
	Field    string `yaml:"field" default:"remote_addr"`
	Progress bool   `yaml:"progress" default:"false"`
}

type EstimatorConfig struct {
	Precision uint   `yaml:"precision" env:"HLL_PRECISION" default:"14"`
	Hasher    string `yaml:"hasher" env:"HLL_HASHER" default:"murmur3"`
	Workers   int    `yaml:"workers" env:"HLL_WORKERS" default:"1"`
	Sweep     []uint `yaml:"sweep"`
}

type ReportConfig struct {
	HTML    string `yaml:"html"`
	State   string `yaml:"state"`
	LogFile string `yaml:"log_file"`
}

// LoadConfig starts from the defaults, applies the environment and then the file at configPath,
// if one is given.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	config.Log.Path = getEnvOrDefault("HLL_LOG_FILE", "lms-stage-access.log")
	config.Log.Field = accesslog.DefaultField
	config.Estimator.Precision = 14
	config.Estimator.Hasher = getEnvOrDefault("HLL_HASHER", "murmur3")
	config.Estimator.Workers = 1

	if p := os.Getenv("HLL_PRECISION"); p != "" {
		v, err := strconv.ParseUint(p, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid HLL_PRECISION %q: %w", p, err)
		}
		config.Estimator.Precision = uint(v)
	}
	if w := os.Getenv("HLL_WORKERS"); w != "" {
		v, err := strconv.Atoi(w)
		if err != nil {
			return nil, fmt.Errorf("invalid HLL_WORKERS %q: %w", w, err)
		}
		config.Estimator.Workers = v
	}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	return config, nil
}

// Validate checks the values that can't be caught by the YAML decoder.
func (c *Config) Validate() error {
	if c.Log.Path == "" {
		return fmt.Errorf("log path is empty")
	}
	for _, p := range append([]uint{c.Estimator.Precision}, c.Estimator.Sweep...) {
		if p < hll.MinPrecision || p > hll.MaxPrecision {
			return fmt.Errorf("%w: %d is outside [%d,%d]", hll.ErrInvalidPrecision, p,
				hll.MinPrecision, hll.MaxPrecision)
		}
	}
	if c.Estimator.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Estimator.Workers)
	}
	if _, err := hll.HasherByName(c.Estimator.Hasher); err != nil {
		return err
	}
	return nil
}

// Hasher resolves the configured hasher name.
func (c *Config) Hasher() (hll.Hasher, error) {
	return hll.HasherByName(c.Estimator.Hasher)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
