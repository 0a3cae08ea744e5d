package config

import (
	"os"
	"strconv"

	"adsight/internal/errors"
	"adsight/internal/stattest"
)

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Data       DataConfig
	Thresholds ThresholdConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds database connection settings. URL may be empty;
// the CLI then runs without persistence.
type DatabaseConfig struct {
	URL string
}

// DataConfig holds dataset source settings
type DataConfig struct {
	CSVFile   string
	ExcelFile string
	Sheet     string
}

// ThresholdConfig surfaces the tunable statistical constants. Values
// default to the engine's standard constants; environment variables
// override them for calibration experiments.
type ThresholdConfig struct {
	MinSamplesForTTest int
	BootstrapIters     int
	BootstrapSeed      int64
	ChangePointMinSeg  int
	ChangePointScore   float64
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envOr("PORT", "8080"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Data: DataConfig{
			CSVFile:   os.Getenv("DATA_CSV_FILE"),
			ExcelFile: os.Getenv("DATA_EXCEL_FILE"),
			Sheet:     envOr("DATA_EXCEL_SHEET", "Sheet1"),
		},
	}

	defaults := stattest.DefaultCompareConfig()
	cpDefaults := stattest.DefaultChangePointConfig()
	var err error
	if cfg.Thresholds.MinSamplesForTTest, err = envInt("THRESH_MIN_SAMPLES_TTEST", defaults.MinSamplesForTTest); err != nil {
		return nil, err
	}
	if cfg.Thresholds.BootstrapIters, err = envInt("THRESH_BOOTSTRAP_ITERS", defaults.BootstrapIters); err != nil {
		return nil, err
	}
	seed, err := envInt("THRESH_BOOTSTRAP_SEED", int(defaults.Seed))
	if err != nil {
		return nil, err
	}
	cfg.Thresholds.BootstrapSeed = int64(seed)
	if cfg.Thresholds.ChangePointMinSeg, err = envInt("THRESH_CHANGEPOINT_MIN_SEG", cpDefaults.MinSegment); err != nil {
		return nil, err
	}
	if cfg.Thresholds.ChangePointScore, err = envFloat("THRESH_CHANGEPOINT_SCORE", cpDefaults.MinScore); err != nil {
		return nil, err
	}

	if cfg.Thresholds.BootstrapIters < 1 {
		return nil, errors.ConfigInvalid("THRESH_BOOTSTRAP_ITERS must be positive")
	}
	if cfg.Thresholds.ChangePointMinSeg < 1 {
		return nil, errors.ConfigInvalid("THRESH_CHANGEPOINT_MIN_SEG must be positive")
	}

	return cfg, nil
}

// EngineCompare maps the threshold settings onto comparator constants
func (c *Config) EngineCompare() stattest.CompareConfig {
	return stattest.CompareConfig{
		MinSamplesForTTest: c.Thresholds.MinSamplesForTTest,
		BootstrapIters:     c.Thresholds.BootstrapIters,
		Seed:               c.Thresholds.BootstrapSeed,
	}
}

// EngineChangePoint maps the threshold settings onto detector constants
func (c *Config) EngineChangePoint() stattest.ChangePointConfig {
	return stattest.ChangePointConfig{
		MinSegment: c.Thresholds.ChangePointMinSeg,
		MinScore:   c.Thresholds.ChangePointScore,
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.ConfigInvalid(key + " must be an integer")
	}
	return value, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.ConfigInvalid(key + " must be numeric")
	}
	return value, nil
}
