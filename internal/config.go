package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the CLI settings after merging defaults, config file,
// NEURALGUARD_* environment variables and flags (in increasing priority).
type Config struct {
	StateDir      string        `mapstructure:"state_dir"`
	Storage       string        `mapstructure:"storage"`
	LoginDelay    time.Duration `mapstructure:"login_delay"`
	AnalysisDelay time.Duration `mapstructure:"analysis_delay"`
	Format        string        `mapstructure:"format"`
	LogLevel      string        `mapstructure:"log_level"`
}

// flagBindings maps config keys to the flag names that override them
var flagBindings = map[string]string{
	"state_dir":      "state-dir",
	"storage":        "storage",
	"login_delay":    "login-delay",
	"analysis_delay": "analysis-delay",
	"format":         "format",
	"log_level":      "log-level",
}

// DefaultStateDir is ~/.neuralguard, or .neuralguard when there is no home
func DefaultStateDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".neuralguard"
	}
	return filepath.Join(homeDir, ".neuralguard")
}

// LoadConfig reads configuration. An explicit configPath must exist; the
// default config.yaml in the state directory is optional.
func LoadConfig(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultStateDir())
	}

	v.SetEnvPrefix("NEURALGUARD")
	v.AutomaticEnv()

	setConfigDefaults(v)

	if flags != nil {
		for key, name := range flagBindings {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		LogDebug("No config file found, using defaults")
	} else {
		LogDebug("Loaded config from %s", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("state_dir", DefaultStateDir())
	v.SetDefault("storage", StorageFile)
	v.SetDefault("login_delay", DefaultLoginDelay)
	v.SetDefault("analysis_delay", DefaultAnalysisDelay)
	v.SetDefault("format", "md")
	v.SetDefault("log_level", LogLevelInfo.String())
}

// Validate checks values that viper cannot
func (c *Config) Validate() error {
	if c.StateDir == "" {
		return fmt.Errorf("invalid config: state_dir must not be empty")
	}
	if c.Storage != StorageFile && c.Storage != StorageSQLite {
		return fmt.Errorf("invalid config: unsupported storage %q (supported: file, sqlite)", c.Storage)
	}
	if c.LoginDelay < 0 || c.AnalysisDelay < 0 {
		return fmt.Errorf("invalid config: delays must not be negative")
	}
	if _, ok := ParseLogLevel(c.LogLevel); !ok {
		return fmt.Errorf("invalid config: unknown log_level %q (supported: error, warn, info, debug)", c.LogLevel)
	}
	return nil
}
