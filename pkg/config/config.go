package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. NCBISORT_TARGET.
const EnvPrefix = "NCBISORT"

// Setting keys. Each is also the name of the CLI flag that sets it.
const (
	KeyNCBI   = "ncbi"
	KeyTarget = "target"
	KeyConfig = "config"
)

var (
	// ErrMissingSetting is returned when a required setting resolves empty.
	ErrMissingSetting = errors.New("missing required setting")
	// ErrConfigFile is returned when an explicitly named config file cannot be read.
	ErrConfigFile = errors.New("config file error")
)

// Config holds the resolved settings for one run. It is built once by Load
// and never modified.
type Config struct {
	ncbiRoot string
	target   string
	source   string
}

// NCBIRoot is the unzipped download root (usually called ncbi_dataset).
func (c Config) NCBIRoot() string { return c.ncbiRoot }

// Target is the directory populated with species folders.
func (c Config) Target() string { return c.target }

// ConfigFile is the config file that was read, if any.
func (c Config) ConfigFile() string { return c.source }

// Load resolves settings from flags, NCBISORT_* environment variables and an
// optional config file named by the --config flag, in that precedence order.
// Every key in required must resolve to a non-empty value.
func Load(flags *pflag.FlagSet, required ...string) (Config, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	cfg := Config{}
	if file := v.GetString(KeyConfig); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("%w: %s: %v", ErrConfigFile, file, err)
		}
		cfg.source = v.ConfigFileUsed()
	}

	cfg.ncbiRoot = strings.TrimSpace(v.GetString(KeyNCBI))
	cfg.target = strings.TrimSpace(v.GetString(KeyTarget))

	for _, key := range required {
		if strings.TrimSpace(v.GetString(key)) == "" {
			return Config{}, fmt.Errorf("%w: --%s (or %s_%s)", ErrMissingSetting, key, EnvPrefix, strings.ToUpper(key))
		}
	}
	return cfg, nil
}
