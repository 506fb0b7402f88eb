// Package config loads sensorgen settings from flags, environment, an
// optional config file and an optional .env file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/zarlcorp/sensorgen/internal/device"
	"github.com/zarlcorp/sensorgen/internal/export"
	"github.com/zarlcorp/sensorgen/internal/output"
)

const (
	envPrefix  = "SENSORGEN"
	configName = "sensorgen"
)

// Config holds the settings of one run.
type Config struct {
	Count          int    `mapstructure:"count"`
	ClientPrefix   string `mapstructure:"client_prefix"`
	UserPrefix     string `mapstructure:"user_prefix"`
	PasswordPrefix string `mapstructure:"password_prefix"`

	OutputDir    string `mapstructure:"output_dir"`
	CSVFile      string `mapstructure:"csv_file"`
	JSONFile     string `mapstructure:"json_file"`
	Hashed       bool   `mapstructure:"hashed"`
	Ledger       bool   `mapstructure:"ledger"`
	LedgerFormat string `mapstructure:"ledger_format"`
	XLSX         bool   `mapstructure:"xlsx"`

	Simulator Simulator `mapstructure:"simulator"`

	LogLevel string `mapstructure:"log_level"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

// Simulator holds the optional per-client simulator settings.
type Simulator struct {
	Enabled            bool   `mapstructure:"enabled"`
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	UseTLS             bool   `mapstructure:"use_tls"`
	State              string `mapstructure:"state"`
	CollectionInterval int    `mapstructure:"collection_interval"`
	DeviceType         string `mapstructure:"device_type"`
}

// flag name -> config key
var flagKeys = map[string]string{
	"count":           "count",
	"client-prefix":   "client_prefix",
	"user-prefix":     "user_prefix",
	"password-prefix": "password_prefix",
	"out":             "output_dir",
	"csv-file":        "csv_file",
	"json-file":       "json_file",
	"hashed":          "hashed",
	"ledger":          "ledger",
	"ledger-format":   "ledger_format",
	"xlsx":            "xlsx",
	"simulator":       "simulator.enabled",
	"broker-host":     "simulator.host",
	"broker-port":     "simulator.port",
	"tls":             "simulator.use_tls",
	"log-level":       "log_level",
}

func setDefaults(v *viper.Viper) {
	prof := export.DefaultSimulatorProfile()

	v.SetDefault("count", device.DefaultCount)
	v.SetDefault("client_prefix", device.DefaultPrefix)
	v.SetDefault("user_prefix", device.DefaultPrefix)
	v.SetDefault("password_prefix", device.DefaultPrefix)
	v.SetDefault("output_dir", ".")
	v.SetDefault("csv_file", output.CSVFile)
	v.SetDefault("json_file", output.SettingsFile)
	v.SetDefault("hashed", false)
	v.SetDefault("ledger", false)
	v.SetDefault("ledger_format", string(export.LedgerYAML))
	v.SetDefault("xlsx", false)
	v.SetDefault("simulator.enabled", false)
	v.SetDefault("simulator.host", prof.Host)
	v.SetDefault("simulator.port", prof.Port)
	v.SetDefault("simulator.use_tls", prof.UseTLS)
	v.SetDefault("simulator.state", prof.State)
	v.SetDefault("simulator.collection_interval", prof.CollectionInterval)
	v.SetDefault("simulator.device_type", prof.DeviceType)
	v.SetDefault("log_level", "warn")
}

// RegisterFlags adds the generation flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a config file (default ./sensorgen.yaml if present)")
	fs.Int("count", device.DefaultCount, "number of identities to generate")
	fs.String("client-prefix", device.DefaultPrefix, "client id prefix")
	fs.String("user-prefix", device.DefaultPrefix, "username prefix")
	fs.String("password-prefix", device.DefaultPrefix, "password prefix")
	fs.String("out", ".", "output directory")
	fs.String("csv-file", output.CSVFile, "broker user-import file name")
	fs.String("json-file", output.SettingsFile, "simulator settings file name")
	fs.Bool("hashed", false, "write salted sha256 hashes instead of plaintext passwords to the csv")
	fs.Bool("ledger", false, "also write a mochi-mqtt auth ledger (prefixes must not contain * # +)")
	fs.String("ledger-format", string(export.LedgerYAML), "ledger format (yaml|json)")
	fs.Bool("xlsx", false, "also write an xlsx workbook")
	fs.Bool("simulator", false, "add simulator connection settings to each json entry")
	fs.String("broker-host", export.DefaultSimulatorProfile().Host, "broker host for simulator settings")
	fs.Int("broker-port", export.DefaultSimulatorProfile().Port, "broker port for simulator settings")
	fs.Bool("tls", false, "use tls in simulator settings")
	fs.String("log-level", "warn", "log level (debug|info|warn|error)")
}

// Load resolves the config. fs may be nil or only partly registered.
func Load(fs *pflag.FlagSet) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := readConfigFile(v, fs); err != nil {
		return nil, err
	}

	if fs != nil {
		for name, key := range flagKeys {
			f := fs.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfigFile(v *viper.Viper, fs *pflag.FlagSet) error {
	if fs != nil {
		if f := fs.Lookup("config"); f != nil && f.Value.String() != "" {
			v.SetConfigFile(f.Value.String())
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("read config %s: %w", f.Value.String(), err)
			}
			return nil
		}
	}

	v.SetConfigName(configName)
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Validate checks the settings that are not covered by device.Config.
func (c *Config) Validate() error {
	if err := c.Device().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := export.ParseLedgerFormat(c.LedgerFormat); err != nil {
		return fmt.Errorf("config: ledger_format: %w", err)
	}
	if c.Ledger {
		if err := export.CheckLedgerPrefixes(c.Device()); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("config: log_level: %w", err)
	}
	if c.CSVFile == "" || c.JSONFile == "" {
		return errors.New("config: output file names must not be empty")
	}
	return nil
}

// Device returns the generator config.
func (c *Config) Device() device.Config {
	return device.Config{
		Count:          c.Count,
		ClientPrefix:   c.ClientPrefix,
		UserPrefix:     c.UserPrefix,
		PasswordPrefix: c.PasswordPrefix,
	}
}

// Profile returns the simulator profile, or nil when disabled.
func (c *Config) Profile() *export.SimulatorProfile {
	if !c.Simulator.Enabled {
		return nil
	}
	return &export.SimulatorProfile{
		UseTLS:             c.Simulator.UseTLS,
		Host:               c.Simulator.Host,
		Port:               c.Simulator.Port,
		State:              c.Simulator.State,
		CollectionInterval: c.Simulator.CollectionInterval,
		DeviceType:         c.Simulator.DeviceType,
	}
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, err
	}
	return l, nil
}
