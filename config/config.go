// Package config loads compiler settings from a file, the environment and
// built-in defaults, in that order of precedence after command line flags.
package config

import (
	"bytes"
	stderrors "errors"
	"io"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/jaot/compiler"
	"github.com/wippyai/jaot/errors"
	"github.com/wippyai/jaot/graph"
)

// FileName is the config file name looked up in the working directory,
// without extension. Any format viper reads is accepted.
const FileName = "jaot"

// EnvPrefix prefixes environment overrides, e.g. JAOT_LOG_LEVEL.
const EnvPrefix = "JAOT"

// Config is the complete jaot configuration.
type Config struct {
	Output      string   `mapstructure:"output" toml:"output"`
	Edges       string   `mapstructure:"edges" toml:"edges"`
	IndexCache  string   `mapstructure:"index_cache" toml:"index_cache"`
	ClassPath   []string `mapstructure:"classpath" toml:"classpath"`
	Verify      bool     `mapstructure:"verify" toml:"verify"`
	Disassemble bool     `mapstructure:"disassemble" toml:"disassemble"`
	Resolver    Resolver `mapstructure:"resolver" toml:"resolver"`
	Log         Log      `mapstructure:"log" toml:"log"`
}

// Resolver holds resolver settings.
type Resolver struct {
	IgnoreAttributes []string `mapstructure:"ignore_attributes" toml:"ignore_attributes"`
}

// Log holds logging settings.
type Log struct {
	Level  string `mapstructure:"level" toml:"level"`
	Format string `mapstructure:"format" toml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ClassPath: []string{"."},
		Output:    "-",
		Edges:     graph.StrictEdges.String(),
		Resolver:  Resolver{IgnoreAttributes: []string{}},
		Log:       Log{Level: "warn", Format: "console"},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("classpath", d.ClassPath)
	v.SetDefault("output", d.Output)
	v.SetDefault("edges", d.Edges)
	v.SetDefault("verify", d.Verify)
	v.SetDefault("disassemble", d.Disassemble)
	v.SetDefault("index_cache", d.IndexCache)
	v.SetDefault("resolver.ignore_attributes", d.Resolver.IgnoreAttributes)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// NewViper returns a viper instance with defaults, environment binding and
// the config file location set. An empty path searches the working
// directory for FileName.
func NewViper(path string) *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(".")
	}
	return v
}

// Load reads the configuration. A missing file is only an error when path
// names it explicitly.
func Load(path string) (*Config, error) {
	return FromViper(NewViper(path), path != "")
}

// FromViper reads the config file v points at and decodes the result.
func FromViper(v *viper.Viper, required bool) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var missing viper.ConfigFileNotFoundError
		if required || !stderrors.As(err, &missing) {
			return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidConfig, err, "read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidConfig, err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that every setting has a usable value.
func (c *Config) Validate() error {
	if len(c.ClassPath) == 0 {
		return errors.InvalidConfig(errors.PhaseConfig, "classpath", "at least one entry is required")
	}
	for _, e := range c.ClassPath {
		if strings.TrimSpace(e) == "" {
			return errors.InvalidConfig(errors.PhaseConfig, "classpath", "empty entry")
		}
	}
	if c.Output == "" {
		return errors.InvalidConfig(errors.PhaseConfig, "output", `use "-" for standard output`)
	}
	if _, err := graph.ParseEdgePolicy(c.Edges); err != nil {
		return err
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.InvalidConfig(errors.PhaseConfig, "log.level", err.Error())
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return errors.InvalidConfig(errors.PhaseConfig, "log.format", "must be console or json, got "+c.Log.Format)
	}
	return nil
}

// CompilerOptions translates the configuration into pipeline options.
func (c *Config) CompilerOptions() (compiler.Options, error) {
	policy, err := graph.ParseEdgePolicy(c.Edges)
	if err != nil {
		return compiler.Options{}, err
	}
	return compiler.Options{
		IgnoreAttributes: c.Resolver.IgnoreAttributes,
		Policy:           policy,
		Verify:           c.Verify,
		Disassemble:      c.Disassemble,
	}, nil
}

// Logger builds a zap logger writing to standard error.
func (l Log) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return nil, errors.InvalidConfig(errors.PhaseConfig, "log.level", err.Error())
	}
	zc := zap.NewProductionConfig()
	if l.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	zc.DisableStacktrace = true
	return zc.Build()
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidConfig, err, "encode config")
	}
	_, err = io.Copy(w, bytes.NewReader(data))
	return err
}

// WriteFile writes c as TOML to path. An existing file is kept unless
// overwrite is set.
func (c *Config) WriteFile(path string, overwrite bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return errors.InvalidConfig(errors.PhaseConfig, "path", path+" already exists")
		}
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidConfig, err, "write "+path)
	}
	if err := c.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
