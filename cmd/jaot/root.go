package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/wippyai/jaot/classpath"
	"github.com/wippyai/jaot/compiler"
	"github.com/wippyai/jaot/config"
	"github.com/wippyai/jaot/errors"
	"github.com/wippyai/jaot/graph"
)

// skipConfig marks commands that run without loading the configuration.
const skipConfig = "skip-config"

var (
	configFile string
	cfg        *config.Config
	logger     = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "jaot",
	Short: "jaot - ahead-of-time compiler front end for JVM class files",
	Long: `jaot reads a main class and everything it reaches from a class path of
jar files and directories, orders the classes so that every superclass and
interface precedes its subclasses, and emits a single C++ header declaring
them all.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentPreRunE = loadConfig
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default ./jaot.toml, .yaml or .json)")
	flags.StringSliceP("classpath", "c", nil, "class path entries: jar files and directories")
	flags.String("edges", "", "edge policy: strict (default) or structural")
	flags.String("index-cache", "", "sqlite file remembering which jar declares each class")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("log-format", "", "log format: console or json")
}

// bindings maps config keys to persistent flag names.
var bindings = map[string]string{
	"classpath":   "classpath",
	"edges":       "edges",
	"index_cache": "index-cache",
	"log.level":   "log-level",
	"log.format":  "log-format",
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[skipConfig] != "" {
		return nil
	}

	v := config.NewViper(configFile)
	for key, name := range bindings {
		if err := v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			return errors.Wrap(errors.PhaseConfig, errors.KindInvalidConfig, err, "bind --"+name)
		}
	}
	if err := bindLocal(v, cmd); err != nil {
		return err
	}

	c, err := config.FromViper(v, configFile != "")
	if err != nil {
		return err
	}
	l, err := c.Log.Logger()
	if err != nil {
		return err
	}
	cfg = c
	setLogger(l)
	if used := v.ConfigFileUsed(); used != "" {
		logger.Debug("config loaded", zap.String("path", used))
	}
	return nil
}

// bindLocal binds command flags named after config keys.
func bindLocal(v *viper.Viper, cmd *cobra.Command) error {
	for _, key := range []string{"output", "verify", "disassemble"} {
		f := cmd.LocalFlags().Lookup(key)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return errors.Wrap(errors.PhaseConfig, errors.KindInvalidConfig, err, "bind --"+key)
		}
	}
	return nil
}

func setLogger(l *zap.Logger) {
	logger = l
	compiler.SetLogger(l)
	graph.SetLogger(l)
	classpath.SetLogger(l)
}

// openClassPath opens the configured class path, attaching and refreshing
// the index cache when one is configured. The returned func releases both.
func openClassPath() (*classpath.ClassPath, func(), error) {
	cp := classpath.New(cfg.ClassPath...)
	if cfg.IndexCache == "" {
		return cp, func() { cp.Close() }, nil
	}

	if dir := filepath.Dir(cfg.IndexCache); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidConfig, err, "create index directory")
		}
	}
	idx, err := classpath.OpenIndex(cfg.IndexCache)
	if err != nil {
		return nil, nil, err
	}
	cp.UseIndex(idx)
	closeAll := func() {
		cp.Close()
		idx.Close()
	}
	if err := cp.BuildIndex(); err != nil {
		closeAll()
		return nil, nil, err
	}
	return cp, closeAll, nil
}

// binaryName accepts com.example.Main, com/example/Main or Main.class forms.
func binaryName(arg string) string {
	name := strings.TrimSuffix(arg, ".class")
	return strings.ReplaceAll(name, ".", "/")
}
