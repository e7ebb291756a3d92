// Package cmd implements the seismic command line interface.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/oasisprotocol/oasis-core/go/common/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/SeismicSystems/seismic-go/cli/config"
)

const (
	defaultMarker = " (*)"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string

	rootCmd = &cobra.Command{
		Use:     "seismic",
		Short:   "CLI for interacting with Seismic networks",
		Version: "0.1.0",
	}
)

var logLevels = map[string]logging.Level{
	"debug": logging.LevelDebug,
	"info":  logging.LevelInfo,
	"warn":  logging.LevelWarn,
	"error": logging.LevelError,
}

var logFormats = map[string]logging.Format{
	"logfmt": logging.FmtLogfmt,
	"json":   logging.FmtJSON,
}

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func initLogging() {
	level, ok := logLevels[strings.ToLower(logLevel)]
	if !ok {
		cobra.CheckErr(fmt.Errorf("unknown log level '%s'", logLevel))
	}
	format, ok := logFormats[strings.ToLower(logFormat)]
	if !ok {
		cobra.CheckErr(fmt.Errorf("unknown log format '%s'", logFormat))
	}
	err := logging.Initialize(os.Stderr, format, level, nil)
	cobra.CheckErr(err)
}

func initConfig() {
	v := viper.New()

	if cfgFile != "" {
		// Use config file from the flag.
		v.SetConfigFile(cfgFile)
	} else {
		const configFilename = "cli.toml"
		configDir := config.Directory()
		configPath := filepath.Join(configDir, configFilename)

		v.AddConfigPath(configDir)
		v.SetConfigType("toml")
		v.SetConfigName(configFilename)

		// Ensure the configuration file exists.
		_ = os.MkdirAll(configDir, 0o700)
		if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
			if _, err := os.Create(configPath); err != nil {
				cobra.CheckErr(fmt.Errorf("failed to create configuration file: %w", err))
			}

			// Populate the initial configuration file with defaults.
			config.ResetDefaults()
			_ = config.Save(v)
		}
	}

	_ = v.ReadInConfig()

	// Load and validate global configuration.
	err := config.Load(v)
	cobra.CheckErr(err)
	err = config.Global().Validate()
	cobra.CheckErr(err)
}

func init() {
	cobra.OnInitialize(initLogging, initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file to use")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log.level", "warn", "log level [debug, info, warn, error]")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log.format", "logfmt", "log format [logfmt, json]")

	rootCmd.AddCommand(networkCmd)
	rootCmd.AddCommand(accountCmd)
	rootCmd.AddCommand(enclaveCmd)
	rootCmd.AddCommand(txCmd)
}
