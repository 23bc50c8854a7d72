// Package cmd provides the fresco command-line interface.
//
// Configuration follows the usual precedence: command-line flags override
// FRESCO_-prefixed environment variables, which override the configuration
// file (.fresco.yml by default, or the path given via --config or
// FRESCO_CONFIG_FILE).
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "fresco",
	Short: "Server-rendered web applications with island hydration",
	Long: `Fresco hosts server-rendered web applications built from declarative
modules and controllers, bridging server markup to client-side hydration.

Quick Start:
  fresco serve                   Start the demo application server
  fresco version                 Show version information

Configuration is read from .fresco.yml and FRESCO_* environment variables
(FRESCO_SERVER_PORT, FRESCO_DEVELOPMENT_HOT_RELOAD, ...).`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default .fresco.yml; FRESCO_CONFIG_FILE also works)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("FRESCO_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".fresco")
	}

	viper.SetEnvPrefix("FRESCO")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing config file is fine; defaults and environment cover it.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
