package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fresco-dev/fresco/internal/app"
	"github.com/fresco-dev/fresco/internal/config"
	"github.com/fresco-dev/fresco/internal/logging"
	"github.com/fresco-dev/fresco/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the application server",
	Long: `Start the Fresco application server.

Without a project-provided module set this hosts the built-in welcome
application, which exercises rendering, hydration data, and the JSON
pipeline end to end.

Examples:
  fresco serve                       # defaults from .fresco.yml
  fresco serve --port 3000           # override the port
  FRESCO_SERVER_PORT=3000 fresco serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "Port to serve on")
	serveCmd.Flags().String("host", "localhost", "Host to bind to")
	serveCmd.Flags().String("environment", "", "Environment (development, production)")
	serveCmd.Flags().Bool("hot-reload", false, "Enable live reload in development")

	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.environment", serveCmd.Flags().Lookup("environment"))
	_ = viper.BindPFlag("development.hot_reload", serveCmd.Flags().Lookup("hot-reload"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := buildLogger()

	a, err := app.New(cfg, logger, welcomeModule())
	if err != nil {
		return fmt.Errorf("failed to assemble application: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	fmt.Printf("Fresco %s listening at http://%s\n", version.Short(), cfg.Address())
	return a.Start(ctx)
}

func buildLogger() logging.Logger {
	level := logging.LevelInfo
	switch viper.GetString("log.level") {
	case "debug":
		level = logging.LevelDebug
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	}
	return logging.NewLogger(&logging.Config{
		Level:  level,
		Format: viper.GetString("log.format"),
		Output: os.Stderr,
	})
}
