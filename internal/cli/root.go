package cli

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"energy-insights/internal/app"
	"energy-insights/internal/config"
	"energy-insights/internal/logging"
)

var (
	cfgFile   string
	logLevel  string
	category  string
	apiURL    string
	appHandle *app.App
)

var rootCmd = &cobra.Command{
	Use:   "energydash",
	Short: "Energy consumption and cost dashboard for plant monitoring data",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if appHandle != nil {
			return nil
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		if err := applyOverrides(cfg, overrides{
			logLevel: logLevel,
			category: category,
			apiURL:   apiURL,
		}); err != nil {
			return err
		}

		logger := logging.NewLogger(cfg.Logging)
		appHandle = app.NewApp(cfg, logger)
		appHandle.Out = cmd.OutOrStdout()
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level defined in config")
	rootCmd.PersistentFlags().StringVar(&category, "category", "", "Monitoring category (overrides app.category)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Aggregate API base URL (overrides api.base_url)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(recordsCmd)
	rootCmd.AddCommand(versionCmd)
}

// overrides are the persistent flags that take precedence over config.
type overrides struct {
	logLevel string
	category string
	apiURL   string
}

func applyOverrides(cfg *config.Config, o overrides) error {
	if o.logLevel != "" {
		if _, err := zerolog.ParseLevel(strings.ToLower(o.logLevel)); err != nil {
			return fmt.Errorf("invalid --log-level: %w", err)
		}
		cfg.Logging.Level = o.logLevel
	}
	if o.category != "" {
		cfg.App.Category = o.category
	}
	if o.apiURL != "" {
		u, err := url.Parse(o.apiURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid --api-url %q", o.apiURL)
		}
		cfg.API.BaseURL = strings.TrimRight(o.apiURL, "/")
	}
	return nil
}

func getApp() *app.App {
	if appHandle == nil {
		panic("application not initialized; PersistentPreRunE not executed")
	}
	return appHandle
}
