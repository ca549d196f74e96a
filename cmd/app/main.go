package main

import (
	"fmt"
	"os"

	"QuantFuse/pkg/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	envFile    string
	simulation bool
)

var rootCmd = &cobra.Command{
	Use:   "quantfuse",
	Short: "QuantFuse - market data and sentiment fusion service",
	Long: `QuantFuse fetches quotes, technical indicators and news from ranked
upstream providers, fuses them into scored insights and trading signals,
and publishes the results to Kafka.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults only when empty)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")
	rootCmd.PersistentFlags().BoolVar(&simulation, "simulation", false, "use deterministic simulated providers and an in-memory bus")
}

// loadConfig reads .env (if present), the YAML config and env overrides.
func loadConfig() (*config.Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	if simulation {
		if err := os.Setenv("QUANTFUSE_MODE", config.ModeSimulation); err != nil {
			return nil, err
		}
	}
	cfg, err := config.LoadWithEnv(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
