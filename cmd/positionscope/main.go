package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:          "positionscope",
		Short:        "Concentrated-liquidity position valuation service",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP valuation service",
		RunE:  runServe,
	}

	serveCmd.Flags().String("listen", ":8080", "HTTP listen address")
	serveCmd.Flags().String("rpc", "", "EVM RPC URL")
	serveCmd.Flags().String("pg-dsn", "", "Postgres DSN for incentive snapshots")
	serveCmd.Flags().String("price-api", "", "token price API base URL")
	serveCmd.Flags().Duration("cache-ttl", 120*time.Second, "valuation cache TTL")
	serveCmd.Flags().Int64("max-concurrent-reads", 12, "max concurrent position reads per DEX")
	serveCmd.Flags().Float64("rpc-rate-limit", 0, "max RPC calls per second, 0 disables")
	serveCmd.Flags().Int("rpc-max-retries", 2, "maximum RPC retry attempts")
	serveCmd.Flags().Duration("rpc-retry-backoff", 200*time.Millisecond, "initial RPC retry backoff")
	serveCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(serveCmd)

	inspectCmd := &cobra.Command{
		Use:   "inspect <wallet>",
		Short: "Valuate one wallet and print the report as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspect,
	}

	inspectCmd.Flags().String("rpc", "", "EVM RPC URL")
	inspectCmd.Flags().String("pg-dsn", "", "Postgres DSN for incentive snapshots (optional)")
	inspectCmd.Flags().String("price-api", "", "token price API base URL (optional)")
	inspectCmd.Flags().StringSlice("price", nil, "static price overrides (address=usd, comma-separated)")
	inspectCmd.Flags().String("role", "PRO", "entitlement role (VISITOR, PREMIUM, PRO)")
	inspectCmd.Flags().Int64("max-concurrent-reads", 12, "max concurrent position reads per DEX")
	inspectCmd.Flags().Float64("rpc-rate-limit", 0, "max RPC calls per second, 0 disables")
	inspectCmd.Flags().Int("rpc-max-retries", 2, "maximum RPC retry attempts")
	inspectCmd.Flags().Duration("rpc-retry-backoff", 200*time.Millisecond, "initial RPC retry backoff")
	inspectCmd.Flags().String("log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(inspectCmd)

	loadCmd := &cobra.Command{
		Use:   "load-incentives <file>",
		Short: "Load a JSONL incentive snapshot into Postgres",
		Args:  cobra.ExactArgs(1),
		RunE:  runLoadIncentives,
	}

	loadCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	loadCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(loadCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
