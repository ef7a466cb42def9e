package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"positionScope/internal/chain"
	"positionScope/internal/config"
	"positionScope/internal/dex"
	"positionScope/internal/pricing"
	"positionScope/internal/server"
	"positionScope/internal/storage/postgres"
	"positionScope/internal/valuation"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadServe(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}

	deployments, err := dex.ParseDeployments(cfg.Deployments)
	if err != nil {
		return err
	}
	if len(deployments) == 0 {
		return fmt.Errorf("at least one deployment is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL, chain.Options{
		MaxCallsPerSecond: cfg.RPCRateLimit,
		MaxRetries:        cfg.RPCMaxRetries,
		RetryBackoff:      cfg.RPCRetryBackoff,
	})
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	var prices pricing.Resolver
	if cfg.PriceAPIURL != "" {
		prices = pricing.NewHTTPResolver(cfg.PriceAPIURL, logger)
	} else {
		logger.Warn("no price api configured, rows will carry price warnings")
	}

	var incentives valuation.IncentiveSource
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN, logger)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		incentives = store
	} else {
		logger.Warn("no postgres dsn configured, incentives disabled")
	}

	reader := dex.NewReader(chainClient, deployments, cfg.MaxConcurrentReads, logger)
	engine := valuation.NewEngine(reader, prices, incentives, valuation.Options{
		CacheTTL: cfg.CacheTTL,
	}, logger)

	srv := server.New(cfg.Listen, engine, server.NewRoleResolver(cfg.APIKeys), logger)

	logger.Info("serve start",
		zap.String("listen", cfg.Listen),
		zap.String("rpc", cfg.RPCURL),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.String("price_api", cfg.PriceAPIURL),
		zap.Int("deployments", len(deployments)),
		zap.Duration("cache_ttl", cfg.CacheTTL),
	)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
