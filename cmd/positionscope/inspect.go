package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"positionScope/internal/chain"
	"positionScope/internal/config"
	"positionScope/internal/dex"
	"positionScope/internal/model"
	"positionScope/internal/pricing"
	"positionScope/internal/storage/postgres"
	"positionScope/internal/valuation"
)

var hexAddressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

func runInspect(cmd *cobra.Command, args []string) error {
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

	wallet := args[0]
	if !hexAddressPattern.MatchString(wallet) {
		return fmt.Errorf("invalid wallet address: %s", wallet)
	}
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

	roleName, _ := cmd.Flags().GetString("role")
	ent := model.EntitlementsFor(model.Role(strings.ToUpper(roleName)))

	overrides, _ := cmd.Flags().GetStringSlice("price")
	prices, err := buildResolver(cfg.PriceAPIURL, overrides, logger)
	if err != nil {
		return err
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

	var incentives valuation.IncentiveSource
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN, logger)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		incentives = store
	}

	reader := dex.NewReader(chainClient, deployments, cfg.MaxConcurrentReads, logger)
	engine := valuation.NewEngine(reader, prices, incentives, valuation.Options{}, logger)

	report, err := engine.Valuate(ctx, common.HexToAddress(wallet), ent)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// buildResolver prefers explicit --price overrides over the configured API.
func buildResolver(apiURL string, overrides []string, logger *zap.Logger) (pricing.Resolver, error) {
	if len(overrides) > 0 {
		static := make(pricing.StaticResolver, len(overrides))
		for _, entry := range overrides {
			parts := strings.SplitN(entry, "=", 2)
			if len(parts) != 2 {
				return nil, fmt.Errorf("invalid price override %q, want address=usd", entry)
			}
			price, err := strconv.ParseFloat(parts[1], 64)
			if err != nil {
				return nil, fmt.Errorf("invalid price override %q: %w", entry, err)
			}
			static[strings.ToLower(parts[0])] = price
		}
		return static, nil
	}
	if apiURL != "" {
		return pricing.NewHTTPResolver(apiURL, logger), nil
	}
	return nil, nil
}
