package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"positionScope/internal/model"
	"positionScope/internal/storage/postgres"
)

const incentiveBatchSize = 500

// runLoadIncentives streams a JSONL snapshot into the pool_incentives table.
// Malformed lines are skipped with a warning so a single bad row cannot block
// the rest of the snapshot.
func runLoadIncentives(cmd *cobra.Command, args []string) error {
	dsn, _ := cmd.Flags().GetString("pg-dsn")
	if dsn == "" {
		dsn = os.Getenv("POSITIONSCOPE_PG_DSN")
	}
	if dsn == "" {
		return fmt.Errorf("pg dsn is required")
	}

	level, _ := cmd.Flags().GetString("log-level")
	logger, err := newLogger(level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := postgres.NewStore(ctx, dsn, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer store.Close()

	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	var batch []model.PoolIncentiveRecord
	var total, skipped int
	line := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := store.UpsertIncentives(ctx, batch); err != nil {
			return fmt.Errorf("upsert incentives: %w", err)
		}
		total += len(batch)
		batch = batch[:0]
		return nil
	}

	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var record model.PoolIncentiveRecord
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			logger.Warn("skip malformed snapshot line", zap.Int("line", line), zap.Error(err))
			skipped++
			continue
		}
		record.PoolAddress = strings.ToLower(strings.TrimSpace(record.PoolAddress))
		if !hexAddressPattern.MatchString(record.PoolAddress) {
			logger.Warn("skip snapshot line with invalid pool address",
				zap.Int("line", line),
				zap.String("pool", record.PoolAddress))
			skipped++
			continue
		}

		batch = append(batch, record)
		if len(batch) >= incentiveBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	if err := flush(); err != nil {
		return err
	}

	logger.Info("incentive snapshot loaded",
		zap.Int("rows", total),
		zap.Int("skipped", skipped))
	return nil
}
