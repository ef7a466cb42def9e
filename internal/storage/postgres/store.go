package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"positionScope/internal/model"
)

// Store provides Postgres access to the precomputed incentive snapshots.
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewStore(ctx context.Context, dsn string, logger *zap.Logger) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool, logger: logger}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// IncentivesForPools returns the snapshot for each pool that has a program.
// Pools absent from the result have no incentive program. A NULL usd_per_day
// with a populated token list means the program exists but is unpriced.
func (s *Store) IncentivesForPools(ctx context.Context, pools []string) (map[string]*model.IncentiveInfo, error) {
	if len(pools) == 0 {
		return map[string]*model.IncentiveInfo{}, nil
	}

	lowered := make([]string, len(pools))
	for i, pool := range pools {
		lowered[i] = strings.ToLower(pool)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT pool_address, usd_per_day, fees_24h_usd, tokens
		FROM pool_incentives
		WHERE pool_address = ANY($1)
	`, lowered)
	if err != nil {
		return nil, fmt.Errorf("query incentives: %w", err)
	}
	defer rows.Close()

	out := make(map[string]*model.IncentiveInfo)
	for rows.Next() {
		var pool string
		var usdPerDay, fees24h *float64
		var tokensJSON []byte
		if err := rows.Scan(&pool, &usdPerDay, &fees24h, &tokensJSON); err != nil {
			return nil, fmt.Errorf("scan incentives: %w", err)
		}

		tokens, malformed := parseIncentiveTokens(tokensJSON)
		if malformed > 0 {
			s.logger.Warn("malformed incentive token entries skipped",
				zap.String("pool", pool),
				zap.Int("skipped", malformed))
		}

		out[strings.ToLower(pool)] = &model.IncentiveInfo{
			UsdPerDay:  usdPerDay,
			Fees24hUsd: fees24h,
			Tokens:     tokens,
		}
	}
	return out, rows.Err()
}

// UpsertIncentives writes snapshot records in one batch; used by the
// load-incentives maintenance command.
func (s *Store) UpsertIncentives(ctx context.Context, records []model.PoolIncentiveRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, rec := range records {
		tokensJSON, err := encodeIncentiveTokens(rec.Tokens)
		if err != nil {
			return fmt.Errorf("encode tokens for %s: %w", rec.PoolAddress, err)
		}
		batch.Queue(`
			INSERT INTO pool_incentives (pool_address, usd_per_day, fees_24h_usd, tokens, updated_at)
			VALUES ($1, $2, $3, $4, now())
			ON CONFLICT (pool_address)
			DO UPDATE SET
				usd_per_day = EXCLUDED.usd_per_day,
				fees_24h_usd = EXCLUDED.fees_24h_usd,
				tokens = EXCLUDED.tokens,
				updated_at = now()
		`,
			strings.ToLower(rec.PoolAddress),
			rec.UsdPerDay,
			rec.Fees24hUsd,
			tokensJSON,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
