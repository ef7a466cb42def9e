package valuation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"positionScope/internal/model"
	"positionScope/internal/pricing"
)

// PositionSource discovers a wallet's raw positions. Implemented by
// dex.Reader; faked in tests.
type PositionSource interface {
	DiscoverPositions(ctx context.Context, wallet common.Address) []model.RawPosition
}

// IncentiveSource looks up incentive snapshots by lowercased pool address.
type IncentiveSource interface {
	IncentivesForPools(ctx context.Context, pools []string) (map[string]*model.IncentiveInfo, error)
}

// Report is the full valuation result for one wallet and entitlement tier.
type Report struct {
	Address   string              `json:"address"`
	Positions []model.PositionRow `json:"positions"`
	ElapsedMs int64               `json:"elapsedMs"`
}

// Options tune engine behavior.
type Options struct {
	CacheTTL      time.Duration
	CacheCapacity int
}

// Engine recomputes position valuations on demand. It is stateless aside
// from a short-TTL response cache and the process-lifetime incentive cache.
type Engine struct {
	source     PositionSource
	prices     pricing.Resolver
	incentives *incentiveCache
	cache      *Cache
	logger     *zap.Logger
}

func NewEngine(source PositionSource, prices pricing.Resolver, incentives IncentiveSource, opts Options, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 120 * time.Second
	}
	if opts.CacheCapacity <= 0 {
		opts.CacheCapacity = 1024
	}
	return &Engine{
		source:     source,
		prices:     prices,
		incentives: newIncentiveCache(incentives),
		cache:      NewCache(opts.CacheTTL, opts.CacheCapacity),
		logger:     logger,
	}
}

// Valuate produces the normalized, entitlement-filtered view of every
// position the wallet holds. Partial data degrades individual rows; only a
// panic escaping the whole computation yields an error, and errors are never
// cached.
func (e *Engine) Valuate(ctx context.Context, wallet common.Address, ent model.Entitlements) (report *Report, err error) {
	key := cacheKey(wallet, ent)
	if cached, ok := e.cache.Get(key); ok {
		return cached, nil
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("valuation panic",
				zap.String("wallet", wallet.Hex()),
				zap.Any("panic", r))
			report = nil
			err = fmt.Errorf("valuation failed: %v", r)
		}
	}()

	start := time.Now()
	raws := e.source.DiscoverPositions(ctx, wallet)

	prices := e.fetchPrices(ctx, raws)
	incentives := e.fetchIncentives(ctx, raws)

	rows := make([]model.PositionRow, len(raws))
	var g errgroup.Group
	for i := range raws {
		i := i
		g.Go(func() error {
			rows[i] = e.assemble(&raws[i], prices, incentives, ent)
			return nil
		})
	}
	_ = g.Wait()

	report = &Report{
		Address:   strings.ToLower(wallet.Hex()),
		Positions: rows,
		ElapsedMs: time.Since(start).Milliseconds(),
	}
	e.cache.Put(key, report)
	return report, nil
}

// fetchPrices resolves USD prices for every token in the batch. A resolver
// failure degrades to an empty map; each row then carries its own
// price-missing warnings.
func (e *Engine) fetchPrices(ctx context.Context, raws []model.RawPosition) map[string]float64 {
	addrSet := make(map[string]struct{})
	for i := range raws {
		addrSet[strings.ToLower(raws[i].Token0.Hex())] = struct{}{}
		addrSet[strings.ToLower(raws[i].Token1.Hex())] = struct{}{}
	}
	if len(addrSet) == 0 {
		return map[string]float64{}
	}

	addrs := make([]string, 0, len(addrSet))
	for addr := range addrSet {
		addrs = append(addrs, addr)
	}

	if e.prices == nil {
		return map[string]float64{}
	}
	prices, err := e.prices.GetPrices(ctx, addrs)
	if err != nil {
		e.logger.Warn("price resolution failed", zap.Int("tokens", len(addrs)), zap.Error(err))
		return map[string]float64{}
	}
	return prices
}

func (e *Engine) fetchIncentives(ctx context.Context, raws []model.RawPosition) map[string]*model.IncentiveInfo {
	poolSet := make(map[string]struct{})
	for i := range raws {
		poolSet[strings.ToLower(raws[i].PoolAddress.Hex())] = struct{}{}
	}
	if len(poolSet) == 0 {
		return map[string]*model.IncentiveInfo{}
	}

	pools := make([]string, 0, len(poolSet))
	for pool := range poolSet {
		pools = append(pools, pool)
	}

	incentives, err := e.incentives.IncentivesForPools(ctx, pools)
	if err != nil {
		e.logger.Warn("incentive lookup failed", zap.Int("pools", len(pools)), zap.Error(err))
		return map[string]*model.IncentiveInfo{}
	}
	return incentives
}

func cacheKey(wallet common.Address, ent model.Entitlements) string {
	return fmt.Sprintf("%s|%t|%t", strings.ToLower(wallet.Hex()), ent.Flags.Premium, ent.Flags.Analytics)
}
