package dex

import (
	"context"
	"fmt"
	"math/big"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"positionScope/internal/model"
)

const defaultMaxConcurrentReads = 12

// ContractCaller abstracts packed view calls; satisfied by chain.Client.
type ContractCaller interface {
	CallMethod(ctx context.Context, to common.Address, parsed abi.ABI, method string, args ...interface{}) ([]interface{}, error)
}

// Reader enumerates a wallet's position NFTs across configured deployments
// and reads each position's on-chain state. Every read step is independently
// fallible: a token-level failure drops that one position, a deployment-level
// failure contributes zero positions, and neither aborts the wallet request.
type Reader struct {
	client      ContractCaller
	deployments []Deployment
	tokens      *TokenMetaCache
	sem         *semaphore.Weighted
	logger      *zap.Logger
}

// NewReader builds a Reader. maxConcurrentReads bounds simultaneous
// per-position read pipelines; zero selects the default.
func NewReader(client ContractCaller, deployments []Deployment, maxConcurrentReads int64, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxConcurrentReads <= 0 {
		maxConcurrentReads = defaultMaxConcurrentReads
	}
	return &Reader{
		client:      client,
		deployments: deployments,
		tokens:      NewTokenMetaCache(),
		sem:         semaphore.NewWeighted(maxConcurrentReads),
		logger:      logger,
	}
}

// TokenMeta returns the cached metadata for a token, if known.
func (r *Reader) TokenMeta(address common.Address) (model.TokenMeta, bool) {
	return r.tokens.Get(address)
}

// DiscoverPositions reads all open positions the wallet holds. Results keep
// discovery order: deployments in configuration order, token IDs in
// enumeration order within each.
func (r *Reader) DiscoverPositions(ctx context.Context, wallet common.Address) []model.RawPosition {
	pools := newPoolStateCache()

	perDeployment := make([][]model.RawPosition, len(r.deployments))
	var g errgroup.Group
	for i, dep := range r.deployments {
		i, dep := i, dep
		g.Go(func() error {
			perDeployment[i] = r.discoverForDeployment(ctx, wallet, dep, pools)
			return nil
		})
	}
	_ = g.Wait()

	var out []model.RawPosition
	for _, batch := range perDeployment {
		out = append(out, batch...)
	}
	return out
}

func (r *Reader) discoverForDeployment(ctx context.Context, wallet common.Address, dep Deployment, pools *poolStateCache) []model.RawPosition {
	pmABI, err := PositionManagerABI()
	if err != nil {
		r.logger.Error("parse position manager abi", zap.Error(err))
		return nil
	}

	values, err := r.client.CallMethod(ctx, dep.PositionManager, pmABI, "balanceOf", wallet)
	if err != nil {
		r.logger.Warn("position enumeration failed",
			zap.String("dex", dep.ID),
			zap.String("wallet", wallet.Hex()),
			zap.Error(err))
		return nil
	}
	countBig, err := asBigInt(values[0])
	if err != nil || !countBig.IsInt64() {
		r.logger.Warn("position count unreadable", zap.String("dex", dep.ID), zap.Error(err))
		return nil
	}
	count := countBig.Int64()
	if count == 0 {
		return nil
	}

	slots := make([]*model.RawPosition, count)
	var dropped atomic.Int64
	var g errgroup.Group
	for i := int64(0); i < count; i++ {
		i := i
		if err := r.sem.Acquire(ctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer r.sem.Release(1)
			raw, err := r.readPosition(ctx, wallet, dep, i, pools)
			if err != nil {
				dropped.Add(1)
				r.logger.Warn("position read failed",
					zap.String("dex", dep.ID),
					zap.Int64("index", i),
					zap.Error(err))
				return nil
			}
			slots[i] = raw
			return nil
		})
	}
	_ = g.Wait()

	out := make([]model.RawPosition, 0, count)
	for _, raw := range slots {
		if raw != nil {
			out = append(out, *raw)
		}
	}
	r.logger.Debug("deployment scan complete",
		zap.String("dex", dep.ID),
		zap.Int64("owned", count),
		zap.Int("returned", len(out)),
		zap.Int64("dropped", dropped.Load()))
	return out
}

// readPosition runs the per-token pipeline: token ID, position struct, pool
// address, pool state, tick boundary accumulators, token metadata. Pool state
// and tick reads degrade the position instead of dropping it; the earlier
// steps are load-bearing and return an error.
func (r *Reader) readPosition(ctx context.Context, wallet common.Address, dep Deployment, index int64, pools *poolStateCache) (*model.RawPosition, error) {
	pmABI, err := PositionManagerABI()
	if err != nil {
		return nil, err
	}

	values, err := r.client.CallMethod(ctx, dep.PositionManager, pmABI, "tokenOfOwnerByIndex", wallet, big.NewInt(index))
	if err != nil {
		return nil, fmt.Errorf("tokenOfOwnerByIndex: %w", err)
	}
	tokenID, err := asBigInt(values[0])
	if err != nil {
		return nil, fmt.Errorf("token id: %w", err)
	}

	values, err = r.client.CallMethod(ctx, dep.PositionManager, pmABI, "positions", tokenID)
	if err != nil {
		return nil, fmt.Errorf("positions(%s): %w", tokenID, err)
	}
	raw, err := decodePositionStruct(values)
	if err != nil {
		return nil, fmt.Errorf("positions(%s): %w", tokenID, err)
	}
	if raw.Liquidity.Sign() == 0 {
		// closed position, skip silently
		return nil, nil
	}
	raw.TokenID = tokenID
	raw.DexID = dep.ID

	pool, err := pools.PoolAddress(ctx, r.client, dep.Factory, raw.Token0, raw.Token1, raw.FeeTier)
	if err != nil {
		return nil, fmt.Errorf("pool address: %w", err)
	}
	raw.PoolAddress = pool

	if state, err := pools.PoolState(ctx, r.client, pool); err == nil {
		raw.Pool = state
	} else {
		r.logger.Warn("pool state read failed", zap.String("pool", pool.Hex()), zap.Error(err))
	}

	if raw.Pool != nil {
		if bounds, err := fetchTickBoundaries(ctx, r.client, pool, raw.TickLower, raw.TickUpper); err == nil {
			raw.TickBounds = bounds
		} else {
			r.logger.Debug("tick boundary read failed", zap.String("pool", pool.Hex()), zap.Error(err))
		}
	}

	raw.Token0Meta = r.tokenMeta(ctx, raw.Token0)
	raw.Token1Meta = r.tokenMeta(ctx, raw.Token1)

	return raw, nil
}

func (r *Reader) tokenMeta(ctx context.Context, token common.Address) *model.TokenMeta {
	if meta, ok := r.tokens.Get(token); ok {
		return &meta
	}
	meta, err := FetchTokenMeta(ctx, r.client, token, r.logger)
	if err != nil {
		r.logger.Warn("token metadata fetch failed", zap.String("token", token.Hex()), zap.Error(err))
		return nil
	}
	r.tokens.Set(token, meta)
	return &meta
}

// decodePositionStruct maps the 12 outputs of positions(tokenId) onto a
// RawPosition, excluding the identity fields filled by the caller.
func decodePositionStruct(values []interface{}) (*model.RawPosition, error) {
	if len(values) != 12 {
		return nil, fmt.Errorf("expected 12 outputs, got %d", len(values))
	}

	token0, err := asAddress(values[2])
	if err != nil {
		return nil, fmt.Errorf("token0: %w", err)
	}
	token1, err := asAddress(values[3])
	if err != nil {
		return nil, fmt.Errorf("token1: %w", err)
	}
	feeBig, err := asBigInt(values[4])
	if err != nil {
		return nil, fmt.Errorf("fee: %w", err)
	}
	tickLowerBig, err := asBigInt(values[5])
	if err != nil {
		return nil, fmt.Errorf("tickLower: %w", err)
	}
	tickLower, err := int24FromBig(tickLowerBig)
	if err != nil {
		return nil, fmt.Errorf("tickLower: %w", err)
	}
	tickUpperBig, err := asBigInt(values[6])
	if err != nil {
		return nil, fmt.Errorf("tickUpper: %w", err)
	}
	tickUpper, err := int24FromBig(tickUpperBig)
	if err != nil {
		return nil, fmt.Errorf("tickUpper: %w", err)
	}
	liquidity, err := asBigInt(values[7])
	if err != nil {
		return nil, fmt.Errorf("liquidity: %w", err)
	}
	feeGrowth0, err := asBigInt(values[8])
	if err != nil {
		return nil, fmt.Errorf("feeGrowthInside0LastX128: %w", err)
	}
	feeGrowth1, err := asBigInt(values[9])
	if err != nil {
		return nil, fmt.Errorf("feeGrowthInside1LastX128: %w", err)
	}
	owed0, err := asBigInt(values[10])
	if err != nil {
		return nil, fmt.Errorf("tokensOwed0: %w", err)
	}
	owed1, err := asBigInt(values[11])
	if err != nil {
		return nil, fmt.Errorf("tokensOwed1: %w", err)
	}

	return &model.RawPosition{
		Token0:                   token0,
		Token1:                   token1,
		FeeTier:                  uint32(feeBig.Uint64()),
		TickLower:                tickLower,
		TickUpper:                tickUpper,
		Liquidity:                liquidity,
		FeeGrowthInside0LastX128: feeGrowth0,
		FeeGrowthInside1LastX128: feeGrowth1,
		TokensOwed0:              owed0,
		TokensOwed1:              owed1,
	}, nil
}
