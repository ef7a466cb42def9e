package dex

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"positionScope/internal/model"
)

// poolStateCache memoizes pool lookups within a single request. Pool state
// changes block to block, so instances must never outlive one request.
type poolStateCache struct {
	mu     sync.Mutex
	addrs  map[poolKey]common.Address
	states map[common.Address]*model.PoolState
}

type poolKey struct {
	factory common.Address
	token0  common.Address
	token1  common.Address
	fee     uint32
}

func newPoolStateCache() *poolStateCache {
	return &poolStateCache{
		addrs:  make(map[poolKey]common.Address),
		states: make(map[common.Address]*model.PoolState),
	}
}

// PoolAddress resolves the pool for a token pair and fee tier via the
// deployment's factory, memoized for the request.
func (c *poolStateCache) PoolAddress(ctx context.Context, client ContractCaller, factory, token0, token1 common.Address, fee uint32) (common.Address, error) {
	key := poolKey{factory: factory, token0: token0, token1: token1, fee: fee}
	c.mu.Lock()
	addr, ok := c.addrs[key]
	c.mu.Unlock()
	if ok {
		return addr, nil
	}

	factoryABI, err := FactoryABI()
	if err != nil {
		return common.Address{}, fmt.Errorf("parse factory abi: %w", err)
	}
	values, err := client.CallMethod(ctx, factory, factoryABI, "getPool", token0, token1, big.NewInt(int64(fee)))
	if err != nil {
		return common.Address{}, err
	}
	addr, err = asAddress(values[0])
	if err != nil {
		return common.Address{}, fmt.Errorf("getPool: %w", err)
	}
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("no pool for pair %s/%s fee %d", token0.Hex(), token1.Hex(), fee)
	}

	c.mu.Lock()
	c.addrs[key] = addr
	c.mu.Unlock()
	return addr, nil
}

// PoolState reads slot0 and the global fee-growth accumulators, memoized for
// the request.
func (c *poolStateCache) PoolState(ctx context.Context, client ContractCaller, pool common.Address) (*model.PoolState, error) {
	c.mu.Lock()
	state, ok := c.states[pool]
	c.mu.Unlock()
	if ok {
		return state, nil
	}

	poolABI, err := PoolABI()
	if err != nil {
		return nil, fmt.Errorf("parse pool abi: %w", err)
	}

	values, err := client.CallMethod(ctx, pool, poolABI, "slot0")
	if err != nil {
		return nil, err
	}
	if len(values) < 2 {
		return nil, fmt.Errorf("slot0 returned %d values", len(values))
	}
	sqrtPrice, err := asBigInt(values[0])
	if err != nil {
		return nil, fmt.Errorf("slot0 sqrtPriceX96: %w", err)
	}
	tickInt, err := asBigInt(values[1])
	if err != nil {
		return nil, fmt.Errorf("slot0 tick: %w", err)
	}
	tick, err := int24FromBig(tickInt)
	if err != nil {
		return nil, fmt.Errorf("slot0 tick: %w", err)
	}

	state = &model.PoolState{SqrtPriceX96: sqrtPrice, Tick: tick}

	values, err = client.CallMethod(ctx, pool, poolABI, "feeGrowthGlobal0X128")
	if err != nil {
		return nil, err
	}
	if state.FeeGrowthGlobal0X128, err = asBigInt(values[0]); err != nil {
		return nil, fmt.Errorf("feeGrowthGlobal0X128: %w", err)
	}

	values, err = client.CallMethod(ctx, pool, poolABI, "feeGrowthGlobal1X128")
	if err != nil {
		return nil, err
	}
	if state.FeeGrowthGlobal1X128, err = asBigInt(values[0]); err != nil {
		return nil, fmt.Errorf("feeGrowthGlobal1X128: %w", err)
	}

	c.mu.Lock()
	c.states[pool] = state
	c.mu.Unlock()
	return state, nil
}

// TickBoundaries reads the feeGrowthOutside accumulators at both range
// bounds. Not memoized: boundary pairs rarely repeat within a wallet.
func fetchTickBoundaries(ctx context.Context, client ContractCaller, pool common.Address, tickLower, tickUpper int32) (*model.TickBoundaries, error) {
	poolABI, err := PoolABI()
	if err != nil {
		return nil, fmt.Errorf("parse pool abi: %w", err)
	}

	lower0, lower1, err := fetchTickOutside(ctx, client, pool, poolABI, tickLower)
	if err != nil {
		return nil, fmt.Errorf("ticks(%d): %w", tickLower, err)
	}
	upper0, upper1, err := fetchTickOutside(ctx, client, pool, poolABI, tickUpper)
	if err != nil {
		return nil, fmt.Errorf("ticks(%d): %w", tickUpper, err)
	}

	return &model.TickBoundaries{
		LowerOutside0X128: lower0,
		LowerOutside1X128: lower1,
		UpperOutside0X128: upper0,
		UpperOutside1X128: upper1,
	}, nil
}

func fetchTickOutside(ctx context.Context, client ContractCaller, pool common.Address, poolABI abi.ABI, tick int32) (*big.Int, *big.Int, error) {
	values, err := client.CallMethod(ctx, pool, poolABI, "ticks", big.NewInt(int64(tick)))
	if err != nil {
		return nil, nil, err
	}
	if len(values) < 4 {
		return nil, nil, fmt.Errorf("ticks returned %d values", len(values))
	}
	outside0, err := asBigInt(values[2])
	if err != nil {
		return nil, nil, fmt.Errorf("feeGrowthOutside0X128: %w", err)
	}
	outside1, err := asBigInt(values[3])
	if err != nil {
		return nil, nil, fmt.Errorf("feeGrowthOutside1X128: %w", err)
	}
	return outside0, outside1, nil
}
