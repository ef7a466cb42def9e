package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Resolver maps token addresses to USD prices. Returned maps may be partial:
// a missing key means the price is unresolved, not zero.
type Resolver interface {
	GetPrices(ctx context.Context, addresses []string) (map[string]float64, error)
}

// HTTPResolver queries an external price API. The endpoint is expected to
// accept a comma-separated address list and return a flat
// {"0x..": usdPrice} JSON object.
type HTTPResolver struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewHTTPResolver(baseURL string, logger *zap.Logger) *HTTPResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPResolver{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

func (r *HTTPResolver) GetPrices(ctx context.Context, addresses []string) (map[string]float64, error) {
	if len(addresses) == 0 {
		return map[string]float64{}, nil
	}

	lowered := make([]string, 0, len(addresses))
	seen := make(map[string]struct{}, len(addresses))
	for _, addr := range addresses {
		addr = strings.ToLower(addr)
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		lowered = append(lowered, addr)
	}

	endpoint := fmt.Sprintf("%s?addresses=%s", r.baseURL, url.QueryEscape(strings.Join(lowered, ",")))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("price request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price api status %d", resp.StatusCode)
	}

	var raw map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode prices: %w", err)
	}

	prices := make(map[string]float64, len(raw))
	for addr, price := range raw {
		prices[strings.ToLower(addr)] = price
	}
	if len(prices) < len(lowered) {
		r.logger.Debug("partial price map",
			zap.Int("requested", len(lowered)),
			zap.Int("resolved", len(prices)))
	}
	return prices, nil
}

// StaticResolver serves a fixed price map; used by tests and the inspect
// command's price overrides.
type StaticResolver map[string]float64

func (s StaticResolver) GetPrices(_ context.Context, addresses []string) (map[string]float64, error) {
	out := make(map[string]float64, len(addresses))
	for _, addr := range addresses {
		if price, ok := s[strings.ToLower(addr)]; ok {
			out[strings.ToLower(addr)] = price
		}
	}
	return out, nil
}
