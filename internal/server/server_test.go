package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"positionScope/internal/model"
	"positionScope/internal/valuation"
)

type fakeValuator struct {
	report  *valuation.Report
	err     error
	lastEnt model.Entitlements
}

func (f *fakeValuator) Valuate(_ context.Context, wallet common.Address, ent model.Entitlements) (*valuation.Report, error) {
	f.lastEnt = ent
	if f.err != nil {
		return nil, f.err
	}
	if f.report != nil {
		return f.report, nil
	}
	return &valuation.Report{Address: wallet.Hex(), Positions: []model.PositionRow{}}, nil
}

func newTestServer(engine Valuator, keys map[string]string) *Server {
	return New(":0", engine, NewRoleResolver(keys), nil)
}

func doRequest(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func TestPositionsInvalidWallet(t *testing.T) {
	s := newTestServer(&fakeValuator{}, nil)

	for _, wallet := range []string{"", "nonsense", "0x123", "0xZZ11111111111111111111111111111111111111"} {
		req := httptest.NewRequest(http.MethodGet, "/positions?wallet="+wallet, nil)
		rec := doRequest(s, req)
		require.Equal(t, http.StatusBadRequest, rec.Code, "wallet %q", wallet)
	}
}

func TestPositionsMethodNotAllowed(t *testing.T) {
	s := newTestServer(&fakeValuator{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/positions?wallet=0x1111111111111111111111111111111111111111", nil)
	rec := doRequest(s, req)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestPositionsSuccessEnvelope(t *testing.T) {
	engine := &fakeValuator{report: &valuation.Report{
		Address:   "0x1111111111111111111111111111111111111111",
		Positions: []model.PositionRow{{TokenID: "7", Dex: "uniswap-v3"}},
		ElapsedMs: 12,
	}}
	s := newTestServer(engine, nil)

	req := httptest.NewRequest(http.MethodGet, "/positions?wallet=0x1111111111111111111111111111111111111111", nil)
	rec := doRequest(s, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, cacheControlValue, rec.Header().Get("Cache-Control"))
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.Len(t, body.Data.Positions, 1)
	require.Equal(t, "7", body.Data.Positions[0].TokenID)
	require.Equal(t, "0x1111111111111111111111111111111111111111", body.Data.Meta.Address)
}

func TestPositionsEngineFailureYieldsEmptyList(t *testing.T) {
	engine := &fakeValuator{err: fmt.Errorf("every rpc is down")}
	s := newTestServer(engine, nil)

	req := httptest.NewRequest(http.MethodGet, "/positions?wallet=0x1111111111111111111111111111111111111111", nil)
	rec := doRequest(s, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.NotNil(t, body.Data.Positions)
	require.Empty(t, body.Data.Positions)
	require.Equal(t, "0x1111111111111111111111111111111111111111", body.Data.Meta.Address)
}

func TestPositionsRoleResolution(t *testing.T) {
	engine := &fakeValuator{}
	s := newTestServer(engine, map[string]string{"pro-key": "PRO", "prem-key": "premium"})

	req := httptest.NewRequest(http.MethodGet, "/positions?wallet=0x1111111111111111111111111111111111111111", nil)
	doRequest(s, req)
	require.Equal(t, model.RoleVisitor, engine.lastEnt.Role)

	req = httptest.NewRequest(http.MethodGet, "/positions?wallet=0x1111111111111111111111111111111111111111", nil)
	req.Header.Set("X-Api-Key", "pro-key")
	doRequest(s, req)
	require.Equal(t, model.RolePro, engine.lastEnt.Role)
	require.True(t, engine.lastEnt.Flags.Analytics)

	req = httptest.NewRequest(http.MethodGet, "/positions?wallet=0x1111111111111111111111111111111111111111", nil)
	req.Header.Set("X-Api-Key", "prem-key")
	doRequest(s, req)
	require.Equal(t, model.RolePremium, engine.lastEnt.Role)
	require.False(t, engine.lastEnt.Flags.Analytics)

	req = httptest.NewRequest(http.MethodGet, "/positions?wallet=0x1111111111111111111111111111111111111111", nil)
	req.Header.Set("X-Api-Key", "unknown")
	doRequest(s, req)
	require.Equal(t, model.RoleVisitor, engine.lastEnt.Role)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(&fakeValuator{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := doRequest(s, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
