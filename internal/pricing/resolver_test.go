package pricing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPResolverGetPrices(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("addresses")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"0xAbC0000000000000000000000000000000000001": 2000.5, "0xabc0000000000000000000000000000000000002": 1}`))
	}))
	defer srv.Close()

	resolver := NewHTTPResolver(srv.URL, nil)
	prices, err := resolver.GetPrices(context.Background(), []string{
		"0xABC0000000000000000000000000000000000001",
		"0xabc0000000000000000000000000000000000002",
		"0xabc0000000000000000000000000000000000002",
	})
	require.NoError(t, err)

	// deduplicated, lowercased request
	require.Equal(t, "0xabc0000000000000000000000000000000000001,0xabc0000000000000000000000000000000000002", gotQuery)

	require.Len(t, prices, 2)
	require.Equal(t, 2000.5, prices["0xabc0000000000000000000000000000000000001"])
	require.Equal(t, 1.0, prices["0xabc0000000000000000000000000000000000002"])
}

func TestHTTPResolverNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	resolver := NewHTTPResolver(srv.URL, nil)
	_, err := resolver.GetPrices(context.Background(), []string{"0xabc0000000000000000000000000000000000001"})
	require.Error(t, err)
}

func TestHTTPResolverEmptyInput(t *testing.T) {
	resolver := NewHTTPResolver("http://unused.invalid", nil)
	prices, err := resolver.GetPrices(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, prices)
}

func TestStaticResolver(t *testing.T) {
	static := StaticResolver{"0xabc": 5}
	prices, err := static.GetPrices(context.Background(), []string{"0xABC", "0xdef"})
	require.NoError(t, err)
	require.Len(t, prices, 1)
	require.Equal(t, 5.0, prices["0xabc"])
}
