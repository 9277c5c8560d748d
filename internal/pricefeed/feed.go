// Package pricefeed talks to the external price oracle and converts
// 18-decimal USD amounts into the equivalent native-asset quantity.
package pricefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"blockpay/internal/domain"
)

// Price is an oracle quote: the USD value of one native-asset unit, scaled to
// Decimals decimal places. Chainlink-style feeds report 8 decimals.
type Price struct {
	Value    *big.Int
	Decimals uint8
}

// Feed supplies the latest oracle price. The price is queried fresh on every
// conversion; it is never cached, so a conversion always reflects the latest
// available quote.
type Feed interface {
	LatestPrice(ctx context.Context) (Price, error)
}

const clientDefaultTimeout = 10 * time.Second

// Client reads the latest price from an HTTP gateway fronting the aggregator.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient builds a feed client. httpClient may be nil.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("price feed base url is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: clientDefaultTimeout}
	}
	return &Client{baseURL: baseURL, client: httpClient}, nil
}

type latestPriceResponse struct {
	Price    string `json:"price"`
	Decimals uint8  `json:"decimals"`
}

// LatestPrice fetches the current quote. A non-positive reported price is an
// oracle fault and surfaces as domain.ErrOraclePrice.
func (c *Client) LatestPrice(ctx context.Context) (Price, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/price/latest", nil)
	if err != nil {
		return Price{}, fmt.Errorf("build price request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Price{}, fmt.Errorf("query price feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Price{}, fmt.Errorf("price feed returned status %d: %w", resp.StatusCode, domain.ErrOraclePrice)
	}

	var payload latestPriceResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Price{}, fmt.Errorf("decode price feed response: %w", err)
	}

	value, ok := new(big.Int).SetString(strings.TrimSpace(payload.Price), 10)
	if !ok {
		return Price{}, fmt.Errorf("price feed reported malformed price %q: %w", payload.Price, domain.ErrOraclePrice)
	}
	if value.Sign() <= 0 {
		return Price{}, fmt.Errorf("price feed reported %s: %w", value, domain.ErrOraclePrice)
	}
	return Price{Value: value, Decimals: payload.Decimals}, nil
}

// Static is a fixed-price feed for development and tests.
type Static struct {
	price Price
}

// NewStatic returns a feed that always reports the given price.
func NewStatic(value *big.Int, decimals uint8) *Static {
	return &Static{price: Price{Value: new(big.Int).Set(value), Decimals: decimals}}
}

func (s *Static) LatestPrice(context.Context) (Price, error) {
	return Price{Value: new(big.Int).Set(s.price.Value), Decimals: s.price.Decimals}, nil
}
