// Package treasury is the outward value-transfer capability used by
// withdrawals. The ledger zeroes a balance before calling Transfer and credits
// it back if the transfer reports failure.
package treasury

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Transferrer moves native-asset value to an address. An error means no value
// moved and the caller must roll back its own state.
type Transferrer interface {
	Transfer(ctx context.Context, to string, amount *big.Int) error
}

const clientDefaultTimeout = 30 * time.Second

// Client submits payout orders to the treasury service.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient builds a treasury client. httpClient may be nil.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("treasury base url is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: clientDefaultTimeout}
	}
	return &Client{baseURL: baseURL, client: httpClient}, nil
}

type transferRequest struct {
	To     string `json:"to"`
	Amount string `json:"amount"`
}

func (c *Client) Transfer(ctx context.Context, to string, amount *big.Int) error {
	body, err := json.Marshal(transferRequest{To: to, Amount: amount.String()})
	if err != nil {
		return fmt.Errorf("encode transfer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/transfers", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build transfer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("submit transfer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("treasury returned status %d", resp.StatusCode)
	}
	return nil
}

// Logging is a development transferrer that records the order and succeeds.
type Logging struct {
	Logger zerolog.Logger
}

func (l Logging) Transfer(_ context.Context, to string, amount *big.Int) error {
	l.Logger.Info().Str("to", to).Str("amount", amount.String()).Msg("dev transfer (no value moved)")
	return nil
}
