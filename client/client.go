package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/mezonai/pohledger/block"
	"github.com/mezonai/pohledger/errors"
	"github.com/mezonai/pohledger/interfaces"
	"github.com/mezonai/pohledger/jsonx"
	"github.com/mezonai/pohledger/logx"
	"github.com/mezonai/pohledger/node"
	"github.com/mezonai/pohledger/transaction"
)

type Config struct {
	Endpoint      string
	MaxRetries    int
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
}

func DefaultConfig(endpoint string) Config {
	return Config{
		Endpoint:      endpoint,
		MaxRetries:    3,
		RetryDelay:    200 * time.Millisecond,
		MaxRetryDelay: 2 * time.Second,
	}
}

// LedgerClient talks to a node's HTTP surface.
type LedgerClient struct {
	cfg    Config
	client *retryablehttp.Client
}

func NewClient(cfg Config) *LedgerClient {
	c := retryablehttp.NewClient()
	c.RetryMax = cfg.MaxRetries
	c.RetryWaitMin = cfg.RetryDelay
	c.RetryWaitMax = cfg.MaxRetryDelay
	c.Logger = retryableHttpLogger{}
	return &LedgerClient{
		cfg:    cfg,
		client: c,
	}
}

// retryableHttpLogger routes retryablehttp logs to logx at debug level.
type retryableHttpLogger struct{}

func (retryableHttpLogger) Error(msg string, kv ...interface{}) {
	logx.Error("CLIENT", msg, " ", fmt.Sprint(kv...))
}
func (retryableHttpLogger) Info(msg string, kv ...interface{}) {
	logx.Debug("CLIENT", msg, " ", fmt.Sprint(kv...))
}
func (retryableHttpLogger) Debug(msg string, kv ...interface{}) {
	logx.Debug("CLIENT", msg, " ", fmt.Sprint(kv...))
}
func (retryableHttpLogger) Warn(msg string, kv ...interface{}) {
	logx.Warn("CLIENT", msg, " ", fmt.Sprint(kv...))
}

func (c *LedgerClient) url(path string) string {
	return strings.TrimRight(c.cfg.Endpoint, "/") + path
}

// do sends body (if any) and decodes a 200 response into out. Error bodies that
// carry a ledger error code come back as *errors.LedgerError.
func (c *LedgerClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var payload io.Reader
	if body != nil {
		raw, err := jsonx.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		payload = bytes.NewReader(raw)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.url(path), payload)
	if err != nil {
		return fmt.Errorf("creating HTTP request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var le errors.LedgerError
		if jsonx.Unmarshal(data, &le) == nil && le.Code != "" {
			return &le
		}
		return fmt.Errorf("request failed with code %d (message: %s)", resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := jsonx.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding JSON response: %w", err)
	}
	return nil
}

func (c *LedgerClient) CheckHealth(ctx context.Context) (*interfaces.HealthStatus, error) {
	var out interfaces.HealthStatus
	if err := c.do(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *LedgerClient) GetPoh(ctx context.Context) (*node.PohView, error) {
	var out node.PohView
	if err := c.do(ctx, http.MethodGet, "/poh", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *LedgerClient) GetBank(ctx context.Context) (*node.BankView, error) {
	var out node.BankView
	if err := c.do(ctx, http.MethodGet, "/bank", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchLedger implements node.LedgerSource.
func (c *LedgerClient) FetchLedger(ctx context.Context) (*node.LedgerView, error) {
	var out node.LedgerView
	if err := c.do(ctx, http.MethodGet, "/ledger", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *LedgerClient) Tick(ctx context.Context) (*node.TickView, error) {
	var out node.TickView
	if err := c.do(ctx, http.MethodPost, "/tick", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *LedgerClient) Airdrop(ctx context.Context, pubkey string, amount uint64) error {
	return c.do(ctx, http.MethodPost, "/airdrop", map[string]interface{}{"pubkey": pubkey, "amount": amount}, nil)
}

// Transfer submits a signed transaction and returns its signature.
func (c *LedgerClient) Transfer(ctx context.Context, tx transaction.Transaction) (string, error) {
	var out struct {
		Signature string `json:"signature"`
	}
	if err := c.do(ctx, http.MethodPost, "/transfer", tx, &out); err != nil {
		return "", err
	}
	return out.Signature, nil
}

func (c *LedgerClient) Ingest(ctx context.Context, slots []block.Slot, bankHash string) (*node.IngestResult, error) {
	var out node.IngestResult
	req := map[string]interface{}{"slots": slots}
	if bankHash != "" {
		req["bank_hash"] = bankHash
	}
	if err := c.do(ctx, http.MethodPost, "/ingest", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
