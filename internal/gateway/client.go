package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/suivest/suivest-go/internal/domain"
	"github.com/suivest/suivest-go/internal/logger"
)

// RPCClient talks JSON-RPC to the chain bridge node. It implements both
// Gateway (transaction submission) and Feed (event subscription via polling).
type RPCClient struct {
	url          string
	httpClient   *http.Client
	pollInterval time.Duration
}

// NewRPCClient creates a gateway client for the given bridge URL
func NewRPCClient(url string, requestTimeout, pollInterval time.Duration) *RPCClient {
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}
	if pollInterval <= 0 {
		pollInterval = DefaultFeedPollInterval
	}
	return &RPCClient{
		url:          url,
		httpClient:   &http.Client{Timeout: requestTimeout},
		pollInterval: pollInterval,
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// call performs one JSON-RPC round trip. Network failures and 5xx responses
// come back wrapped as transient; rpc-level errors are permanent.
func (c *RPCClient) call(ctx context.Context, method string, params, result any) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToEncodeRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToBuildRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Transient(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return Transient(fmt.Errorf("%s: %d", ErrContextNodeUnavailable, resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: %d", ErrContextUnexpectedStatus, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Transient(err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(raw, &rpcResp); err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToDecodeResponse, err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("%s: %w", ErrContextFailedToDecodeResponse, err)
		}
	}
	return nil
}

type txResult struct {
	TxHash string `json:"tx_hash"`
}

func (c *RPCClient) submit(ctx context.Context, method string, params any) (string, error) {
	var res txResult
	if err := c.call(ctx, method, params, &res); err != nil {
		return "", err
	}
	return res.TxHash, nil
}

func (c *RPCClient) SubmitDeposit(ctx context.Context, vaultID, userID uuid.UUID, amount int64) (string, error) {
	return c.submit(ctx, MethodSubmitDeposit, map[string]any{
		"vault_id": vaultID, "user_id": userID, "amount": amount,
	})
}

func (c *RPCClient) SubmitWithdrawal(ctx context.Context, vaultID, userID uuid.UUID, amount int64) (string, error) {
	return c.submit(ctx, MethodSubmitWithdrawal, map[string]any{
		"vault_id": vaultID, "user_id": userID, "amount": amount,
	})
}

func (c *RPCClient) StartRound(ctx context.Context, vaultID uuid.UUID, roundNumber int64) (string, error) {
	return c.submit(ctx, MethodStartRound, map[string]any{
		"vault_id": vaultID, "round_number": roundNumber,
	})
}

func (c *RPCClient) EndRound(ctx context.Context, vaultID uuid.UUID, roundNumber int64, seed string) (string, error) {
	return c.submit(ctx, MethodEndRound, map[string]any{
		"vault_id": vaultID, "round_number": roundNumber, "seed": seed,
	})
}

func (c *RPCClient) RequestRandomness(ctx context.Context, vaultID uuid.UUID, roundNumber int64) (string, error) {
	var res struct {
		Handle string `json:"handle"`
	}
	err := c.call(ctx, MethodRequestRandomness, map[string]any{
		"vault_id": vaultID, "round_number": roundNumber,
	}, &res)
	if err != nil {
		return "", err
	}
	return res.Handle, nil
}

func (c *RPCClient) QueryRandomness(ctx context.Context, handle string) (*RandomnessStatus, error) {
	var status RandomnessStatus
	err := c.call(ctx, MethodQueryRandomness, map[string]any{"handle": handle}, &status)
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *RPCClient) ClaimPrize(ctx context.Context, vaultID, userID uuid.UUID) (string, error) {
	return c.submit(ctx, MethodClaimPrize, map[string]any{
		"vault_id": vaultID, "user_id": userID,
	})
}

func (c *RPCClient) DistributePrizes(ctx context.Context, vaultID uuid.UUID, roundNumber int64, payouts []PrizePayout) (string, error) {
	items := make([]map[string]any, 0, len(payouts))
	for _, p := range payouts {
		items = append(items, map[string]any{"user_id": p.UserID, "amount": p.Amount})
	}
	return c.submit(ctx, MethodDistributePrizes, map[string]any{
		"vault_id": vaultID, "round_number": roundNumber, "payouts": items,
	})
}

func (c *RPCClient) WaitForTransaction(ctx context.Context, txHash string) error {
	for {
		var res struct {
			Status string `json:"status"`
		}
		if err := c.call(ctx, MethodTransactionStatus, map[string]any{"tx_hash": txHash}, &res); err != nil {
			return err
		}
		switch res.Status {
		case TxStatusExecuted:
			return nil
		case TxStatusFailed:
			return fmt.Errorf("%s: %s", ErrContextTransactionFailed, txHash)
		}

		select {
		case <-time.After(c.pollInterval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// feedEvent is one feed entry: a raw chain event plus the bridge's own
// delivery cursor (distinct from the event log's seq).
type feedEvent struct {
	Cursor int64             `json:"cursor"`
	Event  domain.ChainEvent `json:"event"`
}

// Subscribe polls the bridge for events past an in-memory cursor and delivers
// them in order. The cursor resets on restart; redelivered events dedupe at
// the event log.
func (c *RPCClient) Subscribe(ctx context.Context, handler EventHandler) error {
	log := logger.FromContext(ctx)
	var cursor int64

	for {
		entries, err := c.fetchEvents(ctx, cursor)
		if err != nil {
			return err
		}

		for i := range entries {
			if err := handler(ctx, &entries[i].Event); err != nil {
				// Not advancing the cursor makes the next poll redeliver
				log.Warn(LogMsgEventDeliveryFailed, "tx_hash", entries[i].Event.TxHash, "error", err)
				break
			}
			cursor = entries[i].Cursor
		}

		select {
		case <-time.After(c.pollInterval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *RPCClient) fetchEvents(ctx context.Context, cursor int64) ([]feedEvent, error) {
	var entries []feedEvent
	err := c.call(ctx, MethodEventsSince, map[string]any{
		"cursor": cursor, "limit": FeedFetchLimit,
	}, &entries)
	if err != nil {
		return nil, err
	}
	return entries, nil
}
