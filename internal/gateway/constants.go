package gateway

import "time"

// RPC client defaults
const (
	DefaultRequestTimeout   = 15 * time.Second
	DefaultFeedPollInterval = 2 * time.Second

	FeedFetchLimit = 200
)

// JSON-RPC method names on the chain bridge
const (
	MethodSubmitDeposit     = "vault_submitDeposit"
	MethodSubmitWithdrawal  = "vault_submitWithdrawal"
	MethodStartRound        = "vault_startRound"
	MethodEndRound          = "vault_endRound"
	MethodRequestRandomness = "vault_requestRandomness"
	MethodQueryRandomness   = "vault_queryRandomness"
	MethodClaimPrize        = "vault_claimPrize"
	MethodDistributePrizes  = "vault_distributePrizes"
	MethodTransactionStatus = "vault_transactionStatus"
	MethodEventsSince       = "vault_eventsSince"
)

// Transaction statuses reported by the bridge
const (
	TxStatusExecuted = "executed"
	TxStatusFailed   = "failed"
)

// Log messages
const (
	LogMsgEventDeliveryFailed = "Event delivery failed, will redeliver"
)

// Error context strings
const (
	ErrContextFailedToEncodeRequest  = "failed to encode rpc request"
	ErrContextFailedToBuildRequest   = "failed to build rpc request"
	ErrContextFailedToDecodeResponse = "failed to decode rpc response"
	ErrContextNodeUnavailable        = "bridge node unavailable, status"
	ErrContextUnexpectedStatus       = "unexpected bridge response status"
	ErrContextTransactionFailed      = "transaction failed on chain"
)
