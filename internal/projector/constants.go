package projector

// Log messages
const (
	LogMsgProjectorStarted          = "Ledger projector started"
	LogMsgProjectorStopped          = "Ledger projector stopped"
	LogMsgProjectorPassFailed       = "Projector pass failed"
	LogMsgVaultProcessingFailed     = "Vault event processing failed"
	LogMsgSkippingHaltedVault       = "Skipping halted vault"
	LogMsgEventApplied              = "Chain event applied"
	LogMsgNotificationFailed        = "Failed to publish domain notification"
	LogMsgRoundEventForUnknownRound = "Round event references unknown round"
	LogMsgSeedForUnexpectedRound    = "Randomness delivered for round not awaiting it"
	LogMsgSeedVerificationFailed    = "Randomness seed failed verification"
	LogMsgRoundEndConfirmed         = "Round end confirmed on-chain"
	LogMsgHarvestWithoutRound       = "Yield harvested with no open round"
)

// Error context strings
const (
	ErrContextFailedToListVaults    = "failed to list vaults with pending events"
	ErrContextFailedToGetVault      = "failed to get vault"
	ErrContextFailedToDequeue       = "failed to dequeue events"
	ErrContextFailedToApply         = "failed to apply event"
	ErrContextFailedToBeginTx       = "failed to begin transaction"
	ErrContextFailedToCommitTx      = "failed to commit transaction"
	ErrContextFailedToMarkProcessed = "failed to mark event processed"
	ErrContextFailedToGetRound      = "failed to get round"
	ErrContextFailedToUpdateRound   = "failed to update round"
	ErrContextFailedToGetBalance    = "failed to get ticket balance"
	ErrContextFailedToWriteBalance  = "failed to write ticket balance"
	ErrContextFailedToGetStreak     = "failed to get streak state"
	ErrContextFailedToWriteStreak   = "failed to write streak state"
	ErrContextFailedToWriteRecord   = "failed to write derived record"
	ErrContextFailedToUpdateVault   = "failed to update vault aggregates"
	ErrContextFailedToUpdateWinner  = "failed to update winner claim"
)
