package reconcile

// FinalizedRoundsPerPass bounds how many recent finalized rounds are
// re-verified each pass
const FinalizedRoundsPerPass = 20

// Log messages
const (
	LogMsgReconcilerStarted    = "Ledger reconciler started"
	LogMsgReconcilerStopped    = "Ledger reconciler stopped"
	LogMsgReconcilerPassFailed = "Reconciliation pass failed"
	LogMsgQueueFull            = "Reconciliation queue full, vault skipped this pass"
	LogMsgVaultHalted          = "Vault halted on aggregate mismatch"
	LogMsgNotificationFailed   = "Failed to publish vault-halted alert"
)

// Error context strings
const (
	ErrContextFailedToGetVault   = "failed to get vault"
	ErrContextFailedToSumRecords = "failed to sum derived records"
	ErrContextFailedToListRounds = "failed to list finalized rounds"
	ErrContextFailedToSumPrizes  = "failed to sum winner prizes"
	ErrContextFailedToHaltVault  = "failed to halt vault"
)

// Halt reason formats
const (
	HaltReasonAggregateFormat = "aggregate mismatch: stored deposits=%d derived=%d, stored withdrawals=%d derived=%d"
	HaltReasonPrizesFormat    = "round %d prize mismatch: pool=%d winner sum=%d"
)
