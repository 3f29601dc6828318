package domain

// Domain notification types published on the in-process event bus after the
// projector or lifecycle manager commits a change. These are the extension
// point for downstream consumers (metrics, notifications, analytics); they
// are not chain events.
//
// Notification types follow the pattern: <entity>.<action>
const (
	// NotifyDepositConfirmed is published when a Deposited event projects to
	// a confirmed deposit record
	NotifyDepositConfirmed = "ledger.deposit.confirmed"

	// NotifyWithdrawalConfirmed is published when a Withdrawn event projects
	// to a confirmed withdrawal record
	NotifyWithdrawalConfirmed = "ledger.withdrawal.confirmed"

	// NotifyEventFailed is published when an event payload fails validation
	// and a Failed derived record is written
	NotifyEventFailed = "ledger.event.failed"

	// NotifyRoundStarted is published when a round transitions to Active
	NotifyRoundStarted = "round.started"

	// NotifyRoundLocked is published when a round transitions to Locked
	NotifyRoundLocked = "round.locked"

	// NotifyRoundFinalized is published when winners are persisted and the
	// round transitions to Finalized
	NotifyRoundFinalized = "round.finalized"

	// NotifyPrizeClaimed is published when a PrizeClaimed event flips a
	// winner's claim flag
	NotifyPrizeClaimed = "prize.claimed"

	// NotifyVaultHalted is published when the reconciler detects an
	// invariant violation and halts a vault
	NotifyVaultHalted = "vault.halted"

	// NotifyRoundStuck is published when a round exceeds the randomness
	// timeout and is flagged for operator intervention
	NotifyRoundStuck = "round.stuck"
)
