package lifecycle

import (
	"math"
	"time"
)

// Gateway call budget and chain resubmission rate limit
const (
	GatewayCallTimeout = 30 * time.Second
	ResubmitInterval   = time.Minute
)

// maxBlockHeight asks the drain check to cover the whole backlog. Winner
// selection must see every applied event, not just those up to the seed.
const maxBlockHeight = math.MaxInt64

// Log messages
const (
	LogMsgManagerStarted         = "Round lifecycle manager started"
	LogMsgManagerStopped         = "Round lifecycle manager stopped"
	LogMsgManagerPassFailed      = "Lifecycle pass failed"
	LogMsgTickFailed             = "Vault lifecycle tick failed"
	LogMsgBootstrapRound         = "Bootstrapped first round for vault"
	LogMsgStartRoundSubmitted    = "Start-round transaction submitted"
	LogMsgRoundLocked            = "Round locked"
	LogMsgRandomnessRequested    = "Randomness requested"
	LogMsgRandomnessQueryFailed  = "Randomness status query failed"
	LogMsgSeedVerificationFailed = "Randomness seed failed verification"
	LogMsgWaitingForProjector    = "Waiting for projector to drain event backlog"
	LogMsgRoundStuck             = "Round stuck waiting for randomness, flagged for operator"
	LogMsgEmptyRound             = "Round finalized with no ticket holders"
	LogMsgRoundFinalized         = "Round finalized"
	LogMsgPrizesDistributed      = "Prize distribution submitted"
	LogMsgDistributionFailed     = "Prize distribution failed, winners persisted for retry"
	LogMsgNotificationFailed     = "Failed to publish domain notification"
)

// Error context strings
const (
	ErrContextFailedToListVaults        = "failed to list active vaults"
	ErrContextFailedToGetRound          = "failed to get current round"
	ErrContextFailedToCreateRound       = "failed to create round"
	ErrContextFailedToStartRound        = "failed to submit start-round"
	ErrContextFailedToSumTickets        = "failed to sum ticket balances"
	ErrContextFailedToLockRound         = "failed to lock round"
	ErrContextFailedToRequestRandomness = "failed to request randomness"
	ErrContextFailedToUpdateRound       = "failed to update round"
	ErrContextFailedToCheckDrain        = "failed to check event backlog"
	ErrContextFailedToLoadBalances      = "failed to load ticket balances"
	ErrContextFailedToLoadStreaks       = "failed to load streak state"
	ErrContextFailedToSelectWinners     = "failed to select winners"
	ErrContextFailedToBeginTx           = "failed to begin finalization transaction"
	ErrContextFailedToCommitTx          = "failed to commit finalization transaction"
	ErrContextFailedToFinalizeRound     = "failed to finalize round"
	ErrContextFailedToInsertWinner      = "failed to insert winner"
	ErrContextFailedToUpdateVault       = "failed to update vault aggregates"
	ErrContextFailedToWriteStreak       = "failed to write streak state"
	ErrContextFailedToCarryBalances     = "failed to carry ticket balances"
	ErrContextFailedToEndRound          = "failed to submit end-round"
	ErrContextFailedToDistribute        = "failed to submit prize distribution"
)
