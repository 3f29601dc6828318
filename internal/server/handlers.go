package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/suivest/suivest-go/internal/database"
	"github.com/suivest/suivest-go/internal/domain"
	"github.com/suivest/suivest-go/internal/logger"
	"github.com/suivest/suivest-go/internal/repository"
)

// HealthResponse is the JSON body of health check endpoints
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the JSON body of API errors
type ErrorResponse struct {
	Error string `json:"error"`
}

// RoundResponse is the cached current-round view. It carries only derived
// read state; nothing here is writable through the API.
type RoundResponse struct {
	ID           uuid.UUID  `json:"id"`
	VaultID      uuid.UUID  `json:"vault_id"`
	RoundNumber  int64      `json:"round_number"`
	State        string     `json:"state"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      time.Time  `json:"end_time"`
	TotalTickets int64      `json:"total_tickets"`
	PrizePool    int64      `json:"prize_pool"`
	FinalizedAt  *time.Time `json:"finalized_at,omitempty"`
}

// TicketResponse is a user's ticket position in the vault's current round
type TicketResponse struct {
	UserID      uuid.UUID `json:"user_id"`
	VaultID     uuid.UUID `json:"vault_id"`
	RoundNumber int64     `json:"round_number"`
	Tickets     int64     `json:"tickets"`
	Amount      int64     `json:"amount"`
}

type handlers struct {
	ledger     repository.Ledger
	rounds     repository.Rounds
	roundCache *expirable.LRU[uuid.UUID, *RoundResponse]
}

func newHandlers(ledger repository.Ledger, rounds repository.Rounds) *handlers {
	return &handlers{
		ledger:     ledger,
		rounds:     rounds,
		roundCache: expirable.NewLRU[uuid.UUID, *RoundResponse](RoundCacheSize, nil, RoundCacheTTL),
	}
}

func (h *handlers) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: StatusHealthy})
}

func handleReadyz(dbPool database.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), ReadyzPingTimeout)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status:  StatusUnavailable,
				Message: ErrMsgDatabaseUnavailable,
			})
			return
		}
		writeJSON(w, http.StatusOK, HealthResponse{Status: StatusReady})
	}
}

func (h *handlers) handleGetVault(w http.ResponseWriter, r *http.Request) {
	vaultID, ok := pathUUID(w, r, ParamVaultID)
	if !ok {
		return
	}

	vault, err := h.ledger.GetVault(r.Context(), vaultID)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, ErrMsgInternalError, err)
		return
	}
	if vault == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: domain.ErrMsgVaultNotFound})
		return
	}
	writeJSON(w, http.StatusOK, vault)
}

// handleGetCurrentRound serves the hottest query of the API; responses are
// cached briefly per vault since the round only changes on state transitions.
func (h *handlers) handleGetCurrentRound(w http.ResponseWriter, r *http.Request) {
	vaultID, ok := pathUUID(w, r, ParamVaultID)
	if !ok {
		return
	}

	if cached, found := h.roundCache.Get(vaultID); found {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	round, err := h.rounds.GetCurrentRound(r.Context(), vaultID)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, ErrMsgInternalError, err)
		return
	}
	if round == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: domain.ErrMsgRoundNotFound})
		return
	}

	resp := &RoundResponse{
		ID:           round.ID,
		VaultID:      round.VaultID,
		RoundNumber:  round.RoundNumber,
		State:        string(round.State),
		StartTime:    round.StartTime,
		EndTime:      round.EndTime,
		TotalTickets: round.TotalTickets,
		PrizePool:    round.PrizePool,
		FinalizedAt:  round.FinalizedAt,
	}
	h.roundCache.Add(vaultID, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) handleGetCurrentRoundWinners(w http.ResponseWriter, r *http.Request) {
	vaultID, ok := pathUUID(w, r, ParamVaultID)
	if !ok {
		return
	}

	round, err := h.rounds.GetCurrentRound(r.Context(), vaultID)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, ErrMsgInternalError, err)
		return
	}
	if round == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: domain.ErrMsgRoundNotFound})
		return
	}

	winners, err := h.rounds.ListWinners(r.Context(), round.ID)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, ErrMsgInternalError, err)
		return
	}
	writeJSON(w, http.StatusOK, winners)
}

func (h *handlers) handleGetVaultWinners(w http.ResponseWriter, r *http.Request) {
	vaultID, ok := pathUUID(w, r, ParamVaultID)
	if !ok {
		return
	}

	limit := queryLimit(r, DefaultHistoryLimit, MaxHistoryLimit)
	winners, err := h.rounds.ListWinnersByVault(r.Context(), vaultID, limit)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, ErrMsgInternalError, err)
		return
	}
	writeJSON(w, http.StatusOK, winners)
}

func (h *handlers) handleGetUserTickets(w http.ResponseWriter, r *http.Request) {
	vaultID, ok := pathUUID(w, r, ParamVaultID)
	if !ok {
		return
	}
	userID, ok := pathUUID(w, r, ParamUserID)
	if !ok {
		return
	}

	round, err := h.rounds.GetCurrentRound(r.Context(), vaultID)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, ErrMsgInternalError, err)
		return
	}
	if round == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: domain.ErrMsgRoundNotFound})
		return
	}

	bal, err := h.ledger.GetTicketBalance(r.Context(), userID, vaultID, round.RoundNumber)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, ErrMsgInternalError, err)
		return
	}

	resp := TicketResponse{
		UserID:      userID,
		VaultID:     vaultID,
		RoundNumber: round.RoundNumber,
	}
	if bal != nil {
		resp.Tickets = bal.Tickets
		resp.Amount = bal.Amount
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) handleGetUserStreak(w http.ResponseWriter, r *http.Request) {
	vaultID, ok := pathUUID(w, r, ParamVaultID)
	if !ok {
		return
	}
	userID, ok := pathUUID(w, r, ParamUserID)
	if !ok {
		return
	}

	streak, err := h.ledger.GetStreak(r.Context(), userID, vaultID)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, ErrMsgInternalError, err)
		return
	}
	if streak == nil {
		// A user with no streak row simply has not participated yet
		streak = &domain.StreakState{UserID: userID, VaultID: vaultID}
	}
	writeJSON(w, http.StatusOK, streak)
}

func (h *handlers) handleGetUserDeposits(w http.ResponseWriter, r *http.Request) {
	vaultID, ok := pathUUID(w, r, ParamVaultID)
	if !ok {
		return
	}
	userID, ok := pathUUID(w, r, ParamUserID)
	if !ok {
		return
	}

	limit := queryLimit(r, DefaultHistoryLimit, MaxHistoryLimit)
	deposits, err := h.ledger.ListDeposits(r.Context(), userID, vaultID, limit)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, ErrMsgInternalError, err)
		return
	}
	writeJSON(w, http.StatusOK, deposits)
}

func (h *handlers) handleGetUserWithdrawals(w http.ResponseWriter, r *http.Request) {
	vaultID, ok := pathUUID(w, r, ParamVaultID)
	if !ok {
		return
	}
	userID, ok := pathUUID(w, r, ParamUserID)
	if !ok {
		return
	}

	limit := queryLimit(r, DefaultHistoryLimit, MaxHistoryLimit)
	withdrawals, err := h.ledger.ListWithdrawals(r.Context(), userID, vaultID, limit)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, ErrMsgInternalError, err)
		return
	}
	writeJSON(w, http.StatusOK, withdrawals)
}

func (h *handlers) handleGetRoundClaims(w http.ResponseWriter, r *http.Request) {
	roundID, ok := pathUUID(w, r, ParamRoundID)
	if !ok {
		return
	}

	round, err := h.rounds.GetRound(r.Context(), roundID)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, ErrMsgInternalError, err)
		return
	}
	if round == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: domain.ErrMsgRoundNotFound})
		return
	}

	winners, err := h.rounds.ListWinners(r.Context(), roundID)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, ErrMsgInternalError, err)
		return
	}
	writeJSON(w, http.StatusOK, winners)
}

func pathUUID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: ErrMsgInvalidID})
		return uuid.Nil, false
	}
	return id, true
}

func queryLimit(r *http.Request, def, max int) int {
	raw := r.URL.Query().Get(QueryParamLimit)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set(HeaderContentType, ContentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string, err error) {
	logger.FromContext(r.Context()).Error(LogMsgRequestFailed,
		"path", r.URL.Path,
		"error", err)
	writeJSON(w, status, ErrorResponse{Error: msg})
}
