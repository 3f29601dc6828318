package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/suivest/suivest-go/internal/domain"
)

// MockPool is a mock implementation of database.Pool
type MockPool struct {
	mock.Mock
}

func (m *MockPool) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockPool) Close() {
	m.Called()
}

func newTestServer(ledger *MockLedger, rounds *MockRounds, pool *MockPool) *Server {
	if pool == nil {
		pool = new(MockPool)
	}
	return NewServer(0, pool, ledger, rounds)
}

func doRequest(t *testing.T, srv *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func activeRound(vaultID uuid.UUID) *domain.Round {
	return &domain.Round{
		ID:          uuid.New(),
		VaultID:     vaultID,
		RoundNumber: 7,
		State:       domain.RoundStateActive,
		StartTime:   time.Now().UTC().Add(-time.Hour),
		EndTime:     time.Now().UTC().Add(time.Hour),
		PrizePool:   1_000,
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(new(MockLedger), new(MockRounds), nil)

	rec := doRequest(t, srv, http.MethodGet, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[HealthResponse](t, rec)
	assert.Equal(t, StatusHealthy, body.Status)
}

func TestReadyz(t *testing.T) {
	t.Run("ready when database responds", func(t *testing.T) {
		pool := new(MockPool)
		pool.On("Ping", mock.Anything).Return(nil)
		srv := newTestServer(new(MockLedger), new(MockRounds), pool)

		rec := doRequest(t, srv, http.MethodGet, "/readyz")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, StatusReady, decodeBody[HealthResponse](t, rec).Status)
	})

	t.Run("unavailable when ping fails", func(t *testing.T) {
		pool := new(MockPool)
		pool.On("Ping", mock.Anything).Return(errors.New("no route to host"))
		srv := newTestServer(new(MockLedger), new(MockRounds), pool)

		rec := doRequest(t, srv, http.MethodGet, "/readyz")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, StatusUnavailable, decodeBody[HealthResponse](t, rec).Status)
	})
}

func TestGetVault(t *testing.T) {
	t.Run("returns vault", func(t *testing.T) {
		ledger := new(MockLedger)
		vault := &domain.Vault{ID: uuid.New(), TokenSymbol: "USDC", TokenDecimals: 6, IsActive: true}
		ledger.On("GetVault", mock.Anything, vault.ID).Return(vault, nil)
		srv := newTestServer(ledger, new(MockRounds), nil)

		rec := doRequest(t, srv, http.MethodGet, "/api/v1/vaults/"+vault.ID.String())

		assert.Equal(t, http.StatusOK, rec.Code)
		got := decodeBody[domain.Vault](t, rec)
		assert.Equal(t, vault.ID, got.ID)
	})

	t.Run("404 for unknown vault", func(t *testing.T) {
		ledger := new(MockLedger)
		ledger.On("GetVault", mock.Anything, mock.Anything).Return(nil, nil)
		srv := newTestServer(ledger, new(MockRounds), nil)

		rec := doRequest(t, srv, http.MethodGet, "/api/v1/vaults/"+uuid.NewString())

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("400 for malformed id", func(t *testing.T) {
		srv := newTestServer(new(MockLedger), new(MockRounds), nil)

		rec := doRequest(t, srv, http.MethodGet, "/api/v1/vaults/not-a-uuid")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, ErrMsgInvalidID, decodeBody[ErrorResponse](t, rec).Error)
	})
}

func TestGetCurrentRoundCachesResponse(t *testing.T) {
	rounds := new(MockRounds)
	vaultID := uuid.New()
	round := activeRound(vaultID)
	rounds.On("GetCurrentRound", mock.Anything, vaultID).Return(round, nil).Once()
	srv := newTestServer(new(MockLedger), rounds, nil)

	first := doRequest(t, srv, http.MethodGet, "/api/v1/vaults/"+vaultID.String()+"/round")
	second := doRequest(t, srv, http.MethodGet, "/api/v1/vaults/"+vaultID.String()+"/round")

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code)
	got := decodeBody[RoundResponse](t, second)
	assert.Equal(t, round.ID, got.ID)
	assert.Equal(t, string(domain.RoundStateActive), got.State)
	// Second hit served from cache; the Once() expectation fails otherwise.
	rounds.AssertExpectations(t)
}

func TestGetCurrentRoundNotFound(t *testing.T) {
	rounds := new(MockRounds)
	rounds.On("GetCurrentRound", mock.Anything, mock.Anything).Return(nil, nil)
	srv := newTestServer(new(MockLedger), rounds, nil)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/vaults/"+uuid.NewString()+"/round")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetUserTickets(t *testing.T) {
	vaultID := uuid.New()
	userID := uuid.New()
	target := "/api/v1/vaults/" + vaultID.String() + "/users/" + userID.String() + "/tickets"

	t.Run("returns balance", func(t *testing.T) {
		ledger := new(MockLedger)
		rounds := new(MockRounds)
		round := activeRound(vaultID)
		rounds.On("GetCurrentRound", mock.Anything, vaultID).Return(round, nil)
		ledger.On("GetTicketBalance", mock.Anything, userID, vaultID, round.RoundNumber).
			Return(&domain.TicketBalance{UserID: userID, VaultID: vaultID, RoundNumber: round.RoundNumber, Tickets: 25, Amount: 25_000_000}, nil)
		srv := newTestServer(ledger, rounds, nil)

		rec := doRequest(t, srv, http.MethodGet, target)

		assert.Equal(t, http.StatusOK, rec.Code)
		got := decodeBody[TicketResponse](t, rec)
		assert.Equal(t, int64(25), got.Tickets)
		assert.Equal(t, int64(25_000_000), got.Amount)
	})

	t.Run("zero position for user without balance row", func(t *testing.T) {
		ledger := new(MockLedger)
		rounds := new(MockRounds)
		rounds.On("GetCurrentRound", mock.Anything, vaultID).Return(activeRound(vaultID), nil)
		ledger.On("GetTicketBalance", mock.Anything, userID, vaultID, int64(7)).Return(nil, nil)
		srv := newTestServer(ledger, rounds, nil)

		rec := doRequest(t, srv, http.MethodGet, target)

		assert.Equal(t, http.StatusOK, rec.Code)
		got := decodeBody[TicketResponse](t, rec)
		assert.Equal(t, int64(0), got.Tickets)
		assert.Equal(t, userID, got.UserID)
	})
}

func TestGetUserStreakDefaultsToZero(t *testing.T) {
	ledger := new(MockLedger)
	vaultID := uuid.New()
	userID := uuid.New()
	ledger.On("GetStreak", mock.Anything, userID, vaultID).Return(nil, nil)
	srv := newTestServer(ledger, new(MockRounds), nil)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/vaults/"+vaultID.String()+"/users/"+userID.String()+"/streak")

	assert.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[domain.StreakState](t, rec)
	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, 0, got.CurrentStreak)
}

func TestGetVaultWinnersLimit(t *testing.T) {
	t.Run("default limit", func(t *testing.T) {
		rounds := new(MockRounds)
		vaultID := uuid.New()
		rounds.On("ListWinnersByVault", mock.Anything, vaultID, DefaultHistoryLimit).Return([]domain.Winner{}, nil)
		srv := newTestServer(new(MockLedger), rounds, nil)

		rec := doRequest(t, srv, http.MethodGet, "/api/v1/vaults/"+vaultID.String()+"/winners")

		assert.Equal(t, http.StatusOK, rec.Code)
		rounds.AssertExpectations(t)
	})

	t.Run("limit clamped to max", func(t *testing.T) {
		rounds := new(MockRounds)
		vaultID := uuid.New()
		rounds.On("ListWinnersByVault", mock.Anything, vaultID, MaxHistoryLimit).Return([]domain.Winner{}, nil)
		srv := newTestServer(new(MockLedger), rounds, nil)

		rec := doRequest(t, srv, http.MethodGet, "/api/v1/vaults/"+vaultID.String()+"/winners?limit=5000")

		assert.Equal(t, http.StatusOK, rec.Code)
		rounds.AssertExpectations(t)
	})

	t.Run("garbage limit falls back to default", func(t *testing.T) {
		rounds := new(MockRounds)
		vaultID := uuid.New()
		rounds.On("ListWinnersByVault", mock.Anything, vaultID, DefaultHistoryLimit).Return([]domain.Winner{}, nil)
		srv := newTestServer(new(MockLedger), rounds, nil)

		rec := doRequest(t, srv, http.MethodGet, "/api/v1/vaults/"+vaultID.String()+"/winners?limit=zero")

		assert.Equal(t, http.StatusOK, rec.Code)
		rounds.AssertExpectations(t)
	})
}

func TestGetRoundClaims(t *testing.T) {
	t.Run("returns claim status per winner", func(t *testing.T) {
		rounds := new(MockRounds)
		roundID := uuid.New()
		claimed := time.Now().UTC()
		winners := []domain.Winner{
			{ID: uuid.New(), RoundID: roundID, Position: 1, PrizeAmount: 500, HasClaimed: true, ClaimedAt: &claimed},
			{ID: uuid.New(), RoundID: roundID, Position: 2, PrizeAmount: 300},
		}
		rounds.On("GetRound", mock.Anything, roundID).Return(&domain.Round{ID: roundID, State: domain.RoundStateFinalized}, nil)
		rounds.On("ListWinners", mock.Anything, roundID).Return(winners, nil)
		srv := newTestServer(new(MockLedger), rounds, nil)

		rec := doRequest(t, srv, http.MethodGet, "/api/v1/winners/"+roundID.String()+"/claims")

		assert.Equal(t, http.StatusOK, rec.Code)
		got := decodeBody[[]domain.Winner](t, rec)
		require.Len(t, got, 2)
		assert.True(t, got[0].HasClaimed)
		assert.False(t, got[1].HasClaimed)
	})

	t.Run("404 for unknown round", func(t *testing.T) {
		rounds := new(MockRounds)
		rounds.On("GetRound", mock.Anything, mock.Anything).Return(nil, nil)
		srv := newTestServer(new(MockLedger), rounds, nil)

		rec := doRequest(t, srv, http.MethodGet, "/api/v1/winners/"+uuid.NewString()+"/claims")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		rounds.AssertNotCalled(t, "ListWinners", mock.Anything, mock.Anything)
	})
}

func TestRepositoryErrorReturns500(t *testing.T) {
	ledger := new(MockLedger)
	ledger.On("GetVault", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))
	srv := newTestServer(ledger, new(MockRounds), nil)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/vaults/"+uuid.NewString())

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, ErrMsgInternalError, decodeBody[ErrorResponse](t, rec).Error)
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(new(MockLedger), new(MockRounds), nil)

	rec := doRequest(t, srv, http.MethodGet, "/healthz")

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}
