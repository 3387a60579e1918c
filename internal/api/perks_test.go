package api

import (
	"net/http"
	"testing"
	"time"

	"tourii_backend/internal/model"
	"tourii_backend/internal/service"
	"tourii_backend/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func perkRouter(ps *mockPerkService) *gin.Engine {
	return newTestRouter(func(g *gin.RouterGroup, a *auth.TelegramAuth) {
		NewPerkRoutes(g, ps, a)
	})
}

func TestPerkRoutes_Quote(t *testing.T) {
	perk := &model.Perk{ID: "p1", Title: "Onsen day pass", PointsCost: 500, IsAvailable: true}

	tests := []struct {
		name     string
		quote    *model.ExchangeQuote
		err      error
		expected int
	}{
		{name: "Not enough points", err: service.ErrNotEnoughPoints, expected: http.StatusUnprocessableEntity},
		{name: "Unavailable", err: service.ErrPerkUnavailable, expected: http.StatusConflict},
		{name: "Unknown perk", err: service.ErrPerkNotFound, expected: http.StatusNotFound},
		{
			name:     "Confirming",
			quote:    &model.ExchangeQuote{Perk: perk, Balance: 1200, BalanceAfter: 700, State: model.ExchangeConfirming},
			expected: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps := &mockPerkService{}
			ps.On("Quote", mock.Anything, int64(testUserID), "p1").Return(tt.quote, tt.err)

			w := doRequest(t, perkRouter(ps), http.MethodGet, "/api/v1/perks/p1/quote", nil)

			assert.Equal(t, tt.expected, w.Code)
			if tt.quote != nil {
				body := decode[map[string]any](t, w)
				assert.Equal(t, "confirming", body["state"])
				assert.EqualValues(t, 700, body["balanceAfter"])
			}
		})
	}
}

func TestPerkRoutes_Exchange(t *testing.T) {
	finished := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	id := uuid.New()

	ps := &mockPerkService{}
	ps.On("Exchange", mock.Anything, int64(testUserID), "p1", "").Return(nil, service.ErrMissingIdempotencyKey)
	ps.On("Exchange", mock.Anything, int64(testUserID), "p1", "key-1").Return(&model.PerkExchange{
		ID:           id,
		UserID:       testUserID,
		PerkID:       "p1",
		PointsCost:   500,
		State:        model.ExchangeSuccess,
		BalanceAfter: 700,
		FinishedAt:   &finished,
	}, nil)
	ps.On("Exchange", mock.Anything, int64(testUserID), "p1", "key-2").Return(nil, service.ErrIdempotencyKeyConflict)

	router := perkRouter(ps)

	w := doRequest(t, router, http.MethodPost, "/api/v1/perks/p1/exchange", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, router, http.MethodPost, "/api/v1/perks/p1/exchange", nil, idempotencyHeader, "key-1")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[ExchangeResponse](t, w)
	assert.Equal(t, id.String(), body.ID)
	assert.Equal(t, "success", body.State)
	assert.Equal(t, 700, body.BalanceAfter)

	w = doRequest(t, router, http.MethodPost, "/api/v1/perks/p1/exchange", nil, idempotencyHeader, "key-2")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPerkRoutes_ListExchanges(t *testing.T) {
	ps := &mockPerkService{}
	ps.On("ListExchanges", mock.Anything, int64(testUserID)).Return([]*model.PerkExchange{
		{ID: uuid.New(), PerkID: "p2", State: model.ExchangeError, FailureReason: "not enough points"},
	}, nil)

	router := perkRouter(ps)

	w := doRequest(t, router, http.MethodGet, "/api/v1/users/42/exchanges", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[[]ExchangeResponse](t, w)
	require.Len(t, body, 1)
	assert.Equal(t, "error", body[0].State)
	assert.Equal(t, "not enough points", body[0].FailureReason)

	w = doRequest(t, router, http.MethodGet, "/api/v1/users/43/exchanges", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
