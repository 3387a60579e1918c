package api

import (
	"net/http"
	"strconv"

	"tourii_backend/internal/middleware"
	"tourii_backend/internal/service"
	"tourii_backend/pkg/auth"

	"github.com/gin-gonic/gin"
)

const idempotencyHeader = "Idempotency-Key"

type perkRoutes struct {
	ps service.PerkServiceI
	a  *auth.TelegramAuth
}

func NewPerkRoutes(handler *gin.RouterGroup, ps service.PerkServiceI, a *auth.TelegramAuth) {
	r := &perkRoutes{ps: ps, a: a}

	h := handler.Group("/perks")
	h.Use(a.TelegramAuthMiddleware())
	{
		h.GET("", r.ListPerks)
		h.GET("/:perk_id/quote", r.Quote)
		h.POST("/:perk_id/exchange", r.Exchange)
	}

	history := handler.Group("/users/:user_id/exchanges")
	history.Use(a.TelegramAuthMiddleware(), middleware.SelfOnly("user_id"))
	{
		history.GET("", r.ListExchanges)
	}
}

func (r *perkRoutes) ListPerks(c *gin.Context) {
	perks, err := r.ps.ListPerks(c.Request.Context())
	if err != nil {
		respondError(c, "failed to list perks", err)
		return
	}

	out := make([]PerkResponse, len(perks))
	for i, p := range perks {
		out[i] = toPerkResponse(p)
	}

	c.JSON(http.StatusOK, out)
}

func (r *perkRoutes) Quote(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	quote, err := r.ps.Quote(c.Request.Context(), user.ID, c.Param("perk_id"))
	if err != nil {
		respondError(c, "failed to quote perk", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"perk":         toPerkResponse(quote.Perk),
		"balance":      quote.Balance,
		"balanceAfter": quote.BalanceAfter,
		"state":        quote.State,
	})
}

// Exchange answers 200 for both successful and failed exchanges: the outcome
// is the exchange state in the body.
func (r *perkRoutes) Exchange(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	exchange, err := r.ps.Exchange(c.Request.Context(), user.ID, c.Param("perk_id"), c.GetHeader(idempotencyHeader))
	if err != nil {
		respondError(c, "failed to exchange perk", err)
		return
	}

	c.JSON(http.StatusOK, toExchangeResponse(exchange))
}

func (r *perkRoutes) ListExchanges(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("user_id"), 10, 64)

	exchanges, err := r.ps.ListExchanges(c.Request.Context(), id)
	if err != nil {
		respondError(c, "failed to list exchanges", err)
		return
	}

	out := make([]ExchangeResponse, len(exchanges))
	for i, e := range exchanges {
		out[i] = toExchangeResponse(e)
	}

	c.JSON(http.StatusOK, out)
}
