package model

import (
	"time"

	"github.com/google/uuid"
)

type Perk struct {
	ID          string
	Title       string
	Description string
	PointsCost  int
	Category    string
	IsAvailable bool
}

type ExchangeState string

const (
	ExchangeConfirming ExchangeState = "confirming"
	ExchangeProcessing ExchangeState = "processing"
	ExchangeSuccess    ExchangeState = "success"
	ExchangeError      ExchangeState = "error"
)

type PerkExchange struct {
	ID             uuid.UUID
	UserID         int64
	PerkID         string
	PointsCost     int
	IdempotencyKey string
	State          ExchangeState
	FailureReason  string
	BalanceAfter   int
	CreatedAt      time.Time
	FinishedAt     *time.Time
}

// ExchangeQuote is what the confirmation dialog shows before the user confirms.
type ExchangeQuote struct {
	Perk         *Perk
	Balance      int
	BalanceAfter int
	State        ExchangeState
}
