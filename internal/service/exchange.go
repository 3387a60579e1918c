package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tourii_backend/internal/model"
	"tourii_backend/internal/repository"
	"tourii_backend/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ExchangeEvent string

const (
	EventConfirm ExchangeEvent = "confirm"
	EventSucceed ExchangeEvent = "succeed"
	EventFail    ExchangeEvent = "fail"
	EventReopen  ExchangeEvent = "reopen"
)

// NextExchangeState drives the exchange dialog:
// confirming -confirm-> processing -succeed|fail-> success|error -reopen-> confirming.
func NextExchangeState(state model.ExchangeState, event ExchangeEvent) (model.ExchangeState, error) {
	switch {
	case state == model.ExchangeConfirming && event == EventConfirm:
		return model.ExchangeProcessing, nil
	case state == model.ExchangeProcessing && event == EventSucceed:
		return model.ExchangeSuccess, nil
	case state == model.ExchangeProcessing && event == EventFail:
		return model.ExchangeError, nil
	case (state == model.ExchangeSuccess || state == model.ExchangeError) && event == EventReopen:
		return model.ExchangeConfirming, nil
	}
	return state, fmt.Errorf("%w: %s on %s", ErrInvalidExchangeTransition, event, state)
}

// ValidateExchange rejects an exchange the balance cannot cover.
func ValidateExchange(balance, cost int) error {
	if balance < cost {
		return fmt.Errorf("%w: have %d, need %d", ErrNotEnoughPoints, balance, cost)
	}
	return nil
}

func RemainingBalance(balance, cost int) int {
	return balance - cost
}

type PerkService struct {
	repo     PerkRepository
	notifier Notifier
}

func NewPerkService(repo PerkRepository, notifier Notifier) *PerkService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &PerkService{
		repo:     repo,
		notifier: notifier,
	}
}

func (s *PerkService) ListPerks(ctx context.Context) ([]*model.Perk, error) {
	perks, err := s.repo.ListPerks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list perks: %w", err)
	}
	return perks, nil
}

func (s *PerkService) UpsertPerk(ctx context.Context, perk *model.Perk) error {
	switch {
	case perk.ID == "":
		return fmt.Errorf("%w: perk id is required", ErrInvalidArgument)
	case perk.Title == "":
		return fmt.Errorf("%w: perk title is required", ErrInvalidArgument)
	case perk.PointsCost < 0:
		return fmt.Errorf("%w: points cost must not be negative", ErrInvalidArgument)
	}

	if err := s.repo.UpsertPerk(ctx, perk); err != nil {
		return fmt.Errorf("failed to save perk: %w", err)
	}
	return nil
}

// Quote prepares the confirmation step. A balance below the cost is rejected
// here, before the dialog enters the confirming state.
func (s *PerkService) Quote(ctx context.Context, userID int64, perkID string) (*model.ExchangeQuote, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	perk, err := s.repo.GetPerk(ctx, perkID)
	if err != nil {
		if errors.Is(err, repository.ErrPerkNotFound) {
			return nil, ErrPerkNotFound
		}
		return nil, fmt.Errorf("failed to get perk: %w", err)
	}

	if !perk.IsAvailable {
		return nil, ErrPerkUnavailable
	}

	if err := ValidateExchange(user.Points, perk.PointsCost); err != nil {
		return nil, err
	}

	return &model.ExchangeQuote{
		Perk:         perk,
		Balance:      user.Points,
		BalanceAfter: RemainingBalance(user.Points, perk.PointsCost),
		State:        model.ExchangeConfirming,
	}, nil
}

// Exchange redeems a perk. Requests carrying an idempotency key that was
// already processed return the stored exchange and debit nothing.
func (s *PerkService) Exchange(ctx context.Context, userID int64, perkID, idempotencyKey string) (*model.PerkExchange, error) {
	log := logger.Logger()

	if idempotencyKey == "" {
		return nil, ErrMissingIdempotencyKey
	}

	if existing, err := s.existingExchange(ctx, userID, perkID, idempotencyKey); err != nil || existing != nil {
		return existing, err
	}

	quote, err := s.Quote(ctx, userID, perkID)
	if err != nil {
		return nil, err
	}

	state, err := NextExchangeState(quote.State, EventConfirm)
	if err != nil {
		return nil, err
	}

	exchange := &model.PerkExchange{
		ID:             uuid.New(),
		UserID:         userID,
		PerkID:         perkID,
		PointsCost:     quote.Perk.PointsCost,
		IdempotencyKey: idempotencyKey,
		State:          state,
		CreatedAt:      time.Now().UTC(),
	}
	s.notifyState(ctx, exchange)

	done, err := s.repo.ExecuteExchange(ctx, exchange)
	switch {
	case err == nil:
		if done.State, err = NextExchangeState(exchange.State, EventSucceed); err != nil {
			return nil, err
		}
		log.Info("perk exchanged",
			zap.Int64("user_id", userID),
			zap.String("perk_id", perkID),
			zap.Int("balance_after", done.BalanceAfter))
		s.notifyState(ctx, done)
		return done, nil

	case errors.Is(err, repository.ErrDuplicateExchange):
		return s.settleDuplicate(ctx, exchange)

	case errors.Is(err, repository.ErrNotEnoughPoints):
		if exchange.State, err = NextExchangeState(exchange.State, EventFail); err != nil {
			return nil, err
		}
		finished := time.Now().UTC()
		exchange.FailureReason = ErrNotEnoughPoints.Error()
		exchange.BalanceAfter = quote.Balance
		exchange.FinishedAt = &finished

		if err := s.repo.RecordFailedExchange(ctx, exchange); err != nil {
			if errors.Is(err, repository.ErrDuplicateExchange) {
				return s.settleDuplicate(ctx, exchange)
			}
			return nil, fmt.Errorf("failed to record exchange: %w", err)
		}

		log.Info("perk exchange failed",
			zap.Int64("user_id", userID),
			zap.String("perk_id", perkID),
			zap.String("reason", exchange.FailureReason))
		s.notifyState(ctx, exchange)
		return exchange, nil

	default:
		return nil, fmt.Errorf("failed to execute exchange: %w", err)
	}
}

// settleDuplicate resolves a request that lost the idempotency key race. The
// pending exchange already announced "processing", so it is closed with the
// state of the exchange that won.
func (s *PerkService) settleDuplicate(ctx context.Context, pending *model.PerkExchange) (*model.PerkExchange, error) {
	existing, err := s.existingExchange(ctx, pending.UserID, pending.PerkID, pending.IdempotencyKey)
	if err == nil && existing == nil {
		err = fmt.Errorf("exchange for key %q vanished", pending.IdempotencyKey)
	}
	if err != nil {
		s.notify(ctx, pending.UserID, exchangePayload(pending, model.ExchangeError, err.Error(), true))
		return nil, err
	}

	payload := exchangePayload(existing, existing.State, existing.FailureReason, true)
	payload["exchange_id"] = pending.ID.String()
	payload["replay_of"] = existing.ID.String()
	s.notify(ctx, pending.UserID, payload)

	return existing, nil
}

func (s *PerkService) existingExchange(ctx context.Context, userID int64, perkID, idempotencyKey string) (*model.PerkExchange, error) {
	existing, err := s.repo.GetExchangeByKey(ctx, userID, idempotencyKey)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get exchange: %w", err)
	}
	if existing.PerkID != perkID {
		return nil, ErrIdempotencyKeyConflict
	}
	return existing, nil
}

func (s *PerkService) ListExchanges(ctx context.Context, userID int64) ([]*model.PerkExchange, error) {
	exchanges, err := s.repo.ListExchanges(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchanges: %w", err)
	}
	return exchanges, nil
}

func (s *PerkService) notifyState(ctx context.Context, ex *model.PerkExchange) {
	s.notify(ctx, ex.UserID, exchangePayload(ex, ex.State, ex.FailureReason, false))
}

// exchangePayload builds an exchange state frame. Replayed frames repeat a
// result that was already announced.
func exchangePayload(ex *model.PerkExchange, state model.ExchangeState, reason string, replayed bool) map[string]any {
	payload := map[string]any{
		"exchange_id": ex.ID.String(),
		"perk_id":     ex.PerkID,
		"state":       string(state),
	}
	if state == model.ExchangeSuccess {
		payload["balance_after"] = ex.BalanceAfter
	}
	if reason != "" {
		payload["reason"] = reason
	}
	if replayed {
		payload["replayed"] = true
	}
	return payload
}

func (s *PerkService) notify(ctx context.Context, userID int64, payload map[string]any) {
	err := s.notifier.Notify(ctx, userID, model.Notification{
		Type:    model.NotificationExchangeState,
		Payload: payload,
	})
	if err != nil {
		logger.Logger().Warn("failed to deliver exchange notification",
			zap.Int64("user_id", userID),
			zap.Any("state", payload["state"]),
			zap.Error(err))
	}
}
