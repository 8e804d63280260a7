package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"household-planner/internal/model"
	"household-planner/internal/timewindow"
)

// StarsPerTask is credited on every completion.
const StarsPerTask = 1

// StarCosts prices the cosmetic items a member can buy.
var StarCosts = map[string]int{
	"displayName": 10,
	"accentColor": 25,
	"avatar":      50,
}

// PurchaseResult is returned after a successful purchase.
type PurchaseResult struct {
	Item      string `json:"item_type"`
	Value     string `json:"value"`
	Cost      int    `json:"cost"`
	Remaining int    `json:"new_stars"`
}

// LedgerService credits and debits star balances and records every change.
type LedgerService struct {
	profiles ProfileStore
	clock    timewindow.Clock
	logger   zerolog.Logger
}

func NewLedgerService(profiles ProfileStore, clock timewindow.Clock, logger zerolog.Logger) *LedgerService {
	return &LedgerService{profiles: profiles, clock: clock, logger: logger}
}

func (s *LedgerService) Profile(ctx context.Context, member string) (model.StarProfile, error) {
	return s.profiles.Load(ctx, member)
}

// AwardStars credits amount stars to member and appends a ledger entry.
func (s *LedgerService) AwardStars(ctx context.Context, member string, amount int, reason string) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("award must be positive: %w", ErrValidation)
	}
	profile, err := s.profiles.Load(ctx, member)
	if err != nil {
		return 0, err
	}
	profile.Stars += amount
	profile.History = append(profile.History, model.StarEntry{
		Timestamp:      s.clock.Now().UTC(),
		Reason:         reason,
		Amount:         amount,
		RemainingStars: profile.Stars,
	})
	if err := s.profiles.Save(ctx, member, profile); err != nil {
		return 0, err
	}
	s.logger.Info().
		Str("member", member).
		Int("amount", amount).
		Int("stars", profile.Stars).
		Msg("stars awarded")
	return profile.Stars, nil
}

// Purchase debits the price of item and records what was bought.
func (s *LedgerService) Purchase(ctx context.Context, member, item, value string) (PurchaseResult, error) {
	cost, ok := StarCosts[item]
	if !ok {
		return PurchaseResult{}, fmt.Errorf("item %q: %w", item, ErrUnknownItem)
	}
	profile, err := s.profiles.Load(ctx, member)
	if err != nil {
		return PurchaseResult{}, err
	}
	if profile.Stars < cost {
		return PurchaseResult{Item: item, Cost: cost, Remaining: profile.Stars},
			fmt.Errorf("need %d, have %d: %w", cost, profile.Stars, ErrInsufficientStars)
	}

	profile.Stars -= cost
	profile.History = append(profile.History, model.StarEntry{
		Timestamp:      s.clock.Now().UTC(),
		Reason:         purchaseReason(item, value),
		Amount:         -cost,
		RemainingStars: profile.Stars,
	})
	if err := s.profiles.Save(ctx, member, profile); err != nil {
		return PurchaseResult{}, err
	}
	s.logger.Info().
		Str("member", member).
		Str("item", item).
		Int("cost", cost).
		Int("stars", profile.Stars).
		Msg("purchase recorded")
	return PurchaseResult{Item: item, Value: value, Cost: cost, Remaining: profile.Stars}, nil
}

func purchaseReason(item, value string) string {
	value = strings.TrimSpace(value)
	switch item {
	case "displayName":
		return fmt.Sprintf("Changed display name to '%s'", value)
	case "accentColor":
		return fmt.Sprintf("Changed accent color to '%s'", value)
	case "avatar":
		// Avatar values are URLs, too long for a ledger line.
		return "Changed avatar"
	default:
		return "Changed " + item
	}
}
