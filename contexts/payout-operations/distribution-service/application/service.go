package application

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Fhkhdu777/chase-linker-payout/contexts/payout-operations/distribution-service/domain/assignment"
	"github.com/Fhkhdu777/chase-linker-payout/contexts/payout-operations/distribution-service/domain/entities"
	domainerrors "github.com/Fhkhdu777/chase-linker-payout/contexts/payout-operations/distribution-service/domain/errors"
	"github.com/Fhkhdu777/chase-linker-payout/contexts/payout-operations/distribution-service/ports"
	"github.com/Fhkhdu777/chase-linker-payout/internal/platform/events"
	"github.com/Fhkhdu777/chase-linker-payout/internal/platform/metrics"
)

const logModule = "payout-operations/distribution-service"

// RotationCursor is the round-robin pointer shared by automatic distribution
// cycles. The mutex is held for the whole selection-and-commit pass of one
// cycle; the manual path targets a specific trader and never touches it.
type RotationCursor struct {
	mu    sync.Mutex
	index int
}

func NewRotationCursor() *RotationCursor {
	return &RotationCursor{}
}

// Service wires the distribution use cases. Dependencies are exported
// fields; construct it through the module.
type Service struct {
	Repo       ports.PayoutRepository
	Audit      ports.CallbackAuditLog
	Webhook    ports.WebhookGateway
	Bus        *events.Bus
	Limits     *LimitRegistry
	AutoConfig *AutoConfigHolder
	Cursor     *RotationCursor
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

// ListTraders returns the currently eligible traders with their volatile
// capacity limits overlaid.
func (s Service) ListTraders(ctx context.Context) ([]entities.Trader, error) {
	traders, err := s.Repo.ListEligibleTraders(ctx)
	if err != nil {
		return nil, err
	}
	for i := range traders {
		if limit, ok := s.Limits.Get(traders[i].ID); ok {
			value := limit
			traders[i].MaxAmount = &value
		}
	}
	return traders, nil
}

// ListUnassignedPayouts returns the payouts awaiting assignment.
func (s Service) ListUnassignedPayouts(ctx context.Context) ([]entities.UnassignedPayout, error) {
	return s.Repo.ListUnassignedPayouts(ctx)
}

// ListDeals serves the historical listing with sanitized filters.
func (s Service) ListDeals(ctx context.Context, filters entities.DealListFilters) (entities.DealPage, error) {
	return s.Repo.ListDeals(ctx, sanitizeDealFilters(filters))
}

func sanitizeDealFilters(filters entities.DealListFilters) entities.DealListFilters {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PerPage < 1 {
		filters.PerPage = 25
	}
	if filters.PerPage > 200 {
		filters.PerPage = 200
	}
	filters.Search = strings.TrimSpace(filters.Search)
	filters.Wallet = strings.TrimSpace(filters.Wallet)
	filters.Status = entities.PayoutStatus(strings.ToUpper(strings.TrimSpace(string(filters.Status))))
	if filters.Sort != entities.DealSortStatus {
		filters.Sort = entities.DealSortCreatedAt
	}
	if filters.Order != entities.DealOrderAsc && filters.Order != entities.DealOrderDesc {
		if filters.Sort == entities.DealSortStatus {
			filters.Order = entities.DealOrderAsc
		} else {
			filters.Order = entities.DealOrderDesc
		}
	}
	return filters
}

// AssignManually routes an operator-chosen pairing through the same
// conditional claim as the automatic path.
func (s Service) AssignManually(ctx context.Context, payoutID string, traderID string) error {
	payoutID = strings.TrimSpace(payoutID)
	traderID = strings.TrimSpace(traderID)
	if traderID == "" {
		return domainerrors.ErrTraderIDRequired
	}

	applied, err := s.Repo.ClaimPayout(ctx, payoutID, traderID)
	if err != nil {
		return err
	}
	if !applied {
		return domainerrors.ErrPayoutNotEligible
	}

	resolveLogger(s.Logger).Info("payout assigned manually",
		"event", "payout_assigned_manual",
		"module", logModule,
		"layer", "application",
		"payout_id", payoutID,
		"trader_id", traderID,
	)
	metrics.AssignmentsTotal.WithLabelValues("manual").Inc()
	s.publish(events.PayoutsUpdated("manual"))
	return nil
}

// DistributeOnce runs one automatic distribution cycle: read eligibility,
// plan pairings round-robin, then commit each pairing in its own conditional
// transaction. A pairing lost to a concurrent claim is skipped silently.
func (s Service) DistributeOnce(ctx context.Context) (int, error) {
	logger := resolveLogger(s.Logger)

	traders, err := s.Repo.ListEligibleTraders(ctx)
	if err != nil {
		return 0, err
	}
	if len(traders) == 0 {
		logger.Debug("no eligible traders, skipping distribution",
			"event", "distribution_no_traders",
			"module", logModule,
			"layer", "application",
		)
		return 0, nil
	}

	payouts, err := s.Repo.ListUnassignedPayouts(ctx)
	if err != nil {
		return 0, err
	}
	if len(payouts) == 0 {
		return 0, nil
	}

	limits := s.Limits.Snapshot()

	s.Cursor.mu.Lock()
	defer s.Cursor.mu.Unlock()

	pairings, nextCursor := assignment.Plan(traders, payouts, limits, s.Cursor.index)
	logSkippedPayouts(logger, payouts, pairings)

	// Claims committed before a mid-cycle failure stay committed, so they
	// are announced and counted no matter how the loop exits.
	applied := 0
	defer func() {
		if applied > 0 {
			metrics.AssignmentsTotal.WithLabelValues("auto").Add(float64(applied))
			s.publish(events.PayoutsUpdated("auto"))
		}
	}()

	for _, pairing := range pairings {
		ok, err := s.Repo.ClaimPayout(ctx, pairing.Payout.ID, pairing.Trader.ID)
		if err != nil {
			// Keep whatever already committed; the cursor still advances so
			// the next cycle does not re-favor the same traders.
			s.Cursor.index = nextCursor
			return applied, err
		}
		if !ok {
			continue
		}
		applied++
		logger.Info("payout assigned automatically",
			"event", "payout_assigned_auto",
			"module", logModule,
			"layer", "application",
			"payout_id", pairing.Payout.ID,
			"payout_numeric_id", pairing.Payout.NumericID,
			"trader_id", pairing.Trader.ID,
			"trader_numeric_id", pairing.Trader.NumericID,
		)
	}
	s.Cursor.index = nextCursor
	return applied, nil
}

func logSkippedPayouts(logger *slog.Logger, payouts []entities.UnassignedPayout, pairings []entities.Pairing) {
	paired := make(map[string]struct{}, len(pairings))
	for _, pairing := range pairings {
		paired[pairing.Payout.ID] = struct{}{}
	}
	for _, payout := range payouts {
		if !payout.Amount.IsPositive() {
			continue
		}
		if _, ok := paired[payout.ID]; ok {
			continue
		}
		logger.Warn("payout skipped, no trader accepts this amount",
			"event", "distribution_payout_skipped",
			"module", logModule,
			"layer", "application",
			"payout_id", payout.ID,
			"amount", payout.Amount.StringFixed(2),
		)
	}
}

// CancelOutcome reports the cancellation and its callback delivery
// separately; cancellation success never depends on the callback.
type CancelOutcome struct {
	Status   entities.PayoutStatus
	Callback entities.CallbackResult
}

// Cancel transitions the payout to CANCELLED under a row lock and, strictly
// after commit, notifies the owning merchant. An audit-log failure surfaces
// as an error even though the cancellation itself has already committed.
func (s Service) Cancel(ctx context.Context, payoutID string, reason *string, reasonCode *string) (CancelOutcome, error) {
	payout, err := s.Repo.CancelPayout(ctx, strings.TrimSpace(payoutID), sanitizeOptional(reason), sanitizeOptional(reasonCode))
	if err != nil {
		return CancelOutcome{}, err
	}

	result, err := s.dispatchCancelCallback(ctx, payout)

	s.publish(events.PayoutsUpdated("manual-cancel"))

	outcome := CancelOutcome{Status: payout.Status, Callback: result}
	if err != nil {
		return outcome, err
	}
	return outcome, nil
}

func sanitizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// AutoSettings returns the live distribution configuration.
func (s Service) AutoSettings() entities.AutoDistributionConfig {
	return s.AutoConfig.Current()
}

// UpdateAutoSettings replaces the distribution configuration; the scheduler
// picks the change up without a restart.
func (s Service) UpdateAutoSettings(enabled bool, intervalSeconds int64) entities.AutoDistributionConfig {
	updated := s.AutoConfig.Set(entities.AutoDistributionConfig{
		Enabled:         enabled,
		IntervalSeconds: intervalSeconds,
	})

	if updated.Enabled {
		metrics.AutoDistributionEnabled.Set(1)
	} else {
		metrics.AutoDistributionEnabled.Set(0)
	}
	resolveLogger(s.Logger).Info("auto distribution settings updated",
		"event", "distribution_settings_updated",
		"module", logModule,
		"layer", "application",
		"enabled", updated.Enabled,
		"interval_seconds", updated.IntervalSeconds,
	)
	s.publish(events.SettingsUpdated())
	return updated
}

// UpdateTraderLimit stores or clears the trader's capacity limit and returns
// the sanitized value (nil when cleared).
func (s Service) UpdateTraderLimit(traderID string, maxAmount *decimal.Decimal) *decimal.Decimal {
	sanitized := s.Limits.Set(strings.TrimSpace(traderID), maxAmount)

	limitAttr := "cleared"
	if sanitized != nil {
		limitAttr = sanitized.StringFixed(2)
	}
	resolveLogger(s.Logger).Info("trader limit updated",
		"event", "trader_limit_updated",
		"module", logModule,
		"layer", "application",
		"trader_id", traderID,
		"limit", limitAttr,
	)
	s.publish(events.LimitsUpdated())
	s.publish(events.TradersUpdated())
	return sanitized
}

func (s Service) publish(event events.Event) {
	if s.Bus != nil {
		s.Bus.Publish(event)
	}
}
