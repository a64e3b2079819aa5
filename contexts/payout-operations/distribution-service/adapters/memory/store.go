// Package memory is the in-process stand-in for the Postgres adapter. It
// keeps the same claim and cancellation semantics under one mutex so
// application tests can exercise race behavior without a database.
package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Fhkhdu777/chase-linker-payout/contexts/payout-operations/distribution-service/domain/entities"
	domainerrors "github.com/Fhkhdu777/chase-linker-payout/contexts/payout-operations/distribution-service/domain/errors"
	"github.com/Fhkhdu777/chase-linker-payout/contexts/payout-operations/distribution-service/ports"
)

// PayoutRow is the mutable stored form of a payout.
type PayoutRow struct {
	Details           entities.PayoutDetails
	Direction         string
	AcceptedAt        *time.Time
	AcceptanceTime    *int
	CreatedAt         time.Time
	AggregatorClaimed bool
}

type Store struct {
	mu sync.Mutex

	traders      []entities.Trader
	payouts      map[string]*PayoutRow
	apiKeys      map[string]string
	callbackLog  []entities.CallbackAttempt
	failAudit    bool
	failEligible error
}

func NewStore() *Store {
	return &Store{
		payouts: make(map[string]*PayoutRow),
		apiKeys: make(map[string]string),
	}
}

// SeedTrader registers an eligible trader. Order of calls fixes numeric
// ordering only if callers pass increasing numeric ids.
func (s *Store) SeedTrader(trader entities.Trader) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.traders = append(s.traders, trader)
	sort.Slice(s.traders, func(i, j int) bool {
		return s.traders[i].NumericID < s.traders[j].NumericID
	})
}

// SeedPayout registers a payout row.
func (s *Store) SeedPayout(row PayoutRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row.Direction == "" {
		row.Direction = entities.DirectionOut
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	copied := row
	s.payouts[row.Details.ID] = &copied
}

// SetMerchantAPIKey configures the credential the callback dispatcher reads.
func (s *Store) SetMerchantAPIKey(merchantID string, apiKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiKeys[merchantID] = apiKey
}

// FailAuditAppends makes every audit insert fail, for AuditFailure paths.
func (s *Store) FailAuditAppends(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAudit = fail
}

// FailEligibilityReads makes trader listing fail with err, for cycle-error
// paths. Pass nil to recover.
func (s *Store) FailEligibilityReads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failEligible = err
}

func (s *Store) ListEligibleTraders(_ context.Context) ([]entities.Trader, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failEligible != nil {
		return nil, s.failEligible
	}
	traders := make([]entities.Trader, len(s.traders))
	copy(traders, s.traders)
	return traders, nil
}

func (s *Store) ListUnassignedPayouts(_ context.Context) ([]entities.UnassignedPayout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]*PayoutRow, 0, len(s.payouts))
	for _, row := range s.payouts {
		if claimable(row) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].CreatedAt.Before(rows[j].CreatedAt)
	})

	payouts := make([]entities.UnassignedPayout, 0, len(rows))
	for _, row := range rows {
		payouts = append(payouts, entities.UnassignedPayout{
			ID:                row.Details.ID,
			NumericID:         row.Details.NumericID,
			Amount:            row.Details.Amount,
			Bank:              row.Details.Bank,
			ExternalReference: row.Details.ExternalReference,
		})
	}
	return payouts, nil
}

func claimable(row *PayoutRow) bool {
	return row.Direction == entities.DirectionOut &&
		row.Details.Status == entities.PayoutStatusCreated &&
		row.AcceptedAt == nil &&
		row.Details.TraderID == nil &&
		!row.AggregatorClaimed
}

func (s *Store) ClaimPayout(_ context.Context, payoutID string, traderID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.payouts[payoutID]
	if !ok || !claimable(row) {
		return false, nil
	}
	assigned := traderID
	grace := entities.AcceptanceGraceSeconds
	row.Details.TraderID = &assigned
	row.AcceptanceTime = &grace
	return true, nil
}

func (s *Store) CancelPayout(_ context.Context, payoutID string, reason *string, reasonCode *string) (entities.PayoutDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.payouts[payoutID]
	if !ok {
		return entities.PayoutDetails{}, domainerrors.ErrPayoutNotFound
	}
	if row.Details.Status == entities.PayoutStatusCancelled {
		return entities.PayoutDetails{}, domainerrors.ErrAlreadyCancelled
	}
	if row.Details.Status.Terminal() {
		return entities.PayoutDetails{}, domainerrors.ErrTerminalStatus
	}

	row.Details.Status = entities.PayoutStatusCancelled
	if reason != nil {
		row.Details.CancelReason = reason
	}
	if reasonCode != nil {
		row.Details.CancelReasonCode = reasonCode
	}

	details := row.Details
	details.MerchantAPIKey = s.apiKeys[row.Details.MerchantID]
	return details, nil
}

func (s *Store) ListDeals(_ context.Context, filters entities.DealListFilters) (entities.DealPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]*PayoutRow, 0, len(s.payouts))
	for _, row := range s.payouts {
		if row.Direction != entities.DirectionOut {
			continue
		}
		if !dealMatches(row, filters) {
			continue
		}
		matched = append(matched, row)
	}

	sort.Slice(matched, func(i, j int) bool {
		if filters.Sort == entities.DealSortStatus {
			a, b := string(matched[i].Details.Status), string(matched[j].Details.Status)
			if a != b {
				if filters.Order == entities.DealOrderAsc {
					return a < b
				}
				return a > b
			}
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		if filters.Order == entities.DealOrderAsc {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := (filters.Page - 1) * filters.PerPage
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filters.PerPage
	if end > len(matched) {
		end = len(matched)
	}

	items := make([]entities.DealListItem, 0, end-start)
	for _, row := range matched[start:end] {
		items = append(items, entities.DealListItem{
			ID:                row.Details.ID,
			NumericID:         row.Details.NumericID,
			Amount:            row.Details.Amount,
			AmountUsdt:        row.Details.AmountUsdt,
			Status:            row.Details.Status,
			Wallet:            row.Details.Wallet,
			Bank:              row.Details.Bank,
			ExternalReference: row.Details.ExternalReference,
			MerchantID:        row.Details.MerchantID,
			TraderID:          row.Details.TraderID,
			CreatedAt:         row.CreatedAt.UTC(),
			CancelReason:      row.Details.CancelReason,
			CancelReasonCode:  row.Details.CancelReasonCode,
		})
	}
	return entities.DealPage{
		Items:   items,
		Total:   total,
		Page:    filters.Page,
		PerPage: filters.PerPage,
	}, nil
}

func dealMatches(row *PayoutRow, filters entities.DealListFilters) bool {
	if filters.Search != "" {
		needle := strings.ToLower(filters.Search)
		reference := ""
		if row.Details.ExternalReference != nil {
			reference = *row.Details.ExternalReference
		}
		if !strings.Contains(strings.ToLower(row.Details.ID), needle) &&
			!strings.Contains(strings.ToLower(reference), needle) &&
			!strings.Contains(strconv.Itoa(row.Details.NumericID), needle) {
			return false
		}
	}
	if filters.Wallet != "" &&
		!strings.Contains(strings.ToLower(row.Details.Wallet), strings.ToLower(filters.Wallet)) {
		return false
	}
	if filters.Amount != nil && !row.Details.Amount.Equal(*filters.Amount) {
		return false
	}
	if filters.Status != "" && row.Details.Status != filters.Status {
		return false
	}
	return true
}

func (s *Store) AppendCallbackAttempt(_ context.Context, attempt entities.CallbackAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAudit {
		return domainerrors.ErrStoreUnavailable
	}
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	s.callbackLog = append(s.callbackLog, attempt)
	return nil
}

// CallbackAttempts returns a copy of the audit log, oldest first.
func (s *Store) CallbackAttempts() []entities.CallbackAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := make([]entities.CallbackAttempt, len(s.callbackLog))
	copy(log, s.callbackLog)
	return log
}

// Payout returns a snapshot of the stored row, for assertions.
func (s *Store) Payout(payoutID string) (PayoutRow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.payouts[payoutID]
	if !ok {
		return PayoutRow{}, false
	}
	return *row, true
}

func (s *Store) NewID() string {
	return uuid.NewString()
}

var _ ports.PayoutRepository = (*Store)(nil)
var _ ports.CallbackAuditLog = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
