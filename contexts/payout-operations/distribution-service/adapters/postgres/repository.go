package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Fhkhdu777/chase-linker-payout/contexts/payout-operations/distribution-service/domain/entities"
	domainerrors "github.com/Fhkhdu777/chase-linker-payout/contexts/payout-operations/distribution-service/domain/errors"
	"github.com/Fhkhdu777/chase-linker-payout/contexts/payout-operations/distribution-service/ports"
)

// notAggregatorClaimed guards against the separate aggregator pathway racing
// the trader distribution flow.
const notAggregatorClaimed = "NOT EXISTS (SELECT 1 FROM aggregator_payouts ap WHERE ap.payout_id = payouts.id)"

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

func (r *Repository) ListEligibleTraders(ctx context.Context) ([]entities.Trader, error) {
	var rows []eligibleTraderRow
	err := r.db.WithContext(ctx).
		Table("payouts AS p").
		Select(`DISTINCT u.id, u.email, u.numeric_id,
			COALESCE(u.balance_rub, 0) AS balance_rub,
			COALESCE(u.frozen_rub, 0) AS frozen_rub,
			COALESCE(u.payout_balance, 0) AS payout_balance`).
		Joins("JOIN trader_merchants tm ON tm.merchant_id = p.merchant_id").
		Joins("JOIN users u ON u.id = tm.trader_id").
		Where("p.direction = ?", entities.DirectionOut).
		Where("p.status = ?", string(entities.PayoutStatusCreated)).
		Where("p.trader_id IS NULL OR p.trader_id = u.id").
		Where("tm.is_merchant_enabled = TRUE").
		Where("tm.is_fee_out_enabled = TRUE").
		Where("COALESCE(u.balance_rub, 0) > 0").
		Where("u.traffic_enabled = TRUE").
		Where("u.banned = FALSE").
		Order("u.numeric_id").
		Scan(&rows).Error
	if err != nil {
		return nil, r.logError("distribution_repo_list_traders_failed", err)
	}

	traders := make([]entities.Trader, 0, len(rows))
	for _, row := range rows {
		traders = append(traders, entities.Trader{
			ID:            row.ID,
			Email:         row.Email,
			NumericID:     row.NumericID,
			BalanceRub:    row.BalanceRub,
			FrozenRub:     row.FrozenRub,
			PayoutBalance: row.PayoutBalance,
		})
	}
	return traders, nil
}

func (r *Repository) ListUnassignedPayouts(ctx context.Context) ([]entities.UnassignedPayout, error) {
	var rows []payoutModel
	err := r.db.WithContext(ctx).
		Model(&payoutModel{}).
		Where("direction = ?", entities.DirectionOut).
		Where("status = ?", string(entities.PayoutStatusCreated)).
		Where("accepted_at IS NULL").
		Where("trader_id IS NULL").
		Where(notAggregatorClaimed).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, r.logError("distribution_repo_list_unassigned_failed", err)
	}

	payouts := make([]entities.UnassignedPayout, 0, len(rows))
	for _, row := range rows {
		payouts = append(payouts, entities.UnassignedPayout{
			ID:                row.ID,
			NumericID:         row.NumericID,
			Amount:            row.Amount,
			Bank:              row.Bank,
			ExternalReference: row.ExternalReference,
		})
	}
	return payouts, nil
}

// ClaimPayout is one conditional UPDATE carrying the full eligibility
// predicate. Zero rows affected means another writer got there first or the
// payout left the claimable state; the caller treats that as "not eligible".
func (r *Repository) ClaimPayout(ctx context.Context, payoutID string, traderID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&payoutModel{}).
		Where("id = ?", payoutID).
		Where("direction = ?", entities.DirectionOut).
		Where("status = ?", string(entities.PayoutStatusCreated)).
		Where("accepted_at IS NULL").
		Where("trader_id IS NULL").
		Where(notAggregatorClaimed).
		Updates(map[string]any{
			"trader_id":       traderID,
			"acceptance_time": entities.AcceptanceGraceSeconds,
		})
	if result.Error != nil {
		return false, r.logError("distribution_repo_claim_failed", result.Error,
			"payout_id", payoutID,
			"trader_id", traderID,
		)
	}
	return result.RowsAffected > 0, nil
}

// CancelPayout locks the row for the duration of the transaction, rejects
// terminal statuses, and applies the new status plus any provided reason
// fields. The merchant credential is read alongside so the caller can
// dispatch the callback after commit without another round trip.
func (r *Repository) CancelPayout(ctx context.Context, payoutID string, reason *string, reasonCode *string) (entities.PayoutDetails, error) {
	var details entities.PayoutDetails

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row payoutModel
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", payoutID).
			First(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrPayoutNotFound
			}
			return fmt.Errorf("%w: %v", domainerrors.ErrStoreUnavailable, err)
		}

		status := entities.PayoutStatus(row.Status)
		if status == entities.PayoutStatusCancelled {
			return domainerrors.ErrAlreadyCancelled
		}
		if status.Terminal() {
			return fmt.Errorf("payout with status %s cannot be cancelled: %w", row.Status, domainerrors.ErrTerminalStatus)
		}

		updates := map[string]any{
			"status":       string(entities.PayoutStatusCancelled),
			"cancelled_at": time.Now().UTC(),
		}
		if reason != nil {
			updates["cancel_reason"] = *reason
		}
		if reasonCode != nil {
			updates["cancel_reason_code"] = *reasonCode
		}

		result := tx.Model(&payoutModel{}).Where("id = ?", payoutID).Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("%w: %v", domainerrors.ErrStoreUnavailable, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: cancel update matched no row", domainerrors.ErrStoreUnavailable)
		}

		row.Status = string(entities.PayoutStatusCancelled)
		if reason != nil {
			row.CancelReason = reason
		}
		if reasonCode != nil {
			row.CancelReasonCode = reasonCode
		}

		apiKey := ""
		if row.MerchantID != "" {
			var merchant merchantModel
			err := tx.Select("api_key_public").Where("id = ?", row.MerchantID).First(&merchant).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %v", domainerrors.ErrStoreUnavailable, err)
			}
			if merchant.APIKeyPublic != nil {
				apiKey = *merchant.APIKeyPublic
			}
		}

		details = row.toDetails(apiKey)
		return nil
	})
	if err != nil {
		return entities.PayoutDetails{}, err
	}
	return details, nil
}

func (r *Repository) ListDeals(ctx context.Context, filters entities.DealListFilters) (entities.DealPage, error) {
	base := r.db.WithContext(ctx).
		Model(&payoutModel{}).
		Where("direction = ?", entities.DirectionOut)
	base = applyDealFilters(base, filters)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return entities.DealPage{}, r.logError("distribution_repo_count_deals_failed", err)
	}

	offset := (filters.Page - 1) * filters.PerPage
	if offset < 0 {
		offset = 0
	}

	var rows []payoutModel
	err := base.Session(&gorm.Session{}).
		Order(dealOrderClause(filters)).
		Limit(filters.PerPage).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return entities.DealPage{}, r.logError("distribution_repo_list_deals_failed", err)
	}

	items := make([]entities.DealListItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDealItem())
	}
	return entities.DealPage{
		Items:   items,
		Total:   total,
		Page:    filters.Page,
		PerPage: filters.PerPage,
	}, nil
}

func applyDealFilters(query *gorm.DB, filters entities.DealListFilters) *gorm.DB {
	if filters.Search != "" {
		like := "%" + filters.Search + "%"
		query = query.Where(
			"(id ILIKE ? OR external_reference ILIKE ? OR numeric_id::text ILIKE ?)",
			like, like, like,
		)
	}
	if filters.Wallet != "" {
		query = query.Where("wallet ILIKE ?", "%"+filters.Wallet+"%")
	}
	if filters.Amount != nil {
		query = query.Where("amount = ?", *filters.Amount)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", string(filters.Status))
	}
	return query
}

func dealOrderClause(filters entities.DealListFilters) string {
	direction := "DESC"
	if filters.Order == entities.DealOrderAsc {
		direction = "ASC"
	}
	if filters.Sort == entities.DealSortStatus {
		return "status " + direction + ", created_at DESC"
	}
	return "created_at " + direction
}

// AppendCallbackAttempt inserts one audit row. The table is append-only; a
// duplicate id indicates an id-generation bug and surfaces as a hard error.
func (r *Repository) AppendCallbackAttempt(ctx context.Context, attempt entities.CallbackAttempt) error {
	row := callbackLogModel{
		ID:         attempt.ID,
		PayoutID:   attempt.PayoutID,
		URL:        attempt.URL,
		Payload:    datatypes.JSON(attempt.Payload),
		Response:   attempt.ResponseBody,
		StatusCode: attempt.StatusCode,
		Error:      attempt.Error,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return r.logError("distribution_repo_callback_log_duplicate", err,
				"callback_id", attempt.ID,
				"payout_id", attempt.PayoutID,
			)
		}
		return r.logError("distribution_repo_callback_log_failed", err,
			"payout_id", attempt.PayoutID,
		)
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "payout-operations/distribution-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("distribution repository operation failed", fields...)
	return err
}

type eligibleTraderRow struct {
	ID            string          `gorm:"column:id"`
	Email         string          `gorm:"column:email"`
	NumericID     int             `gorm:"column:numeric_id"`
	BalanceRub    decimal.Decimal `gorm:"column:balance_rub"`
	FrozenRub     decimal.Decimal `gorm:"column:frozen_rub"`
	PayoutBalance decimal.Decimal `gorm:"column:payout_balance"`
}

type payoutModel struct {
	ID                 string                      `gorm:"column:id;primaryKey"`
	NumericID          int                         `gorm:"column:numeric_id"`
	Amount             decimal.Decimal             `gorm:"column:amount;type:numeric"`
	AmountUsdt         decimal.Decimal             `gorm:"column:amount_usdt;type:numeric"`
	Status             string                      `gorm:"column:status"`
	Direction          string                      `gorm:"column:direction"`
	Wallet             string                      `gorm:"column:wallet"`
	Bank               string                      `gorm:"column:bank"`
	ExternalReference  *string                     `gorm:"column:external_reference"`
	MerchantID         string                      `gorm:"column:merchant_id"`
	MerchantWebhookURL *string                     `gorm:"column:merchant_webhook_url"`
	MerchantMetadata   datatypes.JSON              `gorm:"column:merchant_metadata"`
	ProofFiles         datatypes.JSONSlice[string] `gorm:"column:proof_files"`
	DisputeFiles       datatypes.JSONSlice[string] `gorm:"column:dispute_files"`
	DisputeMessage     *string                     `gorm:"column:dispute_message"`
	CancelReason       *string                     `gorm:"column:cancel_reason"`
	CancelReasonCode   *string                     `gorm:"column:cancel_reason_code"`
	TraderID           *string                     `gorm:"column:trader_id"`
	AcceptedAt         *time.Time                  `gorm:"column:accepted_at"`
	AcceptanceTime     *int                        `gorm:"column:acceptance_time"`
	CreatedAt          time.Time                   `gorm:"column:created_at"`
	CancelledAt        *time.Time                  `gorm:"column:cancelled_at"`
}

func (payoutModel) TableName() string {
	return "payouts"
}

func (m payoutModel) toDetails(apiKey string) entities.PayoutDetails {
	webhookURL := ""
	if m.MerchantWebhookURL != nil {
		webhookURL = *m.MerchantWebhookURL
	}
	return entities.PayoutDetails{
		ID:                 m.ID,
		NumericID:          m.NumericID,
		Amount:             m.Amount,
		AmountUsdt:         m.AmountUsdt,
		Status:             entities.PayoutStatus(m.Status),
		Wallet:             m.Wallet,
		Bank:               m.Bank,
		ExternalReference:  m.ExternalReference,
		MerchantID:         m.MerchantID,
		MerchantWebhookURL: webhookURL,
		MerchantMetadata:   json.RawMessage(m.MerchantMetadata),
		ProofFiles:         []string(m.ProofFiles),
		DisputeFiles:       []string(m.DisputeFiles),
		DisputeMessage:     m.DisputeMessage,
		CancelReason:       m.CancelReason,
		CancelReasonCode:   m.CancelReasonCode,
		TraderID:           m.TraderID,
		MerchantAPIKey:     apiKey,
	}
}

func (m payoutModel) toDealItem() entities.DealListItem {
	return entities.DealListItem{
		ID:                m.ID,
		NumericID:         m.NumericID,
		Amount:            m.Amount,
		AmountUsdt:        m.AmountUsdt,
		Status:            entities.PayoutStatus(m.Status),
		Wallet:            m.Wallet,
		Bank:              m.Bank,
		ExternalReference: m.ExternalReference,
		MerchantID:        m.MerchantID,
		TraderID:          m.TraderID,
		CreatedAt:         m.CreatedAt.UTC(),
		CancelReason:      m.CancelReason,
		CancelReasonCode:  m.CancelReasonCode,
	}
}

type merchantModel struct {
	ID           string  `gorm:"column:id;primaryKey"`
	APIKeyPublic *string `gorm:"column:api_key_public"`
}

func (merchantModel) TableName() string {
	return "merchants"
}

type callbackLogModel struct {
	ID         string         `gorm:"column:id;primaryKey"`
	PayoutID   string         `gorm:"column:payout_id"`
	URL        string         `gorm:"column:url"`
	Payload    datatypes.JSON `gorm:"column:payload"`
	Response   *string        `gorm:"column:response"`
	StatusCode *int           `gorm:"column:status_code"`
	Error      *string        `gorm:"column:error"`
}

func (callbackLogModel) TableName() string {
	return "payout_callback_logs"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.PayoutRepository = (*Repository)(nil)
var _ ports.CallbackAuditLog = (*Repository)(nil)
