package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/Fhkhdu777/chase-linker-payout/contexts/payout-operations/distribution-service/application"
	"github.com/Fhkhdu777/chase-linker-payout/contexts/payout-operations/distribution-service/domain/entities"
	domainerrors "github.com/Fhkhdu777/chase-linker-payout/contexts/payout-operations/distribution-service/domain/errors"
	httptransport "github.com/Fhkhdu777/chase-linker-payout/contexts/payout-operations/distribution-service/transport/http"
)

type Handler struct {
	Service  application.Service
	Logger   *slog.Logger
	validate *validator.Validate
}

func NewHandler(service application.Service, logger *slog.Logger) Handler {
	return Handler{
		Service:  service,
		Logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h Handler) ListTradersHandler(ctx context.Context) ([]httptransport.TraderDTO, error) {
	traders, err := h.Service.ListTraders(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]httptransport.TraderDTO, 0, len(traders))
	for _, trader := range traders {
		dtos = append(dtos, toTraderDTO(trader))
	}
	return dtos, nil
}

func (h Handler) ListPayoutsHandler(ctx context.Context) ([]httptransport.UnassignedPayoutDTO, error) {
	payouts, err := h.Service.ListUnassignedPayouts(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]httptransport.UnassignedPayoutDTO, 0, len(payouts))
	for _, payout := range payouts {
		dtos = append(dtos, httptransport.UnassignedPayoutDTO{
			ID:                payout.ID,
			NumericID:         payout.NumericID,
			Amount:            payout.Amount.InexactFloat64(),
			Bank:              payout.Bank,
			ExternalReference: payout.ExternalReference,
		})
	}
	return dtos, nil
}

func (h Handler) ListDealsHandler(ctx context.Context, query httptransport.DealListQuery) (httptransport.DealListResponse, error) {
	filters := entities.DealListFilters{
		Search:  query.Search,
		Wallet:  query.Wallet,
		Status:  entities.PayoutStatus(query.Status),
		Page:    query.Page,
		PerPage: query.PerPage,
		Sort:    entities.DealSortField(query.Sort),
		Order:   entities.DealSortOrder(query.Order),
	}
	if query.Amount != nil {
		amount := decimal.NewFromFloat(*query.Amount)
		filters.Amount = &amount
	}

	page, err := h.Service.ListDeals(ctx, filters)
	if err != nil {
		return httptransport.DealListResponse{}, err
	}

	resp := httptransport.DealListResponse{
		Items: make([]httptransport.DealDTO, 0, len(page.Items)),
		Pagination: httptransport.DealPaginationDTO{
			Total:      page.Total,
			Page:       page.Page,
			PerPage:    page.PerPage,
			TotalPages: page.TotalPages(),
		},
	}
	for _, item := range page.Items {
		resp.Items = append(resp.Items, httptransport.DealDTO{
			ID:                item.ID,
			NumericID:         item.NumericID,
			Amount:            item.Amount.InexactFloat64(),
			AmountUsdt:        item.AmountUsdt.InexactFloat64(),
			Status:            string(item.Status),
			Wallet:            item.Wallet,
			Bank:              item.Bank,
			ExternalReference: item.ExternalReference,
			MerchantID:        item.MerchantID,
			TraderID:          item.TraderID,
			CreatedAt:         item.CreatedAt.UTC().Format(time.RFC3339),
			CancelReason:      item.CancelReason,
			CancelReasonCode:  item.CancelReasonCode,
		})
	}
	return resp, nil
}

func (h Handler) AssignPayoutHandler(
	ctx context.Context,
	payoutID string,
	req httptransport.AssignPayoutRequest,
) (httptransport.AssignPayoutResponse, error) {
	if err := h.validate.Struct(req); err != nil {
		return httptransport.AssignPayoutResponse{}, domainerrors.ErrTraderIDRequired
	}
	if err := h.Service.AssignManually(ctx, payoutID, req.TraderID); err != nil {
		return httptransport.AssignPayoutResponse{}, err
	}
	return httptransport.AssignPayoutResponse{Success: true}, nil
}

func (h Handler) CancelPayoutHandler(
	ctx context.Context,
	payoutID string,
	req httptransport.CancelPayoutRequest,
) (httptransport.CancelPayoutResponse, error) {
	outcome, err := h.Service.Cancel(ctx, payoutID, req.Reason, req.ReasonCode)
	if err != nil {
		return httptransport.CancelPayoutResponse{}, err
	}
	return httptransport.CancelPayoutResponse{
		Success:            true,
		Status:             entities.CallbackEventCanceled,
		CallbackDispatched: outcome.Callback.Delivered,
		CallbackError:      outcome.Callback.Error,
	}, nil
}

func (h Handler) GetAutoSettingsHandler(_ context.Context) httptransport.AutoSettingsDTO {
	return toSettingsDTO(h.Service.AutoSettings())
}

// UpdateAutoSettingsHandler accepts any interval; values below one second are
// clamped by the configuration itself.
func (h Handler) UpdateAutoSettingsHandler(
	_ context.Context,
	req httptransport.AutoSettingsDTO,
) (httptransport.AutoSettingsDTO, error) {
	return toSettingsDTO(h.Service.UpdateAutoSettings(req.Enabled, req.IntervalSeconds)), nil
}

func (h Handler) UpdateTraderLimitHandler(
	_ context.Context,
	traderID string,
	req httptransport.UpdateLimitRequest,
) (httptransport.UpdateLimitResponse, error) {
	if traderID == "" {
		return httptransport.UpdateLimitResponse{}, domainerrors.ErrTraderIDRequired
	}

	var limit *decimal.Decimal
	if req.MaxAmount != nil {
		value := decimal.NewFromFloat(*req.MaxAmount)
		limit = &value
	}
	sanitized := h.Service.UpdateTraderLimit(traderID, limit)

	resp := httptransport.UpdateLimitResponse{TraderID: traderID}
	if sanitized != nil {
		value := sanitized.InexactFloat64()
		resp.MaxAmount = &value
	}
	return resp, nil
}

func toTraderDTO(trader entities.Trader) httptransport.TraderDTO {
	dto := httptransport.TraderDTO{
		ID:            trader.ID,
		Email:         trader.Email,
		NumericID:     trader.NumericID,
		BalanceRub:    trader.BalanceRub.InexactFloat64(),
		FrozenRub:     trader.FrozenRub.InexactFloat64(),
		PayoutBalance: trader.PayoutBalance.InexactFloat64(),
	}
	if trader.MaxAmount != nil {
		value := trader.MaxAmount.InexactFloat64()
		dto.MaxAmount = &value
	}
	return dto
}

func toSettingsDTO(config entities.AutoDistributionConfig) httptransport.AutoSettingsDTO {
	return httptransport.AutoSettingsDTO{
		Enabled:         config.Enabled,
		IntervalSeconds: config.IntervalSeconds,
	}
}
