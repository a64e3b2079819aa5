package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	distributionerrors "github.com/Fhkhdu777/chase-linker-payout/contexts/payout-operations/distribution-service/domain/errors"
	distributionhttp "github.com/Fhkhdu777/chase-linker-payout/contexts/payout-operations/distribution-service/transport/http"
)

func (s *Server) handleListTraders(w http.ResponseWriter, r *http.Request) {
	resp, err := s.distribution.Handler.ListTradersHandler(r.Context())
	if err != nil {
		writeDistributionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListPayouts(w http.ResponseWriter, r *http.Request) {
	resp, err := s.distribution.Handler.ListPayoutsHandler(r.Context())
	if err != nil {
		writeDistributionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListDeals(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := distributionhttp.DealListQuery{
		Search: query.Get("search"),
		Wallet: query.Get("wallet"),
		Status: query.Get("status"),
		Sort:   query.Get("sort"),
		Order:  query.Get("order"),
	}

	if raw := query.Get("amount"); raw != "" {
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeDistributionError(w, http.StatusBadRequest, "invalid_amount", "amount must be a number")
			return
		}
		req.Amount = &amount
	}
	if raw := query.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			writeDistributionError(w, http.StatusBadRequest, "invalid_page", "page must be an integer")
			return
		}
		req.Page = page
	}
	if raw := query.Get("perPage"); raw != "" {
		perPage, err := strconv.Atoi(raw)
		if err != nil {
			writeDistributionError(w, http.StatusBadRequest, "invalid_per_page", "perPage must be an integer")
			return
		}
		req.PerPage = perPage
	}

	resp, err := s.distribution.Handler.ListDealsHandler(r.Context(), req)
	if err != nil {
		writeDistributionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssignPayout(w http.ResponseWriter, r *http.Request) {
	var req distributionhttp.AssignPayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDistributionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.distribution.Handler.AssignPayoutHandler(r.Context(), r.PathValue("payout_id"), req)
	if err != nil {
		writeDistributionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCancelPayout(w http.ResponseWriter, r *http.Request) {
	var req distributionhttp.CancelPayoutRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeDistributionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
			return
		}
	}

	resp, err := s.distribution.Handler.CancelPayoutHandler(r.Context(), r.PathValue("payout_id"), req)
	if err != nil {
		writeDistributionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetAutoSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.distribution.Handler.GetAutoSettingsHandler(r.Context()))
}

func (s *Server) handleUpdateAutoSettings(w http.ResponseWriter, r *http.Request) {
	var req distributionhttp.AutoSettingsDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDistributionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.distribution.Handler.UpdateAutoSettingsHandler(r.Context(), req)
	if err != nil {
		writeDistributionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateTraderLimit(w http.ResponseWriter, r *http.Request) {
	var req distributionhttp.UpdateLimitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDistributionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.distribution.Handler.UpdateTraderLimitHandler(r.Context(), r.PathValue("trader_id"), req)
	if err != nil {
		writeDistributionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeDistributionDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, distributionerrors.ErrTraderIDRequired):
		writeDistributionError(w, http.StatusBadRequest, "trader_id_required", err.Error())
	case errors.Is(err, distributionerrors.ErrPayoutNotFound):
		writeDistributionError(w, http.StatusNotFound, "payout_not_found", err.Error())
	case errors.Is(err, distributionerrors.ErrPayoutNotEligible):
		writeDistributionError(w, http.StatusBadRequest, "payout_not_eligible", err.Error())
	case errors.Is(err, distributionerrors.ErrAlreadyCancelled):
		writeDistributionError(w, http.StatusBadRequest, "already_cancelled", err.Error())
	case errors.Is(err, distributionerrors.ErrTerminalStatus):
		writeDistributionError(w, http.StatusBadRequest, "terminal_status", err.Error())
	case errors.Is(err, distributionerrors.ErrInvalidListFilter):
		writeDistributionError(w, http.StatusBadRequest, "invalid_list_filter", err.Error())
	case errors.Is(err, distributionerrors.ErrCallbackAuditFailed):
		writeDistributionError(w, http.StatusInternalServerError, "callback_audit_failed", err.Error())
	default:
		writeDistributionError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
