package application

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Fhkhdu777/chase-linker-payout/contexts/payout-operations/distribution-service/domain/entities"
	domainerrors "github.com/Fhkhdu777/chase-linker-payout/contexts/payout-operations/distribution-service/domain/errors"
	"github.com/Fhkhdu777/chase-linker-payout/internal/platform/metrics"
)

// missingWebhookURLMarker is what the audit log records as the destination
// when the merchant never configured one.
const missingWebhookURLMarker = "(missing-webhook-url)"

type callbackPayload struct {
	Event  string              `json:"event"`
	Payout callbackPayloadBody `json:"payout"`
}

type callbackPayloadBody struct {
	ID                string          `json:"id"`
	Bank              string          `json:"bank"`
	Amount            float64         `json:"amount"`
	Status            string          `json:"status"`
	Wallet            string          `json:"wallet"`
	Metadata          json.RawMessage `json:"metadata"`
	NumericID         int             `json:"numericId"`
	AmountUsdt        float64         `json:"amountUsdt"`
	ProofFiles        []string        `json:"proof_files"`
	CancelReason      *string         `json:"cancelReason"`
	DisputeFiles      []string        `json:"dispute_files"`
	DisputeMessage    *string         `json:"disputeMessage"`
	CancelReasonCode  *string         `json:"cancelReasonCode"`
	ExternalReference *string         `json:"externalReference"`
}

func buildCancelCallbackPayload(payout entities.PayoutDetails) callbackPayload {
	metadata := payout.MerchantMetadata
	if len(metadata) == 0 {
		metadata = json.RawMessage(`{}`)
	}
	proofFiles := payout.ProofFiles
	if proofFiles == nil {
		proofFiles = []string{}
	}
	disputeFiles := payout.DisputeFiles
	if disputeFiles == nil {
		disputeFiles = []string{}
	}
	amount, _ := payout.Amount.Float64()
	amountUsdt, _ := payout.AmountUsdt.Float64()

	return callbackPayload{
		Event: entities.CallbackEventCanceled,
		Payout: callbackPayloadBody{
			ID:                payout.ID,
			Bank:              payout.Bank,
			Amount:            amount,
			Status:            entities.CallbackEventCanceled,
			Wallet:            payout.Wallet,
			Metadata:          metadata,
			NumericID:         payout.NumericID,
			AmountUsdt:        amountUsdt,
			ProofFiles:        proofFiles,
			CancelReason:      payout.CancelReason,
			DisputeFiles:      disputeFiles,
			DisputeMessage:    payout.DisputeMessage,
			CancelReasonCode:  payout.CancelReasonCode,
			ExternalReference: payout.ExternalReference,
		},
	}
}

// dispatchCancelCallback notifies the owning merchant of the cancellation.
// Missing URL or credential short-circuits to a "not attempted" result with
// no network I/O; every outcome is appended to the audit log before
// returning. An audit insert failure is a hard error for this operation but
// never rolls back the committed cancellation.
func (s Service) dispatchCancelCallback(ctx context.Context, payout entities.PayoutDetails) (entities.CallbackResult, error) {
	payload := buildCancelCallbackPayload(payout)
	body, err := json.Marshal(payload)
	if err != nil {
		return entities.CallbackResult{}, fmt.Errorf("marshal callback payload: %w", err)
	}

	webhookURL := strings.TrimSpace(payout.MerchantWebhookURL)
	if webhookURL == "" {
		result := notAttempted("merchant webhook URL is not configured", missingWebhookURLMarker)
		metrics.CallbacksTotal.WithLabelValues("skipped").Inc()
		return result, s.recordCallback(ctx, payout.ID, body, result)
	}

	apiKey := strings.TrimSpace(payout.MerchantAPIKey)
	if apiKey == "" {
		result := notAttempted("merchant API key is not configured", webhookURL)
		metrics.CallbacksTotal.WithLabelValues("skipped").Inc()
		return result, s.recordCallback(ctx, payout.ID, body, result)
	}

	statusCode, responseBody, sendErr := s.Webhook.Post(ctx, webhookURL, apiKey, body)

	result := entities.CallbackResult{URL: webhookURL}
	switch {
	case sendErr != nil:
		message := sendErr.Error()
		result.Error = &message
	default:
		result.StatusCode = &statusCode
		if responseBody != "" {
			result.ResponseBody = &responseBody
		}
		if statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices {
			result.Delivered = true
		} else {
			message := fmt.Sprintf("HTTP %d", statusCode)
			result.Error = &message
		}
	}

	if result.Delivered {
		metrics.CallbacksTotal.WithLabelValues("delivered").Inc()
	} else {
		metrics.CallbacksTotal.WithLabelValues("failed").Inc()
	}

	resolveLogger(s.Logger).Info("merchant callback dispatched",
		"event", "payout_callback_dispatched",
		"module", logModule,
		"layer", "application",
		"payout_id", payout.ID,
		"url", webhookURL,
		"delivered", result.Delivered,
	)
	return result, s.recordCallback(ctx, payout.ID, body, result)
}

func notAttempted(reason string, url string) entities.CallbackResult {
	message := reason
	return entities.CallbackResult{
		Delivered: false,
		Error:     &message,
		URL:       url,
	}
}

func (s Service) recordCallback(ctx context.Context, payoutID string, payload []byte, result entities.CallbackResult) error {
	attempt := entities.CallbackAttempt{
		ID:           s.newID(),
		PayoutID:     payoutID,
		URL:          result.URL,
		Payload:      payload,
		StatusCode:   result.StatusCode,
		ResponseBody: result.ResponseBody,
		Error:        result.Error,
	}
	if err := s.Audit.AppendCallbackAttempt(ctx, attempt); err != nil {
		resolveLogger(s.Logger).Error("callback audit append failed",
			"event", "payout_callback_audit_failed",
			"module", logModule,
			"layer", "application",
			"payout_id", payoutID,
			"error", err.Error(),
		)
		return fmt.Errorf("%w: %v", domainerrors.ErrCallbackAuditFailed, err)
	}
	return nil
}

func (s Service) newID() string {
	if s.IDGen != nil {
		return s.IDGen.NewID()
	}
	return ""
}
