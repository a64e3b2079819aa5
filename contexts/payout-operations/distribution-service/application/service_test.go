package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Fhkhdu777/chase-linker-payout/contexts/payout-operations/distribution-service/adapters/memory"
	"github.com/Fhkhdu777/chase-linker-payout/contexts/payout-operations/distribution-service/domain/entities"
	domainerrors "github.com/Fhkhdu777/chase-linker-payout/contexts/payout-operations/distribution-service/domain/errors"
	"github.com/Fhkhdu777/chase-linker-payout/internal/platform/events"
)

type recordingWebhook struct {
	mu         sync.Mutex
	calls      int
	lastURL    string
	lastAPIKey string
	statusCode int
	err        error
}

func (w *recordingWebhook) Post(_ context.Context, url string, apiKey string, _ []byte) (int, string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	w.lastURL = url
	w.lastAPIKey = apiKey
	if w.err != nil {
		return 0, "", w.err
	}
	if w.statusCode == 0 {
		return 200, `{"ok":true}`, nil
	}
	return w.statusCode, "", nil
}

func (w *recordingWebhook) callCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.calls
}

func newTestService(store *memory.Store, webhook *recordingWebhook) Service {
	if webhook == nil {
		webhook = &recordingWebhook{}
	}
	return Service{
		Repo:       store,
		Audit:      store,
		Webhook:    webhook,
		Bus:        events.NewBus(),
		Limits:     NewLimitRegistry(),
		AutoConfig: NewAutoConfigHolder(),
		Cursor:     NewRotationCursor(),
		IDGen:      store,
	}
}

func seedPayout(store *memory.Store, id string, amount int64) {
	store.SeedPayout(memory.PayoutRow{
		Details: entities.PayoutDetails{
			ID:         id,
			Amount:     decimal.NewFromInt(amount),
			AmountUsdt: decimal.NewFromInt(amount / 100),
			Status:     entities.PayoutStatusCreated,
			Wallet:     "4100112233",
			Bank:       "sber",
			MerchantID: "m-1",
		},
	})
}

func TestAssignManuallyRequiresTraderID(t *testing.T) {
	store := memory.NewStore()
	service := newTestService(store, nil)

	err := service.AssignManually(context.Background(), "p-1", "  ")
	if !errors.Is(err, domainerrors.ErrTraderIDRequired) {
		t.Fatalf("expected ErrTraderIDRequired, got %v", err)
	}
}

func TestAssignManuallyClaimsOnce(t *testing.T) {
	store := memory.NewStore()
	seedPayout(store, "p-1", 500)
	service := newTestService(store, nil)

	if err := service.AssignManually(context.Background(), "p-1", "w-1"); err != nil {
		t.Fatalf("first assignment failed: %v", err)
	}

	row, ok := store.Payout("p-1")
	if !ok {
		t.Fatal("payout disappeared")
	}
	if row.Details.TraderID == nil || *row.Details.TraderID != "w-1" {
		t.Fatalf("expected trader w-1 on payout, got %v", row.Details.TraderID)
	}
	if row.AcceptanceTime == nil || *row.AcceptanceTime != entities.AcceptanceGraceSeconds {
		t.Fatalf("expected acceptance grace %d, got %v", entities.AcceptanceGraceSeconds, row.AcceptanceTime)
	}

	err := service.AssignManually(context.Background(), "p-1", "w-2")
	if !errors.Is(err, domainerrors.ErrPayoutNotEligible) {
		t.Fatalf("expected ErrPayoutNotEligible on second claim, got %v", err)
	}
	row, _ = store.Payout("p-1")
	if *row.Details.TraderID != "w-1" {
		t.Fatalf("second claim must not steal the payout, got trader %s", *row.Details.TraderID)
	}
}

func TestAssignManuallyConcurrentClaimsExactlyOneWins(t *testing.T) {
	store := memory.NewStore()
	seedPayout(store, "p-1", 500)
	service := newTestService(store, nil)

	const attempts = 16
	results := make(chan error, attempts)
	var start sync.WaitGroup
	start.Add(1)
	for i := 0; i < attempts; i++ {
		traderID := "w-" + strings.Repeat("x", i+1)
		go func() {
			start.Wait()
			results <- service.AssignManually(context.Background(), "p-1", traderID)
		}()
	}
	start.Done()

	wins := 0
	for i := 0; i < attempts; i++ {
		err := <-results
		if err == nil {
			wins++
			continue
		}
		if !errors.Is(err, domainerrors.ErrPayoutNotEligible) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one winning claim, got %d", wins)
	}
}

func TestDistributeOnceAssignsRoundRobinUnderLimits(t *testing.T) {
	store := memory.NewStore()
	store.SeedTrader(entities.Trader{ID: "w-1", NumericID: 1})
	store.SeedTrader(entities.Trader{ID: "w-2", NumericID: 2})
	seedPayout(store, "p-1", 500)
	seedPayout(store, "p-2", 1500)
	service := newTestService(store, nil)
	service.Limits.Set("w-1", ptrDecimal(1000))

	applied, err := service.DistributeOnce(context.Background())
	if err != nil {
		t.Fatalf("distribution failed: %v", err)
	}
	if applied != 2 {
		t.Fatalf("expected 2 assignments, got %d", applied)
	}

	first, _ := store.Payout("p-1")
	second, _ := store.Payout("p-2")
	if first.Details.TraderID == nil || *first.Details.TraderID != "w-1" {
		t.Fatalf("expected p-1 on w-1, got %v", first.Details.TraderID)
	}
	if second.Details.TraderID == nil || *second.Details.TraderID != "w-2" {
		t.Fatalf("expected p-2 on w-2, got %v", second.Details.TraderID)
	}
}

// brokenClaimRepo lets a fixed number of claims through, then fails.
type brokenClaimRepo struct {
	*memory.Store
	claimBudget int
	claims      int
}

func (r *brokenClaimRepo) ClaimPayout(ctx context.Context, payoutID string, traderID string) (bool, error) {
	r.claims++
	if r.claims > r.claimBudget {
		return false, domainerrors.ErrStoreUnavailable
	}
	return r.Store.ClaimPayout(ctx, payoutID, traderID)
}

func TestDistributeOnceAnnouncesCommittedClaimsDespiteError(t *testing.T) {
	store := memory.NewStore()
	store.SeedTrader(entities.Trader{ID: "w-1", NumericID: 1})
	store.SeedTrader(entities.Trader{ID: "w-2", NumericID: 2})
	seedPayout(store, "p-1", 500)
	seedPayout(store, "p-2", 500)

	service := newTestService(store, nil)
	service.Repo = &brokenClaimRepo{Store: store, claimBudget: 1}

	updates, cancel := service.Bus.Subscribe()
	defer cancel()

	applied, err := service.DistributeOnce(context.Background())
	if !errors.Is(err, domainerrors.ErrStoreUnavailable) {
		t.Fatalf("expected store error, got %v", err)
	}
	if applied != 1 {
		t.Fatalf("expected the committed claim to be counted, got %d", applied)
	}

	select {
	case event := <-updates:
		if event.Type != events.TypePayoutsUpdated {
			t.Fatalf("expected %s, got %s", events.TypePayoutsUpdated, event.Type)
		}
		if event.Message == nil || *event.Message != "source=auto" {
			t.Fatalf("expected source=auto, got %v", event.Message)
		}
	default:
		t.Fatal("committed claim was not announced on the bus")
	}
}

func TestDistributeOnceSurfacesReadErrors(t *testing.T) {
	store := memory.NewStore()
	store.FailEligibilityReads(domainerrors.ErrStoreUnavailable)
	service := newTestService(store, nil)

	_, err := service.DistributeOnce(context.Background())
	if !errors.Is(err, domainerrors.ErrStoreUnavailable) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestCancelDeliversCallbackAndAudits(t *testing.T) {
	store := memory.NewStore()
	seedPayout(store, "p-1", 500)
	row, _ := store.Payout("p-1")
	row.Details.MerchantWebhookURL = "https://merchant.example/webhook"
	store.SeedPayout(row)
	store.SetMerchantAPIKey("m-1", "key-123")

	webhook := &recordingWebhook{}
	service := newTestService(store, webhook)

	reason := "operator request"
	outcome, err := service.Cancel(context.Background(), "p-1", &reason, nil)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if outcome.Status != entities.PayoutStatusCancelled {
		t.Fatalf("expected CANCELLED, got %s", outcome.Status)
	}
	if !outcome.Callback.Delivered {
		t.Fatalf("expected delivered callback, got %+v", outcome.Callback)
	}
	if webhook.callCount() != 1 {
		t.Fatalf("expected one callback call, got %d", webhook.callCount())
	}
	if webhook.lastAPIKey != "key-123" {
		t.Fatalf("expected merchant api key on callback, got %q", webhook.lastAPIKey)
	}

	attempts := store.CallbackAttempts()
	if len(attempts) != 1 {
		t.Fatalf("expected one audit record, got %d", len(attempts))
	}
	if attempts[0].PayoutID != "p-1" {
		t.Fatalf("audit record for wrong payout: %s", attempts[0].PayoutID)
	}
	if attempts[0].StatusCode == nil || *attempts[0].StatusCode != 200 {
		t.Fatalf("expected audited status 200, got %v", attempts[0].StatusCode)
	}
	if !strings.Contains(string(attempts[0].Payload), `"event":"CANCELED"`) {
		t.Fatalf("expected CANCELED event in payload, got %s", attempts[0].Payload)
	}
}

func TestCancelWithoutWebhookURLSkipsDelivery(t *testing.T) {
	store := memory.NewStore()
	seedPayout(store, "p-1", 500)
	store.SetMerchantAPIKey("m-1", "key-123")
	webhook := &recordingWebhook{}
	service := newTestService(store, webhook)

	outcome, err := service.Cancel(context.Background(), "p-1", nil, nil)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if outcome.Callback.Delivered {
		t.Fatal("expected callback to be skipped")
	}
	if webhook.callCount() != 0 {
		t.Fatalf("expected no network call, got %d", webhook.callCount())
	}

	attempts := store.CallbackAttempts()
	if len(attempts) != 1 {
		t.Fatalf("expected one audit record, got %d", len(attempts))
	}
	if attempts[0].URL != "(missing-webhook-url)" {
		t.Fatalf("expected missing-url marker, got %q", attempts[0].URL)
	}
	if attempts[0].Error == nil {
		t.Fatal("expected audited error for skipped callback")
	}
}

func TestCancelAlreadyCancelled(t *testing.T) {
	store := memory.NewStore()
	seedPayout(store, "p-1", 500)
	webhook := &recordingWebhook{}
	service := newTestService(store, webhook)

	if _, err := service.Cancel(context.Background(), "p-1", nil, nil); err != nil {
		t.Fatalf("first cancel failed: %v", err)
	}
	_, err := service.Cancel(context.Background(), "p-1", nil, nil)
	if !errors.Is(err, domainerrors.ErrAlreadyCancelled) {
		t.Fatalf("expected ErrAlreadyCancelled, got %v", err)
	}
}

func TestCancelTerminalStatusRejectedWithoutCallback(t *testing.T) {
	store := memory.NewStore()
	store.SeedPayout(memory.PayoutRow{
		Details: entities.PayoutDetails{
			ID:         "p-1",
			Amount:     decimal.NewFromInt(500),
			Status:     entities.PayoutStatusCompleted,
			MerchantID: "m-1",
		},
	})
	webhook := &recordingWebhook{}
	service := newTestService(store, webhook)

	_, err := service.Cancel(context.Background(), "p-1", nil, nil)
	if !errors.Is(err, domainerrors.ErrTerminalStatus) {
		t.Fatalf("expected ErrTerminalStatus, got %v", err)
	}
	if webhook.callCount() != 0 {
		t.Fatal("terminal payout must not trigger a callback")
	}
	if len(store.CallbackAttempts()) != 0 {
		t.Fatal("terminal payout must not be audited")
	}
}

func TestCancelMissingPayout(t *testing.T) {
	store := memory.NewStore()
	service := newTestService(store, nil)

	_, err := service.Cancel(context.Background(), "nope", nil, nil)
	if !errors.Is(err, domainerrors.ErrPayoutNotFound) {
		t.Fatalf("expected ErrPayoutNotFound, got %v", err)
	}
}

func TestCancelAuditFailureSurfacesButKeepsCancellation(t *testing.T) {
	store := memory.NewStore()
	seedPayout(store, "p-1", 500)
	row, _ := store.Payout("p-1")
	row.Details.MerchantWebhookURL = "https://merchant.example/webhook"
	store.SeedPayout(row)
	store.SetMerchantAPIKey("m-1", "key-123")
	store.FailAuditAppends(true)

	service := newTestService(store, &recordingWebhook{})

	outcome, err := service.Cancel(context.Background(), "p-1", nil, nil)
	if !errors.Is(err, domainerrors.ErrCallbackAuditFailed) {
		t.Fatalf("expected ErrCallbackAuditFailed, got %v", err)
	}
	if outcome.Status != entities.PayoutStatusCancelled {
		t.Fatalf("cancellation must stay committed, got status %s", outcome.Status)
	}

	row, _ = store.Payout("p-1")
	if row.Details.Status != entities.PayoutStatusCancelled {
		t.Fatalf("expected stored status CANCELLED, got %s", row.Details.Status)
	}
}

func TestCancelFailedDeliveryReportsError(t *testing.T) {
	store := memory.NewStore()
	seedPayout(store, "p-1", 500)
	row, _ := store.Payout("p-1")
	row.Details.MerchantWebhookURL = "https://merchant.example/webhook"
	store.SeedPayout(row)
	store.SetMerchantAPIKey("m-1", "key-123")

	webhook := &recordingWebhook{statusCode: 503}
	service := newTestService(store, webhook)

	outcome, err := service.Cancel(context.Background(), "p-1", nil, nil)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if outcome.Callback.Delivered {
		t.Fatal("expected failed delivery")
	}
	if outcome.Callback.Error == nil || *outcome.Callback.Error != "HTTP 503" {
		t.Fatalf("expected HTTP 503 error, got %v", outcome.Callback.Error)
	}
}

func TestListTradersOverlaysLimits(t *testing.T) {
	store := memory.NewStore()
	store.SeedTrader(entities.Trader{ID: "w-1", NumericID: 1})
	store.SeedTrader(entities.Trader{ID: "w-2", NumericID: 2})
	service := newTestService(store, nil)
	service.Limits.Set("w-2", ptrDecimal(750))

	traders, err := service.ListTraders(context.Background())
	if err != nil {
		t.Fatalf("listing failed: %v", err)
	}
	if len(traders) != 2 {
		t.Fatalf("expected 2 traders, got %d", len(traders))
	}
	if traders[0].MaxAmount != nil {
		t.Fatalf("w-1 has no limit, got %v", traders[0].MaxAmount)
	}
	if traders[1].MaxAmount == nil || !traders[1].MaxAmount.Equal(decimal.NewFromInt(750)) {
		t.Fatalf("expected limit 750 on w-2, got %v", traders[1].MaxAmount)
	}
}

func TestSanitizeDealFiltersDefaults(t *testing.T) {
	filters := sanitizeDealFilters(entities.DealListFilters{
		Search:  "  abc  ",
		Status:  " created ",
		Page:    0,
		PerPage: 900,
		Sort:    "bogus",
	})

	if filters.Page != 1 {
		t.Fatalf("expected page 1, got %d", filters.Page)
	}
	if filters.PerPage != 200 {
		t.Fatalf("expected perPage clamped to 200, got %d", filters.PerPage)
	}
	if filters.Search != "abc" {
		t.Fatalf("expected trimmed search, got %q", filters.Search)
	}
	if filters.Status != entities.PayoutStatusCreated {
		t.Fatalf("expected uppercased status, got %q", filters.Status)
	}
	if filters.Sort != entities.DealSortCreatedAt || filters.Order != entities.DealOrderDesc {
		t.Fatalf("expected createdAt desc defaults, got %s %s", filters.Sort, filters.Order)
	}

	byStatus := sanitizeDealFilters(entities.DealListFilters{Sort: entities.DealSortStatus})
	if byStatus.Order != entities.DealOrderAsc {
		t.Fatalf("status sort defaults to asc, got %s", byStatus.Order)
	}
	if byStatus.PerPage != 25 {
		t.Fatalf("expected default perPage 25, got %d", byStatus.PerPage)
	}
}

func ptrDecimal(value int64) *decimal.Decimal {
	d := decimal.NewFromInt(value)
	return &d
}
