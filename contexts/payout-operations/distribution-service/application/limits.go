package application

import (
	"sync"

	"github.com/shopspring/decimal"
)

// LimitRegistry holds the volatile per-trader maximum payout amounts. It is
// process-local and resets on restart. Values at or below zero clear the
// limit instead of capping at zero.
type LimitRegistry struct {
	mu     sync.RWMutex
	limits map[string]decimal.Decimal
}

func NewLimitRegistry() *LimitRegistry {
	return &LimitRegistry{limits: make(map[string]decimal.Decimal)}
}

// Set stores or clears the trader's limit and returns the sanitized value
// (nil when cleared).
func (r *LimitRegistry) Set(traderID string, maxAmount *decimal.Decimal) *decimal.Decimal {
	var sanitized *decimal.Decimal
	if maxAmount != nil && maxAmount.IsPositive() {
		value := *maxAmount
		sanitized = &value
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if sanitized != nil {
		r.limits[traderID] = *sanitized
	} else {
		delete(r.limits, traderID)
	}
	return sanitized
}

// Get returns the trader's limit, if any.
func (r *LimitRegistry) Get(traderID string) (decimal.Decimal, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	value, ok := r.limits[traderID]
	return value, ok
}

// Snapshot copies the registry for one assignment pass so the planner sees a
// stable view.
func (r *LimitRegistry) Snapshot() map[string]decimal.Decimal {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snapshot := make(map[string]decimal.Decimal, len(r.limits))
	for traderID, value := range r.limits {
		snapshot[traderID] = value
	}
	return snapshot
}
