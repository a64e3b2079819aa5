package application

import (
	"sync"

	"github.com/Fhkhdu777/chase-linker-payout/contexts/payout-operations/distribution-service/domain/entities"
)

// AutoConfigHolder owns the live distribution configuration: the current
// value for synchronous reads and a capacity-1 latest-wins channel that wakes
// the scheduler on change. Both are updated by the same method so a reader
// can never observe a value the loop has not been told about.
type AutoConfigHolder struct {
	mu      sync.RWMutex
	current entities.AutoDistributionConfig

	watchMu sync.Mutex
	watch   chan entities.AutoDistributionConfig
	closed  bool
}

func NewAutoConfigHolder() *AutoConfigHolder {
	return &AutoConfigHolder{
		current: entities.DefaultAutoDistributionConfig(),
		watch:   make(chan entities.AutoDistributionConfig, 1),
	}
}

// Current returns the configuration as of now.
func (h *AutoConfigHolder) Current() entities.AutoDistributionConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Set replaces the configuration and signals the watcher. Intermediate values
// may be dropped; the watcher always ends up with the latest one.
func (h *AutoConfigHolder) Set(config entities.AutoDistributionConfig) entities.AutoDistributionConfig {
	normalized := config.Normalize()

	h.mu.Lock()
	h.current = normalized
	h.mu.Unlock()

	h.watchMu.Lock()
	defer h.watchMu.Unlock()
	if h.closed {
		return normalized
	}
	for {
		select {
		case h.watch <- normalized:
			return normalized
		default:
		}
		select {
		case <-h.watch:
		default:
		}
	}
}

// Watch exposes the change channel the scheduler selects on. The channel
// closing is the loop's terminal condition.
func (h *AutoConfigHolder) Watch() <-chan entities.AutoDistributionConfig {
	return h.watch
}

// Close ends the watch stream at process shutdown.
func (h *AutoConfigHolder) Close() {
	h.watchMu.Lock()
	defer h.watchMu.Unlock()
	if !h.closed {
		h.closed = true
		close(h.watch)
	}
}
