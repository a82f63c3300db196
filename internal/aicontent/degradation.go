package aicontent

import "sync"

// Tier is the content service's health classification, driving whether
// the pipeline attempts an AI call at all this turn (§6/§7).
type Tier int

const (
	// TierHealthy: call normally, hard timeout applies per call.
	TierHealthy Tier = iota
	// TierSlow: service responding but above a latency watermark; the
	// pipeline still calls but with reduced concurrency.
	TierSlow
	// TierUnavailable: skip AI calls entirely this turn, always fall back.
	TierUnavailable
)

// Breaker is a 3-consecutive-failure circuit breaker (§7): after
// maxConsecutiveErrors failures in a row, Open() reports true until a
// success resets the counter.
type Breaker struct {
	mu                   sync.Mutex
	consecutiveFailures  int
	maxConsecutiveErrors int
}

// NewBreaker creates a Breaker with the given failure threshold.
func NewBreaker(maxConsecutiveErrors int) *Breaker {
	return &Breaker{maxConsecutiveErrors: maxConsecutiveErrors}
}

func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecutiveFailures++
}

func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecutiveFailures = 0
}

// Open reports whether the breaker has tripped: maxConsecutiveErrors
// consecutive failures without an intervening success.
func (b *Breaker) Open() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.maxConsecutiveErrors > 0 && b.consecutiveFailures >= b.maxConsecutiveErrors
}

// DegradationManager tracks the content service's current Tier, set by an
// external health monitor and read by every stage that wants AI content
// before deciding whether to call out or go straight to the rule-based
// fallback.
type DegradationManager struct {
	mu   sync.RWMutex
	tier Tier
}

// NewDegradationManager starts in TierHealthy; the tier changes only when a
// caller invokes SetTier.
func NewDegradationManager() *DegradationManager {
	return &DegradationManager{tier: TierHealthy}
}

func (d *DegradationManager) SetTier(t Tier) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tier = t
}

func (d *DegradationManager) CurrentTier() Tier {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tier
}

// ShouldUseLLM reports whether the pipeline should attempt an AI call at
// all given the current tier.
func (d *DegradationManager) ShouldUseLLM() bool {
	return d.CurrentTier() != TierUnavailable
}
