package entities

import "time"

// AutoDistributionConfig drives the background distribution loop. Replaced
// wholesale by administrative updates; the scheduler observes changes
// reactively.
type AutoDistributionConfig struct {
	Enabled         bool
	IntervalSeconds int64
}

// DefaultAutoDistributionConfig starts the process with distribution off.
func DefaultAutoDistributionConfig() AutoDistributionConfig {
	return AutoDistributionConfig{
		Enabled:         false,
		IntervalSeconds: 30,
	}
}

// Normalize clamps the interval to the 1 second minimum.
func (c AutoDistributionConfig) Normalize() AutoDistributionConfig {
	if c.IntervalSeconds < 1 {
		c.IntervalSeconds = 1
	}
	return c
}

// Interval is the tick period the scheduler uses.
func (c AutoDistributionConfig) Interval() time.Duration {
	normalized := c.Normalize()
	return time.Duration(normalized.IntervalSeconds) * time.Second
}
