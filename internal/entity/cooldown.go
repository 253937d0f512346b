package entity

import "time"

// Cooldown gates an action behind a fixed recovery time. It is advanced by
// the caller with elapsed time; it never reads the clock itself.
type Cooldown struct {
	Duration  time.Duration
	Remaining time.Duration
}

// NewCooldown returns a ready cooldown of the given duration.
func NewCooldown(d time.Duration) *Cooldown {
	return &Cooldown{Duration: d}
}

// Ready reports whether the action may fire.
func (c *Cooldown) Ready() bool { return c.Remaining <= 0 }

// Start puts the cooldown back to its full duration.
func (c *Cooldown) Start() { c.Remaining = c.Duration }

// Update advances the cooldown by dt.
func (c *Cooldown) Update(dt time.Duration) {
	if c.Remaining > 0 {
		c.Remaining -= dt
	}
}
