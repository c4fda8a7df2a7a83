package models

import "math"

// Stat names one of the five survival channels.
type Stat string

const (
	Health Stat = "health"
	Hunger Stat = "hunger"
	Thirst Stat = "thirst"
	Sanity Stat = "sanity"
	Energy Stat = "energy"
)

// Stats lists the channels in display order.
var Stats = []Stat{Health, Hunger, Thirst, Sanity, Energy}

// DefaultStatValue replaces any stat that is not a finite number.
const DefaultStatValue = 100

type statFields struct {
	current func(*PlayerStats) *int
	max     func(*PlayerStats) *int
}

var statTable = map[Stat]statFields{
	Health: {
		current: func(s *PlayerStats) *int { return &s.Health },
		max:     func(s *PlayerStats) *int { return &s.MaxHealth },
	},
	Hunger: {
		current: func(s *PlayerStats) *int { return &s.Hunger },
		max:     func(s *PlayerStats) *int { return &s.MaxHunger },
	},
	Thirst: {
		current: func(s *PlayerStats) *int { return &s.Thirst },
		max:     func(s *PlayerStats) *int { return &s.MaxThirst },
	},
	Sanity: {
		current: func(s *PlayerStats) *int { return &s.Sanity },
		max:     func(s *PlayerStats) *int { return &s.MaxSanity },
	},
	Energy: {
		current: func(s *PlayerStats) *int { return &s.Energy },
		max:     func(s *PlayerStats) *int { return &s.MaxEnergy },
	},
}

// ParseStat maps a consequence key onto a stat channel. Only current-value
// keys resolve; "maxHealth" and friends are not addressable.
func ParseStat(key string) (Stat, bool) {
	s := Stat(key)
	_, ok := statTable[s]
	return s, ok
}

// Clamp adds delta to current and bounds the result to [0, limit].
func Clamp(current, delta, limit int) int {
	return max(0, min(limit, Add(current, delta)))
}

// Add returns a+b, saturating at the limits of int instead of wrapping.
func Add(a, b int) int {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return math.MaxInt
	case b < 0 && a < math.MinInt-b:
		return math.MinInt
	}
	return a + b
}

// NewStats returns a full stat block with every channel at value/value.
func NewStats(value int) PlayerStats {
	return PlayerStats{
		Health: value, Hunger: value, Thirst: value, Sanity: value, Energy: value,
		MaxHealth: value, MaxHunger: value, MaxThirst: value, MaxSanity: value, MaxEnergy: value,
	}
}

// Get returns the current value and maximum of a channel.
func (s PlayerStats) Get(stat Stat) (current, limit int) {
	f, ok := statTable[stat]
	if !ok {
		return 0, 0
	}
	return *f.current(&s), *f.max(&s)
}

// Apply returns a copy of s with delta applied to stat under the clamp rule.
// Unknown stats leave the copy unchanged.
func (s PlayerStats) Apply(stat Stat, delta int) PlayerStats {
	f, ok := statTable[stat]
	if !ok {
		return s
	}
	cur := f.current(&s)
	*cur = Clamp(*cur, delta, *f.max(&s))
	return s
}

// Normalize clamps every channel into [0, max].
func (s PlayerStats) Normalize() PlayerStats {
	for _, stat := range Stats {
		s = s.Apply(stat, 0)
	}
	return s
}
