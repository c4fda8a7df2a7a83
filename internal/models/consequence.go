package models

import (
	"encoding/json"
	"math"
	"slices"
)

// ConsequenceType tags a consequence on the wire.
type ConsequenceType string

const (
	ConsequenceStatChange   ConsequenceType = "stat_change"
	ConsequenceItemGain     ConsequenceType = "item_gain"
	ConsequenceItemLose     ConsequenceType = "item_lose"
	ConsequenceAllyChange   ConsequenceType = "ally_change"
	ConsequenceFactionRep   ConsequenceType = "faction_rep"
	ConsequenceLevelAccess  ConsequenceType = "level_access"
	ConsequenceEventTrigger ConsequenceType = "event_trigger"
)

// ConsequenceTypes lists every recognized consequence tag.
var ConsequenceTypes = []ConsequenceType{
	ConsequenceStatChange,
	ConsequenceItemGain,
	ConsequenceItemLose,
	ConsequenceAllyChange,
	ConsequenceFactionRep,
	ConsequenceLevelAccess,
	ConsequenceEventTrigger,
}

func (t ConsequenceType) Valid() bool {
	return slices.Contains(ConsequenceTypes, t)
}

// Consequence is the stored and generated form of a choice consequence.
// Value is a number or a string depending on Type.
type Consequence struct {
	Type        ConsequenceType `json:"type" yaml:"type"`
	Key         string          `json:"key" yaml:"key"`
	Value       any             `json:"value" yaml:"value"`
	Description string          `json:"description" yaml:"description"`
}

// Effect is the resolved meaning of a consequence. The concrete types are
// StatChange, FactionRep, ItemGain, ItemLose, AllyChange, LevelAccess and
// EventTrigger.
type Effect interface {
	effect()
}

// StatChange moves one survival channel by Delta.
type StatChange struct {
	Stat  Stat
	Delta int
}

// FactionRep moves the reputation of an existing faction by Delta.
type FactionRep struct {
	Faction string
	Delta   int
}

// Target carries the raw payload of a consequence kind that has no
// resolution rule yet.
type Target struct {
	Key   string
	Value any
}

type (
	ItemGain     struct{ Target }
	ItemLose     struct{ Target }
	AllyChange   struct{ Target }
	LevelAccess  struct{ Target }
	EventTrigger struct{ Target }
)

func (StatChange) effect()   {}
func (FactionRep) effect()   {}
func (ItemGain) effect()     {}
func (ItemLose) effect()     {}
func (AllyChange) effect()   {}
func (LevelAccess) effect()  {}
func (EventTrigger) effect() {}

// Effect converts the consequence into its typed form. It reports false for
// malformed consequences: unknown tags, stat changes naming no stat, and
// numeric kinds whose value is not a finite number.
func (c Consequence) Effect() (Effect, bool) {
	switch c.Type {
	case ConsequenceStatChange:
		stat, ok := ParseStat(c.Key)
		if !ok {
			return nil, false
		}
		delta, ok := Number(c.Value)
		if !ok {
			return nil, false
		}
		return StatChange{Stat: stat, Delta: delta}, true
	case ConsequenceFactionRep:
		delta, ok := Number(c.Value)
		if !ok {
			return nil, false
		}
		return FactionRep{Faction: c.Key, Delta: delta}, true
	case ConsequenceItemGain:
		return ItemGain{Target{c.Key, c.Value}}, true
	case ConsequenceItemLose:
		return ItemLose{Target{c.Key, c.Value}}, true
	case ConsequenceAllyChange:
		return AllyChange{Target{c.Key, c.Value}}, true
	case ConsequenceLevelAccess:
		return LevelAccess{Target{c.Key, c.Value}}, true
	case ConsequenceEventTrigger:
		return EventTrigger{Target{c.Key, c.Value}}, true
	}
	return nil, false
}

// Number converts a decoded numeric value to an int, rounding fractions.
// Values beyond the int range saturate at its limits. Strings, booleans, NaN
// and infinities are rejected.
func Number(v any) (int, bool) {
	var f float64
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(min(n, math.MaxInt)), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(min(n, math.MaxInt)), true
	case float32:
		f = float64(n)
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	f = math.Round(f)
	switch {
	case f >= math.MaxInt:
		return math.MaxInt, true
	case f <= math.MinInt:
		return math.MinInt, true
	}
	return int(f), true
}

// isNumeric reports whether v has a numeric kind, finite or not.
func isNumeric(v any) bool {
	switch n := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	case json.Number:
		_, err := n.Float64()
		return err == nil
	}
	return false
}
