package models

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrCorruptState marks a stored document that fails the structural check
// and should be replaced by a new game rather than adopted.
var ErrCorruptState = errors.New("corrupt game state")

// EncodeState serializes a game state into a store document body.
func EncodeState(s GameState) ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode game state: %w", err)
	}
	return data, nil
}

// DecodeState parses a store document body. Documents without playerStats,
// with a non-numeric sanity, or without a currentEvent yield ErrCorruptState.
// Any other stat that is not a finite number is coerced to DefaultStatValue.
func DecodeState(data []byte) (GameState, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return GameState{}, fmt.Errorf("decode game state: %w", err)
	}
	if err := CheckStructure(raw); err != nil {
		return GameState{}, err
	}

	var state GameState
	if err := yaml.Unmarshal(data, &state); err != nil {
		return GameState{}, fmt.Errorf("decode game state: %w", err)
	}
	return state, nil
}

// CheckStructure runs the load-time validity check on a loosely decoded document.
func CheckStructure(raw map[string]any) error {
	stats, ok := raw["playerStats"].(map[string]any)
	if !ok {
		return fmt.Errorf("%w: missing playerStats", ErrCorruptState)
	}
	if !isNumeric(stats["sanity"]) {
		return fmt.Errorf("%w: playerStats.sanity is not numeric", ErrCorruptState)
	}
	if raw["currentEvent"] == nil {
		return fmt.Errorf("%w: missing currentEvent", ErrCorruptState)
	}
	return nil
}

func (s *PlayerStats) UnmarshalYAML(value *yaml.Node) error {
	var raw map[string]any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*s = StatsFromMap(raw)
	return nil
}

// StatsFromMap builds a stat block from loosely typed values. Missing,
// non-numeric and non-finite values become DefaultStatValue, as do
// negative maxima, and current values are then clamped to their maxima.
func StatsFromMap(raw map[string]any) PlayerStats {
	field := func(key string) int {
		if n, ok := Number(raw[key]); ok {
			return n
		}
		return DefaultStatValue
	}
	limit := func(key string) int {
		if n := field(key); n >= 0 {
			return n
		}
		return DefaultStatValue
	}
	return PlayerStats{
		Health:    field("health"),
		Hunger:    field("hunger"),
		Thirst:    field("thirst"),
		Sanity:    field("sanity"),
		Energy:    field("energy"),
		MaxHealth: limit("maxHealth"),
		MaxHunger: limit("maxHunger"),
		MaxThirst: limit("maxThirst"),
		MaxSanity: limit("maxSanity"),
		MaxEnergy: limit("maxEnergy"),
	}.Normalize()
}
