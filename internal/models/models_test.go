package models

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"
)

func testState() GameState {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return GameState{
		ID:               "game-1",
		UserID:           "user-1",
		CurrentLevel:     "level-0",
		CurrentLevelName: "Level 0 - The Lobby",
		CurrentEvent: &GameEvent{
			ID:          "start-event",
			Type:        EventExploration,
			Title:       "Welcome",
			Description: "Yellow rooms.",
			Choices: []GameChoice{
				{
					ID:   "listen-carefully",
					Text: "Listen Carefully",
					Type: ChoiceAction,
					Consequences: []Consequence{
						{Type: ConsequenceStatChange, Key: "sanity", Value: -2, Description: "Humming"},
					},
				},
			},
			EnvironmentalHazards: []string{"Fluorescent Light Malfunction"},
			LevelSpecificData:    map[string]any{},
		},
		PlayerStats:       NewStats(100),
		FactionReputation: map[string]int{"M.E.G.": 0},
		DiscoveredLevels:  []string{"level-0"},
		GameLog: []GameLogEntry{
			{ID: "log-start", Timestamp: now, Type: LogSystem, Content: "Game started."},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestGameStateYAML(t *testing.T) {
	state := testState()

	data, err := EncodeState(state)
	if err != nil {
		t.Fatalf("Failed to encode state: %v", err)
	}

	got, err := DecodeState(data)
	if err != nil {
		t.Fatalf("Failed to decode state: %v", err)
	}

	if got.CurrentEvent == nil || got.CurrentEvent.ID != "start-event" {
		t.Fatalf("Expected current event start-event, got %+v", got.CurrentEvent)
	}
	if got.PlayerStats != state.PlayerStats {
		t.Errorf("Expected stats %+v, got %+v", state.PlayerStats, got.PlayerStats)
	}
	if !got.UpdatedAt.Equal(state.UpdatedAt) {
		t.Errorf("Expected updatedAt %v, got %v", state.UpdatedAt, got.UpdatedAt)
	}
	if len(got.GameLog) != 1 {
		t.Errorf("Expected 1 log entry, got %d", len(got.GameLog))
	}
	eff, ok := got.CurrentEvent.Choices[0].Consequences[0].Effect()
	if !ok || eff != (StatChange{Stat: Sanity, Delta: -2}) {
		t.Errorf("Expected sanity -2 effect after decode, got %#v", eff)
	}
}

func TestDecodeStateCorrupt(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing stats", "id: g\ncurrentEvent: {id: e}\n"},
		{"null stats", "id: g\nplayerStats: null\ncurrentEvent: {id: e}\n"},
		{"string sanity", "id: g\nplayerStats: {health: 100, sanity: broken}\ncurrentEvent: {id: e}\n"},
		{"missing sanity", "id: g\nplayerStats: {health: 100}\ncurrentEvent: {id: e}\n"},
		{"missing event", "id: g\nplayerStats: {sanity: 50}\n"},
		{"null event", "id: g\nplayerStats: {sanity: 50}\ncurrentEvent: null\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeState([]byte(tt.doc))
			if !errors.Is(err, ErrCorruptState) {
				t.Errorf("Expected ErrCorruptState, got %v", err)
			}
		})
	}
}

func TestDecodeStateCoercesNonFiniteStats(t *testing.T) {
	doc := `
id: g
playerStats:
  health: .nan
  hunger: lots
  thirst: 40
  sanity: 55
  energy: .inf
  maxHealth: 100
  maxThirst: 80
currentEvent:
  id: e
`
	got, err := DecodeState([]byte(doc))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := PlayerStats{
		Health: 100, Hunger: 100, Thirst: 40, Sanity: 55, Energy: 100,
		MaxHealth: 100, MaxHunger: 100, MaxThirst: 80, MaxSanity: 100, MaxEnergy: 100,
	}
	if got.PlayerStats != want {
		t.Errorf("Expected %+v, got %+v", want, got.PlayerStats)
	}
}

func TestStatsFromMapNegativeMax(t *testing.T) {
	got := StatsFromMap(map[string]any{
		"health":    80,
		"maxHealth": -5,
		"sanity":    30,
		"maxSanity": -1.5,
		"energy":    10,
		"maxEnergy": 0,
	})
	if got.MaxHealth != DefaultStatValue || got.Health != 80 {
		t.Errorf("Expected health 80/%d, got %d/%d", DefaultStatValue, got.Health, got.MaxHealth)
	}
	if got.MaxSanity != DefaultStatValue || got.Sanity != 30 {
		t.Errorf("Expected sanity 30/%d, got %d/%d", DefaultStatValue, got.Sanity, got.MaxSanity)
	}
	if got.MaxEnergy != 0 || got.Energy != 0 {
		t.Errorf("Expected a zero max to stay and clamp energy, got %d/%d", got.Energy, got.MaxEnergy)
	}
}

func TestDecodeStateNaNSanityIsNotCorrupt(t *testing.T) {
	got, err := DecodeState([]byte("playerStats: {sanity: .nan}\ncurrentEvent: {id: e}\n"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.PlayerStats.Sanity != DefaultStatValue {
		t.Errorf("Expected NaN sanity coerced to %d, got %d", DefaultStatValue, got.PlayerStats.Sanity)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		cur, delta, limit, want int
	}{
		{90, 20, 100, 100},
		{5, -10, 100, 0},
		{50, 0, 100, 50},
		{50, -2, 100, 48},
		{120, 0, 100, 100},
		{10, 5, -1, 0},
		{50, math.MaxInt, 100, 100},
		{50, math.MinInt, 100, 0},
		{math.MaxInt, math.MaxInt, 100, 100},
	}
	for _, tt := range tests {
		if got := Clamp(tt.cur, tt.delta, tt.limit); got != tt.want {
			t.Errorf("Clamp(%d, %d, %d) = %d, want %d", tt.cur, tt.delta, tt.limit, got, tt.want)
		}
	}
}

func TestPlayerStatsApplyUsesPairedMax(t *testing.T) {
	s := NewStats(100)
	s.Thirst, s.MaxThirst = 10, 30

	s = s.Apply(Thirst, 50)
	if cur, limit := s.Get(Thirst); cur != 30 || limit != 30 {
		t.Errorf("Expected thirst 30/30, got %d/%d", cur, limit)
	}
	if s.Health != 100 {
		t.Errorf("Expected health untouched, got %d", s.Health)
	}
}

func TestConsequenceEffect(t *testing.T) {
	tests := []struct {
		name string
		in   Consequence
		want Effect
		ok   bool
	}{
		{"stat int", Consequence{Type: ConsequenceStatChange, Key: "energy", Value: -5}, StatChange{Energy, -5}, true},
		{"stat float", Consequence{Type: ConsequenceStatChange, Key: "energy", Value: 2.6}, StatChange{Energy, 3}, true},
		{"stat unknown key", Consequence{Type: ConsequenceStatChange, Key: "luck", Value: 1}, nil, false},
		{"stat max key", Consequence{Type: ConsequenceStatChange, Key: "maxHealth", Value: 1}, nil, false},
		{"stat string value", Consequence{Type: ConsequenceStatChange, Key: "health", Value: "10"}, nil, false},
		{"faction", Consequence{Type: ConsequenceFactionRep, Key: "M.E.G.", Value: 7.0}, FactionRep{"M.E.G.", 7}, true},
		{"faction string value", Consequence{Type: ConsequenceFactionRep, Key: "M.E.G.", Value: "x"}, nil, false},
		{"item gain", Consequence{Type: ConsequenceItemGain, Key: "almond-water", Value: 1}, ItemGain{Target{"almond-water", 1}}, true},
		{"event trigger", Consequence{Type: ConsequenceEventTrigger, Key: "hounds"}, EventTrigger{Target{Key: "hounds"}}, true},
		{"unknown tag", Consequence{Type: "teleport", Key: "level-1"}, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.in.Effect()
			if ok != tt.ok {
				t.Fatalf("Expected ok=%v, got %v", tt.ok, ok)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %#v, got %#v", tt.want, got)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	state := testState()
	clone := state.Clone()

	clone.FactionReputation["M.E.G."] = 50
	clone.CurrentEvent.Choices[0].Text = "changed"
	clone.DiscoveredLevels[0] = "level-1"
	clone.GameLog[0].Content = "changed"

	if !reflect.DeepEqual(state, testState()) {
		t.Errorf("Mutating the clone changed the original")
	}
}

func TestNumberSaturates(t *testing.T) {
	tests := []struct {
		in   any
		want int
	}{
		{1e19, math.MaxInt},
		{-1e19, math.MinInt},
		{uint64(math.MaxUint64), math.MaxInt},
		{uint(math.MaxUint), math.MaxInt},
		{float32(2.6), 3},
	}
	for _, tt := range tests {
		got, ok := Number(tt.in)
		if !ok || got != tt.want {
			t.Errorf("Number(%v) = %d, %v; want %d, true", tt.in, got, ok, tt.want)
		}
	}
}
