package models

import (
	"maps"
	"slices"
	"time"
)

// EventType classifies the event currently in play.
type EventType string

const (
	EventExploration     EventType = "exploration"
	EventEntityEncounter EventType = "entity_encounter"
	EventEnvironmental   EventType = "environmental"
	EventFaction         EventType = "faction"
	EventSCPCrossover    EventType = "scp_crossover"
	EventSafeZone        EventType = "safe_zone"
)

// EventTypes lists every event type in schema order.
var EventTypes = []EventType{
	EventExploration,
	EventEntityEncounter,
	EventEnvironmental,
	EventFaction,
	EventSCPCrossover,
	EventSafeZone,
}

func (t EventType) Valid() bool {
	return slices.Contains(EventTypes, t)
}

// ChoiceType classifies what a choice does.
type ChoiceType string

const (
	ChoiceAction     ChoiceType = "action"
	ChoiceAllyAction ChoiceType = "ally_action"
	ChoiceItemUse    ChoiceType = "item_use"
	ChoiceDialogue   ChoiceType = "dialogue"
)

// ChoiceTypes lists every choice type in schema order.
var ChoiceTypes = []ChoiceType{ChoiceAction, ChoiceAllyAction, ChoiceItemUse, ChoiceDialogue}

func (t ChoiceType) Valid() bool {
	return slices.Contains(ChoiceTypes, t)
}

// LogType classifies a game log entry.
type LogType string

const (
	LogAction   LogType = "action"
	LogEvent    LogType = "event"
	LogDialogue LogType = "dialogue"
	LogSystem   LogType = "system"
)

// PlayerStats holds the five survival resources and their maxima.
type PlayerStats struct {
	Health    int `json:"health" yaml:"health"`
	Hunger    int `json:"hunger" yaml:"hunger"`
	Thirst    int `json:"thirst" yaml:"thirst"`
	Sanity    int `json:"sanity" yaml:"sanity"`
	Energy    int `json:"energy" yaml:"energy"`
	MaxHealth int `json:"maxHealth" yaml:"maxHealth"`
	MaxHunger int `json:"maxHunger" yaml:"maxHunger"`
	MaxThirst int `json:"maxThirst" yaml:"maxThirst"`
	MaxSanity int `json:"maxSanity" yaml:"maxSanity"`
	MaxEnergy int `json:"maxEnergy" yaml:"maxEnergy"`
}

// ChoiceRequirement gates a choice. Requirements are stored but never evaluated.
type ChoiceRequirement struct {
	Type     string `json:"type" yaml:"type"` // stat, item, ally, faction_rep, level_access
	Key      string `json:"key" yaml:"key"`
	Value    any    `json:"value" yaml:"value"`
	Operator string `json:"operator" yaml:"operator"` // gte, lte, eq, has
}

// GameChoice is one option offered by an event.
type GameChoice struct {
	ID           string              `json:"id" yaml:"id"`
	Text         string              `json:"text" yaml:"text"`
	Type         ChoiceType          `json:"type" yaml:"type"`
	Requirements []ChoiceRequirement `json:"requirements,omitempty" yaml:"requirements,omitempty"`
	Consequences []Consequence       `json:"consequences" yaml:"consequences"`
	AllyID       string              `json:"allyId,omitempty" yaml:"allyId,omitempty"`
	ItemID       string              `json:"itemId,omitempty" yaml:"itemId,omitempty"`
}

// WeatherEffect is a level-wide condition attached to an event.
type WeatherEffect struct {
	Type        string         `json:"type" yaml:"type"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	StatEffects map[string]int `json:"statEffects,omitempty" yaml:"statEffects,omitempty"`
	Duration    int            `json:"duration" yaml:"duration"`
	IsActive    bool           `json:"isActive" yaml:"isActive"`
}

// GameEvent is the event presented to the player. Once attached to a
// GameState it is replaced wholesale, never patched.
type GameEvent struct {
	ID                   string         `json:"id" yaml:"id"`
	Type                 EventType      `json:"type" yaml:"type"`
	Title                string         `json:"title" yaml:"title"`
	Description          string         `json:"description" yaml:"description"`
	EntityImage          string         `json:"entityImage,omitempty" yaml:"entityImage,omitempty"`
	EnvironmentImage     string         `json:"environmentImage" yaml:"environmentImage"`
	Choices              []GameChoice   `json:"choices" yaml:"choices"`
	WeatherEffect        *WeatherEffect `json:"weatherEffect,omitempty" yaml:"weatherEffect,omitempty"`
	EnvironmentalHazards []string       `json:"environmentalHazards" yaml:"environmentalHazards"`
	IsScpZone            bool           `json:"isScpZone" yaml:"isScpZone"`
	LevelSpecificData    map[string]any `json:"levelSpecificData" yaml:"levelSpecificData"`

	EntityPresent     bool   `json:"entityPresent" yaml:"entityPresent"`
	EntityName        string `json:"entityName,omitempty" yaml:"entityName,omitempty"`
	EntityType        string `json:"entityType,omitempty" yaml:"entityType,omitempty"`
	EntityDescription string `json:"entityDescription,omitempty" yaml:"entityDescription,omitempty"`
	EntityThreatLevel string `json:"entityThreatLevel,omitempty" yaml:"entityThreatLevel,omitempty"`

	EnvironmentDescription string `json:"environmentDescription,omitempty" yaml:"environmentDescription,omitempty"`
	Temperature            string `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	Humidity               string `json:"humidity,omitempty" yaml:"humidity,omitempty"`
	Lighting               string `json:"lighting,omitempty" yaml:"lighting,omitempty"`
}

// Choice returns the choice with the given id.
func (e *GameEvent) Choice(id string) (GameChoice, bool) {
	for _, c := range e.Choices {
		if c.ID == id {
			return c, true
		}
	}
	return GameChoice{}, false
}

// ItemEffect describes what using an item does.
type ItemEffect struct {
	Type        string `json:"type" yaml:"type"` // stat_restore, stat_boost, protection, special
	Stat        string `json:"stat,omitempty" yaml:"stat,omitempty"`
	Value       int    `json:"value" yaml:"value"`
	Duration    int    `json:"duration,omitempty" yaml:"duration,omitempty"`
	Description string `json:"description" yaml:"description"`
}

// InventoryItem is something the player carries.
type InventoryItem struct {
	ID          string       `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description" yaml:"description"`
	Type        string       `json:"type" yaml:"type"` // consumable, tool, weapon, artifact, scp_item
	Quantity    int          `json:"quantity" yaml:"quantity"`
	Effects     []ItemEffect `json:"effects" yaml:"effects"`
	IsCanonical bool         `json:"isCanonical" yaml:"isCanonical"`
	SourceWiki  string       `json:"sourceWiki" yaml:"sourceWiki"` // backrooms, scp
	Rarity      string       `json:"rarity" yaml:"rarity"`         // common .. anomalous
}

// AllyStats are the capabilities of an ally.
type AllyStats struct {
	Health      int `json:"health" yaml:"health"`
	MaxHealth   int `json:"maxHealth" yaml:"maxHealth"`
	Combat      int `json:"combat" yaml:"combat"`
	Stealth     int `json:"stealth" yaml:"stealth"`
	Negotiation int `json:"negotiation" yaml:"negotiation"`
	Technical   int `json:"technical" yaml:"technical"`
	Survival    int `json:"survival" yaml:"survival"`
}

// Ally is a companion travelling with the player.
type Ally struct {
	ID               string          `json:"id" yaml:"id"`
	Name             string          `json:"name" yaml:"name"`
	Faction          string          `json:"faction" yaml:"faction"`
	Description      string          `json:"description" yaml:"description"`
	Personality      []string        `json:"personality" yaml:"personality"`
	Stats            AllyStats       `json:"stats" yaml:"stats"`
	Inventory        []InventoryItem `json:"inventory" yaml:"inventory"`
	Relationship     int             `json:"relationship" yaml:"relationship"`
	IsAlive          bool            `json:"isAlive" yaml:"isAlive"`
	ExperienceLevel  int             `json:"experienceLevel" yaml:"experienceLevel"`
	SpecialAbilities []string        `json:"specialAbilities" yaml:"specialAbilities"`
	Backstory        string          `json:"backstory" yaml:"backstory"`
}

// GameLogEntry is one line of the append-only game log.
type GameLogEntry struct {
	ID        string         `json:"id" yaml:"id"`
	Timestamp time.Time      `json:"timestamp" yaml:"timestamp"`
	Type      LogType        `json:"type" yaml:"type"`
	Content   string         `json:"content" yaml:"content"`
	Metadata  map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// GameState is the root aggregate of a play session.
type GameState struct {
	ID                string          `json:"id" yaml:"id"`
	UserID            string          `json:"userId" yaml:"userId"`
	CurrentLevel      string          `json:"currentLevel" yaml:"currentLevel"`
	CurrentLevelName  string          `json:"currentLevelName" yaml:"currentLevelName"`
	CurrentEvent      *GameEvent      `json:"currentEvent" yaml:"currentEvent"`
	PlayerStats       PlayerStats     `json:"playerStats" yaml:"playerStats"`
	Inventory         []InventoryItem `json:"inventory" yaml:"inventory"`
	Allies            []Ally          `json:"allies" yaml:"allies"`
	FactionReputation map[string]int  `json:"factionReputation" yaml:"factionReputation"`
	DiscoveredLevels  []string        `json:"discoveredLevels" yaml:"discoveredLevels"`
	GameLog           []GameLogEntry  `json:"gameLog" yaml:"gameLog"`
	IsTabletOpen      bool            `json:"isTabletOpen" yaml:"isTabletOpen"`
	CreatedAt         time.Time       `json:"createdAt" yaml:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt" yaml:"updatedAt"`
}

// Clone returns a deep copy of the state so that the original stays valid
// for anyone still holding it.
func (s GameState) Clone() GameState {
	out := s
	if s.CurrentEvent != nil {
		ev := s.CurrentEvent.Clone()
		out.CurrentEvent = &ev
	}
	out.Inventory = CloneInventory(s.Inventory)
	out.Allies = cloneAllies(s.Allies)
	out.FactionReputation = maps.Clone(s.FactionReputation)
	out.DiscoveredLevels = slices.Clone(s.DiscoveredLevels)
	out.GameLog = cloneLog(s.GameLog)
	return out
}

func (e GameEvent) Clone() GameEvent {
	out := e
	if e.Choices != nil {
		out.Choices = make([]GameChoice, len(e.Choices))
		for i, c := range e.Choices {
			out.Choices[i] = c.Clone()
		}
	}
	if e.WeatherEffect != nil {
		w := *e.WeatherEffect
		w.StatEffects = maps.Clone(e.WeatherEffect.StatEffects)
		out.WeatherEffect = &w
	}
	out.EnvironmentalHazards = slices.Clone(e.EnvironmentalHazards)
	out.LevelSpecificData = maps.Clone(e.LevelSpecificData)
	return out
}

func (c GameChoice) Clone() GameChoice {
	out := c
	out.Requirements = slices.Clone(c.Requirements)
	out.Consequences = slices.Clone(c.Consequences)
	return out
}

// CloneInventory deep-copies an inventory.
func CloneInventory(items []InventoryItem) []InventoryItem {
	if items == nil {
		return nil
	}
	out := make([]InventoryItem, len(items))
	for i, it := range items {
		it.Effects = slices.Clone(it.Effects)
		out[i] = it
	}
	return out
}

func cloneAllies(allies []Ally) []Ally {
	if allies == nil {
		return nil
	}
	out := make([]Ally, len(allies))
	for i, a := range allies {
		a.Personality = slices.Clone(a.Personality)
		a.Inventory = CloneInventory(a.Inventory)
		a.SpecialAbilities = slices.Clone(a.SpecialAbilities)
		out[i] = a
	}
	return out
}

func cloneLog(entries []GameLogEntry) []GameLogEntry {
	if entries == nil {
		return nil
	}
	out := make([]GameLogEntry, len(entries))
	for i, e := range entries {
		e.Metadata = maps.Clone(e.Metadata)
		out[i] = e
	}
	return out
}
