package session

import (
	"time"

	"github.com/tatianab/backrooms/internal/engine"
	"github.com/tatianab/backrooms/internal/models"
)

const (
	// StartEventID identifies the canonical first event.
	StartEventID = "start-event"
	// StartLevel is where every new game begins.
	StartLevel = "level-0"
)

// StartingFactions are the factions every new game knows about.
var StartingFactions = []string{"M.E.G.", "B.N.T.G.", "The Eyes of Argos"}

// NewGame builds the canonical starting state for userID. It does not
// persist anything; the controller stores it before handing it out.
func NewGame(id, userID string, now time.Time, catalog *engine.Catalog) models.GameState {
	if catalog == nil {
		catalog = engine.DefaultCatalog()
	}
	level := catalog.Level(StartLevel)
	now = now.UTC()

	reputation := make(map[string]int, len(StartingFactions))
	for _, f := range StartingFactions {
		reputation[f] = 0
	}

	return models.GameState{
		ID:                id,
		UserID:            userID,
		CurrentLevel:      StartLevel,
		CurrentLevelName:  level.Name,
		CurrentEvent:      startEvent(level),
		PlayerStats:       models.NewStats(100),
		Inventory:         []models.InventoryItem{},
		Allies:            []models.Ally{},
		FactionReputation: reputation,
		DiscoveredLevels:  []string{StartLevel},
		GameLog: []models.GameLogEntry{{
			ID:        "log-start",
			Timestamp: now,
			Type:      models.LogSystem,
			Content:   "Game started. Welcome to the Backrooms.",
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func startEvent(level engine.Level) *models.GameEvent {
	choice := func(id, text string, consequences ...models.Consequence) models.GameChoice {
		return models.GameChoice{
			ID:           id,
			Text:         text,
			Type:         models.ChoiceAction,
			Requirements: []models.ChoiceRequirement{},
			Consequences: consequences,
		}
	}
	change := func(stat models.Stat, delta int, why string) models.Consequence {
		return models.Consequence{Type: models.ConsequenceStatChange, Key: string(stat), Value: delta, Description: why}
	}

	return &models.GameEvent{
		ID:    StartEventID,
		Type:  models.EventExploration,
		Title: "Welcome to the Backrooms",
		Description: "You find yourself in an endless maze of yellow rooms. The fluorescent lights hum overhead, " +
			"casting an eerie glow on the damp carpet. The smell of old moisture fills your nostrils. " +
			"You need to find a way to survive and explore this strange reality.",
		EnvironmentImage: level.EnvironmentImage,
		Choices: []models.GameChoice{
			choice("explore-forward", "Move Forward",
				change(models.Energy, -5, "Walking consumes energy")),
			choice("listen-carefully", "Listen Carefully",
				change(models.Sanity, -2, "The humming affects your sanity")),
			choice("search-area", "Search Area",
				change(models.Energy, -3, "Searching is tiring")),
			choice("rest-moment", "Rest for a Moment",
				change(models.Energy, 10, "Brief rest restores energy"),
				change(models.Sanity, -1, "The environment is unsettling")),
		},
		EnvironmentalHazards: []string{"Fluorescent Light Malfunction"},
		LevelSpecificData:    map[string]any{},
		EnvironmentDescription: "An endless maze of randomly segmented rooms with yellowed walls and damp, musty carpet. " +
			"The monotonous hum of fluorescent lights fills the air.",
		Temperature: "Room Temperature",
		Humidity:    "High",
		Lighting:    "Fluorescent",
	}
}
