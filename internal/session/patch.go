package session

import (
	"maps"
	"slices"

	"github.com/tatianab/backrooms/internal/models"
)

// Patch is a partial game state update. Nil fields are left unchanged.
// Identity, timestamps and the game log cannot be patched.
type Patch struct {
	CurrentLevel      *string                 `json:"currentLevel,omitempty"`
	CurrentLevelName  *string                 `json:"currentLevelName,omitempty"`
	CurrentEvent      *models.GameEvent       `json:"currentEvent,omitempty"`
	PlayerStats       *models.PlayerStats     `json:"playerStats,omitempty"`
	Inventory         *[]models.InventoryItem `json:"inventory,omitempty"`
	Allies            *[]models.Ally          `json:"allies,omitempty"`
	FactionReputation map[string]int          `json:"factionReputation,omitempty"`
	DiscoveredLevels  *[]string               `json:"discoveredLevels,omitempty"`
	IsTabletOpen      *bool                   `json:"isTabletOpen,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.CurrentLevel == nil && p.CurrentLevelName == nil && p.CurrentEvent == nil &&
		p.PlayerStats == nil && p.Inventory == nil && p.Allies == nil &&
		p.FactionReputation == nil && p.DiscoveredLevels == nil && p.IsTabletOpen == nil
}

// apply merges p into s. Values are copied so the patch can be reused.
func (p Patch) apply(s *models.GameState) {
	if p.CurrentLevel != nil {
		s.CurrentLevel = *p.CurrentLevel
	}
	if p.CurrentLevelName != nil {
		s.CurrentLevelName = *p.CurrentLevelName
	}
	if p.CurrentEvent != nil {
		ev := p.CurrentEvent.Clone()
		s.CurrentEvent = &ev
	}
	if p.PlayerStats != nil {
		s.PlayerStats = p.PlayerStats.Normalize()
	}
	if p.Inventory != nil {
		s.Inventory = models.CloneInventory(*p.Inventory)
		if s.Inventory == nil {
			s.Inventory = []models.InventoryItem{}
		}
	}
	if p.Allies != nil {
		s.Allies = slices.Clone(*p.Allies)
		if s.Allies == nil {
			s.Allies = []models.Ally{}
		}
	}
	if p.FactionReputation != nil {
		s.FactionReputation = maps.Clone(p.FactionReputation)
	}
	if p.DiscoveredLevels != nil {
		s.DiscoveredLevels = slices.Clone(*p.DiscoveredLevels)
		if s.DiscoveredLevels == nil {
			s.DiscoveredLevels = []string{}
		}
	}
	if p.IsTabletOpen != nil {
		s.IsTabletOpen = *p.IsTabletOpen
	}
}
