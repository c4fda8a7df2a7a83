// Package rules applies choice consequences to a player's state.
package rules

import (
	"maps"

	"github.com/tatianab/backrooms/internal/models"
)

// Snapshot is the part of a game state that consequences can touch.
type Snapshot struct {
	Stats      models.PlayerStats
	Reputation map[string]int
	Inventory  []models.InventoryItem
}

// SnapshotOf extracts the resolvable part of a game state.
func SnapshotOf(s models.GameState) Snapshot {
	return Snapshot{
		Stats:      s.PlayerStats,
		Reputation: s.FactionReputation,
		Inventory:  s.Inventory,
	}
}

// Resolve applies consequences in order and returns a new snapshot. The input
// is never modified. Each consequence sees the effects of the ones before it,
// and stat changes are clamped after every step.
//
// Malformed consequences are skipped without error, as are changes to
// factions that are not already in the reputation table.
func Resolve(in Snapshot, consequences []models.Consequence) Snapshot {
	out := Snapshot{
		Stats:      in.Stats,
		Reputation: maps.Clone(in.Reputation),
		Inventory:  models.CloneInventory(in.Inventory),
	}

	for _, c := range consequences {
		eff, ok := c.Effect()
		if !ok {
			continue
		}
		switch e := eff.(type) {
		case models.StatChange:
			out.Stats = out.Stats.Apply(e.Stat, e.Delta)
		case models.FactionRep:
			if cur, ok := out.Reputation[e.Faction]; ok {
				out.Reputation[e.Faction] = models.Add(cur, e.Delta)
			}
		case models.ItemGain, models.ItemLose, models.AllyChange, models.LevelAccess, models.EventTrigger:
			// Recognized but unresolved. Inventory, ally and level rules hook in here.
		}
	}
	return out
}
