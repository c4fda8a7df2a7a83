package rules

import (
	"math"
	"reflect"
	"testing"

	"github.com/tatianab/backrooms/internal/models"
)

func stat(key string, v any) models.Consequence {
	return models.Consequence{Type: models.ConsequenceStatChange, Key: key, Value: v}
}

func rep(faction string, v any) models.Consequence {
	return models.Consequence{Type: models.ConsequenceFactionRep, Key: faction, Value: v}
}

func baseSnapshot() Snapshot {
	return Snapshot{
		Stats:      models.NewStats(100),
		Reputation: map[string]int{"M.E.G.": 0, "B.N.T.G.": 0, "The Eyes of Argos": 0},
		Inventory: []models.InventoryItem{
			{ID: "almond-water", Name: "Almond Water", Quantity: 1, Effects: []models.ItemEffect{{Type: "stat_restore", Stat: "thirst", Value: 20}}},
		},
	}
}

func TestResolveClampsEveryChannel(t *testing.T) {
	deltas := []int{-250, 40, -3, 999, -1, 17, -100, 100, -60}
	var cs []models.Consequence
	for i, d := range deltas {
		for _, s := range models.Stats {
			cs = append(cs, stat(string(s), d*(i%3+1)))
		}
	}

	out := Resolve(baseSnapshot(), cs)
	for _, s := range models.Stats {
		cur, limit := out.Stats.Get(s)
		if cur < 0 || cur > limit {
			t.Errorf("%s out of range: %d/%d", s, cur, limit)
		}
	}
}

func TestResolveClampsAfterEachStep(t *testing.T) {
	in := baseSnapshot()
	in.Stats.Energy = 90

	first := Resolve(in, []models.Consequence{stat("energy", 20)})
	if first.Stats.Energy != 100 {
		t.Fatalf("Expected energy 100 after first pass, got %d", first.Stats.Energy)
	}
	second := Resolve(first, []models.Consequence{stat("energy", 20)})
	if second.Stats.Energy != 100 || second.Stats.MaxEnergy != 100 {
		t.Errorf("Expected energy 100/100, got %d/%d", second.Stats.Energy, second.Stats.MaxEnergy)
	}

	// +20 clamps at 100 before -30 applies: 70, not 80.
	seq := Resolve(in, []models.Consequence{stat("energy", 20), stat("energy", -30)})
	if seq.Stats.Energy != 70 {
		t.Errorf("Expected sequential fold to give 70, got %d", seq.Stats.Energy)
	}
}

func TestResolveUnknownFactionIsNoop(t *testing.T) {
	in := baseSnapshot()
	out := Resolve(in, []models.Consequence{rep("Hounds of Level 1", 10)})

	if !reflect.DeepEqual(out.Reputation, in.Reputation) {
		t.Errorf("Expected reputation unchanged, got %v", out.Reputation)
	}
	if _, ok := out.Reputation["Hounds of Level 1"]; ok {
		t.Error("Expected no new faction key")
	}
}

func TestResolveKnownFactionIsUnbounded(t *testing.T) {
	out := Resolve(baseSnapshot(), []models.Consequence{
		rep("M.E.G.", -500),
		rep("M.E.G.", -250),
		rep("B.N.T.G.", 10000),
	})
	if out.Reputation["M.E.G."] != -750 {
		t.Errorf("Expected M.E.G. -750, got %d", out.Reputation["M.E.G."])
	}
	if out.Reputation["B.N.T.G."] != 10000 {
		t.Errorf("Expected B.N.T.G. 10000, got %d", out.Reputation["B.N.T.G."])
	}
}

func TestResolveSkipsMalformed(t *testing.T) {
	in := baseSnapshot()
	out := Resolve(in, []models.Consequence{
		stat("luck", -10),
		stat("sanity", "a lot"),
		stat("maxSanity", -50),
		{Type: "mystery", Key: "sanity", Value: -10},
		stat("sanity", -2),
	})

	want := models.NewStats(100)
	want.Sanity = 98
	if out.Stats != want {
		t.Errorf("Expected %+v, got %+v", want, out.Stats)
	}
}

func TestResolveLeavesExtensionPointsUnresolved(t *testing.T) {
	in := baseSnapshot()
	out := Resolve(in, []models.Consequence{
		{Type: models.ConsequenceItemGain, Key: "flashlight", Value: 1},
		{Type: models.ConsequenceItemLose, Key: "almond-water", Value: 1},
		{Type: models.ConsequenceAllyChange, Key: "ally-1", Value: 5},
		{Type: models.ConsequenceLevelAccess, Key: "level-1"},
		{Type: models.ConsequenceEventTrigger, Key: "hounds"},
	})
	if !reflect.DeepEqual(out, in) {
		t.Errorf("Expected snapshot unchanged, got %+v", out)
	}
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	in := baseSnapshot()
	before := baseSnapshot()

	out := Resolve(in, []models.Consequence{stat("health", -30), rep("M.E.G.", 5)})
	out.Inventory[0].Quantity = 9
	out.Inventory[0].Effects[0].Value = 1

	if !reflect.DeepEqual(in, before) {
		t.Errorf("Input snapshot was modified: %+v", in)
	}
	if out.Stats.Health != 70 || out.Reputation["M.E.G."] != 5 {
		t.Errorf("Unexpected output %+v", out)
	}
}

func TestResolveHugeValuesSaturate(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  int
	}{
		{"max int", math.MaxInt64, 100},
		{"float beyond int", 1e19, 100},
		{"huge float", 1e300, 100},
		{"max uint64", uint64(math.MaxUint64), 100},
		{"min int", math.MinInt64, 0},
		{"negative huge float", -1e300, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseSnapshot()
			in.Stats.Health = 60
			got := Resolve(in, []models.Consequence{stat("health", tt.value)})
			if got.Stats.Health != tt.want {
				t.Errorf("Expected health %d, got %d", tt.want, got.Stats.Health)
			}
		})
	}
}

func TestResolveHugeReputationSaturates(t *testing.T) {
	in := baseSnapshot()
	in.Reputation["M.E.G."] = 10
	in.Reputation["B.N.T.G."] = -10

	got := Resolve(in, []models.Consequence{
		rep("M.E.G.", math.MaxInt64),
		rep("B.N.T.G.", -1e300),
	})
	if got.Reputation["M.E.G."] != math.MaxInt {
		t.Errorf("Expected M.E.G. to saturate at %d, got %d", math.MaxInt, got.Reputation["M.E.G."])
	}
	if got.Reputation["B.N.T.G."] != math.MinInt {
		t.Errorf("Expected B.N.T.G. to saturate at %d, got %d", math.MinInt, got.Reputation["B.N.T.G."])
	}
}
