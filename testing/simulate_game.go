package main

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/google/generative-ai-go/genai"

	"github.com/tatianab/backrooms/internal/auth"
	"github.com/tatianab/backrooms/internal/config"
	"github.com/tatianab/backrooms/internal/engine"
	"github.com/tatianab/backrooms/internal/models"
	"github.com/tatianab/backrooms/internal/session"
	"github.com/tatianab/backrooms/internal/store"
)

const maxTurns = 10

func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// The generator drives the game; a second model plays it.
	gen, err := engine.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.Model)
	if err != nil {
		log.Fatalf("Failed to create generator: %v", err)
	}
	defer gen.Close()
	playerModel := gen.Client().GenerativeModel(cfg.Model)

	game := session.New(auth.Player("simulated-player"), store.NewMemoryStore(), gen, session.Options{
		GeneratorTimeout: cfg.GeneratorTimeout,
	})
	if err := game.Initialize(ctx); err != nil {
		log.Fatalf("Failed to start game: %v", err)
	}

	for turn := 1; turn <= maxTurns; turn++ {
		state := game.State()
		ev := state.CurrentEvent
		fmt.Printf("--- Turn %d: %s ---\n", turn, ev.Title)
		fmt.Println(ev.Description)
		for i, c := range ev.Choices {
			fmt.Printf("  %d. %s\n", i+1, c.Text)
		}

		choice := pickChoice(ctx, playerModel, state)
		fmt.Printf("Player chose: %s\n", choice.Text)

		if err := game.ApplyChoice(ctx, choice); err != nil {
			fmt.Printf("Error processing choice: %v\n", err)
			break
		}

		s := game.State().PlayerStats
		fmt.Printf("Stats: Health=%d Hunger=%d Thirst=%d Sanity=%d Energy=%d\n\n",
			s.Health, s.Hunger, s.Thirst, s.Sanity, s.Energy)

		if s.Health == 0 || s.Sanity == 0 {
			fmt.Println("Game Ended: the Backrooms claimed another wanderer.")
			break
		}
	}
}

func pickChoice(ctx context.Context, model *genai.GenerativeModel, state *models.GameState) models.GameChoice {
	ev := state.CurrentEvent
	var options strings.Builder
	for i, c := range ev.Choices {
		fmt.Fprintf(&options, "%d. %s\n", i+1, c.Text)
	}

	prompt := fmt.Sprintf(`You are playing a Backrooms survival game.
Level: %s
Event: %s
%s

Stats: Health %d, Hunger %d, Thirst %d, Sanity %d, Energy %d

Options:
%s
Which option do you pick? Return ONLY the option number.`,
		state.CurrentLevelName,
		ev.Title,
		ev.Description,
		state.PlayerStats.Health, state.PlayerStats.Hunger, state.PlayerStats.Thirst,
		state.PlayerStats.Sanity, state.PlayerStats.Energy,
		options.String(),
	)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return ev.Choices[0]
	}
	n, err := strconv.Atoi(strings.TrimSpace(fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])))
	if err != nil || n < 1 || n > len(ev.Choices) {
		return ev.Choices[0]
	}
	return ev.Choices[n-1]
}
