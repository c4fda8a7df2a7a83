package engine

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gopkg.in/yaml.v3"

	"github.com/tatianab/backrooms/internal/models"
)

//go:embed prompts/next_event.txt
var nextEventPrompt string

var nextEventTmpl = template.Must(template.New("next_event").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(nextEventPrompt))

var tracer = otel.Tracer("github.com/tatianab/backrooms/internal/engine")

const (
	// DefaultTimeout bounds a single generator call.
	DefaultTimeout = 20 * time.Second
	// MaxChoices is the number of choices an event may carry.
	MaxChoices = 4
)

// Generator produces structured content for a prompt. Implementations return
// the raw JSON (or YAML) text of an object matching schema.
type Generator interface {
	Generate(ctx context.Context, prompt string, schema *Schema) ([]byte, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string, schema *Schema) ([]byte, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string, schema *Schema) ([]byte, error) {
	return f(ctx, prompt, schema)
}

// Options configures an Engine. Zero values pick defaults.
type Options struct {
	Timeout time.Duration
	Catalog *Catalog
	Logger  *log.Logger
	Now     func() time.Time
}

// Engine turns the current state and a chosen action into the next event.
type Engine struct {
	gen     Generator
	timeout time.Duration
	catalog *Catalog
	logger  *log.Logger
	now     func() time.Time
}

func NewEngine(gen Generator, opts Options) *Engine {
	e := &Engine{
		gen:     gen,
		timeout: opts.Timeout,
		catalog: opts.Catalog,
		logger:  opts.Logger,
		now:     opts.Now,
	}
	if e.timeout <= 0 {
		e.timeout = DefaultTimeout
	}
	if e.catalog == nil {
		e.catalog = DefaultCatalog()
	}
	if e.logger == nil {
		e.logger = log.New(log.Writer(), "engine: ", log.Flags())
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Catalog returns the lore catalog used for theming.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// NextEvent generates the event that follows choice. It never fails: any
// generator error, timeout or unusable output is logged and answered with
// the fallback event. The generator is called at most once.
func (e *Engine) NextEvent(ctx context.Context, state models.GameState, choice models.GameChoice) models.GameEvent {
	ctx, span := tracer.Start(ctx, "engine.NextEvent")
	defer span.End()

	ev, err := e.generate(ctx, state, choice)
	if err != nil {
		e.logger.Printf("failed to generate next event, using fallback: %v", err)
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("backrooms.fallback", true))
		return e.Fallback()
	}
	span.SetAttributes(attribute.String("backrooms.event_type", string(ev.Type)))
	return ev
}

func (e *Engine) generate(ctx context.Context, state models.GameState, choice models.GameChoice) (models.GameEvent, error) {
	if e.gen == nil {
		return models.GameEvent{}, errors.New("no generator configured")
	}
	prompt, err := e.Prompt(state, choice)
	if err != nil {
		return models.GameEvent{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	// The generator may ignore ctx; its result is abandoned once the deadline passes.
	type result struct {
		out []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := e.gen.Generate(ctx, prompt, EventSchema())
		done <- result{out, err}
	}()

	var out []byte
	select {
	case r := <-done:
		if r.err != nil {
			return models.GameEvent{}, fmt.Errorf("generate: %w", r.err)
		}
		if err := ctx.Err(); err != nil {
			return models.GameEvent{}, fmt.Errorf("generate: %w", err)
		}
		out = r.out
	case <-ctx.Done():
		return models.GameEvent{}, fmt.Errorf("generate: %w", ctx.Err())
	}

	g, err := parseGenerated(out)
	if err != nil {
		return models.GameEvent{}, err
	}
	return e.toEvent(g, state)
}

// Prompt renders the generation prompt for state and choice.
func (e *Engine) Prompt(state models.GameState, choice models.GameChoice) (string, error) {
	var factions []string
	for name, rep := range state.FactionReputation {
		factions = append(factions, fmt.Sprintf("%s %d", name, rep))
	}
	slices.Sort(factions)

	statNames := make([]string, len(models.Stats))
	for i, s := range models.Stats {
		statNames[i] = string(s)
	}
	eventTypes := make([]string, len(models.EventTypes))
	for i, t := range models.EventTypes {
		eventTypes[i] = string(t)
	}
	choiceTypes := make([]string, len(models.ChoiceTypes))
	for i, t := range models.ChoiceTypes {
		choiceTypes[i] = string(t)
	}

	levelName := state.CurrentLevelName
	if levelName == "" {
		levelName = e.catalog.Level(state.CurrentLevel).Name
	}

	data := struct {
		LevelName        string
		Stats            models.PlayerStats
		Choice           string
		DiscoveredLevels []string
		Factions         []string
		EventTypes       []string
		ChoiceTypes      []string
		StatNames        []string
		MaxChoices       int
	}{
		LevelName:        levelName,
		Stats:            state.PlayerStats,
		Choice:           choice.Text,
		DiscoveredLevels: state.DiscoveredLevels,
		Factions:         factions,
		EventTypes:       eventTypes,
		ChoiceTypes:      choiceTypes,
		StatNames:        statNames,
		MaxChoices:       MaxChoices,
	}

	var buf bytes.Buffer
	if err := nextEventTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}

type generatedChoice struct {
	Text         string               `json:"text" yaml:"text"`
	Type         models.ChoiceType    `json:"type" yaml:"type"`
	Consequences []models.Consequence `json:"consequences" yaml:"consequences"`
}

type generatedEvent struct {
	Title                  string            `json:"title" yaml:"title"`
	Description            string            `json:"description" yaml:"description"`
	Type                   models.EventType  `json:"type" yaml:"type"`
	IsScpZone              bool              `json:"isScpZone" yaml:"isScpZone"`
	EnvironmentalHazards   []string          `json:"environmentalHazards" yaml:"environmentalHazards"`
	EntityPresent          bool              `json:"entityPresent" yaml:"entityPresent"`
	EntityName             string            `json:"entityName" yaml:"entityName"`
	EntityType             string            `json:"entityType" yaml:"entityType"`
	EntityDescription      string            `json:"entityDescription" yaml:"entityDescription"`
	EntityThreatLevel      string            `json:"entityThreatLevel" yaml:"entityThreatLevel"`
	EnvironmentDescription string            `json:"environmentDescription" yaml:"environmentDescription"`
	Temperature            string            `json:"temperature" yaml:"temperature"`
	Humidity               string            `json:"humidity" yaml:"humidity"`
	Lighting               string            `json:"lighting" yaml:"lighting"`
	Choices                []generatedChoice `json:"choices" yaml:"choices"`
}

func parseGenerated(out []byte) (generatedEvent, error) {
	clean := strings.TrimSpace(string(out))
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```yaml")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)
	if clean == "" {
		return generatedEvent{}, errors.New("empty response from generator")
	}

	var g generatedEvent
	var err error
	if json.Valid([]byte(clean)) {
		err = json.Unmarshal([]byte(clean), &g)
	} else {
		err = yaml.Unmarshal([]byte(clean), &g)
	}
	if err != nil {
		return generatedEvent{}, fmt.Errorf("failed to parse generated event: %w\nOutput was: %s", err, clean)
	}
	return g, nil
}

func (e *Engine) toEvent(g generatedEvent, state models.GameState) (models.GameEvent, error) {
	if strings.TrimSpace(g.Title) == "" {
		return models.GameEvent{}, errors.New("generated event has no title")
	}

	stamp := e.now().UnixNano()
	var choices []models.GameChoice
	for _, c := range g.Choices {
		if len(choices) == MaxChoices {
			break
		}
		text := strings.TrimSpace(c.Text)
		if text == "" {
			continue
		}
		typ := c.Type
		if !typ.Valid() {
			typ = models.ChoiceAction
		}
		consequences := []models.Consequence{}
		for _, cq := range c.Consequences {
			if cq.Type.Valid() {
				consequences = append(consequences, cq)
			}
		}
		choices = append(choices, models.GameChoice{
			ID:           fmt.Sprintf("choice-%d-%d", stamp, len(choices)),
			Text:         text,
			Type:         typ,
			Requirements: []models.ChoiceRequirement{},
			Consequences: consequences,
		})
	}
	if len(choices) == 0 {
		return models.GameEvent{}, errors.New("generated event has no usable choices")
	}

	typ := g.Type
	if !typ.Valid() {
		typ = models.EventExploration
	}
	hazards := g.EnvironmentalHazards
	if hazards == nil {
		hazards = []string{}
	}

	ev := models.GameEvent{
		ID:                     newID("event"),
		Type:                   typ,
		Title:                  strings.TrimSpace(g.Title),
		Description:            strings.TrimSpace(g.Description),
		EnvironmentImage:       e.catalog.Level(state.CurrentLevel).EnvironmentImage,
		Choices:                choices,
		EnvironmentalHazards:   hazards,
		IsScpZone:              g.IsScpZone,
		LevelSpecificData:      map[string]any{},
		EntityPresent:          g.EntityPresent,
		EntityName:             g.EntityName,
		EntityType:             g.EntityType,
		EntityDescription:      g.EntityDescription,
		EntityThreatLevel:      g.EntityThreatLevel,
		EnvironmentDescription: g.EnvironmentDescription,
		Temperature:            g.Temperature,
		Humidity:               g.Humidity,
		Lighting:               g.Lighting,
	}
	if typ == models.EventEntityEncounter {
		ev.EntityImage = e.catalog.EntityImage(g.EntityName)
	}
	return ev, nil
}

// Fallback returns the hand-authored "continuing forward" event. It makes no
// external calls and differs between calls only in its id.
func (e *Engine) Fallback() models.GameEvent {
	action := func(id, text string, stat models.Stat, delta int, why string) models.GameChoice {
		return models.GameChoice{
			ID:           id,
			Text:         text,
			Type:         models.ChoiceAction,
			Requirements: []models.ChoiceRequirement{},
			Consequences: []models.Consequence{
				{Type: models.ConsequenceStatChange, Key: string(stat), Value: delta, Description: why},
			},
		}
	}
	return models.GameEvent{
		ID:               newID("event"),
		Type:             models.EventExploration,
		Title:            "Continuing Forward",
		Description:      "You continue through the endless yellow corridors, the fluorescent lights humming overhead.",
		EnvironmentImage: e.catalog.Level(e.catalog.DefaultLevel).EnvironmentImage,
		Choices: []models.GameChoice{
			action("continue-1", "Keep Moving", models.Energy, -5, "Walking is tiring"),
			action("continue-2", "Look Around", models.Sanity, -2, "The environment is unsettling"),
			action("continue-3", "Rest Briefly", models.Energy, 5, "Brief rest helps"),
			action("continue-4", "Search for Items", models.Energy, -3, "Searching is tiring"),
		},
		EnvironmentalHazards:   []string{},
		LevelSpecificData:      map[string]any{},
		EnvironmentDescription: "The endless yellow hallways stretch in all directions, lit by buzzing fluorescent lights. The carpet beneath your feet is damp and worn.",
		Temperature:            "Room Temperature",
		Humidity:               "High",
		Lighting:               "Fluorescent",
	}
}

func newID(prefix string) string {
	id, err := uuid.NewRandom()
	if err != nil {
		return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
	}
	return prefix + "-" + id.String()
}
