package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tatianab/backrooms/internal/engine"
	"github.com/tatianab/backrooms/internal/models"
	"github.com/tatianab/backrooms/internal/rules"
	"github.com/tatianab/backrooms/internal/store"
)

var tracer = otel.Tracer("github.com/tatianab/backrooms/internal/session")

// View is what subscribers see: the lifecycle status, the last persisted
// state and the last error message. State must be treated as read-only.
type View struct {
	Status Status            `json:"status"`
	State  *models.GameState `json:"state,omitempty"`
	Err    string            `json:"error,omitempty"`
}

// Options configures a Controller. Zero values pick defaults.
type Options struct {
	GeneratorTimeout time.Duration
	Catalog          *engine.Catalog
	Logger           *log.Logger
	Now              func() time.Time
}

// Controller drives one player's session.
//
// Only one operation runs at a time; a second one started while the first
// is in flight fails with ErrBusy. Published state always equals the last
// state that was written to the store.
type Controller struct {
	auth   Auth
	store  Store
	engine *engine.Engine
	logger *log.Logger
	now    func() time.Time

	op sync.Mutex

	mu      sync.RWMutex
	status  Status
	state   *models.GameState
	err     string
	subs    map[int]func(View)
	nextSub int
}

func New(auth Auth, st Store, gen engine.Generator, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.Writer(), "session: ", log.Flags())
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Controller{
		auth:  auth,
		store: st,
		engine: engine.NewEngine(gen, engine.Options{
			Timeout: opts.GeneratorTimeout,
			Catalog: opts.Catalog,
			Logger:  opts.Logger,
			Now:     now,
		}),
		logger: logger,
		now:    now,
		subs:   map[int]func(View){},
	}
}

// View returns the current view.
func (c *Controller) View() View {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return View{Status: c.status, State: c.state, Err: c.err}
}

func (c *Controller) Status() Status { return c.View().Status }

// State returns the last persisted state, or nil before the first load.
func (c *Controller) State() *models.GameState { return c.View().State }

// Err returns the message of the last failed operation.
func (c *Controller) Err() string { return c.View().Err }

// Subscribe registers fn to receive every published view. Calls happen on
// the goroutine running the operation, in subscription order. The returned
// function removes the subscription.
func (c *Controller) Subscribe(fn func(View)) (cancel func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// update mutates the controller under its lock and publishes the result.
func (c *Controller) update(fn func()) {
	c.mu.Lock()
	fn()
	view := View{Status: c.status, State: c.state, Err: c.err}
	ids := make([]int, 0, len(c.subs))
	for id := range c.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	subs := make([]func(View), len(ids))
	for i, id := range ids {
		subs[i] = c.subs[id]
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(view)
	}
}

// Initialize loads the player's most recent game, or creates and stores a
// new one when there is none or the stored one is structurally invalid.
// It may be called again after a failure to retry.
func (c *Controller) Initialize(ctx context.Context) error {
	if !c.op.TryLock() {
		return ErrBusy
	}
	defer c.op.Unlock()

	ctx, span := tracer.Start(ctx, "session.Initialize")
	defer span.End()

	c.update(func() { c.status = StatusLoading })

	state, err := c.load(ctx)
	if err != nil {
		recordError(span, err)
		c.update(func() {
			c.status = StatusErrored
			c.err = err.Error()
		})
		return err
	}

	span.SetAttributes(attribute.String("backrooms.game_id", state.ID))
	c.update(func() {
		c.status = StatusReady
		c.state = &state
		c.err = ""
	})
	return nil
}

func (c *Controller) load(ctx context.Context) (models.GameState, error) {
	user, err := c.auth.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			return models.GameState{}, err
		}
		return models.GameState{}, fmt.Errorf("failed to resolve user: %w", err)
	}

	docs, err := c.store.List(ctx, store.Query{UserID: user.ID, Limit: 1})
	if err != nil {
		return models.GameState{}, fmt.Errorf("failed to load game: %w", err)
	}
	if len(docs) == 0 {
		return c.newGame(ctx, user.ID)
	}

	state, err := models.DecodeState(docs[0].Body)
	if errors.Is(err, models.ErrCorruptState) {
		c.logger.Printf("loaded game %s is incomplete, creating new game: %v", docs[0].ID, err)
		return c.newGame(ctx, user.ID)
	}
	if err != nil {
		return models.GameState{}, fmt.Errorf("failed to load game %s: %w", docs[0].ID, err)
	}
	return state, nil
}

// newGame builds the starting state and stores it before returning, so no
// caller ever holds an unpersisted game.
func (c *Controller) newGame(ctx context.Context, userID string) (models.GameState, error) {
	state := NewGame(newID("game"), userID, c.now(), c.engine.Catalog())
	doc, err := document(state)
	if err != nil {
		return models.GameState{}, err
	}
	if err := c.store.Create(ctx, doc); err != nil {
		return models.GameState{}, fmt.Errorf("failed to create game: %w", err)
	}
	return state, nil
}

// ApplyChoice resolves the choice's consequences, generates the next event,
// appends a log entry and persists the result. The new state is published
// only after the store accepts it; on a store failure the previous state
// stays in place and the error is reported.
func (c *Controller) ApplyChoice(ctx context.Context, choice models.GameChoice) error {
	if !c.op.TryLock() {
		return ErrBusy
	}
	defer c.op.Unlock()
	return c.applyChoice(ctx, choice)
}

// ApplyChoiceByID applies the current event's choice with the given id.
func (c *Controller) ApplyChoiceByID(ctx context.Context, id string) error {
	if !c.op.TryLock() {
		return ErrBusy
	}
	defer c.op.Unlock()

	cur, err := c.ready()
	if err != nil {
		return err
	}
	choice, ok := cur.CurrentEvent.Choice(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownChoice, id)
	}
	return c.applyChoice(ctx, choice)
}

func (c *Controller) applyChoice(ctx context.Context, choice models.GameChoice) error {
	ctx, span := tracer.Start(ctx, "session.ApplyChoice",
		trace.WithAttributes(attribute.String("backrooms.choice_id", choice.ID)))
	defer span.End()

	cur, err := c.ready()
	if err != nil {
		return err
	}

	outcome := rules.Resolve(rules.SnapshotOf(*cur), choice.Consequences)
	next := cur.Clone()
	next.PlayerStats = outcome.Stats
	next.FactionReputation = outcome.Reputation
	next.Inventory = outcome.Inventory

	event := c.engine.NextEvent(ctx, next, choice)

	now := c.now().UTC()
	next.CurrentEvent = &event
	next.GameLog = append(next.GameLog, models.GameLogEntry{
		ID:        newID("log"),
		Timestamp: now,
		Type:      models.LogAction,
		Content:   "Player chose: " + choice.Text,
		Metadata:  map[string]any{"choiceId": choice.ID},
	})
	next.UpdatedAt = now

	if err := c.commit(ctx, next); err != nil {
		recordError(span, err)
		return fmt.Errorf("failed to process choice: %w", err)
	}
	return nil
}

// ApplyPartialUpdate merges patch over the current state and persists it.
func (c *Controller) ApplyPartialUpdate(ctx context.Context, patch Patch) error {
	if !c.op.TryLock() {
		return ErrBusy
	}
	defer c.op.Unlock()

	ctx, span := tracer.Start(ctx, "session.ApplyPartialUpdate")
	defer span.End()

	cur, err := c.ready()
	if err != nil {
		return err
	}

	next := cur.Clone()
	patch.apply(&next)
	next.UpdatedAt = c.now().UTC()

	if err := c.commit(ctx, next); err != nil {
		recordError(span, err)
		return fmt.Errorf("failed to update game state: %w", err)
	}
	return nil
}

func (c *Controller) ready() (*models.GameState, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.status != StatusReady || c.state == nil {
		return nil, ErrNotReady
	}
	return c.state, nil
}

// commit persists next and adopts it only if the store accepted it.
func (c *Controller) commit(ctx context.Context, next models.GameState) error {
	doc, err := document(next)
	if err == nil {
		err = c.store.Update(ctx, next.ID, doc)
	}
	if err != nil {
		err = fmt.Errorf("failed to save game: %w", err)
		c.update(func() { c.err = err.Error() })
		return err
	}
	c.update(func() {
		c.state = &next
		c.err = ""
	})
	return nil
}

func document(s models.GameState) (store.Document, error) {
	body, err := models.EncodeState(s)
	if err != nil {
		return store.Document{}, err
	}
	return store.Document{ID: s.ID, UserID: s.UserID, UpdatedAt: s.UpdatedAt, Body: body}, nil
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func newID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}
