// Package server exposes game sessions over HTTP and WebSocket.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/tatianab/backrooms/internal/auth"
	"github.com/tatianab/backrooms/internal/engine"
	"github.com/tatianab/backrooms/internal/models"
	"github.com/tatianab/backrooms/internal/session"
)

// Options configures a Server.
type Options struct {
	Session session.Options
	Logger  *log.Logger
	// AccessLog enables gin's request logger.
	AccessLog bool
}

// Server holds one session controller per signed in player.
type Server struct {
	tokens *auth.Tokens
	store  session.Store
	gen    engine.Generator
	opts   Options
	logger *log.Logger

	mu    sync.Mutex
	games map[string]*session.Controller
}

func New(tokens *auth.Tokens, st session.Store, gen engine.Generator, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.Writer(), "server: ", log.Flags())
	}
	return &Server{
		tokens: tokens,
		store:  st,
		gen:    gen,
		opts:   opts,
		logger: logger,
		games:  map[string]*session.Controller{},
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	if s.opts.AccessLog {
		r.Use(gin.Logger())
	}

	r.POST("/api/login", s.login)

	api := r.Group("/api", s.authenticate)
	api.GET("/game", s.getGame)
	api.POST("/game/init", s.initGame)
	api.POST("/game/choices/:id", s.choose)
	api.PATCH("/game", s.patchGame)

	r.GET("/ws", s.authenticate, s.watch)
	return r
}

// controller returns the player's controller, creating it on first use.
func (s *Server) controller(u session.User) *session.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.games[u.ID]
	if !ok {
		c = session.New(auth.Context{}, s.store, s.gen, s.opts.Session)
		s.games[u.ID] = c
	}
	return c
}

// authenticate accepts a bearer token or, for browsers opening a
// WebSocket, a token query parameter, and signs the player into the
// request context.
func (s *Server) authenticate(c *gin.Context) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if token == "" {
		token = c.Query("token")
	}
	u, err := s.tokens.Verify(token)
	if err != nil {
		abort(c, err)
		return
	}
	c.Request = c.Request.WithContext(auth.WithUser(c.Request.Context(), u))
	c.Next()
}

func currentController(s *Server, c *gin.Context) *session.Controller {
	u, _ := auth.FromContext(c.Request.Context())
	return s.controller(u)
}

type loginRequest struct {
	Player string `json:"player" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "player is required"})
		return
	}
	token, user, err := s.tokens.Issue(req.Player)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// getGame returns the player's view, loading the game on first access.
func (s *Server) getGame(c *gin.Context) {
	ctrl := currentController(s, c)
	if ctrl.Status() == session.StatusUninitialized {
		if err := ctrl.Initialize(c.Request.Context()); err != nil && !errors.Is(err, session.ErrBusy) {
			s.logger.Printf("failed to initialize game: %v", err)
		}
	}
	c.JSON(http.StatusOK, ctrl.View())
}

func (s *Server) initGame(c *gin.Context) {
	ctrl := currentController(s, c)
	s.respond(c, ctrl, ctrl.Initialize(c.Request.Context()))
}

func (s *Server) choose(c *gin.Context) {
	ctrl := currentController(s, c)
	// A choice outlives a dropped connection so the game is never left half
	// applied from the player's point of view.
	ctx := context.WithoutCancel(c.Request.Context())
	s.respond(c, ctrl, ctrl.ApplyChoiceByID(ctx, c.Param("id")))
}

func (s *Server) patchGame(c *gin.Context) {
	var patch session.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if patch.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "patch changes nothing"})
		return
	}
	if patch.CurrentEvent != nil && !validEvent(patch.CurrentEvent) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "currentEvent needs an id and at least one choice"})
		return
	}
	ctrl := currentController(s, c)
	s.respond(c, ctrl, ctrl.ApplyPartialUpdate(c.Request.Context(), patch))
}

func validEvent(ev *models.GameEvent) bool {
	return ev.ID != "" && len(ev.Choices) > 0
}

func (s *Server) respond(c *gin.Context, ctrl *session.Controller, err error) {
	if err != nil {
		s.logger.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(statusOf(err), gin.H{"error": err.Error(), "view": ctrl.View()})
		return
	}
	c.JSON(http.StatusOK, ctrl.View())
}

func abort(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusOf(err), gin.H{"error": err.Error()})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, session.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrBusy), errors.Is(err, session.ErrNotReady):
		return http.StatusConflict
	case errors.Is(err, session.ErrUnknownChoice):
		return http.StatusNotFound
	}
	return http.StatusServiceUnavailable
}
