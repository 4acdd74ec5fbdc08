// Package api exposes the REST interface: JSON over gin, bearer-token
// authentication, with authorization enforced by the service packages.
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/runwayhq/runway/internal/broadcast"
	slackbc "github.com/runwayhq/runway/internal/broadcast/slack"
	"github.com/runwayhq/runway/internal/config"
	"github.com/runwayhq/runway/internal/pitch"
)

// pendingTTL bounds how long a started Slack OAuth flow stays valid.
const pendingTTL = 15 * time.Minute

// pendingOAuth tracks an in-flight Slack install between the authorize
// redirect and the channel selection.
type pendingOAuth struct {
	WorkspaceID string
	UserID      string
	BotToken    string
	TeamID      string
	TeamName    string
	Expires     time.Time
}

// Server wires the HTTP layer to storage, broadcasting and extraction.
type Server struct {
	db         *gorm.DB
	cfg        *config.Config
	dispatcher *broadcast.Dispatcher
	extractor  pitch.Extractor
	oauth      *slackbc.OAuth
	router     *gin.Engine

	mu      sync.Mutex
	pending map[string]pendingOAuth
}

// Opts holds dependencies for constructing a Server.
type Opts struct {
	DB         *gorm.DB
	Config     *config.Config
	Dispatcher *broadcast.Dispatcher
	Extractor  pitch.Extractor
}

// New builds the server and its route table.
func New(opts Opts) (*Server, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("api: db is required")
	}
	if opts.Dispatcher == nil {
		opts.Dispatcher = broadcast.NewDispatcher()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		db:         opts.DB,
		cfg:        opts.Config,
		dispatcher: opts.Dispatcher,
		extractor:  opts.Extractor,
		router:     router,
		pending:    make(map[string]pendingOAuth),
	}
	if opts.Config != nil && opts.Config.Slack.ClientID != "" {
		s.oauth = slackbc.NewOAuth(opts.Config.Slack)
	}
	s.registerRoutes()
	return s, nil
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, out io.Writer) error {
	port := 8080
	if s.cfg != nil && s.cfg.Server.Port > 0 {
		port = s.cfg.Server.Port
	}
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.router,
	}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if out != nil {
		fmt.Fprintf(out, "Runway API listening on http://localhost:%d\n", port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}
