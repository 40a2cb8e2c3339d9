package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// maxUploadBody limits the POST /embed request body.
const maxUploadBody = "64M"

// shutdownTimeout bounds graceful shutdown once the context is cancelled.
const shutdownTimeout = 10 * time.Second

// Services are the driving ports served over HTTP.
type Services struct {
	Retrieval driving.RetrievalService
	Chat      driving.ChatService
	Auth      driving.AuthService
	Health    driving.HealthService

	// Prompts provides the canned development answer; optional.
	Prompts driven.PromptStore
}

// Config controls routing and middleware.
type Config struct {
	// DevMode registers development-only routes.
	DevMode bool

	// AllowedOrigins are the CORS origins; empty allows all.
	AllowedOrigins []string

	// RequestTimeout bounds /embed and /query; zero disables it.
	RequestTimeout time.Duration

	// Verbose logs every request.
	Verbose bool
}

// Server is the HTTP API.
type Server struct {
	echo     *echo.Echo
	services Services
	cfg      Config
}

// NewServer builds the echo instance and registers every route.
func NewServer(services Services, cfg Config) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handleError
	e.Logger.SetOutput(logger.Output())

	s := &Server{echo: e, services: services, cfg: cfg}

	e.Use(middleware.Recover())
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: origins}))
	if cfg.Verbose {
		e.Use(requestLogger())
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	var slow []echo.MiddlewareFunc
	if s.cfg.RequestTimeout > 0 {
		slow = append(slow, middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
			Timeout: s.cfg.RequestTimeout,
			// Keep the deadline error so handleError can map it to 504.
			ErrorHandler: func(err error, _ echo.Context) error { return err },
		}))
	}
	upload := append([]echo.MiddlewareFunc{middleware.BodyLimit(maxUploadBody)}, slow...)

	e := s.echo
	e.POST("/embed", s.embed, upload...)
	e.POST("/query", s.query, slow...)
	e.GET("/embeddings", s.listDocuments)
	e.DELETE("/clear", s.clear)
	e.DELETE("/remove/:filename", s.removeDocument)

	e.POST("/login", s.login)
	e.GET("/health", s.health)

	e.POST("/new_chat", s.newChat)
	e.POST("/recent_chats", s.recentChats)
	e.GET("/chat_history/:id", s.chatHistory)
	e.PUT("/chat_history/:id", s.appendChatHistory)

	if s.cfg.DevMode {
		e.POST("/query_dummy", s.queryDummy)
	}
}

// Handler returns the HTTP handler, for tests and embedding in other servers.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http: listening on %s", addr)
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("http: %s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	})
}
