package server

import (
	"context"
	"fmt"
	"time"

	"github.com/datagrail/karmabot/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"
)

// eventHandler handles Slack Events API deliveries.
type eventHandler interface {
	HandleEvent(c echo.Context) error
}

type Server struct {
	echo        *echo.Echo
	config      *config.Config
	events      eventHandler
	db          *pgxpool.Pool
	redisClient *goredis.Client
	startTime   time.Time

	// Overridable health checkers for testing.
	redisHealthCheck    redisHealthChecker
	postgresHealthCheck postgresHealthChecker
}

type Option func(*Server)

func withRedisHealthCheck(checker redisHealthChecker) Option {
	return func(s *Server) { s.redisHealthCheck = checker }
}

func withPostgresHealthCheck(checker postgresHealthChecker) Option {
	return func(s *Server) { s.postgresHealthCheck = checker }
}

func NewServer(cfg *config.Config, events eventHandler, db *pgxpool.Pool, redisClient *goredis.Client, opts ...Option) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	srv := &Server{
		echo:        e,
		config:      cfg,
		events:      events,
		db:          db,
		redisClient: redisClient,
		startTime:   time.Now(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
