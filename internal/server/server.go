package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/voltway/internal/clock"
	"github.com/smallbiznis/voltway/internal/config"
	contributiondomain "github.com/smallbiznis/voltway/internal/contribution/domain"
	"github.com/smallbiznis/voltway/internal/events"
	leaderboarddomain "github.com/smallbiznis/voltway/internal/leaderboard/domain"
	"github.com/smallbiznis/voltway/internal/observability/logger"
	"github.com/smallbiznis/voltway/internal/observability/metrics"
	"github.com/smallbiznis/voltway/internal/observability/tracing"
	reliabilitydomain "github.com/smallbiznis/voltway/internal/reliability/domain"
	reliabilityjob "github.com/smallbiznis/voltway/internal/reliability/job"
	rewardsdomain "github.com/smallbiznis/voltway/internal/rewards/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) {
		s.RegisterAPIRoutes()
	}),
	fx.Invoke(RunHTTP),
)

type Params struct {
	fx.In

	Engine       *gin.Engine
	Cfg          config.Config
	DB           *gorm.DB
	Log          *zap.Logger
	Clock        clock.Clock
	Contribution contributiondomain.Service
	Rewards      rewardsdomain.Service
	Reliability  reliabilitydomain.Service
	Leaderboard  leaderboarddomain.Service
	Outbox       *events.Outbox
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	db           *gorm.DB
	log          *zap.Logger
	clock        clock.Clock
	contribution contributiondomain.Service
	rewards      rewardsdomain.Service
	reliability  reliabilitydomain.Service
	leaderboard  leaderboarddomain.Service
	outbox       *events.Outbox
	batch        reliabilityjob.Config
	limiter      *rateLimiter
}

type EngineParams struct {
	fx.In

	Cfg         config.Config
	Log         *zap.Logger
	HTTPMetrics *metrics.HTTPMetrics `optional:"true"`
}

func NewEngine(p EngineParams) *gin.Engine {
	if p.Cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(tracing.GinMiddleware(p.Cfg.AppName))
	r.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		Logger:    p.Log.Named("http"),
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	if p.HTTPMetrics != nil {
		r.Use(metrics.GinMiddleware(p.HTTPMetrics))
	}
	return r
}

func NewServer(p Params) *Server {
	return &Server{
		engine:       p.Engine,
		cfg:          p.Cfg,
		db:           p.DB,
		log:          p.Log.Named("server"),
		clock:        p.Clock,
		contribution: p.Contribution,
		rewards:      p.Rewards,
		reliability:  p.Reliability,
		leaderboard:  p.Leaderboard,
		outbox:       p.Outbox,
		batch:        reliabilityjob.ConfigFrom(p.Cfg),
		limiter:      newRateLimiter(defaultWriteLimit, defaultWriteWindow),
	}
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) now() time.Time { return s.clock.Now().UTC() }

func (s *Server) RegisterAPIRoutes() {
	s.engine.GET("/healthz", s.Health)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.engine.Group("/api/v1")

	chargers := api.Group("/chargers/:charger_id")
	chargers.GET("/contributions", s.ListContributions)
	chargers.GET("/summary", s.GetChargerSummary)
	chargers.GET("/reliability", s.GetReliability)
	chargers.POST("/contributions", s.UserRequired(), s.WriteRateLimit(), s.CreateContribution)

	contributions := api.Group("/contributions")
	contributions.GET("/:id", s.GetContribution)
	contributions.POST("/:id/validate", s.UserRequired(), s.WriteRateLimit(), s.ValidateContribution)
	contributions.POST("/:id/invalidate", s.UserRequired(), s.WriteRateLimit(), s.InvalidateContribution)

	rewards := api.Group("/rewards", s.UserRequired())
	rewards.GET("/me", s.GetMyRewards)
	rewards.GET("/me/transactions", s.ListMyTransactions)
	rewards.POST("/check-in", s.WriteRateLimit(), s.CheckIn)
	rewards.POST("/spend", s.WriteRateLimit(), s.SpendCoins)

	api.GET("/leaderboard", s.GetLeaderboard)
	api.GET("/leaderboard/rank/:user_id", s.GetUserRank)

	admin := api.Group("/admin")
	admin.POST("/reliability/recompute", s.RecomputeReliability)
	admin.POST("/rewards/reset-monthly", s.ResetMonthlyCoins)
	admin.GET("/events", s.ListPendingEvents)
	admin.POST("/events/ack", s.AckEvents)
}

func (s *Server) Health(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err == nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		s.log.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RunHTTP serves the engine for the lifetime of the fx app.
func RunHTTP(lc fx.Lifecycle, cfg config.Config, engine *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info("http server listening", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
