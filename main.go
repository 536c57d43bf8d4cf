package main

import (
	"context"
	"flag"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zapcore"

	"github.com/covechat/cove/config"
	"github.com/covechat/cove/logger"
	"github.com/covechat/cove/middleware"
	"github.com/covechat/cove/middleware/security"
	"github.com/covechat/cove/module/status"
	"github.com/covechat/cove/module/typing"
	"github.com/covechat/cove/service/auth"
	"github.com/covechat/cove/service/gateway"
	"github.com/covechat/cove/service/store"
)

func main() {
	cfgFile := flag.String("config", "", "config file (default: ./cove.yaml)")
	flag.Parse()

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		logger.Errorf("[main] load config: %v", err)
		os.Exit(1)
	}
	if level, perr := zapcore.ParseLevel(cfg.LogLevel); perr == nil {
		logger.Init(level)
	}
	defer logger.Sync()

	config.Watch(func(c *config.Config) {
		if level, perr := zapcore.ParseLevel(c.LogLevel); perr == nil {
			logger.Init(level)
		}
		logger.Infof("[main] config reloaded, log level %q", c.LogLevel)
	})

	ctx := context.Background()
	pool, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Errorf("[main] database: %v", err)
		os.Exit(1)
	}
	defer pool.Close()

	pg := store.NewPG(pool)
	verifier := auth.NewJWTVerifier(cfg.JWTSecret, pg)

	gw, err := gateway.NewServer(gateway.Options{
		Verifier:      verifier,
		Membership:    pg,
		AuthTimeout:   cfg.AuthTimeout,
		TypingTTL:     cfg.TypingTTL,
		SendQueueSize: cfg.SendQueueSize,
		FanoutWorkers: cfg.FanoutWorkers,
		FanoutQueue:   cfg.FanoutQueue,
	})
	if err != nil {
		// Gateway init failure is fatal, never retried per connection.
		logger.Errorf("[main] gateway: %v", err)
		os.Exit(1)
	}
	defer gw.Close()
	gateway.SetDefault(gw)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/ws", middleware.Origin(cfg.AllowedOrigins), gw.HandleWS)

	api := r.Group("/api", security.Middleware(verifier, cfg.AuthTimeout))
	typing.NewHandler(gw).Register(api)
	status.NewHandler(gw, pg).Register(api)

	logger.Infof("[main] gateway listening on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		logger.Errorf("[main] serve: %v", err)
		os.Exit(1)
	}
}
