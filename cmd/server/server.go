package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/pcbfab/chat-service/internal/blocklist"
	"github.com/pcbfab/chat-service/internal/chat"
	"github.com/pcbfab/chat-service/internal/config"
	"github.com/pcbfab/chat-service/internal/database"
	"github.com/pcbfab/chat-service/internal/handlers"
	"github.com/pcbfab/chat-service/pkg/auth"
)

type Server struct {
	Router  *gin.Engine
	Cfg     *config.Config
	DB      *database.Database
	Redis   *redis.Client
	Hub     *chat.Hub
	Limiter *chat.SlidingWindowLimiter
}

func NewServer() *Server {
	if err := godotenv.Load(".env.local"); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Println(".env not found, using environment variables")
		}
	}

	cfg := config.Load()

	dbConn := &database.Database{}
	if err := dbConn.Connect(); err != nil {
		log.Fatalf("Postgres connect failed: %v", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Redis connect failed: %v", err)
	}

	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, 24*time.Hour)

	blocks := blocklist.New(rdb)
	limiter := chat.NewSlidingWindowLimiter(cfg.RateLimit, cfg.RateWindow)
	gate := chat.NewGate(blocks, dbConn, dbConn, cfg.EditWindow)
	registry := chat.NewRegistry()
	sessions := chat.NewSessionTracker(blocks)
	hub := chat.NewHub(limiter, gate, registry, sessions, dbConn, dbConn)

	msgHandler := handlers.NewChatMessageHandler(hub)
	wsHandler := handlers.NewWebSocketHandler(hub, msgHandler)
	chatHandler := handlers.NewChatHandler(dbConn, hub, gate)
	adminHandler := handlers.NewAdminHandler(blocks)

	router := gin.Default()
	APIEndpoints(router, jwtMgr, rdb, wsHandler, chatHandler, adminHandler)

	return &Server{
		Router:  router,
		Cfg:     cfg,
		DB:      dbConn,
		Redis:   rdb,
		Hub:     hub,
		Limiter: limiter,
	}
}

func (s *Server) Run() {
	// Вытеснение простаивающих окон лимитера
	go func() {
		ticker := time.NewTicker(s.Cfg.RateWindow)
		defer ticker.Stop()
		for range ticker.C {
			s.Limiter.Cleanup()
		}
	}()

	log.Printf("Server starting on port %s", s.Cfg.Port)
	if err := s.Router.Run(":" + s.Cfg.Port); err != nil {
		log.Fatalf("Server run error: %v", err)
	}
}
