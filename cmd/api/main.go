package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"io.mapwave.beacon/internal/config"
	"io.mapwave.beacon/internal/db"
	firebaseutil "io.mapwave.beacon/internal/firebase"
	"io.mapwave.beacon/internal/handlers"
	"io.mapwave.beacon/internal/hub"
	"io.mapwave.beacon/internal/logger"
	"io.mapwave.beacon/internal/middleware"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	// Initialize Firebase
	firebaseApp, err := firebaseutil.InitFirebase(cfg)
	if err != nil {
		zlog.Fatalw("Failed to initialize Firebase", "error", err)
	}

	// Initialize PostgreSQL
	postgresDB, err := db.InitPostgres()
	if err != nil {
		zlog.Fatalw("Failed to initialize PostgreSQL", "error", err)
	}
	defer postgresDB.Close()

	// Initialize Redis
	redisClient, err := db.InitRedis()
	if err != nil {
		zlog.Fatalw("Failed to initialize Redis", "error", err)
	}
	defer redisClient.Close()

	// Start the WebSocket hub and the Redis event bridge feeding it
	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()

	eventHub := hub.New(zlog)
	go eventHub.Run(hubCtx)
	go hub.RunBridge(hubCtx, redisClient, eventHub, zlog)

	// Initialize Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RequestLoggingMiddleware(zlog))
	router.Use(middleware.RecoveryMiddleware(zlog))

	// Add CORS middleware for the browser map panel
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Initialize handlers
	brandingHandler := handlers.NewBrandingHandler(postgresDB, redisClient, zlog)
	stationsHandler := handlers.NewStationsHandler(postgresDB, redisClient, zlog)
	trackersHandler := handlers.NewTrackersHandler(postgresDB, redisClient, zlog)
	wsHandler := handlers.NewWSHandler(eventHub)

	// Define routes
	v1 := router.Group("/api/v1")
	{
		branding := v1.Group("/branding")
		{
			branding.GET("/logo", brandingHandler.GetLogo)
			branding.POST("/update-logo", middleware.AuthMiddleware(firebaseApp), brandingHandler.UpdateLogo)
		}

		stations := v1.Group("/stations")
		{
			stations.POST("/list-stations", stationsHandler.ListStations)
			stations.POST("/create-station", middleware.AuthMiddleware(firebaseApp), stationsHandler.CreateStation)
			stations.POST("/delete-station", middleware.AuthMiddleware(firebaseApp), stationsHandler.DeleteStation)
		}

		trackers := v1.Group("/trackers")
		{
			trackers.POST("/list-trackers", trackersHandler.ListTrackers)
			trackers.POST("/get-history", trackersHandler.GetHistory)
		}
	}

	// Browser event stream
	router.GET("/ws", wsHandler.Subscribe)

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		zlog.Infow("Server starting", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatalw("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("Shutting down server...")

	// Stop the hub and bridge first so clients get close frames
	hubCancel()

	// Give a 5 second timeout for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zlog.Fatalw("Server forced to shutdown", "error", err)
	}

	zlog.Info("Server exited")
}
