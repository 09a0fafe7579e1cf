package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	httpHandler "github.com/Vivek-yadav01/CollabRoom/internal/handler/http"
	wsHandler "github.com/Vivek-yadav01/CollabRoom/internal/handler/websocket"
	"github.com/Vivek-yadav01/CollabRoom/internal/hub"
	"github.com/Vivek-yadav01/CollabRoom/internal/infra/persistence/memory"
	"github.com/Vivek-yadav01/CollabRoom/internal/infra/storage/disk"
	"github.com/Vivek-yadav01/CollabRoom/internal/service"
)

// Config holds everything loaded from the environment at startup.
type Config struct {
	ServerPort        string
	LogLevel          string
	AppEnv            string
	CORSAllowedOrigin string
	UploadDir         string
	MaxUploadBytes    int64
}

// LoadConfig reads configuration from a .env file (if present) and the
// environment, applying defaults.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // env vars alone are fine

	cfg := &Config{
		ServerPort:        os.Getenv("SERVER_PORT"),
		LogLevel:          os.Getenv("LOG_LEVEL"),
		AppEnv:            os.Getenv("APP_ENV"),
		CORSAllowedOrigin: os.Getenv("CORS_ALLOWED_ORIGIN"),
		UploadDir:         os.Getenv("UPLOAD_DIR"),
		MaxUploadBytes:    10 << 20,
	}

	if cfg.ServerPort == "" {
		cfg.ServerPort = "4000"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}
	if cfg.CORSAllowedOrigin == "" {
		cfg.CORSAllowedOrigin = "http://localhost:5173"
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = "./public/uploads"
	}
	if raw := os.Getenv("MAX_UPLOAD_BYTES"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 {
			cfg.MaxUploadBytes = n
		} else {
			logrus.Warnf("Invalid MAX_UPLOAD_BYTES %q, using default", raw)
		}
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		logrus.Warnf("Invalid LOG_LEVEL %q, using default 'info'", cfg.LogLevel)
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// App wires and owns every component of the server process.
type App struct {
	Config      *Config
	Log         *logrus.Logger
	Registry    *memory.Registry
	RoomService *service.RoomService
	Hub         *hub.Hub
	HTTPServer  *http.Server
}

// NewApp creates and initializes all application components. The room
// registry is constructed here and injected everywhere; nothing holds
// process-global state.
func NewApp() (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	log := logrus.StandardLogger()
	if cfg.AppEnv == "production" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, ForceColors: true})
	}
	logLevel, _ := logrus.ParseLevel(cfg.LogLevel) // validated by LoadConfig
	log.SetLevel(logLevel)
	log.SetOutput(os.Stdout)
	log.Info("Configuration loaded")

	fileStore, err := disk.NewStore(cfg.UploadDir)
	if err != nil {
		return nil, err
	}
	log.WithField("dir", fileStore.Dir()).Info("File store initialized")

	registry := memory.NewRegistry()
	roomService := service.NewRoomService(registry, fileStore)
	collabService := service.NewCollaborationService(registry, fileStore)
	hubInstance := hub.NewHub(roomService, collabService)
	log.Info("Services and hub initialized")

	websocketHandler := wsHandler.NewWebSocketHandler(hubInstance)
	uploadHandler := httpHandler.NewUploadHandler(collabService, fileStore, hubInstance, cfg.MaxUploadBytes)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(log))
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Requested-With")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	router.POST("/upload", uploadHandler.Upload)
	router.Static("/uploads", fileStore.Dir())
	router.GET("/ws", websocketHandler.HandleConnection)
	router.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"message": "pong"}) })
	log.Info("Router setup complete")

	httpServer := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	return &App{
		Config:      cfg,
		Log:         log,
		Registry:    registry,
		RoomService: roomService,
		Hub:         hubInstance,
		HTTPServer:  httpServer,
	}, nil
}

// Start launches the hub loop and the HTTP server.
func (a *App) Start() {
	go a.Hub.Run()
	a.Log.Info("Hub routine started")

	go func() {
		a.Log.Infof("HTTP server listening on %s", a.HTTPServer.Addr)
		if err := a.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Fatalf("Failed to start HTTP server: %v", err)
		}
		a.Log.Info("HTTP server stopped listening")
	}()
}

// Shutdown stops accepting work, then enumerates and releases every
// surviving room so no uploaded file outlives the process.
func (a *App) Shutdown() {
	a.Log.Info("Shutting down application...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.HTTPServer.Shutdown(ctx); err != nil {
		a.Log.Errorf("Error shutting down HTTP server: %v", err)
	} else {
		a.Log.Info("HTTP server shut down gracefully")
	}

	a.Hub.Stop()
	a.RoomService.ReleaseAll(context.Background())

	a.Log.Info("Application shutdown complete")
}

// LoggerMiddleware logs every HTTP request through logrus, with the log
// level chosen by status class.
func LoggerMiddleware(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()
		latency := time.Since(startTime)
		statusCode := c.Writer.Status()
		path := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			path = path + "?" + c.Request.URL.RawQuery
		}
		errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String()

		entry := log.WithFields(logrus.Fields{
			"status_code": statusCode,
			"latency_ms":  latency.Milliseconds(),
			"client_ip":   c.ClientIP(),
			"method":      c.Request.Method,
			"path":        path,
		})

		switch {
		case errorMessage != "":
			entry.Error(errorMessage)
		case statusCode >= 500:
			entry.Error("Server error")
		case statusCode >= 400:
			entry.Warn("Client error")
		default:
			entry.Info("Request handled")
		}
	}
}
