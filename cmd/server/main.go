package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/themobileprof/helpdesk-intent/internal/api"
	"github.com/themobileprof/helpdesk-intent/internal/api/middleware"
	"github.com/themobileprof/helpdesk-intent/internal/db"
	"github.com/themobileprof/helpdesk-intent/internal/engine"
	"github.com/themobileprof/helpdesk-intent/internal/nlp"
	"github.com/themobileprof/helpdesk-intent/internal/ws"
)

func main() {
	envErr := godotenv.Load()

	logger := newLogger(getEnv("APP_ENV", "production"))
	defer logger.Sync()

	if envErr != nil {
		logger.Warn(".env file not found", zap.Error(envErr))
	}

	cfg := loadConfig(logger)
	ctx := context.Background()

	engineCfg := engine.Config{
		ModelPath:  cfg.modelPath,
		Normalizer: newNormalizer(cfg, logger),
		Logger:     logger,
	}

	// Example store (optional)
	if cfg.databaseURL != "" {
		database, err := db.NewFromURL(cfg.databaseURL)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer database.Close()

		if err := database.EnsureSchema(ctx); err != nil {
			logger.Fatal("failed to prepare database schema", zap.Error(err))
		}
		store := db.NewExampleStore(database)
		count, err := store.CountExamples(ctx)
		if err != nil {
			logger.Warn("failed to count stored examples", zap.Error(err))
		}
		engineCfg.Store = store
		logger.Info("database connected, retrained examples will be persisted",
			zap.Int("stored_examples", count),
		)
	} else {
		logger.Info("DATABASE_URL not set, retrained examples live until restart")
	}

	eng := engine.New(engineCfg)
	if err := eng.Bootstrap(ctx); err != nil {
		logger.Fatal("failed to initialize classifier", zap.Error(err))
	}

	if cfg.jwtSecret == "" {
		logger.Warn("JWT_SECRET not set, /train is unauthenticated")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.port,
		Handler:           newRouter(cfg, eng, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.appEnv),
			zap.Strings("routes", []string{
				"GET /health",
				"POST /classify",
				"POST /train",
				"GET /ws/classify",
			}),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return
	}
	logger.Info("server exited")
}

func newLogger(appEnv string) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if appEnv == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewExample()
	}
	return logger
}

// newNormalizer returns the lexicon normalizer, or lowercasing only when
// NLP is disabled or the lexicon cannot be loaded
func newNormalizer(cfg config, logger *zap.Logger) *nlp.Normalizer {
	if !cfg.nlpEnabled {
		logger.Info("NLP disabled, using lowercase normalization")
		return nlp.NewNormalizer(nil)
	}

	var (
		lex *nlp.Lexicon
		err error
	)
	if cfg.lexiconPath != "" {
		lex, err = nlp.LoadLexicon(cfg.lexiconPath)
	} else {
		lex, err = nlp.DefaultLexicon()
	}
	if err != nil {
		logger.Warn("lexicon unavailable, using lowercase normalization",
			zap.String("path", cfg.lexiconPath),
			zap.Error(err),
		)
		return nlp.NewNormalizer(nil)
	}

	if cfg.stemLanguage != "" {
		if err := lex.EnableStemming(cfg.stemLanguage); err != nil {
			logger.Warn("stemming unavailable", zap.String("language", cfg.stemLanguage), zap.Error(err))
		}
	}

	logger.Info("NLP normalization enabled", zap.String("lexicon", cfg.lexiconPath))
	return nlp.NewNormalizer(lex)
}

func newRouter(cfg config, eng *engine.Engine, logger *zap.Logger) *gin.Engine {
	if !cfg.development() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog(logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(cfg.corsAllowedOrigins...))
	router.Use(middleware.PerIP(cfg.rateLimitRPS, cfg.rateLimitBurst))

	var trainGuard []gin.HandlerFunc
	if cfg.jwtSecret != "" {
		trainGuard = []gin.HandlerFunc{
			middleware.JWTAuth(cfg.jwtSecret),
			middleware.RequireAdmin(),
			middleware.PerUser(cfg.trainRequestsPerHour/3600.0, 5),
		}
	}

	api.NewIntentHandler(eng, logger).RegisterRoutes(router, trainGuard...)

	streamHandler := ws.NewClassifyHandler(eng, cfg.wsMessagesPerMinute, cfg.corsAllowedOrigins, logger)
	router.GET("/ws/classify", streamHandler.HandleClassify)

	return router
}
