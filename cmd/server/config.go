package main

import (
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

type config struct {
	port                 string
	appEnv               string
	modelPath            string
	databaseURL          string
	jwtSecret            string
	nlpEnabled           bool
	lexiconPath          string
	stemLanguage         string
	rateLimitRPS         float64
	rateLimitBurst       int
	wsMessagesPerMinute  int
	corsAllowedOrigins   []string
	trainRequestsPerHour float64
}

func loadConfig(logger *zap.Logger) config {
	return config{
		port:                 getEnv("PORT", "5000"),
		appEnv:               getEnv("APP_ENV", "production"),
		modelPath:            getEnv("MODEL_PATH", "intent_model.json"),
		databaseURL:          getEnv("DATABASE_URL", ""),
		jwtSecret:            getEnv("JWT_SECRET", ""),
		nlpEnabled:           getEnvBool(logger, "NLP_ENABLED", true),
		lexiconPath:          getEnv("NLP_LEXICON_PATH", ""),
		stemLanguage:         getEnv("NLP_STEM_LANGUAGE", ""),
		rateLimitRPS:         getEnvFloat(logger, "RATE_LIMIT_RPS", 20),
		rateLimitBurst:       getEnvInt(logger, "RATE_LIMIT_BURST", 40),
		wsMessagesPerMinute:  getEnvInt(logger, "WS_MESSAGES_PER_MINUTE", 120),
		corsAllowedOrigins:   splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
		trainRequestsPerHour: getEnvFloat(logger, "TRAIN_REQUESTS_PER_HOUR", 60),
	}
}

func (c config) development() bool {
	return c.appEnv == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(logger *zap.Logger, key string, defaultValue bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		logger.Warn("invalid boolean, using default", zap.String("key", key), zap.String("value", raw))
		return defaultValue
	}
	return v
}

func getEnvInt(logger *zap.Logger, key string, defaultValue int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		logger.Warn("invalid integer, using default", zap.String("key", key), zap.String("value", raw))
		return defaultValue
	}
	return v
}

func getEnvFloat(logger *zap.Logger, key string, defaultValue float64) float64 {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		logger.Warn("invalid number, using default", zap.String("key", key), zap.String("value", raw))
		return defaultValue
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
