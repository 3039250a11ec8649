package app

import (
	"strings"
	"time"

	"github.com/corvid-labs/taskline-backend/internal/pkg/logger"
	"github.com/corvid-labs/taskline-backend/internal/utils"
)

type Config struct {
	Port           string
	DBMode         string // "postgres" or "memory"
	JWTSecretKey   string
	TokenIssuer    string
	AccessTokenTTL time.Duration
	AllowedOrigins []string
}

func LoadConfig(log *logger.Logger) Config {
	port := utils.GetEnv("PORT", "8080", log)
	dbMode := strings.ToLower(utils.GetEnv("DB_MODE", "postgres", log))
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	tokenIssuer := utils.GetEnv("TOKEN_ISSUER", "taskline", log)
	accessTokenTTLSeconds := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)

	var origins []string
	if raw := utils.GetEnv("ALLOWED_ORIGINS", "", log); raw != "" {
		for _, o := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	return Config{
		Port:           port,
		DBMode:         dbMode,
		JWTSecretKey:   jwtSecretKey,
		TokenIssuer:    tokenIssuer,
		AccessTokenTTL: time.Duration(accessTokenTTLSeconds) * time.Second,
		AllowedOrigins: origins,
	}
}
