package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/foodsafe/fs-indexer/internal/logger"
)

// AuthConfig holds authentication configuration
type AuthConfig struct {
	APIKeys []string
}

// validateAPIKey checks the presented key against the configured set
func validateAPIKey(apiKey string, cfg AuthConfig) error {
	if len(cfg.APIKeys) == 0 {
		return errors.New("no API keys configured")
	}

	for _, key := range cfg.APIKeys {
		if key != "" && key == apiKey {
			return nil
		}
	}

	return errors.New("invalid API key")
}

// extractAPIKey pulls the key from either the Authorization header
// ("ApiKey <key>") or the X-API-Key header
func extractAPIKey(c *gin.Context) (string, error) {
	if key := c.GetHeader("X-API-Key"); key != "" {
		return key, nil
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", errors.New("missing API key")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "apikey") {
		return "", errors.New("invalid Authorization header format")
	}

	return parts[1], nil
}

// APIKeyAuth returns a gin middleware that requires a valid API key
func APIKeyAuth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, err := extractAPIKey(c)
		if err == nil {
			err = validateAPIKey(key, cfg)
		}

		if err != nil {
			logger.Warn("Authentication failed",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Authentication failed",
				},
			})
			return
		}

		logger.Debug("API key authentication successful",
			zap.String("path", c.Request.URL.Path),
			zap.String("client_ip", c.ClientIP()),
		)

		c.Next()
	}
}
