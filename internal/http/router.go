package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger verifica conectividad con la base de datos para el health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	personalityH *PersonalityHandler,
	memoryH *MemoryHandler,
	dbPinger Pinger,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/health", healthHandler(dbPinger))

	api := r.Group("/api")
	api.POST("/sessions/process", personalityH.ProcessSession)

	personality := api.Group("/personality")
	personality.GET("/:user_id", personalityH.GetInsights)
	personality.GET("/:user_id/type", personalityH.GetType)
	personality.GET("/:user_id/facets", personalityH.GetFacets)

	api.POST("/users/:user_id/reset", personalityH.ResetUser)

	memory := api.Group("/memory")
	memory.POST("", memoryH.StoreMessage)
	memory.GET("/:user_id/similar", memoryH.FindSimilar)
	memory.GET("/:user_id/insights", memoryH.EmotionalInsights)
	memory.GET("/:user_id/stats", memoryH.Stats)

	return r
}

func healthHandler(dbPinger Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := gin.H{"status": "ok"}
		code := http.StatusOK
		if dbPinger != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := dbPinger.Ping(ctx); err != nil {
				status["status"] = "degraded"
				status["database"] = "unreachable"
				code = http.StatusServiceUnavailable
			}
		}
		c.JSON(code, status)
	}
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
