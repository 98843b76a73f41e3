package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"skincare-backend/internal/shared/config"
	"skincare-backend/internal/shared/metrics"
	"skincare-backend/internal/shared/server/middleware"
)

// RouteRegistrar attaches a feature's routes to a group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouterDeps carries everything NewRouter wires.
type RouterDeps struct {
	Config          config.Config
	Verifier        middleware.TokenVerifier
	Health          gin.HandlerFunc
	AnalysisHandler RouteRegistrar
	VoiceHandler    RouteRegistrar
	RateLimiter     *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.BodyLimit(cfg.MaxBodyBytes),
	)

	if deps.Health != nil {
		r.GET("/health", deps.Health)
	}
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	api.Use(middleware.Auth(deps.Verifier))
	api.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Limiter:  deps.RateLimiter,
		GroupFor: routeGroup,
		Rules: map[string]middleware.RateLimitRule{
			"AI": aiRule(cfg),
		},
	}))
	registerMeRoutes(api)
	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.RegisterRoutes(api)
	}
	if deps.VoiceHandler != nil {
		deps.VoiceHandler.RegisterRoutes(api)
	}

	return r
}

// routeGroup puts every provider-backed route in the AI group.
func routeGroup(c *gin.Context) string {
	if c.Request.Method != http.MethodPost {
		return ""
	}
	switch c.FullPath() {
	case "/api/analyze", "/api/transcribe", "/api/tts":
		return "AI"
	}
	return ""
}

func aiRule(cfg config.Config) middleware.RateLimitRule {
	perMinute := cfg.AIRatePerMinute
	if perMinute <= 0 {
		return middleware.RateLimitRule{}
	}
	burst := cfg.AIRateBurst
	if burst <= 0 {
		burst = 1
	}
	return middleware.RateLimitRule{
		Rate:  perMinute / time.Minute.Seconds(),
		Burst: burst,
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
