package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"skincare-backend/internal/shared/server/respond"
	"skincare-backend/internal/shared/telemetry"
)

const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	checkOK        = "ok"
	checkMemory    = "memory"
	checkDown      = "down"
)

// Pinger reports database reachability.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Report is the health payload.
type Report struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// Service encapsulates health-related checks.
type Service struct {
	DB      Pinger
	Timeout time.Duration
	now     func() time.Time
}

// NewService constructs a health service. A nil db means the in-memory store
// is in use and the database check reports "memory".
func NewService(db Pinger) *Service {
	return &Service{
		DB:      db,
		Timeout: 2 * time.Second,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Status runs every check.
func (s *Service) Status(ctx context.Context) Report {
	report := Report{
		Status:    StatusOK,
		Timestamp: s.now(),
		Checks:    map[string]string{"database": checkMemory},
	}
	if s.DB == nil {
		return report
	}

	pingCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()
	if err := s.DB.PingContext(pingCtx); err != nil {
		telemetry.Warn("health.db_unreachable", map[string]any{"error": err.Error()})
		report.Status = StatusDegraded
		report.Checks["database"] = checkDown
		return report
	}
	report.Checks["database"] = checkOK
	return report
}

// Handler serves GET /health: 200 when healthy, 503 otherwise.
func (s *Service) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		report := s.Status(c.Request.Context())
		status := http.StatusOK
		if report.Status != StatusOK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	}
}
