package analyses

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"skincare-backend/internal/shared/server/middleware"
	"skincare-backend/internal/shared/server/respond"
	"skincare-backend/internal/shared/telemetry"
	"skincare-backend/internal/shared/util"
)

// AnalyzeInput carries what the analysis provider needs for one photo.
type AnalyzeInput struct {
	Profile  Profile
	Image    []byte
	MimeType string
	Language string
}

// Analyzer produces metrics for a profile and face photo.
type Analyzer interface {
	Analyze(ctx context.Context, input AnalyzeInput) (Metrics, error)
}

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc      *Service
	Analyzer Analyzer
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, analyzer Analyzer) *Handler {
	return &Handler{Svc: svc, Analyzer: analyzer}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyze", h.analyze)
	rg.GET("/analyses", h.listAnalyses)
	rg.GET("/analyses/:id", h.getAnalysis)
	rg.DELETE("/analyses/:id", h.deleteAnalysis)
}

type analyzeRequest struct {
	Profile     *profileRequest `json:"profile" binding:"required"`
	ImageBase64 string          `json:"imageBase64" binding:"required"`
	MimeType    string          `json:"mimeType"`
	Language    string          `json:"language"`
}

// profileRequest mirrors Profile with pointer fields: every key must be
// present, but an empty string or a zero reading is accepted.
type profileRequest struct {
	Name             *string            `json:"name" binding:"required"`
	Age              *string            `json:"age" binding:"required"`
	Gender           *string            `json:"gender" binding:"required"`
	SkinType         *string            `json:"skinType" binding:"required"`
	Sensitivity      *string            `json:"sensitivity" binding:"required"`
	Concerns         []string           `json:"concerns" binding:"required"`
	HealthConditions []string           `json:"healthConditions" binding:"required"`
	HealthData       *healthDataRequest `json:"healthData"`
}

type healthDataRequest struct {
	Steps      *float64 `json:"steps" binding:"required"`
	SleepHours *float64 `json:"sleepHours" binding:"required"`
	HeartRate  *float64 `json:"heartRate" binding:"required"`
	LastSync   *string  `json:"lastSync" binding:"required"`
}

func (p profileRequest) toProfile() Profile {
	profile := Profile{
		Name:             *p.Name,
		Age:              *p.Age,
		Gender:           *p.Gender,
		SkinType:         *p.SkinType,
		Sensitivity:      *p.Sensitivity,
		Concerns:         p.Concerns,
		HealthConditions: p.HealthConditions,
	}
	if hd := p.HealthData; hd != nil {
		profile.HealthData = &HealthData{
			Steps:      *hd.Steps,
			SleepHours: *hd.SleepHours,
			HeartRate:  *hd.HeartRate,
			LastSync:   *hd.LastSync,
		}
	}
	return profile
}

type analyzeResponse struct {
	ID string `json:"id"`
	Metrics
}

func (h *Handler) analyze(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "Invalid request data", respond.ValidationDetails(err))
		return
	}

	image, mimeType, err := util.DecodeBase64Payload(req.ImageBase64)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "Invalid request data", []map[string]string{
			{"field": "imageBase64", "issue": "invalid_base64"},
		})
		return
	}
	profile := req.Profile.toProfile()
	if strings.TrimSpace(req.MimeType) != "" {
		mimeType = req.MimeType
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	if h.Analyzer == nil {
		respond.Error(c, http.StatusInternalServerError, ErrorCodeAnalysisFailed, "Failed to analyze skin", nil)
		return
	}
	result, err := h.Analyzer.Analyze(c.Request.Context(), AnalyzeInput{
		Profile:  profile,
		Image:    image,
		MimeType: mimeType,
		Language: normalizeLanguage(req.Language),
	})
	if err != nil {
		telemetry.Error("analysis.provider_failed", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"user_id":    userID,
			"error":      err.Error(),
		})
		respond.Error(c, http.StatusInternalServerError, ErrorCodeAnalysisFailed, "Failed to analyze skin", nil)
		return
	}

	id, err := h.Svc.SaveAnalysis(c.Request.Context(), userID, profile, result)
	if err != nil {
		telemetry.Error("analysis.save_failed", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"user_id":    userID,
			"error":      err.Error(),
		})
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "Failed to save analysis", nil)
		return
	}
	c.Set("analysisId", id)

	respond.Data(c, analyzeResponse{ID: id, Metrics: result})
}

func (h *Handler) listAnalyses(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	summaries, err := h.Svc.ListUserAnalyses(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "Failed to fetch analyses", nil)
		return
	}

	respond.Data(c, summaries)
}

func (h *Handler) getAnalysis(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	id := c.Param("id")
	c.Set("analysisId", id)

	record, err := h.Svc.GetAnalysis(c.Request.Context(), id, userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, ErrorCodeNotFound, "Analysis not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "Failed to fetch analysis", nil)
		}
		return
	}

	respond.Data(c, record)
}

func (h *Handler) deleteAnalysis(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	id := c.Param("id")
	c.Set("analysisId", id)

	deleted, err := h.Svc.DeleteAnalysis(c.Request.Context(), id, userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "Failed to delete analysis", nil)
		return
	}
	if !deleted {
		respond.Error(c, http.StatusNotFound, ErrorCodeNotFound, "Analysis not found or unauthorized", nil)
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"success": true, "message": "Analysis deleted"})
}

func normalizeLanguage(lang string) string {
	if strings.TrimSpace(lang) == "" {
		return "en"
	}
	return strings.TrimSpace(lang)
}
