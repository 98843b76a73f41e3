package voice

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"skincare-backend/internal/shared/server/middleware"
	"skincare-backend/internal/shared/server/respond"
	"skincare-backend/internal/shared/telemetry"
	"skincare-backend/internal/shared/util"
)

const (
	errorCodeValidation = "validation_error"
	errorCodeFailed     = "voice_failed"
)

// Transcriber turns recorded speech into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType, language string) (string, error)
}

// Speaker renders text as WAV audio.
type Speaker interface {
	Speak(ctx context.Context, text, language string) ([]byte, error)
}

// Handler serves the speech endpoints used by the profile wizard.
type Handler struct {
	Transcriber Transcriber
	Speaker     Speaker
}

// NewHandler constructs a Handler.
func NewHandler(transcriber Transcriber, speaker Speaker) *Handler {
	return &Handler{Transcriber: transcriber, Speaker: speaker}
}

// RegisterRoutes attaches voice routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/transcribe", h.transcribe)
	rg.POST("/tts", h.tts)
}

type transcribeRequest struct {
	AudioBase64 string `json:"audioBase64" binding:"required"`
	MimeType    string `json:"mimeType"`
	Language    string `json:"language"`
}

type ttsRequest struct {
	Text     string `json:"text" binding:"required,min=1,max=500"`
	Language string `json:"language"`
}

func (h *Handler) transcribe(c *gin.Context) {
	var req transcribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, errorCodeValidation, "Invalid request data", respond.ValidationDetails(err))
		return
	}
	audio, detected, err := util.DecodeBase64Payload(req.AudioBase64)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, errorCodeValidation, "Invalid request data", []map[string]string{
			{"field": "audioBase64", "issue": "invalid_base64"},
		})
		return
	}
	mimeType := strings.TrimSpace(req.MimeType)
	if mimeType == "" {
		mimeType = detected
	}
	if mimeType == "" {
		mimeType = "audio/wav"
	}

	text, err := h.Transcriber.Transcribe(c.Request.Context(), audio, mimeType, language(req.Language))
	if err != nil {
		telemetry.Error("voice.transcribe_failed", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"user_id":    middleware.UserIDFromContext(c),
			"error":      err.Error(),
		})
		respond.Error(c, http.StatusInternalServerError, errorCodeFailed, "Failed to transcribe audio", nil)
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"success": true, "text": text})
}

func (h *Handler) tts(c *gin.Context) {
	var req ttsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, errorCodeValidation, "Invalid text input", respond.ValidationDetails(err))
		return
	}

	audio, err := h.Speaker.Speak(c.Request.Context(), req.Text, language(req.Language))
	if err != nil {
		telemetry.Error("voice.tts_failed", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"user_id":    middleware.UserIDFromContext(c),
			"error":      err.Error(),
		})
		respond.Error(c, http.StatusInternalServerError, errorCodeFailed, "Failed to generate audio", nil)
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"success":     true,
		"audioBase64": base64.StdEncoding.EncodeToString(audio),
	})
}

func language(lang string) string {
	if trimmed := strings.TrimSpace(lang); trimmed != "" {
		return trimmed
	}
	return "en"
}
