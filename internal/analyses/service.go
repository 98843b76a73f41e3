package analyses

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"skincare-backend/internal/shared/metrics"
	"skincare-backend/internal/shared/telemetry"
)

// Service is the sole reader and writer of analysis records. It enforces
// ownership on every operation and the per-user retention cap on save.
type Service struct {
	Repo Repo
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// SaveAnalysis stores a new record for userID and then evicts the user's
// oldest records beyond MaxAnalysesPerUser. Insert and eviction are separate
// statements, so the cap is enforced eventually: a failed eviction is
// reported to the caller and repaired by the next save.
func (s *Service) SaveAnalysis(ctx context.Context, userID string, profile Profile, result Metrics) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", ErrUserRequired
	}

	record := AnalysisRecord{
		ID:       uuid.NewString(),
		UserID:   userID,
		Profile:  profile.Clone(),
		Analysis: result.Clone(),
	}
	stored, err := s.Repo.Insert(ctx, record)
	if err != nil {
		return "", fmt.Errorf("insert analysis: %w", err)
	}
	metrics.IncAnalysisSaved()

	evicted, err := s.Repo.TrimUser(ctx, userID, MaxAnalysesPerUser)
	if err != nil {
		telemetry.Error("analysis.evict_failed", map[string]any{
			"user_id":     userID,
			"analysis_id": stored.ID,
			"error":       err.Error(),
		})
		return "", fmt.Errorf("enforce retention: %w", err)
	}
	if evicted > 0 {
		metrics.AddAnalysisEvicted(evicted)
		telemetry.Info("analysis.evicted", map[string]any{
			"user_id": userID,
			"evicted": evicted,
		})
	}

	telemetry.Info("analysis.saved", map[string]any{
		"user_id":     userID,
		"analysis_id": stored.ID,
	})
	return stored.ID, nil
}

// ListUserAnalyses returns the user's summaries, newest first.
func (s *Service) ListUserAnalyses(ctx context.Context, userID string) ([]Summary, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUserRequired
	}
	return s.Repo.ListByUser(ctx, userID)
}

// GetAnalysis returns the full record. A record owned by another user is
// reported as ErrNotFound, exactly like a missing one.
func (s *Service) GetAnalysis(ctx context.Context, id, userID string) (AnalysisRecord, error) {
	if strings.TrimSpace(userID) == "" {
		return AnalysisRecord{}, ErrUserRequired
	}
	if !validID(id) {
		return AnalysisRecord{}, ErrNotFound
	}
	return s.Repo.GetOwned(ctx, id, userID)
}

// DeleteAnalysis removes the record if userID owns it. It returns false for
// both missing and foreign records; a foreign record is left untouched.
func (s *Service) DeleteAnalysis(ctx context.Context, id, userID string) (bool, error) {
	if strings.TrimSpace(userID) == "" {
		return false, ErrUserRequired
	}
	if !validID(id) {
		return false, nil
	}
	deleted, err := s.Repo.DeleteOwned(ctx, id, userID)
	if err != nil {
		return false, err
	}
	if deleted {
		metrics.IncAnalysisDeleted()
		telemetry.Info("analysis.deleted", map[string]any{
			"user_id":     userID,
			"analysis_id": id,
		})
	}
	return deleted, nil
}

// validID reports whether id could name a stored record. Anything else can
// never match a row.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
