package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sqlx.DB
}

// NewPGRepo wraps an open *sql.DB registered under the given driver name.
func NewPGRepo(db *sql.DB, driverName string) *PGRepo {
	return &PGRepo{DB: sqlx.NewDb(db, driverName)}
}

type recordRow struct {
	ID                      string         `db:"id"`
	UserID                  string         `db:"user_id"`
	CreatedAt               time.Time      `db:"created_at"`
	ProfileName             string         `db:"profile_name"`
	ProfileAge              string         `db:"profile_age"`
	ProfileGender           string         `db:"profile_gender"`
	ProfileSkinType         string         `db:"profile_skin_type"`
	ProfileSensitivity      string         `db:"profile_sensitivity"`
	ProfileConcerns         pq.StringArray `db:"profile_concerns"`
	ProfileHealthConditions pq.StringArray `db:"profile_health_conditions"`
	ProfileHealthData       []byte         `db:"profile_health_data"`
	OverallScore            int            `db:"overall_score"`
	EyeAge                  int            `db:"eye_age"`
	SkinAge                 int            `db:"skin_age"`
	Hydration               int            `db:"hydration"`
	Redness                 int            `db:"redness"`
	Pigmentation            int            `db:"pigmentation"`
	Lines                   int            `db:"lines"`
	Acne                    int            `db:"acne"`
	Translucency            int            `db:"translucency"`
	Uniformness             int            `db:"uniformness"`
	Pores                   int            `db:"pores"`
	Summary                 string         `db:"summary"`
	Recommendations         []byte         `db:"recommendations"`
}

const recordColumns = `id, user_id, created_at,
       profile_name, profile_age, profile_gender, profile_skin_type, profile_sensitivity,
       profile_concerns, profile_health_conditions, profile_health_data,
       overall_score, eye_age, skin_age, hydration, redness, pigmentation, lines, acne,
       translucency, uniformness, pores, summary, recommendations`

// Insert stores the record; created_at is assigned by the database.
func (r *PGRepo) Insert(ctx context.Context, record AnalysisRecord) (AnalysisRecord, error) {
	const query = `
INSERT INTO skin_analyses (
	id, user_id,
	profile_name, profile_age, profile_gender, profile_skin_type, profile_sensitivity,
	profile_concerns, profile_health_conditions, profile_health_data,
	overall_score, eye_age, skin_age, hydration, redness, pigmentation, lines, acne,
	translucency, uniformness, pores, summary, recommendations
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
RETURNING created_at`

	p := record.Profile
	m := record.Analysis
	healthPayload, err := marshalHealthData(p.HealthData)
	if err != nil {
		return AnalysisRecord{}, err
	}
	recPayload, err := json.Marshal(m.Recommendations)
	if err != nil {
		return AnalysisRecord{}, fmt.Errorf("encode recommendations: %w", err)
	}

	var createdAt time.Time
	err = r.DB.QueryRowxContext(ctx, query,
		record.ID,
		record.UserID,
		p.Name,
		p.Age,
		p.Gender,
		p.SkinType,
		p.Sensitivity,
		textArray(p.Concerns),
		textArray(p.HealthConditions),
		healthPayload,
		m.OverallScore,
		m.EyeAge,
		m.SkinAge,
		m.Hydration,
		m.Redness,
		m.Pigmentation,
		m.Lines,
		m.Acne,
		m.Translucency,
		m.Uniformness,
		m.Pores,
		m.Summary,
		recPayload,
	).Scan(&createdAt)
	if err != nil {
		return AnalysisRecord{}, err
	}
	out := record.Clone()
	out.CreatedAt = createdAt.UTC()
	return out, nil
}

// TrimUser deletes the user's records beyond the keep newest in one statement.
func (r *PGRepo) TrimUser(ctx context.Context, userID string, keep int) (int, error) {
	const query = `
DELETE FROM skin_analyses
WHERE user_id = $1
  AND id IN (
	SELECT id FROM skin_analyses
	WHERE user_id = $1
	ORDER BY created_at DESC, id DESC
	OFFSET $2
)`
	if keep < 0 {
		keep = 0
	}
	res, err := r.DB.ExecContext(ctx, query, userID, keep)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// ListByUser lists summaries for a user ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Summary, error) {
	const query = `
SELECT id, created_at, overall_score, skin_age, eye_age
FROM skin_analyses
WHERE user_id = $1
ORDER BY created_at DESC, id DESC`

	var out []Summary
	if err := r.DB.SelectContext(ctx, &out, query, userID); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Summary{}
	}
	for i := range out {
		out[i].CreatedAt = out[i].CreatedAt.UTC()
	}
	return out, nil
}

// GetOwned returns the record only when it belongs to userID.
func (r *PGRepo) GetOwned(ctx context.Context, id, userID string) (AnalysisRecord, error) {
	query := `
SELECT ` + recordColumns + `
FROM skin_analyses
WHERE id = $1 AND user_id = $2
LIMIT 1`

	var row recordRow
	if err := r.DB.GetContext(ctx, &row, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AnalysisRecord{}, ErrNotFound
		}
		return AnalysisRecord{}, err
	}
	return row.toRecord()
}

// DeleteOwned deletes the record in a single conditional statement, so a
// non-owner can never remove it.
func (r *PGRepo) DeleteOwned(ctx context.Context, id, userID string) (bool, error) {
	const query = `DELETE FROM skin_analyses WHERE id = $1 AND user_id = $2`
	res, err := r.DB.ExecContext(ctx, query, id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

var _ Repo = (*PGRepo)(nil)

func (row recordRow) toRecord() (AnalysisRecord, error) {
	rec := AnalysisRecord{
		ID:        row.ID,
		UserID:    row.UserID,
		CreatedAt: row.CreatedAt.UTC(),
		Profile: Profile{
			Name:             row.ProfileName,
			Age:              row.ProfileAge,
			Gender:           row.ProfileGender,
			SkinType:         row.ProfileSkinType,
			Sensitivity:      row.ProfileSensitivity,
			Concerns:         []string(row.ProfileConcerns),
			HealthConditions: []string(row.ProfileHealthConditions),
		},
		Analysis: Metrics{
			OverallScore: row.OverallScore,
			EyeAge:       row.EyeAge,
			SkinAge:      row.SkinAge,
			Hydration:    row.Hydration,
			Redness:      row.Redness,
			Pigmentation: row.Pigmentation,
			Lines:        row.Lines,
			Acne:         row.Acne,
			Translucency: row.Translucency,
			Uniformness:  row.Uniformness,
			Pores:        row.Pores,
			Summary:      row.Summary,
		},
	}
	if rec.Profile.Concerns == nil {
		rec.Profile.Concerns = []string{}
	}
	if rec.Profile.HealthConditions == nil {
		rec.Profile.HealthConditions = []string{}
	}
	if len(row.ProfileHealthData) > 0 && string(row.ProfileHealthData) != "null" {
		var hd HealthData
		if err := json.Unmarshal(row.ProfileHealthData, &hd); err != nil {
			return AnalysisRecord{}, fmt.Errorf("decode profile_health_data: %w", err)
		}
		rec.Profile.HealthData = &hd
	}
	if err := json.Unmarshal(row.Recommendations, &rec.Analysis.Recommendations); err != nil {
		return AnalysisRecord{}, fmt.Errorf("decode recommendations: %w", err)
	}
	return rec, nil
}

func marshalHealthData(hd *HealthData) (any, error) {
	if hd == nil {
		return nil, nil
	}
	payload, err := json.Marshal(hd)
	if err != nil {
		return nil, fmt.Errorf("encode health data: %w", err)
	}
	return payload, nil
}

func textArray(values []string) pq.StringArray {
	if values == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(values)
}
