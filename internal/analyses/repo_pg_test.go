package analyses

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewPGRepo(db, "sqlmock"), mock
}

func TestPGRepoInsertReturnsCreatedAt(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2026, time.February, 3, 4, 5, 6, 0, time.UTC)
	record := AnalysisRecord{
		ID:       "11111111-1111-1111-1111-111111111111",
		UserID:   "user-1",
		Profile:  sampleProfile(),
		Analysis: sampleMetrics(72),
	}
	m := record.Analysis

	mock.ExpectQuery("INSERT INTO skin_analyses").
		WithArgs(
			record.ID,
			record.UserID,
			"Meera", "32", "female", "Combination", "Moderate",
			sqlmock.AnyArg(), // profile_concerns
			sqlmock.AnyArg(), // profile_health_conditions
			sqlmock.AnyArg(), // profile_health_data
			m.OverallScore, m.EyeAge, m.SkinAge, m.Hydration, m.Redness, m.Pigmentation,
			m.Lines, m.Acne, m.Translucency, m.Uniformness, m.Pores,
			m.Summary,
			sqlmock.AnyArg(), // recommendations
		).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	stored, err := repo.Insert(context.Background(), record)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if !stored.CreatedAt.Equal(created) {
		t.Fatalf("expected createdAt %v, got %v", created, stored.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoTrimUserReportsEvicted(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("DELETE FROM skin_analyses\\s+WHERE user_id = \\$1\\s+AND id IN").
		WithArgs("user-1", MaxAnalysesPerUser).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.TrimUser(context.Background(), "user-1", MaxAnalysesPerUser)
	if err != nil {
		t.Fatalf("TrimUser: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 evicted, got %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListByUserOrdersNewestFirst(t *testing.T) {
	repo, mock := newMockRepo(t)
	newer := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)

	mock.ExpectQuery("SELECT id, created_at, overall_score, skin_age, eye_age\\s+FROM skin_analyses\\s+WHERE user_id = \\$1\\s+ORDER BY created_at DESC, id DESC").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "overall_score", "skin_age", "eye_age"}).
			AddRow("b", newer, 80, 29, 31).
			AddRow("a", older, 60, 33, 35))

	list, err := repo.ListByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 2 || list[0].ID != "b" || list[0].OverallScore != 80 || list[1].EyeAge != 35 {
		t.Fatalf("unexpected summaries: %+v", list)
	}
}

func TestPGRepoListByUserEmpty(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT id, created_at").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "overall_score", "skin_age", "eye_age"}))

	list, err := repo.ListByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", list)
	}
}

func TestPGRepoGetOwnedDecodesRow(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2026, time.April, 1, 9, 0, 0, 0, time.UTC)
	columns := []string{
		"id", "user_id", "created_at",
		"profile_name", "profile_age", "profile_gender", "profile_skin_type", "profile_sensitivity",
		"profile_concerns", "profile_health_conditions", "profile_health_data",
		"overall_score", "eye_age", "skin_age", "hydration", "redness", "pigmentation", "lines", "acne",
		"translucency", "uniformness", "pores", "summary", "recommendations",
	}
	mock.ExpectQuery("FROM skin_analyses\\s+WHERE id = \\$1 AND user_id = \\$2").
		WithArgs("rec-1", "user-1").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			"rec-1", "user-1", created,
			"Meera", "32", "female", "Combination", "Moderate",
			[]byte(`{Acne,"Dark circles"}`), []byte(`{}`), []byte(`{"steps":4200,"sleepHours":6.5,"heartRate":78,"lastSync":"x"}`),
			72, 34, 30, 55, 20, 25, 15, 30, 60, 65, 40, "Balanced skin",
			[]byte(`{"yoga":["Bhujangasana"],"diet":{"juices":["Amla"]},"exercises":{"face":["Jaw release"]}}`),
		))

	rec, err := repo.GetOwned(context.Background(), "rec-1", "user-1")
	if err != nil {
		t.Fatalf("GetOwned: %v", err)
	}
	if len(rec.Profile.Concerns) != 2 || rec.Profile.Concerns[1] != "Dark circles" {
		t.Fatalf("unexpected concerns: %#v", rec.Profile.Concerns)
	}
	if rec.Profile.HealthConditions == nil || len(rec.Profile.HealthConditions) != 0 {
		t.Fatalf("expected empty health conditions, got %#v", rec.Profile.HealthConditions)
	}
	if rec.Profile.HealthData == nil || rec.Profile.HealthData.SleepHours != 6.5 {
		t.Fatalf("expected health data, got %#v", rec.Profile.HealthData)
	}
	if rec.Analysis.OverallScore != 72 || rec.Analysis.Summary != "Balanced skin" {
		t.Fatalf("unexpected analysis: %+v", rec.Analysis)
	}
	if rec.Analysis.Recommendations.Diet.Juices[0] != "Amla" || rec.Analysis.Recommendations.Exercises.Face[0] != "Jaw release" {
		t.Fatalf("unexpected recommendations: %+v", rec.Analysis.Recommendations)
	}
	if !rec.CreatedAt.Equal(created) {
		t.Fatalf("unexpected createdAt %v", rec.CreatedAt)
	}
}

func TestPGRepoGetOwnedMapsNoRows(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("FROM skin_analyses").
		WithArgs("rec-1", "user-2").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetOwned(context.Background(), "rec-1", "user-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoDeleteOwnedIsConditional(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("DELETE FROM skin_analyses WHERE id = \\$1 AND user_id = \\$2").
		WithArgs("rec-1", "user-2").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM skin_analyses WHERE id = \\$1 AND user_id = \\$2").
		WithArgs("rec-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	deleted, err := repo.DeleteOwned(context.Background(), "rec-1", "user-2")
	if err != nil || deleted {
		t.Fatalf("expected non-owner delete to affect nothing, got %v %v", deleted, err)
	}
	deleted, err = repo.DeleteOwned(context.Background(), "rec-1", "user-1")
	if err != nil || !deleted {
		t.Fatalf("expected owner delete, got %v %v", deleted, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
