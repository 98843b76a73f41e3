package analyses

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryRepoInsertStampsCreatedAt(t *testing.T) {
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	repo := NewMemoryRepoWithClock(steppingClock(start))

	stored, err := repo.Insert(context.Background(), AnalysisRecord{ID: "a", UserID: "u1", Profile: sampleProfile(), Analysis: sampleMetrics(70)})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if !stored.CreatedAt.Equal(start.Add(time.Second)) {
		t.Fatalf("expected store-assigned createdAt, got %v", stored.CreatedAt)
	}

	if _, err := repo.Insert(context.Background(), AnalysisRecord{ID: "a", UserID: "u1"}); !errors.Is(err, errDuplicateID) {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
}

func TestMemoryRepoTrimKeepsNewest(t *testing.T) {
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	repo := NewMemoryRepoWithClock(steppingClock(start))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := repo.Insert(ctx, AnalysisRecord{ID: string(rune('a' + i)), UserID: "u1", Analysis: sampleMetrics(i)}); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	n, err := repo.TrimUser(ctx, "u1", 3)
	if err != nil {
		t.Fatalf("TrimUser: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 evicted, got %d", n)
	}
	list, _ := repo.ListByUser(ctx, "u1")
	if len(list) != 3 || list[0].ID != "e" || list[2].ID != "c" {
		t.Fatalf("expected e,d,c remaining, got %+v", list)
	}

	if n, _ := repo.TrimUser(ctx, "u1", 3); n != 0 {
		t.Fatalf("expected no-op trim, got %d", n)
	}
}

func TestMemoryRepoTieBreaksByInsertionOrder(t *testing.T) {
	fixed := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	repo := NewMemoryRepoWithClock(func() time.Time { return fixed })
	ctx := context.Background()

	for _, id := range []string{"first", "second", "third"} {
		if _, err := repo.Insert(ctx, AnalysisRecord{ID: id, UserID: "u1"}); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	list, _ := repo.ListByUser(ctx, "u1")
	if list[0].ID != "third" || list[2].ID != "first" {
		t.Fatalf("expected newest insertion first on equal timestamps, got %+v", list)
	}

	if _, err := repo.TrimUser(ctx, "u1", 2); err != nil {
		t.Fatalf("TrimUser: %v", err)
	}
	if _, err := repo.GetOwned(ctx, "first", "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected earliest insertion evicted, got %v", err)
	}
}

func TestMemoryRepoReturnsCopies(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	profile := sampleProfile()

	if _, err := repo.Insert(ctx, AnalysisRecord{ID: "a", UserID: "u1", Profile: profile, Analysis: sampleMetrics(50)}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	profile.Concerns[0] = "mutated"

	got, err := repo.GetOwned(ctx, "a", "u1")
	if err != nil {
		t.Fatalf("GetOwned: %v", err)
	}
	if got.Profile.Concerns[0] != "Acne" {
		t.Fatalf("stored snapshot changed through caller slice")
	}
	got.Analysis.Recommendations.Yoga[0] = "mutated"
	again, _ := repo.GetOwned(ctx, "a", "u1")
	if again.Analysis.Recommendations.Yoga[0] != "Bhujangasana" {
		t.Fatalf("stored snapshot changed through returned slice")
	}
}

func TestMemoryRepoOwnershipScoping(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	if _, err := repo.Insert(ctx, AnalysisRecord{ID: "a", UserID: "u1"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if _, err := repo.GetOwned(ctx, "a", "u2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non-owner, got %v", err)
	}
	deleted, err := repo.DeleteOwned(ctx, "a", "u2")
	if err != nil || deleted {
		t.Fatalf("expected non-owner delete to be a no-op, got %v %v", deleted, err)
	}
	if _, err := repo.GetOwned(ctx, "a", "u1"); err != nil {
		t.Fatalf("expected owner to still see record: %v", err)
	}
	deleted, err = repo.DeleteOwned(ctx, "a", "u1")
	if err != nil || !deleted {
		t.Fatalf("expected owner delete to succeed, got %v %v", deleted, err)
	}
	if list, _ := repo.ListByUser(ctx, "u1"); len(list) != 0 {
		t.Fatalf("expected empty list after delete, got %d", len(list))
	}
}

func TestMemoryRepoHonorsCancelledContext(t *testing.T) {
	repo := NewMemoryRepo()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := repo.ListByUser(ctx, "u1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
