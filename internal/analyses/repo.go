package analyses

import "context"

// Repo defines persistence operations for analysis records. Every read and
// delete is scoped to the owning user.
type Repo interface {
	// Insert stores the record and returns it with the store-assigned CreatedAt.
	Insert(ctx context.Context, record AnalysisRecord) (AnalysisRecord, error)
	// TrimUser deletes every record of userID beyond the keep newest and reports how many were removed.
	TrimUser(ctx context.Context, userID string, keep int) (int, error)
	ListByUser(ctx context.Context, userID string) ([]Summary, error)
	GetOwned(ctx context.Context, id, userID string) (AnalysisRecord, error)
	// DeleteOwned removes the record only if userID owns it.
	DeleteOwned(ctx context.Context, id, userID string) (bool, error)
}
