package services

import (
	"context"

	"coachroadmap/backend/models"
)

// Store is the persistence surface the pipeline runs against. Lookups return
// (nil, nil) when no row matches; errors are reserved for real store
// failures. The pgx implementation lives in the database package.
type Store interface {
	ProfileByID(ctx context.Context, id string) (*models.Profile, error)
	ProfileByEmail(ctx context.Context, email string) (*models.Profile, error)
	ProfileByEmailRole(ctx context.Context, email, role string) (*models.Profile, error)
	ProfileByIDRole(ctx context.Context, id, role string) (*models.Profile, error)
	// UpsertProfile inserts or updates keyed by id. The auth layer's own
	// trigger may have created a shell row already, hence upsert.
	UpsertProfile(ctx context.Context, p *models.Profile) error
	// UpdateProfileFields applies a sparse update; callers include only
	// non-empty fields.
	UpdateProfileFields(ctx context.Context, id string, fields map[string]any) error
	SetProfileBlocked(ctx context.Context, id string, blocked bool) error

	// ActiveEngagementForPair matches coach_id IS NULL when coachID is nil.
	ActiveEngagementForPair(ctx context.Context, coachID *string, clientID string) (*models.Engagement, error)
	// ActiveEngagement finds the single active engagement for a client
	// regardless of coach (update path).
	ActiveEngagement(ctx context.Context, clientID string) (*models.Engagement, error)
	InsertEngagement(ctx context.Context, e *models.Engagement) error
	// MaxCycleNumber returns 0 when the pair has no engagements yet.
	MaxCycleNumber(ctx context.Context, coachID, clientID string) (int, error)

	UpsertPillar(ctx context.Context, p *models.StrategicPillar) error
	UpsertWeekNote(ctx context.Context, n *models.WeekNote) error
	// SimilarTaskExists is the approximate duplicate guard: case-insensitive
	// substring match in either direction against the client's tasks for
	// that week.
	SimilarTaskExists(ctx context.Context, clientID string, week int, title string) (bool, error)
	InsertTask(ctx context.Context, t *models.Task) error
	// UpsertFinancialMetric attempts the composite-conflict upsert and falls
	// back to select-then-update-or-insert when the store rejects it.
	UpsertFinancialMetric(ctx context.Context, m *models.FinancialMetric) error

	PillarsByEngagement(ctx context.Context, engagementID string) ([]models.StrategicPillar, error)
	WeekNotesByEngagement(ctx context.Context, engagementID string) ([]models.WeekNote, error)
	MetricsByEngagement(ctx context.Context, engagementID string) ([]models.FinancialMetric, error)
}
