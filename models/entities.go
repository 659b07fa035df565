package models

import "time"

const (
	RoleCoach = "coach"
	RoleUser  = "user"

	EngagementActive = "active"

	TaskStatusPending  = "pending"
	TaskPriorityMedium = "medium"
)

// Profile is a client or coach account row. The id mirrors the auth layer's
// user id for rows provisioned through ingestion.
type Profile struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone,omitempty"`
	Company   string    `json:"company,omitempty"`
	Location  string    `json:"location,omitempty"`
	Role      string    `json:"role"`
	Blocked   bool      `json:"blocked"`
	CreatedAt time.Time `json:"created_at"`
}

// Engagement is one coaching cycle (coach_clients row). CoachID is nullable:
// a roadmap ingested without a coach still gets an engagement. Prior cycles
// are never deactivated; cycle_number distinguishes them.
type Engagement struct {
	ID               string    `json:"id"`
	CoachID          *string   `json:"coach_id"`
	ClientID         string    `json:"client_id"`
	Status           string    `json:"status"`
	ProgramStartDate string    `json:"program_start_date"` // YYYY-MM-DD
	TotalWeeks       int       `json:"total_weeks"`
	CurrentWeek      int       `json:"current_week"`
	CycleNumber      int       `json:"cycle_number"`
	CreatedAt        time.Time `json:"created_at"`
}

// StrategicPillar is one of exactly three rows per engagement, keyed by
// (coach_client_id, pillar_type).
type StrategicPillar struct {
	EngagementID string   `json:"coach_client_id"`
	PillarType   string   `json:"pillar_type"` // operations | acquisition | vision
	Title        string   `json:"title"`
	Problem      string   `json:"problem"`
	Actions      []string `json:"actions"`
	ExpertTip    string   `json:"expert_tip"`
}

// WeekNote is the short label attached to one of the 16 weeks, keyed by
// (coach_client_id, week_number).
type WeekNote struct {
	EngagementID string `json:"coach_client_id"`
	WeekNumber   int    `json:"week_number"`
	Comment      string `json:"comment"`
}

// Task is one actionable bullet extracted from a week's action text. Tasks
// accumulate across ingestions; the fuzzy pre-insert check is the only
// duplicate guard.
type Task struct {
	ID         string `json:"id"`
	CoachID    string `json:"coach_id"`
	ClientID   string `json:"client_id"`
	WeekNumber int    `json:"week_number"`
	Title      string `json:"title"`
	Status     string `json:"status"`
	Priority   string `json:"priority"`
}

// FinancialMetric is the single-snapshot metrics row, keyed by
// (coach_client_id, week_number). Nil fields are omitted from writes.
type FinancialMetric struct {
	EngagementID       string   `json:"coach_client_id"`
	WeekNumber         int      `json:"week_number"`
	Revenue            *float64 `json:"revenue,omitempty"`
	CashInBank         *float64 `json:"cash_in_bank,omitempty"`
	ClientsCount       *float64 `json:"clients_count,omitempty"`
	CollaboratorsCount *float64 `json:"collaborators_count,omitempty"`
	ConversionRate     *float64 `json:"conversion_rate,omitempty"`
	MetricDate         string   `json:"metric_date"` // YYYY-MM-DD
}
