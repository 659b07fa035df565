package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"coachroadmap/backend/models"
)

// Store implements the pipeline's persistence interface over pgx.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const profileCols = `id::text, COALESCE(user_id::text,''), email, COALESCE(full_name,''), COALESCE(phone,''), COALESCE(company,''), COALESCE(location,''), role, blocked, created_at`

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.ID, &p.UserID, &p.Email, &p.FullName, &p.Phone, &p.Company, &p.Location, &p.Role, &p.Blocked, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	return scanProfile(s.pool.QueryRow(ctx, `SELECT `+profileCols+` FROM profiles WHERE id::text=$1`, id))
}

func (s *Store) ProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	return scanProfile(s.pool.QueryRow(ctx, `SELECT `+profileCols+` FROM profiles WHERE LOWER(email)=LOWER($1)`, email))
}

func (s *Store) ProfileByEmailRole(ctx context.Context, email, role string) (*models.Profile, error) {
	return scanProfile(s.pool.QueryRow(ctx, `SELECT `+profileCols+` FROM profiles WHERE LOWER(email)=LOWER($1) AND role=$2`, email, role))
}

func (s *Store) ProfileByIDRole(ctx context.Context, id, role string) (*models.Profile, error) {
	return scanProfile(s.pool.QueryRow(ctx, `SELECT `+profileCols+` FROM profiles WHERE id::text=$1 AND role=$2`, id, role))
}

func (s *Store) UpsertProfile(ctx context.Context, p *models.Profile) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO profiles(id, user_id, email, full_name, phone, company, location, role)
VALUES($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET email=EXCLUDED.email, full_name=EXCLUDED.full_name, phone=EXCLUDED.phone,
    company=EXCLUDED.company, location=EXCLUDED.location, role=EXCLUDED.role`,
		p.ID, p.UserID, p.Email, p.FullName, p.Phone, p.Company, p.Location, p.Role)
	return err
}

// UpdateProfileFields applies a sparse update. Keys come from the pipeline's
// fixed field list, never from request input.
func (s *Store) UpdateProfileFields(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	set := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	for _, col := range []string{"full_name", "phone", "company", "location"} {
		v, ok := fields[col]
		if !ok {
			continue
		}
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s=$%d", col, len(args)))
	}
	if len(set) == 0 {
		return nil
	}
	args = append(args, id)
	_, err := s.pool.Exec(ctx, fmt.Sprintf(`UPDATE profiles SET %s WHERE id::text=$%d`, strings.Join(set, ", "), len(args)), args...)
	return err
}

func (s *Store) SetProfileBlocked(ctx context.Context, id string, blocked bool) error {
	_, err := s.pool.Exec(ctx, `UPDATE profiles SET blocked=$1 WHERE id::text=$2`, blocked, id)
	return err
}

const engagementCols = `id::text, coach_id::text, client_id::text, status, to_char(program_start_date,'YYYY-MM-DD'), total_weeks, current_week, cycle_number, created_at`

func scanEngagement(row pgx.Row) (*models.Engagement, error) {
	var e models.Engagement
	err := row.Scan(&e.ID, &e.CoachID, &e.ClientID, &e.Status, &e.ProgramStartDate, &e.TotalWeeks, &e.CurrentWeek, &e.CycleNumber, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) ActiveEngagementForPair(ctx context.Context, coachID *string, clientID string) (*models.Engagement, error) {
	if coachID == nil {
		return scanEngagement(s.pool.QueryRow(ctx, `SELECT `+engagementCols+` FROM coach_clients
WHERE client_id::text=$1 AND coach_id IS NULL AND status='active' ORDER BY created_at DESC LIMIT 1`, clientID))
	}
	return scanEngagement(s.pool.QueryRow(ctx, `SELECT `+engagementCols+` FROM coach_clients
WHERE client_id::text=$1 AND coach_id::text=$2 AND status='active' ORDER BY created_at DESC LIMIT 1`, clientID, *coachID))
}

func (s *Store) ActiveEngagement(ctx context.Context, clientID string) (*models.Engagement, error) {
	return scanEngagement(s.pool.QueryRow(ctx, `SELECT `+engagementCols+` FROM coach_clients
WHERE client_id::text=$1 AND status='active' ORDER BY created_at DESC LIMIT 1`, clientID))
}

func (s *Store) InsertEngagement(ctx context.Context, e *models.Engagement) error {
	return s.pool.QueryRow(ctx, `INSERT INTO coach_clients(coach_id, client_id, status, program_start_date, total_weeks, current_week, cycle_number)
VALUES($1,$2,$3,$4,$5,$6,$7) RETURNING id::text`,
		e.CoachID, e.ClientID, e.Status, e.ProgramStartDate, e.TotalWeeks, e.CurrentWeek, e.CycleNumber).Scan(&e.ID)
}

func (s *Store) MaxCycleNumber(ctx context.Context, coachID, clientID string) (int, error) {
	var max int
	err := s.pool.QueryRow(ctx, `SELECT COALESCE(MAX(cycle_number),0) FROM coach_clients
WHERE coach_id::text=$1 AND client_id::text=$2`, coachID, clientID).Scan(&max)
	return max, err
}

func (s *Store) UpsertPillar(ctx context.Context, p *models.StrategicPillar) error {
	actions, _ := json.Marshal(p.Actions)
	if p.Actions == nil {
		actions = []byte("[]")
	}
	_, err := s.pool.Exec(ctx, `INSERT INTO strategic_pillars(coach_client_id, pillar_type, title, problem, actions, expert_tip, updated_at)
VALUES($1,$2,$3,$4,$5::jsonb,$6,now())
ON CONFLICT (coach_client_id, pillar_type) DO UPDATE SET title=EXCLUDED.title, problem=EXCLUDED.problem,
    actions=EXCLUDED.actions, expert_tip=EXCLUDED.expert_tip, updated_at=now()`,
		p.EngagementID, p.PillarType, p.Title, p.Problem, string(actions), p.ExpertTip)
	return err
}

func (s *Store) UpsertWeekNote(ctx context.Context, n *models.WeekNote) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO week_notes(coach_client_id, week_number, comment, updated_at)
VALUES($1,$2,$3,now())
ON CONFLICT (coach_client_id, week_number) DO UPDATE SET comment=EXCLUDED.comment, updated_at=now()`,
		n.EngagementID, n.WeekNumber, n.Comment)
	return err
}

func (s *Store) SimilarTaskExists(ctx context.Context, clientID string, week int, title string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(
    SELECT 1 FROM tasks WHERE client_id::text=$1 AND week_number=$2
    AND (LOWER(title) LIKE '%'||LOWER($3)||'%' OR LOWER($3) LIKE '%'||LOWER(title)||'%'))`,
		clientID, week, title).Scan(&exists)
	return exists, err
}

func (s *Store) InsertTask(ctx context.Context, t *models.Task) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO tasks(id, coach_id, client_id, week_number, title, status, priority)
VALUES($1,$2,$3,$4,$5,$6,$7)`,
		t.ID, t.CoachID, t.ClientID, t.WeekNumber, t.Title, t.Status, t.Priority)
	return err
}

// UpsertFinancialMetric writes only the parsed (non-nil) fields. The
// composite ON CONFLICT may be rejected by the backend (missing or
// incompatible unique constraint); that rejection routes to an explicit
// select-then-update-or-insert.
func (s *Store) UpsertFinancialMetric(ctx context.Context, m *models.FinancialMetric) error {
	cols := []string{"coach_client_id", "week_number", "metric_date"}
	args := []any{m.EngagementID, m.WeekNumber, m.MetricDate}
	for _, f := range []struct {
		col string
		val *float64
	}{
		{"revenue", m.Revenue},
		{"cash_in_bank", m.CashInBank},
		{"clients_count", m.ClientsCount},
		{"collaborators_count", m.CollaboratorsCount},
		{"conversion_rate", m.ConversionRate},
	} {
		if f.val != nil {
			cols = append(cols, f.col)
			args = append(args, *f.val)
		}
	}
	ph := make([]string, len(cols))
	sets := []string{"updated_at=now()"}
	for i, c := range cols {
		ph[i] = fmt.Sprintf("$%d", i+1)
		if c != "coach_client_id" && c != "week_number" {
			sets = append(sets, fmt.Sprintf("%s=EXCLUDED.%s", c, c))
		}
	}
	q := fmt.Sprintf(`INSERT INTO financial_metrics(%s) VALUES(%s)
ON CONFLICT (coach_client_id, week_number) DO UPDATE SET %s`,
		strings.Join(cols, ", "), strings.Join(ph, ", "), strings.Join(sets, ", "))
	_, err := s.pool.Exec(ctx, q, args...)
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == "42P10" || pgErr.Code == "23505") {
		return s.manualMetricUpsert(ctx, m, cols[2:], args[2:])
	}
	return err
}

func (s *Store) manualMetricUpsert(ctx context.Context, m *models.FinancialMetric, cols []string, vals []any) error {
	var id string
	err := s.pool.QueryRow(ctx, `SELECT id::text FROM financial_metrics WHERE coach_client_id::text=$1 AND week_number=$2 LIMIT 1`,
		m.EngagementID, m.WeekNumber).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		ph := make([]string, len(cols)+2)
		for i := range ph {
			ph[i] = fmt.Sprintf("$%d", i+1)
		}
		args := append([]any{m.EngagementID, m.WeekNumber}, vals...)
		_, err := s.pool.Exec(ctx, fmt.Sprintf(`INSERT INTO financial_metrics(coach_client_id, week_number, %s) VALUES(%s)`,
			strings.Join(cols, ", "), strings.Join(ph, ", ")), args...)
		return err
	}
	if err != nil {
		return err
	}
	sets := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+1)
	for _, c := range cols {
		args = append(args, vals[len(args)])
		sets = append(sets, fmt.Sprintf("%s=$%d", c, len(args)))
	}
	args = append(args, id)
	_, err = s.pool.Exec(ctx, fmt.Sprintf(`UPDATE financial_metrics SET %s, updated_at=now() WHERE id::text=$%d`,
		strings.Join(sets, ", "), len(args)), args...)
	return err
}

func (s *Store) PillarsByEngagement(ctx context.Context, engagementID string) ([]models.StrategicPillar, error) {
	rows, err := s.pool.Query(ctx, `SELECT coach_client_id::text, pillar_type, title, COALESCE(problem,''), actions::text, COALESCE(expert_tip,'')
FROM strategic_pillars WHERE coach_client_id::text=$1 ORDER BY pillar_type`, engagementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.StrategicPillar{}
	for rows.Next() {
		var p models.StrategicPillar
		var actions string
		if err := rows.Scan(&p.EngagementID, &p.PillarType, &p.Title, &p.Problem, &actions, &p.ExpertTip); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(actions), &p.Actions)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) WeekNotesByEngagement(ctx context.Context, engagementID string) ([]models.WeekNote, error) {
	rows, err := s.pool.Query(ctx, `SELECT coach_client_id::text, week_number, COALESCE(comment,'')
FROM week_notes WHERE coach_client_id::text=$1 ORDER BY week_number`, engagementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.WeekNote{}
	for rows.Next() {
		var n models.WeekNote
		if err := rows.Scan(&n.EngagementID, &n.WeekNumber, &n.Comment); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) MetricsByEngagement(ctx context.Context, engagementID string) ([]models.FinancialMetric, error) {
	rows, err := s.pool.Query(ctx, `SELECT coach_client_id::text, week_number, revenue::float8, cash_in_bank::float8,
clients_count::float8, collaborators_count::float8, conversion_rate::float8, COALESCE(to_char(metric_date,'YYYY-MM-DD'),'')
FROM financial_metrics WHERE coach_client_id::text=$1 ORDER BY week_number`, engagementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.FinancialMetric{}
	for rows.Next() {
		var m models.FinancialMetric
		if err := rows.Scan(&m.EngagementID, &m.WeekNumber, &m.Revenue, &m.CashInBank, &m.ClientsCount, &m.CollaboratorsCount, &m.ConversionRate, &m.MetricDate); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
