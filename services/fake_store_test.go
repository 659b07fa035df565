package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"coachroadmap/backend/models"
)

// fakeStore is the in-memory Store used by the pipeline tests.
type fakeStore struct {
	mu          sync.Mutex
	profiles    map[string]*models.Profile
	engagements []*models.Engagement
	pillars     map[string]*models.StrategicPillar // engID|type
	notes       map[string]*models.WeekNote        // engID|week
	tasks       []*models.Task
	metrics     map[string]*models.FinancialMetric // engID|week
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles: map[string]*models.Profile{},
		pillars:  map[string]*models.StrategicPillar{},
		notes:    map[string]*models.WeekNote{},
		metrics:  map[string]*models.FinancialMetric{},
	}
}

func (f *fakeStore) addProfile(email, role string) *models.Profile {
	p := &models.Profile{ID: uuid.NewString(), Email: email, Role: role}
	p.UserID = p.ID
	f.profiles[p.ID] = p
	return p
}

func (f *fakeStore) ProfileByID(_ context.Context, id string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profiles[id], nil
}

func (f *fakeStore) ProfileByEmail(_ context.Context, email string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if strings.EqualFold(p.Email, email) {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ProfileByEmailRole(ctx context.Context, email, role string) (*models.Profile, error) {
	p, _ := f.ProfileByEmail(ctx, email)
	if p == nil || p.Role != role {
		return nil, nil
	}
	return p, nil
}

func (f *fakeStore) ProfileByIDRole(ctx context.Context, id, role string) (*models.Profile, error) {
	p, _ := f.ProfileByID(ctx, id)
	if p == nil || p.Role != role {
		return nil, nil
	}
	return p, nil
}

func (f *fakeStore) UpsertProfile(_ context.Context, p *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.profiles[p.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateProfileFields(_ context.Context, id string, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.profiles[id]
	if p == nil {
		return fmt.Errorf("no profile %s", id)
	}
	if v, ok := fields["full_name"].(string); ok {
		p.FullName = v
	}
	if v, ok := fields["phone"].(string); ok {
		p.Phone = v
	}
	if v, ok := fields["company"].(string); ok {
		p.Company = v
	}
	if v, ok := fields["location"].(string); ok {
		p.Location = v
	}
	return nil
}

func (f *fakeStore) SetProfileBlocked(_ context.Context, id string, blocked bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.profiles[id]
	if p == nil {
		return fmt.Errorf("no profile %s", id)
	}
	p.Blocked = blocked
	return nil
}

func (f *fakeStore) ActiveEngagementForPair(_ context.Context, coachID *string, clientID string) (*models.Engagement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.engagements {
		if e.ClientID != clientID || e.Status != models.EngagementActive {
			continue
		}
		if coachID == nil && e.CoachID == nil {
			return e, nil
		}
		if coachID != nil && e.CoachID != nil && *coachID == *e.CoachID {
			return e, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ActiveEngagement(_ context.Context, clientID string) (*models.Engagement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.engagements {
		if e.ClientID == clientID && e.Status == models.EngagementActive {
			return e, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) InsertEngagement(_ context.Context, e *models.Engagement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = uuid.NewString()
	f.engagements = append(f.engagements, e)
	return nil
}

func (f *fakeStore) MaxCycleNumber(_ context.Context, coachID, clientID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	max := 0
	for _, e := range f.engagements {
		if e.ClientID == clientID && e.CoachID != nil && *e.CoachID == coachID && e.CycleNumber > max {
			max = e.CycleNumber
		}
	}
	return max, nil
}

func (f *fakeStore) UpsertPillar(_ context.Context, p *models.StrategicPillar) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.pillars[p.EngagementID+"|"+p.PillarType] = &cp
	return nil
}

func (f *fakeStore) UpsertWeekNote(_ context.Context, n *models.WeekNote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *n
	f.notes[fmt.Sprintf("%s|%d", n.EngagementID, n.WeekNumber)] = &cp
	return nil
}

func (f *fakeStore) SimilarTaskExists(_ context.Context, clientID string, week int, title string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tasks {
		if t.ClientID == clientID && t.WeekNumber == week && SimilarTitles(t.Title, title) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) InsertTask(_ context.Context, t *models.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *t
	f.tasks = append(f.tasks, &cp)
	return nil
}

func (f *fakeStore) UpsertFinancialMetric(_ context.Context, m *models.FinancialMetric) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *m
	f.metrics[fmt.Sprintf("%s|%d", m.EngagementID, m.WeekNumber)] = &cp
	return nil
}

func (f *fakeStore) PillarsByEngagement(_ context.Context, engagementID string) ([]models.StrategicPillar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.StrategicPillar{}
	for _, p := range f.pillars {
		if p.EngagementID == engagementID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeStore) WeekNotesByEngagement(_ context.Context, engagementID string) ([]models.WeekNote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.WeekNote{}
	for _, n := range f.notes {
		if n.EngagementID == engagementID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (f *fakeStore) MetricsByEngagement(_ context.Context, engagementID string) ([]models.FinancialMetric, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.FinancialMetric{}
	for _, m := range f.metrics {
		if m.EngagementID == engagementID {
			out = append(out, *m)
		}
	}
	return out, nil
}
