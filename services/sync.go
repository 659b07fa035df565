package services

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"coachroadmap/backend/config"
	"coachroadmap/backend/models"
)

const (
	taskTitleMax = 80
	noSuggestion = "no suggestion"
)

// SyncStats counts the writes that actually landed; per-entity failures are
// logged, not propagated, so the engagement itself still reports success.
type SyncStats struct {
	Pillars   int `json:"pillars"`
	WeekNotes int `json:"week_notes"`
	Tasks     int `json:"tasks"`
	Metrics   int `json:"metrics"`
}

// Syncer overwrites an engagement's strategic content from normalized roadmap
// content: 3 pillars, 16 week notes, staged tasks, week-1 financial metrics.
type Syncer struct {
	store Store
	cfg   config.Config
}

func NewSyncer(store Store, cfg config.Config) *Syncer {
	return &Syncer{store: store, cfg: cfg}
}

// Sync runs the full write sequence. When concurrent is true the independent
// batches (pillars, week notes, tasks+metrics) run in parallel; the update
// and new-cycle paths pass false and stay sequential. Task duplicate checks
// are per-row lookups and dominate latency for large plans.
func (s *Syncer) Sync(ctx context.Context, eng *models.Engagement, content *models.RoadmapContent, concurrent bool) SyncStats {
	var stats SyncStats
	titles := WeekTitles(ctx, s.cfg, content.WeekActions())

	if concurrent {
		var mu sync.Mutex
		var wg sync.WaitGroup
		run := func(f func() SyncStats) {
			wg.Add(1)
			go func() {
				defer wg.Done()
				part := f()
				mu.Lock()
				stats.Pillars += part.Pillars
				stats.WeekNotes += part.WeekNotes
				stats.Tasks += part.Tasks
				stats.Metrics += part.Metrics
				mu.Unlock()
			}()
		}
		run(func() SyncStats { return s.writePillars(ctx, eng, content) })
		run(func() SyncStats { return s.writeWeekNotes(ctx, eng, content, titles) })
		run(func() SyncStats {
			st := s.writeTasks(ctx, eng, content)
			st.Metrics = s.writeMetrics(ctx, eng, content)
			return st
		})
		wg.Wait()
		return stats
	}

	p := s.writePillars(ctx, eng, content)
	n := s.writeWeekNotes(ctx, eng, content, titles)
	t := s.writeTasks(ctx, eng, content)
	stats.Pillars = p.Pillars
	stats.WeekNotes = n.WeekNotes
	stats.Tasks = t.Tasks
	stats.Metrics = s.writeMetrics(ctx, eng, content)
	return stats
}

func buildPillars(engagementID string, vision models.RoadmapVision) []models.StrategicPillar {
	build := func(pillarType, title string, sec models.PillarSection) models.StrategicPillar {
		tip := strings.TrimSpace(sec.ExpertTip)
		if tip == "" {
			tip = noSuggestion
		}
		return models.StrategicPillar{
			EngagementID: engagementID,
			PillarType:   pillarType,
			Title:        title,
			Problem:      strings.TrimSpace(sec.CurrentSituation),
			Actions:      SplitActions(sec.Actions),
			ExpertTip:    tip,
		}
	}
	return []models.StrategicPillar{
		build("operations", "Operations", vision.Operations),
		build("acquisition", "Acquisition", vision.Acquisition),
		build("vision", "Vision", vision.VisionPilotage),
	}
}

func (s *Syncer) writePillars(ctx context.Context, eng *models.Engagement, content *models.RoadmapContent) SyncStats {
	var st SyncStats
	for _, p := range buildPillars(eng.ID, content.Vision) {
		pillar := p
		if err := s.store.UpsertPillar(ctx, &pillar); err != nil {
			log.Printf("sync: pillar %s upsert failed for %s: %v", pillar.PillarType, eng.ID, err)
			continue
		}
		st.Pillars++
	}
	return st
}

// goalsBlock formats the strategic goals as the prefix merged into the week-1
// note; goals are content enrichment, not a separate entity.
func goalsBlock(goals models.StrategicGoals) string {
	var parts []string
	if g := strings.TrimSpace(goals.FourMonth); g != "" {
		parts = append(parts, "4-month goal: "+g)
	}
	if g := strings.TrimSpace(goals.TwelveMonth); g != "" {
		parts = append(parts, "12-month goal: "+g)
	}
	return strings.Join(parts, "\n")
}

func (s *Syncer) writeWeekNotes(ctx context.Context, eng *models.Engagement, content *models.RoadmapContent, titles [models.TotalWeeks]string) SyncStats {
	var st SyncStats
	goals := goalsBlock(content.StrategicGoals)
	for i := 0; i < models.TotalWeeks; i++ {
		comment := titles[i]
		if i == 0 && goals != "" {
			comment = strings.TrimSpace(goals + "\n" + comment)
		}
		note := models.WeekNote{EngagementID: eng.ID, WeekNumber: i + 1, Comment: comment}
		if err := s.store.UpsertWeekNote(ctx, &note); err != nil {
			log.Printf("sync: week %d note upsert failed for %s: %v", i+1, eng.ID, err)
			continue
		}
		st.WeekNotes++
	}
	return st
}

// writeTasks stages one task per bullet line, coach-attached engagements
// only. The duplicate guard is approximate: a case-insensitive substring
// match in either direction against existing tasks for the same client+week.
func (s *Syncer) writeTasks(ctx context.Context, eng *models.Engagement, content *models.RoadmapContent) SyncStats {
	var st SyncStats
	if eng.CoachID == nil {
		return st
	}
	weeks := content.WeekActions()
	for i, block := range weeks {
		week := i + 1
		for _, bullet := range BulletLines(block) {
			title := ShortTitle(bullet, taskTitleMax)
			exists, err := s.store.SimilarTaskExists(ctx, eng.ClientID, week, title)
			if err != nil {
				log.Printf("sync: task duplicate check failed (week %d): %v", week, err)
				continue
			}
			if exists {
				continue
			}
			task := models.Task{
				ID:         uuid.NewString(),
				CoachID:    *eng.CoachID,
				ClientID:   eng.ClientID,
				WeekNumber: week,
				Title:      title,
				Status:     models.TaskStatusPending,
				Priority:   models.TaskPriorityMedium,
			}
			if err := s.store.InsertTask(ctx, &task); err != nil {
				log.Printf("sync: task insert failed (week %d): %v", week, err)
				continue
			}
			st.Tasks++
		}
	}
	return st
}

// writeMetrics parses the header financial snapshot and upserts the week-1
// metric row when at least one of revenue, cash or clients count parsed.
// The metrics model is single-snapshot: always week 1.
func (s *Syncer) writeMetrics(ctx context.Context, eng *models.Engagement, content *models.RoadmapContent) int {
	h := content.Header
	m := models.FinancialMetric{
		EngagementID:       eng.ID,
		WeekNumber:         1,
		Revenue:            ParseCurrency(h.Revenue),
		CashInBank:         ParseCurrency(h.CashInBank),
		ClientsCount:       ParseCurrency(h.ClientsCount),
		CollaboratorsCount: ParseCurrency(h.CollaboratorsCount),
		ConversionRate:     ParsePercentage(h.ConversionRate),
		MetricDate:         time.Now().Format("2006-01-02"),
	}
	if m.Revenue == nil && m.CashInBank == nil && m.ClientsCount == nil {
		return 0
	}
	if err := s.store.UpsertFinancialMetric(ctx, &m); err != nil {
		log.Printf("sync: financial metric upsert failed for %s: %v", eng.ID, err)
		return 0
	}
	return 1
}

// SimilarTitles reports whether two task titles collide under the approximate
// duplicate rule. Shared between the pgx store's SQL shape and in-memory use.
func SimilarTitles(a, b string) bool {
	la, lb := strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))
	if la == "" || lb == "" {
		return la == lb
	}
	return strings.Contains(la, lb) || strings.Contains(lb, la)
}
