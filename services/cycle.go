package services

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"time"

	"coachroadmap/backend/models"
)

// Cycles manages engagement (coach_clients) rows: one row per coaching cycle,
// never deactivated, distinguished by cycle_number.
type Cycles struct {
	store Store
}

func NewCycles(store Store) *Cycles {
	return &Cycles{store: store}
}

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func programStartDate(explicit string) string {
	if dateRe.MatchString(explicit) {
		return explicit
	}
	return time.Now().Format("2006-01-02")
}

// EnsureActive reuses the active engagement for the (coach, client) pair or
// inserts cycle 1. A nil coach matches engagements without a coach.
func (c *Cycles) EnsureActive(ctx context.Context, coachID *string, clientID string, meta models.RoadmapMeta) (*models.Engagement, bool, error) {
	existing, err := c.store.ActiveEngagementForPair(ctx, coachID, clientID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		log.Printf("cycle: reusing active engagement %s (cycle %d)", existing.ID, existing.CycleNumber)
		return existing, false, nil
	}
	eng := &models.Engagement{
		CoachID:          coachID,
		ClientID:         clientID,
		Status:           models.EngagementActive,
		ProgramStartDate: programStartDate(meta.StartDate),
		TotalWeeks:       models.TotalWeeks,
		CurrentWeek:      1,
		CycleNumber:      1,
	}
	if err := c.store.InsertEngagement(ctx, eng); err != nil {
		return nil, false, fmt.Errorf("engagement create failed: %w", err)
	}
	return eng, true, nil
}

// LocateActive finds the single active engagement for a client (update path).
func (c *Cycles) LocateActive(ctx context.Context, clientID string) (*models.Engagement, error) {
	eng, err := c.store.ActiveEngagement(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if eng == nil {
		return nil, notFoundf("No active engagement found for this client; use add-roadmap instead")
	}
	return eng, nil
}

// OpenNext always inserts a new engagement row for the pair. Cycle number:
// explicit when supplied, else max existing + 1, defaulting to 2 when cycle 1
// was never recorded through this service.
func (c *Cycles) OpenNext(ctx context.Context, coachID, clientID string, explicit *int, startDate string) (*models.Engagement, error) {
	cycle := 0
	if explicit != nil && *explicit > 0 {
		cycle = *explicit
	} else {
		max, err := c.store.MaxCycleNumber(ctx, coachID, clientID)
		if err != nil {
			return nil, err
		}
		if max == 0 {
			cycle = 2
		} else {
			cycle = max + 1
		}
	}
	eng := &models.Engagement{
		CoachID:          &coachID,
		ClientID:         clientID,
		Status:           models.EngagementActive,
		ProgramStartDate: programStartDate(startDate),
		TotalWeeks:       models.TotalWeeks,
		CurrentWeek:      1,
		CycleNumber:      cycle,
	}
	if err := c.store.InsertEngagement(ctx, eng); err != nil {
		return nil, fmt.Errorf("engagement create failed: %w", err)
	}
	log.Printf("cycle: opened cycle %d for coach=%s client=%s", cycle, coachID, clientID)
	return eng, nil
}
