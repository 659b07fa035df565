package services

import (
	"context"
	"log"

	"coachroadmap/backend/config"
	"coachroadmap/backend/models"
)

// Pipeline wires the ingestion components together. One instance lives for
// the whole process; every handle it holds is constructed once at boot.
type Pipeline struct {
	cfg      config.Config
	store    Store
	identity *Identity
	cycles   *Cycles
	syncer   *Syncer
	notifier *Notifier
}

func NewPipeline(cfg config.Config, store Store, auth *AuthAdmin, mailer Mailer) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		store:    store,
		identity: NewIdentity(store, auth),
		cycles:   NewCycles(store),
		syncer:   NewSyncer(store, cfg),
		notifier: NewNotifier(mailer, cfg),
	}
}

// IngestResult is the success payload of the three roadmap endpoints.
type IngestResult struct {
	ClientID      string    `json:"client_id"`
	EngagementID  string    `json:"engagement_id"`
	CoachID       *string   `json:"coach_id,omitempty"`
	CycleNumber   int       `json:"cycle_number"`
	ClientCreated bool      `json:"client_created"`
	CycleCreated  bool      `json:"cycle_created"`
	Stats         SyncStats `json:"stats"`
}

// Add is the create-or-reuse ingestion path. Coach and client resolution run
// concurrently; the write batches behind the engagement run concurrently too.
func (p *Pipeline) Add(ctx context.Context, body []byte) (*IngestResult, error) {
	n, err := Normalize(body)
	if err != nil {
		return nil, err
	}

	coachCh := make(chan *string, 1)
	go func() {
		coachCh <- p.identity.ResolveCoach(ctx, n.Coach)
	}()
	client, password, created, err := p.identity.ResolveOrCreateClient(ctx, n.Client, n.Content.Header)
	coachID := <-coachCh
	if err != nil {
		return nil, err
	}

	eng, engCreated, err := p.cycles.EnsureActive(ctx, coachID, client.ID, n.Meta)
	if err != nil {
		return nil, err
	}
	stats := p.syncer.Sync(ctx, eng, &n.Content, true)

	// fire and forget; a hung mail call must not hold the response
	go p.notifier.SendCredentials(context.Background(), client, password, created)

	return &IngestResult{
		ClientID:      client.ID,
		EngagementID:  eng.ID,
		CoachID:       coachID,
		CycleNumber:   eng.CycleNumber,
		ClientCreated: created,
		CycleCreated:  engCreated,
		Stats:         stats,
	}, nil
}

// Update rewrites the strategic content of a client's single active
// engagement. The client must already exist, resolved by email only.
func (p *Pipeline) Update(ctx context.Context, body []byte) (*IngestResult, error) {
	n, err := Normalize(body)
	if err != nil {
		return nil, err
	}
	client, err := p.identity.FindClientByEmail(ctx, n.Client.Email)
	if err != nil {
		return nil, err
	}
	eng, err := p.cycles.LocateActive(ctx, client.ID)
	if err != nil {
		return nil, err
	}
	stats := p.syncer.Sync(ctx, eng, &n.Content, false)
	return &IngestResult{
		ClientID:     client.ID,
		EngagementID: eng.ID,
		CoachID:      eng.CoachID,
		CycleNumber:  eng.CycleNumber,
		Stats:        stats,
	}, nil
}

// NewCycle opens a subsequent engagement for an existing coach and client.
// Neither is created here; the coach is mandatory.
func (p *Pipeline) NewCycle(ctx context.Context, body []byte) (*IngestResult, error) {
	n, err := Normalize(body)
	if err != nil {
		return nil, err
	}
	if n.Coach.Email == "" && n.Coach.CoachID == "" {
		return nil, invalidf("coach_email or coach_id is required")
	}
	coachID := p.identity.ResolveCoach(ctx, n.Coach)
	if coachID == nil {
		return nil, notFoundf("Coach not found")
	}
	client, err := p.identity.findClient(ctx, n.Client)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, notFoundf("Client not found")
	}
	eng, err := p.cycles.OpenNext(ctx, *coachID, client.ID, n.Meta.CycleNumber, n.Meta.StartDate)
	if err != nil {
		return nil, err
	}
	stats := p.syncer.Sync(ctx, eng, &n.Content, false)
	return &IngestResult{
		ClientID:     client.ID,
		EngagementID: eng.ID,
		CoachID:      coachID,
		CycleNumber:  eng.CycleNumber,
		CycleCreated: true,
		Stats:        stats,
	}, nil
}

// SetBlocked toggles the account ban on the auth layer and flags the profile.
func (p *Pipeline) SetBlocked(ctx context.Context, email string, blocked bool) (*models.Profile, error) {
	profile, err := p.store.ProfileByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, notFoundf("User not found")
	}
	duration := "none"
	if blocked {
		duration = "876000h" // effectively permanent
	}
	if err := p.identity.auth.SetBan(ctx, authID(profile), duration); err != nil {
		return nil, err
	}
	if err := p.store.SetProfileBlocked(ctx, profile.ID, blocked); err != nil {
		return nil, err
	}
	profile.Blocked = blocked
	log.Printf("block: %s blocked=%v", email, blocked)
	return profile, nil
}

// ActiveEngagementByEmail backs the export endpoint.
func (p *Pipeline) ActiveEngagementByEmail(ctx context.Context, email string) (*models.Profile, *models.Engagement, error) {
	client, err := p.identity.FindClientByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	eng, err := p.cycles.LocateActive(ctx, client.ID)
	if err != nil {
		return nil, nil, err
	}
	return client, eng, nil
}

func (p *Pipeline) Store() Store {
	return p.store
}
