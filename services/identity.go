package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"coachroadmap/backend/models"
	"coachroadmap/backend/utils"
)

// Identity resolves coach and client records against the store, provisioning
// new clients through the identity provider when needed.
type Identity struct {
	store Store
	auth  *AuthAdmin

	// bounded wait for the auth layer's async trigger to settle before the
	// profile write; shortened in tests
	settleDelay    time.Duration
	settleAttempts int
}

func NewIdentity(store Store, auth *AuthAdmin) *Identity {
	return &Identity{store: store, auth: auth, settleDelay: 500 * time.Millisecond, settleAttempts: 3}
}

// ResolveCoach finds an existing coach profile by email first, then by id,
// both requiring role=coach. No match resolves to nil: the coach is optional
// for ingestion. Lookup errors are logged and treated as no match.
func (r *Identity) ResolveCoach(ctx context.Context, coach models.CoachIdentity) *string {
	if coach.Email != "" {
		p, err := r.store.ProfileByEmailRole(ctx, coach.Email, models.RoleCoach)
		if err != nil {
			log.Printf("identity: coach lookup by email failed: %v", err)
		} else if p != nil {
			return &p.ID
		}
	}
	if coach.CoachID != "" {
		p, err := r.store.ProfileByIDRole(ctx, coach.CoachID, models.RoleCoach)
		if err != nil {
			log.Printf("identity: coach lookup by id failed: %v", err)
		} else if p != nil {
			return &p.ID
		}
	}
	return nil
}

// ResolveOrCreateClient returns the client profile plus the freshly generated
// password (for the credentials email). Existing clients get a rotated
// credential and a sparse profile update; unknown clients are provisioned
// through the identity provider first. An empty password in the result means
// rotation failed and no credentials email should go out.
func (r *Identity) ResolveOrCreateClient(ctx context.Context, client models.ClientIdentity, header models.RoadmapHeader) (*models.Profile, string, bool, error) {
	existing, err := r.findClient(ctx, client)
	if err != nil {
		return nil, "", false, err
	}
	if existing != nil {
		password := utils.GeneratePassword(16)
		if err := r.auth.UpdatePassword(ctx, authID(existing), password); err != nil {
			log.Printf("identity: password rotation failed for %s: %v", client.Email, err)
			password = ""
		}
		fields := sparseProfileFields(client, header)
		if len(fields) > 0 {
			if err := r.store.UpdateProfileFields(ctx, existing.ID, fields); err != nil {
				log.Printf("identity: profile update failed for %s: %v", existing.ID, err)
			}
		}
		return existing, password, false, nil
	}
	return r.createClient(ctx, client, header)
}

func (r *Identity) findClient(ctx context.Context, client models.ClientIdentity) (*models.Profile, error) {
	if client.ClientID != "" {
		p, err := r.store.ProfileByID(ctx, client.ClientID)
		if err != nil {
			return nil, err
		}
		if p != nil {
			return p, nil
		}
	}
	return r.store.ProfileByEmail(ctx, client.Email)
}

// FindClientByEmail is the update-path resolution: email only, no creation.
func (r *Identity) FindClientByEmail(ctx context.Context, email string) (*models.Profile, error) {
	p, err := r.store.ProfileByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, notFoundf("Client not found")
	}
	return p, nil
}

func (r *Identity) createClient(ctx context.Context, client models.ClientIdentity, header models.RoadmapHeader) (*models.Profile, string, bool, error) {
	password := utils.GeneratePassword(16)
	userID, err := r.auth.CreateUser(ctx, client.Email, password)
	if err != nil {
		// auth identity creation is fatal: no account means no client row
		return nil, "", false, err
	}
	r.waitForTrigger(ctx, userID)

	p := &models.Profile{
		ID:       userID,
		UserID:   userID,
		Email:    client.Email,
		FullName: client.Name,
		Phone:    client.Phone,
		Company:  header.CompanyName,
		Location: header.Address,
		Role:     models.RoleUser,
	}
	if err := r.store.UpsertProfile(ctx, p); err != nil {
		return nil, "", false, fmt.Errorf("%w: profile creation failed: %v", ErrProvisioning, err)
	}
	log.Printf("identity: provisioned new client %s (%s)", client.Email, userID)
	return p, password, true, nil
}

// waitForTrigger gives the auth layer's background trigger a bounded window
// to create its shell profile so the upsert lands on it instead of racing.
func (r *Identity) waitForTrigger(ctx context.Context, userID string) {
	for i := 0; i < r.settleAttempts; i++ {
		p, err := r.store.ProfileByID(ctx, userID)
		if err == nil && p != nil {
			return
		}
		select {
		case <-time.After(r.settleDelay):
		case <-ctx.Done():
			return
		}
	}
}

func sparseProfileFields(client models.ClientIdentity, header models.RoadmapHeader) map[string]any {
	fields := map[string]any{}
	if v := strings.TrimSpace(client.Name); v != "" {
		fields["full_name"] = v
	}
	if v := strings.TrimSpace(client.Phone); v != "" {
		fields["phone"] = v
	}
	if v := strings.TrimSpace(header.CompanyName); v != "" {
		fields["company"] = v
	}
	if v := strings.TrimSpace(header.Address); v != "" {
		fields["location"] = v
	}
	return fields
}

func authID(p *models.Profile) string {
	if p.UserID != "" {
		return p.UserID
	}
	return p.ID
}
