package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coachroadmap/backend/models"
)

func testIdentity(t *testing.T, fs *fakeStore) (*Identity, *atomic.Int32) {
	t.Helper()
	var rotations atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /admin/users", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "new-user-id"})
	})
	mux.HandleFunc("PUT /admin/users/", func(w http.ResponseWriter, r *http.Request) {
		rotations.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]string{})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	id := NewIdentity(fs, &AuthAdmin{baseURL: srv.URL, serviceKey: "key", http: srv.Client()})
	id.settleDelay = 0
	id.settleAttempts = 1
	return id, &rotations
}

func TestResolveCoachRequiresRole(t *testing.T) {
	fs := newFakeStore()
	notACoach := fs.addProfile("user@acme.test", models.RoleUser)
	coach := fs.addProfile("coach@studio.test", models.RoleCoach)
	id, _ := testIdentity(t, fs)

	assert.Nil(t, id.ResolveCoach(context.Background(), models.CoachIdentity{Email: "user@acme.test"}))
	assert.Nil(t, id.ResolveCoach(context.Background(), models.CoachIdentity{CoachID: notACoach.ID}))

	got := id.ResolveCoach(context.Background(), models.CoachIdentity{Email: "coach@studio.test"})
	require.NotNil(t, got)
	assert.Equal(t, coach.ID, *got)

	// id fallback when email does not match a coach
	got = id.ResolveCoach(context.Background(), models.CoachIdentity{Email: "ghost@studio.test", CoachID: coach.ID})
	require.NotNil(t, got)
	assert.Equal(t, coach.ID, *got)

	assert.Nil(t, id.ResolveCoach(context.Background(), models.CoachIdentity{}))
}

func TestResolveOrCreateClientProvisions(t *testing.T) {
	fs := newFakeStore()
	id, _ := testIdentity(t, fs)

	client := models.ClientIdentity{Name: "Acme", Email: "new@acme.test", Phone: "+336"}
	header := models.RoadmapHeader{CompanyName: "Acme SARL", Address: "Lyon"}
	p, password, created, err := id.ResolveOrCreateClient(context.Background(), client, header)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, password)
	assert.Equal(t, "new-user-id", p.ID)
	assert.Equal(t, models.RoleUser, p.Role)
	assert.Equal(t, "Acme SARL", p.Company)
	assert.Equal(t, "Lyon", p.Location)
}

func TestResolveOrCreateClientReusesAndRotates(t *testing.T) {
	fs := newFakeStore()
	existing := fs.addProfile("old@acme.test", models.RoleUser)
	id, rotations := testIdentity(t, fs)

	client := models.ClientIdentity{Name: "New Name", Email: "old@acme.test", Phone: "+337"}
	p, password, created, err := id.ResolveOrCreateClient(context.Background(), client, models.RoadmapHeader{CompanyName: "Acme"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.NotEmpty(t, password)
	assert.Equal(t, existing.ID, p.ID)
	assert.Equal(t, int32(1), rotations.Load())

	// sparse update landed, empty fields untouched
	stored := fs.profiles[existing.ID]
	assert.Equal(t, "New Name", stored.FullName)
	assert.Equal(t, "+337", stored.Phone)
	assert.Equal(t, "Acme", stored.Company)
	assert.Equal(t, "old@acme.test", stored.Email)
}

func TestResolveOrCreateClientPrefersID(t *testing.T) {
	fs := newFakeStore()
	byID := fs.addProfile("byid@acme.test", models.RoleUser)
	fs.addProfile("byemail@acme.test", models.RoleUser)
	id, _ := testIdentity(t, fs)

	p, _, created, err := id.ResolveOrCreateClient(context.Background(),
		models.ClientIdentity{ClientID: byID.ID, Email: "byemail@acme.test"}, models.RoadmapHeader{})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, byID.ID, p.ID)
}

func TestFindClientByEmailNotFound(t *testing.T) {
	fs := newFakeStore()
	id, _ := testIdentity(t, fs)
	_, err := id.FindClientByEmail(context.Background(), "ghost@acme.test")
	require.ErrorIs(t, err, ErrNotFound)
}
