package tournaments

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/codr1/Clubhouse/internal/api/authz"
	"github.com/codr1/Clubhouse/internal/dataclient"
	"github.com/codr1/Clubhouse/internal/models"
	"github.com/codr1/Clubhouse/internal/testutil"
	"github.com/codr1/Clubhouse/internal/tournaments"
)

func setupTournaments(t *testing.T) *http.ServeMux {
	t.Helper()
	store, err := dataclient.NewStore(testutil.NewTestDB(t))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	InitHandlers(tournaments.NewService(store))
	t.Cleanup(func() { InitHandlers(nil) })

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/tournaments", HandleTournamentCreate)
	mux.HandleFunc("GET /api/v1/tournaments/{id}", HandleTournamentDetail)
	mux.HandleFunc("GET /api/v1/tournaments/{id}/standings", HandleTournamentStandings)
	mux.HandleFunc("PUT /api/v1/tournaments/{id}/fixtures/{fixture_id}/teams", HandleFixtureTeams)
	mux.HandleFunc("PUT /api/v1/tournaments/{id}/fixtures/{fixture_id}/score", HandleFixtureScore)
	return mux
}

func do(t *testing.T, mux http.Handler, method, target, role string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req = req.WithContext(authz.ContextWithClub(req.Context(), &authz.ClubContext{ClubID: "club-1", UserID: "user-1", Role: role}))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func createTournament(t *testing.T, mux http.Handler) models.Tournament {
	t.Helper()
	rec := do(t, mux, http.MethodPost, "/api/v1/tournaments", authz.RoleCoach, map[string]any{
		"club_id":           "club-1",
		"name":              "Summer Blitz",
		"teams_per_group":   4,
		"qualify_per_group": 2,
		"points_for_win":    3,
		"team_names":        []string{"Lions", "Tigers", "Bears", "Wolves"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var tournament models.Tournament
	if err := json.Unmarshal(rec.Body.Bytes(), &tournament); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return tournament
}

func TestTournamentCreateAndDetail(t *testing.T) {
	mux := setupTournaments(t)
	created := createTournament(t, mux)

	if len(created.Groups) != 1 || len(created.Teams) != 4 {
		t.Fatalf("unexpected layout groups=%v teams=%d", created.Groups, len(created.Teams))
	}
	// two qualifiers from one group is too few for a knockout round
	if len(created.Fixtures) != 6 {
		t.Fatalf("expected 6 group fixtures, got %d", len(created.Fixtures))
	}

	rec := do(t, mux, http.MethodGet, "/api/v1/tournaments/"+created.ID, authz.RoleMember, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	if rec := do(t, mux, http.MethodGet, "/api/v1/tournaments/missing", authz.RoleMember, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestTournamentCreateRejectsBadConfig(t *testing.T) {
	mux := setupTournaments(t)

	rec := do(t, mux, http.MethodPost, "/api/v1/tournaments", authz.RoleAdmin, map[string]any{
		"club_id":           "club-1",
		"name":              "Broken",
		"num_teams":         8,
		"teams_per_group":   0,
		"qualify_per_group": 2,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, mux, http.MethodPost, "/api/v1/tournaments", authz.RoleMember, map[string]any{
		"club_id":           "club-1",
		"name":              "Members cannot",
		"num_teams":         4,
		"teams_per_group":   4,
		"qualify_per_group": 2,
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestFixtureAssignAndScoreUpdatesStandings(t *testing.T) {
	mux := setupTournaments(t)
	created := createTournament(t, mux)

	fixture := created.Fixtures[0]
	home, away := created.Teams[0], created.Teams[1]

	rec := do(t, mux, http.MethodPut, "/api/v1/tournaments/"+created.ID+"/fixtures/"+fixture.ID+"/teams", authz.RoleAdmin, map[string]any{
		"home_team_id": home.ID,
		"away_team_id": away.ID,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, mux, http.MethodPut, "/api/v1/tournaments/"+created.ID+"/fixtures/"+fixture.ID+"/score", authz.RoleAdmin, map[string]any{
		"home_score": 3,
		"away_score": 1,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, mux, http.MethodGet, "/api/v1/tournaments/"+created.ID+"/standings", authz.RoleMember, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Standings []models.Standing `json:"standings"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode standings: %v", err)
	}
	if len(body.Standings) != 4 {
		t.Fatalf("expected 4 standings, got %d", len(body.Standings))
	}
	top := body.Standings[0]
	if top.TeamID != home.ID || top.Points != 3 || top.GoalDifference != 2 {
		t.Fatalf("unexpected leader %+v", top)
	}
}

func TestFixtureScoreErrors(t *testing.T) {
	mux := setupTournaments(t)
	created := createTournament(t, mux)
	base := "/api/v1/tournaments/" + created.ID + "/fixtures/"

	if rec := do(t, mux, http.MethodPut, base+"Z-9/score", authz.RoleAdmin, map[string]any{"home_score": 1, "away_score": 0}); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown fixture, got %d", rec.Code)
	}
	if rec := do(t, mux, http.MethodPut, base+created.Fixtures[0].ID+"/score", authz.RoleAdmin, map[string]any{"home_score": -1, "away_score": 0}); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative score, got %d", rec.Code)
	}
	if rec := do(t, mux, http.MethodPut, base+created.Fixtures[0].ID+"/teams", authz.RoleAdmin, map[string]any{"home_team_id": "nope"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown team, got %d", rec.Code)
	}
}
