package tournaments

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog/log"

	"github.com/codr1/Clubhouse/internal/dataclient"
	"github.com/codr1/Clubhouse/internal/metrics"
	"github.com/codr1/Clubhouse/internal/models"
)

var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrFixtureNotFound    = errors.New("fixture not found")
	ErrUnknownTeam        = errors.New("team is not part of this tournament")
	ErrInvalidScore       = errors.New("scores must be 0 or greater")
	ErrInvalidStatus      = errors.New("invalid fixture status")
	ErrTooManyTeams       = errors.New("more teams than bracket slots")
)

// Service applies tournament changes through the data client. Every change
// reads the tournament, recomputes standings and writes back in one
// transaction, so stored standings always match the stored fixtures.
type Service struct {
	data dataclient.Client
}

func NewService(data dataclient.Client) *Service {
	return &Service{data: data}
}

type CreateInput struct {
	ClubID          string   `json:"club_id"`
	Name            string   `json:"name"`
	NumTeams        int      `json:"num_teams"`
	TeamsPerGroup   int      `json:"teams_per_group"`
	QualifyPerGroup int      `json:"qualify_per_group"`
	PointsForWin    int      `json:"points_for_win"`
	TeamNames       []string `json:"team_names"`
}

type ScoreUpdate struct {
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`
	Status    string `json:"status"`
}

type TeamAssignment struct {
	HomeTeamID *string `json:"home_team_id"`
	AwayTeamID *string `json:"away_team_id"`
}

// Create lays out the bracket and stores the new tournament. Named teams are
// dealt into groups in order (A, B, C, A, ...); fixtures stay unassigned.
func (s *Service) Create(ctx context.Context, input CreateInput) (models.Tournament, error) {
	numTeams := input.NumTeams
	if numTeams == 0 {
		numTeams = len(input.TeamNames)
	}
	bracket, err := GenerateBracket(numTeams, input.TeamsPerGroup, input.QualifyPerGroup)
	if err != nil {
		return models.Tournament{}, err
	}
	if len(input.TeamNames) > numTeams {
		return models.Tournament{}, fmt.Errorf("%w: %d names for %d teams", ErrTooManyTeams, len(input.TeamNames), numTeams)
	}

	teams := make([]models.Team, 0, len(input.TeamNames))
	for i, name := range input.TeamNames {
		teams = append(teams, models.Team{
			ID:    uuid.NewString(),
			Name:  strings.TrimSpace(name),
			Group: bracket.Groups[i%len(bracket.Groups)],
		})
	}

	tournament := models.Tournament{
		ClubID: input.ClubID,
		Name:   strings.TrimSpace(input.Name),
		Slug:   slug.Make(input.Name),
		Status: models.TournamentStatusActive,
		Settings: models.TournamentSettings{
			TeamsPerGroup:   input.TeamsPerGroup,
			QualifyPerGroup: input.QualifyPerGroup,
			PointsForWin:    input.PointsForWin,
		},
		Groups:    bracket.Groups,
		Teams:     teams,
		Fixtures:  bracket.Fixtures,
		Standings: ComputeStandings(teams, bracket.Fixtures),
	}
	if err := tournament.Validate(); err != nil {
		return models.Tournament{}, err
	}

	rec, err := s.data.Create(ctx, models.EntityTournament, tournament)
	if err != nil {
		return models.Tournament{}, fmt.Errorf("store tournament: %w", err)
	}
	created, err := dataclient.Decode[models.Tournament](rec)
	if err != nil {
		return models.Tournament{}, err
	}

	log.Ctx(ctx).Info().
		Str("tournament_id", created.ID).
		Str("club_id", created.ClubID).
		Int("groups", len(created.Groups)).
		Int("fixtures", len(created.Fixtures)).
		Msg("Tournament created")
	return created, nil
}

// Get loads a tournament by id.
func (s *Service) Get(ctx context.Context, id string) (models.Tournament, error) {
	tournament, err := dataclient.Get[models.Tournament](ctx, s.data, models.EntityTournament, id)
	if err != nil {
		if errors.Is(err, dataclient.ErrNotFound) {
			return models.Tournament{}, ErrTournamentNotFound
		}
		return models.Tournament{}, fmt.Errorf("load tournament %s: %w", id, err)
	}
	return tournament, nil
}

// RecordScore sets a fixture's score and recomputes the whole table.
func (s *Service) RecordScore(ctx context.Context, tournamentID, fixtureID string, update ScoreUpdate) (models.Tournament, error) {
	if update.HomeScore < 0 || update.AwayScore < 0 {
		return models.Tournament{}, ErrInvalidScore
	}
	status := update.Status
	if status == "" {
		status = models.FixtureStatusCompleted
	}
	switch status {
	case models.FixtureStatusScheduled, models.FixtureStatusLive, models.FixtureStatusCompleted:
	default:
		return models.Tournament{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	return s.mutateFixture(ctx, tournamentID, fixtureID, func(_ models.Tournament, fixture *models.Fixture) error {
		home, away := update.HomeScore, update.AwayScore
		fixture.HomeScore = &home
		fixture.AwayScore = &away
		fixture.Status = status
		return nil
	})
}

// AssignTeams fills a fixture's slots with tournament teams. A nil id leaves
// that side unchanged.
func (s *Service) AssignTeams(ctx context.Context, tournamentID, fixtureID string, assignment TeamAssignment) (models.Tournament, error) {
	return s.mutateFixture(ctx, tournamentID, fixtureID, func(t models.Tournament, fixture *models.Fixture) error {
		if assignment.HomeTeamID != nil {
			team, ok := t.TeamByID(*assignment.HomeTeamID)
			if !ok {
				return fmt.Errorf("%w: %s", ErrUnknownTeam, *assignment.HomeTeamID)
			}
			fixture.HomeTeamID = &team.ID
			fixture.HomeTeamName = team.Name
		}
		if assignment.AwayTeamID != nil {
			team, ok := t.TeamByID(*assignment.AwayTeamID)
			if !ok {
				return fmt.Errorf("%w: %s", ErrUnknownTeam, *assignment.AwayTeamID)
			}
			fixture.AwayTeamID = &team.ID
			fixture.AwayTeamName = team.Name
		}
		return nil
	})
}

// RefreshStandings recomputes the stored table and writes it back only when
// it differs. It reports whether a write happened.
func (s *Service) RefreshStandings(ctx context.Context, tournamentID string) (bool, error) {
	changed := false
	_, err := dataclient.MutateAs(ctx, s.data, models.EntityTournament, tournamentID, func(t models.Tournament) (any, error) {
		standings := ComputeStandings(t.Teams, t.Fixtures)
		metrics.StandingsRecomputed.Inc()
		if reflect.DeepEqual(standings, t.Standings) {
			return nil, nil
		}
		changed = true
		return map[string]any{"standings": standings}, nil
	})
	if err != nil {
		return false, tournamentError(tournamentID, err)
	}
	return changed, nil
}

// RefreshActive runs RefreshStandings for every active tournament.
func (s *Service) RefreshActive(ctx context.Context) (int, error) {
	active, err := dataclient.FilterAs[models.Tournament](ctx, s.data, models.EntityTournament, dataclient.Query{"status": models.TournamentStatusActive})
	if err != nil {
		return 0, fmt.Errorf("load active tournaments: %w", err)
	}
	updated := 0
	var errs []error
	for _, tournament := range active {
		changed, err := s.RefreshStandings(ctx, tournament.ID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if changed {
			updated++
		}
	}
	return updated, errors.Join(errs...)
}

func (s *Service) mutateFixture(ctx context.Context, tournamentID, fixtureID string, mutate func(models.Tournament, *models.Fixture) error) (models.Tournament, error) {
	rec, err := dataclient.MutateAs(ctx, s.data, models.EntityTournament, tournamentID, func(t models.Tournament) (any, error) {
		fixtures := append([]models.Fixture(nil), t.Fixtures...)
		idx := -1
		for i := range fixtures {
			if fixtures[i].ID == fixtureID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, ErrFixtureNotFound
		}
		if err := mutate(t, &fixtures[idx]); err != nil {
			return nil, err
		}

		standings := ComputeStandings(t.Teams, fixtures)
		metrics.StandingsRecomputed.Inc()
		return map[string]any{
			"fixtures":  fixtures,
			"standings": standings,
		}, nil
	})
	if err != nil {
		return models.Tournament{}, tournamentError(tournamentID, err)
	}

	log.Ctx(ctx).Info().
		Str("tournament_id", tournamentID).
		Str("fixture_id", fixtureID).
		Msg("Fixture updated and standings recomputed")
	return dataclient.Decode[models.Tournament](rec)
}

// tournamentError maps a missing record to ErrTournamentNotFound. Domain
// errors from the mutation pass through unchanged.
func tournamentError(tournamentID string, err error) error {
	switch {
	case errors.Is(err, dataclient.ErrNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, ErrFixtureNotFound), errors.Is(err, ErrUnknownTeam):
		return err
	default:
		return fmt.Errorf("update tournament %s: %w", tournamentID, err)
	}
}
