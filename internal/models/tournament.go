package models

const (
	RoundGroupStage = "Group Stage"
	RoundSemiFinal  = "Semi Final"
	RoundFinal      = "Final"

	FixtureStatusScheduled = "scheduled"
	FixtureStatusLive      = "live"
	FixtureStatusCompleted = "completed"

	TournamentStatusDraft     = "draft"
	TournamentStatusActive    = "active"
	TournamentStatusCompleted = "completed"

	// PlaceholderTeamName labels fixture slots that have no team assigned yet.
	PlaceholderTeamName = "TBD"
)

type Tournament struct {
	ID        string             `json:"id"`
	ClubID    string             `json:"club_id" validate:"required"`
	Name      string             `json:"name" validate:"required,max=200"`
	Slug      string             `json:"slug"`
	Status    string             `json:"status" validate:"oneof=draft active completed"`
	Settings  TournamentSettings `json:"settings"`
	Groups    []string           `json:"groups"`
	Teams     []Team             `json:"teams" validate:"dive"`
	Fixtures  []Fixture          `json:"fixtures"`
	Standings []Standing         `json:"standings"`
}

// TournamentSettings captures the bracket sizing. PointsForWin is stored for
// display but standings always score 3/1/0.
type TournamentSettings struct {
	TeamsPerGroup   int `json:"teams_per_group" validate:"gte=1"`
	QualifyPerGroup int `json:"qualify_per_group" validate:"gte=1"`
	PointsForWin    int `json:"points_for_win"`
}

type Team struct {
	ID    string `json:"id" validate:"required"`
	Name  string `json:"name" validate:"required,max=200"`
	Group string `json:"group"`
}

type Fixture struct {
	ID           string  `json:"id"`
	Round        string  `json:"round"`
	Group        string  `json:"group,omitempty"`
	MatchNumber  int     `json:"match_number"`
	// Group-stage only: the round-robin matchday and the 1-based group slots
	// that meet.
	Matchday     int     `json:"matchday,omitempty"`
	HomeSlot     int     `json:"home_slot,omitempty"`
	AwaySlot     int     `json:"away_slot,omitempty"`
	HomeTeamID   *string `json:"home_team_id"`
	AwayTeamID   *string `json:"away_team_id"`
	HomeTeamName string  `json:"home_team_name"`
	AwayTeamName string  `json:"away_team_name"`
	HomeScore    *int    `json:"home_score"`
	AwayScore    *int    `json:"away_score"`
	Status       string  `json:"status"`
}

// Standing is one league-table row. GoalDifference and Points are derived.
type Standing struct {
	TeamID         string `json:"team_id"`
	TeamName       string `json:"team_name"`
	Group          string `json:"group"`
	Played         int    `json:"played"`
	Won            int    `json:"won"`
	Drawn          int    `json:"drawn"`
	Lost           int    `json:"lost"`
	GoalsFor       int    `json:"goals_for"`
	GoalsAgainst   int    `json:"goals_against"`
	GoalDifference int    `json:"goal_difference"`
	Points         int    `json:"points"`
}

func (t Tournament) Validate() error {
	return validateStruct(t)
}

// TeamByID returns the team with the given id.
func (t Tournament) TeamByID(id string) (Team, bool) {
	for _, team := range t.Teams {
		if team.ID == id {
			return team, true
		}
	}
	return Team{}, false
}
