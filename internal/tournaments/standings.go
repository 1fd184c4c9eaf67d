// Package tournaments builds group-stage tables and knockout skeletons and
// applies score updates to stored tournaments.
package tournaments

import (
	"sort"

	"github.com/codr1/Clubhouse/internal/models"
)

const (
	pointsForWin  = 3
	pointsForDraw = 1
)

// ComputeStandings builds the league table from the full fixture list.
//
// Every team gets a row, even with no games played. Only completed
// "Group Stage" fixtures count, and fixtures naming a team outside teams are
// skipped. Missing scores count as zero. Rows are ordered by group, then
// points, goal difference and goals scored; remaining ties keep team order
// (there is no head-to-head tiebreak). Scoring is always 3/1/0.
func ComputeStandings(teams []models.Team, fixtures []models.Fixture) []models.Standing {
	rows := make(map[string]*models.Standing, len(teams))
	ordered := make([]*models.Standing, 0, len(teams))
	for _, team := range teams {
		if _, ok := rows[team.ID]; ok {
			continue
		}
		row := &models.Standing{
			TeamID:   team.ID,
			TeamName: team.Name,
			Group:    team.Group,
		}
		rows[team.ID] = row
		ordered = append(ordered, row)
	}

	for _, fixture := range fixtures {
		if fixture.Status != models.FixtureStatusCompleted || fixture.Round != models.RoundGroupStage {
			continue
		}
		if fixture.HomeTeamID == nil || fixture.AwayTeamID == nil {
			continue
		}
		home, ok := rows[*fixture.HomeTeamID]
		if !ok {
			continue
		}
		away, ok := rows[*fixture.AwayTeamID]
		if !ok {
			continue
		}

		homeScore := scoreValue(fixture.HomeScore)
		awayScore := scoreValue(fixture.AwayScore)
		applyResult(home, homeScore, awayScore)
		applyResult(away, awayScore, homeScore)
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Group != b.Group {
			return a.Group < b.Group
		}
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference != b.GoalDifference {
			return a.GoalDifference > b.GoalDifference
		}
		return a.GoalsFor > b.GoalsFor
	})

	standings := make([]models.Standing, 0, len(ordered))
	for _, row := range ordered {
		standings = append(standings, *row)
	}
	return standings
}

func applyResult(row *models.Standing, scored, conceded int) {
	row.Played++
	row.GoalsFor += scored
	row.GoalsAgainst += conceded
	row.GoalDifference = row.GoalsFor - row.GoalsAgainst

	switch {
	case scored > conceded:
		row.Won++
		row.Points += pointsForWin
	case scored < conceded:
		row.Lost++
	default:
		row.Drawn++
		row.Points += pointsForDraw
	}
}

func scoreValue(score *int) int {
	if score == nil {
		return 0
	}
	return *score
}
