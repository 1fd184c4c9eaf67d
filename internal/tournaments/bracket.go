package tournaments

import (
	"errors"
	"fmt"

	"github.com/codr1/Clubhouse/internal/models"
)

var (
	ErrInvalidBracketConfig = errors.New("team count, group size and qualifiers must be positive")
	ErrTooManyGroups        = errors.New("brackets support at most 8 groups")
)

var groupLetters = []string{"A", "B", "C", "D", "E", "F", "G", "H"}

// knockoutThreshold is the qualifier count at which the semi-final and final
// placeholders are added.
const knockoutThreshold = 4

type Bracket struct {
	Groups   []string         `json:"groups"`
	Fixtures []models.Fixture `json:"fixtures"`
}

// GenerateBracket lays out placeholder fixtures for a group-stage tournament.
//
// Each group gets a full round robin over teamsPerGroup slots, even when
// numTeams does not fill the last group. Group fixtures record the matchday
// and the pair of slots that meet. When at least four teams qualify in
// total, two semi-finals and a final are appended. The knockout never grows
// beyond that, so eight or more qualifiers still produce only semi-finals.
// No teams are assigned.
func GenerateBracket(numTeams, teamsPerGroup, qualifyPerGroup int) (Bracket, error) {
	if numTeams <= 0 || teamsPerGroup <= 0 || qualifyPerGroup <= 0 {
		return Bracket{}, ErrInvalidBracketConfig
	}

	numGroups := (numTeams + teamsPerGroup - 1) / teamsPerGroup
	if numGroups > len(groupLetters) {
		return Bracket{}, fmt.Errorf("%w: %d teams in groups of %d needs %d groups", ErrTooManyGroups, numTeams, teamsPerGroup, numGroups)
	}

	groups := append([]string(nil), groupLetters[:numGroups]...)
	pairs := buildRoundRobinPairs(teamsPerGroup)

	fixtures := make([]models.Fixture, 0, numGroups*len(pairs)+3)
	matchNumber := 0
	for _, group := range groups {
		for idx, pair := range pairs {
			matchNumber++
			fixture := placeholderFixture(fmt.Sprintf("%s-%d", group, idx+1), models.RoundGroupStage, group, matchNumber)
			fixture.Matchday = pair.Round
			fixture.HomeSlot = pair.Home + 1
			fixture.AwaySlot = pair.Away + 1
			fixtures = append(fixtures, fixture)
		}
	}

	if qualifyPerGroup*numGroups >= knockoutThreshold {
		for i := 1; i <= 2; i++ {
			matchNumber++
			fixtures = append(fixtures, placeholderFixture(fmt.Sprintf("SF-%d", i), models.RoundSemiFinal, "", matchNumber))
		}
		matchNumber++
		fixtures = append(fixtures, placeholderFixture("F-1", models.RoundFinal, "", matchNumber))
	}

	return Bracket{Groups: groups, Fixtures: fixtures}, nil
}

func placeholderFixture(id, round, group string, matchNumber int) models.Fixture {
	return models.Fixture{
		ID:           id,
		Round:        round,
		Group:        group,
		MatchNumber:  matchNumber,
		HomeTeamName: models.PlaceholderTeamName,
		AwayTeamName: models.PlaceholderTeamName,
		Status:       models.FixtureStatusScheduled,
	}
}

type roundPair struct {
	Round int
	Home  int
	Away  int
}

// buildRoundRobinPairs pairs slots 0..n-1 with the circle method. Odd counts
// get a bye slot, which is dropped from the output.
func buildRoundRobinPairs(n int) []roundPair {
	working := make([]int, 0, n+1)
	for i := 0; i < n; i++ {
		working = append(working, i)
	}
	const bye = -1
	if len(working)%2 == 1 {
		working = append(working, bye)
	}
	if len(working) < 2 {
		return nil
	}

	rounds := len(working) - 1
	pairs := make([]roundPair, 0, rounds*len(working)/2)
	for round := 0; round < rounds; round++ {
		for i := 0; i < len(working)/2; i++ {
			home := working[i]
			away := working[len(working)-1-i]
			if home == bye || away == bye {
				continue
			}
			if i == 0 && round%2 == 1 {
				home, away = away, home
			}
			pairs = append(pairs, roundPair{Round: round + 1, Home: home, Away: away})
		}
		rotateSlots(working)
	}
	return pairs
}

func rotateSlots(slots []int) {
	if len(slots) <= 2 {
		return
	}
	last := slots[len(slots)-1]
	copy(slots[2:], slots[1:len(slots)-1])
	slots[1] = last
}
