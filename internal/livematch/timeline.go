package livematch

import (
	"sort"

	"github.com/codr1/Clubhouse/internal/models"
)

// defaultPoints is what an event is worth when it carries no explicit value.
var defaultPoints = map[string]int{
	models.EventGoal:       1,
	models.EventPoint:      1,
	models.EventTry:        5,
	models.EventConversion: 2,
	models.EventPenalty:    3,
}

type TimelineEntry struct {
	models.MatchEvent
	Value     int `json:"value"`
	HomeScore int `json:"home_score"`
	AwayScore int `json:"away_score"`
}

type Timeline struct {
	MatchID      string          `json:"match_id"`
	ClubID       string          `json:"club_id"`
	HomeTeamName string          `json:"home_team_name"`
	AwayTeamName string          `json:"away_team_name"`
	Status       string          `json:"status"`
	Clock        ClockState      `json:"clock"`
	HomeScore    int             `json:"home_score"`
	AwayScore    int             `json:"away_score"`
	Entries      []TimelineEntry `json:"entries"`
}

// EventValue returns the points an event adds to its side.
func EventValue(event models.MatchEvent) int {
	if event.Points != nil {
		return *event.Points
	}
	return defaultPoints[event.Kind]
}

// BuildTimeline orders events by minute, keeping entry order within a minute,
// and attaches the running score after each one. It is recomputed from the
// full event list every time.
func BuildTimeline(match models.Match) Timeline {
	events := append([]models.MatchEvent(nil), match.Events...)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Minute < events[j].Minute
	})

	timeline := Timeline{
		MatchID:      match.ID,
		ClubID:       match.ClubID,
		HomeTeamName: match.HomeTeamName,
		AwayTeamName: match.AwayTeamName,
		Status:       match.Status,
		Entries:      make([]TimelineEntry, 0, len(events)),
	}
	for _, event := range events {
		value := EventValue(event)
		switch event.Side {
		case models.SideHome:
			timeline.HomeScore += value
		case models.SideAway:
			timeline.AwayScore += value
		default:
			value = 0
		}
		timeline.Entries = append(timeline.Entries, TimelineEntry{
			MatchEvent: event,
			Value:      value,
			HomeScore:  timeline.HomeScore,
			AwayScore:  timeline.AwayScore,
		})
	}
	return timeline
}
