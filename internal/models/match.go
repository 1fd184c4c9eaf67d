package models

import "time"

const (
	MatchStatusScheduled  = "scheduled"
	MatchStatusFirstHalf  = "first_half"
	MatchStatusHalfTime   = "half_time"
	MatchStatusSecondHalf = "second_half"
	MatchStatusFullTime   = "full_time"

	SideHome = "home"
	SideAway = "away"

	EventGoal         = "goal"
	EventPoint        = "point"
	EventTry          = "try"
	EventConversion   = "conversion"
	EventPenalty      = "penalty"
	EventCard         = "card"
	EventSubstitution = "substitution"
	EventNote         = "note"

	DefaultHalfLengthMinutes = 30
)

// Match is a live-scored game. PeriodStartedAt marks the kick-off of the
// current half and is nil outside of play.
type Match struct {
	ID                string       `json:"id"`
	ClubID            string       `json:"club_id" validate:"required"`
	TournamentID      string       `json:"tournament_id,omitempty"`
	FixtureID         string       `json:"fixture_id,omitempty"`
	HomeTeamName      string       `json:"home_team_name" validate:"required,max=200"`
	AwayTeamName      string       `json:"away_team_name" validate:"required,max=200"`
	Status            string       `json:"status" validate:"oneof=scheduled first_half half_time second_half full_time"`
	HalfLengthMinutes int          `json:"half_length_minutes" validate:"gte=1,lte=60"`
	PeriodStartedAt   *time.Time   `json:"period_started_at"`
	Events            []MatchEvent `json:"events"`
}

type MatchEvent struct {
	ID     string `json:"id"`
	Minute int    `json:"minute" validate:"gte=0,lte=200"`
	Kind   string `json:"kind" validate:"oneof=goal point try conversion penalty card substitution note"`
	Side   string `json:"side" validate:"omitempty,oneof=home away"`
	Player string `json:"player" validate:"max=200"`
	Points *int   `json:"points,omitempty" validate:"omitempty,gte=0,lte=10"`
	Note   string `json:"note" validate:"max=500"`
}

func (m Match) Validate() error {
	return validateStruct(m)
}

func (e MatchEvent) Validate() error {
	return validateStruct(e)
}
