// Package livematch tracks the match clock and builds scoring timelines for
// polled live-match views.
package livematch

import (
	"errors"
	"fmt"
	"time"

	"github.com/codr1/Clubhouse/internal/models"
)

var ErrInvalidTransition = errors.New("invalid match status transition")

type ClockState struct {
	Status   string `json:"status"`
	Minute   int    `json:"minute"`
	Stoppage int    `json:"stoppage"`
	Running  bool   `json:"running"`
	Display  string `json:"display"`
}

// Clock derives the displayed match minute at now. Minutes are 1-based, so the
// first minute of a half shows as 1. Time beyond the half length is reported
// as stoppage, e.g. "30+2'".
func Clock(match models.Match, now time.Time) ClockState {
	state := ClockState{Status: match.Status}
	half := halfLength(match)

	switch match.Status {
	case models.MatchStatusHalfTime:
		state.Minute = half
		state.Display = "HT"
		return state
	case models.MatchStatusFullTime:
		state.Minute = 2 * half
		state.Display = "FT"
		return state
	case models.MatchStatusFirstHalf, models.MatchStatusSecondHalf:
	default:
		return state
	}

	elapsed := 0
	if match.PeriodStartedAt != nil && now.After(*match.PeriodStartedAt) {
		elapsed = int(now.Sub(*match.PeriodStartedAt) / time.Minute)
	}
	played := elapsed + 1

	offset := 0
	if match.Status == models.MatchStatusSecondHalf {
		offset = half
	}
	state.Running = match.PeriodStartedAt != nil
	if played > half {
		state.Minute = offset + half
		state.Stoppage = played - half
		state.Display = fmt.Sprintf("%d+%d'", state.Minute, state.Stoppage)
		return state
	}
	state.Minute = offset + played
	state.Display = fmt.Sprintf("%d'", state.Minute)
	return state
}

var transitions = map[string]string{
	models.MatchStatusScheduled:  models.MatchStatusFirstHalf,
	models.MatchStatusFirstHalf:  models.MatchStatusHalfTime,
	models.MatchStatusHalfTime:   models.MatchStatusSecondHalf,
	models.MatchStatusSecondHalf: models.MatchStatusFullTime,
}

// Transition moves match to next, stamping the period start when a half begins.
func Transition(match models.Match, next string, now time.Time) (models.Match, error) {
	if transitions[match.Status] != next {
		return match, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, match.Status, next)
	}
	match.Status = next
	switch next {
	case models.MatchStatusFirstHalf, models.MatchStatusSecondHalf:
		started := now.UTC()
		match.PeriodStartedAt = &started
	default:
		match.PeriodStartedAt = nil
	}
	return match, nil
}

func halfLength(match models.Match) int {
	if match.HalfLengthMinutes > 0 {
		return match.HalfLengthMinutes
	}
	return models.DefaultHalfLengthMinutes
}
