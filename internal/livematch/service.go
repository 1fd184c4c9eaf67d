package livematch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog/log"

	"github.com/codr1/Clubhouse/internal/dataclient"
	"github.com/codr1/Clubhouse/internal/llm"
	"github.com/codr1/Clubhouse/internal/models"
)

var (
	ErrMatchNotFound = errors.New("match not found")
	ErrMatchFinished = errors.New("match has finished")
)

// TimelineTTL bounds how stale a cached timeline can be. Clients poll every
// ten seconds.
const TimelineTTL = 5 * time.Second

// Cache stores rendered timelines between polls.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type Service struct {
	data  dataclient.Client
	cache Cache
	llm   llm.Invoker
	now   func() time.Time
}

// NewService builds the live-match service. cache and invoker may be nil.
func NewService(data dataclient.Client, cache Cache, invoker llm.Invoker) *Service {
	return &Service{data: data, cache: cache, llm: invoker, now: time.Now}
}

type CreateInput struct {
	ClubID            string `json:"club_id"`
	TournamentID      string `json:"tournament_id"`
	FixtureID         string `json:"fixture_id"`
	HomeTeamName      string `json:"home_team_name"`
	AwayTeamName      string `json:"away_team_name"`
	HalfLengthMinutes int    `json:"half_length_minutes"`
}

func (s *Service) Create(ctx context.Context, input CreateInput) (models.Match, error) {
	half := input.HalfLengthMinutes
	if half == 0 {
		half = models.DefaultHalfLengthMinutes
	}
	match := models.Match{
		ClubID:            input.ClubID,
		TournamentID:      input.TournamentID,
		FixtureID:         input.FixtureID,
		HomeTeamName:      strings.TrimSpace(input.HomeTeamName),
		AwayTeamName:      strings.TrimSpace(input.AwayTeamName),
		Status:            models.MatchStatusScheduled,
		HalfLengthMinutes: half,
		Events:            []models.MatchEvent{},
	}
	if err := match.Validate(); err != nil {
		return models.Match{}, err
	}
	rec, err := s.data.Create(ctx, models.EntityMatch, match)
	if err != nil {
		return models.Match{}, fmt.Errorf("store match: %w", err)
	}
	return dataclient.Decode[models.Match](rec)
}

func (s *Service) Get(ctx context.Context, id string) (models.Match, error) {
	match, err := dataclient.Get[models.Match](ctx, s.data, models.EntityMatch, id)
	if err != nil {
		if errors.Is(err, dataclient.ErrNotFound) {
			return models.Match{}, ErrMatchNotFound
		}
		return models.Match{}, fmt.Errorf("load match %s: %w", id, err)
	}
	return match, nil
}

// Timeline returns the rendered timeline JSON, serving from the cache when a
// recent copy exists. The clock is computed at render time.
func (s *Service) Timeline(ctx context.Context, id string) ([]byte, error) {
	logger := log.Ctx(ctx)
	if s.cache != nil {
		data, ok, err := s.cache.Get(ctx, timelineKey(id))
		if err != nil {
			logger.Warn().Err(err).Str("match_id", id).Msg("Timeline cache lookup failed")
		} else if ok {
			return data, nil
		}
	}

	match, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	timeline := BuildTimeline(match)
	timeline.Clock = Clock(match, s.now())
	data, err := json.Marshal(timeline)
	if err != nil {
		return nil, fmt.Errorf("encode timeline: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, timelineKey(id), data, TimelineTTL); err != nil {
			logger.Warn().Err(err).Str("match_id", id).Msg("Timeline cache store failed")
		}
	}
	return data, nil
}

// AddEvent appends an event. A zero minute is filled from the running clock.
func (s *Service) AddEvent(ctx context.Context, id string, event models.MatchEvent) (models.Match, error) {
	rec, err := dataclient.MutateAs(ctx, s.data, models.EntityMatch, id, func(match models.Match) (any, error) {
		if match.Status == models.MatchStatusFullTime {
			return nil, ErrMatchFinished
		}
		if event.Minute == 0 {
			event.Minute = Clock(match, s.now()).Minute
		}
		event.ID = uuid.NewString()
		if err := event.Validate(); err != nil {
			return nil, err
		}
		return map[string]any{"events": append(append([]models.MatchEvent(nil), match.Events...), event)}, nil
	})
	return s.written(ctx, id, rec, err)
}

// SetStatus advances the match to the next period.
func (s *Service) SetStatus(ctx context.Context, id, status string) (models.Match, error) {
	rec, err := dataclient.MutateAs(ctx, s.data, models.EntityMatch, id, func(match models.Match) (any, error) {
		next, err := Transition(match, status, s.now())
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"status":            next.Status,
			"period_started_at": next.PeriodStartedAt,
		}, nil
	})
	return s.written(ctx, id, rec, err)
}

// written finishes a mutation: it maps errors and drops the cached timeline.
func (s *Service) written(ctx context.Context, id string, rec dataclient.Record, err error) (models.Match, error) {
	if err != nil {
		if errors.Is(err, dataclient.ErrNotFound) {
			return models.Match{}, ErrMatchNotFound
		}
		return models.Match{}, err
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, timelineKey(id)); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("match_id", id).Msg("Timeline cache invalidation failed")
		}
	}
	return dataclient.Decode[models.Match](rec)
}

func timelineKey(id string) string {
	return "timeline:" + id
}

var reportSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"headline": map[string]any{"type": "string"},
		"summary":  map[string]any{"type": "string"},
	},
	"required":             []string{"headline", "summary"},
	"additionalProperties": false,
}

type matchReport struct {
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
}

// WriteReport asks the LLM for a match write-up and stores it as a draft
// news article.
func (s *Service) WriteReport(ctx context.Context, id string) (models.NewsArticle, error) {
	if s.llm == nil {
		return models.NewsArticle{}, llm.ErrDisabled
	}
	match, err := s.Get(ctx, id)
	if err != nil {
		return models.NewsArticle{}, err
	}

	var report matchReport
	if err := s.llm.Invoke(ctx, reportPrompt(BuildTimeline(match)), reportSchema, &report); err != nil {
		return models.NewsArticle{}, fmt.Errorf("generate match report: %w", err)
	}
	headline := strings.TrimSpace(report.Headline)
	if headline == "" {
		headline = fmt.Sprintf("%s v %s", match.HomeTeamName, match.AwayTeamName)
	}

	article := models.NewsArticle{
		ClubID:        match.ClubID,
		Title:         headline,
		Slug:          slug.Make(headline),
		Body:          strings.TrimSpace(report.Summary),
		Status:        models.ArticleStatusDraft,
		SourceMatchID: match.ID,
	}
	if err := article.Validate(); err != nil {
		return models.NewsArticle{}, err
	}
	rec, err := s.data.Create(ctx, models.EntityNewsArticle, article)
	if err != nil {
		return models.NewsArticle{}, fmt.Errorf("store match report: %w", err)
	}

	log.Ctx(ctx).Info().Str("match_id", match.ID).Str("article_id", rec.ID).Msg("Match report drafted")
	return dataclient.Decode[models.NewsArticle](rec)
}

func reportPrompt(timeline Timeline) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write a short club website match report for %s v %s.\n", timeline.HomeTeamName, timeline.AwayTeamName)
	fmt.Fprintf(&sb, "Final score: %s %d, %s %d. Match status: %s.\n", timeline.HomeTeamName, timeline.HomeScore, timeline.AwayTeamName, timeline.AwayScore, timeline.Status)
	if len(timeline.Entries) > 0 {
		sb.WriteString("Key events:\n")
	}
	for _, entry := range timeline.Entries {
		team := "neutral"
		switch entry.Side {
		case models.SideHome:
			team = timeline.HomeTeamName
		case models.SideAway:
			team = timeline.AwayTeamName
		}
		fmt.Fprintf(&sb, "- %d' %s (%s)", entry.Minute, entry.Kind, team)
		if entry.Player != "" {
			fmt.Fprintf(&sb, " by %s", entry.Player)
		}
		if entry.Note != "" {
			fmt.Fprintf(&sb, ": %s", entry.Note)
		}
		fmt.Fprintf(&sb, " [%d-%d]\n", entry.HomeScore, entry.AwayScore)
	}
	sb.WriteString("Return a headline and a two or three paragraph summary. Do not invent events.")
	return sb.String()
}
