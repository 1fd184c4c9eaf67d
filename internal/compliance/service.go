package compliance

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Clubhouse/internal/dataclient"
	"github.com/codr1/Clubhouse/internal/email"
	"github.com/codr1/Clubhouse/internal/exports"
	"github.com/codr1/Clubhouse/internal/models"
	"github.com/codr1/Clubhouse/internal/ratelimit"
)

var ErrRateLimited = errors.New("reminders were sent recently")

// Service loads club data and runs evaluations, exports and reminder emails.
type Service struct {
	data     dataclient.Client
	sender   email.EmailSender
	sink     exports.Sink
	limiter  *ratelimit.Limiter
	cooldown time.Duration
	now      func() time.Time
}

type ServiceConfig struct {
	Sender           email.EmailSender
	Sink             exports.Sink
	Limiter          *ratelimit.Limiter
	ReminderCooldown time.Duration
}

func NewService(data dataclient.Client, cfg ServiceConfig) *Service {
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = ratelimit.New(nil)
	}
	return &Service{
		data:     data,
		sender:   cfg.Sender,
		sink:     cfg.Sink,
		limiter:  limiter,
		cooldown: cfg.ReminderCooldown,
		now:      time.Now,
	}
}

type ExportResult struct {
	Key      string     `json:"key"`
	Location string     `json:"location"`
	Report   ClubReport `json:"report"`
}

type ReminderSummary struct {
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
	Cooldown  int `json:"skipped_cooldown"`
	NoAddress int `json:"skipped_no_address"`
}

// Report evaluates every member of the club.
func (s *Service) Report(ctx context.Context, clubID string) (models.Club, ClubReport, error) {
	club, err := dataclient.Get[models.Club](ctx, s.data, models.EntityClub, clubID)
	if err != nil {
		return models.Club{}, ClubReport{}, fmt.Errorf("load club %s: %w", clubID, err)
	}
	members, err := s.members(ctx, clubID)
	if err != nil {
		return models.Club{}, ClubReport{}, err
	}
	return club, EvaluateClub(clubID, members, club.SportType, s.now()), nil
}

// Export writes the club report as CSV to the export sink.
func (s *Service) Export(ctx context.Context, clubID string) (ExportResult, error) {
	if s.sink == nil {
		return ExportResult{}, errors.New("no export sink configured")
	}
	club, report, err := s.Report(ctx, clubID)
	if err != nil {
		return ExportResult{}, err
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, report); err != nil {
		return ExportResult{}, fmt.Errorf("render export: %w", err)
	}
	key := exports.ComplianceKey(club.Name, club.ID, report.GeneratedAt)
	location, err := s.sink.Put(ctx, key, "text/csv", &buf)
	if err != nil {
		return ExportResult{}, err
	}

	log.Ctx(ctx).Info().
		Str("club_id", clubID).
		Str("key", key).
		Int("data_health_score", report.DataHealthScore).
		Msg("Compliance export stored")
	return ExportResult{Key: key, Location: location, Report: report}, nil
}

// SendReminders emails each non-compliant member, or the guardian of a minor,
// the list of missing details. Members reminded within the cooldown are skipped.
// A reminder only starts the cooldown once the email has been delivered.
func (s *Service) SendReminders(ctx context.Context, clubID string) (ReminderSummary, error) {
	logger := log.Ctx(ctx)
	var summary ReminderSummary
	if s.sender == nil {
		return summary, errors.New("no email sender configured")
	}

	if result := s.limiter.Allow("reminders:" + clubID); !result.Allowed {
		ratelimit.LogRateLimitExceeded(ctx, "compliance_reminders", clubID, result)
		return summary, fmt.Errorf("%w: retry in %s", ErrRateLimited, result.RetryAfter.Round(time.Second))
	}

	club, err := dataclient.Get[models.Club](ctx, s.data, models.EntityClub, clubID)
	if err != nil {
		return summary, fmt.Errorf("load club %s: %w", clubID, err)
	}
	members, err := s.members(ctx, clubID)
	if err != nil {
		return summary, err
	}
	logs, err := dataclient.FilterAs[models.ReminderLog](ctx, s.data, models.EntityReminderLog, dataclient.Query{"club_id": clubID})
	if err != nil {
		return summary, fmt.Errorf("load reminder log: %w", err)
	}

	now := s.now()
	lastSent := make(map[string]models.ReminderLog, len(logs))
	for _, entry := range logs {
		lastSent[entry.MemberID] = entry
	}
	byID := make(map[string]models.Member, len(members))
	for _, member := range members {
		byID[member.ID] = member
	}

	type pendingReminder struct {
		memberID  string
		recipient string
		done      chan error
	}
	var pending []pendingReminder

	for _, member := range members {
		issues := Evaluate(member, club.SportType, now)
		if len(issues) == 0 {
			continue
		}
		if entry, ok := lastSent[member.ID]; ok && s.withinCooldown(entry, now) {
			summary.Cooldown++
			continue
		}

		recipient, forGuardian := reminderRecipient(member, byID, now)
		if recipient == "" {
			summary.NoAddress++
			continue
		}

		items := make([]string, 0, len(issues))
		for _, issue := range issues {
			items = append(items, issue.Message)
		}
		msg := email.BuildComplianceReminder(email.ReminderDetails{
			ClubName:     club.Name,
			MemberName:   member.FullName(),
			ForGuardian:  forGuardian,
			MissingItems: items,
		})
		done := make(chan error, 1)
		email.SendAsync(ctx, s.sender, recipient, email.KindComplianceReminder, msg, done)
		pending = append(pending, pendingReminder{memberID: member.ID, recipient: recipient, done: done})
	}

	for _, p := range pending {
		if err := <-p.done; err != nil {
			summary.Failed++
			logger.Warn().
				Err(err).
				Str("member_id", p.memberID).
				Str("recipient", ratelimit.SanitizeEmail(p.recipient)).
				Msg("Compliance reminder not delivered")
			continue
		}
		summary.Sent++
		if err := s.recordReminder(ctx, clubID, p.memberID, lastSent, now); err != nil {
			logger.Error().Err(err).Str("member_id", p.memberID).Msg("Failed to record reminder")
		}
	}

	logger.Info().
		Str("club_id", clubID).
		Int("sent", summary.Sent).
		Int("failed", summary.Failed).
		Int("skipped_cooldown", summary.Cooldown).
		Int("skipped_no_address", summary.NoAddress).
		Msg("Compliance reminders processed")
	return summary, nil
}

// RunDigest exports every club's report and emails the club contact a summary.
// A failure for one club does not stop the others.
func (s *Service) RunDigest(ctx context.Context) error {
	clubs, err := dataclient.FilterAs[models.Club](ctx, s.data, models.EntityClub, nil)
	if err != nil {
		return fmt.Errorf("load clubs: %w", err)
	}

	var errs []error
	for _, club := range clubs {
		if !club.Settings.ComplianceDigest || club.ContactEmail == "" {
			continue
		}
		result, err := s.Export(ctx, club.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("club %s: %w", club.ID, err))
			continue
		}
		if s.sender == nil {
			continue
		}
		report := result.Report
		msg := email.BuildComplianceDigest(email.DigestDetails{
			ClubName:        club.Name,
			Date:            report.GeneratedAt.Format("2006-01-02"),
			TotalMembers:    report.TotalMembers,
			CompliantCount:  report.CompliantCount,
			ErrorCount:      report.ErrorCount,
			WarningCount:    report.WarningCount,
			DataHealthScore: report.DataHealthScore,
			ExportLocation:  result.Key,
		})
		if err := email.Deliver(ctx, s.sender, club.ContactEmail, email.KindComplianceDigest, msg); err != nil {
			errs = append(errs, fmt.Errorf("club %s digest email: %w", club.ID, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Service) members(ctx context.Context, clubID string) ([]models.Member, error) {
	members, err := dataclient.FilterAs[models.Member](ctx, s.data, models.EntityMember, dataclient.Query{"club_id": clubID})
	if err != nil {
		return nil, fmt.Errorf("load members for club %s: %w", clubID, err)
	}
	return members, nil
}

func (s *Service) withinCooldown(entry models.ReminderLog, now time.Time) bool {
	sentAt, err := time.Parse(time.RFC3339, entry.SentAt)
	if err != nil {
		return false
	}
	return now.Sub(sentAt) < s.cooldown
}

func (s *Service) recordReminder(ctx context.Context, clubID, memberID string, existing map[string]models.ReminderLog, now time.Time) error {
	sentAt := now.UTC().Format(time.RFC3339)
	if entry, ok := existing[memberID]; ok {
		_, err := s.data.Update(ctx, models.EntityReminderLog, entry.ID, map[string]any{"sent_at": sentAt})
		return err
	}
	_, err := s.data.Create(ctx, models.EntityReminderLog, models.ReminderLog{
		ClubID:   clubID,
		MemberID: memberID,
		SentAt:   sentAt,
	})
	return err
}

// reminderRecipient picks the guardian's address for minors with a linked
// guardian, falling back to the member's own address.
func reminderRecipient(member models.Member, byID map[string]models.Member, now time.Time) (string, bool) {
	if IsMinor(member, now) && member.GuardianID != "" {
		if guardian, ok := byID[member.GuardianID]; ok && guardian.Email != "" {
			return guardian.Email, true
		}
	}
	return member.Email, false
}
