package compliance

import (
	"time"

	"github.com/codr1/Clubhouse/internal/metrics"
	"github.com/codr1/Clubhouse/internal/models"
)

type MemberReport struct {
	MemberID   string  `json:"member_id"`
	MemberName string  `json:"member_name"`
	Issues     []Issue `json:"issues"`
}

func (r MemberReport) Compliant() bool {
	return len(r.Issues) == 0
}

func (r MemberReport) ErrorCount() int {
	count := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			count++
		}
	}
	return count
}

type ClubReport struct {
	ClubID          string         `json:"club_id"`
	SportType       string         `json:"sport_type"`
	GeneratedAt     time.Time      `json:"generated_at"`
	Members         []MemberReport `json:"members"`
	TotalMembers    int            `json:"total_members"`
	CompliantCount  int            `json:"compliant_count"`
	ErrorCount      int            `json:"error_count"`
	WarningCount    int            `json:"warning_count"`
	DataHealthScore int            `json:"data_health_score"`
}

// EvaluateClub evaluates every member and summarises the results.
func EvaluateClub(clubID string, members []models.Member, sportType string, asOf time.Time) ClubReport {
	report := ClubReport{
		ClubID:       clubID,
		SportType:    sportType,
		GeneratedAt:  asOf,
		Members:      make([]MemberReport, 0, len(members)),
		TotalMembers: len(members),
	}

	for _, member := range members {
		issues := Evaluate(member, sportType, asOf)
		metrics.ComplianceEvaluations.Inc()
		for _, issue := range issues {
			metrics.ComplianceIssues.WithLabelValues(string(issue.Severity)).Inc()
			if issue.Severity == SeverityError {
				report.ErrorCount++
			} else {
				report.WarningCount++
			}
		}
		if len(issues) == 0 {
			report.CompliantCount++
		}
		report.Members = append(report.Members, MemberReport{
			MemberID:   member.ID,
			MemberName: member.FullName(),
			Issues:     issues,
		})
	}

	report.DataHealthScore = HealthScore(report.Members)
	if clubID != "" {
		metrics.ClubHealthScore.WithLabelValues(clubID).Set(float64(report.DataHealthScore))
	}
	return report
}

// NonCompliant returns the member reports with at least one issue.
func (r ClubReport) NonCompliant() []MemberReport {
	out := make([]MemberReport, 0, len(r.Members)-r.CompliantCount)
	for _, member := range r.Members {
		if !member.Compliant() {
			out = append(out, member)
		}
	}
	return out
}
