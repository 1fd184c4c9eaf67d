package scheduler

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Clubhouse/internal/compliance"
	"github.com/codr1/Clubhouse/internal/tournaments"
)

const (
	ComplianceDigestJob = "compliance_digest"
	StandingsRefreshJob = "standings_refresh"
)

// RegisterComplianceDigest schedules the weekly compliance export and digest email.
func RegisterComplianceDigest(cronExpr string, svc *compliance.Service) error {
	if svc == nil {
		return fmt.Errorf("compliance digest job requires the compliance service")
	}
	_, err := AddJob(ComplianceDigestJob, cronExpr, svc.RunDigest)
	return err
}

// RegisterStandingsRefresh schedules a consistency pass that rewrites any
// stored standings that no longer match their fixtures.
func RegisterStandingsRefresh(cronExpr string, svc *tournaments.Service) error {
	if svc == nil {
		return fmt.Errorf("standings refresh job requires the tournament service")
	}
	_, err := AddJob(StandingsRefreshJob, cronExpr, func(ctx context.Context) error {
		updated, err := svc.RefreshActive(ctx)
		if updated > 0 {
			log.Ctx(ctx).Info().Int("updated", updated).Msg("Stale standings rewritten")
		}
		return err
	})
	return err
}
