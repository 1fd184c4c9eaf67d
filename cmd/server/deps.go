// cmd/server/deps.go
package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Clubhouse/internal/compliance"
	"github.com/codr1/Clubhouse/internal/config"
	"github.com/codr1/Clubhouse/internal/dataclient"
	"github.com/codr1/Clubhouse/internal/db"
	"github.com/codr1/Clubhouse/internal/email"
	"github.com/codr1/Clubhouse/internal/exports"
	"github.com/codr1/Clubhouse/internal/livecache"
	"github.com/codr1/Clubhouse/internal/livematch"
	"github.com/codr1/Clubhouse/internal/llm"
	"github.com/codr1/Clubhouse/internal/ratelimit"
	"github.com/codr1/Clubhouse/internal/tournaments"
)

type dependencies struct {
	db          *db.DB
	data        dataclient.Client
	cache       *livecache.Cache
	limiter     *ratelimit.Limiter
	compliance  *compliance.Service
	tournaments *tournaments.Service
	matches     *livematch.Service
	closeOnce   sync.Once
}

func newDependencies(ctx context.Context, cfg *config.Config) (*dependencies, error) {
	database, err := db.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	deps := &dependencies{db: database}

	store, err := dataclient.NewStore(database)
	if err != nil {
		deps.Close()
		return nil, err
	}
	deps.data = store

	var sender email.EmailSender = email.LogSender{}
	if cfg.EmailEnabled() {
		ses, err := email.NewSESClient(cfg.Email.AccessKeyID, cfg.Email.SecretAccessKey, cfg.Email.Region, cfg.Email.Sender)
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("init ses: %w", err)
		}
		sender = ses
	} else {
		log.Warn().Msg("SES credentials not configured; emails will be logged only")
	}

	sink, err := exports.NewSink(ctx, cfg.Exports)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("init export sink: %w", err)
	}

	var cache livematch.Cache
	if cfg.LiveCache.RedisURL != "" {
		deps.cache, err = livecache.New(ctx, cfg.LiveCache.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("Live cache unavailable; timelines will be rendered per request")
		} else {
			cache = deps.cache
		}
	}

	var invoker llm.Invoker
	if cfg.LLMEnabled() {
		invoker = llm.NewClient(cfg.LLM.Endpoint, cfg.LLM.Model, cfg.LLM.APIKey)
	}

	deps.limiter = ratelimit.New(&ratelimit.Config{Cooldown: 5 * time.Minute, MaxPerHour: 4})
	deps.compliance = compliance.NewService(store, compliance.ServiceConfig{
		Sender:           sender,
		Sink:             sink,
		Limiter:          deps.limiter,
		ReminderCooldown: time.Duration(cfg.Email.ReminderCooldownHours) * time.Hour,
	})
	deps.tournaments = tournaments.NewService(store)
	deps.matches = livematch.NewService(store, cache, invoker)

	log.Info().
		Bool("email", cfg.EmailEnabled()).
		Bool("llm", cfg.LLMEnabled()).
		Bool("live_cache", cache != nil).
		Str("export_sink", cfg.Exports.Sink).
		Msg("Dependencies initialized")
	return deps, nil
}

func (d *dependencies) Close() {
	d.closeOnce.Do(func() {
		if d.limiter != nil {
			d.limiter.Close()
		}
		if d.cache != nil {
			if err := d.cache.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close live cache")
			}
		}
		if d.db != nil {
			if err := d.db.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close database")
			}
		}
	})
}
