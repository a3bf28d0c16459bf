package cmd

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/logiprep/internal/assembly"
	"github.com/abhisek/logiprep/internal/cache"
	"github.com/abhisek/logiprep/internal/config"
	"github.com/abhisek/logiprep/internal/event"
	"github.com/abhisek/logiprep/internal/logging"
	"github.com/abhisek/logiprep/internal/session"
	"github.com/abhisek/logiprep/internal/store"
	"github.com/abhisek/logiprep/internal/store/pgstore"
)

// deps is everything a command needs, built once from configuration.
type deps struct {
	cfg    *config.Config
	logger *slog.Logger
	repo   store.Repository

	// source is the repo, behind the Redis cache when one is configured.
	source assembly.Source
	cache  *cache.Source

	recorders session.MultiRecorder
	answers   session.MultiAnswerRecorder

	closers []func() error
}

// openDeps loads configuration, opens the store and connects the optional
// cache and event broker. Optional integrations that fail to connect are
// logged and skipped.
func openDeps(cmd *cobra.Command) (*deps, error) {
	ctx := cmdContext(cmd)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.New(cfg.Log, cmd.ErrOrStderr())
	slog.SetDefault(logger)

	d := &deps{cfg: cfg, logger: logger}

	switch cfg.Store.Driver {
	case config.DriverPostgres:
		st, err := pgstore.Open(ctx, cfg.Store.DatabaseURL, cfg.Store.MaxConns)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		d.repo = st
	default:
		dbPath, err := resolveDBPath(cmd, cfg)
		if err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		d.repo = st
	}
	d.closers = append(d.closers, d.repo.Close)
	d.source = d.repo
	d.recorders = session.MultiRecorder{d.repo}
	d.answers = session.MultiAnswerRecorder{d.repo}

	if cfg.CacheEnabled() {
		client, err := cache.Dial(ctx, cfg.Cache.URL)
		if err != nil {
			logger.Warn("question cache not available, reading from the store", "error", err)
		} else {
			d.cache = cache.New(d.repo, client, cfg.Cache.TTL, logger)
			d.source = d.cache
			d.closers = append(d.closers, client.Close)
		}
	}

	if cfg.EventsEnabled() {
		pub, err := event.Dial(cfg.Events.URL, cfg.Events.Exchange, logger)
		if err != nil {
			logger.Warn("event broker not available, session events will not be published", "error", err)
		} else {
			d.recorders = append(d.recorders, pub)
			if cfg.Events.Answers {
				d.answers = append(d.answers, pub)
			}
			d.closers = append(d.closers, pub.Close)
		}
	}

	return d, nil
}

// Close releases connections in reverse order of opening.
func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			d.logger.Warn("close failed", "error", err)
		}
	}
}

// rng returns the sampling source, seeded from config or the clock.
func (d *deps) rng() *rand.Rand {
	seed := d.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func (d *deps) assembler() *assembly.Assembler {
	return assembly.New(d.source, d.rng(), d.logger)
}
