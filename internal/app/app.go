// Package app assembles the runtime graph shared by the interactive binaries:
// config, logger, progress store, catalog, mutators, audio, sim and session.
package app

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/Garsondee/Echo-Arena/internal/audio"
	"github.com/Garsondee/Echo-Arena/internal/catalog"
	"github.com/Garsondee/Echo-Arena/internal/config"
	"github.com/Garsondee/Echo-Arena/internal/game"
	"github.com/Garsondee/Echo-Arena/internal/mutator"
	"github.com/Garsondee/Echo-Arena/internal/session"
	"github.com/Garsondee/Echo-Arena/internal/store"
)

// App owns everything Bootstrap opened. Close releases it.
type App struct {
	Config   config.Config
	Log      zerolog.Logger
	Backend  store.Backend
	Profiles *store.Profiles
	Catalog  *catalog.Catalog
	Mutators *mutator.Registry
	Synth    *audio.Synth
	Sim      *game.Sim
	Session  *session.Session
}

// Options configure Bootstrap.
type Options struct {
	// ConfigPath is an optional YAML file. Missing files fall back to defaults.
	ConfigPath string
	// EnvFiles are loaded before ECHO_ARENA_* overrides; nil means ".env".
	EnvFiles []string
	// Presenter receives sim output; it is the frontend's HUD or status bar.
	Presenter game.Presenter
	// LogOutput receives log lines. Frontends that own the terminal point it
	// at a file or io.Discard.
	LogOutput io.Writer
	// Backend overrides the SQLite store, mainly for tests.
	Backend store.Backend
}

// LoadConfig resolves settings: defaults, then the YAML file, then .env and
// the environment. The result is validated.
func LoadConfig(path string, envFiles ...string) (config.Config, error) {
	if err := config.LoadDotEnv(envFiles...); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, fmt.Errorf("environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// NewLogger returns a console logger at level.
func NewLogger(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level: %w", err)
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}

// ApplyMutators applies config overrides to reg. Unknown names are errors.
func ApplyMutators(reg *mutator.Registry, overrides []config.MutatorOverride) error {
	var errs []error
	for _, o := range overrides {
		k, err := mutator.ParseKind(o.Name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !reg.Override(k, o.Speed, o.Time, o.Enemy) {
			errs = append(errs, fmt.Errorf("mutator %q is not registered", o.Name))
		}
	}
	return errors.Join(errs...)
}

// loginConfigured signs in the profile named by the config, registering it on
// first use.
func loginConfigured(p *store.Profiles, name, password string, log zerolog.Logger) error {
	err := p.Login(name, password)
	if errors.Is(err, store.ErrUnknownUser) {
		log.Info().Str("profile", name).Msg("registering configured profile")
		err = p.Register(name, password)
	}
	if err != nil {
		return fmt.Errorf("login %q: %w", name, err)
	}
	return nil
}

// Bootstrap builds the runtime graph. On error everything opened so far is
// closed.
func Bootstrap(o Options) (a *App, err error) {
	cfg, err := LoadConfig(o.ConfigPath, o.EnvFiles...)
	if err != nil {
		return nil, err
	}
	if o.LogOutput == nil {
		o.LogOutput = io.Discard
	}
	log, err := NewLogger(o.LogOutput, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	a = &App{Config: cfg, Log: log, Backend: o.Backend}
	if a.Backend == nil {
		db, err := store.OpenSQLite(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		a.Backend = db
	}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	a.Profiles = store.NewProfiles(a.Backend, "")
	if cfg.Profile != "" {
		if err := loginConfigured(a.Profiles, cfg.Profile, cfg.Password, log); err != nil {
			return nil, err
		}
	}
	view, err := a.Profiles.Active()
	if err != nil {
		return nil, fmt.Errorf("active profile: %w", err)
	}
	if a.Catalog, err = catalog.New(view); err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	a.Mutators = mutator.NewRegistry(nil, view)
	if err := ApplyMutators(a.Mutators, cfg.Mutators); err != nil {
		return nil, err
	}

	a.Synth = audio.NewSynth(cfg.Audio.Volume, cfg.Audio.Enabled)
	if cfg.Audio.Enabled {
		if err := a.Synth.Start(); err != nil {
			log.Warn().Err(err).Msg("audio unavailable, continuing silent")
		}
	}

	deps := game.Deps{
		Store:     view,
		Catalog:   a.Catalog,
		Mutators:  a.Mutators,
		Presenter: o.Presenter,
		Audio:     a.Synth,
		Log:       &a.Log,
		SimLog:    game.NewSimLog(false),
		Width:     cfg.Arena.Width,
		Height:    cfg.Arena.Height,
	}
	// A fixed seed replays the same spawns; 0 leaves the sim on the clock.
	if cfg.Seed != 0 {
		deps.SpawnRand = rand.New(rand.NewSource(cfg.Seed))   // #nosec G404 -- gameplay randomness
		deps.RollRand = rand.New(rand.NewSource(cfg.Seed + 1)) // #nosec G404 -- gameplay randomness
	}
	if a.Sim, err = game.New(deps); err != nil {
		return nil, fmt.Errorf("build sim: %w", err)
	}

	a.Session, err = session.New(session.Options{
		Sim:      a.Sim,
		Profiles: a.Profiles,
		Catalog:  a.Catalog,
		Mixer:    a.Synth,
		Log:      log,
	})
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("profile", a.Session.Profile()).
		Int64("seed", cfg.Seed).
		Str("db", cfg.DBPath).
		Msg("arena ready")
	return a, nil
}

// Close stops audio and closes the store.
func (a *App) Close() error {
	if a.Sim != nil {
		a.Sim.Stop()
	}
	if a.Synth != nil {
		a.Synth.Stop()
	}
	if a.Backend != nil {
		return a.Backend.Close()
	}
	return nil
}
