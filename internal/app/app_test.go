package app

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Garsondee/Echo-Arena/internal/config"
	"github.com/Garsondee/Echo-Arena/internal/game"
	"github.com/Garsondee/Echo-Arena/internal/mutator"
	"github.com/Garsondee/Echo-Arena/internal/store"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func quietEnv(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvAudio, "false")
	t.Setenv(config.EnvSeed, "7")
	t.Setenv(config.EnvProfile, "")
	t.Setenv(config.EnvPassword, "")
}

func TestLoadConfig_Layering(t *testing.T) {
	quietEnv(t)
	dir := t.TempDir()
	yml := writeFile(t, dir, "arena.yaml", "arena:\n  width: 500\n  height: 400\nlog_level: debug\n")
	env := writeFile(t, dir, "test.env", "ECHO_ARENA_VOLUME=0.25\n")
	t.Setenv(config.EnvVolume, "")
	os.Unsetenv(config.EnvVolume)

	cfg, err := LoadConfig(yml, env)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Arena.Width != 500 || cfg.LogLevel != "debug" {
		t.Fatalf("yaml not applied: %+v", cfg)
	}
	if cfg.Audio.Volume != 0.25 {
		t.Fatalf("volume = %v, want .env value", cfg.Audio.Volume)
	}
	if cfg.Seed != 7 || cfg.Audio.Enabled {
		t.Fatalf("env not applied: seed %d audio %v", cfg.Seed, cfg.Audio.Enabled)
	}
}

func TestLoadConfig_RejectsInvalid(t *testing.T) {
	quietEnv(t)
	yml := writeFile(t, t.TempDir(), "bad.yaml", "arena:\n  width: 10\n")
	if _, err := LoadConfig(yml, filepath.Join(t.TempDir(), "none.env")); err == nil {
		t.Fatal("tiny arena accepted")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(&buf, "warn")
	if err != nil {
		t.Fatal(err)
	}
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("level not honoured: %q", buf.String())
	}
	if _, err := NewLogger(&buf, "loud"); err == nil {
		t.Fatal("bad level accepted")
	}
}

func TestApplyMutators(t *testing.T) {
	reg := mutator.NewRegistry(nil, store.NewView(store.NewMemory(), "ns"))
	err := ApplyMutators(reg, []config.MutatorOverride{{Name: "LOWG", Speed: 2, Time: 1, Enemy: 0.5}})
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range reg.Presets() {
		if p.Kind == mutator.LowGravity && (p.Speed != 2 || p.Enemy != 0.5) {
			t.Fatalf("override not applied: %+v", p)
		}
	}
	if err := ApplyMutators(reg, []config.MutatorOverride{{Name: "gravity", Speed: 1, Time: 1, Enemy: 1}}); err == nil {
		t.Fatal("unknown mutator accepted")
	}
}

func TestBootstrap_WiresProfileAndSim(t *testing.T) {
	quietEnv(t)
	t.Setenv(config.EnvProfile, "dee")
	backend := store.NewMemory()
	var logs bytes.Buffer
	a, err := Bootstrap(Options{
		EnvFiles:  []string{filepath.Join(t.TempDir(), "none.env")},
		Presenter: &game.RecordingPresenter{},
		LogOutput: &logs,
		Backend:   backend,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	if a.Session.Profile() != "dee" {
		t.Fatalf("profile = %q", a.Session.Profile())
	}
	if w, h := a.Sim.Size(); w != 960 || h != 600 {
		t.Fatalf("arena = %vx%v", w, h)
	}
	a.Sim.Start()
	a.Sim.Step(game.FixedStep, game.Input{})
	if a.Sim.State() != game.RunRunning {
		t.Fatalf("state = %s", a.Sim.State())
	}
	if !strings.Contains(logs.String(), "arena ready") {
		t.Fatalf("missing ready log: %q", logs.String())
	}
	if ok, err := a.Profiles.Registered("dee"); !ok || err != nil {
		t.Fatalf("configured profile not registered: %v %v", ok, err)
	}
}

func TestLoginConfigured(t *testing.T) {
	p := store.NewProfiles(store.NewMemory(), "")
	p.SetHashCost(4)
	if err := loginConfigured(p, "ada", "pw", zerolog.Nop()); err != nil {
		t.Fatalf("first use: %v", err)
	}
	if err := p.Logout(); err != nil {
		t.Fatal(err)
	}
	if err := loginConfigured(p, "ada", "pw", zerolog.Nop()); err != nil {
		t.Fatalf("second use: %v", err)
	}
	if err := loginConfigured(p, "ada", "nope", zerolog.Nop()); !errors.Is(err, store.ErrBadPassword) {
		t.Fatalf("wrong password = %v", err)
	}
}
