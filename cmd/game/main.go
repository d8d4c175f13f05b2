package main

import (
	"errors"
	"flag"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/Echo-Arena/internal/app"
	"github.com/Garsondee/Echo-Arena/internal/render"
)

func main() {
	cfgPath := flag.String("config", "echo_arena.yaml", "optional YAML settings file")
	flag.Parse()

	hud := render.NewHUD(render.NewFeedLog())
	a, err := app.Bootstrap(app.Options{
		ConfigPath: *cfgPath,
		Presenter:  hud,
		LogOutput:  os.Stderr,
	})
	if err != nil {
		fallback, _ := app.NewLogger(os.Stderr, "info")
		fallback.Fatal().Err(err).Msg("startup failed")
	}
	defer a.Close()

	g, err := render.NewGame(render.Options{Session: a.Session, HUD: hud, Log: a.Log})
	if err != nil {
		a.Log.Fatal().Err(err).Msg("build frontend")
	}
	w, h := g.Layout(0, 0)
	scale := a.Config.Window.Scale
	ebiten.SetWindowTitle(a.Config.Window.Title)
	ebiten.SetWindowSize(int(float64(w)*scale), int(float64(h)*scale))
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		a.Log.Error().Err(err).Msg("game loop")
		_ = a.Close()
		os.Exit(1)
	}
}
