package morph

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// RunConfig configures Run.
type RunConfig struct {
	Title         string
	Width, Height int
	// ClearColor fills the screen before the stage is drawn. The zero value
	// leaves the screen as ebiten cleared it.
	ClearColor Color
	// ShowFPS prints the current FPS and TPS in the top-left corner.
	ShowFPS bool
	// Update, if set, runs once per tick before the stage advances its
	// animators. A non-nil error stops the game.
	Update func() error
}

// Run opens a window and drives stage until the window is closed or
// cfg.Update returns an error. It blocks the calling goroutine, which must
// be the main goroutine.
func Run(stage *Stage, cfg RunConfig) error {
	g := newGame(stage, cfg)
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(g.cfg.Width, g.cfg.Height)
	return ebiten.RunGame(g)
}

// game adapts a Stage to ebiten.Game.
type game struct {
	stage *Stage
	cfg   RunConfig
}

func newGame(stage *Stage, cfg RunConfig) *game {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		f := stage.Root().Frame()
		cfg.Width, cfg.Height = int(f.Width), int(f.Height)
	}
	return &game{stage: stage, cfg: cfg}
}

func (g *game) Update() error {
	if g.cfg.Update != nil {
		if err := g.cfg.Update(); err != nil {
			return err
		}
	}
	g.stage.Update()
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.cfg.ClearColor.A > 0 {
		screen.Fill(g.cfg.ClearColor.nrgba())
	}
	g.stage.Draw(screen)
	if g.cfg.ShowFPS {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
}

func (g *game) Layout(int, int) (int, int) {
	return g.cfg.Width, g.cfg.Height
}
