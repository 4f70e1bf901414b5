package flappy

import (
	"fmt"
	"math"

	"github.com/vovakirdan/ghostflap/internal/core"
)

// Visual characters for rendering
const (
	PlayerChar    = '▶'
	PlayerBody    = '●'
	GhostChar     = '▷'
	GhostBody     = '○'
	PipeChar      = '█'
	PipeCapTop    = '▄'
	PipeCapBottom = '▀'
	GroundFill    = '█'
)

// variantColors tints actors by their recorded visual variant.
var variantColors = []core.Color{
	core.ColorBrightYellow,
	core.ColorBrightRed,
	core.ColorBrightCyan,
	core.ColorBrightMagenta,
	core.ColorBrightGreen,
}

// groundStyles is indexed by ground type; glyphs by variation.
var groundStyles = []struct {
	color  core.Color
	glyphs []rune
}{
	{core.ColorGreen, []rune{'▁', '▂', '▃', '▄'}},
	{core.ColorBrightWhite, []rune{'░', '▒', '▓', '█'}},
}

// Render draws the current session state to the screen.
func (s *Session) Render(dst *core.Screen) {
	dst.Clear()

	s.drawGround(dst)

	width := int(s.field.Width())
	for _, o := range s.field.obstacles {
		s.drawObstacle(dst, o, width)
	}

	// Ghosts first so the live actor stays on top.
	for i := len(s.actors) - 1; i >= 0; i-- {
		s.drawActor(dst, s.actors[i])
	}

	hud := fmt.Sprintf(" %d/%d ", s.score, s.high.Value())
	dst.DrawText(1, 0, hud)
	if s.mode != ModeLive {
		label := fmt.Sprintf(" %s ", s.mode)
		dst.DrawTextColored(dst.Width()-len(label)-1, 0, label, core.ColorGray)
	}

	if s.paused {
		drawCenteredMessage(dst, "PAUSED", "Press P to resume")
	}
}

func (s *Session) drawGround(dst *core.Screen) {
	top := int(s.band.GroundTop)
	for _, t := range s.ground.tiles {
		style := groundStyles[t.Type%len(groundStyles)]
		glyph := style.glyphs[t.Variation%len(style.glyphs)]
		x0 := int(math.Floor(t.X))
		for dx := 0; dx < int(s.ground.tileWidth); dx++ {
			dst.SetColored(x0+dx, top, glyph, style.color)
			for y := top + 1; y < dst.Height(); y++ {
				dst.SetColored(x0+dx, y, GroundFill, style.color)
			}
		}
	}
}

// drawObstacle renders both pillars with their caps facing the opening.
func (s *Session) drawObstacle(dst *core.Screen, o Obstacle, width int) {
	x0 := int(math.Floor(o.X))
	topEdge := int(math.Ceil(o.Top))
	bottomEdge := int(math.Floor(o.Bottom))
	groundTop := int(s.band.GroundTop)
	caps := s.cfg.Obstacles.CapHeight

	for x := x0; x < x0+width; x++ {
		for y := 0; y < topEdge; y++ {
			glyph := PipeChar
			if y >= topEdge-caps {
				glyph = PipeCapTop
			}
			dst.SetColored(x, y, glyph, o.Color)
		}
		for y := bottomEdge; y < groundTop; y++ {
			glyph := PipeChar
			if y < bottomEdge+caps {
				glyph = PipeCapBottom
			}
			dst.SetColored(x, y, glyph, o.Color)
		}
	}
}

func (s *Session) drawActor(dst *core.Screen, a *Actor) {
	if a.Crashed && !a.Primary() {
		return
	}
	head, body := PlayerChar, PlayerBody
	color := variantColors[a.Variant%len(variantColors)]
	if !a.Primary() || s.mode == ModeGhost {
		head, body = GhostChar, GhostBody
	}
	x0, y0 := int(math.Floor(a.X)), int(math.Floor(a.Y))
	w, h := s.cfg.Player.Width, s.cfg.Player.Height
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			glyph := body
			if dx == w-1 && dy == 0 {
				glyph = head
			}
			dst.SetColored(x0+dx, y0+dy, glyph, color)
		}
	}
}

// drawCenteredMessage draws a message box in the center of the screen.
func drawCenteredMessage(dst *core.Screen, title, subtitle string) {
	w := dst.Width()
	h := dst.Height()

	boxW := max(len(title), len(subtitle)) + 4
	boxH := 5
	boxX := (w - boxW) / 2
	boxY := (h - boxH) / 2

	dst.DrawRect(core.NewRect(boxX, boxY, boxW, boxH), ' ')
	dst.DrawBox(core.NewRect(boxX, boxY, boxW, boxH))

	dst.DrawText(boxX+(boxW-len(title))/2, boxY+1, title)
	dst.DrawText(boxX+(boxW-len(subtitle))/2, boxY+3, subtitle)
}
