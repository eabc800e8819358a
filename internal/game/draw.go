package game

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/iburimskiy/stillwave/internal/burn"
	"github.com/iburimskiy/stillwave/internal/choreo"
	"github.com/iburimskiy/stillwave/internal/motion"
)

var (
	frameColor  = color.RGBA{R: 20, G: 25, B: 35, A: 200}
	borderColor = color.RGBA{R: 60, G: 70, B: 90, A: 255}
	regionBase  = color.NRGBA{R: 147, G: 187, B: 237, A: 255}
)

func (g *Game) Draw(screen *ebiten.Image) {
	now := g.clock.Now()
	g.drawBackground(screen)

	if g.journey != nil {
		g.drawBurnFrame(screen, now)
		if g.inputStack.Visible() && g.journey.State() == choreo.JourneyReady {
			g.drawButton(screen, &g.burnButton)
		}
	}
	g.drawGlow(screen, now)
	g.drawFigure(screen, now)
	g.drawSphere(screen, now)
	g.drawTitle(screen, g.title, float64(g.height)*0.18, now)
	g.drawTitle(screen, g.phaseTitle, float64(g.height)*0.86, now)
	if g.finished {
		g.drawFinish(screen)
	}
	g.drawButton(screen, &g.audioButton)

	ebitenutil.DebugPrintAt(screen, g.status(), 12, 12)
}

func (g *Game) status() string {
	var status string
	switch {
	case g.finished:
		status = "Enter: begin again, Esc: quit"
	case g.journey != nil && g.journey.State() == choreo.JourneyReady:
		status = "Type, then Enter to burn. Shift+Enter: new line, Ctrl+O: ambient sound, Esc: quit"
	case g.cfg.ReducedMotion && g.breathing.Started() && !g.completed:
		status = "Breathe at your own pace. Enter: continue, Esc: quit"
	default:
		status = "Ctrl+O: ambient sound, Ctrl+P: pause sound, Esc: quit"
	}
	if g.player != nil && g.player.Track() != "" {
		status += " | Playing " + g.player.Track()
	}
	if g.lastErr != nil {
		status += " | Error: " + g.lastErr.Error()
	}
	return status
}

// drawBackground paints a slow vertical gradient that brightens with the
// ambient track.
func (g *Game) drawBackground(screen *ebiten.Image) {
	const band = 4
	w, h := float64(g.width), float64(g.height)
	lift := 18 * g.level
	for y := 0.0; y < h; y += band {
		ratio := y / h
		r := uint8(8 + 6*math.Sin(g.elapsed*0.05+ratio*math.Pi) + lift*0.4)
		gv := uint8(12 + 8*math.Cos(g.elapsed*0.03+ratio*math.Pi) + lift*0.6)
		b := uint8(26 + 14*math.Sin(g.elapsed*0.07+ratio*math.Pi) + lift)
		vector.DrawFilledRect(screen, 0, float32(y), float32(w), band, color.RGBA{R: r, G: gv, B: b, A: 255}, false)
	}
}

func (g *Game) drawButton(screen *ebiten.Image, b *button) {
	var bg color.Color
	switch {
	case b.pressed:
		bg = color.RGBA{R: 60, G: 80, B: 120, A: 255}
	case b.hovered:
		bg = color.RGBA{R: 80, G: 100, B: 140, A: 255}
	default:
		bg = color.RGBA{R: 100, G: 120, B: 160, A: 255}
	}
	r := b.bounds
	vector.DrawFilledRect(screen, float32(r.x), float32(r.y), float32(r.w), float32(r.h), bg, false)
	vector.StrokeRect(screen, float32(r.x), float32(r.y), float32(r.w), float32(r.h), 2, color.RGBA{R: 150, G: 170, B: 200, A: 255}, false)

	textX := r.x + (r.w-textWidth(b.label, 1))/2
	textY := r.y + (r.h-glyphHeight)/2
	ebitenutil.DebugPrintAt(screen, b.label, int(textX), int(textY))
}

func (g *Game) drawBurnFrame(screen *ebiten.Image, now time.Time) {
	if !g.burnFrame.Visible() {
		return
	}
	r := g.burnFrameRect()
	vector.DrawFilledRect(screen, float32(r.x), float32(r.y), float32(r.w), float32(r.h), frameColor, false)

	if g.journey.State() == choreo.JourneyReady {
		vector.StrokeRect(screen, float32(r.x), float32(r.y), float32(r.w), float32(r.h), 2, borderColor, false)
		lines := burn.WrapText(g.text.String(), r.w-2*burnFramePad, func(s string) float64 { return textWidth(s, 1) })
		if len(lines) == 0 {
			lines = []string{""}
		}
		if int(g.elapsed*2)%2 == 0 {
			lines[len(lines)-1] += "_"
		}
		for i, line := range lines {
			ebitenutil.DebugPrintAt(screen, printable(line), int(r.x+burnFramePad), int(r.y+burnFramePad)+i*glyphHeight)
		}
		return
	}

	g.drawBurning(screen, r)
}

// drawBurning shows the text above the burn edge and a glowing seam along it.
func (g *Game) drawBurning(screen *ebiten.Image, r rect) {
	if g.burnImg == nil {
		g.burnImg = ebiten.NewImage(burnFrameWidth, burnFrameHeight)
	}
	if g.burnDirty {
		g.burnImg.Clear()
		for i, line := range g.burnLines {
			ebitenutil.DebugPrintAt(g.burnImg, printable(line), burnFramePad, burnFramePad+i*glyphHeight)
		}
		g.burnDirty = false
	}

	edge := g.burnState.Edge
	if edge == nil {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(r.x, r.y)
		screen.DrawImage(g.burnImg, op)
		return
	}

	const column = 4
	for x := 0; x < burnFrameWidth; x += column {
		cut := int(burn.EdgeAt(edge, float64(x)+column/2))
		if cut <= 0 {
			continue
		}
		sub := g.burnImg.SubImage(image.Rect(x, 0, x+column, cut)).(*ebiten.Image)
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(r.x+float64(x), r.y)
		screen.DrawImage(sub, op)
	}

	if g.burnState.Progress >= 1 {
		return
	}
	cr, cg, cb := motion.HSVToRGB(28, 0.85, 1)
	fade := 1 - g.burnState.Progress*0.3
	glow := color.NRGBA{R: cr, G: cg, B: cb, A: uint8(60 * fade)}
	seam := color.NRGBA{R: cr, G: cg, B: cb, A: uint8(230 * fade)}
	for i := 1; i < len(edge); i++ {
		a, b := edge[i-1], edge[i]
		x0, y0 := float32(r.x+a.X), float32(r.y+a.Y)
		x1, y1 := float32(r.x+b.X), float32(r.y+b.Y)
		vector.StrokeLine(screen, x0, y0, x1, y1, 10, glow, true)
		vector.StrokeLine(screen, x0, y0, x1, y1, 2, seam, true)
	}
}

func (g *Game) drawSphere(screen *ebiten.Image, now time.Time) {
	if !g.stage.Visible() {
		return
	}
	sw, sh, dpr := g.renderer.Size()
	pw, ph := int(math.Ceil(sw*dpr)), int(math.Ceil(sh*dpr))
	if g.sphereImg == nil || g.sphereImg.Bounds().Dx() != pw || g.sphereImg.Bounds().Dy() != ph {
		if g.sphereImg != nil {
			g.sphereImg.Deallocate()
		}
		g.sphereImg = ebiten.NewImage(pw, ph)
	}
	g.sphere.canvas.replay(g.sphereImg, dpr)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(1/dpr, 1/dpr)
	op.GeoM.Translate((float64(g.width)-sw)/2, float64(g.height)*0.5-sh/2)
	op.ColorScale.ScaleAlpha(float32(g.stage.Alpha(now)))
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(g.sphereImg, op)
}

func (g *Game) figureGeometry() (cx, cy, scale float64) {
	scale = float64(g.height) * 0.55 / 200
	return float64(g.width) / 2, float64(g.height) * 0.56, scale
}

func (g *Game) drawFigure(screen *ebiten.Image, now time.Time) {
	if !g.figure.Stage.Visible() {
		return
	}
	stage := g.figure.Stage.Alpha(now)
	cx, cy, s := g.figureGeometry()
	wr, wg, wb := motion.HSVToRGB(36, 0.55, 1)
	warm := color.NRGBA{R: wr, G: wg, B: wb, A: 255}
	for i, region := range bodyRegions {
		p := ellipsePath(cx+region.cx*s, cy+region.cy*s, region.rx*s, region.ry*s)
		fillPath(screen, p, regionBase, 0.14*stage)
		if o := g.figure.Opacity(i, now); o > 0 {
			fillPath(screen, p, warm, 0.75*o*stage)
		}
	}
}

func (g *Game) drawGlow(screen *ebiten.Image, now time.Time) {
	a := g.glow.Alpha(now)
	if a <= 0 {
		return
	}
	cx, cy, s := g.figureGeometry()
	const rings = 14
	for k := rings; k >= 1; k-- {
		t := float64(k) / rings
		r, gv, b := motion.HSVToRGB(24+18*(1-t), 0.6, 1)
		c := color.NRGBA{R: r, G: gv, B: b, A: uint8(255 * a * 0.05)}
		vector.DrawFilledCircle(screen, float32(cx), float32(cy), float32(t*130*s), c, true)
	}
}

func (g *Game) textImage(s string) *ebiten.Image {
	s = printable(s)
	if img, ok := g.textCache[s]; ok {
		return img
	}
	img := ebiten.NewImage(max(1, int(textWidth(s, 1))), glyphHeight)
	ebitenutil.DebugPrintAt(img, s, 0, 0)
	g.textCache[s] = img
	return img
}

func (g *Game) drawText(screen *ebiten.Image, s string, centerX, y, scale, alpha float64) {
	img := g.textImage(s)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(centerX-textWidth(s, scale)/2, y)
	op.ColorScale.ScaleAlpha(float32(alpha))
	screen.DrawImage(img, op)
}

func (g *Game) drawTitle(screen *ebiten.Image, t *choreo.Title, y float64, now time.Time) {
	if !t.Visible() || strings.TrimSpace(t.Text) == "" {
		return
	}
	alpha := t.Alpha(now)
	lines := burn.WrapText(t.Text, float64(g.width)*0.8, func(s string) float64 { return textWidth(s, titleScale) })
	for i, line := range lines {
		g.drawText(screen, line, float64(g.width)/2, y+float64(i*glyphHeight*titleScale), titleScale, alpha)
	}
}

func (g *Game) drawFinish(screen *ebiten.Image) {
	cx := float64(g.width) / 2
	y := float64(g.height) * 0.3
	g.drawText(screen, "Thank you for taking this time.", cx, y, titleScale, 1)

	b := g.cfg.Breathing
	length := (b.Inhale + b.Exhale) * time.Duration(b.Rounds)
	lines := []string{fmt.Sprintf("Session %s, %d breaths", formatDuration(length), b.Rounds)}
	if g.stats != nil {
		lines = append(lines,
			fmt.Sprintf("Total minutes: %.1f", g.stats.TotalMinutes),
			fmt.Sprintf("Streak: %d days", g.stats.StreakDays),
			fmt.Sprintf("Breaths completed: %d", g.stats.BreathsCompleted),
			fmt.Sprintf("Calm score: %d", g.stats.CalmScore),
		)
	}
	y += 3 * glyphHeight * titleScale
	for i, line := range lines {
		g.drawText(screen, line, cx, y+float64(i*(glyphHeight+8)), 1, 0.9)
	}
}
