package game

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// bodyRegion is one highlightable ellipse of the body figure, in a
// 100x200 box centred on the figure.
type bodyRegion struct {
	name           string
	cx, cy, rx, ry float64
}

// bodyRegions is indexed the way the narration addresses them.
var bodyRegions = []bodyRegion{
	{"face", 0, -86, 12, 14},
	{"left shoulder", -22, -60, 12, 8},
	{"right shoulder", 22, -60, 12, 8},
	{"chest", 0, -44, 20, 14},
	{"left arm", -34, -18, 7, 30},
	{"right arm", 34, -18, 7, 30},
	{"stomach", 0, -12, 17, 15},
	{"left leg", -11, 40, 9, 34},
	{"right leg", 11, 40, 9, 34},
	{"left foot", -13, 84, 9, 5},
	{"right foot", 13, 84, 9, 5},
}

// ellipsePath approximates an ellipse with segments.
func ellipsePath(cx, cy, rx, ry float64) *vector.Path {
	const segments = 36
	var p vector.Path
	for i := 0; i < segments; i++ {
		a := 2 * math.Pi * float64(i) / segments
		x, y := float32(cx+rx*math.Cos(a)), float32(cy+ry*math.Sin(a))
		if i == 0 {
			p.MoveTo(x, y)
		} else {
			p.LineTo(x, y)
		}
	}
	p.Close()
	return &p
}

func fillPath(dst *ebiten.Image, p *vector.Path, c color.NRGBA, alpha float64) {
	vs, is := p.AppendVerticesAndIndicesForFilling(nil, nil)
	for i := range vs {
		vs[i].SrcX, vs[i].SrcY = 1, 1
		vs[i].ColorR = float32(c.R) / 255
		vs[i].ColorG = float32(c.G) / 255
		vs[i].ColorB = float32(c.B) / 255
		vs[i].ColorA = float32(alpha)
	}
	dst.DrawTriangles(vs, is, whitePixel(), &ebiten.DrawTrianglesOptions{AntiAlias: true})
}

var whiteImage *ebiten.Image

func whitePixel() *ebiten.Image {
	if whiteImage == nil {
		whiteImage = ebiten.NewImage(3, 3)
		whiteImage.Fill(color.White)
	}
	return whiteImage
}
