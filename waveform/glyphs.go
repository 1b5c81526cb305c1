package waveform

import (
	"math"
	"sort"
)

// Vertex on a glyph stroke
type vertex struct {
	x, y float64
}

// Stroke endpoints on a 0.6 x 1.0 glyph box, seven-segment style.
// 'P' is the decimal point stroke.
var segments = map[byte][2]vertex{
	'A': {{0, 1}, {0.6, 1}},
	'B': {{0.6, 1}, {0.6, 0.5}},
	'C': {{0.6, 0.5}, {0.6, 0}},
	'D': {{0.6, 0}, {0, 0}},
	'E': {{0, 0}, {0, 0.5}},
	'F': {{0, 0.5}, {0, 1}},
	'G': {{0, 0.5}, {0.6, 0.5}},
	'P': {{0.25, 0}, {0.35, 0}},
}

// Lit segments per supported rune. Unsupported runes advance the pen
// without drawing, like a space.
var glyphs = map[rune]string{
	'0': "ABCDEF",
	'1': "BC",
	'2': "ABGED",
	'3': "ABGCD",
	'4': "FGBC",
	'5': "AFGCD",
	'6': "AFEDCG",
	'7': "ABC",
	'8': "ABCDEFG",
	'9': "ABCDFG",
	'-': "G",
	'.': "P",
}

// Horizontal pen advance per rendered rune
const glyphAdvance = 0.9

// glyphPath is the precomputed stroke path for a text string, with
// coordinates rescaled to [-1, 1] and cumulative arc lengths for sampling
type glyphPath struct {
	verts []vertex
	cum   []float64
	total float64
}

func newGlyphPath(text string) *glyphPath {
	var verts []vertex
	advance := 0.0
	for _, r := range text {
		for k := 0; k < len(glyphs[r]); k++ {
			seg := segments[glyphs[r][k]]
			verts = append(verts,
				vertex{seg[0].x + advance, seg[0].y},
				vertex{seg[1].x + advance, seg[1].y},
			)
		}
		advance += glyphAdvance
	}

	if advance > 0 {
		for i := range verts {
			verts[i].x = 2*verts[i].x/advance - 1
			verts[i].y = 2*verts[i].y - 1
		}
	}

	path := &glyphPath{verts: verts, cum: make([]float64, len(verts))}
	for i := 1; i < len(verts); i++ {
		path.cum[i] = path.cum[i-1] + math.Hypot(verts[i].x-verts[i-1].x, verts[i].y-verts[i-1].y)
	}
	if len(verts) > 0 {
		path.total = path.cum[len(verts)-1]
	}
	return path
}

func (g *glyphPath) empty() bool {
	return len(g.verts) < 2 || g.total == 0
}

// Samples the path at the given period fraction, one period being a full
// traversal of the text path
func (g *glyphPath) sample(frac float64, channel Channel) float64 {
	target := frac * g.total

	i := sort.SearchFloat64s(g.cum, target)
	if i == 0 {
		i = 1
	}
	if i >= len(g.verts) {
		i = len(g.verts) - 1
	}

	a, b := g.verts[i-1], g.verts[i]
	span := g.cum[i] - g.cum[i-1]
	t := 0.0
	if span > 0 {
		t = (target - g.cum[i-1]) / span
	}

	if channel == ChannelX {
		return a.x + t*(b.x-a.x)
	}
	return a.y + t*(b.y-a.y)
}
