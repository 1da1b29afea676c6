package cubemap

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Panorama is an equirectangular (latlong) environment image. Rows span
// the polar angle [0, pi] top-down, columns span the azimuth [0, 2pi).
// The column axis is periodic; rows clamp at the poles.
type Panorama struct {
	W, H int
	Pix  []float32 // row-major, 3 channels
}

// NewPanorama allocates a zeroed H x W panorama.
func NewPanorama(h, w int) (*Panorama, error) {
	if h <= 0 || w <= 0 {
		return nil, fmt.Errorf("%w: panorama size %dx%d", ErrInvalidArgument, h, w)
	}
	return &Panorama{W: w, H: h, Pix: make([]float32, h*w*3)}, nil
}

func (p *Panorama) At(x, y int) mgl32.Vec3 {
	i := (y*p.W + x) * 3
	return mgl32.Vec3{p.Pix[i], p.Pix[i+1], p.Pix[i+2]}
}

func (p *Panorama) Set(x, y int, v mgl32.Vec3) {
	i := (y*p.W + x) * 3
	p.Pix[i], p.Pix[i+1], p.Pix[i+2] = v.X(), v.Y(), v.Z()
}

// Scale multiplies every channel in place.
func (p *Panorama) Scale(s float32) {
	for i := range p.Pix {
		p.Pix[i] *= s
	}
}

// Roll returns a copy shifted by delta columns along the azimuth axis,
// wrapping circularly. Positive delta moves content toward higher columns.
func (p *Panorama) Roll(delta int) *Panorama {
	out := &Panorama{W: p.W, H: p.H, Pix: make([]float32, len(p.Pix))}
	d := ((delta % p.W) + p.W) % p.W
	for y := 0; y < p.H; y++ {
		for x := 0; x < p.W; x++ {
			out.Set((x+d)%p.W, y, p.At(x, y))
		}
	}
	return out
}

// SampleBilinear fetches the panorama at continuous (row, col) pixel
// coordinates with bilinear filtering. Columns wrap periodically, rows
// clamp; there is no filtering across the poles.
func (p *Panorama) SampleBilinear(row, col float32) mgl32.Vec3 {
	r0f := math32.Floor(row)
	c0f := math32.Floor(col)
	fr := row - r0f
	fc := col - c0f

	r0 := clampInt(int(r0f), 0, p.H-1)
	r1 := clampInt(int(r0f)+1, 0, p.H-1)
	c0 := wrapInt(int(c0f), p.W)
	c1 := wrapInt(int(c0f)+1, p.W)

	top := p.At(c0, r0).Mul(1 - fc).Add(p.At(c1, r0).Mul(fc))
	bot := p.At(c0, r1).Mul(1 - fc).Add(p.At(c1, r1).Mul(fc))
	return top.Mul(1 - fr).Add(bot.Mul(fr))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func wrapInt(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
