package cubemap

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Sample fetches the cubemap in the given direction with bilinear
// filtering. The direction need not be normalized. Bilinear taps that
// fall outside the resolved face are re-projected through the cube and
// fetched from the neighboring face, so filtering is seam-correct.
func (c *Cubemap) Sample(dir mgl32.Vec3) mgl32.Vec3 {
	face, u, v := ResolveDirection(dir)
	res := float32(c.Res)

	fx := u*res - 0.5
	fy := v*res - 0.5
	x0 := math32.Floor(fx)
	y0 := math32.Floor(fy)
	fu := fx - x0
	fv := fy - y0
	ix := int(x0)
	iy := int(y0)

	p00 := c.fetch(face, ix, iy)
	p10 := c.fetch(face, ix+1, iy)
	p01 := c.fetch(face, ix, iy+1)
	p11 := c.fetch(face, ix+1, iy+1)

	top := p00.Mul(1 - fu).Add(p10.Mul(fu))
	bot := p01.Mul(1 - fu).Add(p11.Mul(fu))
	return top.Mul(1 - fv).Add(bot.Mul(fv))
}

// fetch returns the texel (x, y) of a face, re-resolving taps that lie
// past the face edge through the cube. A tap beyond the edge corresponds
// to face-plane coordinates outside [-1, 1]; extending the plane and
// re-resolving the direction lands on the adjacent face's texel. Corner
// taps, which have no single neighbor, resolve deterministically via the
// dominant-axis tie-break.
func (c *Cubemap) fetch(face, x, y int) mgl32.Vec3 {
	if x >= 0 && x < c.Res && y >= 0 && y < c.Res {
		return c.At(face, x, y)
	}
	s := (2*float32(x)+1)/float32(c.Res) - 1
	t := (2*float32(y)+1)/float32(c.Res) - 1
	nf, u, v := ResolveDirection(FaceDirection(face, s, t))
	nx := clampInt(int(u*float32(c.Res)), 0, c.Res-1)
	ny := clampInt(int(v*float32(c.Res)), 0, c.Res-1)
	return c.At(nf, nx, ny)
}

// SampleLevels performs mip-trilinear filtering against an ordered chain
// of cubemaps: bilinear within each level, linear between the two levels
// adjacent to the fractional level index. The index clamps to the chain.
func SampleLevels(levels []*Cubemap, dir mgl32.Vec3, level float32) mgl32.Vec3 {
	last := float32(len(levels) - 1)
	if level <= 0 {
		return levels[0].Sample(dir)
	}
	if level >= last {
		return levels[len(levels)-1].Sample(dir)
	}
	lo := int(math32.Floor(level))
	frac := level - float32(lo)
	a := levels[lo].Sample(dir)
	if frac == 0 {
		return a
	}
	b := levels[lo+1].Sample(dir)
	return a.Mul(1 - frac).Add(b.Mul(frac))
}
