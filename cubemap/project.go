package cubemap

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Coordinate conventions.
//
// Cube faces follow the OpenGL cubemap layout (+X, -X, +Y, -Y, +Z, -Z).
// A face texel (x, y) at resolution N maps to the face-plane coordinates
// s = (2x+1)/N - 1 and t = (2y+1)/N - 1, both in (-1, 1), which extend to
// a 3-D direction through FaceDirection. The panorama uses y-up spherical
// coordinates: theta = 0 points to +Y, (theta = pi/2, phi = 0) points to
// +Z and (theta = pi/2, phi = pi/2) to +X. Rows sweep theta over [0, pi]
// top-down, columns sweep phi over [0, 2pi).

// FaceDirection returns the unnormalized direction for face-plane
// coordinates (s, t) in [-1, 1] on the given face. Coordinates beyond
// [-1, 1] are legal and resolve to directions past the face boundary,
// which ResolveDirection maps back onto the neighboring face.
func FaceDirection(face int, s, t float32) mgl32.Vec3 {
	switch face {
	case FacePosX:
		return mgl32.Vec3{1, -t, -s}
	case FaceNegX:
		return mgl32.Vec3{-1, -t, s}
	case FacePosY:
		return mgl32.Vec3{s, 1, t}
	case FaceNegY:
		return mgl32.Vec3{s, -1, -t}
	case FacePosZ:
		return mgl32.Vec3{s, -t, 1}
	default:
		return mgl32.Vec3{-s, -t, -1}
	}
}

// ResolveDirection maps a direction to its cube face and the continuous
// (u, v) in [0, 1] within that face. Directions on a face boundary are
// tie-broken by a fixed dominant-axis order (X, then Y, then Z) with the
// positive face chosen when the component is non-negative.
func ResolveDirection(d mgl32.Vec3) (face int, u, v float32) {
	ax := math32.Abs(d.X())
	ay := math32.Abs(d.Y())
	az := math32.Abs(d.Z())

	var maj, s, t float32
	switch {
	case ax >= ay && ax >= az:
		maj = ax
		t = -d.Y()
		if d.X() >= 0 {
			face = FacePosX
			s = -d.Z()
		} else {
			face = FaceNegX
			s = d.Z()
		}
	case ay >= az:
		maj = ay
		s = d.X()
		if d.Y() >= 0 {
			face = FacePosY
			t = d.Z()
		} else {
			face = FaceNegY
			t = -d.Z()
		}
	default:
		maj = az
		t = -d.Y()
		if d.Z() >= 0 {
			face = FacePosZ
			s = d.X()
		} else {
			face = FaceNegZ
			s = -d.X()
		}
	}
	if maj == 0 {
		// Degenerate zero vector; parameterized callers never produce it.
		return FacePosX, 0.5, 0.5
	}
	return face, 0.5*s/maj + 0.5, 0.5*t/maj + 0.5
}

// TexelDirection returns the normalized direction through the center of
// texel (x, y) on the given face.
func (c *Cubemap) TexelDirection(face, x, y int) mgl32.Vec3 {
	s := (2*float32(x)+1)/float32(c.Res) - 1
	t := (2*float32(y)+1)/float32(c.Res) - 1
	return FaceDirection(face, s, t).Normalize()
}

// SphericalToDirection converts (theta, phi) to a unit direction.
func SphericalToDirection(theta, phi float32) mgl32.Vec3 {
	st := math32.Sin(theta)
	return mgl32.Vec3{st * math32.Sin(phi), math32.Cos(theta), st * math32.Cos(phi)}
}

// DirectionToSpherical converts a direction (any length) to (theta, phi)
// with theta in [0, pi] and phi in [0, 2pi).
func DirectionToSpherical(d mgl32.Vec3) (theta, phi float32) {
	l := d.Len()
	if l == 0 {
		return 0, 0
	}
	y := d.Y() / l
	if y > 1 {
		y = 1
	} else if y < -1 {
		y = -1
	}
	theta = math32.Acos(y)
	phi = math32.Atan2(d.X(), d.Z())
	if phi < 0 {
		phi += 2 * math32.Pi
	}
	return theta, phi
}

// LatlongToCubemap projects an equirectangular panorama onto a cubemap
// with the given face resolution. Each face texel bilinearly samples the
// panorama at its center direction, wrapping columns and clamping rows.
func LatlongToCubemap(p *Panorama, res int) (*Cubemap, error) {
	if p == nil || len(p.Pix) == 0 {
		return nil, fmt.Errorf("%w: empty panorama", ErrInvalidArgument)
	}
	c, err := New(res)
	if err != nil {
		return nil, err
	}
	for f := 0; f < FaceCount; f++ {
		for y := 0; y < res; y++ {
			for x := 0; x < res; x++ {
				theta, phi := DirectionToSpherical(c.TexelDirection(f, x, y))
				row := theta/math32.Pi*float32(p.H) - 0.5
				col := phi/(2*math32.Pi)*float32(p.W) - 0.5
				c.Set(f, x, y, p.SampleBilinear(row, col))
			}
		}
	}
	return c, nil
}

// CubemapToLatlong projects a cubemap to an equirectangular panorama of
// the given size, sampling the cube with seam-aware bilinear filtering.
func CubemapToLatlong(c *Cubemap, h, w int) (*Panorama, error) {
	if c == nil || c.Res <= 0 {
		return nil, fmt.Errorf("%w: empty cubemap", ErrInvalidArgument)
	}
	p, err := NewPanorama(h, w)
	if err != nil {
		return nil, err
	}
	for y := 0; y < h; y++ {
		theta := (float32(y) + 0.5) / float32(h) * math32.Pi
		for x := 0; x < w; x++ {
			phi := (float32(x) + 0.5) / float32(w) * 2 * math32.Pi
			p.Set(x, y, c.Sample(SphericalToDirection(theta, phi)))
		}
	}
	return p, nil
}
