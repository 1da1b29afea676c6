package cubemap

import (
	"errors"
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// gradientCubemap fills a cubemap with color (d+1)/2 at each texel's
// center direction d. Smooth everywhere on the sphere, so resampling
// error stays small and seams are easy to check.
func gradientCubemap(res int) *Cubemap {
	c, _ := New(res)
	for f := 0; f < FaceCount; f++ {
		for y := 0; y < res; y++ {
			for x := 0; x < res; x++ {
				d := c.TexelDirection(f, x, y)
				c.Set(f, x, y, d.Add(mgl32.Vec3{1, 1, 1}).Mul(0.5))
			}
		}
	}
	return c
}

func vecNear(a, b mgl32.Vec3, tol float32) bool {
	return math32.Abs(a.X()-b.X()) <= tol &&
		math32.Abs(a.Y()-b.Y()) <= tol &&
		math32.Abs(a.Z()-b.Z()) <= tol
}

func TestFaceDirectionResolveRoundTrip(t *testing.T) {
	c, _ := New(8)
	for f := 0; f < FaceCount; f++ {
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				d := c.TexelDirection(f, x, y)
				rf, u, v := ResolveDirection(d)
				if rf != f {
					t.Fatalf("face %d texel (%d,%d) resolved to face %d", f, x, y, rf)
				}
				wantU := (2*float32(x) + 1) / 16
				wantV := (2*float32(y) + 1) / 16
				if math32.Abs(u-wantU) > 1e-5 || math32.Abs(v-wantV) > 1e-5 {
					t.Fatalf("face %d texel (%d,%d) resolved to uv (%v,%v), want (%v,%v)", f, x, y, u, v, wantU, wantV)
				}
			}
		}
	}
}

func TestResolveDirection_BoundaryTieBreakIsDeterministic(t *testing.T) {
	// Dominant-axis order X, Y, Z with the positive face on sign >= 0.
	cases := []struct {
		dir  mgl32.Vec3
		face int
	}{
		{mgl32.Vec3{1, 1, 0}, FacePosX},
		{mgl32.Vec3{-1, 1, 0}, FaceNegX},
		{mgl32.Vec3{0, 1, 1}, FacePosY},
		{mgl32.Vec3{0, -1, 1}, FaceNegY},
		{mgl32.Vec3{1, 1, 1}, FacePosX},
		{mgl32.Vec3{0, 0, -1}, FaceNegZ},
	}
	for _, tc := range cases {
		if face, _, _ := ResolveDirection(tc.dir); face != tc.face {
			t.Errorf("direction %v resolved to face %d, want %d", tc.dir, face, tc.face)
		}
	}
}

func TestSphericalRoundTrip(t *testing.T) {
	for _, d := range []mgl32.Vec3{
		{0, 1, 0}, {0, -1, 0}, {1, 0, 0}, {0, 0, 1}, {0, 0, -1},
		{0.5, 0.3, -0.8}, {-0.2, -0.9, 0.1},
	} {
		theta, phi := DirectionToSpherical(d)
		if theta < 0 || theta > math32.Pi {
			t.Fatalf("theta %v outside [0, pi]", theta)
		}
		if phi < 0 || phi >= 2*math32.Pi {
			t.Fatalf("phi %v outside [0, 2pi)", phi)
		}
		back := SphericalToDirection(theta, phi)
		if !vecNear(back, d.Normalize(), 1e-5) {
			t.Errorf("direction %v round-tripped to %v", d, back)
		}
	}
}

func TestLatlongToCubemap_RejectsBadInput(t *testing.T) {
	p, _ := NewPanorama(4, 8)
	if _, err := LatlongToCubemap(p, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("zero resolution: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := LatlongToCubemap(nil, 8); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("nil panorama: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := CubemapToLatlong(nil, 4, 8); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("nil cubemap: expected ErrInvalidArgument, got %v", err)
	}
}

func TestLatlongToCubemap_UniformStaysUniform(t *testing.T) {
	p, _ := NewPanorama(8, 16)
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			p.Set(x, y, mgl32.Vec3{0.3, 0.6, 0.9})
		}
	}
	c, err := LatlongToCubemap(p, 8)
	if err != nil {
		t.Fatalf("LatlongToCubemap: %v", err)
	}
	for f := 0; f < FaceCount; f++ {
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				if !vecNear(c.At(f, x, y), mgl32.Vec3{0.3, 0.6, 0.9}, 1e-5) {
					t.Fatalf("face %d texel (%d,%d) = %v", f, x, y, c.At(f, x, y))
				}
			}
		}
	}
}

// Round-trip property: projecting a smooth cubemap to latlong and back
// approximates the original up to resampling error.
func TestProjectionRoundTrip(t *testing.T) {
	orig := gradientCubemap(16)
	pano, err := CubemapToLatlong(orig, 64, 128)
	if err != nil {
		t.Fatalf("CubemapToLatlong: %v", err)
	}
	back, err := LatlongToCubemap(pano, 16)
	if err != nil {
		t.Fatalf("LatlongToCubemap: %v", err)
	}

	var worst float32
	for f := 0; f < FaceCount; f++ {
		for y := 0; y < 16; y++ {
			for x := 0; x < 16; x++ {
				d := orig.At(f, x, y).Sub(back.At(f, x, y))
				for i := 0; i < 3; i++ {
					if e := math32.Abs(d[i]); e > worst {
						worst = e
					}
				}
			}
		}
	}
	if worst > 0.05 {
		t.Errorf("round-trip error %v exceeds resampling tolerance", worst)
	}
}

// Projecting the cubemap at column 0 and at the wrapped column W must
// agree: the azimuth axis is periodic.
func TestCubemapToLatlong_AzimuthPeriodicity(t *testing.T) {
	c := gradientCubemap(16)
	pano, err := CubemapToLatlong(c, 32, 64)
	if err != nil {
		t.Fatalf("CubemapToLatlong: %v", err)
	}
	for y := 0; y < pano.H; y++ {
		a := pano.SampleBilinear(float32(y), -0.5)
		b := pano.SampleBilinear(float32(y), float32(pano.W)-0.5)
		if a != b {
			t.Fatalf("row %d: column wrap mismatch %v vs %v", y, a, b)
		}
	}
}
