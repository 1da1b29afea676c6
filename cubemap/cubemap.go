package cubemap

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/aquilax/go-perlin"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidArgument is returned for degenerate resolutions or empty images.
var ErrInvalidArgument = errors.New("cubemap: invalid argument")

// FaceCount is the number of faces in a cubemap.
const FaceCount = 6

// Cube face indices, OpenGL order.
const (
	FacePosX = iota
	FaceNegX
	FacePosY
	FaceNegY
	FacePosZ
	FaceNegZ
)

// Cubemap is a 6-face environment map. Every face is a Res x Res RGB
// image stored as a flat row-major float32 buffer. All faces share the
// same resolution.
type Cubemap struct {
	Res   int
	Faces [FaceCount][]float32
}

// New allocates a zeroed cubemap with the given face resolution.
func New(res int) (*Cubemap, error) {
	if res <= 0 {
		return nil, fmt.Errorf("%w: face resolution %d", ErrInvalidArgument, res)
	}
	c := &Cubemap{Res: res}
	for f := range c.Faces {
		c.Faces[f] = make([]float32, res*res*3)
	}
	return c, nil
}

// NewFill allocates a cubemap with every texel set to color.
func NewFill(res int, color mgl32.Vec3) (*Cubemap, error) {
	c, err := New(res)
	if err != nil {
		return nil, err
	}
	for f := range c.Faces {
		face := c.Faces[f]
		for i := 0; i < len(face); i += 3 {
			face[i+0] = color.X()
			face[i+1] = color.Y()
			face[i+2] = color.Z()
		}
	}
	return c, nil
}

// NewRand allocates a cubemap with every channel drawn uniformly from
// [bias, bias+scale). A nil rng uses the shared math/rand source.
func NewRand(res int, scale, bias float32, rng *rand.Rand) (*Cubemap, error) {
	c, err := New(res)
	if err != nil {
		return nil, err
	}
	next := rand.Float32
	if rng != nil {
		next = rng.Float32
	}
	for f := range c.Faces {
		face := c.Faces[f]
		for i := range face {
			face[i] = next()*scale + bias
		}
	}
	return c, nil
}

// NewProcedural allocates a cubemap filled with smooth 3-D Perlin noise
// evaluated on the unit sphere, so the result is seamless across faces.
// Each color channel uses a decorrelated offset into the noise field.
func NewProcedural(res int, seed int64) (*Cubemap, error) {
	c, err := New(res)
	if err != nil {
		return nil, err
	}
	noise := perlin.NewPerlin(2, 2, 3, seed)
	for f := range c.Faces {
		for y := 0; y < res; y++ {
			for x := 0; x < res; x++ {
				d := c.TexelDirection(f, x, y)
				var v mgl32.Vec3
				for ch := 0; ch < 3; ch++ {
					off := float64(ch) * 7.31
					n := noise.Noise3D(float64(d.X())+off, float64(d.Y())+off, float64(d.Z())+off)
					v[ch] = float32(n)*0.5 + 0.5
				}
				c.Set(f, x, y, v)
			}
		}
	}
	return c, nil
}

// At returns the texel at (x, y) on the given face.
func (c *Cubemap) At(face, x, y int) mgl32.Vec3 {
	i := (y*c.Res + x) * 3
	p := c.Faces[face]
	return mgl32.Vec3{p[i], p[i+1], p[i+2]}
}

// Set stores v at (x, y) on the given face.
func (c *Cubemap) Set(face, x, y int, v mgl32.Vec3) {
	i := (y*c.Res + x) * 3
	p := c.Faces[face]
	p[i], p[i+1], p[i+2] = v.X(), v.Y(), v.Z()
}

// Clone returns a deep copy.
func (c *Cubemap) Clone() *Cubemap {
	out := &Cubemap{Res: c.Res}
	for f := range c.Faces {
		out.Faces[f] = make([]float32, len(c.Faces[f]))
		copy(out.Faces[f], c.Faces[f])
	}
	return out
}

// Downsample halves the face resolution with a face-local 2x2 box filter.
// Averaging never crosses a face boundary; adjacency across faces is the
// sampler's concern, not the mip reduction's.
func (c *Cubemap) Downsample() (*Cubemap, error) {
	if c.Res < 2 || c.Res%2 != 0 {
		return nil, fmt.Errorf("%w: cannot halve face resolution %d", ErrInvalidArgument, c.Res)
	}
	half := c.Res / 2
	out, err := New(half)
	if err != nil {
		return nil, err
	}
	for f := range c.Faces {
		for y := 0; y < half; y++ {
			for x := 0; x < half; x++ {
				sum := c.At(f, 2*x, 2*y).
					Add(c.At(f, 2*x+1, 2*y)).
					Add(c.At(f, 2*x, 2*y+1)).
					Add(c.At(f, 2*x+1, 2*y+1))
				out.Set(f, x, y, sum.Mul(0.25))
			}
		}
	}
	return out, nil
}

// Scale multiplies every channel in place.
func (c *Cubemap) Scale(s float32) {
	for f := range c.Faces {
		face := c.Faces[f]
		for i := range face {
			face[i] *= s
		}
	}
}
