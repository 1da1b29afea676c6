// Package prefilter convolves environment cubemaps with reflectance
// lobes ahead of shading: a cosine hemisphere for irradiance and a
// cutoff-bounded cosine-power lobe for specular reflection at a given
// roughness. The Filter interface is the seam for swapping in external
// (e.g. GPU) convolution kernels.
package prefilter

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/envlight/cubemap"
)

// Filter prefilters cubemaps for diffuse and specular shading lookups.
// Implementations must return new cubemaps at the input resolution and
// must preserve a uniform environment exactly.
type Filter interface {
	Diffuse(c *cubemap.Cubemap) (*cubemap.Cubemap, error)
	Specular(c *cubemap.Cubemap, roughness, cutoff float32) (*cubemap.Cubemap, error)
}

// Software is the CPU reference Filter. Quality scales the sample grid:
// quality q uses (q+1) rings of 4q directions per texel.
type Software struct {
	Quality int
}

// NewSoftware returns a software filter. Quality below 1 is raised to 1.
func NewSoftware(quality int) *Software {
	if quality < 1 {
		quality = 1
	}
	return &Software{Quality: quality}
}

type lobeSample struct {
	// z is the lobe axis
	dir    mgl32.Vec3
	weight float32
}

// lobeSamples builds ring samples of cos^exp(theta)*sin(theta) weights
// over theta in (0, thetaMax]. Weights are normalized by their sum at
// accumulation time, so any exponent conserves a uniform environment.
func lobeSamples(rings, segments int, thetaMax, exp float32) []lobeSample {
	samples := make([]lobeSample, 0, rings*segments)
	dTheta := thetaMax / float32(rings)
	dPhi := 2 * math32.Pi / float32(segments)
	for r := 0; r < rings; r++ {
		theta := (float32(r) + 0.5) * dTheta
		st := math32.Sin(theta)
		ct := math32.Cos(theta)
		if ct <= 0 {
			continue
		}
		w := st * math32.Pow(ct, exp)
		for s := 0; s < segments; s++ {
			phi := (float32(s) + 0.5) * dPhi
			samples = append(samples, lobeSample{
				dir:    mgl32.Vec3{st * math32.Cos(phi), st * math32.Sin(phi), ct},
				weight: w,
			})
		}
	}
	return samples
}

// basis returns an orthonormal tangent frame around n.
func basis(n mgl32.Vec3) (tangent, bitangent mgl32.Vec3) {
	up := mgl32.Vec3{0, 1, 0}
	if math32.Abs(n.Y()) > 0.999 {
		up = mgl32.Vec3{1, 0, 0}
	}
	tangent = up.Cross(n).Normalize()
	bitangent = n.Cross(tangent)
	return tangent, bitangent
}

// convolve evaluates the normalized weighted sum of cube samples around
// the per-texel axis for every output texel.
func convolve(c *cubemap.Cubemap, samples []lobeSample) (*cubemap.Cubemap, error) {
	out, err := cubemap.New(c.Res)
	if err != nil {
		return nil, err
	}
	for f := 0; f < cubemap.FaceCount; f++ {
		for y := 0; y < c.Res; y++ {
			for x := 0; x < c.Res; x++ {
				n := c.TexelDirection(f, x, y)
				tan, bit := basis(n)
				var acc mgl32.Vec3
				var wsum float32
				for _, s := range samples {
					d := tan.Mul(s.dir.X()).Add(bit.Mul(s.dir.Y())).Add(n.Mul(s.dir.Z()))
					acc = acc.Add(c.Sample(d).Mul(s.weight))
					wsum += s.weight
				}
				out.Set(f, x, y, acc.Mul(1/wsum))
			}
		}
	}
	return out, nil
}

// Diffuse convolves the cubemap with a cosine-weighted hemisphere,
// producing the irradiance map used for Lambertian shading.
func (sw *Software) Diffuse(c *cubemap.Cubemap) (*cubemap.Cubemap, error) {
	if c == nil || c.Res <= 0 {
		return nil, fmt.Errorf("%w: empty cubemap", cubemap.ErrInvalidArgument)
	}
	rings := sw.Quality + 1
	segments := sw.Quality * 4
	// Irradiance weight is cos(theta)*sin(theta), i.e. exponent 1.
	return convolve(c, lobeSamples(rings, segments, math32.Pi/2, 1))
}

// Specular convolves the cubemap with a cosine-power lobe around the
// reflection direction. The lobe exponent derives from the squared
// roughness; cutoff in (0, 1) bounds the kernel to the cone holding that
// fraction of the lobe's energy, keeping narrow lobes cheap.
func (sw *Software) Specular(c *cubemap.Cubemap, roughness, cutoff float32) (*cubemap.Cubemap, error) {
	if c == nil || c.Res <= 0 {
		return nil, fmt.Errorf("%w: empty cubemap", cubemap.ErrInvalidArgument)
	}
	if cutoff <= 0 || cutoff >= 1 {
		return nil, fmt.Errorf("%w: cutoff %v outside (0, 1)", cubemap.ErrInvalidArgument, cutoff)
	}
	exp := lobeExponent(roughness)
	// CDF of cos^e over the hemisphere: 1 - cos^(e+1), so the cone
	// holding `cutoff` of the energy ends at acos((1-cutoff)^(1/(e+1))).
	ct := math32.Pow(1-cutoff, 1/(exp+1))
	thetaMax := math32.Acos(ct)
	if thetaMax > math32.Pi/2 {
		thetaMax = math32.Pi / 2
	}
	rings := sw.Quality + 1
	segments := sw.Quality * 4
	return convolve(c, lobeSamples(rings, segments, thetaMax, exp))
}

// lobeExponent maps perceptual roughness to a Blinn-Phong style
// exponent: alpha = r^2, e = 2/alpha^2 - 2, clamped to keep the kernel
// numerically sane at the roughness extremes.
func lobeExponent(roughness float32) float32 {
	if roughness < 0.01 {
		roughness = 0.01
	}
	if roughness > 1 {
		roughness = 1
	}
	alpha := roughness * roughness
	exp := 2/(alpha*alpha) - 2
	if exp > 1e5 {
		exp = 1e5
	}
	if exp < 0 {
		exp = 0
	}
	return exp
}
