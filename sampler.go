package envlight

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/envlight/cubemap"
)

// SampleDiffuse evaluates diffuse radiance for a batch of directions via
// cube-filtered lookups into the diffuse map. Directions need not be
// normalized. Fails with ErrInvalidState before the first mip build.
func (l *EnvLight) SampleDiffuse(dirs []mgl32.Vec3) ([]mgl32.Vec3, error) {
	if l.diffuse == nil {
		return nil, fmt.Errorf("%w: diffuse map queried before build", ErrInvalidState)
	}
	out := make([]mgl32.Vec3, len(dirs))
	for i, d := range dirs {
		out[i] = l.diffuse.Sample(d)
	}
	return out, nil
}

// SampleSpecular evaluates specular radiance for a batch of directions
// with per-sample roughness. Roughness broadcasts over the batch: it
// must hold either one value or one per direction. Each sample maps its
// roughness to a fractional mip level and performs mip-trilinear cube
// sampling against the specular chain.
func (l *EnvLight) SampleSpecular(dirs []mgl32.Vec3, roughness []float32) ([]mgl32.Vec3, error) {
	if len(l.specular) == 0 {
		return nil, fmt.Errorf("%w: specular chain queried before build", ErrInvalidState)
	}
	at, err := broadcast(roughness, len(dirs))
	if err != nil {
		return nil, err
	}
	levels := len(l.specular)
	out := make([]mgl32.Vec3, len(dirs))
	for i, d := range dirs {
		mip := roughnessToMip(at(i), l.cfg.MinRoughness, l.cfg.MaxRoughness, levels)
		out[i] = cubemap.SampleLevels(l.specular, d, mip)
	}
	return out, nil
}

// broadcast canonicalizes a per-batch value slice: a single element
// repeats across the batch, n elements map one-to-one.
func broadcast(vals []float32, n int) (func(i int) float32, error) {
	switch len(vals) {
	case 1:
		v := vals[0]
		return func(int) float32 { return v }, nil
	case n:
		return func(i int) float32 { return vals[i] }, nil
	}
	return nil, fmt.Errorf("%w: got %d roughness values for a batch of %d (want 1 or %d)",
		ErrInvalidArgument, len(vals), n, n)
}
