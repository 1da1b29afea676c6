package envlight

import (
	"fmt"

	"github.com/gekko3d/envlight/cubemap"
	"github.com/gekko3d/envlight/prefilter"
)

// mipLevels returns the chain length produced by halving baseRes until
// it reaches minRes: floor(log2(baseRes/minRes)) + 1 for power-of-two
// inputs.
func mipLevels(baseRes, minRes int) int {
	levels := 1
	for r := baseRes; r > minRes; r /= 2 {
		levels++
	}
	return levels
}

// buildChain derives the specular mip chain and the diffuse map from an
// unfiltered base cubemap. The base is never mutated or aliased: every
// chain level, including level 0, is a freshly filtered cubemap.
//
// Levels 0..M-2 are specular-filtered with roughness interpolated
// linearly from minRoughness at level 0 to maxRoughness at level M-2;
// the last level is filtered at roughness 1. That requires at least 3
// levels, which the probe configuration guarantees up front.
func buildChain(base *cubemap.Cubemap, minRes int, f prefilter.Filter, minRoughness, maxRoughness, cutoff float32) (specular []*cubemap.Cubemap, diffuse *cubemap.Cubemap, err error) {
	specular = []*cubemap.Cubemap{base}
	for specular[len(specular)-1].Res > minRes {
		next, err := specular[len(specular)-1].Downsample()
		if err != nil {
			return nil, nil, err
		}
		specular = append(specular, next)
	}

	levels := len(specular)
	if levels < 3 {
		return nil, nil, fmt.Errorf("%w: mip chain has %d levels, roughness interpolation needs at least 3 (base %d, min %d)",
			ErrConfiguration, levels, base.Res, minRes)
	}

	diffuse, err = f.Diffuse(specular[levels-1])
	if err != nil {
		return nil, nil, err
	}

	for idx := 0; idx < levels-1; idx++ {
		roughness := float32(idx)/float32(levels-2)*(maxRoughness-minRoughness) + minRoughness
		specular[idx], err = f.Specular(specular[idx], roughness, cutoff)
		if err != nil {
			return nil, nil, err
		}
	}
	specular[levels-1], err = f.Specular(specular[levels-1], 1.0, cutoff)
	if err != nil {
		return nil, nil, err
	}
	return specular, diffuse, nil
}

// roughnessToMip maps roughness to a fractional mip level:
//
//	roughness: 0 -> minRoughness -> maxRoughness -> 1
//	mip level: 0 -> 0            -> M-2          -> M-1
//
// Piecewise linear and continuous at maxRoughness.
func roughnessToMip(roughness, minRoughness, maxRoughness float32, levels int) float32 {
	if roughness < maxRoughness {
		r := clamp(roughness, minRoughness, maxRoughness)
		return (r - minRoughness) / (maxRoughness - minRoughness) * float32(levels-2)
	}
	r := clamp(roughness, maxRoughness, 1.0)
	return (r-maxRoughness)/(1.0-maxRoughness) + float32(levels-2)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
