// Package envlight implements a cubemap-based HDR environment light
// probe with precomputed mip chains for diffuse and roughness-dependent
// specular shading. The base cubemap may be fixed or trainable; derived
// state (specular chain, diffuse map) is always rebuilt from it.
package envlight

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/gekko3d/envlight/cubemap"
	"github.com/gekko3d/envlight/hdrio"
	"github.com/gekko3d/envlight/prefilter"
)

// Config describes a probe. Zero values are filled from DefaultConfig by
// the constructors; use DefaultConfig and override fields.
type Config struct {
	Scale        float32 // multiplier applied to loaded HDR values
	MinRes       int     // smallest mip face resolution, power of two
	MaxRes       int     // base face resolution, power of two
	MinRoughness float32
	MaxRoughness float32
	Cutoff       float32 // specular lobe energy cutoff in (0, 1)

	// RandScale and RandBias shape the random initializer: channels are
	// drawn from [RandBias, RandBias+RandScale).
	RandScale float32
	RandBias  float32

	// Trainable marks the base cubemap as externally mutated between
	// queries. It implies RebuildOnEveryQuery.
	Trainable bool

	// RebuildOnEveryQuery rebuilds the mip chain on every Evaluate call
	// instead of relying on explicit Rebuild calls.
	RebuildOnEveryQuery bool

	// FilterQuality scales the software prefilter sample grid. Ignored
	// when Filter is set.
	FilterQuality int

	// Filter overrides the prefilter implementation. Defaults to the
	// software reference filter.
	Filter prefilter.Filter

	// Logger receives lifecycle events. Defaults to a no-op logger.
	Logger Logger
}

// DefaultConfig returns the standard probe configuration.
func DefaultConfig() Config {
	return Config{
		Scale:         1.0,
		MinRes:        16,
		MaxRes:        512,
		MinRoughness:  0.08,
		MaxRoughness:  0.5,
		Cutoff:        0.99,
		RandScale:     0.0,
		RandBias:      0.5,
		FilterQuality: 3,
	}
}

func (cfg *Config) validate() error {
	if cfg.Scale == 0 {
		cfg.Scale = 1.0
	}
	if cfg.MinRes == 0 {
		cfg.MinRes = 16
	}
	if cfg.MaxRes == 0 {
		cfg.MaxRes = 512
	}
	if cfg.MinRoughness == 0 && cfg.MaxRoughness == 0 {
		cfg.MinRoughness, cfg.MaxRoughness = 0.08, 0.5
	}
	if cfg.Cutoff == 0 {
		cfg.Cutoff = 0.99
	}
	if cfg.FilterQuality == 0 {
		cfg.FilterQuality = 3
	}
	if cfg.Filter == nil {
		cfg.Filter = prefilter.NewSoftware(cfg.FilterQuality)
	}
	if cfg.Logger == nil {
		cfg.Logger = NewNopLogger()
	}
	if cfg.Trainable {
		cfg.RebuildOnEveryQuery = true
	}

	if cfg.MinRes <= 0 || !isPow2(cfg.MinRes) {
		return fmt.Errorf("%w: MinRes %d must be a positive power of two", ErrConfiguration, cfg.MinRes)
	}
	if cfg.MaxRes <= 0 || !isPow2(cfg.MaxRes) {
		return fmt.Errorf("%w: MaxRes %d must be a positive power of two", ErrConfiguration, cfg.MaxRes)
	}
	if mipLevels(cfg.MaxRes, cfg.MinRes) < 3 {
		return fmt.Errorf("%w: MaxRes %d over MinRes %d yields %d mip levels, need at least 3",
			ErrConfiguration, cfg.MaxRes, cfg.MinRes, mipLevels(cfg.MaxRes, cfg.MinRes))
	}
	if cfg.MinRoughness < 0 || cfg.MaxRoughness <= cfg.MinRoughness || cfg.MaxRoughness >= 1 {
		return fmt.Errorf("%w: roughness bounds [%v, %v] must satisfy 0 <= min < max < 1",
			ErrConfiguration, cfg.MinRoughness, cfg.MaxRoughness)
	}
	if cfg.Cutoff <= 0 || cfg.Cutoff >= 1 {
		return fmt.Errorf("%w: Cutoff %v outside (0, 1)", ErrConfiguration, cfg.Cutoff)
	}
	if cfg.Scale <= 0 {
		return fmt.Errorf("%w: Scale %v must be positive", ErrConfiguration, cfg.Scale)
	}
	return nil
}

func isPow2(v int) bool {
	return v > 0 && v&(v-1) == 0
}

// EnvLight is an environment light probe. It exclusively owns its base
// cubemap and the derived mip chain and diffuse map. It is not safe for
// concurrent mutation and querying; callers serialize training updates
// against evaluation.
type EnvLight struct {
	id  string
	cfg Config
	log Logger

	base      *cubemap.Cubemap
	baseImage *cubemap.Panorama // cached latlong of base, for Update rolls

	specular []*cubemap.Cubemap
	diffuse  *cubemap.Cubemap
}

// New creates a probe with a uniformly random base in
// [RandBias, RandBias+RandScale) and builds its mips.
func New(cfg Config) (*EnvLight, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	base, err := cubemap.NewRand(cfg.MaxRes, cfg.RandScale, cfg.RandBias, nil)
	if err != nil {
		return nil, err
	}
	return finishNew(cfg, base)
}

// NewFromColor creates a probe with every base texel set to color.
func NewFromColor(cfg Config, color mgl32.Vec3) (*EnvLight, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	base, err := cubemap.NewFill(cfg.MaxRes, color)
	if err != nil {
		return nil, err
	}
	return finishNew(cfg, base)
}

// NewProcedural creates a probe with a seamless Perlin-noise base.
func NewProcedural(cfg Config, seed int64) (*EnvLight, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	base, err := cubemap.NewProcedural(cfg.MaxRes, seed)
	if err != nil {
		return nil, err
	}
	return finishNew(cfg, base)
}

// NewFromFile creates a probe from a latlong panorama on disk.
func NewFromFile(cfg Config, path string) (*EnvLight, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	l := &EnvLight{id: uuid.NewString(), cfg: cfg, log: cfg.Logger}
	if err := l.Load(path); err != nil {
		return nil, err
	}
	return l, nil
}

func finishNew(cfg Config, base *cubemap.Cubemap) (*EnvLight, error) {
	l := &EnvLight{id: uuid.NewString(), cfg: cfg, log: cfg.Logger, base: base}
	if err := l.Rebuild(); err != nil {
		return nil, err
	}
	return l, nil
}

// ID returns the probe's unique id.
func (l *EnvLight) ID() string { return l.id }

// Config returns the probe's effective configuration.
func (l *EnvLight) Config() Config { return l.cfg }

// Base returns the owned base cubemap. Trainable callers mutate its
// buffers in place between queries; with RebuildOnEveryQuery unset an
// explicit Rebuild is required for the change to take effect.
func (l *EnvLight) Base() *cubemap.Cubemap { return l.base }

// SetBase replaces the base cubemap and invalidates the cached latlong
// image. The mip chain is not rebuilt here.
func (l *EnvLight) SetBase(base *cubemap.Cubemap) error {
	if base == nil || base.Res != l.cfg.MaxRes {
		return fmt.Errorf("%w: base must be a %d cubemap", ErrInvalidArgument, l.cfg.MaxRes)
	}
	l.base = base
	l.baseImage = nil
	return nil
}

// Load reads a latlong panorama, scales it by Config.Scale, projects it
// onto a cubemap and replaces the base, then rebuilds the mips. Load is
// atomic: on any failure the previous state is untouched.
func (l *EnvLight) Load(path string) error {
	pano, err := hdrio.Decode(path)
	if err != nil {
		return err
	}
	pano.Scale(l.cfg.Scale)
	base, err := cubemap.LatlongToCubemap(pano, l.cfg.MaxRes)
	if err != nil {
		return err
	}
	specular, diffuse, err := buildChain(base, l.cfg.MinRes, l.cfg.Filter, l.cfg.MinRoughness, l.cfg.MaxRoughness, l.cfg.Cutoff)
	if err != nil {
		return err
	}
	l.base = base
	l.baseImage = pano
	l.specular = specular
	l.diffuse = diffuse
	l.log.Infof("envlight %s: loaded %s (%dx%d panorama, %d mip levels)", l.id, path, pano.H, pano.W, len(specular))
	return nil
}

// Update rolls the environment by delta columns along the azimuth axis
// (circular shift, e.g. to rotate the light) and re-projects it onto the
// base cubemap. The latlong representation is generated from the base on
// first use and cached. Update does not rebuild the mips; rely on
// RebuildOnEveryQuery or call Rebuild.
func (l *EnvLight) Update(delta int) error {
	if l.base == nil {
		return fmt.Errorf("%w: update before initialization", ErrInvalidState)
	}
	if l.baseImage == nil {
		h := 4 * l.cfg.MaxRes
		img, err := cubemap.CubemapToLatlong(l.base, h, 2*h)
		if err != nil {
			return err
		}
		l.baseImage = img
	}
	rolled := l.baseImage.Roll(delta)
	base, err := cubemap.LatlongToCubemap(rolled, l.cfg.MaxRes)
	if err != nil {
		return err
	}
	l.baseImage = rolled
	l.base = base
	l.log.Debugf("envlight %s: rolled environment by %d columns", l.id, delta)
	return nil
}

// Rebuild derives the specular mip chain and diffuse map from the
// current base, replacing any previous derived state.
func (l *EnvLight) Rebuild() error {
	if l.base == nil {
		return fmt.Errorf("%w: rebuild before initialization", ErrInvalidState)
	}
	specular, diffuse, err := buildChain(l.base, l.cfg.MinRes, l.cfg.Filter, l.cfg.MinRoughness, l.cfg.MaxRoughness, l.cfg.Cutoff)
	if err != nil {
		return err
	}
	l.specular = specular
	l.diffuse = diffuse
	return nil
}

// Evaluate returns diffuse radiance for the shading normals and specular
// radiance for the reflection directions at the given roughness values
// (one per direction, or a single broadcast value). Under
// RebuildOnEveryQuery (implied by Trainable) the mip chain is rebuilt
// from the current base first, so external base mutations are always
// reflected.
func (l *EnvLight) Evaluate(shadingNormals, reflectiveDirs []mgl32.Vec3, roughness []float32) (diffuse, specular []mgl32.Vec3, err error) {
	if l.cfg.RebuildOnEveryQuery {
		if err := l.Rebuild(); err != nil {
			return nil, nil, err
		}
	}
	diffuse, err = l.SampleDiffuse(shadingNormals)
	if err != nil {
		return nil, nil, err
	}
	specular, err = l.SampleSpecular(reflectiveDirs, roughness)
	if err != nil {
		return nil, nil, err
	}
	return diffuse, specular, nil
}

// MipLevelCount returns the specular chain length, 0 before the first
// build.
func (l *EnvLight) MipLevelCount() int { return len(l.specular) }

// ExportPanorama projects the current base to an h x w latlong image for
// inspection. Independent of the mip chain.
func (l *EnvLight) ExportPanorama(h, w int) (*cubemap.Panorama, error) {
	if l.base == nil {
		return nil, fmt.Errorf("%w: export before initialization", ErrInvalidState)
	}
	return cubemap.CubemapToLatlong(l.base, h, w)
}

// SavePanorama writes the current base as a 512x1024 Radiance .hdr
// panorama.
func (l *EnvLight) SavePanorama(path string) error {
	pano, err := l.ExportPanorama(512, 1024)
	if err != nil {
		return err
	}
	return hdrio.Encode(path, pano)
}
