package envlight

import (
	"errors"

	"github.com/gekko3d/envlight/cubemap"
)

// Error kinds. All failures surface synchronously and wrap one of these,
// so callers can branch with errors.Is.
var (
	// ErrInvalidArgument covers bad resolutions, empty images and
	// malformed batches. Shared with the cubemap package.
	ErrInvalidArgument = cubemap.ErrInvalidArgument

	// ErrInvalidState is returned when derived state (mip chain,
	// diffuse map) is queried before it has been built.
	ErrInvalidState = errors.New("envlight: invalid state")

	// ErrConfiguration is returned for configurations that cannot
	// produce a valid probe, e.g. a mip chain too short for roughness
	// interpolation.
	ErrConfiguration = errors.New("envlight: invalid configuration")
)
