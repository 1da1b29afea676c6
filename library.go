package envlight

import (
	"sync"

	"github.com/google/uuid"
)

// ProbeId identifies a probe within a Library.
type ProbeId string

// LibraryStats provides debugging and profiling information.
type LibraryStats struct {
	TotalProbes int
	CacheHits   int
	CacheMisses int
}

// Library is a path-keyed cache of environment probes, so a renderer
// referencing the same panorama from several scenes shares one probe.
// Unlike a single probe, a Library may be shared across goroutines.
type Library struct {
	mu     sync.Mutex
	cfg    Config
	log    Logger
	probes map[ProbeId]*EnvLight
	byPath map[string]ProbeId
	stats  LibraryStats
}

// NewLibrary returns a Library creating probes with the given config.
func NewLibrary(cfg Config) (*Library, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Library{
		cfg:    cfg,
		log:    cfg.Logger,
		probes: make(map[ProbeId]*EnvLight),
		byPath: make(map[string]ProbeId),
	}, nil
}

// Load returns the probe for a panorama path, loading it on first use
// and serving the cached probe afterwards.
func (lib *Library) Load(path string) (ProbeId, *EnvLight, error) {
	lib.mu.Lock()
	defer lib.mu.Unlock()

	if id, ok := lib.byPath[path]; ok {
		lib.stats.CacheHits++
		lib.log.Debugf("envlight library: cache hit for %s", path)
		return id, lib.probes[id], nil
	}
	lib.stats.CacheMisses++

	probe, err := NewFromFile(lib.cfg, path)
	if err != nil {
		return "", nil, err
	}
	id := makeProbeId()
	lib.probes[id] = probe
	lib.byPath[path] = id
	lib.stats.TotalProbes = len(lib.probes)
	lib.log.Infof("envlight library: loaded probe %s from %s", id, path)
	return id, probe, nil
}

// Add registers an existing probe (e.g. a procedural or trainable one)
// and returns its library id.
func (lib *Library) Add(probe *EnvLight) ProbeId {
	lib.mu.Lock()
	defer lib.mu.Unlock()

	id := makeProbeId()
	lib.probes[id] = probe
	lib.stats.TotalProbes = len(lib.probes)
	return id
}

// Get returns a probe by id.
func (lib *Library) Get(id ProbeId) (*EnvLight, bool) {
	lib.mu.Lock()
	defer lib.mu.Unlock()
	probe, ok := lib.probes[id]
	return probe, ok
}

// Remove drops a probe and any path mapping to it.
func (lib *Library) Remove(id ProbeId) {
	lib.mu.Lock()
	defer lib.mu.Unlock()

	delete(lib.probes, id)
	for path, pid := range lib.byPath {
		if pid == id {
			delete(lib.byPath, path)
		}
	}
	lib.stats.TotalProbes = len(lib.probes)
}

// Stats returns a snapshot of cache statistics.
func (lib *Library) Stats() LibraryStats {
	lib.mu.Lock()
	defer lib.mu.Unlock()
	return lib.stats
}

func makeProbeId() ProbeId {
	return ProbeId(uuid.NewString())
}
