package pipeline

import (
	"github.com/sarchlab/rvpipe/timing/cache"
)

// WithDataCache routes the data port through the given cache. Loads and
// stores then hit or miss in the cache, which writes dirty lines back to
// its own backing store.
func WithDataCache(dcache *cache.Cache) PipelineOption {
	return func(p *Pipeline) {
		p.dcache = dcache
	}
}

// DataCache returns the data cache, or nil when loads and stores go
// straight to memory.
func (p *Pipeline) DataCache() *cache.Cache {
	return p.dcache
}

// DataCacheStats returns the data cache statistics, and false when the
// pipeline has no data cache.
func (p *Pipeline) DataCacheStats() (cache.Statistics, bool) {
	if p.dcache == nil {
		return cache.Statistics{}, false
	}
	return p.dcache.Stats(), true
}
