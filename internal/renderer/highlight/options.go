package highlight

import (
	"github.com/dshills/hlsync/internal/config"
	"github.com/dshills/hlsync/internal/renderer/linecache"
	"github.com/dshills/hlsync/internal/renderer/spatial"
)

// settings collects construction-time tuning.
type settings struct {
	cfg        *config.Config
	spatial    spatial.Options
	cache      linecache.Config
	precompute bool
}

func defaultSettings() settings {
	return settings{
		spatial:    spatial.DefaultOptions(),
		cache:      linecache.DefaultConfig(),
		precompute: true,
	}
}

// Option configures a Session.
type Option func(*settings)

// WithConfig applies the overlay section of cfg. The configuration is
// validated by New.
func WithConfig(cfg *config.Config) Option {
	return func(s *settings) {
		if cfg == nil {
			return
		}
		s.cfg = cfg
		s.spatial = cfg.SpatialOptions()
		s.cache = cfg.CacheConfig()
		s.precompute = cfg.Overlay.Precompute
	}
}

// WithSpatialOptions sets the spatial index bucketing.
func WithSpatialOptions(opts spatial.Options) Option {
	return func(s *settings) {
		s.spatial = opts
	}
}

// WithCacheCapacity sets the number of lines kept in the per-line cache.
func WithCacheCapacity(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.cache.Capacity = n
		}
	}
}

// WithPrecompute enables or disables the precompute path at construction.
func WithPrecompute(enable bool) Option {
	return func(s *settings) {
		s.precompute = enable
	}
}
