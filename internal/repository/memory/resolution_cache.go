package memory

import (
	"time"

	"school-concierge-be/pkg/answers"
	"school-concierge-be/pkg/resolve"

	"github.com/patrickmn/go-cache"
)

// ResolutionCache memoizes retrieval-tier results so repeated questions do
// not re-run the embedding and generation calls. Curated-table tiers are
// cheap enough to skip caching.
type ResolutionCache struct {
	cache *cache.Cache
}

func NewResolutionCache() *ResolutionCache {
	// Default expiration of 1 hour, purge sweep every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &ResolutionCache{
		cache: c,
	}
}

func (r *ResolutionCache) Save(question string, result *resolve.Result) {
	r.cache.Set(answers.Normalize(question), result, cache.DefaultExpiration)
}

func (r *ResolutionCache) Get(question string) (*resolve.Result, bool) {
	if x, found := r.cache.Get(answers.Normalize(question)); found {
		return x.(*resolve.Result), true
	}
	return nil, false
}

func (r *ResolutionCache) Flush() {
	r.cache.Flush()
}
