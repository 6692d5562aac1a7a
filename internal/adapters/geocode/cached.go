package geocode

import (
	"context"
	"log"

	"route-planner-service/internal/domain"
	"route-planner-service/internal/ports"
)

// CachedGeocoder fronts a Geocoder with a GeocodeCache for reverse lookups.
// Cache failures fall through to the provider; a write failure after a
// successful lookup is logged and otherwise ignored.
type CachedGeocoder struct {
	inner ports.Geocoder
	cache ports.GeocodeCache
}

func NewCachedGeocoder(inner ports.Geocoder, cache ports.GeocodeCache) *CachedGeocoder {
	return &CachedGeocoder{inner: inner, cache: cache}
}

func (c *CachedGeocoder) ReverseGeocode(ctx context.Context, pin domain.Pin) (string, error) {
	if address, ok, err := c.cache.Get(ctx, pin); err != nil {
		log.Printf("op=geocode.CacheGet err=%v", err)
	} else if ok {
		return address, nil
	}

	address, err := c.inner.ReverseGeocode(ctx, pin)
	if err != nil {
		return "", err
	}

	if err := c.cache.Put(ctx, pin, address); err != nil {
		log.Printf("op=geocode.CachePut err=%v", err)
	}
	return address, nil
}

// Search is not cached; forward queries are interactive and rarely repeat.
func (c *CachedGeocoder) Search(ctx context.Context, query string, opts ports.SearchOptions) ([]ports.Place, error) {
	return c.inner.Search(ctx, query, opts)
}
