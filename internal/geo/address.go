package geo

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kelvins/geocoder"
)

var errNoAddress = errors.New("no address found")

// reverseFunc matches geocoder.GeocodingReverse.
type reverseFunc func(geocoder.Location) ([]geocoder.Address, error)

// AddressResolver turns coordinates into a formatted address using the
// Google geocoding API. Results are memoized per coordinate since the set of
// tracked places is small and static.
type AddressResolver struct {
	reverse reverseFunc

	mu    sync.RWMutex
	cache map[geocoder.Location]string
}

// NewAddressResolver configures the geocoder with apiKey.
func NewAddressResolver(apiKey string) *AddressResolver {
	geocoder.ApiKey = apiKey
	return newAddressResolver(geocoder.GeocodingReverse)
}

func newAddressResolver(reverse reverseFunc) *AddressResolver {
	return &AddressResolver{
		reverse: reverse,
		cache:   make(map[geocoder.Location]string),
	}
}

// Address implements crowd.AddressLookup.
func (r *AddressResolver) Address(ctx context.Context, lat, lon float64) (string, error) {
	loc := geocoder.Location{Latitude: lat, Longitude: lon}

	r.mu.RLock()
	addr, ok := r.cache[loc]
	r.mu.RUnlock()
	if ok {
		return addr, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	addresses, err := r.reverse(loc)
	if err != nil {
		return "", fmt.Errorf("reverse geocode %f,%f: %w", lat, lon, err)
	}
	if len(addresses) == 0 || addresses[0].FormattedAddress == "" {
		return "", errNoAddress
	}

	addr = addresses[0].FormattedAddress
	r.mu.Lock()
	r.cache[loc] = addr
	r.mu.Unlock()
	return addr, nil
}
