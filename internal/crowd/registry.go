package crowd

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/MenukaRanasinghe/SmartSL/internal/common"
)

// StaticRegistry is an immutable name -> coordinates table.
type StaticRegistry struct {
	byKey map[string]Place
	order []Place
}

// NewStaticRegistry builds a registry from places. Later duplicates (by
// normalized name) are ignored.
func NewStaticRegistry(places []Place) *StaticRegistry {
	r := &StaticRegistry{byKey: make(map[string]Place, len(places))}
	for _, p := range places {
		key := common.NormalizeName(p.Name)
		if key == "" {
			continue
		}
		if _, dup := r.byKey[key]; dup {
			continue
		}
		r.byKey[key] = p
		r.order = append(r.order, p)
	}
	return r
}

// Lookup implements Registry.
func (r *StaticRegistry) Lookup(name string) (Place, bool) {
	p, ok := r.byKey[common.NormalizeName(name)]
	return p, ok
}

// Places returns the entries in registration order.
func (r *StaticRegistry) Places() []Place {
	out := make([]Place, len(r.order))
	copy(out, r.order)
	return out
}

// DefaultPlaces is the built-in set of tracked points of interest.
var DefaultPlaces = []Place{
	{Name: "Sigiriya", Coordinates: Coordinates{Lat: 7.9576, Lon: 80.7603}},
	{Name: "Pidurangala", Coordinates: Coordinates{Lat: 7.9568, Lon: 80.7453}},
	{Name: "Kandalama", Coordinates: Coordinates{Lat: 7.8763, Lon: 80.7043}},
	{Name: "Cave Temple", Coordinates: Coordinates{Lat: 7.856, Lon: 80.649}},
	{Name: "Popham's Arboretum", Coordinates: Coordinates{Lat: 7.855, Lon: 80.748}},
	{Name: "Sri Dalada Maligawa", Coordinates: Coordinates{Lat: 7.2936, Lon: 80.6413}},
	{Name: "Leisure World Peradeniya", Coordinates: Coordinates{Lat: 7.2715, Lon: 80.5956}},
	{Name: "Polgolla Dam", Coordinates: Coordinates{Lat: 7.328, Lon: 80.662}},
	{Name: "Sahas Uyana", Coordinates: Coordinates{Lat: 7.3, Lon: 80.65}},
	{Name: "Dunumadalawa Forest Reserve", Coordinates: Coordinates{Lat: 7.286, Lon: 80.625}},
	{Name: "Piduruthalagala", Coordinates: Coordinates{Lat: 7.005, Lon: 80.78}},
	{Name: "Adam's Peak", Coordinates: Coordinates{Lat: 6.809, Lon: 80.499}},
	{Name: "Horton Plains", Coordinates: Coordinates{Lat: 6.802, Lon: 80.799}},
	{Name: "Gregory Park", Coordinates: Coordinates{Lat: 6.957, Lon: 80.777}},
	{Name: "Devon Falls", Coordinates: Coordinates{Lat: 6.974, Lon: 80.67}},
	{Name: "Galle Face", Coordinates: Coordinates{Lat: 6.922, Lon: 79.847}},
	{Name: "Gangaramaya", Coordinates: Coordinates{Lat: 6.9147, Lon: 79.8522}},
	{Name: "Diyatha Uyana", Coordinates: Coordinates{Lat: 6.9069, Lon: 79.9099}},
	{Name: "Viharamahadevi Park", Coordinates: Coordinates{Lat: 6.914, Lon: 79.861}},
	{Name: "Lotus Tower", Coordinates: Coordinates{Lat: 6.9272, Lon: 79.8487}},
}

// registryFile is the on-disk YAML layout:
//
//	places:
//	  Galle Face: {lat: 6.922, lon: 79.847}
type registryFile struct {
	Places map[string]Coordinates `yaml:"places"`
}

// LoadRegistryFile reads a YAML registry. Entries are sorted by name since
// YAML maps carry no order.
func LoadRegistryFile(path string) (*StaticRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry %s: %w", path, err)
	}

	var f registryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	if len(f.Places) == 0 {
		return nil, fmt.Errorf("registry %s has no places", path)
	}

	names := make([]string, 0, len(f.Places))
	for name := range f.Places {
		names = append(names, name)
	}
	sort.Strings(names)

	places := make([]Place, 0, len(names))
	for _, name := range names {
		places = append(places, Place{Name: name, Coordinates: f.Places[name]})
	}
	return NewStaticRegistry(places), nil
}
