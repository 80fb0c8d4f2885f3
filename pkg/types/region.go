package domain

import (
	"errors"
	"fmt"
	"slices"
)

// DefaultRegionRadius is the search radius of region cities that set none.
const DefaultRegionRadius = 500

// Region is a named group of cities that items search together, such as
// a country covered by a handful of large radius searches.
type Region struct {
	Name       string     `yaml:"-"`
	FullName   string     `yaml:"full_name"`
	SearchCity StringList `yaml:"search_city"`
	CityName   StringList `yaml:"city_name"`
	Radius     IntList    `yaml:"radius"`
}

// Normalize fills the per-city radius list and checks that the city lists
// line up.
func (r *Region) Normalize() error {
	if len(r.SearchCity) == 0 {
		return fmt.Errorf("region %s: search_city is required", r.Name)
	}
	switch n := len(r.Radius); {
	case n == 0:
		r.Radius = make(IntList, len(r.SearchCity))
		for i := range r.Radius {
			r.Radius[i] = DefaultRegionRadius
		}
	case n == 1:
		r.Radius = slices.Repeat(IntList{r.Radius[0]}, len(r.SearchCity))
	case n != len(r.SearchCity):
		return fmt.Errorf("region %s: radius needs one value or one per search_city (%d), got %d",
			r.Name, len(r.SearchCity), n)
	}
	if n := len(r.CityName); n > 0 && n != len(r.SearchCity) {
		return fmt.Errorf("region %s: city_name needs one value per search_city (%d), got %d",
			r.Name, len(r.SearchCity), n)
	}
	return nil
}

// ExpandRegions replaces the cities, names and radii of o with those of
// its search regions, in order and without repeating a city. Options
// without search_region are left alone.
func (o *SearchOptions) ExpandRegions(regions map[string]*Region) error {
	if len(o.SearchRegion) == 0 {
		return nil
	}

	var (
		cities StringList
		names  StringList
		radius IntList
		errs   []error
	)
	for _, name := range o.SearchRegion {
		r, ok := regions[name]
		if !ok {
			errs = append(errs, fmt.Errorf("unknown search_region %q", name))
			continue
		}
		for i, city := range r.SearchCity {
			if slices.Contains(cities, city) {
				continue
			}
			cityName, cityRadius := city, DefaultRegionRadius
			if i < len(r.CityName) {
				cityName = r.CityName[i]
			}
			if i < len(r.Radius) {
				cityRadius = r.Radius[i]
			}
			cities = append(cities, city)
			names = append(names, cityName)
			radius = append(radius, cityRadius)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	o.SearchCity, o.CityName, o.Radius = cities, names, radius
	return nil
}
