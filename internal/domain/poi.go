package domain

import "fmt"

// POICategory identifies one of the fixed set of point-of-interest
// categories. Exactly one category may be active at a time.
type POICategory string

const (
	CategoryHospital   POICategory = "hospital"
	CategoryPolice     POICategory = "police"
	CategorySchool     POICategory = "school"
	CategoryRestaurant POICategory = "restaurant"
	CategoryFuel       POICategory = "fuel"
	CategoryATM        POICategory = "atm"
	CategoryPharmacy   POICategory = "pharmacy"
	CategoryBank       POICategory = "bank"
	CategoryHotel      POICategory = "hotel"
	CategoryShopping   POICategory = "shopping"
)

// categoryTags maps each category to the external spatial-data tag it
// selects on. Most categories are OSM amenities; hotel and shopping
// live under different tag keys.
var categoryTags = map[POICategory][2]string{
	CategoryHospital:   {"amenity", "hospital"},
	CategoryPolice:     {"amenity", "police"},
	CategorySchool:     {"amenity", "school"},
	CategoryRestaurant: {"amenity", "restaurant"},
	CategoryFuel:       {"amenity", "fuel"},
	CategoryATM:        {"amenity", "atm"},
	CategoryPharmacy:   {"amenity", "pharmacy"},
	CategoryBank:       {"amenity", "bank"},
	CategoryHotel:      {"tourism", "hotel"},
	CategoryShopping:   {"shop", "mall"},
}

// ParseCategory validates a category name from the API surface.
func ParseCategory(s string) (POICategory, error) {
	c := POICategory(s)
	if _, ok := categoryTags[c]; !ok {
		return "", fmt.Errorf("unknown poi category %q", s)
	}
	return c, nil
}

// Tag returns the external-service tag key/value pair for the category.
func (c POICategory) Tag() (key, value string) {
	t := categoryTags[c]
	return t[0], t[1]
}

// PointOfInterest is a tagged real-world entity with a location. The ID
// is stable within one fetch only, not globally durable.
type PointOfInterest struct {
	ID         string
	Name       string
	Coordinate Coordinate
	Category   POICategory
	Attributes map[string]string
}
