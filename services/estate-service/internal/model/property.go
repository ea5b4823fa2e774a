package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// PropertyType is the kind of dwelling or plot.
type PropertyType string

const (
	TypeHouse     PropertyType = "house"
	TypeApartment PropertyType = "apartment"
	TypeVilla     PropertyType = "villa"
	TypePenthouse PropertyType = "penthouse"
	TypeLand      PropertyType = "land"
	TypeCabin     PropertyType = "cabin"
)

// Valid reports whether t is a known property type.
func (t PropertyType) Valid() bool {
	switch t {
	case TypeHouse, TypeApartment, TypeVilla, TypePenthouse, TypeLand, TypeCabin:
		return true
	}
	return false
}

// PropertyStatus is the market status of a listing.
type PropertyStatus string

const (
	StatusForSale PropertyStatus = "for-sale"
	StatusForRent PropertyStatus = "for-rent"
	StatusRented  PropertyStatus = "rented"
	StatusSold    PropertyStatus = "sold"
)

func (s PropertyStatus) Valid() bool {
	switch s {
	case StatusForSale, StatusForRent, StatusRented, StatusSold:
		return true
	}
	return false
}

// Address is the structured postal address of a property.
type Address struct {
	Street  string `bson:"street,omitempty"  json:"street,omitempty"`
	City    string `bson:"city,omitempty"    json:"city,omitempty"`
	State   string `bson:"state,omitempty"   json:"state,omitempty"`
	ZipCode string `bson:"zipCode,omitempty" json:"zipCode,omitempty"`
	Country string `bson:"country,omitempty" json:"country,omitempty"`
}

// Property is a real-estate listing.
type Property struct {
	ID          bson.ObjectID  `bson:"_id,omitempty"       json:"_id"`
	Title       string         `bson:"title"               json:"title"`
	Description string         `bson:"description"         json:"description"`
	Price       float64        `bson:"price"               json:"price"`
	Location    string         `bson:"location"            json:"location"`
	Address     Address        `bson:"address"             json:"address"`
	Type        PropertyType   `bson:"type"                json:"type"`
	Status      PropertyStatus `bson:"status"              json:"status"`
	Bedrooms    int            `bson:"bedrooms"            json:"bedrooms"`
	Bathrooms   int            `bson:"bathrooms"           json:"bathrooms"`
	Area        float64        `bson:"area"                json:"area"`
	YearBuilt   *int           `bson:"yearBuilt,omitempty" json:"yearBuilt,omitempty"`
	Features    []string       `bson:"features"            json:"features"`
	Amenities   []string       `bson:"amenities"           json:"amenities"`
	Images      []string       `bson:"images"              json:"images"`
	Agent       bson.ObjectID  `bson:"agent"               json:"agent"`
	Owner       bson.ObjectID  `bson:"owner"               json:"owner"`
	IsFeatured  bool           `bson:"isFeatured"          json:"isFeatured"`
	Views       int64          `bson:"views"               json:"views"`
	CreatedAt   time.Time      `bson:"createdAt"           json:"createdAt"`
	UpdatedAt   time.Time      `bson:"updatedAt"           json:"updatedAt"`
}

// PropertyDetail is a property with its agent and owner expanded to contacts.
// A nil contact means the referenced user no longer exists.
type PropertyDetail struct {
	*Property
	Agent *Contact `json:"agent"`
	Owner *Contact `json:"owner"`
}

// PropertySummary is the minimal projection used for visited-property lists.
type PropertySummary struct {
	ID       bson.ObjectID `bson:"_id"      json:"_id"`
	Title    string        `bson:"title"    json:"title"`
	Location string        `bson:"location" json:"location"`
	Price    float64       `bson:"price"    json:"price"`
	Images   []string      `bson:"images"   json:"images"`
	Type     PropertyType  `bson:"type"     json:"type"`
}
