// Package query turns listing search parameters into store filters.
package query

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vidyaa00/REMS/services/estate-service/internal/model"
)

const (
	DefaultLimit = 10
	DefaultPage  = 1
	MaxLimit     = 100
)

var sortableFields = map[string]struct{}{
	"price":     {},
	"createdAt": {},
	"updatedAt": {},
	"bedrooms":  {},
	"bathrooms": {},
	"area":      {},
	"views":     {},
	"title":     {},
	"yearBuilt": {},
}

// ParamError reports an unusable query parameter.
type ParamError struct {
	Param   string
	Message string
}

func (e *ParamError) Error() string {
	return e.Message
}

func invalidParam(param string) *ParamError {
	return &ParamError{Param: param, Message: fmt.Sprintf("Invalid %s parameter", param)}
}

// Sort orders results by a single field.
type Sort struct {
	Field string
	Desc  bool
}

// PropertyFilter is the parsed form of a listing search. Zero-valued optional
// fields are unconstrained.
type PropertyFilter struct {
	Type      string
	Status    string
	MinPrice  *float64
	MaxPrice  *float64
	Bedrooms  *int
	Bathrooms *int
	Location  string
	Sort      *Sort
	Limit     int
	Page      int
}

// ParsePropertyFilter reads type, status, minPrice, maxPrice, bedrooms,
// bathrooms, location, sortBy, limit and page. Empty values count as absent;
// values that do not parse are rejected.
func ParsePropertyFilter(values url.Values) (PropertyFilter, error) {
	f := PropertyFilter{
		Type:     strings.TrimSpace(values.Get("type")),
		Status:   strings.TrimSpace(values.Get("status")),
		Location: strings.TrimSpace(values.Get("location")),
		Limit:    DefaultLimit,
		Page:     DefaultPage,
	}

	var err error
	if f.MinPrice, err = parseFloat(values, "minPrice"); err != nil {
		return PropertyFilter{}, err
	}
	if f.MaxPrice, err = parseFloat(values, "maxPrice"); err != nil {
		return PropertyFilter{}, err
	}
	if f.Bedrooms, err = parseCount(values, "bedrooms"); err != nil {
		return PropertyFilter{}, err
	}
	if f.Bathrooms, err = parseCount(values, "bathrooms"); err != nil {
		return PropertyFilter{}, err
	}

	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return PropertyFilter{}, invalidParam("limit")
		}
		f.Limit = min(n, MaxLimit)
	}
	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || int64(n-1) > math.MaxInt64/int64(f.Limit) {
			return PropertyFilter{}, invalidParam("page")
		}
		f.Page = n
	}

	if f.Sort, err = ParseSort(values.Get("sortBy")); err != nil {
		return PropertyFilter{}, err
	}

	return f, nil
}

// ParseSort parses "field:direction". Only "desc" sorts descending.
func ParseSort(raw string) (*Sort, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	field, direction, _ := strings.Cut(raw, ":")
	if _, ok := sortableFields[field]; !ok {
		return nil, invalidParam("sortBy")
	}

	return &Sort{Field: field, Desc: direction == "desc"}, nil
}

func parseFloat(values url.Values, param string) (*float64, error) {
	raw := strings.TrimSpace(values.Get(param))
	if raw == "" {
		return nil, nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, invalidParam(param)
	}

	return &v, nil
}

func parseCount(values url.Values, param string) (*int, error) {
	raw := strings.TrimSpace(values.Get(param))
	if raw == "" {
		return nil, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return nil, invalidParam(param)
	}

	return &v, nil
}

// Skip is the number of matching records before the requested page.
func (f PropertyFilter) Skip() int64 {
	return int64(f.Page-1) * int64(f.Limit)
}

// BSON is the Mongo filter document for f.
func (f PropertyFilter) BSON() bson.M {
	filter := bson.M{}

	if f.Type != "" {
		filter["type"] = f.Type
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		filter["price"] = price
	}
	if f.Bedrooms != nil {
		filter["bedrooms"] = *f.Bedrooms
	}
	if f.Bathrooms != nil {
		filter["bathrooms"] = *f.Bathrooms
	}
	if f.Location != "" {
		filter["location"] = bson.Regex{Pattern: regexp.QuoteMeta(f.Location), Options: "i"}
	}

	return filter
}

// SortDoc is the Mongo sort document, or nil for the store's natural order.
// Ties fall back to _id so pages stay stable.
func (f PropertyFilter) SortDoc() bson.D {
	if f.Sort == nil {
		return nil
	}

	order := 1
	if f.Sort.Desc {
		order = -1
	}

	return bson.D{{Key: f.Sort.Field, Value: order}, {Key: "_id", Value: 1}}
}

// Matches evaluates f against a single property, mirroring BSON.
func (f PropertyFilter) Matches(p *model.Property) bool {
	if f.Type != "" && string(p.Type) != f.Type {
		return false
	}
	if f.Status != "" && string(p.Status) != f.Status {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.Bedrooms != nil && p.Bedrooms != *f.Bedrooms {
		return false
	}
	if f.Bathrooms != nil && p.Bathrooms != *f.Bathrooms {
		return false
	}
	if f.Location != "" && !strings.Contains(strings.ToLower(p.Location), strings.ToLower(f.Location)) {
		return false
	}

	return true
}

// Pages is the number of pages needed for total records.
func Pages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}

	return int((total + int64(limit) - 1) / int64(limit))
}
