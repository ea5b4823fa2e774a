package query

import (
	"cmp"
	"slices"
	"strings"

	"github.com/vidyaa00/REMS/services/estate-service/internal/model"
)

// SortProperties orders props in place by s. Ties keep their existing order.
// A nil s leaves the slice untouched.
func SortProperties(props []*model.Property, s *Sort) {
	if s == nil {
		return
	}

	slices.SortStableFunc(props, func(a, b *model.Property) int {
		c := compareField(a, b, s.Field)
		if s.Desc {
			return -c
		}
		return c
	})
}

func compareField(a, b *model.Property, field string) int {
	switch field {
	case "price":
		return cmp.Compare(a.Price, b.Price)
	case "area":
		return cmp.Compare(a.Area, b.Area)
	case "bedrooms":
		return cmp.Compare(a.Bedrooms, b.Bedrooms)
	case "bathrooms":
		return cmp.Compare(a.Bathrooms, b.Bathrooms)
	case "views":
		return cmp.Compare(a.Views, b.Views)
	case "title":
		return strings.Compare(a.Title, b.Title)
	case "createdAt":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "updatedAt":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case "yearBuilt":
		// missing values sort first, as in Mongo
		switch {
		case a.YearBuilt == nil && b.YearBuilt == nil:
			return 0
		case a.YearBuilt == nil:
			return -1
		case b.YearBuilt == nil:
			return 1
		}
		return cmp.Compare(*a.YearBuilt, *b.YearBuilt)
	}
	return 0
}
