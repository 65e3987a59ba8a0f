package service

import (
	"github.com/propdesk/backend/internal/derive"
	"github.com/propdesk/backend/internal/filter"
	"github.com/propdesk/backend/internal/models"
)

type PropertySortField string

const (
	PropertySortName       PropertySortField = "property_name"
	PropertySortAddress    PropertySortField = "full_address"
	PropertySortTenantName PropertySortField = "tenant_name"
)

const (
	OccupancyOccupied = "occupied"
	OccupancyVacant   = "vacant"
)

type PropertyFilters struct {
	Search    string `json:"search"`
	Occupancy string `json:"occupancy"`
	Active    *bool  `json:"active"`
}

func DefaultPropertyFilters() PropertyFilters {
	return PropertyFilters{Occupancy: filter.All}
}

func DefaultPropertySort() filter.SortState[PropertySortField] {
	return filter.SortState[PropertySortField]{Field: PropertySortName, Direction: filter.Asc}
}

func (f PropertyFilters) Clear() PropertyFilters {
	return DefaultPropertyFilters()
}

type PropertyFilterPatch struct {
	Search    *string
	Occupancy *string
	Active    *string
}

func (f PropertyFilters) Apply(p PropertyFilterPatch) PropertyFilters {
	if p.Search != nil {
		f.Search = *p.Search
	}
	if p.Occupancy != nil {
		f.Occupancy = *p.Occupancy
	}
	if p.Active != nil {
		f.Active = filter.ParseFlag(*p.Active)
	}
	return f
}

// Predicate filters on is_occupied alone; a unit flagged occupied without a
// tenant name still counts as occupied.
func (f PropertyFilters) Predicate() filter.Predicate[models.PropertyUnit] {
	b := filter.NewBuilder[models.PropertyUnit]().
		Search(f.Search, propertySearchFields, nil).
		Flag(f.Active, func(u models.PropertyUnit) bool { return u.IsActive })
	switch f.Occupancy {
	case OccupancyOccupied:
		b.Where(func(u models.PropertyUnit) bool { return u.IsOccupied })
	case OccupancyVacant:
		b.Where(func(u models.PropertyUnit) bool { return !u.IsOccupied })
	}
	return b.Build()
}

func propertySearchFields(u models.PropertyUnit) []string {
	return []string{u.PropertyName, u.FullAddress, filter.Deref(u.TenantName), filter.Deref(u.ManagerName)}
}

var propertyComparators = map[PropertySortField]filter.Comparator[models.PropertyUnit]{
	PropertySortName:       filter.ByString(func(u models.PropertyUnit) string { return u.PropertyName }),
	PropertySortAddress:    filter.ByString(func(u models.PropertyUnit) string { return u.FullAddress }),
	PropertySortTenantName: filter.ByString(func(u models.PropertyUnit) string { return filter.Deref(u.TenantName) }),
}

func ParsePropertySortField(s string) (PropertySortField, bool) {
	f := PropertySortField(s)
	_, ok := propertyComparators[f]
	return f, ok
}

func FilterAndSortProperties(units []models.PropertyUnit, f PropertyFilters, s filter.SortState[PropertySortField]) []models.PropertyUnit {
	return filter.FilterAndSort(units, f.Predicate(), s, propertyComparators)
}

// Occupancy counts occupied units and returns the occupancy percentage.
func Occupancy(units []models.PropertyUnit) (occupied int, rate float64) {
	for _, u := range units {
		if u.IsOccupied {
			occupied++
		}
	}
	return occupied, derive.Percent(occupied, len(units))
}
