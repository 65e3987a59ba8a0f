package service

import (
	"slices"

	"github.com/propdesk/backend/internal/derive"
	"github.com/propdesk/backend/internal/filter"
	"github.com/propdesk/backend/internal/models"
)

type VendorSortField string

const (
	VendorSortCompanyName  VendorSortField = "company_name"
	VendorSortRating       VendorSortField = "rating"
	VendorSortTotalJobs    VendorSortField = "total_jobs"
	VendorSortResponseTime VendorSortField = "response_time"
)

type VendorFilters struct {
	Search      string  `json:"search"`
	ServiceType string  `json:"service_type"`
	Active      *bool   `json:"active"`
	MinRating   float64 `json:"min_rating"`
}

func DefaultVendorFilters() VendorFilters {
	return VendorFilters{ServiceType: filter.All}
}

func DefaultVendorSort() filter.SortState[VendorSortField] {
	return filter.SortState[VendorSortField]{Field: VendorSortCompanyName, Direction: filter.Asc}
}

func (f VendorFilters) Clear() VendorFilters {
	return DefaultVendorFilters()
}

type VendorFilterPatch struct {
	Search      *string
	ServiceType *string
	Active      *string
	MinRating   *float64
}

func (f VendorFilters) Apply(p VendorFilterPatch) VendorFilters {
	if p.Search != nil {
		f.Search = *p.Search
	}
	if p.ServiceType != nil {
		f.ServiceType = *p.ServiceType
	}
	if p.Active != nil {
		f.Active = filter.ParseFlag(*p.Active)
	}
	if p.MinRating != nil {
		f.MinRating = derive.ClampRating(*p.MinRating)
	}
	return f
}

func (f VendorFilters) Predicate() filter.Predicate[models.Vendor] {
	b := filter.NewBuilder[models.Vendor]().
		Search(f.Search, vendorSearchFields, func(v models.Vendor) []string { return []string{v.PhoneNumber} }).
		Flag(f.Active, func(v models.Vendor) bool { return v.IsActive })
	if !filter.Inactive(f.ServiceType) {
		b.Where(OffersService(f.ServiceType))
	}
	if f.MinRating > 0 {
		floor := f.MinRating
		b.Where(func(v models.Vendor) bool { return derive.ClampRating(v.AverageRating) >= floor })
	}
	return b.Build()
}

// OffersService matches vendors listing the service among their categories,
// or whose type is the service.
func OffersService(service string) filter.Predicate[models.Vendor] {
	return func(v models.Vendor) bool {
		return v.Type == service || slices.Contains(v.ServiceCategories, service)
	}
}

func vendorSearchFields(v models.Vendor) []string {
	out := make([]string, 0, len(v.ServiceCategories)+2)
	out = append(out, v.CompanyName, v.Type)
	return append(out, v.ServiceCategories...)
}

var vendorComparators = map[VendorSortField]filter.Comparator[models.Vendor]{
	VendorSortCompanyName:  filter.ByString(func(v models.Vendor) string { return v.CompanyName }),
	VendorSortRating:       filter.ByNumber(func(v models.Vendor) float64 { return derive.ClampRating(v.AverageRating) }),
	VendorSortTotalJobs:    filter.ByNumber(func(v models.Vendor) float64 { return float64(derive.NonNegative(v.TotalJobs)) }),
	VendorSortResponseTime: filter.ByNumber(func(v models.Vendor) float64 { return float64(responseMinutes(v)) }),
}

func ParseVendorSortField(s string) (VendorSortField, bool) {
	f := VendorSortField(s)
	_, ok := vendorComparators[f]
	return f, ok
}

func FilterAndSortVendors(vendors []models.Vendor, f VendorFilters, s filter.SortState[VendorSortField]) []models.Vendor {
	return filter.FilterAndSort(vendors, f.Predicate(), s, vendorComparators)
}

// VendorView is a vendor with its performance figures filled in.
// MetricsSynthetic is set when any figure is a placeholder rather than an
// upstream value.
type VendorView struct {
	models.Vendor
	OnTimePercentage float64 `json:"on_time_percentage"`
	JobsPerMonth     int     `json:"jobs_per_month"`
	MetricsSynthetic bool    `json:"metrics_synthetic"`
}

func NewVendorViews(vendors []models.Vendor, synthetic *derive.SyntheticMetrics) []VendorView {
	out := make([]VendorView, 0, len(vendors))
	for _, v := range vendors {
		v.AverageRating = derive.ClampRating(v.AverageRating)
		v.TotalJobs = derive.NonNegative(v.TotalJobs)
		view := VendorView{Vendor: v}

		if v.OnTimePercentage != nil {
			view.OnTimePercentage = *v.OnTimePercentage
		} else if synthetic != nil {
			view.OnTimePercentage = float64(synthetic.OnTimePercentage())
			view.MetricsSynthetic = true
		}
		if v.JobsPerMonth != nil {
			view.JobsPerMonth = *v.JobsPerMonth
		} else {
			view.JobsPerMonth = derive.JobsPerMonth(v.TotalJobs)
			view.MetricsSynthetic = true
		}
		out = append(out, view)
	}
	return out
}
