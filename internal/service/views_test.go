package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propdesk/backend/internal/derive"
	"github.com/propdesk/backend/internal/filter"
	"github.com/propdesk/backend/internal/models"
)

func strPtr(s string) *string { return &s }

func day(d int) time.Time {
	return time.Date(2024, 3, d, 9, 0, 0, 0, time.UTC)
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, id(it))
	}
	return out
}

func ticketIDs(ts []models.Ticket) []string { return ids(ts, func(t models.Ticket) string { return t.ID }) }

func sampleTickets() []models.Ticket {
	return []models.Ticket{
		{ID: "T1", PropertyName: "Maple Court", UnitAddress: "12 Maple Ave", IssueDescription: "Burst pipe", Urgency: models.UrgencyEmergency, Status: models.TicketOpen, CreatedAt: day(1), UpdatedAt: day(1)},
		{ID: "T2", PropertyName: "Harbor View", UnitAddress: "400 Harbor Blvd", IssueDescription: "No heat", Urgency: models.UrgencyUrgent, Status: models.TicketInProgress, ServiceProvider: strPtr("Comfort HVAC"), CreatedAt: day(2), UpdatedAt: day(3)},
		{ID: "T3", PropertyName: "cedar lofts", UnitAddress: "88 Cedar St", IssueDescription: "Squeaky door", Urgency: models.UrgencyStandard, Status: models.TicketResolved, ServiceProvider: strPtr("AllFix"), CreatedAt: day(3), UpdatedAt: day(5)},
	}
}

func TestTicketsUrgencyFilterAndCreatedDesc(t *testing.T) {
	tickets := sampleTickets()

	urgent := DefaultTicketFilters().Apply(TicketFilterPatch{Urgency: strPtr("urgent")})
	got := FilterAndSortTickets(tickets, urgent, DefaultTicketSort())
	assert.Equal(t, []string{"T2"}, ticketIDs(got))

	all := FilterAndSortTickets(tickets, DefaultTicketFilters(), DefaultTicketSort())
	assert.Equal(t, []string{"T3", "T2", "T1"}, ticketIDs(all))
	assert.Equal(t, "T1", tickets[0].ID)
}

func TestTicketsSearchAndAssigned(t *testing.T) {
	tickets := sampleTickets()

	f := DefaultTicketFilters().Apply(TicketFilterPatch{Search: strPtr("HARBOR")})
	assert.Equal(t, []string{"T2"}, ticketIDs(FilterAndSortTickets(tickets, f, DefaultTicketSort())))

	f = DefaultTicketFilters().Apply(TicketFilterPatch{Search: strPtr("t3")})
	assert.Equal(t, []string{"T3"}, ticketIDs(FilterAndSortTickets(tickets, f, DefaultTicketSort())))

	f = DefaultTicketFilters().Apply(TicketFilterPatch{Assigned: strPtr("false")})
	assert.Equal(t, []string{"T1"}, ticketIDs(FilterAndSortTickets(tickets, f, DefaultTicketSort())))
}

func TestTicketsDateRange(t *testing.T) {
	tickets := sampleTickets()
	r, err := filter.ParseRange("2024-03-02", "2024-03-03")
	require.NoError(t, err)

	f := DefaultTicketFilters().Apply(TicketFilterPatch{DateRange: &r})
	assert.Equal(t, []string{"T3", "T2"}, ticketIDs(FilterAndSortTickets(tickets, f, DefaultTicketSort())))

	inverted, err := filter.ParseRange("2024-03-03", "2024-03-01")
	require.NoError(t, err)
	f = DefaultTicketFilters().Apply(TicketFilterPatch{DateRange: &inverted})
	assert.Empty(t, FilterAndSortTickets(tickets, f, DefaultTicketSort()))
}

func TestTicketsSortByUrgencyAndName(t *testing.T) {
	tickets := sampleTickets()
	s := filter.SortState[TicketSortField]{Field: TicketSortUrgency, Direction: filter.Desc}
	assert.Equal(t, []string{"T1", "T2", "T3"}, ticketIDs(FilterAndSortTickets(tickets, DefaultTicketFilters(), s)))

	s = DefaultTicketSort().Toggle(TicketSortPropertyName)
	assert.Equal(t, filter.Asc, s.Direction)
	assert.Equal(t, []string{"T3", "T2", "T1"}, ticketIDs(FilterAndSortTickets(tickets, DefaultTicketFilters(), s)))
}

func TestFilterClearRestoresDefaults(t *testing.T) {
	tf := DefaultTicketFilters().Apply(TicketFilterPatch{Search: strPtr("x"), Status: strPtr("open"), Assigned: strPtr("true")})
	assert.NotEqual(t, DefaultTicketFilters(), tf)
	assert.Equal(t, DefaultTicketFilters(), tf.Clear())

	vf := DefaultVendorFilters().Apply(VendorFilterPatch{ServiceType: strPtr("plumbing"), Active: strPtr("true")})
	assert.Equal(t, DefaultVendorFilters(), vf.Clear())

	pf := DefaultPropertyFilters().Apply(PropertyFilterPatch{Occupancy: strPtr(OccupancyVacant)})
	assert.Equal(t, DefaultPropertyFilters(), pf.Clear())

	cf := DefaultCallFilters().Apply(CallFilterPatch{Duration: strPtr(DurationLong)})
	assert.Equal(t, DefaultCallFilters(), cf.Clear())
}

func sampleVendors() []models.Vendor {
	return []models.Vendor{
		{ID: "V1", CompanyName: "BlueLine Plumbing", PhoneNumber: "(555) 010-2000", Type: "plumbing", ServiceCategories: []string{"plumbing"}, IsActive: true, AverageRating: 4.1, TotalJobs: 120},
		{ID: "V2", CompanyName: "Spark Electric", PhoneNumber: "555-010-3000", Type: "electrical", IsActive: true, AverageRating: 4.9, TotalJobs: 40},
		{ID: "V3", CompanyName: "AllFix Handyman", PhoneNumber: "555 010 4000", Type: "general", ServiceCategories: []string{"general", "plumbing"}, IsActive: false, AverageRating: 3.2, TotalJobs: 7},
		{ID: "V4", CompanyName: "Comfort HVAC", PhoneNumber: "5550105000", Type: "hvac", IsActive: true, AverageRating: 2.5, TotalJobs: 0},
		{ID: "V5", CompanyName: "DryWall Pros", PhoneNumber: "555.010.6000", Type: "plumbing", IsActive: true, AverageRating: 7.5, TotalJobs: -3},
	}
}

func vendorIDs(vs []models.Vendor) []string { return ids(vs, func(v models.Vendor) string { return v.ID }) }

func TestVendorsSortByRatingDesc(t *testing.T) {
	s := filter.SortState[VendorSortField]{Field: VendorSortRating, Direction: filter.Desc}
	got := FilterAndSortVendors(sampleVendors(), DefaultVendorFilters(), s)
	require.Len(t, got, 5)
	assert.Equal(t, []string{"V5", "V2", "V1", "V3", "V4"}, vendorIDs(got))
}

func TestVendorsSortByResponseTimePutsUnknownLast(t *testing.T) {
	vendors := sampleVendors()
	vendors[1].AverageResponseTime = intPtr(90)
	vendors[3].AverageResponseTime = intPtr(30)
	vendors[4].AverageResponseTime = intPtr(30)

	s := filter.SortState[VendorSortField]{Field: VendorSortResponseTime, Direction: filter.Asc}
	got := FilterAndSortVendors(vendors, DefaultVendorFilters(), s)
	assert.Equal(t, []string{"V4", "V5", "V2", "V1", "V3"}, vendorIDs(got))
}

func TestVendorsServiceTypeMatchesCategoriesOrType(t *testing.T) {
	f := DefaultVendorFilters().Apply(VendorFilterPatch{ServiceType: strPtr("plumbing")})
	got := FilterAndSortVendors(sampleVendors(), f, DefaultVendorSort())
	assert.Equal(t, []string{"V3", "V1", "V5"}, vendorIDs(got))
}

func TestVendorsPhoneSearchAndMinRating(t *testing.T) {
	f := DefaultVendorFilters().Apply(VendorFilterPatch{Search: strPtr("555-010-4000")})
	assert.Equal(t, []string{"V3"}, vendorIDs(FilterAndSortVendors(sampleVendors(), f, DefaultVendorSort())))

	floor := 4.0
	f = DefaultVendorFilters().Apply(VendorFilterPatch{MinRating: &floor, Active: strPtr("true")})
	assert.Equal(t, []string{"V1", "V5", "V2"}, vendorIDs(FilterAndSortVendors(sampleVendors(), f, DefaultVendorSort())))
}

func TestVendorViewsFlagSyntheticMetrics(t *testing.T) {
	onTime := 97.5
	jobs := 3
	vendors := sampleVendors()
	vendors[0].OnTimePercentage = &onTime
	vendors[0].JobsPerMonth = &jobs

	views := NewVendorViews(vendors, derive.NewSyntheticMetrics(1))
	require.Len(t, views, 5)
	assert.False(t, views[0].MetricsSynthetic)
	assert.Equal(t, 97.5, views[0].OnTimePercentage)
	assert.Equal(t, 3, views[0].JobsPerMonth)

	assert.True(t, views[1].MetricsSynthetic)
	assert.GreaterOrEqual(t, views[1].OnTimePercentage, 85.0)
	assert.LessOrEqual(t, views[1].OnTimePercentage, 100.0)
	assert.Equal(t, 3, views[1].JobsPerMonth)

	assert.Equal(t, 5.0, views[4].AverageRating)
	assert.Equal(t, 0, views[4].TotalJobs)
	assert.Equal(t, 4.1, vendors[0].AverageRating)
}

func sampleUnits() []models.PropertyUnit {
	return []models.PropertyUnit{
		{ID: "U1", PropertyName: "Maple Court", FullAddress: "12 Maple Ave, Unit 1", IsActive: true, IsOccupied: true, TenantName: strPtr("Zoe"), ManagerName: strPtr("Grace Liu")},
		{ID: "U2", PropertyName: "Harbor View", FullAddress: "400 Harbor Blvd, Unit 2", IsActive: true},
		{ID: "U3", PropertyName: "Cedar Lofts", FullAddress: "88 Cedar St, Unit 3", IsActive: false, IsOccupied: true},
	}
}

func unitIDs(us []models.PropertyUnit) []string {
	return ids(us, func(u models.PropertyUnit) string { return u.ID })
}

func TestPropertiesOccupancyAndSearch(t *testing.T) {
	units := sampleUnits()

	f := DefaultPropertyFilters().Apply(PropertyFilterPatch{Occupancy: strPtr(OccupancyOccupied)})
	assert.Equal(t, []string{"U3", "U1"}, unitIDs(FilterAndSortProperties(units, f, DefaultPropertySort())))

	f = DefaultPropertyFilters().Apply(PropertyFilterPatch{Occupancy: strPtr(OccupancyVacant)})
	assert.Equal(t, []string{"U2"}, unitIDs(FilterAndSortProperties(units, f, DefaultPropertySort())))

	f = DefaultPropertyFilters().Apply(PropertyFilterPatch{Search: strPtr("grace")})
	assert.Equal(t, []string{"U1"}, unitIDs(FilterAndSortProperties(units, f, DefaultPropertySort())))

	f = DefaultPropertyFilters().Apply(PropertyFilterPatch{Active: strPtr("false")})
	assert.Equal(t, []string{"U3"}, unitIDs(FilterAndSortProperties(units, f, DefaultPropertySort())))

	occupied, rate := Occupancy(units)
	assert.Equal(t, 2, occupied)
	assert.Equal(t, 66.7, rate)
}

func TestPropertiesSortByTenantPutsMissingFirst(t *testing.T) {
	s := filter.SortState[PropertySortField]{Field: PropertySortTenantName, Direction: filter.Asc}
	got := FilterAndSortProperties(sampleUnits(), DefaultPropertyFilters(), s)
	assert.Equal(t, []string{"U2", "U3", "U1"}, unitIDs(got))
}

func sampleCalls() []models.Call {
	return []models.Call{
		{ID: "C1", PhoneNumber: "(555) 300-1111", ContactName: strPtr("Ana Ruiz"), CallDuration: intPtr(45), Direction: models.CallInbound, Status: models.CallCompleted, TicketID: strPtr("T1"), CreatedAt: day(1), Transcript: "Agent: Hi\n\nCaller: Sink is leaking"},
		{ID: "C2", PhoneNumber: "(555) 300-2222", CallDuration: intPtr(245), Direction: models.CallOutbound, Status: models.CallCompleted, CreatedAt: day(2)},
		{ID: "C3", PhoneNumber: "(555) 300-3333", ContactName: strPtr("Ben Carter"), Direction: models.CallMissed, Status: models.CallNoAnswer, CreatedAt: day(3)},
		{ID: "C4", PhoneNumber: "(555) 300-4444", CallDuration: intPtr(301), Direction: models.CallInbound, Status: models.CallVoicemail, CreatedAt: day(4)},
	}
}

func callIDs(cs []models.Call) []string { return ids(cs, func(c models.Call) string { return c.ID }) }

func TestCallsShortDurationExcludesLongerCalls(t *testing.T) {
	f := DefaultCallFilters().Apply(CallFilterPatch{Duration: strPtr(DurationShort)})
	got := FilterAndSortCalls(sampleCalls(), f, DefaultCallSort())
	assert.Equal(t, []string{"C1"}, callIDs(got))

	f = DefaultCallFilters().Apply(CallFilterPatch{Duration: strPtr(DurationMedium)})
	assert.Equal(t, []string{"C2"}, callIDs(FilterAndSortCalls(sampleCalls(), f, DefaultCallSort())))

	f = DefaultCallFilters().Apply(CallFilterPatch{Duration: strPtr(DurationLong)})
	assert.Equal(t, []string{"C4"}, callIDs(FilterAndSortCalls(sampleCalls(), f, DefaultCallSort())))
}

func TestCallsSearchDirectionLinked(t *testing.T) {
	f := DefaultCallFilters().Apply(CallFilterPatch{Search: strPtr("leaking")})
	assert.Equal(t, []string{"C1"}, callIDs(FilterAndSortCalls(sampleCalls(), f, DefaultCallSort())))

	f = DefaultCallFilters().Apply(CallFilterPatch{Search: strPtr("5553002222")})
	assert.Equal(t, []string{"C2"}, callIDs(FilterAndSortCalls(sampleCalls(), f, DefaultCallSort())))

	f = DefaultCallFilters().Apply(CallFilterPatch{Direction: strPtr("inbound")})
	assert.Equal(t, []string{"C4", "C1"}, callIDs(FilterAndSortCalls(sampleCalls(), f, DefaultCallSort())))

	f = DefaultCallFilters().Apply(CallFilterPatch{Linked: strPtr("true")})
	assert.Equal(t, []string{"C1"}, callIDs(FilterAndSortCalls(sampleCalls(), f, DefaultCallSort())))
}

func TestCallsSortByDuration(t *testing.T) {
	s := filter.SortState[CallSortField]{Field: CallSortDuration, Direction: filter.Asc}
	got := FilterAndSortCalls(sampleCalls(), DefaultCallFilters(), s)
	assert.Equal(t, []string{"C3", "C1", "C2", "C4"}, callIDs(got))
}

func TestCallViewsAndDetail(t *testing.T) {
	views := NewCallViews(sampleCalls())
	assert.Equal(t, "0:45", views[0].DurationLabel)
	assert.Equal(t, "4:05", views[1].DurationLabel)
	assert.Equal(t, derive.NotAvailable, views[2].DurationLabel)
	assert.Equal(t, "", views[2].DurationBucket)

	detail := NewCallDetail(sampleCalls()[0])
	require.Len(t, detail.Segments, 2)
	assert.Equal(t, "Agent", detail.Segments[0].Speaker)
	assert.Equal(t, "Caller", detail.Segments[1].Speaker)

	empty := NewCallDetail(sampleCalls()[2])
	assert.NotNil(t, empty.Segments)
	assert.Empty(t, empty.Segments)
}

func TestBuildSummary(t *testing.T) {
	now := day(5).Add(3 * time.Hour)
	s := BuildSummary(sampleTickets(), sampleVendors(), sampleUnits(), sampleCalls(), now, 3)

	assert.Equal(t, 3, s.Tickets.Total)
	assert.Equal(t, 2, s.Tickets.Open)
	assert.Equal(t, 1, s.Tickets.Unassigned)
	assert.Equal(t, 1, s.Tickets.ByStatus["resolved"])
	assert.Equal(t, 0, s.Tickets.ByStatus["canceled"])
	assert.Equal(t, 33.3, s.Tickets.ResolvedPercent)
	assert.Equal(t, 48.0, s.Tickets.AvgResolutionHours)

	assert.Equal(t, 3, s.Units.Total)
	assert.Equal(t, 1, s.Units.Vacant)
	assert.Equal(t, 66.7, s.Units.OccupancyRate)

	assert.Equal(t, 4, s.Calls.Total)
	assert.Equal(t, 1, s.Calls.Missed)
	assert.Equal(t, 1, s.Calls.LinkedToTicket)
	assert.Equal(t, 197, s.Calls.AvgDuration)
	assert.Equal(t, "3:17", s.Calls.AvgDurationLabel)

	assert.Equal(t, 4, s.Vendors.Active)
	assert.Equal(t, 3.9, s.Vendors.AverageRating)
	assert.Equal(t, 3, s.Vendors.ByCategory["plumbing"])

	require.Len(t, s.Trend, 3)
	assert.Equal(t, "2024-03-03", s.Trend[0].Date)
	assert.Equal(t, 1, s.Trend[0].Tickets)
	assert.Equal(t, 1, s.Trend[0].Calls)
	assert.Equal(t, "2024-03-05", s.Trend[2].Date)
	assert.Equal(t, 0, s.Trend[2].Tickets)
}

func TestCallsForTicket(t *testing.T) {
	calls := sampleCalls()
	calls[3].TicketID = strPtr("T1")
	assert.Equal(t, []string{"C4", "C1"}, callIDs(CallsForTicket(calls, "T1")))
	assert.Empty(t, CallsForTicket(calls, "T9"))
}
