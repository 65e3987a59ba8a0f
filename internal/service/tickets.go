package service

import (
	"time"

	"github.com/propdesk/backend/internal/filter"
	"github.com/propdesk/backend/internal/models"
)

type TicketSortField string

const (
	TicketSortCreatedAt    TicketSortField = "created_at"
	TicketSortUpdatedAt    TicketSortField = "updated_at"
	TicketSortUrgency      TicketSortField = "urgency"
	TicketSortStatus       TicketSortField = "status"
	TicketSortPropertyName TicketSortField = "property_name"
)

// TicketFilters is the filter bar state of the ticket list.
type TicketFilters struct {
	Search    string           `json:"search"`
	Urgency   string           `json:"urgency"`
	Status    string           `json:"status"`
	DateRange filter.DateRange `json:"date_range"`
	Assigned  *bool            `json:"assigned"`
}

func DefaultTicketFilters() TicketFilters {
	return TicketFilters{Urgency: filter.All, Status: filter.All}
}

func DefaultTicketSort() filter.SortState[TicketSortField] {
	return filter.SortState[TicketSortField]{Field: TicketSortCreatedAt, Direction: filter.Desc}
}

// Clear resets every filter to its initial value.
func (f TicketFilters) Clear() TicketFilters {
	return DefaultTicketFilters()
}

// TicketFilterPatch carries the controls changed by one interaction. Nil
// fields are left as they are.
type TicketFilterPatch struct {
	Search    *string
	Urgency   *string
	Status    *string
	DateRange *filter.DateRange
	Assigned  *string
}

func (f TicketFilters) Apply(p TicketFilterPatch) TicketFilters {
	if p.Search != nil {
		f.Search = *p.Search
	}
	if p.Urgency != nil {
		f.Urgency = *p.Urgency
	}
	if p.Status != nil {
		f.Status = *p.Status
	}
	if p.DateRange != nil {
		f.DateRange = *p.DateRange
	}
	if p.Assigned != nil {
		f.Assigned = filter.ParseFlag(*p.Assigned)
	}
	return f
}

func (f TicketFilters) Predicate() filter.Predicate[models.Ticket] {
	return filter.NewBuilder[models.Ticket]().
		Search(f.Search, ticketSearchFields, nil).
		Equal(f.Urgency, func(t models.Ticket) string { return string(t.Urgency) }).
		Equal(f.Status, func(t models.Ticket) string { return string(t.Status) }).
		DateRange(f.DateRange, func(t models.Ticket) time.Time { return t.CreatedAt }).
		Flag(f.Assigned, func(t models.Ticket) bool { return filter.Deref(t.ServiceProvider) != "" }).
		Build()
}

func ticketSearchFields(t models.Ticket) []string {
	return []string{t.ID, t.PropertyName, t.UnitAddress, t.IssueDescription}
}

// UrgencyRank orders urgencies from standard (1) to emergency (3). Unknown
// values rank 0.
func UrgencyRank(u models.Urgency) int {
	switch u {
	case models.UrgencyEmergency:
		return 3
	case models.UrgencyUrgent:
		return 2
	case models.UrgencyStandard:
		return 1
	}
	return 0
}

var ticketComparators = map[TicketSortField]filter.Comparator[models.Ticket]{
	TicketSortCreatedAt:    filter.ByTime(func(t models.Ticket) time.Time { return t.CreatedAt }),
	TicketSortUpdatedAt:    filter.ByTime(func(t models.Ticket) time.Time { return t.UpdatedAt }),
	TicketSortUrgency:      filter.ByNumber(func(t models.Ticket) float64 { return float64(UrgencyRank(t.Urgency)) }),
	TicketSortStatus:       filter.ByString(func(t models.Ticket) string { return string(t.Status) }),
	TicketSortPropertyName: filter.ByString(func(t models.Ticket) string { return t.PropertyName }),
}

func ParseTicketSortField(s string) (TicketSortField, bool) {
	f := TicketSortField(s)
	_, ok := ticketComparators[f]
	return f, ok
}

// FilterAndSortTickets returns the tickets matching f, ordered by s.
func FilterAndSortTickets(tickets []models.Ticket, f TicketFilters, s filter.SortState[TicketSortField]) []models.Ticket {
	return filter.FilterAndSort(tickets, f.Predicate(), s, ticketComparators)
}
