package service

import (
	"time"

	"github.com/propdesk/backend/internal/derive"
	"github.com/propdesk/backend/internal/filter"
	"github.com/propdesk/backend/internal/models"
)

type CallSortField string

const (
	CallSortCreatedAt   CallSortField = "created_at"
	CallSortDuration    CallSortField = "duration"
	CallSortContactName CallSortField = "contact_name"
)

// Duration buckets, in seconds: short is at most a minute, medium up to five
// minutes, long anything above.
const (
	DurationShort  = "short"
	DurationMedium = "medium"
	DurationLong   = "long"

	shortMaxSeconds  = 60
	mediumMaxSeconds = 300
)

type CallFilters struct {
	Search    string           `json:"search"`
	Direction string           `json:"direction"`
	Status    string           `json:"status"`
	Duration  string           `json:"duration"`
	DateRange filter.DateRange `json:"date_range"`
	Linked    *bool            `json:"linked"`
}

func DefaultCallFilters() CallFilters {
	return CallFilters{Direction: filter.All, Status: filter.All, Duration: filter.All}
}

func DefaultCallSort() filter.SortState[CallSortField] {
	return filter.SortState[CallSortField]{Field: CallSortCreatedAt, Direction: filter.Desc}
}

func (f CallFilters) Clear() CallFilters {
	return DefaultCallFilters()
}

type CallFilterPatch struct {
	Search    *string
	Direction *string
	Status    *string
	Duration  *string
	DateRange *filter.DateRange
	Linked    *string
}

func (f CallFilters) Apply(p CallFilterPatch) CallFilters {
	if p.Search != nil {
		f.Search = *p.Search
	}
	if p.Direction != nil {
		f.Direction = *p.Direction
	}
	if p.Status != nil {
		f.Status = *p.Status
	}
	if p.Duration != nil {
		f.Duration = *p.Duration
	}
	if p.DateRange != nil {
		f.DateRange = *p.DateRange
	}
	if p.Linked != nil {
		f.Linked = filter.ParseFlag(*p.Linked)
	}
	return f
}

func (f CallFilters) Predicate() filter.Predicate[models.Call] {
	b := filter.NewBuilder[models.Call]().
		Search(f.Search, callSearchFields, func(c models.Call) []string { return []string{c.PhoneNumber} }).
		Equal(f.Direction, func(c models.Call) string { return string(c.Direction) }).
		Equal(f.Status, func(c models.Call) string { return string(c.Status) }).
		DateRange(f.DateRange, func(c models.Call) time.Time { return c.CreatedAt }).
		Flag(f.Linked, func(c models.Call) bool { return filter.Deref(c.TicketID) != "" })
	if !filter.Inactive(f.Duration) {
		bucket := f.Duration
		b.Where(func(c models.Call) bool { return DurationBucket(c.CallDuration) == bucket })
	}
	return b.Build()
}

// DurationBucket classifies a call length. Calls without a duration belong to
// no bucket.
func DurationBucket(seconds *int) string {
	if seconds == nil {
		return ""
	}
	switch s := *seconds; {
	case s <= shortMaxSeconds:
		return DurationShort
	case s <= mediumMaxSeconds:
		return DurationMedium
	default:
		return DurationLong
	}
}

func callSearchFields(c models.Call) []string {
	return []string{filter.Deref(c.ContactName), c.Transcript}
}

var callComparators = map[CallSortField]filter.Comparator[models.Call]{
	CallSortCreatedAt: filter.ByTime(func(c models.Call) time.Time { return c.CreatedAt }),
	CallSortDuration: filter.ByNumber(func(c models.Call) float64 {
		if c.CallDuration == nil {
			return 0
		}
		return float64(*c.CallDuration)
	}),
	CallSortContactName: filter.ByString(func(c models.Call) string { return filter.Deref(c.ContactName) }),
}

func ParseCallSortField(s string) (CallSortField, bool) {
	f := CallSortField(s)
	_, ok := callComparators[f]
	return f, ok
}

func FilterAndSortCalls(calls []models.Call, f CallFilters, s filter.SortState[CallSortField]) []models.Call {
	return filter.FilterAndSort(calls, f.Predicate(), s, callComparators)
}

type CallView struct {
	models.Call
	DurationLabel  string `json:"duration_label"`
	DurationBucket string `json:"duration_bucket,omitempty"`
}

func NewCallView(c models.Call) CallView {
	return CallView{
		Call:           c,
		DurationLabel:  derive.DurationLabel(c.CallDuration),
		DurationBucket: DurationBucket(c.CallDuration),
	}
}

func NewCallViews(calls []models.Call) []CallView {
	out := make([]CallView, 0, len(calls))
	for _, c := range calls {
		out = append(out, NewCallView(c))
	}
	return out
}

// CallDetail is a call with its transcript split into speaker turns.
type CallDetail struct {
	CallView
	Segments     []derive.Segment `json:"segments"`
	RecordingURL string           `json:"recording_url,omitempty"`
}

func NewCallDetail(c models.Call) CallDetail {
	duration := 0
	if c.CallDuration != nil {
		duration = *c.CallDuration
	}
	segments := derive.SegmentTranscript(c.Transcript, duration)
	if segments == nil {
		segments = []derive.Segment{}
	}
	return CallDetail{CallView: NewCallView(c), Segments: segments}
}

// CallsForTicket returns the calls linked to a ticket, newest first.
func CallsForTicket(calls []models.Call, ticketID string) []models.Call {
	linked := filter.NewBuilder[models.Call]().
		Where(func(c models.Call) bool { return filter.Deref(c.TicketID) == ticketID }).
		Build()
	return filter.FilterAndSort(calls, linked, DefaultCallSort(), callComparators)
}
