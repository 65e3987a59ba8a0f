package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/propdesk/backend/internal/derive"
	"github.com/propdesk/backend/internal/models"
	"github.com/propdesk/backend/internal/source"
)

// Summary is the reporting dashboard payload.
type Summary struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Tickets     TicketStats  `json:"tickets"`
	Units       UnitStats    `json:"units"`
	Calls       CallStats    `json:"calls"`
	Vendors     VendorStats  `json:"vendors"`
	Trend       []DailyCount `json:"trend"`
}

type TicketStats struct {
	Total              int            `json:"total"`
	Open               int            `json:"open"`
	Unassigned         int            `json:"unassigned"`
	ByStatus           map[string]int `json:"by_status"`
	ByUrgency          map[string]int `json:"by_urgency"`
	ResolvedPercent    float64        `json:"resolved_percent"`
	AvgResolutionHours float64        `json:"avg_resolution_hours"`
}

type UnitStats struct {
	Total         int     `json:"total"`
	Active        int     `json:"active"`
	Occupied      int     `json:"occupied"`
	Vacant        int     `json:"vacant"`
	OccupancyRate float64 `json:"occupancy_rate"`
}

type CallStats struct {
	Total            int            `json:"total"`
	ByDirection      map[string]int `json:"by_direction"`
	ByDuration       map[string]int `json:"by_duration"`
	Missed           int            `json:"missed"`
	LinkedToTicket   int            `json:"linked_to_ticket"`
	AvgDuration      int            `json:"avg_duration"`
	AvgDurationLabel string         `json:"avg_duration_label"`
}

type VendorStats struct {
	Total         int            `json:"total"`
	Active        int            `json:"active"`
	AverageRating float64        `json:"average_rating"`
	ByCategory    map[string]int `json:"by_category"`
}

type DailyCount struct {
	Date    string `json:"date"`
	Tickets int    `json:"tickets"`
	Calls   int    `json:"calls"`
}

// BuildSummary aggregates the record lists. trendDays controls how many
// calendar days, ending with now's day, the trend series covers.
func BuildSummary(tickets []models.Ticket, vendors []models.Vendor, units []models.PropertyUnit, calls []models.Call, now time.Time, trendDays int) Summary {
	return Summary{
		GeneratedAt: now.UTC(),
		Tickets:     ticketStats(tickets),
		Units:       unitStats(units),
		Calls:       callStats(calls),
		Vendors:     vendorStats(vendors),
		Trend:       dailyTrend(tickets, calls, now, trendDays),
	}
}

func ticketStats(tickets []models.Ticket) TicketStats {
	stats := TicketStats{
		Total:     len(tickets),
		ByStatus:  map[string]int{},
		ByUrgency: map[string]int{},
	}
	for _, s := range models.TicketStatuses {
		stats.ByStatus[string(s)] = 0
	}
	for _, u := range models.Urgencies {
		stats.ByUrgency[string(u)] = 0
	}

	var (
		resolved        int
		resolutionHours float64
	)
	for _, t := range tickets {
		stats.ByStatus[string(t.Status)]++
		stats.ByUrgency[string(t.Urgency)]++
		switch t.Status {
		case models.TicketResolved:
			resolved++
			if d := t.UpdatedAt.Sub(t.CreatedAt); d > 0 {
				resolutionHours += d.Hours()
			}
		case models.TicketCanceled:
		default:
			stats.Open++
			if t.ServiceProvider == nil || *t.ServiceProvider == "" {
				stats.Unassigned++
			}
		}
	}
	stats.ResolvedPercent = derive.Percent(resolved, len(tickets))
	if resolved > 0 {
		stats.AvgResolutionHours = round1(resolutionHours / float64(resolved))
	}
	return stats
}

func unitStats(units []models.PropertyUnit) UnitStats {
	stats := UnitStats{Total: len(units)}
	for _, u := range units {
		if u.IsActive {
			stats.Active++
		}
	}
	stats.Occupied, stats.OccupancyRate = Occupancy(units)
	stats.Vacant = stats.Total - stats.Occupied
	return stats
}

func callStats(calls []models.Call) CallStats {
	stats := CallStats{
		Total:       len(calls),
		ByDirection: map[string]int{},
		ByDuration:  map[string]int{DurationShort: 0, DurationMedium: 0, DurationLong: 0},
	}
	for _, d := range models.CallDirections {
		stats.ByDirection[string(d)] = 0
	}

	var total, timed int
	for _, c := range calls {
		stats.ByDirection[string(c.Direction)]++
		if c.Direction == models.CallMissed || c.Status == models.CallNoAnswer {
			stats.Missed++
		}
		if c.TicketID != nil && *c.TicketID != "" {
			stats.LinkedToTicket++
		}
		if bucket := DurationBucket(c.CallDuration); bucket != "" {
			stats.ByDuration[bucket]++
			total += derive.NonNegative(*c.CallDuration)
			timed++
		}
	}
	if timed > 0 {
		stats.AvgDuration = int(math.Round(float64(total) / float64(timed)))
		stats.AvgDurationLabel = derive.FormatDuration(stats.AvgDuration)
	} else {
		stats.AvgDurationLabel = derive.NotAvailable
	}
	return stats
}

func vendorStats(vendors []models.Vendor) VendorStats {
	stats := VendorStats{Total: len(vendors), ByCategory: map[string]int{}}
	var ratings float64
	for _, v := range vendors {
		if v.IsActive {
			stats.Active++
		}
		ratings += derive.ClampRating(v.AverageRating)
		categories := v.ServiceCategories
		if len(categories) == 0 && v.Type != "" {
			categories = []string{v.Type}
		}
		for _, c := range categories {
			stats.ByCategory[c]++
		}
	}
	if len(vendors) > 0 {
		stats.AverageRating = round1(ratings / float64(len(vendors)))
	}
	return stats
}

func dailyTrend(tickets []models.Ticket, calls []models.Call, now time.Time, days int) []DailyCount {
	if days <= 0 {
		return []DailyCount{}
	}
	const layout = "2006-01-02"
	end := now.UTC()
	start := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(days - 1))

	out := make([]DailyCount, days)
	index := make(map[string]int, days)
	for i := range out {
		day := start.AddDate(0, 0, i).Format(layout)
		out[i].Date = day
		index[day] = i
	}
	for _, t := range tickets {
		if i, ok := index[t.CreatedAt.UTC().Format(layout)]; ok {
			out[i].Tickets++
		}
	}
	for _, c := range calls {
		if i, ok := index[c.CreatedAt.UTC().Format(layout)]; ok {
			out[i].Calls++
		}
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// ReportingService loads every record list and builds the summary.
type ReportingService struct {
	Source source.Source
	Logger zerolog.Logger
	Now    func() time.Time
}

func (s *ReportingService) Summary(ctx context.Context, trendDays int) (Summary, error) {
	start := time.Now()
	tickets, err := s.Source.ListTickets(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list tickets: %w", err)
	}
	vendors, err := s.Source.ListVendors(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list vendors: %w", err)
	}
	units, err := s.Source.ListPropertyUnits(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list units: %w", err)
	}
	calls, err := s.Source.ListCalls(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list calls: %w", err)
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	summary := BuildSummary(tickets, vendors, units, calls, now(), trendDays)
	s.Logger.Debug().
		Int("tickets", len(tickets)).
		Int("calls", len(calls)).
		Dur("elapsed", time.Since(start)).
		Msg("summary built")
	return summary, nil
}
