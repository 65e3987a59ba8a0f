package service

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/propdesk/backend/internal/derive"
	"github.com/propdesk/backend/internal/filter"
	"github.com/propdesk/backend/internal/models"
	"github.com/propdesk/backend/internal/utils"
)

// emergencyResponseMinutes is the slowest average response time accepted
// for emergency tickets.
const emergencyResponseMinutes = 120

type EligibilityResult struct {
	Eligible      []models.Vendor    `json:"eligible"`
	ReasonCode    string             `json:"reason_code,omitempty"`
	ReasonText    string             `json:"reason_text,omitempty"`
	Stages        []EligibilityStage `json:"stages"`
	Category      string             `json:"category,omitempty"`
	NeedsFastCrew bool               `json:"needs_fast_crew"`
}

type EligibilityStage struct {
	Name       string `json:"name"`
	Candidates int    `json:"candidates"`
}

var categoryKeywords = []struct {
	category string
	words    []string
}{
	{"plumbing", []string{"leak", "sink", "toilet", "drain", "pipe", "faucet", "water heater", "disposal", "clog"}},
	{"electrical", []string{"breaker", "outlet", "power", "wiring", "light", "electric"}},
	{"hvac", []string{"heat", "radiator", "furnace", "air condition", "a/c", "thermostat", "hvac"}},
	{"locksmith", []string{"lock", "key", "locked out"}},
	{"roofing", []string{"roof", "gutter", "shingle"}},
	{"pest", []string{"pest", "mice", "rodent", "roach", "infestation", "termite"}},
	{"drywall", []string{"drywall", "wall", "ceiling", "mold"}},
}

// keywordSuffixes are the inflections a keyword may carry ("leaking",
// "clogged", "locks") while still starting and ending on a word boundary.
const keywordSuffixes = `(?:s|es|ed|ged|ing|ging|er|ers|y|al|ian|ioning|ioner)?`

type categoryMatcher struct {
	category string
	re       *regexp.Regexp
}

var categoryMatchers = compileCategoryMatchers()

func compileCategoryMatchers() []categoryMatcher {
	out := make([]categoryMatcher, 0, len(categoryKeywords))
	for _, c := range categoryKeywords {
		quoted := make([]string, 0, len(c.words))
		for _, w := range c.words {
			quoted = append(quoted, regexp.QuoteMeta(w))
		}
		pattern := `\b(?:` + strings.Join(quoted, "|") + `)` + keywordSuffixes + `\b`
		out = append(out, categoryMatcher{category: c.category, re: regexp.MustCompile(pattern)})
	}
	return out
}

// InferCategory guesses the service category from the issue description.
// Keywords match whole words only, so "blocked" is not a lock.
// The first matching category wins; "" means no keyword matched.
func InferCategory(description string) string {
	d := filter.Fold(description)
	for _, m := range categoryMatchers {
		if m.re.MatchString(d) {
			return m.category
		}
	}
	return ""
}

// FilterEligibleVendors narrows the vendor list for a ticket in stages:
// active vendors, then the inferred service category, then, for emergencies,
// vendors fast enough to respond.
func FilterEligibleVendors(vendors []models.Vendor, ticket models.Ticket) EligibilityResult {
	result := EligibilityResult{
		Category:      InferCategory(ticket.IssueDescription),
		NeedsFastCrew: ticket.Urgency == models.UrgencyEmergency,
	}
	result.Stages = append(result.Stages, EligibilityStage{Name: "all_vendors", Candidates: len(vendors)})

	active := filter.Apply(vendors, func(v models.Vendor) bool { return v.IsActive })
	result.Stages = append(result.Stages, EligibilityStage{Name: "active_rule", Candidates: len(active)})
	if len(active) == 0 {
		result.ReasonCode = "NO_ACTIVE_VENDORS"
		result.ReasonText = "No active vendors"
		return result
	}

	afterCategory := active
	if result.Category != "" {
		afterCategory = filter.Apply(active, OffersService(result.Category))
	}
	result.Stages = append(result.Stages, EligibilityStage{Name: "category_rule", Candidates: len(afterCategory)})
	if len(afterCategory) == 0 {
		result.ReasonCode = "CATEGORY_NO_MATCH"
		result.ReasonText = "No active vendor offers " + result.Category
		return result
	}

	afterUrgency := afterCategory
	if result.NeedsFastCrew {
		afterUrgency = filter.Apply(afterCategory, func(v models.Vendor) bool {
			return v.AverageResponseTime == nil || *v.AverageResponseTime <= emergencyResponseMinutes
		})
	}
	result.Stages = append(result.Stages, EligibilityStage{Name: "urgency_rule", Candidates: len(afterUrgency)})
	if len(afterUrgency) == 0 {
		result.ReasonCode = "EMERGENCY_NO_FAST_VENDOR"
		result.ReasonText = "No vendor responds fast enough for an emergency"
		return result
	}

	result.Eligible = afterUrgency
	return result
}

// PickVendor ranks eligible vendors by rating, then response time, and picks
// one of the top two by hashing the ticket ID, so repeated calls agree.
func PickVendor(ticketID string, eligible []models.Vendor) (models.Vendor, []models.Vendor) {
	ranked := append([]models.Vendor(nil), eligible...)
	sort.SliceStable(ranked, func(i, j int) bool {
		ri, rj := derive.ClampRating(ranked[i].AverageRating), derive.ClampRating(ranked[j].AverageRating)
		if ri != rj {
			return ri > rj
		}
		ti, tj := responseMinutes(ranked[i]), responseMinutes(ranked[j])
		if ti != tj {
			return ti < tj
		}
		return ranked[i].ID < ranked[j].ID
	})

	top2 := ranked
	if len(top2) > 2 {
		top2 = ranked[:2]
	}
	idx := int(utils.HashStringToUint64(ticketID) % uint64(len(top2)))
	return top2[idx], top2
}

// Recommendation is the vendor suggestion for one ticket.
type Recommendation struct {
	TicketID    string            `json:"ticket_id"`
	Eligibility EligibilityResult `json:"eligibility"`
	Shortlist   []models.Vendor   `json:"shortlist"`
	Suggested   *models.Vendor    `json:"suggested"`
}

func RecommendVendor(ticket models.Ticket, vendors []models.Vendor) Recommendation {
	rec := Recommendation{
		TicketID:    ticket.ID,
		Eligibility: FilterEligibleVendors(vendors, ticket),
		Shortlist:   []models.Vendor{},
	}
	if len(rec.Eligibility.Eligible) == 0 {
		return rec
	}
	picked, top2 := PickVendor(ticket.ID, rec.Eligibility.Eligible)
	rec.Suggested = &picked
	rec.Shortlist = top2
	return rec
}

// responseMinutes is the response time sort key; unknown times rank slowest.
func responseMinutes(v models.Vendor) int {
	if v.AverageResponseTime == nil {
		return math.MaxInt
	}
	return *v.AverageResponseTime
}
