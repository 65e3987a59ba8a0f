package service

import (
	"testing"

	"github.com/propdesk/backend/internal/models"
)

func intPtr(v int) *int { return &v }

func TestInferCategory(t *testing.T) {
	cases := map[string]string{
		"Kitchen sink leaking under cabinet": "plumbing",
		"Breaker trips when dryer runs":      "electrical",
		"No heat in bedroom radiator":        "hvac",
		"Front door lock jammed":             "locksmith",
		"Ceiling stain spreading after rain": "drywall",
		"Tenant reports noisy neighbours":    "",
		"Toilet clogged again":               "plumbing",
		"Tenant locked out after midnight":   "locksmith",
		"Lost both keys":                     "locksmith",
		"Garage door blocked by debris":      "",
		"Keyboard left in hallway closet":    "",
		"Hallway lights flickering":          "electrical",
		"Air conditioning blowing warm":      "hvac",
	}
	for in, want := range cases {
		if got := InferCategory(in); got != want {
			t.Fatalf("InferCategory(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFilterEligibleVendors(t *testing.T) {
	vendors := []models.Vendor{
		{ID: "v1", IsActive: true, Type: "plumbing"},
		{ID: "v2", IsActive: false, Type: "plumbing"},
		{ID: "v3", IsActive: true, Type: "general", ServiceCategories: []string{"general", "plumbing"}},
		{ID: "v4", IsActive: true, Type: "electrical"},
	}
	ticket := models.Ticket{ID: "t1", IssueDescription: "Toilet keeps running", Urgency: models.UrgencyStandard}

	res := FilterEligibleVendors(vendors, ticket)
	if res.Category != "plumbing" {
		t.Fatalf("expected plumbing category, got %q", res.Category)
	}
	if len(res.Eligible) != 2 || res.Eligible[0].ID != "v1" || res.Eligible[1].ID != "v3" {
		t.Fatalf("expected v1 and v3 eligible, got %+v", res.Eligible)
	}
	if len(res.Stages) != 4 {
		t.Fatalf("expected 4 stages, got %d", len(res.Stages))
	}
}

func TestFilterEligibleVendorsEmergencyNeedsFastCrew(t *testing.T) {
	vendors := []models.Vendor{
		{ID: "v1", IsActive: true, Type: "plumbing", AverageResponseTime: intPtr(240)},
	}
	ticket := models.Ticket{ID: "t1", IssueDescription: "Pipe burst", Urgency: models.UrgencyEmergency}

	res := FilterEligibleVendors(vendors, ticket)
	if len(res.Eligible) != 0 || res.ReasonCode != "EMERGENCY_NO_FAST_VENDOR" {
		t.Fatalf("expected emergency rejection, got %+v", res)
	}
}

func TestFilterEligibleVendorsNoCategoryMatch(t *testing.T) {
	vendors := []models.Vendor{{ID: "v1", IsActive: true, Type: "electrical"}}
	ticket := models.Ticket{ID: "t1", IssueDescription: "Roof shingle missing"}

	res := FilterEligibleVendors(vendors, ticket)
	if res.ReasonCode != "CATEGORY_NO_MATCH" {
		t.Fatalf("expected CATEGORY_NO_MATCH, got %q", res.ReasonCode)
	}
}

func TestPickVendorDeterministic(t *testing.T) {
	eligible := []models.Vendor{
		{ID: "v1", AverageRating: 3.1},
		{ID: "v2", AverageRating: 4.8},
		{ID: "v3", AverageRating: 4.8, AverageResponseTime: intPtr(30)},
	}
	picked1, top2 := PickVendor("ticket-1", eligible)
	picked2, _ := PickVendor("ticket-1", eligible)
	if picked1.ID != picked2.ID {
		t.Fatalf("expected deterministic pick")
	}
	if len(top2) != 2 || top2[0].ID != "v3" || top2[1].ID != "v2" {
		t.Fatalf("expected top2 [v3 v2], got %+v", top2)
	}
	if eligible[0].ID != "v1" {
		t.Fatalf("input slice reordered")
	}
}

func TestRecommendVendorWithoutCandidates(t *testing.T) {
	rec := RecommendVendor(models.Ticket{ID: "t1"}, nil)
	if rec.Suggested != nil {
		t.Fatalf("expected no suggestion")
	}
	if rec.Eligibility.ReasonCode != "NO_ACTIVE_VENDORS" {
		t.Fatalf("unexpected reason %q", rec.Eligibility.ReasonCode)
	}
}
