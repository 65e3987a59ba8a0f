package source

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/propdesk/backend/internal/models"
	"github.com/propdesk/backend/internal/utils"
)

// DemoSource serves a deterministic in-memory data set. Record fields are
// picked from FNV hashes of the record IDs, so every process built with the
// same base time sees the same rows.
type DemoSource struct {
	mu      sync.RWMutex
	tickets []models.Ticket
	vendors []models.Vendor
	units   []models.PropertyUnit
	calls   []models.Call
	now     func() time.Time
}

var (
	demoProperties = []string{"Maple Court", "Harbor View", "Cedar Lofts", "Oak Terrace", "Riverside Flats"}
	demoStreets    = []string{"12 Maple Ave", "400 Harbor Blvd", "88 Cedar St", "7 Oak Ln", "1500 River Rd"}
	demoIssues     = []string{
		"Kitchen sink leaking under cabinet",
		"No heat in bedroom radiator",
		"Front door lock jammed",
		"Water heater pilot keeps going out",
		"Ceiling stain spreading after rain",
		"Breaker trips when dryer runs",
		"Garbage disposal humming, not spinning",
		"Mold around bathroom window",
	}
	demoTenants   = []string{"Ana Ruiz", "Ben Carter", "Chloe Park", "Dev Patel", "Eli Stone", "Fay Morgan"}
	demoManagers  = []string{"Grace Liu", "Hank Owens"}
	demoVendors   = []string{"BlueLine Plumbing", "Spark Electric Co", "Comfort HVAC", "KeyPoint Locksmith", "AllFix Handyman", "DryWall Pros", "Evergreen Pest", "RoofRight"}
	demoTypes     = []string{"plumbing", "electrical", "hvac", "locksmith", "general", "drywall", "pest", "roofing"}
	demoCallLines = []string{
		"Agent: Thanks for calling, how can I help?\n\nCaller: The %s.\n\nAgent: I'll open a ticket and notify a vendor.",
		"Agent: Calling about your request.\n\nVendor: I can be there tomorrow morning.\n\nAround nine if that works.",
		"Voicemail: Hi, this is about the %s, please call back.",
	}
)

// NewDemoSource builds the data set relative to base.
func NewDemoSource(base time.Time) *DemoSource {
	d := &DemoSource{now: func() time.Time { return time.Now().UTC() }}
	base = base.UTC().Truncate(time.Hour)

	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("VND-%03d", i+1)
		h := utils.HashStringToUint64(id)
		response := 30 + int(h%180)
		v := models.Vendor{
			ID:                  id,
			CompanyName:         demoVendors[i],
			PhoneNumber:         fmt.Sprintf("(555) %03d-%04d", h%1000, (h/1000)%10000),
			ServiceCategories:   []string{demoTypes[i]},
			Type:                demoTypes[i],
			IsActive:            h%5 != 0,
			AverageRating:       float64(25+h%26) / 10,
			TotalJobs:           int(h % 240),
			AverageResponseTime: &response,
		}
		if i == 4 {
			v.ServiceCategories = []string{"general", "plumbing", "drywall"}
		}
		d.vendors = append(d.vendors, v)
	}

	for i := 0; i < 16; i++ {
		id := fmt.Sprintf("UNIT-%03d", i+1)
		h := utils.HashStringToUint64(id)
		p := i % len(demoProperties)
		manager := demoManagers[p%len(demoManagers)]
		u := models.PropertyUnit{
			ID:           id,
			PropertyName: demoProperties[p],
			FullAddress:  fmt.Sprintf("%s, Unit %d", demoStreets[p], 100+i),
			IsActive:     h%7 != 0,
			ManagerName:  &manager,
		}
		if h%3 != 0 {
			tenant := demoTenants[pick(h/3, len(demoTenants))]
			contact := fmt.Sprintf("(555) 200-%04d", h%10000)
			u.IsOccupied = true
			u.TenantName = &tenant
			u.EmergencyContact = &contact
		}
		d.units = append(d.units, u)
	}

	for i := 0; i < 24; i++ {
		id := fmt.Sprintf("TCK-%04d", i+1)
		h := utils.HashStringToUint64(id)
		unit := d.units[pick(h, len(d.units))]
		created := base.Add(-time.Duration(h%(30*24)) * time.Hour)
		t := models.Ticket{
			ID:               id,
			PropertyName:     unit.PropertyName,
			UnitAddress:      unit.FullAddress,
			IssueDescription: demoIssues[pick(h/7, len(demoIssues))],
			Urgency:          models.Urgencies[pick(h/11, len(models.Urgencies))],
			Status:           models.TicketStatuses[pick(h/13, len(models.TicketStatuses))],
			CreatedAt:        created,
			UpdatedAt:        created.Add(time.Duration(h%72) * time.Hour),
		}
		if t.Status != models.TicketOpen {
			provider := d.vendors[pick(h/17, len(d.vendors))].CompanyName
			t.ServiceProvider = &provider
		}
		d.tickets = append(d.tickets, t)
	}

	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("CALL-%04d", i+1)
		h := utils.HashStringToUint64(id)
		ticket := d.tickets[pick(h, len(d.tickets))]
		tpl := demoCallLines[pick(h/5, len(demoCallLines))]
		c := models.Call{
			ID:          id,
			PhoneNumber: fmt.Sprintf("(555) 300-%04d", h%10000),
			Direction:   models.CallDirections[pick(h/3, 2)],
			Status:      models.CallCompleted,
			CreatedAt:   ticket.CreatedAt.Add(time.Duration(h%90) * time.Minute),
		}
		if tpl == demoCallLines[2] {
			c.Status = models.CallVoicemail
		}
		if h%6 == 0 {
			c.Direction = models.CallMissed
			c.Status = models.CallNoAnswer
		} else {
			duration := 20 + int(h%600)
			c.CallDuration = &duration
			c.Transcript = tpl
			if strings.Contains(tpl, "%s") {
				c.Transcript = fmt.Sprintf(tpl, lowerFirst(ticket.IssueDescription))
			}
			tid := ticket.ID
			c.TicketID = &tid
			key := fmt.Sprintf("recordings/%s.mp3", id)
			c.RecordingKey = &key
		}
		if h%4 != 0 {
			name := demoTenants[pick(h/19, len(demoTenants))]
			c.ContactName = &name
		}
		d.calls = append(d.calls, c)
	}
	return d
}

// pick maps a hash onto [0, n) without going through a signed int.
func pick(h uint64, n int) int {
	return int(h % uint64(n))
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}

func (d *DemoSource) ListTickets(ctx context.Context) ([]models.Ticket, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]models.Ticket(nil), d.tickets...), nil
}

func (d *DemoSource) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]models.Vendor(nil), d.vendors...), nil
}

func (d *DemoSource) ListPropertyUnits(ctx context.Context) ([]models.PropertyUnit, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]models.PropertyUnit(nil), d.units...), nil
}

func (d *DemoSource) ListCalls(ctx context.Context) ([]models.Call, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]models.Call(nil), d.calls...), nil
}

func (d *DemoSource) GetTicket(ctx context.Context, id string) (models.Ticket, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, t := range d.tickets {
		if t.ID == id {
			return t, nil
		}
	}
	return models.Ticket{}, ErrNotFound
}

func (d *DemoSource) GetCall(ctx context.Context, id string) (models.Call, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, c := range d.calls {
		if c.ID == id {
			return c, nil
		}
	}
	return models.Call{}, ErrNotFound
}

func (d *DemoSource) CreateTicket(ctx context.Context, t models.Ticket) (models.Ticket, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t.ID == "" {
		t.ID = d.nextTicketID()
	} else if d.hasTicket(t.ID) {
		return models.Ticket{}, fmt.Errorf("ticket %s: %w", t.ID, ErrConflict)
	}
	now := d.now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.Before(t.CreatedAt) {
		t.UpdatedAt = t.CreatedAt
	}
	d.tickets = append(d.tickets, t)
	return t, nil
}

// nextTicketID returns the first unused TCK-NNNN id at or after the row count.
func (d *DemoSource) nextTicketID() string {
	for n := len(d.tickets) + 1; ; n++ {
		id := fmt.Sprintf("TCK-%04d", n)
		if !d.hasTicket(id) {
			return id
		}
	}
}

func (d *DemoSource) hasTicket(id string) bool {
	for _, t := range d.tickets {
		if t.ID == id {
			return true
		}
	}
	return false
}

func (d *DemoSource) UpdateTicketStatus(ctx context.Context, id string, status models.TicketStatus) (models.Ticket, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.tickets {
		if d.tickets[i].ID != id {
			continue
		}
		d.tickets[i].Status = status
		d.tickets[i].UpdatedAt = d.now()
		if d.tickets[i].UpdatedAt.Before(d.tickets[i].CreatedAt) {
			d.tickets[i].UpdatedAt = d.tickets[i].CreatedAt
		}
		return d.tickets[i], nil
	}
	return models.Ticket{}, ErrNotFound
}

func (d *DemoSource) SetVendorActive(ctx context.Context, id string, active bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.vendors {
		if d.vendors[i].ID == id {
			d.vendors[i].IsActive = active
			return nil
		}
	}
	return ErrNotFound
}

func (d *DemoSource) Ping(ctx context.Context) error {
	return nil
}
