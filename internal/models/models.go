package models

import "time"

type Urgency string

const (
	UrgencyEmergency Urgency = "emergency"
	UrgencyUrgent    Urgency = "urgent"
	UrgencyStandard  Urgency = "standard"
)

type TicketStatus string

const (
	TicketOpen           TicketStatus = "open"
	TicketVendorNotified TicketStatus = "vendor_notified"
	TicketInProgress     TicketStatus = "in_progress"
	TicketResolved       TicketStatus = "resolved"
	TicketCanceled       TicketStatus = "canceled"
)

type CallDirection string

const (
	CallInbound  CallDirection = "inbound"
	CallOutbound CallDirection = "outbound"
	CallMissed   CallDirection = "missed"
)

type CallStatus string

const (
	CallCompleted CallStatus = "completed"
	CallNoAnswer  CallStatus = "missed"
	CallVoicemail CallStatus = "voicemail"
)

var (
	Urgencies      = []Urgency{UrgencyEmergency, UrgencyUrgent, UrgencyStandard}
	TicketStatuses = []TicketStatus{TicketOpen, TicketVendorNotified, TicketInProgress, TicketResolved, TicketCanceled}
	CallDirections = []CallDirection{CallInbound, CallOutbound, CallMissed}
	CallStatuses   = []CallStatus{CallCompleted, CallNoAnswer, CallVoicemail}
)

type Ticket struct {
	ID               string       `json:"id"`
	PropertyName     string       `json:"property_name"`
	UnitAddress      string       `json:"unit_address"`
	IssueDescription string       `json:"issue_description"`
	Urgency          Urgency      `json:"urgency"`
	Status           TicketStatus `json:"status"`
	ServiceProvider  *string      `json:"service_provider"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

type Vendor struct {
	ID                  string   `json:"id"`
	CompanyName         string   `json:"company_name"`
	PhoneNumber         string   `json:"phone_number"`
	ServiceCategories   []string `json:"service_categories"`
	Type                string   `json:"type"`
	IsActive            bool     `json:"is_active"`
	AverageRating       float64  `json:"average_rating"`
	TotalJobs           int      `json:"total_jobs"`
	AverageResponseTime *int     `json:"average_response_time"`
	OnTimePercentage    *float64 `json:"on_time_percentage,omitempty"`
	JobsPerMonth        *int     `json:"jobs_per_month,omitempty"`
}

// PropertyUnit is a unit row joined with its property and, if any, the
// active tenant link.
type PropertyUnit struct {
	ID               string  `json:"id"`
	PropertyName     string  `json:"property_name"`
	FullAddress      string  `json:"full_address"`
	IsActive         bool    `json:"is_active"`
	IsOccupied       bool    `json:"is_occupied"`
	TenantName       *string `json:"tenant_name"`
	EmergencyContact *string `json:"emergency_contact"`
	ManagerName      *string `json:"manager_name"`
	ManagerPhone     *string `json:"manager_phone"`
	ManagerEmail     *string `json:"manager_email"`
}

type Call struct {
	ID           string        `json:"id"`
	PhoneNumber  string        `json:"phone_number"`
	ContactName  *string       `json:"contact_name"`
	CallDuration *int          `json:"call_duration"`
	Transcript   string        `json:"transcript"`
	Direction    CallDirection `json:"direction"`
	Status       CallStatus    `json:"status"`
	TicketID     *string       `json:"ticket_id"`
	RecordingKey *string       `json:"recording_key,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

func ValidUrgency(v string) bool {
	for _, u := range Urgencies {
		if string(u) == v {
			return true
		}
	}
	return false
}

func ValidTicketStatus(v string) bool {
	for _, s := range TicketStatuses {
		if string(s) == v {
			return true
		}
	}
	return false
}
