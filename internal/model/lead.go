package model

import (
	"encoding/json"
	"time"
)

// LeadKind discriminates the lead-capture forms on the public site.
type LeadKind string

const (
	LeadKindContact      LeadKind = "contact"
	LeadKindScheduleCall LeadKind = "schedule-call"
	LeadKindRateTracker  LeadKind = "rate-tracker"
)

// ContactLead is a general inquiry from the contact form.
type ContactLead struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	LoanType string `json:"loanType,omitempty"`
	Message  string `json:"message"`
}

// Fields returns the lead as a field-name → value map for validation.
func (l ContactLead) Fields() map[string]string {
	return map[string]string{
		"name":     l.Name,
		"email":    l.Email,
		"phone":    l.Phone,
		"loanType": l.LoanType,
		"message":  l.Message,
	}
}

// ScheduleCallLead is a request for a call with a loan officer.
type ScheduleCallLead struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	PreferredDate string `json:"preferredDate"`
	PreferredTime string `json:"preferredTime"`
	TimeZone      string `json:"timeZone"`
	CallReason    string `json:"callReason"`
	Message       string `json:"message,omitempty"`
}

// Fields returns the lead as a field-name → value map for validation.
func (l ScheduleCallLead) Fields() map[string]string {
	return map[string]string{
		"name":          l.Name,
		"email":         l.Email,
		"phone":         l.Phone,
		"preferredDate": l.PreferredDate,
		"preferredTime": l.PreferredTime,
		"timeZone":      l.TimeZone,
		"callReason":    l.CallReason,
		"message":       l.Message,
	}
}

// RateTrackerLead asks to be notified when rates hit a target.
type RateTrackerLead struct {
	FullName          string `json:"fullName"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	PropertyType      string `json:"propertyType"`
	PropertyUse       string `json:"propertyUse"`
	State             string `json:"state"`
	LoanType          string `json:"loanType"`
	LoanPurpose       string `json:"loanPurpose"`
	CurrentRate       string `json:"currentRate,omitempty"`
	TrackInterestRate string `json:"trackInterestRate,omitempty"`
	Message           string `json:"message,omitempty"`
}

// Fields returns the lead as a field-name → value map for validation.
func (l RateTrackerLead) Fields() map[string]string {
	return map[string]string{
		"fullName":          l.FullName,
		"email":             l.Email,
		"phone":             l.Phone,
		"propertyType":      l.PropertyType,
		"propertyUse":       l.PropertyUse,
		"state":             l.State,
		"loanType":          l.LoanType,
		"loanPurpose":       l.LoanPurpose,
		"currentRate":       l.CurrentRate,
		"trackInterestRate": l.TrackInterestRate,
		"message":           l.Message,
	}
}

// Lead is a stored lead submission of any kind. Payload holds the original
// form values; the shape varies by Kind.
type Lead struct {
	ID        string          `json:"id"`
	Kind      LeadKind        `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	SyncedAt  *time.Time      `json:"synced_at,omitempty"` // CRM push time, nil until pushed
}
