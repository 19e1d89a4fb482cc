package booking

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Request carries the raw booking form fields. Dates and times arrive as
// strings exactly as typed so the live summary can be recomputed on every
// change without the caller pre-parsing anything.
type Request struct {
	EventName     string `json:"eventName"`
	Details       string `json:"details"`
	EventDate     string `json:"eventDate"`     // YYYY-MM-DD
	EventTimeFrom string `json:"eventTimeFrom"` // HH:MM
	EventTimeTo   string `json:"eventTimeTo"`   // HH:MM
	Name          string `json:"name"`
	Email         string `json:"email"`

	PrivacyPolicy     bool `json:"privacyPolicy"`
	TermsOfHire       bool `json:"termsOfHire"`
	CleaningAndDamage bool `json:"cleaningAndDamage"`
	CarParking        bool `json:"carParking"`
	Adhesives         bool `json:"adhesives"`
}

// FieldError is one failed validation rule, keyed by form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

const (
	minEventNameLen = 2
	maxEventNameLen = 50
	minDetailsLen   = 50
	maxDetailsLen   = 50000

	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

var emailValidator = validator.New()

// Evaluate checks a booking request against the hall's policy and returns the
// price breakdown together with every failing rule. All rules are evaluated
// independently so the caller always sees the complete error list, and the
// breakdown is computed even for invalid input so a running summary can be
// shown alongside the errors.
func Evaluate(req Request, policy Policy, now time.Time) (Breakdown, []FieldError) {
	var errs []FieldError
	add := func(field, message string) {
		errs = append(errs, FieldError{Field: field, Message: message})
	}

	// Event name
	switch n := len(req.EventName); {
	case n == 0:
		add("eventName", "event name is required")
	case n < minEventNameLen:
		add("eventName", fmt.Sprintf("event name must be at least %d characters", minEventNameLen))
	case n > maxEventNameLen:
		add("eventName", fmt.Sprintf("event name must be at most %d characters", maxEventNameLen))
	}

	// Details
	switch n := len(req.Details); {
	case n == 0:
		add("details", "details are required")
	case n < minDetailsLen:
		add("details", fmt.Sprintf("details must be at least %d characters", minDetailsLen))
	case n > maxDetailsLen:
		add("details", fmt.Sprintf("details must be at most %d characters", maxDetailsLen))
	}

	// Event date: inside the bookable window [now + lead time, now + max lead].
	// The lower bound compares whole days so the boundary day itself is fine.
	if req.EventDate == "" {
		add("eventDate", "event date is required")
	} else if date, err := time.ParseInLocation(dateLayout, req.EventDate, now.Location()); err != nil {
		add("eventDate", "event date must be a valid date (YYYY-MM-DD)")
	} else {
		if date.Before(MinSelectableDate(now, policy)) {
			add("eventDate", fmt.Sprintf("event date must be at least %d days in the future", policy.MinLeadDays))
		}
		if date.After(now.AddDate(policy.MaxLeadYears, 0, 0)) {
			add("eventDate", fmt.Sprintf("event date must be within %d years", policy.MaxLeadYears))
		}
	}

	// Times: both inside operating hours (inclusive), start strictly before end.
	earliest, earliestOK := parseClock(policy.EarliestTimeOfDay)
	latest, latestOK := parseClock(policy.LatestTimeOfDay)
	hoursKnown := earliestOK && latestOK

	from, fromOK := parseClock(req.EventTimeFrom)
	to, toOK := parseClock(req.EventTimeTo)

	switch {
	case req.EventTimeFrom == "":
		add("eventTimeFrom", "start time is required")
	case !fromOK:
		add("eventTimeFrom", "start time must be a valid time (HH:MM)")
	case hoursKnown && (from < earliest || from > latest):
		add("eventTimeFrom", fmt.Sprintf("start time must be between %s and %s", policy.EarliestTimeOfDay, policy.LatestTimeOfDay))
	}

	switch {
	case req.EventTimeTo == "":
		add("eventTimeTo", "end time is required")
	case !toOK:
		add("eventTimeTo", "end time must be a valid time (HH:MM)")
	case hoursKnown && (to < earliest || to > latest):
		add("eventTimeTo", fmt.Sprintf("end time must be between %s and %s", policy.EarliestTimeOfDay, policy.LatestTimeOfDay))
	}

	if fromOK && toOK && from >= to {
		add("eventTimeFrom", "start time must be before end time")
	}

	// Contact
	if req.Name == "" {
		add("name", "name is required")
	}
	if req.Email == "" {
		add("email", "email is required")
	} else if err := emailValidator.Var(req.Email, "email"); err != nil {
		add("email", "email must be a valid email address")
	}

	// Consents
	if !req.PrivacyPolicy {
		add("privacyPolicy", "you must accept the privacy policy")
	}
	if !req.TermsOfHire {
		add("termsOfHire", "you must accept the terms of hire")
	}
	if !req.CleaningAndDamage {
		add("cleaningAndDamage", "you must accept the cleaning and damage terms")
	}
	if !req.CarParking {
		add("carParking", "you must accept the car parking terms")
	}
	if !req.Adhesives {
		add("adhesives", "you must accept the terms on the use of adhesives")
	}

	return Quote(req.EventTimeFrom, req.EventTimeTo, policy), errs
}

// parseClock parses an HH:MM string into minutes since midnight.
func parseClock(s string) (int, bool) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}
