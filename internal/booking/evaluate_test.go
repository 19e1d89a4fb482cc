package booking

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func validRequest() Request {
	return Request{
		EventName:         "Village Quiz Night",
		Details:           strings.Repeat("An evening of general knowledge quizzing. ", 3),
		EventDate:         "2026-04-10",
		EventTimeFrom:     "18:00",
		EventTimeTo:       "21:00",
		Name:              "Pat Smith",
		Email:             "pat.smith@example.com",
		PrivacyPolicy:     true,
		TermsOfHire:       true,
		CleaningAndDamage: true,
		CarParking:        true,
		Adhesives:         true,
	}
}

func fieldsWithErrors(errs []FieldError) map[string]bool {
	fields := make(map[string]bool)
	for _, e := range errs {
		fields[e.Field] = true
	}
	return fields
}

func TestEvaluateAcceptsValidRequest(t *testing.T) {
	_, errs := Evaluate(validRequest(), DefaultPolicy(), testNow)
	assert.Empty(t, errs)
}

func TestEvaluateReportsEveryFailingRule(t *testing.T) {
	req := Request{
		EventName:     "x",
		Details:       "too short",
		EventDate:     "2026-03-05",
		EventTimeFrom: "08:00",
		EventTimeTo:   "07:00",
		Name:          "",
		Email:         "not-an-email",
	}

	_, errs := Evaluate(req, DefaultPolicy(), testNow)

	fields := fieldsWithErrors(errs)
	for _, field := range []string{
		"eventName", "details", "eventDate", "eventTimeFrom", "eventTimeTo",
		"name", "email",
		"privacyPolicy", "termsOfHire", "cleaningAndDamage", "carParking", "adhesives",
	} {
		assert.True(t, fields[field], "expected an error for %s", field)
	}
}

func TestEvaluateEventNameLength(t *testing.T) {
	tests := []struct {
		name      string
		eventName string
		wantError bool
	}{
		{"empty", "", true},
		{"one char", "a", true},
		{"two chars", "ab", false},
		{"fifty chars", strings.Repeat("a", 50), false},
		{"fifty-one chars", strings.Repeat("a", 51), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			req.EventName = tt.eventName
			_, errs := Evaluate(req, DefaultPolicy(), testNow)
			assert.Equal(t, tt.wantError, fieldsWithErrors(errs)["eventName"])
		})
	}
}

func TestEvaluateDetailsLength(t *testing.T) {
	tests := []struct {
		name      string
		length    int
		wantError bool
	}{
		{"forty-nine chars", 49, true},
		{"fifty chars", 50, false},
		{"fifty-thousand chars", 50000, false},
		{"over fifty-thousand", 50001, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			req.Details = strings.Repeat("a", tt.length)
			_, errs := Evaluate(req, DefaultPolicy(), testNow)
			assert.Equal(t, tt.wantError, fieldsWithErrors(errs)["details"])
		})
	}
}

func TestEvaluateLeadTimeBoundary(t *testing.T) {
	tests := []struct {
		name      string
		eventDate string
		wantError bool
	}{
		{"thirteen days ahead", "2026-03-14", true},
		{"exactly fourteen days ahead", "2026-03-15", false},
		{"fifteen days ahead", "2026-03-16", false},
		{"two years ahead", "2028-03-01", false},
		{"beyond two years", "2028-03-02", true},
		{"unparsable", "not-a-date", true},
		{"missing", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			req.EventDate = tt.eventDate
			_, errs := Evaluate(req, DefaultPolicy(), testNow)
			assert.Equal(t, tt.wantError, fieldsWithErrors(errs)["eventDate"])
		})
	}
}

func TestEvaluateOperatingHoursBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		badField string
	}{
		{"opening boundary accepted", "09:00", "12:00", ""},
		{"just before opening rejected", "08:59", "12:00", "eventTimeFrom"},
		{"closing boundary accepted", "19:00", "22:00", ""},
		{"just after closing rejected", "19:00", "22:01", "eventTimeTo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			req.EventTimeFrom = tt.from
			req.EventTimeTo = tt.to
			_, errs := Evaluate(req, DefaultPolicy(), testNow)
			if tt.badField == "" {
				assert.Empty(t, errs)
			} else {
				assert.True(t, fieldsWithErrors(errs)[tt.badField])
			}
		})
	}
}

func TestEvaluateStartMustBeStrictlyBeforeEnd(t *testing.T) {
	req := validRequest()
	req.EventTimeFrom = "15:00"
	req.EventTimeTo = "15:00"

	_, errs := Evaluate(req, DefaultPolicy(), testNow)
	assert.True(t, fieldsWithErrors(errs)["eventTimeFrom"])

	req.EventTimeTo = "15:01"
	_, errs = Evaluate(req, DefaultPolicy(), testNow)
	assert.Empty(t, errs)
}

func TestEvaluateEmailSyntax(t *testing.T) {
	req := validRequest()
	req.Email = "pat.smith@"

	_, errs := Evaluate(req, DefaultPolicy(), testNow)
	require.Len(t, errs, 1)
	assert.Equal(t, "email", errs[0].Field)
}

func TestEvaluateConsentFlags(t *testing.T) {
	mutate := map[string]func(*Request){
		"privacyPolicy":     func(r *Request) { r.PrivacyPolicy = false },
		"termsOfHire":       func(r *Request) { r.TermsOfHire = false },
		"cleaningAndDamage": func(r *Request) { r.CleaningAndDamage = false },
		"carParking":        func(r *Request) { r.CarParking = false },
		"adhesives":         func(r *Request) { r.Adhesives = false },
	}

	for field, clear := range mutate {
		t.Run(field, func(t *testing.T) {
			req := validRequest()
			clear(&req)
			_, errs := Evaluate(req, DefaultPolicy(), testNow)
			require.Len(t, errs, 1)
			assert.Equal(t, field, errs[0].Field)
		})
	}
}

func TestEvaluateReturnsBreakdownForInvalidInput(t *testing.T) {
	req := validRequest()
	req.EventName = ""
	req.EventTimeFrom = "10:00"
	req.EventTimeTo = "16:00"

	breakdown, errs := Evaluate(req, DefaultPolicy(), testNow)
	assert.NotEmpty(t, errs)
	assert.Equal(t, 6.0, breakdown.Hours)
	assert.Equal(t, 150.0, breakdown.BaseCost)
}
