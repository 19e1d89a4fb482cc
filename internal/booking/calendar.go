package booking

import (
	"errors"
	"time"
)

// ErrSlotTooSoon is returned when a selected calendar slot starts before the
// minimum lead time. Callers surface this to the user rather than silently
// moving the slot.
var ErrSlotTooSoon = errors.New("bookings must be made at least the minimum lead time in advance")

// MinSelectableDate is the first calendar day a booking may start on:
// the start of the day MinLeadDays from now.
func MinSelectableDate(now time.Time, policy Policy) time.Time {
	d := now.AddDate(0, 0, policy.MinLeadDays)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}

// ClampNavigation keeps calendar navigation out of the past. A target
// earlier than now is pulled back to now; anything else passes through.
func ClampNavigation(target, now time.Time) time.Time {
	if target.Before(now) {
		return now
	}
	return target
}

// CheckSlot rejects a selected slot that starts before the minimum lead
// date. Unlike navigation, selection is refused outright, not clamped.
func CheckSlot(start, now time.Time, policy Policy) error {
	if start.Before(MinSelectableDate(now, policy)) {
		return ErrSlotTooSoon
	}
	return nil
}
