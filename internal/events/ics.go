package events

import (
	"time"

	ics "github.com/arran4/golang-ical"
)

const icsProductID = "//Oakfield Community Hall//Booking Service//EN"

// calendarFeed serializes a set of bookings as an iCalendar document for
// subscription by calendar apps. Private bookings keep their slot but lose
// their name, same as the public calendar.
func calendarFeed(events []Event) []byte {
	cal := ics.NewCalendar()
	cal.SetProductId(icsProductID)
	cal.SetVersion("2.0")
	cal.SetMethod(ics.MethodPublish)

	now := time.Now()
	for i := range events {
		event := &events[i]
		public := event.ToPublic()

		calEvent := cal.AddEvent(event.ID.String())
		calEvent.SetCreatedTime(event.CreatedAt)
		calEvent.SetDtStampTime(now)
		calEvent.SetModifiedAt(event.UpdatedAt)
		calEvent.SetStartAt(event.EventStart)
		calEvent.SetEndAt(event.EventEnd)
		calEvent.SetSummary(public.Name)
		calEvent.SetDescription("Booking at Oakfield Community Hall")
	}

	return []byte(cal.Serialize())
}

// calendarEntry builds the single-event .ics attached to approval emails.
func calendarEntry(event *Event) []byte {
	cal := ics.NewCalendar()
	cal.SetProductId(icsProductID)
	cal.SetVersion("2.0")
	cal.SetMethod(ics.MethodPublish)

	now := time.Now()
	calEvent := cal.AddEvent(event.ID.String())
	calEvent.SetCreatedTime(now)
	calEvent.SetDtStampTime(now)
	calEvent.SetModifiedAt(now)
	calEvent.SetStartAt(event.EventStart)
	calEvent.SetEndAt(event.EventEnd)
	calEvent.SetSummary(event.Name)
	calEvent.SetDescription("Booking at Oakfield Community Hall")

	return []byte(cal.Serialize())
}
