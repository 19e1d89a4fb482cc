package events

// EventStatus tracks a booking through the committee's review.
type EventStatus string

const (
	EventStatusProvisional       EventStatus = "provisional"
	EventStatusAwaitingDocuments EventStatus = "awaiting documents"
	EventStatusApproved          EventStatus = "approved"
	EventStatusCancelled         EventStatus = "cancelled"
)

func (s EventStatus) IsValid() bool {
	switch s {
	case EventStatusProvisional, EventStatusAwaitingDocuments, EventStatusApproved, EventStatusCancelled:
		return true
	}
	return false
}

// canTransition encodes the review flow. Cancellation is reachable from any
// live status; approval may follow either review stage.
func canTransition(from, to EventStatus) bool {
	if from == to {
		return false
	}
	switch to {
	case EventStatusCancelled:
		return from != EventStatusCancelled
	case EventStatusApproved:
		return from == EventStatusProvisional || from == EventStatusAwaitingDocuments
	case EventStatusAwaitingDocuments:
		return from == EventStatusProvisional
	case EventStatusProvisional:
		return false
	}
	return false
}
