package invoices

import (
	"fmt"
	"time"

	"hallbook/internal/rates"
)

// InvoicedEvent is the billing view of an event: the booked window plus the
// hire rate and its ordered discount tiers.
type InvoicedEvent struct {
	ID            string               `json:"id"`
	Name          string               `json:"name"`
	From          time.Time            `json:"from"`
	To            time.Time            `json:"to"`
	Rate          float64              `json:"rate"`
	DiscountTiers []rates.DiscountTier `json:"discount_tiers"`
}

// LineItem is one priced invoice row. Cost is signed: charges are positive,
// discounts negative.
type LineItem struct {
	EventID     string  `json:"event_id"`
	Description string  `json:"description"`
	Cost        float64 `json:"cost"`
}

// Deriver turns events into invoice line items. It is a pure value: the same
// events always derive the same items, which is what lets the admin screen
// offer a Reset that discards manual edits.
type Deriver struct {
	DepositAmount float64
}

func NewDeriver(depositAmount float64) Deriver {
	return Deriver{DepositAmount: depositAmount}
}

// DeriveLineItems produces the ordered line items for a list of events.
// Per event: the hire charge, an optional discount, then the deposit. The
// deposit is charged even for a zero-length window; the hire line is not.
func (d Deriver) DeriveLineItems(events []InvoicedEvent) []LineItem {
	var items []LineItem

	for _, event := range events {
		hours := event.To.Sub(event.From).Hours()
		if hours < 0 {
			hours = 0
		}

		if hours > 0 {
			items = append(items, LineItem{
				EventID:     event.ID,
				Description: fmt.Sprintf("%s - %.1f hours", event.Name, hours),
				Cost:        hours * event.Rate,
			})
		}

		if value, ok := discountFor(hours, event.DiscountTiers); ok {
			items = append(items, LineItem{
				EventID:     event.ID,
				Description: event.Name + " - Discount",
				Cost:        -value,
			})
		}

		items = append(items, LineItem{
			EventID:     event.ID,
			Description: event.Name + " - Refundable Cleaning and Damage deposit",
			Cost:        d.DepositAmount,
		})
	}

	return items
}

// Total sums signed line item costs.
func Total(items []LineItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Cost
	}
	return total
}

// discountFor scans the tiers in order. A tier applies once the booked hours
// reach its threshold; among applicable tiers the largest value wins, and on
// equal values the one scanned later. The >= comparison is what implements
// that last-wins behavior.
func discountFor(hours float64, tiers []rates.DiscountTier) (float64, bool) {
	var best float64
	found := false

	for _, tier := range tiers {
		if hours >= tier.ThresholdHours && tier.Value >= best {
			best = tier.Value
			found = true
		}
	}

	if !found || best <= 0 {
		return 0, false
	}
	return best, true
}
